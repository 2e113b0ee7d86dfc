package shadow

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-atlas/common"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// MaxDirectionalShadows is the number of directional lights that can render shadows in one frame.
	MaxDirectionalShadows = 4
	// MaxOtherShadows is the number of atlas slots shared by spot and point lights.
	MaxOtherShadows = 16
	// MaxCascades is the upper bound on cascades per directional light.
	MaxCascades = 4
	// PointLightSlots is the number of atlas slots a point light occupies, one per cube face.
	PointLightSlots = 6

	minAtlasSize = 256
	maxAtlasSize = 8192
)

// FilterMode selects the PCF kernel used when sampling an atlas.
// The integer value doubles as the filter term in texel and bias math.
type FilterMode int

const (
	FilterPCF2x2 FilterMode = iota
	FilterPCF3x3
	FilterPCF5x5
	FilterPCF7x7
)

// kernelScale returns the number of texels the filter kernel widens by.
func (f FilterMode) kernelScale() float32 {
	return float32(f) + 1
}

func (f FilterMode) String() string {
	switch f {
	case FilterPCF2x2:
		return "PCF2x2"
	case FilterPCF3x3:
		return "PCF3x3"
	case FilterPCF5x5:
		return "PCF5x5"
	case FilterPCF7x7:
		return "PCF7x7"
	default:
		return fmt.Sprintf("FilterMode(%d)", int(f))
	}
}

// CascadeBlendMode selects how neighbouring cascades are blended in the shader.
type CascadeBlendMode int

const (
	CascadeBlendHard CascadeBlendMode = iota
	CascadeBlendSoft
	CascadeBlendDither
)

// ShadowmaskMode selects how baked shadow masks combine with realtime shadows.
type ShadowmaskMode int

const (
	// ShadowmaskModeShadowmask always uses the baked mask for static occluders.
	ShadowmaskModeShadowmask ShadowmaskMode = iota
	// ShadowmaskModeDistance uses realtime shadows up to the shadow distance and the mask beyond.
	ShadowmaskModeDistance
)

// DirectionalSettings configures the directional shadow atlas and its cascades.
type DirectionalSettings struct {
	AtlasSize     int
	Filter        FilterMode
	CascadeCount  int
	CascadeRatio1 float32
	CascadeRatio2 float32
	CascadeRatio3 float32
	CascadeFade   float32
	CascadeBlend  CascadeBlendMode
}

// CascadeRatios returns the three cascade split ratios packed into a vector, the
// form the culling collaborator consumes.
func (d DirectionalSettings) CascadeRatios() mgl32.Vec3 {
	return mgl32.Vec3{d.CascadeRatio1, d.CascadeRatio2, d.CascadeRatio3}
}

// OtherSettings configures the atlas shared by spot and point lights.
type OtherSettings struct {
	AtlasSize int
	Filter    FilterMode
}

// Settings holds the per-frame shadow configuration. It is read once per Setup and
// never mutated by the shadow system.
type Settings struct {
	MaxDistance  float32
	DistanceFade float32
	Directional  DirectionalSettings
	Other        OtherSettings
	Shadowmask   ShadowmaskMode
}

// NewSettings creates shadow settings populated with defaults and then applies the
// given options.
//
// Parameters:
//   - options: variadic list of SettingsBuilderOption functions
//
// Returns:
//   - *Settings: the configured settings
func NewSettings(options ...SettingsBuilderOption) *Settings {
	s := &Settings{
		MaxDistance:  100,
		DistanceFade: 0.1,
		Directional: DirectionalSettings{
			AtlasSize:     1024,
			Filter:        FilterPCF2x2,
			CascadeCount:  4,
			CascadeRatio1: 0.1,
			CascadeRatio2: 0.25,
			CascadeRatio3: 0.5,
			CascadeFade:   0.1,
			CascadeBlend:  CascadeBlendHard,
		},
		Other: OtherSettings{
			AtlasSize: 1024,
			Filter:    FilterPCF2x2,
		},
		Shadowmask: ShadowmaskModeShadowmask,
	}

	for _, opt := range options {
		opt(s)
	}

	return s
}

// Validate reports every setting outside the range the shadow system supports.
// Nothing is clamped; the caller decides how to recover.
//
// Returns:
//   - error: a joined error listing each invalid setting, or nil
func (s *Settings) Validate() error {
	var errs []error

	if s.MaxDistance <= 0 {
		errs = append(errs, fmt.Errorf("max distance must be positive, got %v", s.MaxDistance))
	}
	if s.DistanceFade <= 0 || s.DistanceFade > 1 {
		errs = append(errs, fmt.Errorf("distance fade must be in (0, 1], got %v", s.DistanceFade))
	}
	if err := validateAtlasSize("directional", s.Directional.AtlasSize); err != nil {
		errs = append(errs, err)
	}
	if err := validateAtlasSize("other", s.Other.AtlasSize); err != nil {
		errs = append(errs, err)
	}
	if err := validateFilter("directional", s.Directional.Filter); err != nil {
		errs = append(errs, err)
	}
	if err := validateFilter("other", s.Other.Filter); err != nil {
		errs = append(errs, err)
	}

	d := s.Directional
	if d.CascadeCount < 1 || d.CascadeCount > MaxCascades {
		errs = append(errs, fmt.Errorf("cascade count must be in [1, %d], got %d", MaxCascades, d.CascadeCount))
	}
	ratios := d.CascadeRatios()
	prev := float32(0)
	for i, r := range ratios {
		if r <= prev || r >= 1 {
			errs = append(errs, fmt.Errorf("cascade ratio %d must be in (%v, 1), got %v", i+1, prev, r))
		}
		prev = r
	}
	if d.CascadeFade <= 0 || d.CascadeFade > 1 {
		errs = append(errs, fmt.Errorf("cascade fade must be in (0, 1], got %v", d.CascadeFade))
	}
	if d.CascadeBlend < CascadeBlendHard || d.CascadeBlend > CascadeBlendDither {
		errs = append(errs, fmt.Errorf("unknown cascade blend mode %d", d.CascadeBlend))
	}
	if s.Shadowmask != ShadowmaskModeShadowmask && s.Shadowmask != ShadowmaskModeDistance {
		errs = append(errs, fmt.Errorf("unknown shadowmask mode %d", s.Shadowmask))
	}

	return errors.Join(errs...)
}

func validateAtlasSize(name string, size int) error {
	if size < minAtlasSize || size > maxAtlasSize || !common.IsPowerOfTwo(size) {
		return fmt.Errorf("%s atlas size must be a power of two in [%d, %d], got %d", name, minAtlasSize, maxAtlasSize, size)
	}
	return nil
}

func validateFilter(name string, f FilterMode) error {
	if f < FilterPCF2x2 || f > FilterPCF7x7 {
		return fmt.Errorf("unknown %s filter mode %d", name, f)
	}
	return nil
}
