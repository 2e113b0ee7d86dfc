// Package shadow manages the two shadow atlases of a frame: one holding the cascades of
// directional lights and one shared by spot and point lights. Lights reserve atlas tiles
// between Setup and Render; Render draws every reserved tile and publishes the globals
// the shading stage needs to sample the atlases.
package shadow

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-atlas/engine/light"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrNotSetup is returned by Render and Cleanup when no frame was set up.
var ErrNotSetup = errors.New("shadow: Setup was not called for this frame")

// PassState is the stage of the shadow pass within a frame.
type PassState int

const (
	PassIdle PassState = iota
	PassAtlasAllocated
	PassPerLightLoop
	PassFinalized
)

func (p PassState) String() string {
	switch p {
	case PassIdle:
		return "Idle"
	case PassAtlasAllocated:
		return "AtlasAllocated"
	case PassPerLightLoop:
		return "PerLightLoop"
	case PassFinalized:
		return "Finalized"
	default:
		return fmt.Sprintf("PassState(%d)", int(p))
	}
}

// FrameState is a snapshot of the shadow system for the current frame.
type FrameState struct {
	Pass                     PassState
	DirectionalAtlasSize     int
	OtherAtlasSize           int
	ReservedDirectionalCount int
	ReservedOtherSlotCount   int
	ShadowMaskActive         bool
	BakedOnlyCount           int
	DrawCount                int
}

// atlasArrays are the per-frame backing arrays published to the shading stage. They
// are overwritten in place every frame.
type atlasArrays struct {
	directionalMatrices   [MaxDirectionalShadows * MaxCascades]mgl32.Mat4
	otherMatrices         [MaxOtherShadows]mgl32.Mat4
	otherTiles            [MaxOtherShadows]mgl32.Vec4
	cascadeCullingSpheres [MaxCascades]mgl32.Vec4
	cascadeData           [MaxCascades]mgl32.Vec4
}

type shadowsImpl struct {
	culling  CullingResults
	cmd      CommandBuffer
	settings *Settings

	properties ShaderProperties
	platform   Platform

	ledger Ledger
	arrays atlasArrays

	// sharedCascades caches the culling output of the first directional light so its
	// draws reuse the matrices that defined the cascade spheres.
	sharedCascades [MaxCascades]ShadowMatrices

	atlasSizes   mgl32.Vec4
	distanceFade mgl32.Vec4
	cascadeCount int
	// shadowMaskIndex selects the shadow mask keyword, -1 when no light uses the mask.
	shadowMaskIndex int

	state     PassState
	isSetup   bool
	bakedOnly int
	draws     int
}

// Shadows is the per-camera shadow atlas controller. One instance is reused across
// frames; it is not safe for concurrent use.
type Shadows interface {
	// Setup starts a frame and forgets every reservation of the previous one.
	//
	// Parameters:
	//   - culling: the culling results of the camera being rendered
	//   - cmd: the command buffer receiving atlas commands
	//   - settings: the shadow settings for this frame
	Setup(culling CullingResults, cmd CommandBuffer, settings *Settings)

	// ReserveDirectionalShadows reserves cascade tiles for a directional light.
	//
	// Parameters:
	//   - l: the light
	//   - visibleIndex: the light's index in the visible light list
	//
	// Returns:
	//   - mgl32.Vec4: the shading lookup vector
	ReserveDirectionalShadows(l light.Light, visibleIndex int) mgl32.Vec4

	// ReserveOtherShadows reserves atlas tiles for a spot or point light.
	//
	// Parameters:
	//   - l: the light
	//   - visibleIndex: the light's index in the visible light list
	//
	// Returns:
	//   - mgl32.Vec4: the shading lookup vector
	ReserveOtherShadows(l light.Light, visibleIndex int) mgl32.Vec4

	// ReserveDirectional is ReserveDirectionalShadows returning the typed outcome.
	// Outside a Setup/Cleanup frame it reserves nothing and returns NoShadow.
	ReserveDirectional(l light.Light, visibleIndex int) Reservation

	// ReserveOther is ReserveOtherShadows returning the typed outcome.
	// Outside a Setup/Cleanup frame it reserves nothing and returns NoShadow.
	ReserveOther(l light.Light, visibleIndex int) Reservation

	// Render draws every reserved tile and publishes the shadow globals.
	//
	// Returns:
	//   - error: ErrNotSetup, or a wrapped command buffer error
	Render() error

	// Cleanup releases the atlases allocated by Render.
	//
	// Returns:
	//   - error: ErrNotSetup, or a wrapped command buffer error
	Cleanup() error

	// State returns a snapshot of the current frame.
	State() FrameState

	// Globals returns the published shadow data in its GPU layout.
	Globals() *GPUShadowGlobals

	// Properties returns the shader property names in use.
	Properties() ShaderProperties
}

var _ Shadows = &shadowsImpl{}

// NewShadows creates a shadow atlas controller.
//
// Parameters:
//   - options: variadic list of ShadowsBuilderOption functions
//
// Returns:
//   - Shadows: the controller, idle until Setup is called
func NewShadows(options ...ShadowsBuilderOption) Shadows {
	s := &shadowsImpl{
		properties:      DefaultShaderProperties(),
		state:           PassIdle,
		shadowMaskIndex: -1,
	}

	for _, opt := range options {
		opt(s)
	}

	return s
}

func (s *shadowsImpl) Setup(culling CullingResults, cmd CommandBuffer, settings *Settings) {
	s.culling = culling
	s.cmd = cmd
	s.settings = settings

	s.ledger.Reset()
	s.atlasSizes = mgl32.Vec4{}
	s.cascadeCount = 0
	s.shadowMaskIndex = -1
	s.bakedOnly = 0
	s.draws = 0
	s.state = PassIdle
	s.isSetup = true
}

func (s *shadowsImpl) ReserveDirectionalShadows(l light.Light, visibleIndex int) mgl32.Vec4 {
	return s.ReserveDirectional(l, visibleIndex).Vector()
}

func (s *shadowsImpl) ReserveOtherShadows(l light.Light, visibleIndex int) mgl32.Vec4 {
	return s.ReserveOther(l, visibleIndex).Vector()
}

func (s *shadowsImpl) ReserveDirectional(l light.Light, visibleIndex int) Reservation {
	if !s.isSetup {
		Logger().Warn("directional shadow reserved outside a frame", "visibleLight", visibleIndex)
		return Reservation{Kind: ReservationNoShadow, MaskChannel: -1, directional: true}
	}
	r := s.ledger.ReserveDirectional(l, visibleIndex, s.culling, s.settings.Directional.CascadeCount)
	s.countReservation(r)
	return r
}

func (s *shadowsImpl) ReserveOther(l light.Light, visibleIndex int) Reservation {
	if !s.isSetup {
		Logger().Warn("other shadow reserved outside a frame", "visibleLight", visibleIndex)
		return Reservation{Kind: ReservationNoShadow, MaskChannel: -1}
	}
	r := s.ledger.ReserveOther(l, visibleIndex, s.culling)
	s.countReservation(r)
	return r
}

func (s *shadowsImpl) countReservation(r Reservation) {
	if r.Kind == ReservationBakedOnly {
		s.bakedOnly++
	}
}

func (s *shadowsImpl) Render() error {
	if !s.isSetup {
		return ErrNotSetup
	}

	if s.ledger.directionalCount > 0 {
		if err := s.renderDirectionalShadows(); err != nil {
			return err
		}
	} else if err := s.cmd.GetTemporaryShadowAtlas(s.properties.DirectionalAtlas, 1); err != nil {
		return fmt.Errorf("allocate directional shadow placeholder: %w", err)
	}

	if s.ledger.otherSlotCount > 0 {
		if err := s.renderOtherShadows(); err != nil {
			return err
		}
	} else {
		s.cmd.SetGlobalTexture(s.properties.OtherAtlas, s.properties.DirectionalAtlas)
	}

	s.shadowMaskIndex = -1
	if s.ledger.shadowMaskActive {
		if s.settings.Shadowmask == ShadowmaskModeShadowmask {
			s.shadowMaskIndex = 0
		} else {
			s.shadowMaskIndex = 1
		}
	}
	s.setKeywords(s.properties.ShadowMaskKeywords[:], s.shadowMaskIndex)

	s.cascadeCount = 0
	if s.ledger.directionalCount > 0 {
		s.cascadeCount = s.settings.Directional.CascadeCount
	}
	s.cmd.SetGlobalInt(s.properties.CascadeCount, int32(s.cascadeCount))

	f := 1 - s.settings.Directional.CascadeFade
	s.distanceFade = mgl32.Vec4{
		1 / s.settings.MaxDistance,
		1 / s.settings.DistanceFade,
		1 / (1 - f*f),
		0,
	}
	s.cmd.SetGlobalVector(s.properties.DistanceFade, s.distanceFade)
	s.cmd.SetGlobalVector(s.properties.AtlasSize, s.atlasSizes)

	s.state = PassFinalized
	if err := s.cmd.Execute(); err != nil {
		return fmt.Errorf("execute shadow globals: %w", err)
	}
	return nil
}

func (s *shadowsImpl) Cleanup() error {
	if !s.isSetup {
		return ErrNotSetup
	}

	var errs []error
	if err := s.cmd.ReleaseTemporaryShadowAtlas(s.properties.DirectionalAtlas); err != nil {
		Logger().Warn("release directional shadow atlas failed", "error", err)
		errs = append(errs, fmt.Errorf("release directional shadow atlas: %w", err))
	}
	if s.ledger.otherSlotCount > 0 {
		if err := s.cmd.ReleaseTemporaryShadowAtlas(s.properties.OtherAtlas); err != nil {
			Logger().Warn("release other shadow atlas failed", "error", err)
			errs = append(errs, fmt.Errorf("release other shadow atlas: %w", err))
		}
	}
	if err := s.cmd.Execute(); err != nil {
		errs = append(errs, fmt.Errorf("execute shadow cleanup: %w", err))
	}

	s.state = PassIdle
	s.isSetup = false
	return errors.Join(errs...)
}

func (s *shadowsImpl) State() FrameState {
	return FrameState{
		Pass:                     s.state,
		DirectionalAtlasSize:     int(s.atlasSizes.X()),
		OtherAtlasSize:           int(s.atlasSizes.Z()),
		ReservedDirectionalCount: s.ledger.directionalCount,
		ReservedOtherSlotCount:   s.ledger.otherSlotCount,
		ShadowMaskActive:         s.ledger.shadowMaskActive,
		BakedOnlyCount:           s.bakedOnly,
		DrawCount:                s.draws,
	}
}

func (s *shadowsImpl) Properties() ShaderProperties {
	return s.properties
}
