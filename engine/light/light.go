package light

// LightType identifies the kind of light source.
type LightType int

const (
	// LightTypeDirectional represents a light with no position, only direction.
	// Used for large distant sources like the sun or moon. Directional shadows
	// are rendered as camera-relative cascades.
	LightTypeDirectional LightType = iota

	// LightTypePoint represents a light that emits in all directions from a position.
	// A shadowed point light is rendered as six cube faces and occupies six atlas tiles.
	LightTypePoint

	// LightTypeSpot represents a light that emits in a cone from a position along a direction.
	// A shadowed spot light occupies a single atlas tile.
	LightTypeSpot
)

// String returns a readable name for the light type.
func (t LightType) String() string {
	switch t {
	case LightTypeDirectional:
		return "directional"
	case LightTypePoint:
		return "point"
	case LightTypeSpot:
		return "spot"
	default:
		return "unknown"
	}
}

// ShadowMode controls whether and how a light casts real-time shadows.
type ShadowMode int

const (
	// ShadowsNone disables shadow casting for the light.
	ShadowsNone ShadowMode = iota

	// ShadowsHard casts shadows without soft filtering preference.
	ShadowsHard

	// ShadowsSoft casts shadows filtered by the configured PCF kernel.
	ShadowsSoft
)

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	lightType        LightType
	position         [3]float32
	direction        [3]float32
	lightRange       float32
	spotAngle        float32 // full cone angle in degrees
	enabled          bool
	shadows          ShadowMode
	shadowStrength   float32
	shadowBias       float32
	shadowNormalBias float32
	shadowNearPlane  float32
	baking           BakingOutput
}

// Light defines the interface for a light source as seen by the shadow system.
//
// All light types (directional, point, spot) share this interface; type-specific
// properties (e.g. the spot angle) return their stored value regardless of type
// and are simply ignored where they do not apply.
type Light interface {
	// Type returns the kind of light source.
	//
	// Returns:
	//   - LightType: the light type (directional, point, or spot)
	Type() LightType

	// Position returns the world-space position of the light.
	// Meaningless for directional lights.
	//
	// Returns:
	//   - [3]float32: position as (x, y, z)
	Position() [3]float32

	// Direction returns the normalized direction of the light.
	// For directional lights this is the light direction. For spot lights this
	// is the cone axis. Meaningless for point lights.
	//
	// Returns:
	//   - [3]float32: normalized direction as (x, y, z)
	Direction() [3]float32

	// Range returns the maximum attenuation distance for point and spot lights.
	// Also used as the far plane of their shadow projections.
	//
	// Returns:
	//   - float32: the range value
	Range() float32

	// SpotAngle returns the full cone angle of a spot light in degrees.
	//
	// Returns:
	//   - float32: the cone angle in degrees
	SpotAngle() float32

	// Enabled returns whether this light is active for rendering.
	//
	// Returns:
	//   - bool: true if the light is enabled
	Enabled() bool

	// Shadows returns the real-time shadow mode of the light.
	//
	// Returns:
	//   - ShadowMode: none, hard, or soft
	Shadows() ShadowMode

	// ShadowStrength returns how dark the light's shadows are, in [0, 1].
	// A strength of zero disables shadows just like ShadowsNone.
	//
	// Returns:
	//   - float32: the shadow strength
	ShadowStrength() float32

	// ShadowBias returns the slope-scale depth bias applied while rendering
	// this light's shadow casters.
	//
	// Returns:
	//   - float32: the slope-scale bias
	ShadowBias() float32

	// ShadowNormalBias returns the normal-offset bias the shading stage applies
	// before sampling this light's shadow map.
	//
	// Returns:
	//   - float32: the normal bias
	ShadowNormalBias() float32

	// ShadowNearPlane returns the near-plane offset used for directional cascades.
	//
	// Returns:
	//   - float32: the near-plane offset
	ShadowNearPlane() float32

	// Baking returns the light's baked lighting configuration.
	//
	// Returns:
	//   - BakingOutput: bake type, mixed mode and occlusion mask channel
	Baking() BakingOutput

	// SetPosition sets the world-space position of the light.
	//
	// Parameters:
	//   - x, y, z: position components
	SetPosition(x, y, z float32)

	// SetDirection sets the direction of the light and normalizes it.
	//
	// Parameters:
	//   - x, y, z: direction components (will be normalized)
	SetDirection(x, y, z float32)

	// SetEnabled enables or disables the light for rendering.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// SetShadows sets the real-time shadow mode.
	//
	// Parameters:
	//   - mode: the shadow mode
	SetShadows(mode ShadowMode)

	// SetShadowStrength sets the shadow strength, clamped to [0, 1].
	//
	// Parameters:
	//   - strength: the shadow strength
	SetShadowStrength(strength float32)
}

var _ Light = &lightImpl{}

// NewLight creates a new Light of the specified type with sensible defaults and
// any provided options applied. Lights cast no shadows until WithShadows is given.
//
// Parameters:
//   - lightType: the kind of light to create (directional, point, or spot)
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: a new Light instance
func NewLight(lightType LightType, opts ...LightBuilderOption) Light {
	l := &lightImpl{
		lightType:        lightType,
		position:         [3]float32{0, 0, 0},
		direction:        [3]float32{0, -1, 0},
		lightRange:       10.0,
		spotAngle:        30.0,
		enabled:          true,
		shadows:          ShadowsNone,
		shadowStrength:   DefaultShadowStrength,
		shadowBias:       DefaultShadowBias,
		shadowNormalBias: DefaultShadowNormalBias,
		shadowNearPlane:  DefaultShadowNearPlane,
		baking:           BakingOutput{OcclusionMaskChannel: -1},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Type() LightType {
	return l.lightType
}

func (l *lightImpl) Position() [3]float32 {
	return l.position
}

func (l *lightImpl) Direction() [3]float32 {
	return l.direction
}

func (l *lightImpl) Range() float32 {
	return l.lightRange
}

func (l *lightImpl) SpotAngle() float32 {
	return l.spotAngle
}

func (l *lightImpl) Enabled() bool {
	return l.enabled
}

func (l *lightImpl) Shadows() ShadowMode {
	return l.shadows
}

func (l *lightImpl) ShadowStrength() float32 {
	return l.shadowStrength
}

func (l *lightImpl) ShadowBias() float32 {
	return l.shadowBias
}

func (l *lightImpl) ShadowNormalBias() float32 {
	return l.shadowNormalBias
}

func (l *lightImpl) ShadowNearPlane() float32 {
	return l.shadowNearPlane
}

func (l *lightImpl) Baking() BakingOutput {
	return l.baking
}

func (l *lightImpl) SetPosition(x, y, z float32) {
	l.position = [3]float32{x, y, z}
}

func (l *lightImpl) SetDirection(x, y, z float32) {
	l.direction = normalize3(x, y, z)
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.enabled = enabled
}

func (l *lightImpl) SetShadows(mode ShadowMode) {
	l.shadows = mode
}

func (l *lightImpl) SetShadowStrength(strength float32) {
	l.shadowStrength = clamp01(strength)
}
