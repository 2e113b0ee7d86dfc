package light

import "math"

// LightBuilderOption is a function that configures a Light instance during construction.
type LightBuilderOption func(*lightImpl)

// WithPosition is an option builder that sets the world-space position of the light.
//
// Parameters:
//   - x: the x position component
//   - y: the y position component
//   - z: the z position component
//
// Returns:
//   - LightBuilderOption: a function that applies the position option to a lightImpl
func WithPosition(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.position = [3]float32{x, y, z}
	}
}

// WithDirection is an option builder that sets the direction of the light.
// The direction is normalized before storing.
//
// Parameters:
//   - x: the x direction component
//   - y: the y direction component
//   - z: the z direction component
//
// Returns:
//   - LightBuilderOption: a function that applies the direction option to a lightImpl
func WithDirection(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.direction = normalize3(x, y, z)
	}
}

// WithRange is an option builder that sets the maximum attenuation distance for
// point and spot lights.
//
// Parameters:
//   - lightRange: the range value
//
// Returns:
//   - LightBuilderOption: a function that applies the range option to a lightImpl
func WithRange(lightRange float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.lightRange = lightRange
	}
}

// WithSpotAngle is an option builder that sets the full cone angle of a spot light.
//
// Parameters:
//   - deg: the cone angle in degrees, clamped to [1, 179]
//
// Returns:
//   - LightBuilderOption: a function that applies the spot angle option to a lightImpl
func WithSpotAngle(deg float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.spotAngle = float32(math.Max(1, math.Min(179, float64(deg))))
	}
}

// WithEnabled is an option builder that sets whether the light is active for rendering.
//
// Parameters:
//   - enabled: true to enable the light
//
// Returns:
//   - LightBuilderOption: a function that applies the enabled option to a lightImpl
func WithEnabled(enabled bool) LightBuilderOption {
	return func(l *lightImpl) {
		l.enabled = enabled
	}
}

// WithShadows is an option builder that sets the shadow mode and strength.
//
// Parameters:
//   - mode: the real-time shadow mode
//   - strength: the shadow strength, clamped to [0, 1]
//
// Returns:
//   - LightBuilderOption: a function that applies the shadow option to a lightImpl
func WithShadows(mode ShadowMode, strength float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.shadows = mode
		l.shadowStrength = clamp01(strength)
	}
}

// WithShadowBias is an option builder that sets the depth biases used for this light's shadows.
//
// Parameters:
//   - slopeScale: the slope-scale depth bias applied while rendering casters
//   - normal: the normal-offset bias applied by the shading stage
//
// Returns:
//   - LightBuilderOption: a function that applies the bias option to a lightImpl
func WithShadowBias(slopeScale, normal float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.shadowBias = slopeScale
		l.shadowNormalBias = normal
	}
}

// WithShadowNearPlane is an option builder that sets the near-plane offset used
// when fitting directional cascades.
//
// Parameters:
//   - near: the near-plane offset in world units
//
// Returns:
//   - LightBuilderOption: a function that applies the near-plane option to a lightImpl
func WithShadowNearPlane(near float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.shadowNearPlane = near
	}
}

// WithShadowMask is an option builder that marks the light as a mixed light whose
// baked shadows are stored in the given shadow mask channel.
//
// Parameters:
//   - channel: the occlusion mask channel (0..3)
//
// Returns:
//   - LightBuilderOption: a function that applies the baking option to a lightImpl
func WithShadowMask(channel int) LightBuilderOption {
	return func(l *lightImpl) {
		l.baking = BakingOutput{
			BakeType:             BakeMixed,
			MixedLightingMode:    MixedShadowmask,
			OcclusionMaskChannel: channel,
		}
	}
}

// WithBaking is an option builder that sets the full baking output of the light.
//
// Parameters:
//   - baking: the baking output
//
// Returns:
//   - LightBuilderOption: a function that applies the baking option to a lightImpl
func WithBaking(baking BakingOutput) LightBuilderOption {
	return func(l *lightImpl) {
		l.baking = baking
	}
}

// normalize3 normalizes a 3-component vector. Returns a zero vector if the input
// has zero length.
func normalize3(x, y, z float32) [3]float32 {
	length := float32(math.Sqrt(float64(x*x + y*y + z*z)))
	if length == 0 {
		return [3]float32{0, 0, 0}
	}
	inv := 1.0 / length
	return [3]float32{x * inv, y * inv, z * inv}
}

func clamp01(v float32) float32 {
	return float32(math.Max(0, math.Min(1, float64(v))))
}
