package shadow

// SettingsBuilderOption is a function that configures Settings during construction.
type SettingsBuilderOption func(*Settings)

// WithMaxDistance is an option builder that sets the shadow distance and the fraction of
// it over which shadows fade out.
//
// Parameters:
//   - maxDistance: the camera distance beyond which no realtime shadows render
//   - fade: the fade region as a fraction of maxDistance
//
// Returns:
//   - SettingsBuilderOption: a function that applies the distance option to Settings
func WithMaxDistance(maxDistance, fade float32) SettingsBuilderOption {
	return func(s *Settings) {
		s.MaxDistance = maxDistance
		s.DistanceFade = fade
	}
}

// WithDirectionalAtlas is an option builder that sets the directional atlas size and filter.
//
// Parameters:
//   - size: the atlas edge length in texels
//   - filter: the PCF filter mode
//
// Returns:
//   - SettingsBuilderOption: a function that applies the atlas option to Settings
func WithDirectionalAtlas(size int, filter FilterMode) SettingsBuilderOption {
	return func(s *Settings) {
		s.Directional.AtlasSize = size
		s.Directional.Filter = filter
	}
}

// WithCascades is an option builder that configures cascade splitting.
//
// Parameters:
//   - count: the number of cascades per directional light
//   - r1, r2, r3: the split ratios of the shadow distance
//   - fade: the cascade fade fraction
//   - blend: the cascade blend mode
//
// Returns:
//   - SettingsBuilderOption: a function that applies the cascade option to Settings
func WithCascades(count int, r1, r2, r3, fade float32, blend CascadeBlendMode) SettingsBuilderOption {
	return func(s *Settings) {
		s.Directional.CascadeCount = count
		s.Directional.CascadeRatio1 = r1
		s.Directional.CascadeRatio2 = r2
		s.Directional.CascadeRatio3 = r3
		s.Directional.CascadeFade = fade
		s.Directional.CascadeBlend = blend
	}
}

// WithCascadeCount is an option builder that only changes the cascade count.
func WithCascadeCount(count int) SettingsBuilderOption {
	return func(s *Settings) {
		s.Directional.CascadeCount = count
	}
}

// WithOtherAtlas is an option builder that sets the spot/point atlas size and filter.
//
// Parameters:
//   - size: the atlas edge length in texels
//   - filter: the PCF filter mode
//
// Returns:
//   - SettingsBuilderOption: a function that applies the atlas option to Settings
func WithOtherAtlas(size int, filter FilterMode) SettingsBuilderOption {
	return func(s *Settings) {
		s.Other.AtlasSize = size
		s.Other.Filter = filter
	}
}

// WithShadowmaskMode is an option builder that sets how baked shadow masks are used.
func WithShadowmaskMode(mode ShadowmaskMode) SettingsBuilderOption {
	return func(s *Settings) {
		s.Shadowmask = mode
	}
}
