package shadow

// ShadowsBuilderOption is a function that configures the shadow controller during construction.
type ShadowsBuilderOption func(*shadowsImpl)

// WithShaderProperties is an option builder that overrides shader property names.
// Empty fields keep their default names.
//
// Parameters:
//   - props: the property names to use
//
// Returns:
//   - ShadowsBuilderOption: a function that applies the property names to the controller
func WithShaderProperties(props ShaderProperties) ShadowsBuilderOption {
	return func(s *shadowsImpl) {
		s.properties = props.withDefaults()
	}
}

// WithPlatform is an option builder that describes the graphics backend's depth convention.
//
// Parameters:
//   - platform: the platform description
//
// Returns:
//   - ShadowsBuilderOption: a function that applies the platform to the controller
func WithPlatform(platform Platform) ShadowsBuilderOption {
	return func(s *shadowsImpl) {
		s.platform = platform
	}
}
