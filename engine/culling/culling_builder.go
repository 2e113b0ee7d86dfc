package culling

// SystemBuilderOption is a function that configures the culling system during construction.
type SystemBuilderOption func(*systemImpl)

// WithShadowDistance is an option builder that sets the camera distance covered by
// directional cascades.
//
// Parameters:
//   - d: the shadow distance in world units
//
// Returns:
//   - SystemBuilderOption: a function that applies the distance to the system
func WithShadowDistance(d float32) SystemBuilderOption {
	return func(s *systemImpl) {
		s.shadowDistance = d
	}
}

// WithWorkers is an option builder that sets the number of workers computing caster sets.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - SystemBuilderOption: a function that applies the worker count to the system
func WithWorkers(n int) SystemBuilderOption {
	return func(s *systemImpl) {
		s.workers = n
	}
}
