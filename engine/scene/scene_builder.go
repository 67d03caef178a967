package scene

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithActive sets whether the scene is active for rendering.
//
// Parameters:
//   - active: whether the scene is active
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active = active
	}
}

// WithTimeScale sets the multiplier applied to frame delta times before they
// accumulate into the scene time passed to the kernel. Values below 1 slow the
// animation of time-driven shading, 0 freezes it. Default is 1.
//
// Parameters:
//   - scale: the time scale multiplier
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithTimeScale(scale float32) SceneBuilderOption {
	return func(s *scene) {
		s.timeScale = scale
	}
}
