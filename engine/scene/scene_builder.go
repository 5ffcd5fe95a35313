package scene

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithName sets the scene identifier used in log output.
//
// Parameters:
//   - name: the scene name
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithName(name string) SceneBuilderOption {
	return func(s *scene) {
		s.name = name
	}
}

// WithNodes attaches initial model subtrees to the root.
//
// Parameters:
//   - nodes: the subtrees to attach
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithNodes(nodes ...*Node) SceneBuilderOption {
	return func(s *scene) {
		for _, n := range nodes {
			s.root.Add(n)
		}
	}
}

// WithPoints registers initial point-sprite objects.
//
// Parameters:
//   - points: the objects to register
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithPoints(points ...*Points) SceneBuilderOption {
	return func(s *scene) {
		s.points = append(s.points, points...)
	}
}
