package presenter

// PresenterBuilderOption is a functional option for configuring a Presenter.
type PresenterBuilderOption func(*presenter)

// WithPresentMode sets the initial present mode. Defaults to PresentModeVSync.
//
// Parameters:
//   - mode: the PresentMode to use
//
// Returns:
//   - PresenterBuilderOption: option function to apply
func WithPresentMode(mode PresentMode) PresenterBuilderOption {
	return func(p *presenter) {
		p.presentMode = toWGPUPresentMode(mode)
	}
}

// WithForceFallbackAdapter requests the software fallback adapter.
//
// Parameters:
//   - force: true to force the fallback adapter
//
// Returns:
//   - PresenterBuilderOption: option function to apply
func WithForceFallbackAdapter(force bool) PresenterBuilderOption {
	return func(p *presenter) {
		p.forceFallbackAdapter = force
	}
}
