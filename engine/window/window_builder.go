package window

// WindowBuilderOption is a functional option for configuring an engineWindow.
// Use the With* functions to create options.
type WindowBuilderOption func(w *engineWindow)

// WithTitle sets the window title displayed in the title bar.
//
// Parameters:
//   - title: the window title text
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithTitle(title string) WindowBuilderOption {
	return func(w *engineWindow) {
		w.title = title
	}
}

// WithSizeLimits sets the range the user may resize the window within.
//
// Parameters:
//   - minWidth: minimum width
//   - minHeight: minimum height
//   - maxWidth: maximum width
//   - maxHeight: maximum height
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSizeLimits(minWidth, minHeight, maxWidth, maxHeight int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.minWidth, w.minHeight = minWidth, minHeight
		w.maxWidth, w.maxHeight = maxWidth, maxHeight
	}
}

// WithWidth sets the initial logical width.
//
// Parameters:
//   - width: initial width
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithWidth(width int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.width = width
	}
}

// WithHeight sets the initial logical height.
//
// Parameters:
//   - height: initial height
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithHeight(height int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.height = height
	}
}

// WithPixelRatio sets the pixel ratio a headless window reports. GLFW windows ignore it
// and report their real framebuffer density.
//
// Parameters:
//   - ratio: the device pixel ratio, ignored when <= 0
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithPixelRatio(ratio float32) WindowBuilderOption {
	return func(w *engineWindow) {
		if ratio > 0 {
			w.pixelRatio = ratio
		}
	}
}
