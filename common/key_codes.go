package common

// Key codes understood by the viewer's keyboard shortcuts.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyP   = 80  // P key (ASCII), toggles the profiler
	KeyR   = 82  // R key (ASCII), resets the camera
	KeyEsc = 256 // Escape key (GLFW)
)
