package window

import (
	"errors"

	"github.com/cogentcore/webgpu/wgpu"
)

var errNotInitialized = errors.New("window is not initialized")

// MouseButton identifies a mouse button in press and release callbacks.
type MouseButton int

const (
	// MouseButtonLeft is the primary button.
	MouseButtonLeft MouseButton = iota
	// MouseButtonRight is the secondary button.
	MouseButtonRight
	// MouseButtonMiddle is the wheel button.
	MouseButtonMiddle
)

// Window provides platform windowing and input event handling.
// Wraps platform-specific window implementations with a common interface.
// Sizes are logical window units; PixelRatio maps them to framebuffer pixels.
type Window interface {
	// SetResizeCallback sets the function called when the window is resized.
	//
	// Parameters:
	//   - callback: function receiving the new logical width and height
	SetResizeCallback(callback func(width, height int))

	// SetScrollCallback sets the callback for mouse scroll wheel events.
	//
	// Parameters:
	//   - callback: function receiving scroll delta (positive = up/zoom in, negative = down/zoom out)
	SetScrollCallback(callback func(delta float32))

	// SetKeyDownCallback sets the callback for key press events.
	//
	// Parameters:
	//   - callback: function receiving the virtual key code
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetKeyUpCallback sets the callback for key release events.
	//
	// Parameters:
	//   - callback: function receiving the virtual key code
	SetKeyUpCallback(callback func(keyCode uint32))

	// SetMouseDownCallback sets the callback for mouse button press.
	//
	// Parameters:
	//   - callback: function receiving the button and mouse x, y position
	SetMouseDownCallback(callback func(button MouseButton, x, y int32))

	// SetMouseUpCallback sets the callback for mouse button release.
	//
	// Parameters:
	//   - callback: function receiving the button and mouse x, y position
	SetMouseUpCallback(callback func(button MouseButton, x, y int32))

	// SetMouseMoveCallback sets the callback for mouse movement.
	//
	// Parameters:
	//   - callback: function receiving mouse x, y position
	SetMouseMoveCallback(callback func(x, y int32))

	// SetTitle changes the title bar text.
	SetTitle(title string)

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil for headless windows
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// PollEvents dispatches pending input and resize events without blocking.
	//
	// Returns:
	//   - bool: false once the window has been asked to close
	PollEvents() bool

	// Width returns the current logical width.
	//
	// Returns:
	//   - int: width in window units
	Width() int

	// Height returns the current logical height.
	//
	// Returns:
	//   - int: height in window units
	Height() int

	// PixelRatio returns framebuffer pixels per window unit.
	//
	// Returns:
	//   - float32: the device pixel ratio, at least 1 for a visible window
	PixelRatio() float32

	// FramebufferSize returns the drawable size in pixels.
	//
	// Returns:
	//   - int: framebuffer width
	//   - int: framebuffer height
	FramebufferSize() (int, int)
}

// platformWindow is the backend behind an engineWindow.
type platformWindow interface {
	pollEvents() bool
	isRunning() bool
	close() error
	surfaceDescriptor() *wgpu.SurfaceDescriptor
	pixelRatio() float32
	framebufferSize() (int, int)
	setTitle(title string)
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, platform state, and event callbacks.
type engineWindow struct {
	// title is the window title displayed in the title bar.
	title string

	// maxWidth is the maximum allowed window width during resize.
	maxWidth int

	// maxHeight is the maximum allowed window height during resize.
	maxHeight int

	// minWidth is the minimum allowed window width during resize.
	minWidth int

	// minHeight is the minimum allowed window height during resize.
	minHeight int

	// width is the current logical width.
	width int

	// height is the current logical height.
	height int

	// pixelRatio is the initial pixel ratio of headless windows.
	pixelRatio float32

	// internalWindow holds the platform-specific window data.
	internalWindow platformWindow

	onResize    func(width, height int)
	onScroll    func(delta float32)
	onKeyDown   func(keyCode uint32)
	onKeyUp     func(keyCode uint32)
	onMouseDown func(button MouseButton, x, y int32)
	onMouseUp   func(button MouseButton, x, y int32)
	onMouseMove func(x, y int32)
}

var _ Window = &engineWindow{}

func defaultWindow() *engineWindow {
	return &engineWindow{
		title:      "Room",
		maxWidth:   3840,
		maxHeight:  2160,
		minWidth:   320,
		minHeight:  200,
		width:      1280,
		height:     720,
		pixelRatio: 1,
	}
}

// NewWindow creates and shows a GLFW window with the specified options.
// Applies default values first, then each option in order.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the visible window
//   - error: error if GLFW or the window could not be initialized
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := defaultWindow()
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetScrollCallback(callback func(delta float32)) {
	w.onScroll = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.onKeyDown = callback
}

func (w *engineWindow) SetKeyUpCallback(callback func(keyCode uint32)) {
	w.onKeyUp = callback
}

func (w *engineWindow) SetMouseDownCallback(callback func(button MouseButton, x, y int32)) {
	w.onMouseDown = callback
}

func (w *engineWindow) SetMouseUpCallback(callback func(button MouseButton, x, y int32)) {
	w.onMouseUp = callback
}

func (w *engineWindow) SetMouseMoveCallback(callback func(x, y int32)) {
	w.onMouseMove = callback
}

func (w *engineWindow) SetTitle(title string) {
	w.title = title
	if w.internalWindow != nil {
		w.internalWindow.setTitle(title)
	}
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	if w.internalWindow == nil {
		return nil
	}
	return w.internalWindow.surfaceDescriptor()
}

func (w *engineWindow) IsRunning() bool {
	return w.internalWindow != nil && w.internalWindow.isRunning()
}

func (w *engineWindow) Close() error {
	if w.internalWindow == nil {
		return errNotInitialized
	}
	return w.internalWindow.close()
}

func (w *engineWindow) PollEvents() bool {
	if w.internalWindow == nil {
		return false
	}
	return w.internalWindow.pollEvents()
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}

func (w *engineWindow) PixelRatio() float32 {
	if w.internalWindow == nil {
		return 1
	}
	return w.internalWindow.pixelRatio()
}

func (w *engineWindow) FramebufferSize() (int, int) {
	if w.internalWindow == nil {
		return 0, 0
	}
	return w.internalWindow.framebufferSize()
}

// resized stores a new logical size and notifies the resize callback.
func (w *engineWindow) resized(width, height int) {
	w.width = width
	w.height = height
	if w.onResize != nil {
		w.onResize(width, height)
	}
}
