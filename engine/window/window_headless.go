package window

import (
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// headlessWindow is an offscreen platform with no surface. Events are injected by the owner
// and delivered on the next poll, the way a real event queue would.
type headlessWindow struct {
	mu *sync.Mutex

	parent    *engineWindow
	running   bool
	ratio     float32
	frames    int
	maxFrames int
	pending   []func()
}

var _ platformWindow = &headlessWindow{}

// HeadlessWindow is a Window without a display, used for offscreen rendering and tests.
// It closes itself after a fixed number of polls when created with a frame budget.
type HeadlessWindow struct {
	*engineWindow
	platform *headlessWindow
}

// NewHeadlessWindow creates an offscreen window.
//
// Parameters:
//   - maxFrames: number of PollEvents calls that succeed before the window closes, 0 for no limit
//   - options: functional options to configure the window size and pixel ratio
//
// Returns:
//   - *HeadlessWindow: the running window
func NewHeadlessWindow(maxFrames int, options ...WindowBuilderOption) *HeadlessWindow {
	w := defaultWindow()
	for _, opt := range options {
		opt(w)
	}
	hw := &headlessWindow{
		mu:        &sync.Mutex{},
		parent:    w,
		running:   true,
		ratio:     w.pixelRatio,
		maxFrames: max(0, maxFrames),
	}
	w.internalWindow = hw
	return &HeadlessWindow{engineWindow: w, platform: hw}
}

// Frames returns how many polls have succeeded.
func (h *HeadlessWindow) Frames() int {
	h.platform.mu.Lock()
	defer h.platform.mu.Unlock()
	return h.platform.frames
}

// Resize queues a resize to a logical size and pixel ratio.
func (h *HeadlessWindow) Resize(width, height int, pixelRatio float32) {
	h.platform.enqueue(func() {
		h.platform.mu.Lock()
		h.platform.ratio = pixelRatio
		h.platform.mu.Unlock()
		h.resized(width, height)
	})
}

// PressKey queues a key press and release.
func (h *HeadlessWindow) PressKey(keyCode uint32) {
	h.platform.enqueue(func() {
		if h.onKeyDown != nil {
			h.onKeyDown(keyCode)
		}
		if h.onKeyUp != nil {
			h.onKeyUp(keyCode)
		}
	})
}

// Scroll queues a wheel event.
func (h *HeadlessWindow) Scroll(delta float32) {
	h.platform.enqueue(func() {
		if h.onScroll != nil {
			h.onScroll(delta)
		}
	})
}

// Drag queues a press at from, a move to to and a release at to.
func (h *HeadlessWindow) Drag(button MouseButton, fromX, fromY, toX, toY int32) {
	h.platform.enqueue(func() {
		if h.onMouseDown != nil {
			h.onMouseDown(button, fromX, fromY)
		}
		if h.onMouseMove != nil {
			h.onMouseMove(toX, toY)
		}
		if h.onMouseUp != nil {
			h.onMouseUp(button, toX, toY)
		}
	})
}

func (hw *headlessWindow) enqueue(event func()) {
	hw.mu.Lock()
	defer hw.mu.Unlock()
	hw.pending = append(hw.pending, event)
}

func (hw *headlessWindow) pollEvents() bool {
	hw.mu.Lock()
	if !hw.running {
		hw.mu.Unlock()
		return false
	}
	if hw.maxFrames > 0 && hw.frames >= hw.maxFrames {
		hw.running = false
		hw.mu.Unlock()
		return false
	}
	hw.frames++
	events := hw.pending
	hw.pending = nil
	hw.mu.Unlock()

	for _, event := range events {
		event()
	}
	return true
}

func (hw *headlessWindow) isRunning() bool {
	hw.mu.Lock()
	defer hw.mu.Unlock()
	return hw.running
}

func (hw *headlessWindow) close() error {
	hw.mu.Lock()
	defer hw.mu.Unlock()
	hw.running = false
	return nil
}

func (hw *headlessWindow) surfaceDescriptor() *wgpu.SurfaceDescriptor {
	return nil
}

func (hw *headlessWindow) pixelRatio() float32 {
	hw.mu.Lock()
	defer hw.mu.Unlock()
	return hw.ratio
}

func (hw *headlessWindow) framebufferSize() (int, int) {
	ratio := hw.pixelRatio()
	return int(float32(hw.parent.width) * ratio), int(float32(hw.parent.height) * ratio)
}

func (hw *headlessWindow) setTitle(string) {}
