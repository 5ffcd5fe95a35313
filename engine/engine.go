package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math/rand/v2"
	"sync"
	"time"

	"fortio.org/log"
	"github.com/Carmen-Shannon/oxy-room/common"
	"github.com/Carmen-Shannon/oxy-room/engine/camera"
	"github.com/Carmen-Shannon/oxy-room/engine/clock"
	"github.com/Carmen-Shannon/oxy-room/engine/loader"
	"github.com/Carmen-Shannon/oxy-room/engine/material"
	"github.com/Carmen-Shannon/oxy-room/engine/particles"
	"github.com/Carmen-Shannon/oxy-room/engine/postprocessing"
	"github.com/Carmen-Shannon/oxy-room/engine/presenter"
	"github.com/Carmen-Shannon/oxy-room/engine/profiler"
	"github.com/Carmen-Shannon/oxy-room/engine/renderer"
	"github.com/Carmen-Shannon/oxy-room/engine/scene"
	"github.com/Carmen-Shannon/oxy-room/engine/window"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrNoWindow is returned by NewEngine when no window was supplied.
	ErrNoWindow = errors.New("engine: a window is required")

	// ErrAlreadyStarted is returned by Run when the engine has already run.
	ErrAlreadyStarted = errors.New("engine: already started")
)

// State is the lifecycle state of the render loop.
type State int

const (
	// StateIdle is the state before Run.
	StateIdle State = iota
	// StateRunning is the state while the loop is ticking.
	StateRunning
	// StateStopped is the terminal state after the loop returns.
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// BloomSettings are the bloom pass parameters, fixed for the session.
type BloomSettings struct {
	Threshold float32
	Strength  float32
	Radius    float32
}

// DefaultBloomSettings returns threshold 0.1, strength 0.4 and radius 1.
func DefaultBloomSettings() BloomSettings {
	return BloomSettings{
		Threshold: postprocessing.DefaultBloomThreshold,
		Strength:  postprocessing.DefaultBloomStrength,
		Radius:    postprocessing.DefaultBloomRadius,
	}
}

// dragState tracks the mouse button held down for orbit and pan.
type dragState struct {
	active bool
	button window.MouseButton
	x, y   int32
}

// engine implements the Engine interface.
// The loop, the resize handler, input handling and the asset hand-off all run on the goroutine that calls Run.
type engine struct {
	mu    *sync.Mutex
	state State
	ticks uint64

	quitChannel chan struct{}
	quitOnce    sync.Once

	window    window.Window
	scene     scene.Scene
	camera    camera.Camera
	renderer  renderer.Renderer
	composer  postprocessing.Composer
	bloomPass *postprocessing.BloomPass
	presenter presenter.Presenter
	binder    *material.Binder
	clock     *clock.Clock
	stopWatch *clock.StopWatch

	sizes         common.Sizes
	maxPixelRatio float32

	fireflies     *scene.Points
	fireflyCount  int
	fireflySize   float32
	fireflyRand   *rand.Rand
	noFireflies   bool
	bloom         BloomSettings
	bloomDisabled bool

	loader     loader.Loader
	modelURL   string
	textureURL string
	onProgress loader.ProgressFunc
	task       *loader.Task
	model      *scene.Node
	loadErr    error

	drag dragState

	profiler         *profiler.Profiler
	profilingEnabled bool

	tickCallback     func(deltaTime float32)
	frameCallback    func(frame *image.RGBA)
	renderFrameLimit time.Duration
	lastFrame        *image.RGBA
}

// Engine is the viewer's render loop.
// It owns the scene, the viewport sizes and the per-frame order: asset hand-off, clock, controls,
// compose, present.
type Engine interface {
	// Window returns the host window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Scene returns the scene drawn each frame.
	//
	// Returns:
	//   - scene.Scene: the scene
	Scene() scene.Scene

	// Camera returns the viewing camera.
	//
	// Returns:
	//   - camera.Camera: the camera
	Camera() camera.Camera

	// Clock returns the animation clock.
	//
	// Returns:
	//   - *clock.Clock: the clock advanced once per tick
	Clock() *clock.Clock

	// Binder returns the material binder applied to the loaded model.
	//
	// Returns:
	//   - *material.Binder: the binder
	Binder() *material.Binder

	// Fireflies returns the particle object, or nil when fireflies are disabled.
	//
	// Returns:
	//   - *scene.Points: the particle object
	Fireflies() *scene.Points

	// Sizes returns the current viewport sizes.
	//
	// Returns:
	//   - common.Sizes: width, height and clamped pixel ratio
	Sizes() common.Sizes

	// State returns the lifecycle state.
	//
	// Returns:
	//   - State: idle, running or stopped
	State() State

	// Ticks returns the number of completed frames.
	//
	// Returns:
	//   - uint64: the frame count
	Ticks() uint64

	// LastFrame returns the most recent composed frame, or nil before the first frame.
	//
	// Returns:
	//   - *image.RGBA: the frame
	LastFrame() *image.RGBA

	// Model returns the bound model once the asset task has resolved, or nil.
	//
	// Returns:
	//   - *scene.Node: the model root
	Model() *scene.Node

	// LoadError returns the asset load failure, or nil.
	//
	// Returns:
	//   - error: a *common.AssetLoadFailed
	LoadError() error

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickCallback registers the function called after each frame.
	//
	// Parameters:
	//   - callback: receives the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetFrameCallback registers the function that receives each composed frame.
	//
	// Parameters:
	//   - callback: receives the frame, which is reused by later frames
	SetFrameCallback(callback func(frame *image.RGBA))

	// SetRenderFrameLimit sets an optional frame rate cap in frames per second.
	// Pass 0 to rely on the presenter's pacing.
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Run starts the asset task and ticks until the window closes, Quit is called or ctx is done.
	// Run may be called once.
	//
	// Parameters:
	//   - ctx: cancels the loop and the asset task
	//
	// Returns:
	//   - error: ErrAlreadyStarted, or the error of a recovered panic
	Run(ctx context.Context) error

	// Quit signals the loop to stop. Safe to call multiple times.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates an Engine around a window.
// Missing collaborators are filled with defaults: an empty scene, a plain camera, a renderer using
// all cores, a binder over fresh materials, a composer with a render pass and a bloom pass, and a
// fireflies field added to the scene. The initial resize is applied before NewEngine returns.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the idle engine
//   - error: ErrNoWindow, or an error from the binder's name groups
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		mu:            &sync.Mutex{},
		state:         StateIdle,
		quitChannel:   make(chan struct{}),
		maxPixelRatio: common.DefaultMaxPixelRatio,
		fireflyCount:  particles.FirefliesCount,
		fireflySize:   particles.DefaultSize,
		bloom:         DefaultBloomSettings(),
		profiler:      profiler.NewProfiler(),
	}

	for _, opt := range options {
		opt(e)
	}

	if e.window == nil {
		return nil, ErrNoWindow
	}
	if e.scene == nil {
		e.scene = scene.NewScene(scene.WithName("room"))
	}
	if e.camera == nil {
		e.camera = camera.NewCamera()
	}
	if e.renderer == nil {
		e.renderer = renderer.NewRenderer()
	}
	if e.binder == nil {
		b, err := material.NewBinder(material.NewBaked(nil), material.NewCandle(), material.NewBubble(), material.NewDoor())
		if err != nil {
			return nil, fmt.Errorf("failed to create material binder: %w", err)
		}
		e.binder = b
	}
	if e.clock == nil {
		e.clock = clock.New()
	}
	if e.stopWatch == nil {
		e.stopWatch = clock.NewStopWatch()
	}

	e.sizes = e.currentSizes()
	if !e.noFireflies {
		e.fireflies = particles.NewFireflies(e.fireflyCount, e.sizes.PixelRatio, e.fireflySize, e.fireflyRand)
		e.scene.AddPoints(e.fireflies)
	}

	bw, bh := e.sizes.BufferSize()
	e.composer = postprocessing.NewComposer(e.sizes.Width, e.sizes.Height, e.sizes.PixelRatio)
	e.composer.AddPass(postprocessing.NewRenderPass(e.renderer, e.scene, e.camera))
	e.bloomPass = postprocessing.NewBloomPass(bw, bh, e.bloom.Strength, e.bloom.Radius, e.bloom.Threshold)
	e.bloomPass.SetEnabled(!e.bloomDisabled)
	e.composer.AddPass(e.bloomPass)

	e.window.SetResizeCallback(func(width, height int) {
		e.resize(width, height)
	})
	e.bindInput()
	e.resize(e.window.Width(), e.window.Height())

	return e, nil
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Scene() scene.Scene {
	return e.scene
}

func (e *engine) Camera() camera.Camera {
	return e.camera
}

func (e *engine) Clock() *clock.Clock {
	return e.clock
}

func (e *engine) Binder() *material.Binder {
	return e.binder
}

func (e *engine) Fireflies() *scene.Points {
	return e.fireflies
}

func (e *engine) Sizes() common.Sizes {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sizes
}

func (e *engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *engine) Ticks() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ticks
}

func (e *engine) LastFrame() *image.RGBA {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastFrame
}

func (e *engine) Model() *scene.Node {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.model
}

func (e *engine) LoadError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loadErr
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engine) SetFrameCallback(callback func(frame *image.RGBA)) {
	e.frameCallback = callback
}

// SetRenderFrameLimit sets an optional frame rate cap.
// Pass 0 to uncap the loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	e.renderFrameLimit = frameDuration(fps)
}

// Quit signals the loop to stop.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

func (e *engine) Run(ctx context.Context) (err error) {
	e.mu.Lock()
	if e.state != StateIdle {
		e.mu.Unlock()
		return ErrAlreadyStarted
	}
	e.state = StateRunning
	e.mu.Unlock()

	defer func() {
		// Recover from panics inside the loop to avoid crashing the whole process.
		if r := recover(); r != nil {
			log.Errf("render loop recovered from panic: %v", r)
			err = fmt.Errorf("render loop panic: %v", r)
		}
		e.mu.Lock()
		e.state = StateStopped
		e.mu.Unlock()
	}()

	if e.loader != nil && e.modelURL != "" {
		e.task = e.loader.Start(ctx, e.modelURL, e.textureURL, e.onProgress)
	}

	e.stopWatch.Reset()
	lastFrame := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-e.quitChannel:
			return nil
		default:
		}

		if !e.window.PollEvents() {
			return nil
		}

		now := time.Now()
		dt := float32(now.Sub(lastFrame).Seconds())
		lastFrame = now

		e.frame(dt)

		if e.renderFrameLimit > 0 {
			if remaining := e.renderFrameLimit - time.Since(now); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}
}

// frame runs one tick: asset hand-off, clock, controls, compose, present and callbacks.
func (e *engine) frame(dt float32) {
	e.pollTask()

	e.clock.Tick(e.stopWatch.Elapsed())
	e.clock.Apply(e.scene.Materials()...)

	if ctrl := e.camera.Controller(); ctrl != nil {
		ctrl.Update()
	}
	e.camera.Update()

	out := e.composer.Render()
	if e.presenter != nil && out != nil {
		if err := e.presenter.Present(out); err != nil {
			log.Warnf("failed to present frame: %v", err)
		}
	}

	e.mu.Lock()
	e.lastFrame = out
	e.ticks++
	e.mu.Unlock()

	if e.frameCallback != nil && out != nil {
		e.frameCallback(out)
	}
	if e.tickCallback != nil {
		e.tickCallback(dt)
	}
	if e.profilingEnabled && e.profiler != nil {
		stats := e.renderer.Stats()
		e.profiler.Tick(stats.Triangles, stats.Points)
	}
}

// pollTask binds and adds the loaded model once the asset task resolves. Failures are logged once.
// A missing model leaves only the particle field; a missing texture leaves the baked material untextured.
func (e *engine) pollTask() {
	if e.task == nil {
		return
	}
	res, done, err := e.task.Poll()
	if !done {
		return
	}
	e.task = nil

	if err != nil {
		log.Errf("%v", err)
		e.mu.Lock()
		e.loadErr = err
		e.mu.Unlock()
	}

	if res.Texture != nil {
		e.binder.Baked().Texture = res.Texture
	}
	if res.Model == nil {
		return
	}

	stats := e.binder.Bind(res.Model)
	e.scene.Add(res.Model)
	log.Infof("Bound %d nodes: %d baked, %d candle, %d bubble, %d door",
		stats.Visited, stats.ByKind[material.KindBaked], stats.ByKind[material.KindCandle],
		stats.ByKind[material.KindBubble], stats.ByKind[material.KindDoor])
	for _, name := range stats.Unmatched {
		log.Debugf("No node named %q in the model", name)
	}

	e.mu.Lock()
	e.model = res.Model
	e.mu.Unlock()
}

// currentSizes reads the window size and clamps its pixel ratio.
func (e *engine) currentSizes() common.Sizes {
	return common.Sizes{
		Width:      e.window.Width(),
		Height:     e.window.Height(),
		PixelRatio: common.ClampPixelRatio(e.window.PixelRatio(), e.maxPixelRatio),
	}
}

// resize propagates a new logical size to everything sized by the viewport.
// Zero sizes, as reported for a minimized window, are ignored.
func (e *engine) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}

	sizes := common.Sizes{
		Width:      width,
		Height:     height,
		PixelRatio: common.ClampPixelRatio(e.window.PixelRatio(), e.maxPixelRatio),
	}
	e.mu.Lock()
	e.sizes = sizes
	e.mu.Unlock()

	e.camera.SetAspect(sizes.Aspect())
	e.renderer.SetSize(width, height)
	e.renderer.SetPixelRatio(sizes.PixelRatio)
	e.composer.SetSize(width, height)
	e.composer.SetPixelRatio(sizes.PixelRatio)

	if e.fireflies != nil && e.fireflies.Material != nil {
		e.fireflies.Material.PixelRatio = sizes.PixelRatio
	}
	bw, bh := sizes.BufferSize()
	e.binder.Door().Resolution = mgl32.Vec2{float32(bw), float32(bh)}

	if e.presenter != nil {
		e.presenter.Resize(e.window.FramebufferSize())
	}
}

// bindInput wires the window's mouse, scroll and key events to the camera controller and profiler.
func (e *engine) bindInput() {
	e.window.SetMouseDownCallback(func(button window.MouseButton, x, y int32) {
		e.drag = dragState{active: true, button: button, x: x, y: y}
	})
	e.window.SetMouseUpCallback(func(button window.MouseButton, x, y int32) {
		if e.drag.button == button {
			e.drag.active = false
		}
	})
	e.window.SetMouseMoveCallback(func(x, y int32) {
		if !e.drag.active {
			return
		}
		dx, dy := float32(x-e.drag.x), float32(y-e.drag.y)
		e.drag.x, e.drag.y = x, y

		ctrl := e.camera.Controller()
		if ctrl == nil {
			return
		}
		height := e.Sizes().Height
		switch e.drag.button {
		case window.MouseButtonLeft:
			ctrl.RotatePixels(dx, dy, height)
		case window.MouseButtonRight:
			ctrl.PanPixels(dx, dy, height, e.camera.Fov())
		}
	})
	e.window.SetScrollCallback(func(delta float32) {
		if ctrl := e.camera.Controller(); ctrl != nil {
			ctrl.Zoom(delta)
		}
	})
	e.window.SetKeyDownCallback(func(keyCode uint32) {
		switch keyCode {
		case common.KeyR:
			if ctrl := e.camera.Controller(); ctrl != nil {
				ctrl.Reset()
			}
		case common.KeyP:
			e.profilingEnabled = !e.profilingEnabled
			log.Infof("Profiler enabled: %v", e.profilingEnabled)
		}
	})
}

// frameDuration converts a frame rate cap to a minimum frame duration, 0 for uncapped.
func frameDuration(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}
