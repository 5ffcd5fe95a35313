package engine

import (
	"math/rand/v2"

	"github.com/Carmen-Shannon/oxy-room/engine/camera"
	"github.com/Carmen-Shannon/oxy-room/engine/clock"
	"github.com/Carmen-Shannon/oxy-room/engine/loader"
	"github.com/Carmen-Shannon/oxy-room/engine/material"
	"github.com/Carmen-Shannon/oxy-room/engine/presenter"
	"github.com/Carmen-Shannon/oxy-room/engine/renderer"
	"github.com/Carmen-Shannon/oxy-room/engine/scene"
	"github.com/Carmen-Shannon/oxy-room/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithWindow sets the host window. It is the only required option.
//
// Parameters:
//   - w: a glfw or headless Window
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithScene sets the scene the loaded model and fireflies are added to.
//
// Parameters:
//   - s: the Scene to draw
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScene(s scene.Scene) EngineBuilderOption {
	return func(e *engine) {
		e.scene = s
	}
}

// WithCamera sets the viewing camera. Attach an orbit controller to enable mouse controls.
//
// Parameters:
//   - c: the Camera
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCamera(c camera.Camera) EngineBuilderOption {
	return func(e *engine) {
		e.camera = c
	}
}

// WithRenderer sets the rasterizer. The engine sizes it on every resize.
//
// Parameters:
//   - r: the Renderer
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithBinder sets the material binder applied to the loaded model.
//
// Parameters:
//   - b: the Binder
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithBinder(b *material.Binder) EngineBuilderOption {
	return func(e *engine) {
		e.binder = b
	}
}

// WithLoader starts a background load of the model and baked texture when Run begins.
//
// Parameters:
//   - l: the Loader
//   - modelURL: the GLB or glTF location
//   - textureURL: the baked texture location
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLoader(l loader.Loader, modelURL, textureURL string) EngineBuilderOption {
	return func(e *engine) {
		e.loader = l
		e.modelURL = modelURL
		e.textureURL = textureURL
	}
}

// WithProgress sets the callback receiving model download progress.
//
// Parameters:
//   - fn: receives bytes loaded and total, total is -1 when unknown
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProgress(fn loader.ProgressFunc) EngineBuilderOption {
	return func(e *engine) {
		e.onProgress = fn
	}
}

// WithFireflies configures the particle field.
//
// Parameters:
//   - count: number of particles, 0 disables the field
//   - size: the sprite size uniform
//   - rng: random source, nil for the package source
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFireflies(count int, size float32, rng *rand.Rand) EngineBuilderOption {
	return func(e *engine) {
		e.fireflyCount = count
		e.fireflySize = size
		e.fireflyRand = rng
		e.noFireflies = count <= 0
	}
}

// WithBloom sets the bloom pass parameters.
//
// Parameters:
//   - settings: threshold, strength and radius
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithBloom(settings BloomSettings) EngineBuilderOption {
	return func(e *engine) {
		e.bloom = settings
	}
}

// WithBloomDisabled turns the bloom pass off.
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithBloomDisabled() EngineBuilderOption {
	return func(e *engine) {
		e.bloomDisabled = true
	}
}

// WithPresenter sets the presenter that receives each composed frame. Without one the engine
// renders offscreen.
//
// Parameters:
//   - p: the Presenter
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithPresenter(p presenter.Presenter) EngineBuilderOption {
	return func(e *engine) {
		e.presenter = p
	}
}

// WithMaxPixelRatio caps the device pixel ratio used for render buffers.
//
// Parameters:
//   - limit: the cap, values <= 0 keep the default of 2
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithMaxPixelRatio(limit float32) EngineBuilderOption {
	return func(e *engine) {
		if limit > 0 {
			e.maxPixelRatio = limit
		}
	}
}

// WithClock sets the animation clock and the stopwatch feeding the fireflies time.
//
// Parameters:
//   - c: the Clock
//   - sw: the StopWatch, nil for wall-clock time
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithClock(c *clock.Clock, sw *clock.StopWatch) EngineBuilderOption {
	return func(e *engine) {
		e.clock = c
		e.stopWatch = sw
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per second.
// Pass 0 to uncap the render loop (default).
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.renderFrameLimit = frameDuration(fps)
	}
}
