package renderer

import "github.com/go-gl/mathgl/mgl32"

// RendererBuilderOption is a functional option for configuring a Renderer.
type RendererBuilderOption func(*renderer)

// WithSize sets the initial logical drawing size.
//
// Parameters:
//   - width: logical width in pixels
//   - height: logical height in pixels
//
// Returns:
//   - RendererBuilderOption: option function to apply
func WithSize(width, height int) RendererBuilderOption {
	return func(r *renderer) {
		r.width = max(1, width)
		r.height = max(1, height)
	}
}

// WithPixelRatio sets the initial device pixel ratio.
//
// Parameters:
//   - ratio: the pixel ratio, ignored when <= 0
//
// Returns:
//   - RendererBuilderOption: option function to apply
func WithPixelRatio(ratio float32) RendererBuilderOption {
	return func(r *renderer) {
		if ratio > 0 {
			r.pixelRatio = ratio
		}
	}
}

// WithWorkers sets how many pooled goroutines rasterize row bands in parallel.
// Defaults to runtime.NumCPU().
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - RendererBuilderOption: option function to apply
func WithWorkers(n int) RendererBuilderOption {
	return func(r *renderer) {
		r.workers = n
	}
}

// WithClearColor sets the straight-alpha clear color. Defaults to transparent black.
//
// Parameters:
//   - c: the clear color
//
// Returns:
//   - RendererBuilderOption: option function to apply
func WithClearColor(c mgl32.Vec4) RendererBuilderOption {
	return func(r *renderer) {
		r.clearColor = c
	}
}
