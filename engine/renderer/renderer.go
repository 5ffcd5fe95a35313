package renderer

import (
	"image"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-room/common"
	"github.com/Carmen-Shannon/oxy-room/engine/camera"
	"github.com/Carmen-Shannon/oxy-room/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// FrameStats describes the work done by the most recent Render call.
type FrameStats struct {
	Triangles int
	Points    int
	Bands     int
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	width, height int
	pixelRatio    float32
	clearColor    mgl32.Vec4

	workers int
	pool    worker.DynamicWorkerPool

	target *frameBuffer
	out    *image.RGBA
	stats  FrameStats
}

// Renderer rasterizes a scene into an RGBA image on the CPU.
// Triangles are depth tested with both faces visible; point sprites are depth tested
// without writing depth and blended additively. The color buffer is cleared to the
// clear color (transparent by default) every frame.
type Renderer interface {
	// SetSize sets the logical drawing size. The backing buffer is the size times the pixel ratio.
	//
	// Parameters:
	//   - width: logical width in pixels
	//   - height: logical height in pixels
	SetSize(width, height int)

	// Size returns the logical drawing size.
	//
	// Returns:
	//   - int: logical width
	//   - int: logical height
	Size() (int, int)

	// SetPixelRatio sets the device pixel ratio applied to the buffer size.
	//
	// Parameters:
	//   - ratio: the pixel ratio, values <= 0 are treated as 1
	SetPixelRatio(ratio float32)

	// PixelRatio returns the current device pixel ratio.
	PixelRatio() float32

	// BufferSize returns the size of the color buffer in device pixels.
	//
	// Returns:
	//   - int: buffer width
	//   - int: buffer height
	BufferSize() (int, int)

	// SetClearColor sets the straight-alpha color the buffer is cleared to.
	SetClearColor(c mgl32.Vec4)

	// Render draws every mesh node and point object in s as seen by cam.
	// The returned image is owned by the renderer and reused by the next call.
	//
	// Parameters:
	//   - s: the scene to draw
	//   - cam: the viewpoint
	//
	// Returns:
	//   - *image.RGBA: the premultiplied color buffer
	Render(s scene.Scene, cam camera.Camera) *image.RGBA

	// Stats returns the counters of the most recent frame.
	Stats() FrameStats
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer with the given options applied.
//
// Parameters:
//   - options: a variadic list of RendererBuilderOption functions
//
// Returns:
//   - Renderer: the configured renderer
func NewRenderer(options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:         &sync.Mutex{},
		width:      1,
		height:     1,
		pixelRatio: 1,
		workers:    runtime.NumCPU(),
	}

	for _, option := range options {
		option(r)
	}

	r.workers = max(1, r.workers)
	r.pool = worker.NewDynamicWorkerPool(r.workers, 256, 1*time.Second)
	return r
}

func (r *renderer) SetSize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.width = max(1, width)
	r.height = max(1, height)
}

func (r *renderer) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

func (r *renderer) SetPixelRatio(ratio float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ratio <= 0 {
		ratio = 1
	}
	r.pixelRatio = ratio
}

func (r *renderer) PixelRatio() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pixelRatio
}

func (r *renderer) BufferSize() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bufferSize()
}

func (r *renderer) bufferSize() (int, int) {
	return common.Sizes{Width: r.width, Height: r.height, PixelRatio: r.pixelRatio}.BufferSize()
}

func (r *renderer) SetClearColor(c mgl32.Vec4) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearColor = c
}

func (r *renderer) Stats() FrameStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

func (r *renderer) Render(s scene.Scene, cam camera.Camera) *image.RGBA {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, h := r.bufferSize()
	if r.target == nil || r.target.width != w || r.target.height != h {
		r.target = newFrameBuffer(w, h)
		r.out = image.NewRGBA(image.Rect(0, 0, w, h))
	}

	view := cam.ViewMatrix()
	proj := cam.ProjectionMatrix()
	tris := collectTriangles(s, proj.Mul4(view), w, h)
	sprites := collectSprites(s, view, proj, w, h)

	bands := r.bands(h)
	var wg sync.WaitGroup
	for i, b := range bands {
		wg.Add(1)
		band := b
		r.pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()

				r.target.clear(band, r.clearColor)
				for j := range tris {
					rasterizeTriangle(r.target, &tris[j], band)
				}
				for j := range sprites {
					rasterizeSprite(r.target, &sprites[j], band)
				}
				r.target.resolve(r.out, band)
				return nil, nil
			},
		})
	}
	wg.Wait()

	r.stats = FrameStats{Triangles: len(tris), Points: len(sprites), Bands: len(bands)}
	return r.out
}

// bands splits height rows into contiguous spans, a few per worker so uneven bands balance out.
func (r *renderer) bands(height int) []rowSpan {
	n := min(height, r.workers*2)
	spans := make([]rowSpan, 0, n)
	for i := range n {
		spans = append(spans, rowSpan{
			y0: height * i / n,
			y1: height * (i + 1) / n,
		})
	}
	return spans
}
