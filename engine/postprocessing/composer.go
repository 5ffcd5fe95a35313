// Package postprocessing chains full-frame passes after the scene is rasterized.
package postprocessing

import (
	"image"
	"sync"

	"github.com/Carmen-Shannon/oxy-room/common"
)

// Pass is one stage of the post-processing chain.
type Pass interface {
	// SetSize is called with the buffer size in device pixels whenever the composer is resized.
	SetSize(width, height int)

	// Render consumes the previous pass's output and returns this pass's output.
	// The first pass receives nil.
	//
	// Parameters:
	//   - input: the frame so far, or nil
	//
	// Returns:
	//   - *image.RGBA: the processed frame
	Render(input *image.RGBA) *image.RGBA

	// Enabled reports whether the pass takes part in Render.
	Enabled() bool
}

// composer is the implementation of the Composer interface.
type composer struct {
	mu *sync.Mutex

	sizes  common.Sizes
	passes []Pass
}

// Composer runs its passes in order and returns the last output.
type Composer interface {
	// AddPass appends a pass and sizes it to the current buffer size.
	//
	// Parameters:
	//   - p: the pass to append
	AddPass(p Pass)

	// Passes returns a copy of the pass list.
	Passes() []Pass

	// SetSize sets the logical size; passes receive the size times the pixel ratio.
	//
	// Parameters:
	//   - width: logical width
	//   - height: logical height
	SetSize(width, height int)

	// SetPixelRatio sets the device pixel ratio and resizes every pass.
	//
	// Parameters:
	//   - ratio: the pixel ratio, values <= 0 are treated as 1
	SetPixelRatio(ratio float32)

	// BufferSize returns the size passes render at.
	BufferSize() (int, int)

	// Render runs every enabled pass in order.
	//
	// Returns:
	//   - *image.RGBA: the output of the last enabled pass, or nil if none ran
	Render() *image.RGBA
}

var _ Composer = &composer{}

// NewComposer creates a composer for a logical size and pixel ratio.
//
// Parameters:
//   - width: logical width
//   - height: logical height
//   - pixelRatio: the device pixel ratio
//
// Returns:
//   - Composer: an empty composer
func NewComposer(width, height int, pixelRatio float32) Composer {
	if pixelRatio <= 0 {
		pixelRatio = 1
	}
	return &composer{
		mu:    &sync.Mutex{},
		sizes: common.Sizes{Width: width, Height: height, PixelRatio: pixelRatio},
	}
}

func (c *composer) AddPass(p Pass) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.passes = append(c.passes, p)
	p.SetSize(c.sizes.BufferSize())
}

func (c *composer) Passes() []Pass {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Pass(nil), c.passes...)
}

func (c *composer) SetSize(width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sizes.Width, c.sizes.Height = width, height
	c.resizePasses()
}

func (c *composer) SetPixelRatio(ratio float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ratio <= 0 {
		ratio = 1
	}
	c.sizes.PixelRatio = ratio
	c.resizePasses()
}

func (c *composer) resizePasses() {
	w, h := c.sizes.BufferSize()
	for _, p := range c.passes {
		p.SetSize(w, h)
	}
}

func (c *composer) BufferSize() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sizes.BufferSize()
}

func (c *composer) Render() *image.RGBA {
	c.mu.Lock()
	passes := append([]Pass(nil), c.passes...)
	c.mu.Unlock()

	var frame *image.RGBA
	for _, p := range passes {
		if !p.Enabled() {
			continue
		}
		frame = p.Render(frame)
	}
	return frame
}
