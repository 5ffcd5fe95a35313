package postprocessing

import (
	"image"
	"image/color"
	"testing"

	"github.com/Carmen-Shannon/oxy-room/engine/camera"
	"github.com/Carmen-Shannon/oxy-room/engine/renderer"
	"github.com/Carmen-Shannon/oxy-room/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPass struct {
	width, height int
	calls         int
	disabled      bool
	fill          color.RGBA
}

func (p *recordingPass) SetSize(width, height int) { p.width, p.height = width, height }
func (p *recordingPass) Enabled() bool             { return !p.disabled }

func (p *recordingPass) Render(input *image.RGBA) *image.RGBA {
	p.calls++
	img := image.NewRGBA(image.Rect(0, 0, p.width, p.height))
	for y := range p.height {
		for x := range p.width {
			img.SetRGBA(x, y, p.fill)
		}
	}
	return img
}

func filled(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestComposer_SizesPasses(t *testing.T) {
	c := NewComposer(100, 50, 2)
	p := &recordingPass{}
	c.AddPass(p)
	assert.Equal(t, 200, p.width)
	assert.Equal(t, 100, p.height)

	c.SetSize(40, 30)
	assert.Equal(t, 80, p.width)
	assert.Equal(t, 60, p.height)

	c.SetPixelRatio(1)
	w, h := c.BufferSize()
	assert.Equal(t, 40, w)
	assert.Equal(t, 30, h)
	assert.Equal(t, 40, p.width)
}

func TestComposer_RendersEnabledPassesInOrder(t *testing.T) {
	c := NewComposer(4, 4, 1)
	first := &recordingPass{fill: color.RGBA{R: 255, A: 255}}
	skipped := &recordingPass{fill: color.RGBA{G: 255, A: 255}, disabled: true}
	last := &recordingPass{fill: color.RGBA{B: 255, A: 255}}
	c.AddPass(first)
	c.AddPass(skipped)
	c.AddPass(last)

	out := c.Render()
	require.NotNil(t, out)
	assert.Equal(t, color.RGBA{B: 255, A: 255}, out.RGBAAt(1, 1))
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 0, skipped.calls)
	assert.Len(t, c.Passes(), 3)

	assert.Nil(t, NewComposer(1, 1, 1).Render())
}

func TestRenderPass_DrawsScene(t *testing.T) {
	r := renderer.NewRenderer(renderer.WithSize(8, 6), renderer.WithWorkers(1))
	c := NewComposer(8, 6, 1)
	c.AddPass(NewRenderPass(r, scene.NewScene(), camera.NewCamera()))

	out := c.Render()
	require.NotNil(t, out)
	assert.Equal(t, image.Rect(0, 0, 8, 6), out.Bounds())
}

func TestBloomPass_LevelFactors(t *testing.T) {
	p := NewBloomPass(1, 1, 0.4, 1, 0.1)
	want := [5]float32{0.08, 0.16, 0.24, 0.32, 0.4}
	got := p.LevelFactors()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-6)
	}

	p.Radius, p.Strength = 0, 1
	got = p.LevelFactors()
	assert.InDelta(t, 1.0, got[0], 1e-6)
	assert.InDelta(t, 0.2, got[4], 1e-6)
}

func TestBloomPass_BelowThresholdUnchanged(t *testing.T) {
	p := NewBloomPass(32, 32, DefaultBloomStrength, DefaultBloomRadius, DefaultBloomThreshold)

	dim := filled(32, 32, color.RGBA{R: 20, G: 20, B: 20, A: 255})
	assert.Equal(t, dim.Pix, p.Render(dim).Pix)

	empty := image.NewRGBA(image.Rect(0, 0, 32, 32))
	assert.Equal(t, empty.Pix, p.Render(empty).Pix)
	assert.Nil(t, p.Render(nil))
}

func TestBloomPass_BrightRegionSpreads(t *testing.T) {
	const size = 64
	img := filled(size, size, color.RGBA{A: 255})
	for y := 24; y < 40; y++ {
		for x := 24; x < 40; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
	before := img.RGBAAt(44, 32)
	require.Equal(t, uint8(0), before.R)

	p := NewBloomPass(size, size, DefaultBloomStrength, DefaultBloomRadius, DefaultBloomThreshold)
	out := p.Render(img)

	assert.Greater(t, out.RGBAAt(44, 32).R, uint8(0), "glow reaches past the bright edge")
	assert.Equal(t, uint8(255), out.RGBAAt(32, 32).R)
	assert.Equal(t, uint8(255), out.RGBAAt(44, 32).A)
	assert.Equal(t, uint8(0), img.RGBAAt(44, 32).R, "input is not modified")
}

func TestBloomPass_LevelsFollowSetSize(t *testing.T) {
	p := NewBloomPass(0, 0, 1, 1, 0.1)
	w, h := p.levelSize(0, 40, 20)
	assert.Equal(t, []int{20, 10}, []int{w, h}, "falls back to the input size")

	p.SetSize(256, 128)
	w, h = p.levelSize(0, 40, 20)
	assert.Equal(t, []int{128, 64}, []int{w, h})
	w, h = p.levelSize(4, 40, 20)
	assert.Equal(t, []int{8, 4}, []int{w, h})

	p.SetSize(4, 4)
	w, h = p.levelSize(4, 40, 20)
	assert.Equal(t, []int{1, 1}, []int{w, h})

	img := filled(40, 20, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	assert.Equal(t, img.Bounds(), p.Render(img).Bounds(), "output keeps the input size")
}

func TestBloomPass_Disabled(t *testing.T) {
	c := NewComposer(8, 8, 1)
	src := &recordingPass{fill: color.RGBA{R: 255, G: 255, B: 255, A: 255}}
	bloom := NewBloomPass(8, 8, 1, 1, 0.1)
	bloom.SetEnabled(false)
	c.AddPass(src)
	c.AddPass(bloom)

	w, h := bloom.Size()
	assert.Equal(t, 8, w)
	assert.Equal(t, 8, h)
	assert.False(t, bloom.Enabled())
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, c.Render().RGBAAt(0, 0))
}
