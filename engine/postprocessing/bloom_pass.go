package postprocessing

import (
	"image"

	"github.com/Carmen-Shannon/oxy-room/common"
	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/transform"
)

const (
	// DefaultBloomThreshold is the luminance above which pixels bloom.
	DefaultBloomThreshold float32 = 0.1
	// DefaultBloomStrength scales the summed glow.
	DefaultBloomStrength float32 = 0.4
	// DefaultBloomRadius shifts weight from the sharp levels to the wide ones.
	DefaultBloomRadius float32 = 1.0

	highPassSmoothWidth float32 = 0.01
)

var (
	bloomKernelRadii = [...]float64{3, 5, 7, 9, 11}
	bloomFactors     = [...]float32{1.0, 0.8, 0.6, 0.4, 0.2}
	lumaCoefficients = [3]float32{0.299, 0.587, 0.114}
)

// BloomPass adds a soft glow around bright pixels. It keeps a luminance high-pass of the input,
// blurs it at five successively halved resolutions and adds the weighted sum back onto the input.
// The blur levels are sized from the buffer size given to SetSize, halving per level, and
// upsampled onto the input. Threshold, Strength and Radius may be changed between frames.
type BloomPass struct {
	Threshold float32
	Strength  float32
	Radius    float32

	width, height int
	disabled      bool
}

var _ Pass = &BloomPass{}

// NewBloomPass creates a bloom pass for a buffer size.
//
// Parameters:
//   - width: buffer width in device pixels
//   - height: buffer height in device pixels
//   - strength: glow multiplier
//   - radius: in [0, 1], blends the level weights toward the wide levels
//   - threshold: luminance cutoff in [0, 1]
//
// Returns:
//   - *BloomPass: the pass
func NewBloomPass(width, height int, strength, radius, threshold float32) *BloomPass {
	return &BloomPass{
		Threshold: threshold,
		Strength:  strength,
		Radius:    radius,
		width:     width,
		height:    height,
	}
}

func (p *BloomPass) SetSize(width, height int) {
	p.width, p.height = width, height
}

// Size returns the buffer size the pass was last given.
func (p *BloomPass) Size() (int, int) {
	return p.width, p.height
}

func (p *BloomPass) Enabled() bool {
	return !p.disabled
}

// SetEnabled toggles the pass.
func (p *BloomPass) SetEnabled(enabled bool) {
	p.disabled = !enabled
}

// levelSize returns the size of blur level i. Levels halve the SetSize buffer size, or the
// input size when no size has been set.
func (p *BloomPass) levelSize(i, inputW, inputH int) (int, int) {
	w, h := inputW, inputH
	if p.width > 0 && p.height > 0 {
		w, h = p.width, p.height
	}
	return max(1, w>>(i+1)), max(1, h>>(i+1))
}

// LevelFactors returns the weight of each blur level for the current Radius and Strength.
func (p *BloomPass) LevelFactors() [len(bloomFactors)]float32 {
	var out [len(bloomFactors)]float32
	for i, f := range bloomFactors {
		out[i] = common.Lerp(f, 1.2-f, p.Radius) * p.Strength
	}
	return out
}

func (p *BloomPass) Render(input *image.RGBA) *image.RGBA {
	if input == nil {
		return nil
	}
	bounds := input.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return input
	}

	bright, lit := highPass(input, p.Threshold)
	if !lit {
		return input
	}

	acc := make([]float32, w*h*3)
	src := bright
	for i, factor := range p.LevelFactors() {
		lw, lh := p.levelSize(i, w, h)
		src = blur.Gaussian(transform.Resize(src, lw, lh, transform.Linear), bloomKernelRadii[i])
		if factor == 0 {
			continue
		}

		up := transform.Resize(src, w, h, transform.Linear)
		for y := range h {
			row := up.Pix[y*up.Stride:]
			for x := range w {
				o := (y*w + x) * 3
				acc[o] += float32(row[x*4]) * factor
				acc[o+1] += float32(row[x*4+1]) * factor
				acc[o+2] += float32(row[x*4+2]) * factor
			}
		}
	}

	out := clone.AsRGBA(input)
	for y := range h {
		row := out.Pix[y*out.Stride:]
		for x := range w {
			o := (y*w + x) * 3
			px := row[x*4 : x*4+4 : x*4+4]
			px[0] = addClamped(px[0], acc[o])
			px[1] = addClamped(px[1], acc[o+1])
			px[2] = addClamped(px[2], acc[o+2])
			px[3] = max(px[3], px[0], px[1], px[2])
		}
	}
	return out
}

// highPass keeps pixels whose luminance exceeds threshold, fading them in over a narrow band.
// The second result is false when nothing passes.
func highPass(img *image.RGBA, threshold float32) (*image.RGBA, bool) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	passed := false

	for y := range h {
		src := img.Pix[img.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
		dst := out.Pix[y*out.Stride:]
		for x := range w {
			r, g, b, a := src[x*4], src[x*4+1], src[x*4+2], src[x*4+3]
			luma := (lumaCoefficients[0]*float32(r) + lumaCoefficients[1]*float32(g) + lumaCoefficients[2]*float32(b)) / 255
			k := common.Smoothstep(threshold, threshold+highPassSmoothWidth, luma)
			if k <= 0 {
				continue
			}
			passed = true
			dst[x*4] = uint8(float32(r)*k + 0.5)
			dst[x*4+1] = uint8(float32(g)*k + 0.5)
			dst[x*4+2] = uint8(float32(b)*k + 0.5)
			dst[x*4+3] = uint8(float32(a)*k + 0.5)
		}
	}
	return out, passed
}

func addClamped(v uint8, add float32) uint8 {
	return uint8(min(255, float32(v)+add+0.5))
}
