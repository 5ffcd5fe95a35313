package material

import (
	"image"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Encoding names the color space of a texture's stored pixels.
type Encoding int

const (
	// EncodingSRGB marks display-referred pixels, the encoding of the baked lightmap.
	EncodingSRGB Encoding = iota
	// EncodingLinear marks linear pixels.
	EncodingLinear
)

// Texture is a CPU-side image sampled by materials with bilinear filtering and repeat wrapping.
// With FlipY false, uv (0, 0) addresses the top-left pixel, which matches glTF texture coordinates.
type Texture struct {
	Name     string
	Image    *image.RGBA
	FlipY    bool
	Encoding Encoding
}

// NewTexture wraps img as an sRGB texture with FlipY disabled.
func NewTexture(name string, img *image.RGBA) *Texture {
	return &Texture{Name: name, Image: img, Encoding: EncodingSRGB}
}

// Size returns the texture dimensions in pixels.
func (t *Texture) Size() (int, int) {
	if t == nil || t.Image == nil {
		return 0, 0
	}
	b := t.Image.Bounds()
	return b.Dx(), b.Dy()
}

// Sample returns the bilinearly filtered color at uv as straight-alpha RGBA in [0, 1].
//
// Parameters:
//   - uv: texture coordinate, wrapped into [0, 1)
//
// Returns:
//   - mgl32.Vec4: the filtered color
func (t *Texture) Sample(uv mgl32.Vec2) mgl32.Vec4 {
	w, h := t.Size()
	if w == 0 || h == 0 {
		return missingTexture
	}

	u := wrap(uv.X())
	v := wrap(uv.Y())
	if t.FlipY {
		v = 1 - v
	}

	x := u*float32(w) - 0.5
	y := v*float32(h) - 0.5
	x0 := int(math.Floor(float64(x)))
	y0 := int(math.Floor(float64(y)))
	fx := x - float32(x0)
	fy := y - float32(y0)

	c00 := t.texel(x0, y0, w, h)
	c10 := t.texel(x0+1, y0, w, h)
	c01 := t.texel(x0, y0+1, w, h)
	c11 := t.texel(x0+1, y0+1, w, h)

	top := c00.Mul(1 - fx).Add(c10.Mul(fx))
	bottom := c01.Mul(1 - fx).Add(c11.Mul(fx))
	return top.Mul(1 - fy).Add(bottom.Mul(fy))
}

func (t *Texture) texel(x, y, w, h int) mgl32.Vec4 {
	x = ((x % w) + w) % w
	y = ((y % h) + h) % h
	i := t.Image.PixOffset(x, y)
	p := t.Image.Pix[i : i+4 : i+4]
	a := float32(p[3])
	if a == 0 {
		return mgl32.Vec4{}
	}
	// image.RGBA is premultiplied; materials work with straight alpha.
	return mgl32.Vec4{float32(p[0]) / a, float32(p[1]) / a, float32(p[2]) / a, a / 255}
}

func wrap(f float32) float32 {
	f -= float32(math.Floor(float64(f)))
	if f >= 1 {
		return 0
	}
	return f
}
