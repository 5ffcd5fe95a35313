package renderer

import (
	"image"

	"github.com/Carmen-Shannon/oxy-room/engine/material"
	"github.com/go-gl/mathgl/mgl32"
)

// rowSpan is a half-open range of buffer rows [y0, y1) owned by one worker.
type rowSpan struct {
	y0, y1 int
}

// frameBuffer holds premultiplied float color and NDC depth for every device pixel.
// Workers only touch the rows of their own span, so no locking is needed.
type frameBuffer struct {
	width, height int
	color         []float32
	depth         []float32
}

func newFrameBuffer(width, height int) *frameBuffer {
	return &frameBuffer{
		width:  width,
		height: height,
		color:  make([]float32, width*height*4),
		depth:  make([]float32, width*height),
	}
}

func (fb *frameBuffer) clear(span rowSpan, c mgl32.Vec4) {
	a := c.W()
	r, g, b := c.X()*a, c.Y()*a, c.Z()*a
	for i := span.y0 * fb.width; i < span.y1*fb.width; i++ {
		fb.color[i*4] = r
		fb.color[i*4+1] = g
		fb.color[i*4+2] = b
		fb.color[i*4+3] = a
		fb.depth[i] = 1
	}
}

// blend writes a straight-alpha fragment into pixel i.
func (fb *frameBuffer) blend(i int, src mgl32.Vec4, mode material.Blending) {
	px := fb.color[i*4 : i*4+4 : i*4+4]
	a := src.W()
	switch mode {
	case material.BlendAdditive:
		px[0] += src.X() * a
		px[1] += src.Y() * a
		px[2] += src.Z() * a
		px[3] += a
	default:
		inv := 1 - a
		px[0] = src.X()*a + px[0]*inv
		px[1] = src.Y()*a + px[1]*inv
		px[2] = src.Z()*a + px[2]*inv
		px[3] = a + px[3]*inv
	}
}

// resolve converts the span into 8-bit premultiplied RGBA, clamping each channel to [0, 1]
// and keeping color channels at or below alpha.
func (fb *frameBuffer) resolve(out *image.RGBA, span rowSpan) {
	for y := span.y0; y < span.y1; y++ {
		row := out.Pix[y*out.Stride : y*out.Stride+fb.width*4]
		src := fb.color[y*fb.width*4 : (y+1)*fb.width*4]
		for x := 0; x < fb.width; x++ {
			a := unit(src[x*4+3])
			row[x*4] = toByte(min(unit(src[x*4]), a))
			row[x*4+1] = toByte(min(unit(src[x*4+1]), a))
			row[x*4+2] = toByte(min(unit(src[x*4+2]), a))
			row[x*4+3] = toByte(a)
		}
	}
}

func unit(v float32) float32 {
	return max(0, min(v, 1))
}

func toByte(v float32) uint8 {
	return uint8(v*255 + 0.5)
}
