// package common contains common types that are used throughout the viewer. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// DefaultMaxPixelRatio caps the device pixel ratio used for render buffers.
const DefaultMaxPixelRatio float32 = 2

// Sizes is the viewport state owned by the render loop.
// Width and Height are in window (CSS-like) units; the render buffers are Width*PixelRatio by Height*PixelRatio.
type Sizes struct {
	// Width is the viewport width.
	Width int
	// Height is the viewport height.
	Height int
	// PixelRatio is the effective device pixel ratio, already clamped.
	PixelRatio float32
}

// Aspect returns Width / Height, or 1 for a degenerate viewport.
func (s Sizes) Aspect() float32 {
	if s.Height <= 0 || s.Width <= 0 {
		return 1
	}
	return float32(s.Width) / float32(s.Height)
}

// BufferSize returns the render buffer dimensions in device pixels.
//
// Returns:
//   - int: buffer width, at least 1
//   - int: buffer height, at least 1
func (s Sizes) BufferSize() (int, int) {
	ratio := s.PixelRatio
	if ratio <= 0 {
		ratio = 1
	}
	return max(1, int(float32(s.Width)*ratio)), max(1, int(float32(s.Height)*ratio))
}

// ClampPixelRatio returns min(devicePixelRatio, limit). Non-positive ratios are treated as 1
// and a non-positive limit falls back to DefaultMaxPixelRatio.
func ClampPixelRatio(devicePixelRatio, limit float32) float32 {
	if limit <= 0 {
		limit = DefaultMaxPixelRatio
	}
	if devicePixelRatio <= 0 {
		devicePixelRatio = 1
	}
	return min(devicePixelRatio, limit)
}

// DecodeRGBA decodes a PNG, JPEG or WebP image into an *image.RGBA whose bounds start at the origin.
// Reference: https://pkg.go.dev/image
//
// Parameters:
//   - r: the encoded image stream
//
// Returns:
//   - *image.RGBA: the decoded pixels
//   - string: the format name reported by the decoder
//   - error: error if decoding fails or the image is empty
func DecodeRGBA(r io.Reader) (*image.RGBA, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, format, ErrEmptyAsset
	}

	if rgba, ok := img.(*image.RGBA); ok && bounds.Min == (image.Point{}) {
		return rgba, format, nil
	}

	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	return rgba, format, nil
}
