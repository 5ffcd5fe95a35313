package common

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampPixelRatio(t *testing.T) {
	tests := []struct {
		name  string
		dpr   float32
		limit float32
		want  float32
	}{
		{"standard display", 1, 2, 1},
		{"retina", 2, 2, 2},
		{"dense phone", 3, 2, 2},
		{"fractional", 1.25, 2, 1.25},
		{"unknown ratio", 0, 2, 1},
		{"default limit", 4, 0, DefaultMaxPixelRatio},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClampPixelRatio(tt.dpr, tt.limit))
		})
	}
}

func TestSizes_BufferSize(t *testing.T) {
	s := Sizes{Width: 800, Height: 600, PixelRatio: 2}
	w, h := s.BufferSize()
	assert.Equal(t, 1600, w)
	assert.Equal(t, 1200, h)
	assert.InDelta(t, 800.0/600.0, s.Aspect(), 1e-6)

	empty := Sizes{}
	w, h = empty.BufferSize()
	assert.Equal(t, 1, w)
	assert.Equal(t, 1, h)
	assert.Equal(t, float32(1), empty.Aspect())
}

func TestAssetLoadFailed_Unwrap(t *testing.T) {
	err := NewAssetLoadFailed("/model.glb", fs.ErrNotExist)

	var failed *AssetLoadFailed
	require.True(t, errors.As(err, &failed))
	assert.Equal(t, "/model.glb", failed.URL)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Contains(t, err.Error(), "/model.glb")

	// Wrapping the same URL twice keeps a single layer.
	assert.Same(t, err, NewAssetLoadFailed("/model.glb", err))
}

func TestDecodeRGBA(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	src.Set(1, 1, color.NRGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	rgba, format, err := DecodeRGBA(&buf)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, image.Rect(0, 0, 3, 2), rgba.Bounds())
	assert.Equal(t, color.RGBA{R: 255, A: 255}, rgba.RGBAAt(1, 1))

	_, _, err = DecodeRGBA(bytes.NewReader([]byte("not an image")))
	assert.Error(t, err)
}

func TestSmoothstep(t *testing.T) {
	assert.Equal(t, float32(0), Smoothstep(0.1, 0.11, 0.05))
	assert.Equal(t, float32(1), Smoothstep(0.1, 0.11, 0.5))
	assert.InDelta(t, 0.5, Smoothstep(0, 1, 0.5), 1e-6)
	assert.Equal(t, 3, Clamp(5, 0, 3))
	assert.Equal(t, "x", Coalesce("", "x", "y"))
}
