package main

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-room/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_FlagOverrides(t *testing.T) {
	cfg, err := loadConfig(options{modelPath: "other.glb", width: 640})
	require.NoError(t, err)
	assert.Equal(t, "other.glb", cfg.Assets.Model)
	assert.Equal(t, config.Defaults().Assets.Texture, cfg.Assets.Texture)
	assert.Equal(t, 640, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height)

	_, err = loadConfig(options{configPath: filepath.Join(t.TempDir(), "missing.toml")})
	assert.Error(t, err)
}

func TestWritePNG(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 3, 2))
	frame.SetRGBA(2, 1, color.RGBA{R: 128, A: 128})
	path := filepath.Join(t.TempDir(), "frame.png")
	require.NoError(t, writePNG(path, frame))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, frame.Bounds(), img.Bounds())

	r, _, _, a := img.At(2, 1).RGBA()
	assert.InDelta(t, 0x8080, r, 0x200)
	assert.InDelta(t, 0x8080, a, 0x200)

	assert.Error(t, writePNG(filepath.Join(t.TempDir(), "missing", "frame.png"), frame))
}

func TestProgressLogger(t *testing.T) {
	fn := progressLogger()
	assert.NotPanics(t, func() {
		fn(0, -1)
		fn(10, 100)
		fn(10, 100)
		fn(100, 100)
	})
}
