package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-room/engine/material"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults_MatchRoomScene(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "static/model.glb", cfg.Assets.Model)
	assert.Equal(t, "static/baked.jpg", cfg.Assets.Texture)
	assert.Equal(t, float32(10), cfg.Camera.FovDegrees)
	assert.Equal(t, [3]float32{18, 8, 20}, cfg.Camera.Position)
	assert.Equal(t, float32(15), cfg.Controls.MinDistance)
	assert.Equal(t, float32(30), cfg.Controls.MaxDistance)
	assert.InDelta(t, math.Pi/5, cfg.Controls.MinPolarAngle, 1e-6)
	assert.InDelta(t, math.Pi/2, cfg.Controls.MaxPolarAngle, 1e-6)
	assert.Equal(t, 30, cfg.Fireflies.Count)
	assert.Equal(t, material.DefaultNameGroups(), cfg.Materials)

	bloom := cfg.BloomSettings()
	assert.Equal(t, float32(0.1), bloom.Threshold)
	assert.Equal(t, float32(0.4), bloom.Strength)
	assert.Equal(t, float32(1), bloom.Radius)
}

func TestDecode_OverridesDefaults(t *testing.T) {
	cfg, err := Decode(strings.NewReader(`
[assets]
model = "room.glb"

[bloom]
strength = 0.8

[materials]
candle = ["Lamp"]
bubbles = []
door = ""
`))
	require.NoError(t, err)

	assert.Equal(t, "room.glb", cfg.Assets.Model)
	assert.Equal(t, "static/baked.jpg", cfg.Assets.Texture, "unset keys keep their defaults")
	assert.Equal(t, float32(0.8), cfg.Bloom.Strength)
	assert.Equal(t, float32(0.1), cfg.Bloom.Threshold)
	assert.Equal(t, []string{"Lamp"}, cfg.Materials.Candle)
	assert.Empty(t, cfg.Materials.Bubbles)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		is   error
	}{
		{"unknown key", "[bloom]\nexposure = 1.0\n", ErrInvalid},
		{"bad radius", "[bloom]\nradius = 2.0\n", ErrInvalid},
		{"inverted distances", "[controls]\nmin_distance = 40.0\n", ErrInvalid},
		{"zero width", "[window]\nwidth = 0\n", ErrInvalid},
		{"far before near", "[camera]\nnear = 5.0\nfar = 1.0\n", ErrInvalid},
		{"overlapping groups", "[materials]\ncandle = [\"Foto\"]\n", material.ErrOverlappingGroups},
		{"malformed", "[bloom\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.doc))
			require.Error(t, err)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)

	path := filepath.Join(t.TempDir(), "room.toml")
	require.NoError(t, os.WriteFile(path, []byte("[fireflies]\ncount = 5\n"), 0o644))
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Fireflies.Count)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewCamera(t *testing.T) {
	cfg := Defaults()
	cam := cfg.NewCamera(16.0 / 9.0)

	assert.InDelta(t, mgl32.DegToRad(10), cam.Fov(), 1e-6)
	assert.InDelta(t, 16.0/9.0, cam.Aspect(), 1e-6)
	assert.Equal(t, float32(0.1), cam.Near())
	assert.Equal(t, float32(100), cam.Far())
	assert.Equal(t, mgl32.Vec3{18, 8, 20}, cam.Position())

	ctrl := cam.Controller()
	require.NotNil(t, ctrl)
	ctrl.Zoom(-50)
	for range 200 {
		ctrl.Update()
	}
	assert.LessOrEqual(t, ctrl.Distance(), float32(30)+1e-3)
}
