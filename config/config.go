// Package config holds the viewer settings, read from a TOML file over built-in defaults that reproduce the room scene.
package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/Carmen-Shannon/oxy-room/engine"
	"github.com/Carmen-Shannon/oxy-room/engine/camera"
	"github.com/Carmen-Shannon/oxy-room/engine/material"
	"github.com/Carmen-Shannon/oxy-room/engine/particles"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pelletier/go-toml/v2"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Assets locates the model and its baked texture. Relative paths resolve against the working directory;
// http(s) URLs are fetched.
type Assets struct {
	Model   string `toml:"model"`
	Texture string `toml:"texture"`
}

// Window is the host window setup.
type Window struct {
	Title         string  `toml:"title"`
	Width         int     `toml:"width"`
	Height        int     `toml:"height"`
	MaxPixelRatio float32 `toml:"max_pixel_ratio"`
}

// Camera is the perspective camera.
type Camera struct {
	FovDegrees float32    `toml:"fov_degrees"`
	Near       float32    `toml:"near"`
	Far        float32    `toml:"far"`
	Position   [3]float32 `toml:"position"`
	Target     [3]float32 `toml:"target"`
}

// Controls are the orbit control limits and toggles. Angles are in radians.
type Controls struct {
	EnableDamping bool    `toml:"enable_damping"`
	DampingFactor float32 `toml:"damping_factor"`
	EnableZoom    bool    `toml:"enable_zoom"`
	EnablePan     bool    `toml:"enable_pan"`
	MinDistance   float32 `toml:"min_distance"`
	MaxDistance   float32 `toml:"max_distance"`
	MinPolarAngle float32 `toml:"min_polar_angle"`
	MaxPolarAngle float32 `toml:"max_polar_angle"`
}

// Bloom is the bloom pass setup, fixed for the session.
type Bloom struct {
	Enabled   bool    `toml:"enabled"`
	Threshold float32 `toml:"threshold"`
	Strength  float32 `toml:"strength"`
	Radius    float32 `toml:"radius"`
}

// Fireflies is the particle field setup.
type Fireflies struct {
	Count int     `toml:"count"`
	Size  float32 `toml:"size"`
}

// Config is the full viewer configuration.
type Config struct {
	Assets    Assets              `toml:"assets"`
	Window    Window              `toml:"window"`
	Camera    Camera              `toml:"camera"`
	Controls  Controls            `toml:"controls"`
	Bloom     Bloom               `toml:"bloom"`
	Fireflies Fireflies           `toml:"fireflies"`
	Materials material.NameGroups `toml:"materials"`
}

// Defaults returns the configuration of the room scene.
func Defaults() Config {
	return Config{
		Assets: Assets{
			Model:   "static/model.glb",
			Texture: "static/baked.jpg",
		},
		Window: Window{
			Title:         "Room",
			Width:         1280,
			Height:        720,
			MaxPixelRatio: 2,
		},
		Camera: Camera{
			FovDegrees: 10,
			Near:       0.1,
			Far:        100,
			Position:   [3]float32{18, 8, 20},
		},
		Controls: Controls{
			EnableDamping: true,
			DampingFactor: 0.05,
			EnableZoom:    true,
			EnablePan:     true,
			MinDistance:   15,
			MaxDistance:   30,
			MinPolarAngle: math.Pi / 5,
			MaxPolarAngle: math.Pi / 2,
		},
		Bloom: Bloom{
			Enabled:   true,
			Threshold: 0.1,
			Strength:  0.4,
			Radius:    1,
		},
		Fireflies: Fireflies{
			Count: particles.FirefliesCount,
			Size:  particles.DefaultSize,
		},
		Materials: material.DefaultNameGroups(),
	}
}

// Load reads path over Defaults and validates the result. An empty path returns the defaults.
//
// Parameters:
//   - path: the TOML file, or ""
//
// Returns:
//   - Config: the merged configuration
//   - error: error if the file cannot be read, has unknown keys or fails Validate
func Load(path string) (Config, error) {
	if path == "" {
		cfg := Defaults()
		return cfg, cfg.Validate()
	}

	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode reads TOML from r over Defaults and validates the result.
//
// Parameters:
//   - r: the TOML document
//
// Returns:
//   - Config: the merged configuration
//   - error: error on malformed TOML, unknown keys or a failed Validate
func Decode(r io.Reader) (Config, error) {
	cfg := Defaults()
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("%w: %s", ErrInvalid, strict.String())
		}
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges and that no node name is in two material groups.
//
// Returns:
//   - error: an error wrapping ErrInvalid or material.ErrOverlappingGroups
func (c Config) Validate() error {
	switch {
	case c.Assets.Model == "":
		return fmt.Errorf("%w: assets.model is empty", ErrInvalid)
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	case c.Window.MaxPixelRatio <= 0:
		return fmt.Errorf("%w: window.max_pixel_ratio must be positive", ErrInvalid)
	case c.Camera.FovDegrees <= 0 || c.Camera.FovDegrees >= 180:
		return fmt.Errorf("%w: camera.fov_degrees %v", ErrInvalid, c.Camera.FovDegrees)
	case c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near:
		return fmt.Errorf("%w: camera clip planes %v..%v", ErrInvalid, c.Camera.Near, c.Camera.Far)
	case c.Controls.DampingFactor <= 0 || c.Controls.DampingFactor > 1:
		return fmt.Errorf("%w: controls.damping_factor %v", ErrInvalid, c.Controls.DampingFactor)
	case c.Controls.MinDistance < 0 || c.Controls.MaxDistance < c.Controls.MinDistance:
		return fmt.Errorf("%w: controls distance %v..%v", ErrInvalid, c.Controls.MinDistance, c.Controls.MaxDistance)
	case c.Controls.MinPolarAngle < 0 || c.Controls.MaxPolarAngle > math.Pi || c.Controls.MaxPolarAngle < c.Controls.MinPolarAngle:
		return fmt.Errorf("%w: controls polar angle %v..%v", ErrInvalid, c.Controls.MinPolarAngle, c.Controls.MaxPolarAngle)
	case c.Bloom.Threshold < 0 || c.Bloom.Strength < 0:
		return fmt.Errorf("%w: bloom threshold and strength must not be negative", ErrInvalid)
	case c.Bloom.Radius < 0 || c.Bloom.Radius > 1:
		return fmt.Errorf("%w: bloom.radius %v is outside [0, 1]", ErrInvalid, c.Bloom.Radius)
	case c.Fireflies.Count < 0 || c.Fireflies.Size < 0:
		return fmt.Errorf("%w: fireflies count and size must not be negative", ErrInvalid)
	}
	return c.Materials.Validate()
}

// NewCamera builds the perspective camera with an orbit controller using the camera and controls sections.
//
// Parameters:
//   - aspect: the initial aspect ratio
//
// Returns:
//   - camera.Camera: the camera with its controller attached
func (c Config) NewCamera(aspect float32) camera.Camera {
	position := mgl32.Vec3(c.Camera.Position)
	target := mgl32.Vec3(c.Camera.Target)

	ctrl := camera.NewOrbitController(
		camera.WithPosition(position),
		camera.WithTarget(target),
		camera.WithDamping(c.Controls.EnableDamping, c.Controls.DampingFactor),
		camera.WithZoom(c.Controls.EnableZoom),
		camera.WithPan(c.Controls.EnablePan),
		camera.WithDistanceLimits(c.Controls.MinDistance, c.Controls.MaxDistance),
		camera.WithPolarLimits(c.Controls.MinPolarAngle, c.Controls.MaxPolarAngle),
	)
	return camera.NewCamera(
		camera.WithFov(mgl32.DegToRad(c.Camera.FovDegrees)),
		camera.WithAspect(aspect),
		camera.WithClipPlanes(c.Camera.Near, c.Camera.Far),
		camera.WithLookAt(position, target),
		camera.WithController(ctrl),
	)
}

// BloomSettings returns the bloom section as engine settings.
func (c Config) BloomSettings() engine.BloomSettings {
	return engine.BloomSettings{
		Threshold: c.Bloom.Threshold,
		Strength:  c.Bloom.Strength,
		Radius:    c.Bloom.Radius,
	}
}
