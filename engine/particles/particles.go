// Package particles generates the fireflies point cloud that floats above the room.
package particles

import (
	"math/rand/v2"

	"github.com/Carmen-Shannon/oxy-room/engine/material"
	"github.com/Carmen-Shannon/oxy-room/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// FirefliesCount is the number of particles in the room.
const FirefliesCount = 30

// DefaultSize is the fireflies sprite size uniform.
const DefaultSize float32 = 15

// Field holds two parallel buffers: three coordinates per particle in Positions and one scale per particle in Scales.
type Field struct {
	Positions []float32
	Scales    []float32
}

// Count returns the number of particles.
func (f Field) Count() int {
	return len(f.Scales)
}

// Particle returns the position and scale of particle i.
func (f Field) Particle(i int) (mgl32.Vec3, float32) {
	return mgl32.Vec3{f.Positions[i*3], f.Positions[i*3+1], f.Positions[i*3+2]}, f.Scales[i]
}

// Generate draws count particles uniformly in the box x in [-1, 1), y in [0, 2), z in [-2, 2)
// with scales in [0, 1). A nil rng uses the global source. Negative counts yield an empty field.
//
// Parameters:
//   - count: number of particles
//   - rng: random source, may be nil
//
// Returns:
//   - Field: the generated buffers
func Generate(count int, rng *rand.Rand) Field {
	count = max(count, 0)
	random := rand.Float32
	if rng != nil {
		random = rng.Float32
	}

	f := Field{
		Positions: make([]float32, count*3),
		Scales:    make([]float32, count),
	}
	for i := range count {
		f.Positions[i*3] = (random() - 0.5) * 2
		f.Positions[i*3+1] = random() * 2
		f.Positions[i*3+2] = (random() - 0.5) * 4
		f.Scales[i] = random()
	}
	return f
}

// NewFireflies generates a field and wraps it in a points object with a fresh fireflies material.
//
// Parameters:
//   - count: number of particles
//   - pixelRatio: the clamped device pixel ratio
//   - size: the sprite size uniform
//   - rng: random source, may be nil
//
// Returns:
//   - *scene.Points: the particle object, ready to add to a scene
func NewFireflies(count int, pixelRatio, size float32, rng *rand.Rand) *scene.Points {
	f := Generate(count, rng)
	return scene.NewPoints("fireflies", f.Positions, f.Scales, material.NewFireflies(pixelRatio, size))
}
