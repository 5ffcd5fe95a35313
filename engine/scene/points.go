package scene

import (
	"github.com/Carmen-Shannon/oxy-room/engine/material"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Points is a point-sprite object: Positions holds 3 floats per point and Scales one float per point.
// It is drawn with a Fireflies material.
type Points struct {
	id        string
	Name      string
	Positions []float32
	Scales    []float32
	Material  *material.Fireflies
	Local     mgl32.Mat4
}

// NewPoints creates a points object at the origin.
//
// Parameters:
//   - name: the object name
//   - positions: 3 floats per point
//   - scales: 1 float per point
//   - m: the sprite material
//
// Returns:
//   - *Points: the new object
func NewPoints(name string, positions, scales []float32, m *material.Fireflies) *Points {
	return &Points{
		id:        uuid.NewString(),
		Name:      name,
		Positions: positions,
		Scales:    scales,
		Material:  m,
		Local:     mgl32.Ident4(),
	}
}

// ID returns the object's unique identifier.
func (p *Points) ID() string {
	return p.id
}

// Count returns the number of complete points.
func (p *Points) Count() int {
	return min(len(p.Positions)/3, len(p.Scales))
}

// At returns the model-space position and scale of point i.
func (p *Points) At(i int) (mgl32.Vec3, float32) {
	return mgl32.Vec3{p.Positions[i*3], p.Positions[i*3+1], p.Positions[i*3+2]}, p.Scales[i]
}
