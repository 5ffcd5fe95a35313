// Package clock advances the time uniforms of the animated materials.
package clock

import (
	"time"

	"github.com/Carmen-Shannon/oxy-room/engine/material"
)

// Per-tick increments. Candle, door and bubble time advance by a fixed step each frame, so their
// animation speed follows the frame rate; fireflies follow wall-clock time.
const (
	CandleStep = 0.075
	DoorStep   = 0.10
	BubbleStep = 0.035
)

// Initial values of the time uniforms.
const (
	CandleStart = 1.0
	DoorStart   = 10.0
	BubbleStart = 0.0
)

// Clock holds the four time uniforms. Values grow without bound and are accumulated in float64;
// Apply narrows them to the float32 uniforms.
type Clock struct {
	CandleTime    float64
	DoorTime      float64
	BubbleTime    float64
	FirefliesTime float64

	ticks uint64
}

// New returns a clock at the materials' authored start values.
func New() *Clock {
	return NewAt(CandleStart, DoorStart, BubbleStart)
}

// NewAt returns a clock starting at explicit candle, door and bubble times.
func NewAt(candle, door, bubble float64) *Clock {
	return &Clock{CandleTime: candle, DoorTime: door, BubbleTime: bubble}
}

// Tick advances one frame: candle, door and bubble step forward and the fireflies time is set
// to elapsed, the wall-clock time since the loop started.
//
// Parameters:
//   - elapsed: time since the first frame
func (c *Clock) Tick(elapsed time.Duration) {
	c.CandleTime += CandleStep
	c.DoorTime += DoorStep
	c.BubbleTime += BubbleStep
	c.FirefliesTime = elapsed.Seconds()
	c.ticks++
}

// Ticks returns the number of Tick calls.
func (c *Clock) Ticks() uint64 {
	return c.ticks
}

// Apply copies the clock values into the time uniform of every matching material variant.
// Materials without a time uniform are skipped.
//
// Parameters:
//   - materials: the materials to update
func (c *Clock) Apply(materials ...material.Material) {
	for _, m := range materials {
		switch v := m.(type) {
		case *material.Candle:
			v.Time = float32(c.CandleTime)
		case *material.Door:
			v.Time = float32(c.DoorTime)
		case *material.Bubble:
			v.Time = float32(c.BubbleTime)
		case *material.Fireflies:
			v.Time = float32(c.FirefliesTime)
		}
	}
}
