package material

import (
	"math"

	"github.com/Carmen-Shannon/oxy-room/common"
	"github.com/go-gl/mathgl/mgl32"
)

const twoPi = 2 * math.Pi

var missingTexture = mgl32.Vec4{1, 0, 1, 1}

func sin32(x float32) float32 { return float32(math.Sin(float64(x))) }

func (m *Baked) Shade(f Fragment) mgl32.Vec4 {
	if m.Texture == nil {
		return missingTexture
	}
	return m.Texture.Sample(f.UV)
}

// Shade brightens the base color with a vertical flicker. The result exceeds 1 near the tip.
func (m *Candle) Shade(f Fragment) mgl32.Vec4 {
	phase := m.Time*m.ColorSpeed*0.1 + m.Delay
	flicker := 0.8 + 0.2*sin32(phase+f.UV.Y()*twoPi)
	glow := 1 + 0.5*common.Smoothstep(0.4, 1, f.UV.Y())

	c := m.BaseColor.Mul(flicker * glow)
	return mgl32.Vec4{c.X(), c.Y(), c.Z(), 1}
}

func (m *Bubble) Shade(f Fragment) mgl32.Vec4 {
	t := m.Time
	r := 0.5 + 0.5*sin32(t+f.UV.X()*twoPi)
	g := 0.5 + 0.5*sin32(t+2.0944+f.UV.Y()*twoPi)
	b := 0.5 + 0.5*sin32(t+4.1888)

	// Fade toward white at the rim of the uv square.
	dx, dy := f.UV.X()-0.5, f.UV.Y()-0.5
	rim := common.Smoothstep(0.2, 0.5, float32(math.Sqrt(float64(dx*dx+dy*dy))))
	return mgl32.Vec4{
		common.Lerp(r, 1, rim),
		common.Lerp(g, 1, rim),
		common.Lerp(b, 1, rim),
		0.55 + 0.35*rim,
	}
}

// Shade draws drifting horizontal bands over a deep blue to cyan gradient.
// Band frequency follows the buffer aspect so the pattern is not stretched.
func (m *Door) Shade(f Fragment) mgl32.Vec4 {
	aspect := float32(1)
	if m.Resolution.X() > 0 && m.Resolution.Y() > 0 {
		aspect = m.Resolution.X() / m.Resolution.Y()
	}
	u := f.UV.X() * aspect
	v := f.UV.Y()

	band := 0.5 + 0.5*sin32(v*24+m.Time*0.5+sin32(u*6+m.Time*0.2)*1.5)
	shimmer := common.Smoothstep(0.6, 1, band)

	deep := mgl32.Vec3{0.05, 0.09, 0.25}
	light := mgl32.Vec3{0.35, 0.85, 1}
	c := deep.Add(light.Sub(deep).Mul(v*0.6 + shimmer*0.4))
	return mgl32.Vec4{c.X(), c.Y(), c.Z(), 1}
}

// Shade is a soft glowing disc: 0.05 / distance - 0.1 from the sprite center.
func (m *Fireflies) Shade(f Fragment) mgl32.Vec4 {
	d := f.PointCoord.Sub(mgl32.Vec2{0.5, 0.5}).Len()
	if d == 0 {
		return mgl32.Vec4{1, 1, 1, 1}
	}
	strength := common.Clamp(0.05/d-0.1, 0, 1)
	return mgl32.Vec4{1, 1, 1, strength}
}

// Displace applies the vertical hover of a particle at world-space position p.
//
// Parameters:
//   - p: the particle's model position
//   - scale: the particle's scale attribute
//
// Returns:
//   - mgl32.Vec3: the displaced position
func (m *Fireflies) Displace(p mgl32.Vec3, scale float32) mgl32.Vec3 {
	p[1] += sin32(m.Time+p.X()*100) * scale * 0.2
	return p
}

// PointSize returns the sprite diameter in device pixels for a particle at view-space depth viewZ.
// Points at or behind the camera get size 0.
//
// Parameters:
//   - scale: the particle's scale attribute
//   - viewZ: the view-space z of the particle (negative in front of the camera)
//
// Returns:
//   - float32: sprite diameter in device pixels
func (m *Fireflies) PointSize(scale, viewZ float32) float32 {
	if viewZ >= 0 {
		return 0
	}
	return m.Size * scale * m.PixelRatio / -viewZ
}
