package renderer

import (
	"math"

	"github.com/Carmen-Shannon/oxy-room/engine/material"
	"github.com/Carmen-Shannon/oxy-room/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// clipVertex is a vertex after the model-view-projection transform.
type clipVertex struct {
	pos   mgl32.Vec4
	uv    mgl32.Vec2
	world mgl32.Vec3
}

// screenVertex is a vertex in buffer pixels. uv and world are pre-divided by w
// for perspective-correct interpolation.
type screenVertex struct {
	x, y, z float32
	invW    float32
	uv      mgl32.Vec2
	world   mgl32.Vec3
}

type triangle struct {
	v          [3]screenVertex
	area       float32
	minX, maxX int
	minY, maxY int
	mat        material.Material
}

type sprite struct {
	cx, cy, z float32
	size      float32
	coverage  float32
	world     mgl32.Vec3
	mat       *material.Fireflies
}

// collectTriangles transforms every mesh node with a material, clips against the near plane
// and returns the screen-space triangles that may touch the buffer.
func collectTriangles(s scene.Scene, viewProj mgl32.Mat4, width, height int) []triangle {
	var tris []triangle
	var clipPos []mgl32.Vec4
	var worldPos []mgl32.Vec3

	s.Traverse(func(node *scene.Node) {
		mesh, mat := node.Mesh(), node.Material()
		if mesh == nil || mat == nil || len(mesh.Positions) == 0 {
			return
		}

		model := node.World()
		mvp := viewProj.Mul4(model)
		clipPos = clipPos[:0]
		worldPos = worldPos[:0]
		for _, p := range mesh.Positions {
			v := p.Vec4(1)
			clipPos = append(clipPos, mvp.Mul4x1(v))
			worldPos = append(worldPos, model.Mul4x1(v).Vec3())
		}

		vertex := func(i uint32) clipVertex {
			cv := clipVertex{pos: clipPos[i], world: worldPos[i]}
			if int(i) < len(mesh.UVs) {
				cv.uv = mesh.UVs[i]
			}
			return cv
		}

		cullBack := false
		if baked, ok := mat.(*material.Baked); ok {
			cullBack = !baked.DoubleSided
		}

		n := uint32(len(mesh.Positions))
		for t := 0; t+2 < len(mesh.Indices); t += 3 {
			i0, i1, i2 := mesh.Indices[t], mesh.Indices[t+1], mesh.Indices[t+2]
			if i0 >= n || i1 >= n || i2 >= n {
				continue
			}
			poly := [3]clipVertex{vertex(i0), vertex(i1), vertex(i2)}
			if outsideFrustum(poly) {
				continue
			}

			clipped := clipNear(poly[:])
			for k := 1; k+1 < len(clipped); k++ {
				tri, ok := setupTriangle(clipped[0], clipped[k], clipped[k+1], width, height, cullBack)
				if !ok {
					continue
				}
				tri.mat = mat
				tris = append(tris, tri)
			}
		}
	})

	return tris
}

// outsideFrustum reports whether all three vertices lie beyond the same clip plane.
func outsideFrustum(v [3]clipVertex) bool {
	planes := [...]func(p mgl32.Vec4) bool{
		func(p mgl32.Vec4) bool { return p.X() < -p.W() },
		func(p mgl32.Vec4) bool { return p.X() > p.W() },
		func(p mgl32.Vec4) bool { return p.Y() < -p.W() },
		func(p mgl32.Vec4) bool { return p.Y() > p.W() },
		func(p mgl32.Vec4) bool { return p.Z() < -p.W() },
		func(p mgl32.Vec4) bool { return p.Z() > p.W() },
	}
	for _, out := range planes {
		if out(v[0].pos) && out(v[1].pos) && out(v[2].pos) {
			return true
		}
	}
	return false
}

// clipNear clips a convex polygon against z >= -w.
func clipNear(poly []clipVertex) []clipVertex {
	dist := func(v clipVertex) float32 { return v.pos.Z() + v.pos.W() }

	out := make([]clipVertex, 0, len(poly)+1)
	for i := range poly {
		a, b := poly[i], poly[(i+1)%len(poly)]
		da, db := dist(a), dist(b)
		if da >= 0 {
			out = append(out, a)
		}
		if (da >= 0) != (db >= 0) {
			out = append(out, lerpVertex(a, b, da/(da-db)))
		}
	}
	return out
}

func lerpVertex(a, b clipVertex, t float32) clipVertex {
	return clipVertex{
		pos:   a.pos.Add(b.pos.Sub(a.pos).Mul(t)),
		uv:    a.uv.Add(b.uv.Sub(a.uv).Mul(t)),
		world: a.world.Add(b.world.Sub(a.world).Mul(t)),
	}
}

func toScreen(v clipVertex, width, height int) screenVertex {
	invW := 1 / v.pos.W()
	return screenVertex{
		x:     (v.pos.X()*invW*0.5 + 0.5) * float32(width),
		y:     (0.5 - v.pos.Y()*invW*0.5) * float32(height),
		z:     v.pos.Z() * invW,
		invW:  invW,
		uv:    v.uv.Mul(invW),
		world: v.world.Mul(invW),
	}
}

// setupTriangle projects a clipped triangle and orders it counter-clockwise in buffer space.
// Degenerate and off-screen triangles are rejected, as are back faces when cullBack is set.
// Front faces wind counter-clockwise in clip space, which is clockwise (negative area) in the
// y-down buffer.
func setupTriangle(a, b, c clipVertex, width, height int, cullBack bool) (triangle, bool) {
	v0, v1, v2 := toScreen(a, width, height), toScreen(b, width, height), toScreen(c, width, height)
	area := edge(v0, v1, v2.x, v2.y)
	if area == 0 || math.IsNaN(float64(area)) {
		return triangle{}, false
	}
	if cullBack && area > 0 {
		return triangle{}, false
	}
	if area < 0 {
		v1, v2 = v2, v1
		area = -area
	}

	t := triangle{
		v:    [3]screenVertex{v0, v1, v2},
		area: area,
		minX: max(0, int(math.Floor(float64(min(v0.x, v1.x, v2.x))))),
		maxX: min(width-1, int(math.Ceil(float64(max(v0.x, v1.x, v2.x))))),
		minY: max(0, int(math.Floor(float64(min(v0.y, v1.y, v2.y))))),
		maxY: min(height-1, int(math.Ceil(float64(max(v0.y, v1.y, v2.y))))),
	}
	return t, t.minX <= t.maxX && t.minY <= t.maxY
}

func edge(a, b screenVertex, x, y float32) float32 {
	return (b.x-a.x)*(y-a.y) - (b.y-a.y)*(x-a.x)
}

// rasterizeTriangle fills the pixels of t whose centers fall inside it and within span.
func rasterizeTriangle(fb *frameBuffer, t *triangle, span rowSpan) {
	y0, y1 := max(t.minY, span.y0), min(t.maxY, span.y1-1)
	if y0 > y1 {
		return
	}
	v0, v1, v2 := t.v[0], t.v[1], t.v[2]
	blending, depthWrite := t.mat.Blending(), t.mat.DepthWrite()

	for y := y0; y <= y1; y++ {
		py := float32(y) + 0.5
		for x := t.minX; x <= t.maxX; x++ {
			px := float32(x) + 0.5
			w0 := edge(v1, v2, px, py)
			w1 := edge(v2, v0, px, py)
			w2 := edge(v0, v1, px, py)
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			b0, b1, b2 := w0/t.area, w1/t.area, w2/t.area

			z := b0*v0.z + b1*v1.z + b2*v2.z
			i := y*fb.width + x
			if z < -1 || z > 1 || z >= fb.depth[i] {
				continue
			}

			invW := b0*v0.invW + b1*v1.invW + b2*v2.invW
			uv := v0.uv.Mul(b0).Add(v1.uv.Mul(b1)).Add(v2.uv.Mul(b2)).Mul(1 / invW)
			world := v0.world.Mul(b0).Add(v1.world.Mul(b1)).Add(v2.world.Mul(b2)).Mul(1 / invW)

			c := t.mat.Shade(material.Fragment{UV: uv, World: world})
			fb.blend(i, c, blending)
			if depthWrite {
				fb.depth[i] = z
			}
		}
	}
}

// collectSprites displaces and projects every particle, dropping those behind the camera,
// outside the depth range or entirely off-screen.
func collectSprites(s scene.Scene, view, proj mgl32.Mat4, width, height int) []sprite {
	var sprites []sprite
	for _, p := range s.Points() {
		mat := p.Material
		if mat == nil {
			continue
		}
		coverage := spriteCoverage(mat)

		for i := range p.Count() {
			pos, scale := p.At(i)
			world := mat.Displace(p.Local.Mul4x1(pos.Vec4(1)).Vec3(), scale)
			viewPos := view.Mul4x1(world.Vec4(1))
			size := mat.PointSize(scale, viewPos.Z())
			if size <= 0 {
				continue
			}

			clip := proj.Mul4x1(viewPos)
			if clip.W() <= 0 {
				continue
			}
			ndc := clip.Vec3().Mul(1 / clip.W())
			if ndc.Z() < -1 || ndc.Z() > 1 {
				continue
			}

			sp := sprite{
				cx:       (ndc.X()*0.5 + 0.5) * float32(width),
				cy:       (0.5 - ndc.Y()*0.5) * float32(height),
				z:        ndc.Z(),
				size:     size,
				coverage: coverage,
				world:    world,
				mat:      mat,
			}
			half := max(size, 1) / 2
			if sp.cx+half < 0 || sp.cy+half < 0 || sp.cx-half > float32(width) || sp.cy-half > float32(height) {
				continue
			}
			sprites = append(sprites, sp)
		}
	}
	return sprites
}

// spriteCoverage is the mean alpha of the sprite's disc, used to splat sprites smaller than a pixel.
func spriteCoverage(m *material.Fireflies) float32 {
	const n = 8
	var sum float32
	for y := range n {
		for x := range n {
			coord := mgl32.Vec2{(float32(x) + 0.5) / n, (float32(y) + 0.5) / n}
			sum += m.Shade(material.Fragment{PointCoord: coord}).W()
		}
	}
	return sum / (n * n)
}

// rasterizeSprite draws a point sprite additively with depth test and no depth write.
// Sprites under one pixel are splatted into a single pixel with alpha scaled by their area.
func rasterizeSprite(fb *frameBuffer, sp *sprite, span rowSpan) {
	if sp.size < 1 {
		x, y := int(math.Floor(float64(sp.cx))), int(math.Floor(float64(sp.cy)))
		if x < 0 || x >= fb.width || y < span.y0 || y >= span.y1 {
			return
		}
		i := y*fb.width + x
		if sp.z >= fb.depth[i] {
			return
		}
		c := sp.mat.Shade(material.Fragment{PointCoord: mgl32.Vec2{0.5, 0.5}, World: sp.world})
		c[3] = sp.coverage * sp.size * sp.size
		fb.blend(i, c, sp.mat.Blending())
		return
	}

	half := sp.size / 2
	left, top := sp.cx-half, sp.cy-half
	x0 := max(0, int(math.Floor(float64(left))))
	x1 := min(fb.width-1, int(math.Ceil(float64(sp.cx+half))))
	y0 := max(span.y0, int(math.Floor(float64(top))))
	y1 := min(span.y1-1, int(math.Ceil(float64(sp.cy+half))))

	for y := y0; y <= y1; y++ {
		py := float32(y) + 0.5
		if py < top || py >= top+sp.size {
			continue
		}
		for x := x0; x <= x1; x++ {
			px := float32(x) + 0.5
			if px < left || px >= left+sp.size {
				continue
			}
			i := y*fb.width + x
			if sp.z >= fb.depth[i] {
				continue
			}
			coord := mgl32.Vec2{(px - left) / sp.size, (py - top) / sp.size}
			c := sp.mat.Shade(material.Fragment{PointCoord: coord, World: sp.world})
			if c.W() <= 0 {
				continue
			}
			fb.blend(i, c, sp.mat.Blending())
		}
	}
}
