package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roomController(options ...CameraControllerOption) CameraController {
	base := []CameraControllerOption{
		WithPosition(mgl32.Vec3{18, 8, 20}),
		WithTarget(mgl32.Vec3{}),
		WithDistanceLimits(15, 30),
		WithPolarLimits(math.Pi/5, math.Pi/2),
	}
	return NewOrbitController(append(base, options...)...)
}

func TestCamera_SetAspect(t *testing.T) {
	cam := NewCamera(WithFov(mgl32.DegToRad(10)), WithClipPlanes(0.1, 100), WithController(roomController()))

	cam.SetAspect(1920.0 / 1080.0)

	assert.InDelta(t, 1920.0/1080.0, cam.Aspect(), 1e-6)
	want := mgl32.Perspective(mgl32.DegToRad(10), 1920.0/1080.0, 0.1, 100)
	assert.True(t, want.ApproxEqual(cam.ProjectionMatrix()))
	assert.Equal(t, mgl32.Vec3{18, 8, 20}, cam.Position())
}

func TestCamera_ViewProjectionCentersTarget(t *testing.T) {
	cam := NewCamera(WithFov(mgl32.DegToRad(10)), WithAspect(1.5), WithController(roomController()))

	clip := cam.ViewProjectionMatrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	require.Greater(t, clip.W(), float32(0))
	assert.InDelta(t, 0, clip.X()/clip.W(), 1e-5)
	assert.InDelta(t, 0, clip.Y()/clip.W(), 1e-5)
}

func TestCamera_WithoutController(t *testing.T) {
	cam := NewCamera(WithLookAt(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{}))
	cam.Update()
	assert.Equal(t, mgl32.Vec3{0, 0, 5}, cam.Position())
	assert.Nil(t, cam.Controller())

	view := cam.ViewMatrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, -5, view.Z(), 1e-5)
}

func TestOrbitController_DistanceLimits(t *testing.T) {
	cc := roomController()

	for range 200 {
		cc.Zoom(1)
		cc.Update()
	}
	assert.InDelta(t, 15, cc.Distance(), 1e-3)

	for range 200 {
		cc.Zoom(-1)
		cc.Update()
	}
	assert.InDelta(t, 30, cc.Distance(), 1e-3)
}

func TestOrbitController_PolarLimits(t *testing.T) {
	cc := roomController()

	cc.Rotate(0, 10)
	cc.Update()
	assert.InDelta(t, math.Pi/5, cc.PolarAngle(), 1e-4)

	cc.Rotate(0, -10)
	cc.Update()
	assert.InDelta(t, math.Pi/2, cc.PolarAngle(), 1e-4)
}

func TestOrbitController_UpdateWithoutInputKeepsPose(t *testing.T) {
	cc := roomController()
	before := cc.Position()

	moved := cc.Update()

	assert.False(t, moved)
	assert.True(t, before.ApproxEqualThreshold(cc.Position(), 1e-4))
}

func TestOrbitController_DampingConverges(t *testing.T) {
	cc := roomController(WithDamping(true, 0.05))
	start := cc.AzimuthAngle()

	cc.Rotate(0.5, 0)
	cc.Update()
	firstStep := start - cc.AzimuthAngle()
	assert.InDelta(t, 0.5*0.05, firstStep, 1e-4, "one update applies only the damping factor")

	for range 400 {
		cc.Update()
	}
	assert.InDelta(t, 0.5, start-cc.AzimuthAngle(), 1e-3)
	assert.False(t, cc.Update(), "motion settles")
}

func TestOrbitController_PanMovesTarget(t *testing.T) {
	cc := roomController()
	cc.PanPixels(100, 0, 800, mgl32.DegToRad(10))
	cc.Update()

	assert.NotEqual(t, mgl32.Vec3{}, cc.Target())
	assert.InDelta(t, 0, cc.Target().Y(), 1e-5, "horizontal drag keeps the target height")

	cc.Reset()
	assert.Equal(t, mgl32.Vec3{}, cc.Target())
	assert.Equal(t, mgl32.Vec3{18, 8, 20}, cc.Position())
}

func TestOrbitController_DisabledInput(t *testing.T) {
	cc := roomController(WithZoom(false), WithPan(false))
	before := cc.Position()

	cc.Zoom(5)
	cc.PanPixels(50, 50, 600, 1)

	assert.False(t, cc.Update())
	assert.True(t, before.ApproxEqualThreshold(cc.Position(), 1e-4))
}
