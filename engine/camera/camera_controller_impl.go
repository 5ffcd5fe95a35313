package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-room/common"
	"github.com/go-gl/mathgl/mgl32"
)

const epsilon = 1e-6

// spherical is a position relative to the target: radius, polar angle phi from +Y and azimuth theta
// around +Y measured from +Z.
type spherical struct {
	radius float32
	phi    float32
	theta  float32
}

func sphericalFromOffset(v mgl32.Vec3) spherical {
	r := v.Len()
	if r < epsilon {
		return spherical{}
	}
	return spherical{
		radius: r,
		phi:    float32(math.Acos(float64(common.Clamp(v.Y()/r, -1, 1)))),
		theta:  float32(math.Atan2(float64(v.X()), float64(v.Z()))),
	}
}

func (s spherical) offset() mgl32.Vec3 {
	sinPhi := float32(math.Sin(float64(s.phi)))
	return mgl32.Vec3{
		s.radius * sinPhi * float32(math.Sin(float64(s.theta))),
		s.radius * float32(math.Cos(float64(s.phi))),
		s.radius * sinPhi * float32(math.Cos(float64(s.theta))),
	}
}

// orbitController is the orbit implementation of CameraController.
type orbitController struct {
	mu *sync.Mutex

	position mgl32.Vec3
	target   mgl32.Vec3

	initialPosition mgl32.Vec3
	initialTarget   mgl32.Vec3

	// Queued input, consumed by Update.
	delta     spherical
	panOffset mgl32.Vec3
	scale     float32

	enableDamping bool
	dampingFactor float32
	enableZoom    bool
	enablePan     bool

	minDistance   float32
	maxDistance   float32
	minPolarAngle float32
	maxPolarAngle float32

	rotateSpeed float32
	zoomSpeed   float32
	panSpeed    float32
}

// Compile-time interface compliance check
var _ CameraController = &orbitController{}

// NewOrbitController creates an orbit controller. Defaults allow any distance and polar angle,
// no damping, with zoom and pan enabled.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewOrbitController(options ...CameraControllerOption) CameraController {
	cc := &orbitController{
		mu:       &sync.Mutex{},
		position: mgl32.Vec3{0, 0, 1},
		scale:    1,

		dampingFactor: 0.05,
		enableZoom:    true,
		enablePan:     true,

		minDistance:   0,
		maxDistance:   float32(math.Inf(1)),
		minPolarAngle: 0,
		maxPolarAngle: math.Pi,

		rotateSpeed: 1,
		zoomSpeed:   1,
		panSpeed:    1,
	}
	for _, option := range options {
		option(cc)
	}
	cc.initialPosition = cc.position
	cc.initialTarget = cc.target
	return cc
}

func (cc *orbitController) Position() mgl32.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.position
}

func (cc *orbitController) Target() mgl32.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.target
}

func (cc *orbitController) Rotate(azimuth, polar float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.delta.theta -= azimuth
	cc.delta.phi -= polar
}

func (cc *orbitController) RotatePixels(dx, dy float32, viewportHeight int) {
	if viewportHeight <= 0 {
		return
	}
	h := float32(viewportHeight)
	cc.Rotate(2*math.Pi*dx/h*cc.rotateSpeed, 2*math.Pi*dy/h*cc.rotateSpeed)
}

func (cc *orbitController) PanPixels(dx, dy float32, viewportHeight int, fov float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if !cc.enablePan || viewportHeight <= 0 {
		return
	}

	// World units per pixel at the target's depth.
	distance := cc.position.Sub(cc.target).Len() * float32(math.Tan(float64(fov)/2))
	unit := 2 * distance / float32(viewportHeight) * cc.panSpeed

	right, up := cc.screenAxes()
	cc.panOffset = cc.panOffset.Add(right.Mul(-dx * unit)).Add(up.Mul(dy * unit))
}

func (cc *orbitController) Zoom(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if !cc.enableZoom || delta == 0 {
		return
	}
	step := float32(math.Pow(0.95, float64(cc.zoomSpeed*abs(delta))))
	if delta > 0 {
		cc.scale *= step
	} else {
		cc.scale /= step
	}
}

func (cc *orbitController) Update() bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	s := sphericalFromOffset(cc.position.Sub(cc.target))

	factor := float32(1)
	if cc.enableDamping {
		factor = cc.dampingFactor
	}
	s.theta += cc.delta.theta * factor
	s.phi += cc.delta.phi * factor

	s.phi = common.Clamp(s.phi, cc.minPolarAngle, cc.maxPolarAngle)
	s.phi = common.Clamp(s.phi, epsilon, math.Pi-epsilon)

	s.radius = common.Clamp(s.radius*cc.scale, cc.minDistance, cc.maxDistance)

	target := cc.target.Add(cc.panOffset.Mul(factor))
	position := target.Add(s.offset())

	if cc.enableDamping {
		cc.delta.theta *= 1 - cc.dampingFactor
		cc.delta.phi *= 1 - cc.dampingFactor
		cc.panOffset = cc.panOffset.Mul(1 - cc.dampingFactor)
	} else {
		cc.delta = spherical{}
		cc.panOffset = mgl32.Vec3{}
	}
	cc.scale = 1

	moved := position.Sub(cc.position).LenSqr() > epsilon || target.Sub(cc.target).LenSqr() > epsilon
	cc.position = position
	cc.target = target
	return moved
}

func (cc *orbitController) Reset() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.position = cc.initialPosition
	cc.target = cc.initialTarget
	cc.delta = spherical{}
	cc.panOffset = mgl32.Vec3{}
	cc.scale = 1
}

func (cc *orbitController) Distance() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.position.Sub(cc.target).Len()
}

func (cc *orbitController) PolarAngle() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return sphericalFromOffset(cc.position.Sub(cc.target)).phi
}

func (cc *orbitController) AzimuthAngle() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return sphericalFromOffset(cc.position.Sub(cc.target)).theta
}

// screenAxes returns the camera's right and up vectors consistent with LookAt and a world up of +Y.
// Caller must hold the mutex.
func (cc *orbitController) screenAxes() (right, up mgl32.Vec3) {
	back := cc.position.Sub(cc.target)
	if back.Len() < epsilon {
		return mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}
	}
	back = back.Normalize()
	right = mgl32.Vec3{0, 1, 0}.Cross(back)
	if right.Len() < epsilon {
		right = mgl32.Vec3{1, 0, 0}
	}
	right = right.Normalize()
	up = back.Cross(right)
	return right, up
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
