package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*orbitController)

// WithPosition sets the initial camera position.
//
// Parameters:
//   - position: world-space camera position
//
// Returns:
//   - CameraControllerOption: functional option to set the position
func WithPosition(position mgl32.Vec3) CameraControllerOption {
	return func(cc *orbitController) {
		cc.position = position
	}
}

// WithTarget sets the look-at/pivot point.
//
// Parameters:
//   - target: world-space pivot
//
// Returns:
//   - CameraControllerOption: functional option to set the target position
func WithTarget(target mgl32.Vec3) CameraControllerOption {
	return func(cc *orbitController) {
		cc.target = target
	}
}

// WithDamping enables inertia: each Update applies factor of the queued input and keeps the rest.
//
// Parameters:
//   - enabled: whether damping is on
//   - factor: fraction of queued input applied per Update, in (0, 1]
//
// Returns:
//   - CameraControllerOption: functional option to configure damping
func WithDamping(enabled bool, factor float32) CameraControllerOption {
	return func(cc *orbitController) {
		cc.enableDamping = enabled
		if factor > 0 && factor <= 1 {
			cc.dampingFactor = factor
		}
	}
}

// WithZoom enables or disables scroll zoom.
func WithZoom(enabled bool) CameraControllerOption {
	return func(cc *orbitController) {
		cc.enableZoom = enabled
	}
}

// WithPan enables or disables panning.
func WithPan(enabled bool) CameraControllerOption {
	return func(cc *orbitController) {
		cc.enablePan = enabled
	}
}

// WithDistanceLimits bounds the distance from the target.
//
// Parameters:
//   - minDistance: closest allowed distance
//   - maxDistance: farthest allowed distance
//
// Returns:
//   - CameraControllerOption: functional option to set the limits
func WithDistanceLimits(minDistance, maxDistance float32) CameraControllerOption {
	return func(cc *orbitController) {
		cc.minDistance = minDistance
		cc.maxDistance = maxDistance
	}
}

// WithPolarLimits bounds the angle from the world up axis, in radians.
//
// Parameters:
//   - minPolar: smallest angle (0 looks straight down)
//   - maxPolar: largest angle (pi/2 is level with the target)
//
// Returns:
//   - CameraControllerOption: functional option to set the limits
func WithPolarLimits(minPolar, maxPolar float32) CameraControllerOption {
	return func(cc *orbitController) {
		cc.minPolarAngle = minPolar
		cc.maxPolarAngle = maxPolar
	}
}

// WithSpeeds scales rotate, zoom and pan input.
func WithSpeeds(rotate, zoom, pan float32) CameraControllerOption {
	return func(cc *orbitController) {
		cc.rotateSpeed = rotate
		cc.zoomSpeed = zoom
		cc.panSpeed = pan
	}
}
