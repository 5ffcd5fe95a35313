package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraController owns the camera's positional state (position, target). The camera reads from
// the controller and computes view/projection matrices.
//
// The orbit implementation keeps the camera on a sphere around the target. Input methods only queue
// a delta; Update applies the queued delta, optionally damped, and enforces the distance and polar
// angle limits. Update must be called once per frame for damping to settle.
type CameraController interface {
	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - mgl32.Vec3: world-space camera position
	Position() mgl32.Vec3

	// Target returns the orbit pivot and look-at point.
	//
	// Returns:
	//   - mgl32.Vec3: world-space target position
	Target() mgl32.Vec3

	// Rotate queues an orbit around the target.
	//
	// Parameters:
	//   - azimuth: angle in radians around the world up axis; positive orbits left
	//   - polar: angle in radians toward the top pole; positive orbits up
	Rotate(azimuth, polar float32)

	// RotatePixels queues an orbit from a pointer drag. A drag across the full viewport height is one full turn.
	//
	// Parameters:
	//   - dx, dy: pointer movement in pixels
	//   - viewportHeight: viewport height in pixels
	RotatePixels(dx, dy float32, viewportHeight int)

	// PanPixels queues a pan of the target in the camera's screen plane so the scene follows the pointer.
	// Ignored when panning is disabled.
	//
	// Parameters:
	//   - dx, dy: pointer movement in pixels
	//   - viewportHeight: viewport height in pixels
	//   - fov: the camera's vertical field of view in radians
	PanPixels(dx, dy float32, viewportHeight int, fov float32)

	// Zoom queues a dolly toward (positive) or away from (negative) the target. One unit is one scroll notch.
	// Ignored when zoom is disabled.
	//
	// Parameters:
	//   - delta: scroll amount
	Zoom(delta float32)

	// Update applies queued input and limits.
	//
	// Returns:
	//   - bool: true if the position or target moved
	Update() bool

	// Reset restores the position and target the controller was created with and drops queued input.
	Reset()

	// Distance returns the current distance from the target.
	Distance() float32

	// PolarAngle returns the current angle from the world up axis in radians.
	PolarAngle() float32

	// AzimuthAngle returns the current angle around the world up axis in radians.
	AzimuthAngle() float32
}
