package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraController owns the eye and target of a camera and moves them with orbit and
// planar controls. The camera itself only computes matrices; Apply pushes the
// controller's state into it.
type CameraController interface {
	orbitCameraController
	planarCameraController

	// Position returns the world-space eye position.
	//
	// Returns:
	//   - mgl32.Vec3: the eye position
	Position() mgl32.Vec3

	// Target returns the orbit pivot and look-at point.
	//
	// Returns:
	//   - mgl32.Vec3: the target position
	Target() mgl32.Vec3

	// SetTarget moves the pivot and recomputes the eye from the orbit angles.
	//
	// Parameters:
	//   - t: the new target position
	SetTarget(t mgl32.Vec3)

	// Zoom moves the eye toward the target by delta * ZoomSpeed, within the radius bounds.
	//
	// Parameters:
	//   - delta: positive to move closer
	Zoom(delta float32)

	// Apply writes the controller's eye and target into a camera.
	//
	// Parameters:
	//   - cam: the camera to update
	Apply(cam Camera)
}

// orbitCameraController moves the eye on a sphere around the target using
// radius, azimuth around +Y and elevation above the horizontal plane.
type orbitCameraController interface {
	// OrbitLeft and OrbitRight step the azimuth by OrbitSpeed.
	OrbitLeft()
	OrbitRight()

	// OrbitUp and OrbitDown step the elevation by OrbitSpeed, within the elevation bounds.
	OrbitUp()
	OrbitDown()

	Radius() float32

	// SetRadius sets the distance from the target, clamped to the radius bounds.
	//
	// Parameters:
	//   - radius: the new orbit radius
	SetRadius(radius float32)

	Azimuth() float32

	// SetAzimuth sets the horizontal angle in radians. 0 places the eye on +Z of the target.
	//
	// Parameters:
	//   - azimuth: the new azimuth
	SetAzimuth(azimuth float32)

	Elevation() float32

	// SetElevation sets the vertical angle in radians, clamped to the elevation bounds.
	//
	// Parameters:
	//   - elevation: the new elevation
	SetElevation(elevation float32)

	OrbitSpeed() float32
	ZoomSpeed() float32
}

// planarCameraController translates eye and target together along the eye's local
// axes, so the orbit angles are unchanged.
type planarCameraController interface {
	// PanRight moves along the local right axis by delta * PanSpeed.
	PanRight(delta float32)

	// PanUp moves along the local up axis by delta * PanSpeed.
	PanUp(delta float32)

	// PanForward moves toward the target by delta * PanSpeed.
	PanForward(delta float32)

	PanSpeed() float32
}
