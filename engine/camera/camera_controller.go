package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraController defines the union interface for camera control systems.
// Controllers own positional state (position, target). Camera reads from controller
// and computes view/projection matrices. Embeds both orbitCameraController and
// planarCameraController, enabling orbit and planar controls to work simultaneously
// from a single controller instance.
type CameraController interface {
	orbitCameraController
	planarCameraController

	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - mgl32.Vec3: world-space camera position
	Position() mgl32.Vec3

	// Target returns the look-at point.
	//
	// Returns:
	//   - mgl32.Vec3: world-space target position
	Target() mgl32.Vec3

	// SetTarget sets the look-at/pivot point and recomputes position from spherical coordinates.
	//
	// Parameters:
	//   - target: world-space coordinates
	SetTarget(target mgl32.Vec3)

	// SetPosition sets the camera's world-space position directly. The orbit radius, azimuth and
	// elevation are re-derived so later orbit calls continue from the new position.
	//
	// Parameters:
	//   - position: world-space coordinates
	SetPosition(position mgl32.Vec3)

	// Zoom adjusts the camera's distance by modifying orbit radius.
	// Positive delta zooms in (closer to target).
	//
	// Parameters:
	//   - delta: zoom amount scaled by ZoomSpeed
	Zoom(delta float32)
}

// orbitCameraController defines orbit-specific control methods.
// Provides third-person orbit controls using spherical coordinates (radius, azimuth, elevation)
// relative to the target/pivot point.
type orbitCameraController interface {
	// Orbit rotates the camera around the target. Elevation is clamped to its bounds.
	//
	// Parameters:
	//   - azimuthDelta: horizontal angle change in radians
	//   - elevationDelta: vertical angle change in radians
	Orbit(azimuthDelta, elevationDelta float32)

	// Radius returns the current orbit radius (distance from target).
	//
	// Returns:
	//   - float32: current distance from target
	Radius() float32

	// SetRadius sets the orbit radius directly, clamped to min/max bounds.
	//
	// Parameters:
	//   - radius: new distance from target
	SetRadius(radius float32)

	// Azimuth returns the horizontal orbit angle in radians.
	//
	// Returns:
	//   - float32: the azimuth
	Azimuth() float32

	// Elevation returns the vertical orbit angle in radians.
	//
	// Returns:
	//   - float32: the elevation
	Elevation() float32
}

// planarCameraController defines planar movement methods that translate both
// position and target along camera-local axes.
type planarCameraController interface {
	// PanRight moves the camera and target along the camera's right axis.
	//
	// Parameters:
	//   - delta: distance scaled by PanSpeed
	PanRight(delta float32)

	// PanForward moves the camera and target along the camera's view direction.
	//
	// Parameters:
	//   - delta: distance scaled by PanSpeed
	PanForward(delta float32)
}
