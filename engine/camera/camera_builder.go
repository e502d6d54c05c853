package camera

import (
	"github.com/go-gl/mathgl/mgl32"
)

// CameraBuilderOption configures a camera in NewCamera.
type CameraBuilderOption func(*cameraImpl)

// WithUp sets the up vector used to build the view matrix. Defaults to +Y.
func WithUp(up mgl32.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.up = up
	}
}

// WithPerspective sets every projection parameter at once.
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: width / height
//   - near: near plane distance
//   - far: far plane distance
//
// Returns:
//   - CameraBuilderOption: functional option to set the projection
func WithPerspective(fovY, aspect, near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.fov, c.aspect, c.near, c.far = fovY, aspect, near, far
	}
}

// WithFov sets the vertical field of view in radians.
func WithFov(fov float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.fov = fov
	}
}

// WithAspect sets the aspect ratio (width / height).
func WithAspect(aspect float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.aspect = aspect
	}
}

func WithNear(near float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.near = near
	}
}

func WithFar(far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.far = far
	}
}

// WithController attaches the controller the camera follows on Update. The eye and matrices are
// derived from it immediately.
//
// Parameters:
//   - ctrl: the controller
//
// Returns:
//   - CameraBuilderOption: functional option to set the controller
func WithController(ctrl CameraController) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.controller = ctrl
	}
}
