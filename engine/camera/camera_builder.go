package camera

// CameraBuilderOption is a functional option applied to a camera during NewCamera.
// Matrices are computed once after all options have been applied.
type CameraBuilderOption func(*cameraImpl)

// WithUp sets the camera's up vector used by LookAt.
//
// Parameters:
//   - x, y, z: up vector components
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's up vector
func WithUp(x, y, z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.up = [3]float32{x, y, z}
	}
}

// WithFov sets the camera's field of view in radians.
//
// Parameters:
//   - fov: field of view in radians
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's field of view
func WithFov(fov float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.fov = fov
	}
}

// WithAspect sets the camera's aspect ratio (width / height).
//
// Parameters:
//   - aspect: the aspect ratio to set
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's aspect ratio
func WithAspect(aspect float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.aspect = aspect
	}
}

// WithClipPlanes sets the near and far clipping plane distances.
//
// Parameters:
//   - near: near plane distance
//   - far: far plane distance
//
// Returns:
//   - CameraBuilderOption: a function that sets the clip planes
func WithClipPlanes(near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.near = near
		c.far = far
	}
}

// WithLookAt places the camera at eye looking towards target.
// Ignored when a controller is attached, since the controller owns the eye.
//
// Parameters:
//   - eye: world-space camera position
//   - target: world-space look-at point
//
// Returns:
//   - CameraBuilderOption: a function that positions the camera
func WithLookAt(eye, target [3]float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.lookAt(eye, target)
	}
}

// WithClearFlags sets the clear flags the camera starts with and returns to on ResetClearFlags.
//
// Parameters:
//   - flags: the default clear flags
//
// Returns:
//   - CameraBuilderOption: a function that sets the default clear flags
func WithClearFlags(flags ClearFlags) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.defaultClearFlags = flags
	}
}

// WithController attaches a controller to the camera.
// After all options are applied, the camera takes its eye and target from it.
//
// Parameters:
//   - ctrl: the controller to attach
//
// Returns:
//   - CameraBuilderOption: functional option to set the controller
func WithController(ctrl Controller) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.controller = ctrl
	}
}
