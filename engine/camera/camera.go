package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-remote/common"
)

type cameraImpl struct {
	mu *sync.Mutex

	up [3]float32

	fov    float32
	aspect float32
	near   float32
	far    float32

	// worldTransform is camera-to-world; viewMatrix is its inverse.
	worldTransform          [16]float32
	viewMatrix              [16]float32
	projectionMatrix        [16]float32
	viewProjectionMatrix    [16]float32
	inverseProjectionMatrix [16]float32

	// customProjection freezes projectionMatrix until ResetProjection.
	customProjection bool

	clearFlags        ClearFlags
	defaultClearFlags ClearFlags

	controller Controller
}

// Pose is the part of a camera's state that describes where it is: the world
// transform, its inverse view matrix and the clip planes. RestorePose puts it
// back exactly, without recomputing the view from the world transform.
type Pose struct {
	World [16]float32
	View  [16]float32
	Near  float32
	Far   float32
}

// State is a comparable snapshot of every camera field a frame may touch.
type State struct {
	Fov              float32
	Aspect           float32
	Near             float32
	Far              float32
	World            [16]float32
	View             [16]float32
	Projection       [16]float32
	CustomProjection bool
	ClearFlags       ClearFlags
}

// Camera defines the interface for the camera system.
// The camera holds perspective settings and a world transform, and computes
// view/projection matrices from them. A custom projection may temporarily replace
// the computed one, and clear flags tell the renderer how to begin the next pass.
type Camera interface {
	// Fov returns the vertical field of view in radians.
	//
	// Returns:
	//   - float32: field of view in radians
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// Near returns the near clipping plane distance.
	//
	// Returns:
	//   - float32: near plane distance
	Near() float32

	// Far returns the far clipping plane distance.
	//
	// Returns:
	//   - float32: far plane distance
	Far() float32

	// WorldTransform returns the camera-to-world matrix (column-major).
	//
	// Returns:
	//   - [16]float32: the world transform
	WorldTransform() [16]float32

	// Position returns the translation of the world transform.
	//
	// Returns:
	//   - x, y, z: world-space camera position
	Position() (x, y, z float32)

	// ViewMatrix returns the world-to-camera matrix (column-major).
	//
	// Returns:
	//   - [16]float32: the view matrix
	ViewMatrix() [16]float32

	// ProjectionMatrix returns the active projection matrix (column-major).
	// While a custom projection is installed this is the custom matrix.
	//
	// Returns:
	//   - [16]float32: the projection matrix
	ProjectionMatrix() [16]float32

	// ViewProjectionMatrix returns projection * view.
	//
	// Returns:
	//   - [16]float32: the combined view-projection matrix
	ViewProjectionMatrix() [16]float32

	// InverseProjectionMatrix returns the inverse of the active projection matrix.
	//
	// Returns:
	//   - [16]float32: the inverse projection matrix
	InverseProjectionMatrix() [16]float32

	// CustomProjection reports whether a custom projection is installed.
	//
	// Returns:
	//   - bool: true while SetCustomProjection is in effect
	CustomProjection() bool

	// ClearFlags returns the targets the next render pass should clear.
	//
	// Returns:
	//   - ClearFlags: the current clear flags
	ClearFlags() ClearFlags

	// Pose returns the camera's current pose.
	//
	// Returns:
	//   - Pose: world transform, view matrix and clip planes
	Pose() Pose

	// State returns a snapshot of the camera.
	//
	// Returns:
	//   - State: comparable copy of the camera fields
	State() State

	// Controller returns the attached Controller, or nil.
	//
	// Returns:
	//   - Controller: the attached controller or nil
	Controller() Controller

	// Update reads the eye and target from the controller and recomputes the matrices.
	// Does nothing when no controller is attached.
	Update()

	// SetFov sets the field of view in radians.
	//
	// Parameters:
	//   - fov: field of view in radians
	SetFov(fov float32)

	// SetAspect sets the aspect ratio (width / height).
	//
	// Parameters:
	//   - aspect: the aspect ratio
	SetAspect(aspect float32)

	// SetNear sets the near clipping plane distance.
	//
	// Parameters:
	//   - near: near plane distance
	SetNear(near float32)

	// SetFar sets the far clipping plane distance.
	//
	// Parameters:
	//   - far: far plane distance
	SetFar(far float32)

	// SetClipPlanes sets both clipping planes with a single matrix update.
	//
	// Parameters:
	//   - near: near plane distance
	//   - far: far plane distance
	SetClipPlanes(near, far float32)

	// SetWorldTransform replaces the camera-to-world matrix and derives the view from it.
	// A singular transform is rejected and leaves the camera unchanged.
	//
	// Parameters:
	//   - m: the new world transform (column-major)
	//
	// Returns:
	//   - bool: false if m is not invertible
	SetWorldTransform(m [16]float32) bool

	// LookAt places the camera at eye looking towards target.
	//
	// Parameters:
	//   - eye: world-space camera position
	//   - target: world-space look-at point
	LookAt(eye, target [3]float32)

	// RestorePose puts back a pose captured with Pose, bit for bit.
	//
	// Parameters:
	//   - p: the pose to restore
	RestorePose(p Pose)

	// SetCustomProjection installs m as the active projection, overriding the
	// matrix computed from fov, aspect and clip planes until ResetProjection.
	//
	// Parameters:
	//   - m: the projection matrix to install (column-major)
	SetCustomProjection(m [16]float32)

	// ResetProjection returns to the computed projection.
	ResetProjection()

	// SetClearFlags sets the targets the next render pass should clear.
	//
	// Parameters:
	//   - flags: the clear flags
	SetClearFlags(flags ClearFlags)

	// ResetClearFlags restores the clear flags the camera was built with.
	ResetClearFlags()

	// SetController attaches a Controller to the camera.
	//
	// Parameters:
	//   - ctrl: the controller to attach
	SetController(ctrl Controller)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera at the origin looking down -Z with default perspective settings.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:                &sync.Mutex{},
		up:                [3]float32{0, 1, 0},
		fov:               45.0 * (math.Pi / 180.0),
		aspect:            1.0,
		near:              0.1,
		far:               100.0,
		worldTransform:    common.IdentityMatrix,
		viewMatrix:        common.IdentityMatrix,
		clearFlags:        ClearAll,
		defaultClearFlags: ClearAll,
	}
	for _, option := range options {
		option(c)
	}
	c.clearFlags = c.defaultClearFlags
	if c.controller != nil {
		c.applyController()
	}
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) WorldTransform() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.worldTransform
}

func (c *cameraImpl) Position() (x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return common.Translation(c.worldTransform[:])
}

func (c *cameraImpl) ViewMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) InverseProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inverseProjectionMatrix
}

func (c *cameraImpl) CustomProjection() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.customProjection
}

func (c *cameraImpl) ClearFlags() ClearFlags {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clearFlags
}

func (c *cameraImpl) Pose() Pose {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Pose{
		World: c.worldTransform,
		View:  c.viewMatrix,
		Near:  c.near,
		Far:   c.far,
	}
}

func (c *cameraImpl) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Fov:              c.fov,
		Aspect:           c.aspect,
		Near:             c.near,
		Far:              c.far,
		World:            c.worldTransform,
		View:             c.viewMatrix,
		Projection:       c.projectionMatrix,
		CustomProjection: c.customProjection,
		ClearFlags:       c.clearFlags,
	}
}

func (c *cameraImpl) Controller() Controller {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

func (c *cameraImpl) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.controller == nil {
		return
	}
	c.applyController()
	c.updateMatrices()
}

func (c *cameraImpl) SetFov(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = fov
	c.updateMatrices()
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) SetNear(near float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.near = near
	c.updateMatrices()
}

func (c *cameraImpl) SetFar(far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.far = far
	c.updateMatrices()
}

func (c *cameraImpl) SetClipPlanes(near, far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.near = near
	c.far = far
	c.updateMatrices()
}

func (c *cameraImpl) SetWorldTransform(m [16]float32) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	var view [16]float32
	if !common.Invert4(view[:], m[:]) {
		return false
	}
	c.worldTransform = m
	c.viewMatrix = view
	c.updateMatrices()
	return true
}

func (c *cameraImpl) LookAt(eye, target [3]float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lookAt(eye, target)
	c.updateMatrices()
}

func (c *cameraImpl) RestorePose(p Pose) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.worldTransform = p.World
	c.viewMatrix = p.View
	c.near = p.Near
	c.far = p.Far
	c.updateMatrices()
}

func (c *cameraImpl) SetCustomProjection(m [16]float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.projectionMatrix = m
	c.customProjection = true
	c.updateMatrices()
}

func (c *cameraImpl) ResetProjection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.customProjection = false
	c.updateMatrices()
}

func (c *cameraImpl) SetClearFlags(flags ClearFlags) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearFlags = flags
}

func (c *cameraImpl) ResetClearFlags() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearFlags = c.defaultClearFlags
}

func (c *cameraImpl) SetController(ctrl Controller) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controller = ctrl
}

// applyController places the camera at the controller's eye looking at its target.
// Caller must hold the mutex.
func (c *cameraImpl) applyController() {
	px, py, pz := c.controller.Position()
	tx, ty, tz := c.controller.Target()
	c.lookAt([3]float32{px, py, pz}, [3]float32{tx, ty, tz})
}

// lookAt builds the view matrix with LookAt and derives the world transform from it.
// Caller must hold the mutex.
func (c *cameraImpl) lookAt(eye, target [3]float32) {
	var view [16]float32
	common.LookAt(view[:],
		eye[0], eye[1], eye[2],
		target[0], target[1], target[2],
		c.up[0], c.up[1], c.up[2],
	)
	var world [16]float32
	if !common.Invert4(world[:], view[:]) {
		return
	}
	c.viewMatrix = view
	c.worldTransform = world
}

// updateMatrices recomputes the projection (unless a custom one is installed),
// the view-projection and the inverse projection. The view matrix is maintained by
// the pose setters. Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	if !c.customProjection {
		common.Perspective(c.projectionMatrix[:], c.fov, c.aspect, c.near, c.far)
	}
	common.Mul4(c.viewProjectionMatrix[:], c.projectionMatrix[:], c.viewMatrix[:])
	if !common.Invert4(c.inverseProjectionMatrix[:], c.projectionMatrix[:]) {
		common.Identity(c.inverseProjectionMatrix[:])
	}
}
