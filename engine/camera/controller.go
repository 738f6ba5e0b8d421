package camera

import (
	"math"
	"sync"
)

// Controller owns the positional state of a camera (eye and look-at target).
// The camera reads it on Update and derives its world transform from it.
type Controller interface {
	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - x, y, z: world-space camera position
	Position() (x, y, z float32)

	// Target returns the look-at point.
	//
	// Returns:
	//   - x, y, z: world-space target position
	Target() (x, y, z float32)

	// SetTarget moves the pivot and recomputes the position from the orbit angles.
	//
	// Parameters:
	//   - x, y, z: world-space coordinates
	SetTarget(x, y, z float32)

	// OrbitLeft rotates the eye left around the target by one orbit step.
	OrbitLeft()

	// OrbitRight rotates the eye right around the target by one orbit step.
	OrbitRight()

	// OrbitUp raises the eye by one orbit step, clamped below the pole.
	OrbitUp()

	// OrbitDown lowers the eye by one orbit step, clamped above the horizon.
	OrbitDown()

	// Zoom moves the eye towards the target. Positive delta zooms in.
	//
	// Parameters:
	//   - delta: zoom amount, scaled by the zoom speed
	Zoom(delta float32)

	// Radius returns the distance between eye and target.
	//
	// Returns:
	//   - float32: current orbit radius
	Radius() float32
}

type orbitController struct {
	mu *sync.Mutex

	position [3]float32
	target   [3]float32

	radius    float32
	azimuth   float32
	elevation float32

	minRadius, maxRadius       float32
	minElevation, maxElevation float32

	orbitSpeed float32
	zoomSpeed  float32
}

var _ Controller = &orbitController{}

// NewOrbitController creates an orbit controller looking at the origin.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - Controller: the newly created controller
func NewOrbitController(options ...ControllerBuilderOption) Controller {
	oc := &orbitController{
		mu:           &sync.Mutex{},
		radius:       10,
		elevation:    float32(math.Pi / 8),
		minRadius:    1,
		maxRadius:    1000,
		minElevation: -float32(math.Pi/2 - 0.05),
		maxElevation: float32(math.Pi/2 - 0.05),
		orbitSpeed:   0.03,
		zoomSpeed:    1,
	}
	for _, option := range options {
		option(oc)
	}
	oc.clamp()
	oc.updatePosition()
	return oc
}

func (oc *orbitController) Position() (x, y, z float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.position[0], oc.position[1], oc.position[2]
}

func (oc *orbitController) Target() (x, y, z float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.target[0], oc.target[1], oc.target[2]
}

func (oc *orbitController) SetTarget(x, y, z float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.target = [3]float32{x, y, z}
	oc.updatePosition()
}

func (oc *orbitController) OrbitLeft()  { oc.orbit(-1, 0) }
func (oc *orbitController) OrbitRight() { oc.orbit(1, 0) }
func (oc *orbitController) OrbitUp()    { oc.orbit(0, 1) }
func (oc *orbitController) OrbitDown()  { oc.orbit(0, -1) }

func (oc *orbitController) Zoom(delta float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.radius -= delta * oc.zoomSpeed
	oc.clamp()
	oc.updatePosition()
}

func (oc *orbitController) Radius() float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.radius
}

func (oc *orbitController) orbit(azimuthSteps, elevationSteps float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.azimuth += azimuthSteps * oc.orbitSpeed
	oc.elevation += elevationSteps * oc.orbitSpeed
	oc.clamp()
	oc.updatePosition()
}

// clamp keeps radius and elevation inside their bounds. Caller must hold the mutex.
func (oc *orbitController) clamp() {
	oc.radius = min(max(oc.radius, oc.minRadius), oc.maxRadius)
	oc.elevation = min(max(oc.elevation, oc.minElevation), oc.maxElevation)
}

// updatePosition recomputes the eye from spherical coordinates around the target.
// Caller must hold the mutex.
func (oc *orbitController) updatePosition() {
	cosElev := float32(math.Cos(float64(oc.elevation)))
	sinElev := float32(math.Sin(float64(oc.elevation)))
	cosAzim := float32(math.Cos(float64(oc.azimuth)))
	sinAzim := float32(math.Sin(float64(oc.azimuth)))

	oc.position[0] = oc.target[0] + oc.radius*cosElev*sinAzim
	oc.position[1] = oc.target[1] + oc.radius*sinElev
	oc.position[2] = oc.target[2] + oc.radius*cosElev*cosAzim
}
