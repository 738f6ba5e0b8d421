package camera

// ControllerBuilderOption is a functional option applied to an orbit controller during NewOrbitController.
type ControllerBuilderOption func(*orbitController)

// WithTarget sets the initial look-at pivot.
//
// Parameters:
//   - x, y, z: world-space coordinates of the pivot
//
// Returns:
//   - ControllerBuilderOption: functional option to set the target
func WithTarget(x, y, z float32) ControllerBuilderOption {
	return func(oc *orbitController) {
		oc.target = [3]float32{x, y, z}
	}
}

// WithRadius sets the initial distance between eye and target.
//
// Parameters:
//   - radius: the orbit radius
//
// Returns:
//   - ControllerBuilderOption: functional option to set the radius
func WithRadius(radius float32) ControllerBuilderOption {
	return func(oc *orbitController) {
		oc.radius = radius
	}
}

// WithRadiusBounds sets the zoom limits.
//
// Parameters:
//   - minRadius: closest allowed distance to the target
//   - maxRadius: furthest allowed distance to the target
//
// Returns:
//   - ControllerBuilderOption: functional option to set the radius bounds
func WithRadiusBounds(minRadius, maxRadius float32) ControllerBuilderOption {
	return func(oc *orbitController) {
		oc.minRadius = minRadius
		oc.maxRadius = maxRadius
	}
}

// WithAngles sets the initial azimuth and elevation in radians.
//
// Parameters:
//   - azimuth: rotation around the world Y axis
//   - elevation: angle above the horizontal plane
//
// Returns:
//   - ControllerBuilderOption: functional option to set the orbit angles
func WithAngles(azimuth, elevation float32) ControllerBuilderOption {
	return func(oc *orbitController) {
		oc.azimuth = azimuth
		oc.elevation = elevation
	}
}

// WithOrbitSpeed sets the angle, in radians, covered by one orbit step.
//
// Parameters:
//   - speed: radians per step
//
// Returns:
//   - ControllerBuilderOption: functional option to set the orbit speed
func WithOrbitSpeed(speed float32) ControllerBuilderOption {
	return func(oc *orbitController) {
		oc.orbitSpeed = speed
	}
}

// WithZoomSpeed sets the distance covered by one unit of zoom.
//
// Parameters:
//   - speed: world units per zoom unit
//
// Returns:
//   - ControllerBuilderOption: functional option to set the zoom speed
func WithZoomSpeed(speed float32) ControllerBuilderOption {
	return func(oc *orbitController) {
		oc.zoomSpeed = speed
	}
}
