package remote

import "errors"

var (
	// ErrNotConnected is returned by a session that has no live connection to its worker.
	ErrNotConnected = errors.New("remote: session not connected")
	// ErrNoComposite is returned when no composited frame is ready to copy.
	ErrNoComposite = errors.New("remote: no composited frame available")
	// ErrCopyFailed is returned when a composited frame could not be written into the local targets.
	ErrCopyFailed = errors.New("remote: composite copy failed")
	// ErrCoordinateSystem is returned when a coordinate system handle is rejected.
	ErrCoordinateSystem = errors.New("remote: coordinate system update failed")
	// ErrInvalidBinding is returned when a synchronizer is built from an empty Binding.
	ErrInvalidBinding = errors.New("remote: invalid graphics binding")
	// ErrSingularBasis is returned when a Convention basis cannot be inverted.
	ErrSingularBasis = errors.New("remote: convention basis is singular")
)
