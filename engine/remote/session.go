package remote

import (
	"github.com/Carmen-Shannon/oxy-remote/engine/framebuffer"
)

// Submission is the camera pose sent to the remote worker for one frame.
// Matrices are already converted into the remote convention.
type Submission struct {
	FrameID      uint64
	Near         float32
	Far          float32
	Projection   [16]float32
	View         [16]float32
	TargetWidth  int
	TargetHeight int
}

// FrameUpdate is the remote worker's echo of a previously submitted pose, carrying the
// parameters the composited frame was actually rendered with. FrameID 0 means nothing new.
type FrameUpdate struct {
	FrameID    uint64
	Near       float32
	Far        float32
	Projection [16]float32
	View       [16]float32
}

// NoFrame reports whether u is the "nothing new" sentinel.
func (u FrameUpdate) NoFrame() bool {
	return u.FrameID == 0
}

// CoordinateSystem is a platform spatial anchor handed to a passthrough binding.
// Handles are compared by pointer: the platform hands out a new one when the anchor changes.
type CoordinateSystem struct {
	Name   string
	Handle uintptr
}

// CoordinateSystemSource returns the platform's current coordinate system, or nil if none.
type CoordinateSystemSource func() *CoordinateSystem

// Session is the part of a remote session handle shared by every binding.
type Session interface {
	// Connected reports whether the session has a live connection to its worker.
	//
	// Returns:
	//   - bool: true while connected
	Connected() bool

	// CopyCompositeInto copies the most recent composited frame into the bound local targets.
	//
	// Parameters:
	//   - color: the local color target
	//   - depth: the local depth target
	//
	// Returns:
	//   - error: nil on success; failure is recoverable and retried next frame
	CopyCompositeInto(color, depth framebuffer.Target) error
}

// SimulationSession is a session that renders from camera poses submitted every frame.
type SimulationSession interface {
	Session

	// SubmitPose hands the pose for one frame to the worker and returns, without waiting
	// on the network, the echo of the newest frame composited at or before it.
	//
	// Parameters:
	//   - s: the pose submission
	//
	// Returns:
	//   - FrameUpdate: the echoed frame, or the zero-id sentinel
	//   - error: an error if the submission could not be handed over
	SubmitPose(s Submission) (FrameUpdate, error)
}

// PassthroughSession is a session anchored to a platform coordinate system.
// The worker tracks the head pose itself, so no per-frame pose is submitted.
type PassthroughSession interface {
	Session

	// UpdateCoordinateSystem forwards the platform's spatial anchor to the worker.
	//
	// Parameters:
	//   - cs: the coordinate system handle
	//
	// Returns:
	//   - error: an error if the worker rejected the handle
	UpdateCoordinateSystem(cs *CoordinateSystem) error
}
