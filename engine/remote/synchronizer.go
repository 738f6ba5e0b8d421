package remote

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-remote/common"
	"github.com/Carmen-Shannon/oxy-remote/engine/camera"
	"github.com/Carmen-Shannon/oxy-remote/engine/framebuffer"
)

// Phase is the synchronizer's position in the per-frame cycle.
type Phase int

const (
	// PhaseIdle is the state before the first PrepareFrame and after Release.
	PhaseIdle Phase = iota
	// PhaseSubmitting follows PrepareFrame until CompositeFrame runs.
	PhaseSubmitting
	// PhaseBlitted follows CompositeFrame until the next PrepareFrame or Release.
	PhaseBlitted
)

func (p Phase) String() string {
	switch p {
	case PhaseSubmitting:
		return "submitting"
	case PhaseBlitted:
		return "blitted"
	default:
		return "idle"
	}
}

// SyncState is the synchronizer's working set for one session.
type SyncState struct {
	// LastSubmittedFrameID is the id of the most recent Submission (0 before the first).
	LastSubmittedFrameID uint64
	// LastAcceptedFrameID is the id of the most recent echo applied to the camera.
	LastAcceptedFrameID uint64
	// PendingLocalPose is the camera pose to restore in CompositeFrame.
	PendingLocalPose camera.Pose
	// PendingProjection is the caller's custom projection, valid when PendingCustomProjection is set.
	PendingProjection       [16]float32
	PendingCustomProjection bool
	// OverrideApplied is true between an accepted PrepareFrame and the next restore.
	OverrideApplied bool
	// CoordinateSystem is the last handle forwarded by a passthrough binding.
	CoordinateSystem *CoordinateSystem
}

// Stats counts what happened to frames over the lifetime of a synchronizer.
type Stats struct {
	Submitted                int
	Accepted                 int
	Sentinel                 int
	Rejected                 int
	SubmitFailures           int
	OrderingCorrections      int
	Composited               int
	CopyFailures             int
	ConsecutiveCopyFailures  int
	CoordinateSystemUpdates  int
	CoordinateSystemFailures int
}

type synchronizer struct {
	binding     Binding
	frameBuffer framebuffer.FrameBuffer
	binder      framebuffer.TargetBinder

	clearMask camera.ClearFlags

	state SyncState
	phase Phase
	stats Stats
}

// Synchronizer keeps a local camera consistent with frames composited remotely one or more
// frames after their pose was submitted. It is driven from the render goroutine once per
// frame, PrepareFrame before the remaining draw submission and CompositeFrame after it,
// and is not safe for concurrent use.
type Synchronizer interface {
	// PrepareFrame submits the camera's pose and, if the worker echoed a newer composited
	// frame, overrides the camera with the echoed pose and projection so the rest of the
	// frame matches the image that will be blitted.
	// Passthrough bindings submit nothing and always return false.
	//
	// Parameters:
	//   - cam: the camera rendering this frame
	//
	// Returns:
	//   - bool: true if the camera was overridden with a remote frame
	PrepareFrame(cam camera.Camera) bool

	// CompositeFrame restores the camera's local pose and projection, binds the local frame
	// buffer and copies the remote composite into it. On success the camera's color and
	// depth clear flags are dropped so the next pass keeps the composite.
	//
	// Parameters:
	//   - cam: the camera passed to PrepareFrame
	//
	// Returns:
	//   - bool: true if the composite was copied
	CompositeFrame(cam camera.Camera) bool

	// Release undoes an override left by a PrepareFrame whose CompositeFrame will never
	// run, and returns the synchronizer to PhaseIdle. It is a no-op on the camera when no
	// override is applied.
	//
	// Parameters:
	//   - cam: the camera passed to PrepareFrame
	//
	// Returns:
	//   - bool: true if an override was undone
	Release(cam camera.Camera) bool

	// Binding returns the graphics binding the synchronizer was built with.
	//
	// Returns:
	//   - Binding: the binding
	Binding() Binding

	// FrameBuffer returns the local frame buffer composites are copied into.
	//
	// Returns:
	//   - framebuffer.FrameBuffer: the frame buffer
	FrameBuffer() framebuffer.FrameBuffer

	// Phase returns where the synchronizer is in the frame cycle.
	//
	// Returns:
	//   - Phase: the current phase
	Phase() Phase

	// State returns a copy of the synchronizer's working set.
	//
	// Returns:
	//   - SyncState: the current state
	State() SyncState

	// Stats returns a copy of the frame counters.
	//
	// Returns:
	//   - Stats: the counters
	Stats() Stats
}

var _ Synchronizer = &synchronizer{}

// NewSynchronizer creates a Synchronizer with a clean state (frame id 0).
// When binder is nil, fb must implement framebuffer.TargetBinder itself.
//
// Parameters:
//   - binding: the graphics binding chosen for the session
//   - fb: the local frame buffer that receives composites
//   - binder: binds fb as the active render target (may be nil, see above)
//   - options: functional options to configure the synchronizer
//
// Returns:
//   - Synchronizer: the new synchronizer
//   - error: ErrInvalidBinding, or an error if fb or binder is missing
func NewSynchronizer(binding Binding, fb framebuffer.FrameBuffer, binder framebuffer.TargetBinder, options ...SynchronizerBuilderOption) (Synchronizer, error) {
	if !binding.Valid() {
		return nil, ErrInvalidBinding
	}
	if fb == nil {
		return nil, framebuffer.ErrNilFrameBuffer
	}
	if binder == nil {
		b, ok := fb.(framebuffer.TargetBinder)
		if !ok {
			return nil, fmt.Errorf("remote: frame buffer %T cannot bind itself and no binder was given", fb)
		}
		binder = b
	}
	s := &synchronizer{
		binding:     binding,
		frameBuffer: fb,
		binder:      binder,
		clearMask:   camera.ClearAll,
	}
	for _, option := range options {
		option(s)
	}
	return s, nil
}

func (s *synchronizer) PrepareFrame(cam camera.Camera) bool {
	// A skipped CompositeFrame must not leak last frame's override into this one.
	if s.state.OverrideApplied {
		s.restore(cam)
	}
	s.phase = PhaseSubmitting
	s.state.PendingLocalPose = cam.Pose()
	s.state.PendingCustomProjection = cam.CustomProjection()
	s.state.PendingProjection = cam.ProjectionMatrix()

	if s.binding.Kind() != BindingSimulation {
		return false
	}

	conv := s.binding.Convention()
	s.state.LastSubmittedFrameID++
	submission := Submission{
		FrameID:      s.state.LastSubmittedFrameID,
		Near:         cam.Near(),
		Far:          cam.Far(),
		Projection:   conv.ProjectionToRemote(cam.ProjectionMatrix()),
		View:         conv.ViewToRemote(cam.ViewMatrix()),
		TargetWidth:  s.frameBuffer.Width(),
		TargetHeight: s.frameBuffer.Height(),
	}
	s.stats.Submitted++

	update, err := s.binding.simulation.SubmitPose(submission)
	if err != nil {
		s.stats.SubmitFailures++
		common.Logger().Debug("remote: pose submission failed", "frame", submission.FrameID, "error", err)
		return false
	}
	if !s.accept(update) {
		return false
	}

	var world [16]float32
	view := conv.ViewFromRemote(update.View)
	if !common.Invert4(world[:], view[:]) {
		s.stats.Rejected++
		common.Logger().Debug("remote: echoed view is singular", "frame", update.FrameID)
		return false
	}

	near, far := update.Near, update.Far
	if near > far {
		near, far = far, near
		s.stats.OrderingCorrections++
	}

	cam.SetCustomProjection(conv.ProjectionFromRemote(update.Projection))
	cam.RestorePose(camera.Pose{World: world, View: view, Near: near, Far: far})

	s.state.LastAcceptedFrameID = update.FrameID
	s.state.OverrideApplied = true
	s.stats.Accepted++
	return true
}

func (s *synchronizer) CompositeFrame(cam camera.Camera) bool {
	s.restore(cam)
	s.phase = PhaseBlitted

	ok := s.composite()
	if !ok {
		s.stats.CopyFailures++
		s.stats.ConsecutiveCopyFailures++
		return false
	}
	cam.SetClearFlags(cam.ClearFlags() &^ s.clearMask)
	s.stats.Composited++
	s.stats.ConsecutiveCopyFailures = 0
	return true
}

func (s *synchronizer) Release(cam camera.Camera) bool {
	applied := s.state.OverrideApplied
	s.restore(cam)
	s.phase = PhaseIdle
	return applied
}

func (s *synchronizer) Binding() Binding {
	return s.binding
}

func (s *synchronizer) FrameBuffer() framebuffer.FrameBuffer {
	return s.frameBuffer
}

func (s *synchronizer) Phase() Phase {
	return s.phase
}

func (s *synchronizer) State() SyncState {
	return s.state
}

func (s *synchronizer) Stats() Stats {
	return s.stats
}

// accept reports whether an echo may be applied: not the sentinel, newer than the last
// accepted frame, and not ahead of what has been submitted.
func (s *synchronizer) accept(update FrameUpdate) bool {
	switch {
	case update.NoFrame():
		s.stats.Sentinel++
		return false
	case update.FrameID <= s.state.LastAcceptedFrameID:
		s.stats.Rejected++
		common.Logger().Debug("remote: stale frame echo", "frame", update.FrameID, "accepted", s.state.LastAcceptedFrameID)
		return false
	case update.FrameID > s.state.LastSubmittedFrameID:
		s.stats.Rejected++
		common.Logger().Debug("remote: frame echo ahead of submission", "frame", update.FrameID, "submitted", s.state.LastSubmittedFrameID)
		return false
	}
	return true
}

// restore puts the camera back on the pose and projection captured by PrepareFrame.
// Without an override the camera is left alone.
func (s *synchronizer) restore(cam camera.Camera) {
	if !s.state.OverrideApplied {
		return
	}
	if s.state.PendingCustomProjection {
		cam.SetCustomProjection(s.state.PendingProjection)
	} else {
		cam.ResetProjection()
	}
	cam.RestorePose(s.state.PendingLocalPose)
	s.state.OverrideApplied = false
}

// composite forwards the coordinate system if needed, binds the frame buffer and copies
// the remote composite into it.
func (s *synchronizer) composite() bool {
	session := s.binding.Session()
	if !session.Connected() {
		common.Logger().Debug("remote: composite skipped, session disconnected")
		return false
	}

	if s.binding.Kind() == BindingPassthrough {
		if cs := s.binding.coordinateSystem(); cs != nil && cs != s.state.CoordinateSystem {
			if err := s.binding.passthrough.UpdateCoordinateSystem(cs); err != nil {
				s.stats.CoordinateSystemFailures++
				common.Logger().Warn("remote: coordinate system update failed", "name", cs.Name, "error", err)
				return false
			}
			s.state.CoordinateSystem = cs
			s.stats.CoordinateSystemUpdates++
		}
	}

	fb := s.frameBuffer
	if err := s.binder.BindRenderTarget(fb, fb.Width(), fb.Height()); err != nil {
		common.Logger().Debug("remote: binding frame buffer failed", "error", err)
		return false
	}
	if err := session.CopyCompositeInto(fb.Color(), fb.Depth()); err != nil {
		common.Logger().Debug("remote: composite copy failed", "error", err)
		return false
	}
	return true
}
