package remote

import "github.com/Carmen-Shannon/oxy-remote/engine/camera"

// SynchronizerBuilderOption is a functional option applied to a synchronizer during NewSynchronizer.
type SynchronizerBuilderOption func(*synchronizer)

// WithClearMask sets which clear flags a successful composite removes from the camera.
// The default drops both color and depth so the composite survives the next pass.
//
// Parameters:
//   - mask: the clear flags to drop
//
// Returns:
//   - SynchronizerBuilderOption: functional option to set the clear mask
func WithClearMask(mask camera.ClearFlags) SynchronizerBuilderOption {
	return func(s *synchronizer) {
		s.clearMask = mask
	}
}

// WithInitialFrameID starts frame numbering after id, for sessions resumed mid-stream.
//
// Parameters:
//   - id: the last frame id the worker has already seen
//
// Returns:
//   - SynchronizerBuilderOption: functional option to set the starting frame id
func WithInitialFrameID(id uint64) SynchronizerBuilderOption {
	return func(s *synchronizer) {
		s.state.LastSubmittedFrameID = id
		s.state.LastAcceptedFrameID = id
	}
}
