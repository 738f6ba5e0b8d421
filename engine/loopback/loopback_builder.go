package loopback

import (
	"time"

	"github.com/Carmen-Shannon/oxy-remote/engine/remote"
)

// SessionBuilderOption is a functional option applied to a loopback session during NewSession.
type SessionBuilderOption func(*loopbackSession)

// WithWorkers sets the number of pool workers compositing frames.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - SessionBuilderOption: functional option to set the worker count
func WithWorkers(n int) SessionBuilderOption {
	return func(s *loopbackSession) {
		s.workers = max(n, 1)
	}
}

// WithQueueSize bounds the composite jobs in flight. Submissions beyond it are dropped.
//
// Parameters:
//   - n: the queue size
//
// Returns:
//   - SessionBuilderOption: functional option to set the queue size
func WithQueueSize(n int) SessionBuilderOption {
	return func(s *loopbackSession) {
		s.queueSize = max(n, 1)
	}
}

// WithLatency sets how many frames behind the current submission an echo must be.
//
// Parameters:
//   - frames: the latency in frames (at least 1)
//
// Returns:
//   - SessionBuilderOption: functional option to set the latency
func WithLatency(frames int) SessionBuilderOption {
	return func(s *loopbackSession) {
		s.latency = uint64(max(frames, 1))
	}
}

// WithWarmUp sets how long the session reports StatusStarting after connecting.
//
// Parameters:
//   - d: the warm-up duration
//
// Returns:
//   - SessionBuilderOption: functional option to set the warm-up
func WithWarmUp(d time.Duration) SessionBuilderOption {
	return func(s *loopbackSession) {
		s.warmUp = d
	}
}

// WithLease makes the session report StatusExpired once d has passed since connecting.
//
// Parameters:
//   - d: the lease duration, 0 for none
//
// Returns:
//   - SessionBuilderOption: functional option to set the lease
func WithLease(d time.Duration) SessionBuilderOption {
	return func(s *loopbackSession) {
		s.lease = d
	}
}

// WithSwappedPlanes echoes near and far in the wrong order.
//
// Returns:
//   - SessionBuilderOption: functional option to swap echoed planes
func WithSwappedPlanes() SessionBuilderOption {
	return func(s *loopbackSession) {
		s.swapPlanes = true
	}
}

// WithCopyFailureEvery makes every n-th CopyCompositeInto call fail with remote.ErrCopyFailed.
//
// Parameters:
//   - n: failure period, 0 to never fail
//
// Returns:
//   - SessionBuilderOption: functional option to inject copy failures
func WithCopyFailureEvery(n int) SessionBuilderOption {
	return func(s *loopbackSession) {
		s.failEvery = n
	}
}

// WithClearColor sets the background color of composited frames.
//
// Parameters:
//   - r, g, b, a: RGBA8 components
//
// Returns:
//   - SessionBuilderOption: functional option to set the clear color
func WithClearColor(r, g, b, a byte) SessionBuilderOption {
	return func(s *loopbackSession) {
		s.clearColor = [4]byte{r, g, b, a}
	}
}

// WithConvention sets the matrix convention reported in the simulation binding.
//
// Parameters:
//   - conv: the convention
//
// Returns:
//   - SessionBuilderOption: functional option to set the convention
func WithConvention(conv remote.Convention) SessionBuilderOption {
	return func(s *loopbackSession) {
		s.convention = conv
	}
}

// WithPassthrough makes Binding return a passthrough binding fed by source.
//
// Parameters:
//   - source: returns the platform's current coordinate system
//
// Returns:
//   - SessionBuilderOption: functional option to select passthrough mode
func WithPassthrough(source remote.CoordinateSystemSource) SessionBuilderOption {
	return func(s *loopbackSession) {
		s.passthrough = true
		s.coordinates = source
	}
}

// WithClock replaces time.Now for warm-up and lease checks.
//
// Parameters:
//   - now: the clock
//
// Returns:
//   - SessionBuilderOption: functional option to set the clock
func WithClock(now func() time.Time) SessionBuilderOption {
	return func(s *loopbackSession) {
		s.now = now
	}
}
