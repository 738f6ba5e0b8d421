package session

import (
	"time"

	"github.com/Carmen-Shannon/oxy-remote/engine/remote"
)

// ActiveSessionBuilderOption is a functional option applied to an ActiveSession during NewActiveSession.
type ActiveSessionBuilderOption func(*activeSession)

// WithPollInterval sets how often Start polls the handle while waiting for the worker.
//
// Parameters:
//   - interval: time between status polls
//
// Returns:
//   - ActiveSessionBuilderOption: functional option to set the poll interval
func WithPollInterval(interval time.Duration) ActiveSessionBuilderOption {
	return func(s *activeSession) {
		s.pollInterval = interval
	}
}

// WithReadyTimeout bounds how long Start waits for the worker to become ready.
// Zero waits until the context is done.
//
// Parameters:
//   - timeout: the ready timeout
//
// Returns:
//   - ActiveSessionBuilderOption: functional option to set the ready timeout
func WithReadyTimeout(timeout time.Duration) ActiveSessionBuilderOption {
	return func(s *activeSession) {
		s.readyTimeout = timeout
	}
}

// WithMaxCopyFailures sets how many consecutive failed composites are tolerated before a
// warning is logged. Zero disables the warning.
//
// Parameters:
//   - n: the consecutive failure limit
//
// Returns:
//   - ActiveSessionBuilderOption: functional option to set the failure limit
func WithMaxCopyFailures(n int) ActiveSessionBuilderOption {
	return func(s *activeSession) {
		s.maxCopyFailures = n
	}
}

// WithSynchronizerOptions passes options to every synchronizer the session builds.
//
// Parameters:
//   - options: synchronizer options
//
// Returns:
//   - ActiveSessionBuilderOption: functional option to set the synchronizer options
func WithSynchronizerOptions(options ...remote.SynchronizerBuilderOption) ActiveSessionBuilderOption {
	return func(s *activeSession) {
		s.syncOptions = append(s.syncOptions, options...)
	}
}

// WithStatusChangeHandler registers a callback for status transitions.
//
// Parameters:
//   - handler: called with the previous and the new status
//
// Returns:
//   - ActiveSessionBuilderOption: functional option to set the handler
func WithStatusChangeHandler(handler StatusChangeHandler) ActiveSessionBuilderOption {
	return func(s *activeSession) {
		s.onStatusChange = handler
	}
}
