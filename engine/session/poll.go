package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Carmen-Shannon/oxy-remote/common"
)

var (
	// ErrSessionError is returned when a session reports StatusError while waiting to become ready.
	ErrSessionError = errors.New("session: remote session failed")
	// ErrSessionStopped is returned when a session reports StatusStopped while waiting to become ready.
	ErrSessionStopped = errors.New("session: remote session stopped")
	// ErrSessionExpired is returned when a session reports StatusExpired while waiting to become ready.
	ErrSessionExpired = errors.New("session: remote session expired")
	// ErrReadyTimeout is returned when a session is still starting after the ready timeout.
	ErrReadyTimeout = errors.New("session: timed out waiting for remote session")
)

// terminalError maps a terminal status onto its sentinel error.
func terminalError(s Status) error {
	switch s {
	case StatusError:
		return ErrSessionError
	case StatusStopped:
		return ErrSessionStopped
	case StatusExpired:
		return ErrSessionExpired
	default:
		return nil
	}
}

// WaitReady polls a session handle at a fixed interval until it reports StatusReady.
// Errors from Status are treated as transient and polled again; a terminal status ends the
// wait immediately.
//
// Parameters:
//   - ctx: cancels the wait
//   - h: the handle to poll
//   - interval: time between polls (must be > 0)
//   - timeout: upper bound on the whole wait, 0 for none
//
// Returns:
//   - error: nil once ready; ErrSessionError, ErrSessionStopped, ErrSessionExpired,
//     ErrReadyTimeout, or the context's error
func WaitReady(ctx context.Context, h Handle, interval, timeout time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("session: poll interval must be positive, got %s", interval)
	}
	parent := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		status, err := h.Status(ctx)
		switch {
		case err != nil:
			common.Logger().Debug("session: status poll failed", "attempt", attempt, "error", err)
		case status == StatusReady:
			return nil
		case status.IsTerminal():
			return terminalError(status)
		default:
			common.Logger().Debug("session: waiting for remote session", "attempt", attempt, "status", status)
		}

		select {
		case <-ctx.Done():
			if err := parent.Err(); err != nil {
				return err
			}
			return fmt.Errorf("%w after %s", ErrReadyTimeout, timeout)
		case <-ticker.C:
		}
	}
}
