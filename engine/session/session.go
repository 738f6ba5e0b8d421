// Package session owns the lifecycle of a remote rendering session: connecting, waiting
// for the remote worker to become ready, and handing the render loop a fresh frame
// synchronizer for each session.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-remote/common"
	"github.com/Carmen-Shannon/oxy-remote/engine/camera"
	"github.com/Carmen-Shannon/oxy-remote/engine/framebuffer"
	"github.com/Carmen-Shannon/oxy-remote/engine/remote"
)

var (
	// ErrAlreadyStarted is returned by Start while a session is active.
	ErrAlreadyStarted = errors.New("session: already started")
	// ErrNotStarted is returned by operations that need an active session.
	ErrNotStarted = errors.New("session: not started")
)

// Handle is a connected remote session as exposed by the rendering SDK.
type Handle interface {
	// Status queries the session's connection state.
	//
	// Parameters:
	//   - ctx: bounds the query
	//
	// Returns:
	//   - Status: the current status
	//   - error: an error if the status could not be read
	Status(ctx context.Context) (Status, error)

	// Binding returns the graphics binding the session was created with.
	//
	// Returns:
	//   - remote.Binding: the binding
	Binding() remote.Binding

	// Close disconnects and releases the session.
	//
	// Returns:
	//   - error: an error if the session could not be closed cleanly
	Close() error
}

// Connector opens remote sessions.
type Connector interface {
	// Connect opens a new session. The returned handle may still be starting.
	//
	// Parameters:
	//   - ctx: bounds the connection attempt
	//
	// Returns:
	//   - Handle: the new session handle
	//   - error: an error if the session could not be opened
	Connect(ctx context.Context) (Handle, error)
}

// StatusChangeHandler is called after the active session's status changes.
type StatusChangeHandler func(from, to Status)

type activeSession struct {
	mu *sync.Mutex

	connector   Connector
	frameBuffer framebuffer.FrameBuffer
	binder      framebuffer.TargetBinder

	pollInterval    time.Duration
	readyTimeout    time.Duration
	maxCopyFailures int
	syncOptions     []remote.SynchronizerBuilderOption
	onStatusChange  StatusChangeHandler

	handle       Handle
	synchronizer remote.Synchronizer
	// retiring is a discarded synchronizer whose override is still on the camera.
	retiring  remote.Synchronizer
	status    Status
	escalated bool
}

// ActiveSession is the render loop's view of the current remote session.
// It is passed by reference into the engine; Start and Stop replace the session and its
// synchronizer state, while PrepareFrame and CompositeFrame are safe no-ops when nothing
// is active.
type ActiveSession interface {
	// Start connects a new session, waits until it is ready and builds a fresh synchronizer
	// for its binding.
	//
	// Parameters:
	//   - ctx: bounds connecting and waiting
	//
	// Returns:
	//   - error: ErrAlreadyStarted, or the connect/wait/binding error
	Start(ctx context.Context) error

	// Stop closes the active session and discards its synchronizer state. A remote pose
	// still applied to the camera is undone by the next PrepareFrame or CompositeFrame.
	//
	// Returns:
	//   - error: ErrNotStarted, or the handle's close error
	Stop() error

	// Refresh queries the handle's status. A terminal status stops the session as Stop does.
	//
	// Parameters:
	//   - ctx: bounds the query
	//
	// Returns:
	//   - Status: the status after the query
	//   - error: ErrNotStarted or the handle's status error
	Refresh(ctx context.Context) (Status, error)

	// Active reports whether a session is ready and bound.
	//
	// Returns:
	//   - bool: true between a successful Start and Stop
	Active() bool

	// Status returns the last known session status.
	//
	// Returns:
	//   - Status: the status
	Status() Status

	// PrepareFrame forwards to the synchronizer.
	//
	// Parameters:
	//   - cam: the camera rendering this frame
	//
	// Returns:
	//   - bool: true if the camera was overridden; false when no session is active
	PrepareFrame(cam camera.Camera) bool

	// CompositeFrame forwards to the synchronizer and logs a warning once per streak of
	// consecutive composite failures reaching the configured limit.
	//
	// Parameters:
	//   - cam: the camera passed to PrepareFrame
	//
	// Returns:
	//   - bool: true if a composite was copied; false when no session is active
	CompositeFrame(cam camera.Camera) bool

	// Stats returns the synchronizer counters of the current session.
	//
	// Returns:
	//   - remote.Stats: the counters, zero when no session is active
	Stats() remote.Stats

	// FrameBuffer returns the frame buffer composites are copied into.
	//
	// Returns:
	//   - framebuffer.FrameBuffer: the frame buffer
	FrameBuffer() framebuffer.FrameBuffer
}

var _ ActiveSession = &activeSession{}

// NewActiveSession creates an inactive session owner.
//
// Parameters:
//   - connector: opens remote sessions
//   - fb: the local frame buffer composites are copied into
//   - binder: binds fb as the render target (nil if fb binds itself)
//   - options: functional options to configure the session
//
// Returns:
//   - ActiveSession: the session owner
func NewActiveSession(connector Connector, fb framebuffer.FrameBuffer, binder framebuffer.TargetBinder, options ...ActiveSessionBuilderOption) ActiveSession {
	s := &activeSession{
		mu:              &sync.Mutex{},
		connector:       connector,
		frameBuffer:     fb,
		binder:          binder,
		pollInterval:    time.Second,
		readyTimeout:    2 * time.Minute,
		maxCopyFailures: 30,
		status:          StatusStopped,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *activeSession) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.handle != nil {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.mu.Unlock()

	h, err := s.connector.Connect(ctx)
	if err != nil {
		return fmt.Errorf("session: connect: %w", err)
	}
	s.setStatus(StatusStarting)
	common.Logger().Info("session: connected, waiting for remote worker", "poll", s.pollInterval, "timeout", s.readyTimeout)

	if err := WaitReady(ctx, h, s.pollInterval, s.readyTimeout); err != nil {
		s.abandon(h, err)
		return err
	}

	synchronizer, err := remote.NewSynchronizer(h.Binding(), s.frameBuffer, s.binder, s.syncOptions...)
	if err != nil {
		s.abandon(h, err)
		return fmt.Errorf("session: bind: %w", err)
	}

	s.mu.Lock()
	if s.handle != nil {
		s.mu.Unlock()
		s.abandon(h, ErrAlreadyStarted)
		return ErrAlreadyStarted
	}
	s.handle = h
	s.synchronizer = synchronizer
	s.escalated = false
	s.mu.Unlock()

	s.setStatus(StatusReady)
	common.Logger().Info("session: ready", "binding", h.Binding().Kind())
	return nil
}

func (s *activeSession) Stop() error {
	s.mu.Lock()
	h := s.handle
	s.handle = nil
	s.retire()
	s.mu.Unlock()

	if h == nil {
		return ErrNotStarted
	}
	s.setStatus(StatusStopped)
	common.Logger().Info("session: stopped")
	if err := h.Close(); err != nil {
		return fmt.Errorf("session: close: %w", err)
	}
	return nil
}

func (s *activeSession) Refresh(ctx context.Context) (Status, error) {
	s.mu.Lock()
	h := s.handle
	s.mu.Unlock()
	if h == nil {
		return s.Status(), ErrNotStarted
	}

	status, err := h.Status(ctx)
	if err != nil {
		return s.Status(), err
	}
	if !status.IsTerminal() {
		s.setStatus(status)
		return status, nil
	}

	common.Logger().Warn("session: remote session ended", "status", status)
	s.mu.Lock()
	if s.handle == h {
		s.handle = nil
		s.retire()
	}
	s.mu.Unlock()
	s.setStatus(status)
	if err := h.Close(); err != nil {
		common.Logger().Debug("session: close after terminal status failed", "error", err)
	}
	return status, nil
}

func (s *activeSession) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.synchronizer != nil
}

func (s *activeSession) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *activeSession) PrepareFrame(cam camera.Camera) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseRetired(cam)
	if s.synchronizer == nil {
		return false
	}
	return s.synchronizer.PrepareFrame(cam)
}

func (s *activeSession) CompositeFrame(cam camera.Camera) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseRetired(cam)
	if s.synchronizer == nil {
		return false
	}

	ok := s.synchronizer.CompositeFrame(cam)
	if ok {
		if s.escalated {
			common.Logger().Info("session: composites recovered")
		}
		s.escalated = false
		return true
	}

	failures := s.synchronizer.Stats().ConsecutiveCopyFailures
	if s.maxCopyFailures > 0 && failures >= s.maxCopyFailures && !s.escalated {
		s.escalated = true
		common.Logger().Warn("session: remote composites keep failing", "consecutive", failures)
	}
	return false
}

func (s *activeSession) Stats() remote.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.synchronizer == nil {
		return remote.Stats{}
	}
	return s.synchronizer.Stats()
}

func (s *activeSession) FrameBuffer() framebuffer.FrameBuffer {
	return s.frameBuffer
}

// retire drops the active synchronizer. One that still has an override on the camera is
// kept until the render loop next calls in, so the local pose can be put back.
// Callers hold mu.
func (s *activeSession) retire() {
	if s.synchronizer != nil && s.synchronizer.State().OverrideApplied {
		s.retiring = s.synchronizer
	}
	s.synchronizer = nil
}

// releaseRetired restores the camera from a retired synchronizer. Callers hold mu.
func (s *activeSession) releaseRetired(cam camera.Camera) {
	if s.retiring == nil {
		return
	}
	if s.retiring.Release(cam) {
		common.Logger().Debug("session: restored camera after session ended mid-frame")
	}
	s.retiring = nil
}

// setStatus records a status and notifies the handler outside the lock.
func (s *activeSession) setStatus(status Status) {
	s.mu.Lock()
	old := s.status
	s.status = status
	handler := s.onStatusChange
	s.mu.Unlock()

	if handler != nil && old != status {
		handler(old, status)
	}
}

// abandon closes a handle that never became the active session.
func (s *activeSession) abandon(h Handle, cause error) {
	status := StatusError
	switch {
	case errors.Is(cause, ErrSessionStopped), errors.Is(cause, context.Canceled):
		status = StatusStopped
	case errors.Is(cause, ErrSessionExpired):
		status = StatusExpired
	case errors.Is(cause, ErrAlreadyStarted):
		status = s.Status()
	}
	if err := h.Close(); err != nil {
		common.Logger().Debug("session: close after failed start", "error", err)
	}
	s.setStatus(status)
	common.Logger().Warn("session: start failed", "error", cause)
}
