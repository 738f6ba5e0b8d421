package session

import (
	"context"
	"errors"
	"sync"

	"github.com/Carmen-Shannon/oxy-remote/common"
	"github.com/Carmen-Shannon/oxy-remote/engine/framebuffer"
	"github.com/Carmen-Shannon/oxy-remote/engine/remote"
)

// scriptedHandle reports the scripted statuses in order, repeating the last one.
type scriptedHandle struct {
	mu       sync.Mutex
	statuses []Status
	errs     []error
	polls    int
	closed   bool
	closeErr error
	binding  remote.Binding
}

func (h *scriptedHandle) Status(context.Context) (Status, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	i := min(h.polls, len(h.statuses)-1)
	var err error
	if h.polls < len(h.errs) {
		err = h.errs[h.polls]
	}
	h.polls++
	return h.statuses[i], err
}

func (h *scriptedHandle) Binding() remote.Binding { return h.binding }

func (h *scriptedHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	return h.closeErr
}

func (h *scriptedHandle) setStatuses(statuses ...Status) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.statuses = statuses
	h.polls = 0
}

type fakeConnector struct {
	handles []*scriptedHandle
	err     error
	calls   int
}

func (c *fakeConnector) Connect(context.Context) (Handle, error) {
	if c.err != nil {
		return nil, c.err
	}
	h := c.handles[c.calls]
	c.calls++
	return h, nil
}

// echoSession composites every submitted frame immediately.
type echoSession struct {
	connected bool
	copyErr   error
}

func (e *echoSession) Connected() bool { return e.connected }

func (e *echoSession) SubmitPose(s remote.Submission) (remote.FrameUpdate, error) {
	return remote.FrameUpdate{FrameID: s.FrameID, Near: s.Near, Far: s.Far, Projection: s.Projection, View: s.View}, nil
}

func (e *echoSession) CopyCompositeInto(color, depth framebuffer.Target) error {
	return e.copyErr
}

// elsewhereSession echoes every submission as if rendered from a fixed remote viewpoint.
type elsewhereSession struct{}

func (elsewhereSession) Connected() bool { return true }

func (elsewhereSession) SubmitPose(s remote.Submission) (remote.FrameUpdate, error) {
	u := remote.FrameUpdate{FrameID: s.FrameID, Near: 1, Far: 50}
	common.LookAt(u.View[:], 6, 2, -4, 0, 0, 0, 0, 1, 0)
	common.Perspective(u.Projection[:], 0.9, 1.5, 1, 50)
	return u, nil
}

func (elsewhereSession) CopyCompositeInto(color, depth framebuffer.Target) error { return nil }

var errFlaky = errors.New("status endpoint unavailable")

func readyHandle(session remote.SimulationSession) *scriptedHandle {
	return &scriptedHandle{
		statuses: []Status{StatusReady},
		binding:  remote.NewSimulationBinding(session, remote.IdentityConvention),
	}
}
