// Package loopback is an in-process remote rendering worker. It implements the remote
// session interfaces on top of a worker pool so the frame synchronizer can run end to end
// without the rendering SDK: submitted poses are "composited" asynchronously into a test
// pattern and echoed back a configurable number of frames later.
package loopback

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-remote/common"
	"github.com/Carmen-Shannon/oxy-remote/engine/framebuffer"
	"github.com/Carmen-Shannon/oxy-remote/engine/remote"
	"github.com/Carmen-Shannon/oxy-remote/engine/session"
)

// frame is one composited image and the pose it was rendered with.
type frame struct {
	update remote.FrameUpdate
	width  int
	height int
	pixels []byte
	depth  []float32
}

type loopbackSession struct {
	mu *sync.Mutex

	pool     worker.DynamicWorkerPool
	inFlight *sync.WaitGroup
	pending  int

	workers    int
	queueSize  int
	latency    uint64
	warmUp     time.Duration
	lease      time.Duration
	swapPlanes bool
	failEvery  int
	clearColor [4]byte
	now        func() time.Time

	passthrough bool
	convention  remote.Convention
	coordinates remote.CoordinateSystemSource

	connected   bool
	closed      bool
	connectedAt time.Time

	completed   []frame
	lastEchoed  uint64
	composite   *frame
	coordSystem *remote.CoordinateSystem
	copies      int

	rendered int
	dropped  int
}

// Session is a loopback remote session. It is both a remote.SimulationSession and a
// remote.PassthroughSession, and doubles as the session.Handle returned by its Connector.
type Session interface {
	remote.SimulationSession
	session.Handle

	// UpdateCoordinateSystem records the anchor a passthrough composite is rendered against.
	//
	// Parameters:
	//   - cs: the coordinate system handle
	//
	// Returns:
	//   - error: remote.ErrNotConnected, or remote.ErrCoordinateSystem for a nil handle
	UpdateCoordinateSystem(cs *remote.CoordinateSystem) error

	// Connect (re)establishes the connection and restarts the warm-up period.
	Connect()

	// Disconnect drops the connection without closing the session, as a network loss would.
	Disconnect()

	// Flush blocks until every submitted composite job has finished.
	Flush()

	// Frames reports how many composites were rendered and how many submissions were
	// dropped because the job queue was full.
	//
	// Returns:
	//   - rendered: completed composites
	//   - dropped: submissions that were not composited
	Frames() (rendered, dropped int)
}

var (
	_ Session                   = &loopbackSession{}
	_ remote.PassthroughSession = &loopbackSession{}
)

// NewSession creates a disconnected loopback session with its worker pool running.
//
// Parameters:
//   - options: functional options to configure the session
//
// Returns:
//   - Session: the new session
func NewSession(options ...SessionBuilderOption) Session {
	s := &loopbackSession{
		mu:         &sync.Mutex{},
		inFlight:   &sync.WaitGroup{},
		workers:    2,
		queueSize:  64,
		latency:    1,
		clearColor: [4]byte{24, 24, 32, 255},
		now:        time.Now,
		convention: remote.IdentityConvention,
	}
	for _, option := range options {
		option(s)
	}
	s.pool = worker.NewDynamicWorkerPool(s.workers, s.queueSize, time.Second)
	return s
}

func (s *loopbackSession) Connect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.connected = true
	s.connectedAt = s.now()
	common.Logger().Debug("loopback: connected", "warmUp", s.warmUp)
}

func (s *loopbackSession) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
}

func (s *loopbackSession) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

func (s *loopbackSession) Status(ctx context.Context) (session.Status, error) {
	if err := ctx.Err(); err != nil {
		return session.StatusStarting, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	elapsed := s.now().Sub(s.connectedAt)
	switch {
	case s.closed:
		return session.StatusStopped, nil
	case !s.connected:
		return session.StatusStarting, nil
	case s.lease > 0 && elapsed >= s.lease:
		return session.StatusExpired, nil
	case elapsed < s.warmUp:
		return session.StatusStarting, nil
	default:
		return session.StatusReady, nil
	}
}

func (s *loopbackSession) Binding() remote.Binding {
	if s.passthrough {
		return remote.NewPassthroughBinding(s, s.coordinates)
	}
	return remote.NewSimulationBinding(s, s.convention)
}

func (s *loopbackSession) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.connected = false
	s.mu.Unlock()

	s.inFlight.Wait()
	s.pool.ClearTaskQueue()
	s.pool.Stop()
	common.Logger().Debug("loopback: closed")
	return nil
}

func (s *loopbackSession) SubmitPose(sub remote.Submission) (remote.FrameUpdate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return remote.FrameUpdate{}, remote.ErrNotConnected
	}

	if s.pending >= s.queueSize {
		s.dropped++
		common.Logger().Debug("loopback: composite queue full, dropping frame", "frame", sub.FrameID)
	} else {
		s.pending++
		s.inFlight.Add(1)
		s.pool.SubmitTask(worker.Task{
			ID:      int(sub.FrameID),
			Payload: sub,
			Do: func() (any, error) {
				defer s.inFlight.Done()
				f := s.render(sub)
				s.publish(f)
				return nil, nil
			},
		})
	}

	return s.echo(sub.FrameID), nil
}

func (s *loopbackSession) UpdateCoordinateSystem(cs *remote.CoordinateSystem) error {
	if cs == nil {
		return fmt.Errorf("%w: nil handle", remote.ErrCoordinateSystem)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return remote.ErrNotConnected
	}
	s.coordSystem = cs
	return nil
}

func (s *loopbackSession) CopyCompositeInto(color, depth framebuffer.Target) error {
	s.mu.Lock()
	if !s.connected {
		s.mu.Unlock()
		return remote.ErrNotConnected
	}
	s.copies++
	if s.failEvery > 0 && s.copies%s.failEvery == 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: injected failure on copy %d", remote.ErrCopyFailed, s.copies)
	}

	var f *frame
	if s.passthrough {
		if s.coordSystem == nil {
			s.mu.Unlock()
			return remote.ErrNoComposite
		}
		f = s.renderAnchored(s.coordSystem, color.Width(), color.Height())
	} else {
		f = s.composite
	}
	s.mu.Unlock()

	if f == nil {
		return remote.ErrNoComposite
	}
	return writeFrame(f, color, depth)
}

func (s *loopbackSession) Flush() {
	s.inFlight.Wait()
}

func (s *loopbackSession) Frames() (rendered, dropped int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rendered, s.dropped
}

// echo returns the newest completed frame at least latency frames behind current that has
// not been echoed yet, and makes it the composite. Caller must hold the mutex.
func (s *loopbackSession) echo(current uint64) remote.FrameUpdate {
	if current <= s.latency {
		return remote.FrameUpdate{}
	}
	limit := current - s.latency

	best := -1
	for i := range s.completed {
		id := s.completed[i].update.FrameID
		if id <= limit && id > s.lastEchoed && (best < 0 || id > s.completed[best].update.FrameID) {
			best = i
		}
	}
	if best < 0 {
		return remote.FrameUpdate{}
	}

	f := s.completed[best]
	s.lastEchoed = f.update.FrameID
	s.composite = &f

	// Frames at or below the echoed one can never be echoed again.
	kept := s.completed[:0]
	for _, c := range s.completed {
		if c.update.FrameID > s.lastEchoed {
			kept = append(kept, c)
		}
	}
	s.completed = kept

	update := f.update
	if s.swapPlanes {
		update.Near, update.Far = update.Far, update.Near
	}
	return update
}

// publish stores a finished composite.
func (s *loopbackSession) publish(f frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending--
	s.rendered++
	if f.update.FrameID > s.lastEchoed {
		s.completed = append(s.completed, f)
	}
}
