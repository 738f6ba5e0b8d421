package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-remote/engine/camera"
	"github.com/Carmen-Shannon/oxy-remote/engine/framebuffer"
	"github.com/Carmen-Shannon/oxy-remote/engine/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(connector Connector, options ...ActiveSessionBuilderOption) ActiveSession {
	options = append([]ActiveSessionBuilderOption{WithPollInterval(time.Millisecond), WithReadyTimeout(time.Second)}, options...)
	return NewActiveSession(connector, framebuffer.NewMemory(8, 8), nil, options...)
}

func TestActiveSession_InactiveIsNoOp(t *testing.T) {
	s := newTestSession(&fakeConnector{})
	cam := camera.NewCamera()
	before := cam.State()

	assert.False(t, s.Active())
	assert.Equal(t, StatusStopped, s.Status())
	assert.False(t, s.PrepareFrame(cam))
	assert.False(t, s.CompositeFrame(cam))
	assert.Equal(t, before, cam.State())
	assert.Equal(t, remote.Stats{}, s.Stats())
	assert.ErrorIs(t, s.Stop(), ErrNotStarted)

	_, err := s.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrNotStarted)
}

func TestActiveSession_StartStop(t *testing.T) {
	var transitions [][2]Status
	h := readyHandle(&echoSession{connected: true})
	h.statuses = []Status{StatusStarting, StatusReady}
	s := newTestSession(&fakeConnector{handles: []*scriptedHandle{h}}, WithStatusChangeHandler(func(from, to Status) {
		transitions = append(transitions, [2]Status{from, to})
	}))

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.Active())
	assert.Equal(t, StatusReady, s.Status())
	assert.ErrorIs(t, s.Start(context.Background()), ErrAlreadyStarted)

	cam := camera.NewCamera()
	before := cam.State()
	assert.True(t, s.PrepareFrame(cam))
	assert.True(t, s.CompositeFrame(cam))
	after := cam.State()
	after.ClearFlags = before.ClearFlags
	assert.Equal(t, before, after)
	assert.True(t, s.PrepareFrame(cam))
	assert.True(t, s.CompositeFrame(cam))
	assert.Equal(t, 2, s.Stats().Composited)

	require.NoError(t, s.Stop())
	assert.True(t, h.closed)
	assert.False(t, s.Active())
	assert.Equal(t, remote.Stats{}, s.Stats())

	assert.Equal(t, [][2]Status{
		{StatusStopped, StatusStarting},
		{StatusStarting, StatusReady},
		{StatusReady, StatusStopped},
	}, transitions)
}

func TestActiveSession_RestartStartsClean(t *testing.T) {
	first := readyHandle(&echoSession{connected: true})
	second := readyHandle(&echoSession{connected: true})
	s := newTestSession(&fakeConnector{handles: []*scriptedHandle{first, second}})
	cam := camera.NewCamera()

	require.NoError(t, s.Start(context.Background()))
	for i := 0; i < 3; i++ {
		s.PrepareFrame(cam)
		s.CompositeFrame(cam)
	}
	assert.Equal(t, 3, s.Stats().Submitted)
	require.NoError(t, s.Stop())

	require.NoError(t, s.Start(context.Background()))
	assert.Equal(t, remote.Stats{}, s.Stats())
	s.PrepareFrame(cam)
	assert.Equal(t, 1, s.Stats().Submitted)
}

func TestActiveSession_StartFailures(t *testing.T) {
	t.Run("connect error", func(t *testing.T) {
		s := newTestSession(&fakeConnector{err: errors.New("no capacity")})
		err := s.Start(context.Background())
		assert.ErrorContains(t, err, "no capacity")
		assert.False(t, s.Active())
	})

	t.Run("expired while waiting", func(t *testing.T) {
		h := &scriptedHandle{statuses: []Status{StatusStarting, StatusExpired}}
		s := newTestSession(&fakeConnector{handles: []*scriptedHandle{h}})
		assert.ErrorIs(t, s.Start(context.Background()), ErrSessionExpired)
		assert.True(t, h.closed)
		assert.Equal(t, StatusExpired, s.Status())
		assert.False(t, s.Active())
	})

	t.Run("invalid binding", func(t *testing.T) {
		h := &scriptedHandle{statuses: []Status{StatusReady}}
		s := newTestSession(&fakeConnector{handles: []*scriptedHandle{h}})
		assert.ErrorIs(t, s.Start(context.Background()), remote.ErrInvalidBinding)
		assert.True(t, h.closed)
		assert.Equal(t, StatusError, s.Status())
	})
}

func TestActiveSession_RefreshStopsOnTerminalStatus(t *testing.T) {
	h := readyHandle(&echoSession{connected: true})
	s := newTestSession(&fakeConnector{handles: []*scriptedHandle{h}})
	require.NoError(t, s.Start(context.Background()))

	status, err := s.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusReady, status)
	assert.True(t, s.Active())

	h.setStatuses(StatusExpired)
	status, err = s.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusExpired, status)
	assert.False(t, s.Active())
	assert.True(t, h.closed)
	assert.False(t, s.CompositeFrame(camera.NewCamera()))
}

func TestActiveSession_CopyFailuresDoNotStopSession(t *testing.T) {
	remoteSession := &echoSession{connected: true, copyErr: remote.ErrCopyFailed}
	s := newTestSession(&fakeConnector{handles: []*scriptedHandle{readyHandle(remoteSession)}}, WithMaxCopyFailures(3))
	require.NoError(t, s.Start(context.Background()))
	cam := camera.NewCamera()

	for i := 0; i < 5; i++ {
		s.PrepareFrame(cam)
		assert.False(t, s.CompositeFrame(cam))
		assert.Equal(t, camera.ClearAll, cam.ClearFlags())
	}
	assert.True(t, s.Active())
	assert.Equal(t, 5, s.Stats().ConsecutiveCopyFailures)

	remoteSession.copyErr = nil
	s.PrepareFrame(cam)
	assert.True(t, s.CompositeFrame(cam))
	assert.Equal(t, 0, s.Stats().ConsecutiveCopyFailures)
}

func TestActiveSession_SynchronizerOptions(t *testing.T) {
	s := newTestSession(&fakeConnector{handles: []*scriptedHandle{readyHandle(&echoSession{connected: true})}},
		WithSynchronizerOptions(remote.WithClearMask(camera.ClearDepth)))
	require.NoError(t, s.Start(context.Background()))

	cam := camera.NewCamera()
	require.True(t, s.CompositeFrame(cam))
	assert.Equal(t, camera.ClearColor, cam.ClearFlags())
}

func TestActiveSession_EndingMidFrameRestoresCamera(t *testing.T) {
	cases := []struct {
		name string
		end  func(t *testing.T, s ActiveSession, h *scriptedHandle)
	}{
		{
			name: "stop",
			end: func(t *testing.T, s ActiveSession, _ *scriptedHandle) {
				require.NoError(t, s.Stop())
			},
		},
		{
			name: "refresh expired",
			end: func(t *testing.T, s ActiveSession, h *scriptedHandle) {
				h.setStatuses(StatusExpired)
				status, err := s.Refresh(context.Background())
				require.NoError(t, err)
				require.Equal(t, StatusExpired, status)
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := readyHandle(elsewhereSession{})
			s := newTestSession(&fakeConnector{handles: []*scriptedHandle{h}})
			require.NoError(t, s.Start(context.Background()))
			cam := camera.NewCamera(camera.WithLookAt([3]float32{0, 2, 10}, [3]float32{0, 0, 0}))
			before := cam.State()

			require.True(t, s.PrepareFrame(cam))
			require.True(t, cam.CustomProjection())
			require.NotEqual(t, before.View, cam.ViewMatrix())

			tc.end(t, s, h)
			assert.False(t, s.Active())

			assert.False(t, s.CompositeFrame(cam))
			assert.Equal(t, before, cam.State())
			assert.False(t, s.PrepareFrame(cam))
			assert.Equal(t, before, cam.State())
		})
	}
}

func TestActiveSession_RestartMidFrameCapturesLocalPose(t *testing.T) {
	first := readyHandle(elsewhereSession{})
	second := readyHandle(elsewhereSession{})
	s := newTestSession(&fakeConnector{handles: []*scriptedHandle{first, second}})
	cam := camera.NewCamera(camera.WithLookAt([3]float32{0, 2, 10}, [3]float32{0, 0, 0}))
	before := cam.State()

	require.NoError(t, s.Start(context.Background()))
	require.True(t, s.PrepareFrame(cam))
	require.NoError(t, s.Stop())
	require.NoError(t, s.Start(context.Background()))

	require.True(t, s.PrepareFrame(cam))
	assert.Equal(t, before.World, s.(*activeSession).synchronizer.State().PendingLocalPose.World)
	require.True(t, s.CompositeFrame(cam))
	after := cam.State()
	assert.Equal(t, camera.ClearNone, after.ClearFlags)
	after.ClearFlags = before.ClearFlags
	assert.Equal(t, before, after)
}
