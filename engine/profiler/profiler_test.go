package profiler

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-remote/engine/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestTick_ReportsAfterInterval(t *testing.T) {
	clock := &fakeClock{now: time.Unix(100, 0)}
	p := NewProfiler(WithClock(clock.Now), WithUpdateInterval(2*time.Second))

	for range 9 {
		_, logged := p.Tick()
		assert.False(t, logged)
	}

	clock.Advance(2 * time.Second)
	report, logged := p.Tick()
	require.True(t, logged)
	assert.InDelta(t, 5.0, report.FPS, 1e-9)
	assert.Greater(t, report.SysMB, 0.0)
	assert.Equal(t, remote.Stats{}, report.Remote)

	_, logged = p.Tick()
	assert.False(t, logged)
}

func TestTick_RemoteStatsAreIntervalDeltas(t *testing.T) {
	clock := &fakeClock{now: time.Unix(100, 0)}
	stats := remote.Stats{Accepted: 3, Sentinel: 1}
	p := NewProfiler(WithClock(clock.Now), WithRemoteStats(func() remote.Stats { return stats }))

	stats = remote.Stats{Accepted: 10, Sentinel: 2, CopyFailures: 1, ConsecutiveCopyFailures: 1}
	clock.Advance(time.Second)
	report, logged := p.Tick()
	require.True(t, logged)
	assert.Equal(t, 7, report.Remote.Accepted)
	assert.Equal(t, 1, report.Remote.Sentinel)
	assert.Equal(t, 1, report.Remote.CopyFailures)
	assert.Equal(t, 1, report.Remote.ConsecutiveCopyFailures)

	// A new session resets the counters.
	stats = remote.Stats{Accepted: 2}
	clock.Advance(time.Second)
	report, _ = p.Tick()
	assert.Equal(t, 2, report.Remote.Accepted)
	assert.Equal(t, 0, report.Remote.Sentinel)
}

func TestWithUpdateInterval_IgnoresNonPositive(t *testing.T) {
	p := NewProfiler(WithUpdateInterval(0))
	assert.Equal(t, time.Second, p.updateInterval)
}
