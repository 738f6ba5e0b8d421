package profiler

import (
	"time"

	"github.com/Carmen-Shannon/oxy-remote/engine/remote"
)

// ProfilerBuilderOption is a functional option applied to a Profiler during construction via NewProfiler.
type ProfilerBuilderOption func(*Profiler)

// WithUpdateInterval sets how often statistics are logged.
//
// Parameters:
//   - interval: the reporting interval; values <= 0 are ignored
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithUpdateInterval(interval time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		if interval > 0 {
			p.updateInterval = interval
		}
	}
}

// WithRemoteStats reports the remote frame counters alongside the frame statistics.
//
// Parameters:
//   - source: returns the current cumulative counters
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithRemoteStats(source func() remote.Stats) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.remoteStats = source
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.now = now
	}
}
