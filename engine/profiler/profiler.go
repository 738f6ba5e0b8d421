package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-remote/common"
	"github.com/Carmen-Shannon/oxy-remote/engine/remote"
)

// Report is the set of statistics gathered over one update interval.
type Report struct {
	FPS         float64
	HeapMB      float64
	AllocRateMB float64
	SysMB       float64
	GCCount     uint32
	LastPauseUs uint64
	MaxPauseUs  uint64

	// Remote holds the remote frame counters accumulated during the interval.
	// It is zero when no stats source is configured.
	Remote remote.Stats
}

// Profiler tracks frame rate, memory and remote frame statistics for performance monitoring.
// Outputs stats to the logger at a configurable interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	now         func() time.Time
	remoteStats func() remote.Stats
	lastRemote  remote.Stats
}

// NewProfiler creates a new Profiler. Update interval defaults to 1 second.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		now:            time.Now,
	}
	for _, option := range options {
		option(p)
	}
	p.lastTime = p.now()
	if p.remoteStats != nil {
		p.lastRemote = p.remoteStats()
	}
	return p
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
//
// Returns:
//   - Report: the statistics for the elapsed interval, zero if none elapsed
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() (Report, bool) {
	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return Report{}, false
	}

	r := Report{FPS: float64(p.frameCount) / elapsed.Seconds()}

	runtime.ReadMemStats(&p.memStats)
	r.HeapMB = float64(p.memStats.Alloc) / 1024 / 1024
	r.SysMB = float64(p.memStats.Sys) / 1024 / 1024
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	r.AllocRateMB = float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	r.GCCount = p.memStats.NumGC
	if r.GCCount > 0 {
		// PauseNs is a circular buffer of the last 256 GC pauses
		r.LastPauseUs = p.memStats.PauseNs[(r.GCCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if r.GCCount-startIdx > 256 {
			startIdx = r.GCCount - 256
		}
		for i := startIdx; i < r.GCCount; i++ {
			r.MaxPauseUs = max(r.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	attrs := []any{
		"fps", r.FPS,
		"heapMB", r.HeapMB,
		"allocRateMBs", r.AllocRateMB,
		"gc", r.GCCount,
		"lastPauseUs", r.LastPauseUs,
		"maxPauseUs", r.MaxPauseUs,
		"sysMB", r.SysMB,
	}
	if p.remoteStats != nil {
		current := p.remoteStats()
		r.Remote = delta(current, p.lastRemote)
		p.lastRemote = current
		attrs = append(attrs,
			"accepted", r.Remote.Accepted,
			"sentinel", r.Remote.Sentinel,
			"rejected", r.Remote.Rejected,
			"composited", r.Remote.Composited,
			"copyFailures", r.Remote.CopyFailures,
		)
	}
	common.Logger().Info("profiler", attrs...)

	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = r.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return r, true
}

// delta subtracts the previous interval's counters. A counter that went backwards means the
// session was replaced, so the current value is reported as is.
func delta(current, last remote.Stats) remote.Stats {
	sub := func(c, l int) int {
		if c < l {
			return c
		}
		return c - l
	}
	return remote.Stats{
		Submitted:                sub(current.Submitted, last.Submitted),
		Accepted:                 sub(current.Accepted, last.Accepted),
		Sentinel:                 sub(current.Sentinel, last.Sentinel),
		Rejected:                 sub(current.Rejected, last.Rejected),
		SubmitFailures:           sub(current.SubmitFailures, last.SubmitFailures),
		OrderingCorrections:      sub(current.OrderingCorrections, last.OrderingCorrections),
		Composited:               sub(current.Composited, last.Composited),
		CopyFailures:             sub(current.CopyFailures, last.CopyFailures),
		ConsecutiveCopyFailures:  current.ConsecutiveCopyFailures,
		CoordinateSystemUpdates:  sub(current.CoordinateSystemUpdates, last.CoordinateSystemUpdates),
		CoordinateSystemFailures: sub(current.CoordinateSystemFailures, last.CoordinateSystemFailures),
	}
}
