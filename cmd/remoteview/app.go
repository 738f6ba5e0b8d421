package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"text/tabwriter"

	"github.com/Carmen-Shannon/oxy-remote/common"
	"github.com/Carmen-Shannon/oxy-remote/config"
	"github.com/Carmen-Shannon/oxy-remote/engine"
	"github.com/Carmen-Shannon/oxy-remote/engine/camera"
	"github.com/Carmen-Shannon/oxy-remote/engine/framebuffer"
	"github.com/Carmen-Shannon/oxy-remote/engine/loopback"
	"github.com/Carmen-Shannon/oxy-remote/engine/remote"
	"github.com/Carmen-Shannon/oxy-remote/engine/session"
)

// stage is the coordinate system passthrough sessions are anchored to.
var stage = &remote.CoordinateSystem{Name: "stage", Handle: 1}

func setupLogging(cfg config.LogConfig, w io.Writer) error {
	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}
	handlerOptions := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(w, handlerOptions)
	if cfg.JSON {
		handler = slog.NewJSONHandler(w, handlerOptions)
	}
	common.SetLogger(slog.New(handler))
	return nil
}

func loopbackOptions(cfg config.LoopbackConfig) []loopback.SessionBuilderOption {
	options := []loopback.SessionBuilderOption{
		loopback.WithWorkers(cfg.Workers),
		loopback.WithQueueSize(cfg.QueueSize),
		loopback.WithLatency(cfg.Latency),
		loopback.WithWarmUp(cfg.WarmUp.Std()),
		loopback.WithLease(cfg.Lease.Std()),
		loopback.WithCopyFailureEvery(cfg.CopyFailureEvery),
	}
	if cfg.SwapPlanes {
		options = append(options, loopback.WithSwappedPlanes())
	}
	if cfg.Convention == "flipz" {
		options = append(options, loopback.WithConvention(remote.FlipZConvention(cfg.RowMajor)))
	}
	if cfg.Passthrough {
		options = append(options, loopback.WithPassthrough(func() *remote.CoordinateSystem { return stage }))
	}
	return options
}

func sessionOptions(cfg config.SessionConfig) []session.ActiveSessionBuilderOption {
	return []session.ActiveSessionBuilderOption{
		session.WithPollInterval(cfg.PollInterval.Std()),
		session.WithReadyTimeout(cfg.ReadyTimeout.Std()),
		session.WithMaxCopyFailures(cfg.MaxCopyFailures),
		session.WithStatusChangeHandler(func(from, to session.Status) {
			common.Logger().Info("remoteview: session status", "from", from, "to", to)
		}),
	}
}

func newCamera(cfg config.CameraConfig, aspect float32) (camera.Camera, camera.Controller) {
	ctrl := camera.NewOrbitController(camera.WithRadius(cfg.Radius))
	cam := camera.NewCamera(
		camera.WithFov(cfg.Fov*math.Pi/180),
		camera.WithAspect(aspect),
		camera.WithClipPlanes(cfg.Near, cfg.Far),
		camera.WithController(ctrl),
	)
	return cam, ctrl
}

// runHeadless drives frames through the engine over an in-memory frame buffer, one frame
// per loopback job so the echo latency is deterministic.
//
// Parameters:
//   - ctx: cancels the run
//   - cfg: the viewer configuration
//   - frames: how many frames to render
//
// Returns:
//   - remote.Stats: the synchronizer counters after the last frame
//   - error: a session start error or the context error
func runHeadless(ctx context.Context, cfg config.Config, frames int) (remote.Stats, error) {
	fb := framebuffer.NewMemory(cfg.Window.Width, cfg.Window.Height)
	connector := loopback.NewConnector(loopbackOptions(cfg.Loopback)...)
	active := session.NewActiveSession(connector, fb, nil, sessionOptions(cfg.Session)...)
	if err := active.Start(ctx); err != nil {
		return remote.Stats{}, err
	}
	defer func() {
		if err := active.Stop(); err != nil {
			common.Logger().Debug("remoteview: stop", "error", err)
		}
	}()

	sessions := connector.Sessions()
	loop := sessions[len(sessions)-1]

	cam, ctrl := newCamera(cfg.Camera, float32(cfg.Window.Width)/float32(cfg.Window.Height))
	eng := engine.NewEngine(engine.WithCamera(cam), engine.WithRemote(active))

	dt := float32(1.0 / 60)
	if cfg.Engine.TickRate > 0 {
		dt = float32(1 / cfg.Engine.TickRate)
	}
	for frame := 0; frame < frames; frame++ {
		if err := ctx.Err(); err != nil {
			return active.Stats(), err
		}
		ctrl.OrbitRight()
		cam.Update()
		result := eng.RenderFrame(dt)
		loop.Flush()
		common.Logger().Debug("remoteview: frame", "frame", frame+1, "overridden", result.Overridden, "composited", result.Composited)
	}

	stats := active.Stats()
	rendered, dropped := loop.Frames()
	common.Logger().Info("remoteview: headless run finished", "frames", frames, "rendered", rendered, "dropped", dropped)
	return stats, nil
}

func printStats(w io.Writer, stats remote.Stats) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	rows := []struct {
		name  string
		value int
	}{
		{"submitted", stats.Submitted},
		{"accepted", stats.Accepted},
		{"sentinel", stats.Sentinel},
		{"rejected", stats.Rejected},
		{"submit failures", stats.SubmitFailures},
		{"ordering corrections", stats.OrderingCorrections},
		{"composited", stats.Composited},
		{"copy failures", stats.CopyFailures},
		{"coordinate system updates", stats.CoordinateSystemUpdates},
		{"coordinate system failures", stats.CoordinateSystemFailures},
	}
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%d\n", row.name, row.value)
	}
	_ = tw.Flush()
}
