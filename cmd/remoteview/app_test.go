package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-remote/common"
	"github.com/Carmen-Shannon/oxy-remote/config"
	"github.com/Carmen-Shannon/oxy-remote/engine/camera"
	"github.com/Carmen-Shannon/oxy-remote/engine/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() config.Config {
	cfg := config.Default()
	cfg.Window.Width, cfg.Window.Height = 64, 32
	cfg.Session.PollInterval = config.Duration(time.Millisecond)
	return cfg
}

func TestRunHeadless(t *testing.T) {
	cfg := fastConfig()
	cfg.Loopback.SwapPlanes = true
	cfg.Loopback.Convention = "flipz"

	stats, err := runHeadless(context.Background(), cfg, 20)
	require.NoError(t, err)

	assert.Equal(t, 20, stats.Submitted)
	assert.Equal(t, 19, stats.Accepted)
	assert.Equal(t, 1, stats.Sentinel)
	assert.Equal(t, 19, stats.OrderingCorrections)
	assert.Equal(t, 19, stats.Composited)
	assert.Zero(t, stats.Rejected)
}

func TestRunHeadless_LatencyAndFailures(t *testing.T) {
	cfg := fastConfig()
	cfg.Loopback.Latency = 3
	cfg.Loopback.CopyFailureEvery = 4

	stats, err := runHeadless(context.Background(), cfg, 12)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Sentinel)
	assert.Equal(t, 9, stats.Accepted)
	assert.Positive(t, stats.CopyFailures)
	assert.Equal(t, stats.Accepted, stats.Composited+stats.CopyFailures-3)
}

func TestRunHeadless_Passthrough(t *testing.T) {
	cfg := fastConfig()
	cfg.Loopback.Passthrough = true

	stats, err := runHeadless(context.Background(), cfg, 5)
	require.NoError(t, err)
	assert.Zero(t, stats.Submitted)
	assert.Equal(t, 1, stats.CoordinateSystemUpdates)
	assert.Equal(t, 5, stats.Composited)
}

func TestRunHeadless_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := runHeadless(ctx, fastConfig(), 5)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRootCommand_Headless(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "viewer.yaml")
	require.NoError(t, os.WriteFile(path, []byte("window:\n  width: 32\n  height: 16\nsession:\n  poll_interval: 1ms\n"), 0o600))
	t.Cleanup(func() { common.SetLogger(nil) })

	var out, errOut bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"--config", path, "--headless", "--frames", "4", "--log-level", "warn"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "submitted")
	assert.Contains(t, out.String(), "composited")
}

func TestRootCommand_BadLogLevel(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--headless", "--log-level", "chatty"})
	assert.Error(t, cmd.Execute())
}

func TestConfigCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"config", "--format", "yaml", "--log-level", "debug"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "level: debug")
	assert.Contains(t, out.String(), "poll_interval: 1s")
}

func TestInputState_Apply(t *testing.T) {
	ctrl := camera.NewOrbitController()
	x0, y0, z0 := ctrl.Position()

	in := newInputState(false)
	in.apply(ctrl)
	x, y, z := ctrl.Position()
	assert.Equal(t, [3]float32{x0, y0, z0}, [3]float32{x, y, z})

	in.set(window.KeyLeft, true)
	in.apply(ctrl)
	x, _, z = ctrl.Position()
	assert.NotEqual(t, [2]float32{x0, z0}, [2]float32{x, z})

	in.set(window.KeyLeft, false)
	in.toggleAutoOrbit()
	before := ctrl.Radius()
	in.set(window.KeyPageUp, true)
	in.apply(ctrl)
	assert.Less(t, ctrl.Radius(), before)
}
