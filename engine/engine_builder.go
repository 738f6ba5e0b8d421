package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-remote/engine/camera"
	"github.com/Carmen-Shannon/oxy-remote/engine/renderer"
	"github.com/Carmen-Shannon/oxy-remote/engine/session"
	"github.com/Carmen-Shannon/oxy-remote/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithTickRate sets the engine tick rate in frames per second.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60.0
		}
		e.engineTickRate = time.Duration(float64(time.Second) / fps)
	}
}

// WithWindow sets the window the engine presents to. Without a window the engine runs
// headless and frames are only driven through RenderFrame.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithRenderer sets the renderer that acquires, clears and presents surface frames.
//
// Parameters:
//   - r: a Renderer created for the engine's window
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithCamera sets the camera rendered each frame. Defaults to camera.NewCamera().
//
// Parameters:
//   - c: the camera
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCamera(c camera.Camera) EngineBuilderOption {
	return func(e *engine) {
		e.camera = c
	}
}

// WithRemote sets the remote session whose frames are synchronised with the camera.
// The session is held by reference; starting and stopping it is up to the caller.
//
// Parameters:
//   - s: the active session owner
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRemote(s session.ActiveSession) EngineBuilderOption {
	return func(e *engine) {
		e.remote = s
	}
}

// WithStatusInterval sets how often the remote session status is refreshed while running.
// Pass 0 to disable polling.
//
// Parameters:
//   - interval: the polling interval (default 1s)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithStatusInterval(interval time.Duration) EngineBuilderOption {
	return func(e *engine) {
		e.statusInterval = max(interval, 0)
	}
}

// WithTitle sets the title prefix shown with the session status.
func WithTitle(title string) EngineBuilderOption {
	return func(e *engine) {
		e.title = title
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per second.
// Pass 0 to uncap the render loop (default).
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.renderFrameLimit = 0
			return
		}
		e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
	}
}
