package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-remote/common"
	"github.com/Carmen-Shannon/oxy-remote/engine/camera"
	"github.com/Carmen-Shannon/oxy-remote/engine/profiler"
	"github.com/Carmen-Shannon/oxy-remote/engine/renderer"
	"github.com/Carmen-Shannon/oxy-remote/engine/session"
	"github.com/Carmen-Shannon/oxy-remote/engine/window"
)

// engine implements the Engine interface.
// Coordinates engine, render, status and window threads.
type engine struct {
	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	// frameMu serialises tick callbacks with the render window between PrepareFrame and
	// CompositeFrame, while the camera may hold the remote pose.
	frameMu *sync.Mutex

	window   window.Window
	renderer renderer.Renderer
	camera   camera.Camera
	remote   session.ActiveSession

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32)

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped

	statusInterval time.Duration
	statusMu       *sync.Mutex
	status         session.Status
	shownStatus    session.Status
	title          string
}

// Engine is the main entry point for the engine.
// It orchestrates the engine loop, render loop, remote session and window management.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance, nil when running headless
	Window() window.Window

	// Renderer returns the renderer drawing to the window.
	//
	// Returns:
	//   - renderer.Renderer: the renderer, nil when running headless
	Renderer() renderer.Renderer

	// Camera returns the camera rendered each frame.
	//
	// Returns:
	//   - camera.Camera: the camera
	Camera() camera.Camera

	// Remote returns the remote session driven each frame.
	//
	// Returns:
	//   - session.ActiveSession: the session, nil if none was configured
	Remote() session.ActiveSession

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in frames per second.
	// The tick callback will be called at this rate for logic updates.
	//
	// Parameters:
	//   - fps: target frames per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick.
	// Ticks never run while a frame holds the remote pose.
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate, receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called each render frame, between the remote
	// pose override and the composite. Use it for local rendering work that must see the
	// camera as the remote frame saw it.
	//
	// Parameters:
	//   - callback: function to call each render frame, receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// RenderFrame runs one frame synchronously: reset clear flags, prepare the remote pose,
	// run the render callback, acquire the surface, composite, then render and present with
	// the camera's clear flags. The render loop calls it; headless drivers call it directly.
	//
	// Parameters:
	//   - deltaTime: seconds since the previous frame
	//
	// Returns:
	//   - FrameResult: what happened to the remote frame
	RenderFrame(deltaTime float32) FrameResult

	// Run starts the main engine loop (blocks until window closes).
	Run()

	// Quit signals all engine goroutines to stop and shuts down the engine.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// FrameResult reports the remote outcome of one RenderFrame call.
type FrameResult struct {
	// Overridden is true if the camera rendered with a remote pose.
	Overridden bool
	// Composited is true if a remote composite was copied into the frame buffer.
	Composited bool
	// Presented is true if a surface frame was presented.
	Presented bool
}

// NewEngine creates a new Engine instance with the provided options.
// Options are applied directly to the engine struct via the option-builder pattern.
//
// Parameters:
//   - options: functional options for engine configuration (window, renderer, remote, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel:  make(chan time.Duration, 1),
		quitChannel:      make(chan struct{}),
		frameMu:          &sync.Mutex{},
		statusMu:         &sync.Mutex{},
		running:          false,
		wg:               sync.WaitGroup{},
		profilingEnabled: false,
		engineTickRate:   time.Second / 60,
		statusInterval:   time.Second,
		status:           session.StatusStopped,
		shownStatus:      session.StatusStopped,
		title:            "oxy remote",
	}

	for _, opt := range options {
		opt(e)
	}

	if e.camera == nil {
		e.camera = camera.NewCamera()
	}

	var profilerOptions []profiler.ProfilerBuilderOption
	if e.remote != nil {
		profilerOptions = append(profilerOptions, profiler.WithRemoteStats(e.remote.Stats))
	}
	e.profiler = profiler.NewProfiler(profilerOptions...)

	if e.window != nil {
		e.camera.SetAspect(aspect(e.window.Width(), e.window.Height()))
		e.window.SetResizeCallback(func(width, height int) {
			e.frameMu.Lock()
			defer e.frameMu.Unlock()
			if e.renderer != nil {
				e.renderer.Resize(width, height)
			}
			e.camera.SetAspect(aspect(width, height))
		})
		e.window.SetUpdateCallback(e.updateTitle)
	}

	return e
}

func aspect(width, height int) float32 {
	return float32(max(width, 1)) / float32(max(height, 1))
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Camera() camera.Camera {
	return e.camera
}

func (e *engine) Remote() session.ActiveSession {
	return e.remote
}

func (e *engine) Run() {
	e.running = true
	e.handle()
	if e.window != nil {
		e.window.ProcessMessages()
		e.signalQuit()
	}
	e.wg.Wait()
}

// Quit signals all engine goroutines to stop and shuts down the engine.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running = false
		close(e.quitChannel)
	})
}

// handle launches the engine, render, status and quit goroutines.
// Each goroutine is tracked by the engine's WaitGroup.
func (e *engine) handle() {
	e.wg.Add(3)
	go e.handleEngine()
	go e.handleRender()
	go e.handleQuit()
	if e.remote != nil && e.statusInterval > 0 {
		e.wg.Add(1)
		go e.handleStatus()
	}
}

// handleEngine runs the fixed-rate engine tick loop in its own goroutine.
// Fires the tick callback at the configured tick rate and listens for dynamic rate changes
// via tickRateChannel. Exits when the quit channel is closed.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			if e.tickCallback != nil {
				e.frameMu.Lock()
				e.tickCallback(dt)
				e.frameMu.Unlock()
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleRender runs the uncapped (or frame-limited) render loop in its own goroutine.
// Recovers from panics to avoid crashing the process and signals quit on recovery.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			common.Logger().Error("engine: render goroutine recovered from panic", "panic", fmt.Sprint(r))
			e.signalQuit()
		}
	}()

	lastRender := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
			now := time.Now()
			dt := float32(now.Sub(lastRender).Seconds())
			lastRender = now

			e.RenderFrame(dt)

			if e.profilingEnabled && e.profiler != nil {
				e.profiler.Tick()
			}

			// Frame rate limiting
			if e.renderFrameLimit > 0 {
				elapsed := time.Since(lastRender)
				if remaining := e.renderFrameLimit - elapsed; remaining > 0 {
					time.Sleep(remaining)
				}
			}
		}
	}
}

// handleStatus polls the remote session status until quit. A terminal status ends the
// session; the status is surfaced in the window title from the main thread.
func (e *engine) handleStatus() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.statusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			e.refreshStatus()
		}
	}
}

func (e *engine) refreshStatus() {
	ctx, cancel := context.WithTimeout(context.Background(), e.statusInterval)
	defer cancel()

	status, err := e.remote.Refresh(ctx)
	if err != nil && !errors.Is(err, session.ErrNotStarted) {
		common.Logger().Debug("engine: session status query failed", "error", err)
	}

	e.statusMu.Lock()
	e.status = status
	e.statusMu.Unlock()
}

// updateTitle runs on the window thread once per message loop iteration.
func (e *engine) updateTitle() {
	e.statusMu.Lock()
	status := e.status
	changed := status != e.shownStatus
	e.shownStatus = status
	e.statusMu.Unlock()

	if changed {
		e.window.SetTitle(fmt.Sprintf("%s [%s]", e.title, status))
	}
}

// handleQuit blocks until the quit channel is closed, then decrements the WaitGroup.
func (e *engine) handleQuit() {
	defer e.wg.Done()
	<-e.quitChannel
}

func (e *engine) RenderFrame(dt float32) FrameResult {
	e.frameMu.Lock()
	defer e.frameMu.Unlock()

	var result FrameResult
	cam := e.camera

	// A successful composite drops the clear flags so the pass loads it instead.
	cam.ResetClearFlags()
	if e.remote != nil {
		result.Overridden = e.remote.PrepareFrame(cam)
	}

	if e.renderCallback != nil {
		e.renderCallback(dt)
	}

	acquired := false
	if e.renderer != nil {
		if err := e.renderer.AcquireFrame(); err != nil {
			common.Logger().Debug("engine: acquiring frame failed", "error", err)
		} else {
			acquired = true
		}
	}

	// CompositeFrame always runs so the camera is restored, even without a surface frame.
	if e.remote != nil {
		result.Composited = e.remote.CompositeFrame(cam)
	}

	if !acquired {
		return result
	}
	if err := e.renderer.BeginFrame(cam.ClearFlags()); err != nil {
		common.Logger().Warn("engine: beginning frame failed", "error", err)
		e.renderer.Present()
		return result
	}
	e.renderer.EndFrame()
	e.renderer.Present()
	result.Presented = true
	return result
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetTickRate sets the engine tick rate in frames per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	if e.running {
		// Non-blocking send - if channel is full, replace the pending value
		select {
		case e.tickRateChannel <- newRate:
		default:
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
	} else {
		e.engineTickRate = newRate
	}
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}
