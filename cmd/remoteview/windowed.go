package main

import (
	"context"
	"errors"
	"sync"

	"github.com/Carmen-Shannon/oxy-remote/common"
	"github.com/Carmen-Shannon/oxy-remote/config"
	"github.com/Carmen-Shannon/oxy-remote/engine"
	"github.com/Carmen-Shannon/oxy-remote/engine/camera"
	"github.com/Carmen-Shannon/oxy-remote/engine/loopback"
	"github.com/Carmen-Shannon/oxy-remote/engine/renderer"
	"github.com/Carmen-Shannon/oxy-remote/engine/session"
	"github.com/Carmen-Shannon/oxy-remote/engine/window"
)

// runWindowed opens the viewer window and runs the engine until the window closes or ctx is
// cancelled. The remote session starts in the background; R restarts it.
func runWindowed(ctx context.Context, cfg config.Config) error {
	w := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
		window.WithSizeLimits(cfg.Window.MinWidth, cfg.Window.MinHeight, cfg.Window.MaxWidth, cfg.Window.MaxHeight),
	)
	defer func() { _ = w.Close() }()

	presentMode := renderer.PresentModeVSync
	if cfg.Renderer.PresentMode == "uncapped" {
		presentMode = renderer.PresentModeUncapped
	}
	c := cfg.Renderer.ClearColor
	r := renderer.NewRenderer(
		renderer.BackendTypeWGPU,
		w,
		renderer.WithPresentMode(presentMode),
		renderer.WithForceSoftwareRenderer(cfg.Renderer.ForceSoftware),
		renderer.WithClearColor(c[0], c[1], c[2], c[3]),
	)
	defer r.Release()

	connector := loopback.NewConnector(loopbackOptions(cfg.Loopback)...)
	active := session.NewActiveSession(connector, r.FrameBuffer(), r, sessionOptions(cfg.Session)...)

	cam, ctrl := newCamera(cfg.Camera, float32(w.Width())/float32(w.Height()))
	eng := engine.NewEngine(
		engine.WithWindow(w),
		engine.WithRenderer(r),
		engine.WithCamera(cam),
		engine.WithRemote(active),
		engine.WithProfiling(cfg.Engine.Profiling),
		engine.WithTickRate(cfg.Engine.TickRate),
		engine.WithRenderFrameLimit(cfg.Engine.FrameLimit),
		engine.WithStatusInterval(cfg.Session.StatusInterval.Std()),
		engine.WithTitle(cfg.Window.Title),
	)

	starter := &sessionStarter{active: active, ctx: ctx}
	starter.restart()

	input := newInputState(cfg.Engine.Profiling)
	w.SetKeyDownCallback(func(key window.Key) {
		switch key {
		case window.KeyR:
			starter.restart()
		case window.KeyP:
			input.toggleProfiler(eng)
		case window.KeySpace:
			input.toggleAutoOrbit()
		default:
			input.set(key, true)
		}
	})
	w.SetKeyUpCallback(func(key window.Key) { input.set(key, false) })
	w.SetScrollCallback(func(delta float32) { ctrl.Zoom(delta) })
	eng.SetTickCallback(func(float32) {
		input.apply(ctrl)
		cam.Update()
	})

	go func() {
		<-ctx.Done()
		eng.Quit()
	}()

	common.Logger().Info("remoteview: running", "width", w.Width(), "height", w.Height())
	eng.Run()

	starter.wait()
	if err := active.Stop(); err != nil && !errors.Is(err, session.ErrNotStarted) {
		return err
	}
	return nil
}

// sessionStarter (re)starts the remote session off the render thread.
type sessionStarter struct {
	mu     sync.Mutex
	wg     sync.WaitGroup
	active session.ActiveSession
	ctx    context.Context
}

func (s *sessionStarter) restart() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.active.Stop(); err == nil {
		common.Logger().Info("remoteview: restarting session")
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.active.Start(s.ctx); err != nil {
			common.Logger().Error("remoteview: session failed to start", "error", err)
		}
	}()
}

func (s *sessionStarter) wait() {
	s.wg.Wait()
}

// inputState holds the held orbit keys between ticks.
type inputState struct {
	mu        sync.Mutex
	held      map[window.Key]bool
	profiling bool
	autoOrbit bool
}

func newInputState(profiling bool) *inputState {
	return &inputState{held: make(map[window.Key]bool), profiling: profiling}
}

func (in *inputState) toggleAutoOrbit() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.autoOrbit = !in.autoOrbit
}

func (in *inputState) set(key window.Key, down bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.held[key] = down
}

func (in *inputState) toggleProfiler(eng engine.Engine) {
	in.mu.Lock()
	in.profiling = !in.profiling
	enabled := in.profiling
	in.mu.Unlock()

	if enabled {
		eng.EnableProfiler()
	} else {
		eng.DisableProfiler()
	}
}

func (in *inputState) apply(ctrl camera.Controller) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.held[window.KeyLeft] {
		ctrl.OrbitLeft()
	}
	if in.held[window.KeyRight] || in.autoOrbit {
		ctrl.OrbitRight()
	}
	if in.held[window.KeyUp] {
		ctrl.OrbitUp()
	}
	if in.held[window.KeyDown] {
		ctrl.OrbitDown()
	}
	if in.held[window.KeyPageUp] {
		ctrl.Zoom(0.25)
	}
	if in.held[window.KeyPageDown] {
		ctrl.Zoom(-0.25)
	}
}
