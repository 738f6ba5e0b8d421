package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-remote/common"
	"github.com/Carmen-Shannon/oxy-remote/engine/camera"
	"github.com/Carmen-Shannon/oxy-remote/engine/framebuffer"
	"github.com/Carmen-Shannon/oxy-remote/engine/window"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backendType RendererBackendType
	backend     frameBackend
	frameBuffer *surfaceFrameBuffer

	// bound is set by BindRenderTarget and cleared by Present.
	bound bool

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingClearColor    *[4]float64
}

// Renderer drives the window surface one frame at a time.
//
// Each frame is acquired, optionally receives a remote composite through the surface frame
// buffer, is opened as a render pass that honors the camera's clear flags, and is presented.
// The Renderer is also the framebuffer.TargetBinder for its own surface frame buffer.
type Renderer interface {
	framebuffer.TargetBinder

	// Resize configures the underlying backend to handle a new surface size.
	// This should be called when re-sizing the window or when the surface size should change.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// SetPresentMode changes the surface present mode (VSync or Uncapped).
	// The change takes effect on the next surface configuration (e.g. on resize).
	//
	// Parameters:
	//   - mode: the desired PresentMode
	SetPresentMode(mode PresentMode)

	// FrameBuffer returns the window surface as a frame buffer. Its color target accepts
	// CPU writes while a frame is acquired.
	//
	// Returns:
	//   - framebuffer.FrameBuffer: the surface frame buffer
	FrameBuffer() framebuffer.FrameBuffer

	// AcquireFrame acquires the next swapchain image.
	//
	// Returns:
	//   - error: ErrFrameInProgress if the previous frame was not presented, or a surface error
	AcquireFrame() error

	// BeginFrame opens the frame's render pass. Color and depth are cleared only when the
	// matching flag is set, so a composite written after AcquireFrame survives.
	//
	// Parameters:
	//   - clear: which attachments to clear
	//
	// Returns:
	//   - error: ErrNoFrame if no frame is acquired, or a backend error
	BeginFrame(clear camera.ClearFlags) error

	// EndFrame ends the render pass and submits the recorded commands.
	EndFrame()

	// Present presents the acquired frame and releases it.
	Present()

	// Release frees the renderer's GPU resources.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer instance using the specified backend type and window.
// Builder options are applied before the backend requests a GPU adapter.
//
// Parameters:
//   - backendType: the RendererBackendType to use for rendering
//   - window: the Window whose surface is rendered to
//   - options: functional options to configure the renderer
//
// Returns:
//   - Renderer: a new Renderer instance
func NewRenderer(backendType RendererBackendType, window window.Window, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:          &sync.Mutex{},
		backendType: backendType,
	}

	for _, opt := range options {
		opt(r)
	}

	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend = newWGPURendererBackend(window.SurfaceDescriptor(), r.forceFallbackAdapter)
	}

	r.init(window.Width(), window.Height())
	return r
}

// newRendererWithBackend wires an existing backend. Options that only affect adapter
// selection are ignored.
func newRendererWithBackend(backend frameBackend, width, height int, options ...RendererBuilderOption) *renderer {
	r := &renderer{
		mu:      &sync.Mutex{},
		backend: backend,
	}
	for _, opt := range options {
		opt(r)
	}
	r.init(width, height)
	return r
}

func (r *renderer) init(width, height int) {
	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}
	if c := r.pendingClearColor; c != nil {
		r.backend.SetClearColor(c[0], c[1], c[2], c[3])
	}
	r.frameBuffer = newSurfaceFrameBuffer(r.backend)
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) Resize(width, height int) {
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) FrameBuffer() framebuffer.FrameBuffer {
	return r.frameBuffer
}

func (r *renderer) AcquireFrame() error {
	return r.backend.AcquireFrame()
}

func (r *renderer) BindRenderTarget(fb framebuffer.FrameBuffer, width, height int) error {
	if fb != framebuffer.FrameBuffer(r.frameBuffer) {
		return fmt.Errorf("renderer: cannot bind foreign frame buffer %T", fb)
	}
	if err := framebuffer.CheckBinding(fb, width, height); err != nil {
		return err
	}
	if !r.backend.FrameAcquired() {
		return ErrNoFrame
	}

	r.mu.Lock()
	r.bound = true
	r.mu.Unlock()
	return nil
}

func (r *renderer) BeginFrame(clear camera.ClearFlags) error {
	if err := r.backend.BeginFrame(clear); err != nil {
		return err
	}

	r.mu.Lock()
	composited := r.bound
	r.mu.Unlock()
	common.Logger().Debug("renderer: frame begun", "clear", clear, "composited", composited)
	return nil
}

func (r *renderer) EndFrame() {
	r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()

	r.mu.Lock()
	r.bound = false
	r.mu.Unlock()
}

func (r *renderer) Release() {
	r.backend.Release()
}
