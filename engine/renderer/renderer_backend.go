package renderer

import (
	"github.com/Carmen-Shannon/oxy-remote/engine/camera"
	"github.com/Carmen-Shannon/oxy-remote/engine/framebuffer"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// frameBackend is what the renderer drives every frame. Each RendererBackendType has
// one implementation.
type frameBackend interface {
	ConfigureSurface(width, height int)
	SetPresentMode(mode PresentMode)
	SetClearColor(r, g, b, a float64)
	Size() (width, height int)
	ColorFormat() framebuffer.Format
	AcquireFrame() error
	FrameAcquired() bool
	WriteColor(pixels []byte) error
	BeginFrame(clear camera.ClearFlags) error
	EndFrame()
	Present()
	Release()
}
