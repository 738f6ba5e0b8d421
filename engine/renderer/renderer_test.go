package renderer

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-remote/engine/camera"
	"github.com/Carmen-Shannon/oxy-remote/engine/framebuffer"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend records frame calls without a GPU.
type fakeBackend struct {
	width, height int
	format        framebuffer.Format
	presentMode   PresentMode
	clearColor    [4]float64
	acquired      bool
	written       []byte
	begun         []camera.ClearFlags
	ended         int
	presented     int
	released      bool
}

var _ frameBackend = &fakeBackend{}

func (b *fakeBackend) ConfigureSurface(width, height int) {
	b.width, b.height = max(width, 1), max(height, 1)
}
func (b *fakeBackend) SetPresentMode(mode PresentMode)   { b.presentMode = mode }
func (b *fakeBackend) SetClearColor(r, g, bl, a float64) { b.clearColor = [4]float64{r, g, bl, a} }
func (b *fakeBackend) Size() (int, int)                  { return b.width, b.height }
func (b *fakeBackend) ColorFormat() framebuffer.Format   { return b.format }
func (b *fakeBackend) FrameAcquired() bool               { return b.acquired }
func (b *fakeBackend) EndFrame()                         { b.ended++ }
func (b *fakeBackend) Release()                          { b.released = true }

func (b *fakeBackend) AcquireFrame() error {
	if b.acquired {
		return ErrFrameInProgress
	}
	b.acquired = true
	return nil
}

func (b *fakeBackend) WriteColor(pixels []byte) error {
	if !b.acquired {
		return ErrNoFrame
	}
	b.written = append(b.written[:0], pixels...)
	return nil
}

func (b *fakeBackend) BeginFrame(clear camera.ClearFlags) error {
	if !b.acquired {
		return ErrNoFrame
	}
	b.begun = append(b.begun, clear)
	return nil
}

func (b *fakeBackend) Present() {
	b.acquired = false
	b.presented++
}

func TestNewRenderer_AppliesOptions(t *testing.T) {
	backend := &fakeBackend{format: framebuffer.FormatBGRA8}
	r := newRendererWithBackend(backend, 640, 480, WithPresentMode(PresentModeVSync), WithClearColor(0.2, 0.3, 0.4, 1))

	assert.Equal(t, PresentModeVSync, backend.presentMode)
	assert.Equal(t, [4]float64{0.2, 0.3, 0.4, 1}, backend.clearColor)

	fb := r.FrameBuffer()
	assert.Equal(t, 640, fb.Width())
	assert.Equal(t, 480, fb.Height())
	assert.Equal(t, framebuffer.FormatBGRA8, fb.Color().Format())
	assert.Equal(t, framebuffer.FormatDepth24, fb.Depth().Format())

	r.Resize(320, 0)
	assert.Equal(t, 320, fb.Width())
	assert.Equal(t, 1, fb.Height())
}

func TestRenderer_BindRenderTarget(t *testing.T) {
	backend := &fakeBackend{format: framebuffer.FormatRGBA8}
	r := newRendererWithBackend(backend, 4, 2)
	fb := r.FrameBuffer()

	assert.ErrorIs(t, r.BindRenderTarget(fb, 4, 2), ErrNoFrame)
	require.NoError(t, r.AcquireFrame())
	assert.ErrorIs(t, r.AcquireFrame(), ErrFrameInProgress)

	assert.ErrorIs(t, r.BindRenderTarget(fb, 8, 2), framebuffer.ErrSizeMismatch)
	assert.Error(t, r.BindRenderTarget(framebuffer.NewMemory(4, 2), 4, 2))
	require.NoError(t, r.BindRenderTarget(fb, 4, 2))
	assert.True(t, r.bound)

	pixels := make([]byte, 4*2*4)
	require.NoError(t, fb.Color().(framebuffer.ColorWriter).WriteColor(pixels))
	assert.Len(t, backend.written, len(pixels))

	_, ok := fb.Depth().(framebuffer.DepthWriter)
	assert.False(t, ok)

	r.Present()
	assert.False(t, r.bound)
}

func TestRenderer_FrameSequence(t *testing.T) {
	backend := &fakeBackend{format: framebuffer.FormatRGBA8}
	r := newRendererWithBackend(backend, 4, 4)

	assert.ErrorIs(t, r.BeginFrame(camera.ClearAll), ErrNoFrame)

	require.NoError(t, r.AcquireFrame())
	require.NoError(t, r.BeginFrame(camera.ClearDepth))
	r.EndFrame()
	r.Present()

	require.NoError(t, r.AcquireFrame())
	require.NoError(t, r.BeginFrame(camera.ClearAll))
	r.EndFrame()
	r.Present()

	assert.Equal(t, []camera.ClearFlags{camera.ClearDepth, camera.ClearAll}, backend.begun)
	assert.Equal(t, 2, backend.ended)
	assert.Equal(t, 2, backend.presented)

	r.Release()
	assert.True(t, backend.released)
}

func TestPickSurfaceFormat(t *testing.T) {
	tests := []struct {
		name     string
		formats  []wgpu.TextureFormat
		expected wgpu.TextureFormat
		format   framebuffer.Format
	}{
		{"bgra first", []wgpu.TextureFormat{wgpu.TextureFormatBGRA8UnormSrgb, wgpu.TextureFormatRGBA8Unorm}, wgpu.TextureFormatBGRA8UnormSrgb, framebuffer.FormatBGRA8},
		{"skips non 8-bit", []wgpu.TextureFormat{wgpu.TextureFormatDepth32Float, wgpu.TextureFormatRGBA8Unorm}, wgpu.TextureFormatRGBA8Unorm, framebuffer.FormatRGBA8},
		{"unsupported only", []wgpu.TextureFormat{wgpu.TextureFormatDepth32Float}, wgpu.TextureFormatDepth32Float, framebuffer.FormatUnknown},
		{"empty", nil, 0, framebuffer.FormatUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, format := pickSurfaceFormat(tt.formats)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.format, format)
		})
	}
}
