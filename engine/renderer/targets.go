package renderer

import "github.com/Carmen-Shannon/oxy-remote/engine/framebuffer"

// surfaceColor is the acquired swapchain image seen as a framebuffer.ColorWriter.
type surfaceColor struct {
	backend frameBackend
}

// surfaceDepth is the renderer's depth attachment. It is GPU-only and cannot be written from the CPU.
type surfaceDepth struct {
	backend frameBackend
}

// surfaceFrameBuffer is the window surface's color and depth pair.
type surfaceFrameBuffer struct {
	color *surfaceColor
	depth *surfaceDepth
}

var (
	_ framebuffer.ColorWriter = &surfaceColor{}
	_ framebuffer.Target      = &surfaceDepth{}
	_ framebuffer.FrameBuffer = &surfaceFrameBuffer{}
)

func newSurfaceFrameBuffer(backend frameBackend) *surfaceFrameBuffer {
	return &surfaceFrameBuffer{
		color: &surfaceColor{backend: backend},
		depth: &surfaceDepth{backend: backend},
	}
}

func (c *surfaceColor) Width() int {
	w, _ := c.backend.Size()
	return w
}

func (c *surfaceColor) Height() int {
	_, h := c.backend.Size()
	return h
}

func (c *surfaceColor) Format() framebuffer.Format {
	return c.backend.ColorFormat()
}

func (c *surfaceColor) WriteColor(pixels []byte) error {
	return c.backend.WriteColor(pixels)
}

func (d *surfaceDepth) Width() int {
	w, _ := d.backend.Size()
	return w
}

func (d *surfaceDepth) Height() int {
	_, h := d.backend.Size()
	return h
}

func (d *surfaceDepth) Format() framebuffer.Format {
	return framebuffer.FormatDepth24
}

func (f *surfaceFrameBuffer) Width() int {
	return f.color.Width()
}

func (f *surfaceFrameBuffer) Height() int {
	return f.color.Height()
}

func (f *surfaceFrameBuffer) Color() framebuffer.Target {
	return f.color
}

func (f *surfaceFrameBuffer) Depth() framebuffer.Target {
	return f.depth
}
