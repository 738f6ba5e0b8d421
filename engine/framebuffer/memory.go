package framebuffer

import (
	"fmt"
	"sync"
)

type memoryColor struct {
	mu     *sync.Mutex
	width  int
	height int
	pixels []byte
}

type memoryDepth struct {
	mu     *sync.Mutex
	width  int
	height int
	depth  []float32
}

var (
	_ ColorWriter = &memoryColor{}
	_ DepthWriter = &memoryDepth{}
)

func (t *memoryColor) Width() int     { return t.width }
func (t *memoryColor) Height() int    { return t.height }
func (t *memoryColor) Format() Format { return FormatRGBA8 }

func (t *memoryColor) WriteColor(pixels []byte) error {
	if len(pixels) != t.width*t.height*4 {
		return fmt.Errorf("%w: got %d bytes for %dx%d rgba8", ErrSizeMismatch, len(pixels), t.width, t.height)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	copy(t.pixels, pixels)
	return nil
}

func (t *memoryDepth) Width() int     { return t.width }
func (t *memoryDepth) Height() int    { return t.height }
func (t *memoryDepth) Format() Format { return FormatDepth32 }

func (t *memoryDepth) WriteDepth(depth []float32) error {
	if len(depth) != t.width*t.height {
		return fmt.Errorf("%w: got %d depth values for %dx%d", ErrSizeMismatch, len(depth), t.width, t.height)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	copy(t.depth, depth)
	return nil
}

// Memory is a CPU-resident FrameBuffer with an RGBA8 color target and a float32 depth target.
// It also acts as its own TargetBinder, recording the last bound viewport.
type Memory struct {
	mu     *sync.Mutex
	color  *memoryColor
	depth  *memoryDepth
	bound  bool
	boundW int
	boundH int
}

var (
	_ FrameBuffer  = &Memory{}
	_ TargetBinder = &Memory{}
)

// NewMemory allocates a cleared frame buffer: black color, depth at the far plane (1.0).
//
// Parameters:
//   - width, height: frame buffer size in pixels
//
// Returns:
//   - *Memory: the new frame buffer
func NewMemory(width, height int) *Memory {
	mu := &sync.Mutex{}
	m := &Memory{
		mu: &sync.Mutex{},
		color: &memoryColor{
			mu: mu, width: width, height: height,
			pixels: make([]byte, width*height*4),
		},
		depth: &memoryDepth{
			mu: mu, width: width, height: height,
			depth: make([]float32, width*height),
		},
	}
	for i := range m.depth.depth {
		m.depth.depth[i] = 1
	}
	return m
}

func (m *Memory) Width() int    { return m.color.width }
func (m *Memory) Height() int   { return m.color.height }
func (m *Memory) Color() Target { return m.color }
func (m *Memory) Depth() Target { return m.depth }

// BindRenderTarget records the binding after validating it against the buffer's dimensions.
// Only fb == m may be bound.
func (m *Memory) BindRenderTarget(fb FrameBuffer, width, height int) error {
	if err := CheckBinding(fb, width, height); err != nil {
		return err
	}
	if fb != FrameBuffer(m) {
		return fmt.Errorf("framebuffer: memory binder cannot bind a foreign frame buffer")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bound = true
	m.boundW, m.boundH = width, height
	return nil
}

// Bound returns the last bound viewport and whether a binding happened.
//
// Returns:
//   - width, height: the last bound viewport
//   - ok: false if BindRenderTarget never succeeded
func (m *Memory) Bound() (width, height int, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.boundW, m.boundH, m.bound
}

// Pixels returns a copy of the color target.
//
// Returns:
//   - []byte: RGBA8 pixels, row-major
func (m *Memory) Pixels() []byte {
	m.color.mu.Lock()
	defer m.color.mu.Unlock()
	out := make([]byte, len(m.color.pixels))
	copy(out, m.color.pixels)
	return out
}

// DepthValues returns a copy of the depth target.
//
// Returns:
//   - []float32: depth values, row-major
func (m *Memory) DepthValues() []float32 {
	m.depth.mu.Lock()
	defer m.depth.mu.Unlock()
	out := make([]float32, len(m.depth.depth))
	copy(out, m.depth.depth)
	return out
}
