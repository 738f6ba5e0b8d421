// Package framebuffer describes the local render targets a remote composite is copied into.
// The renderer provides GPU-backed implementations; Memory is a CPU-side one for headless runs.
package framebuffer

import (
	"errors"
	"fmt"
)

var (
	// ErrSizeMismatch is returned when pixel data or a binding does not match a target's dimensions.
	ErrSizeMismatch = errors.New("framebuffer: size mismatch")
	// ErrNilFrameBuffer is returned when binding a nil frame buffer.
	ErrNilFrameBuffer = errors.New("framebuffer: nil frame buffer")
)

// Format identifies the texel layout of a Target.
type Format int

const (
	FormatUnknown Format = iota
	FormatRGBA8
	FormatBGRA8
	FormatDepth24
	FormatDepth32
)

func (f Format) String() string {
	switch f {
	case FormatRGBA8:
		return "rgba8"
	case FormatBGRA8:
		return "bgra8"
	case FormatDepth24:
		return "depth24"
	case FormatDepth32:
		return "depth32"
	default:
		return "unknown"
	}
}

// BytesPerPixel returns the texel size of color formats, or 0 for depth and unknown formats.
func (f Format) BytesPerPixel() int {
	switch f {
	case FormatRGBA8, FormatBGRA8:
		return 4
	default:
		return 0
	}
}

// Target is a single render target (color or depth).
type Target interface {
	// Width returns the target width in pixels.
	Width() int
	// Height returns the target height in pixels.
	Height() int
	// Format returns the texel layout.
	Format() Format
}

// ColorWriter is a color Target whose contents can be replaced from the CPU.
type ColorWriter interface {
	Target

	// WriteColor replaces the whole target with tightly packed pixels in the target's Format.
	//
	// Parameters:
	//   - pixels: Width*Height*BytesPerPixel bytes, row-major
	//
	// Returns:
	//   - error: ErrSizeMismatch if the length is wrong, or a backend error
	WriteColor(pixels []byte) error
}

// DepthWriter is a depth Target whose contents can be replaced from the CPU.
type DepthWriter interface {
	Target

	// WriteDepth replaces the whole target with normalized depth values.
	//
	// Parameters:
	//   - depth: Width*Height values in [0, 1], row-major
	//
	// Returns:
	//   - error: ErrSizeMismatch if the length is wrong, or a backend error
	WriteDepth(depth []float32) error
}

// FrameBuffer pairs the color and depth targets of one local frame.
// Its dimensions are its own and may differ from the window's.
type FrameBuffer interface {
	// Width returns the frame buffer width in pixels.
	Width() int
	// Height returns the frame buffer height in pixels.
	Height() int
	// Color returns the color target.
	Color() Target
	// Depth returns the depth target.
	Depth() Target
}

// TargetBinder makes a frame buffer the active render target.
type TargetBinder interface {
	// BindRenderTarget binds fb's color and depth targets with a viewport of width x height.
	//
	// Parameters:
	//   - fb: the frame buffer to bind
	//   - width, height: viewport size in pixels
	//
	// Returns:
	//   - error: an error if the frame buffer cannot be bound
	BindRenderTarget(fb FrameBuffer, width, height int) error
}

// CheckBinding validates a bind request against the frame buffer's own dimensions.
//
// Parameters:
//   - fb: the frame buffer to bind
//   - width, height: requested viewport size
//
// Returns:
//   - error: ErrNilFrameBuffer or a wrapped ErrSizeMismatch, nil if valid
func CheckBinding(fb FrameBuffer, width, height int) error {
	if fb == nil {
		return ErrNilFrameBuffer
	}
	if width <= 0 || height <= 0 || width > fb.Width() || height > fb.Height() {
		return fmt.Errorf("%w: viewport %dx%d, frame buffer %dx%d", ErrSizeMismatch, width, height, fb.Width(), fb.Height())
	}
	return nil
}
