package loopback

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-remote/engine/framebuffer"
	"github.com/Carmen-Shannon/oxy-remote/engine/remote"
)

const tileSize = 8

// render composites a test pattern for a submitted pose: a checkerboard of the clear color
// and a gradient whose blue channel follows the view translation, so camera motion is
// visible in the output. Depth is left at the far plane.
func (s *loopbackSession) render(sub remote.Submission) frame {
	w, h := max(sub.TargetWidth, 1), max(sub.TargetHeight, 1)
	tint := translationTint(sub.View)
	f := frame{
		update: remote.FrameUpdate{
			FrameID:    sub.FrameID,
			Near:       sub.Near,
			Far:        sub.Far,
			Projection: sub.Projection,
			View:       sub.View,
		},
		width:  w,
		height: h,
	}
	f.pixels = pattern(w, h, s.clearColor, tint)
	f.depth = farPlane(w, h)
	return f
}

// renderAnchored composites a passthrough frame keyed by the coordinate system handle.
// Caller must hold the mutex.
func (s *loopbackSession) renderAnchored(cs *remote.CoordinateSystem, width, height int) *frame {
	w, h := max(width, 1), max(height, 1)
	s.rendered++
	return &frame{
		width:  w,
		height: h,
		pixels: pattern(w, h, s.clearColor, byte(cs.Handle*37)),
		depth:  farPlane(w, h),
	}
}

func pattern(w, h int, clear [4]byte, tint byte) []byte {
	pixels := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 4
			if (x/tileSize+y/tileSize)%2 == 0 {
				copy(pixels[i:i+4], clear[:])
				continue
			}
			pixels[i] = byte(x * 255 / max(w-1, 1))
			pixels[i+1] = byte(y * 255 / max(h-1, 1))
			pixels[i+2] = tint
			pixels[i+3] = 255
		}
	}
	return pixels
}

func farPlane(w, h int) []float32 {
	depth := make([]float32, w*h)
	for i := range depth {
		depth[i] = 1
	}
	return depth
}

// translationTint maps the view translation onto a byte. The translation sits in the last
// column or the last row depending on storage order, so both are folded in.
func translationTint(view [16]float32) byte {
	sum := math.Abs(float64(view[12]+view[13]+view[14])) + math.Abs(float64(view[3]+view[7]+view[11]))
	return byte(int(sum*16) % 256)
}

// writeFrame copies a composite into the bound targets, resampling to the target size and
// swizzling for BGRA targets. A depth target that cannot be written from the CPU is skipped.
func writeFrame(f *frame, color, depth framebuffer.Target) error {
	cw, ok := color.(framebuffer.ColorWriter)
	if !ok {
		return fmt.Errorf("%w: color target %T is not writable", remote.ErrCopyFailed, color)
	}
	pixels := resample(f.pixels, f.width, f.height, cw.Width(), cw.Height(), 4)
	switch cw.Format() {
	case framebuffer.FormatRGBA8:
	case framebuffer.FormatBGRA8:
		for i := 0; i < len(pixels); i += 4 {
			pixels[i], pixels[i+2] = pixels[i+2], pixels[i]
		}
	default:
		return fmt.Errorf("%w: unsupported color format %s", remote.ErrCopyFailed, cw.Format())
	}
	if err := cw.WriteColor(pixels); err != nil {
		return fmt.Errorf("%w: %w", remote.ErrCopyFailed, err)
	}

	dw, ok := depth.(framebuffer.DepthWriter)
	if !ok {
		return nil
	}
	values := make([]float32, dw.Width()*dw.Height())
	for y := 0; y < dw.Height(); y++ {
		sy := y * f.height / max(dw.Height(), 1)
		for x := 0; x < dw.Width(); x++ {
			sx := x * f.width / max(dw.Width(), 1)
			values[y*dw.Width()+x] = f.depth[sy*f.width+sx]
		}
	}
	if err := dw.WriteDepth(values); err != nil {
		return fmt.Errorf("%w: %w", remote.ErrCopyFailed, err)
	}
	return nil
}

// resample scales a tightly packed image with nearest-neighbour sampling.
func resample(src []byte, sw, sh, dw, dh, bpp int) []byte {
	out := make([]byte, dw*dh*bpp)
	if sw == dw && sh == dh {
		copy(out, src)
		return out
	}
	for y := 0; y < dh; y++ {
		sy := y * sh / max(dh, 1)
		for x := 0; x < dw; x++ {
			sx := x * sw / max(dw, 1)
			copy(out[(y*dw+x)*bpp:(y*dw+x+1)*bpp], src[(sy*sw+sx)*bpp:(sy*sw+sx+1)*bpp])
		}
	}
	return out
}
