package loupe

import (
	"image"
	"image/draw"

	"github.com/ironsheep/color-picker-mcp/internal/imaging"
)

// Target is the display canvas: a pixel buffer with fixed dimensions that the
// controller and the renderer draw into. It is not safe for concurrent use;
// draws must be sequential.
type Target struct {
	buf *image.NRGBA
}

// NewTarget allocates a transparent width×height canvas.
func NewTarget(width, height int) *Target {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Target{buf: image.NewNRGBA(image.Rect(0, 0, width, height))}
}

// Width returns the canvas width in pixels.
func (t *Target) Width() int { return t.buf.Rect.Dx() }

// Height returns the canvas height in pixels.
func (t *Target) Height() int { return t.buf.Rect.Dy() }

// Bounds returns the canvas rectangle, always anchored at (0,0).
func (t *Target) Bounds() image.Rectangle { return t.buf.Rect }

// Buffer exposes the live pixel buffer. Callers must treat it as read-only.
func (t *Target) Buffer() *image.NRGBA { return t.buf }

// Snapshot returns a copy of the current canvas.
func (t *Target) Snapshot() *image.NRGBA {
	out := image.NewNRGBA(t.buf.Rect)
	copy(out.Pix, t.buf.Pix)
	return out
}

// Clear resets every pixel to transparent black.
func (t *Target) Clear() {
	clear(t.buf.Pix)
}

// Reset clears the canvas and redraws base as the only layer. Images of a
// different size are scaled with nearest-neighbour sampling first.
//
// Drawing over a cleared canvas is a plain copy, so base pixels land in the
// buffer bit for bit.
func (t *Target) Reset(base image.Image) {
	if base == nil {
		t.Clear()
		return
	}
	if nb, ok := base.(*image.NRGBA); ok && nb.Rect == t.buf.Rect && nb.Stride == t.buf.Stride {
		copy(t.buf.Pix, nb.Pix)
		return
	}
	if base.Bounds().Size() != t.buf.Rect.Size() {
		base = imaging.ScaleNearest(base, t.Width(), t.Height())
	}
	draw.Draw(t.buf, t.buf.Rect, base, base.Bounds().Min, draw.Src)
}

// Sample reads the color currently drawn at (x, y), clamped to the canvas.
func (t *Target) Sample(x, y int) imaging.RGBColor {
	return imaging.SampleRGB(t.buf, x, y)
}
