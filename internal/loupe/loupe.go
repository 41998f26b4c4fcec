// Package loupe renders the circular magnifier that follows the pointer.
//
// Every Render call repaints the whole canvas from the plain base image, so
// there is no incremental state: identical inputs produce identical frames.
//
// Drawing order:
//
//  1. base image over the cleared canvas
//  2. sample the color under the pointer from that base layer
//  3. clip to the loupe disc
//  4. magnified mosaic excerpt
//  5. block marker (square outline)
//  6. hex label pill
//  7. unclipped ring stroked in the sampled color
package loupe

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/ironsheep/color-picker-mcp/internal/imaging"
	"github.com/ironsheep/color-picker-mcp/internal/mosaic"
)

// EdgePolicy decides what the loupe shows where its source window leaves the
// mosaic near the canvas edges.
type EdgePolicy int

const (
	// EdgeTransparent draws nothing for out-of-range source pixels, so the
	// base image shows through that part of the disc.
	EdgeTransparent EdgePolicy = iota
	// EdgeClamp slides the source window back inside the mosaic. The disc
	// stays filled but is no longer centred on the pointer's block.
	EdgeClamp
)

func (e EdgePolicy) String() string {
	switch e {
	case EdgeTransparent:
		return "transparent"
	case EdgeClamp:
		return "clamp"
	default:
		return fmt.Sprintf("EdgePolicy(%d)", int(e))
	}
}

// ParseEdgePolicy parses the names returned by EdgePolicy.String.
func ParseEdgePolicy(s string) (EdgePolicy, error) {
	switch s {
	case "", "transparent":
		return EdgeTransparent, nil
	case "clamp":
		return EdgeClamp, nil
	default:
		return EdgeTransparent, fmt.Errorf("unknown edge policy %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (e EdgePolicy) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *EdgePolicy) UnmarshalText(text []byte) error {
	v, err := ParseEdgePolicy(string(text))
	if err != nil {
		return err
	}
	*e = v
	return nil
}

// Point is a pointer position in canvas-local coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pixel returns the canvas pixel containing p.
func (p Point) Pixel() image.Point {
	return image.Pt(int(math.Floor(p.X)), int(math.Floor(p.Y)))
}

// Config holds the loupe geometry.
type Config struct {
	// Radius of the disc in canvas pixels.
	Radius float64
	// Zoom is the magnification applied to the mosaic excerpt (≥ 1).
	Zoom float64
	// BlockSize is the mosaic tile size; it sizes the block marker.
	BlockSize int
	// Edge selects the behaviour near canvas edges.
	Edge EdgePolicy
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	switch {
	case !(c.Radius > 0) || math.IsInf(c.Radius, 0):
		return fmt.Errorf("invalid loupe radius %v: must be > 0", c.Radius)
	case !(c.Zoom >= 1) || math.IsInf(c.Zoom, 0):
		return fmt.Errorf("invalid zoom %v: must be >= 1", c.Zoom)
	case c.BlockSize < 1:
		return fmt.Errorf("invalid block size %d: must be >= 1", c.BlockSize)
	case c.Edge != EdgeTransparent && c.Edge != EdgeClamp:
		return fmt.Errorf("invalid edge policy %v", c.Edge)
	}
	return nil
}

// Renderer draws loupe frames. It is safe to reuse across frames and images;
// the canvas passed to Render must not be drawn to concurrently.
type Renderer struct {
	cfg   Config
	faces faceCache
}

// NewRenderer validates cfg and returns a renderer for it.
func NewRenderer(cfg Config) (*Renderer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Renderer{cfg: cfg}, nil
}

// Config returns the renderer configuration.
func (r *Renderer) Config() Config {
	return r.cfg
}

// Render repaints dst with base as the background and the loupe at p, and
// returns the hex color under the pointer.
//
// The color is read from the freshly drawn base layer, not from the mosaic,
// so the label and ring always show the true pixel. m may have a different
// resolution than dst; the pointer is mapped proportionally.
func (r *Renderer) Render(dst *Target, m *mosaic.Mosaic, base image.Image, p Point) string {
	// 1. base layer
	dst.Reset(base)
	if dst.Bounds().Empty() {
		return imaging.ToHex(0, 0, 0)
	}

	// 2. authoritative color
	px := p.Pixel()
	under := dst.Sample(px.X, px.Y)
	hex := under.Hex()

	// 3. clip
	clip := &disc{cx: p.X, cy: p.Y, r: r.cfg.Radius}
	buf := dst.Buffer()

	// 4. magnified mosaic
	if m != nil && m.Image != nil && !m.Bounds().Empty() {
		r.drawMagnified(buf, clip, m, dst.Bounds(), p)
	}

	// 5. block marker
	side := float64(r.cfg.BlockSize) * r.cfg.Zoom
	marker := image.Rect(
		int(math.Round(p.X-side/2)), int(math.Round(p.Y-side/2)),
		int(math.Round(p.X+side/2)), int(math.Round(p.Y+side/2)),
	)
	strokeRect(buf, clip, marker, markerLine)

	// 6. label
	r.drawLabel(buf, clip, hex, p.X, p.Y)

	// 7. ring, outside the clip
	ring := color.NRGBA{R: under.R, G: under.G, B: under.B, A: 0xff}
	strokeCircle(buf, p.X, p.Y, r.cfg.Radius, r.cfg.Radius/10, ring)

	return hex
}

// drawMagnified maps the disc's bounding square onto a window of the mosaic
// centred on the pointer, shrunk by the zoom factor.
func (r *Renderer) drawMagnified(dst *image.NRGBA, clip *disc, m *mosaic.Mosaic, canvas image.Rectangle, p Point) {
	mb := m.Bounds()
	kx := float64(mb.Dx()) / float64(canvas.Dx())
	ky := float64(mb.Dy()) / float64(canvas.Dy())

	// Window centre and half extent in mosaic space.
	cx := float64(mb.Min.X) + p.X*kx
	cy := float64(mb.Min.Y) + p.Y*ky
	hx := r.cfg.Radius / r.cfg.Zoom * kx
	hy := r.cfg.Radius / r.cfg.Zoom * ky

	if r.cfg.Edge == EdgeClamp {
		cx = clampWindow(cx, hx, float64(mb.Min.X), float64(mb.Max.X))
		cy = clampWindow(cy, hy, float64(mb.Min.Y), float64(mb.Max.Y))
	}

	window := image.Rect(
		int(math.Floor(cx-hx)), int(math.Floor(cy-hy)),
		int(math.Ceil(cx+hx)), int(math.Ceil(cy+hy)),
	)
	sr := window.Intersect(mb)
	if sr.Empty() {
		return
	}

	// Source to destination: the window centre lands on the pointer and
	// distances grow by zoom (divided by the mosaic/canvas ratio).
	sx := r.cfg.Zoom / kx
	sy := r.cfg.Zoom / ky
	s2d := f64.Aff3{
		sx, 0, p.X - cx*sx,
		0, sy, p.Y - cy*sy,
	}
	xdraw.NearestNeighbor.Transform(dst, s2d, m.Image, sr, draw.Over, &xdraw.Options{DstMask: clip})
}

// clampWindow keeps [c-h, c+h] inside [lo, hi], centring it when it is wider
// than the range.
func clampWindow(c, h, lo, hi float64) float64 {
	if 2*h >= hi-lo {
		return (lo + hi) / 2
	}
	return math.Min(math.Max(c, lo+h), hi-h)
}
