// Package mosaic builds the pixelated image shown inside the loupe.
//
// A Mosaic is the source image rendered at canvas resolution and cut into an
// axis-aligned grid of square blocks starting at (0,0). Every block is filled
// with the color of its top-left pixel; this is a single-sample
// approximation, not a block average. Blocks at the right and bottom edges
// may be partial and are filled up to the canvas bound.
package mosaic

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/ironsheep/color-picker-mcp/internal/imaging"
)

// ErrInvalidBlockSize is returned for block sizes below 1.
var ErrInvalidBlockSize = errors.New("block size must be at least 1")

// Strategy selects how block colors are written.
type Strategy int

const (
	// TopLeft samples each block once and flood-fills it.
	TopLeft Strategy = iota
	// PerPixel recomputes every output pixel from its block origin.
	// It produces exactly the same image as TopLeft.
	PerPixel
)

func (s Strategy) String() string {
	switch s {
	case TopLeft:
		return "top-left"
	case PerPixel:
		return "per-pixel"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy parses the names returned by Strategy.String.
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "", "top-left", "topleft":
		return TopLeft, nil
	case "per-pixel", "perpixel":
		return PerPixel, nil
	default:
		return TopLeft, fmt.Errorf("unknown pixelation strategy %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Strategy) UnmarshalText(text []byte) error {
	v, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Options tunes Pixelate. The zero value means TopLeft without a grid.
type Options struct {
	Strategy Strategy

	// Grid outlines every block with GridColor after filling.
	Grid bool

	// GridColor defaults to imaging.DefaultGridColor.
	GridColor color.Color
}

// Mosaic is an immutable pixelated raster at canvas resolution.
type Mosaic struct {
	// Image holds the tiles. Callers must not modify it.
	Image *image.NRGBA

	// BlockSize is the side of one tile in canvas pixels.
	BlockSize int
}

// Pixelate renders img at width×height and replaces every
// blockSize×blockSize cell with the color of the cell's top-left pixel.
//
// Tiles are fully opaque: the sampled RGB is kept and alpha is dropped, the
// same way a flat fill with an rgb() color would behave. With blockSize 1 the
// result equals the scaled image (for opaque sources). The cost is
// O(width×height) regardless of strategy.
func Pixelate(img image.Image, width, height, blockSize int, opts *Options) (*Mosaic, error) {
	if img == nil {
		return nil, fmt.Errorf("failed to pixelate: nil image")
	}
	if blockSize < 1 {
		return nil, fmt.Errorf("failed to pixelate: %w (got %d)", ErrInvalidBlockSize, blockSize)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("failed to pixelate: invalid canvas size %dx%d", width, height)
	}

	o := Options{}
	if opts != nil {
		o = *opts
	}

	scaled := imaging.ScaleNearest(img, width, height)
	out := image.NewNRGBA(image.Rect(0, 0, width, height))

	switch o.Strategy {
	case TopLeft:
		fillBlocks(out, scaled, blockSize)
	case PerPixel:
		fillPixels(out, scaled, blockSize)
	default:
		return nil, fmt.Errorf("failed to pixelate: unknown strategy %v", o.Strategy)
	}

	if o.Grid {
		gc := o.GridColor
		if gc == nil {
			gc = imaging.DefaultGridColor
		}
		imaging.DrawGrid(out, blockSize, gc)
	}

	return &Mosaic{Image: out, BlockSize: blockSize}, nil
}

func fillBlocks(dst, src *image.NRGBA, size int) {
	bounds := dst.Rect
	for by := bounds.Min.Y; by < bounds.Max.Y; by += size {
		for bx := bounds.Min.X; bx < bounds.Max.X; bx += size {
			c := imaging.SampleRGB(src, bx, by)
			block := image.Rect(bx, by, bx+size, by+size).Intersect(bounds)
			fillRect(dst, block, c)
		}
	}
}

func fillPixels(dst, src *image.NRGBA, size int) {
	bounds := dst.Rect
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		oy := y - (y-bounds.Min.Y)%size
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			ox := x - (x-bounds.Min.X)%size
			c := imaging.SampleRGB(src, ox, oy)
			i := dst.PixOffset(x, y)
			dst.Pix[i+0] = c.R
			dst.Pix[i+1] = c.G
			dst.Pix[i+2] = c.B
			dst.Pix[i+3] = 0xff
		}
	}
}

// fillRect writes an opaque color into r, which must lie inside dst.
func fillRect(dst *image.NRGBA, r image.Rectangle, c imaging.RGBColor) {
	if r.Empty() {
		return
	}
	first := dst.PixOffset(r.Min.X, r.Min.Y)
	rowLen := r.Dx() * 4
	row := dst.Pix[first : first+rowLen]
	for i := 0; i < rowLen; i += 4 {
		row[i+0] = c.R
		row[i+1] = c.G
		row[i+2] = c.B
		row[i+3] = 0xff
	}
	for y := r.Min.Y + 1; y < r.Max.Y; y++ {
		off := dst.PixOffset(r.Min.X, y)
		copy(dst.Pix[off:off+rowLen], row)
	}
}

// Bounds returns the canvas rectangle covered by the mosaic.
func (m *Mosaic) Bounds() image.Rectangle {
	return m.Image.Rect
}

// Cols returns the number of block columns, counting a partial last column.
func (m *Mosaic) Cols() int {
	return (m.Image.Rect.Dx() + m.BlockSize - 1) / m.BlockSize
}

// Rows returns the number of block rows, counting a partial last row.
func (m *Mosaic) Rows() int {
	return (m.Image.Rect.Dy() + m.BlockSize - 1) / m.BlockSize
}

// Block returns the canvas rectangle of block (col, row), clipped to the
// mosaic bounds.
func (m *Mosaic) Block(col, row int) image.Rectangle {
	x := m.Image.Rect.Min.X + col*m.BlockSize
	y := m.Image.Rect.Min.Y + row*m.BlockSize
	return image.Rect(x, y, x+m.BlockSize, y+m.BlockSize).Intersect(m.Image.Rect)
}

// BlockAt returns the rectangle of the block containing canvas pixel (x, y).
func (m *Mosaic) BlockAt(x, y int) image.Rectangle {
	b := m.Image.Rect
	if !(image.Point{X: x, Y: y}).In(b) {
		return image.Rectangle{}
	}
	return m.Block((x-b.Min.X)/m.BlockSize, (y-b.Min.Y)/m.BlockSize)
}

// Sample returns the tile color at canvas pixel (x, y), clamped to bounds.
func (m *Mosaic) Sample(x, y int) imaging.RGBColor {
	return imaging.SampleRGB(m.Image, x, y)
}
