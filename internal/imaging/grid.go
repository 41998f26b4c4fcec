package imaging

import (
	"image"
	"image/color"
	"image/draw"
)

// DefaultGridColor is the faint white used to outline mosaic tiles.
var DefaultGridColor = color.NRGBA{R: 255, G: 255, B: 255, A: 56}

// DrawGrid composites a one-pixel grid onto dst.
//
// A line is drawn along the left and top edge of every spacing×spacing cell,
// starting at the image origin, so each tile gets its own outline. Lines are
// blended with draw.Over; a translucent c leaves the tile color visible.
// Spacing below 1 draws nothing.
func DrawGrid(dst draw.Image, spacing int, c color.Color) {
	if spacing < 1 {
		return
	}
	bounds := dst.Bounds()
	src := image.NewUniform(c)

	for x := bounds.Min.X; x < bounds.Max.X; x += spacing {
		draw.Draw(dst, image.Rect(x, bounds.Min.Y, x+1, bounds.Max.Y), src, image.Point{}, draw.Over)
	}
	for y := bounds.Min.Y; y < bounds.Max.Y; y += spacing {
		line := image.Rect(bounds.Min.X, y, bounds.Max.X, y+1)
		// Skip the pixels already covered by vertical lines so crossings are not blended twice.
		for x := bounds.Min.X; x < bounds.Max.X; x += spacing {
			seg := image.Rect(x+1, y, min(x+spacing, bounds.Max.X), y+1).Intersect(line)
			if !seg.Empty() {
				draw.Draw(dst, seg, src, image.Point{}, draw.Over)
			}
		}
	}
}
