package loupe

import (
	"image"
	"image/color"
	"image/draw"
	"math"
)

// disc is an alpha mask that is opaque inside a circle and transparent
// outside it. A pixel is inside when its center lies within the radius.
type disc struct {
	cx, cy, r float64
}

func (d *disc) ColorModel() color.Model { return color.AlphaModel }

func (d *disc) Bounds() image.Rectangle {
	return image.Rect(
		int(math.Floor(d.cx-d.r)), int(math.Floor(d.cy-d.r)),
		int(math.Ceil(d.cx+d.r)), int(math.Ceil(d.cy+d.r)),
	)
}

func (d *disc) At(x, y int) color.Color {
	if d.contains(x, y) {
		return color.Alpha{A: 0xff}
	}
	return color.Alpha{}
}

func (d *disc) contains(x, y int) bool {
	dx := float64(x) + 0.5 - d.cx
	dy := float64(y) + 0.5 - d.cy
	return dx*dx+dy*dy <= d.r*d.r
}

// clipped restricts writes to a draw.Image to the pixels inside a disc.
// Reads pass through unchanged.
type clipped struct {
	draw.Image
	clip *disc
}

func (c *clipped) Set(x, y int, col color.Color) {
	if c.clip.contains(x, y) {
		c.Image.Set(x, y, col)
	}
}

func (c *clipped) Bounds() image.Rectangle {
	return c.Image.Bounds().Intersect(c.clip.Bounds())
}

// setOpaque writes an opaque color at (x, y) if the pixel is inside both the
// buffer and the optional clip.
func setOpaque(dst *image.NRGBA, clip *disc, x, y int, c color.NRGBA) {
	if !(image.Point{X: x, Y: y}).In(dst.Rect) {
		return
	}
	if clip != nil && !clip.contains(x, y) {
		return
	}
	i := dst.PixOffset(x, y)
	dst.Pix[i+0] = c.R
	dst.Pix[i+1] = c.G
	dst.Pix[i+2] = c.B
	dst.Pix[i+3] = 0xff
}

// strokeRect draws a one-pixel outline along the inside edge of r.
func strokeRect(dst *image.NRGBA, clip *disc, r image.Rectangle, c color.NRGBA) {
	vis := visible(dst, clip, r)
	if vis.Empty() {
		return
	}
	for x := vis.Min.X; x < vis.Max.X; x++ {
		if vis.Min.Y == r.Min.Y {
			setOpaque(dst, clip, x, r.Min.Y, c)
		}
		if vis.Max.Y == r.Max.Y {
			setOpaque(dst, clip, x, r.Max.Y-1, c)
		}
	}
	for y := max(vis.Min.Y, r.Min.Y+1); y < min(vis.Max.Y, r.Max.Y-1); y++ {
		if vis.Min.X == r.Min.X {
			setOpaque(dst, clip, r.Min.X, y, c)
		}
		if vis.Max.X == r.Max.X {
			setOpaque(dst, clip, r.Max.X-1, y, c)
		}
	}
}

// visible is the part of r that can land in dst through clip.
func visible(dst *image.NRGBA, clip *disc, r image.Rectangle) image.Rectangle {
	vis := r.Intersect(dst.Rect)
	if clip != nil {
		vis = vis.Intersect(clip.Bounds())
	}
	return vis
}

// fillRoundedRect fills r with corners rounded to radius pixels.
func fillRoundedRect(dst *image.NRGBA, clip *disc, r image.Rectangle, radius int, c color.NRGBA) {
	if r.Empty() {
		return
	}
	radius = min(radius, r.Dx()/2, r.Dy()/2)
	if radius < 0 {
		radius = 0
	}
	rf := float64(radius)

	vis := visible(dst, clip, r)
	for y := vis.Min.Y; y < vis.Max.Y; y++ {
		for x := vis.Min.X; x < vis.Max.X; x++ {
			if radius > 0 {
				// Distance from the nearest corner circle center, if in a corner zone.
				var ccx, ccy float64
				inCorner := false
				px, py := float64(x)+0.5, float64(y)+0.5
				switch {
				case x < r.Min.X+radius && y < r.Min.Y+radius:
					ccx, ccy, inCorner = float64(r.Min.X)+rf, float64(r.Min.Y)+rf, true
				case x >= r.Max.X-radius && y < r.Min.Y+radius:
					ccx, ccy, inCorner = float64(r.Max.X)-rf, float64(r.Min.Y)+rf, true
				case x < r.Min.X+radius && y >= r.Max.Y-radius:
					ccx, ccy, inCorner = float64(r.Min.X)+rf, float64(r.Max.Y)-rf, true
				case x >= r.Max.X-radius && y >= r.Max.Y-radius:
					ccx, ccy, inCorner = float64(r.Max.X)-rf, float64(r.Max.Y)-rf, true
				}
				if inCorner {
					dx, dy := px-ccx, py-ccy
					if dx*dx+dy*dy > rf*rf {
						continue
					}
				}
			}
			setOpaque(dst, clip, x, y, c)
		}
	}
}

// strokeCircle draws a ring of the given stroke width centred on the circle
// of radius r around (cx, cy). The stroke straddles the path, half inside and
// half outside, and is at least one pixel wide.
func strokeCircle(dst *image.NRGBA, cx, cy, r, width float64, c color.NRGBA) {
	half := math.Max(width, 1) / 2
	inner := math.Max(r-half, 0)
	outer := r + half

	box := image.Rect(
		int(math.Floor(cx-outer)), int(math.Floor(cy-outer)),
		int(math.Ceil(cx+outer)), int(math.Ceil(cy+outer)),
	).Intersect(dst.Rect)

	in2, out2 := inner*inner, outer*outer
	for y := box.Min.Y; y < box.Max.Y; y++ {
		dy := float64(y) + 0.5 - cy
		for x := box.Min.X; x < box.Max.X; x++ {
			dx := float64(x) + 0.5 - cx
			d2 := dx*dx + dy*dy
			if d2 >= in2 && d2 <= out2 {
				setOpaque(dst, nil, x, y, c)
			}
		}
	}
}
