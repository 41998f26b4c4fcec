package imaging

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// CanvasSize returns the canvas dimensions for an image of srcW×srcH pixels
// shown at the given canvas width, preserving the aspect ratio.
//
// A width of 0 (or less) keeps the source width. The height is rounded to the
// nearest pixel and never drops below 1.
func CanvasSize(srcW, srcH, width int) (int, int) {
	if srcW <= 0 || srcH <= 0 {
		return 0, 0
	}
	if width <= 0 {
		width = srcW
	}
	height := int(math.Round(float64(width) * float64(srcH) / float64(srcW)))
	if height < 1 {
		height = 1
	}
	return width, height
}

// ScaleNearest renders img into a new width×height buffer with
// nearest-neighbour sampling.
//
// Canvas pixel (x, y) takes the source pixel at
// (floor((x+0.5)·srcW/width), floor((y+0.5)·srcH/height)). When the sizes
// already match, a copy with its origin moved to (0,0) is returned. The result
// never aliases img.
func ScaleNearest(img image.Image, width, height int) *image.NRGBA {
	if width <= 0 || height <= 0 {
		return image.NewNRGBA(image.Rect(0, 0, 0, 0))
	}
	return imaging.Resize(img, width, height, imaging.NearestNeighbor)
}

// SourcePoint maps a canvas pixel to the source pixel ScaleNearest reads for it.
func SourcePoint(x, y, canvasW, canvasH, srcW, srcH int) image.Point {
	if canvasW <= 0 || canvasH <= 0 {
		return image.Point{}
	}
	dx := float64(srcW) / float64(canvasW)
	dy := float64(srcH) / float64(canvasH)
	sx := int((float64(x) + 0.5) * dx)
	sy := int((float64(y) + 0.5) * dy)
	return image.Pt(clamp(sx, 0, srcW-1), clamp(sy, 0, srcH-1))
}
