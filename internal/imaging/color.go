package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// RGBColor represents an RGB color with 8-bit components.
//
// Each component ranges from 0 to 255, where:
//   - 0 represents no intensity (black for all components)
//   - 255 represents full intensity (white for all components)
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// Hex returns the color in "#RRGGBB" form.
func (c RGBColor) Hex() string {
	return ToHex(c.R, c.G, c.B)
}

// RGBAColor represents an RGBA color with 8-bit components including alpha.
//
// The alpha component represents opacity:
//   - 0 = fully transparent
//   - 255 = fully opaque
type RGBAColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
	A uint8 `json:"a"` // Alpha/opacity component (0-255)
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// ColorResult contains a picked color value in multiple representations.
//
// Hex is the authoritative value handed to the color sink; the other fields
// are conveniences for clients that display a swatch.
type ColorResult struct {
	Hex  string    `json:"hex"`  // Hex format "#RRGGBB" (no alpha)
	RGB  RGBColor  `json:"rgb"`  // RGB components
	RGBA RGBAColor `json:"rgba"` // RGBA components with alpha
	HSL  HSLColor  `json:"hsl"`  // HSL representation
}

// ToHex formats 8-bit RGB components as "#RRGGBB".
//
// Each channel is zero-padded to two digits and letters are upper-case, so
// ToHex(15, 0, 255) is "#0F00FF".
func ToHex(r, g, b uint8) string {
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

// SampleRGB returns the exact RGB value stored at (x, y) in a pixel buffer.
//
// The buffer is read as non-premultiplied RGBA, so the channels come back
// exactly as they were written and alpha is ignored. Coordinates outside the
// buffer are clamped to the nearest edge pixel; an empty buffer yields black.
func SampleRGB(buf *image.NRGBA, x, y int) RGBColor {
	if buf == nil {
		return RGBColor{}
	}
	b := buf.Rect
	if b.Empty() {
		return RGBColor{}
	}
	x = clamp(x, b.Min.X, b.Max.X-1)
	y = clamp(y, b.Min.Y, b.Max.Y-1)

	i := buf.PixOffset(x, y)
	return RGBColor{R: buf.Pix[i], G: buf.Pix[i+1], B: buf.Pix[i+2]}
}

// SampleColor extracts the color value at a specific pixel coordinate.
//
// Parameters:
//   - img: The image to sample from.
//   - x: X coordinate (0-based, 0 = leftmost pixel).
//   - y: Y coordinate (0-based, 0 = topmost pixel).
//
// Returns:
//   - *ColorResult: The color at (x, y) in multiple formats.
//   - error: Non-nil if coordinates are outside the image bounds.
//
// For *image.NRGBA buffers the stored channels are used directly. Any other
// image is converted through color.NRGBAModel so that partially transparent
// pixels report their straight (non-premultiplied) color.
func SampleColor(img image.Image, x, y int) (*ColorResult, error) {
	bounds := img.Bounds()
	if x < bounds.Min.X || x >= bounds.Max.X || y < bounds.Min.Y || y >= bounds.Max.Y {
		return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds", x, y)
	}

	var c color.NRGBA
	if buf, ok := img.(*image.NRGBA); ok {
		i := buf.PixOffset(x, y)
		c = color.NRGBA{R: buf.Pix[i], G: buf.Pix[i+1], B: buf.Pix[i+2], A: buf.Pix[i+3]}
	} else {
		c = color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
	}

	return NewColorResult(c), nil
}

// NewColorResult builds a ColorResult from a straight-alpha color.
func NewColorResult(c color.NRGBA) *ColorResult {
	return &ColorResult{
		Hex:  ToHex(c.R, c.G, c.B),
		RGB:  RGBColor{R: c.R, G: c.G, B: c.B},
		RGBA: RGBAColor{R: c.R, G: c.G, B: c.B, A: c.A},
		HSL:  rgbToHSL(c.R, c.G, c.B),
	}
}

// rgbToHSL converts 8-bit RGB values to HSL using go-colorful.
//
// Returns HSLColor with:
//   - H: 0-360 (degrees on color wheel)
//   - S: 0-100 (percentage)
//   - L: 0-100 (percentage)
func rgbToHSL(r, g, b uint8) HSLColor {
	c := colorful.Color{R: float64(r) / 255.0, G: float64(g) / 255.0, B: float64(b) / 255.0}
	h, s, l := c.Hsl()
	if math.IsNaN(h) {
		h = 0
	}
	return HSLColor{
		H: int(h),
		S: int(s * 100),
		L: int(l * 100),
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
