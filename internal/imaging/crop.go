package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
)

// EncodedImage contains a PNG snapshot of a canvas or a region of it.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Region represents a rectangular region within an image.
//
// (X1, Y1) is inclusive and (X2, Y2) is exclusive.
type Region struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Rect converts the region to an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X1, r.Y1, r.X2, r.Y2)
}

// EncodeRegion crops img to region (whole image when nil), optionally
// rescales it, and returns it as base64 PNG.
//
// Rescaling uses nearest-neighbour sampling so the mosaic tiles and the
// loupe ring stay crisp in the exported frame.
func EncodeRegion(img image.Image, region *Region, scale float64) (*EncodedImage, error) {
	bounds := img.Bounds()
	out := img

	if region != nil {
		r := region.Rect()
		if r.Min.X < bounds.Min.X || r.Min.Y < bounds.Min.Y || r.Max.X > bounds.Max.X || r.Max.Y > bounds.Max.Y {
			return nil, fmt.Errorf("region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
				r.Min.X, r.Min.Y, r.Max.X, r.Max.Y, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
		}
		if r.Min.X >= r.Max.X || r.Min.Y >= r.Max.Y {
			return nil, fmt.Errorf("invalid region: x1 must be < x2, y1 must be < y2")
		}
		out = imaging.Crop(img, r)
	}

	if scale != 1.0 && scale > 0 {
		newWidth := int(float64(out.Bounds().Dx()) * scale)
		newHeight := int(float64(out.Bounds().Dy()) * scale)
		if newWidth < 1 || newHeight < 1 {
			return nil, fmt.Errorf("scale %.3f collapses image to %dx%d", scale, newWidth, newHeight)
		}
		out = imaging.Resize(out, newWidth, newHeight, imaging.NearestNeighbor)
	}

	data, err := EncodePNG(out)
	if err != nil {
		return nil, err
	}

	return &EncodedImage{
		Width:       out.Bounds().Dx(),
		Height:      out.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(data),
		MimeType:    "image/png",
	}, nil
}

// EncodePNG encodes img as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
