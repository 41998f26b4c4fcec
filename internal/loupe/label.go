package loupe

import (
	"image"
	"image/color"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var (
	labelFill  = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	labelText  = color.NRGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xff}
	markerLine = color.NRGBA{R: 0xd9, G: 0xd9, B: 0xd9, A: 0xff}
)

const labelCornerRadius = 4

var (
	monoOnce sync.Once
	monoFont *opentype.Font
	monoErr  error
)

func goMono() (*opentype.Font, error) {
	monoOnce.Do(func() {
		monoFont, monoErr = opentype.Parse(gomono.TTF)
	})
	return monoFont, monoErr
}

// faceCache keeps one Go Mono face per pixel size. Label sizes only change
// with the loupe radius, so the cache stays tiny.
type faceCache struct {
	mu    sync.Mutex
	faces map[float64]font.Face
}

func (c *faceCache) face(size float64) font.Face {
	c.mu.Lock()
	defer c.mu.Unlock()

	if f, ok := c.faces[size]; ok {
		return f
	}
	f := newMonoFace(size)
	if c.faces == nil {
		c.faces = make(map[float64]font.Face)
	}
	c.faces[size] = f
	return f
}

// newMonoFace returns Go Mono at size pixels, or the 7x13 bitmap face if the
// outline font cannot be used.
func newMonoFace(size float64) font.Face {
	f, err := goMono()
	if err != nil {
		return basicfont.Face7x13
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return basicfont.Face7x13
	}
	return face
}

// drawLabel draws the hex pill: a white rounded rectangle radius wide and
// radius/4 tall whose top edge sits radius/2 below the pointer, with the text
// centred in black. Text is shrunk to fit 90% of the pill width.
func (r *Renderer) drawLabel(dst *image.NRGBA, clip *disc, text string, px, py float64) {
	width := r.cfg.Radius
	height := r.cfg.Radius / 4
	top := py + r.cfg.Radius/2

	pill := image.Rect(
		int(math.Round(px-width/2)), int(math.Round(top)),
		int(math.Round(px+width/2)), int(math.Round(top+height)),
	)
	fillRoundedRect(dst, clip, pill, labelCornerRadius, labelFill)

	if height < 2 || text == "" {
		return
	}

	size := height
	maxWidth := width - width*0.1
	face := r.faces.face(size)
	adv := float64(font.MeasureString(face, text)) / 64
	if adv > maxWidth && adv > 0 {
		size = math.Floor(size*maxWidth/adv*4) / 4
		if size < 1 {
			return
		}
		face = r.faces.face(size)
		adv = float64(font.MeasureString(face, text)) / 64
	}

	ascent := float64(face.Metrics().Ascent) / 64
	d := &font.Drawer{
		Dst:  &clipped{Image: dst, clip: clip},
		Src:  image.NewUniform(labelText),
		Face: face,
		Dot:  fixed.P(int(math.Round(px-adv/2)), int(math.Round(top+ascent))),
	}
	d.DrawString(text)
}
