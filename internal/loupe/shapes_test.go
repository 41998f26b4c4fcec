package loupe

import (
	"image"
	"image/color"
	"testing"
)

var white = color.NRGBA{255, 255, 255, 255}

func countSet(dst *image.NRGBA) int {
	n := 0
	for i := 3; i < len(dst.Pix); i += 4 {
		if dst.Pix[i] != 0 {
			n++
		}
	}
	return n
}

func TestStrokeRect(t *testing.T) {
	tests := []struct {
		name  string
		r     image.Rectangle
		set   []image.Point
		unset []image.Point
		count int
	}{
		{
			name:  "inside",
			r:     image.Rect(2, 2, 6, 6),
			set:   []image.Point{{2, 2}, {5, 2}, {2, 5}, {5, 5}, {3, 2}, {2, 4}},
			unset: []image.Point{{3, 3}, {4, 4}, {6, 6}},
			count: 12,
		},
		{
			name:  "only top edge visible",
			r:     image.Rect(-1000, 5, 1000, 1000),
			set:   []image.Point{{0, 5}, {19, 5}},
			unset: []image.Point{{0, 6}, {0, 19}, {19, 19}},
			count: 20,
		},
		{
			name:  "only left edge visible",
			r:     image.Rect(3, -1000, 1000, 1000),
			set:   []image.Point{{3, 0}, {3, 19}},
			unset: []image.Point{{4, 0}, {19, 10}},
			count: 20,
		},
		{
			name:  "surrounds the buffer",
			r:     image.Rect(-1_000_000, -1_000_000, 1_000_000, 1_000_000),
			count: 0,
		},
		{
			name:  "disjoint",
			r:     image.Rect(100, 100, 200, 200),
			count: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := image.NewNRGBA(image.Rect(0, 0, 20, 20))
			strokeRect(dst, nil, tt.r, white)

			for _, p := range tt.set {
				if dst.NRGBAAt(p.X, p.Y) != white {
					t.Errorf("pixel %v not drawn", p)
				}
			}
			for _, p := range tt.unset {
				if dst.NRGBAAt(p.X, p.Y) == white {
					t.Errorf("pixel %v drawn", p)
				}
			}
			if got := countSet(dst); got != tt.count {
				t.Errorf("drawn pixels: got %d, want %d", got, tt.count)
			}
		})
	}
}

func TestStrokeRect_Clip(t *testing.T) {
	dst := image.NewNRGBA(image.Rect(0, 0, 20, 20))
	clip := &disc{cx: 10, cy: 10, r: 3}
	strokeRect(dst, clip, image.Rect(-1000, 10, 1000, 1000), white)

	for x := 0; x < 20; x++ {
		want := clip.contains(x, 10)
		if got := dst.NRGBAAt(x, 10) == white; got != want {
			t.Errorf("pixel (%d,10): drawn=%v, want %v", x, got, want)
		}
	}
}

func TestFillRoundedRect_LargerThanBuffer(t *testing.T) {
	dst := image.NewNRGBA(image.Rect(0, 0, 20, 20))
	fillRoundedRect(dst, nil, image.Rect(-1_000_000, -1_000_000, 1_000_000, 1_000_000), 8, white)

	if got := countSet(dst); got != 400 {
		t.Errorf("drawn pixels: got %d, want 400", got)
	}
}

func TestFillRoundedRect_Corners(t *testing.T) {
	dst := image.NewNRGBA(image.Rect(0, 0, 20, 20))
	fillRoundedRect(dst, nil, image.Rect(-10, -10, 10, 10), 6, white)

	// Only the bottom-right quarter is visible; its corner is rounded.
	if dst.NRGBAAt(9, 9) == white {
		t.Error("corner pixel (9,9) should be cut")
	}
	if dst.NRGBAAt(0, 0) != white || dst.NRGBAAt(9, 0) != white || dst.NRGBAAt(0, 9) != white {
		t.Error("visible straight edges should be filled")
	}
	if dst.NRGBAAt(10, 10) == white {
		t.Error("pixel outside the rectangle drawn")
	}
}
