package imaging

import (
	"image/color"
	"testing"
)

func TestDrawGrid(t *testing.T) {
	img := createInMemoryImage(20, 20, color.NRGBA{0, 0, 0, 255})

	DrawGrid(img, 5, color.NRGBA{255, 0, 0, 255})

	tests := []struct {
		name string
		x, y int
		want string
	}{
		{"origin", 0, 0, "#FF0000"},
		{"vertical line", 5, 3, "#FF0000"},
		{"horizontal line", 3, 10, "#FF0000"},
		{"crossing", 15, 15, "#FF0000"},
		{"cell interior", 2, 2, "#000000"},
		{"last cell interior", 19, 19, "#000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SampleRGB(img, tt.x, tt.y).Hex(); got != tt.want {
				t.Errorf("pixel (%d,%d): got %s, want %s", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestDrawGrid_Translucent(t *testing.T) {
	img := createInMemoryImage(10, 10, color.NRGBA{0, 0, 0, 255})

	DrawGrid(img, 5, color.NRGBA{255, 255, 255, 128})

	line := SampleRGB(img, 5, 2)
	cross := SampleRGB(img, 5, 5)
	if line.R == 0 || line.R == 255 {
		t.Errorf("line pixel should be blended, got %+v", line)
	}
	if cross != line {
		t.Errorf("crossing blended twice: got %+v, line %+v", cross, line)
	}
}

func TestDrawGrid_NoSpacing(t *testing.T) {
	img := createInMemoryImage(4, 4, color.NRGBA{9, 9, 9, 255})
	DrawGrid(img, 0, color.White)
	if got := SampleRGB(img, 0, 0).Hex(); got != "#090909" {
		t.Errorf("spacing 0 must draw nothing, got %s", got)
	}
}
