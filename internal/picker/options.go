package picker

import (
	"fmt"

	"github.com/ironsheep/color-picker-mcp/internal/loupe"
	"github.com/ironsheep/color-picker-mcp/internal/mosaic"
)

// Options configures a Controller.
type Options struct {
	// Radius of the loupe disc in canvas pixels.
	Radius float64 `json:"radius"`

	// Zoom magnifies the mosaic inside the loupe. 1 shows blocks at canvas size.
	Zoom float64 `json:"zoom"`

	// BlockSize is the mosaic tile side in canvas pixels.
	BlockSize int `json:"block_size"`

	// CanvasWidth is the display width; 0 uses the image width. The height
	// follows the image aspect ratio.
	CanvasWidth int `json:"canvas_width"`

	Strategy mosaic.Strategy  `json:"strategy"`
	Grid     bool             `json:"grid"`
	Edge     loupe.EdgePolicy `json:"edge"`
}

// DefaultOptions returns a 70px loupe at zoom 1 over 6px blocks.
func DefaultOptions() Options {
	return Options{
		Radius:    70,
		Zoom:      1,
		BlockSize: 6,
	}
}

// Validate reports the first invalid option.
func (o Options) Validate() error {
	if err := o.loupeConfig().Validate(); err != nil {
		return err
	}
	if o.CanvasWidth < 0 {
		return fmt.Errorf("invalid canvas width %d: must be >= 0", o.CanvasWidth)
	}
	if o.Strategy != mosaic.TopLeft && o.Strategy != mosaic.PerPixel {
		return fmt.Errorf("invalid strategy %v", o.Strategy)
	}
	return nil
}

func (o Options) loupeConfig() loupe.Config {
	return loupe.Config{
		Radius:    o.Radius,
		Zoom:      o.Zoom,
		BlockSize: o.BlockSize,
		Edge:      o.Edge,
	}
}

func (o Options) mosaicOptions() *mosaic.Options {
	return &mosaic.Options{Strategy: o.Strategy, Grid: o.Grid}
}

// sameMosaic reports whether a and b produce the same canvas and mosaic.
func sameMosaic(a, b Options) bool {
	return a.BlockSize == b.BlockSize &&
		a.CanvasWidth == b.CanvasWidth &&
		a.Strategy == b.Strategy &&
		a.Grid == b.Grid
}
