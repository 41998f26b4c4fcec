package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/anthonynsimon/bild/imgio"

	"github.com/ironsheep/color-picker-mcp/internal/config"
	"github.com/ironsheep/color-picker-mcp/internal/imaging"
	"github.com/ironsheep/color-picker-mcp/internal/loupe"
	"github.com/ironsheep/color-picker-mcp/internal/picker"
	"github.com/ironsheep/color-picker-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Globals are the flags shared by every command. Flags override values from
// the configuration file.
type Globals struct {
	Config      string   `help:"YAML configuration file" type:"path" env:"PICKER_CONFIG"`
	Radius      *float64 `help:"Loupe radius in canvas pixels" env:"PICKER_RADIUS"`
	Zoom        *float64 `help:"Magnification factor (>= 1)" env:"PICKER_ZOOM"`
	BlockSize   *int     `help:"Mosaic block size in canvas pixels" env:"PICKER_BLOCK_SIZE"`
	CanvasWidth *int     `help:"Canvas width in pixels, 0 for the image width" env:"PICKER_CANVAS_WIDTH"`
	Strategy    *string  `help:"Mosaic fill strategy (top-left, per-pixel)" env:"PICKER_STRATEGY"`
	Grid        *bool    `help:"Outline mosaic blocks" env:"PICKER_GRID"`
	Edge        *string  `help:"Loupe behaviour near canvas edges (transparent, clamp)" env:"PICKER_EDGE"`
	LogLevel    string   `help:"Log level (debug, info, warn, error)" env:"PICKER_LOG_LEVEL"`
}

// CLI is the command tree.
type CLI struct {
	Globals

	Serve   ServeCmd   `cmd:"" default:"1" help:"Run the MCP server on stdin/stdout"`
	Pick    PickCmd    `cmd:"" help:"Print the color at a canvas coordinate"`
	Render  RenderCmd  `cmd:"" help:"Render the loupe at a canvas coordinate to a PNG file"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// load returns the configuration file (or the defaults) with flags applied.
func (g *Globals) load() (*config.Config, error) {
	cfg := config.Default()
	if g.Config != "" {
		var err error
		if cfg, err = config.Load(g.Config); err != nil {
			return nil, err
		}
	}

	if g.Radius != nil {
		cfg.Radius = *g.Radius
	}
	if g.Zoom != nil {
		cfg.Zoom = *g.Zoom
	}
	if g.BlockSize != nil {
		cfg.BlockSize = *g.BlockSize
	}
	if g.CanvasWidth != nil {
		cfg.CanvasWidth = *g.CanvasWidth
	}
	if g.Strategy != nil {
		cfg.Strategy = *g.Strategy
	}
	if g.Grid != nil {
		cfg.Grid = *g.Grid
	}
	if g.Edge != nil {
		cfg.Edge = *g.Edge
	}
	if g.LogLevel != "" {
		cfg.LogLevel = g.LogLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// setup loads the configuration and builds the stderr logger. stdout is
// reserved for the MCP protocol.
func (g *Globals) setup() (*config.Config, picker.Options, *slog.Logger, error) {
	cfg, err := g.load()
	if err != nil {
		return nil, picker.Options{}, nil, err
	}
	opts, err := cfg.PickerOptions()
	if err != nil {
		return nil, picker.Options{}, nil, err
	}
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, picker.Options{}, nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return cfg, opts, logger, nil
}

// ServeCmd runs the MCP server.
type ServeCmd struct{}

func (c *ServeCmd) Run(g *Globals) error {
	_, opts, logger, err := g.setup()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Debug("starting color picker MCP server",
		"version", Version, "built", BuildTime, "commit", GitCommit)

	server.Version = Version
	srv, err := server.New(opts, logger)
	if err != nil {
		return err
	}
	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// session loads path into an Active controller.
func session(g *Globals, path string) (*picker.Controller, *slog.Logger, error) {
	_, opts, logger, err := g.setup()
	if err != nil {
		return nil, nil, err
	}
	ctrl, err := picker.New(opts, nil, logger)
	if err != nil {
		return nil, nil, err
	}
	if err := ctrl.Load(context.Background(), picker.FromFile(nil, path)); err != nil {
		return nil, nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	ctrl.SetSelecting(true)
	return ctrl, logger, nil
}

// PickCmd prints the color under a canvas coordinate.
type PickCmd struct {
	Image string  `arg:"" type:"existingfile" help:"Image file"`
	X     float64 `arg:"" help:"X coordinate on the canvas"`
	Y     float64 `arg:"" help:"Y coordinate on the canvas"`
	JSON  bool    `help:"Print every color representation as JSON"`
}

func (c *PickCmd) Run(g *Globals) error {
	ctrl, _, err := session(g, c.Image)
	if err != nil {
		return err
	}

	res, ok := ctrl.Click(loupe.Point{X: c.X, Y: c.Y})
	if !ok {
		return fmt.Errorf("nothing to pick at (%g,%g)", c.X, c.Y)
	}

	if c.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	fmt.Println(res.Hex)
	return nil
}

// RenderCmd writes one loupe frame to a PNG file.
type RenderCmd struct {
	Image string  `arg:"" type:"existingfile" help:"Image file"`
	X     float64 `arg:"" help:"X coordinate on the canvas"`
	Y     float64 `arg:"" help:"Y coordinate on the canvas"`
	Out   string  `short:"o" type:"path" default:"loupe.png" help:"Output PNG file"`
	Scale float64 `default:"1" help:"Scale the frame with nearest-neighbour sampling"`
}

func (c *RenderCmd) Run(g *Globals) error {
	if c.Scale <= 0 {
		return fmt.Errorf("invalid scale %g: must be > 0", c.Scale)
	}

	ctrl, logger, err := session(g, c.Image)
	if err != nil {
		return err
	}

	hex, ok := ctrl.PointerMove(loupe.Point{X: c.X, Y: c.Y})
	if !ok {
		return fmt.Errorf("failed to render loupe at (%g,%g)", c.X, c.Y)
	}

	frame := ctrl.Frame()
	if c.Scale != 1 {
		w := int(float64(frame.Rect.Dx()) * c.Scale)
		h := int(float64(frame.Rect.Dy()) * c.Scale)
		if w < 1 || h < 1 {
			return fmt.Errorf("scale %g collapses the frame to %dx%d", c.Scale, w, h)
		}
		frame = imaging.ScaleNearest(frame, w, h)
	}

	if err := imgio.Save(c.Out, frame, imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("failed to save %s: %w", c.Out, err)
	}
	logger.Info("frame written", "file", c.Out, "width", frame.Rect.Dx(), "height", frame.Rect.Dy())
	fmt.Println(hex)
	return nil
}

// VersionCmd prints build information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("color-picker-mcp %s\n", Version)
	fmt.Printf("  Build time: %s\n", BuildTime)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	return nil
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("color-picker-mcp"),
		kong.Description("Image color picker with a magnifier loupe, served over MCP."),
		kong.UsageOnError(),
	)
	kctx.FatalIfErrorf(kctx.Run(&cli.Globals))
}
