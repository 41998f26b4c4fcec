// Package picker implements the display canvas controller of the color
// picker.
//
// A Controller owns the canvas and the current image session. It has two
// modes: Idle, where pointer events do nothing, and Active, where moving the
// pointer repaints the loupe, leaving restores the plain image and clicking
// picks the color under the pointer. Pointer handlers are also inert until an
// image and its mosaic are ready, and while a new image is loading.
//
// All methods are safe for concurrent use. Calls are serialized, except for
// the decode and pixelation phase of Load, which runs without the lock. When
// loads of image content overlap, only the most recently accepted one is
// committed.
package picker

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"math"
	"sync"

	"github.com/ironsheep/color-picker-mcp/internal/imaging"
	"github.com/ironsheep/color-picker-mcp/internal/loupe"
	"github.com/ironsheep/color-picker-mcp/internal/mosaic"
)

// ErrStaleLoad is returned by Load when a newer image load was accepted
// before this one finished. The stale result is discarded.
var ErrStaleLoad = errors.New("load superseded by a newer load")

// Mode is the selection mode.
type Mode int

const (
	// Idle ignores pointer events.
	Idle Mode = iota
	// Active renders the loupe and picks colors.
	Active
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case Active:
		return "active"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// ColorSink receives every picked color.
type ColorSink interface {
	ColorPicked(c *imaging.ColorResult)
}

// SinkFunc adapts a function to ColorSink.
type SinkFunc func(c *imaging.ColorResult)

// ColorPicked calls f(c).
func (f SinkFunc) ColorPicked(c *imaging.ColorResult) { f(c) }

// State is a snapshot of the controller.
type State struct {
	Mode         Mode               `json:"mode"`
	Ready        bool               `json:"ready"`
	Loading      bool               `json:"loading"`
	CanvasWidth  int                `json:"canvas_width"`
	CanvasHeight int                `json:"canvas_height"`
	Image        *imaging.ImageInfo `json:"image,omitempty"`
	Pointer      *loupe.Point       `json:"pointer,omitempty"`
	HoverColor   string             `json:"hover_color,omitempty"`
	TileColor    string             `json:"tile_color,omitempty"`
	LastColor    string             `json:"last_color,omitempty"`
	Options      Options            `json:"options"`
}

// session is one loaded image with everything derived from it.
type session struct {
	src    image.Image
	info   *imaging.ImageInfo
	base   *image.NRGBA
	mosaic *mosaic.Mosaic
}

func newSession(img image.Image, format string, opts Options) (*session, error) {
	b := img.Bounds()
	w, h := imaging.CanvasSize(b.Dx(), b.Dy(), opts.CanvasWidth)
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("failed to load image: empty %dx%d image", b.Dx(), b.Dy())
	}

	base := imaging.ScaleNearest(img, w, h)
	m, err := mosaic.Pixelate(base, w, h, opts.BlockSize, opts.mosaicOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to build mosaic: %w", err)
	}

	return &session{
		src:    img,
		info:   imaging.DescribeImage(img, format),
		base:   base,
		mosaic: m,
	}, nil
}

// Controller is the display canvas controller.
type Controller struct {
	mu       sync.Mutex
	opts     Options
	renderer *loupe.Renderer
	canvas   *loupe.Target
	session  *session

	selecting bool
	gen       uint64
	loading   bool

	pointer   *loupe.Point
	hover     string
	lastColor string

	sink ColorSink
	log  *slog.Logger
}

// New returns an Idle controller with no image. sink and logger may be nil.
func New(opts Options, sink ColorSink, logger *slog.Logger) (*Controller, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	r, err := loupe.NewRenderer(opts.loupeConfig())
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Controller{
		opts:     opts,
		renderer: r,
		canvas:   loupe.NewTarget(0, 0),
		sink:     sink,
		log:      logger,
	}, nil
}

// Toggle flips the selection mode and returns the new mode.
func (c *Controller) Toggle() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setSelecting(!c.selecting)
}

// SetSelecting sets the selection mode and returns it.
func (c *Controller) SetSelecting(active bool) Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setSelecting(active)
}

func (c *Controller) setSelecting(active bool) Mode {
	if active == c.selecting {
		return c.mode()
	}
	c.selecting = active
	if !active {
		// Leaving selection mode takes the loupe off the canvas.
		c.pointer = nil
		c.hover = ""
		if c.session != nil {
			c.canvas.Reset(c.session.base)
		}
	}
	c.log.Debug("selection mode changed", "mode", c.mode())
	return c.mode()
}

func (c *Controller) mode() Mode {
	if c.selecting {
		return Active
	}
	return Idle
}

// ready reports whether pointer handlers may run.
func (c *Controller) ready() bool {
	return c.session != nil && !c.loading
}

// Load replaces the current image with the one produced by src.
//
// src first checks the content. Content that is not an image fails there
// with an error wrapping imaging.ErrNotImage and the controller is not
// touched: a load already in flight still commits. Once the content is
// accepted the load supersedes every earlier one, and pointer handlers are
// inert until it returns. If another accepted load starts in the meantime
// this one returns ErrStaleLoad and changes nothing.
func (c *Controller) Load(ctx context.Context, src Source) error {
	decode, err := src(ctx)
	if err != nil {
		c.logLoadError(err)
		return err
	}

	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.loading = true
	opts := c.opts
	c.mu.Unlock()

	img, format, err := decode(ctx)
	var s *session
	if err == nil {
		err = ctx.Err()
	}
	if err == nil {
		s, err = newSession(img, format, opts)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		c.log.Debug("discarding stale load", "generation", gen, "latest", c.gen)
		return ErrStaleLoad
	}
	c.loading = false

	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		c.logLoadError(err)
		return err
	}

	if !sameMosaic(opts, c.opts) {
		// Configure ran while decoding.
		s, err = newSession(s.src, s.info.Format, c.opts)
		if err != nil {
			return err
		}
	}

	c.commit(s)
	c.log.Info("image loaded",
		"width", s.info.Width, "height", s.info.Height, "format", s.info.Format,
		"canvas_width", s.base.Rect.Dx(), "canvas_height", s.base.Rect.Dy(),
		"block_size", c.opts.BlockSize)
	return nil
}

func (c *Controller) logLoadError(err error) {
	if errors.Is(err, imaging.ErrNotImage) {
		c.log.Info("ignoring non-image input", "error", err)
		return
	}
	c.log.Warn("image load failed", "error", err)
}

// commit installs s and shows its plain base image.
func (c *Controller) commit(s *session) {
	c.session = s
	if c.canvas.Bounds() != s.base.Rect {
		c.canvas = loupe.NewTarget(s.base.Rect.Dx(), s.base.Rect.Dy())
	}
	c.pointer = nil
	c.hover = ""
	c.canvas.Reset(s.base)
}

// PointerMove repaints the loupe at p and returns the color under it. It
// returns false and draws nothing unless the controller is Active and ready.
func (c *Controller) PointerMove(p loupe.Point) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.selecting || !c.ready() {
		return "", false
	}
	p = c.clampPoint(p)
	c.hover = c.renderer.Render(c.canvas, c.session.mosaic, c.session.base, p)
	c.pointer = &p
	return c.hover, true
}

// PointerLeave restores the plain image.
func (c *Controller) PointerLeave() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.selecting || !c.ready() {
		return
	}
	c.pointer = nil
	c.hover = ""
	c.canvas.Reset(c.session.base)
}

// Click picks the color of the base image at p, records it as the last color
// and hands it to the sink. It returns false unless the controller is Active
// and ready.
func (c *Controller) Click(p loupe.Point) (*imaging.ColorResult, bool) {
	c.mu.Lock()
	if !c.selecting || !c.ready() {
		c.mu.Unlock()
		return nil, false
	}
	px := c.clampPoint(p).Pixel()
	res := imaging.NewColorResult(c.session.base.NRGBAAt(px.X, px.Y))
	c.lastColor = res.Hex
	sink := c.sink
	c.mu.Unlock()

	c.log.Info("color picked", "x", px.X, "y", px.Y, "hex", res.Hex)
	if sink != nil {
		sink.ColorPicked(res)
	}
	return res, true
}

// clampPoint keeps p inside the canvas. NaN maps to 0.
func (c *Controller) clampPoint(p loupe.Point) loupe.Point {
	return loupe.Point{
		X: clampCoord(p.X, float64(c.canvas.Width())),
		Y: clampCoord(p.Y, float64(c.canvas.Height())),
	}
}

func clampCoord(v, limit float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v >= limit:
		return math.Nextafter(limit, 0)
	default:
		return v
	}
}

// Frame returns a copy of the canvas.
func (c *Controller) Frame() *image.NRGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canvas.Snapshot()
}

// Base returns the plain base layer at canvas size, or nil before the first
// load. Callers must not modify it.
func (c *Controller) Base() *image.NRGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	return c.session.base
}

// Mosaic returns the committed mosaic, or nil before the first load.
func (c *Controller) Mosaic() *mosaic.Mosaic {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	return c.session.mosaic
}

// Options returns the current options.
func (c *Controller) Options() Options {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opts
}

// State returns a snapshot of the controller.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := State{
		Mode:         c.mode(),
		Ready:        c.ready(),
		Loading:      c.loading,
		CanvasWidth:  c.canvas.Width(),
		CanvasHeight: c.canvas.Height(),
		HoverColor:   c.hover,
		LastColor:    c.lastColor,
		Options:      c.opts,
	}
	if c.session != nil {
		info := *c.session.info
		st.Image = &info
	}
	if c.pointer != nil {
		p := *c.pointer
		st.Pointer = &p
		if c.session != nil {
			px := p.Pixel()
			st.TileColor = c.session.mosaic.Sample(px.X, px.Y).Hex()
		}
	}
	return st
}

// Configure applies new options. The mosaic is rebuilt when block size,
// strategy, grid or canvas width change, and the canvas is repainted.
func (c *Controller) Configure(opts Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	r := c.renderer
	if r.Config() != opts.loupeConfig() {
		var err error
		if r, err = loupe.NewRenderer(opts.loupeConfig()); err != nil {
			return err
		}
	}

	if c.session != nil && !sameMosaic(opts, c.opts) {
		s, err := newSession(c.session.src, c.session.info.Format, opts)
		if err != nil {
			return err
		}
		pointer := c.pointer
		c.commit(s)
		if pointer != nil {
			p := c.clampPoint(*pointer)
			c.pointer = &p
		}
	}
	c.opts = opts
	c.renderer = r

	if c.session != nil && c.selecting && c.pointer != nil && !c.loading {
		c.hover = c.renderer.Render(c.canvas, c.session.mosaic, c.session.base, *c.pointer)
	}
	c.log.Debug("options updated",
		"radius", opts.Radius, "zoom", opts.Zoom, "block_size", opts.BlockSize,
		"strategy", opts.Strategy, "grid", opts.Grid, "edge", opts.Edge)
	return nil
}
