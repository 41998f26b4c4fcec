// Package config loads color picker settings from YAML files.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/color-picker-mcp/internal/loupe"
	"github.com/ironsheep/color-picker-mcp/internal/mosaic"
	"github.com/ironsheep/color-picker-mcp/internal/picker"
)

// Config is the on-disk configuration.
type Config struct {
	Radius      float64 `yaml:"radius"`
	Zoom        float64 `yaml:"zoom"`
	BlockSize   int     `yaml:"block_size"`
	CanvasWidth int     `yaml:"canvas_width"` // 0 keeps the image width
	Strategy    string  `yaml:"strategy"`     // top-left | per-pixel
	Grid        bool    `yaml:"grid"`
	Edge        string  `yaml:"edge"`      // transparent | clamp
	LogLevel    string  `yaml:"log_level"` // debug | info | warn | error
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Radius:    70,
		Zoom:      1,
		BlockSize: 6,
		Strategy:  mosaic.TopLeft.String(),
		Edge:      loupe.EdgeTransparent.String(),
		LogLevel:  "info",
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every field.
func (c *Config) Validate() error {
	if _, err := c.PickerOptions(); err != nil {
		return err
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// PickerOptions converts the configuration to controller options.
func (c *Config) PickerOptions() (picker.Options, error) {
	strategy, err := mosaic.ParseStrategy(c.Strategy)
	if err != nil {
		return picker.Options{}, err
	}
	edge, err := loupe.ParseEdgePolicy(c.Edge)
	if err != nil {
		return picker.Options{}, err
	}

	opts := picker.Options{
		Radius:      c.Radius,
		Zoom:        c.Zoom,
		BlockSize:   c.BlockSize,
		CanvasWidth: c.CanvasWidth,
		Strategy:    strategy,
		Grid:        c.Grid,
		Edge:        edge,
	}
	if err := opts.Validate(); err != nil {
		return picker.Options{}, err
	}
	return opts, nil
}

// ParseLevel maps a level name to a slog level. The empty string is info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}
