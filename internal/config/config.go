// Package config loads gesturemagic settings from defaults, an optional
// TOML file, and command-line overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/ayusman/gesturemagic/internal/detector"
	"github.com/ayusman/gesturemagic/internal/palette"
	"github.com/ayusman/gesturemagic/internal/shape"
	"github.com/ayusman/gesturemagic/internal/vision"
)

// Front-ends.
const (
	FrontendWindow   = "window"
	FrontendTerminal = "terminal"
	FrontendTray     = "tray"
	FrontendHeadless = "headless"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config is the full application configuration.
type Config struct {
	// Addr is the HTTP listen address. Empty disables the server.
	Addr     string `toml:"addr"`
	DataDir  string `toml:"data_dir"`
	WebDir   string `toml:"web_dir"`
	Frontend string `toml:"frontend"`

	Shape string `toml:"shape"`
	Color string `toml:"color"`
	// Seed makes shape and palette sampling reproducible. Zero seeds from
	// the clock.
	Seed uint64 `toml:"seed"`

	// Record starts recording a session with this name at startup.
	Record string `toml:"record"`
	// Replay plays back the session with this ID instead of using the camera.
	Replay string `toml:"replay"`

	Camera   CameraConfig    `toml:"camera"`
	Detector detector.Config `toml:"detector"`
	Window   WindowConfig    `toml:"window"`
}

// CameraConfig selects the capture device and the vision loop rate.
type CameraConfig struct {
	Device  int  `toml:"device"`
	FPS     int  `toml:"fps"`
	Preview bool `toml:"preview"`
}

// WindowConfig sizes the desktop window.
type WindowConfig struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Addr:     ":8080",
		DataDir:  DefaultDataDir(),
		Frontend: FrontendWindow,
		Shape:    string(shape.Tree),
		Color:    palette.DefaultHex,
		Camera: CameraConfig{
			FPS: vision.DefaultConfig().FPS,
		},
		Detector: detector.DefaultConfig(),
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Title:  "Gesture Magic",
		},
	}
}

// DefaultDataDir returns ~/.gesturemagic, or a relative .gesturemagic when
// the home directory is unknown.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gesturemagic"
	}
	return filepath.Join(home, ".gesturemagic")
}

// Load reads a TOML file on top of the defaults. Unknown keys are errors.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return cfg, fmt.Errorf("%w: %s", ErrInvalid, strict.String())
		}
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks that every value is usable.
func (c Config) Validate() error {
	if _, err := shape.ParseID(c.Shape); err != nil {
		return fmt.Errorf("%w: shape: %v", ErrInvalid, err)
	}
	if _, err := palette.ParseHex(c.Color); err != nil {
		return fmt.Errorf("%w: color: %v", ErrInvalid, err)
	}

	switch c.Frontend {
	case FrontendWindow, FrontendTerminal, FrontendTray, FrontendHeadless:
	default:
		return fmt.Errorf("%w: unknown frontend %q", ErrInvalid, c.Frontend)
	}

	if c.Camera.FPS <= 0 {
		return fmt.Errorf("%w: camera.fps must be positive", ErrInvalid)
	}
	if c.Detector.MaxHands < 1 {
		return fmt.Errorf("%w: detector.max_hands must be at least 1", ErrInvalid)
	}
	for name, v := range map[string]float64{
		"detector.min_confidence":          c.Detector.MinConfidence,
		"detector.min_tracking_confidence": c.Detector.MinTrackingConf,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: %s must be in [0, 1]", ErrInvalid, name)
		}
	}
	if c.Frontend == FrontendWindow && (c.Window.Width <= 0 || c.Window.Height <= 0) {
		return fmt.Errorf("%w: window size must be positive", ErrInvalid)
	}
	if c.Record != "" && c.Replay != "" {
		return fmt.Errorf("%w: record and replay are mutually exclusive", ErrInvalid)
	}
	if c.Frontend == FrontendHeadless && c.Addr == "" {
		return fmt.Errorf("%w: headless mode needs an HTTP address", ErrInvalid)
	}

	return nil
}

// DBPath returns the session database location.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, "gesturemagic.db")
}

// Vision returns the vision loop settings.
func (c Config) Vision() vision.Config {
	return vision.Config{FPS: c.Camera.FPS, Preview: c.Camera.Preview}
}

// ShapeID returns the parsed initial shape. Call Validate first.
func (c Config) ShapeID() shape.ID {
	id, err := shape.ParseID(c.Shape)
	if err != nil {
		return shape.Tree
	}
	return id
}
