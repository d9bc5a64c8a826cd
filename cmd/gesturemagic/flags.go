package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/ayusman/gesturemagic/internal/config"
)

// options are the command-line flags. Only flags set explicitly override
// the configuration file.
type options struct {
	configPath string
	addr       string
	camera     int
	frontend   string
	shape      string
	color      string
	record     string
	replay     string
	dataDir    string
	seed       uint64
	preview    bool
}

func newFlagSet(opts *options, output io.Writer) *flag.FlagSet {
	def := config.Default()

	fs := flag.NewFlagSet("gesturemagic", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&opts.configPath, "config", "", "Path to a TOML config file")
	fs.StringVar(&opts.addr, "addr", def.Addr, "HTTP listen address (empty disables the server)")
	fs.IntVar(&opts.camera, "camera", def.Camera.Device, "Camera device index")
	fs.StringVar(&opts.frontend, "frontend", def.Frontend, "Front-end: window, terminal, tray or headless")
	fs.StringVar(&opts.shape, "shape", def.Shape, "Initial shape: Tree, Heart, Star, Sphere or Ring")
	fs.StringVar(&opts.color, "color", def.Color, "Initial base color as #rrggbb")
	fs.StringVar(&opts.record, "record", "", "Record the gesture stream into a session with this name")
	fs.StringVar(&opts.replay, "replay", "", "Replay the session with this ID instead of using the camera")
	fs.StringVar(&opts.dataDir, "data-dir", def.DataDir, "Directory for the session database")
	fs.Uint64Var(&opts.seed, "seed", 0, "Random seed for shapes and colors (0 picks one)")
	fs.BoolVar(&opts.preview, "preview", false, "Serve the camera preview at /api/stream")
	return fs
}

// loadConfig parses args, loads the config file if one was named, applies
// the flags that were set and validates the result.
func loadConfig(args []string, output io.Writer) (config.Config, error) {
	var opts options
	fs := newFlagSet(&opts, output)
	if err := fs.Parse(args); err != nil {
		return config.Config{}, err
	}

	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Addr = opts.addr
		case "camera":
			cfg.Camera.Device = opts.camera
		case "frontend":
			cfg.Frontend = opts.frontend
		case "shape":
			cfg.Shape = opts.shape
		case "color":
			cfg.Color = opts.color
		case "record":
			cfg.Record = opts.record
		case "replay":
			cfg.Replay = opts.replay
		case "data-dir":
			cfg.DataDir = opts.dataDir
		case "seed":
			cfg.Seed = opts.seed
		case "preview":
			cfg.Camera.Preview = opts.preview
		}
	})

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
