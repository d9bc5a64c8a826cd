package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ayusman/gesturemagic/internal/app"
	"github.com/ayusman/gesturemagic/internal/capture"
	"github.com/ayusman/gesturemagic/internal/config"
	"github.com/ayusman/gesturemagic/internal/detector"
	"github.com/ayusman/gesturemagic/internal/render"
	"github.com/ayusman/gesturemagic/internal/replay"
	"github.com/ayusman/gesturemagic/internal/server"
	"github.com/ayusman/gesturemagic/internal/store"
	"github.com/ayusman/gesturemagic/internal/tray"
	"github.com/ayusman/gesturemagic/internal/vision"
)

// tickRate drives the scene when the front-end has no render loop of its own.
const tickRate = 60

func main() {
	cfg, err := loadConfig(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	fmt.Println("Gesture Magic - Hand Gesture Particle Display")

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}
	st, err := store.New(cfg.DBPath())
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()
	fmt.Printf("Sessions database: %s\n", st.Path())

	source, loop, err := newSource(cfg, st)
	if err != nil {
		log.Fatalf("Failed to set up gesture source: %v", err)
	}

	a := app.New(app.Config{
		Shape:  cfg.ShapeID(),
		Color:  cfg.Color,
		Seed:   cfg.Seed,
		Source: source,
		Store:  st,
	})
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.Start(ctx); err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	if cfg.Record != "" {
		if _, err := a.StartRecording(cfg.Record); err != nil {
			log.Printf("Failed to start recording: %v", err)
		}
	}

	if cfg.Addr != "" {
		srvCfg := server.Config{
			StaticDir: cfg.WebDir,
			Scene:     a,
			Store:     st,
		}
		if srvCfg.StaticDir == "" {
			srvCfg.StaticDir = findWebDir(cfg.DataDir)
		}
		if srvCfg.StaticDir != "" {
			fmt.Printf("Serving static files from: %s\n", srvCfg.StaticDir)
		}
		if loop != nil && cfg.Camera.Preview {
			srvCfg.Preview = loop
		}

		srv := server.New(srvCfg)
		go func() {
			if err := srv.Run(ctx, cfg.Addr); err != nil {
				log.Printf("Server failed: %v", err)
			}
		}()
	}

	if err := runFrontend(ctx, stop, cfg, a); err != nil {
		log.Printf("Front-end failed: %v", err)
	}
}

// newSource picks the gesture source: a recorded session when replaying,
// otherwise the camera. The vision loop is also returned for the preview.
func newSource(cfg config.Config, st *store.Store) (app.Source, *vision.Loop, error) {
	if cfg.Replay != "" {
		player, err := replay.Load(st, cfg.Replay)
		if err != nil {
			return nil, nil, err
		}
		fmt.Printf("Replaying session %s (%d frames)\n", cfg.Replay, player.Len())
		return player, nil, nil
	}

	det, err := detector.NewMediaPipeDetector(cfg.Detector)
	if err != nil {
		log.Printf("Hand detection unavailable: %v", err)
		return nil, nil, nil
	}

	loop := vision.New(capture.NewCamera(cfg.Camera.Device), det, cfg.Vision())
	return loop, loop, nil
}

// runFrontend blocks on the chosen front-end until it exits or ctx ends.
// Window and tray front-ends must run on the main goroutine.
func runFrontend(ctx context.Context, stop context.CancelFunc, cfg config.Config, a *app.App) error {
	switch cfg.Frontend {
	case config.FrontendWindow:
		w := render.NewWindow(a, render.WindowConfig{
			Width:  cfg.Window.Width,
			Height: cfg.Window.Height,
			Title:  cfg.Window.Title,
		})
		return w.Run(ctx)

	case config.FrontendTerminal:
		term, err := render.NewTerminal(a, nil)
		if err != nil {
			return err
		}
		return term.Run(ctx)

	case config.FrontendTray:
		go tick(ctx, a)

		t := tray.New(a)
		a.OnGesture(t.SetGesture)
		t.OnControls(func() {
			fmt.Printf("Controls: http://localhost%s\n", cfg.Addr)
		})
		t.OnQuit(stop)
		go func() {
			<-ctx.Done()
			t.Quit()
		}()
		t.Run()
		return nil

	default:
		fmt.Printf("Running headless on %s\n", cfg.Addr)
		tick(ctx, a)
		return nil
	}
}

// tick advances the scene at tickRate until ctx is done.
func tick(ctx context.Context, a *app.App) {
	ticker := time.NewTicker(time.Second / tickRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.Tick(1.0 / tickRate)
		}
	}
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and <dataDir>/web.
// Returns the first existing directory or empty string if none found.
func findWebDir(dataDir string) string {
	// Check relative paths from current working directory
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	dataWebDir := filepath.Join(dataDir, "web")
	if info, err := os.Stat(dataWebDir); err == nil && info.IsDir() {
		return dataWebDir
	}

	return ""
}
