package main

import (
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/ayusman/gesturemagic/internal/config"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(nil, io.Discard)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}

	def := config.Default()
	if cfg.Addr != def.Addr || cfg.Shape != def.Shape || cfg.Frontend != def.Frontend {
		t.Errorf("loadConfig() = %+v, want defaults", cfg)
	}
}

func TestLoadConfig_Flags(t *testing.T) {
	cfg, err := loadConfig([]string{
		"-addr", ":9090",
		"-frontend", "terminal",
		"-shape", "love",
		"-color", "#C41E3A",
		"-camera", "2",
		"-seed", "42",
		"-preview",
		"-data-dir", t.TempDir(),
	}, io.Discard)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}

	if cfg.Addr != ":9090" {
		t.Errorf("Addr = %q, want %q", cfg.Addr, ":9090")
	}
	if cfg.Frontend != config.FrontendTerminal {
		t.Errorf("Frontend = %q, want %q", cfg.Frontend, config.FrontendTerminal)
	}
	if cfg.ShapeID() != "Heart" {
		t.Errorf("ShapeID() = %q, want Heart", cfg.ShapeID())
	}
	if cfg.Camera.Device != 2 || !cfg.Camera.Preview {
		t.Errorf("Camera = %+v", cfg.Camera)
	}
	if cfg.Seed != 42 {
		t.Errorf("Seed = %d, want 42", cfg.Seed)
	}
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gesturemagic.toml")
	data := "addr = \":7000\"\nshape = \"Ring\"\n\n[camera]\nfps = 24\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig([]string{"-config", path, "-shape", "Star"}, io.Discard)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}

	if cfg.Addr != ":7000" {
		t.Errorf("Addr = %q, want file value %q", cfg.Addr, ":7000")
	}
	if cfg.Shape != "Star" {
		t.Errorf("Shape = %q, want flag value Star", cfg.Shape)
	}
	if cfg.Camera.FPS != 24 {
		t.Errorf("Camera.FPS = %d, want 24", cfg.Camera.FPS)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{name: "unknown shape", args: []string{"-shape", "cube"}, wantErr: config.ErrInvalid},
		{name: "bad color", args: []string{"-color", "green"}, wantErr: config.ErrInvalid},
		{name: "bad frontend", args: []string{"-frontend", "vr"}, wantErr: config.ErrInvalid},
		{name: "record and replay", args: []string{"-record", "a", "-replay", "b"}, wantErr: config.ErrInvalid},
		{name: "help", args: []string{"-h"}, wantErr: flag.ErrHelp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(tt.args, io.Discard)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("loadConfig() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFindWebDir_DataDir(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	if got := findWebDir(dir); got != "" {
		t.Errorf("findWebDir() = %q, want empty", got)
	}

	web := filepath.Join(dir, "data", "web")
	if err := os.MkdirAll(web, 0755); err != nil {
		t.Fatal(err)
	}
	if got := findWebDir(filepath.Join(dir, "data")); got != web {
		t.Errorf("findWebDir() = %q, want %q", got, web)
	}
}
