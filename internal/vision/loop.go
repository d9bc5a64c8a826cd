// Package vision runs the camera-to-gesture loop: it pulls frames, runs hand
// detection on new ones, classifies the result, and publishes the latest
// gesture state.
package vision

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/gesturemagic/internal/capture"
	"github.com/ayusman/gesturemagic/internal/detector"
	"github.com/ayusman/gesturemagic/internal/gesture"
)

// ErrLoopRunning is returned by Run when the loop is already active.
var ErrLoopRunning = errors.New("vision loop already running")

// Config holds vision loop options.
type Config struct {
	// FPS is the capture rate requested from the camera and how often it
	// is polled. Frames the camera has already handed out are skipped.
	FPS int `toml:"fps"`

	// Preview keeps a JPEG copy of the most recent processed frame.
	Preview bool `toml:"preview"`
}

// DefaultConfig returns the default loop configuration.
func DefaultConfig() Config {
	return Config{FPS: capture.DefaultFPS}
}

// Loop owns the camera and detector for as long as Run is active.
type Loop struct {
	camera   capture.Camera
	detector detector.Detector
	config   Config

	mu        sync.Mutex
	running   bool
	lastTs    int64
	seenFrame bool
	frames    int
	preview   []byte
	initErr   error
}

// New creates a loop over the given camera and detector. The loop takes
// ownership of both and closes them when Run returns.
func New(cam capture.Camera, det detector.Detector, config Config) *Loop {
	if config.FPS <= 0 {
		config.FPS = DefaultConfig().FPS
	}
	return &Loop{
		camera:   cam,
		detector: det,
		config:   config,
	}
}

// Run opens the camera, loads the detector and then processes frames until
// ctx is cancelled. Initialization failures are terminal: they are logged,
// nothing is published, and Run returns the error without retrying. The
// camera and detector are released on every return path.
func (l *Loop) Run(ctx context.Context, publish func(gesture.State)) error {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return ErrLoopRunning
	}
	l.running = true
	l.seenFrame = false
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.running = false
		l.mu.Unlock()
	}()
	defer l.release()

	if err := l.init(); err != nil {
		l.mu.Lock()
		l.initErr = err
		l.mu.Unlock()
		log.Printf("Vision loop disabled: %v", err)
		return err
	}

	log.Printf("Vision loop started at %d fps", l.camera.FPS())
	defer log.Println("Vision loop stopped")

	ticker := time.NewTicker(time.Second / time.Duration(l.config.FPS))
	defer ticker.Stop()

	var readFailing bool
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			err := l.step(ctx, publish)
			switch {
			case err != nil && !readFailing:
				log.Printf("Vision frame error: %v", err)
				readFailing = true
			case err == nil && readFailing:
				log.Println("Vision frames recovered")
				readFailing = false
			}
		}
	}
}

func (l *Loop) init() error {
	l.camera.SetFPS(l.config.FPS)
	if err := l.camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	if s, ok := l.detector.(detector.Starter); ok {
		if err := s.Start(); err != nil {
			return fmt.Errorf("load hand model: %w", err)
		}
	}
	return nil
}

func (l *Loop) release() {
	if err := l.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}
	if err := l.detector.Close(); err != nil {
		log.Printf("Error closing detector: %v", err)
	}
}

// step processes at most one frame. Frames whose timestamp matches the
// previous processed frame are skipped.
func (l *Loop) step(ctx context.Context, publish func(gesture.State)) error {
	frame, err := l.camera.ReadFrame()
	if err != nil {
		return err
	}
	defer frame.Close()

	l.mu.Lock()
	dup := l.seenFrame && frame.TimestampMs == l.lastTs
	l.mu.Unlock()
	if dup {
		return nil
	}

	hands, err := l.detector.Detect(&frame.Mat, frame.TimestampMs)

	// A result that lands after teardown belongs to nobody.
	if ctx.Err() != nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("detect hands: %w", err)
	}

	publish(gesture.ClassifyFirst(hands))

	l.mu.Lock()
	l.lastTs = frame.TimestampMs
	l.seenFrame = true
	l.frames++
	l.mu.Unlock()

	if l.config.Preview {
		l.encodePreview(&frame.Mat)
	}
	return nil
}

func (l *Loop) encodePreview(mat *gocv.Mat) {
	if mat.Empty() {
		return
	}
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *mat)
	if err != nil {
		return
	}
	defer buf.Close()

	jpg := make([]byte, buf.Len())
	copy(jpg, buf.GetBytes())

	l.mu.Lock()
	l.preview = jpg
	l.mu.Unlock()
}

// Preview returns the most recent JPEG preview frame, or nil if none has
// been captured. The returned slice must not be modified.
func (l *Loop) Preview() []byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.preview
}

// Frames returns the number of frames run through detection.
func (l *Loop) Frames() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frames
}

// Running reports whether Run is active.
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// Err returns the initialization error from the last Run, if any.
func (l *Loop) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.initErr
}
