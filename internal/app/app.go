// Package app composes the gesture source, the motion engine and the color
// palette into the running particle display.
package app

import (
	"context"
	"errors"
	"log"
	"math/rand/v2"
	"sync"
	"sync/atomic"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ayusman/gesturemagic/internal/gesture"
	"github.com/ayusman/gesturemagic/internal/motion"
	"github.com/ayusman/gesturemagic/internal/palette"
	"github.com/ayusman/gesturemagic/internal/shape"
	"github.com/ayusman/gesturemagic/internal/store"
	"github.com/ayusman/gesturemagic/internal/vision"
)

// Recording errors.
var (
	ErrRecordingUnavailable = errors.New("recording needs a session store")
	ErrAlreadyRecording     = errors.New("already recording")
	ErrNotRecording         = errors.New("not recording")
)

// Source produces gesture states until ctx is cancelled. The vision loop
// and the session replayer both satisfy it.
type Source interface {
	Run(ctx context.Context, publish func(gesture.State)) error
}

// Config holds configuration options for the application.
type Config struct {
	Shape shape.ID
	Color string
	// Seed fixes the random source used for shapes and palettes; zero
	// picks a random seed.
	Seed uint64

	Source Source
	Store  *store.Store
}

// App owns the scene. Tick drives it from the render loop; every other
// method is safe to call from any goroutine.
type App struct {
	config Config
	slot   gesture.Slot

	// rngMu guards rng, which is not safe for concurrent use.
	rngMu sync.Mutex
	rng   *rand.Rand

	mu       sync.RWMutex
	engine   *motion.Engine
	ornament *motion.Ornament
	shape    shape.ID
	colorHex string
	palette  palette.Assignment

	obsMu     sync.RWMutex
	observers []func(gesture.State)

	recorder atomic.Pointer[store.Recorder]

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates an App with the configured shape and color. Invalid values
// fall back to the tree and the default green.
func New(config Config) *App {
	seed := config.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	a := &App{
		config:   config,
		rng:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		ornament: motion.NewOrnament(),
	}

	id := config.Shape
	if !id.Valid() {
		if id != "" {
			log.Printf("Unknown shape %q, using %s", id, shape.Tree)
		}
		id = shape.Tree
	}

	base, err := palette.ParseHex(config.Color)
	if err != nil {
		if config.Color != "" {
			log.Printf("Invalid color %q, using %s", config.Color, palette.DefaultHex)
		}
		base, _ = palette.ParseHex(palette.DefaultHex)
	}

	a.engine = motion.NewEngine(shape.Scatter(a.rng))
	a.engine.SetTargets(shape.Generate(id, a.rng))
	a.shape = id
	a.colorHex = base.Hex()
	a.palette = palette.Assign(base, a.engine.Len(), a.rng)

	return a
}

// Start launches the gesture source in the background. It returns
// immediately; a source that fails to initialize logs the failure and
// leaves the gesture state at "no hand".
func (a *App) Start(ctx context.Context) error {
	a.runMu.Lock()
	defer a.runMu.Unlock()

	if a.cancel != nil {
		return vision.ErrLoopRunning
	}
	if a.config.Source == nil {
		log.Println("No gesture source configured")
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	a.cancel = cancel
	a.done = done

	go func() {
		defer close(done)
		if err := a.config.Source.Run(ctx, a.Publish); err != nil {
			log.Printf("Gesture source stopped: %v", err)
		}
	}()

	return nil
}

// Stop tears the gesture source down and waits for it to release its
// devices. The gesture state returns to "no hand". Stop is idempotent.
func (a *App) Stop() {
	a.runMu.Lock()
	defer a.runMu.Unlock()

	if a.cancel == nil {
		return
	}
	a.cancel()
	<-a.done
	a.cancel = nil
	a.done = nil

	a.slot.Store(gesture.Absent())
}

// Running reports whether a gesture source is active.
func (a *App) Running() bool {
	a.runMu.Lock()
	defer a.runMu.Unlock()
	return a.cancel != nil
}

// Close stops the source and finishes any recording.
func (a *App) Close() error {
	a.Stop()
	if err := a.StopRecording(); err != nil && !errors.Is(err, ErrNotRecording) {
		return err
	}
	return nil
}

// Publish replaces the latest gesture state. Sources call it once per
// processed frame.
func (a *App) Publish(st gesture.State) {
	a.slot.Store(st)

	if rec := a.recorder.Load(); rec != nil {
		rec.Record(st)
	}

	a.obsMu.RLock()
	observers := a.observers
	a.obsMu.RUnlock()

	for _, fn := range observers {
		fn(st)
	}
}

// OnGesture registers fn to be called with every published state, on the
// publishing goroutine. fn must not block.
func (a *App) OnGesture(fn func(gesture.State)) {
	a.obsMu.Lock()
	defer a.obsMu.Unlock()
	// Copy on write so Publish can iterate without holding the lock.
	observers := make([]func(gesture.State), len(a.observers), len(a.observers)+1)
	copy(observers, a.observers)
	a.observers = append(observers, fn)
}

// Gesture returns the latest published gesture state.
func (a *App) Gesture() gesture.State {
	return a.slot.Load()
}

// Tick advances the scene by one rendered frame of dt seconds.
func (a *App) Tick(dt float64) {
	st := a.slot.Load()

	a.mu.Lock()
	defer a.mu.Unlock()

	a.engine.Update(dt, st)
	if a.shape == shape.Tree {
		a.ornament.Update(dt, a.engine.Expansion())
	}
}

// SetShape switches the target shape. Particles morph from where they are.
func (a *App) SetShape(id shape.ID) error {
	if !id.Valid() {
		return shape.ErrUnknownShape
	}

	a.rngMu.Lock()
	points := shape.Generate(id, a.rng)
	a.rngMu.Unlock()

	a.mu.Lock()
	changed := a.shape != id
	a.engine.SetTargets(points)
	a.shape = id
	a.mu.Unlock()

	if changed {
		log.Printf("Switched shape to %s", id)
	}
	return nil
}

// Shape returns the current shape.
func (a *App) Shape() shape.ID {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.shape
}

// SetColor parses hex and reassigns the palette around it.
func (a *App) SetColor(hex string) error {
	base, err := palette.ParseHex(hex)
	if err != nil {
		return err
	}

	a.mu.RLock()
	n := a.engine.Len()
	a.mu.RUnlock()

	a.rngMu.Lock()
	assignment := palette.Assign(base, n, a.rng)
	a.rngMu.Unlock()

	a.mu.Lock()
	a.colorHex = base.Hex()
	a.palette = assignment
	a.mu.Unlock()

	log.Printf("Switched color to %s", base.Hex())
	return nil
}

// Color returns the base color as lowercase #rrggbb.
func (a *App) Color() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.colorHex
}

// Palette returns the current color assignment. It is never mutated.
func (a *App) Palette() palette.Assignment {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.palette
}

// State is the scene summary without per-particle data.
type State struct {
	Shape     shape.ID             `json:"shape"`
	Color     string               `json:"color"`
	Gesture   gesture.State        `json:"gesture"`
	Label     string               `json:"label"`
	Expansion float64              `json:"expansion"`
	Camera    motion.Camera        `json:"camera"`
	Ornament  *motion.OrnamentPose `json:"ornament,omitempty"`
	Frames    int                  `json:"frames"`
	Elapsed   float64              `json:"elapsed"`
	Recording bool                 `json:"recording"`
}

// Snapshot is a copy of the full scene, safe to use from another goroutine.
type Snapshot struct {
	State
	Transforms []motion.Transform `json:"transforms"`
	Colors     []colorful.Color   `json:"-"`
}

// State returns the scene summary.
func (a *App) State() State {
	st := a.slot.Load()

	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stateLocked(st)
}

func (a *App) stateLocked(st gesture.State) State {
	s := State{
		Shape:     a.shape,
		Color:     a.colorHex,
		Gesture:   st,
		Label:     st.Gesture.Label(),
		Expansion: a.engine.Expansion(),
		Camera:    a.engine.Camera(),
		Frames:    a.engine.Frames(),
		Elapsed:   a.engine.Elapsed(),
		Recording: a.recorder.Load() != nil,
	}
	if a.shape == shape.Tree {
		pose := a.ornament.Pose()
		s.Ornament = &pose
	}
	return s
}

// Snapshot copies the scene including every particle transform and color.
func (a *App) Snapshot() Snapshot {
	st := a.slot.Load()

	a.mu.RLock()
	defer a.mu.RUnlock()

	transforms := a.engine.Transforms()
	snap := Snapshot{
		State:      a.stateLocked(st),
		Transforms: make([]motion.Transform, len(transforms)),
		Colors:     a.palette.Colors,
	}
	copy(snap.Transforms, transforms)
	return snap
}

// StartRecording begins recording published gesture states into a new
// session and returns its ID.
func (a *App) StartRecording(name string) (string, error) {
	if a.config.Store == nil {
		return "", ErrRecordingUnavailable
	}
	if a.recorder.Load() != nil {
		return "", ErrAlreadyRecording
	}

	rec, err := a.config.Store.NewRecorder(name)
	if err != nil {
		return "", err
	}
	if !a.recorder.CompareAndSwap(nil, rec) {
		rec.Close()
		return "", ErrAlreadyRecording
	}

	log.Printf("Recording session %s", rec.ID())
	return rec.ID(), nil
}

// StopRecording finishes the active recording.
func (a *App) StopRecording() error {
	rec := a.recorder.Swap(nil)
	if rec == nil {
		return ErrNotRecording
	}

	log.Printf("Stopped recording session %s", rec.ID())
	return rec.Close()
}

// Recording returns the active session ID, or "" when not recording.
func (a *App) Recording() string {
	if rec := a.recorder.Load(); rec != nil {
		return rec.ID()
	}
	return ""
}
