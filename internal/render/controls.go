package render

import (
	"errors"
	"log"

	"github.com/ayusman/gesturemagic/internal/app"
	"github.com/ayusman/gesturemagic/internal/palette"
	"github.com/ayusman/gesturemagic/internal/shape"
)

// Scene is the part of the app a renderer drives.
type Scene interface {
	Tick(dt float64)
	Snapshot() app.Snapshot
	SetShape(id shape.ID) error
	SetColor(hex string) error
	StartRecording(name string) (string, error)
	StopRecording() error
	Recording() string
}

// Controls maps the shared key bindings onto scene changes:
// 1-5 pick a shape, C cycles the color presets, R toggles recording.
type Controls struct {
	scene  Scene
	preset int
}

// NewControls creates controls for scene.
func NewControls(scene Scene) *Controls {
	return &Controls{scene: scene}
}

// Key handles a key press. It reports whether the key was bound.
func (c *Controls) Key(r rune) bool {
	switch {
	case r >= '1' && r <= '9':
		return c.SelectShape(int(r - '1'))
	case r == 'c' || r == 'C':
		c.NextColor()
		return true
	case r == 'r' || r == 'R':
		c.ToggleRecording()
		return true
	}
	return false
}

// SelectShape switches to the i-th shape in menu order.
func (c *Controls) SelectShape(i int) bool {
	shapes := shape.All()
	if i < 0 || i >= len(shapes) {
		return false
	}
	if err := c.scene.SetShape(shapes[i]); err != nil {
		log.Printf("Failed to switch shape: %v", err)
	}
	return true
}

// NextColor moves to the next color preset.
func (c *Controls) NextColor() {
	c.preset = (c.preset + 1) % len(palette.Presets)
	if err := c.scene.SetColor(palette.Presets[c.preset].Hex); err != nil {
		log.Printf("Failed to switch color: %v", err)
	}
}

// ToggleRecording starts a session when idle and stops the active one
// otherwise.
func (c *Controls) ToggleRecording() {
	if c.scene.Recording() != "" {
		if err := c.scene.StopRecording(); err != nil && !errors.Is(err, app.ErrNotRecording) {
			log.Printf("Failed to stop recording: %v", err)
		}
		return
	}
	if _, err := c.scene.StartRecording(""); err != nil {
		log.Printf("Failed to start recording: %v", err)
	}
}

// Status is the one-line summary shown by the renderers.
func Status(st app.State) string {
	s := st.Shape.String() + " | " + st.Color + " | " + st.Label
	if st.Recording {
		s += " | REC"
	}
	return s
}
