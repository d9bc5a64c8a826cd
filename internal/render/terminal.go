package render

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// TerminalFPS is the terminal redraw rate.
const TerminalFPS = 30

// cellAspect is the height of a terminal cell over its width.
const cellAspect = 2

const ornamentGlyph = '★'

// Terminal renders the scene as colored glyphs in a tcell screen.
type Terminal struct {
	scene    Scene
	controls *Controls
	screen   tcell.Screen

	proj  Projector
	dots  []Dot
	cells []cell
}

// cell accumulates the particles that land on one screen cell. Colors add
// up like the window's additive blending; the nearest particle picks the
// glyph.
type cell struct {
	r, g, b float64
	glyph   rune
}

// NewTerminal creates a terminal renderer on screen. A nil screen opens
// the real terminal.
func NewTerminal(scene Scene, screen tcell.Screen) (*Terminal, error) {
	if screen == nil {
		s, err := tcell.NewScreen()
		if err != nil {
			return nil, fmt.Errorf("open terminal: %w", err)
		}
		screen = s
	}

	return &Terminal{
		scene:    scene,
		controls: NewControls(scene),
		screen:   screen,
	}, nil
}

// Run initializes the screen and renders until ctx is done or the user
// quits with Esc, q or Ctrl-C.
func (t *Terminal) Run(ctx context.Context) error {
	if err := t.screen.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	defer t.screen.Fini()
	t.resize()

	events := make(chan tcell.Event, 64)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			ev := t.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	dt := 1.0 / TerminalFPS
	ticker := time.NewTicker(time.Second / TerminalFPS)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if !t.handleEvent(ev) {
				return nil
			}
		case <-ticker.C:
			t.scene.Tick(dt)
			t.draw()
		}
	}
}

// handleEvent applies one input event. It returns false when the user
// asked to quit.
func (t *Terminal) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyRune:
			if ev.Rune() == 'q' {
				return false
			}
			t.controls.Key(ev.Rune())
		}
	case *tcell.EventResize:
		t.screen.Sync()
		t.resize()
	}
	return true
}

func (t *Terminal) resize() {
	w, h := t.screen.Size()
	t.proj = NewProjector(w, h)
	t.proj.CellAspect = cellAspect
	t.cells = make([]cell, w*h)
}

func (t *Terminal) draw() {
	w, h := t.screen.Size()
	if float64(w) != t.proj.Width || float64(h) != t.proj.Height {
		t.resize()
	}
	for i := range t.cells {
		t.cells[i] = cell{}
	}

	snap := t.scene.Snapshot()
	t.dots = t.proj.Dots(snap, t.dots)
	for _, d := range t.dots {
		c := &t.cells[int(d.Y)*w+int(d.X)]
		col := d.Color.Clamped()
		c.r += col.R * Opacity
		c.g += col.G * Opacity
		c.b += col.B * Opacity
		c.glyph = glyphFor(d.Size)
	}
	if o, ok := t.proj.Ornament(snap); ok {
		c := &t.cells[int(o.Y)*w+int(o.X)]
		c.r, c.g, c.b = OrnamentColor.R, OrnamentColor.G, OrnamentColor.B
		c.glyph = ornamentGlyph
	}

	bg := tcell.StyleDefault.Background(rgb(Background))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := t.cells[y*w+x]
			if c.glyph == 0 {
				t.screen.SetContent(x, y, ' ', nil, bg)
				continue
			}
			fg := colorful.Color{R: c.r, G: c.g, B: c.b}.Clamped()
			t.screen.SetContent(x, y, c.glyph, nil, bg.Foreground(rgb(fg)))
		}
	}

	status := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(rgb(Background))
	for i, r := range []rune(Status(snap.State)) {
		if i >= w {
			break
		}
		t.screen.SetContent(i, 0, r, nil, status)
	}

	t.screen.Show()
}

// glyphFor picks a glyph by on-screen size in rows.
func glyphFor(size float64) rune {
	switch {
	case size < 0.4:
		return '·'
	case size < 0.8:
		return '•'
	default:
		return '●'
	}
}

func rgb(c colorful.Color) tcell.Color {
	r, g, b := c.RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}
