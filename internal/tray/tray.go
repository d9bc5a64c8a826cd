// Package tray provides a system tray menu for the Gesture Magic particle display.
package tray

import (
	"log"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/gesturemagic/internal/gesture"
	"github.com/ayusman/gesturemagic/internal/palette"
	"github.com/ayusman/gesturemagic/internal/shape"
)

// Scene is the part of the app the tray controls.
type Scene interface {
	SetShape(id shape.ID) error
	Shape() shape.ID
	SetColor(hex string) error
	StartRecording(name string) (string, error)
	StopRecording() error
	Recording() string
}

// Tray represents the system tray application.
type Tray struct {
	scene      Scene
	onControls func()
	onQuit     func()
	label      string
	mu         sync.RWMutex

	// Menu items stored for later updates
	menuGesture *systray.MenuItem
	menuRecord  *systray.MenuItem
	menuShapes  map[shape.ID]*systray.MenuItem
}

// New creates a new Tray driving scene.
func New(scene Scene) *Tray {
	return &Tray{
		scene: scene,
		label: gesture.None.Label(),
	}
}

// OnControls sets the callback function to be called when the controls menu item is clicked.
func (t *Tray) OnControls(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onControls = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Gesture Magic")
	systray.SetTooltip("Gesture Magic particle display")

	t.mu.Lock()
	t.menuGesture = systray.AddMenuItem("Gesture: "+t.label, "Current hand gesture")
	t.menuGesture.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	current := t.scene.Shape()
	menuShape := systray.AddMenuItem("Shape", "Particle shape")
	shapes := make(map[shape.ID]*systray.MenuItem)
	for _, id := range shape.All() {
		item := menuShape.AddSubMenuItemCheckbox(id.String(), "Switch to "+id.String(), id == current)
		shapes[id] = item
		go t.watch(item, func() { t.handleShape(id) })
	}

	menuColor := systray.AddMenuItem("Colour", "Base colour")
	for _, p := range palette.Presets {
		item := menuColor.AddSubMenuItem(p.Name, p.Hex)
		go t.watch(item, func() { t.handleColor(p.Hex) })
	}

	menuRecord := systray.AddMenuItemCheckbox("Record session", "Record the gesture stream", t.scene.Recording() != "")
	systray.AddSeparator()

	menuControls := systray.AddMenuItem("Open Controls...", "Open the controls in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Gesture Magic")

	t.mu.Lock()
	t.menuShapes = shapes
	t.menuRecord = menuRecord
	t.mu.Unlock()

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-menuRecord.ClickedCh:
				t.handleRecord()
			case <-menuControls.ClickedCh:
				t.handleControls()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// watch calls fn for every click on item.
func (t *Tray) watch(item *systray.MenuItem, fn func()) {
	for range item.ClickedCh {
		fn()
	}
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {
	if t.scene.Recording() != "" {
		if err := t.scene.StopRecording(); err != nil {
			log.Printf("Failed to stop recording: %v", err)
		}
	}
}

// handleShape switches the shape and moves the check mark.
func (t *Tray) handleShape(id shape.ID) {
	if err := t.scene.SetShape(id); err != nil {
		log.Printf("Failed to switch shape: %v", err)
		return
	}

	t.mu.RLock()
	defer t.mu.RUnlock()
	for other, item := range t.menuShapes {
		if other == id {
			item.Check()
		} else {
			item.Uncheck()
		}
	}
}

// handleColor applies a colour preset.
func (t *Tray) handleColor(hex string) {
	if err := t.scene.SetColor(hex); err != nil {
		log.Printf("Failed to switch color: %v", err)
	}
}

// handleRecord toggles session recording.
func (t *Tray) handleRecord() {
	recording := t.scene.Recording() != ""
	if recording {
		if err := t.scene.StopRecording(); err != nil {
			log.Printf("Failed to stop recording: %v", err)
		}
	} else if _, err := t.scene.StartRecording(""); err != nil {
		log.Printf("Failed to start recording: %v", err)
	}

	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.menuRecord == nil {
		return
	}
	if t.scene.Recording() != "" {
		t.menuRecord.Check()
	} else {
		t.menuRecord.Uncheck()
	}
}

// handleControls handles the controls menu item click.
func (t *Tray) handleControls() {
	t.mu.RLock()
	callback := t.onControls
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetGesture updates the gesture display in the menu. It is cheap to call
// on every published state; the menu only changes when the label does.
func (t *Tray) SetGesture(st gesture.State) {
	label := st.Gesture.Label()

	t.mu.Lock()
	defer t.mu.Unlock()
	if label == t.label {
		return
	}
	t.label = label
	if t.menuGesture != nil {
		t.menuGesture.SetTitle("Gesture: " + label)
	}
}

// Gesture returns the label currently shown.
func (t *Tray) Gesture() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.label
}
