// Package gesture turns raw hand landmarks into the gesture state that drives the scene.
package gesture

// Gesture is the discrete hand pose reported to the motion engine.
type Gesture string

const (
	None       Gesture = "None"
	OpenPalm   Gesture = "Open Palm"
	ClosedFist Gesture = "Closed Fist"
	// Pointing is reserved; the classifier never reports it.
	Pointing Gesture = "Pointing"
)

func (g Gesture) String() string {
	return string(g)
}

// Label returns the text shown in status displays.
func (g Gesture) Label() string {
	if g == None || g == "" {
		return "No Hand Detected"
	}
	return string(g)
}

// Rotation is the wrist position remapped to signed camera-orbit signals.
type Rotation struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// State is the complete gesture reading for one processed video frame.
// It is always replaced as a whole, never field by field.
type State struct {
	Gesture       Gesture  `json:"gesture"`
	Rotation      Rotation `json:"rotation"`
	PinchDistance float64  `json:"pinchDistance"`
	Present       bool     `json:"isPresent"`
}

// Absent is the state reported when no hand is visible.
func Absent() State {
	return State{
		Gesture:       None,
		PinchDistance: 1,
	}
}
