// Package detector provides the hand landmark detection capability used by the vision loop.
package detector

import "math"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// FingerTips lists the index, middle, ring and pinky tips.
var FingerTips = [4]int{IndexTip, MiddleTip, RingTip, PinkyTip}

// Point3D is a landmark position in the detector's normalized image space:
// x and y in [0, 1] across the frame, z relative depth around the wrist.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Distance returns the Euclidean distance between p and q.
func (p Point3D) Distance(q Point3D) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	dz := p.Z - q.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// PlanarDistance returns the distance between p and q ignoring depth.
func (p Point3D) PlanarDistance(q Point3D) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Finite reports whether every coordinate is a real number.
func (h *HandLandmarks) Finite() bool {
	for _, p := range h.Points {
		if !finite(p.X) || !finite(p.Y) || !finite(p.Z) {
			return false
		}
	}
	return true
}

// Clamped returns a copy with x and y limited to the frame [0, 1] and z to [-1, 1].
func (h *HandLandmarks) Clamped() HandLandmarks {
	c := *h
	for i, p := range c.Points {
		c.Points[i] = Point3D{
			X: clamp(p.X, 0, 1),
			Y: clamp(p.Y, 0, 1),
			Z: clamp(p.Z, -1, 1),
		}
	}
	return c
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
