package gesture

import "github.com/ayusman/gesturemagic/internal/detector"

// Classification constants, in the detector's normalized coordinate space.
const (
	// FistThreshold is the average fingertip-to-wrist distance below which
	// the hand counts as a closed fist.
	FistThreshold = 0.25
	// RotationXGain scales the wrist's horizontal offset from frame center.
	RotationXGain = 4.0
	// RotationYGain scales the wrist's vertical offset from frame center.
	RotationYGain = 2.0
)

// Classify maps one hand observation to a gesture state. A nil hand, or one
// with non-finite coordinates, is reported as Absent. Finite coordinates are
// clamped into the frame before use. Classify never fails and keeps no
// history; smoothing is left to the motion engine.
func Classify(hand *detector.HandLandmarks) State {
	if hand == nil || !hand.Finite() {
		return Absent()
	}

	h := hand.Clamped()
	wrist := h.Points[detector.Wrist]

	var sum float64
	for _, tip := range detector.FingerTips {
		sum += h.Points[tip].Distance(wrist)
	}
	avg := sum / float64(len(detector.FingerTips))

	g := OpenPalm
	if avg < FistThreshold {
		g = ClosedFist
	}

	return State{
		Gesture: g,
		Rotation: Rotation{
			X: (wrist.X - 0.5) * RotationXGain,
			Y: (wrist.Y - 0.5) * RotationYGain,
		},
		PinchDistance: h.Points[detector.ThumbTip].PlanarDistance(h.Points[detector.IndexTip]),
		Present:       true,
	}
}

// ClassifyFirst classifies the first detected hand; extra hands are ignored.
func ClassifyFirst(hands []detector.HandLandmarks) State {
	if len(hands) == 0 {
		return Absent()
	}
	return Classify(&hands[0])
}
