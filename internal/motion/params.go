// Package motion turns the gesture stream and the current shape into smoothed
// per-particle transforms and a camera pose, one frame at a time.
package motion

import "github.com/ayusman/gesturemagic/internal/gesture"

// Camera and smoothing constants. Rates are fractions of the remaining
// distance covered per frame.
const (
	OrbitRadius      = 12.0
	CameraFollow     = 0.05
	CameraHeightGain = -5.0
	AutoOrbitSpeed   = 0.1

	ExpansionFollow = 0.1
	// ExpansionSettle is the distance from the target inside which the
	// smoothed expansion stops moving.
	ExpansionSettle = 0.01

	SparkleEvery = 15
	SparkleScale = 0.3
	BaseScale    = 0.12
)

// Params are the gesture-dependent knobs of the per-particle update.
type Params struct {
	// Expansion is the uniform scale applied to target points.
	Expansion float64
	// Noise is the drift amplitude added on x and y.
	Noise float64
	// Follow is the fraction of the gap to the target closed each frame.
	Follow float64
}

// ParamsFor returns the motion parameters for g. A fist collapses the shape
// and calms the drift, an open palm explodes it and lets it swirl, anything
// else rests at natural size.
func ParamsFor(g gesture.Gesture) Params {
	switch g {
	case gesture.ClosedFist:
		return Params{Expansion: 0.1, Noise: 0.01, Follow: 0.03}
	case gesture.OpenPalm:
		return Params{Expansion: 2.5, Noise: 0.5, Follow: 0.1}
	default:
		return Params{Expansion: 1.0, Noise: 0.05, Follow: 0.03}
	}
}

// ParticleScale returns the render scale of particle i. Every fifteenth
// particle is drawn larger as a fixed sparkle pattern.
func ParticleScale(i int) float64 {
	if i%SparkleEvery == 0 {
		return SparkleScale
	}
	return BaseScale
}

func lerp(a, b, k float64) float64 {
	return a + (b-a)*k
}
