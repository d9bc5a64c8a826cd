package motion

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/gesturemagic/internal/gesture"
)

// Transform is the per-frame render state of one particle.
type Transform struct {
	Position    r3.Vec      `json:"position"`
	Scale       float64     `json:"scale"`
	Orientation quat.Number `json:"orientation"`
}

// Camera is the viewer pose. It always looks at the origin.
type Camera struct {
	Position    r3.Vec      `json:"position"`
	Orientation quat.Number `json:"orientation"`
}

// InitialCamera is where the viewer starts before the first frame.
var InitialCamera = r3.Vec{Z: OrbitRadius}

// Engine owns all temporal smoothing of the scene: the shared expansion
// phase, the camera, and every particle's current position. It is not safe
// for concurrent use; callers serialize Update with reads.
type Engine struct {
	targets    []r3.Vec
	current    []r3.Vec
	transforms []Transform
	expansion  float64
	camera     Camera
	elapsed    float64
	frames     int
}

// NewEngine creates an engine whose particles start at initial. The number
// of particles is fixed at len(initial) for the engine's lifetime.
func NewEngine(initial []r3.Vec) *Engine {
	e := &Engine{
		current:    make([]r3.Vec, len(initial)),
		transforms: make([]Transform, len(initial)),
		expansion:  1,
		camera: Camera{
			Position:    InitialCamera,
			Orientation: LookAtOrigin(InitialCamera),
		},
	}
	copy(e.current, initial)

	for i, p := range e.current {
		e.transforms[i] = Transform{
			Position:    p,
			Scale:       ParticleScale(i),
			Orientation: Billboard(p, e.camera.Position),
		}
	}

	return e
}

// SetTargets replaces the shape the particles settle into. The engine takes
// ownership of points. Current positions are kept, so a shape change
// morphs rather than jumps.
func (e *Engine) SetTargets(points []r3.Vec) {
	e.targets = points
}

// Len returns the number of particles.
func (e *Engine) Len() int {
	return len(e.current)
}

// Expansion returns the smoothed expansion. Anything that must move in
// phase with the particles reads this value instead of deriving its own.
func (e *Engine) Expansion() float64 {
	return e.expansion
}

// Camera returns the current camera pose.
func (e *Engine) Camera() Camera {
	return e.camera
}

// Elapsed returns the scene time in seconds.
func (e *Engine) Elapsed() float64 {
	return e.elapsed
}

// Frames returns the number of updates run.
func (e *Engine) Frames() int {
	return e.frames
}

// Transforms returns the particle transforms computed by the last Update.
// The slice is reused by the next Update.
func (e *Engine) Transforms() []Transform {
	return e.transforms
}

// Update advances the scene by dt seconds under gesture state st.
func (e *Engine) Update(dt float64, st gesture.State) {
	if dt > 0 {
		e.elapsed += dt
	}
	e.frames++
	t := e.elapsed

	e.updateCamera(t, st)

	p := ParamsFor(st.Gesture)
	e.updateExpansion(p.Expansion)

	eye := e.camera.Position
	for i := range e.current {
		// Particles without a target hold their position.
		if i < len(e.targets) {
			target := r3.Scale(e.expansion, e.targets[i])
			phase := float64(i)
			target.Y += math.Sin(t*0.5+phase) * p.Noise
			target.X += math.Cos(t*0.3+phase) * p.Noise

			cur := e.current[i]
			e.current[i] = r3.Vec{
				X: lerp(cur.X, target.X, p.Follow),
				Y: lerp(cur.Y, target.Y, p.Follow),
				Z: lerp(cur.Z, target.Z, p.Follow),
			}
		}

		pos := e.current[i]
		e.transforms[i] = Transform{
			Position:    pos,
			Scale:       ParticleScale(i),
			Orientation: Billboard(pos, eye),
		}
	}
}

func (e *Engine) updateCamera(t float64, st gesture.State) {
	pos := e.camera.Position

	if st.Present {
		target := r3.Vec{
			X: math.Sin(st.Rotation.X) * OrbitRadius,
			Y: st.Rotation.Y * CameraHeightGain,
			Z: math.Cos(st.Rotation.X) * OrbitRadius,
		}
		pos = r3.Vec{
			X: lerp(pos.X, target.X, CameraFollow),
			Y: lerp(pos.Y, target.Y, CameraFollow),
			Z: lerp(pos.Z, target.Z, CameraFollow),
		}
	} else {
		// The idle orbit is already continuous in t; height is left where
		// the last hand put it.
		pos.X = math.Sin(t*AutoOrbitSpeed) * OrbitRadius
		pos.Z = math.Cos(t*AutoOrbitSpeed) * OrbitRadius
	}

	e.camera = Camera{Position: pos, Orientation: LookAtOrigin(pos)}
}

func (e *Engine) updateExpansion(target float64) {
	if math.Abs(e.expansion-target) > ExpansionSettle {
		e.expansion = lerp(e.expansion, target, ExpansionFollow)
	}
}
