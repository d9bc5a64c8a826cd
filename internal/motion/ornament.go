package motion

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Ornament constants for the star that tops the tree.
const (
	OrnamentHeight   = 4.2
	OrnamentHover    = 0.1
	OrnamentSpin     = 0.5
	OrnamentFollow   = 0.1
	OrnamentMinScale = 0.2
)

// hoverSwing is the time for one bob from low to high; two swings make a
// full cycle of 2 rad/s.
const hoverSwing = math.Pi / 2

// Ornament is the decorative star at the tree's apex. It rides the engine's
// smoothed expansion so it stays glued to the top of the tree while the
// particles collapse or explode.
type Ornament struct {
	Position    r3.Vec
	Scale       float64
	Orientation quat.Number

	elapsed float64
	hover   *gween.Tween
	swing   float64
	swingAt float64
	rising  bool
	offset  float32
}

// NewOrnament creates an ornament resting at the tree top.
func NewOrnament() *Ornament {
	return &Ornament{
		Position:    r3.Vec{Y: OrnamentHeight},
		Scale:       1,
		Orientation: quat.Number{Real: 1},

		// The first quarter cycle climbs from center to the top.
		hover:  gween.New(0, OrnamentHover, hoverSwing/2, ease.OutSine),
		swing:  hoverSwing / 2,
		rising: true,
	}
}

// Update advances the ornament by dt seconds. expansion must be the value
// read from Engine.Expansion for the same frame.
func (o *Ornament) Update(dt, expansion float64) {
	if dt > 0 {
		o.elapsed += dt
		o.stepHover(dt)
	}

	o.Orientation = quat.Number(r3.NewRotation(o.elapsed*OrnamentSpin, r3.Vec{Y: 1}))

	targetY := (OrnamentHeight + o.HoverOffset()) * expansion
	o.Position.Y = lerp(o.Position.Y, targetY, OrnamentFollow)

	o.Scale = math.Max(OrnamentMinScale, math.Min(expansion, 1))
}

// OrnamentPose is the render state of the ornament.
type OrnamentPose struct {
	Position    r3.Vec      `json:"position"`
	Scale       float64     `json:"scale"`
	Orientation quat.Number `json:"orientation"`
}

// Pose returns the ornament's current render state.
func (o *Ornament) Pose() OrnamentPose {
	return OrnamentPose{Position: o.Position, Scale: o.Scale, Orientation: o.Orientation}
}

// HoverOffset returns the current bob offset in [-OrnamentHover, OrnamentHover].
func (o *Ornament) HoverOffset() float64 {
	return float64(o.offset)
}

// stepHover carries time past the end of a swing into the next one so the
// bob keeps its 2 rad/s phase however the frames fall.
func (o *Ornament) stepHover(dt float64) {
	o.swingAt += dt
	for o.swingAt >= o.swing {
		o.swingAt -= o.swing

		// Swing back the other way across the full range.
		o.rising = !o.rising
		from, to := float32(OrnamentHover), float32(-OrnamentHover)
		if o.rising {
			from, to = to, from
		}
		o.hover = gween.New(from, to, hoverSwing, ease.InOutSine)
		o.swing = hoverSwing
	}
	o.offset, _ = o.hover.Set(float32(o.swingAt))
}
