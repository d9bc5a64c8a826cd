package motion

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestOrnament_HoverStaysInRange(t *testing.T) {
	o := NewOrnament()

	var lo, hi float64
	for i := 0; i < 600; i++ {
		o.Update(frameDT, 1)
		h := o.HoverOffset()
		assert.LessOrEqual(t, math.Abs(h), OrnamentHover+1e-6)
		lo = math.Min(lo, h)
		hi = math.Max(hi, h)
	}

	// Ten seconds covers several full bobs.
	assert.InDelta(t, -OrnamentHover, lo, 0.01)
	assert.InDelta(t, OrnamentHover, hi, 0.01)
}

func TestOrnament_HoverKeepsPhase(t *testing.T) {
	tests := []struct {
		name string
		dt   float64
	}{
		{name: "60 Hz", dt: frameDT},
		{name: "uneven 144 Hz", dt: 1.0 / 144},
		{name: "stalled frames", dt: 0.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewOrnament()
			var elapsed float64
			for elapsed < 120 {
				o.Update(tt.dt, 1)
				elapsed += tt.dt

				want := OrnamentHover * math.Sin(2*elapsed)
				if math.Abs(o.HoverOffset()-want) > 1e-3 {
					t.Fatalf("at t=%.2fs hover = %.4f, want %.4f", elapsed, o.HoverOffset(), want)
				}
			}
		})
	}
}

func TestOrnament_FollowsExpansion(t *testing.T) {
	tests := []struct {
		name      string
		expansion float64
		wantScale float64
	}{
		{name: "collapsed", expansion: 0.1, wantScale: OrnamentMinScale},
		{name: "half", expansion: 0.5, wantScale: 0.5},
		{name: "rest", expansion: 1, wantScale: 1},
		{name: "exploded", expansion: 2.5, wantScale: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewOrnament()
			for i := 0; i < 300; i++ {
				o.Update(frameDT, tt.expansion)
			}

			assert.Equal(t, tt.wantScale, o.Scale)
			// The height lags a moving hover target; allow for the bob.
			assert.InDelta(t, OrnamentHeight*tt.expansion, o.Position.Y, (OrnamentHover+0.05)*tt.expansion+1e-6)
		})
	}
}

func TestOrnament_Spins(t *testing.T) {
	o := NewOrnament()
	for i := 0; i < 60; i++ {
		o.Update(frameDT, 1)
	}

	// After one second the star has turned 0.5 rad about Y.
	x := r3.Rotation(o.Orientation).Rotate(r3.Vec{X: 1})
	assert.InDelta(t, math.Cos(0.5), x.X, 1e-6)
	assert.InDelta(t, 0, x.Y, 1e-9)
}

func TestOrnament_ReadsEngineExpansion(t *testing.T) {
	e := NewEngine(make([]r3.Vec, 1))
	o := NewOrnament()

	fist := stateFor("Closed Fist")
	for i := 0; i < 120; i++ {
		e.Update(frameDT, fist)
		o.Update(frameDT, e.Expansion())
	}

	assert.Less(t, o.Position.Y, 1.0)
	assert.Equal(t, OrnamentMinScale, o.Scale)
}
