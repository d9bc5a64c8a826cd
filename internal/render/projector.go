// Package render draws the particle scene. The window renderer uses ebiten,
// the terminal renderer uses tcell; both share the projection and controls
// defined here.
package render

import (
	"math"
	"slices"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/gesturemagic/internal/app"
	"github.com/ayusman/gesturemagic/internal/motion"
	"github.com/ayusman/gesturemagic/internal/palette"
)

// Projection and scene defaults.
const (
	DefaultFOV  = 45.0
	DefaultNear = 0.1

	// Opacity is the alpha every particle is drawn with. Particles blend
	// additively, so overlapping dots brighten.
	Opacity = 0.6

	// OrnamentSize is the world-space diameter of the topper at scale 1.
	OrnamentSize = 0.6
)

var (
	Background    = mustHex("#050505")
	OrnamentColor = mustHex("#FFD700")
)

// Projector is a pinhole camera over a Width x Height screen.
type Projector struct {
	Width  float64
	Height float64
	// FOV is the vertical field of view in degrees.
	FOV  float64
	Near float64
	// CellAspect is the height of one screen unit divided by its width.
	// Pixels are square (1); terminal cells are about twice as tall as wide.
	CellAspect float64
}

// NewProjector returns a projector with the default field of view.
func NewProjector(width, height int) Projector {
	return Projector{
		Width:      float64(width),
		Height:     float64(height),
		FOV:        DefaultFOV,
		Near:       DefaultNear,
		CellAspect: 1,
	}
}

func (p Projector) focal() float64 {
	return (p.Height / 2) / math.Tan(p.FOV*math.Pi/360)
}

func (p Projector) aspect() float64 {
	if p.CellAspect <= 0 {
		return 1
	}
	return p.CellAspect
}

// Project maps a world point to screen coordinates with the origin at the
// top left. depth is the distance in front of the camera. ok is false for
// points closer than the near plane or behind the camera.
func (p Projector) Project(cam motion.Camera, world r3.Vec) (x, y, depth float64, ok bool) {
	view := r3.Rotation(quat.Conj(cam.Orientation)).Rotate(r3.Sub(world, cam.Position))

	// Cameras look down local -Z.
	depth = -view.Z
	if depth < p.Near {
		return 0, 0, depth, false
	}

	f := p.focal() / depth
	x = p.Width/2 + view.X*f*p.aspect()
	y = p.Height/2 - view.Y*f
	return x, y, depth, true
}

// PointSize returns the on-screen height, in screen units, of a world
// length size seen at depth.
func (p Projector) PointSize(size, depth float64) float64 {
	if depth <= 0 {
		return 0
	}
	return size * p.focal() / depth
}

func (p Projector) inside(x, y float64) bool {
	return x >= 0 && y >= 0 && x < p.Width && y < p.Height
}

// Dot is one projected particle.
type Dot struct {
	X, Y  float64
	Size  float64
	Depth float64
	Color colorful.Color
}

// Dots projects every particle of snap and returns them far to near, so
// drawing in order paints nearer particles last. dst is reused when it has
// room.
func (p Projector) Dots(snap app.Snapshot, dst []Dot) []Dot {
	dst = dst[:0]
	for i, tr := range snap.Transforms {
		x, y, depth, ok := p.Project(snap.Camera, tr.Position)
		if !ok || !p.inside(x, y) {
			continue
		}
		dst = append(dst, Dot{
			X:     x,
			Y:     y,
			Size:  p.PointSize(tr.Scale, depth),
			Depth: depth,
			Color: colorAt(snap.Colors, i),
		})
	}

	slices.SortFunc(dst, func(a, b Dot) int {
		switch {
		case a.Depth > b.Depth:
			return -1
		case a.Depth < b.Depth:
			return 1
		}
		return 0
	})
	return dst
}

// Ornament projects the topper, if the scene has one.
func (p Projector) Ornament(snap app.Snapshot) (Dot, bool) {
	if snap.Ornament == nil {
		return Dot{}, false
	}
	x, y, depth, ok := p.Project(snap.Camera, snap.Ornament.Position)
	if !ok || !p.inside(x, y) {
		return Dot{}, false
	}
	return Dot{
		X:     x,
		Y:     y,
		Size:  p.PointSize(OrnamentSize*snap.Ornament.Scale, depth),
		Depth: depth,
		Color: OrnamentColor,
	}, true
}

var fallbackColor = mustHex(palette.DefaultHex)

func colorAt(colors []colorful.Color, i int) colorful.Color {
	if i < 0 || i >= len(colors) {
		return fallbackColor
	}
	return colors[i]
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}
