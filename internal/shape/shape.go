// Package shape generates the target point clouds the particles settle into.
package shape

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// Count is the number of particles in every generated point set.
const Count = 3000

// ID identifies one of the available target shapes.
type ID string

const (
	Tree   ID = "Tree"
	Heart  ID = "Heart"
	Star   ID = "Star"
	Sphere ID = "Sphere"
	Ring   ID = "Ring"
)

// ErrUnknownShape is returned by ParseID for names that do not map to a shape.
var ErrUnknownShape = errors.New("unknown shape")

// All lists the shapes in menu order.
func All() []ID {
	return []ID{Tree, Heart, Star, Sphere, Ring}
}

// aliases maps the on-screen labels onto shape ids.
var aliases = map[string]ID{
	"love": Heart,
	"orb":  Sphere,
}

// ParseID resolves a shape name case-insensitively. The UI labels
// "Love" and "Orb" are accepted for Heart and Sphere.
func ParseID(name string) (ID, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, id := range All() {
		if strings.ToLower(string(id)) == key {
			return id, nil
		}
	}
	if id, ok := aliases[key]; ok {
		return id, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownShape, name)
}

// Valid reports whether id is one of the known shapes.
func (id ID) Valid() bool {
	for _, known := range All() {
		if id == known {
			return true
		}
	}
	return false
}

func (id ID) String() string {
	return string(id)
}

// Generate returns Count target points for the given shape. Jitter and
// per-point parameters are drawn from rng; a nil rng uses the global source.
// An unknown id yields Count points at the origin.
func Generate(id ID, rng *rand.Rand) []r3.Vec {
	points := make([]r3.Vec, Count)

	for i := range points {
		switch id {
		case Tree:
			points[i] = treePoint(i, rng)
		case Heart:
			points[i] = heartPoint(rng)
		case Star:
			points[i] = starPoint(rng)
		case Sphere:
			points[i] = spherePoint(rng)
		case Ring:
			points[i] = ringPoint(rng)
		}
	}

	return points
}

// Scatter returns the initial particle distribution: a sphere sample
// blown out to three times its radius, so the first frames read as an
// implosion into the selected shape.
func Scatter(rng *rand.Rand) []r3.Vec {
	points := Generate(Sphere, rng)
	for i := range points {
		points[i] = r3.Scale(3, points[i])
	}
	return points
}

// treePoint lays particles on a cone spiral of ten turns, wide at the base.
func treePoint(i int, rng *rand.Rand) r3.Vec {
	t := float64(i) / Count
	angle := t * math.Pi * 20
	radius := (1 - t) * 4

	return r3.Vec{
		X: math.Cos(angle)*radius + uniform(rng, -0.2, 0.2),
		Y: t*8 - 4,
		Z: math.Sin(angle)*radius + uniform(rng, -0.2, 0.2),
	}
}

func heartPoint(rng *rand.Rand) r3.Vec {
	const scale = 0.25
	a := uniform(rng, 0, 2*math.Pi)
	s := math.Sin(a)

	return r3.Vec{
		X: scale * 16 * s * s * s,
		Y: scale * (13*math.Cos(a) - 5*math.Cos(2*a) - 2*math.Cos(3*a) - math.Cos(4*a)),
		Z: uniform(rng, -1, 1) * scale * 5,
	}
}

// spherePoint samples the surface uniformly by area using the inverse
// cosine of the polar angle.
func spherePoint(rng *rand.Rand) r3.Vec {
	const radius = 4.5
	theta := 2 * math.Pi * uniform(rng, 0, 1)
	phi := math.Acos(2*uniform(rng, 0, 1) - 1)

	return r3.Vec{
		X: radius * math.Sin(phi) * math.Cos(theta),
		Y: radius * math.Sin(phi) * math.Sin(theta),
		Z: radius * math.Cos(phi),
	}
}

// starPoint fills a five-pointed radial profile: angles where sin(5θ) is
// positive reach out to the outer radius, the rest stop at the inner one.
func starPoint(rng *rand.Rand) r3.Vec {
	const (
		outerRadius = 5.0
		innerRadius = 2.0
	)
	angle := uniform(rng, 0, 2*math.Pi)
	ceiling := innerRadius
	if math.Sin(angle*5) > 0 {
		ceiling = outerRadius
	}
	r := uniform(rng, 0, 1) * ceiling

	return r3.Vec{
		X: math.Cos(angle) * r,
		Y: math.Sin(angle) * r,
		Z: uniform(rng, -1, 1),
	}
}

// ringPoint draws a flat band in the x-z plane.
func ringPoint(rng *rand.Rand) r3.Vec {
	angle := uniform(rng, 0, 2*math.Pi)
	dist := 4 + uniform(rng, -0.5, 0.5)

	return r3.Vec{
		X: math.Cos(angle) * dist,
		Y: uniform(rng, -1, 1),
		Z: math.Sin(angle) * dist,
	}
}

// uniform returns a value in [min, max).
func uniform(rng *rand.Rand, min, max float64) float64 {
	var f float64
	if rng != nil {
		f = rng.Float64()
	} else {
		f = rand.Float64()
	}
	return f*(max-min) + min
}
