package motion

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

var worldUp = r3.Vec{Y: 1}

// lookRotation returns the rotation that turns the local +Z axis toward
// forward while keeping local +Y as close to world up as possible.
func lookRotation(forward r3.Vec) quat.Number {
	if r3.Norm(forward) == 0 {
		return quat.Number{Real: 1}
	}
	z := r3.Unit(forward)

	x := r3.Cross(worldUp, z)
	if r3.Norm(x) < 1e-9 {
		// Looking straight up or down: nudge off the pole.
		z.Z += 1e-4
		z = r3.Unit(z)
		x = r3.Cross(worldUp, z)
	}
	x = r3.Unit(x)
	y := r3.Cross(z, x)

	return fromBasis(x, y, z)
}

// fromBasis converts the rotation matrix with columns x, y, z to a unit quaternion.
func fromBasis(x, y, z r3.Vec) quat.Number {
	m11, m12, m13 := x.X, y.X, z.X
	m21, m22, m23 := x.Y, y.Y, z.Y
	m31, m32, m33 := x.Z, y.Z, z.Z

	var q quat.Number
	switch trace := m11 + m22 + m33; {
	case trace > 0:
		s := 0.5 / math.Sqrt(trace+1)
		q = quat.Number{Real: 0.25 / s, Imag: (m32 - m23) * s, Jmag: (m13 - m31) * s, Kmag: (m21 - m12) * s}
	case m11 > m22 && m11 > m33:
		s := 2 * math.Sqrt(1+m11-m22-m33)
		q = quat.Number{Real: (m32 - m23) / s, Imag: 0.25 * s, Jmag: (m12 + m21) / s, Kmag: (m13 + m31) / s}
	case m22 > m33:
		s := 2 * math.Sqrt(1+m22-m11-m33)
		q = quat.Number{Real: (m13 - m31) / s, Imag: (m12 + m21) / s, Jmag: 0.25 * s, Kmag: (m23 + m32) / s}
	default:
		s := 2 * math.Sqrt(1+m33-m11-m22)
		q = quat.Number{Real: (m21 - m12) / s, Imag: (m13 + m31) / s, Jmag: (m23 + m32) / s, Kmag: 0.25 * s}
	}
	return q
}

// Billboard returns the orientation that makes a particle at pos face eye.
func Billboard(pos, eye r3.Vec) quat.Number {
	return lookRotation(r3.Sub(eye, pos))
}

// LookAtOrigin returns a camera orientation at eye aimed at the origin.
// Cameras look down their local -Z axis.
func LookAtOrigin(eye r3.Vec) quat.Number {
	return lookRotation(eye)
}
