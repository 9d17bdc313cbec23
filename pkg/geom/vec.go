// Package geom provides the 3D vector and matrix types used by placement
// strategies.
//
// Points and vectors are gonum [r3.Vec] values. Matrices are row-major 4×4
// affine transforms acting on column vectors, so the translation lives in the
// last column and composition reads right to left: a.Mul(b) applies b first.
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vec is a 3D vector or point.
type Vec = r3.Vec

// Tol is the default geometric tolerance for equality and degeneracy checks.
const Tol = 1e-10

// World axes.
var (
	Origin = Vec{}
	XAxis  = Vec{X: 1}
	YAxis  = Vec{Y: 1}
	ZAxis  = Vec{Z: 1}
)

// Add returns a+b.
func Add(a, b Vec) Vec { return r3.Add(a, b) }

// Sub returns a-b.
func Sub(a, b Vec) Vec { return r3.Sub(a, b) }

// Scale returns f*v.
func Scale(f float64, v Vec) Vec { return r3.Scale(f, v) }

// Dot returns the dot product of a and b.
func Dot(a, b Vec) float64 { return r3.Dot(a, b) }

// Cross returns the cross product a×b.
func Cross(a, b Vec) Vec { return r3.Cross(a, b) }

// Length returns the Euclidean norm of v.
func Length(v Vec) float64 { return r3.Norm(v) }

// IsZero reports whether v is shorter than Tol.
func IsZero(v Vec) bool { return Length(v) < Tol }

// Unit returns v scaled to length one. The zero vector is returned unchanged.
func Unit(v Vec) Vec {
	if IsZero(v) {
		return v
	}
	return r3.Unit(v)
}

// Rotate rotates v by angle radians about axis, following the right-hand rule.
func Rotate(v Vec, angle float64, axis Vec) Vec {
	if angle == 0 || IsZero(axis) {
		return v
	}
	return r3.Rotate(v, angle, axis)
}

// Equal reports whether a and b are within tol of each other.
func Equal(a, b Vec, tol float64) bool {
	return Length(Sub(a, b)) <= tol
}

// Codirectional reports whether a and b point the same way.
func Codirectional(a, b Vec) bool {
	if IsZero(a) || IsZero(b) {
		return false
	}
	return math.Abs(Dot(Unit(a), Unit(b))-1) < Tol
}

// AngleTo returns the counter-clockwise angle in [0, 2π) from a to b measured
// about ref. Both vectors are projected onto the plane perpendicular to ref.
func AngleTo(a, b, ref Vec) float64 {
	n := Unit(ref)
	pa := Sub(a, Scale(Dot(a, n), n))
	pb := Sub(b, Scale(Dot(b, n), n))
	if IsZero(pa) || IsZero(pb) {
		return 0
	}
	angle := math.Atan2(Dot(n, Cross(pa, pb)), Dot(pa, pb))
	if angle < 0 {
		angle += 2 * math.Pi
	}
	return angle
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 { return deg * math.Pi / 180 }

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 { return rad * 180 / math.Pi }
