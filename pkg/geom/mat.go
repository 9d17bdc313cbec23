package geom

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Mat4 is a row-major affine transform.
type Mat4 [4][4]float64

// Identity returns the identity transform.
func Identity() Mat4 {
	return Mat4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// Translation returns a transform that moves points by v.
func Translation(v Vec) Mat4 {
	m := Identity()
	m[0][3], m[1][3], m[2][3] = v.X, v.Y, v.Z
	return m
}

// Rotation returns a rotation of angle radians about the line through center
// with direction axis.
func Rotation(angle float64, axis Vec, center Vec) Mat4 {
	a := Unit(axis)
	if IsZero(a) || angle == 0 {
		return Identity()
	}
	s, c := math.Sincos(angle)
	t := 1 - c
	r := Mat4{
		{t*a.X*a.X + c, t*a.X*a.Y - s*a.Z, t*a.X*a.Z + s*a.Y, 0},
		{t*a.X*a.Y + s*a.Z, t*a.Y*a.Y + c, t*a.Y*a.Z - s*a.X, 0},
		{t*a.X*a.Z - s*a.Y, t*a.Y*a.Z + s*a.X, t*a.Z*a.Z + c, 0},
		{0, 0, 0, 1},
	}
	return Translation(center).Mul(r).Mul(Translation(Scale(-1, center)))
}

// CoordSystem returns the transform mapping the world frame onto the frame
// with the given origin and axes.
func CoordSystem(origin, x, y, z Vec) Mat4 {
	return Mat4{
		{x.X, y.X, z.X, origin.X},
		{x.Y, y.Y, z.Y, origin.Y},
		{x.Z, y.Z, z.Z, origin.Z},
		{0, 0, 0, 1},
	}
}

// FromElements builds a matrix from 16 row-major values.
func FromElements(e [16]float64) Mat4 {
	var m Mat4
	for i := 0; i < 16; i++ {
		m[i/4][i%4] = e[i]
	}
	return m
}

// Elements returns the 16 row-major values of m.
func (m Mat4) Elements() [16]float64 {
	var e [16]float64
	for i := 0; i < 16; i++ {
		e[i] = m[i/4][i%4]
	}
	return e
}

// Mul returns m·n, the transform that applies n first and then m.
func (m Mat4) Mul(n Mat4) Mat4 {
	var out mat.Dense
	out.Mul(m.dense(), n.dense())
	return fromDense(&out)
}

// dense copies m into a gonum matrix.
func (m Mat4) dense() *mat.Dense {
	e := m.Elements()
	return mat.NewDense(4, 4, e[:])
}

func fromDense(d mat.Matrix) Mat4 {
	var m Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			m[i][j] = d.At(i, j)
		}
	}
	return m
}

// Apply transforms point p.
func (m Mat4) Apply(p Vec) Vec {
	return Vec{
		X: m[0][0]*p.X + m[0][1]*p.Y + m[0][2]*p.Z + m[0][3],
		Y: m[1][0]*p.X + m[1][1]*p.Y + m[1][2]*p.Z + m[1][3],
		Z: m[2][0]*p.X + m[2][1]*p.Y + m[2][2]*p.Z + m[2][3],
	}
}

// ApplyVec transforms direction v, ignoring translation.
func (m Mat4) ApplyVec(v Vec) Vec {
	return Vec{
		X: m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		Y: m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		Z: m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

// TranslationPart returns the translation column of m.
func (m Mat4) TranslationPart() Vec {
	return Vec{X: m[0][3], Y: m[1][3], Z: m[2][3]}
}

// Equal reports whether every element of m and n differs by at most tol,
// absolutely or relative to the larger element.
func (m Mat4) Equal(n Mat4, tol float64) bool {
	return mat.EqualApprox(m.dense(), n.dense(), tol)
}

// IsIdentity reports whether m is the identity within Tol.
func (m Mat4) IsIdentity() bool { return m.Equal(Identity(), Tol) }

// IsTranslationOnly reports whether m carries no rotation, scale or
// projection, i.e. it only moves points.
func (m Mat4) IsTranslationOnly() bool {
	id := Identity()
	for i := 0; i < 4; i++ {
		for j := 0; j < 3; j++ {
			if math.Abs(m[i][j]-id[i][j]) > Tol {
				return false
			}
		}
	}
	return math.Abs(m[3][3]-1) <= Tol
}

// Inverse returns the inverse of m and false if m is singular or too badly
// conditioned for the inverse to be meaningful.
func (m Mat4) Inverse() (Mat4, bool) {
	a := m.dense()
	if math.Abs(mat.Det(a)) < Tol {
		return Mat4{}, false
	}
	var inv mat.Dense
	if err := inv.Inverse(a); err != nil {
		return Mat4{}, false
	}
	return fromDense(&inv), true
}
