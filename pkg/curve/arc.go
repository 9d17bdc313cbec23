package curve

import (
	"math"

	"github.com/matzehuels/stackarray/pkg/geom"
)

// Arc is a circular arc in the plane through Center perpendicular to Normal.
// Angles are measured counter-clockwise about Normal from RefVec.
type Arc struct {
	Center geom.Vec
	Normal geom.Vec
	RefVec geom.Vec
	Radius float64
	span
}

// NewArc creates an arc between two angles (radians). The reference vector is
// the world x-axis projected into the arc plane, or the y-axis when the
// normal is parallel to x.
func NewArc(center, normal geom.Vec, radius, startAngle, endAngle float64) *Arc {
	n := geom.Unit(normal)
	if geom.IsZero(n) {
		n = geom.ZAxis
	}
	ref := geom.Sub(geom.XAxis, geom.Scale(geom.Dot(geom.XAxis, n), n))
	if geom.IsZero(ref) {
		ref = geom.Sub(geom.YAxis, geom.Scale(geom.Dot(geom.YAxis, n), n))
	}
	for endAngle <= startAngle {
		endAngle += 2 * math.Pi
	}
	return &Arc{
		Center: center,
		Normal: n,
		RefVec: geom.Unit(ref),
		Radius: radius,
		span:   span{lo: startAngle, hi: endAngle},
	}
}

// NewCircle creates a full circle, a closed arc over [0, 2π].
func NewCircle(center, normal geom.Vec, radius float64) *Arc {
	return NewArc(center, normal, radius, 0, 2*math.Pi)
}

func (a *Arc) Copy() Curve {
	c := *a
	return &c
}

func (a *Arc) ReverseParam() { a.rev = !a.rev }

func (a *Arc) Interval() (float64, float64) { return a.lo, a.hi }

func (a *Arc) EvalPoint(t float64, order int) (geom.Vec, []geom.Vec) {
	x := a.RefVec
	y := geom.Cross(a.Normal, x)
	s, c := math.Sincos(a.natural(t))
	p := geom.Add(a.Center, geom.Add(geom.Scale(a.Radius*c, x), geom.Scale(a.Radius*s, y)))
	if order < 1 {
		return p, nil
	}
	d := geom.Add(geom.Scale(-a.Radius*s, x), geom.Scale(a.Radius*c, y))
	return p, []geom.Vec{geom.Scale(a.dir(), d)}
}

func (a *Arc) ParamAtLength(from, length float64) float64 {
	if a.Radius < geom.Tol {
		return from
	}
	t := from + length/a.Radius
	if a.IsClosed() {
		return a.wrap(t)
	}
	return a.clamp(t)
}

func (a *Arc) IsClosed() bool {
	return math.Abs(a.hi-a.lo-2*math.Pi) < 1e-9
}
