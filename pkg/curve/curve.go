// Package curve provides the curve abstraction consumed by path arrays.
//
// A [Curve] is a parametric edge with a finite interval. Implementations keep
// their natural parametrization internally and support in-place reversal, so a
// path array can walk a copy of its path backwards without rebuilding it.
//
// Three curves are provided:
//   - [Line]: straight segment, parameter in [0, 1]
//   - [Arc]: circular arc (or full circle), parameter is the angle in radians
//   - [Polyline]: open or closed chain of segments, parameter k covers segment k
package curve

import "github.com/matzehuels/stackarray/pkg/geom"

// Curve is a parametric edge.
type Curve interface {
	// Copy returns an independent copy; reversing the copy leaves the
	// original untouched.
	Copy() Curve

	// ReverseParam reverses the direction of the parametrization in place.
	// The interval is unchanged; Eval(lo) returns the former end point.
	ReverseParam()

	// Interval returns the parameter range.
	Interval() (lo, hi float64)

	// EvalPoint returns the point at t and its first order derivatives up to
	// order (0 or 1; higher orders are not supported and are omitted).
	EvalPoint(t float64, order int) (geom.Vec, []geom.Vec)

	// ParamAtLength returns the parameter reached by walking length along
	// the curve from parameter from. Negative lengths walk backwards. Open
	// curves clamp to their interval; closed curves wrap around.
	ParamAtLength(from, length float64) float64

	// IsClosed reports whether the end point coincides with the start point.
	IsClosed() bool
}

// span maps public parameters onto the natural parametrization of a curve.
type span struct {
	lo, hi float64
	rev    bool
}

// natural converts a public parameter to the natural one.
func (s span) natural(t float64) float64 {
	if s.rev {
		return s.lo + s.hi - t
	}
	return t
}

// dir is -1 for reversed curves and 1 otherwise.
func (s span) dir() float64 {
	if s.rev {
		return -1
	}
	return 1
}

func (s span) clamp(t float64) float64 {
	return min(max(t, s.lo), s.hi)
}

// wrap folds t into [lo, hi) for closed curves.
func (s span) wrap(t float64) float64 {
	w := s.hi - s.lo
	if w <= 0 {
		return s.lo
	}
	for t < s.lo {
		t += w
	}
	for t >= s.hi {
		t -= w
	}
	return t
}

// Length returns the arc length of c between parameters from and to by
// sampling. It is exact for lines and polylines and accurate to the sampling
// resolution for arcs.
func Length(c Curve, from, to float64) float64 {
	if to < from {
		from, to = to, from
	}
	const steps = 256
	var total float64
	prev, _ := c.EvalPoint(from, 0)
	for i := 1; i <= steps; i++ {
		t := from + (to-from)*float64(i)/steps
		p, _ := c.EvalPoint(t, 0)
		total += geom.Length(geom.Sub(p, prev))
		prev = p
	}
	return total
}
