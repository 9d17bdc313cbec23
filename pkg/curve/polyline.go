package curve

import (
	"math"

	"github.com/matzehuels/stackarray/pkg/geom"
)

// Polyline is a chain of straight segments. Parameter k covers the segment
// from vertex k to vertex k+1; a closed polyline adds the segment from the
// last vertex back to the first.
type Polyline struct {
	Points []geom.Vec
	Closed bool
	span
}

// NewPolyline creates a polyline through pts.
func NewPolyline(pts []geom.Vec, closed bool) *Polyline {
	n := len(pts) - 1
	if closed {
		n = len(pts)
	}
	if n < 0 {
		n = 0
	}
	return &Polyline{
		Points: append([]geom.Vec(nil), pts...),
		Closed: closed,
		span:   span{lo: 0, hi: float64(n)},
	}
}

func (pl *Polyline) Copy() Curve {
	c := *pl
	c.Points = append([]geom.Vec(nil), pl.Points...)
	return &c
}

func (pl *Polyline) ReverseParam() { pl.rev = !pl.rev }

func (pl *Polyline) Interval() (float64, float64) { return pl.lo, pl.hi }

// segment returns the endpoints of segment k.
func (pl *Polyline) segment(k int) (geom.Vec, geom.Vec) {
	return pl.Points[k], pl.Points[(k+1)%len(pl.Points)]
}

// locate splits a natural parameter into segment index and local fraction.
func (pl *Polyline) locate(u float64) (int, float64) {
	segs := int(pl.hi)
	k := int(math.Floor(u))
	if k >= segs {
		k = segs - 1
	}
	if k < 0 {
		k = 0
	}
	return k, u - float64(k)
}

func (pl *Polyline) EvalPoint(t float64, order int) (geom.Vec, []geom.Vec) {
	if len(pl.Points) < 2 {
		var p geom.Vec
		if len(pl.Points) == 1 {
			p = pl.Points[0]
		}
		if order < 1 {
			return p, nil
		}
		return p, []geom.Vec{{}}
	}
	k, f := pl.locate(pl.natural(t))
	a, b := pl.segment(k)
	d := geom.Sub(b, a)
	p := geom.Add(a, geom.Scale(f, d))
	if order < 1 {
		return p, nil
	}
	return p, []geom.Vec{geom.Scale(pl.dir(), d)}
}

// cumulative returns the arc length at each vertex in natural order.
func (pl *Polyline) cumulative() []float64 {
	segs := int(pl.hi)
	cum := make([]float64, segs+1)
	for k := 0; k < segs; k++ {
		a, b := pl.segment(k)
		cum[k+1] = cum[k] + geom.Length(geom.Sub(b, a))
	}
	return cum
}

func (pl *Polyline) ParamAtLength(from, length float64) float64 {
	if len(pl.Points) < 2 {
		return from
	}
	cum := pl.cumulative()
	total := cum[len(cum)-1]
	if total < geom.Tol {
		return from
	}

	k, f := pl.locate(pl.natural(pl.clamp(from)))
	s := cum[k] + f*(cum[k+1]-cum[k]) + length*pl.dir()
	if pl.Closed {
		s = math.Mod(s, total)
		if s < 0 {
			s += total
		}
	} else {
		s = min(max(s, 0), total)
	}

	u := pl.hi
	for k := 0; k < len(cum)-1; k++ {
		segLen := cum[k+1] - cum[k]
		if s <= cum[k+1] && segLen > geom.Tol {
			u = float64(k) + (s-cum[k])/segLen
			break
		}
	}
	if pl.Closed {
		u = pl.wrap(u)
	}
	return pl.natural(u)
}

func (pl *Polyline) IsClosed() bool { return pl.Closed }
