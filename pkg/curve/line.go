package curve

import "github.com/matzehuels/stackarray/pkg/geom"

// Line is a straight segment from Start to End with parameter range [0, 1].
type Line struct {
	Start, End geom.Vec
	span
}

// NewLine creates a segment between two points.
func NewLine(start, end geom.Vec) *Line {
	return &Line{Start: start, End: end, span: span{lo: 0, hi: 1}}
}

// Direction returns End-Start in the current parameter direction.
func (l *Line) Direction() geom.Vec {
	return geom.Scale(l.dir(), geom.Sub(l.End, l.Start))
}

func (l *Line) Copy() Curve {
	c := *l
	return &c
}

func (l *Line) ReverseParam() { l.rev = !l.rev }

func (l *Line) Interval() (float64, float64) { return l.lo, l.hi }

func (l *Line) EvalPoint(t float64, order int) (geom.Vec, []geom.Vec) {
	d := geom.Sub(l.End, l.Start)
	p := geom.Add(l.Start, geom.Scale(l.natural(t), d))
	if order < 1 {
		return p, nil
	}
	return p, []geom.Vec{geom.Scale(l.dir(), d)}
}

func (l *Line) ParamAtLength(from, length float64) float64 {
	n := geom.Length(geom.Sub(l.End, l.Start))
	if n < geom.Tol {
		return from
	}
	return l.clamp(from + length/n)
}

func (l *Line) IsClosed() bool { return false }
