package array

import (
	"math"

	"github.com/matzehuels/stackarray/pkg/core/params"
	"github.com/matzehuels/stackarray/pkg/curve"
	"github.com/matzehuels/stackarray/pkg/errors"
	"github.com/matzehuels/stackarray/pkg/geom"
)

// Named parameters of rectangular arrays.
const (
	ParamAxesAngle  = "AxesAngle"
	ParamRowProfile = "RowProfile"
)

// Rectangular places items on a grid: items along the x axis, rows along a
// direction AxesAngle away from it and levels along the normal. The grid can
// be turned by a row profile line. Items are only translated.
type Rectangular struct {
	columnSpacing float64
	axesAngle     float64
	profile       geom.Vec
}

// NewRectangular creates an empty rectangular array.
func NewRectangular(opts ...Option) *Params {
	return New(&Rectangular{}, opts...)
}

func (*Rectangular) Kind() Kind { return KindRectangular }

func (s *Rectangular) prepare(p *Params) error {
	s.columnSpacing = p.store.Double(ParamItemSpacing, 1)
	s.axesAngle = p.store.Double(ParamAxesAngle, math.Pi/2)
	s.profile = geom.Vec{}

	c, err := p.store.Edge(ParamRowProfile)
	switch {
	case err == nil:
		lo, hi := c.Interval()
		a, _ := c.EvalPoint(lo, 0)
		b, _ := c.EvalPoint(hi, 0)
		s.profile = geom.Sub(b, a)
	case !errors.Is(err, errors.ErrCodeNotInGroup):
		return err
	}
	return nil
}

func (s *Rectangular) matrix(p *Params, loc Locator) geom.Mat4 {
	yDir := geom.Rotate(p.yAxis, s.axesAngle-math.Pi/2, p.zAxis)
	off := geom.Add(
		geom.Add(
			geom.Scale(float64(loc.Item)*s.columnSpacing, p.xAxis),
			geom.Scale(float64(loc.Row)*p.rowSpacing, yDir),
		),
		geom.Scale(float64(loc.Level)*p.levelSpacing+float64(loc.Row)*p.rowElevation, p.zAxis),
	)
	if !geom.IsZero(s.profile) {
		off = geom.Rotate(off, geom.AngleTo(p.xAxis, s.profile, p.zAxis), p.zAxis)
	}
	return geom.Translation(geom.Add(p.origin, off))
}

// SetAxesAngle sets the angle between the item and row directions in degrees.
func (p *Params) SetAxesAngle(deg float64) error {
	return p.store.SetDouble(ParamAxesAngle, geom.Radians(deg), params.Angle)
}

// AxesAngle returns the angle between the item and row directions in degrees.
func (p *Params) AxesAngle() float64 {
	return geom.Degrees(p.store.Double(ParamAxesAngle, math.Pi/2))
}

// SetRowProfile turns the grid so items run along the line from a to b.
func (p *Params) SetRowProfile(a, b geom.Vec) error {
	return p.store.SetGeom(ParamRowProfile, params.EdgeGeom{Curve: curve.NewLine(a, b)})
}
