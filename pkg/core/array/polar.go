package array

import (
	"math"

	"github.com/matzehuels/stackarray/pkg/core/params"
	"github.com/matzehuels/stackarray/pkg/errors"
	"github.com/matzehuels/stackarray/pkg/geom"
)

// Named parameters of polar arrays.
const (
	ParamStartAngle  = "StartAngle"
	ParamFillAngle   = "FillAngle"
	ParamRadius      = "Radius"
	ParamRotateItems = "RotateItems"
	ParamDirection   = "Direction"

	// ParamSpacingFromFill is set while the fill angle, not the item
	// spacing, was set last. The spacing then follows the item count.
	ParamSpacingFromFill = "SpacingFromFill"
)

// Direction is the sense in which a polar array advances.
type Direction int

// Polar directions.
const (
	CounterClockwise Direction = iota
	Clockwise
)

func (d Direction) String() string {
	if d == Clockwise {
		return "cw"
	}
	return "ccw"
}

// Polar places items on a ring around the base point. Rows are concentric
// rings further out; levels stack along the normal. With RotateItems each
// item is turned by its angular distance from the start angle.
type Polar struct {
	spacing float64
	start   float64
	radius  float64
	rotate  bool
	dir     Direction
}

// NewPolar creates an empty polar array.
func NewPolar(opts ...Option) *Params {
	return New(&Polar{}, opts...)
}

func (*Polar) Kind() Kind { return KindPolar }

func (s *Polar) prepare(p *Params) error {
	n := p.store.Int(ParamItems, 1)
	s.start = p.store.Double(ParamStartAngle, 0)
	s.radius = p.store.Double(ParamRadius, 1)
	s.rotate = p.store.Bool(ParamRotateItems, true)
	s.dir = Direction(p.store.Int(ParamDirection, int(CounterClockwise)))

	e, err := p.store.Value(ParamItemSpacing)
	switch {
	case p.store.Bool(ParamSpacingFromFill, false):
		s.spacing = spacingForFill(p.store.Double(ParamFillAngle, 2*math.Pi), n)
	case err == nil:
		s.spacing = e.Value.AsDouble()
	case errors.Is(err, errors.ErrCodeNotInGroup):
		s.spacing = spacingForFill(p.store.Double(ParamFillAngle, 2*math.Pi), n)
	default:
		return err
	}
	return nil
}

func (s *Polar) matrix(p *Params, loc Locator) geom.Mat4 {
	sign := 1.0
	if s.dir == Clockwise {
		sign = -1
	}
	angle := s.start + sign*s.spacing*float64(loc.Item)
	r := s.radius + p.rowSpacing*float64(loc.Row)
	z := float64(loc.Level)*p.levelSpacing + float64(loc.Row)*p.rowElevation

	pos := geom.Add(
		geom.Add(p.origin, geom.Scale(r, geom.Rotate(p.xAxis, angle, p.zAxis))),
		geom.Scale(z, p.zAxis),
	)
	m := geom.Translation(pos)
	if s.rotate {
		m = m.Mul(geom.Rotation(angle-s.start, p.zAxis, geom.Origin))
	}
	return m
}

// spacingForFill spreads n items over fill radians. A full circle has as many
// gaps as items; a partial one has one fewer.
func spacingForFill(fill float64, n int) float64 {
	switch {
	case n <= 1:
		return 0
	case math.Abs(math.Abs(fill)-2*math.Pi) < geom.Tol:
		return fill / float64(n)
	default:
		return fill / float64(n-1)
	}
}

// fillForSpacing is the inverse of spacingForFill.
func fillForSpacing(spacing float64, n int) float64 {
	if n <= 1 {
		return 0
	}
	if math.Abs(math.Abs(spacing*float64(n))-2*math.Pi) < geom.Tol {
		return spacing * float64(n)
	}
	return spacing * float64(n-1)
}

// SetStartAngle sets the angle of the first item in degrees.
func (p *Params) SetStartAngle(deg float64) error {
	return p.store.SetDouble(ParamStartAngle, geom.Radians(deg), params.Angle)
}

// SetRadius sets the radius of the innermost ring.
func (p *Params) SetRadius(r float64) error {
	return p.store.SetDouble(ParamRadius, r, params.Distance)
}

// SetRotateItems sets whether items turn with the ring.
func (p *Params) SetRotateItems(rotate bool) error {
	return p.store.SetBool(ParamRotateItems, rotate)
}

// SetDirection sets the sense in which the ring advances.
func (p *Params) SetDirection(d Direction) error {
	return p.store.SetInt(ParamDirection, int(d))
}

// SetAngleBetweenItems sets the angular spacing in degrees and updates the
// fill angle to match the current item count.
func (p *Params) SetAngleBetweenItems(deg float64) error {
	spacing := geom.Radians(deg)
	if err := p.store.SetDouble(ParamItemSpacing, spacing, params.Angle); err != nil {
		return err
	}
	fill := fillForSpacing(spacing, p.store.Int(ParamItems, 1))
	if err := p.store.SetDouble(ParamFillAngle, fill, params.Angle); err != nil {
		return err
	}
	return p.store.SetBool(ParamSpacingFromFill, false)
}

// SetFillAngle sets the angle covered by the ring in degrees. Until
// SetAngleBetweenItems is called the spacing is derived from the fill angle
// and the item count at evaluation time.
func (p *Params) SetFillAngle(deg float64) error {
	fill := geom.Radians(deg)
	if err := p.store.SetDouble(ParamFillAngle, fill, params.Angle); err != nil {
		return err
	}
	spacing := spacingForFill(fill, p.store.Int(ParamItems, 1))
	if err := p.store.SetDouble(ParamItemSpacing, spacing, params.Angle); err != nil {
		return err
	}
	return p.store.SetBool(ParamSpacingFromFill, true)
}

// AngleBetweenItems returns the angular spacing in degrees.
func (p *Params) AngleBetweenItems() float64 {
	if e, err := p.store.Value(ParamItemSpacing); err == nil && !p.store.Bool(ParamSpacingFromFill, false) {
		return geom.Degrees(e.Value.AsDouble())
	}
	fill := p.store.Double(ParamFillAngle, 2*math.Pi)
	return geom.Degrees(spacingForFill(fill, p.store.Int(ParamItems, 1)))
}
