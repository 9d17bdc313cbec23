package array

import (
	"github.com/matzehuels/stackarray/pkg/core/params"
	"github.com/matzehuels/stackarray/pkg/curve"
	"github.com/matzehuels/stackarray/pkg/geom"
)

// Named parameters of path arrays.
const (
	ParamPath               = "Path"
	ParamMethod             = "Method"
	ParamAlignItems         = "AlignItems"
	ParamStartOffset        = "StartOffset"
	ParamEndOffset          = "EndOffset"
	ParamPathDirection      = "PathDirection"
	ParamMaintainZ          = "MaintainZ"
	ParamOrientation        = "Orientation"
	ParamTangentOrientation = "TangentOrientation"
)

// Method is how items are distributed along a path.
type Method int

// Distribution methods.
const (
	// Divide spreads the items evenly over the parameter interval.
	Divide Method = iota
	// Measure places items ItemSpacing apart in arc length.
	Measure
)

func (m Method) String() string {
	if m == Measure {
		return "measure"
	}
	return "divide"
}

// Orientation selects how path items are turned.
type Orientation int

// Orientation modes.
const (
	// OrientNatural aligns items with the path frame.
	OrientNatural Orientation = iota
	// OrientTangent additionally yaws items by TangentOrientation.
	OrientTangent
	// OrientCoordSystem maps the world frame onto the path frame.
	OrientCoordSystem
)

// Path places items along a curve. Rows are offset sideways from the curve
// and levels along the normal.
type Path struct {
	c      curve.Curve
	lo, hi float64
	closed bool

	count       int
	spacing     float64
	method      Method
	align       bool
	maintainZ   bool
	orientation Orientation
	yaw         float64

	startTan  geom.Vec
	startRot  geom.Mat4
	startRotI geom.Mat4
}

// NewPath creates an empty path array.
func NewPath(opts ...Option) *Params {
	return New(&Path{}, opts...)
}

func (*Path) Kind() Kind { return KindPath }

func (s *Path) prepare(p *Params) error {
	src, err := p.store.Edge(ParamPath)
	if err != nil {
		return err
	}
	s.count = p.store.Int(ParamItems, 1)
	s.spacing = p.store.Double(ParamItemSpacing, 1)
	s.method = Method(p.store.Int(ParamMethod, int(Divide)))
	s.align = p.store.Bool(ParamAlignItems, true)
	s.maintainZ = p.store.Bool(ParamMaintainZ, false)
	s.orientation = Orientation(p.store.Int(ParamOrientation, int(OrientNatural)))
	s.yaw = p.store.Double(ParamTangentOrientation, 0)

	s.c = src.Copy()
	if !p.store.Bool(ParamPathDirection, true) {
		s.c.ReverseParam()
	}
	s.lo, s.hi = s.c.Interval()
	s.closed = s.c.IsClosed()

	// Offsets only apply when they land strictly inside the interval. A
	// trimmed closed curve no longer wraps.
	lo, hi := s.lo, s.hi
	if d := p.store.Double(ParamStartOffset, 0); d != 0 {
		if t := s.c.ParamAtLength(lo, d); t > lo && t < hi {
			s.lo, s.closed = t, false
		}
	}
	if d := p.store.Double(ParamEndOffset, 0); d != 0 {
		if t := s.c.ParamAtLength(hi, -d); t > s.lo && t < hi {
			s.hi, s.closed = t, false
		}
	}

	s.startTan = geom.Vec{}
	_, tan := s.eval(s.lo, p.xAxis)
	s.startTan = tan
	s.startRot = s.frame(tan, p)
	inv, ok := s.startRot.Inverse()
	if !ok {
		inv = geom.Identity()
	}
	s.startRotI = inv
	return nil
}

// param returns the curve parameter of the i-th item.
func (s *Path) param(i int) float64 {
	if s.method == Measure {
		return s.c.ParamAtLength(s.lo, float64(i)*s.spacing)
	}
	den := s.count - 1
	if s.closed || s.count == 1 {
		den = s.count
	}
	if den <= 0 {
		return s.lo
	}
	return s.lo + (s.hi-s.lo)*float64(i)/float64(den)
}

// eval returns the point and unit tangent at t. A degenerate tangent falls
// back to the start tangent, then to fallback.
func (s *Path) eval(t float64, fallback geom.Vec) (geom.Vec, geom.Vec) {
	pt, d := s.c.EvalPoint(t, 1)
	var tan geom.Vec
	if len(d) > 0 {
		tan = geom.Unit(d[0])
	}
	if geom.IsZero(tan) {
		tan = s.startTan
	}
	if geom.IsZero(tan) {
		tan = fallback
	}
	return pt, tan
}

// perp is the sideways direction tangent × up, or the frame y axis when the
// tangent is parallel to up.
func perp(tan geom.Vec, p *Params) geom.Vec {
	v := geom.Unit(geom.Cross(tan, p.zAxis))
	if geom.IsZero(v) {
		return p.yAxis
	}
	return v
}

// frame returns the rotation mapping the world axes onto the path frame at a
// point with the given tangent.
func (s *Path) frame(tan geom.Vec, p *Params) geom.Mat4 {
	var x, z geom.Vec
	if s.maintainZ {
		z = p.zAxis
		x = geom.Unit(geom.Sub(tan, geom.Scale(geom.Dot(tan, z), z)))
		if geom.IsZero(x) {
			x = p.xAxis
		}
	} else {
		x = tan
		z = geom.Unit(geom.Cross(perp(tan, p), tan))
		if geom.IsZero(z) {
			z = p.zAxis
		}
	}
	y := geom.Unit(geom.Cross(z, x))
	return geom.CoordSystem(geom.Origin, x, y, z)
}

func (s *Path) matrix(p *Params, loc Locator) geom.Mat4 {
	if s.c == nil {
		return geom.Identity()
	}
	pt, tan := s.eval(s.param(loc.Item), p.xAxis)
	side := perp(tan, p)
	pos := geom.Add(
		geom.Add(pt, geom.Scale(float64(loc.Row)*p.rowSpacing, side)),
		geom.Scale(float64(loc.Level)*p.levelSpacing+float64(loc.Row)*p.rowElevation, p.zAxis),
	)

	local := s.frame(tan, p)
	var rot geom.Mat4
	switch s.orientation {
	case OrientCoordSystem:
		rot = s.startRot
		if s.align {
			rot = local
		}
	default:
		rot = geom.Identity()
		if s.align {
			rot = local.Mul(s.startRotI)
		}
		if s.orientation == OrientTangent {
			rot = rot.Mul(geom.Rotation(s.yaw, p.zAxis, geom.Origin))
		}
	}
	return geom.Translation(pos).Mul(rot)
}

// SetPath sets the curve items follow.
func (p *Params) SetPath(c curve.Curve) error {
	return p.store.SetGeom(ParamPath, params.EdgeGeom{Curve: c})
}

// SetMethod sets the distribution method.
func (p *Params) SetMethod(m Method) error { return p.store.SetInt(ParamMethod, int(m)) }

// SetAlignItems sets whether items turn with the path.
func (p *Params) SetAlignItems(align bool) error { return p.store.SetBool(ParamAlignItems, align) }

// SetStartOffset trims d from the start of the path.
func (p *Params) SetStartOffset(d float64) error {
	return p.store.SetDouble(ParamStartOffset, d, params.Distance)
}

// SetEndOffset trims d from the end of the path.
func (p *Params) SetEndOffset(d float64) error {
	return p.store.SetDouble(ParamEndOffset, d, params.Distance)
}

// SetPathDirection walks the path forwards when true and backwards otherwise.
func (p *Params) SetPathDirection(forward bool) error {
	return p.store.SetBool(ParamPathDirection, forward)
}

// SetMaintainZ keeps item Z axes on the base normal.
func (p *Params) SetMaintainZ(keep bool) error { return p.store.SetBool(ParamMaintainZ, keep) }

// SetOrientation sets the orientation mode.
func (p *Params) SetOrientation(o Orientation) error {
	return p.store.SetInt(ParamOrientation, int(o))
}

// SetTangentOrientation sets the yaw used by OrientTangent in degrees.
func (p *Params) SetTangentOrientation(deg float64) error {
	return p.store.SetDouble(ParamTangentOrientation, geom.Radians(deg), params.Angle)
}
