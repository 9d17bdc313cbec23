package pattern

import (
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/stackarray/pkg/core/array"
	"github.com/matzehuels/stackarray/pkg/core/handle"
	"github.com/matzehuels/stackarray/pkg/core/params"
	"github.com/matzehuels/stackarray/pkg/curve"
	"github.com/matzehuels/stackarray/pkg/errors"
	"github.com/matzehuels/stackarray/pkg/geom"
	"github.com/matzehuels/stackarray/pkg/host"
)

// Result is a built definition.
type Result struct {
	Definition *Definition
	ID         handle.ID
	Array      *array.Params
	Items      []*array.Item
	// Record is the modify record created for the definition's modify
	// overrides, or handle.Null.
	Record handle.ID
}

// intParams are the named parameters whose expressions yield integers.
var intParams = map[string]bool{
	array.ParamItems:       true,
	array.ParamRows:        true,
	array.ParamLevels:      true,
	array.ParamMethod:      true,
	array.ParamOrientation: true,
	array.ParamDirection:   true,
}

// Build validates def, creates its array in db, evaluates it and applies the
// overrides. Definitions with variables or expressions get a host.Action
// owning their parameters; expressions yield radians for angle parameters.
func Build(def *Definition, db *host.Database) (*Result, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	kind, err := array.ParseKind(def.Kind)
	if err != nil {
		return nil, err
	}
	p, err := array.NewOfKind(kind)
	if err != nil {
		return nil, err
	}
	if def.Normal != nil {
		p.SetBaseNormal(vec(def.Normal))
	}
	if len(def.Variables) > 0 || len(def.Expressions) > 0 {
		if err := p.Store().SetOwner(host.NewAction()); err != nil {
			return nil, err
		}
	}
	if err := configure(p, def); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDefinition, err, "definition %q", def.Name)
	}
	if err := bindExpressions(p.Store(), def); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDefinition, err, "definition %q", def.Name)
	}

	id := db.AddArray(p)
	if _, err := db.Evaluate(id); err != nil {
		return nil, err
	}

	res := &Result{Definition: def, ID: id, Array: p}
	var modify []array.Locator
	_, _, z := p.Axes()
	for _, o := range def.Overrides {
		loc := array.NewLocator(o.At[0], o.At[1], o.At[2])
		if o.Move != nil || o.Rotate != 0 {
			m := geom.Translation(vec(o.Move)).Mul(geom.Rotation(geom.Radians(o.Rotate), z, geom.Origin))
			if err := p.TransformItemBy(loc, m); err != nil {
				return nil, err
			}
		}
		if o.Modify {
			modify = append(modify, loc)
		}
		if o.Erase {
			if err := p.EraseItem(loc, true); err != nil {
				return nil, err
			}
		}
	}
	if len(modify) > 0 {
		rec, err := db.Modify(id, modify...)
		if err != nil {
			return nil, err
		}
		res.Record = rec
	}

	items, err := db.Evaluate(id)
	if err != nil {
		return nil, err
	}
	res.Items = items
	return res, nil
}

// configure copies the literal knobs of def into the array store. Zero
// counts and spacings keep the defaults.
func configure(p *array.Params, def *Definition) error {
	set := []struct {
		ok  bool
		run func() error
	}{
		{def.Items > 0, func() error { return p.SetItems(def.Items) }},
		{def.Rows > 0, func() error { return p.SetRows(def.Rows) }},
		{def.Levels > 0, func() error { return p.SetLevels(def.Levels) }},
		{def.ItemSpacing != 0, func() error { return p.SetItemSpacing(def.ItemSpacing) }},
		{def.RowSpacing != 0, func() error { return p.SetRowSpacing(def.RowSpacing) }},
		{def.LevelSpacing != 0, func() error { return p.SetLevelSpacing(def.LevelSpacing) }},
		{def.RowElevation != 0, func() error { return p.SetRowElevation(def.RowElevation) }},
		{def.BasePoint != nil, func() error { return p.SetBasePoint(vec(def.BasePoint)) }},
	}
	for _, s := range set {
		if !s.ok {
			continue
		}
		if err := s.run(); err != nil {
			return err
		}
	}

	if r := def.Rectangular; r != nil {
		if r.AxesAngle != nil {
			if err := p.SetAxesAngle(*r.AxesAngle); err != nil {
				return err
			}
		}
		if len(r.RowProfile) == 2 {
			if err := p.SetRowProfile(vec(r.RowProfile[0]), vec(r.RowProfile[1])); err != nil {
				return err
			}
		}
	}
	if o := def.Polar; o != nil {
		if err := configurePolar(p, o); err != nil {
			return err
		}
	}
	if o := def.Path; o != nil {
		if err := configurePath(p, o); err != nil {
			return err
		}
	}
	return nil
}

func configurePolar(p *array.Params, o *PolarOptions) error {
	dir, err := parseDirection(o.Direction)
	if err != nil {
		return err
	}
	if err := p.SetDirection(dir); err != nil {
		return err
	}
	if o.Radius != 0 {
		if err := p.SetRadius(o.Radius); err != nil {
			return err
		}
	}
	if err := p.SetStartAngle(o.StartAngle); err != nil {
		return err
	}
	if o.RotateItems != nil {
		if err := p.SetRotateItems(*o.RotateItems); err != nil {
			return err
		}
	}
	switch {
	case o.AngleBetween != nil:
		return p.SetAngleBetweenItems(*o.AngleBetween)
	case o.FillAngle != nil:
		return p.SetFillAngle(*o.FillAngle)
	}
	return nil
}

func configurePath(p *array.Params, o *PathOptions) error {
	c, err := o.Curve.build()
	if err != nil {
		return err
	}
	method, err := parseMethod(o.Method)
	if err != nil {
		return err
	}
	orient, err := parseOrientation(o.Orientation)
	if err != nil {
		return err
	}
	steps := []func() error{
		func() error { return p.SetPath(c) },
		func() error { return p.SetMethod(method) },
		func() error { return p.SetOrientation(orient) },
		func() error { return p.SetPathDirection(!o.Reverse) },
		func() error { return p.SetMaintainZ(o.MaintainZ) },
	}
	if o.AlignItems != nil {
		steps = append(steps, func() error { return p.SetAlignItems(*o.AlignItems) })
	}
	if o.StartOffset != 0 {
		steps = append(steps, func() error { return p.SetStartOffset(o.StartOffset) })
	}
	if o.EndOffset != 0 {
		steps = append(steps, func() error { return p.SetEndOffset(o.EndOffset) })
	}
	if o.TangentOrientation != 0 {
		steps = append(steps, func() error { return p.SetTangentOrientation(o.TangentOrientation) })
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

// bindExpressions stores the variables and expressions of def. Variables go
// first so expressions can refer to them; expressions may refer to each
// other in any order.
func bindExpressions(s *params.Store, def *Definition) error {
	for _, name := range slices.Sorted(maps.Keys(def.Variables)) {
		if err := s.SetValue(name, params.Double(def.Variables[name]), "", "", params.Unitless); err != nil {
			return err
		}
	}
	for _, name := range slices.Sorted(maps.Keys(def.Expressions)) {
		v, unit := params.Double(0), params.Unitless
		if intParams[name] {
			v = params.Int(0)
		}
		if e, err := s.Value(name); err == nil {
			unit = e.Unit
		}
		if err := s.SetValue(name, v, def.Expressions[name], host.EvaluatorID, unit); err != nil {
			return err
		}
	}
	return nil
}

func (c Curve) build() (curve.Curve, error) {
	switch c.Type {
	case CurveLine:
		if len(c.Points) != 2 {
			return nil, errors.New(errors.ErrCodeInvalidDefinition, "a line needs 2 points")
		}
		return curve.NewLine(vec(c.Points[0]), vec(c.Points[1])), nil
	case CurvePolyline:
		pts := make([]geom.Vec, len(c.Points))
		for i, p := range c.Points {
			pts[i] = vec(p)
		}
		return curve.NewPolyline(pts, c.Closed), nil
	case CurveArc:
		return curve.NewArc(vec(c.Center), normalOrZ(c.Normal), c.Radius,
			geom.Radians(c.StartAngle), geom.Radians(c.EndAngle)), nil
	case CurveCircle:
		return curve.NewCircle(vec(c.Center), normalOrZ(c.Normal), c.Radius), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidDefinition, "unknown curve type %q", c.Type)
}

func parseDirection(s string) (array.Direction, error) {
	switch strings.ToLower(s) {
	case "", "ccw", "counterclockwise":
		return array.CounterClockwise, nil
	case "cw", "clockwise":
		return array.Clockwise, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidDefinition, "unknown direction %q", s)
}

func parseMethod(s string) (array.Method, error) {
	switch strings.ToLower(s) {
	case "", "divide":
		return array.Divide, nil
	case "measure":
		return array.Measure, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidDefinition, "unknown method %q", s)
}

func parseOrientation(s string) (array.Orientation, error) {
	switch strings.ToLower(s) {
	case "", "natural":
		return array.OrientNatural, nil
	case "tangent":
		return array.OrientTangent, nil
	case "coords", "coordsystem":
		return array.OrientCoordSystem, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidDefinition, "unknown orientation %q", s)
}

// vec converts a validated 3-component slice; nil is the origin.
func vec(v []float64) geom.Vec {
	if len(v) != 3 {
		return geom.Vec{}
	}
	return geom.Vec{X: v[0], Y: v[1], Z: v[2]}
}

func normalOrZ(v []float64) geom.Vec {
	if v == nil {
		return geom.ZAxis
	}
	return vec(v)
}
