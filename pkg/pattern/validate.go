package pattern

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/matzehuels/stackarray/pkg/core/array"
	"github.com/matzehuels/stackarray/pkg/errors"
)

// Validate reports every problem of the definition at once. The returned
// error carries ErrCodeInvalidDefinition and wraps a multierror listing the
// individual problems.
func (d *Definition) Validate() error {
	var result *multierror.Error
	add := func(format string, args ...any) {
		result = multierror.Append(result, fmt.Errorf(format, args...))
	}

	kind, err := array.ParseKind(d.Kind)
	if err != nil {
		add("kind: %q is not rectangular, polar or path", d.Kind)
	}
	for _, c := range []struct {
		name string
		n    int
	}{{"items", d.Items}, {"rows", d.Rows}, {"levels", d.Levels}} {
		if c.n < 0 {
			add("%s: must not be negative, got %d", c.name, c.n)
		}
	}
	if d.Items >= 0 && d.Rows >= 0 && d.Levels >= 0 {
		if _, ok := array.GridSize(max(d.Items, 1), max(d.Rows, 1), max(d.Levels, 1)); !ok {
			add("items x rows x levels: must not exceed %d items", array.MaxItems)
		}
	}
	checkVec(add, "base_point", d.BasePoint)
	checkVec(add, "normal", d.Normal)

	switch {
	case d.Rectangular != nil && kind != array.KindRectangular:
		add("rectangular: options given for a %s array", d.Kind)
	case d.Polar != nil && kind != array.KindPolar:
		add("polar: options given for a %s array", d.Kind)
	case d.Path != nil && kind != array.KindPath:
		add("path: options given for a %s array", d.Kind)
	}
	if r := d.Rectangular; r != nil && r.RowProfile != nil {
		if len(r.RowProfile) != 2 {
			add("rectangular.row_profile: need 2 points, got %d", len(r.RowProfile))
		}
		for i, p := range r.RowProfile {
			checkVec(add, fmt.Sprintf("rectangular.row_profile[%d]", i), p)
		}
	}
	if kind == array.KindPolar && err == nil && d.ItemSpacing != 0 {
		add("item_spacing: polar arrays space items with polar.angle_between")
	}
	if p := d.Polar; p != nil {
		if p.FillAngle != nil && p.AngleBetween != nil {
			add("polar: fill_angle and angle_between are mutually exclusive")
		}
		if _, err := parseDirection(p.Direction); err != nil {
			add("polar.direction: %q is not ccw or cw", p.Direction)
		}
	}
	if kind == array.KindPath && err == nil {
		if d.Path == nil {
			add("path: a path array needs a curve")
		} else {
			d.Path.validate(add)
		}
	}

	for _, name := range slices.Sorted(maps.Keys(d.Variables)) {
		if err := errors.ValidateParamName(name); err != nil {
			add("variables: %v", err)
		}
	}
	for _, name := range slices.Sorted(maps.Keys(d.Expressions)) {
		expr := d.Expressions[name]
		if err := errors.ValidateParamName(name); err != nil {
			add("expressions: %v", err)
		}
		if strings.TrimSpace(expr) == "" {
			add("expressions.%s: empty expression", name)
		}
	}

	for i, o := range d.Overrides {
		field := fmt.Sprintf("overrides[%d]", i)
		if len(o.At) != 3 {
			add("%s.at: need item, row and level, got %d values", field, len(o.At))
		}
		if o.Move != nil {
			checkVec(add, field+".move", o.Move)
		}
		if !o.Erase && !o.Modify && o.Move == nil && o.Rotate == 0 {
			add("%s: nothing to do", field)
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidDefinition, err, "definition %q", d.Name)
	}
	return nil
}

func (p *PathOptions) validate(add func(string, ...any)) {
	if _, err := parseMethod(p.Method); err != nil {
		add("path.method: %q is not divide or measure", p.Method)
	}
	if _, err := parseOrientation(p.Orientation); err != nil {
		add("path.orientation: %q is not natural, tangent or coords", p.Orientation)
	}
	c := p.Curve
	switch c.Type {
	case CurveLine:
		if len(c.Points) != 2 {
			add("path.curve.points: a line needs 2 points, got %d", len(c.Points))
		}
	case CurvePolyline:
		if len(c.Points) < 2 {
			add("path.curve.points: a polyline needs at least 2 points, got %d", len(c.Points))
		}
	case CurveArc, CurveCircle:
		if c.Radius <= 0 {
			add("path.curve.radius: must be positive, got %g", c.Radius)
		}
		checkVec(add, "path.curve.center", c.Center)
		checkVec(add, "path.curve.normal", c.Normal)
	default:
		add("path.curve.type: %q is not line, arc, circle or polyline", c.Type)
	}
	for i, pt := range c.Points {
		checkVec(add, fmt.Sprintf("path.curve.points[%d]", i), pt)
	}
}

// checkVec accepts an absent vector or one with three components.
func checkVec(add func(string, ...any), field string, v []float64) {
	if v != nil && len(v) != 3 {
		add("%s: need 3 components, got %d", field, len(v))
	}
}
