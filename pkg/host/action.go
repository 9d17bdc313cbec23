package host

import (
	"math"
	"slices"

	"github.com/matzehuels/stackarray/pkg/core/params"
	"github.com/matzehuels/stackarray/pkg/curve"
	"github.com/matzehuels/stackarray/pkg/errors"
	"github.com/matzehuels/stackarray/pkg/geom"
)

// Action is an expression-capable parameter owner. Value parameters may
// carry an arithmetic expression over other value parameters; reads return
// the evaluated value. An Action takes over a params.Store through
// Store.SetOwner.
type Action struct {
	values map[string]*actionValue
	points map[string]geom.Vec
	edges  map[string]curve.Curve
}

type actionValue struct {
	value  params.Value
	expr   string
	evalID string
	x      *expression
	unit   params.Unit
}

// NewAction creates an empty action.
func NewAction() *Action {
	return &Action{
		values: make(map[string]*actionValue),
		points: make(map[string]geom.Vec),
		edges:  make(map[string]curve.Curve),
	}
}

func notInGroup(name string) error {
	return errors.New(errors.ErrCodeNotInGroup, "parameter %q does not exist", name)
}

// ValueParam returns the value of name, evaluating its expression.
func (a *Action) ValueParam(name string) (params.Value, string, string, error) {
	v, ok := a.values[name]
	if !ok {
		return params.Value{}, "", "", notInGroup(name)
	}
	if v.x == nil {
		return v.value, "", v.evalID, nil
	}
	x, err := a.resolve(name, make(map[string]bool))
	if err != nil {
		return params.Value{}, v.expr, v.evalID, err
	}
	if v.value.Kind() == params.KindInt {
		return params.Int(int(math.Round(x))), v.expr, v.evalID, nil
	}
	return params.Double(x), v.expr, v.evalID, nil
}

func (a *Action) resolve(name string, visiting map[string]bool) (float64, error) {
	v, ok := a.values[name]
	if !ok {
		return 0, notInGroup(name)
	}
	if v.x == nil {
		return v.value.AsDouble(), nil
	}
	if visiting[name] {
		return 0, errors.New(errors.ErrCodeCyclicExpression, "expression of %q depends on itself", name)
	}
	visiting[name] = true
	defer delete(visiting, name)
	return v.x.eval(func(ref string) (float64, error) {
		return a.resolve(ref, visiting)
	})
}

// SetValueParam sets name to v, or to expr when it is not empty. An
// expression that would make name depend on itself is rejected with
// ErrCodeCyclicExpression and leaves the parameter unchanged. References to
// parameters that do not exist yet are allowed and fail on evaluation.
func (a *Action) SetValueParam(name string, v params.Value, expr, evaluatorID string) error {
	if err := errors.ValidateParamName(name); err != nil {
		return err
	}
	if reserved(name) {
		return errors.New(errors.ErrCodeInvalidInput, "parameter name %q is reserved in expressions", name)
	}
	next := &actionValue{value: v, expr: expr, evalID: evaluatorID}
	if prev, ok := a.values[name]; ok {
		next.unit = prev.unit
	}
	if expr != "" {
		x, err := compile(expr)
		if err != nil {
			return err
		}
		next.x = x
		if next.evalID == "" {
			next.evalID = EvaluatorID
		}
		if v.Kind() == params.KindNone {
			next.value = params.Double(0)
		}
	}

	prev, had := a.values[name]
	a.values[name] = next
	if a.cyclic(name) {
		if had {
			a.values[name] = prev
		} else {
			delete(a.values, name)
		}
		return errors.New(errors.ErrCodeCyclicExpression, "expression %q of %q is cyclic", expr, name)
	}
	return nil
}

// cyclic reports whether name can reach itself through expression
// references.
func (a *Action) cyclic(name string) bool {
	seen := make(map[string]bool)
	var walk func(n string) bool
	walk = func(n string) bool {
		v, ok := a.values[n]
		if !ok || v.x == nil {
			return false
		}
		for _, r := range v.x.refs {
			if r == name {
				return true
			}
			if seen[r] {
				continue
			}
			seen[r] = true
			if walk(r) {
				return true
			}
		}
		return false
	}
	return walk(name)
}

// SetValueParamUnit sets the unit of an existing value parameter.
func (a *Action) SetValueParamUnit(name string, u params.Unit) error {
	v, ok := a.values[name]
	if !ok {
		return notInGroup(name)
	}
	v.unit = u
	return nil
}

// ValueParamUnit returns the unit of name, Unitless if it does not exist.
func (a *Action) ValueParamUnit(name string) params.Unit {
	if v, ok := a.values[name]; ok {
		return v.unit
	}
	return params.Unitless
}

// ValueParamNames returns the sorted value parameter names.
func (a *Action) ValueParamNames() []string { return sortedNames(a.values) }

// PointParam returns a point parameter.
func (a *Action) PointParam(name string) (geom.Vec, error) {
	p, ok := a.points[name]
	if !ok {
		return geom.Vec{}, notInGroup(name)
	}
	return p, nil
}

// SetPointParam creates or replaces a point parameter.
func (a *Action) SetPointParam(name string, p geom.Vec) error {
	if err := errors.ValidateParamName(name); err != nil {
		return err
	}
	delete(a.edges, name)
	a.points[name] = p
	return nil
}

// EdgeParam returns an edge parameter.
func (a *Action) EdgeParam(name string) (curve.Curve, error) {
	c, ok := a.edges[name]
	if !ok {
		return nil, notInGroup(name)
	}
	return c, nil
}

// SetEdgeParam creates or replaces an edge parameter.
func (a *Action) SetEdgeParam(name string, c curve.Curve) error {
	if err := errors.ValidateParamName(name); err != nil {
		return err
	}
	if c == nil {
		return errors.New(errors.ErrCodeInvalidInput, "edge parameter %q has no curve", name)
	}
	delete(a.points, name)
	a.edges[name] = c
	return nil
}

// RemoveValueParam deletes a value parameter. Expressions referencing it fail
// on evaluation until it is set again.
func (a *Action) RemoveValueParam(name string) error {
	if _, ok := a.values[name]; !ok {
		return notInGroup(name)
	}
	delete(a.values, name)
	return nil
}

// RemoveGeomParam deletes a point or edge parameter.
func (a *Action) RemoveGeomParam(name string) error {
	_, isPoint := a.points[name]
	_, isEdge := a.edges[name]
	if !isPoint && !isEdge {
		return notInGroup(name)
	}
	delete(a.points, name)
	delete(a.edges, name)
	return nil
}

// GeomParamNames returns the sorted geometry parameter names.
func (a *Action) GeomParamNames() []string {
	names := append(sortedNames(a.points), sortedNames(a.edges)...)
	slices.Sort(names)
	return names
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}
