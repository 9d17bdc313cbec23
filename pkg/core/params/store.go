// Package params implements the named parameter store underlying every array
// placement knob.
//
// A [Store] is in one of two states. Unowned, it keeps value and geometry
// parameters in local maps. Once an [Owner] claims it through [Store.SetOwner],
// every read and write is forwarded to the owner and the local maps are gone.
// SetOwner is the only transition between the states.
package params

import (
	"slices"

	"github.com/matzehuels/stackarray/pkg/curve"
	"github.com/matzehuels/stackarray/pkg/errors"
	"github.com/matzehuels/stackarray/pkg/geom"
)

// backend is one of the two store states.
type backend interface {
	setValue(name string, e Entry) error
	value(name string) (Entry, error)
	setGeom(name string, g Geometry) error
	geom(name string) (Geometry, error)
	valueNames() []string
	geomNames() []string
}

// Store is a named bag of value and geometry parameters.
type Store struct {
	b backend
}

// NewStore creates an unowned, empty store.
func NewStore() *Store {
	return &Store{b: newLocal()}
}

// SetValue inserts or updates a value parameter.
func (s *Store) SetValue(name string, v Value, expr, evaluatorID string, unit Unit) error {
	return s.b.setValue(name, Entry{Value: v, Expression: expr, EvaluatorID: evaluatorID, Unit: unit})
}

// Value returns a value parameter, or an ErrCodeNotInGroup error.
func (s *Store) Value(name string) (Entry, error) {
	return s.b.value(name)
}

// SetGeom inserts or updates a geometry parameter.
func (s *Store) SetGeom(name string, g Geometry) error {
	return s.b.setGeom(name, g)
}

// Geom returns a geometry parameter, or an ErrCodeNotInGroup error.
func (s *Store) Geom(name string) (Geometry, error) {
	return s.b.geom(name)
}

// ValueNames returns the sorted names of all value parameters.
func (s *Store) ValueNames() []string {
	names := slices.Clone(s.b.valueNames())
	slices.Sort(names)
	return names
}

// GeomNames returns the sorted names of all geometry parameters.
func (s *Store) GeomNames() []string {
	names := slices.Clone(s.b.geomNames())
	slices.Sort(names)
	return names
}

// Owner returns the owner that claimed the store, or nil.
func (s *Store) Owner() Owner {
	if o, ok := s.b.(*owned); ok {
		return o.owner
	}
	return nil
}

// SetOwner hands the store over to owner.
//
// Every buffered value and geometry parameter is pushed to the owner unless the
// owner already defines it, in which case the owner's value is kept. If any
// push fails the store stays unowned with its local parameters intact and the
// error is returned. Parameters already pushed are removed again when the
// owner implements [Remover]; other owners keep them. A store that already
// has an owner fails with ErrCodeAlreadyActive.
func (s *Store) SetOwner(owner Owner) error {
	l, ok := s.b.(*local)
	if !ok {
		return errors.New(errors.ErrCodeAlreadyActive, "parameter store already has an owner")
	}
	if owner == nil {
		return errors.New(errors.ErrCodeInvalidInput, "owner is nil")
	}

	next := &owned{owner: owner}
	var pushed handOver
	for _, name := range sortedKeys(l.values) {
		_, _, _, err := owner.ValueParam(name)
		if err == nil {
			continue
		}
		if !errors.Is(err, errors.ErrCodeNotInGroup) {
			pushed.undo(owner)
			return err
		}
		pushed.values = append(pushed.values, name)
		if err := next.setValue(name, l.values[name]); err != nil {
			pushed.undo(owner)
			return err
		}
	}
	for _, name := range sortedKeys(l.geoms) {
		g := l.geoms[name]
		if _, err := next.geomOfKind(name, g); err == nil {
			continue
		} else if !errors.Is(err, errors.ErrCodeNotInGroup) {
			pushed.undo(owner)
			return err
		}
		pushed.geoms = append(pushed.geoms, name)
		if err := next.setGeom(name, g); err != nil {
			pushed.undo(owner)
			return err
		}
	}

	s.b = next
	clear(l.values)
	clear(l.geoms)
	return nil
}

// handOver records the names SetOwner created on the owner.
type handOver struct {
	values []string
	geoms  []string
}

// undo removes the recorded names from owner when it can delete parameters.
// Failures are ignored; the names may not have been created.
func (h handOver) undo(owner Owner) {
	r, ok := owner.(Remover)
	if !ok {
		return
	}
	for _, name := range h.values {
		_ = r.RemoveValueParam(name)
	}
	for _, name := range h.geoms {
		_ = r.RemoveGeomParam(name)
	}
}

// CopyTo copies every parameter of s into dst. Curves are copied so the two
// stores never share geometry.
func (s *Store) CopyTo(dst *Store) error {
	for _, name := range s.ValueNames() {
		e, err := s.Value(name)
		if err != nil {
			return err
		}
		if err := dst.SetValue(name, e.Value, e.Expression, e.EvaluatorID, e.Unit); err != nil {
			return err
		}
	}
	for _, name := range s.GeomNames() {
		g, err := s.Geom(name)
		if err != nil {
			return err
		}
		if e, ok := g.(EdgeGeom); ok && e.Curve != nil {
			g = EdgeGeom{Curve: e.Curve.Copy()}
		}
		if err := dst.SetGeom(name, g); err != nil {
			return err
		}
	}
	return nil
}

// Int returns the named value as an integer, or def when it is missing.
func (s *Store) Int(name string, def int) int {
	e, err := s.Value(name)
	if err != nil {
		return def
	}
	return e.Value.AsInt()
}

// Double returns the named value as a float, or def when it is missing.
func (s *Store) Double(name string, def float64) float64 {
	e, err := s.Value(name)
	if err != nil {
		return def
	}
	return e.Value.AsDouble()
}

// Bool returns the named value as a boolean, or def when it is missing.
func (s *Store) Bool(name string, def bool) bool {
	e, err := s.Value(name)
	if err != nil {
		return def
	}
	return e.Value.AsBool()
}

// SetInt stores a unitless integer, keeping any existing expression.
func (s *Store) SetInt(name string, v int) error {
	return s.setKeepingExpr(name, Int(v), Unitless)
}

// SetDouble stores a float with the given unit, keeping any existing
// expression.
func (s *Store) SetDouble(name string, v float64, unit Unit) error {
	return s.setKeepingExpr(name, Double(v), unit)
}

// SetBool stores a boolean, keeping any existing expression.
func (s *Store) SetBool(name string, v bool) error {
	return s.setKeepingExpr(name, Bool(v), Unitless)
}

func (s *Store) setKeepingExpr(name string, v Value, unit Unit) error {
	var expr, eval string
	if e, err := s.Value(name); err == nil {
		expr, eval = e.Expression, e.EvaluatorID
	}
	return s.SetValue(name, v, expr, eval, unit)
}

// Point returns the named point geometry.
func (s *Store) Point(name string) (geom.Vec, error) {
	g, err := s.Geom(name)
	if err != nil {
		return geom.Vec{}, err
	}
	p, ok := g.(PointGeom)
	if !ok {
		return geom.Vec{}, errors.New(errors.ErrCodeNotInGroup, "geometry parameter %q is not a point", name)
	}
	return p.Point, nil
}

// Edge returns the named curve geometry.
func (s *Store) Edge(name string) (curve.Curve, error) {
	g, err := s.Geom(name)
	if err != nil {
		return nil, err
	}
	e, ok := g.(EdgeGeom)
	if !ok || e.Curve == nil {
		return nil, errors.New(errors.ErrCodeNotInGroup, "geometry parameter %q is not an edge", name)
	}
	return e.Curve, nil
}

// =============================================================================
// Unowned state
// =============================================================================

type local struct {
	values map[string]Entry
	geoms  map[string]Geometry
}

func newLocal() *local {
	return &local{values: map[string]Entry{}, geoms: map[string]Geometry{}}
}

func (l *local) setValue(name string, e Entry) error {
	l.values[name] = e
	return nil
}

func (l *local) value(name string) (Entry, error) {
	e, ok := l.values[name]
	if !ok {
		return Entry{}, errors.New(errors.ErrCodeNotInGroup, "value parameter %q not found", name)
	}
	return e, nil
}

func (l *local) setGeom(name string, g Geometry) error {
	l.geoms[name] = g
	return nil
}

func (l *local) geom(name string) (Geometry, error) {
	g, ok := l.geoms[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotInGroup, "geometry parameter %q not found", name)
	}
	return g, nil
}

func (l *local) valueNames() []string { return sortedKeys(l.values) }
func (l *local) geomNames() []string  { return sortedKeys(l.geoms) }

// =============================================================================
// Owned state
// =============================================================================

type owned struct {
	owner Owner
}

func (o *owned) setValue(name string, e Entry) error {
	if err := o.owner.SetValueParam(name, e.Value, e.Expression, e.EvaluatorID); err != nil {
		return err
	}
	return o.owner.SetValueParamUnit(name, e.Unit)
}

func (o *owned) value(name string) (Entry, error) {
	v, expr, eval, err := o.owner.ValueParam(name)
	if err != nil {
		return Entry{}, err
	}
	e := Entry{Value: v, Expression: expr, EvaluatorID: eval}
	if r, ok := o.owner.(UnitReporter); ok {
		e.Unit = r.ValueParamUnit(name)
	}
	return e, nil
}

func (o *owned) setGeom(name string, g Geometry) error {
	switch g := g.(type) {
	case PointGeom:
		return o.owner.SetPointParam(name, g.Point)
	case EdgeGeom:
		return o.owner.SetEdgeParam(name, g.Curve)
	default:
		return errors.New(errors.ErrCodeUnsupported, "geometry parameter %q has unsupported type %T", name, g)
	}
}

// geom looks the name up among edge parameters first and point parameters
// second; the owner keeps them apart.
func (o *owned) geom(name string) (Geometry, error) {
	if c, err := o.owner.EdgeParam(name); err == nil {
		return EdgeGeom{Curve: c}, nil
	} else if !errors.Is(err, errors.ErrCodeNotInGroup) {
		return nil, err
	}
	p, err := o.owner.PointParam(name)
	if err != nil {
		return nil, err
	}
	return PointGeom{Point: p}, nil
}

// geomOfKind looks the name up among the owner's parameters of the same kind
// as g.
func (o *owned) geomOfKind(name string, g Geometry) (Geometry, error) {
	switch g.(type) {
	case EdgeGeom:
		c, err := o.owner.EdgeParam(name)
		if err != nil {
			return nil, err
		}
		return EdgeGeom{Curve: c}, nil
	default:
		p, err := o.owner.PointParam(name)
		if err != nil {
			return nil, err
		}
		return PointGeom{Point: p}, nil
	}
}

func (o *owned) valueNames() []string { return o.owner.ValueParamNames() }
func (o *owned) geomNames() []string  { return o.owner.GeomParamNames() }

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
