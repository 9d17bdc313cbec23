package params

import (
	"testing"

	"github.com/matzehuels/stackarray/pkg/curve"
	"github.com/matzehuels/stackarray/pkg/errors"
	"github.com/matzehuels/stackarray/pkg/geom"
)

// fakeOwner is a map-backed Owner that can be told to reject a name.
type fakeOwner struct {
	values map[string]Entry
	points map[string]geom.Vec
	edges  map[string]curve.Curve
	reject string
}

func newFakeOwner() *fakeOwner {
	return &fakeOwner{
		values: map[string]Entry{},
		points: map[string]geom.Vec{},
		edges:  map[string]curve.Curve{},
	}
}

func (f *fakeOwner) ValueParam(name string) (Value, string, string, error) {
	e, ok := f.values[name]
	if !ok {
		return Value{}, "", "", errors.New(errors.ErrCodeNotInGroup, "%s", name)
	}
	return e.Value, e.Expression, e.EvaluatorID, nil
}

func (f *fakeOwner) SetValueParam(name string, v Value, expr, eval string) error {
	if name == f.reject {
		return errors.New(errors.ErrCodeCyclicExpression, "%s", name)
	}
	e := f.values[name]
	e.Value, e.Expression, e.EvaluatorID = v, expr, eval
	f.values[name] = e
	return nil
}

func (f *fakeOwner) SetValueParamUnit(name string, u Unit) error {
	e := f.values[name]
	e.Unit = u
	f.values[name] = e
	return nil
}

func (f *fakeOwner) ValueParamUnit(name string) Unit { return f.values[name].Unit }

func (f *fakeOwner) ValueParamNames() []string { return sortedKeys(f.values) }

func (f *fakeOwner) PointParam(name string) (geom.Vec, error) {
	p, ok := f.points[name]
	if !ok {
		return geom.Vec{}, errors.New(errors.ErrCodeNotInGroup, "%s", name)
	}
	return p, nil
}

func (f *fakeOwner) SetPointParam(name string, p geom.Vec) error {
	f.points[name] = p
	return nil
}

func (f *fakeOwner) EdgeParam(name string) (curve.Curve, error) {
	c, ok := f.edges[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotInGroup, "%s", name)
	}
	return c, nil
}

func (f *fakeOwner) SetEdgeParam(name string, c curve.Curve) error {
	f.edges[name] = c
	return nil
}

func (f *fakeOwner) RemoveValueParam(name string) error {
	delete(f.values, name)
	return nil
}

func (f *fakeOwner) RemoveGeomParam(name string) error {
	delete(f.points, name)
	delete(f.edges, name)
	return nil
}

// keepingOwner hides the Remover methods of its fakeOwner.
type keepingOwner struct{ Owner }

func (f *fakeOwner) GeomParamNames() []string {
	return append(sortedKeys(f.points), sortedKeys(f.edges)...)
}

func TestStoreLocal(t *testing.T) {
	s := NewStore()

	if err := s.SetValue("Items", Int(4), "Rows*2", "", Unitless); err != nil {
		t.Fatalf("SetValue() error: %v", err)
	}
	e, err := s.Value("Items")
	if err != nil {
		t.Fatalf("Value() error: %v", err)
	}
	if e.Value.AsInt() != 4 || e.Expression != "Rows*2" {
		t.Errorf("Value() = %+v, want 4 with expression", e)
	}

	if _, err := s.Value("Missing"); !errors.Is(err, errors.ErrCodeNotInGroup) {
		t.Errorf("Value(Missing) error = %v, want NOT_IN_GROUP", err)
	}
	if _, err := s.Geom("Missing"); !errors.Is(err, errors.ErrCodeNotInGroup) {
		t.Errorf("Geom(Missing) error = %v, want NOT_IN_GROUP", err)
	}
}

func TestStoreTypedHelpers(t *testing.T) {
	s := NewStore()
	_ = s.SetDouble("RowSpacing", 2.5, Distance)
	_ = s.SetBool("RotateItems", true)

	if got := s.Double("RowSpacing", 0); got != 2.5 {
		t.Errorf("Double() = %v, want 2.5", got)
	}
	if got := s.Int("Missing", 7); got != 7 {
		t.Errorf("Int(Missing) = %v, want default 7", got)
	}
	if !s.Bool("RotateItems", false) {
		t.Error("Bool(RotateItems) = false, want true")
	}

	// Setting a value keeps its expression.
	_ = s.SetValue("Items", Int(3), "Levels+1", "eval", Unitless)
	_ = s.SetInt("Items", 5)
	e, _ := s.Value("Items")
	if e.Expression != "Levels+1" || e.Value.AsInt() != 5 {
		t.Errorf("SetInt() = %+v, want value 5 with expression kept", e)
	}
}

func TestStoreGeometry(t *testing.T) {
	s := NewStore()
	_ = s.SetGeom("BasePoint", PointGeom{Point: geom.Vec{X: 1}})
	_ = s.SetGeom("Path", EdgeGeom{Curve: curve.NewLine(geom.Vec{}, geom.Vec{X: 1})})

	if p, err := s.Point("BasePoint"); err != nil || p.X != 1 {
		t.Errorf("Point() = %v, %v", p, err)
	}
	if _, err := s.Edge("Path"); err != nil {
		t.Errorf("Edge() error: %v", err)
	}
	if _, err := s.Edge("BasePoint"); !errors.Is(err, errors.ErrCodeNotInGroup) {
		t.Errorf("Edge(BasePoint) error = %v, want NOT_IN_GROUP", err)
	}
	if got := s.GeomNames(); len(got) != 2 || got[0] != "BasePoint" {
		t.Errorf("GeomNames() = %v", got)
	}
}

func TestSetOwnerSynchronizes(t *testing.T) {
	s := NewStore()
	_ = s.SetValue("Items", Int(4), "", "", Unitless)
	_ = s.SetValue("Radius", Double(5), "", "", Distance)
	_ = s.SetGeom("BasePoint", PointGeom{Point: geom.Vec{Y: 2}})
	_ = s.SetGeom("Path", EdgeGeom{Curve: curve.NewLine(geom.Vec{}, geom.Vec{X: 1})})

	o := newFakeOwner()
	o.values["Items"] = Entry{Value: Int(9)} // owner wins on conflict

	if err := s.SetOwner(o); err != nil {
		t.Fatalf("SetOwner() error: %v", err)
	}

	if got := s.Int("Items", 0); got != 9 {
		t.Errorf("Items = %v, want owner value 9", got)
	}
	if e, _ := s.Value("Radius"); e.Value.AsDouble() != 5 || e.Unit != Distance {
		t.Errorf("Radius = %+v, want 5 distance", e)
	}
	if o.points["BasePoint"].Y != 2 {
		t.Errorf("owner BasePoint = %v", o.points["BasePoint"])
	}
	if _, ok := o.edges["Path"]; !ok {
		t.Error("owner is missing edge parameter Path")
	}

	// Writes now go to the owner.
	_ = s.SetInt("Rows", 3)
	if o.values["Rows"].Value.AsInt() != 3 {
		t.Errorf("owner Rows = %v, want 3", o.values["Rows"].Value)
	}
	if s.Owner() != o {
		t.Error("Owner() did not return the assigned owner")
	}
}

func TestSetOwnerTwice(t *testing.T) {
	s := NewStore()
	first, second := newFakeOwner(), newFakeOwner()

	if err := s.SetOwner(first); err != nil {
		t.Fatalf("SetOwner(first) error: %v", err)
	}
	err := s.SetOwner(second)
	if !errors.Is(err, errors.ErrCodeAlreadyActive) {
		t.Errorf("SetOwner(second) error = %v, want ALREADY_ACTIVE", err)
	}
	if s.Owner() != first {
		t.Error("second SetOwner replaced the first owner")
	}
}

func TestSetOwnerRollback(t *testing.T) {
	s := NewStore()
	_ = s.SetValue("Items", Int(4), "", "", Unitless)
	_ = s.SetValue("Rows", Int(2), "", "", Unitless)

	o := newFakeOwner()
	o.reject = "Rows"

	err := s.SetOwner(o)
	if !errors.Is(err, errors.ErrCodeCyclicExpression) {
		t.Fatalf("SetOwner() error = %v, want CYCLIC_EXPRESSION", err)
	}
	if s.Owner() != nil {
		t.Error("failed SetOwner left an owner assigned")
	}
	if got := s.ValueNames(); len(got) != 2 {
		t.Errorf("ValueNames() = %v, want local parameters intact", got)
	}
	if got := s.Int("Rows", 0); got != 2 {
		t.Errorf("Rows = %v, want 2", got)
	}
}

func TestSetOwnerRollbackOnOwner(t *testing.T) {
	newStore := func() *Store {
		s := NewStore()
		_ = s.SetValue("Items", Int(4), "", "", Unitless)
		_ = s.SetValue("Rows", Int(2), "", "", Unitless)
		_ = s.SetValue("Levels", Int(1), "", "", Unitless)
		return s
	}

	t.Run("remover", func(t *testing.T) {
		o := newFakeOwner()
		o.values["Levels"] = Entry{Value: Int(3)}
		o.reject = "Rows"
		if err := newStore().SetOwner(o); err == nil {
			t.Fatal("SetOwner() error = nil, want failure")
		}
		if _, ok := o.values["Items"]; ok {
			t.Error("owner kept Items after failed SetOwner")
		}
		if got := o.values["Levels"].Value.AsInt(); got != 3 {
			t.Errorf("owner Levels = %v, want its own value 3", got)
		}
	})

	t.Run("no remover", func(t *testing.T) {
		o := newFakeOwner()
		o.reject = "Rows"
		if err := newStore().SetOwner(keepingOwner{o}); err == nil {
			t.Fatal("SetOwner() error = nil, want failure")
		}
		if _, ok := o.values["Items"]; !ok {
			t.Error("owner without Remover lost Items")
		}
	})
}
