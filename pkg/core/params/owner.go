package params

import (
	"github.com/matzehuels/stackarray/pkg/curve"
	"github.com/matzehuels/stackarray/pkg/geom"
)

// Owner is an expression-capable parameter mechanism that can take over a
// Store. Lookups of missing names must fail with ErrCodeNotInGroup.
type Owner interface {
	ValueParam(name string) (v Value, expr, evaluatorID string, err error)
	SetValueParam(name string, v Value, expr, evaluatorID string) error
	SetValueParamUnit(name string, u Unit) error
	ValueParamNames() []string

	PointParam(name string) (geom.Vec, error)
	SetPointParam(name string, p geom.Vec) error
	EdgeParam(name string) (curve.Curve, error)
	SetEdgeParam(name string, c curve.Curve) error
	GeomParamNames() []string
}

// UnitReporter is implemented by owners that can report the unit of a value
// parameter. Owners without it report Unitless.
type UnitReporter interface {
	ValueParamUnit(name string) Unit
}

// Remover is implemented by owners that can delete parameters. A failed
// [Store.SetOwner] uses it to take back the parameters it already pushed.
type Remover interface {
	RemoveValueParam(name string) error
	RemoveGeomParam(name string) error
}
