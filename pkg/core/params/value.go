package params

import (
	"fmt"
	"math"
	"strconv"

	"github.com/matzehuels/stackarray/pkg/curve"
	"github.com/matzehuels/stackarray/pkg/geom"
)

// Kind identifies the type held by a Value.
type Kind int

// Value kinds.
const (
	KindNone Kind = iota
	KindInt
	KindDouble
	KindBool
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindDouble:
		return "double"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	default:
		return "none"
	}
}

// Value is a typed scalar parameter value.
type Value struct {
	kind Kind
	num  float64
	str  string
}

// Int returns an integer value.
func Int(v int) Value { return Value{kind: KindInt, num: float64(v)} }

// Double returns a floating point value.
func Double(v float64) Value { return Value{kind: KindDouble, num: v} }

// Bool returns a boolean value.
func Bool(v bool) Value {
	if v {
		return Value{kind: KindBool, num: 1}
	}
	return Value{kind: KindBool}
}

// String returns a string value.
func String(v string) Value { return Value{kind: KindString, str: v} }

// Kind returns the type held by v.
func (v Value) Kind() Kind { return v.kind }

// AsInt returns v as an integer, rounding doubles to the nearest integer.
func (v Value) AsInt() int {
	switch v.kind {
	case KindString:
		n, _ := strconv.Atoi(v.str)
		return n
	default:
		return int(math.Round(v.num))
	}
}

// AsDouble returns v as a float.
func (v Value) AsDouble() float64 {
	if v.kind == KindString {
		f, _ := strconv.ParseFloat(v.str, 64)
		return f
	}
	return v.num
}

// AsBool returns v as a boolean; numbers are true when non-zero.
func (v Value) AsBool() bool {
	if v.kind == KindString {
		b, _ := strconv.ParseBool(v.str)
		return b
	}
	return v.num != 0
}

// AsString returns the string form of v.
func (v Value) AsString() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindInt:
		return strconv.Itoa(v.AsInt())
	case KindDouble:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.AsBool())
	default:
		return ""
	}
}

func (v Value) String() string {
	return fmt.Sprintf("%s(%s)", v.kind, v.AsString())
}

// Unit is the unit kind attached to a value parameter.
type Unit int

// Unit kinds.
const (
	Unitless Unit = iota
	Distance
	Angle
	Area
	Volume
)

func (u Unit) String() string {
	switch u {
	case Distance:
		return "distance"
	case Angle:
		return "angle"
	case Area:
		return "area"
	case Volume:
		return "volume"
	default:
		return "unitless"
	}
}

// Entry is a value parameter together with its expression metadata.
type Entry struct {
	Value       Value
	Expression  string
	EvaluatorID string
	Unit        Unit
}

// Geometry is a typed geometry parameter: a [PointGeom] or an [EdgeGeom].
type Geometry interface {
	geometry()
}

// PointGeom references a point, e.g. an array's base point.
type PointGeom struct {
	Point geom.Vec
}

// EdgeGeom references a curve, e.g. a path or a row profile line.
type EdgeGeom struct {
	Curve curve.Curve
}

func (PointGeom) geometry() {}
func (EdgeGeom) geometry()  {}
