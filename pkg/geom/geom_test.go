package geom

import (
	"math"
	"testing"
)

func TestRotation(t *testing.T) {
	tests := []struct {
		name   string
		angle  float64
		axis   Vec
		center Vec
		in     Vec
		want   Vec
	}{
		{"quarter turn about z", math.Pi / 2, ZAxis, Origin, Vec{X: 1}, Vec{Y: 1}},
		{"half turn about z", math.Pi, ZAxis, Origin, Vec{X: 1}, Vec{X: -1}},
		{"quarter turn about x", math.Pi / 2, XAxis, Origin, Vec{Y: 1}, Vec{Z: 1}},
		{"about offset center", math.Pi / 2, ZAxis, Vec{X: 1}, Vec{X: 2}, Vec{X: 1, Y: 1}},
		{"zero angle", 0, ZAxis, Origin, Vec{X: 3, Y: 4}, Vec{X: 3, Y: 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Rotation(tt.angle, tt.axis, tt.center).Apply(tt.in)
			if !Equal(got, tt.want, 1e-9) {
				t.Errorf("Apply() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMulOrder(t *testing.T) {
	// Rotate first, then translate.
	m := Translation(Vec{X: 10}).Mul(Rotation(math.Pi/2, ZAxis, Origin))
	got := m.Apply(Vec{X: 1})
	want := Vec{X: 10, Y: 1}
	if !Equal(got, want, 1e-9) {
		t.Errorf("Apply() = %v, want %v", got, want)
	}
}

func TestInverse(t *testing.T) {
	m := Translation(Vec{X: 1, Y: 2, Z: 3}).Mul(Rotation(0.7, Vec{X: 1, Y: 1, Z: 0}, Origin))
	inv, ok := m.Inverse()
	if !ok {
		t.Fatal("Inverse() reported singular matrix")
	}
	if !m.Mul(inv).Equal(Identity(), 1e-9) {
		t.Errorf("m·inv(m) = %v, want identity", m.Mul(inv))
	}

	if _, ok := (Mat4{}).Inverse(); ok {
		t.Error("Inverse() of zero matrix should fail")
	}
}

func TestInverseSingular(t *testing.T) {
	flat := Identity()
	flat[2][2] = 0
	tests := []struct {
		name string
		m    Mat4
		ok   bool
	}{
		{"flattened z", flat, false},
		{"flattened then moved", Translation(Vec{X: 4}).Mul(flat), false},
		{"scaled", CoordSystem(Vec{Y: 1}, Vec{X: 2}, Vec{Y: 2}, Vec{Z: 2}), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, ok := tt.m.Inverse()
			if ok != tt.ok {
				t.Fatalf("Inverse() ok = %v, want %v", ok, tt.ok)
			}
			if ok && !inv.Mul(tt.m).IsIdentity() {
				t.Errorf("inv(m)·m = %v, want identity", inv.Mul(tt.m))
			}
		})
	}
}

func TestMatEqual(t *testing.T) {
	m := Translation(Vec{X: 1})
	near := m
	near[0][3] += 1e-12
	far := m
	far[1][3] = 1e-3
	if !m.Equal(near, Tol) {
		t.Error("Equal() = false for matrices within tolerance")
	}
	if m.Equal(far, Tol) {
		t.Error("Equal() = true for matrices outside tolerance")
	}
}

func TestIsTranslationOnly(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
		want bool
	}{
		{"identity", Identity(), true},
		{"translation", Translation(Vec{X: 5, Z: -2}), true},
		{"rotation", Rotation(0.1, ZAxis, Origin), false},
		{"rotation and translation", Translation(Vec{X: 1}).Mul(Rotation(1, XAxis, Origin)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.IsTranslationOnly(); got != tt.want {
				t.Errorf("IsTranslationOnly() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestElementsRowMajor(t *testing.T) {
	m := Translation(Vec{X: 7, Y: 8, Z: 9})
	e := m.Elements()
	if e[3] != 7 || e[7] != 8 || e[11] != 9 || e[15] != 1 {
		t.Errorf("Elements() = %v, translation not in last column", e)
	}
	if FromElements(e) != m {
		t.Error("FromElements(Elements()) changed the matrix")
	}
}

func TestAngleTo(t *testing.T) {
	tests := []struct {
		name string
		a, b Vec
		ref  Vec
		want float64
	}{
		{"x to y", XAxis, YAxis, ZAxis, math.Pi / 2},
		{"y to x", YAxis, XAxis, ZAxis, 3 * math.Pi / 2},
		{"same", XAxis, XAxis, ZAxis, 0},
		{"reversed ref", XAxis, YAxis, Vec{Z: -1}, 3 * math.Pi / 2},
		{"out of plane component ignored", XAxis, Vec{Y: 1, Z: 5}, ZAxis, math.Pi / 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AngleTo(tt.a, tt.b, tt.ref); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("AngleTo() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCodirectional(t *testing.T) {
	if !Codirectional(Vec{Z: 3}, ZAxis) {
		t.Error("Codirectional(3z, z) = false")
	}
	if Codirectional(Vec{Z: -1}, ZAxis) {
		t.Error("Codirectional(-z, z) = true")
	}
	if Codirectional(Vec{}, ZAxis) {
		t.Error("Codirectional(0, z) = true")
	}
}
