package array

import "testing"

func TestLocatorCompare(t *testing.T) {
	tests := []struct {
		a, b Locator
		want int
	}{
		{NewLocator(0, 0, 0), NewLocator(0, 0, 0), 0},
		{NewLocator(0, 5, 5), NewLocator(1, 0, 0), -1},
		{NewLocator(1, 0, 0), NewLocator(0, 9, 9), 1},
		{NewLocator(1, 1, 0), NewLocator(1, 0, 9), 1},
		{NewLocator(1, 1, 2), NewLocator(1, 1, 3), -1},
	}
	for _, tt := range tests {
		if got := tt.a.Compare(tt.b); got != tt.want {
			t.Errorf("%v.Compare(%v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
		if got := tt.a.Less(tt.b); got != (tt.want < 0) {
			t.Errorf("%v.Less(%v) = %v, want %v", tt.a, tt.b, got, tt.want < 0)
		}
	}
}

func TestLocatorAt(t *testing.T) {
	l := NewLocator(4, 5, 6)
	for i, want := range []int{4, 5, 6} {
		if got := l.At(i); got != want {
			t.Errorf("At(%d) = %d, want %d", i, got, want)
		}
	}

	defer func() {
		if recover() == nil {
			t.Error("At(3) did not panic")
		}
	}()
	l.At(3)
}

func TestLocatorArithmetic(t *testing.T) {
	a, b := NewLocator(1, 2, 3), NewLocator(3, 2, 1)
	if got, want := a.Add(b), NewLocator(4, 4, 4); got != want {
		t.Errorf("Add() = %v, want %v", got, want)
	}
	if got, want := a.Sub(b), NewLocator(-2, 0, 2); got != want {
		t.Errorf("Sub() = %v, want %v", got, want)
	}
}

func TestFlatIndex(t *testing.T) {
	// 2 rows, 3 levels: levels vary fastest.
	tests := []struct {
		loc  Locator
		want int
	}{
		{NewLocator(0, 0, 0), 0},
		{NewLocator(0, 0, 2), 2},
		{NewLocator(0, 1, 0), 3},
		{NewLocator(1, 0, 0), 6},
		{NewLocator(2, 1, 2), 17},
	}
	for _, tt := range tests {
		if got := flatIndex(tt.loc, 2, 3); got != tt.want {
			t.Errorf("flatIndex(%v) = %d, want %d", tt.loc, got, tt.want)
		}
	}
}

func TestGridSize(t *testing.T) {
	tests := []struct {
		items, rows, levels int
		want                int
		ok                  bool
	}{
		{3, 2, 1, 6, true},
		{0, 5, 5, 0, true},
		{MaxItems, 1, 1, MaxItems, true},
		{MaxItems, 2, 1, 0, false},
		{2000000000, 2000000000, 2000000000, 0, false},
		{-1, 1, 1, 0, false},
	}
	for _, tt := range tests {
		got, ok := GridSize(tt.items, tt.rows, tt.levels)
		if got != tt.want || ok != tt.ok {
			t.Errorf("GridSize(%d, %d, %d) = %d, %v, want %d, %v",
				tt.items, tt.rows, tt.levels, got, ok, tt.want, tt.ok)
		}
	}
}
