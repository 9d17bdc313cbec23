package array

import (
	"cmp"
	"fmt"
)

// Locator identifies one position in an array: item (column or ring slot),
// row and level. Locators are comparable values ordered lexicographically by
// item, then row, then level.
type Locator struct {
	Item  int
	Row   int
	Level int
}

// NewLocator returns the locator (item, row, level).
func NewLocator(item, row, level int) Locator {
	return Locator{Item: item, Row: row, Level: level}
}

// At returns component i: 0 is the item, 1 the row and 2 the level.
// It panics for any other index.
func (l Locator) At(i int) int {
	switch i {
	case 0:
		return l.Item
	case 1:
		return l.Row
	case 2:
		return l.Level
	}
	panic(fmt.Sprintf("array: locator component %d out of range", i))
}

// Compare returns -1, 0 or +1 depending on whether l sorts before, equal to
// or after o.
func (l Locator) Compare(o Locator) int {
	if c := cmp.Compare(l.Item, o.Item); c != 0 {
		return c
	}
	if c := cmp.Compare(l.Row, o.Row); c != 0 {
		return c
	}
	return cmp.Compare(l.Level, o.Level)
}

// Less reports whether l sorts before o.
func (l Locator) Less(o Locator) bool { return l.Compare(o) < 0 }

// Add returns the component-wise sum of l and o.
func (l Locator) Add(o Locator) Locator {
	return Locator{Item: l.Item + o.Item, Row: l.Row + o.Row, Level: l.Level + o.Level}
}

// Sub returns the component-wise difference of l and o.
func (l Locator) Sub(o Locator) Locator {
	return Locator{Item: l.Item - o.Item, Row: l.Row - o.Row, Level: l.Level - o.Level}
}

func (l Locator) String() string {
	return fmt.Sprintf("(%d,%d,%d)", l.Item, l.Row, l.Level)
}

// Range is a half-open index range [Lo, Hi) along one array dimension.
type Range struct {
	Lo, Hi int
}

// Len returns the number of indices in r.
func (r Range) Len() int { return max(r.Hi-r.Lo, 0) }

// Empty reports whether r holds no index.
func (r Range) Empty() bool { return r.Hi <= r.Lo }

// MaxItems bounds the number of items of one grid.
const MaxItems = 1 << 17

// GridSize returns items*rows*levels. It reports false when a count is
// negative or the product exceeds MaxItems.
func GridSize(items, rows, levels int) (int, bool) {
	n := 1
	for _, c := range [3]int{items, rows, levels} {
		switch {
		case c < 0:
			return 0, false
		case c == 0:
			return 0, true
		case n > MaxItems/c:
			return 0, false
		}
		n *= c
	}
	return n, true
}

// flatIndex is the storage position of loc in a collection with the given
// row and level counts. Levels vary fastest and items slowest. Every lookup,
// insertion and removal goes through it.
func flatIndex(loc Locator, rows, levels int) int {
	return loc.Level + loc.Row*levels + loc.Item*levels*rows
}
