// Package array implements parametric arrays: repeated copies of a source
// placed on a rectangular grid, a polar ring or along a path.
//
// # Model
//
// An array is a [Params] value. It owns a [params.Store] holding every
// placement knob (counts, spacings, angles, the base point, the path) and a
// collection of [Item] values, one per [Locator]. Items are stored in flat
// order: levels vary fastest and items slowest, so the item at (i, r, l) sits
// at index l + r*levels + i*levels*rows.
//
// # Evaluation
//
// [Params.Items] is the single evaluation pass. It reads the knobs from the
// store, derives the base frame, resizes the collection to the requested
// counts and recomputes the base transform of every item:
//
//	a := array.NewRectangular()
//	a.SetItems(3)
//	a.SetItemSpacing(10)
//	items, err := a.Items()
//
// Resizing only inserts or removes the locators that changed, so erasure,
// individual transforms and modify links of surviving items are kept.
//
// # Strategies
//
// The placement algorithm is one of [Rectangular], [Polar], [Path] or
// [Modify]. A Modify array has no grid of its own; it exposes clones of the
// master items listed by a modify record in the [Host].
//
// # Persistence
//
// [Params.Encode] and [Params.Decode] write the item collection with any
// [filer.Encoder]; WriteBinary, ReadBinary, WriteText and ReadText are
// shortcuts for the two encodings.
package array
