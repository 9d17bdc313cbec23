package array

import (
	"github.com/matzehuels/stackarray/pkg/core/handle"
	"github.com/matzehuels/stackarray/pkg/errors"
	"github.com/matzehuels/stackarray/pkg/geom"
)

// Item is one placed copy of the array source.
//
// The base transform is recomputed by the placement strategy on every
// evaluation. The relative transform is the user's individual edit and
// survives re-evaluation; it is identity when the item was never edited.
type Item struct {
	loc      Locator
	base     geom.Mat4
	relative geom.Mat4
	erased   bool

	// EntityRef is the host entity instantiating this item. Null while the
	// item is erased or not yet instantiated.
	EntityRef handle.ID

	// OverrideRef is the modify record overriding this item, if any.
	OverrideRef handle.ID
}

// NewItem creates an item at loc with the given base transform.
func NewItem(loc Locator, base geom.Mat4) *Item {
	return &Item{loc: loc, base: base, relative: geom.Identity()}
}

// Locator returns the item's position in the array.
func (it *Item) Locator() Locator { return it.loc }

// DefaultTransform returns the placement computed by the strategy.
func (it *Item) DefaultTransform() geom.Mat4 { return it.base }

// RelativeTransform returns the individual edit, identity if there is none.
func (it *Item) RelativeTransform() geom.Mat4 { return it.relative }

// Transform returns the item's placement. Without compounding it is the base
// transform. Compounded, the relative edit is applied in the item's own frame
// when the base is a pure translation and after the base otherwise.
func (it *Item) Transform(compounded bool) geom.Mat4 {
	if !compounded || !it.HasRelativeTransform() {
		return it.base
	}
	if it.base.IsTranslationOnly() {
		v := it.base.TranslationPart()
		return geom.Translation(v).
			Mul(it.relative).
			Mul(geom.Translation(geom.Scale(-1, v))).
			Mul(it.base)
	}
	return it.base.Mul(it.relative)
}

// TransformBy replaces the relative transform with m. Edits do not
// accumulate.
func (it *Item) TransformBy(m geom.Mat4) { it.relative = m }

// SetDefaultTransform replaces the base transform.
func (it *Item) SetDefaultTransform(m geom.Mat4) { it.base = m }

// HasRelativeTransform reports whether the item carries an individual edit.
func (it *Item) HasRelativeTransform() bool { return !it.relative.IsIdentity() }

// SetErased sets the erasure flag.
func (it *Item) SetErased(erased bool) { it.erased = erased }

// IsErased reports whether the item is erased.
func (it *Item) IsErased() bool { return it.erased }

// IsModified reports whether a modify record overrides the item.
func (it *Item) IsModified() bool { return !it.OverrideRef.IsNull() }

// Reset drops every individual override: erasure, the relative transform and
// the link to a modify record. The record side of the link is removed through
// h first; if that fails the item is left unchanged.
func (it *Item) Reset(h Host) error {
	if it.IsModified() {
		if h == nil {
			return errors.New(errors.ErrCodeInternal, "item %s is modified but no host is attached", it.loc)
		}
		if err := h.RemoveOverride(it.OverrideRef, it.loc); err != nil {
			return err
		}
		it.OverrideRef = handle.Null
	}
	it.erased = false
	it.relative = geom.Identity()
	return nil
}

// Clone returns an independent copy of the item.
func (it *Item) Clone() *Item {
	c := *it
	return &c
}

// Equal reports whether it and o have the same locator, flags and handles
// and matrices equal within tol.
func (it *Item) Equal(o *Item, tol float64) bool {
	return it.loc == o.loc &&
		it.erased == o.erased &&
		it.EntityRef == o.EntityRef &&
		it.OverrideRef == o.OverrideRef &&
		it.base.Equal(o.base, tol) &&
		it.relative.Equal(o.relative, tol)
}
