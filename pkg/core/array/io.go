package array

import (
	"io"

	"github.com/matzehuels/stackarray/pkg/errors"
	"github.com/matzehuels/stackarray/pkg/filer"
	"github.com/matzehuels/stackarray/pkg/geom"
)

// ItemClass is the class name written ahead of a non-empty item collection.
const ItemClass = "StackArrayItem"

const recordVersion = 0

// Item record flags.
const (
	FlagErased                   = 1 << 0
	FlagRelativeTransformPresent = 1 << 1
	FlagDefaultTransformPresent  = 1 << 2
	FlagItemPresent              = 1 << 3
	FlagModified                 = 1 << 4
)

func (it *Item) flags() int32 {
	var f int32
	if it.erased {
		f |= FlagErased
	} else {
		f |= FlagItemPresent
	}
	if it.HasRelativeTransform() {
		f |= FlagRelativeTransformPresent
	}
	if !it.base.IsTranslationOnly() {
		f |= FlagDefaultTransformPresent
	}
	if it.IsModified() {
		f |= FlagModified
	}
	return f
}

// Encode writes the item record.
func (it *Item) Encode(e filer.Encoder) {
	f := it.flags()
	e.Int32(filer.CodeInt, recordVersion)
	e.Int32(filer.CodeInt, int32(it.loc.Item))
	e.Int32(filer.CodeInt, int32(it.loc.Row))
	e.Int32(filer.CodeInt, int32(it.loc.Level))
	e.Int32(filer.CodeInt, f)
	if f&FlagDefaultTransformPresent != 0 {
		writeMatrix(e, it.base)
	} else {
		t := it.base.TranslationPart()
		e.Point(filer.CodePoint, [3]float64{t.X, t.Y, t.Z})
	}
	if f&FlagRelativeTransformPresent != 0 {
		writeMatrix(e, it.relative)
	}
	if f&FlagErased == 0 {
		e.Handle(filer.CodeHandle, it.EntityRef)
	}
	if f&FlagModified != 0 {
		e.Handle(filer.CodeHandle, it.OverrideRef)
	}
}

// DecodeItem reads one item record.
func DecodeItem(d filer.Decoder) (*Item, error) {
	if v := d.Int32(filer.CodeInt); d.Err() == nil && v != recordVersion {
		return nil, errors.New(errors.ErrCodeMakeMeProxy, "unsupported item record version %d", v)
	}
	loc := Locator{
		Item:  int(d.Int32(filer.CodeInt)),
		Row:   int(d.Int32(filer.CodeInt)),
		Level: int(d.Int32(filer.CodeInt)),
	}
	f := d.Int32(filer.CodeInt)

	it := NewItem(loc, geom.Identity())
	if f&FlagDefaultTransformPresent != 0 {
		it.base = readMatrix(d)
	} else {
		p := d.Point(filer.CodePoint)
		it.base = geom.Translation(geom.Vec{X: p[0], Y: p[1], Z: p[2]})
	}
	if f&FlagRelativeTransformPresent != 0 {
		it.relative = readMatrix(d)
	}
	it.erased = f&FlagErased != 0
	if !it.erased {
		it.EntityRef = d.Handle(filer.CodeHandle)
	}
	if f&FlagModified != 0 {
		it.OverrideRef = d.Handle(filer.CodeHandle)
	}
	if err := d.Err(); err != nil {
		return nil, err
	}
	return it, nil
}

func writeMatrix(e filer.Encoder, m geom.Mat4) {
	for _, v := range m.Elements() {
		e.Double(filer.CodeDouble, v)
	}
}

func readMatrix(d filer.Decoder) geom.Mat4 {
	var el [16]float64
	for i := range el {
		el[i] = d.Double(filer.CodeDouble)
	}
	return geom.FromElements(el)
}

// Encode writes the item collection. Undo transfers append the array handle;
// full fidelity transfers append the item, row and level counts.
func (p *Params) Encode(e filer.Encoder) error {
	writeItems(e, p.items)
	if e.Kind() == filer.UndoFiler {
		e.Handle(filer.CodeHandle, p.id)
	}
	if e.Kind().FullFidelity() {
		e.Int32(filer.CodeInt, int32(p.itemCount))
		e.Int32(filer.CodeInt, int32(p.rowCount))
		e.Int32(filer.CodeInt, int32(p.levelCount))
	}
	return e.Err()
}

func writeItems(e filer.Encoder, items []*Item) {
	e.Int32(filer.CodeInt, recordVersion)
	e.Int32(filer.CodeInt, int32(len(items)))
	if len(items) > 0 {
		e.String(filer.CodeClass, ItemClass)
		for _, it := range items {
			it.Encode(e)
		}
	}
}

// EncodeItems writes items as a plain collection, without the trailing
// handle or counts of undo and full fidelity transfers.
func EncodeItems(e filer.Encoder, items []*Item) error {
	writeItems(e, items)
	return e.Err()
}

// DecodeItems reads a collection that is not attached to an array. Counts of
// full fidelity transfers are checked against the items.
func DecodeItems(d filer.Decoder) ([]*Item, error) {
	var p Params
	return p.decode(d)
}

// Decode replaces the item collection with the one read from d. The
// collection is cleared first and stays empty when the record is invalid.
// Plain loads take the counts from the named parameters, see ComposeForLoad.
func (p *Params) Decode(d filer.Decoder) error {
	p.items = nil
	items, err := p.decode(d)
	if err != nil {
		return err
	}
	p.items = items
	if !d.Kind().FullFidelity() {
		if err := p.ComposeForLoad(); err != nil {
			p.items = nil
			return err
		}
	}
	return nil
}

func (p *Params) decode(d filer.Decoder) ([]*Item, error) {
	if v := d.Int32(filer.CodeInt); d.Err() == nil && v != recordVersion {
		return nil, errors.New(errors.ErrCodeMakeMeProxy, "unsupported collection version %d", v)
	}
	n := int(d.Int32(filer.CodeInt))
	if err := d.Err(); err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, errors.New(errors.ErrCodeMakeMeProxy, "negative item count %d", n)
	}

	var items []*Item
	if n > 0 {
		if class := d.String(filer.CodeClass); d.Err() == nil && class != ItemClass {
			return nil, errors.New(errors.ErrCodeMakeMeProxy, "unexpected item class %q", class)
		}
		items = make([]*Item, 0, min(n, 1<<16))
		for i := 0; i < n; i++ {
			it, err := DecodeItem(d)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeMakeMeProxy, err, "read item %d", i)
			}
			items = append(items, it)
		}
	}

	if d.Kind() == filer.UndoFiler {
		id := d.Handle(filer.CodeHandle)
		if d.Err() == nil && p.id.IsNull() {
			p.id = id
		}
	}
	if d.Kind().FullFidelity() {
		counts := [3]int{
			int(d.Int32(filer.CodeInt)),
			int(d.Int32(filer.CodeInt)),
			int(d.Int32(filer.CodeInt)),
		}
		if err := d.Err(); err != nil {
			return nil, err
		}
		if err := p.checkShape(items, counts); err != nil {
			return nil, err
		}
		p.itemCount, p.rowCount, p.levelCount = counts[0], counts[1], counts[2]
	}
	if err := d.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// ComposeForLoad restores the grid counts after a plain load from the
// "Items", "Rows" and "Levels" parameters and checks them against the loaded
// collection.
func (p *Params) ComposeForLoad() error {
	if _, ok := p.strategy.(*Modify); ok {
		return nil
	}
	counts := [3]int{
		p.store.Int(ParamItems, 1),
		p.store.Int(ParamRows, 1),
		p.store.Int(ParamLevels, 1),
	}
	if len(p.items) == 0 {
		p.itemCount, p.rowCount, p.levelCount = 0, 0, 0
		return nil
	}
	if err := p.checkShape(p.items, counts); err != nil {
		return err
	}
	p.itemCount, p.rowCount, p.levelCount = counts[0], counts[1], counts[2]
	return nil
}

// checkShape verifies that items fill the given grid in flat order.
func (p *Params) checkShape(items []*Item, counts [3]int) error {
	if _, ok := p.strategy.(*Modify); ok {
		return nil
	}
	if counts[0] < 0 || counts[1] < 0 || counts[2] < 0 {
		return errors.New(errors.ErrCodeMakeMeProxy, "negative grid counts %v", counts)
	}
	want, ok := GridSize(counts[0], counts[1], counts[2])
	if !ok {
		return errors.New(errors.ErrCodeMakeMeProxy, "%dx%dx%d grid exceeds %d items",
			counts[0], counts[1], counts[2], MaxItems)
	}
	if want != len(items) {
		return errors.New(errors.ErrCodeMakeMeProxy, "%d items do not fill a %dx%dx%d grid",
			len(items), counts[0], counts[1], counts[2])
	}
	for i, it := range items {
		if flatIndex(it.loc, counts[1], counts[2]) != i {
			return errors.New(errors.ErrCodeMakeMeProxy, "item %s out of order at %d", it.loc, i)
		}
	}
	return nil
}

// WriteBinary writes the collection in the binary encoding.
func (p *Params) WriteBinary(w io.Writer, kind filer.Kind) error {
	return p.Encode(filer.NewBinaryWriter(w, kind))
}

// ReadBinary reads the collection from the binary encoding.
func (p *Params) ReadBinary(r io.Reader, kind filer.Kind, opts ...filer.Option) error {
	return p.Decode(filer.NewBinaryReader(r, kind, opts...))
}

// WriteText writes the collection in the tagged-text encoding.
func (p *Params) WriteText(w io.Writer, kind filer.Kind) error {
	return p.Encode(filer.NewTextWriter(w, kind))
}

// ReadText reads the collection from the tagged-text encoding.
func (p *Params) ReadText(r io.Reader, kind filer.Kind, opts ...filer.Option) error {
	return p.Decode(filer.NewTextReader(r, kind, opts...))
}
