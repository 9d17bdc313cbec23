package array

import (
	"slices"

	"github.com/matzehuels/stackarray/pkg/core/handle"
	"github.com/matzehuels/stackarray/pkg/core/params"
	"github.com/matzehuels/stackarray/pkg/errors"
	"github.com/matzehuels/stackarray/pkg/geom"
)

// Named parameters shared by all strategies.
const (
	ParamItems        = "Items"
	ParamItemSpacing  = "ItemSpacing"
	ParamRows         = "Rows"
	ParamRowSpacing   = "RowSpacing"
	ParamLevels       = "Levels"
	ParamLevelSpacing = "LevelSpacing"
	ParamRowElevation = "RowElevation"
	ParamBasePoint    = "BasePoint"
)

// Params is an array: its parameter store, item collection and placement
// strategy.
//
// Params is not safe for concurrent use. Callers that share an array between
// goroutines must serialize access themselves.
type Params struct {
	store    *params.Store
	strategy Strategy
	host     Host
	id       handle.ID

	items []*Item

	itemCount, rowCount, levelCount int

	rowSpacing, levelSpacing, rowElevation float64

	origin              geom.Vec
	normal              geom.Vec
	xAxis, yAxis, zAxis geom.Vec
}

// Option configures a Params.
type Option func(*Params)

// WithHost attaches the object system the array lives in.
func WithHost(h Host) Option {
	return func(p *Params) { p.host = h }
}

// WithID sets the handle of the array object.
func WithID(id handle.ID) Option {
	return func(p *Params) { p.id = id }
}

// WithStore uses an existing parameter store instead of a new one.
func WithStore(s *params.Store) Option {
	return func(p *Params) { p.store = s }
}

// New creates an empty array placed by s.
func New(s Strategy, opts ...Option) *Params {
	p := &Params{
		strategy: s,
		normal:   geom.ZAxis,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.store == nil {
		p.store = params.NewStore()
	}
	p.CalculateAxes()
	return p
}

// Store returns the parameter store.
func (p *Params) Store() *params.Store { return p.store }

// Strategy returns the placement strategy.
func (p *Params) Strategy() Strategy { return p.strategy }

// Host returns the attached host, or nil.
func (p *Params) Host() Host { return p.host }

// SetHost attaches h.
func (p *Params) SetHost(h Host) { p.host = h }

// ID returns the handle of the array object.
func (p *Params) ID() handle.ID { return p.id }

// SetID sets the handle of the array object.
func (p *Params) SetID(id handle.ID) { p.id = id }

// ItemCount returns the current number of items along the item dimension.
func (p *Params) ItemCount() int { return p.itemCount }

// RowCount returns the current number of rows.
func (p *Params) RowCount() int { return p.rowCount }

// LevelCount returns the current number of levels.
func (p *Params) LevelCount() int { return p.levelCount }

// Len returns the number of items in the collection.
func (p *Params) Len() int { return len(p.items) }

// Snapshot returns the items as of the last evaluation or load without
// recomputing them.
func (p *Params) Snapshot() []*Item { return slices.Clone(p.items) }

// Origin returns the base point resolved by the last evaluation.
func (p *Params) Origin() geom.Vec { return p.origin }

// Axes returns the base frame derived from the base normal.
func (p *Params) Axes() (x, y, z geom.Vec) { return p.xAxis, p.yAxis, p.zAxis }

// =============================================================================
// Knobs
// =============================================================================

// SetItems sets the requested item count.
func (p *Params) SetItems(n int) error { return p.store.SetInt(ParamItems, n) }

// SetRows sets the requested row count.
func (p *Params) SetRows(n int) error { return p.store.SetInt(ParamRows, n) }

// SetLevels sets the requested level count.
func (p *Params) SetLevels(n int) error { return p.store.SetInt(ParamLevels, n) }

// SetItemSpacing sets the distance between items.
func (p *Params) SetItemSpacing(d float64) error {
	return p.store.SetDouble(ParamItemSpacing, d, params.Distance)
}

// SetRowSpacing sets the distance between rows.
func (p *Params) SetRowSpacing(d float64) error {
	return p.store.SetDouble(ParamRowSpacing, d, params.Distance)
}

// SetLevelSpacing sets the distance between levels.
func (p *Params) SetLevelSpacing(d float64) error {
	return p.store.SetDouble(ParamLevelSpacing, d, params.Distance)
}

// SetRowElevation sets the height gained by each row.
func (p *Params) SetRowElevation(d float64) error {
	return p.store.SetDouble(ParamRowElevation, d, params.Distance)
}

// SetBasePoint sets the array origin.
func (p *Params) SetBasePoint(pt geom.Vec) error {
	return p.store.SetGeom(ParamBasePoint, params.PointGeom{Point: pt})
}

// BaseNormal returns the normal of the base plane.
func (p *Params) BaseNormal() geom.Vec { return p.normal }

// SetBaseNormal sets the normal of the base plane and recomputes the frame.
// A zero normal selects the world Z axis.
func (p *Params) SetBaseNormal(n geom.Vec) {
	if geom.IsZero(n) {
		n = geom.ZAxis
	}
	p.normal = n
	p.CalculateAxes()
}

// =============================================================================
// Frame and lookup
// =============================================================================

// CalculateAxes derives the base frame from the base normal. Normals along
// -Z get a fixed mirrored frame and normals along +Z the world frame; any
// other normal n gives z = n, x = Z × n and y = z × x.
func (p *Params) CalculateAxes() {
	switch {
	case geom.Codirectional(p.normal, geom.Scale(-1, geom.ZAxis)):
		p.xAxis = geom.Vec{X: -1}
		p.yAxis = geom.YAxis
		p.zAxis = geom.Vec{Z: -1}
	case geom.Codirectional(p.normal, geom.ZAxis):
		p.xAxis, p.yAxis, p.zAxis = geom.XAxis, geom.YAxis, geom.ZAxis
	default:
		p.zAxis = geom.Unit(p.normal)
		p.xAxis = geom.Unit(geom.Cross(geom.ZAxis, p.normal))
		p.yAxis = geom.Unit(geom.Cross(p.zAxis, p.xAxis))
	}
}

// CanonicalForm resolves negative components by adding the matching count,
// so -1 names the last item, row or level.
func (p *Params) CanonicalForm(loc Locator) Locator {
	if loc.Item < 0 {
		loc.Item += p.itemCount
	}
	if loc.Row < 0 {
		loc.Row += p.rowCount
	}
	if loc.Level < 0 {
		loc.Level += p.levelCount
	}
	return loc
}

// ItemAt returns the item at loc after canonicalization. Locators outside the
// grid fail with ErrCodeOutOfRange.
func (p *Params) ItemAt(loc Locator) (*Item, error) {
	if _, ok := p.strategy.(*Modify); ok {
		for _, it := range p.items {
			if it.loc == loc {
				return it, nil
			}
		}
		return nil, errors.New(errors.ErrCodeOutOfRange, "locator %s is not overridden", loc)
	}

	c := p.CanonicalForm(loc)
	if c.Item < 0 || c.Item >= p.itemCount ||
		c.Row < 0 || c.Row >= p.rowCount ||
		c.Level < 0 || c.Level >= p.levelCount {
		return nil, errors.New(errors.ErrCodeOutOfRange, "locator %s outside %dx%dx%d grid",
			loc, p.itemCount, p.rowCount, p.levelCount)
	}
	i := flatIndex(c, p.rowCount, p.levelCount)
	if i >= len(p.items) {
		return nil, errors.New(errors.ErrCodeInternal, "collection holds %d items, want more than %d", len(p.items), i)
	}
	return p.items[i], nil
}

// =============================================================================
// Evaluation
// =============================================================================

// Items evaluates the array and returns its items in flat order.
//
// The pass reads every knob from the store, resizes the collection to the
// requested item, row and level counts (in that order) and recomputes the base
// transform of every item. The returned slice is owned by the array and is
// only valid until the next call that changes the collection.
func (p *Params) Items() ([]*Item, error) {
	if m, ok := p.strategy.(*Modify); ok {
		items, err := m.items(p)
		if err != nil {
			return nil, err
		}
		p.items = items
		return p.items, nil
	}

	if err := p.load(); err != nil {
		return nil, err
	}
	if err := p.SetItemCount(p.store.Int(ParamItems, 1)); err != nil {
		return nil, err
	}
	if err := p.SetRowCount(p.store.Int(ParamRows, 1)); err != nil {
		return nil, err
	}
	if err := p.SetLevelCount(p.store.Int(ParamLevels, 1)); err != nil {
		return nil, err
	}
	for _, it := range p.items {
		it.base = p.defaultMatrix(it.loc)
	}
	return p.items, nil
}

// load refreshes the cached knobs, the frame and the strategy state.
func (p *Params) load() error {
	p.rowSpacing = p.store.Double(ParamRowSpacing, 1)
	p.levelSpacing = p.store.Double(ParamLevelSpacing, 1)
	p.rowElevation = p.store.Double(ParamRowElevation, 0)

	p.origin = geom.Origin
	pt, err := p.store.Point(ParamBasePoint)
	switch {
	case err == nil:
		p.origin = pt
	case !errors.Is(err, errors.ErrCodeNotInGroup):
		return err
	}

	p.CalculateAxes()
	return p.strategy.prepare(p)
}

// =============================================================================
// Resizing
// =============================================================================

// SetItemCount grows or shrinks the item dimension to n.
func (p *Params) SetItemCount(n int) error { return p.setCount(0, n) }

// SetRowCount grows or shrinks the row dimension to n.
func (p *Params) SetRowCount(n int) error { return p.setCount(1, n) }

// SetLevelCount grows or shrinks the level dimension to n.
func (p *Params) SetLevelCount(n int) error { return p.setCount(2, n) }

func (p *Params) setCount(dim, n int) error {
	if n < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "count must not be negative, got %d", n)
	}
	cur := [3]int{p.itemCount, p.rowCount, p.levelCount}
	ranges := [3]Range{{0, cur[0]}, {0, cur[1]}, {0, cur[2]}}
	switch {
	case n > cur[dim]:
		ranges[dim] = Range{cur[dim], n}
		return p.IncrementItemCount(ranges[0], ranges[1], ranges[2])
	case n < cur[dim]:
		ranges[dim] = Range{n, cur[dim]}
		if err := p.DecrementItemCount(ranges[0], ranges[1], ranges[2]); err != nil {
			return err
		}
		cur[dim] = n
		p.itemCount, p.rowCount, p.levelCount = cur[0], cur[1], cur[2]
	}
	return nil
}

// IncrementItemCount inserts a new item for every locator in the given
// ranges, keeping the collection in flat order. Counts grow to cover the
// ranges before the items are created so positions use the new grid shape.
// A grid larger than MaxItems is rejected with ErrCodeOutOfRange.
func (p *Params) IncrementItemCount(items, rows, levels Range) error {
	if err := checkRanges(items, rows, levels); err != nil {
		return err
	}
	counts := [3]int{max(p.itemCount, items.Hi), max(p.rowCount, rows.Hi), max(p.levelCount, levels.Hi)}
	if _, ok := GridSize(counts[0], counts[1], counts[2]); !ok {
		return errors.New(errors.ErrCodeOutOfRange, "%dx%dx%d grid exceeds %d items",
			counts[0], counts[1], counts[2], MaxItems)
	}
	p.itemCount, p.rowCount, p.levelCount = counts[0], counts[1], counts[2]

	added := make([]*Item, 0, items.Len()*rows.Len()*levels.Len())
	for i := items.Lo; i < items.Hi; i++ {
		for r := rows.Lo; r < rows.Hi; r++ {
			for l := levels.Lo; l < levels.Hi; l++ {
				loc := Locator{Item: i, Row: r, Level: l}
				added = append(added, NewItem(loc, p.defaultMatrix(loc)))
			}
		}
	}
	p.items = mergeItems(p.items, added)
	return nil
}

// mergeItems merges two collections sorted by locator.
func mergeItems(a, b []*Item) []*Item {
	out := make([]*Item, 0, len(a)+len(b))
	for len(a) > 0 && len(b) > 0 {
		if b[0].loc.Less(a[0].loc) {
			out, b = append(out, b[0]), b[1:]
		} else {
			out, a = append(out, a[0]), a[1:]
		}
	}
	out = append(out, a...)
	return append(out, b...)
}

// DecrementItemCount removes the item of every locator in the given ranges,
// highest flat index first so positions computed with the current grid shape
// stay valid. Entities of removed items are erased and their modify record
// links dropped through the host on a best-effort basis.
//
// Afterwards every dimension whose range starts above zero shrinks to that
// start. When all ranges start at zero the whole grid is gone and all counts
// become zero.
func (p *Params) DecrementItemCount(items, rows, levels Range) error {
	if err := checkRanges(items, rows, levels); err != nil {
		return err
	}
	if items.Hi > p.itemCount || rows.Hi > p.rowCount || levels.Hi > p.levelCount {
		return errors.New(errors.ErrCodeOutOfRange, "removal ranges exceed %dx%dx%d grid",
			p.itemCount, p.rowCount, p.levelCount)
	}

	for i := items.Hi - 1; i >= items.Lo; i-- {
		for r := rows.Hi - 1; r >= rows.Lo; r-- {
			for l := levels.Hi - 1; l >= levels.Lo; l-- {
				loc := Locator{Item: i, Row: r, Level: l}
				at := flatIndex(loc, p.rowCount, p.levelCount)
				if at >= len(p.items) {
					return errors.New(errors.ErrCodeInternal, "remove %s at %d beyond %d items", loc, at, len(p.items))
				}
				p.eraseEntity(p.items[at])
				p.unlinkOverride(p.items[at])
				p.items = append(p.items[:at], p.items[at+1:]...)
			}
		}
	}

	if items.Lo == 0 && rows.Lo == 0 && levels.Lo == 0 {
		p.itemCount, p.rowCount, p.levelCount = 0, 0, 0
		return nil
	}
	if items.Lo > 0 {
		p.itemCount = items.Lo
	}
	if rows.Lo > 0 {
		p.rowCount = rows.Lo
	}
	if levels.Lo > 0 {
		p.levelCount = levels.Lo
	}
	return nil
}

func checkRanges(rs ...Range) error {
	for _, r := range rs {
		if r.Lo < 0 || r.Hi < r.Lo {
			return errors.New(errors.ErrCodeInvalidInput, "invalid range [%d, %d)", r.Lo, r.Hi)
		}
	}
	return nil
}

// eraseEntity erases the entity of it, ignoring failures.
func (p *Params) eraseEntity(it *Item) {
	if it.EntityRef.IsNull() || p.host == nil {
		return
	}
	_ = p.host.EraseEntity(it.EntityRef)
	it.EntityRef = handle.Null
}

// unlinkOverride removes it from its modify record, ignoring failures.
func (p *Params) unlinkOverride(it *Item) {
	if !it.IsModified() || p.host == nil {
		return
	}
	_ = p.host.RemoveOverride(it.OverrideRef, it.loc)
	it.OverrideRef = handle.Null
}

// =============================================================================
// Item operations
// =============================================================================

// EraseItem sets the erasure flag of the item at loc. Erasing also erases the
// item's entity.
func (p *Params) EraseItem(loc Locator, erased bool) error {
	it, err := p.ItemAt(loc)
	if err != nil {
		return err
	}
	if erased && !it.EntityRef.IsNull() && p.host != nil {
		if err := p.host.EraseEntity(it.EntityRef); err != nil {
			return err
		}
		it.EntityRef = handle.Null
	}
	it.SetErased(erased)
	return nil
}

// TransformItemBy replaces the relative transform of the item at loc.
func (p *Params) TransformItemBy(loc Locator, m geom.Mat4) error {
	it, err := p.ItemAt(loc)
	if err != nil {
		return err
	}
	it.TransformBy(m)
	return nil
}

// ResetItem drops every individual override of the item at loc.
func (p *Params) ResetItem(loc Locator) error {
	it, err := p.ItemAt(loc)
	if err != nil {
		return err
	}
	return it.Reset(p.host)
}

// DeleteItem removes the item at loc from the pattern: its overrides are
// dropped, its entity erased and the item stays erased. The slot itself is
// kept so flat order is preserved.
func (p *Params) DeleteItem(loc Locator) error {
	it, err := p.ItemAt(loc)
	if err != nil {
		return err
	}
	if err := it.Reset(p.host); err != nil {
		return err
	}
	return p.EraseItem(loc, true)
}
