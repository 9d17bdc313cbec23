package array

import (
	"slices"

	"github.com/matzehuels/stackarray/pkg/core/handle"
	"github.com/matzehuels/stackarray/pkg/errors"
)

type fakeHost struct {
	erased    []handle.ID
	overrides map[handle.ID][]Locator
}

func newFakeHost() *fakeHost {
	return &fakeHost{overrides: make(map[handle.ID][]Locator)}
}

func (h *fakeHost) EraseEntity(id handle.ID) error {
	h.erased = append(h.erased, id)
	return nil
}

func (h *fakeHost) RemoveOverride(record handle.ID, loc Locator) error {
	locs, ok := h.overrides[record]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "no record %s", record)
	}
	h.overrides[record] = slices.DeleteFunc(locs, func(l Locator) bool { return l == loc })
	return nil
}

func (h *fakeHost) Overrides(record handle.ID) ([]Locator, error) {
	locs, ok := h.overrides[record]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "no record %s", record)
	}
	return slices.Clone(locs), nil
}

// grid builds an evaluated rectangular array.
func grid(items, rows, levels int, opts ...Option) *Params {
	p := NewRectangular(opts...)
	p.SetItems(items)
	p.SetRows(rows)
	p.SetLevels(levels)
	p.SetItemSpacing(10)
	p.SetRowSpacing(5)
	p.SetLevelSpacing(2)
	if _, err := p.Items(); err != nil {
		panic(err)
	}
	return p
}
