package array

import (
	"github.com/matzehuels/stackarray/pkg/core/handle"
	"github.com/matzehuels/stackarray/pkg/errors"
)

// Modify is the strategy of a modify record: a sparse set of master items
// that were edited individually. It has no grid; its items are clones of the
// master items listed by the record, retargeted to the record.
type Modify struct {
	Record handle.ID
	Master *Params
}

// NewModify creates the parameters of a modify record over master.
func NewModify(record handle.ID, master *Params, opts ...Option) *Params {
	return New(&Modify{Record: record, Master: master}, opts...)
}

func (*Modify) Kind() Kind { return KindModify }

func (*Modify) prepare(*Params) error { return nil }

func (m *Modify) items(p *Params) ([]*Item, error) {
	if m.Master == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "modify record %s has no master array", m.Record)
	}
	h := p.host
	if h == nil {
		h = m.Master.host
	}
	if h == nil {
		return nil, errors.New(errors.ErrCodeInternal, "modify record %s has no host", m.Record)
	}
	locs, err := h.Overrides(m.Record)
	if err != nil {
		return nil, err
	}
	items := make([]*Item, 0, len(locs))
	for _, loc := range locs {
		src, err := m.Master.ItemAt(loc)
		if err != nil {
			return nil, err
		}
		it := src.Clone()
		it.OverrideRef = m.Record
		items = append(items, it)
	}
	return items, nil
}
