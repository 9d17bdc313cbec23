package host

import (
	"bytes"
	"maps"
	"slices"

	"github.com/matzehuels/stackarray/pkg/core/array"
	"github.com/matzehuels/stackarray/pkg/core/handle"
	"github.com/matzehuels/stackarray/pkg/core/params"
	"github.com/matzehuels/stackarray/pkg/errors"
	"github.com/matzehuels/stackarray/pkg/filer"
)

// DeepClone copies an array with its entities and modify records into dst,
// which may be db itself. Handles are remapped to fresh ones in dst and the
// item collection travels through the deep clone filer, so every item keeps
// its overrides. It returns the handle of the copy.
func (db *Database) DeepClone(arrayID handle.ID, dst *Database) (handle.ID, error) {
	db.mu.Lock()
	src, err := db.array(arrayID)
	if err != nil {
		db.mu.Unlock()
		return handle.Null, err
	}
	entities := db.entitiesOf(arrayID)
	var records []OverrideRecord
	for _, r := range db.records {
		if r.Array == arrayID {
			c := *r
			c.Locators = slices.Clone(r.Locators)
			records = append(records, c)
		}
	}
	db.mu.Unlock()

	var buf bytes.Buffer
	if err := src.WriteBinary(&buf, filer.DeepCloneFiler); err != nil {
		return handle.Null, err
	}
	store, err := cloneStore(src.Store())
	if err != nil {
		return handle.Null, err
	}
	dup, err := array.NewOfKind(src.Strategy().Kind(), array.WithStore(store), array.WithHost(dst))
	if err != nil {
		return handle.Null, err
	}
	dup.SetBaseNormal(src.BaseNormal())

	dst.mu.Lock()
	defer dst.mu.Unlock()

	newID := dst.alloc()
	remap := map[handle.ID]handle.ID{arrayID: newID}
	added := make([]handle.ID, 0, len(entities)+len(records))
	for _, e := range entities {
		old := e.ID
		e.ID = dst.alloc()
		remap[old] = e.ID
		e.Array = newID
		dst.entities[e.ID] = &e
		added = append(added, e.ID)
	}
	for _, r := range records {
		old := r.ID
		r.ID = dst.alloc()
		remap[old] = r.ID
		r.Array = newID
		dst.records[r.ID] = &r
		added = append(added, r.ID)
	}

	dup.SetID(newID)
	if err := dup.ReadBinary(&buf, filer.DeepCloneFiler, filer.WithHandleMap(remap)); err != nil {
		for _, id := range added {
			delete(dst.entities, id)
			delete(dst.records, id)
		}
		return handle.Null, err
	}
	dst.arrays[newID] = dup
	return newID, nil
}

// cloneStore copies a store. Stores owned by an Action get a copy of the
// action so expressions keep evaluating in the clone.
func cloneStore(s *params.Store) (*params.Store, error) {
	out := params.NewStore()
	if a, ok := s.Owner().(*Action); ok {
		if err := out.SetOwner(a.clone()); err != nil {
			return nil, err
		}
		return out, nil
	}
	if err := s.CopyTo(out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "copy parameters")
	}
	return out, nil
}

func (a *Action) clone() *Action {
	c := NewAction()
	for name, v := range a.values {
		cp := *v
		c.values[name] = &cp
	}
	maps.Copy(c.points, a.points)
	for name, e := range a.edges {
		c.edges[name] = e.Copy()
	}
	return c
}
