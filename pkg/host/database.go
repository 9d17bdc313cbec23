// Package host is an in-memory object system for arrays.
//
// A [Database] is an arena that owns arrays, the entities instantiating their
// items and the modify records overriding them. Every object is addressed by
// a [handle.ID]; links between objects are handles into the arena, never
// pointers, so unlinking always goes through the database and updates both
// sides.
//
// The database implements [array.Host]. Its maps are guarded by a mutex so
// one database can serve concurrent requests, but an individual array is not
// safe for concurrent evaluation.
package host

import (
	"cmp"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/matzehuels/stackarray/pkg/core/array"
	"github.com/matzehuels/stackarray/pkg/core/handle"
	"github.com/matzehuels/stackarray/pkg/errors"
	"github.com/matzehuels/stackarray/pkg/geom"
)

// Entity is the instantiated copy controlled by one array item.
type Entity struct {
	ID        handle.ID
	Array     handle.ID
	Locator   array.Locator
	Transform geom.Mat4
}

// OverrideRecord lists the items of an array that were edited individually.
type OverrideRecord struct {
	ID       handle.ID
	Array    handle.ID
	Locators []array.Locator
}

// Database is the arena owning arrays, entities and modify records.
type Database struct {
	mu       sync.Mutex
	id       uuid.UUID
	next     handle.ID
	arrays   map[handle.ID]*array.Params
	entities map[handle.ID]*Entity
	records  map[handle.ID]*OverrideRecord
}

// NewDatabase creates an empty database with a random identity.
func NewDatabase() *Database {
	return &Database{
		id:       uuid.New(),
		arrays:   make(map[handle.ID]*array.Params),
		entities: make(map[handle.ID]*Entity),
		records:  make(map[handle.ID]*OverrideRecord),
	}
}

// ID returns the database identity.
func (db *Database) ID() uuid.UUID { return db.id }

func (db *Database) alloc() handle.ID {
	db.next++
	return db.next
}

// AddArray registers p, assigns its handle and attaches the database as its
// host.
func (db *Database) AddArray(p *array.Params) handle.ID {
	db.mu.Lock()
	defer db.mu.Unlock()
	id := db.alloc()
	p.SetID(id)
	p.SetHost(db)
	db.arrays[id] = p
	return id
}

// Array returns the array with the given handle.
func (db *Database) Array(id handle.ID) (*array.Params, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.array(id)
}

func (db *Database) array(id handle.ID) (*array.Params, error) {
	p, ok := db.arrays[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "array %s not found", id)
	}
	return p, nil
}

// Arrays returns the handles of all arrays in ascending order.
func (db *Database) Arrays() []handle.ID {
	db.mu.Lock()
	defer db.mu.Unlock()
	ids := make([]handle.ID, 0, len(db.arrays))
	for id := range db.arrays {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Evaluate recomputes an array and brings its entities in line: every
// visible item gets an entity carrying its compounded transform and erased
// items lose theirs.
func (db *Database) Evaluate(id handle.ID) ([]*array.Item, error) {
	p, err := db.Array(id)
	if err != nil {
		return nil, err
	}
	// Items calls back into the database while shrinking, so the lock is
	// only taken afterwards.
	items, err := p.Items()
	if err != nil {
		return nil, err
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	for _, it := range items {
		if it.IsErased() {
			if !it.EntityRef.IsNull() {
				delete(db.entities, it.EntityRef)
				it.EntityRef = handle.Null
			}
			continue
		}
		if e, ok := db.entities[it.EntityRef]; ok {
			e.Locator = it.Locator()
			e.Transform = it.Transform(true)
			continue
		}
		eid := db.alloc()
		db.entities[eid] = &Entity{ID: eid, Array: id, Locator: it.Locator(), Transform: it.Transform(true)}
		it.EntityRef = eid
	}
	return items, nil
}

// Entity returns a copy of the entity with the given handle.
func (db *Database) Entity(id handle.ID) (Entity, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	e, ok := db.entities[id]
	if !ok {
		return Entity{}, errors.New(errors.ErrCodeNotFound, "entity %s not found", id)
	}
	return *e, nil
}

// Entities returns copies of the entities of an array ordered by handle.
func (db *Database) Entities(arrayID handle.ID) []Entity {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.entitiesOf(arrayID)
}

func (db *Database) entitiesOf(arrayID handle.ID) []Entity {
	var out []Entity
	for _, e := range db.entities {
		if e.Array == arrayID {
			out = append(out, *e)
		}
	}
	slices.SortFunc(out, func(a, b Entity) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// EraseEntity implements array.Host.
func (db *Database) EraseEntity(id handle.ID) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.entities[id]; !ok {
		return errors.New(errors.ErrCodeNotFound, "entity %s not found", id)
	}
	delete(db.entities, id)
	return nil
}

// =============================================================================
// Modify records
// =============================================================================

// Modify creates a modify record overriding the items of an array at locs.
// Items already overridden by another record move to the new one. The array
// must have been evaluated.
func (db *Database) Modify(arrayID handle.ID, locs ...array.Locator) (handle.ID, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	p, err := db.array(arrayID)
	if err != nil {
		return handle.Null, err
	}

	items := make([]*array.Item, 0, len(locs))
	for _, loc := range locs {
		it, err := p.ItemAt(loc)
		if err != nil {
			return handle.Null, err
		}
		if !slices.Contains(items, it) {
			items = append(items, it)
		}
	}

	rec := &OverrideRecord{ID: db.alloc(), Array: arrayID}
	for _, it := range items {
		if it.IsModified() {
			if err := db.removeOverride(it.OverrideRef, it.Locator()); err != nil {
				return handle.Null, err
			}
		}
		it.OverrideRef = rec.ID
		rec.Locators = append(rec.Locators, it.Locator())
	}
	db.records[rec.ID] = rec
	return rec.ID, nil
}

// Record returns a copy of a modify record.
func (db *Database) Record(id handle.ID) (OverrideRecord, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	r, ok := db.records[id]
	if !ok {
		return OverrideRecord{}, errors.New(errors.ErrCodeNotFound, "modify record %s not found", id)
	}
	c := *r
	c.Locators = slices.Clone(r.Locators)
	return c, nil
}

// ModifyParams returns the sparse array exposing the items of a modify
// record.
func (db *Database) ModifyParams(record handle.ID) (*array.Params, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	r, ok := db.records[record]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "modify record %s not found", record)
	}
	master, err := db.array(r.Array)
	if err != nil {
		return nil, err
	}
	return array.NewModify(record, master, array.WithHost(db), array.WithID(record)), nil
}

// RemoveOverride implements array.Host. A record left empty is deleted.
func (db *Database) RemoveOverride(record handle.ID, loc array.Locator) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.removeOverride(record, loc)
}

func (db *Database) removeOverride(record handle.ID, loc array.Locator) error {
	r, ok := db.records[record]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "modify record %s not found", record)
	}
	i := slices.Index(r.Locators, loc)
	if i < 0 {
		return errors.New(errors.ErrCodeNotFound, "modify record %s does not override %s", record, loc)
	}
	r.Locators = slices.Delete(r.Locators, i, i+1)
	if len(r.Locators) == 0 {
		delete(db.records, record)
	}
	return nil
}

// Overrides implements array.Host.
func (db *Database) Overrides(record handle.ID) ([]array.Locator, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	r, ok := db.records[record]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "modify record %s not found", record)
	}
	return slices.Clone(r.Locators), nil
}
