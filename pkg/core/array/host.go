package array

import "github.com/matzehuels/stackarray/pkg/core/handle"

// Host is the object system an array lives in. It owns the entities that
// instantiate items and the modify records that override them.
type Host interface {
	// EraseEntity erases the entity with the given handle.
	EraseEntity(id handle.ID) error

	// RemoveOverride removes loc from the override list of a modify record.
	RemoveOverride(record handle.ID, loc Locator) error

	// Overrides returns the locators overridden by a modify record.
	Overrides(record handle.ID) ([]Locator, error)
}
