// Package handle defines the opaque persistent-object reference shared by the
// array engine and its host.
//
// A handle identifies an entity, an override record or an array inside a host
// database. The engine never dereferences handles itself; it stores them,
// serializes them and hands them back to the host.
package handle

import (
	"fmt"
	"strconv"
)

// ID is an opaque reference to a persistent object. The zero value is the
// null handle.
type ID uint64

// Null is the handle that refers to nothing.
const Null ID = 0

// IsNull reports whether id refers to nothing.
func (id ID) IsNull() bool { return id == Null }

// String returns the hexadecimal form used by the tagged-text filer.
func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 16)
}

// Parse parses the hexadecimal form produced by String.
func Parse(s string) (ID, error) {
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return Null, fmt.Errorf("parse handle %q: %w", s, err)
	}
	return ID(v), nil
}
