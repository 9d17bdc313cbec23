package array

import (
	"strings"

	"github.com/matzehuels/stackarray/pkg/errors"
	"github.com/matzehuels/stackarray/pkg/geom"
)

// Kind names a placement strategy.
type Kind int

// Placement strategies.
const (
	KindRectangular Kind = iota
	KindPolar
	KindPath
	KindModify
)

func (k Kind) String() string {
	switch k {
	case KindRectangular:
		return "rectangular"
	case KindPolar:
		return "polar"
	case KindPath:
		return "path"
	case KindModify:
		return "modify"
	}
	return "unknown"
}

// ParseKind parses the name of a gridded strategy.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rectangular", "rect", "grid":
		return KindRectangular, nil
	case "polar", "ring":
		return KindPolar, nil
	case "path":
		return KindPath, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "unknown array kind %q", s)
}

// NewOfKind creates an empty array of a gridded kind. Modify arrays need a
// master and record and are created with NewModify.
func NewOfKind(k Kind, opts ...Option) (*Params, error) {
	switch k {
	case KindRectangular:
		return NewRectangular(opts...), nil
	case KindPolar:
		return NewPolar(opts...), nil
	case KindPath:
		return NewPath(opts...), nil
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "cannot create a %s array without a master", k)
}

// Strategy is the placement algorithm of an array. The set is closed: it is
// one of *Rectangular, *Polar, *Path or *Modify.
type Strategy interface {
	Kind() Kind

	// prepare caches the strategy knobs from the store of p. It runs after
	// the common knobs and the frame are loaded.
	prepare(p *Params) error
}

// defaultMatrix returns the base transform of the item at loc.
func (p *Params) defaultMatrix(loc Locator) geom.Mat4 {
	switch s := p.strategy.(type) {
	case *Rectangular:
		return s.matrix(p, loc)
	case *Polar:
		return s.matrix(p, loc)
	case *Path:
		return s.matrix(p, loc)
	}
	return geom.Identity()
}
