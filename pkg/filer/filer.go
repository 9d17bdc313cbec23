// Package filer implements the two persistence encodings of array state.
//
// The binary encoding is a little-endian stream of int32, float64, string
// (int32 length + bytes) and handle (uint64) fields. The tagged-text encoding
// writes the same fields as group-code/value line pairs and fails with
// ErrCodeMakeMeProxy whenever the next code is not the one the reader expects.
//
// Both encodings implement [Encoder] and [Decoder], so record layouts are
// written once: the binary filer simply ignores the group codes.
//
// Errors are sticky. After the first failure every further call is a no-op
// returning zero values and Err reports the failure, which lets record code
// read or write a run of fields and check once.
package filer

import "github.com/matzehuels/stackarray/pkg/core/handle"

// Group codes used by the tagged-text encoding.
const (
	CodeClass  = 1   // class name
	CodePoint  = 10  // point x; y and z follow at +10 and +20
	CodeDouble = 40  // doubles
	CodeInt    = 90  // 32-bit integers
	CodeHandle = 330 // handle references
)

// Kind identifies the transfer context a filer is used for.
type Kind int

// Transfer contexts.
const (
	FileFiler Kind = iota
	CopyFiler
	UndoFiler
	BagFiler
	IDXlateFiler
	PageFiler
	DeepCloneFiler
	IDFiler
	PurgeFiler
	WblockCloneFiler
)

var kindNames = map[Kind]string{
	FileFiler:        "file",
	CopyFiler:        "copy",
	UndoFiler:        "undo",
	BagFiler:         "bag",
	IDXlateFiler:     "idxlate",
	PageFiler:        "page",
	DeepCloneFiler:   "deepclone",
	IDFiler:          "id",
	PurgeFiler:       "purge",
	WblockCloneFiler: "wblockclone",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// FullFidelity reports whether k carries state that is normally recomputed on
// load: undo, id translation and deep or partial clones.
func (k Kind) FullFidelity() bool {
	switch k {
	case UndoFiler, IDXlateFiler, DeepCloneFiler, WblockCloneFiler:
		return true
	}
	return false
}

// Encoder writes fields in either encoding.
type Encoder interface {
	Kind() Kind
	Int32(code int, v int32)
	Double(code int, v float64)
	Point(code int, p [3]float64)
	String(code int, s string)
	Handle(code int, id handle.ID)
	Err() error
}

// Decoder reads fields in either encoding.
type Decoder interface {
	Kind() Kind
	Int32(code int) int32
	Double(code int) float64
	Point(code int) [3]float64
	String(code int) string
	Handle(code int) handle.ID
	Err() error
}

// Option configures a decoder.
type Option func(*options)

type options struct {
	handles map[handle.ID]handle.ID
}

// WithHandleMap translates every handle read through m. Handles missing from
// m are read unchanged. Used by id translation and clone transfers.
func WithHandleMap(m map[handle.ID]handle.ID) Option {
	return func(o *options) { o.handles = m }
}

func (o options) translate(id handle.ID) handle.ID {
	if o.handles == nil || id.IsNull() {
		return id
	}
	if to, ok := o.handles[id]; ok {
		return to
	}
	return id
}

func newOptions(opts []Option) options {
	var o options
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
