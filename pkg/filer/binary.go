package filer

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/matzehuels/stackarray/pkg/core/handle"
	"github.com/matzehuels/stackarray/pkg/errors"
)

// maxString bounds string lengths read from a binary stream.
const maxString = 1 << 16

// BinaryWriter is the binary stream Encoder.
type BinaryWriter struct {
	w    io.Writer
	kind Kind
	err  error
	buf  [8]byte
}

// NewBinaryWriter creates a binary encoder for the given transfer context.
func NewBinaryWriter(w io.Writer, kind Kind) *BinaryWriter {
	return &BinaryWriter{w: w, kind: kind}
}

func (w *BinaryWriter) Kind() Kind { return w.kind }
func (w *BinaryWriter) Err() error { return w.err }

func (w *BinaryWriter) write(b []byte) {
	if w.err != nil {
		return
	}
	_, w.err = w.w.Write(b)
}

func (w *BinaryWriter) Int32(_ int, v int32) {
	binary.LittleEndian.PutUint32(w.buf[:4], uint32(v))
	w.write(w.buf[:4])
}

func (w *BinaryWriter) Double(_ int, v float64) {
	binary.LittleEndian.PutUint64(w.buf[:], math.Float64bits(v))
	w.write(w.buf[:])
}

func (w *BinaryWriter) Point(code int, p [3]float64) {
	for _, c := range p {
		w.Double(code, c)
	}
}

func (w *BinaryWriter) String(code int, s string) {
	w.Int32(code, int32(len(s)))
	w.write([]byte(s))
}

func (w *BinaryWriter) Handle(_ int, id handle.ID) {
	binary.LittleEndian.PutUint64(w.buf[:], uint64(id))
	w.write(w.buf[:])
}

// BinaryReader is the binary stream Decoder.
type BinaryReader struct {
	r    io.Reader
	kind Kind
	opts options
	err  error
	buf  [8]byte
}

// NewBinaryReader creates a binary decoder for the given transfer context.
func NewBinaryReader(r io.Reader, kind Kind, opts ...Option) *BinaryReader {
	return &BinaryReader{r: r, kind: kind, opts: newOptions(opts)}
}

func (r *BinaryReader) Kind() Kind { return r.kind }
func (r *BinaryReader) Err() error { return r.err }

func (r *BinaryReader) read(n int) []byte {
	if r.err != nil {
		return nil
	}
	if _, err := io.ReadFull(r.r, r.buf[:n]); err != nil {
		r.err = errors.Wrap(errors.ErrCodeMakeMeProxy, err, "truncated binary record")
		return nil
	}
	return r.buf[:n]
}

func (r *BinaryReader) Int32(_ int) int32 {
	b := r.read(4)
	if b == nil {
		return 0
	}
	return int32(binary.LittleEndian.Uint32(b))
}

func (r *BinaryReader) Double(_ int) float64 {
	b := r.read(8)
	if b == nil {
		return 0
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b))
}

func (r *BinaryReader) Point(code int) [3]float64 {
	return [3]float64{r.Double(code), r.Double(code), r.Double(code)}
}

func (r *BinaryReader) String(code int) string {
	n := r.Int32(code)
	if r.err != nil {
		return ""
	}
	if n < 0 || n > maxString {
		r.err = errors.New(errors.ErrCodeMakeMeProxy, "invalid string length %d", n)
		return ""
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r.r, b); err != nil {
		r.err = errors.Wrap(errors.ErrCodeMakeMeProxy, err, "truncated string")
		return ""
	}
	return string(b)
}

func (r *BinaryReader) Handle(_ int) handle.ID {
	b := r.read(8)
	if b == nil {
		return handle.Null
	}
	return r.opts.translate(handle.ID(binary.LittleEndian.Uint64(b)))
}
