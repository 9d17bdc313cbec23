package filer

import (
	"bufio"
	"bytes"
	stderrors "errors"
	"io"
	"math"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/matzehuels/stackarray/pkg/core/handle"
	"github.com/matzehuels/stackarray/pkg/errors"
)

type record struct {
	i int32
	d float64
	p [3]float64
	s string
	h handle.ID
}

func (r record) encode(e Encoder) error {
	e.Int32(CodeInt, r.i)
	e.Double(CodeDouble, r.d)
	e.Point(CodePoint, r.p)
	e.String(CodeClass, r.s)
	e.Handle(CodeHandle, r.h)
	return e.Err()
}

func decode(d Decoder) (record, error) {
	r := record{
		i: d.Int32(CodeInt),
		d: d.Double(CodeDouble),
		p: d.Point(CodePoint),
		s: d.String(CodeClass),
		h: d.Handle(CodeHandle),
	}
	return r, d.Err()
}

func TestRoundTrip(t *testing.T) {
	want := record{i: -42, d: math.Pi, p: [3]float64{1.5, -2, 1e-12}, s: "StackArrayItem", h: 0xbeef}

	tests := []struct {
		name string
		enc  func(*bytes.Buffer) Encoder
		dec  func(*bytes.Buffer) Decoder
	}{
		{"binary", func(b *bytes.Buffer) Encoder { return NewBinaryWriter(b, FileFiler) },
			func(b *bytes.Buffer) Decoder { return NewBinaryReader(b, FileFiler) }},
		{"text", func(b *bytes.Buffer) Encoder { return NewTextWriter(b, FileFiler) },
			func(b *bytes.Buffer) Decoder { return NewTextReader(b, FileFiler) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := want.encode(tt.enc(&buf)); err != nil {
				t.Fatalf("encode error = %v", err)
			}
			got, err := decode(tt.dec(&buf))
			if err != nil {
				t.Fatalf("decode error = %v", err)
			}
			if got != want {
				t.Errorf("decode() = %+v, want %+v", got, want)
			}
		})
	}
}

func TestBinaryLayout(t *testing.T) {
	var buf bytes.Buffer
	w := NewBinaryWriter(&buf, FileFiler)
	w.Int32(CodeInt, 1)
	w.String(CodeClass, "ab")
	w.Handle(CodeHandle, 0x0102)
	want := []byte{1, 0, 0, 0, 2, 0, 0, 0, 'a', 'b', 2, 1, 0, 0, 0, 0, 0, 0}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("bytes = %v, want %v", buf.Bytes(), want)
	}
}

func TestTextLayout(t *testing.T) {
	var buf bytes.Buffer
	w := NewTextWriter(&buf, FileFiler)
	w.Int32(CodeInt, 7)
	w.Point(CodePoint, [3]float64{1, 2, 3})
	w.Handle(CodeHandle, 0xff)
	want := " 90\n7\n 10\n1\n 20\n2\n 30\n3\n330\nff\n"
	if got := buf.String(); got != want {
		t.Errorf("text = %q, want %q", got, want)
	}
}

func TestTextCodeMismatch(t *testing.T) {
	r := NewTextReader(strings.NewReader(" 40\n1.5\n 90\n3\n"), FileFiler)
	if v := r.Int32(CodeInt); v != 0 {
		t.Errorf("Int32() = %d, want 0", v)
	}
	if !errors.Is(r.Err(), errors.ErrCodeMakeMeProxy) {
		t.Fatalf("Err() = %v, want MAKE_ME_PROXY", r.Err())
	}
	// Errors are sticky.
	if v := r.Double(CodeDouble); v != 0 {
		t.Errorf("Double() after failure = %v, want 0", v)
	}
}

func TestTruncated(t *testing.T) {
	tests := []struct {
		name string
		d    Decoder
	}{
		{"binary", NewBinaryReader(bytes.NewReader([]byte{1, 0}), FileFiler)},
		{"text", NewTextReader(strings.NewReader(" 90\n"), FileFiler)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.d.Int32(CodeInt)
			if !errors.Is(tt.d.Err(), errors.ErrCodeMakeMeProxy) {
				t.Errorf("Err() = %v, want MAKE_ME_PROXY", tt.d.Err())
			}
		})
	}
}

func TestTextReadError(t *testing.T) {
	errDisk := stderrors.New("disk gone")
	tests := []struct {
		name  string
		r     io.Reader
		cause error
	}{
		{"failing reader", io.MultiReader(strings.NewReader(" 90\n"), iotest.ErrReader(errDisk)), errDisk},
		{"line too long", strings.NewReader(" 90\n" + strings.Repeat("7", bufio.MaxScanTokenSize+1) + "\n"), bufio.ErrTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewTextReader(tt.r, FileFiler)
			if v := r.Int32(CodeInt); v != 0 {
				t.Errorf("Int32() = %d, want 0", v)
			}
			if !errors.Is(r.Err(), errors.ErrCodeMakeMeProxy) {
				t.Fatalf("Err() = %v, want MAKE_ME_PROXY", r.Err())
			}
			if !stderrors.Is(r.Err(), tt.cause) {
				t.Errorf("Err() = %v, want cause %v", r.Err(), tt.cause)
			}
		})
	}
}

func TestHandleMap(t *testing.T) {
	var buf bytes.Buffer
	w := NewBinaryWriter(&buf, IDXlateFiler)
	w.Handle(CodeHandle, 1)
	w.Handle(CodeHandle, 2)
	w.Handle(CodeHandle, handle.Null)

	r := NewBinaryReader(&buf, IDXlateFiler, WithHandleMap(map[handle.ID]handle.ID{1: 10}))
	got := []handle.ID{r.Handle(CodeHandle), r.Handle(CodeHandle), r.Handle(CodeHandle)}
	want := []handle.ID{10, 2, handle.Null}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("handle %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestKindFullFidelity(t *testing.T) {
	full := map[Kind]bool{UndoFiler: true, IDXlateFiler: true, DeepCloneFiler: true, WblockCloneFiler: true}
	for k := FileFiler; k <= WblockCloneFiler; k++ {
		if got := k.FullFidelity(); got != full[k] {
			t.Errorf("%v.FullFidelity() = %v, want %v", k, got, full[k])
		}
	}
}

func TestTextRejectsLineBreaks(t *testing.T) {
	var buf bytes.Buffer
	w := NewTextWriter(&buf, FileFiler)
	w.String(CodeClass, "a\nb")
	if !errors.Is(w.Err(), errors.ErrCodeInvalidInput) {
		t.Errorf("Err() = %v, want INVALID_INPUT", w.Err())
	}
}
