package array

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/matzehuels/stackarray/pkg/core/handle"
	"github.com/matzehuels/stackarray/pkg/errors"
	"github.com/matzehuels/stackarray/pkg/filer"
	"github.com/matzehuels/stackarray/pkg/geom"
)

// sample builds a polar array with one item of every flavour: rotated,
// erased, individually transformed and modified.
func sample(t *testing.T) *Params {
	t.Helper()
	p := NewPolar(WithID(0xabc))
	p.SetItems(4)
	p.SetRows(2)
	p.SetRadius(3)
	items, err := p.Items()
	if err != nil {
		t.Fatal(err)
	}
	for i, it := range items {
		it.EntityRef = handle.ID(0x100 + i)
	}
	items[1].SetErased(true)
	items[1].EntityRef = handle.Null
	items[2].TransformBy(geom.Rotation(0.3, geom.XAxis, geom.Vec{X: 1}))
	items[3].OverrideRef = 0x500
	return p
}

func equalItems(t *testing.T, got, want *Params) {
	t.Helper()
	if got.Len() != want.Len() {
		t.Fatalf("Len() = %d, want %d", got.Len(), want.Len())
	}
	for i := range want.items {
		if !got.items[i].Equal(want.items[i], 1e-12) {
			t.Errorf("item %d = %+v, want %+v", i, got.items[i], want.items[i])
		}
	}
}

func TestRoundTrip(t *testing.T) {
	type codec struct {
		name  string
		write func(p *Params, buf *bytes.Buffer, k filer.Kind) error
		read  func(p *Params, buf *bytes.Buffer, k filer.Kind) error
	}
	codecs := []codec{
		{
			"binary",
			func(p *Params, buf *bytes.Buffer, k filer.Kind) error { return p.WriteBinary(buf, k) },
			func(p *Params, buf *bytes.Buffer, k filer.Kind) error { return p.ReadBinary(buf, k) },
		},
		{
			"text",
			func(p *Params, buf *bytes.Buffer, k filer.Kind) error { return p.WriteText(buf, k) },
			func(p *Params, buf *bytes.Buffer, k filer.Kind) error { return p.ReadText(buf, k) },
		},
	}
	kinds := []filer.Kind{filer.FileFiler, filer.UndoFiler, filer.DeepCloneFiler, filer.CopyFiler}

	for _, c := range codecs {
		for _, k := range kinds {
			t.Run(c.name+"/"+k.String(), func(t *testing.T) {
				src := sample(t)
				var buf bytes.Buffer
				if err := c.write(src, &buf, k); err != nil {
					t.Fatalf("write error = %v", err)
				}

				dst := NewPolar()
				if !k.FullFidelity() {
					dst.SetItems(4)
					dst.SetRows(2)
				}
				if err := c.read(dst, &buf, k); err != nil {
					t.Fatalf("read error = %v", err)
				}
				equalItems(t, dst, src)
				if dst.ItemCount() != 4 || dst.RowCount() != 2 || dst.LevelCount() != 1 {
					t.Errorf("counts = %d/%d/%d, want 4/2/1", dst.ItemCount(), dst.RowCount(), dst.LevelCount())
				}
				if k == filer.UndoFiler && dst.ID() != src.ID() {
					t.Errorf("ID() = %v, want %v", dst.ID(), src.ID())
				}
				if buf.Len() != 0 {
					t.Errorf("%d bytes left unread", buf.Len())
				}
			})
		}
	}
}

func TestEmptyCollection(t *testing.T) {
	var buf bytes.Buffer
	if err := NewRectangular().WriteBinary(&buf, filer.FileFiler); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 8 {
		t.Errorf("empty collection is %d bytes, want 8", buf.Len())
	}
	dst := NewRectangular()
	if err := dst.ReadBinary(&buf, filer.FileFiler); err != nil {
		t.Fatalf("ReadBinary() error = %v", err)
	}
	if dst.Len() != 0 {
		t.Errorf("Len() = %d, want 0", dst.Len())
	}
}

func TestBinaryFlags(t *testing.T) {
	p := grid(1, 1, 1)
	var buf bytes.Buffer
	if err := p.WriteBinary(&buf, filer.FileFiler); err != nil {
		t.Fatal(err)
	}
	b := buf.Bytes()
	// version, count, class name, then the item: version, locator, flags.
	off := 8 + 4 + len(ItemClass) + 16
	flags := int32(binary.LittleEndian.Uint32(b[off:]))
	if flags != FlagItemPresent {
		t.Errorf("flags = %b, want %b", flags, FlagItemPresent)
	}
	// translation point (24 bytes) and entity handle (8 bytes) follow.
	if got, want := len(b), off+4+24+8; got != want {
		t.Errorf("record is %d bytes, want %d", got, want)
	}
}

func TestMalformedVersion(t *testing.T) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, int32(1))
	binary.Write(&buf, binary.LittleEndian, int32(0))

	dst := grid(2, 1, 1)
	err := dst.ReadBinary(&buf, filer.FileFiler)
	if !errors.Is(err, errors.ErrCodeMakeMeProxy) {
		t.Fatalf("ReadBinary() error = %v, want MAKE_ME_PROXY", err)
	}
	if dst.Len() != 0 {
		t.Errorf("Len() = %d after failed read, want 0", dst.Len())
	}
}

func TestMalformedRecords(t *testing.T) {
	var good bytes.Buffer
	if err := sample(t).WriteBinary(&good, filer.UndoFiler); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"truncated", good.Bytes()[:good.Len()/2]},
		{"empty", nil},
		{"wrong class", func() []byte {
			b := bytes.Clone(good.Bytes())
			copy(b[12:], "X")
			return b
		}()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := NewPolar()
			err := dst.ReadBinary(bytes.NewReader(tt.data), filer.UndoFiler)
			if !errors.Is(err, errors.ErrCodeMakeMeProxy) {
				t.Errorf("ReadBinary() error = %v, want MAKE_ME_PROXY", err)
			}
			if dst.Len() != 0 {
				t.Errorf("Len() = %d, want 0", dst.Len())
			}
		})
	}
}

func TestTextCodeMismatch(t *testing.T) {
	var buf bytes.Buffer
	if err := grid(1, 1, 1).WriteText(&buf, filer.FileFiler); err != nil {
		t.Fatal(err)
	}
	bad := strings.Replace(buf.String(), "  1\n", " 91\n", 1)

	dst := NewRectangular()
	err := dst.ReadText(strings.NewReader(bad), filer.FileFiler)
	if !errors.Is(err, errors.ErrCodeMakeMeProxy) {
		t.Errorf("ReadText() error = %v, want MAKE_ME_PROXY", err)
	}
	if dst.Len() != 0 {
		t.Errorf("Len() = %d, want 0", dst.Len())
	}
}

func TestComposeForLoadMismatch(t *testing.T) {
	var buf bytes.Buffer
	if err := grid(3, 1, 1).WriteBinary(&buf, filer.FileFiler); err != nil {
		t.Fatal(err)
	}
	dst := NewRectangular()
	dst.SetItems(2)
	if err := dst.ReadBinary(&buf, filer.FileFiler); !errors.Is(err, errors.ErrCodeMakeMeProxy) {
		t.Errorf("ReadBinary() error = %v, want MAKE_ME_PROXY", err)
	}
	if dst.Len() != 0 {
		t.Errorf("Len() = %d, want 0", dst.Len())
	}
}

func TestHandleTranslation(t *testing.T) {
	src := sample(t)
	var buf bytes.Buffer
	if err := src.WriteBinary(&buf, filer.IDXlateFiler); err != nil {
		t.Fatal(err)
	}
	dst := NewPolar()
	m := map[handle.ID]handle.ID{0x100: 0x900, 0x500: 0x501}
	if err := dst.ReadBinary(&buf, filer.IDXlateFiler, filer.WithHandleMap(m)); err != nil {
		t.Fatal(err)
	}
	if got := dst.items[0].EntityRef; got != 0x900 {
		t.Errorf("entity = %v, want 900", got)
	}
	if got := dst.items[3].OverrideRef; got != 0x501 {
		t.Errorf("override = %v, want 501", got)
	}
	if got := dst.items[2].EntityRef; got != 0x102 {
		t.Errorf("unmapped entity = %v, want 102", got)
	}
}
