package pattern

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/stackarray/pkg/core/array"
	"github.com/matzehuels/stackarray/pkg/geom"
)

// Document is the JSON form of a computed array.
type Document struct {
	Name   string  `json:"name"`
	Kind   string  `json:"kind"`
	Items  int     `json:"items"`
	Rows   int     `json:"rows"`
	Levels int     `json:"levels"`
	Grid   []Entry `json:"grid"`
}

// Entry is one item of a Document. Matrix is the compounded placement in
// row-major order.
type Entry struct {
	Locator  [3]int      `json:"locator"`
	Position [3]float64  `json:"position"`
	Matrix   [16]float64 `json:"matrix"`
	Erased   bool        `json:"erased,omitempty"`
	Edited   bool        `json:"edited,omitempty"`
	Modified bool        `json:"modified,omitempty"`
	Entity   string      `json:"entity,omitempty"`
}

// Export describes the current items of p. The array is not re-evaluated.
func Export(name string, p *array.Params) *Document {
	doc := &Document{
		Name:   name,
		Kind:   p.Strategy().Kind().String(),
		Items:  p.ItemCount(),
		Rows:   p.RowCount(),
		Levels: p.LevelCount(),
	}
	items := p.Snapshot()
	doc.Grid = make([]Entry, len(items))
	for i, it := range items {
		doc.Grid[i] = EntryOf(it)
	}
	return doc
}

// EntryOf describes one item.
func EntryOf(it *array.Item) Entry {
	loc := it.Locator()
	m := it.Transform(true)
	pos := m.Apply(geom.Origin)
	e := Entry{
		Locator:  [3]int{loc.Item, loc.Row, loc.Level},
		Position: [3]float64{pos.X, pos.Y, pos.Z},
		Matrix:   m.Elements(),
		Erased:   it.IsErased(),
		Edited:   it.HasRelativeTransform(),
		Modified: it.IsModified(),
	}
	if !it.EntityRef.IsNull() {
		e.Entity = it.EntityRef.String()
	}
	return e
}

// Visible returns the entries that are not erased.
func (d *Document) Visible() []Entry {
	out := make([]Entry, 0, len(d.Grid))
	for _, e := range d.Grid {
		if !e.Erased {
			out = append(out, e)
		}
	}
	return out
}

// WriteJSON encodes doc as indented JSON and writes it to w.
func WriteJSON(doc *Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadJSON decodes a document written by WriteJSON. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &doc, nil
}

// ExportJSON writes the document of p to a JSON file at path.
func ExportJSON(name string, p *array.Params, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(Export(name, p), f)
}
