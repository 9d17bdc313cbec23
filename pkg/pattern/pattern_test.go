package pattern

import (
	"bytes"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-multierror"

	"github.com/matzehuels/stackarray/pkg/core/array"
	"github.com/matzehuels/stackarray/pkg/errors"
	"github.com/matzehuels/stackarray/pkg/geom"
	"github.com/matzehuels/stackarray/pkg/host"
)

const columnsTOML = `
name = "columns"
kind = "rectangular"
items = 3
item_spacing = 10

[[overrides]]
at = [1, 0, 0]
erase = true

[[overrides]]
at = [2, 0, 0]
move = [0, 0, 5]

[[overrides]]
at = [0, 0, 0]
modify = true
`

const ringYAML = `
name: ring
kind: polar
items: 4
polar:
  radius: 5
  fill_angle: 360
  rotate_items: false
`

func build(t *testing.T, src, format string) (*Result, *host.Database) {
	t.Helper()
	def, err := Parse([]byte(src), format)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	db := host.NewDatabase()
	res, err := Build(def, db)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return res, db
}

func positionsOf(items []*array.Item) []geom.Vec {
	out := make([]geom.Vec, len(items))
	for i, it := range items {
		out[i] = it.Transform(true).TranslationPart()
	}
	return out
}

func TestBuildRectangularOverrides(t *testing.T) {
	res, db := build(t, columnsTOML, FormatTOML)

	if len(res.Items) != 3 {
		t.Fatalf("Build() gave %d items, want 3", len(res.Items))
	}
	if !res.Items[1].IsErased() {
		t.Error("item 1 not erased")
	}
	want := []geom.Vec{{}, {X: 10}, {X: 20, Z: 5}}
	for i, got := range positionsOf(res.Items) {
		if !geom.Equal(got, want[i], 1e-9) {
			t.Errorf("position %d = %v, want %v", i, got, want[i])
		}
	}
	if n := len(db.Entities(res.ID)); n != 2 {
		t.Errorf("Entities() = %d, want 2", n)
	}

	if res.Record.IsNull() {
		t.Fatal("Build() created no modify record")
	}
	rec, err := db.Record(res.Record)
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.Locators) != 1 || rec.Locators[0] != array.NewLocator(0, 0, 0) {
		t.Errorf("Record().Locators = %v, want [(0,0,0)]", rec.Locators)
	}
	if !res.Items[0].IsModified() {
		t.Error("item 0 not marked modified")
	}
}

func TestBuildRotateOverride(t *testing.T) {
	src := `
kind = "grid"
items = 2
item_spacing = 10

[[overrides]]
at = [-1, 0, 0]
rotate = 90
`
	res, _ := build(t, src, FormatTOML)
	got := res.Items[1].Transform(true).Apply(geom.Vec{X: 1})
	if want := (geom.Vec{X: 10, Y: 1}); !geom.Equal(got, want, 1e-9) {
		t.Errorf("rotated item maps x to %v, want %v", got, want)
	}
}

func TestBuildPolarYAML(t *testing.T) {
	res, _ := build(t, ringYAML, FormatYAML)
	want := []geom.Vec{{X: 5}, {Y: 5}, {X: -5}, {Y: -5}}
	got := positionsOf(res.Items)
	if len(got) != len(want) {
		t.Fatalf("Build() gave %d items, want %d", len(got), len(want))
	}
	for i := range want {
		if !geom.Equal(got[i], want[i], 1e-9) {
			t.Errorf("position %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestBuildPath(t *testing.T) {
	src := `
kind = "path"
items = 3

[path.curve]
type = "line"
points = [[0, 0, 0], [10, 0, 0]]
`
	res, _ := build(t, src, FormatTOML)
	want := []geom.Vec{{}, {X: 5}, {X: 10}}
	for i, got := range positionsOf(res.Items) {
		if !geom.Equal(got, want[i], 1e-9) {
			t.Errorf("position %d = %v, want %v", i, got, want[i])
		}
	}
}

func TestBuildExpressions(t *testing.T) {
	src := `
kind = "rectangular"

[variables]
Bay = 12.5

[expressions]
Items = "floor(Bay / 5)"
ItemSpacing = "Bay * 2"
`
	res, _ := build(t, src, FormatTOML)
	if len(res.Items) != 2 {
		t.Fatalf("Build() gave %d items, want 2", len(res.Items))
	}
	if got := res.Items[1].Transform(true).TranslationPart(); !geom.Equal(got, geom.Vec{X: 25}, 1e-9) {
		t.Errorf("item 1 at %v, want (25, 0, 0)", got)
	}
	if _, ok := res.Array.Store().Owner().(*host.Action); !ok {
		t.Error("store not owned by an action")
	}
}

func TestBuildCyclicExpressions(t *testing.T) {
	def := &Definition{
		Kind:        "rectangular",
		Expressions: map[string]string{"A": "B + 1", "B": "A + 1"},
	}
	_, err := Build(def, host.NewDatabase())
	if !errors.Is(err, errors.ErrCodeCyclicExpression) {
		t.Errorf("Build() error = %v, want CYCLIC_EXPRESSION", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		def  Definition
		want int
	}{
		{"valid", Definition{Kind: "polar", Items: 6}, 0},
		{"several problems", Definition{
			Kind:      "hexagonal",
			Items:     -1,
			Overrides: []Override{{At: []int{1}, Erase: true}},
		}, 3},
		{"path without curve", Definition{Kind: "path"}, 1},
		{"bad curve", Definition{Kind: "path", Path: &PathOptions{
			Curve:  Curve{Type: "spline"},
			Method: "scatter",
		}}, 2},
		{"options of another kind", Definition{Kind: "rectangular", Polar: &PolarOptions{}}, 1},
		{"polar item spacing", Definition{Kind: "polar", ItemSpacing: 30}, 1},
		{"bad vectors", Definition{Kind: "grid", BasePoint: []float64{1, 2}, Normal: []float64{0}}, 2},
		{"empty override", Definition{Kind: "grid", Overrides: []Override{{At: []int{0, 0, 0}}}}, 1},
		{"largest grid", Definition{Kind: "rectangular", Items: 512, Rows: 256}, 0},
		{"grid too large", Definition{Kind: "rectangular", Items: 512, Rows: 256, Levels: 2}, 1},
		{"grid overflows", Definition{Kind: "rectangular", Items: 2000000000, Rows: 2000000000, Levels: 2000000000}, 1},
		{"bad names", Definition{
			Kind:        "grid",
			Variables:   map[string]float64{"2x": 1},
			Expressions: map[string]string{"Items": " "},
		}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.def.Validate()
			if tt.want == 0 {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if !errors.Is(err, errors.ErrCodeInvalidDefinition) {
				t.Fatalf("Validate() error = %v, want INVALID_DEFINITION", err)
			}
			var me *multierror.Error
			if !stderrors.As(err, &me) {
				t.Fatalf("Validate() error %T does not wrap a multierror", err)
			}
			if len(me.Errors) != tt.want {
				t.Errorf("Validate() found %d problems, want %d: %v", len(me.Errors), tt.want, me.Errors)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		format string
		code   errors.Code
	}{
		{"unknown toml key", "kind = \"grid\"\ncolour = 1\n", FormatTOML, errors.ErrCodeInvalidDefinition},
		{"malformed toml", "kind = \n", FormatTOML, errors.ErrCodeInvalidFormat},
		{"unknown yaml key", "kind: grid\ncolour: 1\n", FormatYAML, errors.ErrCodeInvalidFormat},
		{"unknown format", "{}", "json", errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), tt.format)
			if !errors.Is(err, tt.code) {
				t.Errorf("Parse() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ring.yml")
	if err := os.WriteFile(path, []byte("kind: polar\nitems: 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	def, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if def.Name != "ring" {
		t.Errorf("Load().Name = %q, want %q", def.Name, "ring")
	}

	if _, err := Load(filepath.Join(dir, "missing.toml")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load(missing) error = %v, want FILE_NOT_FOUND", err)
	}
	if _, err := Load(filepath.Join(dir, "ring.txt")); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Load(txt) error = %v, want INVALID_FORMAT", err)
	}
}

func TestExportJSON(t *testing.T) {
	res, _ := build(t, columnsTOML, FormatTOML)
	doc := Export("columns", res.Array)

	if doc.Kind != "rectangular" || doc.Items != 3 || doc.Rows != 1 || doc.Levels != 1 {
		t.Errorf("Export() header = %+v", doc)
	}
	if len(doc.Grid) != 3 {
		t.Fatalf("Export() has %d entries, want 3", len(doc.Grid))
	}
	if n := len(doc.Visible()); n != 2 {
		t.Errorf("Visible() = %d entries, want 2", n)
	}
	e := doc.Grid[2]
	if e.Position != [3]float64{20, 0, 5} || !e.Edited || e.Entity == "" {
		t.Errorf("entry 2 = %+v", e)
	}
	if e.Matrix[3] != 20 || e.Matrix[11] != 5 {
		t.Errorf("entry 2 matrix translation = %v, %v", e.Matrix[3], e.Matrix[11])
	}
	if !doc.Grid[0].Modified || doc.Grid[1].Entity != "" {
		t.Errorf("entries 0, 1 = %+v, %+v", doc.Grid[0], doc.Grid[1])
	}

	var buf bytes.Buffer
	if err := WriteJSON(doc, &buf); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	back, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if back.Name != doc.Name || len(back.Grid) != len(doc.Grid) || back.Grid[2].Position != e.Position {
		t.Errorf("ReadJSON() = %+v, want %+v", back, doc)
	}
}
