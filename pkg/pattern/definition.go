// Package pattern reads array definitions from TOML or YAML files and builds
// them into evaluated arrays.
//
// A definition names a placement kind, the grid counts and spacings, the
// kind-specific options, optional expressions over named parameters and a
// list of per-item overrides:
//
//	name = "columns"
//	kind = "rectangular"
//	items = 4
//	rows = 2
//	item_spacing = 10
//	row_spacing = 5
//
//	[variables]
//	Bay = 12.5
//
//	[expressions]
//	ItemSpacing = "Bay * 2"
//
//	[[overrides]]
//	at = [1, 0, 0]
//	erase = true
//
// [Build] turns a definition into an array registered in a [host.Database]
// and [Export] produces the JSON document describing the computed items.
package pattern

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/stackarray/pkg/errors"
)

// Definition formats.
const (
	FormatTOML = "toml"
	FormatYAML = "yaml"
)

// Definition describes one array.
type Definition struct {
	Name         string    `toml:"name" yaml:"name" json:"name"`
	Kind         string    `toml:"kind" yaml:"kind" json:"kind"`
	Items        int       `toml:"items" yaml:"items" json:"items,omitempty"`
	Rows         int       `toml:"rows" yaml:"rows" json:"rows,omitempty"`
	Levels       int       `toml:"levels" yaml:"levels" json:"levels,omitempty"`
	ItemSpacing  float64   `toml:"item_spacing" yaml:"item_spacing" json:"item_spacing,omitempty"`
	RowSpacing   float64   `toml:"row_spacing" yaml:"row_spacing" json:"row_spacing,omitempty"`
	LevelSpacing float64   `toml:"level_spacing" yaml:"level_spacing" json:"level_spacing,omitempty"`
	RowElevation float64   `toml:"row_elevation" yaml:"row_elevation" json:"row_elevation,omitempty"`
	BasePoint    []float64 `toml:"base_point" yaml:"base_point" json:"base_point,omitempty"`
	Normal       []float64 `toml:"normal" yaml:"normal" json:"normal,omitempty"`

	Rectangular *RectangularOptions `toml:"rectangular" yaml:"rectangular" json:"rectangular,omitempty"`
	Polar       *PolarOptions       `toml:"polar" yaml:"polar" json:"polar,omitempty"`
	Path        *PathOptions        `toml:"path" yaml:"path" json:"path,omitempty"`

	// Variables are plain named values expressions may refer to.
	Variables map[string]float64 `toml:"variables" yaml:"variables" json:"variables,omitempty"`
	// Expressions bind named parameters to arithmetic over other parameters.
	Expressions map[string]string `toml:"expressions" yaml:"expressions" json:"expressions,omitempty"`

	Overrides []Override `toml:"overrides" yaml:"overrides" json:"overrides,omitempty"`
}

// RectangularOptions are the options of rectangular arrays.
type RectangularOptions struct {
	// AxesAngle is the angle between the item and row axes in degrees.
	AxesAngle *float64 `toml:"axes_angle" yaml:"axes_angle" json:"axes_angle,omitempty"`
	// RowProfile is a pair of points whose direction rows follow.
	RowProfile [][]float64 `toml:"row_profile" yaml:"row_profile" json:"row_profile,omitempty"`
}

// PolarOptions are the options of polar arrays. Angles are in degrees.
type PolarOptions struct {
	Radius       float64  `toml:"radius" yaml:"radius" json:"radius,omitempty"`
	StartAngle   float64  `toml:"start_angle" yaml:"start_angle" json:"start_angle,omitempty"`
	FillAngle    *float64 `toml:"fill_angle" yaml:"fill_angle" json:"fill_angle,omitempty"`
	AngleBetween *float64 `toml:"angle_between" yaml:"angle_between" json:"angle_between,omitempty"`
	RotateItems  *bool    `toml:"rotate_items" yaml:"rotate_items" json:"rotate_items,omitempty"`
	Direction    string   `toml:"direction" yaml:"direction" json:"direction,omitempty"`
}

// PathOptions are the options of path arrays.
type PathOptions struct {
	Curve       Curve   `toml:"curve" yaml:"curve" json:"curve"`
	Method      string  `toml:"method" yaml:"method" json:"method,omitempty"`
	AlignItems  *bool   `toml:"align_items" yaml:"align_items" json:"align_items,omitempty"`
	StartOffset float64 `toml:"start_offset" yaml:"start_offset" json:"start_offset,omitempty"`
	EndOffset   float64 `toml:"end_offset" yaml:"end_offset" json:"end_offset,omitempty"`
	Reverse     bool    `toml:"reverse" yaml:"reverse" json:"reverse,omitempty"`
	MaintainZ   bool    `toml:"maintain_z" yaml:"maintain_z" json:"maintain_z,omitempty"`
	Orientation string  `toml:"orientation" yaml:"orientation" json:"orientation,omitempty"`
	// TangentOrientation is the yaw of tangent orientation in degrees.
	TangentOrientation float64 `toml:"tangent_orientation" yaml:"tangent_orientation" json:"tangent_orientation,omitempty"`
}

// Curve describes the path of a path array. Angles are in degrees.
type Curve struct {
	Type       string      `toml:"type" yaml:"type" json:"type"`
	Points     [][]float64 `toml:"points" yaml:"points" json:"points,omitempty"`
	Center     []float64   `toml:"center" yaml:"center" json:"center,omitempty"`
	Normal     []float64   `toml:"normal" yaml:"normal" json:"normal,omitempty"`
	Radius     float64     `toml:"radius" yaml:"radius" json:"radius,omitempty"`
	StartAngle float64     `toml:"start_angle" yaml:"start_angle" json:"start_angle,omitempty"`
	EndAngle   float64     `toml:"end_angle" yaml:"end_angle" json:"end_angle,omitempty"`
	Closed     bool        `toml:"closed" yaml:"closed" json:"closed,omitempty"`
}

// Curve types.
const (
	CurveLine     = "line"
	CurveArc      = "arc"
	CurveCircle   = "circle"
	CurvePolyline = "polyline"
)

// Override edits one item after the array is computed. Rotate turns the item
// about the base normal through its own origin, in degrees.
type Override struct {
	At     []int     `toml:"at" yaml:"at" json:"at"`
	Erase  bool      `toml:"erase" yaml:"erase" json:"erase,omitempty"`
	Move   []float64 `toml:"move" yaml:"move" json:"move,omitempty"`
	Rotate float64   `toml:"rotate" yaml:"rotate" json:"rotate,omitempty"`
	// Modify puts the item into the array's modify record.
	Modify bool `toml:"modify" yaml:"modify" json:"modify,omitempty"`
}

// Parse decodes a definition in the given format.
func Parse(data []byte, format string) (*Definition, error) {
	var def Definition
	switch strings.ToLower(format) {
	case FormatTOML:
		md, err := toml.Decode(string(data), &def)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse toml definition")
		}
		if keys := md.Undecoded(); len(keys) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidDefinition, "unknown definition key %q", keys[0].String())
		}
	case FormatYAML, "yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse yaml definition")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported definition format %q", format)
	}
	return &def, nil
}

// FormatOf infers the definition format from a file extension.
func FormatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "cannot infer definition format of %s", path)
}

// Load reads and validates a definition file. A definition without a name is
// named after the file.
func Load(path string) (*Definition, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "definition %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read definition %s", path)
	}
	def, err := Parse(data, format)
	if err != nil {
		return nil, err
	}
	if def.Name == "" {
		def.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return def, nil
}
