package pipeline

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/matzehuels/stackarray/pkg/core/array"
	"github.com/matzehuels/stackarray/pkg/errors"
	"github.com/matzehuels/stackarray/pkg/filer"
	"github.com/matzehuels/stackarray/pkg/pattern"
)

// Encode produces one artifact of the computed array p.
func Encode(name string, p *array.Params, format string) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case FormatJSON:
		err = pattern.WriteJSON(pattern.Export(name, p), &buf)
	case FormatBin:
		err = p.WriteBinary(&buf, filer.FileFiler)
	case FormatDXF:
		err = p.WriteText(&buf, filer.FileFiler)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

// EncodeAll produces every format of formats.
func EncodeAll(name string, p *array.Params, formats []string) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(formats))
	for _, format := range formats {
		data, err := Encode(name, p, format)
		if err != nil {
			return nil, err
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// DecodeItems reads the items of a bin or dxf artifact.
func DecodeItems(data []byte, format string) ([]*array.Item, error) {
	r := bytes.NewReader(data)
	switch format {
	case FormatBin:
		return array.DecodeItems(filer.NewBinaryReader(r, filer.FileFiler))
	case FormatDXF:
		return array.DecodeItems(filer.NewTextReader(r, filer.FileFiler))
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "cannot read items from %q", format)
}

// Convert re-encodes a bin artifact as dxf or the other way round.
func Convert(data []byte, from, to string) ([]byte, error) {
	items, err := DecodeItems(data, from)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	switch to {
	case FormatBin:
		err = array.EncodeItems(filer.NewBinaryWriter(&buf, filer.FileFiler), items)
	case FormatDXF:
		err = array.EncodeItems(filer.NewTextWriter(&buf, filer.FileFiler), items)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "cannot convert to %q", to)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FormatOf maps a file extension to an artifact format, or "" when unknown.
func FormatOf(path string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ValidFormats[ext] {
		return ext
	}
	return ""
}
