// Package pipeline runs pattern definitions through the array engine.
//
// A run takes a [pattern.Definition] through three steps that every entry
// point (CLI, HTTP API) shares:
//
//  1. Compute: build the array in a fresh host database and evaluate it
//  2. Encode: produce the requested artifacts (json, bin, dxf)
//  3. Save: optionally put the binary collection into an array store
//
// Results are cached by the hash of the definition, so recomputing an
// unchanged definition costs one cache lookup per artifact.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Definition: def,
//	    Formats:    []string{"json", "dxf"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	dxf := result.Artifacts["dxf"]
//
// Several definitions are computed concurrently with [Runner.Batch].
package pipeline

import (
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackarray/pkg/errors"
	"github.com/matzehuels/stackarray/pkg/pattern"
)

// Format constants for artifacts.
const (
	FormatJSON = "json"
	FormatBin  = "bin"
	FormatDXF  = "dxf"
)

// ValidFormats is the set of supported artifact formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatBin:  true,
	FormatDXF:  true,
}

// DefaultFormats are produced when Options.Formats is empty.
var DefaultFormats = []string{FormatJSON}

// DefaultConcurrency bounds Batch when no limit is given.
const DefaultConcurrency = 4

// Options configures one pipeline run. It is the body of API compute
// requests.
type Options struct {
	Definition *pattern.Definition `json:"definition"`
	Formats    []string            `json:"formats,omitempty"`
	// Save puts the computed array into the runner's store.
	Save bool `json:"save,omitempty"`
	// Refresh bypasses cached results.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Name string
	// Hash is the content hash of the definition.
	Hash      string
	Document  *pattern.Document
	Artifacts map[string][]byte
	Stats     Stats
	CacheInfo CacheInfo
	// Saved reports whether the array was put into the store.
	Saved bool
}

// Stats contains execution statistics.
type Stats struct {
	Items       int
	Visible     int
	ComputeTime time.Duration
	EncodeTime  time.Duration
}

// CacheInfo tracks which steps hit the cache.
type CacheInfo struct {
	ArrayHit    bool
	ArtifactHit bool
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: json, bin, dxf)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks the definition and the formats and fills in
// defaults. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Definition == nil {
		return errors.New(errors.ErrCodeInvalidInput, "definition is required")
	}
	if err := o.Definition.Validate(); err != nil {
		return err
	}
	if len(o.Formats) == 0 {
		o.Formats = slices.Clone(DefaultFormats)
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// formats returns the formats to produce: the requested ones plus bin when
// the array is saved.
func (o *Options) formats() []string {
	out := slices.Clone(o.Formats)
	if o.Save && !slices.Contains(out, FormatBin) {
		out = append(out, FormatBin)
	}
	return out
}
