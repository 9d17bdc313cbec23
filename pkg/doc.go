// Package pkg provides the libraries behind Stackarray, a parametric array
// engine.
//
// # Overview
//
// Stackarray places repeated copies ("items") of a source object along a
// rectangular grid, a polar ring or a path. Each item carries a locator
// (item, row, level), a base transform computed by the array's strategy and
// an optional relative transform set by the user. Items can be erased or
// routed to a modify record that overrides the array's parameters for a
// subset of items. The pkg directory is organized into four areas:
//
//  1. [core] - Domain logic (handles, the parameter store, arrays)
//  2. [filer] - Binary and tagged-text persistence of item collections
//  3. [pattern] and [pipeline] - Definition files and their orchestration
//  4. [cache], [store], [observability] - Infrastructure
//
// # Architecture
//
// The typical data flow through Stackarray:
//
//	Definition (TOML/YAML)
//	         ↓
//	    [pattern] package (validate, build into a host database)
//	         ↓
//	    [core/array] package (strategy evaluation, overrides)
//	         ↓
//	    [pipeline] package (encode, cache, save)
//	         ↓
//	    JSON/bin/dxf artifacts
//
// # Quick Start
//
// Build a ring of eight items and read their positions:
//
//	import (
//	    "github.com/matzehuels/stackarray/pkg/host"
//	    "github.com/matzehuels/stackarray/pkg/pattern"
//	)
//
//	def, _ := pattern.Parse([]byte(src), "toml")
//	res, _ := pattern.Build(def, host.NewDatabase())
//	doc := pattern.Export(def.Name, res.Array)
//	for _, e := range doc.Visible() {
//	    fmt.Println(e.Locator, e.Position)
//	}
//
// # Main Packages
//
// ## Core Domain Logic
//
// [core/handle] - Opaque persistent-object handles.
//
// [core/params] - Named parameter store with values, expressions, units and
// geometry. A store is either local or delegates to an owner.
//
// [core/array] - Locators, items, common parameters and the rectangular,
// polar, path and modify strategies.
//
// [geom] and [curve] - Matrices, frames and the curves a path array follows.
//
// [host] - In-memory reference host: database arena, expression owner,
// modify records and deep clone.
//
// ## Infrastructure
//
// [pipeline] - Definition → array → artifacts, used by the CLI and the API.
//
// [cache] - File, Redis and null caches keyed by definition hash.
//
// [store] - Saved arrays on the file system, SQLite, PostgreSQL, MongoDB or S3.
//
// [observability] - Hooks for compute, cache and store events, with a
// Prometheus implementation in observability/metrics.
//
// [config] - The TOML configuration file selecting cache and store backends.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/core/array/...         # Specific package
//
// Redis, MongoDB and PostgreSQL tests are skipped unless
// STACKARRAY_TEST_REDIS_URL, STACKARRAY_TEST_MONGO_URI or
// STACKARRAY_TEST_POSTGRES_DSN is set.
//
// [core]: https://pkg.go.dev/github.com/matzehuels/stackarray/pkg/core
// [core/handle]: https://pkg.go.dev/github.com/matzehuels/stackarray/pkg/core/handle
// [core/params]: https://pkg.go.dev/github.com/matzehuels/stackarray/pkg/core/params
// [core/array]: https://pkg.go.dev/github.com/matzehuels/stackarray/pkg/core/array
// [geom]: https://pkg.go.dev/github.com/matzehuels/stackarray/pkg/geom
// [curve]: https://pkg.go.dev/github.com/matzehuels/stackarray/pkg/curve
// [host]: https://pkg.go.dev/github.com/matzehuels/stackarray/pkg/host
// [filer]: https://pkg.go.dev/github.com/matzehuels/stackarray/pkg/filer
// [pattern]: https://pkg.go.dev/github.com/matzehuels/stackarray/pkg/pattern
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/stackarray/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/stackarray/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/stackarray/pkg/store
// [observability]: https://pkg.go.dev/github.com/matzehuels/stackarray/pkg/observability
// [config]: https://pkg.go.dev/github.com/matzehuels/stackarray/pkg/config
package pkg
