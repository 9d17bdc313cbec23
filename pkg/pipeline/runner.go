package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/stackarray/pkg/cache"
	"github.com/matzehuels/stackarray/pkg/errors"
	"github.com/matzehuels/stackarray/pkg/host"
	"github.com/matzehuels/stackarray/pkg/observability"
	"github.com/matzehuels/stackarray/pkg/pattern"
	"github.com/matzehuels/stackarray/pkg/store"
)

// Runner executes the pipeline with caching.
//
// The Runner keeps no results. Every run builds its array in its own host
// database, so multiple goroutines can share one Runner.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Store  store.Store
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// selects the default keyer and a nil store disables saving.
func NewRunner(c cache.Cache, keyer cache.Keyer, st store.Store, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Store: st, Logger: logger}
}

// Execute computes the definition of opts and produces its artifacts.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if opts.Save && r.Store == nil {
		return nil, errors.New(errors.ErrCodeUnsupported, "save requested but no store is configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	def := opts.Definition
	hash, err := cache.HashJSON(def)
	if err != nil {
		return nil, fmt.Errorf("hash definition: %w", err)
	}
	name := def.Name
	if name == "" {
		name = "array-" + hash[:12]
	}
	result := &Result{Name: name, Hash: hash}
	formats := opts.formats()

	artifacts, doc, hit := r.cached(ctx, hash, formats, opts.Refresh)
	if hit {
		result.Document = doc
		result.CacheInfo = CacheInfo{ArrayHit: true, ArtifactHit: true}
		opts.Logger.Debug("cache hit", "name", name, "hash", hash[:12])
	} else {
		built, d, err := r.Compute(ctx, name, def)
		if err != nil {
			return nil, err
		}
		result.Stats.ComputeTime = d
		result.Document = pattern.Export(name, built.Array)

		encodeStart := time.Now()
		artifacts = make(map[string][]byte, len(formats))
		for _, format := range formats {
			start := time.Now()
			data, err := Encode(name, built.Array, format)
			observability.Pipeline().OnEncode(ctx, format, len(data), time.Since(start), err)
			if err != nil {
				return nil, err
			}
			artifacts[format] = data
		}
		result.Stats.EncodeTime = time.Since(encodeStart)
		r.fill(ctx, hash, result.Document, artifacts)
	}

	result.Stats.Items = len(result.Document.Grid)
	result.Stats.Visible = len(result.Document.Visible())
	opts.Logger.Info("computed array",
		"name", name,
		"kind", result.Document.Kind,
		"items", result.Stats.Items,
		"duration", result.Stats.ComputeTime,
		"cached", hit)

	if opts.Save {
		if err := r.save(ctx, name, hash, def, result.Document, artifacts[FormatBin]); err != nil {
			return nil, err
		}
		result.Saved = true
		opts.Logger.Info("saved array", "name", name)
	}

	result.Artifacts = make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		result.Artifacts[format] = artifacts[format]
	}
	return result, nil
}

// Compute builds and evaluates def in a fresh host database.
func (r *Runner) Compute(ctx context.Context, name string, def *pattern.Definition) (*pattern.Result, time.Duration, error) {
	observability.Pipeline().OnComputeStart(ctx, name, def.Kind)
	start := time.Now()
	res, err := pattern.Build(def, host.NewDatabase())
	d := time.Since(start)
	items := 0
	if res != nil {
		items = len(res.Items)
	}
	observability.Pipeline().OnComputeComplete(ctx, name, def.Kind, items, d, err)
	if err != nil {
		return nil, d, fmt.Errorf("compute %s: %w", name, err)
	}
	return res, d, nil
}

// cached returns the document and every requested artifact from the cache,
// or hit=false if any of them is missing.
func (r *Runner) cached(ctx context.Context, hash string, formats []string, refresh bool) (map[string][]byte, *pattern.Document, bool) {
	if refresh {
		return nil, nil, false
	}
	hooks := observability.Cache()
	data, hit, err := r.Cache.Get(ctx, r.Keyer.ArrayKey(hash))
	if err != nil || !hit {
		hooks.OnCacheMiss(ctx, "array")
		return nil, nil, false
	}
	var doc pattern.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		hooks.OnCacheMiss(ctx, "array")
		return nil, nil, false
	}
	hooks.OnCacheHit(ctx, "array")

	artifacts := make(map[string][]byte, len(formats))
	for _, format := range formats {
		key := r.Keyer.ArtifactKey(hash, artifactKeyOpts(format))
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil || !hit {
			hooks.OnCacheMiss(ctx, "artifact")
			return nil, nil, false
		}
		hooks.OnCacheHit(ctx, "artifact")
		artifacts[format] = data
	}
	return artifacts, &doc, true
}

// fill caches the document and artifacts. Cache failures are logged and
// otherwise ignored.
func (r *Runner) fill(ctx context.Context, hash string, doc *pattern.Document, artifacts map[string][]byte) {
	hooks := observability.Cache()
	if data, err := json.Marshal(doc); err == nil {
		if err := r.Cache.Set(ctx, r.Keyer.ArrayKey(hash), data, cache.ArrayTTL); err != nil {
			r.Logger.Warn("cache set failed", "key", "array", "error", err)
		} else {
			hooks.OnCacheSet(ctx, "array", len(data))
		}
	}
	for format, data := range artifacts {
		key := r.Keyer.ArtifactKey(hash, artifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.ArtifactTTL); err != nil {
			r.Logger.Warn("cache set failed", "key", "artifact", "format", format, "error", err)
			continue
		}
		hooks.OnCacheSet(ctx, "artifact", len(data))
	}
}

func artifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{Format: format}
	if format != FormatJSON {
		opts.Filer = "file"
	}
	return opts
}

func (r *Runner) save(ctx context.Context, name, hash string, def *pattern.Definition, doc *pattern.Document, bin []byte) error {
	defJSON, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("encode definition: %w", err)
	}
	return r.Store.Put(ctx, &store.Record{
		Name:       name,
		Kind:       doc.Kind,
		Items:      len(doc.Grid),
		Hash:       hash,
		Definition: defJSON,
		Data:       bin,
	})
}

// Batch runs every entry of opts with at most limit runs in flight. Results
// are in the order of opts. The first failure cancels the remaining runs.
func (r *Runner) Batch(ctx context.Context, opts []Options, limit int) ([]*Result, error) {
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	results := make([]*Result, len(opts))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := range opts {
		g.Go(func() error {
			res, err := r.Execute(ctx, opts[i])
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Close releases the cache and the store.
func (r *Runner) Close() error {
	var firstErr error
	if r.Cache != nil {
		firstErr = r.Cache.Close()
	}
	if r.Store != nil {
		if err := r.Store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
