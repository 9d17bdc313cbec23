// Package cache stores computed arrays and their encoded artifacts.
//
// Computing a pattern definition is cheap for small grids but the pipeline
// also serves batch and HTTP requests, so results are cached by the hash of
// the definition that produced them. Three backends implement [Cache]:
//
//   - [FileCache] for the CLI, one JSON entry per key under a directory
//   - [RedisCache] for servers sharing a cache
//   - [NullCache] when caching is disabled
//
// Keys come from a [Keyer] so every entry point derives them the same way.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value cache with per-entry expiry. A miss is
// reported as (nil, false, nil); errors are reserved for backend failures.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop every entry at once.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Default entry lifetimes.
const (
	// ArrayTTL is the lifetime of a computed array document.
	ArrayTTL = 7 * 24 * time.Hour

	// ArtifactTTL is the lifetime of an encoded artifact.
	ArtifactTTL = 24 * time.Hour
)

// keyVersion is mixed into every hashed key. Bump it when the encoding of
// cached values changes.
const keyVersion = 1

// Keyer derives cache keys.
type Keyer interface {
	// ArrayKey is the key of the array computed from a definition.
	ArrayKey(definitionHash string) string

	// ArtifactKey is the key of one encoded form of a computed array.
	ArtifactKey(definitionHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts are the options that change an encoded artifact.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
	Filer  string `json:"filer,omitempty"`
}

// DefaultKeyer hashes the key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ArrayKey implements Keyer.
func (DefaultKeyer) ArrayKey(definitionHash string) string {
	return hashKey("array", keyVersion, definitionHash)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(definitionHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", keyVersion, definitionHash, opts)
}
