// Package config loads the stackarray configuration file.
//
// The file lives at $XDG_CONFIG_HOME/stackarray/config.toml (falling back to
// ~/.config/stackarray/config.toml) unless STACKARRAY_CONFIG names another
// path. A missing file yields the defaults:
//
//	[cache]
//	backend = "file"          # file, redis or none
//	redis_url = "redis://localhost:6379/0"
//
//	[store]
//	backend = "sqlite"        # file, sqlite, postgres, mongo or s3
//	dsn = "/home/me/.local/share/stackarray/arrays.db"
//
//	[server]
//	addr = ":8080"
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/stackarray/pkg/cache"
	"github.com/matzehuels/stackarray/pkg/errors"
	"github.com/matzehuels/stackarray/pkg/store"
)

const appName = "stackarray"

// EnvPath overrides the location of the configuration file.
const EnvPath = "STACKARRAY_CONFIG"

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Config is the configuration file.
type Config struct {
	Cache  CacheConfig  `toml:"cache"`
	Store  store.Config `toml:"store"`
	Server ServerConfig `toml:"server"`
}

// CacheConfig selects the result cache.
type CacheConfig struct {
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir"`
	RedisURL string `toml:"redis_url"`
	Prefix   string `toml:"prefix"`
	// Scope is prepended to every cache key so several environments can
	// share one backend.
	Scope string `toml:"scope"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr"`
	// Concurrency bounds the definitions computed at once per batch request.
	Concurrency int `toml:"concurrency"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	cfg := Config{
		Cache:  CacheConfig{Backend: CacheFile},
		Store:  store.Config{Backend: store.BackendFile},
		Server: ServerConfig{Addr: ":8080", Concurrency: 4},
	}
	if dir, err := CacheDir(); err == nil {
		cfg.Cache.Dir = dir
	}
	if dir, err := DataDir(); err == nil {
		cfg.Store.Dir = filepath.Join(dir, "arrays")
	}
	return cfg
}

// Load reads the file at path over the defaults. An empty path selects
// Path(); a missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		p, err := Path()
		if err != nil {
			return cfg, nil
		}
		path = p
	}
	md, err := toml.DecodeFile(path, &cfg)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidFormat, err, "config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, errors.New(errors.ErrCodeInvalidFormat, "config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.Cache.Backend {
	case CacheFile, CacheRedis, CacheNone:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "cache backend %q is not file, redis or none", c.Cache.Backend)
	}
	if c.Cache.Backend == CacheRedis && c.Cache.RedisURL == "" {
		return errors.New(errors.ErrCodeInvalidInput, "cache backend redis needs redis_url")
	}
	if c.Server.Concurrency < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "server concurrency must not be negative")
	}
	return nil
}

// OpenCache creates the configured cache. A file cache that cannot create
// its directory degrades to no caching.
func (c Config) OpenCache(ctx context.Context) (cache.Cache, error) {
	switch c.Cache.Backend {
	case CacheNone:
		return cache.NewNullCache(), nil
	case CacheRedis:
		return cache.NewRedisCache(ctx, c.Cache.RedisURL, c.Cache.Prefix)
	}
	if c.Cache.Dir == "" {
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(c.Cache.Dir)
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return fc, nil
}

// Keyer returns the cache keyer, scoped when Cache.Scope is set.
func (c Config) Keyer() cache.Keyer {
	if c.Cache.Scope == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(nil, c.Cache.Scope)
}

// OpenStore creates the configured array store.
func (c Config) OpenStore(ctx context.Context) (store.Store, error) {
	return store.Open(ctx, c.Store)
}

// Path returns the configuration file location.
func Path() (string, error) {
	if p := os.Getenv(EnvPath); p != "" {
		return p, nil
	}
	dir, err := xdgDir("XDG_CONFIG_HOME", ".config")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// CacheDir returns the cache directory (~/.cache/stackarray).
func CacheDir() (string, error) { return xdgDir("XDG_CACHE_HOME", ".cache") }

// DataDir returns the data directory (~/.local/share/stackarray).
func DataDir() (string, error) { return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share")) }

func xdgDir(env, fallback string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home directory: %w", err)
	}
	return filepath.Join(home, fallback, appName), nil
}
