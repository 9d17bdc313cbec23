// Package store persists computed arrays by name.
//
// A [Record] holds the binary item collection of an array (written with the
// file filer) together with the definition that produced it, so a saved
// array can be reloaded without recomputation or rebuilt from its source.
//
// Backends:
//
//   - [FileStore]: one JSON file per record in a directory
//   - [SQLStore]: a table in SQLite (modernc.org/sqlite) or Postgres (pgx)
//   - [MongoStore]: a MongoDB collection
//   - [S3Store]: one object per record in an S3 bucket
//
// [Open] selects a backend from a [Config].
package store

import (
	"context"
	"time"

	"github.com/matzehuels/stackarray/pkg/errors"
)

// Record is a saved array.
type Record struct {
	Name string `json:"name" bson:"_id"`
	Kind string `json:"kind" bson:"kind"`
	// Items is the length of the item collection.
	Items int `json:"items" bson:"items"`
	// Hash identifies the definition the array was computed from.
	Hash string `json:"hash" bson:"hash"`
	// Definition is the JSON form of the definition, if known.
	Definition []byte `json:"definition,omitempty" bson:"definition,omitempty"`
	// Data is the item collection in the binary encoding.
	Data      []byte    `json:"data" bson:"data"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Info describes a saved array without its payload.
type Info struct {
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	Items     int       `json:"items"`
	Size      int       `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *Record) info() Info {
	return Info{Name: r.Name, Kind: r.Kind, Items: r.Items, Size: len(r.Data), UpdatedAt: r.UpdatedAt}
}

// Store persists records. Put replaces an existing record of the same name.
// Get and Delete of a missing name fail with ErrCodeNotFound. List is ordered
// by name.
type Store interface {
	Put(ctx context.Context, rec *Record) error
	Get(ctx context.Context, name string) (*Record, error)
	List(ctx context.Context) ([]Info, error)
	Delete(ctx context.Context, name string) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
	BackendS3       = "s3"
)

// Config selects and configures a backend.
type Config struct {
	Backend string `toml:"backend"`
	// Dir is the directory of the file backend.
	Dir string `toml:"dir"`
	// DSN is the SQLite path, the Postgres connection string or the MongoDB
	// URI.
	DSN string `toml:"dsn"`
	// Database is the MongoDB database name.
	Database string `toml:"database"`
	// S3 configures the s3 backend.
	S3 S3Config `toml:"s3"`
}

// Open creates the store selected by cfg. Its operations are reported to the
// observability store hooks.
func Open(ctx context.Context, cfg Config) (Store, error) {
	var (
		s   Store
		err error
	)
	backend := cfg.Backend
	switch backend {
	case "", BackendFile:
		backend = BackendFile
		s, err = NewFileStore(cfg.Dir)
	case BackendSQLite:
		s, err = OpenSQLite(ctx, cfg.DSN)
	case BackendPostgres:
		s, err = OpenPostgres(ctx, cfg.DSN)
	case BackendMongo:
		s, err = OpenMongo(ctx, cfg.DSN, cfg.Database)
	case BackendS3:
		s, err = NewS3Store(ctx, cfg.S3)
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown store backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return Observed(s, backend), nil
}

// prepare validates the record name and stamps the update time.
func prepare(rec *Record) error {
	if err := errors.ValidateKey(rec.Name); err != nil {
		return err
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func notFound(name string) error {
	return errors.New(errors.ErrCodeNotFound, "array %q not found", name)
}
