package store

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "modernc.org/sqlite"             // pure go sqlite driver

	"github.com/matzehuels/stackarray/pkg/errors"
)

// dialect captures the differences between the SQL backends.
type dialect struct {
	driver string
	blob   string
	// param returns the placeholder of the n-th (1-based) argument.
	param func(n int) string
}

var (
	sqliteDialect = dialect{
		driver: "sqlite",
		blob:   "BLOB",
		param:  func(int) string { return "?" },
	}
	postgresDialect = dialect{
		driver: "pgx",
		blob:   "BYTEA",
		param:  func(n int) string { return fmt.Sprintf("$%d", n) },
	}
)

// SQLStore keeps records in an "arrays" table.
type SQLStore struct {
	db *sql.DB
	d  dialect
}

// DefaultSQLitePath is the database file used when no DSN is given.
const DefaultSQLitePath = "stackarray.db"

// OpenSQLite opens (and creates) a SQLite database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLStore, error) {
	if path == "" {
		path = DefaultSQLitePath
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open(sqliteDialect.driver, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases alive and serializes
	// writers.
	db.SetMaxOpenConns(1)
	return newSQLStore(ctx, db, sqliteDialect)
}

// DefaultPostgresDSN is used when no DSN is given.
const DefaultPostgresDSN = "postgres://localhost/stackarray?sslmode=disable"

// OpenPostgres connects to Postgres through the pgx driver.
func OpenPostgres(ctx context.Context, dsn string) (*SQLStore, error) {
	if dsn == "" {
		dsn = DefaultPostgresDSN
	}
	db, err := sql.Open(postgresDialect.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return newSQLStore(ctx, db, postgresDialect)
}

func newSQLStore(ctx context.Context, db *sql.DB, d dialect) (*SQLStore, error) {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS arrays (
		name TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		items INTEGER NOT NULL,
		hash TEXT NOT NULL,
		definition %[1]s,
		data %[1]s NOT NULL,
		updated_at BIGINT NOT NULL
	)`, d.blob)
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("create arrays table: %w", err)
	}
	return &SQLStore{db: db, d: d}, nil
}

// DB exposes the underlying database.
func (s *SQLStore) DB() *sql.DB { return s.db }

// Put implements Store.
func (s *SQLStore) Put(ctx context.Context, rec *Record) error {
	if err := prepare(rec); err != nil {
		return err
	}
	p := s.d.param
	q := fmt.Sprintf(`INSERT INTO arrays (name, kind, items, hash, definition, data, updated_at)
		VALUES (%s, %s, %s, %s, %s, %s, %s)
		ON CONFLICT (name) DO UPDATE SET
			kind = excluded.kind,
			items = excluded.items,
			hash = excluded.hash,
			definition = excluded.definition,
			data = excluded.data,
			updated_at = excluded.updated_at`,
		p(1), p(2), p(3), p(4), p(5), p(6), p(7))
	_, err := s.db.ExecContext(ctx, q,
		rec.Name, rec.Kind, rec.Items, rec.Hash, rec.Definition, rec.Data, rec.UpdatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("upsert %q: %w", rec.Name, err)
	}
	return nil
}

// Get implements Store.
func (s *SQLStore) Get(ctx context.Context, name string) (*Record, error) {
	if err := errors.ValidateKey(name); err != nil {
		return nil, err
	}
	q := fmt.Sprintf(`SELECT name, kind, items, hash, definition, data, updated_at
		FROM arrays WHERE name = %s`, s.d.param(1))
	var (
		rec     Record
		updated int64
	)
	err := s.db.QueryRowContext(ctx, q, name).Scan(
		&rec.Name, &rec.Kind, &rec.Items, &rec.Hash, &rec.Definition, &rec.Data, &updated)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, fmt.Errorf("select %q: %w", name, err)
	}
	rec.UpdatedAt = time.Unix(0, updated).UTC()
	return &rec, nil
}

// List implements Store.
func (s *SQLStore) List(ctx context.Context) ([]Info, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, kind, items, LENGTH(data), updated_at FROM arrays ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list arrays: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Info
	for rows.Next() {
		var (
			info    Info
			updated int64
		)
		if err := rows.Scan(&info.Name, &info.Kind, &info.Items, &info.Size, &updated); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		info.UpdatedAt = time.Unix(0, updated).UTC()
		out = append(out, info)
	}
	return out, rows.Err()
}

// Delete implements Store.
func (s *SQLStore) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateKey(name); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM arrays WHERE name = %s`, s.d.param(1)), name)
	if err != nil {
		return fmt.Errorf("delete %q: %w", name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notFound(name)
	}
	return nil
}

// Close closes the database.
func (s *SQLStore) Close() error { return s.db.Close() }

var _ Store = (*SQLStore)(nil)
