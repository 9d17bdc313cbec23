package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/stackarray/pkg/errors"
)

// FileStore keeps each record as name.json below a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates a file store in dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "file store needs a directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create store directory")
	}
	return &FileStore{dir: dir}, nil
}

// Put implements Store.
func (s *FileStore) Put(_ context.Context, rec *Record) error {
	if err := prepare(rec); err != nil {
		return err
	}
	if strings.Contains(rec.Name, "/") {
		return errors.New(errors.ErrCodeInvalidKey, "file store names cannot contain /")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, ".record-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path(rec.Name))
}

// Get implements Store.
func (s *FileStore) Get(_ context.Context, name string) (*Record, error) {
	if err := errors.ValidateKey(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(name))
	if os.IsNotExist(err) {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode record %q", name)
	}
	return &rec, nil
}

// List implements Store.
func (s *FileStore) List(ctx context.Context) ([]Info, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return nil, err
	}
	slices.Sort(matches)
	out := make([]Info, 0, len(matches))
	for _, m := range matches {
		rec, err := s.Get(ctx, strings.TrimSuffix(filepath.Base(m), ".json"))
		if err != nil {
			return nil, err
		}
		out = append(out, rec.info())
	}
	return out, nil
}

// Delete implements Store.
func (s *FileStore) Delete(_ context.Context, name string) error {
	if err := errors.ValidateKey(name); err != nil {
		return err
	}
	err := os.Remove(s.path(name))
	if os.IsNotExist(err) {
		return notFound(name)
	}
	return err
}

// Close does nothing.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

var _ Store = (*FileStore)(nil)
