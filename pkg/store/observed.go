package store

import (
	"context"
	"time"

	"github.com/matzehuels/stackarray/pkg/observability"
)

// Observed reports every operation of s to the registered store hooks under
// the given backend name.
func Observed(s Store, backend string) Store {
	return &observed{Store: s, backend: backend}
}

type observed struct {
	Store
	backend string
}

func (o *observed) report(ctx context.Context, op string, start time.Time, err error) {
	observability.Store().OnStoreOp(ctx, o.backend, op, time.Since(start), err)
}

func (o *observed) Put(ctx context.Context, rec *Record) error {
	start := time.Now()
	err := o.Store.Put(ctx, rec)
	o.report(ctx, "put", start, err)
	return err
}

func (o *observed) Get(ctx context.Context, name string) (*Record, error) {
	start := time.Now()
	rec, err := o.Store.Get(ctx, name)
	o.report(ctx, "get", start, err)
	return rec, err
}

func (o *observed) List(ctx context.Context) ([]Info, error) {
	start := time.Now()
	infos, err := o.Store.List(ctx)
	o.report(ctx, "list", start, err)
	return infos, err
}

func (o *observed) Delete(ctx context.Context, name string) error {
	start := time.Now()
	err := o.Store.Delete(ctx, name)
	o.report(ctx, "delete", start, err)
	return err
}
