// Package materializer runs bounded SQL against a store and turns the result into one of
// the catalog projections. All three projections share a single fetch and decode pass.
package materializer

import (
	"context"
	"errors"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/melkeydev/demodb-query/catalog"
	"github.com/melkeydev/demodb-query/types"
)

// ErrStore is matched by every failure of the store itself, as opposed to a failure to
// decode what it returned.
var ErrStore = errors.New("store error")

// StoreError wraps the error returned by the store.
type StoreError struct {
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error: %v", e.Err)
}

func (e *StoreError) Unwrap() []error {
	return []error{ErrStore, e.Err}
}

// Store executes a read-only statement and returns every row.
type Store interface {
	Query(ctx context.Context, sql string) ([]types.Row, error)
}

// Fetch runs sql and decodes every row with entity. It fails with a *StoreError when the
// store fails and with a *catalog.DecodeError when any row cannot be decoded.
func Fetch(ctx context.Context, sql string, store Store, entity catalog.Descriptor) (catalog.RecordSet, error) {
	rows, err := store.Query(ctx, sql)
	if err != nil {
		return nil, &StoreError{Err: err}
	}
	return entity.Decode(rows)
}

// FetchAndRender returns one display string per row.
func FetchAndRender(ctx context.Context, sql string, store Store, entity catalog.Descriptor) ([]string, error) {
	set, err := Fetch(ctx, sql, store, entity)
	if err != nil {
		return nil, err
	}
	return set.Strings(), nil
}

// FetchAndRenderJSON returns the rows as a single JSON array document.
func FetchAndRenderJSON(ctx context.Context, sql string, store Store, entity catalog.Descriptor) (string, error) {
	set, err := Fetch(ctx, sql, store, entity)
	if err != nil {
		return "", err
	}
	return set.JSON()
}

// FetchAndRenderColumnar returns the rows as one columnar batch. The caller owns the
// batch and must Release it.
func FetchAndRenderColumnar(ctx context.Context, sql string, store Store, entity catalog.Descriptor, mem memory.Allocator) (arrow.Record, error) {
	set, err := Fetch(ctx, sql, store, entity)
	if err != nil {
		return nil, err
	}
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	return set.Columnar(mem)
}
