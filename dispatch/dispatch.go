// Package dispatch resolves a table name to its catalog entity once and hands back a
// handle whose operations are the same for every table.
package dispatch

import (
	"context"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/melkeydev/demodb-query/catalog"
	"github.com/melkeydev/demodb-query/guard"
	"github.com/melkeydev/demodb-query/materializer"
)

// Service ties the catalog, the guard and the store together. It holds no per-request
// state and is safe for concurrent use.
type Service struct {
	catalog *catalog.Catalog
	guard   *guard.Guard
	store   materializer.Store
	mem     memory.Allocator
}

type Option func(*Service)

// WithAllocator sets the allocator used for columnar batches.
func WithAllocator(mem memory.Allocator) Option {
	return func(s *Service) {
		s.mem = mem
	}
}

func New(cat *catalog.Catalog, g *guard.Guard, store materializer.Store, opts ...Option) *Service {
	s := &Service{
		catalog: cat,
		guard:   g,
		store:   store,
		mem:     memory.DefaultAllocator,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Catalog() *catalog.Catalog { return s.catalog }

// Tables lists the queryable tables in catalog order.
func (s *Service) Tables() []string {
	return s.catalog.Names()
}

// ForTable returns the handle for name, or a *guard.QueryError of kind
// guard.ErrUnknownTable when the catalog has no such table.
func (s *Service) ForTable(name string) (*Handle, error) {
	entity, ok := s.catalog.Resolve(name)
	if !ok {
		return nil, &guard.QueryError{Kind: guard.ErrUnknownTable, Message: name}
	}
	return &Handle{svc: s, entity: entity}, nil
}

// Handle runs queries against one table. Every operation takes caller SQL; an empty
// string reads the first rows of the table.
type Handle struct {
	svc    *Service
	entity catalog.Descriptor
}

func (h *Handle) Name() string { return h.entity.Name() }

func (h *Handle) Columns() []catalog.ColumnInfo { return h.entity.Columns() }

func (h *Handle) Schema() *arrow.Schema { return h.entity.Schema() }

// Prepare returns the bounded SQL that the other operations would run. SQL reading from
// any table other than the handle's is rejected, since its rows would not decode.
func (h *Handle) Prepare(sql string) (string, error) {
	if strings.TrimSpace(sql) == "" {
		b, err := h.svc.guard.Default(h.entity.Name())
		if err != nil {
			return "", err
		}
		return b.SQL, nil
	}

	b, err := h.svc.guard.Bound(sql)
	if err != nil {
		return "", err
	}
	if b.Table != h.entity.Name() {
		return "", &guard.QueryError{
			Kind:    guard.ErrUnknownTable,
			Message: b.Table + " does not match " + h.entity.Name(),
		}
	}
	return b.SQL, nil
}

// Records runs sql and returns the decoded rows, from which any projection can be taken.
func (h *Handle) Records(ctx context.Context, sql string) (catalog.RecordSet, error) {
	bounded, err := h.Prepare(sql)
	if err != nil {
		return nil, err
	}
	return materializer.Fetch(ctx, bounded, h.svc.store, h.entity)
}

func (h *Handle) Strings(ctx context.Context, sql string) ([]string, error) {
	bounded, err := h.Prepare(sql)
	if err != nil {
		return nil, err
	}
	return materializer.FetchAndRender(ctx, bounded, h.svc.store, h.entity)
}

func (h *Handle) JSON(ctx context.Context, sql string) (string, error) {
	bounded, err := h.Prepare(sql)
	if err != nil {
		return "", err
	}
	return materializer.FetchAndRenderJSON(ctx, bounded, h.svc.store, h.entity)
}

// Columnar returns the rows as a batch the caller must Release.
func (h *Handle) Columnar(ctx context.Context, sql string) (arrow.Record, error) {
	bounded, err := h.Prepare(sql)
	if err != nil {
		return nil, err
	}
	return materializer.FetchAndRenderColumnar(ctx, bounded, h.svc.store, h.entity, h.svc.mem)
}
