package testutil

import (
	"context"

	"github.com/dalemusser/rekaphub/internal/app/store/backend"
)

// FailingBackend wraps a backend so reads against chosen tables fail the
// way an unreachable server would. With no tables, every read fails.
type FailingBackend struct {
	backend.Backend
	tables map[string]bool
}

// NewFailingBackend wraps b.
func NewFailingBackend(b backend.Backend, tables ...string) *FailingBackend {
	set := make(map[string]bool, len(tables))
	for _, t := range tables {
		set[t] = true
	}
	return &FailingBackend{Backend: b, tables: set}
}

func (f *FailingBackend) fails(table string) bool {
	return len(f.tables) == 0 || f.tables[table]
}

func (f *FailingBackend) Find(ctx context.Context, q backend.Query, dst any) error {
	if f.fails(q.Table) {
		return backend.Fail("find", q.Table, "connection refused", nil)
	}
	return f.Backend.Find(ctx, q, dst)
}

func (f *FailingBackend) Count(ctx context.Context, q backend.Query) (int64, error) {
	if f.fails(q.Table) {
		return 0, backend.Fail("count", q.Table, "connection refused", nil)
	}
	return f.Backend.Count(ctx, q)
}
