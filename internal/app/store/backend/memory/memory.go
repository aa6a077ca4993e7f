// Package memory is an in-process Backend holding JSON-shaped rows.
//
// Rows are stored as the map form of their JSON encoding, so the json tags
// on the models are the column names here, exactly as the bson and gorm
// tags are for the other backends. Used by tests and by backend=memory for
// local demos; nothing survives a restart.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/dalemusser/rekaphub/internal/app/store/backend"
	"github.com/dalemusser/rekaphub/internal/domain/models"
	json "github.com/goccy/go-json"
)

type row = map[string]any

// Backend is safe for concurrent use.
type Backend struct {
	mu     sync.RWMutex
	tables map[string][]row
	unique map[string][]string
}

var _ backend.Backend = (*Backend)(nil)

// New returns an empty Backend with the same unique keys the Mongo indexes declare.
func New() *Backend {
	return &Backend{
		tables: make(map[string][]row),
		unique: map[string][]string{
			models.TableClasses:     {"name_ci"},
			models.TableDormitories: {"name_ci"},
			models.TableCourses:     {"name_ci"},
			models.TableProfiles:    {"username_ci"},
		},
	}
}

func (b *Backend) Find(ctx context.Context, q backend.Query, dst any) error {
	if err := ctx.Err(); err != nil {
		return backend.Wrap("find", q.Table, err)
	}
	filters, err := normalizeFilters(q.Filters)
	if err != nil {
		return backend.Fail("find", q.Table, "bad filter", err)
	}

	b.mu.RLock()
	var out []row
	for _, r := range b.tables[q.Table] {
		if matches(r, filters) {
			out = append(out, r)
		}
	}
	b.mu.RUnlock()

	sortRows(out, q.Sort)
	if q.Limit > 0 && int64(len(out)) > q.Limit {
		out = out[:q.Limit]
	}
	if out == nil {
		out = []row{}
	}

	data, err := json.Marshal(out)
	if err != nil {
		return backend.Wrap("find", q.Table, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return backend.Fail("find", q.Table, "decode rows", err)
	}
	return nil
}

func (b *Backend) Count(ctx context.Context, q backend.Query) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, backend.Wrap("count", q.Table, err)
	}
	filters, err := normalizeFilters(q.Filters)
	if err != nil {
		return 0, backend.Fail("count", q.Table, "bad filter", err)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	var n int64
	for _, r := range b.tables[q.Table] {
		if matches(r, filters) {
			n++
		}
	}
	return n, nil
}

func (b *Backend) Insert(ctx context.Context, table string, rows any) error {
	if err := ctx.Err(); err != nil {
		return backend.Wrap("insert", table, err)
	}
	docs, err := toRows(rows)
	if err != nil {
		return backend.Fail("insert", table, "encode rows", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// Check the whole batch before writing so a failed insert-many writes nothing.
	existing := b.tables[table]
	for i, d := range docs {
		id, _ := d["id"].(string)
		if id == "" {
			return backend.Fail("insert", table, "row has no id", nil)
		}
		candidates := append(append([]row(nil), existing...), docs[:i]...)
		if b.conflicts(table, d, candidates) {
			return backend.Fail("insert", table, "unique key", backend.ErrDuplicate)
		}
	}
	b.tables[table] = append(existing, docs...)
	return nil
}

func (b *Backend) Update(ctx context.Context, table, id string, set map[string]any) error {
	if err := ctx.Err(); err != nil {
		return backend.Wrap("update", table, err)
	}
	patch, err := toRow(set)
	if err != nil {
		return backend.Fail("update", table, "encode update", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	rows := b.tables[table]
	for i, r := range rows {
		if r["id"] != id {
			continue
		}
		next := make(row, len(r)+len(patch))
		for k, v := range r {
			next[k] = v
		}
		for k, v := range set {
			next[k] = patch[k]
			if v == nil || isNilPointer(v) {
				next[k] = nil
			}
		}
		others := append(append([]row(nil), rows[:i]...), rows[i+1:]...)
		if b.conflicts(table, next, others) {
			return backend.Fail("update", table, "unique key", backend.ErrDuplicate)
		}
		rows[i] = next
		return nil
	}
	return backend.Fail("update", table, id, backend.ErrNotFound)
}

func (b *Backend) Delete(ctx context.Context, table, id string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, backend.Wrap("delete", table, err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	rows := b.tables[table]
	for i, r := range rows {
		if r["id"] == id {
			b.tables[table] = append(rows[:i:i], rows[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (b *Backend) Ping(ctx context.Context) error {
	return backend.Wrap("ping", "", ctx.Err())
}

func (b *Backend) EnsureSchema(context.Context) error { return nil }

func (b *Backend) Close(context.Context) error { return nil }

// Len returns the number of rows in table.
func (b *Backend) Len(table string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.tables[table])
}

func (b *Backend) conflicts(table string, d row, others []row) bool {
	for _, field := range b.unique[table] {
		v, ok := d[field]
		if !ok || v == nil || v == "" {
			continue
		}
		for _, o := range others {
			if o[field] == v {
				return true
			}
		}
	}
	id := d["id"]
	for _, o := range others {
		if o["id"] == id {
			return true
		}
	}
	return false
}

/* ------------------------------ encoding ------------------------------ */

func toRows(v any) ([]row, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var out []row
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, err
		}
		return out, nil
	}
	var one row
	if err := json.Unmarshal(data, &one); err != nil {
		return nil, err
	}
	return []row{one}, nil
}

func toRow(v any) (row, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out row
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// normalize passes v through JSON so it compares like stored values.
func normalize(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Ptr && rv.IsNil()
}

/* ------------------------------ matching ------------------------------ */

func normalizeFilters(in []backend.Filter) ([]backend.Filter, error) {
	out := make([]backend.Filter, len(in))
	for i, f := range in {
		v, err := normalize(f.Value)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", f.Field, f.Op, err)
		}
		out[i] = backend.Filter{Field: f.Field, Op: f.Op, Value: v}
	}
	return out, nil
}

func matches(r row, filters []backend.Filter) bool {
	for _, f := range filters {
		if !match(r, f) {
			return false
		}
	}
	return true
}

func match(r row, f backend.Filter) bool {
	v, present := r[f.Field]
	isNull := !present || v == nil
	switch f.Op {
	case backend.OpIsNull:
		return isNull
	case backend.OpNotNull:
		return !isNull
	case backend.OpEq:
		if f.Value == nil {
			return isNull
		}
		return !isNull && reflect.DeepEqual(v, f.Value)
	case backend.OpIn:
		list, _ := f.Value.([]any)
		for _, want := range list {
			if !isNull && reflect.DeepEqual(v, want) {
				return true
			}
		}
		return false
	case backend.OpGte:
		c, ok := compare(v, f.Value)
		return !isNull && ok && c >= 0
	case backend.OpLte:
		c, ok := compare(v, f.Value)
		return !isNull && ok && c <= 0
	}
	return false
}

func compare(a, b any) (int, bool) {
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(av, bv), true
	case float64:
		bv, ok := b.(float64)
		if !ok {
			return 0, false
		}
		switch {
		case av < bv:
			return -1, true
		case av > bv:
			return 1, true
		}
		return 0, true
	case bool:
		bv, ok := b.(bool)
		if !ok || av == bv {
			return 0, ok
		}
		if !av {
			return -1, true
		}
		return 1, true
	}
	return 0, false
}

// sortRows orders rows by keys; rows missing a key sort first.
func sortRows(rows []row, keys []backend.SortKey) {
	if len(keys) == 0 {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		for _, k := range keys {
			a, b := rows[i][k.Field], rows[j][k.Field]
			var c int
			switch {
			case a == nil && b == nil:
				c = 0
			case a == nil:
				c = -1
			case b == nil:
				c = 1
			default:
				c, _ = compare(a, b)
			}
			if c == 0 {
				continue
			}
			if k.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}
