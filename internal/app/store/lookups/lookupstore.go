// internal/app/store/lookups/lookupstore.go
//
// Package lookupstore manages the three flat name tables: classes,
// dormitories and courses. They share one shape, so one Store type serves
// all three, bound to a table at construction.
package lookupstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/rekaphub/internal/app/store/backend"
	"github.com/dalemusser/rekaphub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
)

var (
	ErrEmptyName     = errors.New("name is required")
	ErrDuplicateName = errors.New("a record with this name already exists")
)

type Store struct {
	b     backend.Backend
	table string
}

// row is the stored form; reads return models.Named.
type row struct {
	ID        string    `bson:"_id" json:"id" gorm:"column:id;primaryKey"`
	Name      string    `bson:"name" json:"name" gorm:"column:name"`
	NameCI    string    `bson:"name_ci" json:"name_ci" gorm:"column:name_ci"`
	CreatedAt time.Time `bson:"created_at" json:"created_at" gorm:"column:created_at"`
}

func New(b backend.Backend, table string) *Store {
	return &Store{b: b, table: table}
}

func Classes(b backend.Backend) *Store     { return New(b, models.TableClasses) }
func Dormitories(b backend.Backend) *Store { return New(b, models.TableDormitories) }
func Courses(b backend.Backend) *Store     { return New(b, models.TableCourses) }

// Table returns the table this store is bound to.
func (s *Store) Table() string { return s.table }

// List returns every row ordered by case-folded name.
func (s *Store) List(ctx context.Context) ([]models.Named, error) {
	var out []models.Named
	q := backend.From(s.table).OrderBy("name_ci", false).OrderBy("id", false)
	if err := s.b.Find(ctx, q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.b.Count(ctx, backend.From(s.table))
}

func (s *Store) GetByID(ctx context.Context, id string) (models.Named, error) {
	var out []models.Named
	if err := s.b.Find(ctx, backend.From(s.table).Where(backend.Eq("id", id)).Take(1), &out); err != nil {
		return models.Named{}, err
	}
	if len(out) == 0 {
		return models.Named{}, backend.Fail("find", s.table, id, backend.ErrNotFound)
	}
	return out[0], nil
}

func (s *Store) Create(ctx context.Context, name string) (models.Named, error) {
	rows, err := s.CreateMany(ctx, []string{name})
	if err != nil {
		return models.Named{}, err
	}
	return rows[0], nil
}

// CreateMany inserts all names or none. Names repeated inside the batch
// (case-insensitively) are rejected the same way a clash with an existing
// row is.
func (s *Store) CreateMany(ctx context.Context, names []string) ([]models.Named, error) {
	now := time.Now().UTC()
	seen := make(map[string]bool, len(names))
	rows := make([]row, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			return nil, ErrEmptyName
		}
		ci := text.Fold(n)
		if seen[ci] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, n)
		}
		seen[ci] = true
		rows = append(rows, row{ID: uuid.NewString(), Name: n, NameCI: ci, CreatedAt: now})
	}
	if len(rows) == 0 {
		return []models.Named{}, nil
	}
	if err := s.b.Insert(ctx, s.table, rows); err != nil {
		if backend.IsDuplicate(err) {
			return nil, ErrDuplicateName
		}
		return nil, err
	}
	out := make([]models.Named, len(rows))
	for i, r := range rows {
		out[i] = models.Named{ID: r.ID, Name: r.Name}
	}
	return out, nil
}

func (s *Store) Rename(ctx context.Context, id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	err := s.b.Update(ctx, s.table, id, map[string]any{"name": name, "name_ci": text.Fold(name)})
	if backend.IsDuplicate(err) {
		return ErrDuplicateName
	}
	return err
}

// Delete removes a row. Students that still point at it keep the stale
// reference and show the "N/A" group label.
func (s *Store) Delete(ctx context.Context, id string) (int64, error) {
	return s.b.Delete(ctx, s.table, id)
}
