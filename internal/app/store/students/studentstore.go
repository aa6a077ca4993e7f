// internal/app/store/students/studentstore.go
package studentstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/rekaphub/internal/app/store/backend"
	"github.com/dalemusser/rekaphub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
)

// Affiliation selects students by which nullable reference they hold.
const (
	AffiliationClass     = "class"
	AffiliationDormitory = "dormitory"
)

var ErrEmptyName = errors.New("student name is required")

type Store struct {
	b backend.Backend
}

func New(b backend.Backend) *Store {
	return &Store{b: b}
}

// ListFilter narrows List. Zero value lists everyone.
type ListFilter struct {
	ClassID     string
	DormitoryID string
	Affiliation string
	IDs         []string
}

func (f ListFilter) query() backend.Query {
	q := backend.From(models.TableStudents)
	if f.ClassID != "" {
		q = q.Where(backend.Eq("class_id", f.ClassID))
	}
	if f.DormitoryID != "" {
		q = q.Where(backend.Eq("dormitory_id", f.DormitoryID))
	}
	switch f.Affiliation {
	case AffiliationClass:
		q = q.Where(backend.NotNull("class_id"))
	case AffiliationDormitory:
		q = q.Where(backend.NotNull("dormitory_id"))
	}
	if f.IDs != nil {
		q = q.Where(backend.In("id", f.IDs))
	}
	return q
}

// List returns students ordered by case-folded name.
func (s *Store) List(ctx context.Context, f ListFilter) ([]models.Student, error) {
	if f.IDs != nil && len(f.IDs) == 0 {
		return []models.Student{}, nil
	}
	var out []models.Student
	if err := s.b.Find(ctx, f.query().OrderBy("name_ci", false).OrderBy("id", false), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns how many students match f.
func (s *Store) Count(ctx context.Context, f ListFilter) (int64, error) {
	return s.b.Count(ctx, f.query())
}

// IDs returns the ids of the students matching f, for filtering event tables.
func (s *Store) IDs(ctx context.Context, f ListFilter) ([]string, error) {
	rows, err := s.List(ctx, f)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	return ids, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (models.Student, error) {
	var out []models.Student
	if err := s.b.Find(ctx, backend.From(models.TableStudents).Where(backend.Eq("id", id)).Take(1), &out); err != nil {
		return models.Student{}, err
	}
	if len(out) == 0 {
		return models.Student{}, backend.Fail("find", models.TableStudents, id, backend.ErrNotFound)
	}
	return out[0], nil
}

func prepare(st models.Student, now time.Time) (models.Student, error) {
	if strings.TrimSpace(st.Name) == "" {
		return models.Student{}, ErrEmptyName
	}
	st.ID = uuid.NewString()
	st.Name = strings.TrimSpace(st.Name)
	st.NameCI = text.Fold(st.Name)
	st.ClassID = nonEmpty(st.ClassID)
	st.DormitoryID = nonEmpty(st.DormitoryID)
	st.CreatedAt = now
	st.UpdatedAt = now
	return st, nil
}

func (s *Store) Create(ctx context.Context, st models.Student) (models.Student, error) {
	row, err := prepare(st, time.Now().UTC())
	if err != nil {
		return models.Student{}, err
	}
	if err := s.b.Insert(ctx, models.TableStudents, &row); err != nil {
		return models.Student{}, err
	}
	return row, nil
}

// CreateMany inserts every student or none of them.
func (s *Store) CreateMany(ctx context.Context, in []models.Student) ([]models.Student, error) {
	now := time.Now().UTC()
	rows := make([]models.Student, 0, len(in))
	for _, st := range in {
		row, err := prepare(st, now)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return rows, nil
	}
	if err := s.b.Insert(ctx, models.TableStudents, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Update replaces the student's name and both group references. Nil clears a reference.
func (s *Store) Update(ctx context.Context, id string, st models.Student) error {
	if strings.TrimSpace(st.Name) == "" {
		return ErrEmptyName
	}
	name := strings.TrimSpace(st.Name)
	return s.b.Update(ctx, models.TableStudents, id, map[string]any{
		"name":         name,
		"name_ci":      text.Fold(name),
		"class_id":     nonEmpty(st.ClassID),
		"dormitory_id": nonEmpty(st.DormitoryID),
		"updated_at":   time.Now().UTC(),
	})
}

// Delete removes a student. Event rows that reference it stay and are dropped at join time.
func (s *Store) Delete(ctx context.Context, id string) (int64, error) {
	return s.b.Delete(ctx, models.TableStudents, id)
}

func nonEmpty(p *string) *string {
	if p == nil || *p == "" {
		return nil
	}
	v := *p
	return &v
}
