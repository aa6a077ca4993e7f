// internal/app/store/academic/academicstore.go
package academicstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/rekaphub/internal/app/store/backend"
	"github.com/dalemusser/rekaphub/internal/app/system/calendar"
	"github.com/dalemusser/rekaphub/internal/domain/models"
	"github.com/google/uuid"
)

var (
	ErrInvalidDate = errors.New("date must be YYYY-MM-DD")
	ErrInvalidType = errors.New("type must be sick or permission")
	ErrNoStudent   = errors.New("student is required")
)

type Store struct {
	b backend.Backend
}

func New(b backend.Backend) *Store {
	return &Store{b: b}
}

// Filter narrows permission and absence queries. Empty fields do not filter.
// StudentIDs nil means any student; an empty non-nil slice matches nothing.
type Filter struct {
	Period     models.PeriodScope
	From, To   string
	StudentIDs []string
	Type       string
}

func (f Filter) query(table string) backend.Query {
	q := backend.From(table).
		Where(backend.Period(f.Period)...).
		Where(backend.Between("date", f.From, f.To)...)
	if f.StudentIDs != nil {
		q = q.Where(backend.In("student_id", f.StudentIDs))
	}
	if f.Type != "" {
		q = q.Where(backend.Eq("type", f.Type))
	}
	return q
}

func (f Filter) empty() bool { return f.StudentIDs != nil && len(f.StudentIDs) == 0 }

// Permissions returns sick/permission rows, newest first.
func (s *Store) Permissions(ctx context.Context, f Filter) ([]models.AcademicPermission, error) {
	out := []models.AcademicPermission{}
	if f.empty() {
		return out, nil
	}
	q := f.query(models.TableAcademicPermissions).OrderBy("date", true)
	if err := s.b.Find(ctx, q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Absences returns absence rows, newest first. Filter.Type is ignored.
func (s *Store) Absences(ctx context.Context, f Filter) ([]models.AcademicAbsence, error) {
	out := []models.AcademicAbsence{}
	if f.empty() {
		return out, nil
	}
	f.Type = ""
	q := f.query(models.TableAcademicAbsences).OrderBy("date", true)
	if err := s.b.Find(ctx, q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) CountPermissions(ctx context.Context, f Filter) (int64, error) {
	if f.empty() {
		return 0, nil
	}
	return s.b.Count(ctx, f.query(models.TableAcademicPermissions))
}

func (s *Store) CountAbsences(ctx context.Context, f Filter) (int64, error) {
	if f.empty() {
		return 0, nil
	}
	f.Type = ""
	return s.b.Count(ctx, f.query(models.TableAcademicAbsences))
}

func checkCommon(studentID, date string) error {
	if strings.TrimSpace(studentID) == "" {
		return ErrNoStudent
	}
	if !calendar.Valid(date) {
		return ErrInvalidDate
	}
	return nil
}

// CreatePermissions validates every row first and then inserts them together.
func (s *Store) CreatePermissions(ctx context.Context, in []models.AcademicPermission) ([]models.AcademicPermission, error) {
	now := time.Now().UTC()
	rows := make([]models.AcademicPermission, 0, len(in))
	for _, p := range in {
		if err := checkCommon(p.StudentID, p.Date); err != nil {
			return nil, err
		}
		if !models.IsPermissionType(p.Type) {
			return nil, ErrInvalidType
		}
		p.ID = uuid.NewString()
		p.Reason = trimmed(p.Reason)
		p.CreatedAt = now
		rows = append(rows, p)
	}
	if len(rows) == 0 {
		return rows, nil
	}
	if err := s.b.Insert(ctx, models.TableAcademicPermissions, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// CreateAbsences validates every row first and then inserts them together.
func (s *Store) CreateAbsences(ctx context.Context, in []models.AcademicAbsence) ([]models.AcademicAbsence, error) {
	now := time.Now().UTC()
	rows := make([]models.AcademicAbsence, 0, len(in))
	for _, a := range in {
		if err := checkCommon(a.StudentID, a.Date); err != nil {
			return nil, err
		}
		a.ID = uuid.NewString()
		a.CourseID = trimmed(a.CourseID)
		a.CreatedAt = now
		rows = append(rows, a)
	}
	if len(rows) == 0 {
		return rows, nil
	}
	if err := s.b.Insert(ctx, models.TableAcademicAbsences, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdatePermission edits date, type and reason in place.
func (s *Store) UpdatePermission(ctx context.Context, id string, p models.AcademicPermission) error {
	if !calendar.Valid(p.Date) {
		return ErrInvalidDate
	}
	if !models.IsPermissionType(p.Type) {
		return ErrInvalidType
	}
	return s.b.Update(ctx, models.TableAcademicPermissions, id, map[string]any{
		"date":   p.Date,
		"type":   p.Type,
		"reason": trimmed(p.Reason),
	})
}

// UpdateAbsence edits date and course in place.
func (s *Store) UpdateAbsence(ctx context.Context, id string, a models.AcademicAbsence) error {
	if !calendar.Valid(a.Date) {
		return ErrInvalidDate
	}
	return s.b.Update(ctx, models.TableAcademicAbsences, id, map[string]any{
		"date":      a.Date,
		"course_id": trimmed(a.CourseID),
	})
}

func (s *Store) DeletePermission(ctx context.Context, id string) (int64, error) {
	return s.b.Delete(ctx, models.TableAcademicPermissions, id)
}

func (s *Store) DeleteAbsence(ctx context.Context, id string) (int64, error) {
	return s.b.Delete(ctx, models.TableAcademicAbsences, id)
}

func trimmed(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}
