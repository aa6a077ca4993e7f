// internal/app/store/dormitory/dormitorystore.go
package dormitorystore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/rekaphub/internal/app/store/backend"
	"github.com/dalemusser/rekaphub/internal/app/system/calendar"
	"github.com/dalemusser/rekaphub/internal/domain/models"
	"github.com/google/uuid"
)

var (
	ErrInvalidDate   = errors.New("date must be YYYY-MM-DD")
	ErrInvalidType   = errors.New("unknown leave type")
	ErrInvalidStatus = errors.New("status must be unexcused, excused or sick")
	ErrInvalidDays   = errors.New("number of days must be at least 1")
	ErrNoStudent     = errors.New("student is required")
	ErrNoPrayer      = errors.New("prayer is required")

	// ErrOvernightLimit rejects a second overnight leave for one student in one calendar month.
	ErrOvernightLimit = errors.New("student already has an overnight leave this month")
)

type Store struct {
	b backend.Backend
}

func New(b backend.Backend) *Store {
	return &Store{b: b}
}

// Filter narrows dormitory queries. Period applies to leaves only: prayer
// and ceremony absences carry no period columns and filter by date alone.
type Filter struct {
	Period     models.PeriodScope
	From, To   string
	StudentIDs []string
	Type       string // leave type or absence status
}

func (f Filter) empty() bool { return f.StudentIDs != nil && len(f.StudentIDs) == 0 }

func (f Filter) base(table string) backend.Query {
	q := backend.From(table).Where(backend.Between("date", f.From, f.To)...)
	if f.StudentIDs != nil {
		q = q.Where(backend.In("student_id", f.StudentIDs))
	}
	return q
}

func (f Filter) leaves() backend.Query {
	q := f.base(models.TableDormitoryPermissions).Where(backend.Period(f.Period)...)
	if f.Type != "" {
		q = q.Where(backend.Eq("type", f.Type))
	}
	return q
}

func (f Filter) absences(table string) backend.Query {
	q := f.base(table)
	if f.Type != "" {
		q = q.Where(backend.Eq("status", f.Type))
	}
	return q
}

/* ---------------------------------- reads --------------------------------- */

func (s *Store) Leaves(ctx context.Context, f Filter) ([]models.DormitoryPermission, error) {
	out := []models.DormitoryPermission{}
	if f.empty() {
		return out, nil
	}
	if err := s.b.Find(ctx, f.leaves().OrderBy("date", true), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) PrayerAbsences(ctx context.Context, f Filter) ([]models.PrayerAbsence, error) {
	out := []models.PrayerAbsence{}
	if f.empty() {
		return out, nil
	}
	q := f.absences(models.TableDormitoryPrayerAbsences).OrderBy("date", true)
	if err := s.b.Find(ctx, q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) CeremonyAbsences(ctx context.Context, f Filter) ([]models.CeremonyAbsence, error) {
	out := []models.CeremonyAbsence{}
	if f.empty() {
		return out, nil
	}
	q := f.absences(models.TableDormitoryCeremonyAbsences).OrderBy("date", true)
	if err := s.b.Find(ctx, q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) CountLeaves(ctx context.Context, f Filter) (int64, error) {
	if f.empty() {
		return 0, nil
	}
	return s.b.Count(ctx, f.leaves())
}

// CountAbsences counts prayer and ceremony absences together.
func (s *Store) CountAbsences(ctx context.Context, f Filter) (int64, error) {
	if f.empty() {
		return 0, nil
	}
	p, err := s.b.Count(ctx, f.absences(models.TableDormitoryPrayerAbsences))
	if err != nil {
		return 0, err
	}
	c, err := s.b.Count(ctx, f.absences(models.TableDormitoryCeremonyAbsences))
	if err != nil {
		return 0, err
	}
	return p + c, nil
}

/* ---------------------------------- leaves -------------------------------- */

func checkLeave(p models.DormitoryPermission) error {
	switch {
	case strings.TrimSpace(p.StudentID) == "":
		return ErrNoStudent
	case !calendar.Valid(p.Date):
		return ErrInvalidDate
	case !models.IsLeaveType(p.Type):
		return ErrInvalidType
	case p.NumberOfDays < 1:
		return ErrInvalidDays
	}
	return nil
}

// CheckOvernight returns ErrOvernightLimit when student already holds an
// overnight leave in date's month. exceptID skips the row being edited.
func (s *Store) CheckOvernight(ctx context.Context, studentID, date, exceptID string) error {
	day, ok := calendar.Parse(date)
	if !ok {
		return ErrInvalidDate
	}
	first, last := calendar.MonthBounds(day)
	var existing []models.DormitoryPermission
	q := backend.From(models.TableDormitoryPermissions).
		Where(backend.Eq("student_id", studentID), backend.Eq("type", models.LeaveOvernight)).
		Where(backend.Between("date", calendar.Format(first), calendar.Format(last))...)
	if err := s.b.Find(ctx, q, &existing); err != nil {
		return err
	}
	for _, e := range existing {
		if e.ID != exceptID {
			return fmt.Errorf("%w (student %s, %s)", ErrOvernightLimit, studentID, first.Format("2006-01"))
		}
	}
	return nil
}

// CreateLeaves validates the whole batch, checks the monthly overnight rule
// against stored rows and within the batch itself, and only then writes.
func (s *Store) CreateLeaves(ctx context.Context, in []models.DormitoryPermission) ([]models.DormitoryPermission, error) {
	now := time.Now().UTC()
	rows := make([]models.DormitoryPermission, 0, len(in))
	batchMonths := map[string]bool{}
	for _, p := range in {
		if err := checkLeave(p); err != nil {
			return nil, err
		}
		if p.Type == models.LeaveOvernight {
			key := p.StudentID + "|" + p.Date[:7]
			if batchMonths[key] {
				return nil, fmt.Errorf("%w (student %s, %s)", ErrOvernightLimit, p.StudentID, p.Date[:7])
			}
			batchMonths[key] = true
			if err := s.CheckOvernight(ctx, p.StudentID, p.Date, ""); err != nil {
				return nil, err
			}
		}
		p.ID = uuid.NewString()
		p.Reason = trimmed(p.Reason)
		p.CreatedAt = now
		rows = append(rows, p)
	}
	if len(rows) == 0 {
		return rows, nil
	}
	if err := s.b.Insert(ctx, models.TableDormitoryPermissions, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateLeave edits a leave in place. Moving a leave to overnight, or an
// overnight leave to another date, re-checks the monthly rule.
func (s *Store) UpdateLeave(ctx context.Context, id string, p models.DormitoryPermission) error {
	var current []models.DormitoryPermission
	if err := s.b.Find(ctx, backend.From(models.TableDormitoryPermissions).Where(backend.Eq("id", id)).Take(1), &current); err != nil {
		return err
	}
	if len(current) == 0 {
		return backend.Fail("update", models.TableDormitoryPermissions, id, backend.ErrNotFound)
	}
	p.StudentID = current[0].StudentID
	if err := checkLeave(p); err != nil {
		return err
	}
	if p.Type == models.LeaveOvernight {
		if err := s.CheckOvernight(ctx, p.StudentID, p.Date, id); err != nil {
			return err
		}
	}
	return s.b.Update(ctx, models.TableDormitoryPermissions, id, map[string]any{
		"date":           p.Date,
		"type":           p.Type,
		"number_of_days": p.NumberOfDays,
		"reason":         trimmed(p.Reason),
	})
}

func (s *Store) DeleteLeave(ctx context.Context, id string) (int64, error) {
	return s.b.Delete(ctx, models.TableDormitoryPermissions, id)
}

/* --------------------------------- absences ------------------------------- */

func checkAbsence(studentID, date, status string) error {
	switch {
	case strings.TrimSpace(studentID) == "":
		return ErrNoStudent
	case !calendar.Valid(date):
		return ErrInvalidDate
	case !models.IsAbsenceStatus(status):
		return ErrInvalidStatus
	}
	return nil
}

func (s *Store) CreatePrayerAbsences(ctx context.Context, in []models.PrayerAbsence) ([]models.PrayerAbsence, error) {
	now := time.Now().UTC()
	rows := make([]models.PrayerAbsence, 0, len(in))
	for _, a := range in {
		if err := checkAbsence(a.StudentID, a.Date, a.Status); err != nil {
			return nil, err
		}
		a.Prayer = strings.TrimSpace(a.Prayer)
		if a.Prayer == "" {
			return nil, ErrNoPrayer
		}
		a.ID = uuid.NewString()
		a.CreatedAt = now
		rows = append(rows, a)
	}
	if len(rows) == 0 {
		return rows, nil
	}
	if err := s.b.Insert(ctx, models.TableDormitoryPrayerAbsences, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Store) CreateCeremonyAbsences(ctx context.Context, in []models.CeremonyAbsence) ([]models.CeremonyAbsence, error) {
	now := time.Now().UTC()
	rows := make([]models.CeremonyAbsence, 0, len(in))
	for _, a := range in {
		if err := checkAbsence(a.StudentID, a.Date, a.Status); err != nil {
			return nil, err
		}
		a.ID = uuid.NewString()
		a.CreatedAt = now
		rows = append(rows, a)
	}
	if len(rows) == 0 {
		return rows, nil
	}
	if err := s.b.Insert(ctx, models.TableDormitoryCeremonyAbsences, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Store) UpdatePrayerAbsence(ctx context.Context, id string, a models.PrayerAbsence) error {
	if !calendar.Valid(a.Date) {
		return ErrInvalidDate
	}
	if !models.IsAbsenceStatus(a.Status) {
		return ErrInvalidStatus
	}
	if strings.TrimSpace(a.Prayer) == "" {
		return ErrNoPrayer
	}
	return s.b.Update(ctx, models.TableDormitoryPrayerAbsences, id, map[string]any{
		"date":   a.Date,
		"prayer": strings.TrimSpace(a.Prayer),
		"status": a.Status,
	})
}

func (s *Store) UpdateCeremonyAbsence(ctx context.Context, id string, a models.CeremonyAbsence) error {
	if !calendar.Valid(a.Date) {
		return ErrInvalidDate
	}
	if !models.IsAbsenceStatus(a.Status) {
		return ErrInvalidStatus
	}
	return s.b.Update(ctx, models.TableDormitoryCeremonyAbsences, id, map[string]any{
		"date":   a.Date,
		"status": a.Status,
	})
}

func (s *Store) DeletePrayerAbsence(ctx context.Context, id string) (int64, error) {
	return s.b.Delete(ctx, models.TableDormitoryPrayerAbsences, id)
}

func (s *Store) DeleteCeremonyAbsence(ctx context.Context, id string) (int64, error) {
	return s.b.Delete(ctx, models.TableDormitoryCeremonyAbsences, id)
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
