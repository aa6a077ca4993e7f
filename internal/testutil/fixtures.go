package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/rekaphub/internal/app/store/backend"
	"github.com/dalemusser/rekaphub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
)

// Period is the academic period most fixtures are written in.
var Period = models.PeriodScope{AcademicYear: "2024/2025", Semester: "2"}

// Fixtures inserts rows straight into a backend, skipping store validation.
type Fixtures struct {
	b backend.Backend
	t *testing.T
}

// NewFixtures creates a Fixtures instance for b.
func NewFixtures(t *testing.T, b backend.Backend) *Fixtures {
	t.Helper()
	return &Fixtures{b: b, t: t}
}

// Backend returns the underlying backend for direct access in tests.
func (f *Fixtures) Backend() backend.Backend {
	return f.b
}

func (f *Fixtures) insert(ctx context.Context, table string, row any) {
	f.t.Helper()
	if err := f.b.Insert(ctx, table, row); err != nil {
		f.t.Fatalf("failed to insert %s fixture: %v", table, err)
	}
}

func ptr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (f *Fixtures) named(ctx context.Context, table, name string) models.Named {
	f.t.Helper()
	row := struct {
		ID        string    `json:"id" bson:"_id" gorm:"column:id"`
		Name      string    `json:"name" bson:"name" gorm:"column:name"`
		NameCI    string    `json:"name_ci" bson:"name_ci" gorm:"column:name_ci"`
		CreatedAt time.Time `json:"created_at" bson:"created_at" gorm:"column:created_at"`
	}{uuid.NewString(), name, text.Fold(name), time.Now().UTC()}
	f.insert(ctx, table, &row)
	return models.Named{ID: row.ID, Name: name}
}

// CreateClass inserts a class.
func (f *Fixtures) CreateClass(ctx context.Context, name string) models.Named {
	f.t.Helper()
	return f.named(ctx, models.TableClasses, name)
}

// CreateDormitory inserts a dormitory.
func (f *Fixtures) CreateDormitory(ctx context.Context, name string) models.Named {
	f.t.Helper()
	return f.named(ctx, models.TableDormitories, name)
}

// CreateCourse inserts a course.
func (f *Fixtures) CreateCourse(ctx context.Context, name string) models.Named {
	f.t.Helper()
	return f.named(ctx, models.TableCourses, name)
}

// CreateStudent inserts a student. Empty classID/dormID leave the reference nil.
func (f *Fixtures) CreateStudent(ctx context.Context, name, classID, dormID string) models.Student {
	f.t.Helper()
	now := time.Now().UTC()
	st := models.Student{
		ID:          uuid.NewString(),
		Name:        name,
		NameCI:      text.Fold(name),
		ClassID:     ptr(classID),
		DormitoryID: ptr(dormID),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.insert(ctx, models.TableStudents, &st)
	return st
}

// CreatePermission inserts an academic permission (sick or permission).
func (f *Fixtures) CreatePermission(ctx context.Context, studentID, date, typ string, p models.PeriodScope) models.AcademicPermission {
	f.t.Helper()
	row := models.AcademicPermission{
		ID:           uuid.NewString(),
		StudentID:    studentID,
		Date:         date,
		Type:         typ,
		AcademicYear: p.AcademicYear,
		Semester:     p.Semester,
		CreatedAt:    time.Now().UTC(),
	}
	f.insert(ctx, models.TableAcademicPermissions, &row)
	return row
}

// CreateAbsence inserts an academic absence. Empty courseID stores no course.
func (f *Fixtures) CreateAbsence(ctx context.Context, studentID, date, courseID string, p models.PeriodScope) models.AcademicAbsence {
	f.t.Helper()
	row := models.AcademicAbsence{
		ID:           uuid.NewString(),
		StudentID:    studentID,
		Date:         date,
		CourseID:     ptr(courseID),
		AcademicYear: p.AcademicYear,
		Semester:     p.Semester,
		CreatedAt:    time.Now().UTC(),
	}
	f.insert(ctx, models.TableAcademicAbsences, &row)
	return row
}

// CreateLeave inserts a one-day dormitory leave.
func (f *Fixtures) CreateLeave(ctx context.Context, studentID, date, leaveType string, p models.PeriodScope) models.DormitoryPermission {
	f.t.Helper()
	row := models.DormitoryPermission{
		ID:           uuid.NewString(),
		StudentID:    studentID,
		Date:         date,
		Type:         leaveType,
		NumberOfDays: 1,
		AcademicYear: p.AcademicYear,
		Semester:     p.Semester,
		CreatedAt:    time.Now().UTC(),
	}
	f.insert(ctx, models.TableDormitoryPermissions, &row)
	return row
}

// CreatePrayerAbsence inserts a missed prayer.
func (f *Fixtures) CreatePrayerAbsence(ctx context.Context, studentID, date, prayer, status string) models.PrayerAbsence {
	f.t.Helper()
	row := models.PrayerAbsence{
		ID:        uuid.NewString(),
		StudentID: studentID,
		Date:      date,
		Prayer:    prayer,
		Status:    status,
		CreatedAt: time.Now().UTC(),
	}
	f.insert(ctx, models.TableDormitoryPrayerAbsences, &row)
	return row
}

// CreateCeremonyAbsence inserts a missed ceremony.
func (f *Fixtures) CreateCeremonyAbsence(ctx context.Context, studentID, date, status string) models.CeremonyAbsence {
	f.t.Helper()
	row := models.CeremonyAbsence{
		ID:        uuid.NewString(),
		StudentID: studentID,
		Date:      date,
		Status:    status,
		CreatedAt: time.Now().UTC(),
	}
	f.insert(ctx, models.TableDormitoryCeremonyAbsences, &row)
	return row
}

// CreateProfile inserts an administrator account with the given bcrypt hash.
func (f *Fixtures) CreateProfile(ctx context.Context, username, role, passwordHash string) models.Profile {
	f.t.Helper()
	now := time.Now().UTC()
	row := models.Profile{
		ID:           uuid.NewString(),
		Username:     username,
		UsernameCI:   text.Fold(username),
		Role:         role,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.insert(ctx, models.TableProfiles, &row)
	return row
}
