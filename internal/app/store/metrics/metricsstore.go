package metricsstore

import (
	"context"

	"github.com/dalemusser/rekaphub/internal/app/store/backend"
	"github.com/dalemusser/rekaphub/internal/domain/models"
)

// Counts is the set of totals used by the three dashboards.
type Counts struct {
	Students            int64 `json:"students"`
	ClassStudents       int64 `json:"class_students"`
	DormitoryStudents   int64 `json:"dormitory_students"`
	Classes             int64 `json:"classes"`
	Dormitories         int64 `json:"dormitories"`
	Courses             int64 `json:"courses"`
	Profiles            int64 `json:"profiles"`
	AcademicPermissions int64 `json:"academic_permissions"`
	AcademicAbsences    int64 `json:"academic_absences"`
	DormitoryLeaves     int64 `json:"dormitory_leaves"`
	DormitoryAbsences   int64 `json:"dormitory_absences"`
}

// FetchDashboardCounts returns the count-only figures for the dashboards.
// Event tables that carry period columns are scoped to period.
// Any failed count fails the whole call.
func FetchDashboardCounts(ctx context.Context, b backend.Backend, period models.PeriodScope) (Counts, error) {
	var out Counts
	scoped := backend.Period(period)

	counts := []struct {
		dst *int64
		q   backend.Query
	}{
		{&out.Students, backend.From(models.TableStudents)},
		{&out.ClassStudents, backend.From(models.TableStudents).Where(backend.NotNull("class_id"))},
		{&out.DormitoryStudents, backend.From(models.TableStudents).Where(backend.NotNull("dormitory_id"))},
		{&out.Classes, backend.From(models.TableClasses)},
		{&out.Dormitories, backend.From(models.TableDormitories)},
		{&out.Courses, backend.From(models.TableCourses)},
		{&out.Profiles, backend.From(models.TableProfiles)},
		{&out.AcademicPermissions, backend.From(models.TableAcademicPermissions).Where(scoped...)},
		{&out.AcademicAbsences, backend.From(models.TableAcademicAbsences).Where(scoped...)},
		{&out.DormitoryLeaves, backend.From(models.TableDormitoryPermissions).Where(scoped...)},
	}
	for _, c := range counts {
		n, err := b.Count(ctx, c.q)
		if err != nil {
			return Counts{}, err
		}
		*c.dst = n
	}

	for _, table := range []string{models.TableDormitoryPrayerAbsences, models.TableDormitoryCeremonyAbsences} {
		n, err := b.Count(ctx, backend.From(table))
		if err != nil {
			return Counts{}, err
		}
		out.DormitoryAbsences += n
	}
	return out, nil
}
