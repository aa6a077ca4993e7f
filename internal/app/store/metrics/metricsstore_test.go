package metricsstore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dalemusser/rekaphub/internal/app/store/backend"
	metricsstore "github.com/dalemusser/rekaphub/internal/app/store/metrics"
	"github.com/dalemusser/rekaphub/internal/domain/models"
	"github.com/dalemusser/rekaphub/internal/testutil"
)

func TestFetchDashboardCounts_Empty(t *testing.T) {
	b := testutil.NewMemoryBackend()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	counts, err := metricsstore.FetchDashboardCounts(ctx, b, models.PeriodScope{})
	if err != nil {
		t.Fatalf("FetchDashboardCounts failed: %v", err)
	}
	if counts != (metricsstore.Counts{}) {
		t.Errorf("expected all zero counts, got %+v", counts)
	}
}

func TestFetchDashboardCounts_WithData(t *testing.T) {
	b := testutil.NewMemoryBackend()
	fx := testutil.NewFixtures(t, b)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	class := fx.CreateClass(ctx, "X-A")
	dorm := fx.CreateDormitory(ctx, "Putra")
	fx.CreateCourse(ctx, "Math")
	a := fx.CreateStudent(ctx, "A", class.ID, "")
	bb := fx.CreateStudent(ctx, "B", class.ID, dorm.ID)
	fx.CreateStudent(ctx, "C", "", "")

	fx.CreatePermission(ctx, a.ID, "2025-01-12", models.PermissionTypePermission, testutil.Period)
	fx.CreatePermission(ctx, a.ID, "2024-09-12", models.PermissionTypeSick, models.PeriodScope{AcademicYear: "2024/2025", Semester: "1"})
	fx.CreateAbsence(ctx, a.ID, "2025-01-10", "", testutil.Period)
	fx.CreateLeave(ctx, bb.ID, "2025-01-10", models.LeaveSick, testutil.Period)
	fx.CreatePrayerAbsence(ctx, bb.ID, "2025-01-10", "Subuh", models.AbsenceUnexcused)
	fx.CreateCeremonyAbsence(ctx, bb.ID, "2025-01-11", models.AbsenceSick)

	counts, err := metricsstore.FetchDashboardCounts(ctx, b, testutil.Period)
	if err != nil {
		t.Fatalf("FetchDashboardCounts failed: %v", err)
	}
	want := metricsstore.Counts{
		Students:            3,
		ClassStudents:       2,
		DormitoryStudents:   1,
		Classes:             1,
		Dormitories:         1,
		Courses:             1,
		AcademicPermissions: 1,
		AcademicAbsences:    1,
		DormitoryLeaves:     1,
		DormitoryAbsences:   2,
	}
	if counts != want {
		t.Errorf("counts:\n got %+v\nwant %+v", counts, want)
	}
}

func TestFetchDashboardCounts_FailsOnBackendError(t *testing.T) {
	b := testutil.NewMemoryBackend()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := metricsstore.FetchDashboardCounts(ctx, b, models.PeriodScope{})
	var be *backend.Error
	if err == nil || !errors.As(err, &be) {
		t.Errorf("expected a *backend.Error, got %v", err)
	}
}
