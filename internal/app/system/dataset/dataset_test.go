package dataset_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dalemusser/rekaphub/internal/app/recap"
	"github.com/dalemusser/rekaphub/internal/app/store/backend"
	"github.com/dalemusser/rekaphub/internal/app/system/dataset"
	"github.com/dalemusser/rekaphub/internal/domain/models"
	"github.com/dalemusser/rekaphub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// failing rejects every Find against one table.
type failing struct {
	backend.Backend
	table string
}

func (f failing) Find(ctx context.Context, q backend.Query, dst any) error {
	if q.Table == f.table {
		return backend.Fail("find", q.Table, "connection refused", nil)
	}
	return f.Backend.Find(ctx, q, dst)
}

func TestAcademic_JoinsByClass(t *testing.T) {
	b := testutil.NewMemoryBackend()
	fx := testutil.NewFixtures(t, b)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	c1 := fx.CreateClass(ctx, "X-A")
	c2 := fx.CreateClass(ctx, "X-B")
	math := fx.CreateCourse(ctx, "Math")
	a := fx.CreateStudent(ctx, "Ani", c1.ID, "")
	z := fx.CreateStudent(ctx, "Zaki", c2.ID, "")

	fx.CreateAbsence(ctx, a.ID, "2025-01-10", math.ID, testutil.Period)
	fx.CreatePermission(ctx, a.ID, "2025-01-11", models.PermissionTypeSick, testutil.Period)
	fx.CreatePermission(ctx, z.ID, "2025-01-11", models.PermissionTypePermission, testutil.Period)
	fx.CreatePermission(ctx, a.ID, "2024-09-01", models.PermissionTypeSick, models.PeriodScope{AcademicYear: "2024/2025", Semester: "1"})

	l := dataset.NewLoader(b, zap.NewNop())

	all, err := l.Academic(ctx, dataset.AcademicFilter{Period: testutil.Period})
	require.NoError(t, err)
	assert.Len(t, all.Records, 3)
	assert.Equal(t, "Math", all.Records[len(all.Records)-1].Extra.Course)

	onlyC1, err := l.Academic(ctx, dataset.AcademicFilter{Period: testutil.Period, ClassID: c1.ID})
	require.NoError(t, err)
	assert.Len(t, onlyC1.Records, 2)
	for _, r := range onlyC1.Records {
		assert.Equal(t, c1.ID, r.GroupID)
		assert.Equal(t, "X-A", r.GroupName)
	}

	ranged, err := l.Academic(ctx, dataset.AcademicFilter{Period: testutil.Period, From: "2025-01-11", To: "2025-01-11"})
	require.NoError(t, err)
	assert.Equal(t, 2, recap.Totals(ranged.Records, recap.AcademicKinds).Total)
}

func TestDormitory_OnlyAffiliatedStudents(t *testing.T) {
	b := testutil.NewMemoryBackend()
	fx := testutil.NewFixtures(t, b)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	d := fx.CreateDormitory(ctx, "Putra")
	in := fx.CreateStudent(ctx, "Budi", "", d.ID)
	out := fx.CreateStudent(ctx, "Citra", "", "")

	fx.CreateLeave(ctx, in.ID, "2025-02-01", models.LeaveOvernight, testutil.Period)
	fx.CreateLeave(ctx, out.ID, "2025-02-01", models.LeaveSick, testutil.Period)
	fx.CreatePrayerAbsence(ctx, in.ID, "2025-02-02", "Subuh", models.AbsenceUnexcused)
	fx.CreateCeremonyAbsence(ctx, in.ID, "2025-02-03", models.AbsenceExcused)

	l := dataset.NewLoader(b, zap.NewNop())

	leaves, err := l.DormitoryLeaves(ctx, dataset.DormitoryFilter{Period: testutil.Period})
	require.NoError(t, err)
	require.Len(t, leaves.Records, 1)
	assert.Equal(t, "Putra", leaves.Records[0].GroupName)

	abs, err := l.DormitoryAbsences(ctx, dataset.DormitoryFilter{DormitoryID: d.ID})
	require.NoError(t, err)
	assert.Len(t, abs.Records, 2)
}

func TestLoad_FailureIsUnavailable(t *testing.T) {
	tables := []string{
		models.TableStudents,
		models.TableClasses,
		models.TableCourses,
		models.TableAcademicAbsences,
	}
	for _, table := range tables {
		t.Run(table, func(t *testing.T) {
			ctx, cancel := testutil.TestContext()
			defer cancel()
			l := dataset.NewLoader(failing{Backend: testutil.NewMemoryBackend(), table: table}, zap.NewNop())

			res, err := l.Academic(ctx, dataset.AcademicFilter{})
			require.Error(t, err)
			assert.True(t, errors.Is(err, dataset.ErrUnavailable))
			assert.Nil(t, res.Records)
		})
	}

	t.Run("dormitory", func(t *testing.T) {
		ctx, cancel := testutil.TestContext()
		defer cancel()
		l := dataset.NewLoader(failing{Backend: testutil.NewMemoryBackend(), table: models.TableDormitoryCeremonyAbsences}, zap.NewNop())
		_, err := l.DormitoryAbsences(ctx, dataset.DormitoryFilter{})
		assert.ErrorIs(t, err, dataset.ErrUnavailable)
	})
}
