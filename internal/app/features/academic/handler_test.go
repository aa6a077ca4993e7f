package academic_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/rekaphub/internal/app/features/academic"
	uierrors "github.com/dalemusser/rekaphub/internal/app/features/errors"
	"github.com/dalemusser/rekaphub/internal/app/recap"
	academicstore "github.com/dalemusser/rekaphub/internal/app/store/academic"
	"github.com/dalemusser/rekaphub/internal/app/store/backend"
	"github.com/dalemusser/rekaphub/internal/app/system/auth"
	"github.com/dalemusser/rekaphub/internal/app/system/paging"
	"github.com/dalemusser/rekaphub/internal/domain/models"
	"github.com/dalemusser/rekaphub/internal/testutil"
	"go.uber.org/zap"
)

type env struct {
	t      *testing.T
	b      backend.Backend
	router http.Handler
	user   testutil.TestUser
}

func newEnv(t *testing.T, b backend.Backend) *env {
	t.Helper()
	logger := zap.NewNop()
	sm, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	h := academic.NewHandler(b, uierrors.NewErrorLogger(logger), logger)
	return &env{t: t, b: b, router: academic.Routes(h, sm), user: testutil.AcademicAdminUser()}
}

func (e *env) do(req *http.Request) *testutil.ResponseRecorder {
	e.t.Helper()
	rec := testutil.NewRecorder()
	e.router.ServeHTTP(rec, testutil.WithUser(req, e.user))
	return rec
}

func (e *env) get(target string) *testutil.ResponseRecorder {
	return e.do(testutil.NewRequest(http.MethodGet, target))
}

func (e *env) send(method, target string, body any) *testutil.ResponseRecorder {
	return e.do(testutil.NewJSONRequest(e.t, method, target, body))
}

func (e *env) permissions() []models.AcademicPermission {
	e.t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	rows, err := academicstore.New(e.b).Permissions(ctx, academicstore.Filter{})
	if err != nil {
		e.t.Fatalf("Permissions: %v", err)
	}
	return rows
}

func TestRoleGate(t *testing.T) {
	e := newEnv(t, testutil.NewMemoryBackend())
	e.user = testutil.DormitoryAdminUser()
	e.get("/timeline").AssertStatus(t, http.StatusForbidden)

	e.user = testutil.SuperAdminUser()
	e.get("/timeline").AssertStatus(t, http.StatusOK)
}

func TestCreatePermission(t *testing.T) {
	b := testutil.NewMemoryBackend()
	fx := testutil.NewFixtures(t, b)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	st := fx.CreateStudent(ctx, "Ahmad", "", "")
	e := newEnv(t, b)

	rec := e.send(http.MethodPost, "/permissions", map[string]any{
		"student_id": st.ID, "date": "2025-03-10", "type": models.PermissionTypeSick, "reason": "  demam <b>tinggi</b> ",
	})
	rec.AssertStatus(t, http.StatusCreated)

	rows := e.permissions()
	if len(rows) != 1 {
		t.Fatalf("stored %d rows", len(rows))
	}
	p := rows[0]
	if p.AcademicYear != testutil.Period.AcademicYear || p.Semester != testutil.Period.Semester {
		t.Errorf("period = %s/%s", p.AcademicYear, p.Semester)
	}
	if p.Reason == nil || *p.Reason != "demam tinggi" {
		t.Errorf("reason = %v", p.Reason)
	}
}

func TestCreatePermission_Rejects(t *testing.T) {
	b := testutil.NewMemoryBackend()
	fx := testutil.NewFixtures(t, b)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	st := fx.CreateStudent(ctx, "Ahmad", "", "")

	tests := []struct {
		name  string
		body  map[string]any
		field string
	}{
		{"no student", map[string]any{"date": "2025-03-10", "type": "sick"}, "student_id"},
		{"unknown student", map[string]any{"student_id": "ghost", "date": "2025-03-10", "type": "sick"}, "student_id"},
		{"no date", map[string]any{"student_id": st.ID, "type": "sick"}, "date"},
		{"bad date", map[string]any{"student_id": st.ID, "date": "10/03/2025", "type": "sick"}, "date"},
		{"bad type", map[string]any{"student_id": st.ID, "date": "2025-03-10", "type": "absent"}, "type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t, b)
			rec := e.send(http.MethodPost, "/permissions", tt.body)
			rec.AssertStatus(t, http.StatusUnprocessableEntity)
			rec.AssertContains(t, `"`+tt.field+`"`)
			if n := len(e.permissions()); n != 0 {
				t.Errorf("stored %d rows", n)
			}
		})
	}
}

func TestCreatePermission_NoPeriod(t *testing.T) {
	b := testutil.NewMemoryBackend()
	fx := testutil.NewFixtures(t, b)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	st := fx.CreateStudent(ctx, "Ahmad", "", "")

	e := newEnv(t, b)
	e.user.Period = models.PeriodScope{}
	rec := e.send(http.MethodPost, "/permissions", map[string]any{"student_id": st.ID, "date": "2025-03-10", "type": "sick"})
	rec.AssertStatus(t, http.StatusUnprocessableEntity)
	rec.AssertContains(t, "academic period")
}

func TestBulkPermissions_AllOrNothing(t *testing.T) {
	b := testutil.NewMemoryBackend()
	fx := testutil.NewFixtures(t, b)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	a := fx.CreateStudent(ctx, "Ahmad", "", "")
	bb := fx.CreateStudent(ctx, "Budi", "", "")
	e := newEnv(t, b)

	rec := e.send(http.MethodPost, "/permissions/bulk", map[string]any{
		"student_ids": []string{a.ID, "ghost", bb.ID}, "date": "2025-03-10", "type": "permission",
	})
	rec.AssertStatus(t, http.StatusUnprocessableEntity)
	if n := len(e.permissions()); n != 0 {
		t.Fatalf("stored %d rows after rejected batch", n)
	}

	rec = e.send(http.MethodPost, "/permissions/bulk", map[string]any{
		"student_ids": []string{a.ID, bb.ID, a.ID}, "date": "2025-03-10", "type": "permission",
	})
	rec.AssertStatus(t, http.StatusCreated)
	if n := len(e.permissions()); n != 2 {
		t.Errorf("stored %d rows, want 2", n)
	}
}

func TestUpdateAndDeletePermission(t *testing.T) {
	b := testutil.NewMemoryBackend()
	fx := testutil.NewFixtures(t, b)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	st := fx.CreateStudent(ctx, "Ahmad", "", "")
	p := fx.CreatePermission(ctx, st.ID, "2025-03-10", models.PermissionTypeSick, testutil.Period)
	e := newEnv(t, b)

	e.send(http.MethodPut, "/permissions/"+p.ID, map[string]any{"date": "2025-03-11", "type": "permission"}).
		AssertStatus(t, http.StatusNoContent)
	rows := e.permissions()
	if rows[0].Date != "2025-03-11" || rows[0].Type != models.PermissionTypePermission {
		t.Errorf("updated = %+v", rows[0])
	}

	e.send(http.MethodPut, "/permissions/ghost", map[string]any{"date": "2025-03-11", "type": "sick"}).
		AssertStatus(t, http.StatusNotFound)

	e.do(testutil.NewRequest(http.MethodDelete, "/permissions/"+p.ID)).AssertStatus(t, http.StatusNoContent)
	e.do(testutil.NewRequest(http.MethodDelete, "/permissions/"+p.ID)).AssertStatus(t, http.StatusNotFound)
}

func TestAbsences(t *testing.T) {
	b := testutil.NewMemoryBackend()
	fx := testutil.NewFixtures(t, b)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	c := fx.CreateClass(ctx, "X IPA")
	math := fx.CreateCourse(ctx, "Matematika")
	a := fx.CreateStudent(ctx, "Ahmad", c.ID, "")
	bb := fx.CreateStudent(ctx, "Budi", "", "")
	e := newEnv(t, b)

	e.send(http.MethodPost, "/absences", map[string]any{"student_id": a.ID, "date": "2025-03-10", "course_id": "ghost"}).
		AssertStatus(t, http.StatusUnprocessableEntity)
	e.send(http.MethodPost, "/absences", map[string]any{"student_id": a.ID, "date": "2025-03-10", "course_id": math.ID}).
		AssertStatus(t, http.StatusCreated)
	e.send(http.MethodPost, "/absences/bulk", map[string]any{"student_ids": []string{a.ID, bb.ID}, "date": "2025-03-12"}).
		AssertStatus(t, http.StatusCreated)

	rec := e.get("/absences?class_id=" + c.ID)
	rec.AssertStatus(t, http.StatusOK)
	var page paging.Page[recap.Record]
	rec.DecodeJSON(t, &page)
	if page.Total != 2 {
		t.Fatalf("class absences = %d, want 2", page.Total)
	}
	if page.Items[0].Date != "2025-03-12" || page.Items[0].Extra.Course != recap.UnknownCourse || page.Items[1].Extra.Course != "Matematika" {
		t.Errorf("items = %+v", page.Items)
	}

	rec = e.get("/absences?from=2025-03-11&to=2025-03-31")
	rec.DecodeJSON(t, &page)
	if page.Total != 2 {
		t.Errorf("ranged absences = %d, want 2", page.Total)
	}

	e.get("/absences?from=2025-03-11&to=2025-03-01").AssertStatus(t, http.StatusUnprocessableEntity)
	e.get("/absences?from=yesterday").AssertStatus(t, http.StatusUnprocessableEntity)
}

func TestTimeline(t *testing.T) {
	b := testutil.NewMemoryBackend()
	fx := testutil.NewFixtures(t, b)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	a := fx.CreateStudent(ctx, "Ahmad", "", "")
	bb := fx.CreateStudent(ctx, "Budi", "", "")
	fx.CreatePermission(ctx, bb.ID, "2025-03-10", models.PermissionTypeSick, testutil.Period)
	fx.CreateAbsence(ctx, a.ID, "2025-03-10", "", testutil.Period)
	fx.CreatePermission(ctx, a.ID, "2025-03-11", models.PermissionTypePermission, testutil.Period)
	fx.CreatePermission(ctx, a.ID, "2025-03-11", models.PermissionTypePermission, models.PeriodScope{AcademicYear: "2023/2024", Semester: "1"})
	fx.CreateAbsence(ctx, "deleted-student", "2025-03-11", "", testutil.Period)
	e := newEnv(t, b)

	rec := e.get("/timeline")
	rec.AssertStatus(t, http.StatusOK)
	var page paging.Page[recap.Record]
	rec.DecodeJSON(t, &page)
	if page.Total != 3 {
		t.Fatalf("timeline = %d records, want 3", page.Total)
	}
	want := []string{"Ahmad", "Ahmad", "Budi"}
	for i, r := range page.Items {
		if r.StudentName != want[i] {
			t.Errorf("item %d = %s, want %s", i, r.StudentName, want[i])
		}
	}
	if page.Items[0].Date != "2025-03-11" || page.Items[1].Source != recap.SourceAcademicAbsence {
		t.Errorf("order = %+v", page.Items)
	}

	rec = e.get("/timeline?kind=sick")
	rec.DecodeJSON(t, &page)
	if page.Total != 1 {
		t.Errorf("sick = %d", page.Total)
	}
	e.get("/timeline?kind=late").AssertStatus(t, http.StatusUnprocessableEntity)
}

func TestClassRecap(t *testing.T) {
	b := testutil.NewMemoryBackend()
	fx := testutil.NewFixtures(t, b)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	c := fx.CreateClass(ctx, "X IPA")
	other := fx.CreateClass(ctx, "XI IPA")
	bb := fx.CreateStudent(ctx, "B", c.ID, "")
	a := fx.CreateStudent(ctx, "A", c.ID, "")
	z := fx.CreateStudent(ctx, "Z", other.ID, "")
	fx.CreateAbsence(ctx, a.ID, "2025-01-10", "", testutil.Period)
	fx.CreateAbsence(ctx, a.ID, "2025-01-10", "", testutil.Period)
	fx.CreatePermission(ctx, a.ID, "2025-01-12", models.PermissionTypePermission, testutil.Period)
	fx.CreatePermission(ctx, bb.ID, "2025-01-11", models.PermissionTypeSick, testutil.Period)
	fx.CreatePermission(ctx, z.ID, "2025-01-11", models.PermissionTypeSick, testutil.Period)
	e := newEnv(t, b)

	rec := e.get("/recap/classes/" + c.ID)
	rec.AssertStatus(t, http.StatusOK)
	var got struct {
		Class    models.Named             `json:"class"`
		Total    recap.Aggregate          `json:"total"`
		Students []recap.StudentAggregate `json:"students"`
	}
	rec.DecodeJSON(t, &got)

	if got.Class.Name != "X IPA" || got.Total.Total != 4 || got.Total.UniqueDays != 3 {
		t.Errorf("class total = %+v", got.Total)
	}
	if len(got.Students) != 2 || got.Students[0].StudentName != "A" || got.Students[1].StudentName != "B" {
		t.Fatalf("students = %+v", got.Students)
	}
	ag := got.Students[0].Aggregate
	if ag.Count(recap.KindAbsent) != 2 || ag.Count(recap.KindPermission) != 1 || ag.Count(recap.KindSick) != 0 || ag.Total != 3 || ag.UniqueDays != 2 {
		t.Errorf("A = %+v", ag)
	}
	bg := got.Students[1].Aggregate
	if bg.Count(recap.KindSick) != 1 || bg.Total != 1 || bg.UniqueDays != 1 {
		t.Errorf("B = %+v", bg)
	}

	e.get("/recap/classes/ghost").AssertStatus(t, http.StatusNotFound)
}

func TestStudentRecap(t *testing.T) {
	b := testutil.NewMemoryBackend()
	fx := testutil.NewFixtures(t, b)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	c := fx.CreateClass(ctx, "X IPA")
	math := fx.CreateCourse(ctx, "Matematika")
	a := fx.CreateStudent(ctx, "Ahmad", c.ID, "")
	other := fx.CreateStudent(ctx, "Budi", c.ID, "")
	for _, d := range []string{"2025-02-04", "2025-01-20", "2025-03-01", "2025-01-05"} {
		fx.CreateAbsence(ctx, a.ID, d, math.ID, testutil.Period)
	}
	fx.CreateAbsence(ctx, a.ID, "2025-01-07", "", testutil.Period)
	fx.CreatePermission(ctx, a.ID, "2025-01-05", models.PermissionTypeSick, testutil.Period)
	fx.CreateAbsence(ctx, other.ID, "2025-01-01", math.ID, testutil.Period)
	e := newEnv(t, b)

	rec := e.get("/recap/students/" + a.ID)
	rec.AssertStatus(t, http.StatusOK)
	var got struct {
		Student struct {
			Name      string `json:"name"`
			ClassName string `json:"class_name"`
		} `json:"student"`
		Aggregate recap.Aggregate `json:"aggregate"`
		Records   []recap.Record  `json:"records"`
	}
	rec.DecodeJSON(t, &got)
	if got.Student.ClassName != "X IPA" || got.Aggregate.Total != 6 || got.Aggregate.UniqueDays != 5 || len(got.Records) != 6 {
		t.Errorf("recap = %+v", got)
	}

	rec = e.get("/recap/students/" + a.ID + "/courses")
	rec.AssertStatus(t, http.StatusOK)
	var courses struct {
		N       int                 `json:"n"`
		Courses map[string][]string `json:"courses"`
	}
	rec.DecodeJSON(t, &courses)
	mt := courses.Courses["Matematika"]
	if courses.N != 3 || len(mt) != 3 || mt[0] != "2025-01-05" || mt[2] != "2025-02-04" {
		t.Errorf("Matematika = %v", mt)
	}
	if len(courses.Courses[recap.UnknownCourse]) != 1 {
		t.Errorf("courses = %v", courses.Courses)
	}

	e.get("/recap/students/" + a.ID + "/courses?n=0").AssertStatus(t, http.StatusUnprocessableEntity)
	e.get("/recap/students/ghost").AssertStatus(t, http.StatusNotFound)
}

func TestRecap_Unavailable(t *testing.T) {
	b := testutil.NewFailingBackend(testutil.NewMemoryBackend(), models.TableAcademicAbsences)
	e := newEnv(t, b)
	rec := e.get("/timeline")
	rec.AssertStatus(t, http.StatusServiceUnavailable)
	rec.AssertContains(t, "data unavailable")
}
