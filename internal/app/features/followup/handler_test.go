package followup_test

import (
	"net/http"
	"testing"
	"time"

	uierrors "github.com/dalemusser/rekaphub/internal/app/features/errors"
	"github.com/dalemusser/rekaphub/internal/app/features/followup"
	"github.com/dalemusser/rekaphub/internal/app/recap"
	"github.com/dalemusser/rekaphub/internal/app/store/backend"
	"github.com/dalemusser/rekaphub/internal/app/system/auth"
	ackcookie "github.com/dalemusser/rekaphub/internal/app/system/followup"
	"github.com/dalemusser/rekaphub/internal/app/system/paging"
	"github.com/dalemusser/rekaphub/internal/domain/models"
	"github.com/dalemusser/rekaphub/internal/testutil"
	"go.uber.org/zap"
)

func newRouter(t *testing.T, b backend.Backend) http.Handler {
	t.Helper()
	logger := zap.NewNop()
	sm, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	codec := ackcookie.NewCookieCodec([]byte("followup-test-key-0123456789abcd"), "", 0, false)
	h := followup.NewHandler(b, codec, uierrors.NewErrorLogger(logger), logger)
	return followup.Routes(h, sm)
}

func serve(router http.Handler, req *http.Request, user testutil.TestUser, cookies []*http.Cookie) *testutil.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.WithUser(req, user))
	return rec
}

func list(t *testing.T, router http.Handler, cookies []*http.Cookie) paging.Page[recap.Record] {
	t.Helper()
	rec := serve(router, testutil.NewRequest(http.MethodGet, "/"), testutil.AcademicAdminUser(), cookies)
	rec.AssertStatus(t, http.StatusOK)
	var page paging.Page[recap.Record]
	rec.DecodeJSON(t, &page)
	return page
}

func TestFollowUp_ConfirmHidesAbsence(t *testing.T) {
	b := testutil.NewMemoryBackend()
	fx := testutil.NewFixtures(t, b)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	c := fx.CreateClass(ctx, "X IPA")
	ahmad := fx.CreateStudent(ctx, "Ahmad", c.ID, "")
	budi := fx.CreateStudent(ctx, "Budi", c.ID, "")
	first := fx.CreateAbsence(ctx, ahmad.ID, "2025-03-10", "", testutil.Period)
	fx.CreateAbsence(ctx, budi.ID, "2025-03-10", "", testutil.Period)
	fx.CreateAbsence(ctx, budi.ID, "2025-03-12", "", testutil.Period)
	fx.CreatePermission(ctx, ahmad.ID, "2025-03-12", models.PermissionTypeSick, testutil.Period)
	router := newRouter(t, b)

	page := list(t, router, nil)
	if page.Total != 3 {
		t.Fatalf("open = %d, want 3 (permissions never need follow-up)", page.Total)
	}
	if page.Items[0].Date != "2025-03-12" || page.Items[1].StudentName != "Ahmad" {
		t.Errorf("order = %+v", page.Items)
	}

	rec := serve(router, testutil.NewRequest(http.MethodPost, "/"+first.ID+"/confirm"), testutil.AcademicAdminUser(), nil)
	rec.AssertStatus(t, http.StatusNoContent)
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != ackcookie.DefaultCookieName {
		t.Fatalf("cookies = %v", cookies)
	}

	page = list(t, router, cookies)
	if page.Total != 2 {
		t.Fatalf("open after confirm = %d, want 2", page.Total)
	}
	for _, r := range page.Items {
		if r.ID == first.ID {
			t.Errorf("confirmed absence still listed")
		}
	}

	// Confirmation is local: another browser still sees everything.
	if got := list(t, router, nil).Total; got != 3 {
		t.Errorf("fresh browser open = %d, want 3", got)
	}
}

func TestFollowUp_TamperedCookieIgnored(t *testing.T) {
	b := testutil.NewMemoryBackend()
	fx := testutil.NewFixtures(t, b)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	st := fx.CreateStudent(ctx, "Ahmad", "", "")
	fx.CreateAbsence(ctx, st.ID, "2025-03-10", "", testutil.Period)
	router := newRouter(t, b)

	forged := []*http.Cookie{{Name: ackcookie.DefaultCookieName, Value: "not-signed"}}
	if got := list(t, router, forged).Total; got != 1 {
		t.Errorf("open = %d, want 1", got)
	}
}

func TestFollowUp_Gate(t *testing.T) {
	router := newRouter(t, testutil.NewMemoryBackend())
	rec := serve(router, testutil.NewRequest(http.MethodGet, "/"), testutil.DormitoryAdminUser(), nil)
	rec.AssertStatus(t, http.StatusForbidden)
}

func TestFollowUp_Unavailable(t *testing.T) {
	router := newRouter(t, testutil.NewFailingBackend(testutil.NewMemoryBackend(), models.TableAcademicAbsences))
	rec := serve(router, testutil.NewRequest(http.MethodGet, "/"), testutil.AcademicAdminUser(), nil)
	rec.AssertStatus(t, http.StatusServiceUnavailable)
}
