package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/rekaphub/internal/app/system/auth"
	"github.com/dalemusser/rekaphub/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager(
		"test-session-key-must-be-32-chars-long",
		"test-session",
		"",
		24*time.Hour,
		false,
		zap.NewNop(),
	)
	require.NoError(t, err)
	return sm
}

func ok200() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestNewSessionManager_EmptyKey(t *testing.T) {
	_, err := auth.NewSessionManager("", "s", "", time.Hour, false, zap.NewNop())
	assert.Error(t, err)
}

func TestRequireSignedIn_NoUser_Returns401(t *testing.T) {
	sm := newTestSessionManager(t)
	rec := httptest.NewRecorder()
	sm.RequireSignedIn(ok200()).ServeHTTP(rec, httptest.NewRequest("GET", "/api/recap", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "sign in required")
}

func TestRequireSignedIn_WithUser_Proceeds(t *testing.T) {
	sm := newTestSessionManager(t)
	rec := httptest.NewRecorder()
	req := withTestUser(httptest.NewRequest("GET", "/api/recap", nil), models.RoleAcademicAdmin)
	sm.RequireSignedIn(ok200()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRole(t *testing.T) {
	sm := newTestSessionManager(t)
	handler := sm.RequireRole(models.RoleSuperAdmin, models.RoleDormitoryAdmin)(ok200())

	tests := []struct {
		role     string
		expected int
	}{
		{models.RoleSuperAdmin, http.StatusOK},
		{models.RoleDormitoryAdmin, http.StatusOK},
		{"DORMITORY_ADMIN", http.StatusOK},
		{models.RoleAcademicAdmin, http.StatusForbidden},
	}
	for _, tc := range tests {
		t.Run(tc.role, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, withTestUser(httptest.NewRequest("GET", "/", nil), tc.role))
			assert.Equal(t, tc.expected, rec.Code)
		})
	}

	t.Run("signed out", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestCurrentUser_NoUser(t *testing.T) {
	user, ok := auth.CurrentUser(httptest.NewRequest("GET", "/", nil))
	assert.False(t, ok)
	assert.Nil(t, user)
}

func TestSignIn_CookieRoundTrip(t *testing.T) {
	sm := newTestSessionManager(t)
	period := models.PeriodScope{AcademicYear: "2024/2025", Semester: "2"}

	rec := httptest.NewRecorder()
	err := sm.SignIn(rec, httptest.NewRequest("POST", "/login", nil), auth.SessionUser{
		ID: "p1", Username: "budi", Role: models.RoleAcademicAdmin, Period: period,
	})
	require.NoError(t, err)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	var seen *auth.SessionUser
	h := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = auth.CurrentUser(r)
	}))
	req := httptest.NewRequest("GET", "/dashboard", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, seen)
	assert.Equal(t, "p1", seen.ID)
	assert.Equal(t, "budi", seen.Username)
	assert.Equal(t, models.RoleAcademicAdmin, seen.Role)
	assert.Equal(t, period, seen.Period)
}

func TestLoadSessionUser_NoCookie(t *testing.T) {
	sm := newTestSessionManager(t)
	var found bool
	h := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, found = auth.CurrentUser(r)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	assert.False(t, found)
}

func TestSignOut_ExpiresCookie(t *testing.T) {
	sm := newTestSessionManager(t)
	rec := httptest.NewRecorder()
	require.NoError(t, sm.SignOut(rec, httptest.NewRequest("POST", "/logout", nil)))

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.True(t, cookies[0].MaxAge < 0)
}

func TestSetPeriod_RequiresSession(t *testing.T) {
	sm := newTestSessionManager(t)
	err := sm.SetPeriod(httptest.NewRecorder(), httptest.NewRequest("POST", "/period", nil),
		models.PeriodScope{AcademicYear: "2025/2026", Semester: "1"})
	assert.Error(t, err)
}

// withTestUser simulates what LoadSessionUser does for a signed-in request.
func withTestUser(r *http.Request, role string) *http.Request {
	return auth.WithTestUser(r, &auth.SessionUser{
		ID:       "p-test",
		Username: "tester",
		Role:     role,
		Period:   models.PeriodScope{AcademicYear: "2024/2025", Semester: "1"},
	})
}
