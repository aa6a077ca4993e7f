package login_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	uierrors "github.com/dalemusser/rekaphub/internal/app/features/errors"
	"github.com/dalemusser/rekaphub/internal/app/features/login"
	"github.com/dalemusser/rekaphub/internal/app/system/auth"
	"github.com/dalemusser/rekaphub/internal/app/system/authutil"
	"github.com/dalemusser/rekaphub/internal/app/system/ratelimit"
	"github.com/dalemusser/rekaphub/internal/domain/models"
	"github.com/dalemusser/rekaphub/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

var defaultPeriod = models.PeriodScope{AcademicYear: "2024/2025", Semester: "1"}

type env struct {
	handler *login.Handler
	sm      *auth.SessionManager
}

func newEnv(t *testing.T, limiter *ratelimit.LoginLimiter) env {
	t.Helper()
	logger := zap.NewNop()
	b := testutil.NewMemoryBackend()
	fx := testutil.NewFixtures(t, b)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	hash, err := authutil.HashPassword("rahasia-123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	fx.CreateProfile(ctx, "Akademik", models.RoleAcademicAdmin, hash)
	fx.CreateProfile(ctx, "nohash", models.RoleDormitoryAdmin, "")

	sm, err := auth.NewSessionManager("test-session-key-for-testing-only-32b", "test-session", "", time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	h := login.NewHandler(b, sm, limiter, defaultPeriod, uierrors.NewErrorLogger(logger), logger)
	return env{handler: h, sm: sm}
}

func (e env) router() http.Handler {
	r := chi.NewRouter()
	r.Use(e.sm.LoadSessionUser)
	r.Mount("/login", login.Routes(e.handler))
	r.Mount("/period", login.PeriodRoutes(e.handler, e.sm))
	return r
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "test-session" {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func TestHandleLogin_Success(t *testing.T) {
	e := newEnv(t, nil)
	req := testutil.NewJSONRequest(t, http.MethodPost, "/login", map[string]string{
		"username": "akademik", "password": "rahasia-123",
		"academic_year": "2025/2026", "semester": "genap",
	})
	rec := httptest.NewRecorder()
	e.router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}
	var got struct {
		Username string             `json:"username"`
		Role     string             `json:"role"`
		Period   models.PeriodScope `json:"period"`
	}
	(&testutil.ResponseRecorder{ResponseRecorder: rec}).DecodeJSON(t, &got)
	if got.Username != "Akademik" || got.Role != models.RoleAcademicAdmin {
		t.Errorf("session = %+v", got)
	}
	want := models.PeriodScope{AcademicYear: "2025/2026", Semester: "2"}
	if got.Period != want {
		t.Errorf("period = %+v, want %+v", got.Period, want)
	}
	sessionCookie(t, rec)
}

func TestHandleLogin_DefaultPeriod(t *testing.T) {
	e := newEnv(t, nil)
	req := testutil.NewJSONRequest(t, http.MethodPost, "/login", map[string]string{
		"username": "akademik", "password": "rahasia-123", "semester": "2",
	})
	rec := httptest.NewRecorder()
	e.router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body %s", rec.Code, rec.Body.String())
	}
	var got struct {
		Period models.PeriodScope `json:"period"`
	}
	(&testutil.ResponseRecorder{ResponseRecorder: rec}).DecodeJSON(t, &got)
	want := models.PeriodScope{AcademicYear: "2024/2025", Semester: "2"}
	if got.Period != want {
		t.Errorf("period = %+v, want %+v", got.Period, want)
	}
}

func TestHandleLogin_Rejections(t *testing.T) {
	tests := []struct {
		name string
		body any
		want int
	}{
		{"wrong password", map[string]string{"username": "akademik", "password": "salah-sekali"}, http.StatusUnauthorized},
		{"unknown user", map[string]string{"username": "ghost", "password": "rahasia-123"}, http.StatusUnauthorized},
		{"profile without password", map[string]string{"username": "nohash", "password": "anything"}, http.StatusUnauthorized},
		{"missing password", map[string]string{"username": "akademik"}, http.StatusUnprocessableEntity},
		{"bad semester", map[string]string{"username": "akademik", "password": "x", "semester": "3"}, http.StatusUnprocessableEntity},
		{"bad year", map[string]string{"username": "akademik", "password": "x", "academic_year": "2024/2026"}, http.StatusUnprocessableEntity},
		{"unknown field", map[string]string{"user": "akademik"}, http.StatusBadRequest},
		{"not json", "{", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t, nil)
			rec := httptest.NewRecorder()
			e.router().ServeHTTP(rec, testutil.NewJSONRequest(t, http.MethodPost, "/login", tt.body))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d; body %s", rec.Code, tt.want, rec.Body.String())
			}
			for _, c := range rec.Result().Cookies() {
				if c.Name == "test-session" && c.MaxAge >= 0 {
					t.Error("session cookie set on a rejected sign-in")
				}
			}
		})
	}
}

func TestHandleLogin_Throttled(t *testing.T) {
	e := newEnv(t, ratelimit.NewLoginLimiterWithConfig(100, time.Minute, 2, time.Minute))
	r := e.router()
	body := map[string]string{"username": "akademik", "password": "wrong-one"}

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, testutil.NewJSONRequest(t, http.MethodPost, "/login", body))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d status = %d, want 401", i+1, rec.Code)
		}
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, testutil.NewJSONRequest(t, http.MethodPost, "/login", body))
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("third attempt status = %d, want 429", rec.Code)
	}
}

func TestPeriod_SwitchAfterLogin(t *testing.T) {
	e := newEnv(t, nil)
	r := e.router()

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, testutil.NewJSONRequest(t, http.MethodPost, "/login", map[string]string{
		"username": "akademik", "password": "rahasia-123",
	}))
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d", rec.Code)
	}
	cookie := sessionCookie(t, rec)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/period", map[string]string{
		"academic_year": "2023/2024", "semester": "ganjil",
	})
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("period status = %d; body %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/period", nil)
	req.AddCookie(sessionCookie(t, rec))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	var got struct {
		Period models.PeriodScope `json:"period"`
	}
	(&testutil.ResponseRecorder{ResponseRecorder: rec}).DecodeJSON(t, &got)
	want := models.PeriodScope{AcademicYear: "2023/2024", Semester: "1"}
	if got.Period != want {
		t.Errorf("period after switch = %+v, want %+v", got.Period, want)
	}
}

func TestPeriod_RequiresSignIn(t *testing.T) {
	e := newEnv(t, nil)
	rec := httptest.NewRecorder()
	e.router().ServeHTTP(rec, testutil.NewJSONRequest(t, http.MethodPost, "/period", map[string]string{
		"academic_year": "2023/2024", "semester": "1",
	}))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestPeriod_Invalid(t *testing.T) {
	e := newEnv(t, nil)
	req := testutil.NewJSONRequest(t, http.MethodPost, "/period", map[string]string{"academic_year": "2023"})
	req = testutil.WithUser(req, testutil.AcademicAdminUser())
	rec := httptest.NewRecorder()
	e.router().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}
