package health_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/dalemusser/rekaphub/internal/app/features/health"
	"github.com/dalemusser/rekaphub/internal/app/store/backend"
	"github.com/dalemusser/rekaphub/internal/testutil"
	"go.uber.org/zap"
)

type healthBody struct {
	Status   string `json:"status"`
	Backend  string `json:"backend"`
	Database string `json:"database"`
	Message  string `json:"message"`
}

func TestServe_BackendConnected(t *testing.T) {
	handler := health.NewHandler(testutil.NewMemoryBackend(), backend.KindMemory, zap.NewNop())

	rec := testutil.NewRecorder()
	handler.Serve(rec, testutil.NewRequest("GET", "/health"))

	rec.AssertStatus(t, http.StatusOK)
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type: got %q", ct)
	}

	var body healthBody
	rec.DecodeJSON(t, &body)
	if body.Status != "ok" || body.Database != "connected" || body.Backend != "memory" {
		t.Errorf("unexpected body: %+v", body)
	}
}

// downBackend fails every ping.
type downBackend struct{ backend.Backend }

func (downBackend) Ping(context.Context) error {
	return backend.Wrap("ping", "", errors.New("connection refused"))
}

func TestServe_BackendDown(t *testing.T) {
	handler := health.NewHandler(downBackend{testutil.NewMemoryBackend()}, backend.KindPostgres, zap.NewNop())

	rec := testutil.NewRecorder()
	handler.Serve(rec, testutil.NewRequest("GET", "/health"))

	rec.AssertStatus(t, http.StatusServiceUnavailable)
	var body healthBody
	rec.DecodeJSON(t, &body)
	if body.Status != "error" || body.Database != "disconnected" {
		t.Errorf("unexpected body: %+v", body)
	}
	if body.Message != "Database unavailable" {
		t.Errorf("message: got %q", body.Message)
	}
}

func TestServe_Mongo(t *testing.T) {
	db := testutil.SetupTestDB(t)
	b := testutil.NewMongoBackend(t, db)
	handler := health.NewHandler(b, backend.KindMongo, zap.NewNop())

	rec := testutil.NewRecorder()
	handler.Serve(rec, testutil.NewRequest("GET", "/health"))
	rec.AssertStatus(t, http.StatusOK)
}
