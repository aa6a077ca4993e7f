// internal/app/features/errors/logger.go
package errors

import (
	stderrors "errors"
	"net/http"

	"github.com/dalemusser/rekaphub/internal/app/store/backend"
	"github.com/dalemusser/rekaphub/internal/app/system/authz"
	"github.com/dalemusser/rekaphub/internal/app/system/inputval"
	"github.com/dalemusser/rekaphub/internal/app/system/respond"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// ErrorLogger logs a failure with request context and writes the JSON error
// the client sees. msg goes to the log; userMsg goes to the client.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger wraps logger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

func (e *ErrorLogger) fields(r *http.Request, err error) []zap.Field {
	_, user, uid, _ := authz.UserCtx(r)
	fs := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("user", user),
		zap.String("user_id", uid),
	}
	if reqID := middleware.GetReqID(r.Context()); reqID != "" {
		fs = append(fs, zap.String("request_id", reqID))
	}
	if err != nil {
		fs = append(fs, zap.Error(err))
	}
	return fs
}

// LogServerError logs at error level and answers 500.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	e.log.Error(msg, e.fields(r, err)...)
	respond.Error(w, http.StatusInternalServerError, userMsg)
}

// LogUnavailable answers 503 for a fetch that failed at the backend.
func (e *ErrorLogger) LogUnavailable(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	e.log.Warn(msg, e.fields(r, err)...)
	respond.Error(w, http.StatusServiceUnavailable, userMsg)
}

// LogBadRequest logs at info level and answers 400.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	e.log.Info(msg, e.fields(r, err)...)
	respond.Error(w, http.StatusBadRequest, userMsg)
}

// LogForbidden answers 403.
func (e *ErrorLogger) LogForbidden(w http.ResponseWriter, r *http.Request, msg string) {
	e.log.Info(msg, e.fields(r, nil)...)
	respond.Error(w, http.StatusForbidden, "forbidden")
}

// LogNotFound answers 404.
func (e *ErrorLogger) LogNotFound(w http.ResponseWriter, r *http.Request, userMsg string) {
	e.log.Debug("not found", e.fields(r, nil)...)
	respond.Error(w, http.StatusNotFound, userMsg)
}

// LogStoreError maps a store failure onto a status:
// validation 422, not-found 404, duplicate 409, anything else 500.
func (e *ErrorLogger) LogStoreError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	var ve *inputval.ValidationError
	switch {
	case stderrors.As(err, &ve):
		respond.Fields(w, http.StatusUnprocessableEntity, ve.Message, ve.Fields)
	case backend.IsNotFound(err):
		e.LogNotFound(w, r, "record not found")
	case backend.IsDuplicate(err):
		e.log.Info(msg, e.fields(r, err)...)
		respond.Error(w, http.StatusConflict, "a record with the same name already exists")
	default:
		e.LogServerError(w, r, msg, err, userMsg)
	}
}

// Invalid answers 422 with the per-field messages. Not logged.
func (e *ErrorLogger) Invalid(w http.ResponseWriter, err error) {
	var ve *inputval.ValidationError
	if stderrors.As(err, &ve) {
		respond.Fields(w, http.StatusUnprocessableEntity, ve.Message, ve.Fields)
		return
	}
	respond.Error(w, http.StatusUnprocessableEntity, err.Error())
}

// Conflict answers 409 with a user-facing message. Not logged.
func (e *ErrorLogger) Conflict(w http.ResponseWriter, userMsg string) {
	respond.Error(w, http.StatusConflict, userMsg)
}
