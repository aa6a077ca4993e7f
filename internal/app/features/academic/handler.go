// internal/app/features/academic/handler.go
//
// Package academic serves academic permission and absence records and the
// recaps built from them.
package academic

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/rekaphub/internal/app/features/errors"
	academicstore "github.com/dalemusser/rekaphub/internal/app/store/academic"
	"github.com/dalemusser/rekaphub/internal/app/store/backend"
	lookupstore "github.com/dalemusser/rekaphub/internal/app/store/lookups"
	studentstore "github.com/dalemusser/rekaphub/internal/app/store/students"
	"github.com/dalemusser/rekaphub/internal/app/system/authz"
	"github.com/dalemusser/rekaphub/internal/app/system/dataset"
	"github.com/dalemusser/rekaphub/internal/app/system/inputval"
	"github.com/dalemusser/rekaphub/internal/app/system/respond"
	"github.com/dalemusser/rekaphub/internal/domain/models"
	"go.uber.org/zap"
)

const unavailable = "data unavailable"

type Handler struct {
	Store    *academicstore.Store
	Students *studentstore.Store
	Classes  *lookupstore.Store
	Courses  *lookupstore.Store
	Loader   *dataset.Loader
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
}

func NewHandler(b backend.Backend, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Store:    academicstore.New(b),
		Students: studentstore.New(b),
		Classes:  lookupstore.Classes(b),
		Courses:  lookupstore.Courses(b),
		Loader:   dataset.NewLoader(b, logger),
		Log:      logger,
		ErrLog:   errLog,
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := respond.Decode(w, r, dst); err != nil {
		h.ErrLog.LogBadRequest(w, r, "academic: decode", err, err.Error())
		return false
	}
	if err := inputval.Check(dst); err != nil {
		h.ErrLog.Invalid(w, err)
		return false
	}
	return true
}

// period returns the signed-in user's academic period. New rows are stamped
// with it, so writing without one is rejected.
func (h *Handler) period(w http.ResponseWriter, r *http.Request) (models.PeriodScope, bool) {
	p := authz.Period(r)
	if p.IsZero() {
		h.ErrLog.Invalid(w, inputval.Invalid("period", "Select an academic period first."))
		return p, false
	}
	return p, true
}

// checkStudents rejects ids that do not name a student.
func (h *Handler) checkStudents(ctx context.Context, ids []string) error {
	rows, err := h.Students.List(ctx, studentstore.ListFilter{IDs: ids})
	if err != nil {
		return err
	}
	found := make(map[string]bool, len(rows))
	for _, st := range rows {
		found[st.ID] = true
	}
	for _, id := range ids {
		if !found[id] {
			return inputval.Invalid("student_id", "Student does not exist.")
		}
	}
	return nil
}

func (h *Handler) checkCourse(ctx context.Context, courseID *string) error {
	if courseID == nil || *courseID == "" {
		return nil
	}
	if _, err := h.Courses.GetByID(ctx, *courseID); err != nil {
		if backend.IsNotFound(err) {
			return inputval.Invalid("course_id", "Course does not exist.")
		}
		return err
	}
	return nil
}

func (h *Handler) storeError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	switch {
	case errors.Is(err, academicstore.ErrInvalidDate):
		h.ErrLog.Invalid(w, inputval.Invalid("date", "Date must be a date (YYYY-MM-DD)."))
	case errors.Is(err, academicstore.ErrInvalidType):
		h.ErrLog.Invalid(w, inputval.Invalid("type", "Type must be sick or permission."))
	case errors.Is(err, academicstore.ErrNoStudent):
		h.ErrLog.Invalid(w, inputval.Invalid("student_id", "Student is required."))
	default:
		h.ErrLog.LogStoreError(w, r, msg, err, "could not save the record")
	}
}

// dedupe drops repeated and blank ids, keeping first occurrences in order.
func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
