// internal/app/features/dormitory/handler.go
//
// Package dormitory serves dormitory leaves, prayer and ceremony absences,
// and the dormitory recaps.
package dormitory

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/rekaphub/internal/app/features/errors"
	"github.com/dalemusser/rekaphub/internal/app/store/backend"
	dormitorystore "github.com/dalemusser/rekaphub/internal/app/store/dormitory"
	lookupstore "github.com/dalemusser/rekaphub/internal/app/store/lookups"
	studentstore "github.com/dalemusser/rekaphub/internal/app/store/students"
	"github.com/dalemusser/rekaphub/internal/app/system/authz"
	"github.com/dalemusser/rekaphub/internal/app/system/dataset"
	"github.com/dalemusser/rekaphub/internal/app/system/inputval"
	"github.com/dalemusser/rekaphub/internal/app/system/respond"
	"github.com/dalemusser/rekaphub/internal/app/system/timeouts"
	"github.com/dalemusser/rekaphub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const unavailable = "data unavailable"

type Handler struct {
	Store       *dormitorystore.Store
	Students    *studentstore.Store
	Dormitories *lookupstore.Store
	Loader      *dataset.Loader
	Log         *zap.Logger
	ErrLog      *uierrors.ErrorLogger
}

func NewHandler(b backend.Backend, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Store:       dormitorystore.New(b),
		Students:    studentstore.New(b),
		Dormitories: lookupstore.Dormitories(b),
		Loader:      dataset.NewLoader(b, logger),
		Log:         logger,
		ErrLog:      errLog,
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := respond.Decode(w, r, dst); err != nil {
		h.ErrLog.LogBadRequest(w, r, "dormitory: decode", err, err.Error())
		return false
	}
	if err := inputval.Check(dst); err != nil {
		h.ErrLog.Invalid(w, err)
		return false
	}
	return true
}

func (h *Handler) period(w http.ResponseWriter, r *http.Request) (models.PeriodScope, bool) {
	p := authz.Period(r)
	if p.IsZero() {
		h.ErrLog.Invalid(w, inputval.Invalid("period", "Select an academic period first."))
		return p, false
	}
	return p, true
}

// checkStudents rejects ids that do not name a dormitory student. Records
// of students without a dormitory would never show up in a recap.
func (h *Handler) checkStudents(ctx context.Context, ids []string) error {
	rows, err := h.Students.List(ctx, studentstore.ListFilter{IDs: ids, Affiliation: studentstore.AffiliationDormitory})
	if err != nil {
		return err
	}
	found := make(map[string]bool, len(rows))
	for _, st := range rows {
		found[st.ID] = true
	}
	for _, id := range ids {
		if !found[id] {
			return inputval.Invalid("student_id", "Student does not exist or has no dormitory.")
		}
	}
	return nil
}

func (h *Handler) storeError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	switch {
	case errors.Is(err, dormitorystore.ErrOvernightLimit):
		h.Log.Info("overnight leave rejected", zap.Error(err))
		h.ErrLog.Conflict(w, "the student already has an overnight leave in that month")
	case errors.Is(err, dormitorystore.ErrInvalidDate):
		h.ErrLog.Invalid(w, inputval.Invalid("date", "Date must be a date (YYYY-MM-DD)."))
	case errors.Is(err, dormitorystore.ErrInvalidType):
		h.ErrLog.Invalid(w, inputval.Invalid("type", "Type is not a known leave type."))
	case errors.Is(err, dormitorystore.ErrInvalidStatus):
		h.ErrLog.Invalid(w, inputval.Invalid("status", "Status must be unexcused, excused or sick."))
	case errors.Is(err, dormitorystore.ErrInvalidDays):
		h.ErrLog.Invalid(w, inputval.Invalid("number_of_days", "Number of days must be at least 1."))
	case errors.Is(err, dormitorystore.ErrNoStudent):
		h.ErrLog.Invalid(w, inputval.Invalid("student_id", "Student is required."))
	case errors.Is(err, dormitorystore.ErrNoPrayer):
		h.ErrLog.Invalid(w, inputval.Invalid("prayer", "Prayer is required."))
	default:
		h.ErrLog.LogStoreError(w, r, msg, err, "could not save the record")
	}
}

// deleteHandler answers 204, or 404 when del removed nothing.
func (h *Handler) deleteHandler(what string, del func(ctx context.Context, id string) (int64, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		defer cancel()

		n, err := del(ctx, chi.URLParam(r, "id"))
		if err != nil {
			h.ErrLog.LogServerError(w, r, "dormitory: delete "+what, err, "could not delete the record")
			return
		}
		if n == 0 {
			h.ErrLog.LogNotFound(w, r, "record not found")
			return
		}
		respond.NoContent(w)
	}
}

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
