// internal/app/features/dormitory/leaves.go
package dormitory

import (
	"context"
	"net/http"

	"github.com/dalemusser/rekaphub/internal/app/recap"
	"github.com/dalemusser/rekaphub/internal/app/system/inputval"
	"github.com/dalemusser/rekaphub/internal/app/system/paging"
	"github.com/dalemusser/rekaphub/internal/app/system/respond"
	"github.com/dalemusser/rekaphub/internal/app/system/timeouts"
	"github.com/dalemusser/rekaphub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type leaveInput struct {
	StudentID    string  `json:"student_id" validate:"required" label:"Student"`
	Date         string  `json:"date" validate:"required,ymd" label:"Date"`
	Type         string  `json:"type" validate:"required,leavetype" label:"Type"`
	NumberOfDays int     `json:"number_of_days" validate:"omitempty,min=1,max=365" label:"Number of days"`
	Reason       *string `json:"reason" validate:"omitempty,max=1000" label:"Reason"`
}

type bulkLeaveInput struct {
	StudentIDs   []string `json:"student_ids" validate:"required,min=1,max=500,dive,required" label:"Students"`
	Date         string   `json:"date" validate:"required,ymd" label:"Date"`
	Type         string   `json:"type" validate:"required,leavetype" label:"Type"`
	NumberOfDays int      `json:"number_of_days" validate:"omitempty,min=1,max=365" label:"Number of days"`
	Reason       *string  `json:"reason" validate:"omitempty,max=1000" label:"Reason"`
}

type leaveUpdate struct {
	Date         string  `json:"date" validate:"required,ymd" label:"Date"`
	Type         string  `json:"type" validate:"required,leavetype" label:"Type"`
	NumberOfDays int     `json:"number_of_days" validate:"omitempty,min=1,max=365" label:"Number of days"`
	Reason       *string `json:"reason" validate:"omitempty,max=1000" label:"Reason"`
}

// days defaults an omitted day count to one.
func days(n int) int {
	if n == 0 {
		return 1
	}
	return n
}

// ServeLeaves handles GET /dormitory/leaves.
//
// Query: from, to, student_id, dormitory_id, type, start, limit.
func (h *Handler) ServeLeaves(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		h.ErrLog.Invalid(w, err)
		return
	}
	kind := query.Get(r, "type")
	if kind != "" && !models.IsLeaveType(kind) {
		h.ErrLog.Invalid(w, inputval.Invalid("type", "Type is not a known leave type."))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := h.Loader.DormitoryLeaves(ctx, f)
	if err != nil {
		h.ErrLog.LogUnavailable(w, r, "dormitory: leaves", err, unavailable)
		return
	}
	rows := keep(res.Records, recap.SourceDormitoryLeave, kind)
	respond.JSON(w, http.StatusOK, paging.Apply(rows, paging.Parse(r)))
}

// HandleCreateLeave handles POST /dormitory/leaves. A second overnight
// leave for the same student in one calendar month answers 409.
func (h *Handler) HandleCreateLeave(w http.ResponseWriter, r *http.Request) {
	var in leaveInput
	if !h.decode(w, r, &in) {
		return
	}
	period, ok := h.period(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.checkStudents(ctx, []string{in.StudentID}); err != nil {
		h.storeError(w, r, "dormitory: check student", err)
		return
	}
	rows, err := h.Store.CreateLeaves(ctx, []models.DormitoryPermission{{
		StudentID:    in.StudentID,
		Date:         in.Date,
		Type:         in.Type,
		NumberOfDays: days(in.NumberOfDays),
		Reason:       inputval.CleanTextPtr(in.Reason),
		AcademicYear: period.AcademicYear,
		Semester:     period.Semester,
	}})
	if err != nil {
		h.storeError(w, r, "dormitory: create leave", err)
		return
	}
	h.Log.Info("dormitory leave created", zap.String("id", rows[0].ID), zap.String("type", in.Type))
	respond.JSON(w, http.StatusCreated, rows[0])
}

// HandleBulkLeaves handles POST /dormitory/leaves/bulk. The overnight rule
// is checked against stored leaves and across the batch; one violation
// rejects everything.
func (h *Handler) HandleBulkLeaves(w http.ResponseWriter, r *http.Request) {
	var in bulkLeaveInput
	if !h.decode(w, r, &in) {
		return
	}
	period, ok := h.period(w, r)
	if !ok {
		return
	}
	ids := dedupe(in.StudentIDs)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.checkStudents(ctx, ids); err != nil {
		h.storeError(w, r, "dormitory: check students", err)
		return
	}
	reason := inputval.CleanTextPtr(in.Reason)
	batch := make([]models.DormitoryPermission, len(ids))
	for i, id := range ids {
		batch[i] = models.DormitoryPermission{
			StudentID:    id,
			Date:         in.Date,
			Type:         in.Type,
			NumberOfDays: days(in.NumberOfDays),
			Reason:       reason,
			AcademicYear: period.AcademicYear,
			Semester:     period.Semester,
		}
	}
	rows, err := h.Store.CreateLeaves(ctx, batch)
	if err != nil {
		h.storeError(w, r, "dormitory: bulk leaves", err)
		return
	}
	h.Log.Info("dormitory leaves created", zap.Int("count", len(rows)))
	respond.JSON(w, http.StatusCreated, map[string]any{"created": len(rows), "items": rows})
}

// HandleUpdateLeave handles PUT /dormitory/leaves/{id}.
func (h *Handler) HandleUpdateLeave(w http.ResponseWriter, r *http.Request) {
	var in leaveUpdate
	if !h.decode(w, r, &in) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err := h.Store.UpdateLeave(ctx, chi.URLParam(r, "id"), models.DormitoryPermission{
		Date:         in.Date,
		Type:         in.Type,
		NumberOfDays: days(in.NumberOfDays),
		Reason:       inputval.CleanTextPtr(in.Reason),
	})
	if err != nil {
		h.storeError(w, r, "dormitory: update leave", err)
		return
	}
	respond.NoContent(w)
}
