// internal/app/features/academic/absences.go
package academic

import (
	"context"
	"net/http"

	"github.com/dalemusser/rekaphub/internal/app/recap"
	"github.com/dalemusser/rekaphub/internal/app/system/paging"
	"github.com/dalemusser/rekaphub/internal/app/system/respond"
	"github.com/dalemusser/rekaphub/internal/app/system/timeouts"
	"github.com/dalemusser/rekaphub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type absenceInput struct {
	StudentID string  `json:"student_id" validate:"required" label:"Student"`
	Date      string  `json:"date" validate:"required,ymd" label:"Date"`
	CourseID  *string `json:"course_id" label:"Course"`
}

type bulkAbsenceInput struct {
	StudentIDs []string `json:"student_ids" validate:"required,min=1,max=500,dive,required" label:"Students"`
	Date       string   `json:"date" validate:"required,ymd" label:"Date"`
	CourseID   *string  `json:"course_id" label:"Course"`
}

type absenceUpdate struct {
	Date     string  `json:"date" validate:"required,ymd" label:"Date"`
	CourseID *string `json:"course_id" label:"Course"`
}

// ServeAbsences handles GET /academic/absences.
//
// Query: from, to, student_id, class_id, start, limit.
func (h *Handler) ServeAbsences(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		h.ErrLog.Invalid(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := h.Loader.Academic(ctx, f)
	if err != nil {
		h.ErrLog.LogUnavailable(w, r, "academic: absences", err, unavailable)
		return
	}
	rows := onlySource(res.Records, recap.SourceAcademicAbsence)
	respond.JSON(w, http.StatusOK, paging.Apply(rows, paging.Parse(r)))
}

// HandleCreateAbsence handles POST /academic/absences.
func (h *Handler) HandleCreateAbsence(w http.ResponseWriter, r *http.Request) {
	var in absenceInput
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
		h.storeError(w, r, "academic: check student", err)
		return
	}
	if err := h.checkCourse(ctx, in.CourseID); err != nil {
		h.storeError(w, r, "academic: check course", err)
		return
	}
	rows, err := h.Store.CreateAbsences(ctx, []models.AcademicAbsence{{
		StudentID:    in.StudentID,
		Date:         in.Date,
		CourseID:     in.CourseID,
		AcademicYear: period.AcademicYear,
		Semester:     period.Semester,
	}})
	if err != nil {
		h.storeError(w, r, "academic: create absence", err)
		return
	}
	h.Log.Info("academic absence created", zap.String("id", rows[0].ID))
	respond.JSON(w, http.StatusCreated, rows[0])
}

// HandleBulkAbsences handles POST /academic/absences/bulk: one date and
// course for many students.
func (h *Handler) HandleBulkAbsences(w http.ResponseWriter, r *http.Request) {
	var in bulkAbsenceInput
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
		h.storeError(w, r, "academic: check students", err)
		return
	}
	if err := h.checkCourse(ctx, in.CourseID); err != nil {
		h.storeError(w, r, "academic: check course", err)
		return
	}
	batch := make([]models.AcademicAbsence, len(ids))
	for i, id := range ids {
		batch[i] = models.AcademicAbsence{
			StudentID:    id,
			Date:         in.Date,
			CourseID:     in.CourseID,
			AcademicYear: period.AcademicYear,
			Semester:     period.Semester,
		}
	}
	rows, err := h.Store.CreateAbsences(ctx, batch)
	if err != nil {
		h.storeError(w, r, "academic: bulk absences", err)
		return
	}
	h.Log.Info("academic absences created", zap.Int("count", len(rows)))
	respond.JSON(w, http.StatusCreated, map[string]any{"created": len(rows), "items": rows})
}

// HandleUpdateAbsence handles PUT /academic/absences/{id}.
func (h *Handler) HandleUpdateAbsence(w http.ResponseWriter, r *http.Request) {
	var in absenceUpdate
	if !h.decode(w, r, &in) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.checkCourse(ctx, in.CourseID); err != nil {
		h.storeError(w, r, "academic: check course", err)
		return
	}
	err := h.Store.UpdateAbsence(ctx, chi.URLParam(r, "id"), models.AcademicAbsence{Date: in.Date, CourseID: in.CourseID})
	if err != nil {
		h.storeError(w, r, "academic: update absence", err)
		return
	}
	respond.NoContent(w)
}

// HandleDeleteAbsence handles DELETE /academic/absences/{id}.
func (h *Handler) HandleDeleteAbsence(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Store.DeleteAbsence(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogServerError(w, r, "academic: delete absence", err, "could not delete the record")
		return
	}
	if n == 0 {
		h.ErrLog.LogNotFound(w, r, "record not found")
		return
	}
	respond.NoContent(w)
}
