// internal/app/features/academic/permissions.go
package academic

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

type permissionInput struct {
	StudentID string  `json:"student_id" validate:"required" label:"Student"`
	Date      string  `json:"date" validate:"required,ymd" label:"Date"`
	Type      string  `json:"type" validate:"required,permtype" label:"Type"`
	Reason    *string `json:"reason" validate:"omitempty,max=1000" label:"Reason"`
}

type bulkPermissionInput struct {
	StudentIDs []string `json:"student_ids" validate:"required,min=1,max=500,dive,required" label:"Students"`
	Date       string   `json:"date" validate:"required,ymd" label:"Date"`
	Type       string   `json:"type" validate:"required,permtype" label:"Type"`
	Reason     *string  `json:"reason" validate:"omitempty,max=1000" label:"Reason"`
}

type permissionUpdate struct {
	Date   string  `json:"date" validate:"required,ymd" label:"Date"`
	Type   string  `json:"type" validate:"required,permtype" label:"Type"`
	Reason *string `json:"reason" validate:"omitempty,max=1000" label:"Reason"`
}

// ServePermissions handles GET /academic/permissions.
//
// Query: from, to, student_id, class_id, type (sick|permission), start, limit.
// Rows are joined records, newest first.
func (h *Handler) ServePermissions(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		h.ErrLog.Invalid(w, err)
		return
	}
	kind := query.Get(r, "type")
	if kind != "" && !models.IsPermissionType(kind) {
		h.ErrLog.Invalid(w, inputval.Invalid("type", "Type must be sick or permission."))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := h.Loader.Academic(ctx, f)
	if err != nil {
		h.ErrLog.LogUnavailable(w, r, "academic: permissions", err, unavailable)
		return
	}
	rows := onlyKind(onlySource(res.Records, recap.SourceAcademicPermission), kind)
	respond.JSON(w, http.StatusOK, paging.Apply(rows, paging.Parse(r)))
}

// HandleCreatePermission handles POST /academic/permissions.
func (h *Handler) HandleCreatePermission(w http.ResponseWriter, r *http.Request) {
	var in permissionInput
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
	rows, err := h.Store.CreatePermissions(ctx, []models.AcademicPermission{{
		StudentID:    in.StudentID,
		Date:         in.Date,
		Type:         in.Type,
		Reason:       inputval.CleanTextPtr(in.Reason),
		AcademicYear: period.AcademicYear,
		Semester:     period.Semester,
	}})
	if err != nil {
		h.storeError(w, r, "academic: create permission", err)
		return
	}
	h.Log.Info("academic permission created", zap.String("id", rows[0].ID), zap.String("type", in.Type))
	respond.JSON(w, http.StatusCreated, rows[0])
}

// HandleBulkPermissions handles POST /academic/permissions/bulk: one date and
// type for many students. Nothing is stored if any student is unknown.
func (h *Handler) HandleBulkPermissions(w http.ResponseWriter, r *http.Request) {
	var in bulkPermissionInput
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
	reason := inputval.CleanTextPtr(in.Reason)
	batch := make([]models.AcademicPermission, len(ids))
	for i, id := range ids {
		batch[i] = models.AcademicPermission{
			StudentID:    id,
			Date:         in.Date,
			Type:         in.Type,
			Reason:       reason,
			AcademicYear: period.AcademicYear,
			Semester:     period.Semester,
		}
	}
	rows, err := h.Store.CreatePermissions(ctx, batch)
	if err != nil {
		h.storeError(w, r, "academic: bulk permissions", err)
		return
	}
	h.Log.Info("academic permissions created", zap.Int("count", len(rows)))
	respond.JSON(w, http.StatusCreated, map[string]any{"created": len(rows), "items": rows})
}

// HandleUpdatePermission handles PUT /academic/permissions/{id}.
func (h *Handler) HandleUpdatePermission(w http.ResponseWriter, r *http.Request) {
	var in permissionUpdate
	if !h.decode(w, r, &in) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err := h.Store.UpdatePermission(ctx, chi.URLParam(r, "id"), models.AcademicPermission{
		Date:   in.Date,
		Type:   in.Type,
		Reason: inputval.CleanTextPtr(in.Reason),
	})
	if err != nil {
		h.storeError(w, r, "academic: update permission", err)
		return
	}
	respond.NoContent(w)
}

// HandleDeletePermission handles DELETE /academic/permissions/{id}.
func (h *Handler) HandleDeletePermission(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Store.DeletePermission(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogServerError(w, r, "academic: delete permission", err, "could not delete the record")
		return
	}
	if n == 0 {
		h.ErrLog.LogNotFound(w, r, "record not found")
		return
	}
	respond.NoContent(w)
}
