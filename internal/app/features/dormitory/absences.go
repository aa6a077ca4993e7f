// internal/app/features/dormitory/absences.go
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

type prayerInput struct {
	StudentID string `json:"student_id" validate:"required" label:"Student"`
	Date      string `json:"date" validate:"required,ymd" label:"Date"`
	Prayer    string `json:"prayer" validate:"required,max=50" label:"Prayer"`
	Status    string `json:"status" validate:"required,absencestatus" label:"Status"`
}

type bulkPrayerInput struct {
	StudentIDs []string `json:"student_ids" validate:"required,min=1,max=500,dive,required" label:"Students"`
	Date       string   `json:"date" validate:"required,ymd" label:"Date"`
	Prayer     string   `json:"prayer" validate:"required,max=50" label:"Prayer"`
	Status     string   `json:"status" validate:"required,absencestatus" label:"Status"`
}

type prayerUpdate struct {
	Date   string `json:"date" validate:"required,ymd" label:"Date"`
	Prayer string `json:"prayer" validate:"required,max=50" label:"Prayer"`
	Status string `json:"status" validate:"required,absencestatus" label:"Status"`
}

type ceremonyInput struct {
	StudentID string `json:"student_id" validate:"required" label:"Student"`
	Date      string `json:"date" validate:"required,ymd" label:"Date"`
	Status    string `json:"status" validate:"required,absencestatus" label:"Status"`
}

type bulkCeremonyInput struct {
	StudentIDs []string `json:"student_ids" validate:"required,min=1,max=500,dive,required" label:"Students"`
	Date       string   `json:"date" validate:"required,ymd" label:"Date"`
	Status     string   `json:"status" validate:"required,absencestatus" label:"Status"`
}

type ceremonyUpdate struct {
	Date   string `json:"date" validate:"required,ymd" label:"Date"`
	Status string `json:"status" validate:"required,absencestatus" label:"Status"`
}

// serveAbsences lists one absence source. Query: from, to, student_id,
// dormitory_id, status, start, limit.
func (h *Handler) serveAbsences(w http.ResponseWriter, r *http.Request, src recap.Source) {
	f, err := parseFilter(r)
	if err != nil {
		h.ErrLog.Invalid(w, err)
		return
	}
	status := query.Get(r, "status")
	if status != "" && !models.IsAbsenceStatus(status) {
		h.ErrLog.Invalid(w, inputval.Invalid("status", "Status must be unexcused, excused or sick."))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := h.Loader.DormitoryAbsences(ctx, f)
	if err != nil {
		h.ErrLog.LogUnavailable(w, r, "dormitory: absences", err, unavailable)
		return
	}
	respond.JSON(w, http.StatusOK, paging.Apply(keep(res.Records, src, status), paging.Parse(r)))
}

// ServePrayerAbsences handles GET /dormitory/prayer-absences.
func (h *Handler) ServePrayerAbsences(w http.ResponseWriter, r *http.Request) {
	h.serveAbsences(w, r, recap.SourcePrayerAbsence)
}

// ServeCeremonyAbsences handles GET /dormitory/ceremony-absences.
func (h *Handler) ServeCeremonyAbsences(w http.ResponseWriter, r *http.Request) {
	h.serveAbsences(w, r, recap.SourceCeremonyAbsence)
}

// HandleCreatePrayerAbsence handles POST /dormitory/prayer-absences.
func (h *Handler) HandleCreatePrayerAbsence(w http.ResponseWriter, r *http.Request) {
	var in prayerInput
	if !h.decode(w, r, &in) {
		return
	}
	h.createPrayer(w, r, []string{in.StudentID}, in.Date, in.Prayer, in.Status, false)
}

// HandleBulkPrayerAbsences handles POST /dormitory/prayer-absences/bulk.
func (h *Handler) HandleBulkPrayerAbsences(w http.ResponseWriter, r *http.Request) {
	var in bulkPrayerInput
	if !h.decode(w, r, &in) {
		return
	}
	h.createPrayer(w, r, dedupe(in.StudentIDs), in.Date, in.Prayer, in.Status, true)
}

func (h *Handler) createPrayer(w http.ResponseWriter, r *http.Request, ids []string, date, prayer, status string, bulk bool) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.checkStudents(ctx, ids); err != nil {
		h.storeError(w, r, "dormitory: check students", err)
		return
	}
	prayer = inputval.CleanText(prayer)
	batch := make([]models.PrayerAbsence, len(ids))
	for i, id := range ids {
		batch[i] = models.PrayerAbsence{StudentID: id, Date: date, Prayer: prayer, Status: status}
	}
	rows, err := h.Store.CreatePrayerAbsences(ctx, batch)
	if err != nil {
		h.storeError(w, r, "dormitory: create prayer absence", err)
		return
	}
	h.Log.Info("prayer absences created", zap.Int("count", len(rows)), zap.String("prayer", prayer))
	if !bulk {
		respond.JSON(w, http.StatusCreated, rows[0])
		return
	}
	respond.JSON(w, http.StatusCreated, map[string]any{"created": len(rows), "items": rows})
}

// HandleUpdatePrayerAbsence handles PUT /dormitory/prayer-absences/{id}.
func (h *Handler) HandleUpdatePrayerAbsence(w http.ResponseWriter, r *http.Request) {
	var in prayerUpdate
	if !h.decode(w, r, &in) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err := h.Store.UpdatePrayerAbsence(ctx, chi.URLParam(r, "id"), models.PrayerAbsence{
		Date:   in.Date,
		Prayer: inputval.CleanText(in.Prayer),
		Status: in.Status,
	})
	if err != nil {
		h.storeError(w, r, "dormitory: update prayer absence", err)
		return
	}
	respond.NoContent(w)
}

// HandleCreateCeremonyAbsence handles POST /dormitory/ceremony-absences.
func (h *Handler) HandleCreateCeremonyAbsence(w http.ResponseWriter, r *http.Request) {
	var in ceremonyInput
	if !h.decode(w, r, &in) {
		return
	}
	h.createCeremony(w, r, []string{in.StudentID}, in.Date, in.Status, false)
}

// HandleBulkCeremonyAbsences handles POST /dormitory/ceremony-absences/bulk.
func (h *Handler) HandleBulkCeremonyAbsences(w http.ResponseWriter, r *http.Request) {
	var in bulkCeremonyInput
	if !h.decode(w, r, &in) {
		return
	}
	h.createCeremony(w, r, dedupe(in.StudentIDs), in.Date, in.Status, true)
}

func (h *Handler) createCeremony(w http.ResponseWriter, r *http.Request, ids []string, date, status string, bulk bool) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.checkStudents(ctx, ids); err != nil {
		h.storeError(w, r, "dormitory: check students", err)
		return
	}
	batch := make([]models.CeremonyAbsence, len(ids))
	for i, id := range ids {
		batch[i] = models.CeremonyAbsence{StudentID: id, Date: date, Status: status}
	}
	rows, err := h.Store.CreateCeremonyAbsences(ctx, batch)
	if err != nil {
		h.storeError(w, r, "dormitory: create ceremony absence", err)
		return
	}
	h.Log.Info("ceremony absences created", zap.Int("count", len(rows)))
	if !bulk {
		respond.JSON(w, http.StatusCreated, rows[0])
		return
	}
	respond.JSON(w, http.StatusCreated, map[string]any{"created": len(rows), "items": rows})
}

// HandleUpdateCeremonyAbsence handles PUT /dormitory/ceremony-absences/{id}.
func (h *Handler) HandleUpdateCeremonyAbsence(w http.ResponseWriter, r *http.Request) {
	var in ceremonyUpdate
	if !h.decode(w, r, &in) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err := h.Store.UpdateCeremonyAbsence(ctx, chi.URLParam(r, "id"), models.CeremonyAbsence{Date: in.Date, Status: in.Status})
	if err != nil {
		h.storeError(w, r, "dormitory: update ceremony absence", err)
		return
	}
	respond.NoContent(w)
}
