// internal/app/features/students/write.go
package students

import (
	"context"
	"net/http"

	"github.com/dalemusser/rekaphub/internal/app/system/inputval"
	"github.com/dalemusser/rekaphub/internal/app/system/respond"
	"github.com/dalemusser/rekaphub/internal/app/system/timeouts"
	"github.com/dalemusser/rekaphub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type studentInput struct {
	Name        string  `json:"name" validate:"required,max=200" label:"Name"`
	ClassID     *string `json:"class_id" label:"Class"`
	DormitoryID *string `json:"dormitory_id" label:"Dormitory"`
}

type bulkInput struct {
	Names       string  `json:"names" validate:"required,max=100000" label:"Names"`
	ClassID     *string `json:"class_id" label:"Class"`
	DormitoryID *string `json:"dormitory_id" label:"Dormitory"`
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := respond.Decode(w, r, dst); err != nil {
		h.ErrLog.LogBadRequest(w, r, "students: decode", err, err.Error())
		return false
	}
	if err := inputval.Check(dst); err != nil {
		h.ErrLog.Invalid(w, err)
		return false
	}
	return true
}

// HandleCreate handles POST /students.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in studentInput
	if !h.decode(w, r, &in) {
		return
	}
	in.Name = inputval.CleanText(in.Name)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.checkRefs(ctx, in.ClassID, in.DormitoryID); err != nil {
		h.storeError(w, r, "students: check refs", err)
		return
	}
	st, err := h.Students.Create(ctx, models.Student{Name: in.Name, ClassID: in.ClassID, DormitoryID: in.DormitoryID})
	if err != nil {
		h.storeError(w, r, "students: create", err)
		return
	}
	h.Log.Info("student created", zap.String("student_id", st.ID))
	respond.JSON(w, http.StatusCreated, st)
}

// HandleBulkCreate handles POST /students/bulk: one student per line, all
// placed in the same class and dormitory. Either every line is stored or none.
func (h *Handler) HandleBulkCreate(w http.ResponseWriter, r *http.Request) {
	var in bulkInput
	if !h.decode(w, r, &in) {
		return
	}
	names := inputval.SplitLines(in.Names)
	if len(names) == 0 {
		h.ErrLog.Invalid(w, inputval.Invalid("names", "Enter at least one name."))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.checkRefs(ctx, in.ClassID, in.DormitoryID); err != nil {
		h.storeError(w, r, "students: check refs", err)
		return
	}
	batch := make([]models.Student, len(names))
	for i, n := range names {
		batch[i] = models.Student{Name: n, ClassID: in.ClassID, DormitoryID: in.DormitoryID}
	}
	rows, err := h.Students.CreateMany(ctx, batch)
	if err != nil {
		h.storeError(w, r, "students: bulk create", err)
		return
	}
	h.Log.Info("students created", zap.Int("count", len(rows)))
	respond.JSON(w, http.StatusCreated, map[string]any{"created": len(rows), "students": rows})
}

// HandleUpdate handles PUT /students/{id}. Omitted references are cleared.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var in studentInput
	if !h.decode(w, r, &in) {
		return
	}
	in.Name = inputval.CleanText(in.Name)
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.checkRefs(ctx, in.ClassID, in.DormitoryID); err != nil {
		h.storeError(w, r, "students: check refs", err)
		return
	}
	if err := h.Students.Update(ctx, id, models.Student{Name: in.Name, ClassID: in.ClassID, DormitoryID: in.DormitoryID}); err != nil {
		h.storeError(w, r, "students: update", err)
		return
	}
	st, err := h.Students.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.LogStoreError(w, r, "students: reload", err, "data unavailable")
		return
	}
	respond.JSON(w, http.StatusOK, st)
}

// HandleDelete handles DELETE /students/{id}. Events that point at the
// student stay stored and drop out of every recap.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	id := chi.URLParam(r, "id")
	n, err := h.Students.Delete(ctx, id)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "students: delete", err, "could not delete the student")
		return
	}
	if n == 0 {
		h.ErrLog.LogNotFound(w, r, "student not found")
		return
	}
	h.Log.Info("student deleted", zap.String("student_id", id))
	respond.NoContent(w)
}
