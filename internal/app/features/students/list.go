// internal/app/features/students/list.go
package students

import (
	"context"
	"net/http"
	"strings"

	studentstore "github.com/dalemusser/rekaphub/internal/app/store/students"
	"github.com/dalemusser/rekaphub/internal/app/system/inputval"
	"github.com/dalemusser/rekaphub/internal/app/system/paging"
	"github.com/dalemusser/rekaphub/internal/app/system/respond"
	"github.com/dalemusser/rekaphub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
)

// ServeList handles GET /students.
//
// Query: class_id, dormitory_id, affiliation (class|dormitory), q (name
// substring, case- and accent-insensitive), start, limit.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	f := studentstore.ListFilter{
		ClassID:     query.Get(r, "class_id"),
		DormitoryID: query.Get(r, "dormitory_id"),
		Affiliation: query.Get(r, "affiliation"),
	}
	switch f.Affiliation {
	case "", studentstore.AffiliationClass, studentstore.AffiliationDormitory:
	default:
		h.ErrLog.Invalid(w, inputval.Invalid("affiliation", "Affiliation must be class or dormitory."))
		return
	}
	search := text.Fold(query.Get(r, "q"))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	rows, err := h.Students.List(ctx, f)
	if err != nil {
		h.ErrLog.LogUnavailable(w, r, "students: list", err, "data unavailable")
		return
	}
	names, err := h.groupNames(ctx)
	if err != nil {
		h.ErrLog.LogUnavailable(w, r, "students: group names", err, "data unavailable")
		return
	}

	views := make([]studentView, 0, len(rows))
	for _, st := range rows {
		if search != "" && !strings.Contains(st.NameCI, search) {
			continue
		}
		views = append(views, names.view(st))
	}
	respond.JSON(w, http.StatusOK, paging.Apply(views, paging.Parse(r)))
}

// ServeStudent handles GET /students/{id}.
func (h *Handler) ServeStudent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	st, err := h.Students.GetByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogStoreError(w, r, "students: get", err, "data unavailable")
		return
	}
	names, err := h.groupNames(ctx)
	if err != nil {
		h.ErrLog.LogUnavailable(w, r, "students: group names", err, "data unavailable")
		return
	}
	respond.JSON(w, http.StatusOK, names.view(st))
}
