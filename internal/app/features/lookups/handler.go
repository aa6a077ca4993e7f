// internal/app/features/lookups/handler.go
//
// Package lookups serves the three name tables (classes, dormitories,
// courses). One Handler is mounted per table.
package lookups

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/rekaphub/internal/app/features/errors"
	lookupstore "github.com/dalemusser/rekaphub/internal/app/store/lookups"
	"github.com/dalemusser/rekaphub/internal/app/system/inputval"
	"github.com/dalemusser/rekaphub/internal/app/system/paging"
	"github.com/dalemusser/rekaphub/internal/app/system/respond"
	"github.com/dalemusser/rekaphub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	Store  *lookupstore.Store
	Noun   string // "class", "dormitory", "course"
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

func NewHandler(store *lookupstore.Store, noun string, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Store: store, Noun: noun, Log: logger.With(zap.String("table", store.Table())), ErrLog: errLog}
}

type nameInput struct {
	Name string `json:"name" validate:"required,max=200" label:"Name"`
}

type bulkInput struct {
	Names string `json:"names" validate:"required,max=100000" label:"Names"`
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := respond.Decode(w, r, dst); err != nil {
		h.ErrLog.LogBadRequest(w, r, h.Noun+": decode", err, err.Error())
		return false
	}
	if err := inputval.Check(dst); err != nil {
		h.ErrLog.Invalid(w, err)
		return false
	}
	return true
}

func (h *Handler) storeError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	switch {
	case errors.Is(err, lookupstore.ErrEmptyName):
		h.ErrLog.Invalid(w, inputval.Invalid("name", "Name is required."))
	case errors.Is(err, lookupstore.ErrDuplicateName):
		h.ErrLog.Conflict(w, "a "+h.Noun+" with this name already exists")
	default:
		h.ErrLog.LogStoreError(w, r, msg, err, "could not save the "+h.Noun)
	}
}

// ServeList handles GET /. Rows are ordered by name, case-insensitively.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	rows, err := h.Store.List(ctx)
	if err != nil {
		h.ErrLog.LogUnavailable(w, r, h.Noun+": list", err, "data unavailable")
		return
	}
	respond.JSON(w, http.StatusOK, paging.Apply(rows, paging.Parse(r)))
}

// ServeOne handles GET /{id}.
func (h *Handler) ServeOne(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	row, err := h.Store.GetByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogStoreError(w, r, h.Noun+": get", err, "data unavailable")
		return
	}
	respond.JSON(w, http.StatusOK, row)
}

// HandleCreate handles POST /.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in nameInput
	if !h.decode(w, r, &in) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	row, err := h.Store.Create(ctx, inputval.CleanText(in.Name))
	if err != nil {
		h.storeError(w, r, h.Noun+": create", err)
		return
	}
	h.Log.Info("lookup created", zap.String("id", row.ID), zap.String("name", row.Name))
	respond.JSON(w, http.StatusCreated, row)
}

// HandleBulkCreate handles POST /bulk with one name per line.
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

	rows, err := h.Store.CreateMany(ctx, names)
	if err != nil {
		h.storeError(w, r, h.Noun+": bulk create", err)
		return
	}
	h.Log.Info("lookups created", zap.Int("count", len(rows)))
	respond.JSON(w, http.StatusCreated, map[string]any{"created": len(rows), "items": rows})
}

// HandleRename handles PUT /{id}.
func (h *Handler) HandleRename(w http.ResponseWriter, r *http.Request) {
	var in nameInput
	if !h.decode(w, r, &in) {
		return
	}
	id := chi.URLParam(r, "id")
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Store.Rename(ctx, id, inputval.CleanText(in.Name)); err != nil {
		h.storeError(w, r, h.Noun+": rename", err)
		return
	}
	row, err := h.Store.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.LogStoreError(w, r, h.Noun+": reload", err, "data unavailable")
		return
	}
	respond.JSON(w, http.StatusOK, row)
}

// HandleDelete handles DELETE /{id}. Students keep the stale reference.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	id := chi.URLParam(r, "id")
	n, err := h.Store.Delete(ctx, id)
	if err != nil {
		h.ErrLog.LogServerError(w, r, h.Noun+": delete", err, "could not delete the "+h.Noun)
		return
	}
	if n == 0 {
		h.ErrLog.LogNotFound(w, r, h.Noun+" not found")
		return
	}
	h.Log.Info("lookup deleted", zap.String("id", id))
	respond.NoContent(w)
}
