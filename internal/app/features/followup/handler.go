// internal/app/features/followup/handler.go
//
// Package followup serves the absence triage list. Confirming an absence
// only records its id in a signed cookie; no stored row changes.
package followup

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/rekaphub/internal/app/features/errors"
	"github.com/dalemusser/rekaphub/internal/app/recap"
	"github.com/dalemusser/rekaphub/internal/app/store/backend"
	"github.com/dalemusser/rekaphub/internal/app/system/authz"
	"github.com/dalemusser/rekaphub/internal/app/system/calendar"
	"github.com/dalemusser/rekaphub/internal/app/system/dataset"
	ackcookie "github.com/dalemusser/rekaphub/internal/app/system/followup"
	"github.com/dalemusser/rekaphub/internal/app/system/inputval"
	"github.com/dalemusser/rekaphub/internal/app/system/paging"
	"github.com/dalemusser/rekaphub/internal/app/system/respond"
	"github.com/dalemusser/rekaphub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	Loader *dataset.Loader
	Codec  *ackcookie.CookieCodec
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

func NewHandler(b backend.Backend, codec *ackcookie.CookieCodec, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Loader: dataset.NewLoader(b, logger),
		Codec:  codec,
		Log:    logger,
		ErrLog: errLog,
	}
}

// ServeList handles GET /followup: absences of the session period that
// this browser has not confirmed yet, newest first.
//
// Query: from, to, class_id, start, limit.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	f := dataset.AcademicFilter{
		Period:  authz.Period(r),
		From:    query.Get(r, "from"),
		To:      query.Get(r, "to"),
		ClassID: query.Get(r, "class_id"),
	}
	if f.From != "" && !calendar.Valid(f.From) {
		h.ErrLog.Invalid(w, inputval.Invalid("from", "From must be a date (YYYY-MM-DD)."))
		return
	}
	if f.To != "" && !calendar.Valid(f.To) {
		h.ErrLog.Invalid(w, inputval.Invalid("to", "To must be a date (YYYY-MM-DD)."))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := h.Loader.Academic(ctx, f)
	if err != nil {
		h.ErrLog.LogUnavailable(w, r, "followup: load", err, "data unavailable")
		return
	}
	open := recap.FollowUpList(res.Records, h.Codec.Load(r))
	respond.JSON(w, http.StatusOK, paging.Apply(open, paging.Parse(r)))
}

// HandleConfirm handles POST /followup/{id}/confirm.
func (h *Handler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.ErrLog.Invalid(w, inputval.Invalid("id", "Absence id is required."))
		return
	}
	set := h.Codec.Load(r)
	set.Add(id)
	if err := h.Codec.Save(w, set); err != nil {
		h.ErrLog.LogServerError(w, r, "followup: save cookie", err, "could not save the confirmation")
		return
	}
	h.Log.Debug("absence confirmed", zap.String("absence_id", id), zap.Int("held", set.Len()))
	respond.NoContent(w)
}
