// internal/app/features/profiles/profiles.go
package profiles

import (
	"context"
	"net/http"

	"github.com/dalemusser/rekaphub/internal/app/system/authutil"
	"github.com/dalemusser/rekaphub/internal/app/system/authz"
	"github.com/dalemusser/rekaphub/internal/app/system/inputval"
	"github.com/dalemusser/rekaphub/internal/app/system/paging"
	"github.com/dalemusser/rekaphub/internal/app/system/respond"
	"github.com/dalemusser/rekaphub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type createInput struct {
	Username string `json:"username" validate:"required,max=100" label:"Username"`
	Role     string `json:"role" validate:"required,role" label:"Role"`
	Password string `json:"password" validate:"required" label:"Password"`
}

type updateInput struct {
	Username string `json:"username" validate:"required,max=100" label:"Username"`
	Role     string `json:"role" validate:"required,role" label:"Role"`
}

type passwordInput struct {
	Password string `json:"password" validate:"required" label:"Password"`
}

// ServeList handles GET /profiles.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	rows, err := h.Profiles.List(ctx)
	if err != nil {
		h.ErrLog.LogUnavailable(w, r, "profiles: list", err, "data unavailable")
		return
	}
	views := make([]profileView, len(rows))
	for i, p := range rows {
		views[i] = view(p)
	}
	respond.JSON(w, http.StatusOK, paging.Apply(views, paging.Parse(r)))
}

// HandleCreate handles POST /profiles.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in createInput
	if !h.decode(w, r, &in) {
		return
	}
	if err := authutil.ValidatePassword(in.Password); err != nil {
		h.ErrLog.Invalid(w, inputval.Invalid("password", err.Error()))
		return
	}
	hash, err := authutil.HashPassword(in.Password)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "profiles: hash password", err, "could not create the profile")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Profiles.Create(ctx, inputval.CleanText(in.Username), in.Role, hash)
	if err != nil {
		h.storeError(w, r, "profiles: create", err)
		return
	}
	h.Log.Info("profile created", zap.String("profile_id", p.ID), zap.String("role", p.Role))
	respond.JSON(w, http.StatusCreated, view(p))
}

// HandleUpdate handles PUT /profiles/{id}. A super admin cannot change
// their own role; another super admin has to do that.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var in updateInput
	if !h.decode(w, r, &in) {
		return
	}
	id := chi.URLParam(r, "id")
	_, _, me, _ := authz.UserCtx(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if id == me {
		cur, err := h.Profiles.GetByID(ctx, id)
		if err != nil {
			h.ErrLog.LogStoreError(w, r, "profiles: get", err, "data unavailable")
			return
		}
		if cur.Role != in.Role {
			h.ErrLog.Invalid(w, inputval.Invalid("role", "You can't change your own role."))
			return
		}
	}
	if err := h.Profiles.Update(ctx, id, inputval.CleanText(in.Username), in.Role); err != nil {
		h.storeError(w, r, "profiles: update", err)
		return
	}
	p, err := h.Profiles.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.LogStoreError(w, r, "profiles: reload", err, "data unavailable")
		return
	}
	respond.JSON(w, http.StatusOK, view(p))
}

// HandleSetPassword handles PUT /profiles/{id}/password.
func (h *Handler) HandleSetPassword(w http.ResponseWriter, r *http.Request) {
	var in passwordInput
	if !h.decode(w, r, &in) {
		return
	}
	if err := authutil.ValidatePassword(in.Password); err != nil {
		h.ErrLog.Invalid(w, inputval.Invalid("password", err.Error()))
		return
	}
	hash, err := authutil.HashPassword(in.Password)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "profiles: hash password", err, "could not set the password")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	id := chi.URLParam(r, "id")
	if err := h.Profiles.SetPasswordHash(ctx, id, hash); err != nil {
		h.ErrLog.LogStoreError(w, r, "profiles: set password", err, "could not set the password")
		return
	}
	h.Log.Info("profile password reset", zap.String("profile_id", id))
	respond.NoContent(w)
}

// HandleDelete handles DELETE /profiles/{id}. Deleting yourself is refused.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, _, me, _ := authz.UserCtx(r); id == me {
		h.ErrLog.Conflict(w, "you can't delete your own profile")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Profiles.Delete(ctx, id)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "profiles: delete", err, "could not delete the profile")
		return
	}
	if n == 0 {
		h.ErrLog.LogNotFound(w, r, "profile not found")
		return
	}
	h.Log.Info("profile deleted", zap.String("profile_id", id))
	respond.NoContent(w)
}
