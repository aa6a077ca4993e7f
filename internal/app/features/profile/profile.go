// internal/app/features/profile/profile.go
package profile

import (
	"context"
	"net/http"

	"github.com/dalemusser/rekaphub/internal/app/system/authutil"
	"github.com/dalemusser/rekaphub/internal/app/system/authz"
	"github.com/dalemusser/rekaphub/internal/app/system/inputval"
	"github.com/dalemusser/rekaphub/internal/app/system/respond"
	"github.com/dalemusser/rekaphub/internal/app/system/timeouts"
	"github.com/dalemusser/rekaphub/internal/domain/models"
	"go.uber.org/zap"
)

type profileView struct {
	ID            string             `json:"id"`
	Username      string             `json:"username"`
	Role          string             `json:"role"`
	Period        models.PeriodScope `json:"period"`
	PasswordRules string             `json:"password_rules"`
}

type passwordInput struct {
	CurrentPassword string `json:"current_password" validate:"required" label:"Current password"`
	NewPassword     string `json:"new_password" validate:"required" label:"New password"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword" label:"Confirm password"`
}

// ServeProfile handles GET /profile.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		h.ErrLog.LogForbidden(w, r, "profile: no user")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Profiles.GetByID(ctx, uid)
	if err != nil {
		h.ErrLog.LogStoreError(w, r, "profile: get", err, "data unavailable")
		return
	}
	respond.JSON(w, http.StatusOK, profileView{
		ID:            p.ID,
		Username:      p.Username,
		Role:          p.Role,
		Period:        authz.Period(r),
		PasswordRules: authutil.PasswordRules(),
	})
}

// HandleChangePassword handles POST /profile/password.
func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		h.ErrLog.LogForbidden(w, r, "profile: no user")
		return
	}
	var in passwordInput
	if err := respond.Decode(w, r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "profile: decode", err, err.Error())
		return
	}
	if err := inputval.Check(&in); err != nil {
		h.ErrLog.Invalid(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Profiles.GetByID(ctx, uid)
	if err != nil {
		h.ErrLog.LogStoreError(w, r, "profile: get", err, "data unavailable")
		return
	}
	if p.PasswordHash == "" || !authutil.CheckPassword(in.CurrentPassword, p.PasswordHash) {
		h.ErrLog.Invalid(w, inputval.Invalid("current_password", "Current password is incorrect."))
		return
	}
	if err := authutil.ValidatePassword(in.NewPassword); err != nil {
		h.ErrLog.Invalid(w, inputval.Invalid("new_password", err.Error()))
		return
	}
	if authutil.CheckPassword(in.NewPassword, p.PasswordHash) {
		h.ErrLog.Invalid(w, inputval.Invalid("new_password", "New password cannot be the same as your current password."))
		return
	}

	hash, err := authutil.HashPassword(in.NewPassword)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "profile: hash password", err, "could not update the password")
		return
	}
	if err := h.Profiles.SetPasswordHash(ctx, uid, hash); err != nil {
		h.ErrLog.LogStoreError(w, r, "profile: set password", err, "could not update the password")
		return
	}
	h.Log.Info("password changed", zap.String("profile_id", uid))
	respond.NoContent(w)
}
