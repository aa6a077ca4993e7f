// internal/app/features/profiles/handler.go
//
// Package profiles lets a super admin manage administrator accounts.
package profiles

import (
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/rekaphub/internal/app/features/errors"
	"github.com/dalemusser/rekaphub/internal/app/store/backend"
	profilestore "github.com/dalemusser/rekaphub/internal/app/store/profiles"
	"github.com/dalemusser/rekaphub/internal/app/system/inputval"
	"github.com/dalemusser/rekaphub/internal/app/system/respond"
	"github.com/dalemusser/rekaphub/internal/domain/models"
	"go.uber.org/zap"
)

type Handler struct {
	Profiles *profilestore.Store
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
}

func NewHandler(b backend.Backend, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Profiles: profilestore.New(b),
		Log:      logger,
		ErrLog:   errLog,
	}
}

// profileView never carries the password hash.
type profileView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func view(p models.Profile) profileView {
	return profileView{ID: p.ID, Username: p.Username, Role: p.Role}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := respond.Decode(w, r, dst); err != nil {
		h.ErrLog.LogBadRequest(w, r, "profiles: decode", err, err.Error())
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
	case errors.Is(err, profilestore.ErrDuplicateUsername):
		h.ErrLog.Conflict(w, "a profile with this username already exists")
	case errors.Is(err, profilestore.ErrEmptyUsername):
		h.ErrLog.Invalid(w, inputval.Invalid("username", "Username is required."))
	case errors.Is(err, profilestore.ErrInvalidRole):
		h.ErrLog.Invalid(w, inputval.Invalid("role", "Role is not a known role."))
	default:
		h.ErrLog.LogStoreError(w, r, msg, err, "could not save the profile")
	}
}
