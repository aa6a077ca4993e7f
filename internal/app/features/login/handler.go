// internal/app/features/login/handler.go
package login

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/rekaphub/internal/app/features/errors"
	"github.com/dalemusser/rekaphub/internal/app/store/backend"
	profilestore "github.com/dalemusser/rekaphub/internal/app/store/profiles"
	"github.com/dalemusser/rekaphub/internal/app/system/auth"
	"github.com/dalemusser/rekaphub/internal/app/system/authutil"
	"github.com/dalemusser/rekaphub/internal/app/system/inputval"
	"github.com/dalemusser/rekaphub/internal/app/system/ratelimit"
	"github.com/dalemusser/rekaphub/internal/app/system/respond"
	"github.com/dalemusser/rekaphub/internal/app/system/timeouts"
	"github.com/dalemusser/rekaphub/internal/domain/models"
	"go.uber.org/zap"
)

const badCredentials = "invalid username or password"

type Handler struct {
	Profiles      *profilestore.Store
	SessionMgr    *auth.SessionManager
	Limiter       *ratelimit.LoginLimiter
	DefaultPeriod models.PeriodScope
	Log           *zap.Logger
	ErrLog        *uierrors.ErrorLogger
}

// NewHandler builds the sign-in handler. defaultPeriod fills in whatever
// part of the period the sign-in form leaves blank.
func NewHandler(b backend.Backend, sessionMgr *auth.SessionManager, limiter *ratelimit.LoginLimiter, defaultPeriod models.PeriodScope, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	if limiter == nil {
		limiter = ratelimit.NewLoginLimiter()
	}
	return &Handler{
		Profiles:      profilestore.New(b),
		SessionMgr:    sessionMgr,
		Limiter:       limiter,
		DefaultPeriod: defaultPeriod,
		Log:           logger,
		ErrLog:        errLog,
	}
}

type loginInput struct {
	Username     string `json:"username" validate:"required,max=100" label:"Username"`
	Password     string `json:"password" validate:"required,max=128" label:"Password"`
	AcademicYear string `json:"academic_year" validate:"omitempty,academicyear" label:"Academic year"`
	Semester     string `json:"semester" validate:"omitempty,semester" label:"Semester"`
}

type sessionView struct {
	ID       string             `json:"id"`
	Username string             `json:"username"`
	Role     string             `json:"role"`
	Period   models.PeriodScope `json:"period"`
}

// period resolves the requested period against the configured default.
func (h *Handler) period(year, semester string) models.PeriodScope {
	p := h.DefaultPeriod
	if year != "" {
		p.AcademicYear = year
	}
	if s := models.NormalizeSemester(semester); s != "" {
		p.Semester = s
	}
	return p
}

// HandleLogin handles POST /login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if err := respond.Decode(w, r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "login: decode", err, err.Error())
		return
	}
	if err := inputval.Check(in); err != nil {
		h.ErrLog.Invalid(w, err)
		return
	}

	if ok, reason := h.Limiter.Check(r, in.Username); !ok {
		h.Log.Info("login throttled", zap.String("username", in.Username))
		respond.Error(w, http.StatusTooManyRequests, reason)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	prof, err := h.Profiles.GetByUsername(ctx, in.Username)
	switch {
	case backend.IsNotFound(err):
		authutil.BurnCompare(in.Password)
		h.Log.Info("login: unknown username", zap.String("username", in.Username))
		respond.Error(w, http.StatusUnauthorized, badCredentials)
		return
	case err != nil:
		h.ErrLog.LogUnavailable(w, r, "login: profile lookup", err, "sign-in is unavailable right now")
		return
	}
	if prof.PasswordHash == "" || !authutil.CheckPassword(in.Password, prof.PasswordHash) {
		if prof.PasswordHash == "" {
			authutil.BurnCompare(in.Password)
		}
		h.Log.Info("login: bad password", zap.String("username", in.Username))
		respond.Error(w, http.StatusUnauthorized, badCredentials)
		return
	}

	u := auth.SessionUser{
		ID:       prof.ID,
		Username: prof.Username,
		Role:     prof.Role,
		Period:   h.period(in.AcademicYear, in.Semester),
	}
	if err := h.SessionMgr.SignIn(w, r, u); err != nil {
		h.ErrLog.LogServerError(w, r, "login: save session", err, "could not start a session")
		return
	}
	h.Limiter.Succeeded(in.Username)
	h.Log.Info("signed in", zap.String("user_id", u.ID), zap.String("role", u.Role), zap.String("period", u.Period.String()))

	respond.JSON(w, http.StatusOK, sessionView{ID: u.ID, Username: u.Username, Role: u.Role, Period: u.Period})
}
