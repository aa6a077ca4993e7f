// internal/app/features/dashboard/handler.go
package dashboard

import (
	"net/http"
	"strings"
	"time"

	uierrors "github.com/dalemusser/rekaphub/internal/app/features/errors"
	"github.com/dalemusser/rekaphub/internal/app/store/backend"
	"github.com/dalemusser/rekaphub/internal/app/system/authz"
	"github.com/dalemusser/rekaphub/internal/app/system/calendar"
	"github.com/dalemusser/rekaphub/internal/app/system/dataset"
	"github.com/dalemusser/rekaphub/internal/domain/models"
	"go.uber.org/zap"
)

const (
	// chartDays is the lookback of the per-kind bar chart.
	chartDays = 7
	// activityDays is the lookback of the two-series activity chart.
	activityDays = 14

	unavailable = "data unavailable"
)

type Handler struct {
	Backend backend.Backend
	Loader  *dataset.Loader
	Log     *zap.Logger
	ErrLog  *uierrors.ErrorLogger

	// Today returns the current school day; tests pin it.
	Today func() time.Time
}

func NewHandler(b backend.Backend, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Backend: b,
		Loader:  dataset.NewLoader(b, logger),
		Log:     logger,
		ErrLog:  errLog,
		Today:   calendar.Today,
	}
}

// ServeDashboard handles GET /dashboard and dispatches on role.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	role, _, _, ok := authz.UserCtx(r)
	if !ok {
		h.ErrLog.LogForbidden(w, r, "dashboard: no user")
		return
	}
	switch strings.ToLower(strings.TrimSpace(role)) {
	case models.RoleSuperAdmin:
		h.ServeSuperAdmin(w, r)
	case models.RoleAcademicAdmin:
		h.ServeAcademic(w, r)
	case models.RoleDormitoryAdmin:
		h.ServeDormitory(w, r)
	default:
		h.ErrLog.LogForbidden(w, r, "dashboard: unknown role "+role)
	}
}

// window is the date span a dashboard loads: the current month plus
// whatever part of the activity lookback falls before it.
type window struct {
	today    time.Time
	from, to string
}

func (h *Handler) window() window {
	today := calendar.Day(h.Today())
	first, last := calendar.MonthBounds(today)
	from := today.AddDate(0, 0, -(activityDays - 1))
	if first.Before(from) {
		from = first
	}
	return window{today: today, from: calendar.Format(from), to: calendar.Format(last)}
}
