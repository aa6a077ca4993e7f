// internal/app/features/dashboard/superadmin.go
package dashboard

import (
	"context"
	"net/http"

	metricsstore "github.com/dalemusser/rekaphub/internal/app/store/metrics"
	"github.com/dalemusser/rekaphub/internal/app/system/authz"
	"github.com/dalemusser/rekaphub/internal/app/system/respond"
	"github.com/dalemusser/rekaphub/internal/app/system/timeouts"
	"github.com/dalemusser/rekaphub/internal/domain/models"
)

type superAdminView struct {
	Role   string              `json:"role"`
	Period models.PeriodScope  `json:"period"`
	Counts metricsstore.Counts `json:"counts"`
}

func (h *Handler) ServeSuperAdmin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	period := authz.Period(r)
	counts, err := metricsstore.FetchDashboardCounts(ctx, h.Backend, period)
	if err != nil {
		h.ErrLog.LogUnavailable(w, r, "dashboard: super admin counts", err, unavailable)
		return
	}
	respond.JSON(w, http.StatusOK, superAdminView{Role: models.RoleSuperAdmin, Period: period, Counts: counts})
}
