// internal/app/features/reports/routes.go
package reports

import (
	"github.com/dalemusser/rekaphub/internal/app/system/auth"
	"github.com/dalemusser/rekaphub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(rr chi.Router) {
		rr.Use(sm.RequireRole(models.RoleAcademicAdmin, models.RoleSuperAdmin))
		rr.Get("/classes/{id}.csv", h.ServeClassCSV)
	})
	r.Group(func(rr chi.Router) {
		rr.Use(sm.RequireRole(models.RoleDormitoryAdmin, models.RoleSuperAdmin))
		rr.Get("/dormitories/{id}.csv", h.ServeDormitoryCSV)
	})

	return r
}
