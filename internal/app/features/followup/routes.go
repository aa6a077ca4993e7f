// internal/app/features/followup/routes.go
package followup

import (
	"github.com/dalemusser/rekaphub/internal/app/system/auth"
	"github.com/dalemusser/rekaphub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole(models.RoleAcademicAdmin, models.RoleSuperAdmin))
	r.Get("/", h.ServeList)
	r.Post("/{id}/confirm", h.HandleConfirm)
	return r
}
