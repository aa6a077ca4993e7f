// internal/app/features/profiles/routes.go
package profiles

import (
	"github.com/dalemusser/rekaphub/internal/app/system/auth"
	"github.com/dalemusser/rekaphub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the account admin under the router's mount point
// (typically "/profiles"). Super admins only.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(models.RoleSuperAdmin))

		pr.Get("/", h.ServeList)
		pr.Post("/", h.HandleCreate)
		pr.Put("/{id}", h.HandleUpdate)
		pr.Put("/{id}/password", h.HandleSetPassword)
		pr.Delete("/{id}", h.HandleDelete)
	})

	return r
}
