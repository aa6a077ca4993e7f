// internal/app/features/lookups/routes.go
package lookups

import (
	"github.com/dalemusser/rekaphub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes lets any signed-in user read the table; writers must hold one of
// the given roles.
func Routes(h *Handler, sm *auth.SessionManager, writers ...string) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeOne)

	r.Group(func(r chi.Router) {
		r.Use(sm.RequireRole(writers...))
		r.Post("/", h.HandleCreate)
		r.Post("/bulk", h.HandleBulkCreate)
		r.Put("/{id}", h.HandleRename)
		r.Delete("/{id}", h.HandleDelete)
	})
	return r
}
