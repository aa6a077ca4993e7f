// internal/app/features/students/routes.go
package students

import (
	"github.com/dalemusser/rekaphub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Post("/bulk", h.HandleBulkCreate)
	r.Post("/import", h.HandleImport)
	r.Get("/{id}", h.ServeStudent)
	r.Put("/{id}", h.HandleUpdate)
	r.Delete("/{id}", h.HandleDelete)
	return r
}
