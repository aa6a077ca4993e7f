// internal/app/features/login/routes.go
package login

import (
	"github.com/dalemusser/rekaphub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.HandleLogin)
	return r
}

// PeriodRoutes serves POST /period for a signed-in user.
func PeriodRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/", h.ServePeriod)
	r.Post("/", h.HandleSetPeriod)
	return r
}
