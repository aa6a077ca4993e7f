// internal/app/features/academic/routes.go
package academic

import (
	"github.com/dalemusser/rekaphub/internal/app/system/auth"
	"github.com/dalemusser/rekaphub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole(models.RoleAcademicAdmin, models.RoleSuperAdmin))

	r.Route("/permissions", func(r chi.Router) {
		r.Get("/", h.ServePermissions)
		r.Post("/", h.HandleCreatePermission)
		r.Post("/bulk", h.HandleBulkPermissions)
		r.Put("/{id}", h.HandleUpdatePermission)
		r.Delete("/{id}", h.HandleDeletePermission)
	})
	r.Route("/absences", func(r chi.Router) {
		r.Get("/", h.ServeAbsences)
		r.Post("/", h.HandleCreateAbsence)
		r.Post("/bulk", h.HandleBulkAbsences)
		r.Put("/{id}", h.HandleUpdateAbsence)
		r.Delete("/{id}", h.HandleDeleteAbsence)
	})

	r.Get("/timeline", h.ServeTimeline)
	r.Get("/recap/students/{id}", h.ServeStudentRecap)
	r.Get("/recap/students/{id}/courses", h.ServeCourseRecap)
	r.Get("/recap/classes/{id}", h.ServeClassRecap)
	return r
}
