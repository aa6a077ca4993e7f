// internal/app/features/dormitory/routes.go
package dormitory

import (
	"github.com/dalemusser/rekaphub/internal/app/system/auth"
	"github.com/dalemusser/rekaphub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole(models.RoleDormitoryAdmin, models.RoleSuperAdmin))

	r.Route("/leaves", func(r chi.Router) {
		r.Get("/", h.ServeLeaves)
		r.Post("/", h.HandleCreateLeave)
		r.Post("/bulk", h.HandleBulkLeaves)
		r.Put("/{id}", h.HandleUpdateLeave)
		r.Delete("/{id}", h.deleteHandler("leave", h.Store.DeleteLeave))
	})
	r.Route("/prayer-absences", func(r chi.Router) {
		r.Get("/", h.ServePrayerAbsences)
		r.Post("/", h.HandleCreatePrayerAbsence)
		r.Post("/bulk", h.HandleBulkPrayerAbsences)
		r.Put("/{id}", h.HandleUpdatePrayerAbsence)
		r.Delete("/{id}", h.deleteHandler("prayer absence", h.Store.DeletePrayerAbsence))
	})
	r.Route("/ceremony-absences", func(r chi.Router) {
		r.Get("/", h.ServeCeremonyAbsences)
		r.Post("/", h.HandleCreateCeremonyAbsence)
		r.Post("/bulk", h.HandleBulkCeremonyAbsences)
		r.Put("/{id}", h.HandleUpdateCeremonyAbsence)
		r.Delete("/{id}", h.deleteHandler("ceremony absence", h.Store.DeleteCeremonyAbsence))
	})

	r.Get("/recap/students/{id}", h.ServeStudentRecap)
	r.Get("/recap/dormitories/{id}", h.ServeDormitoryRecap)
	return r
}
