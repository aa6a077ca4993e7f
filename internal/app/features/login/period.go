// internal/app/features/login/period.go
package login

import (
	"net/http"

	"github.com/dalemusser/rekaphub/internal/app/system/auth"
	"github.com/dalemusser/rekaphub/internal/app/system/inputval"
	"github.com/dalemusser/rekaphub/internal/app/system/respond"
	"github.com/dalemusser/rekaphub/internal/domain/models"
	"go.uber.org/zap"
)

type periodInput struct {
	AcademicYear string `json:"academic_year" validate:"required,academicyear" label:"Academic year"`
	Semester     string `json:"semester" validate:"required,semester" label:"Semester"`
}

// ServePeriod handles GET /period.
func (h *Handler) ServePeriod(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)
	respond.JSON(w, http.StatusOK, map[string]models.PeriodScope{"period": u.Period})
}

// HandleSetPeriod handles POST /period. Every later request reads the new
// period from the session; nothing is cached server-side.
func (h *Handler) HandleSetPeriod(w http.ResponseWriter, r *http.Request) {
	var in periodInput
	if err := respond.Decode(w, r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "period: decode", err, err.Error())
		return
	}
	if err := inputval.Check(in); err != nil {
		h.ErrLog.Invalid(w, err)
		return
	}
	p := models.PeriodScope{AcademicYear: in.AcademicYear, Semester: models.NormalizeSemester(in.Semester)}
	if err := h.SessionMgr.SetPeriod(w, r, p); err != nil {
		h.ErrLog.LogServerError(w, r, "period: save session", err, "could not switch the academic period")
		return
	}
	h.Log.Info("period switched", zap.String("period", p.String()))
	respond.JSON(w, http.StatusOK, map[string]models.PeriodScope{"period": p})
}
