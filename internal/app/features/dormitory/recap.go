// internal/app/features/dormitory/recap.go
package dormitory

import (
	"context"
	"net/http"

	"github.com/dalemusser/rekaphub/internal/app/recap"
	"github.com/dalemusser/rekaphub/internal/app/store/backend"
	"github.com/dalemusser/rekaphub/internal/app/system/dataset"
	"github.com/dalemusser/rekaphub/internal/app/system/respond"
	"github.com/dalemusser/rekaphub/internal/app/system/timeouts"
	"github.com/dalemusser/rekaphub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
)

type studentHeader struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	DormitoryID   string `json:"dormitory_id"`
	DormitoryName string `json:"dormitory_name"`
}

type studentRecap struct {
	Student   studentHeader       `json:"student"`
	Period    models.PeriodScope  `json:"period"`
	Leaves    recap.Aggregate     `json:"leaves"`
	LeaveDays map[string]int      `json:"leave_days"`
	Absences  recap.Aggregate     `json:"absences"`
	Prayers   map[string][]string `json:"prayers"`
	Records   []recap.Record      `json:"records"`
}

type groupSection struct {
	Total    recap.Aggregate          `json:"total"`
	Students []recap.StudentAggregate `json:"students"`
}

type dormitoryRecap struct {
	Dormitory models.Named       `json:"dormitory"`
	Period    models.PeriodScope `json:"period"`
	Leaves    groupSection       `json:"leaves"`
	LeaveDays map[string]int     `json:"leave_days"`
	Absences  groupSection       `json:"absences"`
}

// loadBoth runs the leave and absence loads side by side.
func (h *Handler) loadBoth(ctx context.Context, f dataset.DormitoryFilter) (leaves, absences dataset.Result, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		leaves, err = h.Loader.DormitoryLeaves(gctx, f)
		return err
	})
	g.Go(func() (err error) {
		absences, err = h.Loader.DormitoryAbsences(gctx, f)
		return err
	})
	err = g.Wait()
	return leaves, absences, err
}

// ServeStudentRecap handles GET /dormitory/recap/students/{id}. Students
// without a dormitory are not found here.
func (h *Handler) ServeStudentRecap(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		h.ErrLog.Invalid(w, err)
		return
	}
	id := chi.URLParam(r, "id")
	f.StudentIDs = []string{id}
	f.DormitoryID = ""

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	leaves, absences, err := h.loadBoth(ctx, f)
	if err != nil {
		h.ErrLog.LogUnavailable(w, r, "dormitory: student recap", err, unavailable)
		return
	}
	st, ok := leaves.Lookups.Students[id]
	if !ok {
		h.ErrLog.LogNotFound(w, r, "student not found")
		return
	}
	hd := studentHeader{ID: st.ID, Name: st.Name, DormitoryName: recap.UnknownGroup}
	if st.DormitoryID != nil {
		hd.DormitoryID = *st.DormitoryID
		if n, ok := leaves.Lookups.Dormitories[*st.DormitoryID]; ok {
			hd.DormitoryName = n
		}
	}

	mine := recap.ForStudent(leaves.Records, id)
	missed := recap.ForStudent(absences.Records, id)
	all := make([]recap.Record, 0, len(mine)+len(missed))
	all = append(append(all, mine...), missed...)
	recap.SortTimeline(all)

	respond.JSON(w, http.StatusOK, studentRecap{
		Student:   hd,
		Period:    f.Period,
		Leaves:    recap.ByStudent(leaves.Records, id, recap.LeaveKinds),
		LeaveDays: recap.LeaveDays(mine),
		Absences:  recap.ByStudent(absences.Records, id, recap.AbsenceKinds),
		Prayers:   recap.TopNPerDimension(absences.Records, id, recap.DimensionPrayer, recap.DefaultTopN),
		Records:   all,
	})
}

// ServeDormitoryRecap handles GET /dormitory/recap/dormitories/{id}.
func (h *Handler) ServeDormitoryRecap(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		h.ErrLog.Invalid(w, err)
		return
	}
	id := chi.URLParam(r, "id")
	f.DormitoryID = id
	f.StudentIDs = nil

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	dorm, err := h.Dormitories.GetByID(ctx, id)
	switch {
	case backend.IsNotFound(err):
		h.ErrLog.LogNotFound(w, r, "dormitory not found")
		return
	case err != nil:
		h.ErrLog.LogUnavailable(w, r, "dormitory: dormitory", err, unavailable)
		return
	}
	leaves, absences, err := h.loadBoth(ctx, f)
	if err != nil {
		h.ErrLog.LogUnavailable(w, r, "dormitory: dormitory recap", err, unavailable)
		return
	}

	respond.JSON(w, http.StatusOK, dormitoryRecap{
		Dormitory: dorm,
		Period:    f.Period,
		Leaves: groupSection{
			Total:    recap.GroupTotal(leaves.Records, id, recap.LeaveKinds),
			Students: recap.ByGroup(leaves.Records, id, recap.LeaveKinds),
		},
		LeaveDays: recap.LeaveDays(recap.ForGroup(leaves.Records, id)),
		Absences: groupSection{
			Total:    recap.GroupTotal(absences.Records, id, recap.AbsenceKinds),
			Students: recap.ByGroup(absences.Records, id, recap.AbsenceKinds),
		},
	})
}
