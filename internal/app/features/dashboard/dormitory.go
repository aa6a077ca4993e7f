// internal/app/features/dashboard/dormitory.go
package dashboard

import (
	"context"
	"net/http"

	"github.com/dalemusser/rekaphub/internal/app/recap"
	metricsstore "github.com/dalemusser/rekaphub/internal/app/store/metrics"
	"github.com/dalemusser/rekaphub/internal/app/system/authz"
	"github.com/dalemusser/rekaphub/internal/app/system/calendar"
	"github.com/dalemusser/rekaphub/internal/app/system/dataset"
	"github.com/dalemusser/rekaphub/internal/app/system/respond"
	"github.com/dalemusser/rekaphub/internal/app/system/timeouts"
	"github.com/dalemusser/rekaphub/internal/domain/models"
	"golang.org/x/sync/errgroup"
)

type dormitoryCounts struct {
	Students    int64 `json:"students"`
	Dormitories int64 `json:"dormitories"`
	Leaves      int64 `json:"leaves"`
	Absences    int64 `json:"absences"`
}

type dormitoryMonth struct {
	Leaves    recap.Aggregate `json:"leaves"`
	LeaveDays map[string]int  `json:"leave_days"`
	Absences  recap.Aggregate `json:"absences"`
}

type dormitoryView struct {
	Role     string             `json:"role"`
	Period   models.PeriodScope `json:"period"`
	Today    string             `json:"today"`
	Counts   dormitoryCounts    `json:"counts"`
	LastDay  []recap.Record     `json:"last_day"`
	Weekly   recap.Series       `json:"weekly"`
	Month    dormitoryMonth     `json:"month"`
	Activity recap.Series       `json:"activity"`
}

func dormitoryActivity(r recap.Record) string {
	if r.Source == recap.SourceDormitoryLeave {
		return seriesLeaves
	}
	return seriesAbsences
}

// ServeDormitory renders the dormitory admin dashboard.
func (h *Handler) ServeDormitory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	period := authz.Period(r)
	win := h.window()
	filter := dataset.DormitoryFilter{Period: period, From: win.from, To: win.to}

	var (
		counts           metricsstore.Counts
		leaves, absences dataset.Result
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		counts, err = metricsstore.FetchDashboardCounts(gctx, h.Backend, period)
		return err
	})
	g.Go(func() (err error) {
		leaves, err = h.Loader.DormitoryLeaves(gctx, filter)
		return err
	})
	g.Go(func() (err error) {
		absences, err = h.Loader.DormitoryAbsences(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		h.ErrLog.LogUnavailable(w, r, "dashboard: dormitory", err, unavailable)
		return
	}

	last := recap.LastDay(leaves.Records, win.today)
	recap.SortTimeline(last)
	monthLeaves := recap.CurrentMonth(leaves.Records, win.today)

	all := make([]recap.Record, 0, len(leaves.Records)+len(absences.Records))
	all = append(append(all, leaves.Records...), absences.Records...)

	respond.JSON(w, http.StatusOK, dormitoryView{
		Role:   models.RoleDormitoryAdmin,
		Period: period,
		Today:  calendar.Format(win.today),
		Counts: dormitoryCounts{
			Students:    counts.DormitoryStudents,
			Dormitories: counts.Dormitories,
			Leaves:      counts.DormitoryLeaves,
			Absences:    counts.DormitoryAbsences,
		},
		LastDay: last,
		Weekly: recap.Bucket(leaves.Records, recap.BucketSpec{
			Today:       win.today,
			WindowDays:  chartDays,
			Granularity: recap.Daily,
			Categories:  recap.LeaveKinds,
		}),
		Month: dormitoryMonth{
			Leaves:    recap.Totals(monthLeaves, recap.LeaveKinds),
			LeaveDays: recap.LeaveDays(monthLeaves),
			Absences:  recap.Totals(recap.CurrentMonth(absences.Records, win.today), recap.AbsenceKinds),
		},
		Activity: recap.Bucket(all, recap.BucketSpec{
			Today:       win.today,
			WindowDays:  activityDays,
			Granularity: recap.Daily,
			Categories:  []string{seriesLeaves, seriesAbsences},
			Category:    dormitoryActivity,
		}),
	})
}
