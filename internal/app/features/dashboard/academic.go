// internal/app/features/dashboard/academic.go
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

// Activity series names.
const (
	seriesPermissions = "permissions"
	seriesAbsences    = "absences"
	seriesLeaves      = "leaves"
)

type academicCounts struct {
	Students    int64 `json:"students"`
	Classes     int64 `json:"classes"`
	Courses     int64 `json:"courses"`
	Permissions int64 `json:"permissions"`
	Absences    int64 `json:"absences"`
}

type academicView struct {
	Role     string             `json:"role"`
	Period   models.PeriodScope `json:"period"`
	Today    string             `json:"today"`
	Counts   academicCounts     `json:"counts"`
	LastDay  []recap.Record     `json:"last_day"`
	Weekly   recap.Series       `json:"weekly"`
	Month    recap.Aggregate    `json:"month"`
	Activity recap.Series       `json:"activity"`
}

func academicActivity(r recap.Record) string {
	if r.Source == recap.SourceAcademicAbsence {
		return seriesAbsences
	}
	return seriesPermissions
}

// ServeAcademic renders the academic admin dashboard. Counts and the
// joined records load together; either failing fails the page.
func (h *Handler) ServeAcademic(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	period := authz.Period(r)
	win := h.window()

	var (
		counts metricsstore.Counts
		data   dataset.Result
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		counts, err = metricsstore.FetchDashboardCounts(gctx, h.Backend, period)
		return err
	})
	g.Go(func() (err error) {
		data, err = h.Loader.Academic(gctx, dataset.AcademicFilter{Period: period, From: win.from, To: win.to})
		return err
	})
	if err := g.Wait(); err != nil {
		h.ErrLog.LogUnavailable(w, r, "dashboard: academic", err, unavailable)
		return
	}

	last := recap.LastDay(data.Records, win.today)
	recap.SortTimeline(last)

	respond.JSON(w, http.StatusOK, academicView{
		Role:   models.RoleAcademicAdmin,
		Period: period,
		Today:  calendar.Format(win.today),
		Counts: academicCounts{
			Students:    counts.ClassStudents,
			Classes:     counts.Classes,
			Courses:     counts.Courses,
			Permissions: counts.AcademicPermissions,
			Absences:    counts.AcademicAbsences,
		},
		LastDay: last,
		Weekly: recap.Bucket(data.Records, recap.BucketSpec{
			Today:       win.today,
			WindowDays:  chartDays,
			Granularity: recap.Daily,
			Categories:  recap.AcademicKinds,
		}),
		Month: recap.Totals(recap.CurrentMonth(data.Records, win.today), recap.AcademicKinds),
		Activity: recap.Bucket(data.Records, recap.BucketSpec{
			Today:       win.today,
			WindowDays:  activityDays,
			Granularity: recap.Daily,
			Categories:  []string{seriesPermissions, seriesAbsences},
			Category:    academicActivity,
		}),
	})
}
