// internal/app/features/reports/dormitorycsv.go
package reports

import (
	"context"
	"net/http"
	"sort"
	"strconv"

	"github.com/dalemusser/rekaphub/internal/app/recap"
	"github.com/dalemusser/rekaphub/internal/app/store/backend"
	"github.com/dalemusser/rekaphub/internal/app/system/csvutil"
	"github.com/dalemusser/rekaphub/internal/app/system/dataset"
	"github.com/dalemusser/rekaphub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// dormRow joins a student's leave and absence tallies. Either side may be
// empty when the student only has events of the other kind.
type dormRow struct {
	id, name string
	leaves   recap.Aggregate
	absences recap.Aggregate
	days     int
}

func mergeDormRows(leaves, absences []recap.Record, dormID string) []dormRow {
	byID := make(map[string]*dormRow)
	row := func(id, name string) *dormRow {
		if r, ok := byID[id]; ok {
			return r
		}
		r := &dormRow{id: id, name: name}
		byID[id] = r
		return r
	}
	for _, sa := range recap.ByGroup(leaves, dormID, recap.LeaveKinds) {
		r := row(sa.StudentID, sa.StudentName)
		r.leaves = sa.Aggregate
		for _, n := range recap.LeaveDays(recap.ForStudent(recap.ForGroup(leaves, dormID), sa.StudentID)) {
			r.days += n
		}
	}
	for _, sa := range recap.ByGroup(absences, dormID, recap.AbsenceKinds) {
		row(sa.StudentID, sa.StudentName).absences = sa.Aggregate
	}

	out := make([]dormRow, 0, len(byID))
	for _, r := range byID {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		fi, fj := text.Fold(out[i].name), text.Fold(out[j].name)
		if fi != fj {
			return fi < fj
		}
		return out[i].id < out[j].id
	})
	return out
}

// ServeDormitoryCSV handles GET /reports/dormitories/{id}.csv: leave counts
// per type, total leave days and absence counts per status for each
// student of the dormitory, then a total row.
//
// Query: from, to.
func (h *Handler) ServeDormitoryCSV(w http.ResponseWriter, r *http.Request) {
	s, err := parseSpan(r)
	if err != nil {
		h.ErrLog.Invalid(w, err)
		return
	}
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	dorm, err := h.Dormitories.GetByID(ctx, id)
	switch {
	case backend.IsNotFound(err):
		h.ErrLog.LogNotFound(w, r, "dormitory not found")
		return
	case err != nil:
		h.ErrLog.LogUnavailable(w, r, "reports: dormitory", err, "data unavailable")
		return
	}

	p := period(r)
	f := dataset.DormitoryFilter{Period: p, From: s.from, To: s.to, DormitoryID: id}
	var leaves, absences dataset.Result
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		leaves, err = h.Loader.DormitoryLeaves(gctx, f)
		return err
	})
	g.Go(func() (err error) {
		absences, err = h.Loader.DormitoryAbsences(gctx, f)
		return err
	})
	if err := g.Wait(); err != nil {
		h.ErrLog.LogUnavailable(w, r, "reports: dormitory load", err, "data unavailable")
		return
	}

	rows := mergeDormRows(leaves.Records, absences.Records, id)

	cw := csvutil.Attachment(w, filename("dormitory", dorm.Name, p))
	defer cw.Flush()

	header := []string{"no", "student", "dormitory"}
	header = append(header, recap.LeaveKinds...)
	header = append(header, "leave_total", "leave_days")
	for _, k := range recap.AbsenceKinds {
		header = append(header, "absence_"+k)
	}
	_ = cw.Write(append(header, "absence_total"))

	for i, row := range rows {
		_ = cw.Write(dormCells(strconv.Itoa(i+1), row.name, dorm.Name, row.leaves, row.days, row.absences))
	}
	days := 0
	for _, n := range recap.LeaveDays(recap.ForGroup(leaves.Records, id)) {
		days += n
	}
	_ = cw.Write(dormCells("", "TOTAL", dorm.Name,
		recap.GroupTotal(leaves.Records, id, recap.LeaveKinds), days,
		recap.GroupTotal(absences.Records, id, recap.AbsenceKinds)))

	h.Log.Info("dormitory recap exported", zap.String("dormitory_id", id), zap.Int("rows", len(rows)))
}

func dormCells(no, name, dorm string, leaves recap.Aggregate, days int, absences recap.Aggregate) []string {
	out := []string{no, name, dorm}
	for _, k := range recap.LeaveKinds {
		out = append(out, strconv.Itoa(leaves.Count(k)))
	}
	out = append(out, strconv.Itoa(leaves.Total), strconv.Itoa(days))
	for _, k := range recap.AbsenceKinds {
		out = append(out, strconv.Itoa(absences.Count(k)))
	}
	return append(out, strconv.Itoa(absences.Total))
}
