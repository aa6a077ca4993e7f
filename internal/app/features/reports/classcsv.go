// internal/app/features/reports/classcsv.go
package reports

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/rekaphub/internal/app/recap"
	"github.com/dalemusser/rekaphub/internal/app/store/backend"
	"github.com/dalemusser/rekaphub/internal/app/system/csvutil"
	"github.com/dalemusser/rekaphub/internal/app/system/dataset"
	"github.com/dalemusser/rekaphub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ServeClassCSV handles GET /reports/classes/{id}.csv: one row per student
// of the class with an event in range, then a total row.
//
// Query: from, to.
func (h *Handler) ServeClassCSV(w http.ResponseWriter, r *http.Request) {
	s, err := parseSpan(r)
	if err != nil {
		h.ErrLog.Invalid(w, err)
		return
	}
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	class, err := h.Classes.GetByID(ctx, id)
	switch {
	case backend.IsNotFound(err):
		h.ErrLog.LogNotFound(w, r, "class not found")
		return
	case err != nil:
		h.ErrLog.LogUnavailable(w, r, "reports: class", err, "data unavailable")
		return
	}
	p := period(r)
	res, err := h.Loader.Academic(ctx, dataset.AcademicFilter{Period: p, From: s.from, To: s.to, ClassID: id})
	if err != nil {
		h.ErrLog.LogUnavailable(w, r, "reports: class load", err, "data unavailable")
		return
	}
	rows := recap.ByGroup(res.Records, id, recap.AcademicKinds)
	total := recap.GroupTotal(res.Records, id, recap.AcademicKinds)

	cw := csvutil.Attachment(w, filename("class", class.Name, p))
	defer cw.Flush()

	header := []string{"no", "student", "class"}
	header = append(header, recap.AcademicKinds...)
	_ = cw.Write(append(header, "total", "unique_days"))
	for i, sa := range rows {
		_ = cw.Write(countRow(strconv.Itoa(i+1), sa.StudentName, class.Name, sa.Aggregate, recap.AcademicKinds))
	}
	_ = cw.Write(countRow("", "TOTAL", class.Name, total, recap.AcademicKinds))

	h.Log.Info("class recap exported", zap.String("class_id", id), zap.Int("rows", len(rows)))
}

// countRow renders the leading cells followed by one count per kind, the
// total and the distinct-day count.
func countRow(no, name, group string, a recap.Aggregate, kinds recap.Kinds) []string {
	out := []string{no, name, group}
	for _, k := range kinds {
		out = append(out, strconv.Itoa(a.Count(k)))
	}
	return append(out, strconv.Itoa(a.Total), strconv.Itoa(a.UniqueDays))
}
