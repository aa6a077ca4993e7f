// internal/app/features/dormitory/filter.go
package dormitory

import (
	"net/http"

	"github.com/dalemusser/rekaphub/internal/app/recap"
	"github.com/dalemusser/rekaphub/internal/app/system/authz"
	"github.com/dalemusser/rekaphub/internal/app/system/calendar"
	"github.com/dalemusser/rekaphub/internal/app/system/dataset"
	"github.com/dalemusser/rekaphub/internal/app/system/inputval"
	"github.com/dalemusser/waffle/pantry/query"
)

// parseFilter reads from, to, student_id and dormitory_id; the period comes
// from the session and only narrows leaves.
func parseFilter(r *http.Request) (dataset.DormitoryFilter, error) {
	f := dataset.DormitoryFilter{
		Period:      authz.Period(r),
		From:        query.Get(r, "from"),
		To:          query.Get(r, "to"),
		DormitoryID: query.Get(r, "dormitory_id"),
	}
	if f.From != "" && !calendar.Valid(f.From) {
		return f, inputval.Invalid("from", "From must be a date (YYYY-MM-DD).")
	}
	if f.To != "" && !calendar.Valid(f.To) {
		return f, inputval.Invalid("to", "To must be a date (YYYY-MM-DD).")
	}
	if f.From != "" && f.To != "" && f.To < f.From {
		return f, inputval.Invalid("to", "To must not be before From.")
	}
	if sid := query.Get(r, "student_id"); sid != "" {
		f.StudentIDs = []string{sid}
	}
	return f, nil
}

// keep filters recs by source and, when kind is set, by kind.
func keep(recs []recap.Record, src recap.Source, kind string) []recap.Record {
	out := make([]recap.Record, 0, len(recs))
	for _, r := range recs {
		if r.Source == src && (kind == "" || r.Kind == kind) {
			out = append(out, r)
		}
	}
	return out
}
