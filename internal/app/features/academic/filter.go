// internal/app/features/academic/filter.go
package academic

import (
	"net/http"

	"github.com/dalemusser/rekaphub/internal/app/recap"
	"github.com/dalemusser/rekaphub/internal/app/system/authz"
	"github.com/dalemusser/rekaphub/internal/app/system/calendar"
	"github.com/dalemusser/rekaphub/internal/app/system/dataset"
	"github.com/dalemusser/rekaphub/internal/app/system/inputval"
	"github.com/dalemusser/waffle/pantry/query"
)

// parseFilter reads from, to, student_id and class_id. The period always
// comes from the session.
func parseFilter(r *http.Request) (dataset.AcademicFilter, error) {
	f := dataset.AcademicFilter{
		Period:  authz.Period(r),
		ClassID: query.Get(r, "class_id"),
	}
	var err error
	if f.From, err = dateParam(r, "from", "From"); err != nil {
		return f, err
	}
	if f.To, err = dateParam(r, "to", "To"); err != nil {
		return f, err
	}
	if f.From != "" && f.To != "" && f.To < f.From {
		return f, inputval.Invalid("to", "To must not be before From.")
	}
	if sid := query.Get(r, "student_id"); sid != "" {
		f.StudentIDs = []string{sid}
	}
	return f, nil
}

func dateParam(r *http.Request, key, label string) (string, error) {
	v := query.Get(r, key)
	if v == "" {
		return "", nil
	}
	if !calendar.Valid(v) {
		return "", inputval.Invalid(key, label+" must be a date (YYYY-MM-DD).")
	}
	return v, nil
}

func onlyKind(recs []recap.Record, kind string) []recap.Record {
	if kind == "" {
		return recs
	}
	out := make([]recap.Record, 0, len(recs))
	for _, r := range recs {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

func onlySource(recs []recap.Record, src recap.Source) []recap.Record {
	out := make([]recap.Record, 0, len(recs))
	for _, r := range recs {
		if r.Source == src {
			out = append(out, r)
		}
	}
	return out
}
