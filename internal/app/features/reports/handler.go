// internal/app/features/reports/handler.go
//
// Package reports streams recap CSV files. Every count in a file comes
// from the recap package; nothing here tallies on its own.
package reports

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	uierrors "github.com/dalemusser/rekaphub/internal/app/features/errors"
	"github.com/dalemusser/rekaphub/internal/app/store/backend"
	lookupstore "github.com/dalemusser/rekaphub/internal/app/store/lookups"
	"github.com/dalemusser/rekaphub/internal/app/system/authz"
	"github.com/dalemusser/rekaphub/internal/app/system/calendar"
	"github.com/dalemusser/rekaphub/internal/app/system/dataset"
	"github.com/dalemusser/rekaphub/internal/app/system/inputval"
	"github.com/dalemusser/rekaphub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

type Handler struct {
	Classes     *lookupstore.Store
	Dormitories *lookupstore.Store
	Loader      *dataset.Loader
	Log         *zap.Logger
	ErrLog      *uierrors.ErrorLogger
}

func NewHandler(b backend.Backend, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Classes:     lookupstore.Classes(b),
		Dormitories: lookupstore.Dormitories(b),
		Loader:      dataset.NewLoader(b, logger),
		Log:         logger,
		ErrLog:      errLog,
	}
}

// span is the from/to query pair shared by both reports.
type span struct {
	from, to string
}

func parseSpan(r *http.Request) (span, error) {
	s := span{from: query.Get(r, "from"), to: query.Get(r, "to")}
	if s.from != "" && !calendar.Valid(s.from) {
		return s, inputval.Invalid("from", "From must be a date (YYYY-MM-DD).")
	}
	if s.to != "" && !calendar.Valid(s.to) {
		return s, inputval.Invalid("to", "To must be a date (YYYY-MM-DD).")
	}
	if s.from != "" && s.to != "" && s.to < s.from {
		return s, inputval.Invalid("to", "To must not be before From.")
	}
	return s, nil
}

var unsafeName = regexp.MustCompile(`[^a-z0-9]+`)

// filename builds "rekap_<kind>_<group>_<year>_<semester>.csv" from the
// group name and the session period.
func filename(kind, group string, p models.PeriodScope) string {
	slug := strings.Trim(unsafeName.ReplaceAllString(strings.ToLower(group), "-"), "-")
	if slug == "" {
		slug = "group"
	}
	if p.IsZero() {
		return fmt.Sprintf("rekap_%s_%s.csv", kind, slug)
	}
	year := strings.ReplaceAll(p.AcademicYear, "/", "-")
	return fmt.Sprintf("rekap_%s_%s_%s_s%s.csv", kind, slug, year, p.Semester)
}

func period(r *http.Request) models.PeriodScope { return authz.Period(r) }
