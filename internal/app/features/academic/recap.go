// internal/app/features/academic/recap.go
package academic

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/rekaphub/internal/app/recap"
	"github.com/dalemusser/rekaphub/internal/app/store/backend"
	"github.com/dalemusser/rekaphub/internal/app/system/authz"
	"github.com/dalemusser/rekaphub/internal/app/system/inputval"
	"github.com/dalemusser/rekaphub/internal/app/system/paging"
	"github.com/dalemusser/rekaphub/internal/app/system/respond"
	"github.com/dalemusser/rekaphub/internal/app/system/timeouts"
	"github.com/dalemusser/rekaphub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
)

// maxTopN caps the "n" query parameter of the course recap.
const maxTopN = 10

type studentHeader struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ClassID   string `json:"class_id"`
	ClassName string `json:"class_name"`
}

type studentRecap struct {
	Student   studentHeader      `json:"student"`
	Period    models.PeriodScope `json:"period"`
	Aggregate recap.Aggregate    `json:"aggregate"`
	Records   []recap.Record     `json:"records"`
}

type courseRecap struct {
	Student studentHeader       `json:"student"`
	Period  models.PeriodScope  `json:"period"`
	N       int                 `json:"n"`
	Courses map[string][]string `json:"courses"`
}

type classRecap struct {
	Class    models.Named             `json:"class"`
	Period   models.PeriodScope       `json:"period"`
	Total    recap.Aggregate          `json:"total"`
	Students []recap.StudentAggregate `json:"students"`
}

func header(lk recap.Lookups, id string) (studentHeader, bool) {
	st, ok := lk.Students[id]
	if !ok {
		return studentHeader{}, false
	}
	hd := studentHeader{ID: st.ID, Name: st.Name, ClassName: recap.UnknownGroup}
	if st.ClassID != nil {
		hd.ClassID = *st.ClassID
		if n, ok := lk.Classes[*st.ClassID]; ok {
			hd.ClassName = n
		}
	}
	return hd, true
}

// loadStudent runs the academic load narrowed to the {id} student and
// answers 404 when the student does not exist.
func (h *Handler) loadStudent(w http.ResponseWriter, r *http.Request) (studentHeader, []recap.Record, bool) {
	f, err := parseFilter(r)
	if err != nil {
		h.ErrLog.Invalid(w, err)
		return studentHeader{}, nil, false
	}
	id := chi.URLParam(r, "id")
	f.StudentIDs = []string{id}
	f.ClassID = ""

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := h.Loader.Academic(ctx, f)
	if err != nil {
		h.ErrLog.LogUnavailable(w, r, "academic: student recap", err, unavailable)
		return studentHeader{}, nil, false
	}
	hd, ok := header(res.Lookups, id)
	if !ok {
		h.ErrLog.LogNotFound(w, r, "student not found")
		return studentHeader{}, nil, false
	}
	return hd, recap.ForStudent(res.Records, id), true
}

// ServeTimeline handles GET /academic/timeline: permissions, sick notes and
// absences merged, newest first.
//
// Query: from, to, student_id, class_id, kind (permission|sick|absent), start, limit.
func (h *Handler) ServeTimeline(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		h.ErrLog.Invalid(w, err)
		return
	}
	kind := query.Get(r, "kind")
	switch kind {
	case "", recap.KindPermission, recap.KindSick, recap.KindAbsent:
	default:
		h.ErrLog.Invalid(w, inputval.Invalid("kind", "Kind must be permission, sick or absent."))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := h.Loader.Academic(ctx, f)
	if err != nil {
		h.ErrLog.LogUnavailable(w, r, "academic: timeline", err, unavailable)
		return
	}
	respond.JSON(w, http.StatusOK, paging.Apply(onlyKind(res.Records, kind), paging.Parse(r)))
}

// ServeStudentRecap handles GET /academic/recap/students/{id}.
func (h *Handler) ServeStudentRecap(w http.ResponseWriter, r *http.Request) {
	hd, recs, ok := h.loadStudent(w, r)
	if !ok {
		return
	}
	respond.JSON(w, http.StatusOK, studentRecap{
		Student:   hd,
		Period:    authz.Period(r),
		Aggregate: recap.ByStudent(recs, hd.ID, recap.AcademicKinds),
		Records:   recs,
	})
}

// ServeCourseRecap handles GET /academic/recap/students/{id}/courses: the
// first n absence dates per course (n defaults to 3).
func (h *Handler) ServeCourseRecap(w http.ResponseWriter, r *http.Request) {
	n := recap.DefaultTopN
	if v := query.Get(r, "n"); v != "" {
		var err error
		if n, err = strconv.Atoi(v); err != nil || n < 1 || n > maxTopN {
			h.ErrLog.Invalid(w, inputval.Invalid("n", "N must be between 1 and 10."))
			return
		}
	}
	hd, recs, ok := h.loadStudent(w, r)
	if !ok {
		return
	}
	respond.JSON(w, http.StatusOK, courseRecap{
		Student: hd,
		Period:  authz.Period(r),
		N:       n,
		Courses: recap.TopNPerDimension(recs, hd.ID, recap.DimensionCourse, n),
	})
}

// ServeClassRecap handles GET /academic/recap/classes/{id}: one row per
// student of the class with at least one record, ordered by name.
func (h *Handler) ServeClassRecap(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		h.ErrLog.Invalid(w, err)
		return
	}
	id := chi.URLParam(r, "id")
	f.ClassID = id
	f.StudentIDs = nil

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	class, err := h.Classes.GetByID(ctx, id)
	switch {
	case backend.IsNotFound(err):
		h.ErrLog.LogNotFound(w, r, "class not found")
		return
	case err != nil:
		h.ErrLog.LogUnavailable(w, r, "academic: class", err, unavailable)
		return
	}
	res, err := h.Loader.Academic(ctx, f)
	if err != nil {
		h.ErrLog.LogUnavailable(w, r, "academic: class recap", err, unavailable)
		return
	}
	respond.JSON(w, http.StatusOK, classRecap{
		Class:    class,
		Period:   f.Period,
		Total:    recap.GroupTotal(res.Records, id, recap.AcademicKinds),
		Students: recap.ByGroup(res.Records, id, recap.AcademicKinds),
	})
}
