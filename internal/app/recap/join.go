package recap

import (
	"sort"

	"github.com/dalemusser/rekaphub/internal/app/system/calendar"
	"github.com/dalemusser/rekaphub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
)

// base builds the student part of a record. ok is false when the student is
// gone or the date does not parse; such rows are dropped from every aggregate.
func (lk Lookups) base(id string, src Source, studentID, date string, groupOf func(models.Student) (string, string)) (Record, bool) {
	st, found := lk.Students[studentID]
	if !found {
		return Record{}, false
	}
	day, valid := calendar.Parse(date)
	if !valid {
		return Record{}, false
	}
	gid, gname := groupOf(st)
	return Record{
		ID:          id,
		Source:      src,
		StudentID:   st.ID,
		StudentName: st.Name,
		GroupID:     gid,
		GroupName:   gname,
		Date:        calendar.Format(day),
	}, true
}

func (lk Lookups) class(st models.Student) (string, string) {
	return group(st.ClassID, lk.Classes)
}

func (lk Lookups) dormitory(st models.Student) (string, string) {
	return group(st.DormitoryID, lk.Dormitories)
}

// JoinAcademic merges permission/sick rows and absent rows into one stream
// grouped by class, newest first.
func JoinAcademic(lk Lookups, perms []models.AcademicPermission, absences []models.AcademicAbsence) []Record {
	out := make([]Record, 0, len(perms)+len(absences))
	for _, p := range perms {
		rec, ok := lk.base(p.ID, SourceAcademicPermission, p.StudentID, p.Date, lk.class)
		if !ok {
			continue
		}
		rec.Kind = p.Type
		rec.Extra.Reason = deref(p.Reason)
		out = append(out, rec)
	}
	for _, a := range absences {
		rec, ok := lk.base(a.ID, SourceAcademicAbsence, a.StudentID, a.Date, lk.class)
		if !ok {
			continue
		}
		rec.Kind = KindAbsent
		rec.Extra.Course = UnknownCourse
		if a.CourseID != nil && *a.CourseID != "" {
			rec.Extra.CourseID = *a.CourseID
			if name, ok := lk.Courses[*a.CourseID]; ok {
				rec.Extra.Course = name
			}
		}
		out = append(out, rec)
	}
	SortTimeline(out)
	return out
}

// JoinDormitoryLeaves builds leave records grouped by dormitory, newest first.
func JoinDormitoryLeaves(lk Lookups, leaves []models.DormitoryPermission) []Record {
	out := make([]Record, 0, len(leaves))
	for _, l := range leaves {
		rec, ok := lk.base(l.ID, SourceDormitoryLeave, l.StudentID, l.Date, lk.dormitory)
		if !ok {
			continue
		}
		rec.Kind = l.Type
		rec.Extra.Days = l.NumberOfDays
		rec.Extra.Reason = deref(l.Reason)
		out = append(out, rec)
	}
	SortTimeline(out)
	return out
}

// JoinDormitoryAbsences merges prayer and ceremony absences grouped by
// dormitory, newest first. Kind is the absence status.
func JoinDormitoryAbsences(lk Lookups, prayers []models.PrayerAbsence, ceremonies []models.CeremonyAbsence) []Record {
	out := make([]Record, 0, len(prayers)+len(ceremonies))
	for _, p := range prayers {
		rec, ok := lk.base(p.ID, SourcePrayerAbsence, p.StudentID, p.Date, lk.dormitory)
		if !ok {
			continue
		}
		rec.Kind = p.Status
		rec.Extra.Prayer = p.Prayer
		out = append(out, rec)
	}
	for _, c := range ceremonies {
		rec, ok := lk.base(c.ID, SourceCeremonyAbsence, c.StudentID, c.Date, lk.dormitory)
		if !ok {
			continue
		}
		rec.Kind = c.Status
		out = append(out, rec)
	}
	SortTimeline(out)
	return out
}

// SortTimeline orders records by date descending, then student name
// ascending (case-folded), then source and id so equal rows never swap.
func SortTimeline(recs []Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if a.Date != b.Date {
			return a.Date > b.Date
		}
		if fa, fb := text.Fold(a.StudentName), text.Fold(b.StudentName); fa != fb {
			return fa < fb
		}
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		return a.ID < b.ID
	})
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
