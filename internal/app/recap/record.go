// Package recap joins raw attendance rows against the lookup tables and
// computes the summaries every dashboard, recap page and report shows.
//
// Everything here is a pure function of its arguments: no I/O, no clock
// reads (callers pass "today"), no shared state. Views consume these shapes
// and never re-derive counts themselves.
package recap

import "github.com/dalemusser/rekaphub/internal/domain/models"

// Source names the table a Record was built from.
type Source string

const (
	SourceAcademicPermission Source = "academic_permission"
	SourceAcademicAbsence    Source = "academic_absence"
	SourceDormitoryLeave     Source = "dormitory_leave"
	SourcePrayerAbsence      Source = "prayer_absence"
	SourceCeremonyAbsence    Source = "ceremony_absence"
)

// Academic kinds. Permission and sick rows come from one table, absent rows
// from another; Kind is the merged discriminant.
const (
	KindPermission = models.PermissionTypePermission
	KindSick       = models.PermissionTypeSick
	KindAbsent     = "absent"
)

// Labels used when a reference no longer resolves.
const (
	UnknownGroup  = "N/A"
	UnknownCourse = "Unspecified"
)

// Kinds is the ordered set of tally keys for one domain. Aggregates always
// carry every listed key, zero or not.
type Kinds []string

var (
	AcademicKinds = Kinds{KindPermission, KindSick, KindAbsent}
	LeaveKinds    = Kinds(models.LeaveTypes)
	AbsenceKinds  = Kinds(models.AbsenceStatuses)
)

// Extra carries the fields only some sources have.
type Extra struct {
	CourseID string `json:"course_id,omitempty"`
	Course   string `json:"course,omitempty"`
	Days     int    `json:"days,omitempty"`
	Reason   string `json:"reason,omitempty"`
	Prayer   string `json:"prayer,omitempty"`
}

// Record is one event row enriched with its student's display fields.
// GroupID/GroupName are the class for academic records and the dormitory
// for dormitory records.
type Record struct {
	ID          string `json:"id"`
	Source      Source `json:"source"`
	Kind        string `json:"kind"`
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name"`
	GroupID     string `json:"group_id"`
	GroupName   string `json:"group_name"`
	Date        string `json:"date"`
	Extra       Extra  `json:"extra"`
}

// Lookups holds id-keyed maps of every referenced entity.
type Lookups struct {
	Students    map[string]models.Student
	Classes     map[string]string
	Dormitories map[string]string
	Courses     map[string]string
}

// NewLookups indexes the given rows by id. Nil slices are fine.
func NewLookups(students []models.Student, classes, dormitories, courses []models.Named) Lookups {
	lk := Lookups{
		Students:    make(map[string]models.Student, len(students)),
		Classes:     names(classes),
		Dormitories: names(dormitories),
		Courses:     names(courses),
	}
	for _, s := range students {
		lk.Students[s.ID] = s
	}
	return lk
}

func names(rows []models.Named) map[string]string {
	m := make(map[string]string, len(rows))
	for _, r := range rows {
		m[r.ID] = r.Name
	}
	return m
}

// group resolves an optional foreign key against names.
// No key gives ("", N/A); a stale key keeps its id with the N/A label.
func group(id *string, names map[string]string) (string, string) {
	if id == nil || *id == "" {
		return "", UnknownGroup
	}
	if name, ok := names[*id]; ok {
		return *id, name
	}
	return *id, UnknownGroup
}
