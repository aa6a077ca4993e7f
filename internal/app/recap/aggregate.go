package recap

import (
	"sort"

	"github.com/dalemusser/waffle/pantry/text"
)

// DefaultTopN is how many dates TopNPerDimension keeps per key.
const DefaultTopN = 3

// Aggregate is the tally for one scope.
type Aggregate struct {
	Counts     map[string]int `json:"counts"`
	Total      int            `json:"total"`
	UniqueDays int            `json:"unique_days"`
}

// StudentAggregate is one row of a group recap.
type StudentAggregate struct {
	StudentID   string    `json:"student_id"`
	StudentName string    `json:"student_name"`
	Aggregate   Aggregate `json:"aggregate"`
}

// Count returns the tally for kind.
func (a Aggregate) Count(kind string) int { return a.Counts[kind] }

func tally(recs []Record, kinds Kinds, keep func(Record) bool) Aggregate {
	agg := Aggregate{Counts: make(map[string]int, len(kinds))}
	for _, k := range kinds {
		agg.Counts[k] = 0
	}
	days := make(map[string]struct{})
	for _, r := range recs {
		if !keep(r) {
			continue
		}
		agg.Counts[r.Kind]++
		agg.Total++
		days[r.Date] = struct{}{}
	}
	agg.UniqueDays = len(days)
	return agg
}

// ByStudent tallies the records of one student. UniqueDays counts distinct
// dates, so two events on one day add 2 to their kind and 1 to UniqueDays.
func ByStudent(recs []Record, studentID string, kinds Kinds) Aggregate {
	return tally(recs, kinds, func(r Record) bool { return r.StudentID == studentID })
}

// ByGroup fans a group's records out per student, ordered by case-folded
// name and then id. Students with no records in recs are absent.
func ByGroup(recs []Record, groupID string, kinds Kinds) []StudentAggregate {
	names := make(map[string]string)
	for _, r := range recs {
		if r.GroupID == groupID {
			names[r.StudentID] = r.StudentName
		}
	}
	out := make([]StudentAggregate, 0, len(names))
	for id, name := range names {
		out = append(out, StudentAggregate{
			StudentID:   id,
			StudentName: name,
			Aggregate: tally(recs, kinds, func(r Record) bool {
				return r.GroupID == groupID && r.StudentID == id
			}),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		fi, fj := text.Fold(out[i].StudentName), text.Fold(out[j].StudentName)
		if fi != fj {
			return fi < fj
		}
		return out[i].StudentID < out[j].StudentID
	})
	return out
}

// GroupTotal tallies every record of a group. UniqueDays is the number of
// distinct dates any student in the group has an event on.
func GroupTotal(recs []Record, groupID string, kinds Kinds) Aggregate {
	return tally(recs, kinds, func(r Record) bool { return r.GroupID == groupID })
}

// Totals tallies every record.
func Totals(recs []Record, kinds Kinds) Aggregate {
	return tally(recs, kinds, func(Record) bool { return true })
}

// Dimension is a sub-key records can be grouped under.
type Dimension string

const (
	DimensionCourse Dimension = "course"
	DimensionPrayer Dimension = "prayer"
)

func (d Dimension) key(r Record) (string, bool) {
	switch d {
	case DimensionCourse:
		if r.Source != SourceAcademicAbsence {
			return "", false
		}
		if r.Extra.Course == "" {
			return UnknownCourse, true
		}
		return r.Extra.Course, true
	case DimensionPrayer:
		if r.Source != SourcePrayerAbsence {
			return "", false
		}
		if r.Extra.Prayer == "" {
			return UnknownCourse, true
		}
		return r.Extra.Prayer, true
	}
	return "", false
}

// TopNPerDimension groups one student's records by dim and keeps the n
// earliest dates of each group, ascending. n <= 0 means DefaultTopN.
// Repeated dates are kept: two absences from one course on one day are two
// entries.
func TopNPerDimension(recs []Record, studentID string, dim Dimension, n int) map[string][]string {
	if n <= 0 {
		n = DefaultTopN
	}
	out := make(map[string][]string)
	for _, r := range recs {
		if r.StudentID != studentID {
			continue
		}
		if key, ok := dim.key(r); ok {
			out[key] = append(out[key], r.Date)
		}
	}
	for key, dates := range out {
		sort.Strings(dates)
		if len(dates) > n {
			dates = dates[:n]
		}
		out[key] = dates
	}
	return out
}

// LeaveDays sums the day counts of leave records per leave type.
// A missing or non-positive count is taken as one day.
func LeaveDays(recs []Record) map[string]int {
	out := make(map[string]int, len(LeaveKinds))
	for _, k := range LeaveKinds {
		out[k] = 0
	}
	for _, r := range recs {
		if r.Source != SourceDormitoryLeave {
			continue
		}
		days := r.Extra.Days
		if days < 1 {
			days = 1
		}
		out[r.Kind] += days
	}
	return out
}

// ForStudent returns the records of one student, order kept.
func ForStudent(recs []Record, studentID string) []Record {
	return filter(recs, func(r Record) bool { return r.StudentID == studentID })
}

// ForGroup returns the records of one group, order kept.
func ForGroup(recs []Record, groupID string) []Record {
	return filter(recs, func(r Record) bool { return r.GroupID == groupID })
}

func filter(recs []Record, keep func(Record) bool) []Record {
	out := make([]Record, 0)
	for _, r := range recs {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
