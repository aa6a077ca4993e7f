package recap

import (
	"time"

	"github.com/dalemusser/rekaphub/internal/app/system/calendar"
)

// Granularity is the width of a chart bucket.
type Granularity string

const (
	Daily   Granularity = "daily"
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
)

// Series is a bucketed chart dataset. Every category has one value per label.
type Series struct {
	Labels     []string         `json:"labels"`
	Categories []string         `json:"categories"`
	Values     map[string][]int `json:"values"`
}

// BucketSpec configures Bucket.
type BucketSpec struct {
	Today       time.Time
	WindowDays  int
	Granularity Granularity
	// Categories are the series, in order. Records mapped to anything else are ignored.
	Categories []string
	// Category maps a record to its series; nil means Record.Kind.
	Category func(Record) string
}

// Bucket counts records into calendar buckets covering
// [today-window+1, today]. The buckets exist even when nothing falls in
// them; records outside the window are ignored.
//
// Daily labels are "YYYY-MM-DD". Weekly buckets are seven-day runs starting
// at the first day of the window (the last one may be shorter) labelled by
// their first day. Monthly buckets are the calendar months the window
// touches, labelled "YYYY-MM".
func Bucket(recs []Record, opts BucketSpec) Series {
	s := Series{
		Labels:     []string{},
		Categories: append([]string{}, opts.Categories...),
		Values:     make(map[string][]int, len(opts.Categories)),
	}
	if opts.WindowDays <= 0 {
		for _, c := range opts.Categories {
			s.Values[c] = []int{}
		}
		return s
	}

	end := calendar.Day(opts.Today)
	start := end.AddDate(0, 0, -(opts.WindowDays - 1))

	// index maps a day offset from start to its bucket.
	index := make([]int, opts.WindowDays)
	switch opts.Granularity {
	case Weekly:
		for off := range index {
			index[off] = off / 7
			if off%7 == 0 {
				s.Labels = append(s.Labels, calendar.Format(start.AddDate(0, 0, off)))
			}
		}
	case Monthly:
		for off := range index {
			day := start.AddDate(0, 0, off)
			if off == 0 || day.Day() == 1 {
				s.Labels = append(s.Labels, day.Format("2006-01"))
			}
			index[off] = len(s.Labels) - 1
		}
	default:
		for off := range index {
			index[off] = off
			s.Labels = append(s.Labels, calendar.Format(start.AddDate(0, 0, off)))
		}
	}

	for _, c := range opts.Categories {
		s.Values[c] = make([]int, len(s.Labels))
	}
	category := opts.Category
	if category == nil {
		category = func(r Record) string { return r.Kind }
	}
	for _, r := range recs {
		day, ok := calendar.Parse(r.Date)
		if !ok || day.Before(start) || day.After(end) {
			continue
		}
		vals, ok := s.Values[category(r)]
		if !ok {
			continue
		}
		off := int(day.Sub(start).Hours() / 24)
		vals[index[off]]++
	}
	return s
}

// InRange keeps records dated within [from, to], both inclusive.
// An empty bound is open.
func InRange(recs []Record, from, to string) []Record {
	from, to = calendar.Canonical(from), calendar.Canonical(to)
	return filter(recs, func(r Record) bool {
		return (from == "" || r.Date >= from) && (to == "" || r.Date <= to)
	})
}

// LastDay keeps records dated today or yesterday.
func LastDay(recs []Record, today time.Time) []Record {
	end := calendar.Day(today)
	return InRange(recs, calendar.Format(end.AddDate(0, 0, -1)), calendar.Format(end))
}

// CurrentMonth keeps records dated in today's calendar month.
func CurrentMonth(recs []Record, today time.Time) []Record {
	first, last := calendar.MonthBounds(calendar.Day(today))
	return InRange(recs, calendar.Format(first), calendar.Format(last))
}

// Acknowledged is the read side of the follow-up acknowledgment set.
type Acknowledged interface {
	Has(id string) bool
}

// FollowUpList returns the absent records not yet acknowledged, newest
// first, then by student name. A nil ack acknowledges nothing.
func FollowUpList(recs []Record, ack Acknowledged) []Record {
	out := filter(recs, func(r Record) bool {
		return r.Source == SourceAcademicAbsence && (ack == nil || !ack.Has(r.ID))
	})
	SortTimeline(out)
	return out
}
