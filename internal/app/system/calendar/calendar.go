// Package calendar handles the calendar-day dates every event carries.
//
// Dates are stored as "YYYY-MM-DD". Backends that keep a real date column
// hand them back as RFC 3339 timestamps, so Parse accepts both and drops
// the time of day. All returned times are midnight UTC; "today" is taken in
// the configured school time zone and then truncated the same way, so two
// days compare equal exactly when their calendar dates match.
package calendar

import (
	"sync"
	"time"

	"github.com/dalemusser/rekaphub/internal/domain/models"
)

var (
	mu  sync.RWMutex
	loc = time.UTC
)

// Configure sets the time zone used by Today. Nil is ignored.
func Configure(l *time.Location) {
	if l == nil {
		return
	}
	mu.Lock()
	loc = l
	mu.Unlock()
}

// Location returns the configured time zone.
func Location() *time.Location {
	mu.RLock()
	defer mu.RUnlock()
	return loc
}

// Today returns the current calendar day in the configured zone.
func Today() time.Time {
	return Day(time.Now().In(Location()))
}

// Day strips the time of day from t, keeping its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Parse reads "YYYY-MM-DD" or an RFC 3339 timestamp and returns its calendar day.
func Parse(s string) (time.Time, bool) {
	if len(s) < len(models.DateLayout) {
		return time.Time{}, false
	}
	t, err := time.Parse(models.DateLayout, s[:len(models.DateLayout)])
	if err != nil {
		return time.Time{}, false
	}
	if len(s) > len(models.DateLayout) && s[len(models.DateLayout)] != 'T' && s[len(models.DateLayout)] != ' ' {
		return time.Time{}, false
	}
	return t, true
}

// Valid reports whether s is exactly a "YYYY-MM-DD" date. Form input must be.
func Valid(s string) bool {
	if len(s) != len(models.DateLayout) {
		return false
	}
	_, ok := Parse(s)
	return ok
}

// Format renders a day as "YYYY-MM-DD".
func Format(t time.Time) string {
	return t.Format(models.DateLayout)
}

// Canonical rewrites any accepted date form as "YYYY-MM-DD"; unparseable input comes back unchanged.
func Canonical(s string) string {
	if t, ok := Parse(s); ok {
		return Format(t)
	}
	return s
}

// MonthBounds returns the first and last day of t's month.
func MonthBounds(t time.Time) (first, last time.Time) {
	first = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	last = first.AddDate(0, 1, -1)
	return first, last
}

// SameMonth reports whether a and b fall in the same calendar month.
func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}
