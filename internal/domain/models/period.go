// internal/domain/models/period.go
package models

import "strings"

// PeriodScope is the academic period (year + semester) selected at sign-in.
// It is passed explicitly to every store call that filters by period.
// The zero value means "all periods".
type PeriodScope struct {
	AcademicYear string `json:"academic_year"`
	Semester     string `json:"semester"`
}

// IsZero reports whether no period is selected.
func (p PeriodScope) IsZero() bool {
	return p.AcademicYear == "" && p.Semester == ""
}

// String renders the period as "2024/2025 S1".
func (p PeriodScope) String() string {
	if p.IsZero() {
		return "all periods"
	}
	return p.AcademicYear + " S" + p.Semester
}

// NormalizeSemester maps accepted semester spellings to "1" or "2".
// It returns "" for anything else.
func NormalizeSemester(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "ganjil", "odd":
		return "1"
	case "2", "genap", "even":
		return "2"
	}
	return ""
}
