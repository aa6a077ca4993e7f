// internal/app/system/csvutil/students.go
package csvutil

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dalemusser/waffle/pantry/text"
)

// ErrTooManyRows is returned when a file has more data rows than ParseOptions.MaxRows.
var ErrTooManyRows = errors.New("csv has too many rows")

// StudentRow is one student line: a name plus optional class and dormitory names.
type StudentRow struct {
	Line      int    `json:"line"`
	Name      string `json:"name"`
	Class     string `json:"class,omitempty"`
	Dormitory string `json:"dormitory,omitempty"`
}

// RowError describes a rejected line.
type RowError struct {
	Line   int      `json:"line"`
	Reason string   `json:"reason"`
	Raw    []string `json:"raw,omitempty"`
}

// ParseResult holds accepted rows and rejected lines.
type ParseResult struct {
	Rows   []StudentRow `json:"rows"`
	Errors []RowError   `json:"errors,omitempty"`
}

func (r *ParseResult) HasErrors() bool { return len(r.Errors) > 0 }

// Summary renders up to maxShow errors as plain text, one per line.
func (r *ParseResult) Summary(maxShow int) string {
	if !r.HasErrors() {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d row(s) are invalid", len(r.Errors))
	for i, e := range r.Errors {
		if i == maxShow {
			fmt.Fprintf(&b, "\n... and %d more", len(r.Errors)-maxShow)
			break
		}
		fmt.Fprintf(&b, "\nline %d: %s", e.Line, e.Reason)
	}
	return b.String()
}

type ParseOptions struct {
	MaxRows int // 0 means unlimited
}

func DefaultParseOptions() ParseOptions {
	return ParseOptions{MaxRows: MaxRows}
}

var nameHeaders = []string{"name", "nama", "student", "full name"}

func isHeader(cell string, names []string) bool {
	cell = strings.ToLower(strings.TrimSpace(cell))
	for _, n := range names {
		if cell == n {
			return true
		}
	}
	return false
}

// ParseStudents reads "name[,class[,dormitory]]" lines. A header row is
// recognised and skipped, a leading BOM is ignored, blank lines are
// skipped, and a name repeated within the file (case-insensitively) is
// reported as an error on its second occurrence.
func ParseStudents(r io.Reader, opts ParseOptions) (*ParseResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	res := &ParseResult{Rows: []StudentRow{}}
	seen := map[string]int{}
	first := true
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				res.Errors = append(res.Errors, RowError{Line: pe.Line, Reason: pe.Err.Error()})
				continue
			}
			return nil, err
		}
		line, _ := reader.FieldPos(0)
		if first {
			first = false
			if len(rec) > 0 {
				rec[0] = strings.TrimPrefix(rec[0], "\ufeff")
			}
			if len(rec) > 0 && isHeader(rec[0], nameHeaders) {
				continue
			}
		}

		row := StudentRow{Line: line}
		if len(rec) > 0 {
			row.Name = strings.TrimSpace(rec[0])
		}
		if len(rec) > 1 {
			row.Class = strings.TrimSpace(rec[1])
		}
		if len(rec) > 2 {
			row.Dormitory = strings.TrimSpace(rec[2])
		}
		if row.Name == "" && row.Class == "" && row.Dormitory == "" {
			continue
		}
		if opts.MaxRows > 0 && len(res.Rows)+len(res.Errors) >= opts.MaxRows {
			return nil, ErrTooManyRows
		}
		if row.Name == "" {
			res.Errors = append(res.Errors, RowError{Line: line, Reason: "missing name", Raw: rec})
			continue
		}
		key := text.Fold(row.Name)
		if prev, dup := seen[key]; dup {
			res.Errors = append(res.Errors, RowError{
				Line:   line,
				Reason: fmt.Sprintf("duplicate name (first on line %d)", prev),
				Raw:    rec,
			})
			continue
		}
		seen[key] = line
		res.Rows = append(res.Rows, row)
	}
	return res, nil
}
