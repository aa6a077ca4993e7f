package csvutil

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseStudents_ValidRows(t *testing.T) {
	csv := `Name,Class,Dormitory
Ahmad Fauzi,X IPA 1,Asrama Putra
Siti Aminah,X IPA 2,
Budi,,Asrama Putra`

	result, err := ParseStudents(strings.NewReader(csv), DefaultParseOptions())
	if err != nil {
		t.Fatalf("ParseStudents() error = %v", err)
	}
	if result.HasErrors() {
		t.Fatalf("ParseStudents() unexpected errors: %v", result.Errors)
	}
	if len(result.Rows) != 3 {
		t.Fatalf("ParseStudents() got %d rows, want 3", len(result.Rows))
	}

	want := StudentRow{Line: 2, Name: "Ahmad Fauzi", Class: "X IPA 1", Dormitory: "Asrama Putra"}
	if result.Rows[0] != want {
		t.Errorf("Row 0 = %+v, want %+v", result.Rows[0], want)
	}
	if result.Rows[1].Dormitory != "" {
		t.Errorf("Row 1 Dormitory = %q, want empty", result.Rows[1].Dormitory)
	}
	if result.Rows[2].Class != "" || result.Rows[2].Dormitory != "Asrama Putra" {
		t.Errorf("Row 2 = %+v", result.Rows[2])
	}
}

func TestParseStudents_NoHeader(t *testing.T) {
	csv := "Ahmad\nSiti"
	result, err := ParseStudents(strings.NewReader(csv), DefaultParseOptions())
	if err != nil {
		t.Fatalf("ParseStudents() error = %v", err)
	}
	if len(result.Rows) != 2 {
		t.Errorf("got %d rows, want 2", len(result.Rows))
	}
	if result.Rows[0].Line != 1 {
		t.Errorf("first row line = %d, want 1", result.Rows[0].Line)
	}
}

func TestParseStudents_IndonesianHeader(t *testing.T) {
	csv := "Nama,Kelas,Asrama\nAhmad,X,Putra"
	result, err := ParseStudents(strings.NewReader(csv), DefaultParseOptions())
	if err != nil {
		t.Fatalf("ParseStudents() error = %v", err)
	}
	if len(result.Rows) != 1 || result.Rows[0].Name != "Ahmad" {
		t.Errorf("rows = %+v", result.Rows)
	}
}

func TestParseStudents_BOMHandling(t *testing.T) {
	csv := "\ufeffName,Class\nAhmad,X"
	result, err := ParseStudents(strings.NewReader(csv), DefaultParseOptions())
	if err != nil {
		t.Fatalf("ParseStudents() error = %v", err)
	}
	if len(result.Rows) != 1 {
		t.Errorf("got %d rows, want 1 (header with BOM not skipped?)", len(result.Rows))
	}
}

func TestParseStudents_EmptyFile(t *testing.T) {
	result, err := ParseStudents(strings.NewReader(""), DefaultParseOptions())
	if err != nil {
		t.Fatalf("ParseStudents() error = %v", err)
	}
	if len(result.Rows) != 0 || result.HasErrors() {
		t.Errorf("empty file gave %+v", result)
	}
}

func TestParseStudents_MissingName(t *testing.T) {
	csv := "Ahmad,X\n,X\n"
	result, err := ParseStudents(strings.NewReader(csv), DefaultParseOptions())
	if err != nil {
		t.Fatalf("ParseStudents() error = %v", err)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("got %d errors, want 1", len(result.Errors))
	}
	if result.Errors[0].Line != 2 || result.Errors[0].Reason != "missing name" {
		t.Errorf("error = %+v", result.Errors[0])
	}
}

func TestParseStudents_DuplicateNames(t *testing.T) {
	csv := "Ahmad\nSiti\nAHMAD"
	result, err := ParseStudents(strings.NewReader(csv), DefaultParseOptions())
	if err != nil {
		t.Fatalf("ParseStudents() error = %v", err)
	}
	if len(result.Rows) != 2 {
		t.Errorf("got %d rows, want 2", len(result.Rows))
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0].Reason, "duplicate") {
		t.Fatalf("errors = %+v", result.Errors)
	}
	if !strings.Contains(result.Errors[0].Reason, "line 1") {
		t.Errorf("reason %q does not point at the first occurrence", result.Errors[0].Reason)
	}
}

func TestParseStudents_MaxRows(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("Name\n")
	for i := 0; i < 10; i++ {
		sb.WriteString("Student ")
		sb.WriteByte(byte('a' + i))
		sb.WriteString("\n")
	}

	_, err := ParseStudents(strings.NewReader(sb.String()), ParseOptions{MaxRows: 5})
	if err != ErrTooManyRows {
		t.Errorf("ParseStudents() error = %v, want ErrTooManyRows", err)
	}
}

func TestParseStudents_SkipsEmptyRows(t *testing.T) {
	csv := "Ahmad\n\n,,\nSiti\n\n"
	result, err := ParseStudents(strings.NewReader(csv), DefaultParseOptions())
	if err != nil {
		t.Fatalf("ParseStudents() error = %v", err)
	}
	if len(result.Rows) != 2 {
		t.Errorf("got %d rows, want 2", len(result.Rows))
	}
}

func TestParseResult_Summary(t *testing.T) {
	t.Run("no errors", func(t *testing.T) {
		r := &ParseResult{}
		if got := r.Summary(5); got != "" {
			t.Errorf("Summary() = %q, want empty", got)
		}
	})

	t.Run("truncates to maxShow", func(t *testing.T) {
		r := &ParseResult{Errors: make([]RowError, 10)}
		for i := range r.Errors {
			r.Errors[i] = RowError{Line: i + 1, Reason: "missing name"}
		}
		got := r.Summary(3)
		if !strings.Contains(got, "10 row(s) are invalid") {
			t.Errorf("Summary() missing count: %q", got)
		}
		if !strings.Contains(got, "and 7 more") {
			t.Errorf("Summary() missing remainder: %q", got)
		}
		if strings.Count(got, "line ") != 3 {
			t.Errorf("Summary() shows %d lines, want 3", strings.Count(got, "line "))
		}
	})
}

func TestAttachment(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := Attachment(rec, "rekap kelas.csv")
	_ = cw.Write([]string{"Name", "Total"})
	cw.Flush()

	if ct := rec.Header().Get("Content-Type"); ct != "text/csv; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="rekap%20kelas.csv"` {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if got := rec.Body.String(); got != "\ufeffName,Total\r\n" {
		t.Errorf("body = %q", got)
	}
}

func TestConstants(t *testing.T) {
	if MaxUploadSize != 2<<20 {
		t.Errorf("MaxUploadSize = %d, want %d", MaxUploadSize, 2<<20)
	}
	if DefaultParseOptions().MaxRows != MaxRows {
		t.Errorf("DefaultParseOptions().MaxRows = %d, want %d", DefaultParseOptions().MaxRows, MaxRows)
	}
}
