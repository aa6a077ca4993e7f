package inputval

import (
	"errors"
	"testing"
)

func TestValidate(t *testing.T) {
	type input struct {
		Name     string `json:"name" validate:"required,max=10" label:"Full name"`
		Date     string `json:"date" validate:"required,ymd" label:"Date"`
		Semester string `json:"semester" validate:"omitempty,semester" label:"Semester"`
	}

	tests := []struct {
		name      string
		in        input
		wantFirst string
		wantField string
	}{
		{"valid", input{Name: "Budi", Date: "2025-01-10", Semester: "genap"}, "", ""},
		{"missing name", input{Date: "2025-01-10"}, "Full name is required.", "name"},
		{"name too long", input{Name: "Abcdefghijk", Date: "2025-01-10"}, "Full name must be at most 10 characters.", "name"},
		{"bad date", input{Name: "Budi", Date: "10-01-2025"}, "Date must be a date (YYYY-MM-DD).", "date"},
		{"bad semester", input{Name: "Budi", Date: "2025-01-10", Semester: "3"}, "Semester must be 1 or 2.", "semester"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(tt.in)
			if got := res.First(); got != tt.wantFirst {
				t.Errorf("First() = %q, want %q", got, tt.wantFirst)
			}
			err := res.Err()
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("unexpected error %v", err)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Err() = %v, want *ValidationError", err)
			}
			if _, ok := ve.Fields[tt.wantField]; !ok {
				t.Errorf("Fields = %v, want key %q", ve.Fields, tt.wantField)
			}
		})
	}
}

func TestValidate_DomainRules(t *testing.T) {
	type input struct {
		Role   string   `json:"role" validate:"required,role"`
		Leave  string   `json:"leave" validate:"omitempty,leavetype"`
		Status string   `json:"status" validate:"omitempty,absencestatus"`
		Perm   string   `json:"perm" validate:"omitempty,permtype"`
		Year   string   `json:"year" validate:"omitempty,academicyear"`
		IDs    []string `json:"ids" validate:"omitempty,min=1,dive,required"`
	}

	if res := Validate(input{Role: "super_admin", Leave: "overnight_leave", Status: "sick", Perm: "permission", Year: "2024/2025", IDs: []string{"a"}}); res.HasErrors() {
		t.Errorf("valid input rejected: %s", res.All())
	}

	res := Validate(input{Role: "janitor", Leave: "holiday", Status: "alpha", Perm: "absent", Year: "2024/2026", IDs: []string{""}})
	if len(res.Errors) != 6 {
		t.Errorf("got %d errors (%s), want 6", len(res.Errors), res.All())
	}
}

func TestResult_All(t *testing.T) {
	r := &Result{Errors: []FieldError{{Message: "Error 1"}, {Message: "Error 2"}}}
	if got := r.All(); got != "Error 1; Error 2" {
		t.Errorf("All() = %q", got)
	}
	if (&Result{}).All() != "" || (&Result{}).Err() != nil {
		t.Error("empty result should have no messages and no error")
	}
}

func TestIsAcademicYear(t *testing.T) {
	for s, want := range map[string]bool{
		"2024/2025": true,
		"2024-2025": false,
		"2024/2024": false,
		"24/25":     false,
		"":          false,
	} {
		if got := IsAcademicYear(s); got != want {
			t.Errorf("IsAcademicYear(%q) = %v, want %v", s, got, want)
		}
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct{ in, want string }{
		{"  demam tinggi ", "demam tinggi"},
		{"<b>Ali</b> & <script>x()</script>Umar", "Ali & Umar"},
		{"Muhammad 'Ali", "Muhammad 'Ali"},
	}
	for _, tt := range tests {
		if got := CleanText(tt.in); got != tt.want {
			t.Errorf("CleanText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	blank := "  <i></i> "
	if CleanTextPtr(&blank) != nil {
		t.Error("blank text should become nil")
	}
	if CleanTextPtr(nil) != nil {
		t.Error("nil stays nil")
	}
}

func TestSplitLines(t *testing.T) {
	got := SplitLines("X IPA 1\r\n\n  X IPA 2  \n<b></b>\nX IPA 3")
	want := []string{"X IPA 1", "X IPA 2", "X IPA 3"}
	if len(got) != len(want) {
		t.Fatalf("got %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
