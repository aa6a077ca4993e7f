// Package inputval validates decoded request bodies before any store call.
//
// Rules are declared with `validate` struct tags (go-playground/validator);
// `label` tags name the field in user-facing messages. A failed validation
// becomes a *ValidationError, which handlers answer with 422.
package inputval

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/dalemusser/rekaphub/internal/app/system/calendar"
	"github.com/dalemusser/rekaphub/internal/domain/models"
	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

var academicYearRe = regexp.MustCompile(`^(\d{4})/(\d{4})$`)

func engine() *validator.Validate {
	once.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
		must := func(tag string, fn func(string) bool) {
			if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
				return fn(fl.Field().String())
			}); err != nil {
				panic(err)
			}
		}
		must("ymd", calendar.Valid)
		must("semester", func(s string) bool { return models.NormalizeSemester(s) != "" })
		must("academicyear", IsAcademicYear)
		must("role", models.IsRole)
		must("permtype", models.IsPermissionType)
		must("leavetype", models.IsLeaveType)
		must("absencestatus", models.IsAbsenceStatus)
		validate = v
	})
	return validate
}

// IsAcademicYear reports whether s looks like "2024/2025" with consecutive years.
func IsAcademicYear(s string) bool {
	m := academicYearRe.FindStringSubmatch(s)
	if m == nil {
		return false
	}
	a, _ := strconv.Atoi(m[1])
	b, _ := strconv.Atoi(m[2])
	return b == a+1
}

// FieldError is one failed rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result collects every failed rule in declaration order.
type Result struct {
	Errors []FieldError
}

func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first message, or "".
func (r *Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// All joins every message with "; ".
func (r *Result) All() string {
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// Err returns nil when valid and a *ValidationError otherwise.
func (r *Result) Err() error {
	if !r.HasErrors() {
		return nil
	}
	fields := make(map[string]string, len(r.Errors))
	for _, e := range r.Errors {
		if _, dup := fields[e.Field]; !dup {
			fields[e.Field] = e.Message
		}
	}
	return &ValidationError{Message: r.First(), Fields: fields}
}

// ValidationError is returned for input rejected before any backend call.
type ValidationError struct {
	Message string            `json:"error"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func (e *ValidationError) Error() string { return "validation failed: " + e.Message }

// Invalid builds a single-field ValidationError.
func Invalid(field, message string) *ValidationError {
	return &ValidationError{Message: message, Fields: map[string]string{field: message}}
}

// Validate runs the struct's rules.
func Validate(v any) *Result {
	res := &Result{}
	err := engine().Struct(v)
	if err == nil {
		return res
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		res.Errors = append(res.Errors, FieldError{Field: "_", Message: err.Error()})
		return res
	}
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	for _, fe := range verrs {
		res.Errors = append(res.Errors, FieldError{Field: fe.Field(), Message: message(fe, label(t, fe))})
	}
	return res
}

// Check is Validate(v).Err().
func Check(v any) error { return Validate(v).Err() }

func label(t reflect.Type, fe validator.FieldError) string {
	name := fe.StructField()
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	if t.Kind() == reflect.Struct {
		if f, ok := t.FieldByName(name); ok {
			if l := f.Tag.Get("label"); l != "" {
				return l
			}
		}
	}
	return fe.Field()
}

func message(fe validator.FieldError, label string) string {
	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s.", label, fe.Param())
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s needs at least %s entries.", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s.", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", label, fe.Param())
	case "ymd":
		return label + " must be a date (YYYY-MM-DD)."
	case "semester":
		return label + " must be 1 or 2."
	case "academicyear":
		return label + " must look like 2024/2025."
	case "role":
		return label + " is not a known role."
	case "permtype":
		return label + " must be sick or permission."
	case "leavetype":
		return label + " is not a known leave type."
	case "absencestatus":
		return label + " must be unexcused, excused or sick."
	}
	return label + " is invalid."
}
