package backend

import (
	"github.com/dalemusser/rekaphub/internal/domain/models"
)

// Op is a filter operator.
type Op int

const (
	OpEq Op = iota
	OpIn
	OpGte
	OpLte
	OpIsNull
	OpNotNull
)

func (o Op) String() string {
	switch o {
	case OpEq:
		return "eq"
	case OpIn:
		return "in"
	case OpGte:
		return "gte"
	case OpLte:
		return "lte"
	case OpIsNull:
		return "is_null"
	case OpNotNull:
		return "not_null"
	}
	return "unknown"
}

// Filter is one predicate on one column. Filters in a Query are ANDed.
type Filter struct {
	Field string
	Op    Op
	Value any
}

// SortKey orders results by one column.
type SortKey struct {
	Field string
	Desc  bool
}

// Query selects rows from one table.
type Query struct {
	Table   string
	Filters []Filter
	Sort    []SortKey
	Limit   int64
}

// From starts a query on table.
func From(table string) Query {
	return Query{Table: table}
}

// Where returns a copy of q with more filters.
func (q Query) Where(filters ...Filter) Query {
	out := q
	out.Filters = append(append([]Filter(nil), q.Filters...), filters...)
	return out
}

// OrderBy returns a copy of q with an added sort key.
func (q Query) OrderBy(field string, desc bool) Query {
	out := q
	out.Sort = append(append([]SortKey(nil), q.Sort...), SortKey{Field: field, Desc: desc})
	return out
}

// Take returns a copy of q limited to n rows (0 = no limit).
func (q Query) Take(n int64) Query {
	out := q
	out.Limit = n
	return out
}

// Eq matches field == v.
func Eq(field string, v any) Filter { return Filter{Field: field, Op: OpEq, Value: v} }

// In matches field ∈ values.
func In(field string, values []string) Filter { return Filter{Field: field, Op: OpIn, Value: values} }

// Gte matches field >= v.
func Gte(field string, v any) Filter { return Filter{Field: field, Op: OpGte, Value: v} }

// Lte matches field <= v.
func Lte(field string, v any) Filter { return Filter{Field: field, Op: OpLte, Value: v} }

// IsNull matches rows where field is null or missing.
func IsNull(field string) Filter { return Filter{Field: field, Op: OpIsNull} }

// NotNull matches rows where field holds a value.
func NotNull(field string) Filter { return Filter{Field: field, Op: OpNotNull} }

// Between is an inclusive range on field. Empty bounds are open.
func Between(field, from, to string) []Filter {
	var out []Filter
	if from != "" {
		out = append(out, Gte(field, from))
	}
	if to != "" {
		out = append(out, Lte(field, to))
	}
	return out
}

// Period matches the academic_year + semester pair. A zero scope matches everything.
func Period(p models.PeriodScope) []Filter {
	var out []Filter
	if p.AcademicYear != "" {
		out = append(out, Eq("academic_year", p.AcademicYear))
	}
	if p.Semester != "" {
		out = append(out, Eq("semester", p.Semester))
	}
	return out
}
