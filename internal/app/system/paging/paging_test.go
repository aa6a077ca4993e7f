package paging

import (
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   Params
	}{
		{"defaults", "/x", Params{Start: 1, Limit: PageSize}},
		{"explicit", "/x?start=51&limit=25", Params{Start: 51, Limit: 25}},
		{"zero start", "/x?start=0", Params{Start: 1, Limit: PageSize}},
		{"garbage", "/x?start=abc&limit=-3", Params{Start: 1, Limit: PageSize}},
		{"limit capped", "/x?limit=100000", Params{Start: 1, Limit: MaxPageSize}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(httptest.NewRequest("GET", tt.target, nil))
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.target, got, tt.want)
			}
		})
	}
}

func TestApply(t *testing.T) {
	rows := []int{1, 2, 3, 4, 5}
	tests := []struct {
		name      string
		p         Params
		wantItems []int
		wantPrev  bool
		wantNext  bool
	}{
		{"first page", Params{Start: 1, Limit: 2}, []int{1, 2}, false, true},
		{"middle page", Params{Start: 3, Limit: 2}, []int{3, 4}, true, true},
		{"last page short", Params{Start: 5, Limit: 2}, []int{5}, true, false},
		{"past the end", Params{Start: 9, Limit: 2}, []int{}, true, false},
		{"everything", Params{Start: 1, Limit: 10}, []int{1, 2, 3, 4, 5}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pg := Apply(rows, tt.p)
			if !reflect.DeepEqual(pg.Items, tt.wantItems) {
				t.Errorf("Items = %v, want %v", pg.Items, tt.wantItems)
			}
			if pg.Total != len(rows) {
				t.Errorf("Total = %d, want %d", pg.Total, len(rows))
			}
			if pg.HasPrev != tt.wantPrev || pg.HasNext != tt.wantNext {
				t.Errorf("HasPrev/HasNext = %v/%v, want %v/%v", pg.HasPrev, pg.HasNext, tt.wantPrev, tt.wantNext)
			}
		})
	}
}

func TestApply_DoesNotAliasInput(t *testing.T) {
	rows := []int{1, 2, 3}
	pg := Apply(rows, Params{Start: 1, Limit: 2})
	pg.Items[0] = 99
	if rows[0] != 1 {
		t.Error("Apply returned a slice sharing the input's backing array")
	}
}

func TestApply_ZeroParams(t *testing.T) {
	pg := Apply([]string{"a"}, Params{})
	if pg.Start != 1 || pg.Limit != PageSize || len(pg.Items) != 1 {
		t.Errorf("Apply with zero params = %+v", pg)
	}
}
