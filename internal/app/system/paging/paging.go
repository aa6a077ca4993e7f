// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// PageSize is the default number of rows in a list response.
const PageSize = 50

// MaxPageSize caps the "limit" query parameter.
const MaxPageSize = 500

// Params is a 1-based start row and a page size.
type Params struct {
	Start int
	Limit int
}

// Parse reads "start" (1-based) and "limit" from the query string.
// Missing or invalid values fall back to 1 and PageSize.
func Parse(r *http.Request) Params {
	p := Params{Start: 1, Limit: PageSize}
	if n, err := strconv.Atoi(query.Get(r, "start")); err == nil && n >= 1 {
		p.Start = n
	}
	if n, err := strconv.Atoi(query.Get(r, "limit")); err == nil && n >= 1 {
		p.Limit = min(n, MaxPageSize)
	}
	return p
}

// Page is one slice of a full, already ordered result.
type Page[T any] struct {
	Items   []T  `json:"items"`
	Total   int  `json:"total"`
	Start   int  `json:"start"`
	Limit   int  `json:"limit"`
	HasPrev bool `json:"has_prev"`
	HasNext bool `json:"has_next"`
}

// Apply cuts rows down to the page p describes. Lists are small enough
// to fetch whole and recompute after every write, so paging happens here
// rather than in the backend.
func Apply[T any](rows []T, p Params) Page[T] {
	if p.Start < 1 {
		p.Start = 1
	}
	if p.Limit < 1 {
		p.Limit = PageSize
	}
	total := len(rows)
	lo := min(p.Start-1, total)
	hi := min(lo+p.Limit, total)

	items := make([]T, hi-lo)
	copy(items, rows[lo:hi])
	return Page[T]{
		Items:   items,
		Total:   total,
		Start:   p.Start,
		Limit:   p.Limit,
		HasPrev: lo > 0,
		HasNext: hi < total,
	}
}
