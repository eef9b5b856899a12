// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// DefaultLimit is the page size used when the request does not name one.
const DefaultLimit = 10

// MaxLimit caps client-supplied page sizes.
const MaxLimit = 100

// Params is an offset window over a list.
type Params struct {
	Skip  int64
	Limit int64
}

// Parse reads "skip" and "limit" query parameters. Missing or invalid
// values fall back to 0 and DefaultLimit; limit is clamped to MaxLimit.
func Parse(r *http.Request) Params {
	return Params{
		Skip:  parseInt(query.Get(r, "skip"), 0, 0),
		Limit: clamp(parseInt(query.Get(r, "limit"), DefaultLimit, 1)),
	}
}

// New builds Params from raw values with the same defaults as Parse.
func New(skip, limit int64) Params {
	if skip < 0 {
		skip = 0
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	return Params{Skip: skip, Limit: clamp(limit)}
}

func parseInt(s string, def, min int64) int64 {
	if s == "" {
		return def
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < min {
		return def
	}
	return n
}

func clamp(limit int64) int64 {
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// PageNumber returns the 1-based page index of the window.
func (p Params) PageNumber() int64 {
	if p.Limit <= 0 {
		return 1
	}
	return p.Skip/p.Limit + 1
}

// Envelope is the list response shape shared by every paged endpoint.
// Total is counted independently of the window.
type Envelope[T any] struct {
	Items   []T   `json:"items"`
	Total   int64 `json:"total"`
	Page    int64 `json:"page"`
	PerPage int64 `json:"per_page"`
}

// Wrap builds an Envelope. A nil items slice is rendered as [].
func Wrap[T any](items []T, total int64, p Params) Envelope[T] {
	if items == nil {
		items = []T{}
	}
	return Envelope[T]{
		Items:   items,
		Total:   total,
		Page:    p.PageNumber(),
		PerPage: p.Limit,
	}
}

// Map converts envelope items while keeping the counts.
func Map[T, U any](e Envelope[T], fn func(T) U) Envelope[U] {
	out := make([]U, 0, len(e.Items))
	for _, it := range e.Items {
		out = append(out, fn(it))
	}
	return Envelope[U]{Items: out, Total: e.Total, Page: e.Page, PerPage: e.PerPage}
}
