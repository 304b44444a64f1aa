package pagination

import (
	"net/http"
	"strconv"
)

// Params is an offset/limit window. Page is 1-based and derived from Offset
// when the caller sent an explicit offset.
type Params struct {
	Page   int `json:"page"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// FromRequest reads ?page=, ?offset= and ?limit=. An explicit offset wins
// over page. Invalid values fall back to the defaults and limit is capped at
// maxLimit.
func FromRequest(r *http.Request, defaultLimit, maxLimit int) Params {
	q := r.URL.Query()
	p := Params{Page: 1, Limit: defaultLimit}

	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		p.Limit = min(v, maxLimit)
	}
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		p.Page = v
	}
	p.Offset = (p.Page - 1) * p.Limit

	if v, err := strconv.Atoi(q.Get("offset")); err == nil && v >= 0 {
		p.Offset = v
		p.Page = v/p.Limit + 1
	}
	return p
}

// Result is one page of a listing whose total size is known.
type Result[T any] struct {
	Data       []T  `json:"data"`
	Count      int  `json:"count"`
	Offset     int  `json:"offset"`
	Limit      int  `json:"limit"`
	Page       int  `json:"page"`
	TotalPages int  `json:"total_pages"`
	HasMore    bool `json:"has_more"`
}

// NewResult renders a nil slice as [].
func NewResult[T any](data []T, count int, p Params) Result[T] {
	if data == nil {
		data = []T{}
	}
	pages := 0
	if p.Limit > 0 {
		pages = (count + p.Limit - 1) / p.Limit
	}
	return Result[T]{
		Data:       data,
		Count:      count,
		Offset:     p.Offset,
		Limit:      p.Limit,
		Page:       p.Page,
		TotalPages: pages,
		HasMore:    p.Offset+len(data) < count,
	}
}
