// Package listview implements the filter → sort → paginate contract shared by
// every admin table: a pure engine (Apply), a data-provider interface
// (Fetcher) and a stateful per-view Controller.
package listview

import (
	"maps"
	"strings"
)

// Page size bounds applied by Query.Normalize.
const (
	DefaultPageSize = 20
	MaxPageSize     = 200
)

// Direction is a sort direction. The zero value means "no sort".
type Direction string

const (
	None Direction = ""
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection accepts asc/desc in any case; anything else is None.
func ParseDirection(s string) Direction {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending":
		return Asc
	case "desc", "descending":
		return Desc
	default:
		return None
	}
}

// Next walks the three-state cycle none → asc → desc → none.
func (d Direction) Next() Direction {
	switch d {
	case None:
		return Asc
	case Asc:
		return Desc
	default:
		return None
	}
}

// Sort selects at most one field.
type Sort struct {
	Field     string    `json:"field,omitempty"`
	Direction Direction `json:"direction,omitempty"`
}

// Active reports whether the sort reorders rows.
func (s Sort) Active() bool {
	return s.Field != "" && s.Direction != None
}

// Filter maps a filter name to its comparison value. Empty values do not
// constrain the view.
type Filter map[string]string

// Active returns a copy holding only the constraining entries.
func (f Filter) Active() Filter {
	out := make(Filter, len(f))
	for k, v := range f {
		if strings.TrimSpace(v) != "" {
			out[k] = strings.TrimSpace(v)
		}
	}
	return out
}

// Clone returns an independent copy.
func (f Filter) Clone() Filter {
	if f == nil {
		return Filter{}
	}
	return maps.Clone(f)
}

// Query is everything a provider needs to produce one page.
type Query struct {
	Filter   Filter `json:"filter,omitempty"`
	Sort     Sort   `json:"sort"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

// Normalize fills defaults: page ≥ 1, page size in [1, MaxPageSize],
// filter reduced to active entries, and a direction-less sort dropped.
func (q Query) Normalize() Query {
	out := q
	out.Filter = q.Filter.Active()
	if out.PageSize <= 0 {
		out.PageSize = DefaultPageSize
	}
	if out.PageSize > MaxPageSize {
		out.PageSize = MaxPageSize
	}
	if out.Page < 1 {
		out.Page = 1
	}
	if !out.Sort.Active() {
		out.Sort = Sort{}
	}
	return out
}

// Page is one visible slice of a filtered, sorted collection.
type Page[R any] struct {
	Items    []R    `json:"items"`
	Total    int    `json:"total"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Pages    int    `json:"pages"`
	Sort     Sort   `json:"sort"`
	Filter   Filter `json:"filter,omitempty"`
}

// PageCount is ceil(total/size), never less than 1.
func PageCount(total, size int) int {
	if size <= 0 || total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

// ClampPage clamps n to [1, PageCount(total, size)].
func ClampPage(n, total, size int) int {
	if n < 1 {
		return 1
	}
	if last := PageCount(total, size); n > last {
		return last
	}
	return n
}

// Bounds returns the half-open slice [start, end) for a clamped page.
func Bounds(page, total, size int) (int, int) {
	page = ClampPage(page, total, size)
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	return start, end
}
