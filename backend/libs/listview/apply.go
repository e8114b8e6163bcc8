package listview

import (
	"context"
	"slices"
)

// Apply runs filter → sort → paginate over records without modifying them.
// Filters and sorts naming unknown schema entries are ignored; a sort with
// direction None leaves rows in their original order.
func Apply[R any](records []R, schema *Schema[R], q Query) Page[R] {
	q = q.Normalize()
	filter := schema.NormalizeFilter(q.Filter)
	srt := schema.NormalizeSort(q.Sort)
	view := Select(records, schema, filter, srt)

	total := len(view)
	page := ClampPage(q.Page, total, q.PageSize)
	start, end := Bounds(page, total, q.PageSize)

	return Page[R]{
		Items:    slices.Clone(view[start:end]),
		Total:    total,
		Page:     page,
		PageSize: q.PageSize,
		Pages:    PageCount(total, q.PageSize),
		Sort:     srt,
		Filter:   filter,
	}
}

// Select filters and sorts records into a new slice without paginating.
// Unknown filters and sorts are ignored as in Apply.
func Select[R any](records []R, schema *Schema[R], filter Filter, srt Sort) []R {
	filter = schema.NormalizeFilter(filter)
	srt = schema.NormalizeSort(srt)

	view := make([]R, 0, len(records))
	for _, r := range records {
		if schema.Matches(r, filter) {
			view = append(view, r)
		}
	}

	if srt.Active() {
		field, _ := schema.Field(srt.Field)
		if srt.Direction == Desc {
			slices.SortStableFunc(view, func(a, b R) int { return field.Compare(b, a) })
		} else {
			slices.SortStableFunc(view, field.Compare)
		}
	}
	return view
}

// Fetcher produces one page for a query. It is the data-provider seam: mock
// data, SQL and caches all satisfy it.
type Fetcher[R any] interface {
	FetchPage(ctx context.Context, q Query) (Page[R], error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc[R any] func(ctx context.Context, q Query) (Page[R], error)

// FetchPage calls f.
func (f FetcherFunc[R]) FetchPage(ctx context.Context, q Query) (Page[R], error) {
	return f(ctx, q)
}

// SliceSource serves pages from an in-memory collection.
type SliceSource[R any] struct {
	schema *Schema[R]
	load   func() []R
}

// FromSlice serves a fixed slice.
func FromSlice[R any](schema *Schema[R], records []R) *SliceSource[R] {
	return &SliceSource[R]{schema: schema, load: func() []R { return records }}
}

// FromFunc serves whatever load returns at fetch time.
func FromFunc[R any](schema *Schema[R], load func() []R) *SliceSource[R] {
	return &SliceSource[R]{schema: schema, load: load}
}

// FetchPage implements Fetcher.
func (s *SliceSource[R]) FetchPage(ctx context.Context, q Query) (Page[R], error) {
	if err := ctx.Err(); err != nil {
		return Page[R]{}, err
	}
	return Apply(s.load(), s.schema, q), nil
}
