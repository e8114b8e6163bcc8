package listview

import "context"

// Controller owns the UI state of one list view: active filter, sort, page
// and page size, plus the last page fetched. It is not safe for concurrent
// use; a view is driven by a single goroutine.
type Controller[R any] struct {
	source  Fetcher[R]
	query   Query
	current Page[R]
}

// NewController returns a controller on page 1 with no filter and no sort.
func NewController[R any](source Fetcher[R], pageSize int) *Controller[R] {
	q := Query{Page: 1, PageSize: pageSize}.Normalize()
	return &Controller[R]{source: source, query: q}
}

// Query returns a copy of the current query.
func (c *Controller[R]) Query() Query {
	q := c.query
	q.Filter = q.Filter.Clone()
	return q
}

// Current returns the last fetched page.
func (c *Controller[R]) Current() Page[R] {
	return c.current
}

// SetFilter replaces the predicate set and resets to page 1.
func (c *Controller[R]) SetFilter(ctx context.Context, f Filter) (Page[R], error) {
	c.query.Filter = f.Active()
	c.query.Page = 1
	return c.Refresh(ctx)
}

// SetSort applies an explicit sort. Direction None clears sorting.
func (c *Controller[R]) SetSort(ctx context.Context, field string, dir Direction) (Page[R], error) {
	if dir == None || field == "" {
		c.query.Sort = Sort{}
	} else {
		c.query.Sort = Sort{Field: field, Direction: dir}
	}
	return c.Refresh(ctx)
}

// ToggleSort advances field through none → asc → desc → none. Selecting a
// field other than the current one clears it and starts at asc.
func (c *Controller[R]) ToggleSort(ctx context.Context, field string) (Page[R], error) {
	dir := Asc
	if c.query.Sort.Field == field {
		dir = c.query.Sort.Direction.Next()
	}
	return c.SetSort(ctx, field, dir)
}

// SetPage moves to page n, clamped by the source.
func (c *Controller[R]) SetPage(ctx context.Context, n int) (Page[R], error) {
	c.query.Page = n
	return c.Refresh(ctx)
}

// SetPageSize changes the page size and resets to page 1.
func (c *Controller[R]) SetPageSize(ctx context.Context, size int) (Page[R], error) {
	c.query.PageSize = size
	c.query.Page = 1
	return c.Refresh(ctx)
}

// Refresh re-fetches the current query, e.g. after the backing data changed.
// The page number and sort reported by the source are adopted so the
// controller never holds an out-of-range page or an ignored sort.
func (c *Controller[R]) Refresh(ctx context.Context) (Page[R], error) {
	c.query = c.query.Normalize()
	page, err := c.source.FetchPage(ctx, c.Query())
	if err != nil {
		return c.current, err
	}
	c.query.Page = page.Page
	c.query.Sort = page.Sort
	c.current = page
	return page, nil
}
