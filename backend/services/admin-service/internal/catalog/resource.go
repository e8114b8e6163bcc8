package catalog

import (
	"context"
	"fmt"

	"evadmin/backend/libs/listview"
	"evadmin/backend/libs/render"
	"evadmin/backend/services/admin-service/internal/feed"
)

// SourceOperator tags updates caused by an operator action.
const SourceOperator = "operator"

// Provider is the data-provider contract for one entity.
type Provider[R any] interface {
	listview.Fetcher[R]
	// FetchAll returns up to limit filtered, sorted records read in one
	// pass, ignoring the query's paging.
	FetchAll(ctx context.Context, q listview.Query, limit int) ([]R, error)
	Get(ctx context.Context, id string) (R, error)
	SetStatus(ctx context.Context, id, status string) (R, error)
	// Transition sets status only if the stored status may move to it.
	// The check and the write happen atomically.
	Transition(ctx context.Context, id, status string) (R, error)
	CountByStatus(ctx context.Context) (map[string]int, error)
}

// ColumnInfo describes a column to API clients.
type ColumnInfo struct {
	Key      string `json:"key"`
	Title    string `json:"title"`
	Sortable bool   `json:"sortable"`
}

// Info is the schema document served at /api/{entity}/schema.
type Info struct {
	Name        string                `json:"name"`
	Title       string                `json:"title"`
	Fields      []listview.FieldInfo  `json:"fields"`
	Filters     []listview.FilterInfo `json:"filters"`
	Columns     []ColumnInfo          `json:"columns"`
	Statuses    []string              `json:"statuses"`
	Transitions map[string][]string   `json:"transitions"`
}

// Resource is an entity with its record type erased, as used by the HTTP,
// live and export transports.
type Resource interface {
	Name() string
	Title() string
	Info() Info
	Columns() []render.Column
	Cells(item any, lang string) []render.Node
	Values(item any) []any

	List(ctx context.Context, q listview.Query) (listview.Page[any], error)
	// ListAll reads up to limit records of the filtered, sorted view in a
	// single pass.
	ListAll(ctx context.Context, q listview.Query, limit int) ([]any, error)
	Get(ctx context.Context, id string) (any, error)
	// Transition performs an operator status change after validating it
	// and announces the update.
	Transition(ctx context.Context, id, status string) (any, error)
	// Apply writes a reported status without transition rules. The caller
	// announces the update.
	Apply(ctx context.Context, id, status string) error
	CountByStatus(ctx context.Context) (map[string]int, error)

	NewSession(pageSize int) Session
}

// Session is a per-view controller with erased records.
type Session interface {
	Query() listview.Query
	Current() listview.Page[any]
	SetFilter(ctx context.Context, f listview.Filter) (listview.Page[any], error)
	SetSort(ctx context.Context, field string, dir listview.Direction) (listview.Page[any], error)
	ToggleSort(ctx context.Context, field string) (listview.Page[any], error)
	SetPage(ctx context.Context, n int) (listview.Page[any], error)
	SetPageSize(ctx context.Context, size int) (listview.Page[any], error)
	Refresh(ctx context.Context) (listview.Page[any], error)
}

type resource[R any] struct {
	def       *Definition[R]
	provider  Provider[R]
	publisher feed.Publisher
}

// NewResource binds a definition to a provider. publisher may be nil.
func NewResource[R any](def *Definition[R], provider Provider[R], publisher feed.Publisher) Resource {
	return &resource[R]{def: def, provider: provider, publisher: publisher}
}

func (r *resource[R]) Name() string  { return r.def.Name }
func (r *resource[R]) Title() string { return r.def.Title }

func (r *resource[R]) Info() Info {
	cols := r.def.RenderColumns()
	infos := make([]ColumnInfo, 0, len(cols))
	for _, c := range cols {
		infos = append(infos, ColumnInfo{Key: c.Key, Title: c.Title, Sortable: c.Sortable})
	}
	return Info{
		Name:        r.def.Name,
		Title:       r.def.Title,
		Fields:      r.def.Schema.Fields(),
		Filters:     r.def.Schema.Filters(),
		Columns:     infos,
		Statuses:    r.def.Statuses,
		Transitions: r.def.Transitions,
	}
}

func (r *resource[R]) Columns() []render.Column {
	return r.def.RenderColumns()
}

func (r *resource[R]) Cells(item any, lang string) []render.Node {
	rec, ok := item.(R)
	if !ok {
		return nil
	}
	return r.def.Cells(rec, lang)
}

func (r *resource[R]) Values(item any) []any {
	rec, ok := item.(R)
	if !ok {
		return nil
	}
	return r.def.Values(rec)
}

func (r *resource[R]) List(ctx context.Context, q listview.Query) (listview.Page[any], error) {
	page, err := r.provider.FetchPage(ctx, q)
	if err != nil {
		return listview.Page[any]{}, err
	}
	return Erase(page), nil
}

func (r *resource[R]) ListAll(ctx context.Context, q listview.Query, limit int) ([]any, error) {
	records, err := r.provider.FetchAll(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	items := make([]any, len(records))
	for i, rec := range records {
		items[i] = rec
	}
	return items, nil
}

func (r *resource[R]) Get(ctx context.Context, id string) (any, error) {
	return r.provider.Get(ctx, id)
}

func (r *resource[R]) Transition(ctx context.Context, id, status string) (any, error) {
	updated, err := r.provider.Transition(ctx, id, status)
	if err != nil {
		return nil, err
	}
	if r.publisher != nil {
		r.publisher.Publish(ctx, feed.Update{Entity: r.def.Name, IDs: []string{id}, Source: SourceOperator})
	}
	return updated, nil
}

func (r *resource[R]) Apply(ctx context.Context, id, status string) error {
	if !r.def.ValidStatus(status) {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, status)
	}
	_, err := r.provider.SetStatus(ctx, id, status)
	return err
}

func (r *resource[R]) CountByStatus(ctx context.Context) (map[string]int, error) {
	return r.provider.CountByStatus(ctx)
}

func (r *resource[R]) NewSession(pageSize int) Session {
	return &session[R]{ctrl: listview.NewController[R](r.provider, pageSize)}
}

type session[R any] struct {
	ctrl *listview.Controller[R]
}

func (s *session[R]) Query() listview.Query        { return s.ctrl.Query() }
func (s *session[R]) Current() listview.Page[any] { return Erase(s.ctrl.Current()) }

func (s *session[R]) SetFilter(ctx context.Context, f listview.Filter) (listview.Page[any], error) {
	page, err := s.ctrl.SetFilter(ctx, f)
	return Erase(page), err
}

func (s *session[R]) SetSort(ctx context.Context, field string, dir listview.Direction) (listview.Page[any], error) {
	page, err := s.ctrl.SetSort(ctx, field, dir)
	return Erase(page), err
}

func (s *session[R]) ToggleSort(ctx context.Context, field string) (listview.Page[any], error) {
	page, err := s.ctrl.ToggleSort(ctx, field)
	return Erase(page), err
}

func (s *session[R]) SetPage(ctx context.Context, n int) (listview.Page[any], error) {
	page, err := s.ctrl.SetPage(ctx, n)
	return Erase(page), err
}

func (s *session[R]) SetPageSize(ctx context.Context, size int) (listview.Page[any], error) {
	page, err := s.ctrl.SetPageSize(ctx, size)
	return Erase(page), err
}

func (s *session[R]) Refresh(ctx context.Context) (listview.Page[any], error) {
	page, err := s.ctrl.Refresh(ctx)
	return Erase(page), err
}

// Erase converts a typed page to a page of any.
func Erase[R any](p listview.Page[R]) listview.Page[any] {
	items := make([]any, len(p.Items))
	for i, it := range p.Items {
		items[i] = it
	}
	return listview.Page[any]{
		Items:    items,
		Total:    p.Total,
		Page:     p.Page,
		PageSize: p.PageSize,
		Pages:    p.Pages,
		Sort:     p.Sort,
		Filter:   p.Filter,
	}
}
