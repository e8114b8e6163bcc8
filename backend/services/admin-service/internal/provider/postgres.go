package provider

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	"evadmin/backend/libs/listview"
	"evadmin/backend/services/admin-service/internal/catalog"
)

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// Table maps an entity onto a PostgreSQL table. Every table has an id
// primary key, a status column and a seq column holding insertion order.
type Table[R any] struct {
	Name    string
	Columns []string
	// Exprs maps schema field names to SQL expressions. Fields without an
	// entry are neither filterable nor sortable in SQL.
	Exprs map[string]string
	// Custom builds the condition for a custom filter; arg is the
	// placeholder to use for value.
	Custom map[string]func(arg string) string
	Scan   func(s scanner) (R, error)
}

// Postgres serves one entity from its table.
type Postgres[R any] struct {
	db    *sql.DB
	def   *catalog.Definition[R]
	table Table[R]
}

// NewPostgres returns a SQL-backed provider.
func NewPostgres[R any](db *sql.DB, def *catalog.Definition[R], table Table[R]) *Postgres[R] {
	return &Postgres[R]{db: db, def: def, table: table}
}

// FetchPage counts the filtered rows, clamps the page like the in-memory
// engine and then reads one page.
func (p *Postgres[R]) FetchPage(ctx context.Context, q listview.Query) (listview.Page[R], error) {
	q = q.Normalize()
	filter := p.def.Schema.NormalizeFilter(q.Filter)
	srt := p.def.Schema.NormalizeSort(q.Sort)
	if _, ok := p.table.Exprs[srt.Field]; srt.Active() && !ok {
		srt = listview.Sort{}
	}

	where, args := p.where(filter)

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", p.table.Name, where)
	if err := p.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return listview.Page[R]{}, fmt.Errorf("count %s: %w", p.table.Name, err)
	}

	page := listview.ClampPage(q.Page, total, q.PageSize)
	offset := (page - 1) * q.PageSize
	n := len(args)
	listQuery := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s LIMIT $%d OFFSET $%d",
		strings.Join(p.table.Columns, ", "), p.table.Name, where, p.orderBy(srt), n+1, n+2)

	items, err := p.query(ctx, listQuery, q.PageSize, append(args, q.PageSize, offset)...)
	if err != nil {
		return listview.Page[R]{}, err
	}

	return listview.Page[R]{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: q.PageSize,
		Pages:    listview.PageCount(total, q.PageSize),
		Sort:     srt,
		Filter:   filter,
	}, nil
}

// FetchAll reads up to limit filtered, sorted rows with a single statement.
func (p *Postgres[R]) FetchAll(ctx context.Context, q listview.Query, limit int) ([]R, error) {
	filter := p.def.Schema.NormalizeFilter(q.Filter)
	srt := p.def.Schema.NormalizeSort(q.Sort)
	if _, ok := p.table.Exprs[srt.Field]; srt.Active() && !ok {
		srt = listview.Sort{}
	}

	where, args := p.where(filter)
	query := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s LIMIT $%d",
		strings.Join(p.table.Columns, ", "), p.table.Name, where, p.orderBy(srt), len(args)+1)
	return p.query(ctx, query, limit, append(args, limit)...)
}

func (p *Postgres[R]) query(ctx context.Context, query string, capacity int, args ...any) ([]R, error) {
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", p.table.Name, err)
	}
	defer rows.Close()

	items := make([]R, 0, min(capacity, 1024))
	for rows.Next() {
		r, err := p.table.Scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", p.table.Name, err)
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

func (p *Postgres[R]) where(filter listview.Filter) (string, []any) {
	names := make([]string, 0, len(filter))
	for name := range filter {
		names = append(names, name)
	}
	slices.Sort(names)

	var conds []string
	var args []any
	for _, name := range names {
		def, ok := p.def.Schema.LookupFilter(name)
		if !ok {
			continue
		}
		value := filter[name]
		arg := fmt.Sprintf("$%d", len(args)+1)
		switch def.Kind {
		case listview.MatchContains:
			var ors []string
			for _, field := range def.Fields {
				if expr, ok := p.table.Exprs[field]; ok {
					ors = append(ors, fmt.Sprintf("%s ILIKE %s", expr, arg))
				}
			}
			if len(ors) == 0 {
				continue
			}
			conds = append(conds, "("+strings.Join(ors, " OR ")+")")
			args = append(args, "%"+escapeLike(value)+"%")
		case listview.MatchEquals:
			expr, ok := p.table.Exprs[def.Fields[0]]
			if !ok {
				continue
			}
			conds = append(conds, fmt.Sprintf("lower(%s) = lower(%s)", expr, arg))
			args = append(args, value)
		default:
			build, ok := p.table.Custom[name]
			if !ok {
				continue
			}
			conds = append(conds, build(arg))
			args = append(args, value)
		}
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (p *Postgres[R]) orderBy(srt listview.Sort) string {
	if !srt.Active() {
		return "seq"
	}
	expr := p.table.Exprs[srt.Field]
	if field, ok := p.def.Schema.Field(srt.Field); ok && field.Kind == listview.KindText {
		expr = "lower(" + expr + ")"
	}
	// NULL timestamps sort like the zero time in memory mode.
	dir := "ASC NULLS FIRST"
	if srt.Direction == listview.Desc {
		dir = "DESC NULLS LAST"
	}
	return fmt.Sprintf("%s %s, seq", expr, dir)
}

// Get reads one row by id.
func (p *Postgres[R]) Get(ctx context.Context, id string) (R, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", strings.Join(p.table.Columns, ", "), p.table.Name)
	r, err := p.table.Scan(p.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return r, fmt.Errorf("%s %s: %w", p.def.Name, id, ErrNotFound)
	}
	return r, err
}

// SetStatus updates the status column and returns the updated row.
func (p *Postgres[R]) SetStatus(ctx context.Context, id, status string) (R, error) {
	query := fmt.Sprintf("UPDATE %s SET status = $1 WHERE id = $2 RETURNING %s", p.table.Name, strings.Join(p.table.Columns, ", "))
	r, err := p.table.Scan(p.db.QueryRowContext(ctx, query, status, id))
	if errors.Is(err, sql.ErrNoRows) {
		return r, fmt.Errorf("%s %s: %w", p.def.Name, id, ErrNotFound)
	}
	return r, err
}

// Transition updates the status only while the stored status is one the
// definition allows moving out of. When no row changes, a second read tells
// a missing id from a rejected move.
func (p *Postgres[R]) Transition(ctx context.Context, id, status string) (R, error) {
	var zero R
	sources, err := p.def.Sources(status)
	if err != nil {
		return zero, err
	}

	args := []any{status, id}
	cond := "status <> $1"
	if len(sources) > 0 {
		marks := make([]string, len(sources))
		for i, s := range sources {
			args = append(args, s)
			marks[i] = fmt.Sprintf("$%d", len(args))
		}
		cond += " AND status IN (" + strings.Join(marks, ", ") + ")"
	}
	query := fmt.Sprintf("UPDATE %s SET status = $1 WHERE id = $2 AND %s RETURNING %s",
		p.table.Name, cond, strings.Join(p.table.Columns, ", "))
	r, err := p.table.Scan(p.db.QueryRowContext(ctx, query, args...))
	if !errors.Is(err, sql.ErrNoRows) {
		return r, err
	}

	var current string
	err = p.db.QueryRowContext(ctx, fmt.Sprintf("SELECT status FROM %s WHERE id = $1", p.table.Name), id).Scan(&current)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return zero, fmt.Errorf("%s %s: %w", p.def.Name, id, ErrNotFound)
	case err != nil:
		return zero, err
	}
	return zero, fmt.Errorf("%w: %s -> %s", catalog.ErrInvalidTransition, current, status)
}

// CountByStatus groups rows by status. Statuses without rows report zero.
func (p *Postgres[R]) CountByStatus(ctx context.Context) (map[string]int, error) {
	query := fmt.Sprintf("SELECT status, COUNT(*) FROM %s GROUP BY status", p.table.Name)
	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int, len(p.def.Statuses))
	for _, s := range p.def.Statuses {
		out[s] = 0
	}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
