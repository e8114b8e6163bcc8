// Package catalog declares, per entity, what a list view can filter, sort
// and display, which status moves an operator may make, and exposes each
// entity to the transports as a type-erased Resource.
package catalog

import (
	"errors"
	"fmt"
	"slices"

	"evadmin/backend/libs/listview"
	"evadmin/backend/libs/render"
)

var (
	// ErrUnknownStatus is returned for a status outside the entity's set.
	ErrUnknownStatus = errors.New("catalog: unknown status")
	// ErrInvalidTransition is returned when the current status may not move
	// to the requested one.
	ErrInvalidTransition = errors.New("catalog: invalid status transition")
)

// Column is one displayed column. Key names the schema field used for
// sorting; columns whose key is not a schema field are not sortable.
type Column[R any] struct {
	Key   string
	Title string
	Cell  func(r R, lang string) render.Node
	Value func(r R) any
}

// Definition describes one entity.
type Definition[R any] struct {
	Name     string
	Title    string
	Schema   *listview.Schema[R]
	Columns  []Column[R]
	Statuses []string
	// Transitions maps a target status to the statuses it may be reached
	// from. An empty source list allows any current status.
	Transitions map[string][]string

	ID        func(R) string
	Status    func(R) string
	SetStatus func(*R, string)
}

// ValidStatus reports whether status belongs to the entity's set.
func (d *Definition[R]) ValidStatus(status string) bool {
	return slices.Contains(d.Statuses, status)
}

// Sources returns the statuses an operator may move a record out of to
// reach to. An empty result allows any status other than to.
func (d *Definition[R]) Sources(to string) ([]string, error) {
	if !d.ValidStatus(to) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, to)
	}
	sources, ok := d.Transitions[to]
	if !ok {
		return nil, fmt.Errorf("%w: no operator move to %s", ErrInvalidTransition, to)
	}
	return sources, nil
}

// CheckTransition validates an operator move from one status to another.
func (d *Definition[R]) CheckTransition(from, to string) error {
	sources, err := d.Sources(to)
	if err != nil {
		return err
	}
	if from == to || len(sources) > 0 && !slices.Contains(sources, from) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// RenderColumns returns the table header description.
func (d *Definition[R]) RenderColumns() []render.Column {
	out := make([]render.Column, 0, len(d.Columns))
	for _, c := range d.Columns {
		out = append(out, render.Column{Key: c.Key, Title: c.Title, Sortable: d.Schema.Sortable(c.Key)})
	}
	return out
}

// Cells renders one row.
func (d *Definition[R]) Cells(r R, lang string) []render.Node {
	out := make([]render.Node, 0, len(d.Columns))
	for _, c := range d.Columns {
		out = append(out, c.Cell(r, lang))
	}
	return out
}

// Values returns one export row.
func (d *Definition[R]) Values(r R) []any {
	out := make([]any, 0, len(d.Columns))
	for _, c := range d.Columns {
		out = append(out, c.Value(r))
	}
	return out
}
