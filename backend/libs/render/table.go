package render

import (
	"strconv"

	"evadmin/backend/libs/listview"
)

// Sort indicators shown next to the active column title.
const (
	IndicatorAsc  = "▲"
	IndicatorDesc = "▼"
)

// Column describes one table column.
type Column struct {
	Key      string
	Title    string
	Sortable bool
}

// TableOptions controls header decoration.
type TableOptions struct {
	Sort listview.Sort
	// SortHref returns the link that toggles sorting on a column. Nil
	// renders plain header titles.
	SortHref func(key string) string
	Empty    string
	Class    string
}

// Table renders a table. Each row holds one cell per column.
func Table(columns []Column, rows [][]Node, opts TableOptions) Node {
	head := make([]Node, 0, len(columns))
	for _, col := range columns {
		head = append(head, headerCell(col, opts))
	}

	body := make([]Node, 0, len(rows))
	for _, row := range rows {
		cells := make([]Node, 0, len(row))
		for _, cell := range row {
			cells = append(cells, El("td", nil, cell))
		}
		body = append(body, El("tr", nil, cells...))
	}
	if len(rows) == 0 {
		empty := opts.Empty
		if empty == "" {
			empty = "No data"
		}
		body = append(body, El("tr", Attrs{"class": "empty"},
			El("td", Attrs{"colspan": strconv.Itoa(max(1, len(columns)))}, Text(empty)),
		))
	}

	class := opts.Class
	if class == "" {
		class = "list-table"
	}
	return El("table", Attrs{"class": class},
		El("thead", nil, El("tr", nil, head...)),
		El("tbody", nil, body...),
	)
}

func headerCell(col Column, opts TableOptions) Node {
	title := []Node{Text(col.Title)}
	attrs := Attrs{"data-key": col.Key}
	if col.Sortable && opts.Sort.Field == col.Key {
		switch opts.Sort.Direction {
		case listview.Asc:
			title = append(title, Text(" "+IndicatorAsc))
			attrs["aria-sort"] = "ascending"
		case listview.Desc:
			title = append(title, Text(" "+IndicatorDesc))
			attrs["aria-sort"] = "descending"
		}
	}
	if col.Sortable && opts.SortHref != nil {
		attrs["class"] = "sortable"
		return El("th", attrs, El("a", Attrs{"href": opts.SortHref(col.Key)}, title...))
	}
	return El("th", attrs, title...)
}

// Pager renders prev, a window of page numbers and next. Links at the
// bounds are rendered disabled.
func Pager(current, pages int, href func(page int) string) Node {
	pages = max(1, pages)
	current = min(max(1, current), pages)

	items := []Node{pagerLink("‹", current-1, current > 1, false, href)}
	from, to := pageWindow(current, pages, 7)
	if from > 1 {
		items = append(items, pagerLink("1", 1, true, false, href))
		if from > 2 {
			items = append(items, El("span", Attrs{"class": "gap"}, Text("…")))
		}
	}
	for p := from; p <= to; p++ {
		items = append(items, pagerLink(strconv.Itoa(p), p, p != current, p == current, href))
	}
	if to < pages {
		if to < pages-1 {
			items = append(items, El("span", Attrs{"class": "gap"}, Text("…")))
		}
		items = append(items, pagerLink(strconv.Itoa(pages), pages, true, false, href))
	}
	items = append(items, pagerLink("›", current+1, current < pages, false, href))
	return El("nav", Attrs{"class": "pager"}, items...)
}

func pageWindow(current, pages, width int) (int, int) {
	from := max(1, current-width/2)
	to := min(pages, from+width-1)
	from = max(1, to-width+1)
	return from, to
}

func pagerLink(label string, page int, enabled, active bool, href func(int) string) Node {
	switch {
	case active:
		return El("span", Attrs{"class": "page active", "aria-current": "page"}, Text(label))
	case !enabled || href == nil:
		return El("span", Attrs{"class": "page disabled"}, Text(label))
	default:
		return El("a", Attrs{"class": "page", "href": href(page)}, Text(label))
	}
}

// Badge renders a status pill. The CSS class is derived from status.
func Badge(status, label string) Node {
	if label == "" {
		label = status
	}
	return El("span", Attrs{"class": "badge badge-" + status}, Text(label))
}
