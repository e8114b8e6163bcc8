package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"evadmin/backend/libs/format"
	"evadmin/backend/libs/listview"
	"evadmin/backend/libs/render"
)

// PageHandlers renders server-side HTML list pages.
type PageHandlers struct {
	entities *EntityHandlers
	settings *SettingsHandlers
	logger   *zap.Logger
}

// NewPageHandlers returns the HTML handlers.
func NewPageHandlers(entities *EntityHandlers, settings *SettingsHandlers, logger *zap.Logger) *PageHandlers {
	return &PageHandlers{entities: entities, settings: settings, logger: logger}
}

var emptyText = map[string]string{
	format.LangZH: "暂无数据",
	format.LangEN: "No data",
}

// List handles GET /admin/{entity}.
func (h *PageHandlers) List(w http.ResponseWriter, r *http.Request) {
	res, ok := h.entities.resource(w, r)
	if !ok {
		return
	}
	q := parseQuery(r)
	page, err := res.List(r.Context(), q)
	if err != nil {
		h.logger.Error("render list failed", zap.String("entity", res.Name()), zap.Error(err))
		http.Error(w, "failed to load list", http.StatusInternalServerError)
		return
	}
	lang := h.settings.language(r)

	rows := make([][]render.Node, 0, len(page.Items))
	for _, item := range page.Items {
		rows = append(rows, res.Cells(item, lang))
	}

	base := r.URL.Query()
	table := render.Table(res.Columns(), rows, render.TableOptions{
		Sort:     page.Sort,
		SortHref: func(key string) string { return sortHref(base, page.Sort, key) },
		Empty:    emptyText[lang],
	})
	pager := render.Pager(page.Page, page.Pages, func(n int) string {
		return withParams(base, map[string]string{"page": strconv.Itoa(n)})
	})

	doc := render.Fragment(
		render.Raw("<!DOCTYPE html>"),
		render.El("html", render.Attrs{"lang": lang},
			render.El("head", nil,
				render.El("meta", render.Attrs{"charset": "utf-8"}),
				render.El("title", nil, render.Text(res.Title())),
			),
			render.El("body", nil,
				render.El("h1", nil, render.Text(res.Title())),
				render.El("p", render.Attrs{"class": "summary"},
					render.Text(fmt.Sprintf("%s / %d", format.Number(page.Total), page.Pages)),
				),
				table,
				pager,
			),
		),
	)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := render.Write(w, doc); err != nil {
		h.logger.Warn("write page failed", zap.Error(err))
	}
}

// sortHref links a header to the next state of the three-state toggle.
func sortHref(base url.Values, current listview.Sort, key string) string {
	dir := listview.Asc
	if current.Field == key {
		dir = current.Direction.Next()
	}
	params := map[string]string{"page": "1", "sort": "", "dir": ""}
	if dir != listview.None {
		params["sort"] = key
		params["dir"] = string(dir)
	}
	return withParams(base, params)
}

// withParams copies base and applies overrides; empty values delete.
func withParams(base url.Values, overrides map[string]string) string {
	v := url.Values{}
	for key, vals := range base {
		v[key] = append([]string(nil), vals...)
	}
	for key, val := range overrides {
		if val == "" {
			v.Del(key)
		} else {
			v.Set(key, val)
		}
	}
	return "?" + v.Encode()
}
