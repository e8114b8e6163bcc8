package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"evadmin/backend/libs/listview"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// filterPrefix marks query parameters that name a list filter.
const filterPrefix = "f."

// parseQuery reads q, f.<name>, sort, dir, page and size.
func parseQuery(r *http.Request) listview.Query {
	values := r.URL.Query()
	q := listview.Query{Filter: listview.Filter{}}

	if v := values.Get("q"); v != "" {
		q.Filter["q"] = v
	}
	for key, vals := range values {
		if name, ok := strings.CutPrefix(key, filterPrefix); ok && name != "" && len(vals) > 0 {
			q.Filter[name] = vals[0]
		}
	}

	if field := values.Get("sort"); field != "" {
		dir := listview.ParseDirection(values.Get("dir"))
		if values.Get("dir") == "" {
			dir = listview.Asc
		}
		q.Sort = listview.Sort{Field: field, Direction: dir}
	}

	q.Page, _ = strconv.Atoi(values.Get("page"))
	q.PageSize, _ = strconv.Atoi(values.Get("size"))
	return q.Normalize()
}
