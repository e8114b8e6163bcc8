package catalog

import (
	"time"

	"evadmin/backend/libs/format"
	"evadmin/backend/libs/render"
)

func textCol[R any](key, title string, fn func(R) string) Column[R] {
	return Column[R]{
		Key:   key,
		Title: title,
		Cell:  func(r R, _ string) render.Node { return render.Text(fn(r)) },
		Value: func(r R) any { return fn(r) },
	}
}

func statusCol[R any](fn func(R) string) Column[R] {
	return Column[R]{
		Key:   "status",
		Title: "Status",
		Cell: func(r R, lang string) render.Node {
			s := fn(r)
			return render.Badge(s, format.StatusLabel(s, lang))
		},
		Value: func(r R) any { return fn(r) },
	}
}

func numberCol[R any](key, title string, fn func(R) float64, show func(float64) string) Column[R] {
	return Column[R]{
		Key:   key,
		Title: title,
		Cell:  func(r R, _ string) render.Node { return render.Text(show(fn(r))) },
		Value: func(r R) any { return fn(r) },
	}
}

func intCol[R any](key, title string, fn func(R) int) Column[R] {
	return Column[R]{
		Key:   key,
		Title: title,
		Cell:  func(r R, _ string) render.Node { return render.Text(format.Number(fn(r))) },
		Value: func(r R) any { return fn(r) },
	}
}

func timeCol[R any](key, title string, fn func(R) time.Time) Column[R] {
	return Column[R]{
		Key:   key,
		Title: title,
		Cell:  func(r R, _ string) render.Node { return render.Text(format.DateTime(fn(r))) },
		Value: func(r R) any { return format.DateTime(fn(r)) },
	}
}

// relativeCol shows time since fn(r) relative to the render clock.
func relativeCol[R any](key, title string, fn func(R) time.Time, now func() time.Time) Column[R] {
	return Column[R]{
		Key:   key,
		Title: title,
		Cell: func(r R, lang string) render.Node {
			return render.Text(format.Relative(fn(r), now(), lang))
		},
		Value: func(r R) any { return format.DateTime(fn(r)) },
	}
}
