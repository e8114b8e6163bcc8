package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"evadmin/backend/services/admin-service/internal/http/handlers"
)

// RouterDeps collects handler dependencies.
type RouterDeps struct {
	Health    http.HandlerFunc
	Login     http.HandlerFunc
	Dashboard http.HandlerFunc
	Entities  *handlers.EntityHandlers
	Settings  *handlers.SettingsHandlers
	Pages     *handlers.PageHandlers
	Live      http.HandlerFunc
}

// NewRouter wires every route. auth guards the JSON API; queryAuth also
// accepts ?token= and guards the WebSocket and HTML pages.
func NewRouter(deps RouterDeps, auth, queryAuth func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", deps.Health)
	r.Post("/api/auth/login", deps.Login)

	r.Group(func(r chi.Router) {
		r.Use(queryAuth)
		r.Get("/api/live/{entity}", deps.Live)
		r.Get("/admin/{entity}", deps.Pages.List)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(auth)
		r.Get("/dashboard", deps.Dashboard)
		r.Get("/entities", deps.Entities.Entities)
		r.Get("/settings/language", deps.Settings.GetLanguage)
		r.Put("/settings/language", deps.Settings.SetLanguage)

		r.Get("/{entity}", deps.Entities.List)
		r.Get("/{entity}/schema", deps.Entities.Schema)
		r.Get("/{entity}/export", deps.Entities.Export)
		r.Get("/{entity}/{id}", deps.Entities.Get)
		r.Post("/{entity}/{id}/status", deps.Entities.SetStatus)
	})

	return r
}
