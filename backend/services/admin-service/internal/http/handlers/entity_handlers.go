package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"evadmin/backend/services/admin-service/internal/catalog"
	"evadmin/backend/services/admin-service/internal/export"
	"evadmin/backend/services/admin-service/internal/provider"
)

// EntityHandlers serves the list, detail, status and export endpoints of
// every registered entity.
type EntityHandlers struct {
	registry *catalog.Registry
	logger   *zap.Logger
}

// NewEntityHandlers returns handlers over registry.
func NewEntityHandlers(registry *catalog.Registry, logger *zap.Logger) *EntityHandlers {
	return &EntityHandlers{registry: registry, logger: logger}
}

func (h *EntityHandlers) resource(w http.ResponseWriter, r *http.Request) (catalog.Resource, bool) {
	res, ok := h.registry.Lookup(chi.URLParam(r, "entity"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown entity")
	}
	return res, ok
}

// Entities handles GET /api/entities.
func (h *EntityHandlers) Entities(w http.ResponseWriter, r *http.Request) {
	type entry struct {
		Name  string `json:"name"`
		Title string `json:"title"`
	}
	out := make([]entry, 0)
	for _, name := range h.registry.Names() {
		res, _ := h.registry.Lookup(name)
		out = append(out, entry{Name: name, Title: res.Title()})
	}
	writeJSON(w, http.StatusOK, out)
}

// List handles GET /api/{entity}.
func (h *EntityHandlers) List(w http.ResponseWriter, r *http.Request) {
	res, ok := h.resource(w, r)
	if !ok {
		return
	}
	page, err := res.List(r.Context(), parseQuery(r))
	if err != nil {
		h.logger.Error("list failed", zap.String("entity", res.Name()), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load list")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Schema handles GET /api/{entity}/schema.
func (h *EntityHandlers) Schema(w http.ResponseWriter, r *http.Request) {
	res, ok := h.resource(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, res.Info())
}

// Get handles GET /api/{entity}/{id}.
func (h *EntityHandlers) Get(w http.ResponseWriter, r *http.Request) {
	res, ok := h.resource(w, r)
	if !ok {
		return
	}
	item, err := res.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeActionError(w, res, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// SetStatus handles POST /api/{entity}/{id}/status.
func (h *EntityHandlers) SetStatus(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Status string `json:"status"`
	}

	res, ok := h.resource(w, r)
	if !ok {
		return
	}
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Status = strings.TrimSpace(req.Status)
	if req.Status == "" {
		writeError(w, http.StatusBadRequest, "status is required")
		return
	}

	id := chi.URLParam(r, "id")
	item, err := res.Transition(r.Context(), id, req.Status)
	if err != nil {
		h.writeActionError(w, res, err)
		return
	}
	h.logger.Info("status changed",
		zap.String("entity", res.Name()),
		zap.String("id", id),
		zap.String("status", req.Status),
	)
	writeJSON(w, http.StatusOK, item)
}

func (h *EntityHandlers) writeActionError(w http.ResponseWriter, res catalog.Resource, err error) {
	switch {
	case errors.Is(err, provider.ErrNotFound):
		writeError(w, http.StatusNotFound, "record not found")
	case errors.Is(err, catalog.ErrUnknownStatus):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, catalog.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error("entity action failed", zap.String("entity", res.Name()), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// Export handles GET /api/{entity}/export.
func (h *EntityHandlers) Export(w http.ResponseWriter, r *http.Request) {
	res, ok := h.resource(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	n, err := export.Write(r.Context(), &buf, res, parseQuery(r))
	if err != nil {
		h.logger.Error("export failed", zap.String("entity", res.Name()), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to export")
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(res.Name())+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
	h.logger.Info("export written", zap.String("entity", res.Name()), zap.Int("rows", n))
}
