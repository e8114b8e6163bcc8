package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"evadmin/backend/libs/format"
	"evadmin/backend/services/admin-service/internal/http/middleware"
	"evadmin/backend/services/admin-service/internal/settings"
)

// SettingsHandlers serves the current admin's preferences.
type SettingsHandlers struct {
	store  settings.Store
	logger *zap.Logger
}

// NewSettingsHandlers returns handlers over store.
func NewSettingsHandlers(store settings.Store, logger *zap.Logger) *SettingsHandlers {
	return &SettingsHandlers{store: store, logger: logger}
}

type languageBody struct {
	Language  string   `json:"language"`
	Supported []string `json:"supported,omitempty"`
}

// GetLanguage handles GET /api/settings/language.
func (h *SettingsHandlers) GetLanguage(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	lang, err := h.store.Language(r.Context(), claims.AdminID)
	if err != nil {
		h.logger.Error("read language failed", zap.String("admin_id", claims.AdminID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to read settings")
		return
	}
	writeJSON(w, http.StatusOK, languageBody{Language: lang, Supported: format.Languages})
}

// SetLanguage handles PUT /api/settings/language.
func (h *SettingsHandlers) SetLanguage(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	var req languageBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.store.SetLanguage(r.Context(), claims.AdminID, req.Language); err != nil {
		if errors.Is(err, settings.ErrUnsupportedLanguage) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("write language failed", zap.String("admin_id", claims.AdminID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}
	writeJSON(w, http.StatusOK, languageBody{Language: req.Language})
}

// language resolves the display language of a request: an explicit lang
// parameter, then the admin's stored preference, then the default.
func (h *SettingsHandlers) language(r *http.Request) string {
	if lang := r.URL.Query().Get("lang"); format.SupportedLanguage(lang) {
		return lang
	}
	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
		if lang, err := h.store.Language(r.Context(), claims.AdminID); err == nil {
			return lang
		}
	}
	return format.DefaultLanguage
}
