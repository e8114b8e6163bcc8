package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"evadmin/backend/services/admin-service/internal/dashboard"
)

// NewDashboardHandler handles GET /api/dashboard.
func NewDashboardHandler(svc *dashboard.Service, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := svc.Summary(r.Context())
		if err != nil {
			logger.Error("dashboard summary failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to load dashboard")
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}
