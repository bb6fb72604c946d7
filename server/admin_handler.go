package server

import (
	"net/http"

	"sonique/cache"
	"sonique/logger"
)

// AdminDashboardHandler returns the platform dashboard, serving a cached
// snapshot when one is fresh enough. Admin only.
func (h *APIHandler) AdminDashboardHandler(w http.ResponseWriter, r *http.Request) {
	var cached map[string]interface{}
	if ok, err := cache.GetJSON(r.Context(), cache.AdminDashboardKey, &cached); err != nil {
		logger.Warn("dashboard cache read", logger.ErrorField(err))
	} else if ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	dashboard, err := h.stats.AdminDashboard(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if err := cache.SetJSON(r.Context(), cache.AdminDashboardKey, dashboard, h.cfg.DashboardCacheTTL); err != nil {
		logger.Warn("dashboard cache write", logger.ErrorField(err))
	}
	writeJSON(w, http.StatusOK, dashboard)
}
