package handler

import (
	"net/http"

	"github.com/balcaohq/platform/internal/realtime"
	"github.com/balcaohq/platform/internal/store"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	rt *realtime.Client
	db *store.DB
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(rt *realtime.Client, db *store.DB) *HealthHandler {
	return &HealthHandler{
		rt: rt,
		db: db,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.rt == nil || !h.rt.IsConnected() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "realtime feed not connected",
		})
		return
	}

	if err := h.db.PingContext(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "database unreachable",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}
