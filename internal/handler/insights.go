package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/balcaohq/platform/internal/service"
	"github.com/balcaohq/platform/pkg/logger"
)

// InsightsHandler serves the aggregated support statistics.
type InsightsHandler struct {
	service *service.InsightsService
	logger  *logger.Logger
}

// NewInsightsHandler creates a new insights handler.
func NewInsightsHandler(svc *service.InsightsService, log *logger.Logger) *InsightsHandler {
	return &InsightsHandler{service: svc, logger: log}
}

// Get handles GET /api/v1/insights
func (h *InsightsHandler) Get(w http.ResponseWriter, r *http.Request) {
	insights, err := h.service.Compute(r.Context())
	if err != nil {
		h.logger.Error("failed to compute insights", zap.Error(err))
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, insights)
}
