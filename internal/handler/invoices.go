package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/balcaohq/platform/internal/middleware"
	"github.com/balcaohq/platform/internal/service"
	"github.com/balcaohq/platform/pkg/logger"
)

// InvoiceHandler handles invoice document extraction.
type InvoiceHandler struct {
	service *service.ExtractionService
	logger  *logger.Logger
}

// NewInvoiceHandler creates a new invoice handler.
func NewInvoiceHandler(svc *service.ExtractionService, log *logger.Logger) *InvoiceHandler {
	return &InvoiceHandler{service: svc, logger: log}
}

// Extract handles POST /api/v1/invoices/extract
//
// The body carries the document base64-encoded with its file type; the
// response is the extracted line items, ready to prefill a nota fiscal.
func (h *InvoiceHandler) Extract(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetActorID(ctx)

	var req service.ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Data == "" {
		writeError(w, http.StatusBadRequest, "data cannot be empty")
		return
	}

	items, err := h.service.Extract(ctx, actor, &req)
	if err != nil {
		h.logger.Error("invoice extraction failed", zap.Error(err))
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"line_items": items,
	})
}
