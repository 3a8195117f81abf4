// Package handler provides HTTP handlers for the API.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/balcaohq/platform/internal/middleware"
	"github.com/balcaohq/platform/internal/model"
	"github.com/balcaohq/platform/internal/service"
	"github.com/balcaohq/platform/pkg/logger"
)

// ConversationHandler handles conversation endpoints.
type ConversationHandler struct {
	service  *service.ConversationService
	transfer *service.TransferService
	tags     *service.TagService
	logger   *logger.Logger
}

// NewConversationHandler creates a new conversation handler.
func NewConversationHandler(
	svc *service.ConversationService,
	transferSvc *service.TransferService,
	tagSvc *service.TagService,
	log *logger.Logger,
) *ConversationHandler {
	return &ConversationHandler{
		service:  svc,
		transfer: transferSvc,
		tags:     tagSvc,
		logger:   log,
	}
}

// Create handles POST /api/v1/conversations
func (h *ConversationHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetActorID(ctx)

	var req model.CreateConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateSubject(req.Subject); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	conv, err := h.service.Create(ctx, actor, &req)
	if err != nil {
		h.logger.Error("failed to create conversation", zap.Error(err))
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, conv)
}

// List handles GET /api/v1/conversations
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := model.ConversationStatus(r.URL.Query().Get("status"))

	resp, err := h.service.List(ctx, status)
	if err != nil {
		h.logger.Error("failed to list conversations", zap.Error(err))
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /api/v1/conversations/{id}
func (h *ConversationHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conversationID := chi.URLParam(r, "id")

	conv, err := h.service.Get(ctx, conversationID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, conv)
}

// Update handles PATCH /api/v1/conversations/{id}
func (h *ConversationHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetActorID(ctx)
	conversationID := chi.URLParam(r, "id")

	var req model.UpdateConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	conv, err := h.service.Update(ctx, actor, conversationID, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, conv)
}

// Transfer handles POST /api/v1/conversations/{id}/transfer
func (h *ConversationHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetActorID(ctx)
	conversationID := chi.URLParam(r, "id")

	var req model.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	transfer, err := h.transfer.Transfer(ctx, actor, conversationID, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, transfer)
}

// TransferHistory handles GET /api/v1/conversations/{id}/transfers
func (h *ConversationHandler) TransferHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conversationID := chi.URLParam(r, "id")

	history, err := h.transfer.History(ctx, conversationID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, history)
}

// AttachTag handles PUT /api/v1/conversations/{id}/tags/{tagID}
func (h *ConversationHandler) AttachTag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetActorID(ctx)
	conversationID := chi.URLParam(r, "id")
	tagID := chi.URLParam(r, "tagID")

	if err := h.tags.Attach(ctx, actor, conversationID, tagID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DetachTag handles DELETE /api/v1/conversations/{id}/tags/{tagID}
func (h *ConversationHandler) DetachTag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetActorID(ctx)
	conversationID := chi.URLParam(r, "id")
	tagID := chi.URLParam(r, "tagID")

	if err := h.tags.Detach(ctx, actor, conversationID, tagID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListTags handles GET /api/v1/conversations/{id}/tags
func (h *ConversationHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conversationID := chi.URLParam(r, "id")

	tags, err := h.tags.ForConversation(ctx, conversationID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tags)
}
