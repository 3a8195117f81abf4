package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/balcaohq/platform/internal/middleware"
	"github.com/balcaohq/platform/internal/model"
	"github.com/balcaohq/platform/internal/service"
	"github.com/balcaohq/platform/pkg/logger"
)

// WelcomeHandler handles welcome message endpoints.
type WelcomeHandler struct {
	service *service.WelcomeService
	logger  *logger.Logger
}

// NewWelcomeHandler creates a new welcome message handler.
func NewWelcomeHandler(svc *service.WelcomeService, log *logger.Logger) *WelcomeHandler {
	return &WelcomeHandler{service: svc, logger: log}
}

// Create handles POST /api/v1/welcome-messages
func (h *WelcomeHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetActorID(ctx)

	var req model.WelcomeMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Template == "" {
		writeError(w, http.StatusBadRequest, "template cannot be empty")
		return
	}

	msg, err := h.service.Create(ctx, actor, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, msg)
}

// List handles GET /api/v1/welcome-messages
func (h *WelcomeHandler) List(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.service.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

// Update handles PUT /api/v1/welcome-messages/{id}
func (h *WelcomeHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetActorID(ctx)
	id := chi.URLParam(r, "id")

	var req model.WelcomeMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	msg, err := h.service.Update(ctx, actor, id, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, msg)
}

// Delete handles DELETE /api/v1/welcome-messages/{id}
func (h *WelcomeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetActorID(ctx)
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(ctx, actor, id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Greeting handles GET /api/v1/welcome-messages/greeting?team_id=&name=
func (h *WelcomeHandler) Greeting(w http.ResponseWriter, r *http.Request) {
	var teamID *string
	if t := r.URL.Query().Get("team_id"); t != "" {
		teamID = &t
	}
	name := r.URL.Query().Get("name")

	greeting, err := h.service.Greeting(r.Context(), teamID, name, time.Now())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"greeting": greeting})
}
