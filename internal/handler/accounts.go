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

// AccountHandler handles support account administration. All routes behind
// it require admin access; the router enforces that.
type AccountHandler struct {
	service     *service.AccountService
	emailDomain string
	logger      *logger.Logger
}

// NewAccountHandler creates a new account handler.
func NewAccountHandler(svc *service.AccountService, emailDomain string, log *logger.Logger) *AccountHandler {
	return &AccountHandler{
		service:     svc,
		emailDomain: emailDomain,
		logger:      log,
	}
}

// Create handles POST /api/v1/accounts
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetActorID(ctx)

	var req model.AccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateEmailDomain(req.Email, h.emailDomain); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidateAccessLevel(req.AccessLevel); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	account, err := h.service.Create(ctx, actor, &req)
	if err != nil {
		h.logger.Error("failed to create account", zap.Error(err))
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, account)
}

// List handles GET /api/v1/accounts
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.service.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

// Get handles GET /api/v1/accounts/{id}
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	account, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

// Update handles PUT /api/v1/accounts/{id}
func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetActorID(ctx)
	id := chi.URLParam(r, "id")

	var req model.AccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := middleware.ValidateEmailDomain(req.Email, h.emailDomain); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidateAccessLevel(req.AccessLevel); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	account, err := h.service.Update(ctx, actor, id, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, account)
}

// Delete handles DELETE /api/v1/accounts/{id}
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetActorID(ctx)
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(ctx, actor, id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AuditLog handles GET /api/v1/accounts/audit?account_id=
func (h *AccountHandler) AuditLog(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.AuditLog(r.Context(), r.URL.Query().Get("account_id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
