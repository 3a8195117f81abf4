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

// BusinessHandler handles the owner-scoped business endpoints: inventory,
// clients, sales, expenses, cash flow, Pix charges, invoices and profile.
type BusinessHandler struct {
	service *service.BusinessService
	logger  *logger.Logger
}

// NewBusinessHandler creates a new business handler.
func NewBusinessHandler(svc *service.BusinessService, log *logger.Logger) *BusinessHandler {
	return &BusinessHandler{service: svc, logger: log}
}

// --- Products ---

// CreateProduct handles POST /api/v1/products
func (h *BusinessHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetActorID(ctx)

	var req model.ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name cannot be empty")
		return
	}
	if err := middleware.ValidateNonNegative("sale_price", req.SalePrice); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidateNonNegative("stock", float64(req.Stock)); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.service.CreateProduct(ctx, actor, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, product)
}

// ListProducts handles GET /api/v1/products
func (h *BusinessHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context(), middleware.GetActorID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// GetProduct handles GET /api/v1/products/{id}
func (h *BusinessHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	product, err := h.service.GetProduct(ctx, middleware.GetActorID(ctx), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// UpdateProduct handles PUT /api/v1/products/{id}
func (h *BusinessHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetActorID(ctx)

	var req model.ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.service.UpdateProduct(ctx, actor, chi.URLParam(r, "id"), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// DeleteProduct handles DELETE /api/v1/products/{id}
func (h *BusinessHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.service.DeleteProduct(ctx, middleware.GetActorID(ctx), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Clients ---

// CreateClient handles POST /api/v1/clients
func (h *BusinessHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetActorID(ctx)

	var req model.ClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name cannot be empty")
		return
	}

	client, err := h.service.CreateClient(ctx, actor, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, client)
}

// ListClients handles GET /api/v1/clients
func (h *BusinessHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.service.ListClients(r.Context(), middleware.GetActorID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, clients)
}

// GetClient handles GET /api/v1/clients/{id}
func (h *BusinessHandler) GetClient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	client, err := h.service.GetClient(ctx, middleware.GetActorID(ctx), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, client)
}

// UpdateClient handles PUT /api/v1/clients/{id}
func (h *BusinessHandler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetActorID(ctx)

	var req model.ClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	client, err := h.service.UpdateClient(ctx, actor, chi.URLParam(r, "id"), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, client)
}

// DeleteClient handles DELETE /api/v1/clients/{id}
func (h *BusinessHandler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.service.DeleteClient(ctx, middleware.GetActorID(ctx), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Sales ---

// CreateSale handles POST /api/v1/sales
func (h *BusinessHandler) CreateSale(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetActorID(ctx)

	var req model.SaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "sale needs at least one item")
		return
	}
	for _, item := range req.Items {
		if err := middleware.ValidatePositive("quantity", float64(item.Quantity)); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	sale, err := h.service.CreateSale(ctx, actor, &req)
	if err != nil {
		h.logger.Error("failed to create sale", zap.Error(err))
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, sale)
}

// ListSales handles GET /api/v1/sales
func (h *BusinessHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	sales, err := h.service.ListSales(r.Context(), middleware.GetActorID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sales)
}

// GetSale handles GET /api/v1/sales/{id}
func (h *BusinessHandler) GetSale(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sale, err := h.service.GetSale(ctx, middleware.GetActorID(ctx), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sale)
}

// --- Expenses and cash flow ---

// CreateExpense handles POST /api/v1/expenses
func (h *BusinessHandler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetActorID(ctx)

	var req model.ExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := middleware.ValidatePositive("amount", req.Amount); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	expense, err := h.service.CreateExpense(ctx, actor, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, expense)
}

// ListExpenses handles GET /api/v1/expenses
func (h *BusinessHandler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.service.ListExpenses(r.Context(), middleware.GetActorID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, expenses)
}

// DeleteExpense handles DELETE /api/v1/expenses/{id}
func (h *BusinessHandler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.service.DeleteExpense(ctx, middleware.GetActorID(ctx), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecordCashFlow handles POST /api/v1/cash-flow
func (h *BusinessHandler) RecordCashFlow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetActorID(ctx)

	var req model.CashFlowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Direction != model.CashIn && req.Direction != model.CashOut {
		writeError(w, http.StatusBadRequest, "direction must be in or out")
		return
	}
	if err := middleware.ValidatePositive("amount", req.Amount); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := h.service.RecordCashFlow(ctx, actor, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, entry)
}

// ListCashFlow handles GET /api/v1/cash-flow
func (h *BusinessHandler) ListCashFlow(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.ListCashFlow(r.Context(), middleware.GetActorID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// --- Pix charges ---

// CreatePixCharge handles POST /api/v1/pix-charges
func (h *BusinessHandler) CreatePixCharge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetActorID(ctx)

	var req model.PixChargeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := middleware.ValidatePositive("amount", req.Amount); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	charge, err := h.service.CreatePixCharge(ctx, actor, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, charge)
}

// ListPixCharges handles GET /api/v1/pix-charges
func (h *BusinessHandler) ListPixCharges(w http.ResponseWriter, r *http.Request) {
	charges, err := h.service.ListPixCharges(r.Context(), middleware.GetActorID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, charges)
}

// SetPixChargeStatus handles PUT /api/v1/pix-charges/{id}/status
func (h *BusinessHandler) SetPixChargeStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetActorID(ctx)

	var req struct {
		Status model.PixChargeStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	switch req.Status {
	case model.PixPending, model.PixPaid, model.PixExpired, model.PixCanceled:
	default:
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}

	if err := h.service.SetPixChargeStatus(ctx, actor, chi.URLParam(r, "id"), req.Status); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Notas fiscais ---

// CreateNotaFiscal handles POST /api/v1/notas-fiscais
func (h *BusinessHandler) CreateNotaFiscal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetActorID(ctx)

	var req model.NotaFiscalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Number == "" {
		writeError(w, http.StatusBadRequest, "number cannot be empty")
		return
	}

	nota, err := h.service.CreateNotaFiscal(ctx, actor, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, nota)
}

// ListNotasFiscais handles GET /api/v1/notas-fiscais
func (h *BusinessHandler) ListNotasFiscais(w http.ResponseWriter, r *http.Request) {
	notas, err := h.service.ListNotasFiscais(r.Context(), middleware.GetActorID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, notas)
}

// GetNotaFiscal handles GET /api/v1/notas-fiscais/{id}
func (h *BusinessHandler) GetNotaFiscal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	nota, err := h.service.GetNotaFiscal(ctx, middleware.GetActorID(ctx), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nota)
}

// --- Profile ---

// GetProfile handles GET /api/v1/profile
func (h *BusinessHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.GetProfile(r.Context(), middleware.GetActorID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// SaveProfile handles PUT /api/v1/profile
func (h *BusinessHandler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetActorID(ctx)

	var req model.ProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.BusinessName == "" {
		writeError(w, http.StatusBadRequest, "business_name cannot be empty")
		return
	}

	profile, err := h.service.SaveProfile(ctx, actor, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}
