package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/balcaohq/platform/internal/model"
	"github.com/balcaohq/platform/internal/realtime"
	"github.com/balcaohq/platform/internal/store"
	"github.com/balcaohq/platform/pkg/logger"
)

// Change-feed table names for the business dataset. Business rows are
// scoped to their owner so each user only streams their own changes.
const (
	TableProducts = "products"
	TableClients  = "clients"
	TableSales    = "sales"
	TableExpenses = "expenses"
	TableCashFlow = "cash_flow_entries"
	TablePix      = "pix_charges"
	TableNotas    = "notas_fiscais"
)

// BusinessService covers the owner-scoped business dataset: inventory,
// clients, sales, expenses, cash flow, Pix charges, invoices and profile.
type BusinessService struct {
	db     *store.DB
	feed   realtime.Publisher
	logger *logger.Logger
}

// NewBusinessService creates a new business service.
func NewBusinessService(db *store.DB, feed realtime.Publisher, log *logger.Logger) *BusinessService {
	return &BusinessService{
		db:     db,
		feed:   feed,
		logger: log,
	}
}

// --- Products ---

// CreateProduct adds an inventory item for the actor.
func (s *BusinessService) CreateProduct(ctx context.Context, actor string, req *model.ProductRequest) (*model.Product, error) {
	if actor == "" {
		return nil, ErrNotAuthenticated
	}

	now := time.Now().UTC()
	p := &model.Product{
		ID:        uuid.Must(uuid.NewV7()).String(),
		OwnerID:   actor,
		Name:      req.Name,
		Category:  req.Category,
		Barcode:   req.Barcode,
		CostPrice: req.CostPrice,
		SalePrice: req.SalePrice,
		Stock:     req.Stock,
		MinStock:  req.MinStock,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.db.InsertProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	s.publish(ctx, TableProducts, realtime.EventInsert, actor, p)
	return p, nil
}

// GetProduct retrieves one of the actor's products.
func (s *BusinessService) GetProduct(ctx context.Context, actor, id string) (*model.Product, error) {
	return s.db.GetProduct(ctx, actor, id)
}

// ListProducts lists the actor's inventory.
func (s *BusinessService) ListProducts(ctx context.Context, actor string) ([]model.Product, error) {
	return s.db.ListProducts(ctx, actor)
}

// UpdateProduct modifies one of the actor's products.
func (s *BusinessService) UpdateProduct(ctx context.Context, actor, id string, req *model.ProductRequest) (*model.Product, error) {
	if actor == "" {
		return nil, ErrNotAuthenticated
	}
	p, err := s.db.UpdateProduct(ctx, actor, id, req)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, TableProducts, realtime.EventUpdate, actor, p)
	return p, nil
}

// DeleteProduct removes one of the actor's products.
func (s *BusinessService) DeleteProduct(ctx context.Context, actor, id string) error {
	if actor == "" {
		return ErrNotAuthenticated
	}
	if err := s.db.DeleteProduct(ctx, actor, id); err != nil {
		return err
	}
	s.publish(ctx, TableProducts, realtime.EventDelete, actor, map[string]string{"id": id})
	return nil
}

// --- Clients ---

// CreateClient adds a customer to the actor's ledger.
func (s *BusinessService) CreateClient(ctx context.Context, actor string, req *model.ClientRequest) (*model.Client, error) {
	if actor == "" {
		return nil, ErrNotAuthenticated
	}

	now := time.Now().UTC()
	c := &model.Client{
		ID:        uuid.Must(uuid.NewV7()).String(),
		OwnerID:   actor,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Document:  req.Document,
		Address:   req.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.db.InsertClient(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	s.publish(ctx, TableClients, realtime.EventInsert, actor, c)
	return c, nil
}

// GetClient retrieves one of the actor's clients.
func (s *BusinessService) GetClient(ctx context.Context, actor, id string) (*model.Client, error) {
	return s.db.GetClient(ctx, actor, id)
}

// ListClients lists the actor's clients.
func (s *BusinessService) ListClients(ctx context.Context, actor string) ([]model.Client, error) {
	return s.db.ListClients(ctx, actor)
}

// UpdateClient modifies one of the actor's clients.
func (s *BusinessService) UpdateClient(ctx context.Context, actor, id string, req *model.ClientRequest) (*model.Client, error) {
	if actor == "" {
		return nil, ErrNotAuthenticated
	}
	c, err := s.db.UpdateClient(ctx, actor, id, req)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, TableClients, realtime.EventUpdate, actor, c)
	return c, nil
}

// DeleteClient removes one of the actor's clients.
func (s *BusinessService) DeleteClient(ctx context.Context, actor, id string) error {
	if actor == "" {
		return ErrNotAuthenticated
	}
	if err := s.db.DeleteClient(ctx, actor, id); err != nil {
		return err
	}
	s.publish(ctx, TableClients, realtime.EventDelete, actor, map[string]string{"id": id})
	return nil
}

// --- Sales ---

// CreateSale registers a point-of-sale transaction. The total is computed
// from the line items minus the discount; stock is decremented atomically
// with the sale and the whole write fails on insufficient stock.
func (s *BusinessService) CreateSale(ctx context.Context, actor string, req *model.SaleRequest) (*model.Sale, error) {
	if actor == "" {
		return nil, ErrNotAuthenticated
	}

	sale := &model.Sale{
		ID:            uuid.Must(uuid.NewV7()).String(),
		OwnerID:       actor,
		ClientID:      req.ClientID,
		Discount:      req.Discount,
		PaymentMethod: req.PaymentMethod,
		CreatedAt:     time.Now().UTC(),
	}
	for _, item := range req.Items {
		sale.Items = append(sale.Items, model.SaleItem{
			ID:        uuid.Must(uuid.NewV7()).String(),
			SaleID:    sale.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
		sale.Total += float64(item.Quantity) * item.UnitPrice
	}
	sale.Total -= req.Discount

	if err := s.db.InsertSale(ctx, sale); err != nil {
		return nil, err
	}

	s.publish(ctx, TableSales, realtime.EventInsert, actor, sale)
	s.logger.Info("sale registered",
		zap.String("sale_id", sale.ID),
		zap.Float64("total", sale.Total),
	)
	return sale, nil
}

// GetSale retrieves one of the actor's sales with its items.
func (s *BusinessService) GetSale(ctx context.Context, actor, id string) (*model.Sale, error) {
	return s.db.GetSale(ctx, actor, id)
}

// ListSales lists the actor's sales.
func (s *BusinessService) ListSales(ctx context.Context, actor string) ([]model.Sale, error) {
	return s.db.ListSales(ctx, actor)
}

// --- Expenses and cash flow ---

// CreateExpense records an expense for the actor.
func (s *BusinessService) CreateExpense(ctx context.Context, actor string, req *model.ExpenseRequest) (*model.Expense, error) {
	if actor == "" {
		return nil, ErrNotAuthenticated
	}

	now := time.Now().UTC()
	paidAt := now
	if req.PaidAt != nil {
		paidAt = req.PaidAt.UTC()
	}
	e := &model.Expense{
		ID:          uuid.Must(uuid.NewV7()).String(),
		OwnerID:     actor,
		Description: req.Description,
		Category:    req.Category,
		Amount:      req.Amount,
		PaidAt:      paidAt,
		CreatedAt:   now,
	}

	if err := s.db.InsertExpense(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to record expense: %w", err)
	}
	s.publish(ctx, TableExpenses, realtime.EventInsert, actor, e)
	return e, nil
}

// ListExpenses lists the actor's expenses.
func (s *BusinessService) ListExpenses(ctx context.Context, actor string) ([]model.Expense, error) {
	return s.db.ListExpenses(ctx, actor)
}

// DeleteExpense removes one of the actor's expenses.
func (s *BusinessService) DeleteExpense(ctx context.Context, actor, id string) error {
	if actor == "" {
		return ErrNotAuthenticated
	}
	if err := s.db.DeleteExpense(ctx, actor, id); err != nil {
		return err
	}
	s.publish(ctx, TableExpenses, realtime.EventDelete, actor, map[string]string{"id": id})
	return nil
}

// RecordCashFlow appends a movement to the actor's cash ledger.
func (s *BusinessService) RecordCashFlow(ctx context.Context, actor string, req *model.CashFlowRequest) (*model.CashFlowEntry, error) {
	if actor == "" {
		return nil, ErrNotAuthenticated
	}

	e := &model.CashFlowEntry{
		ID:          uuid.Must(uuid.NewV7()).String(),
		OwnerID:     actor,
		Direction:   req.Direction,
		Description: req.Description,
		Amount:      req.Amount,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.db.InsertCashFlowEntry(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to record cash flow: %w", err)
	}
	s.publish(ctx, TableCashFlow, realtime.EventInsert, actor, e)
	return e, nil
}

// ListCashFlow lists the actor's cash ledger.
func (s *BusinessService) ListCashFlow(ctx context.Context, actor string) ([]model.CashFlowEntry, error) {
	return s.db.ListCashFlowEntries(ctx, actor)
}

// --- Pix charges ---

// CreatePixCharge issues a pending Pix charge.
func (s *BusinessService) CreatePixCharge(ctx context.Context, actor string, req *model.PixChargeRequest) (*model.PixCharge, error) {
	if actor == "" {
		return nil, ErrNotAuthenticated
	}

	now := time.Now().UTC()
	expires := now.Add(30 * time.Minute)
	p := &model.PixCharge{
		ID:        uuid.Must(uuid.NewV7()).String(),
		OwnerID:   actor,
		ClientID:  req.ClientID,
		Amount:    req.Amount,
		Status:    model.PixPending,
		TxID:      uuid.New().String(),
		ExpiresAt: &expires,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.db.InsertPixCharge(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create pix charge: %w", err)
	}
	s.publish(ctx, TablePix, realtime.EventInsert, actor, p)
	return p, nil
}

// SetPixChargeStatus moves a Pix charge through its lifecycle.
func (s *BusinessService) SetPixChargeStatus(ctx context.Context, actor, id string, status model.PixChargeStatus) error {
	if actor == "" {
		return ErrNotAuthenticated
	}
	if err := s.db.UpdatePixChargeStatus(ctx, actor, id, status); err != nil {
		return err
	}
	s.publish(ctx, TablePix, realtime.EventUpdate, actor, map[string]string{"id": id, "status": string(status)})
	return nil
}

// ListPixCharges lists the actor's Pix charges.
func (s *BusinessService) ListPixCharges(ctx context.Context, actor string) ([]model.PixCharge, error) {
	return s.db.ListPixCharges(ctx, actor)
}

// --- Notas fiscais ---

// CreateNotaFiscal registers an invoice with its line items; the total is
// computed from the items.
func (s *BusinessService) CreateNotaFiscal(ctx context.Context, actor string, req *model.NotaFiscalRequest) (*model.NotaFiscal, error) {
	if actor == "" {
		return nil, ErrNotAuthenticated
	}

	now := time.Now().UTC()
	issuedAt := now
	if req.IssuedAt != nil {
		issuedAt = req.IssuedAt.UTC()
	}
	nota := &model.NotaFiscal{
		ID:        uuid.Must(uuid.NewV7()).String(),
		OwnerID:   actor,
		Number:    req.Number,
		ClientID:  req.ClientID,
		IssuedAt:  issuedAt,
		CreatedAt: now,
	}
	for _, item := range req.Items {
		nota.Items = append(nota.Items, model.NotaFiscalItem{
			ID:        uuid.Must(uuid.NewV7()).String(),
			NotaID:    nota.ID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Category:  item.Category,
		})
		nota.Total += item.Quantity * item.UnitPrice
	}

	if err := s.db.InsertNotaFiscal(ctx, nota); err != nil {
		return nil, fmt.Errorf("failed to create nota fiscal: %w", err)
	}
	s.publish(ctx, TableNotas, realtime.EventInsert, actor, nota)
	return nota, nil
}

// GetNotaFiscal retrieves one of the actor's invoices with its items.
func (s *BusinessService) GetNotaFiscal(ctx context.Context, actor, id string) (*model.NotaFiscal, error) {
	return s.db.GetNotaFiscal(ctx, actor, id)
}

// ListNotasFiscais lists the actor's invoices.
func (s *BusinessService) ListNotasFiscais(ctx context.Context, actor string) ([]model.NotaFiscal, error) {
	return s.db.ListNotasFiscais(ctx, actor)
}

// --- Profile ---

// SaveProfile creates or replaces the actor's business profile.
func (s *BusinessService) SaveProfile(ctx context.Context, actor string, req *model.ProfileRequest) (*model.Profile, error) {
	if actor == "" {
		return nil, ErrNotAuthenticated
	}

	p := &model.Profile{
		UserID:       actor,
		BusinessName: req.BusinessName,
		OwnerName:    req.OwnerName,
		Phone:        req.Phone,
		Document:     req.Document,
		UpdatedAt:    time.Now().UTC(),
	}
	if err := s.db.UpsertProfile(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}
	return p, nil
}

// GetProfile retrieves the actor's business profile.
func (s *BusinessService) GetProfile(ctx context.Context, actor string) (*model.Profile, error) {
	return s.db.GetProfile(ctx, actor)
}

func (s *BusinessService) publish(ctx context.Context, table string, eventType realtime.EventType, owner string, row any) {
	evt, err := realtime.NewChangeEvent(table, eventType, owner, row)
	if err != nil {
		return
	}
	if err := s.feed.PublishChange(ctx, evt); err != nil {
		s.logger.Warn("failed to publish change",
			zap.String("table", table), zap.Error(err))
	}
}
