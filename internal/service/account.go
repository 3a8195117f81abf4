package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/balcaohq/platform/internal/model"
	"github.com/balcaohq/platform/internal/store"
	"github.com/balcaohq/platform/pkg/logger"
	"github.com/balcaohq/platform/pkg/metrics"
)

// AccountService manages support accounts. Every mutation is accompanied by
// an advisory audit entry: audit failures are logged and counted but never
// block the mutation itself.
type AccountService struct {
	db     *store.DB
	logger *logger.Logger
}

// NewAccountService creates a new account service.
func NewAccountService(db *store.DB, log *logger.Logger) *AccountService {
	return &AccountService{db: db, logger: log}
}

// Create provisions a support account. The audit entry is written first,
// against the sentinel account id, since the row does not yet exist.
func (s *AccountService) Create(ctx context.Context, actor string, req *model.AccountRequest) (*model.SupportAccount, error) {
	if actor == "" {
		return nil, ErrNotAuthenticated
	}

	now := time.Now().UTC()
	account := &model.SupportAccount{
		ID:          uuid.Must(uuid.NewV7()).String(),
		UserID:      req.UserID,
		Email:       req.Email,
		AccessLevel: req.AccessLevel,
		Active:      req.Active,
		ChatLinked:  req.ChatLinked,
		CreatedBy:   actor,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.writeAudit(ctx, model.SentinelAccountID, model.AuditCreate, actor, nil, account)

	if err := s.db.InsertAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return account, nil
}

// Get retrieves a support account.
func (s *AccountService) Get(ctx context.Context, id string) (*model.SupportAccount, error) {
	return s.db.GetAccount(ctx, id)
}

// List returns all support accounts.
func (s *AccountService) List(ctx context.Context) ([]model.SupportAccount, error) {
	return s.db.ListAccounts(ctx)
}

// Update modifies a support account, auditing the before/after snapshots.
func (s *AccountService) Update(ctx context.Context, actor, id string, req *model.AccountRequest) (*model.SupportAccount, error) {
	if actor == "" {
		return nil, ErrNotAuthenticated
	}

	old, err := s.db.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.db.UpdateAccount(ctx, id, req)
	if err != nil {
		return nil, err
	}

	s.writeAudit(ctx, id, model.AuditUpdate, actor, old, updated)
	return updated, nil
}

// Delete removes a support account. The audit entry is written before the
// delete so the final snapshot survives the row.
func (s *AccountService) Delete(ctx context.Context, actor, id string) error {
	if actor == "" {
		return ErrNotAuthenticated
	}

	old, err := s.db.GetAccount(ctx, id)
	if err != nil {
		return err
	}

	s.writeAudit(ctx, id, model.AuditDelete, actor, old, nil)

	return s.db.DeleteAccount(ctx, id)
}

// AuditLog lists audit entries, optionally filtered by account id.
func (s *AccountService) AuditLog(ctx context.Context, accountID string) ([]model.AuditEntry, error) {
	return s.db.ListAuditEntries(ctx, accountID)
}

func (s *AccountService) writeAudit(ctx context.Context, accountID string, action model.AuditAction, actor string, old, updated *model.SupportAccount) {
	entry := &model.AuditEntry{
		ID:        uuid.Must(uuid.NewV7()).String(),
		AccountID: accountID,
		Action:    action,
		ActorID:   actor,
		CreatedAt: time.Now().UTC(),
	}
	if old != nil {
		entry.OldValue, _ = json.Marshal(old)
	}
	if updated != nil {
		entry.NewValue, _ = json.Marshal(updated)
	}

	if err := s.db.InsertAuditEntry(ctx, entry); err != nil {
		metrics.AuditWriteFailures.Inc()
		s.logger.Warn("audit write failed",
			zap.String("account_id", accountID),
			zap.String("action", string(action)),
			zap.Error(err),
		)
	}
}
