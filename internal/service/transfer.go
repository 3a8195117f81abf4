package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/balcaohq/platform/internal/model"
	"github.com/balcaohq/platform/internal/realtime"
	"github.com/balcaohq/platform/internal/store"
	"github.com/balcaohq/platform/pkg/logger"
	"github.com/balcaohq/platform/pkg/metrics"
)

// TableTransfers is the change-feed table name for chat transfers.
const TableTransfers = "chat_transfers"

// TransferService hands conversations between agents and teams.
type TransferService struct {
	db     *store.DB
	feed   realtime.Publisher
	logger *logger.Logger
}

// NewTransferService creates a new transfer service.
func NewTransferService(db *store.DB, feed realtime.Publisher, log *logger.Logger) *TransferService {
	return &TransferService{
		db:     db,
		feed:   feed,
		logger: log,
	}
}

// Transfer reassigns a conversation to another agent or team. Exactly one
// destination must be set; the transfer record and the conversation
// reassignment commit together or not at all.
func (s *TransferService) Transfer(ctx context.Context, actor, conversationID string, req *model.TransferRequest) (*model.ChatTransfer, error) {
	if actor == "" {
		return nil, ErrNotAuthenticated
	}

	if req.ToAgentID == nil && req.ToTeamID == nil {
		return nil, ErrNoTransferTarget
	}
	if req.ToAgentID != nil && req.ToTeamID != nil {
		return nil, ErrAmbiguousTransferTarget
	}

	transfer := &model.ChatTransfer{
		ID:             uuid.Must(uuid.NewV7()).String(),
		ConversationID: conversationID,
		FromAgentID:    actor,
		ToAgentID:      req.ToAgentID,
		ToTeamID:       req.ToTeamID,
		Reason:         req.Reason,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.db.TransferChat(ctx, transfer); err != nil {
		return nil, fmt.Errorf("failed to transfer conversation: %w", err)
	}

	destination := "agent"
	if req.ToTeamID != nil {
		destination = "team"
	}
	metrics.TransfersTotal.WithLabelValues(destination).Inc()

	if row, err := json.Marshal(transfer); err == nil {
		if err := s.feed.PublishChange(ctx, realtime.ChangeEvent{
			Table: TableTransfers,
			Type:  realtime.EventInsert,
			Scope: conversationID,
			Row:   row,
		}); err != nil {
			s.logger.Warn("failed to publish transfer",
				zap.String("conversation_id", conversationID), zap.Error(err))
		}
	}

	if conv, err := s.db.GetConversation(ctx, conversationID); err == nil {
		if row, err := json.Marshal(conv); err == nil {
			if err := s.feed.PublishChange(ctx, realtime.ChangeEvent{
				Table: TableConversations,
				Type:  realtime.EventUpdate,
				Row:   row,
			}); err != nil {
				s.logger.Warn("failed to publish conversation update",
					zap.String("conversation_id", conversationID), zap.Error(err))
			}
		}
	}

	s.logger.Info("conversation transferred",
		zap.String("conversation_id", conversationID),
		zap.String("from_agent_id", actor),
	)

	return transfer, nil
}

// History lists the transfer records of a conversation, oldest first.
func (s *TransferService) History(ctx context.Context, conversationID string) ([]model.ChatTransfer, error) {
	return s.db.ListTransfers(ctx, conversationID)
}
