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

// TableConversations is the change-feed table name for conversations.
// The conversations feed is global: events use an empty scope.
const TableConversations = "conversations"

// ConversationService handles conversation operations.
type ConversationService struct {
	db     *store.DB
	feed   realtime.Publisher
	logger *logger.Logger
}

// NewConversationService creates a new conversation service.
func NewConversationService(db *store.DB, feed realtime.Publisher, log *logger.Logger) *ConversationService {
	return &ConversationService{
		db:     db,
		feed:   feed,
		logger: log,
	}
}

// Create opens a new conversation on behalf of the requester.
func (s *ConversationService) Create(ctx context.Context, actor string, req *model.CreateConversationRequest) (*model.Conversation, error) {
	if actor == "" {
		return nil, ErrNotAuthenticated
	}

	now := time.Now().UTC()
	priority := req.Priority
	if priority == "" {
		priority = model.PriorityNormal
	}

	conv := &model.Conversation{
		ID:          uuid.Must(uuid.NewV7()).String(),
		RequesterID: actor,
		Subject:     req.Subject,
		Status:      model.StatusOpen,
		Priority:    priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.db.InsertConversation(ctx, conv); err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	s.publish(ctx, realtime.EventInsert, conv)
	metrics.ConversationsTotal.WithLabelValues(string(conv.Status)).Inc()

	s.logger.Info("conversation created",
		zap.String("conversation_id", conv.ID),
		zap.String("requester_id", actor),
	)

	return conv, nil
}

// Get retrieves a conversation by ID.
func (s *ConversationService) Get(ctx context.Context, conversationID string) (*model.Conversation, error) {
	return s.db.GetConversation(ctx, conversationID)
}

// List retrieves conversations, optionally filtered by status.
func (s *ConversationService) List(ctx context.Context, status model.ConversationStatus) (*model.ListConversationsResponse, error) {
	convs, err := s.db.ListConversations(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return &model.ListConversationsResponse{
		Conversations: convs,
		Total:         len(convs),
	}, nil
}

// Update applies a partial staff update (status, priority, assignment).
func (s *ConversationService) Update(ctx context.Context, actor, conversationID string, req *model.UpdateConversationRequest) (*model.Conversation, error) {
	if actor == "" {
		return nil, ErrNotAuthenticated
	}

	conv, err := s.db.UpdateConversation(ctx, conversationID, req)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, realtime.EventUpdate, conv)
	return conv, nil
}

func (s *ConversationService) publish(ctx context.Context, eventType realtime.EventType, conv *model.Conversation) {
	row, err := json.Marshal(conv)
	if err != nil {
		return
	}
	if err := s.feed.PublishChange(ctx, realtime.ChangeEvent{
		Table: TableConversations,
		Type:  eventType,
		Row:   row,
	}); err != nil {
		s.logger.Warn("failed to publish conversation change",
			zap.String("conversation_id", conv.ID), zap.Error(err))
	}
}
