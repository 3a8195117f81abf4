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

// TableMessages is the change-feed table name for messages. Message events
// are scoped to their conversation id.
const TableMessages = "messages"

// TableNotes is the change-feed table name for internal notes.
const TableNotes = "internal_notes"

// MessageService handles messages and internal notes.
type MessageService struct {
	db     *store.DB
	feed   realtime.Publisher
	logger *logger.Logger
}

// NewMessageService creates a new message service.
func NewMessageService(db *store.DB, feed realtime.Publisher, log *logger.Logger) *MessageService {
	return &MessageService{
		db:     db,
		feed:   feed,
		logger: log,
	}
}

// Send appends a message to a conversation. A staff sender marks the
// conversation's first response time if not already set.
func (s *MessageService) Send(ctx context.Context, actor string, isStaff bool, conversationID string, req *model.SendMessageRequest) (*model.Message, error) {
	if actor == "" {
		return nil, ErrNotAuthenticated
	}

	if _, err := s.db.GetConversation(ctx, conversationID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	msg := &model.Message{
		ID:             uuid.Must(uuid.NewV7()).String(),
		ConversationID: conversationID,
		SenderID:       actor,
		Body:           req.Body,
		IsStaff:        isStaff,
		CreatedAt:      now,
	}

	if err := s.db.InsertMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	if isStaff {
		if err := s.db.MarkFirstResponse(ctx, conversationID, now); err != nil {
			s.logger.Warn("failed to mark first response",
				zap.String("conversation_id", conversationID), zap.Error(err))
		}
	}

	if row, err := json.Marshal(msg); err == nil {
		if err := s.feed.PublishChange(ctx, realtime.ChangeEvent{
			Table: TableMessages,
			Type:  realtime.EventInsert,
			Scope: conversationID,
			Row:   row,
		}); err != nil {
			s.logger.Warn("failed to publish message",
				zap.String("conversation_id", conversationID), zap.Error(err))
		}
	}

	metrics.MessagesTotal.WithLabelValues(staffLabel(isStaff)).Inc()
	return msg, nil
}

// List retrieves the messages of a conversation, oldest first.
func (s *MessageService) List(ctx context.Context, conversationID string) ([]model.Message, error) {
	if _, err := s.db.GetConversation(ctx, conversationID); err != nil {
		return nil, err
	}
	return s.db.ListMessages(ctx, conversationID)
}

// AddNote attaches a staff-only internal note to a conversation.
func (s *MessageService) AddNote(ctx context.Context, actor, conversationID string, req *model.CreateNoteRequest) (*model.InternalNote, error) {
	if actor == "" {
		return nil, ErrNotAuthenticated
	}

	if _, err := s.db.GetConversation(ctx, conversationID); err != nil {
		return nil, err
	}

	note := &model.InternalNote{
		ID:             uuid.Must(uuid.NewV7()).String(),
		ConversationID: conversationID,
		AuthorID:       actor,
		Body:           req.Body,
		MentionedIDs:   req.MentionedIDs,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.db.InsertNote(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to add note: %w", err)
	}

	if row, err := json.Marshal(note); err == nil {
		if err := s.feed.PublishChange(ctx, realtime.ChangeEvent{
			Table: TableNotes,
			Type:  realtime.EventInsert,
			Scope: conversationID,
			Row:   row,
		}); err != nil {
			s.logger.Warn("failed to publish note",
				zap.String("conversation_id", conversationID), zap.Error(err))
		}
	}

	return note, nil
}

// ListNotes retrieves the internal notes of a conversation, oldest first.
func (s *MessageService) ListNotes(ctx context.Context, conversationID string) ([]model.InternalNote, error) {
	return s.db.ListNotes(ctx, conversationID)
}

func staffLabel(isStaff bool) string {
	if isStaff {
		return "staff"
	}
	return "requester"
}
