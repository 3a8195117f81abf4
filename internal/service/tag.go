package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/balcaohq/platform/internal/model"
	"github.com/balcaohq/platform/internal/store"
	"github.com/balcaohq/platform/pkg/logger"
)

// TagService manages tags and their attachment to conversations.
type TagService struct {
	db     *store.DB
	logger *logger.Logger
}

// NewTagService creates a new tag service.
func NewTagService(db *store.DB, log *logger.Logger) *TagService {
	return &TagService{db: db, logger: log}
}

// Create registers a new tag.
func (s *TagService) Create(ctx context.Context, actor string, req *model.CreateTagRequest) (*model.Tag, error) {
	if actor == "" {
		return nil, ErrNotAuthenticated
	}

	tag := &model.Tag{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Name:      req.Name,
		Color:     req.Color,
		CreatedBy: actor,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.db.InsertTag(ctx, tag); err != nil {
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}
	return tag, nil
}

// List returns all tags.
func (s *TagService) List(ctx context.Context) ([]model.Tag, error) {
	return s.db.ListTags(ctx)
}

// Delete removes a tag and detaches it from all conversations.
func (s *TagService) Delete(ctx context.Context, actor, tagID string) error {
	if actor == "" {
		return ErrNotAuthenticated
	}
	return s.db.DeleteTag(ctx, tagID)
}

// Attach links a tag to a conversation. Attaching an already-attached tag
// is a no-op.
func (s *TagService) Attach(ctx context.Context, actor, conversationID, tagID string) error {
	if actor == "" {
		return ErrNotAuthenticated
	}
	if _, err := s.db.GetConversation(ctx, conversationID); err != nil {
		return err
	}
	if _, err := s.db.GetTag(ctx, tagID); err != nil {
		return err
	}

	return s.db.AttachTag(ctx, &model.ConversationTag{
		ConversationID: conversationID,
		TagID:          tagID,
		CreatedBy:      actor,
		CreatedAt:      time.Now().UTC(),
	})
}

// Detach removes a tag from a conversation.
func (s *TagService) Detach(ctx context.Context, actor, conversationID, tagID string) error {
	if actor == "" {
		return ErrNotAuthenticated
	}
	return s.db.DetachTag(ctx, conversationID, tagID)
}

// ForConversation lists the tags attached to a conversation.
func (s *TagService) ForConversation(ctx context.Context, conversationID string) ([]model.Tag, error) {
	return s.db.ListConversationTags(ctx, conversationID)
}
