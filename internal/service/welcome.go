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

// WelcomeService manages templated greetings shown at chat start.
type WelcomeService struct {
	db     *store.DB
	logger *logger.Logger
}

// NewWelcomeService creates a new welcome message service.
func NewWelcomeService(db *store.DB, log *logger.Logger) *WelcomeService {
	return &WelcomeService{db: db, logger: log}
}

// Create registers a new welcome message.
func (s *WelcomeService) Create(ctx context.Context, actor string, req *model.WelcomeMessageRequest) (*model.WelcomeMessage, error) {
	if actor == "" {
		return nil, ErrNotAuthenticated
	}

	now := time.Now().UTC()
	w := &model.WelcomeMessage{
		ID:        uuid.Must(uuid.NewV7()).String(),
		TeamID:    req.TeamID,
		Template:  req.Template,
		Active:    req.Active,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.db.InsertWelcomeMessage(ctx, w); err != nil {
		return nil, fmt.Errorf("failed to create welcome message: %w", err)
	}
	return w, nil
}

// Update replaces a welcome message's fields.
func (s *WelcomeService) Update(ctx context.Context, actor, id string, req *model.WelcomeMessageRequest) (*model.WelcomeMessage, error) {
	if actor == "" {
		return nil, ErrNotAuthenticated
	}
	return s.db.UpdateWelcomeMessage(ctx, id, req)
}

// List returns all welcome messages.
func (s *WelcomeService) List(ctx context.Context) ([]model.WelcomeMessage, error) {
	return s.db.ListWelcomeMessages(ctx)
}

// Delete removes a welcome message.
func (s *WelcomeService) Delete(ctx context.Context, actor, id string) error {
	if actor == "" {
		return ErrNotAuthenticated
	}
	return s.db.DeleteWelcomeMessage(ctx, id)
}

// Greeting resolves the greeting to show when a chat starts: the first
// active message for the team (team-specific rows first, then global ones)
// whose time window covers now, rendered with the requester's name.
// Returns empty when no message applies.
func (s *WelcomeService) Greeting(ctx context.Context, teamID *string, name string, now time.Time) (string, error) {
	msgs, err := s.db.ListWelcomeMessagesForTeam(ctx, teamID)
	if err != nil {
		return "", fmt.Errorf("failed to load welcome messages: %w", err)
	}
	for i := range msgs {
		if msgs[i].ActiveAt(now) {
			return msgs[i].Render(name), nil
		}
	}
	return "", nil
}
