package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/balcaohq/platform/internal/model"
)

const conversationColumns = `id, requester_id, subject, status, priority, assigned_to, team_id,
	created_at, updated_at, first_response_at, closed_at`

// InsertConversation stores a new conversation.
func (db *DB) InsertConversation(ctx context.Context, c *model.Conversation) error {
	defer track("conversations.insert")()
	_, err := db.ExecContext(ctx, `
		INSERT INTO conversations (id, requester_id, subject, status, priority, assigned_to, team_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.RequesterID, c.Subject, c.Status, c.Priority,
		nullStr(c.AssignedTo), nullStr(c.TeamID), c.CreatedAt, c.UpdatedAt)
	return err
}

// GetConversation retrieves a conversation by id.
func (db *DB) GetConversation(ctx context.Context, id string) (*model.Conversation, error) {
	defer track("conversations.get")()
	row := db.QueryRowContext(ctx, `SELECT `+conversationColumns+` FROM conversations WHERE id = ?`, id)
	return scanConversation(row)
}

// ListConversations retrieves conversations, newest first. When status is
// non-empty the list is filtered to it.
func (db *DB) ListConversations(ctx context.Context, status model.ConversationStatus) ([]model.Conversation, error) {
	defer track("conversations.list")()
	query := `SELECT ` + conversationColumns + ` FROM conversations`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY updated_at DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var convs []model.Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		convs = append(convs, *c)
	}
	return convs, rows.Err()
}

// UpdateConversation applies a partial update. Setting status to closed
// stamps closed_at; reopening clears it.
func (db *DB) UpdateConversation(ctx context.Context, id string, req *model.UpdateConversationRequest) (*model.Conversation, error) {
	defer track("conversations.update")()
	c, err := db.GetConversation(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if req.Status != nil {
		c.Status = *req.Status
		if c.Status == model.StatusClosed {
			c.ClosedAt = &now
		} else {
			c.ClosedAt = nil
		}
	}
	if req.Priority != nil {
		c.Priority = *req.Priority
	}
	if req.AssignedTo != nil {
		c.AssignedTo = req.AssignedTo
	}
	if req.TeamID != nil {
		c.TeamID = req.TeamID
	}
	c.UpdatedAt = now

	_, err = db.ExecContext(ctx, `
		UPDATE conversations
		SET status = ?, priority = ?, assigned_to = ?, team_id = ?, updated_at = ?, closed_at = ?
		WHERE id = ?`,
		c.Status, c.Priority, nullStr(c.AssignedTo), nullStr(c.TeamID), c.UpdatedAt, nullTime(c.ClosedAt), id)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// MarkFirstResponse stamps first_response_at if it is not already set.
func (db *DB) MarkFirstResponse(ctx context.Context, id string, at time.Time) error {
	defer track("conversations.first_response")()
	_, err := db.ExecContext(ctx, `
		UPDATE conversations SET first_response_at = ?, updated_at = ?
		WHERE id = ? AND first_response_at IS NULL`, at, at, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConversation(row rowScanner) (*model.Conversation, error) {
	var c model.Conversation
	var assigned, team sql.NullString
	var firstResponse, closed sql.NullTime
	err := row.Scan(&c.ID, &c.RequesterID, &c.Subject, &c.Status, &c.Priority,
		&assigned, &team, &c.CreatedAt, &c.UpdatedAt, &firstResponse, &closed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("conversation: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	c.AssignedTo = strPtr(assigned)
	c.TeamID = strPtr(team)
	c.FirstResponseAt = timePtr(firstResponse)
	c.ClosedAt = timePtr(closed)
	return &c, nil
}
