package store

import (
	"context"
	"encoding/json"

	"github.com/balcaohq/platform/internal/model"
)

// InsertMessage appends a message to a conversation.
func (db *DB) InsertMessage(ctx context.Context, m *model.Message) error {
	defer track("messages.insert")()
	_, err := db.ExecContext(ctx, `
		INSERT INTO messages (id, conversation_id, sender_id, body, is_staff, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.ConversationID, m.SenderID, m.Body, m.IsStaff, m.CreatedAt)
	return err
}

// ListMessages returns all messages of a conversation, oldest first.
func (db *DB) ListMessages(ctx context.Context, conversationID string) ([]model.Message, error) {
	defer track("messages.list")()
	rows, err := db.QueryContext(ctx, `
		SELECT id, conversation_id, sender_id, body, is_staff, created_at
		FROM messages WHERE conversation_id = ?
		ORDER BY created_at ASC`, conversationID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var msgs []model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Body, &m.IsStaff, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// InsertNote appends an internal note. Mentions are stored as a JSON array.
func (db *DB) InsertNote(ctx context.Context, n *model.InternalNote) error {
	defer track("notes.insert")()
	mentions, err := json.Marshal(n.MentionedIDs)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO internal_notes (id, conversation_id, author_id, body, mentioned_ids, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		n.ID, n.ConversationID, n.AuthorID, n.Body, string(mentions), n.CreatedAt)
	return err
}

// ListNotes returns all internal notes of a conversation, oldest first.
func (db *DB) ListNotes(ctx context.Context, conversationID string) ([]model.InternalNote, error) {
	defer track("notes.list")()
	rows, err := db.QueryContext(ctx, `
		SELECT id, conversation_id, author_id, body, mentioned_ids, created_at
		FROM internal_notes WHERE conversation_id = ?
		ORDER BY created_at ASC`, conversationID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var notes []model.InternalNote
	for rows.Next() {
		var n model.InternalNote
		var mentions string
		if err := rows.Scan(&n.ID, &n.ConversationID, &n.AuthorID, &n.Body, &mentions, &n.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(mentions), &n.MentionedIDs); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}
