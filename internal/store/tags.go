package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/balcaohq/platform/internal/model"
)

// InsertTag stores a new tag.
func (db *DB) InsertTag(ctx context.Context, t *model.Tag) error {
	defer track("tags.insert")()
	_, err := db.ExecContext(ctx, `
		INSERT INTO tags (id, name, color, created_by, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Color, t.CreatedBy, t.CreatedAt)
	return err
}

// ListTags returns all tags, by name.
func (db *DB) ListTags(ctx context.Context) ([]model.Tag, error) {
	defer track("tags.list")()
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, color, created_by, created_at FROM tags ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var tags []model.Tag
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Color, &t.CreatedBy, &t.CreatedAt); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// GetTag retrieves a tag by id.
func (db *DB) GetTag(ctx context.Context, id string) (*model.Tag, error) {
	defer track("tags.get")()
	var t model.Tag
	err := db.QueryRowContext(ctx, `
		SELECT id, name, color, created_by, created_at FROM tags WHERE id = ?`, id).
		Scan(&t.ID, &t.Name, &t.Color, &t.CreatedBy, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("tag: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// DeleteTag removes a tag and its conversation links.
func (db *DB) DeleteTag(ctx context.Context, id string) error {
	defer track("tags.delete")()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM conversation_tags WHERE tag_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("tag: %w", ErrNotFound)
	}
	return tx.Commit()
}

// AttachTag links a tag to a conversation. The (conversation, tag) pair is
// unique; attaching an already attached tag is a no-op.
func (db *DB) AttachTag(ctx context.Context, ct *model.ConversationTag) error {
	defer track("conversation_tags.attach")()
	_, err := db.ExecContext(ctx, `
		INSERT INTO conversation_tags (conversation_id, tag_id, created_by, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(conversation_id, tag_id) DO NOTHING`,
		ct.ConversationID, ct.TagID, ct.CreatedBy, ct.CreatedAt)
	return err
}

// DetachTag unlinks a tag from a conversation.
func (db *DB) DetachTag(ctx context.Context, conversationID, tagID string) error {
	defer track("conversation_tags.detach")()
	res, err := db.ExecContext(ctx, `
		DELETE FROM conversation_tags WHERE conversation_id = ? AND tag_id = ?`,
		conversationID, tagID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("conversation tag: %w", ErrNotFound)
	}
	return nil
}

// ListConversationTags returns the tags attached to a conversation.
func (db *DB) ListConversationTags(ctx context.Context, conversationID string) ([]model.Tag, error) {
	defer track("conversation_tags.list")()
	rows, err := db.QueryContext(ctx, `
		SELECT t.id, t.name, t.color, t.created_by, t.created_at
		FROM conversation_tags ct
		JOIN tags t ON t.id = ct.tag_id
		WHERE ct.conversation_id = ?
		ORDER BY t.name ASC`, conversationID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var tags []model.Tag
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Color, &t.CreatedBy, &t.CreatedAt); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// ListAllConversationTags returns every (conversation, tag) pair.
func (db *DB) ListAllConversationTags(ctx context.Context) ([]model.ConversationTag, error) {
	defer track("conversation_tags.list_all")()
	rows, err := db.QueryContext(ctx, `
		SELECT conversation_id, tag_id, created_by, created_at FROM conversation_tags`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var pairs []model.ConversationTag
	for rows.Next() {
		var ct model.ConversationTag
		if err := rows.Scan(&ct.ConversationID, &ct.TagID, &ct.CreatedBy, &ct.CreatedAt); err != nil {
			return nil, err
		}
		pairs = append(pairs, ct)
	}
	return pairs, rows.Err()
}
