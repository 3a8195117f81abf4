package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/balcaohq/platform/internal/model"
)

// TransferChat writes the transfer record and the conversation reassignment
// in one transaction. Either both land or neither does.
func (db *DB) TransferChat(ctx context.Context, t *model.ChatTransfer) error {
	defer track("transfers.create")()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var res sql.Result
	switch {
	case t.ToAgentID != nil:
		res, err = tx.ExecContext(ctx, `
			UPDATE conversations SET assigned_to = ?, updated_at = ? WHERE id = ?`,
			*t.ToAgentID, time.Now().UTC(), t.ConversationID)
	case t.ToTeamID != nil:
		res, err = tx.ExecContext(ctx, `
			UPDATE conversations SET team_id = ?, assigned_to = NULL, updated_at = ? WHERE id = ?`,
			*t.ToTeamID, time.Now().UTC(), t.ConversationID)
	default:
		return fmt.Errorf("transfer %s has no destination", t.ID)
	}
	if err != nil {
		return fmt.Errorf("reassign conversation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("conversation: %w", ErrNotFound)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO chat_transfers (id, conversation_id, from_agent_id, to_agent_id, to_team_id, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.ConversationID, t.FromAgentID, nullStr(t.ToAgentID), nullStr(t.ToTeamID), t.Reason, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert transfer: %w", err)
	}

	return tx.Commit()
}

// ListTransfers returns the transfer history of a conversation, oldest first.
func (db *DB) ListTransfers(ctx context.Context, conversationID string) ([]model.ChatTransfer, error) {
	defer track("transfers.list")()
	rows, err := db.QueryContext(ctx, `
		SELECT id, conversation_id, from_agent_id, to_agent_id, to_team_id, reason, created_at
		FROM chat_transfers WHERE conversation_id = ?
		ORDER BY created_at ASC`, conversationID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var transfers []model.ChatTransfer
	for rows.Next() {
		var t model.ChatTransfer
		var toAgent, toTeam sql.NullString
		if err := rows.Scan(&t.ID, &t.ConversationID, &t.FromAgentID, &toAgent, &toTeam, &t.Reason, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.ToAgentID = strPtr(toAgent)
		t.ToTeamID = strPtr(toTeam)
		transfers = append(transfers, t)
	}
	return transfers, rows.Err()
}

// CountTransferredConversations returns how many distinct conversations have
// at least one transfer.
func (db *DB) CountTransferredConversations(ctx context.Context) (int, error) {
	defer track("transfers.count_conversations")()
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT conversation_id) FROM chat_transfers`).Scan(&n)
	return n, err
}
