package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/balcaohq/platform/internal/model"
)

const accountColumns = `id, user_id, email, access_level, active, chat_linked, created_by, created_at, updated_at`

// InsertAccount stores a new support account.
func (db *DB) InsertAccount(ctx context.Context, a *model.SupportAccount) error {
	defer track("accounts.insert")()
	_, err := db.ExecContext(ctx, `
		INSERT INTO support_accounts (id, user_id, email, access_level, active, chat_linked, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.Email, a.AccessLevel, a.Active, a.ChatLinked, a.CreatedBy, a.CreatedAt, a.UpdatedAt)
	return err
}

// GetAccount retrieves a support account by id.
func (db *DB) GetAccount(ctx context.Context, id string) (*model.SupportAccount, error) {
	defer track("accounts.get")()
	row := db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM support_accounts WHERE id = ?`, id)
	return scanAccount(row)
}

// ListAccounts returns all support accounts, newest first.
func (db *DB) ListAccounts(ctx context.Context) ([]model.SupportAccount, error) {
	defer track("accounts.list")()
	rows, err := db.QueryContext(ctx, `SELECT `+accountColumns+` FROM support_accounts ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var accounts []model.SupportAccount
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *a)
	}
	return accounts, rows.Err()
}

// UpdateAccount replaces the mutable fields of a support account.
func (db *DB) UpdateAccount(ctx context.Context, id string, req *model.AccountRequest) (*model.SupportAccount, error) {
	defer track("accounts.update")()
	res, err := db.ExecContext(ctx, `
		UPDATE support_accounts
		SET email = ?, access_level = ?, active = ?, chat_linked = ?, updated_at = ?
		WHERE id = ?`,
		req.Email, req.AccessLevel, req.Active, req.ChatLinked, time.Now().UTC(), id)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("account: %w", ErrNotFound)
	}
	return db.GetAccount(ctx, id)
}

// DeleteAccount removes a support account.
func (db *DB) DeleteAccount(ctx context.Context, id string) error {
	defer track("accounts.delete")()
	res, err := db.ExecContext(ctx, `DELETE FROM support_accounts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("account: %w", ErrNotFound)
	}
	return nil
}

// InsertAuditEntry appends an audit log row.
func (db *DB) InsertAuditEntry(ctx context.Context, e *model.AuditEntry) error {
	defer track("audit.insert")()
	var oldVal, newVal any
	if e.OldValue != nil {
		oldVal = string(e.OldValue)
	}
	if e.NewValue != nil {
		newVal = string(e.NewValue)
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO support_audit_log (id, account_id, action, actor_id, old_value, new_value, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.AccountID, e.Action, e.ActorID, oldVal, newVal, e.CreatedAt)
	return err
}

// ListAuditEntries returns the audit trail for an account, oldest first. An
// empty accountID returns the entire log.
func (db *DB) ListAuditEntries(ctx context.Context, accountID string) ([]model.AuditEntry, error) {
	defer track("audit.list")()
	query := `SELECT id, account_id, action, actor_id, old_value, new_value, created_at FROM support_audit_log`
	args := []any{}
	if accountID != "" {
		query += ` WHERE account_id = ?`
		args = append(args, accountID)
	}
	query += ` ORDER BY created_at ASC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []model.AuditEntry
	for rows.Next() {
		var e model.AuditEntry
		var oldVal, newVal sql.NullString
		if err := rows.Scan(&e.ID, &e.AccountID, &e.Action, &e.ActorID, &oldVal, &newVal, &e.CreatedAt); err != nil {
			return nil, err
		}
		if oldVal.Valid {
			e.OldValue = []byte(oldVal.String)
		}
		if newVal.Valid {
			e.NewValue = []byte(newVal.String)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func scanAccount(row rowScanner) (*model.SupportAccount, error) {
	var a model.SupportAccount
	err := row.Scan(&a.ID, &a.UserID, &a.Email, &a.AccessLevel, &a.Active, &a.ChatLinked,
		&a.CreatedBy, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
