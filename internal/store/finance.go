package store

import (
	"context"
	"fmt"

	"github.com/balcaohq/platform/internal/model"
)

// InsertExpense stores a new expense.
func (db *DB) InsertExpense(ctx context.Context, e *model.Expense) error {
	defer track("expenses.insert")()
	_, err := db.ExecContext(ctx, `
		INSERT INTO expenses (id, owner_id, description, category, amount, paid_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.OwnerID, e.Description, e.Category, e.Amount, e.PaidAt, e.CreatedAt)
	return err
}

// ListExpenses returns the owner's expenses, newest first.
func (db *DB) ListExpenses(ctx context.Context, ownerID string) ([]model.Expense, error) {
	defer track("expenses.list")()
	rows, err := db.QueryContext(ctx, `
		SELECT id, owner_id, description, category, amount, paid_at, created_at
		FROM expenses WHERE owner_id = ? ORDER BY paid_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var expenses []model.Expense
	for rows.Next() {
		var e model.Expense
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.Description, &e.Category, &e.Amount, &e.PaidAt, &e.CreatedAt); err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// DeleteExpense removes an expense.
func (db *DB) DeleteExpense(ctx context.Context, ownerID, id string) error {
	defer track("expenses.delete")()
	res, err := db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("expense: %w", ErrNotFound)
	}
	return nil
}

// InsertCashFlowEntry stores a new cash movement.
func (db *DB) InsertCashFlowEntry(ctx context.Context, e *model.CashFlowEntry) error {
	defer track("cashflow.insert")()
	_, err := db.ExecContext(ctx, `
		INSERT INTO cash_flow_entries (id, owner_id, direction, description, amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.OwnerID, e.Direction, e.Description, e.Amount, e.CreatedAt)
	return err
}

// ListCashFlowEntries returns the owner's cash movements, newest first.
func (db *DB) ListCashFlowEntries(ctx context.Context, ownerID string) ([]model.CashFlowEntry, error) {
	defer track("cashflow.list")()
	rows, err := db.QueryContext(ctx, `
		SELECT id, owner_id, direction, description, amount, created_at
		FROM cash_flow_entries WHERE owner_id = ? ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []model.CashFlowEntry
	for rows.Next() {
		var e model.CashFlowEntry
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.Direction, &e.Description, &e.Amount, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
