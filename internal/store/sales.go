package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/balcaohq/platform/internal/model"
)

// ErrInsufficientStock is returned when a sale would drive stock negative.
var ErrInsufficientStock = errors.New("insufficient stock")

// InsertSale writes the sale, its items, and the stock decrements in one
// transaction.
func (db *DB) InsertSale(ctx context.Context, s *model.Sale) error {
	defer track("sales.insert")()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sales (id, owner_id, client_id, total, discount, payment_method, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.OwnerID, nullStr(s.ClientID), s.Total, s.Discount, s.PaymentMethod, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}

	for _, item := range s.Items {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO sale_items (id, sale_id, product_id, quantity, unit_price)
			VALUES (?, ?, ?, ?, ?)`,
			item.ID, s.ID, item.ProductID, item.Quantity, item.UnitPrice); err != nil {
			return fmt.Errorf("insert sale item: %w", err)
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE products SET stock = stock - ?, updated_at = ?
			WHERE id = ? AND owner_id = ? AND stock >= ?`,
			item.Quantity, time.Now().UTC(), item.ProductID, s.OwnerID, item.Quantity)
		if err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("product %s: %w", item.ProductID, ErrInsufficientStock)
		}
	}

	return tx.Commit()
}

// GetSale retrieves a sale with its items.
func (db *DB) GetSale(ctx context.Context, ownerID, id string) (*model.Sale, error) {
	defer track("sales.get")()
	var s model.Sale
	var client sql.NullString
	err := db.QueryRowContext(ctx, `
		SELECT id, owner_id, client_id, total, discount, payment_method, created_at
		FROM sales WHERE id = ? AND owner_id = ?`, id, ownerID).
		Scan(&s.ID, &s.OwnerID, &client, &s.Total, &s.Discount, &s.PaymentMethod, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sale: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	s.ClientID = strPtr(client)

	rows, err := db.QueryContext(ctx, `
		SELECT id, sale_id, product_id, quantity, unit_price
		FROM sale_items WHERE sale_id = ?`, id)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var item model.SaleItem
		if err := rows.Scan(&item.ID, &item.SaleID, &item.ProductID, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, err
		}
		s.Items = append(s.Items, item)
	}
	return &s, rows.Err()
}

// ListSales returns the owner's sales, newest first, without items.
func (db *DB) ListSales(ctx context.Context, ownerID string) ([]model.Sale, error) {
	defer track("sales.list")()
	rows, err := db.QueryContext(ctx, `
		SELECT id, owner_id, client_id, total, discount, payment_method, created_at
		FROM sales WHERE owner_id = ? ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var sales []model.Sale
	for rows.Next() {
		var s model.Sale
		var client sql.NullString
		if err := rows.Scan(&s.ID, &s.OwnerID, &client, &s.Total, &s.Discount, &s.PaymentMethod, &s.CreatedAt); err != nil {
			return nil, err
		}
		s.ClientID = strPtr(client)
		sales = append(sales, s)
	}
	return sales, rows.Err()
}

// InsertPixCharge stores a new Pix charge.
func (db *DB) InsertPixCharge(ctx context.Context, p *model.PixCharge) error {
	defer track("pix.insert")()
	_, err := db.ExecContext(ctx, `
		INSERT INTO pix_charges (id, owner_id, client_id, amount, status, tx_id, qr_code, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.OwnerID, nullStr(p.ClientID), p.Amount, p.Status, p.TxID, p.QRCode, nullTime(p.ExpiresAt), p.CreatedAt, p.UpdatedAt)
	return err
}

// UpdatePixChargeStatus moves a charge to a new status.
func (db *DB) UpdatePixChargeStatus(ctx context.Context, ownerID, id string, status model.PixChargeStatus) error {
	defer track("pix.update_status")()
	res, err := db.ExecContext(ctx, `
		UPDATE pix_charges SET status = ?, updated_at = ? WHERE id = ? AND owner_id = ?`,
		status, time.Now().UTC(), id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("pix charge: %w", ErrNotFound)
	}
	return nil
}

// ListPixCharges returns the owner's Pix charges, newest first.
func (db *DB) ListPixCharges(ctx context.Context, ownerID string) ([]model.PixCharge, error) {
	defer track("pix.list")()
	rows, err := db.QueryContext(ctx, `
		SELECT id, owner_id, client_id, amount, status, tx_id, qr_code, expires_at, created_at, updated_at
		FROM pix_charges WHERE owner_id = ? ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var charges []model.PixCharge
	for rows.Next() {
		var p model.PixCharge
		var client sql.NullString
		var expires sql.NullTime
		if err := rows.Scan(&p.ID, &p.OwnerID, &client, &p.Amount, &p.Status, &p.TxID, &p.QRCode, &expires, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		p.ClientID = strPtr(client)
		p.ExpiresAt = timePtr(expires)
		charges = append(charges, p)
	}
	return charges, rows.Err()
}

// InsertNotaFiscal writes the nota and its items in one transaction.
func (db *DB) InsertNotaFiscal(ctx context.Context, n *model.NotaFiscal) error {
	defer track("notas.insert")()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO notas_fiscais (id, owner_id, number, client_id, total, issued_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.OwnerID, n.Number, nullStr(n.ClientID), n.Total, n.IssuedAt, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert nota: %w", err)
	}

	for _, item := range n.Items {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO nota_fiscal_items (id, nota_id, name, quantity, unit_price, category)
			VALUES (?, ?, ?, ?, ?, ?)`,
			item.ID, n.ID, item.Name, item.Quantity, item.UnitPrice, item.Category); err != nil {
			return fmt.Errorf("insert nota item: %w", err)
		}
	}

	return tx.Commit()
}

// GetNotaFiscal retrieves a nota with its items.
func (db *DB) GetNotaFiscal(ctx context.Context, ownerID, id string) (*model.NotaFiscal, error) {
	defer track("notas.get")()
	var n model.NotaFiscal
	var client sql.NullString
	err := db.QueryRowContext(ctx, `
		SELECT id, owner_id, number, client_id, total, issued_at, created_at
		FROM notas_fiscais WHERE id = ? AND owner_id = ?`, id, ownerID).
		Scan(&n.ID, &n.OwnerID, &n.Number, &client, &n.Total, &n.IssuedAt, &n.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("nota fiscal: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	n.ClientID = strPtr(client)

	rows, err := db.QueryContext(ctx, `
		SELECT id, nota_id, name, quantity, unit_price, category
		FROM nota_fiscal_items WHERE nota_id = ?`, id)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var item model.NotaFiscalItem
		if err := rows.Scan(&item.ID, &item.NotaID, &item.Name, &item.Quantity, &item.UnitPrice, &item.Category); err != nil {
			return nil, err
		}
		n.Items = append(n.Items, item)
	}
	return &n, rows.Err()
}

// ListNotasFiscais returns the owner's notas, newest first, without items.
func (db *DB) ListNotasFiscais(ctx context.Context, ownerID string) ([]model.NotaFiscal, error) {
	defer track("notas.list")()
	rows, err := db.QueryContext(ctx, `
		SELECT id, owner_id, number, client_id, total, issued_at, created_at
		FROM notas_fiscais WHERE owner_id = ? ORDER BY issued_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var notas []model.NotaFiscal
	for rows.Next() {
		var n model.NotaFiscal
		var client sql.NullString
		if err := rows.Scan(&n.ID, &n.OwnerID, &n.Number, &client, &n.Total, &n.IssuedAt, &n.CreatedAt); err != nil {
			return nil, err
		}
		n.ClientID = strPtr(client)
		notas = append(notas, n)
	}
	return notas, rows.Err()
}
