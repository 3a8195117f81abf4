package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/balcaohq/platform/internal/model"
)

// InsertProduct stores a new product.
func (db *DB) InsertProduct(ctx context.Context, p *model.Product) error {
	defer track("products.insert")()
	_, err := db.ExecContext(ctx, `
		INSERT INTO products (id, owner_id, name, category, barcode, cost_price, sale_price, stock, min_stock, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.OwnerID, p.Name, p.Category, p.Barcode, p.CostPrice, p.SalePrice, p.Stock, p.MinStock, p.CreatedAt, p.UpdatedAt)
	return err
}

// GetProduct retrieves a product owned by the given user.
func (db *DB) GetProduct(ctx context.Context, ownerID, id string) (*model.Product, error) {
	defer track("products.get")()
	var p model.Product
	err := db.QueryRowContext(ctx, `
		SELECT id, owner_id, name, category, barcode, cost_price, sale_price, stock, min_stock, created_at, updated_at
		FROM products WHERE id = ? AND owner_id = ?`, id, ownerID).
		Scan(&p.ID, &p.OwnerID, &p.Name, &p.Category, &p.Barcode, &p.CostPrice, &p.SalePrice, &p.Stock, &p.MinStock, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProducts returns the owner's products, by name.
func (db *DB) ListProducts(ctx context.Context, ownerID string) ([]model.Product, error) {
	defer track("products.list")()
	rows, err := db.QueryContext(ctx, `
		SELECT id, owner_id, name, category, barcode, cost_price, sale_price, stock, min_stock, created_at, updated_at
		FROM products WHERE owner_id = ? ORDER BY name ASC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Category, &p.Barcode, &p.CostPrice, &p.SalePrice, &p.Stock, &p.MinStock, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// UpdateProduct replaces the mutable fields of a product.
func (db *DB) UpdateProduct(ctx context.Context, ownerID, id string, req *model.ProductRequest) (*model.Product, error) {
	defer track("products.update")()
	res, err := db.ExecContext(ctx, `
		UPDATE products
		SET name = ?, category = ?, barcode = ?, cost_price = ?, sale_price = ?, stock = ?, min_stock = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?`,
		req.Name, req.Category, req.Barcode, req.CostPrice, req.SalePrice, req.Stock, req.MinStock, time.Now().UTC(), id, ownerID)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("product: %w", ErrNotFound)
	}
	return db.GetProduct(ctx, ownerID, id)
}

// DeleteProduct removes a product.
func (db *DB) DeleteProduct(ctx context.Context, ownerID, id string) error {
	defer track("products.delete")()
	res, err := db.ExecContext(ctx, `DELETE FROM products WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("product: %w", ErrNotFound)
	}
	return nil
}

// InsertClient stores a new client.
func (db *DB) InsertClient(ctx context.Context, c *model.Client) error {
	defer track("clients.insert")()
	_, err := db.ExecContext(ctx, `
		INSERT INTO clients (id, owner_id, name, email, phone, document, address, balance, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.OwnerID, c.Name, c.Email, c.Phone, c.Document, c.Address, c.Balance, c.CreatedAt, c.UpdatedAt)
	return err
}

// GetClient retrieves a client owned by the given user.
func (db *DB) GetClient(ctx context.Context, ownerID, id string) (*model.Client, error) {
	defer track("clients.get")()
	var c model.Client
	err := db.QueryRowContext(ctx, `
		SELECT id, owner_id, name, email, phone, document, address, balance, created_at, updated_at
		FROM clients WHERE id = ? AND owner_id = ?`, id, ownerID).
		Scan(&c.ID, &c.OwnerID, &c.Name, &c.Email, &c.Phone, &c.Document, &c.Address, &c.Balance, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("client: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListClients returns the owner's clients, by name.
func (db *DB) ListClients(ctx context.Context, ownerID string) ([]model.Client, error) {
	defer track("clients.list")()
	rows, err := db.QueryContext(ctx, `
		SELECT id, owner_id, name, email, phone, document, address, balance, created_at, updated_at
		FROM clients WHERE owner_id = ? ORDER BY name ASC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var clients []model.Client
	for rows.Next() {
		var c model.Client
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Email, &c.Phone, &c.Document, &c.Address, &c.Balance, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// UpdateClient replaces the mutable fields of a client.
func (db *DB) UpdateClient(ctx context.Context, ownerID, id string, req *model.ClientRequest) (*model.Client, error) {
	defer track("clients.update")()
	res, err := db.ExecContext(ctx, `
		UPDATE clients SET name = ?, email = ?, phone = ?, document = ?, address = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?`,
		req.Name, req.Email, req.Phone, req.Document, req.Address, time.Now().UTC(), id, ownerID)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("client: %w", ErrNotFound)
	}
	return db.GetClient(ctx, ownerID, id)
}

// DeleteClient removes a client.
func (db *DB) DeleteClient(ctx context.Context, ownerID, id string) error {
	defer track("clients.delete")()
	res, err := db.ExecContext(ctx, `DELETE FROM clients WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("client: %w", ErrNotFound)
	}
	return nil
}

// UpsertProfile creates or replaces the owner's business profile.
func (db *DB) UpsertProfile(ctx context.Context, p *model.Profile) error {
	defer track("profiles.upsert")()
	_, err := db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, business_name, owner_name, phone, document, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			business_name = excluded.business_name,
			owner_name = excluded.owner_name,
			phone = excluded.phone,
			document = excluded.document,
			updated_at = excluded.updated_at`,
		p.UserID, p.BusinessName, p.OwnerName, p.Phone, p.Document, p.UpdatedAt)
	return err
}

// GetProfile retrieves the owner's business profile.
func (db *DB) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	defer track("profiles.get")()
	var p model.Profile
	err := db.QueryRowContext(ctx, `
		SELECT user_id, business_name, owner_name, phone, document, updated_at
		FROM profiles WHERE user_id = ?`, userID).
		Scan(&p.UserID, &p.BusinessName, &p.OwnerName, &p.Phone, &p.Document, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("profile: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
