package model

import (
	"time"
)

// Product is an inventory item.
type Product struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	Category  string    `json:"category,omitempty"`
	Barcode   string    `json:"barcode,omitempty"`
	CostPrice float64   `json:"cost_price"`
	SalePrice float64   `json:"sale_price"`
	Stock     int       `json:"stock"`
	MinStock  int       `json:"min_stock"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProductRequest is the request to create or update a product.
type ProductRequest struct {
	Name      string  `json:"name"`
	Category  string  `json:"category,omitempty"`
	Barcode   string  `json:"barcode,omitempty"`
	CostPrice float64 `json:"cost_price"`
	SalePrice float64 `json:"sale_price"`
	Stock     int     `json:"stock"`
	MinStock  int     `json:"min_stock"`
}

// Client is a customer in the business ledger.
type Client struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Document  string    `json:"document,omitempty"`
	Address   string    `json:"address,omitempty"`
	Balance   float64   `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ClientRequest is the request to create or update a client.
type ClientRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Document string `json:"document,omitempty"`
	Address  string `json:"address,omitempty"`
}

// PaymentMethod is how a sale was paid.
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCard   PaymentMethod = "card"
	PaymentPix    PaymentMethod = "pix"
	PaymentCredit PaymentMethod = "credit"
)

// Sale is a point-of-sale transaction with its line items.
type Sale struct {
	ID            string        `json:"id"`
	OwnerID       string        `json:"owner_id"`
	ClientID      *string       `json:"client_id,omitempty"`
	Total         float64       `json:"total"`
	Discount      float64       `json:"discount"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	Items         []SaleItem    `json:"items,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

// SaleItem is one product line within a sale.
type SaleItem struct {
	ID        string  `json:"id"`
	SaleID    string  `json:"sale_id"`
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// SaleRequest is the request to register a sale.
type SaleRequest struct {
	ClientID      *string           `json:"client_id,omitempty"`
	Discount      float64           `json:"discount"`
	PaymentMethod PaymentMethod     `json:"payment_method"`
	Items         []SaleItemRequest `json:"items"`
}

// SaleItemRequest is one line of a sale request.
type SaleItemRequest struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// Expense is a recorded business expense.
type Expense struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Description string    `json:"description"`
	Category    string    `json:"category,omitempty"`
	Amount      float64   `json:"amount"`
	PaidAt      time.Time `json:"paid_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// ExpenseRequest is the request to record an expense.
type ExpenseRequest struct {
	Description string     `json:"description"`
	Category    string     `json:"category,omitempty"`
	Amount      float64    `json:"amount"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
}

// CashFlowDirection is the sign of a cash-flow entry.
type CashFlowDirection string

const (
	CashIn  CashFlowDirection = "in"
	CashOut CashFlowDirection = "out"
)

// CashFlowEntry is one movement in the cash ledger.
type CashFlowEntry struct {
	ID          string            `json:"id"`
	OwnerID     string            `json:"owner_id"`
	Direction   CashFlowDirection `json:"direction"`
	Description string            `json:"description"`
	Amount      float64           `json:"amount"`
	CreatedAt   time.Time         `json:"created_at"`
}

// CashFlowRequest is the request to record a cash movement.
type CashFlowRequest struct {
	Direction   CashFlowDirection `json:"direction"`
	Description string            `json:"description"`
	Amount      float64           `json:"amount"`
}

// PixChargeStatus is the lifecycle state of a Pix charge.
type PixChargeStatus string

const (
	PixPending  PixChargeStatus = "pending"
	PixPaid     PixChargeStatus = "paid"
	PixExpired  PixChargeStatus = "expired"
	PixCanceled PixChargeStatus = "canceled"
)

// PixCharge is an instant-payment charge issued to a client.
type PixCharge struct {
	ID        string          `json:"id"`
	OwnerID   string          `json:"owner_id"`
	ClientID  *string         `json:"client_id,omitempty"`
	Amount    float64         `json:"amount"`
	Status    PixChargeStatus `json:"status"`
	TxID      string          `json:"tx_id,omitempty"`
	QRCode    string          `json:"qr_code,omitempty"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// PixChargeRequest is the request to issue a Pix charge.
type PixChargeRequest struct {
	ClientID *string `json:"client_id,omitempty"`
	Amount   float64 `json:"amount"`
}

// NotaFiscal is an issued invoice document with its line items.
type NotaFiscal struct {
	ID        string           `json:"id"`
	OwnerID   string           `json:"owner_id"`
	Number    string           `json:"number"`
	ClientID  *string          `json:"client_id,omitempty"`
	Total     float64          `json:"total"`
	IssuedAt  time.Time        `json:"issued_at"`
	Items     []NotaFiscalItem `json:"items,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// NotaFiscalItem is one line of a nota fiscal.
type NotaFiscalItem struct {
	ID        string  `json:"id"`
	NotaID    string  `json:"nota_id"`
	Name      string  `json:"name"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Category  string  `json:"category,omitempty"`
}

// NotaFiscalRequest is the request to register a nota fiscal.
type NotaFiscalRequest struct {
	Number   string                `json:"number"`
	ClientID *string               `json:"client_id,omitempty"`
	IssuedAt *time.Time            `json:"issued_at,omitempty"`
	Items    []NotaFiscalItemInput `json:"items"`
}

// NotaFiscalItemInput is one line of a nota fiscal request.
type NotaFiscalItemInput struct {
	Name      string  `json:"name"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Category  string  `json:"category,omitempty"`
}

// Profile is the business owner's profile.
type Profile struct {
	UserID       string    `json:"user_id"`
	BusinessName string    `json:"business_name"`
	OwnerName    string    `json:"owner_name,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Document     string    `json:"document,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProfileRequest is the request to update the business profile.
type ProfileRequest struct {
	BusinessName string `json:"business_name"`
	OwnerName    string `json:"owner_name,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Document     string `json:"document,omitempty"`
}
