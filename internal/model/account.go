package model

import (
	"encoding/json"
	"time"
)

// AccessLevel represents the permission tier of a support account.
type AccessLevel string

const (
	AccessSupport    AccessLevel = "support"
	AccessSupervisor AccessLevel = "supervisor"
	AccessAdmin      AccessLevel = "admin"
)

// SupportAccount grants a user access to the support console.
type SupportAccount struct {
	ID          string      `json:"id"`
	UserID      string      `json:"user_id"`
	Email       string      `json:"email"`
	AccessLevel AccessLevel `json:"access_level"`
	Active      bool        `json:"active"`
	ChatLinked  bool        `json:"chat_linked"`
	CreatedBy   string      `json:"created_by"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// AccountRequest is the request to create or update a support account.
type AccountRequest struct {
	UserID      string      `json:"user_id"`
	Email       string      `json:"email"`
	AccessLevel AccessLevel `json:"access_level"`
	Active      bool        `json:"active"`
	ChatLinked  bool        `json:"chat_linked"`
}

// AuditAction is the kind of mutation recorded in the audit log.
type AuditAction string

const (
	AuditCreate AuditAction = "create"
	AuditUpdate AuditAction = "update"
	AuditDelete AuditAction = "delete"
)

// SentinelAccountID is recorded as the audit subject when the account id is
// not yet assigned (a create logged before the row exists).
const SentinelAccountID = "00000000-0000-0000-0000-000000000000"

// AuditEntry is an append-only record of a support-account mutation.
// OldValue/NewValue are opaque JSON snapshots.
type AuditEntry struct {
	ID        string          `json:"id"`
	AccountID string          `json:"account_id"`
	Action    AuditAction     `json:"action"`
	ActorID   string          `json:"actor_id"`
	OldValue  json.RawMessage `json:"old_value,omitempty"`
	NewValue  json.RawMessage `json:"new_value,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
