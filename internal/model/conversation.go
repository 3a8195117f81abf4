// Package model defines data structures for the platform.
package model

import (
	"time"
)

// ConversationStatus represents the lifecycle state of a support conversation.
type ConversationStatus string

const (
	StatusOpen       ConversationStatus = "open"
	StatusInProgress ConversationStatus = "in_progress"
	StatusClosed     ConversationStatus = "closed"
)

// Priority represents the urgency of a conversation.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// Conversation represents a support conversation thread.
type Conversation struct {
	ID              string             `json:"id"`
	RequesterID     string             `json:"requester_id"`
	Subject         string             `json:"subject"`
	Status          ConversationStatus `json:"status"`
	Priority        Priority           `json:"priority"`
	AssignedTo      *string            `json:"assigned_to,omitempty"`
	TeamID          *string            `json:"team_id,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
	FirstResponseAt *time.Time         `json:"first_response_at,omitempty"`
	ClosedAt        *time.Time         `json:"closed_at,omitempty"`
}

// CreateConversationRequest is the request to open a new conversation.
type CreateConversationRequest struct {
	Subject  string   `json:"subject"`
	Priority Priority `json:"priority,omitempty"`
}

// UpdateConversationRequest is the request to update a conversation.
// Nil fields are left untouched.
type UpdateConversationRequest struct {
	Status     *ConversationStatus `json:"status,omitempty"`
	Priority   *Priority           `json:"priority,omitempty"`
	AssignedTo *string             `json:"assigned_to,omitempty"`
	TeamID     *string             `json:"team_id,omitempty"`
}

// ListConversationsResponse is the response for listing conversations.
type ListConversationsResponse struct {
	Conversations []Conversation `json:"conversations"`
	Total         int            `json:"total"`
}
