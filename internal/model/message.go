package model

import (
	"time"
)

// Message represents a conversation message. Messages are append-only and
// ordered by creation time ascending.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	Body           string    `json:"body"`
	IsStaff        bool      `json:"is_staff"`
	CreatedAt      time.Time `json:"created_at"`
}

// SendMessageRequest is the request to append a message to a conversation.
type SendMessageRequest struct {
	Body string `json:"body"`
}

// InternalNote is a staff-only annotation on a conversation. Same shape as
// Message plus mentioned users; append-only.
type InternalNote struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	AuthorID       string    `json:"author_id"`
	Body           string    `json:"body"`
	MentionedIDs   []string  `json:"mentioned_ids,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// CreateNoteRequest is the request to add an internal note.
type CreateNoteRequest struct {
	Body         string   `json:"body"`
	MentionedIDs []string `json:"mentioned_ids,omitempty"`
}
