package model

import (
	"time"
)

// Tag is a label that can be attached to conversations.
type Tag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateTagRequest is the request to create a tag.
type CreateTagRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// ConversationTag joins a conversation and a tag. The pair is unique.
type ConversationTag struct {
	ConversationID string    `json:"conversation_id"`
	TagID          string    `json:"tag_id"`
	CreatedBy      string    `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
}
