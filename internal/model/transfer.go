package model

import (
	"time"
)

// ChatTransfer records a conversation being handed to another agent or team.
// Exactly one of ToAgentID / ToTeamID is set.
type ChatTransfer struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	FromAgentID    string    `json:"from_agent_id"`
	ToAgentID      *string   `json:"to_agent_id,omitempty"`
	ToTeamID       *string   `json:"to_team_id,omitempty"`
	Reason         string    `json:"reason,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// TransferRequest is the request to transfer a conversation.
type TransferRequest struct {
	ToAgentID *string `json:"to_agent_id,omitempty"`
	ToTeamID  *string `json:"to_team_id,omitempty"`
	Reason    string  `json:"reason,omitempty"`
}
