package model

import (
	"time"
)

// SupportTeam groups agents handling conversations together.
type SupportTeam struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TeamRequest is the request to create or update a team.
type TeamRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// TeamRole represents a member's role within a team.
type TeamRole string

const (
	RoleMember         TeamRole = "member"
	RoleTeamSupervisor TeamRole = "supervisor"
	RoleLead           TeamRole = "lead"
)

// TeamMember joins a user to a team with a role.
type TeamMember struct {
	TeamID    string    `json:"team_id"`
	UserID    string    `json:"user_id"`
	Role      TeamRole  `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// AddTeamMemberRequest is the request to add a member to a team.
type AddTeamMemberRequest struct {
	UserID string   `json:"user_id"`
	Role   TeamRole `json:"role"`
}
