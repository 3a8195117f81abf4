package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/balcaohq/platform/internal/model"
	"github.com/balcaohq/platform/internal/store"
	"github.com/balcaohq/platform/pkg/logger"
)

// TeamService manages support teams and their membership.
type TeamService struct {
	db     *store.DB
	logger *logger.Logger
}

// NewTeamService creates a new team service.
func NewTeamService(db *store.DB, log *logger.Logger) *TeamService {
	return &TeamService{db: db, logger: log}
}

// Create registers a new support team.
func (s *TeamService) Create(ctx context.Context, actor string, req *model.TeamRequest) (*model.SupportTeam, error) {
	if actor == "" {
		return nil, ErrNotAuthenticated
	}

	now := time.Now().UTC()
	team := &model.SupportTeam{
		ID:          uuid.Must(uuid.NewV7()).String(),
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   actor,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.db.InsertTeam(ctx, team); err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}
	return team, nil
}

// Get retrieves a team.
func (s *TeamService) Get(ctx context.Context, id string) (*model.SupportTeam, error) {
	return s.db.GetTeam(ctx, id)
}

// List returns all teams.
func (s *TeamService) List(ctx context.Context) ([]model.SupportTeam, error) {
	return s.db.ListTeams(ctx)
}

// Update modifies a team's name or description.
func (s *TeamService) Update(ctx context.Context, actor, id string, req *model.TeamRequest) (*model.SupportTeam, error) {
	if actor == "" {
		return nil, ErrNotAuthenticated
	}
	return s.db.UpdateTeam(ctx, id, req)
}

// Delete removes a team and its memberships.
func (s *TeamService) Delete(ctx context.Context, actor, id string) error {
	if actor == "" {
		return ErrNotAuthenticated
	}
	return s.db.DeleteTeam(ctx, id)
}

// AddMember adds a user to a team, updating the role if already a member.
func (s *TeamService) AddMember(ctx context.Context, actor, teamID string, req *model.AddTeamMemberRequest) (*model.TeamMember, error) {
	if actor == "" {
		return nil, ErrNotAuthenticated
	}

	if _, err := s.db.GetTeam(ctx, teamID); err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = model.RoleMember
	}
	member := &model.TeamMember{
		TeamID:    teamID,
		UserID:    req.UserID,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.db.AddTeamMember(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to add team member: %w", err)
	}
	return member, nil
}

// RemoveMember removes a user from a team.
func (s *TeamService) RemoveMember(ctx context.Context, actor, teamID, userID string) error {
	if actor == "" {
		return ErrNotAuthenticated
	}
	return s.db.RemoveTeamMember(ctx, teamID, userID)
}

// Members lists the members of a team.
func (s *TeamService) Members(ctx context.Context, teamID string) ([]model.TeamMember, error) {
	return s.db.ListTeamMembers(ctx, teamID)
}
