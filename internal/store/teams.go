package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/balcaohq/platform/internal/model"
)

// InsertTeam stores a new support team.
func (db *DB) InsertTeam(ctx context.Context, t *model.SupportTeam) error {
	defer track("teams.insert")()
	_, err := db.ExecContext(ctx, `
		INSERT INTO support_teams (id, name, description, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Description, t.CreatedBy, t.CreatedAt, t.UpdatedAt)
	return err
}

// GetTeam retrieves a team by id.
func (db *DB) GetTeam(ctx context.Context, id string) (*model.SupportTeam, error) {
	defer track("teams.get")()
	var t model.SupportTeam
	err := db.QueryRowContext(ctx, `
		SELECT id, name, description, created_by, created_at, updated_at
		FROM support_teams WHERE id = ?`, id).
		Scan(&t.ID, &t.Name, &t.Description, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("team: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTeams returns all teams, by name.
func (db *DB) ListTeams(ctx context.Context) ([]model.SupportTeam, error) {
	defer track("teams.list")()
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, description, created_by, created_at, updated_at
		FROM support_teams ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var teams []model.SupportTeam
	for rows.Next() {
		var t model.SupportTeam
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

// UpdateTeam replaces a team's name and description.
func (db *DB) UpdateTeam(ctx context.Context, id string, req *model.TeamRequest) (*model.SupportTeam, error) {
	defer track("teams.update")()
	res, err := db.ExecContext(ctx, `
		UPDATE support_teams SET name = ?, description = ?, updated_at = ? WHERE id = ?`,
		req.Name, req.Description, time.Now().UTC(), id)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("team: %w", ErrNotFound)
	}
	return db.GetTeam(ctx, id)
}

// DeleteTeam removes a team and its memberships.
func (db *DB) DeleteTeam(ctx context.Context, id string) error {
	defer track("teams.delete")()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM team_members WHERE team_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM support_teams WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("team: %w", ErrNotFound)
	}
	return tx.Commit()
}

// AddTeamMember adds or updates a membership.
func (db *DB) AddTeamMember(ctx context.Context, m *model.TeamMember) error {
	defer track("team_members.add")()
	_, err := db.ExecContext(ctx, `
		INSERT INTO team_members (team_id, user_id, role, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(team_id, user_id) DO UPDATE SET role = excluded.role`,
		m.TeamID, m.UserID, m.Role, m.CreatedAt)
	return err
}

// RemoveTeamMember removes a membership.
func (db *DB) RemoveTeamMember(ctx context.Context, teamID, userID string) error {
	defer track("team_members.remove")()
	res, err := db.ExecContext(ctx, `
		DELETE FROM team_members WHERE team_id = ? AND user_id = ?`, teamID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("team member: %w", ErrNotFound)
	}
	return nil
}

// ListTeamMembers returns the members of a team.
func (db *DB) ListTeamMembers(ctx context.Context, teamID string) ([]model.TeamMember, error) {
	defer track("team_members.list")()
	rows, err := db.QueryContext(ctx, `
		SELECT team_id, user_id, role, created_at
		FROM team_members WHERE team_id = ? ORDER BY created_at ASC`, teamID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var members []model.TeamMember
	for rows.Next() {
		var m model.TeamMember
		if err := rows.Scan(&m.TeamID, &m.UserID, &m.Role, &m.CreatedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}
