package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/balcaohq/platform/internal/model"
)

// InsertWelcomeMessage stores a new welcome message.
func (db *DB) InsertWelcomeMessage(ctx context.Context, w *model.WelcomeMessage) error {
	defer track("welcome.insert")()
	_, err := db.ExecContext(ctx, `
		INSERT INTO welcome_messages (id, team_id, template, active, start_time, end_time, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		w.ID, nullStr(w.TeamID), w.Template, w.Active, nullStr(w.StartTime), nullStr(w.EndTime), w.CreatedAt, w.UpdatedAt)
	return err
}

// UpdateWelcomeMessage replaces the mutable fields of a welcome message.
func (db *DB) UpdateWelcomeMessage(ctx context.Context, id string, req *model.WelcomeMessageRequest) (*model.WelcomeMessage, error) {
	defer track("welcome.update")()
	now := time.Now().UTC()
	res, err := db.ExecContext(ctx, `
		UPDATE welcome_messages
		SET team_id = ?, template = ?, active = ?, start_time = ?, end_time = ?, updated_at = ?
		WHERE id = ?`,
		nullStr(req.TeamID), req.Template, req.Active, nullStr(req.StartTime), nullStr(req.EndTime), now, id)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("welcome message: %w", ErrNotFound)
	}
	return db.GetWelcomeMessage(ctx, id)
}

// GetWelcomeMessage retrieves a welcome message by id.
func (db *DB) GetWelcomeMessage(ctx context.Context, id string) (*model.WelcomeMessage, error) {
	defer track("welcome.get")()
	row := db.QueryRowContext(ctx, `
		SELECT id, team_id, template, active, start_time, end_time, created_at, updated_at
		FROM welcome_messages WHERE id = ?`, id)
	w, err := scanWelcome(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("welcome message: %w", ErrNotFound)
	}
	return w, err
}

// ListWelcomeMessages returns all welcome messages, newest first.
func (db *DB) ListWelcomeMessages(ctx context.Context) ([]model.WelcomeMessage, error) {
	defer track("welcome.list")()
	rows, err := db.QueryContext(ctx, `
		SELECT id, team_id, template, active, start_time, end_time, created_at, updated_at
		FROM welcome_messages ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var msgs []model.WelcomeMessage
	for rows.Next() {
		w, err := scanWelcome(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, *w)
	}
	return msgs, rows.Err()
}

// ListWelcomeMessagesForTeam returns active welcome messages that apply to a
// team: team-specific rows plus the all-teams rows (NULL team_id).
func (db *DB) ListWelcomeMessagesForTeam(ctx context.Context, teamID *string) ([]model.WelcomeMessage, error) {
	defer track("welcome.list_for_team")()
	query := `
		SELECT id, team_id, template, active, start_time, end_time, created_at, updated_at
		FROM welcome_messages WHERE active = 1 AND (team_id IS NULL`
	args := []any{}
	if teamID != nil {
		query += ` OR team_id = ?`
		args = append(args, *teamID)
	}
	query += `) ORDER BY team_id IS NULL, created_at DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var msgs []model.WelcomeMessage
	for rows.Next() {
		w, err := scanWelcome(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, *w)
	}
	return msgs, rows.Err()
}

// DeleteWelcomeMessage removes a welcome message.
func (db *DB) DeleteWelcomeMessage(ctx context.Context, id string) error {
	defer track("welcome.delete")()
	res, err := db.ExecContext(ctx, `DELETE FROM welcome_messages WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("welcome message: %w", ErrNotFound)
	}
	return nil
}

func scanWelcome(row rowScanner) (*model.WelcomeMessage, error) {
	var w model.WelcomeMessage
	var team, start, end sql.NullString
	err := row.Scan(&w.ID, &team, &w.Template, &w.Active, &start, &end, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	w.TeamID = strPtr(team)
	w.StartTime = strPtr(start)
	w.EndTime = strPtr(end)
	return &w, nil
}
