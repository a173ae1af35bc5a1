package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const goalColumns = `goal_id, username, title, description, created_at, is_completed, completed_at`

// CreateGoal inserts a new goal owned by username.
func (s *Store) CreateGoal(ctx context.Context, username, title, description string) (*Goal, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO goals (username, title, description, created_at) VALUES (?, ?, ?, ?)`,
		username, title, description, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert goal: %w", err)
	}
	id, _ := res.LastInsertId()
	return &Goal{
		ID:          id,
		Username:    username,
		Title:       title,
		Description: description,
		CreatedAt:   now,
	}, nil
}

// GetGoal returns a goal if it belongs to username.
func (s *Store) GetGoal(ctx context.Context, username string, id int64) (*Goal, error) {
	return getGoal(ctx, s.db, username, id)
}

func getGoal(ctx context.Context, q querier, username string, id int64) (*Goal, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE goal_id = ? AND username = ?`, id, username,
	)
	g, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("goal #%d: %w", id, ErrNotFound)
	}
	return g, err
}

// ListGoals returns the user's goals, newest first.
func (s *Store) ListGoals(ctx context.Context, username string) ([]Goal, error) {
	return s.queryGoals(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE username = ? ORDER BY created_at DESC, goal_id DESC`, username)
}

// ListCompletedGoals returns the user's completed goals, most recently
// completed first.
func (s *Store) ListCompletedGoals(ctx context.Context, username string) ([]Goal, error) {
	return s.queryGoals(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE username = ? AND is_completed = 1
		 ORDER BY completed_at DESC, goal_id DESC`, username)
}

func (s *Store) queryGoals(ctx context.Context, query string, args ...any) ([]Goal, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query goals: %w", err)
	}
	defer rows.Close()

	var goals []Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, *g)
	}
	return goals, rows.Err()
}

// UpdateGoal changes a goal's title and description.
func (s *Store) UpdateGoal(ctx context.Context, username string, id int64, title, description string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE goals SET title = ?, description = ? WHERE goal_id = ? AND username = ?`,
		title, description, id, username,
	)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	return expectOne(res, fmt.Sprintf("goal #%d", id))
}

// DeleteGoal removes a goal and, by cascade, everything under it.
func (s *Store) DeleteGoal(ctx context.Context, username string, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM goals WHERE goal_id = ? AND username = ?`, id, username,
	)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	return expectOne(res, fmt.Sprintf("goal #%d", id))
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanGoal(row scanner) (*Goal, error) {
	var g Goal
	var description sql.NullString
	var completed int
	var completedAt sql.NullTime
	err := row.Scan(&g.ID, &g.Username, &g.Title, &description, &g.CreatedAt, &completed, &completedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan goal: %w", err)
	}
	g.Description = description.String
	g.IsCompleted = completed != 0
	g.CompletedAt = nullTimePtr(completedAt)
	return &g, nil
}
