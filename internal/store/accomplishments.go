package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const accomplishmentColumns = `a.accomplishment_id, a.goal_id, a.title, a.description, a.created_at, a.is_completed, a.completed_at`

// CreateAccomplishment adds an accomplishment under a goal owned by
// username. Completed goals accept no new accomplishments.
func (s *Store) CreateAccomplishment(ctx context.Context, username string, goalID int64, title, description string) (*Accomplishment, error) {
	var acc *Accomplishment
	err := s.withImmediate(ctx, func(q querier) error {
		goal, err := getGoal(ctx, q, username, goalID)
		if err != nil {
			return err
		}
		if goal.IsCompleted {
			return fmt.Errorf("goal #%d: %w", goalID, ErrLocked)
		}

		now := time.Now().UTC()
		res, err := q.ExecContext(ctx,
			`INSERT INTO accomplishments (goal_id, title, description, created_at) VALUES (?, ?, ?, ?)`,
			goalID, title, description, now,
		)
		if err != nil {
			return fmt.Errorf("insert accomplishment: %w", err)
		}
		id, _ := res.LastInsertId()
		acc = &Accomplishment{
			ID:          id,
			GoalID:      goalID,
			Title:       title,
			Description: description,
			CreatedAt:   now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return acc, nil
}

// GetAccomplishment returns an accomplishment if its goal belongs to
// username.
func (s *Store) GetAccomplishment(ctx context.Context, username string, id int64) (*Accomplishment, error) {
	return getAccomplishment(ctx, s.db, username, id)
}

func getAccomplishment(ctx context.Context, q querier, username string, id int64) (*Accomplishment, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+accomplishmentColumns+`
		 FROM accomplishments a
		 JOIN goals g ON g.goal_id = a.goal_id
		 WHERE a.accomplishment_id = ? AND g.username = ?`, id, username,
	)
	a, err := scanAccomplishment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("accomplishment #%d: %w", id, ErrNotFound)
	}
	return a, err
}

// ListAccomplishments returns every accomplishment of a goal, newest first.
// Ownership of the goal is the caller's responsibility.
func (s *Store) ListAccomplishments(ctx context.Context, goalID int64) ([]Accomplishment, error) {
	return listAccomplishments(ctx, s.db, goalID)
}

func listAccomplishments(ctx context.Context, q querier, goalID int64) ([]Accomplishment, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+accomplishmentColumns+` FROM accomplishments a
		 WHERE a.goal_id = ? ORDER BY a.created_at DESC, a.accomplishment_id DESC`, goalID,
	)
	if err != nil {
		return nil, fmt.Errorf("query accomplishments: %w", err)
	}
	defer rows.Close()

	var accs []Accomplishment
	for rows.Next() {
		a, err := scanAccomplishment(rows)
		if err != nil {
			return nil, err
		}
		accs = append(accs, *a)
	}
	return accs, rows.Err()
}

// UpdateAccomplishment renames an active accomplishment.
func (s *Store) UpdateAccomplishment(ctx context.Context, username string, id int64, title, description string) error {
	return s.withImmediate(ctx, func(q querier) error {
		if _, err := activeAccomplishment(ctx, q, username, id); err != nil {
			return err
		}
		_, err := q.ExecContext(ctx,
			`UPDATE accomplishments SET title = ?, description = ? WHERE accomplishment_id = ?`,
			title, description, id,
		)
		if err != nil {
			return fmt.Errorf("update accomplishment: %w", err)
		}
		return nil
	})
}

// DeleteAccomplishment removes an active accomplishment and its tasks.
func (s *Store) DeleteAccomplishment(ctx context.Context, username string, id int64) error {
	return s.withImmediate(ctx, func(q querier) error {
		if _, err := activeAccomplishment(ctx, q, username, id); err != nil {
			return err
		}
		if _, err := q.ExecContext(ctx, `DELETE FROM accomplishments WHERE accomplishment_id = ?`, id); err != nil {
			return fmt.Errorf("delete accomplishment: %w", err)
		}
		return nil
	})
}

// activeAccomplishment loads an owned accomplishment and rejects it with
// ErrLocked if it is already completed.
func activeAccomplishment(ctx context.Context, q querier, username string, id int64) (*Accomplishment, error) {
	a, err := getAccomplishment(ctx, q, username, id)
	if err != nil {
		return nil, err
	}
	if a.IsCompleted {
		return nil, fmt.Errorf("accomplishment #%d: %w", id, ErrLocked)
	}
	return a, nil
}

func scanAccomplishment(row scanner) (*Accomplishment, error) {
	var a Accomplishment
	var description sql.NullString
	var completed int
	var completedAt sql.NullTime
	err := row.Scan(&a.ID, &a.GoalID, &a.Title, &description, &a.CreatedAt, &completed, &completedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan accomplishment: %w", err)
	}
	a.Description = description.String
	a.IsCompleted = completed != 0
	a.CompletedAt = nullTimePtr(completedAt)
	return &a, nil
}
