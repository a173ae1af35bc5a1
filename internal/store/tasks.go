package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/imkarma/trophy/internal/recurrence"
)

// taskColumns is the standard column list for task queries.
const taskColumns = `t.task_id, t.accomplishment_id, t.title, t.repeat_type, t.target_count,
	t.total_required, t.start_date, t.end_date, t.created_at`

// CreateTask inserts t under an active accomplishment owned by username.
// The caller computes TotalRequired from the rule beforehand.
func (s *Store) CreateTask(ctx context.Context, username string, t *Task) error {
	return s.withImmediate(ctx, func(q querier) error {
		acc, err := activeAccomplishment(ctx, q, username, t.AccomplishmentID)
		if err != nil {
			return err
		}

		t.CreatedAt = time.Now().UTC()
		res, err := q.ExecContext(ctx,
			`INSERT INTO tasks (accomplishment_id, title, repeat_type, target_count, total_required, start_date, end_date, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			t.AccomplishmentID, t.Title, string(t.RepeatType), t.TargetCount, t.TotalRequired,
			t.StartDate.String(), nullDate(t.EndDate), t.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert task: %w", err)
		}
		t.ID, _ = res.LastInsertId()
		t.GoalID = acc.GoalID
		return nil
	})
}

// GetTask returns a task if its goal belongs to username.
func (s *Store) GetTask(ctx context.Context, username string, id int64) (*Task, error) {
	return getTask(ctx, s.db, username, id)
}

func getTask(ctx context.Context, q querier, username string, id int64) (*Task, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+taskColumns+`, a.goal_id, a.is_completed
		 FROM tasks t
		 JOIN accomplishments a ON a.accomplishment_id = t.accomplishment_id
		 JOIN goals g ON g.goal_id = a.goal_id
		 WHERE t.task_id = ? AND g.username = ?`, id, username,
	)
	var goalID int64
	var accCompleted int
	t, err := scanTask(row, &goalID, &accCompleted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("task #%d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	t.GoalID = goalID
	t.AccomplishmentCompleted = accCompleted != 0
	return t, nil
}

// ListTasksByGoal returns every task under a goal, oldest first.
func (s *Store) ListTasksByGoal(ctx context.Context, goalID int64) ([]Task, error) {
	return listTasks(ctx, s.db,
		`SELECT `+taskColumns+`, a.goal_id, a.is_completed
		 FROM tasks t
		 JOIN accomplishments a ON a.accomplishment_id = t.accomplishment_id
		 WHERE a.goal_id = ? ORDER BY t.task_id`, goalID)
}

// ListTasksByAccomplishment returns the tasks of one accomplishment.
func (s *Store) ListTasksByAccomplishment(ctx context.Context, accomplishmentID int64) ([]Task, error) {
	return listTasks(ctx, s.db, tasksByAccomplishmentQuery, accomplishmentID)
}

const tasksByAccomplishmentQuery = `SELECT ` + taskColumns + `, a.goal_id, a.is_completed
	FROM tasks t
	JOIN accomplishments a ON a.accomplishment_id = t.accomplishment_id
	WHERE t.accomplishment_id = ? ORDER BY t.task_id`

func listTasks(ctx context.Context, q querier, query string, args ...any) ([]Task, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var goalID int64
		var accCompleted int
		t, err := scanTask(rows, &goalID, &accCompleted)
		if err != nil {
			return nil, err
		}
		t.GoalID = goalID
		t.AccomplishmentCompleted = accCompleted != 0
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// UpdateTask loads an owned task, lets apply mutate it and writes the
// result back, all under one write lock. apply is responsible for keeping
// TotalRequired in step with the rule.
func (s *Store) UpdateTask(ctx context.Context, username string, id int64, apply func(t *Task) error) (*Task, error) {
	var out *Task
	err := s.withImmediate(ctx, func(q querier) error {
		t, err := getTask(ctx, q, username, id)
		if err != nil {
			return err
		}
		if t.AccomplishmentCompleted {
			return fmt.Errorf("task #%d: %w", id, ErrLocked)
		}
		if err := apply(t); err != nil {
			return err
		}
		_, err = q.ExecContext(ctx,
			`UPDATE tasks
			 SET title = ?, repeat_type = ?, target_count = ?, total_required = ?, start_date = ?, end_date = ?
			 WHERE task_id = ?`,
			t.Title, string(t.RepeatType), t.TargetCount, t.TotalRequired,
			t.StartDate.String(), nullDate(t.EndDate), id,
		)
		if err != nil {
			return fmt.Errorf("update task: %w", err)
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteTask removes a task and, by cascade, its completion ledger.
func (s *Store) DeleteTask(ctx context.Context, username string, id int64) error {
	return s.withImmediate(ctx, func(q querier) error {
		t, err := getTask(ctx, q, username, id)
		if err != nil {
			return err
		}
		if t.AccomplishmentCompleted {
			return fmt.Errorf("task #%d: %w", id, ErrLocked)
		}
		if _, err := q.ExecContext(ctx, `DELETE FROM tasks WHERE task_id = ?`, id); err != nil {
			return fmt.Errorf("delete task: %w", err)
		}
		return nil
	})
}

// scanTask scans the task columns followed by goal id and the
// accomplishment's completed flag.
func scanTask(row scanner, goalID *int64, accCompleted *int) (*Task, error) {
	var t Task
	var kind, start string
	var end sql.NullString
	err := row.Scan(
		&t.ID, &t.AccomplishmentID, &t.Title, &kind, &t.TargetCount,
		&t.TotalRequired, &start, &end, &t.CreatedAt,
		goalID, accCompleted,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}
	t.RepeatType = recurrence.Kind(kind)
	if t.StartDate, err = recurrence.ParseDate(start); err != nil {
		return nil, fmt.Errorf("task #%d start_date: %w", t.ID, err)
	}
	if end.Valid && end.String != "" {
		if t.EndDate, err = recurrence.ParseDate(end.String); err != nil {
			return nil, fmt.Errorf("task #%d end_date: %w", t.ID, err)
		}
	}
	return &t, nil
}

func nullDate(d recurrence.Date) any {
	if d.IsZero() {
		return nil
	}
	return d.String()
}
