package store

import (
	"context"
	"fmt"
	"time"

	"github.com/imkarma/trophy/internal/recurrence"
)

// RecordCompletion checks off a task for the calendar day today. The
// eligibility check and the insert share one write lock, so two concurrent
// check-offs for the same period cannot both succeed. When the check-off
// finishes the last open task of its accomplishment, the accomplishment is
// completed in the same transaction.
func (s *Store) RecordCompletion(ctx context.Context, username string, taskID int64, today recurrence.Date, at time.Time) (*CheckResult, error) {
	var out *CheckResult
	err := s.withImmediate(ctx, func(q querier) error {
		t, err := getTask(ctx, q, username, taskID)
		if err != nil {
			return err
		}
		if t.AccomplishmentCompleted {
			return fmt.Errorf("task #%d: %w", taskID, ErrLocked)
		}

		ledger, err := loadLedger(ctx, q, taskID)
		if err != nil {
			return err
		}
		progress, err := recurrence.Record(t.Rule(), t.TotalRequired, ledger, today)
		if err != nil {
			return fmt.Errorf("task #%d: %w", taskID, err)
		}

		_, err = q.ExecContext(ctx,
			`INSERT INTO task_completions (task_id, completed_date, completed_at) VALUES (?, ?, ?)`,
			taskID, today.String(), at.UTC(),
		)
		if err != nil {
			return fmt.Errorf("insert completion: %w", err)
		}

		out = &CheckResult{
			Task:            *t,
			Progress:        progress,
			CompletionCount: ledger.TotalCount(),
		}
		if !progress.Complete {
			return nil
		}
		ready, err := accomplishmentReady(ctx, q, t.AccomplishmentID)
		if err != nil {
			return err
		}
		if ready {
			if _, err := markAccomplishmentCompleted(ctx, q, t.AccomplishmentID, at); err != nil {
				return err
			}
			out.AccomplishmentCompleted = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListCompletions returns a task's ledger rows, oldest first.
// Ownership of the task is the caller's responsibility.
func (s *Store) ListCompletions(ctx context.Context, taskID int64) ([]Completion, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT completion_id, task_id, completed_date, completed_at
		 FROM task_completions WHERE task_id = ?
		 ORDER BY completed_date, completion_id`, taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("query completions: %w", err)
	}
	defer rows.Close()

	var out []Completion
	for rows.Next() {
		var c Completion
		var day string
		if err := rows.Scan(&c.ID, &c.TaskID, &day, &c.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		if c.CompletedDate, err = recurrence.ParseDate(day); err != nil {
			return nil, fmt.Errorf("completion #%d: %w", c.ID, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// LedgersByGoal returns the completion ledger of every task under a goal,
// keyed by task id. Tasks with no completions are absent from the map.
func (s *Store) LedgersByGoal(ctx context.Context, goalID int64) (map[int64]*recurrence.Ledger, error) {
	return loadLedgers(ctx, s.db,
		`SELECT c.task_id, c.completed_date
		 FROM task_completions c
		 JOIN tasks t ON t.task_id = c.task_id
		 JOIN accomplishments a ON a.accomplishment_id = t.accomplishment_id
		 WHERE a.goal_id = ?
		 ORDER BY c.completed_date, c.completion_id`, goalID)
}

// Ledger returns the completion ledger of one task.
func (s *Store) Ledger(ctx context.Context, taskID int64) (*recurrence.Ledger, error) {
	return loadLedger(ctx, s.db, taskID)
}

func loadLedger(ctx context.Context, q querier, taskID int64) (*recurrence.Ledger, error) {
	ledgers, err := loadLedgers(ctx, q,
		`SELECT task_id, completed_date FROM task_completions
		 WHERE task_id = ? ORDER BY completed_date, completion_id`, taskID)
	if err != nil {
		return nil, err
	}
	if l, ok := ledgers[taskID]; ok {
		return l, nil
	}
	return recurrence.NewLedger(), nil
}

func loadLedgers(ctx context.Context, q querier, query string, args ...any) (map[int64]*recurrence.Ledger, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query ledger: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]*recurrence.Ledger)
	for rows.Next() {
		var taskID int64
		var day string
		if err := rows.Scan(&taskID, &day); err != nil {
			return nil, fmt.Errorf("scan ledger: %w", err)
		}
		d, err := recurrence.ParseDate(day)
		if err != nil {
			return nil, fmt.Errorf("task #%d ledger: %w", taskID, err)
		}
		l, ok := out[taskID]
		if !ok {
			l = recurrence.NewLedger()
			out[taskID] = l
		}
		l.Append(d)
	}
	return out, rows.Err()
}

// taskProgress evaluates each task against its ledger.
func taskProgress(tasks []Task, ledgers map[int64]*recurrence.Ledger) []recurrence.Progress {
	out := make([]recurrence.Progress, 0, len(tasks))
	for i := range tasks {
		out = append(out, tasks[i].Progress(ledgers[tasks[i].ID]))
	}
	return out
}

// CompleteAccomplishment marks an accomplishment completed once every one
// of its tasks is complete. A completed accomplishment is locked.
func (s *Store) CompleteAccomplishment(ctx context.Context, username string, id int64, at time.Time) (*Accomplishment, error) {
	var out *Accomplishment
	err := s.withImmediate(ctx, func(q querier) error {
		acc, err := getAccomplishment(ctx, q, username, id)
		if err != nil {
			return err
		}
		if acc.IsCompleted {
			return fmt.Errorf("accomplishment #%d: %w", id, ErrAlreadyCompleted)
		}

		var n int
		if err := q.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM tasks WHERE accomplishment_id = ?`, id,
		).Scan(&n); err != nil {
			return fmt.Errorf("count tasks: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("accomplishment #%d has no tasks: %w", id, ErrNotReady)
		}
		ready, err := accomplishmentReady(ctx, q, id)
		if err != nil {
			return err
		}
		if !ready {
			return fmt.Errorf("accomplishment #%d: %w", id, ErrNotReady)
		}

		done, err := markAccomplishmentCompleted(ctx, q, id, at)
		if err != nil {
			return err
		}
		acc.IsCompleted = true
		acc.CompletedAt = &done
		out = acc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// accomplishmentReady reports whether an accomplishment has at least one
// task and every task is complete.
func accomplishmentReady(ctx context.Context, q querier, id int64) (bool, error) {
	tasks, err := listTasks(ctx, q, tasksByAccomplishmentQuery, id)
	if err != nil {
		return false, err
	}
	ledgers, err := loadLedgers(ctx, q,
		`SELECT c.task_id, c.completed_date
		 FROM task_completions c
		 JOIN tasks t ON t.task_id = c.task_id
		 WHERE t.accomplishment_id = ?
		 ORDER BY c.completed_date, c.completion_id`, id)
	if err != nil {
		return false, err
	}
	return recurrence.AccomplishmentFullyDone(taskProgress(tasks, ledgers)), nil
}

func markAccomplishmentCompleted(ctx context.Context, q querier, id int64, at time.Time) (time.Time, error) {
	done := at.UTC()
	if _, err := q.ExecContext(ctx,
		`UPDATE accomplishments SET is_completed = 1, completed_at = ? WHERE accomplishment_id = ?`,
		done, id,
	); err != nil {
		return time.Time{}, fmt.Errorf("complete accomplishment: %w", err)
	}
	return done, nil
}

// CompleteGoal marks a goal completed. Every accomplishment must be
// completed or have all of its tasks complete, and the goal must have at
// least one accomplishment.
func (s *Store) CompleteGoal(ctx context.Context, username string, id int64, at time.Time) (*Goal, error) {
	var out *Goal
	err := s.withImmediate(ctx, func(q querier) error {
		goal, err := getGoal(ctx, q, username, id)
		if err != nil {
			return err
		}
		if goal.IsCompleted {
			return fmt.Errorf("goal #%d: %w", id, ErrAlreadyCompleted)
		}

		accs, err := listAccomplishments(ctx, q, id)
		if err != nil {
			return err
		}
		if len(accs) == 0 {
			return fmt.Errorf("goal #%d has no accomplishments: %w", id, ErrNotReady)
		}
		tasks, err := listTasks(ctx, q,
			`SELECT `+taskColumns+`, a.goal_id, a.is_completed
			 FROM tasks t
			 JOIN accomplishments a ON a.accomplishment_id = t.accomplishment_id
			 WHERE a.goal_id = ? ORDER BY t.task_id`, id)
		if err != nil {
			return err
		}
		ledgers, err := loadLedgers(ctx, q,
			`SELECT c.task_id, c.completed_date
			 FROM task_completions c
			 JOIN tasks t ON t.task_id = c.task_id
			 JOIN accomplishments a ON a.accomplishment_id = t.accomplishment_id
			 WHERE a.goal_id = ?
			 ORDER BY c.completed_date, c.completion_id`, id)
		if err != nil {
			return err
		}
		if !recurrence.GoalFullyDone(AccomplishmentStates(accs, tasks, ledgers)) {
			return fmt.Errorf("goal #%d: %w", id, ErrNotReady)
		}

		done := at.UTC()
		if _, err := q.ExecContext(ctx,
			`UPDATE goals SET is_completed = 1, completed_at = ? WHERE goal_id = ?`, done, id,
		); err != nil {
			return fmt.Errorf("complete goal: %w", err)
		}
		goal.IsCompleted = true
		goal.CompletedAt = &done
		out = goal
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AccomplishmentStates groups task progress by accomplishment, in the order
// of accs.
func AccomplishmentStates(accs []Accomplishment, tasks []Task, ledgers map[int64]*recurrence.Ledger) []recurrence.AccomplishmentState {
	byAcc := make(map[int64][]recurrence.Progress, len(accs))
	for i := range tasks {
		t := &tasks[i]
		byAcc[t.AccomplishmentID] = append(byAcc[t.AccomplishmentID], t.Progress(ledgers[t.ID]))
	}
	states := make([]recurrence.AccomplishmentState, 0, len(accs))
	for _, a := range accs {
		states = append(states, recurrence.AccomplishmentState{
			Completed: a.IsCompleted,
			Tasks:     byAcc[a.ID],
		})
	}
	return states
}
