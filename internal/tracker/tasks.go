package tracker

import (
	"context"
	"fmt"

	"github.com/imkarma/trophy/internal/recurrence"
	"github.com/imkarma/trophy/internal/store"
)

// TaskInput describes a new task. TotalRequired is only read for amount
// tasks, where it is the quota; for every other kind it is derived.
type TaskInput struct {
	Title         string          `json:"title"`
	RepeatType    string          `json:"repeat_type"`
	TargetCount   int             `json:"target_count"`
	TotalRequired int             `json:"total_required"`
	StartDate     recurrence.Date `json:"start_date"`
	EndDate       recurrence.Date `json:"end_date"`
}

// TaskPatch changes some fields of a task. Nil fields keep their stored
// value. A non-nil zero EndDate clears the end date.
type TaskPatch struct {
	Title         *string          `json:"title"`
	RepeatType    *string          `json:"repeat_type"`
	TargetCount   *int             `json:"target_count"`
	TotalRequired *int             `json:"total_required"`
	StartDate     *recurrence.Date `json:"start_date"`
	EndDate       *recurrence.Date `json:"end_date"`
}

// CreateTask adds a task to an active accomplishment. The start date
// defaults to today.
func (s *Service) CreateTask(ctx context.Context, username string, accomplishmentID int64, in TaskInput) (*store.Task, error) {
	title, err := cleanTitle(in.Title)
	if err != nil {
		return nil, err
	}
	kind, err := recurrence.ParseKind(in.RepeatType)
	if err != nil {
		return nil, err
	}

	t := &store.Task{
		AccomplishmentID: accomplishmentID,
		Title:            title,
		RepeatType:       kind,
		TargetCount:      in.TargetCount,
		TotalRequired:    in.TotalRequired,
		StartDate:        in.StartDate,
		EndDate:          in.EndDate,
	}
	if t.StartDate.IsZero() {
		t.StartDate = s.Today()
	}
	if err := applyRule(t); err != nil {
		return nil, err
	}
	if err := s.store.CreateTask(ctx, username, t); err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateTask merges p into the stored task and recomputes total_required.
func (s *Service) UpdateTask(ctx context.Context, username string, id int64, p TaskPatch) (*store.Task, error) {
	return s.store.UpdateTask(ctx, username, id, func(t *store.Task) error {
		if p.Title != nil {
			title, err := cleanTitle(*p.Title)
			if err != nil {
				return err
			}
			t.Title = title
		}
		if p.RepeatType != nil {
			kind, err := recurrence.ParseKind(*p.RepeatType)
			if err != nil {
				return err
			}
			t.RepeatType = kind
			if kind == recurrence.KindDaily && p.TargetCount == nil {
				t.TargetCount = 1
			}
		}
		if p.TargetCount != nil {
			t.TargetCount = *p.TargetCount
		}
		if p.TotalRequired != nil {
			t.TotalRequired = *p.TotalRequired
		}
		if p.StartDate != nil {
			t.StartDate = *p.StartDate
		}
		if p.EndDate != nil {
			t.EndDate = *p.EndDate
		}
		return applyRule(t)
	})
}

// applyRule validates t's rule and stores the derived total. For amount
// tasks TotalRequired already holds the quota on entry.
func applyRule(t *store.Task) error {
	if t.TargetCount == 0 {
		t.TargetCount = 1
	}
	total, err := recurrence.ComputeTotalRequired(t.Rule())
	if err != nil {
		return err
	}
	t.TotalRequired = total
	return nil
}

// DeleteTask removes a task and its completion history.
func (s *Service) DeleteTask(ctx context.Context, username string, id int64) error {
	return s.store.DeleteTask(ctx, username, id)
}

// CheckTask records a completion for the current calendar day.
func (s *Service) CheckTask(ctx context.Context, username string, id int64) (*store.CheckResult, error) {
	now := s.now()
	return s.store.RecordCompletion(ctx, username, id, recurrence.Today(now, s.loc), now)
}

// TaskLog returns a task's completion events, oldest first.
func (s *Service) TaskLog(ctx context.Context, username string, id int64) ([]store.Completion, error) {
	if _, err := s.store.GetTask(ctx, username, id); err != nil {
		return nil, err
	}
	return s.store.ListCompletions(ctx, id)
}

// GetTask returns one task with its current progress.
func (s *Service) GetTask(ctx context.Context, username string, id int64) (*TaskView, error) {
	t, err := s.store.GetTask(ctx, username, id)
	if err != nil {
		return nil, err
	}
	l, err := s.store.Ledger(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	v := newTaskView(*t, l, s.Today())
	return &v, nil
}
