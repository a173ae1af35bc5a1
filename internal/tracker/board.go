package tracker

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/imkarma/trophy/internal/recurrence"
	"github.com/imkarma/trophy/internal/store"
)

// TaskView is a task with its derived progress as of one calendar day.
type TaskView struct {
	store.Task
	CompletionCount int                 `json:"completion_count"`
	Progress        recurrence.Progress `json:"progress"`
	CanCompleteNow  bool                `json:"can_complete_now"`
}

func newTaskView(t store.Task, l *recurrence.Ledger, today recurrence.Date) TaskView {
	v := TaskView{
		Task:            t,
		CompletionCount: l.TotalCount(),
		Progress:        t.Progress(l),
	}
	// A completed accomplishment is locked, so none of its tasks can be
	// checked regardless of the ledger.
	v.CanCompleteNow = !t.AccomplishmentCompleted &&
		recurrence.CanCompleteNow(t.Rule(), t.TotalRequired, l, today)
	return v
}

// AccomplishmentView is an accomplishment with its tasks and summary.
type AccomplishmentView struct {
	store.Accomplishment
	Tasks             []TaskView         `json:"tasks"`
	CompletionSummary recurrence.Summary `json:"completion_summary"`
	FullyDone         bool               `json:"fully_done"`
}

// Board is the full read model of one goal.
type Board struct {
	store.Goal
	Accomplishments          []AccomplishmentView `json:"accomplishments"`
	CompletedAccomplishments []AccomplishmentView `json:"completed_accomplishments"`
	Summary                  recurrence.Summary   `json:"completion_summary"`
	FullyDone                bool                 `json:"fully_done"`
}

// AllAccomplishments returns active then completed accomplishments.
func (b *Board) AllAccomplishments() []AccomplishmentView {
	out := make([]AccomplishmentView, 0, len(b.Accomplishments)+len(b.CompletedAccomplishments))
	out = append(out, b.Accomplishments...)
	return append(out, b.CompletedAccomplishments...)
}

// GoalBoard loads a goal with every accomplishment and task and evaluates
// progress as of today.
func (s *Service) GoalBoard(ctx context.Context, username string, goalID int64, today recurrence.Date) (*Board, error) {
	goal, err := s.store.GetGoal(ctx, username, goalID)
	if err != nil {
		return nil, err
	}
	accs, err := s.store.ListAccomplishments(ctx, goalID)
	if err != nil {
		return nil, fmt.Errorf("load accomplishments: %w", err)
	}
	tasks, err := s.store.ListTasksByGoal(ctx, goalID)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	ledgers, err := s.store.LedgersByGoal(ctx, goalID)
	if err != nil {
		return nil, fmt.Errorf("load ledgers: %w", err)
	}

	byAcc := make(map[int64][]TaskView, len(accs))
	for _, t := range tasks {
		byAcc[t.AccomplishmentID] = append(byAcc[t.AccomplishmentID], newTaskView(t, ledgers[t.ID], today))
	}

	b := &Board{
		Goal:                     *goal,
		Accomplishments:          []AccomplishmentView{},
		CompletedAccomplishments: []AccomplishmentView{},
	}
	var all []recurrence.Progress
	for _, a := range accs {
		views := byAcc[a.ID]
		if views == nil {
			views = []TaskView{}
		}
		progress := make([]recurrence.Progress, len(views))
		for i, v := range views {
			progress[i] = v.Progress
		}
		all = append(all, progress...)

		av := AccomplishmentView{
			Accomplishment:    a,
			Tasks:             views,
			CompletionSummary: recurrence.AccomplishmentProgress(progress),
			FullyDone:         recurrence.AccomplishmentFullyDone(progress),
		}
		if a.IsCompleted {
			b.CompletedAccomplishments = append(b.CompletedAccomplishments, av)
		} else {
			b.Accomplishments = append(b.Accomplishments, av)
		}
	}

	b.Summary = recurrence.AccomplishmentProgress(all)
	b.FullyDone = len(accs) > 0 && recurrence.GoalFullyDone(store.AccomplishmentStates(accs, tasks, ledgers))
	return b, nil
}

// GoalCard is one tile of the goal overview.
type GoalCard struct {
	store.Goal
	Accomplishments int                `json:"accomplishments"`
	Completed       int                `json:"completed_accomplishments"`
	Summary         recurrence.Summary `json:"completion_summary"`
	FullyDone       bool               `json:"fully_done"`
}

// overviewWorkers bounds how many goal boards Overview loads at once.
const overviewWorkers = 4

// Overview builds a card for every goal of the user, newest first. Boards
// are loaded in parallel; card order follows ListGoals.
func (s *Service) Overview(ctx context.Context, username string) ([]GoalCard, error) {
	goals, err := s.store.ListGoals(ctx, username)
	if err != nil {
		return nil, err
	}
	today := s.Today()
	cards := make([]GoalCard, len(goals))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(overviewWorkers)
	for i, goal := range goals {
		g.Go(func() error {
			b, err := s.GoalBoard(gctx, username, goal.ID, today)
			if err != nil {
				return err
			}
			cards[i] = GoalCard{
				Goal:            b.Goal,
				Accomplishments: len(b.Accomplishments) + len(b.CompletedAccomplishments),
				Completed:       len(b.CompletedAccomplishments),
				Summary:         b.Summary,
				FullyDone:       b.FullyDone,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return cards, nil
}
