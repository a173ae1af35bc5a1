// Package tracker is the goal tracker's application layer. It owns input
// validation, derives total_required from task rules and builds the goal
// board read model on top of the store and the recurrence engine.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/imkarma/trophy/internal/recurrence"
	"github.com/imkarma/trophy/internal/store"
)

var (
	// ErrInvalidInput is returned for missing or malformed fields.
	ErrInvalidInput = errors.New("invalid input")

	ErrNotFound         = store.ErrNotFound
	ErrLocked           = store.ErrLocked
	ErrAlreadyCompleted = store.ErrAlreadyCompleted
	ErrNotReady         = store.ErrNotReady
)

// Service runs tracker operations on behalf of a user.
type Service struct {
	store *store.Store
	loc   *time.Location
	now   func() time.Time
}

// New creates a Service. Calendar days are taken in loc; nil means the
// local zone.
func New(s *store.Store, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{store: s, loc: loc, now: time.Now}
}

// SetClock replaces the wall clock, for tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Location returns the zone calendar days are computed in.
func (s *Service) Location() *time.Location {
	return s.loc
}

// Today is the current calendar day in the service's zone.
func (s *Service) Today() recurrence.Date {
	return recurrence.Today(s.now(), s.loc)
}

func cleanTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("%w: title required", ErrInvalidInput)
	}
	return title, nil
}

// --- Goals ---

// CreateGoal starts a new goal.
func (s *Service) CreateGoal(ctx context.Context, username, title, description string) (*store.Goal, error) {
	title, err := cleanTitle(title)
	if err != nil {
		return nil, err
	}
	return s.store.CreateGoal(ctx, username, title, strings.TrimSpace(description))
}

// ListGoals returns the user's goals, newest first.
func (s *Service) ListGoals(ctx context.Context, username string) ([]store.Goal, error) {
	return s.store.ListGoals(ctx, username)
}

// GetGoal returns one goal.
func (s *Service) GetGoal(ctx context.Context, username string, id int64) (*store.Goal, error) {
	return s.store.GetGoal(ctx, username, id)
}

// UpdateGoal renames a goal.
func (s *Service) UpdateGoal(ctx context.Context, username string, id int64, title, description string) (*store.Goal, error) {
	title, err := cleanTitle(title)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateGoal(ctx, username, id, title, strings.TrimSpace(description)); err != nil {
		return nil, err
	}
	return s.store.GetGoal(ctx, username, id)
}

// DeleteGoal removes a goal with everything under it.
func (s *Service) DeleteGoal(ctx context.Context, username string, id int64) error {
	return s.store.DeleteGoal(ctx, username, id)
}

// CompleteGoal moves a goal to the shelf once every accomplishment is done.
func (s *Service) CompleteGoal(ctx context.Context, username string, id int64) (*store.Goal, error) {
	return s.store.CompleteGoal(ctx, username, id, s.now())
}

// Shelf returns completed goals, most recently completed first.
func (s *Service) Shelf(ctx context.Context, username string) ([]store.Goal, error) {
	return s.store.ListCompletedGoals(ctx, username)
}

// --- Accomplishments ---

// CreateAccomplishment adds an accomplishment to an open goal.
func (s *Service) CreateAccomplishment(ctx context.Context, username string, goalID int64, title, description string) (*store.Accomplishment, error) {
	title, err := cleanTitle(title)
	if err != nil {
		return nil, err
	}
	return s.store.CreateAccomplishment(ctx, username, goalID, title, strings.TrimSpace(description))
}

// UpdateAccomplishment renames an active accomplishment.
func (s *Service) UpdateAccomplishment(ctx context.Context, username string, id int64, title, description string) (*store.Accomplishment, error) {
	title, err := cleanTitle(title)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateAccomplishment(ctx, username, id, title, strings.TrimSpace(description)); err != nil {
		return nil, err
	}
	return s.store.GetAccomplishment(ctx, username, id)
}

// DeleteAccomplishment removes an active accomplishment.
func (s *Service) DeleteAccomplishment(ctx context.Context, username string, id int64) error {
	return s.store.DeleteAccomplishment(ctx, username, id)
}

// CompleteAccomplishment locks an accomplishment whose tasks are all
// complete.
func (s *Service) CompleteAccomplishment(ctx context.Context, username string, id int64) (*store.Accomplishment, error) {
	return s.store.CompleteAccomplishment(ctx, username, id, s.now())
}
