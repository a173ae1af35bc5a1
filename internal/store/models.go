package store

import (
	"time"

	"github.com/imkarma/trophy/internal/recurrence"
)

// User is an account that owns goals.
type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session is a logged-in browser session. Only the hash of the token is
// stored.
type Session struct {
	TokenHash string    `json:"-"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Goal is the top of the hierarchy: goal → accomplishments → tasks.
type Goal struct {
	ID          int64      `json:"goal_id"`
	Username    string     `json:"-"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Accomplishment groups tasks under a goal. Once completed it is locked.
type Accomplishment struct {
	ID          int64      `json:"accomplishment_id"`
	GoalID      int64      `json:"goal_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Task is a checkable item with a repetition rule. TotalRequired is derived
// from the rule and only ever written together with it.
type Task struct {
	ID               int64           `json:"task_id"`
	AccomplishmentID int64           `json:"accomplishment_id"`
	Title            string          `json:"title"`
	RepeatType       recurrence.Kind `json:"repeat_type"`
	TargetCount      int             `json:"target_count"`
	TotalRequired    int             `json:"total_required"`
	StartDate        recurrence.Date `json:"start_date"`
	EndDate          recurrence.Date `json:"end_date"`
	CreatedAt        time.Time       `json:"created_at"`

	// Filled by ownership-checked lookups.
	GoalID                  int64 `json:"goal_id,omitempty"`
	AccomplishmentCompleted bool  `json:"-"`
}

// Rule rebuilds the repetition rule stored on t. For amount tasks the
// stored total is the explicit quota.
func (t Task) Rule() recurrence.Rule {
	r := recurrence.Rule{
		Kind:        t.RepeatType,
		StartDate:   t.StartDate,
		EndDate:     t.EndDate,
		TargetCount: t.TargetCount,
	}
	if t.RepeatType == recurrence.KindAmount {
		r.Amount = t.TotalRequired
	}
	return r
}

// Progress evaluates t against its ledger.
func (t Task) Progress(l *recurrence.Ledger) recurrence.Progress {
	return recurrence.Evaluate(t.Rule(), t.TotalRequired, l)
}

// Completion is one row of the append-only completion ledger.
type Completion struct {
	ID            int64           `json:"completion_id"`
	TaskID        int64           `json:"task_id"`
	CompletedDate recurrence.Date `json:"completed_date"`
	CompletedAt   time.Time       `json:"completed_at"`
}

// CheckResult is returned by a successful check-off.
type CheckResult struct {
	Task            Task                `json:"task"`
	Progress        recurrence.Progress `json:"progress"`
	CompletionCount int                 `json:"completion_count"`

	// AccomplishmentCompleted is set when this check-off completed the
	// task's accomplishment.
	AccomplishmentCompleted bool `json:"accomplishment_completed"`
}
