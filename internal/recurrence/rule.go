package recurrence

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidRule is returned when a repetition rule is missing a required
	// field or its window is inverted.
	ErrInvalidRule = errors.New("invalid repetition rule")

	// ErrDuplicatePeriodCompletion is returned when the current period (or the
	// single lifetime slot of a one-off task) is already satisfied.
	ErrDuplicatePeriodCompletion = errors.New("already completed for this period")

	// ErrQuotaExceeded is returned when an amount task has already reached its
	// quota.
	ErrQuotaExceeded = errors.New("completion quota already reached")
)

// Kind is how a task repeats.
type Kind string

const (
	KindNone   Kind = "none"   // single checkbox
	KindDaily  Kind = "daily"  // every day until the end date
	KindWeekly Kind = "weekly" // target_count times per week until the end date
	KindAmount Kind = "amount" // fixed quota, no calendar
)

// ParseKind normalizes a user-supplied repeat type. An empty string means
// KindNone; "x" is accepted as an alias of KindAmount.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return KindNone, nil
	case "daily":
		return KindDaily, nil
	case "weekly":
		return KindWeekly, nil
	case "amount", "x":
		return KindAmount, nil
	}
	return "", fmt.Errorf("%w: unknown repeat type %q", ErrInvalidRule, s)
}

// Periodic reports whether completions of k are limited per calendar period.
func (k Kind) Periodic() bool {
	return k == KindDaily || k == KindWeekly
}

// Rule is the (kind, window, quota) tuple that controls how many times a
// task must be completed.
type Rule struct {
	Kind        Kind
	StartDate   Date
	EndDate     Date // zero when absent
	TargetCount int  // weekly quota; 0 means 1, daily allows at most 1
	Amount      int  // explicit quota for KindAmount
}

// PerPeriod returns the effective per-period quota.
func (r Rule) PerPeriod() int {
	if r.TargetCount <= 0 {
		return 1
	}
	return r.TargetCount
}

// Validate checks that r carries every field its kind needs.
func (r Rule) Validate() error {
	if r.TargetCount < 0 {
		return fmt.Errorf("%w: target_count must be positive", ErrInvalidRule)
	}
	switch r.Kind {
	case KindNone:
		return nil
	case KindDaily, KindWeekly:
		if r.Kind == KindDaily && r.TargetCount > 1 {
			return fmt.Errorf("%w: daily repeat allows one completion per day, got target_count %d", ErrInvalidRule, r.TargetCount)
		}
		if r.StartDate.IsZero() {
			return fmt.Errorf("%w: start_date required for %s repeat", ErrInvalidRule, r.Kind)
		}
		if r.EndDate.IsZero() {
			return fmt.Errorf("%w: end_date required for %s repeat", ErrInvalidRule, r.Kind)
		}
		if r.EndDate.Before(r.StartDate) {
			return fmt.Errorf("%w: end_date %s is before start_date %s", ErrInvalidRule, r.EndDate, r.StartDate)
		}
		return nil
	case KindAmount:
		if r.Amount < 1 {
			return fmt.Errorf("%w: amount must be at least 1", ErrInvalidRule)
		}
		return nil
	}
	return fmt.Errorf("%w: unknown repeat type %q", ErrInvalidRule, r.Kind)
}

// ComputeTotalRequired returns how many completions r needs over the task's
// lifetime. It never falls back to a default on bad input.
func ComputeTotalRequired(r Rule) (int, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}
	switch r.Kind {
	case KindDaily:
		return max(1, DaysBetweenInclusive(r.StartDate, r.EndDate)), nil
	case KindWeekly:
		return max(1, WeeksBetweenInclusive(r.StartDate, r.EndDate)*r.PerPeriod()), nil
	case KindAmount:
		return r.Amount, nil
	default:
		return 1, nil
	}
}
