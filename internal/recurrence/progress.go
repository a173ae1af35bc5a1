package recurrence

import "fmt"

// Progress is the derived state of one task. It is recomputed from the
// ledger on every read and never stored.
type Progress struct {
	Done     int  `json:"done"`
	Total    int  `json:"total"`
	Complete bool `json:"complete"`
}

// Remaining is how many more completions the task needs.
func (p Progress) Remaining() int {
	return max(0, p.Total-p.Done)
}

// Evaluate derives done/total/complete for a task with rule r and cached
// totalRequired from the events in l.
//
// Daily tasks count distinct days with at least one event. Weekly tasks count
// at most PerPeriod events in any one week.
func Evaluate(r Rule, totalRequired int, l *Ledger) Progress {
	var p Progress
	switch r.Kind {
	case KindNone:
		p.Total = 1
		if l.TotalCount() >= 1 {
			p.Done = 1
		}
	case KindAmount:
		p.Total = totalRequired
		p.Done = min(l.TotalCount(), totalRequired)
	case KindDaily, KindWeekly:
		p.Total = totalRequired
		quota := r.PerPeriod()
		if r.Kind == KindDaily {
			quota = 1
		}
		for _, n := range l.perPeriod(r.Kind) {
			p.Done += min(n, quota)
		}
		p.Done = min(p.Done, totalRequired)
	}
	if p.Done < 0 {
		p.Done = 0
	}
	p.Complete = p.Total > 0 && p.Done >= p.Total
	return p
}

// CheckCompletion reports why a completion on today would be refused, or nil
// if it is allowed.
func CheckCompletion(r Rule, totalRequired int, l *Ledger, today Date) error {
	p := Evaluate(r, totalRequired, l)
	if p.Complete {
		return fmt.Errorf("task already complete (%d/%d): %w", p.Done, p.Total, refusal(r.Kind))
	}
	switch r.Kind {
	case KindNone:
		if l.TotalCount() >= 1 {
			return fmt.Errorf("one-off task already checked: %w", ErrDuplicatePeriodCompletion)
		}
	case KindAmount:
		if p.Done >= totalRequired {
			return fmt.Errorf("%d of %d done: %w", p.Done, totalRequired, ErrQuotaExceeded)
		}
	case KindDaily:
		if n := l.CountOnDay(today); n >= 1 {
			return fmt.Errorf("%d recorded on %s: %w", n, today, ErrDuplicatePeriodCompletion)
		}
	case KindWeekly:
		if n := l.CountInWeekOf(today); n >= r.PerPeriod() {
			return fmt.Errorf("%d recorded in week of %s: %w", n, StartOfWeek(today), ErrDuplicatePeriodCompletion)
		}
	default:
		return fmt.Errorf("%w: unknown repeat type %q", ErrInvalidRule, r.Kind)
	}
	return nil
}

// CanCompleteNow reports whether a new completion on today is allowed.
func CanCompleteNow(r Rule, totalRequired int, l *Ledger, today Date) bool {
	return CheckCompletion(r, totalRequired, l, today) == nil
}

// Record re-validates eligibility against l and, if allowed, appends an
// event on today and returns the new progress. On refusal l is untouched.
func Record(r Rule, totalRequired int, l *Ledger, today Date) (Progress, error) {
	if err := CheckCompletion(r, totalRequired, l, today); err != nil {
		return Evaluate(r, totalRequired, l), err
	}
	l.Append(today)
	return Evaluate(r, totalRequired, l), nil
}

func refusal(k Kind) error {
	if k == KindAmount {
		return ErrQuotaExceeded
	}
	return ErrDuplicatePeriodCompletion
}
