package recurrence

// Ledger is a snapshot of the completion events recorded for one task. Only
// the day each event was recorded on matters; order is irrelevant.
//
// A Ledger only grows. There is no way to remove an event short of dropping
// the whole task.
type Ledger struct {
	days []Date
}

// NewLedger builds a ledger from the recorded days of existing events.
func NewLedger(days ...Date) *Ledger {
	l := &Ledger{days: make([]Date, len(days))}
	copy(l.days, days)
	return l
}

// Append records one more event on day.
func (l *Ledger) Append(day Date) {
	l.days = append(l.days, day)
}

// Days returns a copy of the recorded days.
func (l *Ledger) Days() []Date {
	if l == nil {
		return nil
	}
	out := make([]Date, len(l.days))
	copy(out, l.days)
	return out
}

// TotalCount is the number of events ever recorded.
func (l *Ledger) TotalCount() int {
	if l == nil {
		return 0
	}
	return len(l.days)
}

// CountOnDay counts events recorded on exactly day.
func (l *Ledger) CountOnDay(day Date) int {
	if l == nil {
		return 0
	}
	n := 0
	for _, d := range l.days {
		if d == day {
			n++
		}
	}
	return n
}

// CountInWeekOf counts events recorded in the Monday-anchored week that
// contains day.
func (l *Ledger) CountInWeekOf(day Date) int {
	if l == nil {
		return 0
	}
	week := StartOfWeek(day)
	n := 0
	for _, d := range l.days {
		if StartOfWeek(d) == week {
			n++
		}
	}
	return n
}

// CountInPeriod counts events sharing day's period key under kind. For kinds
// without a period it is the total count.
func (l *Ledger) CountInPeriod(kind Kind, day Date) int {
	switch kind {
	case KindDaily:
		return l.CountOnDay(day)
	case KindWeekly:
		return l.CountInWeekOf(day)
	}
	return l.TotalCount()
}

// perPeriod groups events by period key.
func (l *Ledger) perPeriod(kind Kind) map[Date]int {
	counts := make(map[Date]int)
	if l == nil {
		return counts
	}
	for _, d := range l.days {
		key, ok := PeriodKey(kind, d)
		if !ok {
			continue
		}
		counts[key]++
	}
	return counts
}

// PeriodKey returns the period a completion on day satisfies: the day itself
// for daily tasks, the Monday of its week for weekly tasks. ok is false for
// kinds without a period.
func PeriodKey(kind Kind, day Date) (key Date, ok bool) {
	switch kind {
	case KindDaily:
		return day, true
	case KindWeekly:
		return StartOfWeek(day), true
	}
	return Date{}, false
}
