// Package recurrence computes how many completions a task needs, whether a
// new completion is allowed right now, and how per-task progress rolls up
// into accomplishments and goals.
//
// Nothing in this package reads the process clock. Callers pass the current
// calendar day in explicitly.
package recurrence

import (
	"fmt"
	"time"
)

// DateLayout is the wire and storage format for calendar days.
const DateLayout = "2006-01-02"

// Date is a calendar day with no time-of-day component.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate returns the normalized date for y-m-d (out-of-range days roll over
// the way time.Date does).
func NewDate(y int, m time.Month, d int) Date {
	return DateOf(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar day t falls on in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the calendar day of now in loc. A nil loc means time.Local.
func Today(now time.Time, loc *time.Location) Date {
	if loc == nil {
		loc = time.Local
	}
	return DateOf(now.In(loc))
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// IsZero reports whether d is the zero Date (no date set).
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// String formats d as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	if d.IsZero() {
		return []byte{}, nil
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Empty input yields the
// zero Date.
func (d *Date) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// midnight anchors d in UTC so day arithmetic never crosses a DST shift.
func (d Date) midnight() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns d shifted by n days.
func (d Date) AddDays(n int) Date {
	return DateOf(d.midnight().AddDate(0, 0, n))
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	return d.midnight().Before(other.midnight())
}

// After reports whether d is strictly later than other.
func (d Date) After(other Date) bool {
	return d.midnight().After(other.midnight())
}

// Weekday returns the day of the week of d.
func (d Date) Weekday() time.Weekday {
	return d.midnight().Weekday()
}

// daysFrom returns the whole number of days from start to d.
func (d Date) daysFrom(start Date) int {
	return int(d.midnight().Sub(start.midnight()).Hours() / 24)
}

// DaysBetweenInclusive counts the calendar days from start to end, both
// included. The result is < 1 when end is before start; callers treat that
// as a configuration error.
func DaysBetweenInclusive(start, end Date) int {
	return end.daysFrom(start) + 1
}

// StartOfWeek returns the Monday of the week containing d. Weeks run Monday
// through Sunday.
func StartOfWeek(d Date) Date {
	wd := d.Weekday()
	if wd == time.Sunday {
		return d.AddDays(-6)
	}
	return d.AddDays(1 - int(wd))
}

// WeeksBetweenInclusive counts the Monday-anchored weeks touched by the
// range start..end, both included.
func WeeksBetweenInclusive(start, end Date) int {
	return StartOfWeek(end).daysFrom(StartOfWeek(start))/7 + 1
}
