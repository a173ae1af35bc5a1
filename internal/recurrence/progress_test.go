package recurrence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTotal(t *testing.T, r Rule) int {
	t.Helper()
	n, err := ComputeTotalRequired(r)
	require.NoError(t, err)
	return n
}

func TestRecord_DailyScenario(t *testing.T) {
	r := Rule{Kind: KindDaily, StartDate: d("2024-01-01"), EndDate: d("2024-01-05")}
	total := mustTotal(t, r)
	l := NewLedger()

	for day := d("2024-01-01"); day.Before(d("2024-01-05")); day = day.AddDays(1) {
		_, err := Record(r, total, l, day)
		require.NoError(t, err, day.String())
	}
	p := Evaluate(r, total, l)
	assert.Equal(t, Progress{Done: 4, Total: 5, Complete: false}, p)

	p, err := Record(r, total, l, d("2024-01-05"))
	require.NoError(t, err)
	assert.Equal(t, Progress{Done: 5, Total: 5, Complete: true}, p)
}

func TestRecord_DailyOncePerDay(t *testing.T) {
	r := Rule{Kind: KindDaily, StartDate: d("2024-01-01"), EndDate: d("2024-01-31")}
	total := mustTotal(t, r)
	l := NewLedger()

	_, err := Record(r, total, l, d("2024-01-10"))
	require.NoError(t, err)

	p, err := Record(r, total, l, d("2024-01-10"))
	assert.ErrorIs(t, err, ErrDuplicatePeriodCompletion)
	assert.Equal(t, 1, p.Done)
	assert.Equal(t, 1, l.TotalCount(), "refused completion must not be recorded")

	assert.True(t, CanCompleteNow(r, total, l, d("2024-01-11")))
}

func TestRecord_DailyIgnoresTargetCount(t *testing.T) {
	r := Rule{Kind: KindDaily, StartDate: d("2024-01-01"), EndDate: d("2024-01-05"), TargetCount: 2}
	_, err := ComputeTotalRequired(r)
	require.ErrorIs(t, err, ErrInvalidRule)

	// A row stored before the rule was rejected still allows one per day.
	total := 5
	l := NewLedger()
	_, err = Record(r, total, l, d("2024-01-01"))
	require.NoError(t, err)
	_, err = Record(r, total, l, d("2024-01-01"))
	assert.ErrorIs(t, err, ErrDuplicatePeriodCompletion)
	assert.Equal(t, 1, l.TotalCount())

	l.Append(d("2024-01-02"))
	l.Append(d("2024-01-02"))
	assert.Equal(t, Progress{Done: 2, Total: 5}, Evaluate(r, total, l), "done counts distinct days")
}

func TestRecord_WeeklyScenario(t *testing.T) {
	r := Rule{Kind: KindWeekly, StartDate: d("2024-01-01"), EndDate: d("2024-01-07"), TargetCount: 3}
	total := mustTotal(t, r)
	require.Equal(t, 3, total)
	l := NewLedger()

	for _, day := range []string{"2024-01-02", "2024-01-02", "2024-01-05"} {
		_, err := Record(r, total, l, d(day))
		require.NoError(t, err, day)
	}
	assert.Equal(t, Progress{Done: 3, Total: 3, Complete: true}, Evaluate(r, total, l))

	_, err := Record(r, total, l, d("2024-01-07"))
	assert.ErrorIs(t, err, ErrDuplicatePeriodCompletion)
	assert.Equal(t, 3, l.TotalCount())
}

func TestRecord_WeeklyQuotaResetsOnMonday(t *testing.T) {
	r := Rule{Kind: KindWeekly, StartDate: d("2024-01-01"), EndDate: d("2024-01-14"), TargetCount: 2}
	total := mustTotal(t, r)
	require.Equal(t, 4, total)
	l := NewLedger()

	for _, day := range []string{"2024-01-03", "2024-01-07"} {
		_, err := Record(r, total, l, d(day))
		require.NoError(t, err)
	}
	// Sunday still belongs to the first week.
	assert.False(t, CanCompleteNow(r, total, l, d("2024-01-07")))
	assert.True(t, CanCompleteNow(r, total, l, d("2024-01-08")))

	p, err := Record(r, total, l, d("2024-01-08"))
	require.NoError(t, err)
	assert.Equal(t, 3, p.Done)
	assert.False(t, p.Complete)
}

func TestRecord_AmountScenario(t *testing.T) {
	r := Rule{Kind: KindAmount, Amount: 7}
	total := mustTotal(t, r)
	l := NewLedger()
	day := d("2024-06-01")

	for i := 0; i < 7; i++ {
		_, err := Record(r, total, l, day)
		require.NoError(t, err, "completion %d", i+1)
	}
	assert.Equal(t, Progress{Done: 7, Total: 7, Complete: true}, Evaluate(r, total, l))

	_, err := Record(r, total, l, day)
	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.Equal(t, 7, l.TotalCount())
}

func TestRecord_NoneIsSingleCheckbox(t *testing.T) {
	r := Rule{Kind: KindNone}
	total := mustTotal(t, r)
	l := NewLedger()

	assert.Equal(t, Progress{Done: 0, Total: 1}, Evaluate(r, total, l))
	p, err := Record(r, total, l, d("2024-01-01"))
	require.NoError(t, err)
	assert.True(t, p.Complete)

	_, err = Record(r, total, l, d("2024-01-02"))
	assert.ErrorIs(t, err, ErrDuplicatePeriodCompletion)
}

func TestEvaluate_Idempotent(t *testing.T) {
	r := Rule{Kind: KindDaily, StartDate: d("2024-01-01"), EndDate: d("2024-01-10")}
	total := mustTotal(t, r)
	l := NewLedger(d("2024-01-01"), d("2024-01-03"))

	assert.Equal(t, Evaluate(r, total, l), Evaluate(r, total, l))
}

func TestRecord_DoneIsMonotonic(t *testing.T) {
	r := Rule{Kind: KindWeekly, StartDate: d("2024-01-01"), EndDate: d("2024-03-31"), TargetCount: 2}
	total := mustTotal(t, r)
	l := NewLedger()

	prev := 0
	for day := d("2024-01-01"); !day.After(d("2024-03-31")); day = day.AddDays(1) {
		p, err := Record(r, total, l, day)
		if err != nil {
			assert.ErrorIs(t, err, ErrDuplicatePeriodCompletion)
			continue
		}
		assert.GreaterOrEqual(t, p.Done, prev)
		prev = p.Done
	}
	assert.Equal(t, total, prev)
}

func TestEvaluate_RuleChangeReinterpretsLedger(t *testing.T) {
	// Three events on one day: a daily rule counts one, an amount rule all three.
	l := NewLedger(d("2024-01-01"), d("2024-01-01"), d("2024-01-01"))

	daily := Rule{Kind: KindDaily, StartDate: d("2024-01-01"), EndDate: d("2024-01-03")}
	assert.Equal(t, 1, Evaluate(daily, mustTotal(t, daily), l).Done)

	amount := Rule{Kind: KindAmount, Amount: 2}
	p := Evaluate(amount, mustTotal(t, amount), l)
	assert.Equal(t, Progress{Done: 2, Total: 2, Complete: true}, p)
}

func TestPeriodKey(t *testing.T) {
	key, ok := PeriodKey(KindDaily, d("2024-01-03"))
	assert.True(t, ok)
	assert.Equal(t, d("2024-01-03"), key)

	key, ok = PeriodKey(KindWeekly, d("2024-01-03"))
	assert.True(t, ok)
	assert.Equal(t, d("2024-01-01"), key)

	_, ok = PeriodKey(KindAmount, d("2024-01-03"))
	assert.False(t, ok)
	_, ok = PeriodKey(KindNone, d("2024-01-03"))
	assert.False(t, ok)
}
