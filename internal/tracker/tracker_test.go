package tracker

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imkarma/trophy/internal/recurrence"
	"github.com/imkarma/trophy/internal/store"
)

const user = "alice"

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(days int) { c.t = c.t.AddDate(0, 0, days) }

func newTestService(t *testing.T) (*Service, *clock) {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "trophy.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.EnsureUser(context.Background(), user))

	c := &clock{t: time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)} // Monday
	svc := New(st, time.UTC)
	svc.SetClock(c.now)
	return svc, c
}

func newAccomplishment(t *testing.T, svc *Service) (*store.Goal, *store.Accomplishment) {
	t.Helper()
	ctx := context.Background()
	g, err := svc.CreateGoal(ctx, user, "Learn Go", "")
	require.NoError(t, err)
	a, err := svc.CreateAccomplishment(ctx, user, g.ID, "Finish the tour", "")
	require.NoError(t, err)
	return g, a
}

func date(t *testing.T, s string) recurrence.Date {
	t.Helper()
	d, err := recurrence.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestCreateGoal_TrimsAndRequiresTitle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	g, err := svc.CreateGoal(ctx, user, "  Read more  ", " books ")
	require.NoError(t, err)
	assert.Equal(t, "Read more", g.Title)
	assert.Equal(t, "books", g.Description)

	_, err = svc.CreateGoal(ctx, user, "   ", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateTask_ComputesTotals(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, a := newAccomplishment(t, svc)

	tests := []struct {
		name  string
		in    TaskInput
		kind  recurrence.Kind
		total int
	}{
		{"one-off", TaskInput{Title: "once"}, recurrence.KindNone, 1},
		{"daily", TaskInput{Title: "d", RepeatType: "daily", StartDate: date(t, "2025-01-01"), EndDate: date(t, "2025-01-10")}, recurrence.KindDaily, 10},
		{"weekly", TaskInput{Title: "w", RepeatType: "weekly", TargetCount: 3, StartDate: date(t, "2025-01-06"), EndDate: date(t, "2025-01-19")}, recurrence.KindWeekly, 6},
		{"amount alias", TaskInput{Title: "x", RepeatType: "x", TotalRequired: 5}, recurrence.KindAmount, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, err := svc.CreateTask(ctx, user, a.ID, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, task.RepeatType)
			assert.Equal(t, tt.total, task.TotalRequired)
			assert.Positive(t, task.TargetCount)
		})
	}
}

func TestCreateTask_DefaultsStartToToday(t *testing.T) {
	svc, _ := newTestService(t)
	_, a := newAccomplishment(t, svc)

	task, err := svc.CreateTask(context.Background(), user, a.ID, TaskInput{Title: "once"})
	require.NoError(t, err)
	assert.Equal(t, "2025-01-06", task.StartDate.String())
	assert.Equal(t, 1, task.TargetCount)
}

func TestCreateTask_RejectsBadRules(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, a := newAccomplishment(t, svc)

	bad := []TaskInput{
		{Title: "no end", RepeatType: "daily"},
		{Title: "inverted", RepeatType: "weekly", StartDate: date(t, "2025-02-01"), EndDate: date(t, "2025-01-01")},
		{Title: "no amount", RepeatType: "amount"},
		{Title: "unknown", RepeatType: "monthly"},
		{Title: "negative", RepeatType: "daily", TargetCount: -1, EndDate: date(t, "2025-02-01")},
		{Title: "twice a day", RepeatType: "daily", TargetCount: 2, EndDate: date(t, "2025-02-01")},
	}
	for _, in := range bad {
		_, err := svc.CreateTask(ctx, user, a.ID, in)
		assert.ErrorIs(t, err, recurrence.ErrInvalidRule, in.Title)
	}

	_, err := svc.CreateTask(ctx, user, a.ID, TaskInput{Title: " "})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateTask_RecomputesTotal(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, a := newAccomplishment(t, svc)

	task, err := svc.CreateTask(ctx, user, a.ID, TaskInput{
		Title: "run", RepeatType: "daily",
		StartDate: date(t, "2025-01-01"), EndDate: date(t, "2025-01-10"),
	})
	require.NoError(t, err)
	require.Equal(t, 10, task.TotalRequired)

	end := date(t, "2025-01-20")
	updated, err := svc.UpdateTask(ctx, user, task.ID, TaskPatch{EndDate: &end})
	require.NoError(t, err)
	assert.Equal(t, 20, updated.TotalRequired)
	assert.Equal(t, "run", updated.Title)

	// Switching to amount with no new quota keeps the stored total as the quota.
	kind := "amount"
	updated, err = svc.UpdateTask(ctx, user, task.ID, TaskPatch{RepeatType: &kind})
	require.NoError(t, err)
	assert.Equal(t, recurrence.KindAmount, updated.RepeatType)
	assert.Equal(t, 20, updated.TotalRequired)

	quota := 4
	updated, err = svc.UpdateTask(ctx, user, task.ID, TaskPatch{TotalRequired: &quota})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.TotalRequired)

	// A hand-edited total on a calendar rule is overwritten by the formula.
	daily := "daily"
	bogus := 999
	updated, err = svc.UpdateTask(ctx, user, task.ID, TaskPatch{RepeatType: &daily, TotalRequired: &bogus})
	require.NoError(t, err)
	assert.Equal(t, 20, updated.TotalRequired)
}

func TestUpdateTask_SwitchToDailyResetsTarget(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, a := newAccomplishment(t, svc)
	task, err := svc.CreateTask(ctx, user, a.ID, TaskInput{
		Title: "gym", RepeatType: "weekly", TargetCount: 3,
		StartDate: date(t, "2025-01-06"), EndDate: date(t, "2025-01-12"),
	})
	require.NoError(t, err)

	daily := "daily"
	updated, err := svc.UpdateTask(ctx, user, task.ID, TaskPatch{RepeatType: &daily})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.TargetCount)
	assert.Equal(t, 7, updated.TotalRequired)

	two := 2
	_, err = svc.UpdateTask(ctx, user, task.ID, TaskPatch{TargetCount: &two})
	assert.ErrorIs(t, err, recurrence.ErrInvalidRule)
}

func TestUpdateTask_InvalidRuleLeavesTaskUnchanged(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, a := newAccomplishment(t, svc)
	task, err := svc.CreateTask(ctx, user, a.ID, TaskInput{Title: "once"})
	require.NoError(t, err)

	weekly := "weekly"
	_, err = svc.UpdateTask(ctx, user, task.ID, TaskPatch{RepeatType: &weekly})
	require.ErrorIs(t, err, recurrence.ErrInvalidRule)

	view, err := svc.GetTask(ctx, user, task.ID)
	require.NoError(t, err)
	assert.Equal(t, recurrence.KindNone, view.RepeatType)
	assert.Equal(t, 1, view.TotalRequired)
}

// A weekly task twice a week over two weeks needs four check-offs, at most
// two per Monday-anchored week.
func TestCheckTask_WeeklyScenario(t *testing.T) {
	svc, c := newTestService(t)
	ctx := context.Background()
	_, a := newAccomplishment(t, svc)

	task, err := svc.CreateTask(ctx, user, a.ID, TaskInput{
		Title: "gym", RepeatType: "weekly", TargetCount: 2,
		StartDate: date(t, "2025-01-06"), EndDate: date(t, "2025-01-19"),
	})
	require.NoError(t, err)
	require.Equal(t, 4, task.TotalRequired)

	res, err := svc.CheckTask(ctx, user, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Progress.Done)

	c.advance(2) // Wednesday
	_, err = svc.CheckTask(ctx, user, task.ID)
	require.NoError(t, err)

	c.advance(1) // Thursday, week quota used
	_, err = svc.CheckTask(ctx, user, task.ID)
	require.ErrorIs(t, err, recurrence.ErrDuplicatePeriodCompletion)

	c.advance(4) // next Monday
	_, err = svc.CheckTask(ctx, user, task.ID)
	require.NoError(t, err)
	res, err = svc.CheckTask(ctx, user, task.ID)
	require.NoError(t, err)
	assert.Equal(t, recurrence.Progress{Done: 4, Total: 4, Complete: true}, res.Progress)
	assert.Equal(t, 4, res.CompletionCount)
	assert.True(t, res.AccomplishmentCompleted, "only task done completes the accomplishment")

	_, err = svc.CheckTask(ctx, user, task.ID)
	assert.ErrorIs(t, err, ErrLocked)

	log, err := svc.TaskLog(ctx, user, task.ID)
	require.NoError(t, err)
	assert.Len(t, log, 4)
}

func TestCheckTask_UsesServiceTimezone(t *testing.T) {
	st, err := store.New(filepath.Join(t.TempDir(), "trophy.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.EnsureUser(context.Background(), user))

	tokyo := time.FixedZone("JST", 9*3600)
	svc := New(st, tokyo)
	// 20:00 UTC on Jan 6 is already Jan 7 in Tokyo.
	svc.SetClock(func() time.Time { return time.Date(2025, 1, 6, 20, 0, 0, 0, time.UTC) })

	_, a := newAccomplishment(t, svc)
	task, err := svc.CreateTask(context.Background(), user, a.ID, TaskInput{Title: "once"})
	require.NoError(t, err)
	assert.Equal(t, "2025-01-07", task.StartDate.String())

	_, err = svc.CheckTask(context.Background(), user, task.ID)
	require.NoError(t, err)
	log, err := svc.TaskLog(context.Background(), user, task.ID)
	require.NoError(t, err)
	require.Len(t, log, 1)
	assert.Equal(t, "2025-01-07", log[0].CompletedDate.String())
}

func TestGoalBoard(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	g, a := newAccomplishment(t, svc)

	once, err := svc.CreateTask(ctx, user, a.ID, TaskInput{Title: "once"})
	require.NoError(t, err)
	_, err = svc.CreateTask(ctx, user, a.ID, TaskInput{Title: "three", RepeatType: "amount", TotalRequired: 3})
	require.NoError(t, err)
	_, err = svc.CheckTask(ctx, user, once.ID)
	require.NoError(t, err)

	b, err := svc.GoalBoard(ctx, user, g.ID, svc.Today())
	require.NoError(t, err)
	require.Len(t, b.Accomplishments, 1)
	assert.Empty(t, b.CompletedAccomplishments)
	assert.False(t, b.FullyDone)

	av := b.Accomplishments[0]
	require.Len(t, av.Tasks, 2)
	assert.Equal(t, recurrence.Summary{Done: 1, Total: 4, Pct: 25}, av.CompletionSummary)
	assert.False(t, av.FullyDone)

	first := av.Tasks[0]
	assert.Equal(t, 1, first.CompletionCount)
	assert.True(t, first.Progress.Complete)
	assert.False(t, first.CanCompleteNow)
	assert.True(t, av.Tasks[1].CanCompleteNow)
}

func TestCompletionFlow(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	g, a := newAccomplishment(t, svc)

	task, err := svc.CreateTask(ctx, user, a.ID, TaskInput{Title: "twice", RepeatType: "amount", TotalRequired: 2})
	require.NoError(t, err)
	once, err := svc.CreateTask(ctx, user, a.ID, TaskInput{Title: "once"})
	require.NoError(t, err)

	_, err = svc.CompleteAccomplishment(ctx, user, a.ID)
	require.ErrorIs(t, err, ErrNotReady)
	_, err = svc.CompleteGoal(ctx, user, g.ID)
	require.ErrorIs(t, err, ErrNotReady)

	for i := 0; i < 2; i++ {
		res, err := svc.CheckTask(ctx, user, task.ID)
		require.NoError(t, err)
		assert.False(t, res.AccomplishmentCompleted)
	}
	_, err = svc.CheckTask(ctx, user, task.ID)
	require.ErrorIs(t, err, recurrence.ErrQuotaExceeded)

	// The last open task completes the accomplishment on check-off.
	res, err := svc.CheckTask(ctx, user, once.ID)
	require.NoError(t, err)
	assert.True(t, res.AccomplishmentCompleted)

	_, err = svc.CompleteAccomplishment(ctx, user, a.ID)
	assert.ErrorIs(t, err, ErrAlreadyCompleted)

	// Completed accomplishments are locked.
	_, err = svc.CreateTask(ctx, user, a.ID, TaskInput{Title: "late"})
	assert.ErrorIs(t, err, ErrLocked)
	_, err = svc.UpdateAccomplishment(ctx, user, a.ID, "renamed", "")
	assert.ErrorIs(t, err, ErrLocked)

	b, err := svc.GoalBoard(ctx, user, g.ID, svc.Today())
	require.NoError(t, err)
	assert.Empty(t, b.Accomplishments)
	require.Len(t, b.CompletedAccomplishments, 1)
	assert.False(t, b.CompletedAccomplishments[0].Tasks[0].CanCompleteNow)
	assert.True(t, b.FullyDone)

	goal, err := svc.CompleteGoal(ctx, user, g.ID)
	require.NoError(t, err)
	assert.True(t, goal.IsCompleted)

	shelf, err := svc.Shelf(ctx, user)
	require.NoError(t, err)
	require.Len(t, shelf, 1)
	assert.Equal(t, g.ID, shelf[0].ID)

	_, err = svc.CompleteGoal(ctx, user, g.ID)
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
}

func TestOwnership(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	g, a := newAccomplishment(t, svc)
	task, err := svc.CreateTask(ctx, user, a.ID, TaskInput{Title: "once"})
	require.NoError(t, err)

	const other = "bob"
	_, err = svc.GoalBoard(ctx, other, g.ID, svc.Today())
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.CheckTask(ctx, other, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.TaskLog(ctx, other, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.DeleteTask(ctx, other, task.ID), ErrNotFound)
	_, err = svc.CreateAccomplishment(ctx, other, g.ID, "sneaky", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOverview(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, a := newAccomplishment(t, svc)
	task, err := svc.CreateTask(ctx, user, a.ID, TaskInput{Title: "once"})
	require.NoError(t, err)
	_, err = svc.CheckTask(ctx, user, task.ID)
	require.NoError(t, err)

	cards, err := svc.Overview(ctx, user)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, 1, cards[0].Accomplishments)
	assert.Equal(t, 1, cards[0].Completed, "checking the only task completes its accomplishment")
	assert.Equal(t, 100, cards[0].Summary.Pct)
	assert.True(t, cards[0].FullyDone)
}
