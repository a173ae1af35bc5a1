package recurrence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccomplishmentProgress(t *testing.T) {
	tasks := []Progress{
		{Done: 2, Total: 2, Complete: true},
		{Done: 1, Total: 3},
	}
	assert.Equal(t, Summary{Done: 3, Total: 5, Pct: 60}, AccomplishmentProgress(tasks))
	assert.False(t, AccomplishmentFullyDone(tasks))
}

func TestAccomplishmentProgress_Rounds(t *testing.T) {
	s := AccomplishmentProgress([]Progress{{Done: 1, Total: 3}})
	assert.Equal(t, 33, s.Pct)
	s = AccomplishmentProgress([]Progress{{Done: 2, Total: 3}})
	assert.Equal(t, 67, s.Pct)
}

func TestAccomplishmentProgress_Empty(t *testing.T) {
	assert.Equal(t, Summary{}, AccomplishmentProgress(nil))
}

func TestAccomplishmentFullyDone(t *testing.T) {
	assert.False(t, AccomplishmentFullyDone(nil))
	assert.False(t, AccomplishmentFullyDone([]Progress{}))
	assert.True(t, AccomplishmentFullyDone([]Progress{
		{Done: 1, Total: 1, Complete: true},
		{Done: 4, Total: 4, Complete: true},
	}))
}

func TestGoalFullyDone(t *testing.T) {
	done := []Progress{{Done: 1, Total: 1, Complete: true}}
	open := []Progress{{Done: 0, Total: 1}}

	assert.True(t, GoalFullyDone([]AccomplishmentState{
		{Completed: true, Tasks: open},
		{Tasks: done},
	}))
	assert.False(t, GoalFullyDone([]AccomplishmentState{
		{Completed: true},
		{Tasks: open},
	}))
	// An active accomplishment with no tasks blocks the goal.
	assert.False(t, GoalFullyDone([]AccomplishmentState{{Tasks: nil}}))
}
