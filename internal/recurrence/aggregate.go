package recurrence

import "math"

// Summary is the unit-weighted progress of a group of tasks.
type Summary struct {
	Done  int `json:"done"`
	Total int `json:"total"`
	Pct   int `json:"pct"`
}

// AccomplishmentProgress sums done and total over tasks. Each task's done is
// already capped at its own total by Evaluate.
func AccomplishmentProgress(tasks []Progress) Summary {
	var s Summary
	for _, p := range tasks {
		s.Done += min(p.Done, p.Total)
		s.Total += p.Total
	}
	if s.Total > 0 {
		s.Pct = int(math.Round(100 * float64(s.Done) / float64(s.Total)))
	}
	return s
}

// AccomplishmentFullyDone reports whether every task is complete. An
// accomplishment without tasks is never done.
func AccomplishmentFullyDone(tasks []Progress) bool {
	if len(tasks) == 0 {
		return false
	}
	for _, p := range tasks {
		if !p.Complete {
			return false
		}
	}
	return true
}

// AccomplishmentState is what the goal gate needs to know about one
// accomplishment.
type AccomplishmentState struct {
	Completed bool
	Tasks     []Progress
}

// GoalFullyDone reports whether every accomplishment is either already
// marked completed or has all its tasks satisfied.
func GoalFullyDone(accs []AccomplishmentState) bool {
	for _, a := range accs {
		if a.Completed {
			continue
		}
		if !AccomplishmentFullyDone(a.Tasks) {
			return false
		}
	}
	return true
}
