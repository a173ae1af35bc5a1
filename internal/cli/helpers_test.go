package cli

import (
	"fmt"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/imkarma/trophy/internal/recurrence"
	"github.com/imkarma/trophy/internal/store"
	"github.com/imkarma/trophy/internal/tracker"
)

func init() {
	color.NoColor = true
}

func TestParseID(t *testing.T) {
	for in, want := range map[string]int64{"7": 7, "#12": 12} {
		got, err := parseID(in, "task")
		if err != nil || got != want {
			t.Errorf("parseID(%q) = %d, %v; want %d", in, got, err, want)
		}
	}
	for _, bad := range []string{"", "0", "-3", "abc"} {
		if _, err := parseID(bad, "task"); err == nil {
			t.Errorf("parseID(%q) should fail", bad)
		}
	}
}

func TestProgressBar(t *testing.T) {
	tests := []struct {
		done, total int
		want        string
	}{
		{0, 4, "░░░░"},
		{1, 4, "█░░░"},
		{4, 4, "████"},
		{9, 4, "████"},
		{0, 0, "░░░░"},
	}
	for _, tt := range tests {
		if got := progressBar(tt.done, tt.total, 4); got != tt.want {
			t.Errorf("progressBar(%d, %d) = %q, want %q", tt.done, tt.total, got, tt.want)
		}
	}
}

func TestRuleLabel(t *testing.T) {
	start := recurrence.NewDate(2025, 1, 6)
	end := recurrence.NewDate(2025, 1, 12)

	tests := []struct {
		task store.Task
		want string
	}{
		{store.Task{RepeatType: recurrence.KindNone}, "once"},
		{store.Task{RepeatType: recurrence.KindDaily, TargetCount: 1, StartDate: start, EndDate: end}, "daily 2025-01-06→2025-01-12"},
		{store.Task{RepeatType: recurrence.KindDaily, TargetCount: 2, StartDate: start, EndDate: end}, "daily 2025-01-06→2025-01-12"},
		{store.Task{RepeatType: recurrence.KindWeekly, TargetCount: 3, StartDate: start, EndDate: end}, "3x weekly 2025-01-06→2025-01-12"},
		{store.Task{RepeatType: recurrence.KindAmount, TotalRequired: 10}, "10 times"},
	}
	for _, tt := range tests {
		if got := ruleLabel(tt.task); got != tt.want {
			t.Errorf("ruleLabel(%s) = %q, want %q", tt.task.RepeatType, got, tt.want)
		}
	}
}

func TestFriendly(t *testing.T) {
	dup := fmt.Errorf("task #3: %w", recurrence.ErrDuplicatePeriodCompletion)
	if got := friendly(dup).Error(); got != "you've already completed this for now" {
		t.Errorf("duplicate: got %q", got)
	}
	quota := fmt.Errorf("task #3: %w", recurrence.ErrQuotaExceeded)
	if got := friendly(quota).Error(); got != "task already complete" {
		t.Errorf("quota: got %q", got)
	}
	notReady := fmt.Errorf("%w: accomplishment #1 has unfinished tasks", tracker.ErrNotReady)
	if got := friendly(notReady).Error(); !strings.HasPrefix(got, "not ready yet") {
		t.Errorf("not ready: got %q", got)
	}
	other := fmt.Errorf("boom")
	if friendly(other) != other {
		t.Error("unrelated errors pass through")
	}
}
