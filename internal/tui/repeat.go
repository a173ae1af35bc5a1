package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/imkarma/trophy/internal/recurrence"
	"github.com/imkarma/trophy/internal/tracker"
)

const repeatHelp = "none | daily <end> | weekly <n> <end> | amount <n>"

// parseRepeat reads the one-line repeat description typed in the new task
// popup into a TaskInput without a title. Start dates default to today
// downstream.
func parseRepeat(s string) (tracker.TaskInput, error) {
	var in tracker.TaskInput
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return in, nil
	}

	kind, err := recurrence.ParseKind(fields[0])
	if err != nil {
		return in, err
	}
	in.RepeatType = string(kind)
	args := fields[1:]

	switch kind {
	case recurrence.KindNone:
		if len(args) != 0 {
			return in, fmt.Errorf("none takes no arguments")
		}
	case recurrence.KindAmount:
		if len(args) != 1 {
			return in, fmt.Errorf("usage: amount <n>")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return in, fmt.Errorf("amount: %q is not a number", args[0])
		}
		in.TotalRequired = n
	case recurrence.KindDaily:
		if len(args) != 1 {
			return in, fmt.Errorf("usage: daily <end>")
		}
		end, err := recurrence.ParseDate(args[0])
		if err != nil {
			return in, err
		}
		in.EndDate = end
	case recurrence.KindWeekly:
		if len(args) != 2 {
			return in, fmt.Errorf("usage: weekly <n> <end>")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return in, fmt.Errorf("weekly: %q is not a number", args[0])
		}
		end, err := recurrence.ParseDate(args[1])
		if err != nil {
			return in, err
		}
		in.TargetCount = n
		in.EndDate = end
	}
	return in, nil
}
