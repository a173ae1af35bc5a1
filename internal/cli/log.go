package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var logCmd = &cobra.Command{
	Use:   "log <task-id>",
	Short: "Show check-offs for a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runLog,
}

func runLog(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "task")
	if err != nil {
		return err
	}
	a, err := mustApp()
	if err != nil {
		return err
	}
	defer a.Close()

	rows, err := a.tracker.TaskLog(context.Background(), a.user, id)
	if err != nil {
		return err
	}

	if len(rows) == 0 {
		fmt.Printf("No check-offs for task #%d\n", id)
		return nil
	}

	loc := a.tracker.Location()
	fmt.Printf("Check-offs for task #%d:\n\n", id)
	for _, c := range rows {
		fmt.Printf("  %s  %s\n", c.CompletedDate, gray(c.CompletedAt.In(loc).Format("15:04:05")))
	}
	return nil
}
