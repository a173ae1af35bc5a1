package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Quick status overview",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := mustApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	cards, err := a.tracker.Overview(ctx, a.user)
	if err != nil {
		return err
	}

	if len(cards) == 0 {
		fmt.Printf("No goals. Run: %s\n", cyan(`trophy goal create "title"`))
		return nil
	}

	var active, shelved, ready int
	for _, c := range cards {
		switch {
		case c.IsCompleted:
			shelved++
		case c.FullyDone:
			ready++
			active++
		default:
			active++
		}
	}

	fmt.Printf("%s\n", bold(fmt.Sprintf("Goals: %d total", len(cards))))
	fmt.Printf("  %-14s %s\n", "active:", cyan(active))
	fmt.Printf("  %-14s %s\n", "ready:", yellow(ready))
	fmt.Printf("  %-14s %s\n", "on the shelf:", green(shelved))

	// Tasks that can still be checked off today.
	today := a.tracker.Today()
	var open []string
	for _, c := range cards {
		if c.IsCompleted {
			continue
		}
		b, err := a.tracker.GoalBoard(ctx, a.user, c.ID, today)
		if err != nil {
			return err
		}
		for _, acc := range b.Accomplishments {
			for _, t := range acc.Tasks {
				if t.CanCompleteNow {
					open = append(open, fmt.Sprintf("  %s: %s %s", yellow(fmt.Sprintf("#%d", t.ID)), t.Title, gray("("+b.Title+")")))
				}
			}
		}
	}
	if len(open) > 0 {
		fmt.Printf("\n%s\n", bold(fmt.Sprintf("Open for %s:", today)))
		for _, line := range open {
			fmt.Println(line)
		}
	}

	return nil
}
