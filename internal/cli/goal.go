package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/imkarma/trophy/internal/tracker"
)

var goalDesc string

var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Manage goals",
}

var goalCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a goal",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runGoalCreate,
}

var goalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List goals with progress",
	RunE:  runGoalList,
}

var goalShowCmd = &cobra.Command{
	Use:   "show <goal-id>",
	Short: "Show a goal with its accomplishments and tasks",
	Args:  cobra.ExactArgs(1),
	RunE:  runGoalShow,
}

var goalCompleteCmd = &cobra.Command{
	Use:   "complete <goal-id>",
	Short: "Put a finished goal on the shelf",
	Args:  cobra.ExactArgs(1),
	RunE:  runGoalComplete,
}

var goalDeleteCmd = &cobra.Command{
	Use:   "delete <goal-id>",
	Short: "Delete a goal and everything under it",
	Args:  cobra.ExactArgs(1),
	RunE:  runGoalDelete,
}

var goalShelfCmd = &cobra.Command{
	Use:   "shelf",
	Short: "List completed goals",
	RunE:  runGoalShelf,
}

func init() {
	goalCreateCmd.Flags().StringVarP(&goalDesc, "desc", "d", "", "Goal description")

	goalCmd.AddCommand(goalCreateCmd)
	goalCmd.AddCommand(goalListCmd)
	goalCmd.AddCommand(goalShowCmd)
	goalCmd.AddCommand(goalCompleteCmd)
	goalCmd.AddCommand(goalDeleteCmd)
	goalCmd.AddCommand(goalShelfCmd)
}

func runGoalCreate(cmd *cobra.Command, args []string) error {
	a, err := mustApp()
	if err != nil {
		return err
	}
	defer a.Close()

	g, err := a.tracker.CreateGoal(context.Background(), a.user, strings.Join(args, " "), goalDesc)
	if err != nil {
		return err
	}
	fmt.Printf("Created goal #%d: %s\n", g.ID, g.Title)
	return nil
}

func runGoalList(cmd *cobra.Command, args []string) error {
	a, err := mustApp()
	if err != nil {
		return err
	}
	defer a.Close()

	cards, err := a.tracker.Overview(context.Background(), a.user)
	if err != nil {
		return err
	}
	if len(cards) == 0 {
		fmt.Println("No goals yet. Create one with: trophy goal create \"title\"")
		return nil
	}
	for _, c := range cards {
		mark := " "
		switch {
		case c.IsCompleted:
			mark = yellow("🏆")
		case c.FullyDone:
			mark = green("✓")
		}
		fmt.Printf("  %s #%-4d %s %3d%%  %s %s\n",
			mark, c.ID, progressBar(c.Summary.Done, c.Summary.Total, 20), c.Summary.Pct,
			bold(c.Title), gray(fmt.Sprintf("(%d/%d accomplishments)", c.Completed, c.Accomplishments)))
	}
	return nil
}

func runGoalShow(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "goal")
	if err != nil {
		return err
	}
	a, err := mustApp()
	if err != nil {
		return err
	}
	defer a.Close()

	b, err := a.tracker.GoalBoard(context.Background(), a.user, id, a.tracker.Today())
	if err != nil {
		return err
	}
	printBoard(b)
	return nil
}

func printBoard(b *tracker.Board) {
	fmt.Printf("%s #%d %s\n", bold("Goal"), b.ID, bold(b.Title))
	if b.Description != "" {
		fmt.Printf("  %s\n", gray(b.Description))
	}
	fmt.Printf("  %s %d/%d (%d%%)\n", progressBar(b.Summary.Done, b.Summary.Total, 30), b.Summary.Done, b.Summary.Total, b.Summary.Pct)
	if b.IsCompleted {
		fmt.Printf("  %s\n", yellow("On the shelf"))
	} else if b.FullyDone {
		fmt.Printf("  %s\n", green("Ready to complete: trophy goal complete "+fmt.Sprint(b.ID)))
	}

	for _, acc := range b.AllAccomplishments() {
		fmt.Println()
		status := cyan("active")
		if acc.IsCompleted {
			status = green("done")
		} else if acc.FullyDone {
			status = yellow("ready")
		}
		fmt.Printf("  #%-4d %s [%s] %d/%d\n", acc.ID, bold(acc.Title), status, acc.CompletionSummary.Done, acc.CompletionSummary.Total)
		if len(acc.Tasks) == 0 {
			fmt.Printf("         %s\n", gray("no tasks"))
		}
		for _, t := range acc.Tasks {
			box := "[ ]"
			switch {
			case t.Progress.Complete:
				box = green("[✓]")
			case !t.CanCompleteNow:
				box = gray("[-]")
			}
			fmt.Printf("    %s #%-4d %s %s %s\n", box, t.ID, t.Title,
				gray(fmt.Sprintf("%d/%d", t.Progress.Done, t.Progress.Total)), gray(ruleLabel(t.Task)))
		}
	}
}

func runGoalComplete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "goal")
	if err != nil {
		return err
	}
	a, err := mustApp()
	if err != nil {
		return err
	}
	defer a.Close()

	g, err := a.tracker.CompleteGoal(context.Background(), a.user, id)
	if err != nil {
		return friendly(err)
	}
	fmt.Printf("%s Goal #%d %s is on the shelf\n", yellow("🏆"), g.ID, bold(g.Title))
	return nil
}

func runGoalDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "goal")
	if err != nil {
		return err
	}
	a, err := mustApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.tracker.DeleteGoal(context.Background(), a.user, id); err != nil {
		return err
	}
	fmt.Printf("Deleted goal #%d\n", id)
	return nil
}

func runGoalShelf(cmd *cobra.Command, args []string) error {
	a, err := mustApp()
	if err != nil {
		return err
	}
	defer a.Close()

	goals, err := a.tracker.Shelf(context.Background(), a.user)
	if err != nil {
		return err
	}
	if len(goals) == 0 {
		fmt.Println("The shelf is empty.")
		return nil
	}
	for _, g := range goals {
		when := ""
		if g.CompletedAt != nil {
			when = g.CompletedAt.In(a.tracker.Location()).Format("2006-01-02")
		}
		fmt.Printf("  %s #%-4d %s %s\n", yellow("🏆"), g.ID, bold(g.Title), gray(when))
	}
	return nil
}
