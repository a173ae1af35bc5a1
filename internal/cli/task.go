package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/imkarma/trophy/internal/recurrence"
	"github.com/imkarma/trophy/internal/tracker"
)

var (
	taskRepeat string
	taskTarget int
	taskAmount int
	taskStart  string
	taskEnd    string
	taskTitle  string
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Create, edit and check off tasks",
	Long:  "Tasks live under an accomplishment and repeat: none (once), daily, weekly (N per week) or amount (N times in total).",
}

var taskCreateCmd = &cobra.Command{
	Use:   "create <accomplishment-id> <title>",
	Short: "Add a task to an accomplishment",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runTaskCreate,
}

var taskEditCmd = &cobra.Command{
	Use:   "edit <task-id>",
	Short: "Change a task's title or repetition",
	Long:  "Only the flags given are changed. The total required is recomputed from the resulting rule.",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskEdit,
}

var taskCheckCmd = &cobra.Command{
	Use:     "check <task-id>",
	Aliases: []string{"done"},
	Short:   "Check a task off for today",
	Args:    cobra.ExactArgs(1),
	RunE:    runTaskCheck,
}

var taskShowCmd = &cobra.Command{
	Use:   "show <task-id>",
	Short: "Show a task with its progress",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskShow,
}

var taskDeleteCmd = &cobra.Command{
	Use:   "delete <task-id>",
	Short: "Delete a task and its completions",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskDelete,
}

func init() {
	for _, c := range []*cobra.Command{taskCreateCmd, taskEditCmd} {
		c.Flags().StringVarP(&taskRepeat, "repeat", "r", "", "Repeat type: none, daily, weekly, amount")
		c.Flags().IntVarP(&taskTarget, "target", "n", 0, "Completions per week (weekly)")
		c.Flags().IntVar(&taskAmount, "amount", 0, "Total completions (amount)")
		c.Flags().StringVar(&taskStart, "start", "", "Start date YYYY-MM-DD (default today)")
		c.Flags().StringVar(&taskEnd, "end", "", "End date YYYY-MM-DD")
	}
	taskEditCmd.Flags().StringVarP(&taskTitle, "title", "t", "", "New title")

	taskCmd.AddCommand(taskCreateCmd)
	taskCmd.AddCommand(taskEditCmd)
	taskCmd.AddCommand(taskCheckCmd)
	taskCmd.AddCommand(taskShowCmd)
	taskCmd.AddCommand(taskDeleteCmd)
}

// optionalDate parses a date flag, treating "" as the zero date.
func optionalDate(flag, s string) (recurrence.Date, error) {
	if s == "" {
		return recurrence.Date{}, nil
	}
	d, err := recurrence.ParseDate(s)
	if err != nil {
		return recurrence.Date{}, fmt.Errorf("--%s: %w", flag, err)
	}
	return d, nil
}

func runTaskCreate(cmd *cobra.Command, args []string) error {
	accID, err := parseID(args[0], "accomplishment")
	if err != nil {
		return err
	}
	start, err := optionalDate("start", taskStart)
	if err != nil {
		return err
	}
	end, err := optionalDate("end", taskEnd)
	if err != nil {
		return err
	}

	a, err := mustApp()
	if err != nil {
		return err
	}
	defer a.Close()

	t, err := a.tracker.CreateTask(context.Background(), a.user, accID, tracker.TaskInput{
		Title:         strings.Join(args[1:], " "),
		RepeatType:    taskRepeat,
		TargetCount:   taskTarget,
		TotalRequired: taskAmount,
		StartDate:     start,
		EndDate:       end,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Created task #%d: %s %s\n", t.ID, t.Title, gray("("+ruleLabel(*t)+fmt.Sprintf(", %d required)", t.TotalRequired)))
	return nil
}

func runTaskEdit(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "task")
	if err != nil {
		return err
	}

	var p tracker.TaskPatch
	flags := cmd.Flags()
	if flags.Changed("title") {
		p.Title = &taskTitle
	}
	if flags.Changed("repeat") {
		p.RepeatType = &taskRepeat
	}
	if flags.Changed("target") {
		p.TargetCount = &taskTarget
	}
	if flags.Changed("amount") {
		p.TotalRequired = &taskAmount
	}
	if flags.Changed("start") {
		d, err := optionalDate("start", taskStart)
		if err != nil {
			return err
		}
		p.StartDate = &d
	}
	if flags.Changed("end") {
		d, err := optionalDate("end", taskEnd)
		if err != nil {
			return err
		}
		p.EndDate = &d
	}

	a, err := mustApp()
	if err != nil {
		return err
	}
	defer a.Close()

	t, err := a.tracker.UpdateTask(context.Background(), a.user, id, p)
	if err != nil {
		return err
	}
	fmt.Printf("Task #%d updated: %s %s\n", t.ID, t.Title, gray("("+ruleLabel(*t)+fmt.Sprintf(", %d required)", t.TotalRequired)))
	return nil
}

func runTaskCheck(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "task")
	if err != nil {
		return err
	}
	a, err := mustApp()
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.tracker.CheckTask(context.Background(), a.user, id)
	if err != nil {
		return friendly(err)
	}
	fmt.Printf("%s #%d %s  %s %d/%d\n", green("✓"), res.Task.ID, res.Task.Title,
		progressBar(res.Progress.Done, res.Progress.Total, 20), res.Progress.Done, res.Progress.Total)
	if res.Progress.Complete {
		fmt.Printf("  %s\n", green("Task complete!"))
	}
	if res.AccomplishmentCompleted {
		fmt.Printf("  %s\n", green(fmt.Sprintf("Accomplishment #%d complete!", res.Task.AccomplishmentID)))
	}
	return nil
}

func runTaskShow(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "task")
	if err != nil {
		return err
	}
	a, err := mustApp()
	if err != nil {
		return err
	}
	defer a.Close()

	v, err := a.tracker.GetTask(context.Background(), a.user, id)
	if err != nil {
		return err
	}

	fmt.Printf("%s #%d %s\n", bold("Task"), v.ID, bold(v.Title))
	fmt.Printf("  Accomplishment: #%d\n", v.AccomplishmentID)
	fmt.Printf("  Repeat:         %s\n", ruleLabel(v.Task))
	fmt.Printf("  Progress:       %s %d/%d\n", progressBar(v.Progress.Done, v.Progress.Total, 20), v.Progress.Done, v.Progress.Total)
	fmt.Printf("  Check-offs:     %d\n", v.CompletionCount)
	fmt.Printf("  Remaining:      %d\n", v.Progress.Remaining())
	switch {
	case v.Progress.Complete:
		fmt.Printf("  Status:         %s\n", green("complete"))
	case v.CanCompleteNow:
		fmt.Printf("  Status:         %s\n", cyan("can check off today"))
	default:
		fmt.Printf("  Status:         %s\n", gray("done for now"))
	}
	return nil
}

func runTaskDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "task")
	if err != nil {
		return err
	}
	a, err := mustApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.tracker.DeleteTask(context.Background(), a.user, id); err != nil {
		return err
	}
	fmt.Printf("Deleted task #%d\n", id)
	return nil
}
