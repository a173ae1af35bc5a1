package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var accDesc string

var accCmd = &cobra.Command{
	Use:     "acc",
	Aliases: []string{"accomplishment"},
	Short:   "Manage accomplishments",
}

var accCreateCmd = &cobra.Command{
	Use:   "create <goal-id> <title>",
	Short: "Add an accomplishment to a goal",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runAccCreate,
}

var accCompleteCmd = &cobra.Command{
	Use:   "complete <accomplishment-id>",
	Short: "Complete an accomplishment once all its tasks are done",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccComplete,
}

var accDeleteCmd = &cobra.Command{
	Use:   "delete <accomplishment-id>",
	Short: "Delete an accomplishment and its tasks",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccDelete,
}

func init() {
	accCreateCmd.Flags().StringVarP(&accDesc, "desc", "d", "", "Accomplishment description")

	accCmd.AddCommand(accCreateCmd)
	accCmd.AddCommand(accCompleteCmd)
	accCmd.AddCommand(accDeleteCmd)
}

func runAccCreate(cmd *cobra.Command, args []string) error {
	goalID, err := parseID(args[0], "goal")
	if err != nil {
		return err
	}
	a, err := mustApp()
	if err != nil {
		return err
	}
	defer a.Close()

	acc, err := a.tracker.CreateAccomplishment(context.Background(), a.user, goalID, strings.Join(args[1:], " "), accDesc)
	if err != nil {
		return err
	}
	fmt.Printf("Created accomplishment #%d under goal #%d: %s\n", acc.ID, goalID, acc.Title)
	return nil
}

func runAccComplete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "accomplishment")
	if err != nil {
		return err
	}
	a, err := mustApp()
	if err != nil {
		return err
	}
	defer a.Close()

	acc, err := a.tracker.CompleteAccomplishment(context.Background(), a.user, id)
	if err != nil {
		return friendly(err)
	}
	fmt.Printf("%s Accomplishment #%d %s completed\n", green("✓"), acc.ID, bold(acc.Title))
	return nil
}

func runAccDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "accomplishment")
	if err != nil {
		return err
	}
	a, err := mustApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.tracker.DeleteAccomplishment(context.Background(), a.user, id); err != nil {
		return err
	}
	fmt.Printf("Deleted accomplishment #%d\n", id)
	return nil
}
