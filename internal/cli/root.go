package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "trophy",
	Short:         "Goal tracker with repeating tasks",
	Long:          "trophy tracks goals, the accomplishments that make them up and the repeating tasks behind those.\nCheck tasks off day by day, complete accomplishments, and put finished goals on the shelf.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(goalCmd)
	rootCmd.AddCommand(accCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(statusCmd)
}
