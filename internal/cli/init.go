package cli

import (
	"fmt"
	"os"

	"github.com/imkarma/trophy/internal/config"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize trophy in the current directory",
	Long:  "Creates a .trophy/ directory with default config and database, and the local user.",
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	// Check if already initialized.
	if _, err := os.Stat(trophyDirName); err == nil {
		return fmt.Errorf("trophy already initialized in this directory (.trophy/ exists)")
	}

	if err := os.MkdirAll(trophyDirName, 0755); err != nil {
		return fmt.Errorf("create .trophy: %w", err)
	}

	// Write default config.
	cfg := config.DefaultConfig()
	if err := config.Save(trophyPath("config.yaml"), cfg); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	cfg.ApplyEnv()

	// Create database by opening the app (migration runs automatically).
	a, err := openApp(cfg)
	if err != nil {
		return fmt.Errorf("create database: %w", err)
	}
	a.Close()

	fmt.Println("Initialized trophy in .trophy/")
	fmt.Println("")
	fmt.Println("Next steps:")
	fmt.Printf("  1. Run: %s\n", cyan(`trophy goal create "your goal"`))
	fmt.Printf("  2. Run: %s\n", cyan(`trophy acc create <goal-id> "a milestone"`))
	fmt.Printf("  3. Run: %s\n", cyan(`trophy task create <acc-id> "a task" --repeat daily --end 2025-12-31`))
	fmt.Printf("  4. Run: %s or %s\n", cyan("trophy ui"), cyan("trophy serve"))

	return nil
}
