package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dispatch",
	Short: "Capacity-aware task assignment",
	Long: `Dispatch distributes units of work to team members according to a
role hierarchy and per-member capacity limits.

Work goes to the least-loaded engineer with headroom first; senior roles
absorb overflow only when no junior capacity remains. Capacity accounting
is atomic with every status change, so a member's last open slot can
never be double-booked.

Core capabilities:
- Assigns single tasks or whole batches in priority order
- Reassigns work with rollback when no replacement exists
- Releases every hold when a member is deactivated
- Sweeps in-progress tasks past their due date to overdue`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(memberCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(assignCmd)
	rootCmd.AddCommand(autoCmd)
	rootCmd.AddCommand(reassignCmd)
	rootCmd.AddCommand(releaseCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
