package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/opsboard/dispatch/internal/engine"
	"github.com/opsboard/dispatch/pkg/models"
)

var reassignExclude string

var assignCmd = &cobra.Command{
	Use:   "assign <task-id>",
	Short: "Assign one task to the best available member",
	Args:  cobra.ExactArgs(1),
	RunE:  runAssign,
}

var autoCmd = &cobra.Command{
	Use:   "auto [task-id ...]",
	Short: "Bulk-assign tasks in priority order",
	Long: `Assign a batch of tasks, most urgent first.

With no arguments, every pending task is considered. Ties in priority are
broken by earliest due date, so scarce capacity goes to the most urgent
work. Tasks with no eligible member stay pending and are reported.`,
	RunE: runAuto,
}

var reassignCmd = &cobra.Command{
	Use:   "reassign <task-id>",
	Short: "Move an in-progress task to a new owner",
	Args:  cobra.ExactArgs(1),
	RunE:  runReassign,
}

var releaseCmd = &cobra.Command{
	Use:   "release <task-id>",
	Short: "Return an assigned task to pending, freeing capacity",
	Args:  cobra.ExactArgs(1),
	RunE:  runRelease,
}

func init() {
	reassignCmd.Flags().StringVar(&reassignExclude, "exclude", "", "Member ID to exclude from selection")
}

func runAssign(cmd *cobra.Command, args []string) error {
	db, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	eng, err := newEngine(db, cfg)
	if err != nil {
		return err
	}

	result, err := eng.AssignTask(context.Background(), args[0])
	if err != nil {
		return err
	}
	printAssignResult(result)
	return nil
}

func runAuto(cmd *cobra.Command, args []string) error {
	db, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	eng, err := newEngine(db, cfg)
	if err != nil {
		return err
	}

	taskIDs := args
	if len(taskIDs) == 0 {
		pending, err := db.ListPendingTasks("")
		if err != nil {
			return err
		}
		for _, t := range pending {
			taskIDs = append(taskIDs, t.ID)
		}
	}
	if len(taskIDs) == 0 {
		fmt.Println("No pending tasks.")
		return nil
	}

	report, err := eng.BulkAutoAssign(context.Background(), taskIDs)
	if err != nil {
		return err
	}

	for _, r := range report.Assigned {
		color.Green("✓ %s -> %s", r.TaskID, r.MemberID)
	}
	for _, r := range report.Unassignable {
		color.Yellow("• %s stays pending: %s", r.TaskID, r.Reason)
	}
	fmt.Printf("%d assigned, %d unassignable\n", len(report.Assigned), len(report.Unassignable))
	return nil
}

func runReassign(cmd *cobra.Command, args []string) error {
	db, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	eng, err := newEngine(db, cfg)
	if err != nil {
		return err
	}

	result, err := eng.ReassignTask(context.Background(), args[0], reassignExclude)
	if err != nil {
		return err
	}
	printAssignResult(result)
	return nil
}

func runRelease(cmd *cobra.Command, args []string) error {
	db, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	eng, err := newEngine(db, cfg)
	if err != nil {
		return err
	}

	if err := eng.ReleaseTask(context.Background(), args[0]); err != nil {
		return err
	}
	color.Yellow("Task %s released back to %s", args[0], models.TaskStatusPending)
	return nil
}

func printAssignResult(result *engine.AssignResult) {
	if result.Outcome == engine.OutcomeAssigned {
		color.Green("✓ Task %s assigned to %s", result.TaskID, result.MemberID)
		return
	}
	color.Yellow("Task %s stays pending: %s", result.TaskID, result.Reason)
}
