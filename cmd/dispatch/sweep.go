package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Mark in-progress tasks past their due date as overdue",
	Long: `Compare every in-progress task's due date against the current time
and transition past-due tasks to overdue.

Capacity is not released: the assignee owns an overdue task until it is
completed or explicitly released.`,
	RunE: runSweep,
}

func runSweep(cmd *cobra.Command, args []string) error {
	db, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	eng, err := newEngine(db, cfg)
	if err != nil {
		return err
	}

	swept, err := eng.SweepOverdue(context.Background())
	if err != nil {
		return err
	}
	if len(swept) == 0 {
		fmt.Println("Nothing overdue.")
		return nil
	}
	for _, id := range swept {
		color.Red("! task %s is overdue", id)
	}
	return nil
}
