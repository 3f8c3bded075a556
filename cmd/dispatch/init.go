package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the dispatch database",
	Long: `Create and migrate the dispatch database.

The database location comes from configuration (database.path, the
DISPATCH_DB environment variable, or the XDG data directory default).`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	db, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	color.Green("✓ Database ready at %s", cfg.Database.Path)
	fmt.Println("Add members with 'dispatch member add', tasks with 'dispatch task add'.")
	return nil
}
