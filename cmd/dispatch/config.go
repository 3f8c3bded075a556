package main

import (
	"fmt"
	"os"

	"github.com/opsboard/dispatch/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration",
	Long: `Display the effective dispatch configuration.

Configuration is stored at ~/.config/dispatch/config.yaml
Project-specific overrides can be placed in .dispatch.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("database.path        = %s\n", cfg.Database.Path)
		fmt.Printf("engine.strict_skills = %v\n", cfg.Engine.StrictSkills)
		fmt.Printf("engine.event_buffer  = %d\n", cfg.Engine.EventBuffer)
		fmt.Printf("log.debug_path       = %s\n", cfg.Log.DebugPath)
		fmt.Printf("watch.inbox          = %s\n", cfg.Watch.Inbox)
		fmt.Printf("watch.sweep_interval = %s\n", cfg.Watch.SweepInterval)

		fmt.Println()
		fmt.Printf("user config:    %s\n", config.GetUserConfigPath())
		if project := config.GetProjectConfigPath(); project != "" {
			fmt.Printf("project config: %s\n", project)
		}
	},
}
