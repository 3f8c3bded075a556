package main

import (
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/opsboard/dispatch/pkg/models"
)

var (
	projectAddID   string
	projectAddTeam []string
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
}

var projectAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a project, optionally with an assigned team",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectAdd,
}

func init() {
	projectAddCmd.Flags().StringVar(&projectAddID, "id", "", "Project ID (generated when omitted)")
	projectAddCmd.Flags().StringSliceVar(&projectAddTeam, "team", nil, "Member IDs allowed to receive this project's tasks")

	projectCmd.AddCommand(projectAddCmd)
}

func runProjectAdd(cmd *cobra.Command, args []string) error {
	db, _, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	id := projectAddID
	if id == "" {
		id = uuid.New().String()[:8]
	}
	project := &models.Project{
		ID:           id,
		Name:         args[0],
		AssignedTeam: projectAddTeam,
		Status:       models.ProjectStatusActive,
	}
	if err := db.CreateProject(project); err != nil {
		return err
	}

	color.Green("✓ Created project %s (%s)", project.Name, project.ID)
	return nil
}
