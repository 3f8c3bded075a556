package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/opsboard/dispatch/pkg/models"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the assignment board",
	Long: `Display the current assignment board.

Shows:
  - Members grouped by role band with load bars
  - Pending and overdue task counts
  - Tasks waiting with no eligible member`,
	RunE: runStatus,
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	bandStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	fullStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	idleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	overdueStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
)

func runStatus(cmd *cobra.Command, args []string) error {
	db, _, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	members, err := db.ListMembers()
	if err != nil {
		return err
	}
	tasks, err := db.ListTasks()
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render("Assignment Board"))
	fmt.Println()

	for _, role := range models.RoleBandOrder {
		var lines []string
		for _, m := range members {
			if m.Role != role {
				continue
			}
			lines = append(lines, renderMember(m))
		}
		if len(lines) == 0 {
			continue
		}
		fmt.Println(bandStyle.Render(string(role)))
		fmt.Println(strings.Join(lines, "\n"))
		fmt.Println()
	}

	pending, inProgress, overdue := 0, 0, 0
	for _, t := range tasks {
		switch t.Status {
		case models.TaskStatusPending:
			pending++
		case models.TaskStatusInProgress:
			inProgress++
		case models.TaskStatusOverdue:
			overdue++
		}
	}

	summary := fmt.Sprintf("%d pending · %d in progress", pending, inProgress)
	if overdue > 0 {
		summary += " · " + overdueStyle.Render(fmt.Sprintf("%d overdue", overdue))
	}
	fmt.Println(summary)
	return nil
}

// renderMember formats one directory row with a load bar.
func renderMember(m models.Member) string {
	bar := strings.Repeat("█", m.CurrentLoad) + strings.Repeat("░", m.Headroom())
	line := fmt.Sprintf("  %-10s %-18s %s %d/%d", m.ID, m.Name, bar, m.CurrentLoad, m.MaxCapacity)
	if m.Status == models.MemberStatusInactive {
		return idleStyle.Render(line + " (inactive)")
	}
	if m.Headroom() == 0 {
		return fullStyle.Render(line)
	}
	return line
}
