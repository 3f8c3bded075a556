package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/opsboard/dispatch/pkg/models"
)

var (
	taskAddID       string
	taskAddType     string
	taskAddPriority string
	taskAddDue      string
	taskAddProject  string
	taskAddSkills   []string
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
}

var taskAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a pending task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskAdd,
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tasks",
	RunE:  runTaskList,
}

var taskCompleteCmd = &cobra.Command{
	Use:   "complete <task-id>",
	Short: "Mark a task done, freeing the owner's capacity",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskComplete,
}

func init() {
	taskAddCmd.Flags().StringVar(&taskAddID, "id", "", "Task ID (generated when omitted)")
	taskAddCmd.Flags().StringVar(&taskAddType, "type", "", "Task type, e.g. review, deploy")
	taskAddCmd.Flags().StringVar(&taskAddPriority, "priority", "medium", "Priority: low, medium, high, urgent")
	taskAddCmd.Flags().StringVar(&taskAddDue, "due", "", "Due date (RFC3339 or duration like 48h)")
	taskAddCmd.Flags().StringVar(&taskAddProject, "project", "", "Project ID to scope candidates to its team")
	taskAddCmd.Flags().StringSliceVar(&taskAddSkills, "skills", nil, "Required skill tags")

	taskCmd.AddCommand(taskAddCmd)
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskCompleteCmd)
}

// parseDue accepts an RFC3339 timestamp or a duration offset from now.
// An empty value defaults to one week out.
func parseDue(s string) (time.Time, error) {
	if s == "" {
		return time.Now().Add(7 * 24 * time.Hour), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("due %q is neither RFC3339 nor a duration", s)
	}
	return time.Now().Add(d), nil
}

func runTaskAdd(cmd *cobra.Command, args []string) error {
	db, _, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	id := taskAddID
	if id == "" {
		id = uuid.New().String()[:8]
	}
	dueAt, err := parseDue(taskAddDue)
	if err != nil {
		return err
	}

	task := &models.Task{
		ID:             id,
		Title:          args[0],
		Type:           taskAddType,
		Priority:       models.TaskPriority(taskAddPriority),
		Status:         models.TaskStatusPending,
		DueAt:          dueAt,
		ProjectID:      taskAddProject,
		RequiredSkills: taskAddSkills,
		CreatedAt:      time.Now(),
	}
	if err := db.CreateTask(task); err != nil {
		return err
	}

	color.Green("✓ Created task %s (%s, due %s)", task.ID, task.Priority, task.DueAt.Format("2006-01-02 15:04"))
	return nil
}

func runTaskList(cmd *cobra.Command, args []string) error {
	db, _, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	tasks, err := db.ListTasks()
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Println("No tasks. Create one with 'dispatch task add <title>'.")
		return nil
	}

	for _, t := range tasks {
		owner := "-"
		if t.AssignedTo != "" {
			owner = t.AssignedTo
		}
		line := fmt.Sprintf("%-10s %-8s %-12s %-10s due %s  %s",
			t.ID, t.Priority, t.Status, owner, t.DueAt.Format("2006-01-02"), t.Title)
		switch t.Status {
		case models.TaskStatusOverdue:
			color.Red("%s", line)
		case models.TaskStatusCompleted:
			color.New(color.Faint).Println(line)
		default:
			fmt.Println(line)
		}
	}
	return nil
}

func runTaskComplete(cmd *cobra.Command, args []string) error {
	db, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	eng, err := newEngine(db, cfg)
	if err != nil {
		return err
	}

	if err := eng.CompleteTask(context.Background(), args[0]); err != nil {
		return err
	}
	color.Green("✓ Task %s completed", args[0])
	return nil
}
