package models

import (
	"fmt"
	"time"
)

// TaskStatus represents the current state of a task.
type TaskStatus string

const (
	// TaskStatusPending indicates the task has no assignee yet.
	TaskStatusPending TaskStatus = "pending"
	// TaskStatusInProgress indicates the task is assigned and being worked on.
	TaskStatusInProgress TaskStatus = "in_progress"
	// TaskStatusCompleted indicates the task finished successfully.
	TaskStatusCompleted TaskStatus = "completed"
	// TaskStatusOverdue indicates the task missed its due date while assigned.
	TaskStatusOverdue TaskStatus = "overdue"
)

// Valid returns true if the status is a known value.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusOverdue:
		return true
	default:
		return false
	}
}

// Assigned returns true for statuses that imply a non-empty assignee.
func (s TaskStatus) Assigned() bool {
	switch s {
	case TaskStatusInProgress, TaskStatusCompleted, TaskStatusOverdue:
		return true
	default:
		return false
	}
}

// TaskPriority represents the urgency of a task.
type TaskPriority string

const (
	// PriorityLow is the least urgent priority.
	PriorityLow TaskPriority = "low"
	// PriorityMedium is the default priority.
	PriorityMedium TaskPriority = "medium"
	// PriorityHigh marks important work.
	PriorityHigh TaskPriority = "high"
	// PriorityUrgent marks work that must be assigned before anything else.
	PriorityUrgent TaskPriority = "urgent"
)

// priorityRanks orders priorities, highest rank assigned first in bulk mode.
var priorityRanks = map[TaskPriority]int{
	PriorityLow:    0,
	PriorityMedium: 1,
	PriorityHigh:   2,
	PriorityUrgent: 3,
}

// Valid returns true if the priority is a known value.
func (p TaskPriority) Valid() bool {
	_, ok := priorityRanks[p]
	return ok
}

// Rank returns the numeric rank of the priority; urgent is highest.
// Unknown priorities rank below low.
func (p TaskPriority) Rank() int {
	rank, ok := priorityRanks[p]
	if !ok {
		return -1
	}
	return rank
}

// Task represents a unit of work to be assigned.
type Task struct {
	// ID is the unique identifier for this task.
	ID string `json:"id"`
	// Title is the short description of the task.
	Title string `json:"title"`
	// Type categorizes the task (free-form, e.g. "review", "deploy").
	Type string `json:"type,omitempty"`
	// Priority determines bulk assignment order.
	Priority TaskPriority `json:"priority"`
	// Status is the current lifecycle state.
	Status TaskStatus `json:"status"`
	// AssignedTo is the ID of the member holding this task, if any.
	// The assignment engine is the only writer.
	AssignedTo string `json:"assigned_to,omitempty"`
	// DueAt is when the task is due; past-due in-progress tasks become overdue.
	DueAt time.Time `json:"due_at"`
	// ProjectID scopes the task to a project's assigned team, if set.
	ProjectID string `json:"project_id,omitempty"`
	// RequiredSkills are skill tags used to rank candidates for this task.
	RequiredSkills []string `json:"required_skills,omitempty"`
	// CreatedAt is when the task was created.
	CreatedAt time.Time `json:"created_at"`
	// CompletedAt is when the task was completed, if applicable.
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Validate checks the task record's invariants.
func (t *Task) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("task: id is required")
	}
	if !t.Priority.Valid() {
		return fmt.Errorf("task %s: unknown priority %q", t.ID, t.Priority)
	}
	if !t.Status.Valid() {
		return fmt.Errorf("task %s: unknown status %q", t.ID, t.Status)
	}
	if t.Status.Assigned() && t.AssignedTo == "" {
		return fmt.Errorf("task %s: status %s requires an assignee", t.ID, t.Status)
	}
	if t.Status == TaskStatusPending && t.AssignedTo != "" {
		return fmt.Errorf("task %s: pending task must not have an assignee", t.ID)
	}
	return nil
}
