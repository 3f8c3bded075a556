package engine

import (
	"fmt"

	"github.com/opsboard/dispatch/pkg/models"
)

// InvalidTransitionError reports an attempt to move a task through an
// illegal lifecycle transition. The task is left unchanged.
type InvalidTransitionError struct {
	TaskID string
	From   models.TaskStatus
	To     models.TaskStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("task %s: invalid transition %s -> %s", e.TaskID, e.From, e.To)
}

// transitions is the lifecycle table, expressed as data. A status maps to
// the set of statuses it may legally move to.
//
// Completion is legal from overdue as well as in_progress: the assignee
// owns an overdue task until it is completed or explicitly released.
var transitions = map[models.TaskStatus][]models.TaskStatus{
	models.TaskStatusPending:    {models.TaskStatusInProgress},
	models.TaskStatusInProgress: {models.TaskStatusInProgress, models.TaskStatusCompleted, models.TaskStatusOverdue, models.TaskStatusPending},
	models.TaskStatusOverdue:    {models.TaskStatusCompleted, models.TaskStatusPending},
	models.TaskStatusCompleted:  {},
}

// CanTransition reports whether moving a task from one status to another
// is legal. The in_progress -> in_progress self-transition covers
// reassignment to a new owner.
func CanTransition(from, to models.TaskStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// checkTransition returns an InvalidTransitionError when the move is illegal.
func checkTransition(taskID string, from, to models.TaskStatus) error {
	if !CanTransition(from, to) {
		return &InvalidTransitionError{TaskID: taskID, From: from, To: to}
	}
	return nil
}
