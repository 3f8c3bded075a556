package models

import (
	"testing"
	"time"
)

func TestTaskStatusValid(t *testing.T) {
	tests := []struct {
		status TaskStatus
		want   bool
	}{
		{TaskStatusPending, true},
		{TaskStatusInProgress, true},
		{TaskStatusCompleted, true},
		{TaskStatusOverdue, true},
		{TaskStatus("blocked"), false},
		{TaskStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.Valid(); got != tt.want {
				t.Errorf("Valid(%q) = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestTaskStatusAssigned(t *testing.T) {
	assigned := []TaskStatus{TaskStatusInProgress, TaskStatusCompleted, TaskStatusOverdue}
	for _, s := range assigned {
		if !s.Assigned() {
			t.Errorf("%s should imply an assignee", s)
		}
	}
	if TaskStatusPending.Assigned() {
		t.Error("pending should not imply an assignee")
	}
}

func TestPriorityRankOrdering(t *testing.T) {
	ordered := []TaskPriority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}
	for i := 1; i < len(ordered); i++ {
		if ordered[i-1].Rank() >= ordered[i].Rank() {
			t.Errorf("%s rank %d should be below %s rank %d",
				ordered[i-1], ordered[i-1].Rank(), ordered[i], ordered[i].Rank())
		}
	}
}

func TestPriorityUnknownRanksBelowLow(t *testing.T) {
	if TaskPriority("critical").Rank() >= PriorityLow.Rank() {
		t.Error("unknown priority should rank below low")
	}
}

func TestTaskValidate(t *testing.T) {
	due := time.Now().Add(24 * time.Hour)
	tests := []struct {
		name    string
		task    Task
		wantErr bool
	}{
		{"valid pending", Task{ID: "t1", Priority: PriorityMedium, Status: TaskStatusPending, DueAt: due}, false},
		{"valid assigned", Task{ID: "t2", Priority: PriorityHigh, Status: TaskStatusInProgress, AssignedTo: "m1", DueAt: due}, false},
		{"missing id", Task{Priority: PriorityLow, Status: TaskStatusPending}, true},
		{"bad priority", Task{ID: "t3", Priority: "critical", Status: TaskStatusPending}, true},
		{"bad status", Task{ID: "t4", Priority: PriorityLow, Status: "paused"}, true},
		{"in_progress without assignee", Task{ID: "t5", Priority: PriorityLow, Status: TaskStatusInProgress}, true},
		{"pending with assignee", Task{ID: "t6", Priority: PriorityLow, Status: TaskStatusPending, AssignedTo: "m1"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.task.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
