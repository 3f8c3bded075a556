package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/opsboard/dispatch/internal/store"
	"github.com/opsboard/dispatch/pkg/models"
)

// TestEngineInvariantsProperty runs random operation sequences against a
// fresh engine and checks after every step that the capacity ledger never
// drifts: loads stay within bounds, assigned tasks have exactly one owner,
// and the sum of loads equals the number of tasks holding capacity.
func TestEngineInvariantsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
		clock := &fakeClock{now: base}
		st := store.NewMemory()

		memberCount := rapid.IntRange(1, 5).Draw(t, "members")
		memberIDs := make([]string, memberCount)
		for i := 0; i < memberCount; i++ {
			id := fmt.Sprintf("m%d", i)
			memberIDs[i] = id
			role := rapid.SampledFrom(models.RoleBandOrder).Draw(t, "role")
			capacity := rapid.IntRange(1, 3).Draw(t, "capacity")
			if err := st.CreateMember(&models.Member{
				ID:          id,
				Name:        id,
				Role:        role,
				Status:      models.MemberStatusActive,
				MaxCapacity: capacity,
			}); err != nil {
				t.Fatalf("create member: %v", err)
			}
		}

		taskCount := rapid.IntRange(1, 10).Draw(t, "tasks")
		taskIDs := make([]string, taskCount)
		for i := 0; i < taskCount; i++ {
			id := fmt.Sprintf("t%d", i)
			taskIDs[i] = id
			if err := st.CreateTask(&models.Task{
				ID:       id,
				Title:    id,
				Priority: models.PriorityMedium,
				Status:   models.TaskStatusPending,
				DueAt:    base.Add(time.Duration(rapid.IntRange(-24, 72).Draw(t, "due")) * time.Hour),
			}); err != nil {
				t.Fatalf("create task: %v", err)
			}
		}

		e := New(st, WithClock(clock))
		ctx := context.Background()

		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			op := rapid.SampledFrom([]string{
				"assign", "complete", "release", "reassign", "sweep", "advance", "deactivate",
			}).Draw(t, "op")

			var err error
			switch op {
			case "assign":
				_, err = e.AssignTask(ctx, rapid.SampledFrom(taskIDs).Draw(t, "task"))
			case "complete":
				err = e.CompleteTask(ctx, rapid.SampledFrom(taskIDs).Draw(t, "task"))
			case "release":
				err = e.ReleaseTask(ctx, rapid.SampledFrom(taskIDs).Draw(t, "task"))
			case "reassign":
				_, err = e.ReassignTask(ctx, rapid.SampledFrom(taskIDs).Draw(t, "task"),
					rapid.SampledFrom(append([]string{""}, memberIDs...)).Draw(t, "exclude"))
			case "sweep":
				_, err = e.SweepOverdue(ctx)
			case "advance":
				clock.now = clock.now.Add(time.Duration(rapid.IntRange(1, 24).Draw(t, "hours")) * time.Hour)
			case "deactivate":
				_, err = e.DeactivateMember(ctx, rapid.SampledFrom(memberIDs).Draw(t, "member"))
			}

			// Lifecycle rejections are legal outcomes of random sequences;
			// anything else is a real failure.
			var invalid *InvalidTransitionError
			if err != nil && !errors.As(err, &invalid) {
				t.Fatalf("step %d %s: %v", i, op, err)
			}

			verifyLedger(t, st)
		}
	})
}

// verifyLedger asserts the ledger invariants on the store's full state.
func verifyLedger(t *rapid.T, st store.Store) {
	members, err := st.ListMembers()
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	tasks, err := st.ListTasks()
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}

	totalLoad := 0
	for _, m := range members {
		if m.CurrentLoad < 0 || m.CurrentLoad > m.MaxCapacity {
			t.Fatalf("member %s load %d outside [0, %d]", m.ID, m.CurrentLoad, m.MaxCapacity)
		}
		totalLoad += m.CurrentLoad
	}

	held := 0
	for _, tk := range tasks {
		switch tk.Status {
		case models.TaskStatusInProgress, models.TaskStatusOverdue:
			held++
			if tk.AssignedTo == "" {
				t.Fatalf("task %s is %s with no assignee", tk.ID, tk.Status)
			}
		case models.TaskStatusPending:
			if tk.AssignedTo != "" {
				t.Fatalf("pending task %s still has assignee %s", tk.ID, tk.AssignedTo)
			}
		}
	}
	if totalLoad != held {
		t.Fatalf("ledger drift: total load %d, tasks holding capacity %d", totalLoad, held)
	}
}
