package store

import (
	"errors"
	"testing"
	"time"

	"github.com/opsboard/dispatch/pkg/models"
)

func memMember(id string) *models.Member {
	return &models.Member{
		ID:          id,
		Name:        id,
		Role:        models.RoleEngineer,
		Status:      models.MemberStatusActive,
		MaxCapacity: 3,
		CreatedAt:   time.Now(),
	}
}

func memTask(id string) *models.Task {
	return &models.Task{
		ID:       id,
		Title:    id,
		Priority: models.PriorityMedium,
		Status:   models.TaskStatusPending,
		DueAt:    time.Now().Add(24 * time.Hour),
	}
}

func TestMemoryReturnsClones(t *testing.T) {
	m := NewMemory()
	if err := m.CreateMember(memMember("m1")); err != nil {
		t.Fatalf("create member: %v", err)
	}

	got, err := m.GetMember("m1")
	if err != nil {
		t.Fatalf("get member: %v", err)
	}
	got.CurrentLoad = 99

	again, err := m.GetMember("m1")
	if err != nil {
		t.Fatalf("get member: %v", err)
	}
	if again.CurrentLoad != 0 {
		t.Error("mutating a returned member must not affect stored state")
	}
}

func TestMemoryUpdateLoadBounds(t *testing.T) {
	m := NewMemory()
	if err := m.CreateMember(memMember("m1")); err != nil {
		t.Fatalf("create member: %v", err)
	}

	if err := m.UpdateLoad("m1", +4); !errors.Is(err, ErrLoadConflict) {
		t.Errorf("over-capacity: err = %v, want ErrLoadConflict", err)
	}
	if err := m.UpdateLoad("m1", -1); !errors.Is(err, ErrLoadConflict) {
		t.Errorf("below zero: err = %v, want ErrLoadConflict", err)
	}
	if err := m.UpdateLoad("missing", +1); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown member: err = %v, want ErrNotFound", err)
	}

	if err := m.UpdateLoad("m1", +2); err != nil {
		t.Fatalf("valid update: %v", err)
	}
	got, _ := m.GetMember("m1")
	if got.CurrentLoad != 2 {
		t.Errorf("load = %d, want 2", got.CurrentLoad)
	}
}

func TestMemoryFailAfterTargetsNthMutation(t *testing.T) {
	m := NewMemory()
	if err := m.CreateMember(memMember("m1")); err != nil {
		t.Fatalf("create member: %v", err)
	}
	if err := m.CreateTask(memTask("t1")); err != nil {
		t.Fatalf("create task: %v", err)
	}

	errBoom := errors.New("boom")
	m.FailAfter(2, errBoom)

	// Reads never consume the countdown.
	if _, err := m.GetMember("m1"); err != nil {
		t.Fatalf("read consumed failure countdown: %v", err)
	}

	if err := m.UpdateLoad("m1", +1); err != nil {
		t.Fatalf("first mutation should succeed: %v", err)
	}
	if err := m.SetStatus("t1", models.TaskStatusInProgress, "m1"); !errors.Is(err, errBoom) {
		t.Fatalf("second mutation err = %v, want injected failure", err)
	}

	// The failure fires once; later mutations succeed.
	if err := m.SetStatus("t1", models.TaskStatusInProgress, "m1"); err != nil {
		t.Fatalf("post-failure mutation: %v", err)
	}
}

func TestMemoryFailNext(t *testing.T) {
	m := NewMemory()
	errBoom := errors.New("boom")
	m.FailNext(errBoom)

	if err := m.CreateMember(memMember("m1")); !errors.Is(err, errBoom) {
		t.Fatalf("err = %v, want injected failure", err)
	}
	if err := m.CreateMember(memMember("m1")); err != nil {
		t.Fatalf("retry after injected failure: %v", err)
	}
}

func TestMemoryListActiveMembersScoping(t *testing.T) {
	m := NewMemory()
	for _, id := range []string{"m1", "m2"} {
		if err := m.CreateMember(memMember(id)); err != nil {
			t.Fatalf("create member %s: %v", id, err)
		}
	}
	if err := m.SetMemberStatus("m2", models.MemberStatusInactive); err != nil {
		t.Fatalf("deactivate m2: %v", err)
	}
	if err := m.CreateProject(&models.Project{
		ID:           "p1",
		Status:       models.ProjectStatusActive,
		AssignedTeam: []string{"m2"},
	}); err != nil {
		t.Fatalf("create project: %v", err)
	}

	all, err := m.ListActiveMembers("")
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(all) != 1 || all[0].ID != "m1" {
		t.Errorf("active = %v, want [m1]", all)
	}

	scoped, err := m.ListActiveMembers("p1")
	if err != nil {
		t.Fatalf("list scoped: %v", err)
	}
	if len(scoped) != 0 {
		t.Errorf("scoped = %v, want empty: the only team member is inactive", scoped)
	}
}

func TestMemorySetStatusManagesCompletedAt(t *testing.T) {
	m := NewMemory()
	if err := m.CreateTask(memTask("t1")); err != nil {
		t.Fatalf("create task: %v", err)
	}

	if err := m.SetStatus("t1", models.TaskStatusCompleted, "m1"); err != nil {
		t.Fatalf("set completed: %v", err)
	}
	got, _ := m.GetTask("t1")
	if got.CompletedAt == nil {
		t.Fatal("completed task should carry a completion timestamp")
	}

	if err := m.SetStatus("t1", models.TaskStatusPending, ""); err != nil {
		t.Fatalf("set pending: %v", err)
	}
	got, _ = m.GetTask("t1")
	if got.CompletedAt != nil {
		t.Error("reopened task must clear the completion timestamp")
	}
}
