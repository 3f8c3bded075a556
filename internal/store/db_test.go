package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/opsboard/dispatch/pkg/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "dispatch.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func testMember(id string) *models.Member {
	return &models.Member{
		ID:          id,
		Name:        "Member " + id,
		Role:        models.RoleEngineer,
		Status:      models.MemberStatusActive,
		MaxCapacity: 5,
		Skills:      []string{"go", "sql"},
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}
}

func testTask(id string) *models.Task {
	return &models.Task{
		ID:        id,
		Title:     "Task " + id,
		Type:      "review",
		Priority:  models.PriorityHigh,
		Status:    models.TaskStatusPending,
		DueAt:     time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second),
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := testDB(t)
	if err := db.Migrate(); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestMemberRoundTrip(t *testing.T) {
	db := testDB(t)

	want := testMember("m1")
	if err := db.CreateMember(want); err != nil {
		t.Fatalf("create member: %v", err)
	}

	got, err := db.GetMember("m1")
	if err != nil {
		t.Fatalf("get member: %v", err)
	}
	if got.Name != want.Name || got.Role != want.Role || got.Status != want.Status {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if got.MaxCapacity != 5 || got.CurrentLoad != 0 {
		t.Errorf("capacity = %d/%d, want 0/5", got.CurrentLoad, got.MaxCapacity)
	}
	if len(got.Skills) != 2 || got.Skills[0] != "go" || got.Skills[1] != "sql" {
		t.Errorf("skills = %v, want [go sql]", got.Skills)
	}
}

func TestGetMemberNotFound(t *testing.T) {
	db := testDB(t)
	_, err := db.GetMember("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListActiveMembersFiltersAndScopes(t *testing.T) {
	db := testDB(t)

	for _, id := range []string{"m1", "m2", "m3"} {
		if err := db.CreateMember(testMember(id)); err != nil {
			t.Fatalf("create member %s: %v", id, err)
		}
	}
	if err := db.SetMemberStatus("m3", models.MemberStatusInactive); err != nil {
		t.Fatalf("deactivate m3: %v", err)
	}
	if err := db.CreateProject(&models.Project{
		ID:           "p1",
		Name:         "p1",
		Status:       models.ProjectStatusActive,
		AssignedTeam: []string{"m2", "m3"},
	}); err != nil {
		t.Fatalf("create project: %v", err)
	}

	all, err := db.ListActiveMembers("")
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(all) != 2 || all[0].ID != "m1" || all[1].ID != "m2" {
		t.Errorf("active members = %v, want [m1 m2]", all)
	}

	// Project scoping intersects the team with active status.
	scoped, err := db.ListActiveMembers("p1")
	if err != nil {
		t.Fatalf("list scoped: %v", err)
	}
	if len(scoped) != 1 || scoped[0].ID != "m2" {
		t.Errorf("scoped members = %v, want [m2]", scoped)
	}
}

func TestUpdateLoadGuardsBounds(t *testing.T) {
	db := testDB(t)
	m := testMember("m1")
	m.MaxCapacity = 2
	if err := db.CreateMember(m); err != nil {
		t.Fatalf("create member: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := db.UpdateLoad("m1", +1); err != nil {
			t.Fatalf("increment %d: %v", i, err)
		}
	}

	if err := db.UpdateLoad("m1", +1); !errors.Is(err, ErrLoadConflict) {
		t.Errorf("over-capacity increment: err = %v, want ErrLoadConflict", err)
	}
	got, err := db.GetMember("m1")
	if err != nil {
		t.Fatalf("get member: %v", err)
	}
	if got.CurrentLoad != 2 {
		t.Errorf("load = %d after rejected write, want 2", got.CurrentLoad)
	}

	if err := db.UpdateLoad("m1", -3); !errors.Is(err, ErrLoadConflict) {
		t.Errorf("negative result: err = %v, want ErrLoadConflict", err)
	}
	if err := db.UpdateLoad("missing", +1); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown member: err = %v, want ErrNotFound", err)
	}
}

func TestTaskRoundTrip(t *testing.T) {
	db := testDB(t)

	want := testTask("t1")
	want.RequiredSkills = []string{"go"}
	if err := db.CreateTask(want); err != nil {
		t.Fatalf("create task: %v", err)
	}

	got, err := db.GetTask("t1")
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.Title != want.Title || got.Priority != want.Priority || got.Status != want.Status {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if !got.DueAt.Equal(want.DueAt) {
		t.Errorf("due_at = %v, want %v", got.DueAt, want.DueAt)
	}
	if got.AssignedTo != "" || got.CompletedAt != nil {
		t.Errorf("fresh task should be unassigned and incomplete, got %+v", got)
	}
	if len(got.RequiredSkills) != 1 || got.RequiredSkills[0] != "go" {
		t.Errorf("required skills = %v, want [go]", got.RequiredSkills)
	}
}

func TestSetStatusStampsCompletion(t *testing.T) {
	db := testDB(t)
	if err := db.CreateTask(testTask("t1")); err != nil {
		t.Fatalf("create task: %v", err)
	}

	if err := db.SetStatus("t1", models.TaskStatusInProgress, "m1"); err != nil {
		t.Fatalf("set in_progress: %v", err)
	}
	got, err := db.GetTask("t1")
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.Status != models.TaskStatusInProgress || got.AssignedTo != "m1" {
		t.Errorf("task = %s/%s, want in_progress/m1", got.Status, got.AssignedTo)
	}
	if got.CompletedAt != nil {
		t.Error("in_progress task must not carry a completion timestamp")
	}

	if err := db.SetStatus("t1", models.TaskStatusCompleted, "m1"); err != nil {
		t.Fatalf("set completed: %v", err)
	}
	got, err = db.GetTask("t1")
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.CompletedAt == nil {
		t.Error("completed task should carry a completion timestamp")
	}

	if err := db.SetStatus("missing", models.TaskStatusPending, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown task: err = %v, want ErrNotFound", err)
	}
}

func TestListPendingTasksScoping(t *testing.T) {
	db := testDB(t)

	t1 := testTask("t1")
	t2 := testTask("t2")
	t2.ProjectID = "p1"
	t3 := testTask("t3")
	for _, tk := range []*models.Task{t1, t2, t3} {
		if err := db.CreateTask(tk); err != nil {
			t.Fatalf("create task %s: %v", tk.ID, err)
		}
	}
	if err := db.SetStatus("t3", models.TaskStatusInProgress, "m1"); err != nil {
		t.Fatalf("assign t3: %v", err)
	}

	pending, err := db.ListPendingTasks("")
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 2 {
		t.Errorf("pending = %v, want t1 and t2", pending)
	}

	scoped, err := db.ListPendingTasks("p1")
	if err != nil {
		t.Fatalf("list scoped: %v", err)
	}
	if len(scoped) != 1 || scoped[0].ID != "t2" {
		t.Errorf("scoped pending = %v, want [t2]", scoped)
	}
}

func TestListTasksByAssignee(t *testing.T) {
	db := testDB(t)
	for _, id := range []string{"t1", "t2"} {
		if err := db.CreateTask(testTask(id)); err != nil {
			t.Fatalf("create task %s: %v", id, err)
		}
	}
	if err := db.SetStatus("t1", models.TaskStatusInProgress, "m1"); err != nil {
		t.Fatalf("assign t1: %v", err)
	}

	held, err := db.ListTasksByAssignee("m1")
	if err != nil {
		t.Fatalf("list by assignee: %v", err)
	}
	if len(held) != 1 || held[0].ID != "t1" {
		t.Errorf("held = %v, want [t1]", held)
	}
}

func TestGetProjectMissingIsNil(t *testing.T) {
	db := testDB(t)
	p, err := db.GetProject("missing")
	if err != nil {
		t.Fatalf("get project: %v", err)
	}
	if p != nil {
		t.Errorf("got %+v, want nil for unknown project", p)
	}
}
