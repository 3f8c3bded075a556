// Package store provides SQLite-backed persistence for members, tasks,
// and projects, plus an in-memory implementation for tests.
package store

import (
	"io"

	"github.com/opsboard/dispatch/pkg/models"
)

// MemberSource handles member directory persistence.
type MemberSource interface {
	CreateMember(m *models.Member) error
	GetMember(id string) (*models.Member, error)
	ListMembers() ([]models.Member, error)
	// ListActiveMembers returns active members. When projectID is non-empty
	// and the project has an assigned team, results are restricted to it.
	ListActiveMembers(projectID string) ([]models.Member, error)
	SetMemberStatus(id string, status models.MemberStatus) error
	// UpdateLoad atomically adjusts a member's current load by delta.
	// It fails with ErrLoadConflict if the result would leave the
	// 0 <= load <= capacity range.
	UpdateLoad(id string, delta int) error
}

// TaskSource handles task persistence.
type TaskSource interface {
	CreateTask(t *models.Task) error
	GetTask(id string) (*models.Task, error)
	ListTasks() ([]models.Task, error)
	// ListPendingTasks returns pending tasks, optionally scoped to a project.
	ListPendingTasks(projectID string) ([]models.Task, error)
	ListTasksByAssignee(memberID string) ([]models.Task, error)
	// SetStatus updates a task's status and assignee in one write.
	// An empty assignedTo clears the assignment.
	SetStatus(id string, status models.TaskStatus, assignedTo string) error
}

// ProjectSource handles project persistence.
type ProjectSource interface {
	CreateProject(p *models.Project) error
	// GetProject returns nil without error when the project does not exist.
	GetProject(id string) (*models.Project, error)
}

// Migrator handles database schema migrations.
type Migrator interface {
	// Migrate applies all pending schema migrations.
	Migrate() error
}

// Store defines the full persistence interface the engine and CLI depend on.
// It composes focused sub-interfaces so callers can depend on just the slice
// they need.
type Store interface {
	io.Closer
	Migrator
	MemberSource
	TaskSource
	ProjectSource
}

// Compile-time verification that both implementations satisfy the interfaces.
var (
	_ Store = (*DB)(nil)
	_ Store = (*Memory)(nil)
)
