package store

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/opsboard/dispatch/pkg/models"
)

// Memory is an in-memory Store implementation backed by mutex-guarded maps.
// It is used by engine unit tests and anywhere persistence is not needed.
type Memory struct {
	mu       sync.RWMutex
	members  map[string]*models.Member
	tasks    map[string]*models.Task
	projects map[string]*models.Project

	// failIn counts down mutating calls until failErr is returned once,
	// used to exercise the engine's no-partial-write guarantee.
	failIn  int
	failErr error
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		members:  make(map[string]*models.Member),
		tasks:    make(map[string]*models.Task),
		projects: make(map[string]*models.Project),
	}
}

// FailNext makes the next mutating operation return err.
func (m *Memory) FailNext(err error) {
	m.FailAfter(1, err)
}

// FailAfter makes the nth mutating operation from now return err.
// Reads are unaffected.
func (m *Memory) FailAfter(n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failIn = n
	m.failErr = err
}

// takeFailure consumes a pending injected failure. Caller must hold m.mu.
func (m *Memory) takeFailure() error {
	if m.failIn == 0 {
		return nil
	}
	m.failIn--
	if m.failIn == 0 {
		err := m.failErr
		m.failErr = nil
		return err
	}
	return nil
}

// Close is a no-op for the in-memory store.
func (m *Memory) Close() error { return nil }

// Migrate is a no-op for the in-memory store.
func (m *Memory) Migrate() error { return nil }

// CreateMember inserts a new member into the directory.
func (m *Memory) CreateMember(member *models.Member) error {
	if err := member.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return err
	}
	if _, exists := m.members[member.ID]; exists {
		return fmt.Errorf("create member %s: already exists", member.ID)
	}
	clone := *member
	m.members[member.ID] = &clone
	return nil
}

// GetMember retrieves a member by ID. Returns ErrNotFound if absent.
func (m *Memory) GetMember(id string) (*models.Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	member, ok := m.members[id]
	if !ok {
		return nil, fmt.Errorf("get member %s: %w", id, ErrNotFound)
	}
	clone := *member
	return &clone, nil
}

// ListMembers returns all members ordered by ID.
func (m *Memory) ListMembers() ([]models.Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var members []models.Member
	for _, member := range m.members {
		members = append(members, *member)
	}
	sortMembersByID(members)
	return members, nil
}

// ListActiveMembers returns active members ordered by ID, optionally
// restricted to a project's assigned team.
func (m *Memory) ListActiveMembers(projectID string) ([]models.Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var project *models.Project
	if projectID != "" {
		project = m.projects[projectID]
	}

	var members []models.Member
	for _, member := range m.members {
		if member.Status != models.MemberStatusActive {
			continue
		}
		if !project.OnTeam(member.ID) {
			continue
		}
		members = append(members, *member)
	}
	sortMembersByID(members)
	return members, nil
}

// SetMemberStatus updates a member's active/inactive status.
func (m *Memory) SetMemberStatus(id string, status models.MemberStatus) error {
	if !status.Valid() {
		return fmt.Errorf("set member status: unknown status %q", status)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return err
	}
	member, ok := m.members[id]
	if !ok {
		return fmt.Errorf("set member status %s: %w", id, ErrNotFound)
	}
	member.Status = status
	return nil
}

// UpdateLoad atomically adjusts a member's current load by delta, rejecting
// writes that would break the capacity bounds with ErrLoadConflict.
func (m *Memory) UpdateLoad(id string, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return err
	}
	member, ok := m.members[id]
	if !ok {
		return fmt.Errorf("update load %s: %w", id, ErrNotFound)
	}
	next := member.CurrentLoad + delta
	if next < 0 || next > member.MaxCapacity {
		return fmt.Errorf("update load %s by %+d: %w", id, delta, ErrLoadConflict)
	}
	member.CurrentLoad = next
	return nil
}

// CreateTask inserts a new task.
func (m *Memory) CreateTask(task *models.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return err
	}
	if _, exists := m.tasks[task.ID]; exists {
		return fmt.Errorf("create task %s: already exists", task.ID)
	}
	clone := *task
	m.tasks[task.ID] = &clone
	return nil
}

// GetTask retrieves a task by ID. Returns ErrNotFound if absent.
func (m *Memory) GetTask(id string) (*models.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	task, ok := m.tasks[id]
	if !ok {
		return nil, fmt.Errorf("get task %s: %w", id, ErrNotFound)
	}
	clone := *task
	return &clone, nil
}

// ListTasks returns all tasks ordered by ID.
func (m *Memory) ListTasks() ([]models.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var tasks []models.Task
	for _, task := range m.tasks {
		tasks = append(tasks, *task)
	}
	sortTasksByID(tasks)
	return tasks, nil
}

// ListPendingTasks returns pending tasks ordered by ID, optionally scoped
// to a project.
func (m *Memory) ListPendingTasks(projectID string) ([]models.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var tasks []models.Task
	for _, task := range m.tasks {
		if task.Status != models.TaskStatusPending {
			continue
		}
		if projectID != "" && task.ProjectID != projectID {
			continue
		}
		tasks = append(tasks, *task)
	}
	sortTasksByID(tasks)
	return tasks, nil
}

// ListTasksByAssignee returns all tasks currently assigned to the member.
func (m *Memory) ListTasksByAssignee(memberID string) ([]models.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var tasks []models.Task
	for _, task := range m.tasks {
		if task.AssignedTo == memberID {
			tasks = append(tasks, *task)
		}
	}
	sortTasksByID(tasks)
	return tasks, nil
}

// SetStatus updates a task's status and assignee in one write.
func (m *Memory) SetStatus(id string, status models.TaskStatus, assignedTo string) error {
	if !status.Valid() {
		return fmt.Errorf("set task status: unknown status %q", status)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return err
	}
	task, ok := m.tasks[id]
	if !ok {
		return fmt.Errorf("set task status %s: %w", id, ErrNotFound)
	}
	task.Status = status
	task.AssignedTo = assignedTo
	if status == models.TaskStatusCompleted {
		now := time.Now()
		task.CompletedAt = &now
	} else {
		task.CompletedAt = nil
	}
	return nil
}

// CreateProject inserts a new project.
func (m *Memory) CreateProject(p *models.Project) error {
	if p.ID == "" {
		return fmt.Errorf("create project: id is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return err
	}
	if _, exists := m.projects[p.ID]; exists {
		return fmt.Errorf("create project %s: already exists", p.ID)
	}
	clone := *p
	m.projects[p.ID] = &clone
	return nil
}

// GetProject retrieves a project by ID, returning nil, nil when absent.
func (m *Memory) GetProject(id string) (*models.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	project, ok := m.projects[id]
	if !ok {
		return nil, nil
	}
	clone := *project
	return &clone, nil
}

func sortMembersByID(members []models.Member) {
	sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })
}

func sortTasksByID(tasks []models.Task) {
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
}
