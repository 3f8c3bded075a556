package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/opsboard/dispatch/pkg/models"
)

// CreateTask inserts a new task.
func (db *DB) CreateTask(t *models.Task) error {
	if err := t.Validate(); err != nil {
		return err
	}
	skills, err := encodeStrings(t.RequiredSkills)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	var completedAt any
	if t.CompletedAt != nil {
		completedAt = formatTime(*t.CompletedAt)
	}
	_, err = db.Exec(`
		INSERT INTO tasks (id, title, type, priority, status, assigned_to, due_at, project_id, required_skills, created_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.Title, t.Type, string(t.Priority), string(t.Status), nullIfEmpty(t.AssignedTo),
		formatTime(t.DueAt), nullIfEmpty(t.ProjectID), skills, formatTime(t.CreatedAt), completedAt)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// GetTask retrieves a task by ID. Returns ErrNotFound if absent.
func (db *DB) GetTask(id string) (*models.Task, error) {
	row := db.QueryRow(taskSelect+` WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("get task %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get task %s: %w", id, err)
	}
	return t, nil
}

// ListTasks returns all tasks ordered by ID.
func (db *DB) ListTasks() ([]models.Task, error) {
	rows, err := db.Query(taskSelect + ` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

// ListPendingTasks returns pending tasks ordered by ID, optionally scoped
// to a project.
func (db *DB) ListPendingTasks(projectID string) ([]models.Task, error) {
	query := taskSelect + ` WHERE status = ?`
	args := []any{string(models.TaskStatusPending)}
	if projectID != "" {
		query += ` AND project_id = ?`
		args = append(args, projectID)
	}
	query += ` ORDER BY id`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list pending tasks: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

// ListTasksByAssignee returns all tasks currently assigned to the member.
func (db *DB) ListTasksByAssignee(memberID string) ([]models.Task, error) {
	rows, err := db.Query(taskSelect+` WHERE assigned_to = ? ORDER BY id`, memberID)
	if err != nil {
		return nil, fmt.Errorf("list tasks by assignee: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

// SetStatus updates a task's status and assignee in one write.
// Completion timestamps the task; any other status clears the timestamp.
func (db *DB) SetStatus(id string, status models.TaskStatus, assignedTo string) error {
	if !status.Valid() {
		return fmt.Errorf("set task status: unknown status %q", status)
	}
	var completedAt any
	if status == models.TaskStatusCompleted {
		completedAt = formatTime(time.Now())
	}
	result, err := db.Exec(`
		UPDATE tasks SET status = ?, assigned_to = ?, completed_at = ? WHERE id = ?
	`, string(status), nullIfEmpty(assignedTo), completedAt, id)
	if err != nil {
		return fmt.Errorf("set task status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set task status: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("set task status %s: %w", id, ErrNotFound)
	}
	return nil
}

const taskSelect = `
	SELECT id, title, type, priority, status, assigned_to, due_at, project_id, required_skills, created_at, completed_at
	FROM tasks`

func scanTask(row rowScanner) (*models.Task, error) {
	var t models.Task
	var taskType, assignedTo, projectID, skills, completedAt sql.NullString
	var priority, status, dueAt, createdAt string
	err := row.Scan(&t.ID, &t.Title, &taskType, &priority, &status, &assignedTo, &dueAt, &projectID, &skills, &createdAt, &completedAt)
	if err != nil {
		return nil, err
	}
	t.Type = taskType.String
	t.Priority = models.TaskPriority(priority)
	t.Status = models.TaskStatus(status)
	t.AssignedTo = assignedTo.String
	t.ProjectID = projectID.String
	t.RequiredSkills = decodeStrings(skills)
	t.DueAt, _ = parseTime(dueAt)
	t.CreatedAt, _ = parseTime(createdAt)
	t.CompletedAt = parseNullableTime(completedAt)
	return &t, nil
}

func collectTasks(rows *sql.Rows) ([]models.Task, error) {
	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
