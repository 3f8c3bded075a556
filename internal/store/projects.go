package store

import (
	"database/sql"
	"fmt"

	"github.com/opsboard/dispatch/pkg/models"
)

// CreateProject inserts a new project.
func (db *DB) CreateProject(p *models.Project) error {
	if p.ID == "" {
		return fmt.Errorf("create project: id is required")
	}
	if !p.Status.Valid() {
		return fmt.Errorf("create project %s: unknown status %q", p.ID, p.Status)
	}
	team, err := encodeStrings(p.AssignedTeam)
	if err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	_, err = db.Exec(`
		INSERT INTO projects (id, name, assigned_team, status)
		VALUES (?, ?, ?, ?)
	`, p.ID, p.Name, team, string(p.Status))
	if err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

// GetProject retrieves a project by ID.
// A missing project is not an error: tasks may reference no project, in
// which case the whole directory is eligible. Returns nil, nil when absent.
func (db *DB) GetProject(id string) (*models.Project, error) {
	row := db.QueryRow(`
		SELECT id, name, assigned_team, status FROM projects WHERE id = ?
	`, id)

	var p models.Project
	var status string
	var team sql.NullString
	err := row.Scan(&p.ID, &p.Name, &team, &status)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get project %s: %w", id, err)
	}
	p.AssignedTeam = decodeStrings(team)
	p.Status = models.ProjectStatus(status)
	return &p, nil
}
