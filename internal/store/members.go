package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/opsboard/dispatch/pkg/models"
)

// CreateMember inserts a new member into the directory.
func (db *DB) CreateMember(m *models.Member) error {
	if err := m.Validate(); err != nil {
		return err
	}
	skills, err := encodeStrings(m.Skills)
	if err != nil {
		return fmt.Errorf("create member: %w", err)
	}
	_, err = db.Exec(`
		INSERT INTO members (id, name, role, status, current_load, max_capacity, skills, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.Name, string(m.Role), string(m.Status), m.CurrentLoad, m.MaxCapacity, skills, formatTime(m.CreatedAt))
	if err != nil {
		return fmt.Errorf("create member: %w", err)
	}
	return nil
}

// GetMember retrieves a member by ID. Returns ErrNotFound if absent.
func (db *DB) GetMember(id string) (*models.Member, error) {
	row := db.QueryRow(`
		SELECT id, name, role, status, current_load, max_capacity, skills, created_at
		FROM members WHERE id = ?
	`, id)
	m, err := scanMember(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("get member %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get member %s: %w", id, err)
	}
	return m, nil
}

// ListMembers returns all members ordered by ID.
func (db *DB) ListMembers() ([]models.Member, error) {
	rows, err := db.Query(`
		SELECT id, name, role, status, current_load, max_capacity, skills, created_at
		FROM members ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()
	return collectMembers(rows)
}

// ListActiveMembers returns active members ordered by ID. When projectID
// names a project with a non-empty assigned team, results are restricted
// to that team.
func (db *DB) ListActiveMembers(projectID string) ([]models.Member, error) {
	rows, err := db.Query(`
		SELECT id, name, role, status, current_load, max_capacity, skills, created_at
		FROM members WHERE status = ? ORDER BY id
	`, string(models.MemberStatusActive))
	if err != nil {
		return nil, fmt.Errorf("list active members: %w", err)
	}
	defer rows.Close()

	members, err := collectMembers(rows)
	if err != nil {
		return nil, err
	}

	if projectID == "" {
		return members, nil
	}
	project, err := db.GetProject(projectID)
	if err != nil {
		return nil, err
	}
	if project == nil || len(project.AssignedTeam) == 0 {
		return members, nil
	}

	var scoped []models.Member
	for _, m := range members {
		if project.OnTeam(m.ID) {
			scoped = append(scoped, m)
		}
	}
	return scoped, nil
}

// SetMemberStatus updates a member's active/inactive status.
func (db *DB) SetMemberStatus(id string, status models.MemberStatus) error {
	if !status.Valid() {
		return fmt.Errorf("set member status: unknown status %q", status)
	}
	result, err := db.Exec(`UPDATE members SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("set member status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set member status: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("set member status %s: %w", id, ErrNotFound)
	}
	return nil
}

// UpdateLoad atomically adjusts a member's current load by delta.
// The guard clause keeps 0 <= current_load <= max_capacity; a write that
// would break it affects zero rows and reports ErrLoadConflict.
func (db *DB) UpdateLoad(id string, delta int) error {
	result, err := db.Exec(`
		UPDATE members SET current_load = current_load + ?
		WHERE id = ? AND current_load + ? >= 0 AND current_load + ? <= max_capacity
	`, delta, id, delta, delta)
	if err != nil {
		return fmt.Errorf("update load: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update load: %w", err)
	}
	if affected == 0 {
		if _, getErr := db.GetMember(id); getErr != nil {
			return getErr
		}
		return fmt.Errorf("update load %s by %+d: %w", id, delta, ErrLoadConflict)
	}
	return nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(row rowScanner) (*models.Member, error) {
	var m models.Member
	var role, status, createdAt string
	var skills sql.NullString
	err := row.Scan(&m.ID, &m.Name, &role, &status, &m.CurrentLoad, &m.MaxCapacity, &skills, &createdAt)
	if err != nil {
		return nil, err
	}
	m.Role = models.Role(role)
	m.Status = models.MemberStatus(status)
	m.Skills = decodeStrings(skills)
	m.CreatedAt, _ = parseTime(createdAt)
	return &m, nil
}

func collectMembers(rows *sql.Rows) ([]models.Member, error) {
	var members []models.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members: %w", err)
	}
	return members, nil
}

// encodeStrings serializes a string slice for TEXT column storage.
func encodeStrings(values []string) (sql.NullString, error) {
	if len(values) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// decodeStrings deserializes a TEXT column back into a string slice.
func decodeStrings(s sql.NullString) []string {
	if !s.Valid || s.String == "" {
		return nil
	}
	var values []string
	if err := json.Unmarshal([]byte(s.String), &values); err != nil {
		return nil
	}
	return values
}
