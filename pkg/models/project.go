package models

// ProjectStatus represents the state of a project.
type ProjectStatus string

const (
	// ProjectStatusActive indicates the project is receiving work.
	ProjectStatusActive ProjectStatus = "active"
	// ProjectStatusArchived indicates the project is closed.
	ProjectStatusArchived ProjectStatus = "archived"
)

// Valid returns true if the status is a known value.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusActive, ProjectStatusArchived:
		return true
	default:
		return false
	}
}

// Project provides read-only context for assignment. When AssignedTeam is
// non-empty, candidates are restricted to those member IDs.
type Project struct {
	// ID is the unique identifier for this project.
	ID string `json:"id"`
	// Name is the project's display name.
	Name string `json:"name"`
	// AssignedTeam lists member IDs allowed to receive this project's tasks.
	AssignedTeam []string `json:"assigned_team,omitempty"`
	// Status is the current state of the project.
	Status ProjectStatus `json:"status"`
}

// OnTeam returns true if the member may receive this project's tasks.
// An empty team means the whole directory is eligible.
func (p *Project) OnTeam(memberID string) bool {
	if p == nil || len(p.AssignedTeam) == 0 {
		return true
	}
	for _, id := range p.AssignedTeam {
		if id == memberID {
			return true
		}
	}
	return false
}
