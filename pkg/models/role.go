package models

// Role represents a member's role in the team hierarchy.
type Role string

const (
	// RoleEngineer is the first assignment band; engineers receive work first.
	RoleEngineer Role = "engineer"
	// RoleHeadManager absorbs overflow when no engineer has headroom.
	RoleHeadManager Role = "head_manager"
	// RoleHeadOfDepartment is the last-resort band for overflow work.
	RoleHeadOfDepartment Role = "head_of_department"
)

// roleBands is the assignment priority order, lowest band tried first.
// Ordering is expressed here as data so callers never compare role strings.
var roleBands = map[Role]int{
	RoleEngineer:         0,
	RoleHeadManager:      1,
	RoleHeadOfDepartment: 2,
}

// RoleBandOrder lists all roles in ascending assignment priority.
var RoleBandOrder = []Role{RoleEngineer, RoleHeadManager, RoleHeadOfDepartment}

// Valid returns true if the role is a known value.
func (r Role) Valid() bool {
	_, ok := roleBands[r]
	return ok
}

// Band returns the role's assignment priority band (0 is tried first).
// Unknown roles sort after every known band.
func (r Role) Band() int {
	band, ok := roleBands[r]
	if !ok {
		return len(roleBands)
	}
	return band
}
