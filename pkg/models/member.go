package models

import (
	"fmt"
	"time"
)

// MemberStatus represents the current state of a team member.
type MemberStatus string

const (
	// MemberStatusActive indicates the member can receive assignments.
	MemberStatusActive MemberStatus = "active"
	// MemberStatusInactive indicates the member is never eligible for work.
	MemberStatusInactive MemberStatus = "inactive"
)

// Valid returns true if the status is a known value.
func (s MemberStatus) Valid() bool {
	switch s {
	case MemberStatusActive, MemberStatusInactive:
		return true
	default:
		return false
	}
}

// Member represents a team member in the directory.
type Member struct {
	// ID is the unique identifier for this member.
	ID string `json:"id"`
	// Name is the member's display name.
	Name string `json:"name"`
	// Role determines the member's assignment priority band.
	Role Role `json:"role"`
	// Status is active or inactive; inactive members receive no work.
	Status MemberStatus `json:"status"`
	// CurrentLoad is the number of in-progress tasks held by this member.
	// Only the assignment engine mutates it.
	CurrentLoad int `json:"current_load"`
	// MaxCapacity is the maximum number of concurrent tasks allowed.
	MaxCapacity int `json:"max_capacity"`
	// Skills are tags used for soft skill matching during eligibility ranking.
	Skills []string `json:"skills,omitempty"`
	// CreatedAt is when the member was added to the directory.
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks the member record's invariants.
func (m *Member) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("member: id is required")
	}
	if !m.Role.Valid() {
		return fmt.Errorf("member %s: unknown role %q", m.ID, m.Role)
	}
	if !m.Status.Valid() {
		return fmt.Errorf("member %s: unknown status %q", m.ID, m.Status)
	}
	if m.MaxCapacity <= 0 {
		return fmt.Errorf("member %s: max_capacity must be > 0, got %d", m.ID, m.MaxCapacity)
	}
	if m.CurrentLoad < 0 || m.CurrentLoad > m.MaxCapacity {
		return fmt.Errorf("member %s: current_load %d outside [0, %d]", m.ID, m.CurrentLoad, m.MaxCapacity)
	}
	return nil
}

// Headroom returns the number of additional tasks the member can accept.
func (m *Member) Headroom() int {
	return m.MaxCapacity - m.CurrentLoad
}

// HasSkill returns true if the member has the given skill tag.
func (m *Member) HasSkill(skill string) bool {
	for _, s := range m.Skills {
		if s == skill {
			return true
		}
	}
	return false
}

// SkillOverlap returns the number of required skills the member has.
func (m *Member) SkillOverlap(required []string) int {
	overlap := 0
	for _, skill := range required {
		if m.HasSkill(skill) {
			overlap++
		}
	}
	return overlap
}
