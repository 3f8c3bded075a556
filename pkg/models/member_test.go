package models

import "testing"

func validMember() Member {
	return Member{
		ID:          "m1",
		Name:        "Ada",
		Role:        RoleEngineer,
		Status:      MemberStatusActive,
		CurrentLoad: 2,
		MaxCapacity: 5,
		Skills:      []string{"backend", "sql"},
	}
}

func TestMemberValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Member)
		wantErr bool
	}{
		{"valid", func(m *Member) {}, false},
		{"load at capacity", func(m *Member) { m.CurrentLoad = m.MaxCapacity }, false},
		{"missing id", func(m *Member) { m.ID = "" }, true},
		{"bad role", func(m *Member) { m.Role = "contractor" }, true},
		{"bad status", func(m *Member) { m.Status = "vacation" }, true},
		{"zero capacity", func(m *Member) { m.MaxCapacity = 0 }, true},
		{"negative load", func(m *Member) { m.CurrentLoad = -1 }, true},
		{"load over capacity", func(m *Member) { m.CurrentLoad = 6 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validMember()
			tt.mutate(&m)
			err := m.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMemberHeadroom(t *testing.T) {
	m := validMember()
	if got := m.Headroom(); got != 3 {
		t.Errorf("Headroom() = %d, want 3", got)
	}
	m.CurrentLoad = m.MaxCapacity
	if got := m.Headroom(); got != 0 {
		t.Errorf("Headroom() at capacity = %d, want 0", got)
	}
}

func TestMemberSkillOverlap(t *testing.T) {
	m := validMember()
	tests := []struct {
		name     string
		required []string
		want     int
	}{
		{"no requirement", nil, 0},
		{"one match", []string{"sql"}, 1},
		{"two matches", []string{"sql", "backend"}, 2},
		{"no match", []string{"frontend"}, 0},
		{"partial", []string{"frontend", "sql"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.SkillOverlap(tt.required); got != tt.want {
				t.Errorf("SkillOverlap(%v) = %d, want %d", tt.required, got, tt.want)
			}
		})
	}
}
