package engine

import (
	"sort"

	"github.com/opsboard/dispatch/pkg/models"
)

// eligibilityOpts tweaks a single eligibility scan.
type eligibilityOpts struct {
	// excludeID removes one member from consideration (e.g. the owner who
	// rejected a task during reassignment).
	excludeID string
	// loadAdjust shifts a member's effective load during the scan. Used by
	// reassignment, where the current owner's unit will be freed by the
	// same operation.
	loadAdjust map[string]int
}

// eligible narrows the member set to candidates for the task and orders
// them for first-fit selection:
//
//  1. member is active
//  2. member has strict headroom (zero headroom excludes)
//  3. member is on the project's assigned team, when one is set
//  4. skill match: advisory by default (ranking only); a hard filter when
//     strict skills mode is configured
//
// Candidates are grouped by role band (engineers first, senior roles absorb
// overflow only when no junior capacity remains). Within a band, ordering is
// ascending effective load, then descending skill overlap, then ascending
// member ID for determinism.
func (e *Engine) eligible(task *models.Task, members []models.Member, project *models.Project, opts eligibilityOpts) []models.Member {
	effectiveLoad := func(m *models.Member) int {
		return m.CurrentLoad + opts.loadAdjust[m.ID]
	}

	var candidates []models.Member
	for _, m := range members {
		if m.ID == opts.excludeID {
			continue
		}
		if m.Status != models.MemberStatusActive {
			continue
		}
		if effectiveLoad(&m) >= m.MaxCapacity {
			continue
		}
		if !project.OnTeam(m.ID) {
			continue
		}
		if e.strictSkills && len(task.RequiredSkills) > 0 && m.SkillOverlap(task.RequiredSkills) == 0 {
			continue
		}
		candidates = append(candidates, m)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := &candidates[i], &candidates[j]
		if a.Role.Band() != b.Role.Band() {
			return a.Role.Band() < b.Role.Band()
		}
		if effectiveLoad(a) != effectiveLoad(b) {
			return effectiveLoad(a) < effectiveLoad(b)
		}
		if len(task.RequiredSkills) > 0 {
			ao, bo := a.SkillOverlap(task.RequiredSkills), b.SkillOverlap(task.RequiredSkills)
			if ao != bo {
				return ao > bo
			}
		}
		return a.ID < b.ID
	})

	return candidates
}
