package engine

import "github.com/opsboard/dispatch/pkg/models"

// selectCandidate implements first-fit selection: the head of the ordered
// candidate list. The ordering produced by the eligibility filter already
// realizes "prefer the least-loaded engineer; escalate band only when the
// current band is exhausted". No randomization, so selection is
// deterministic for a given directory snapshot.
func selectCandidate(candidates []models.Member) *models.Member {
	if len(candidates) == 0 {
		return nil
	}
	return &candidates[0]
}
