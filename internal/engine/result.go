package engine

// Outcome represents the result of an assignment attempt.
type Outcome int

const (
	// OutcomeAssigned indicates a member was selected and committed.
	OutcomeAssigned Outcome = iota
	// OutcomeUnassignable indicates no eligible member currently has
	// headroom. This is a normal business outcome, not an error; the task
	// stays pending.
	OutcomeUnassignable
)

// String returns a human-readable outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeAssigned:
		return "assigned"
	case OutcomeUnassignable:
		return "unassignable"
	default:
		return "unknown"
	}
}

// AssignResult is the outcome of assigning a single task.
type AssignResult struct {
	// TaskID is the task the result refers to.
	TaskID string
	// MemberID is the selected member, empty when unassignable.
	MemberID string
	// Outcome is assigned or unassignable.
	Outcome Outcome
	// Reason is a display-ready explanation for unassignable results,
	// e.g. "no active member with capacity".
	Reason string
}

// BulkReport summarizes a bulk auto-assignment run. Partial success is
// expected: tasks that found an owner appear in Assigned, the rest in
// Unassignable with reasons.
type BulkReport struct {
	// Assigned lists tasks that were committed to a member.
	Assigned []AssignResult
	// Unassignable lists tasks left pending with a reason.
	Unassignable []AssignResult
}

// DeactivationReport summarizes a member deactivation.
type DeactivationReport struct {
	// MemberID is the deactivated member.
	MemberID string
	// ReleasedTasks lists the IDs of tasks returned to pending.
	ReleasedTasks []string
}
