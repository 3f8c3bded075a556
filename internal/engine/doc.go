// Package engine implements capacity-aware task assignment.
//
// The engine package provides functionality for:
//   - Eligibility filtering: Narrowing the member directory to candidates
//     for a task by status, capacity headroom, project team, and skills
//   - First-fit selection: Picking the least-loaded member in the lowest
//     role band with headroom
//   - Lifecycle management: Enforcing legal task status transitions
//   - Capacity accounting: Keeping member loads consistent with assigned
//     tasks under concurrent callers via per-member locks
//
// All assignment operations are atomic with respect to each other: the
// capacity check, the load update, and the task status write happen under
// the owning member's lock, so two callers can never double-book a member's
// last unit of capacity.
//
// Example usage:
//
//	st := store.NewMemory()
//	eng := engine.New(st)
//	result, err := eng.AssignTask(ctx, "task-1")
package engine
