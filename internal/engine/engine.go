package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/opsboard/dispatch/internal/store"
	"github.com/opsboard/dispatch/pkg/models"
)

// conflictRetries is the number of internal eligibility re-scans after a
// commit-time conflict. After the scan fails twice the task is reported
// unassignable rather than looping.
const conflictRetries = 1

// errStale signals that the state read during the optimistic scan changed
// before the commit could re-validate it under lock.
var errStale = errors.New("engine: state changed during commit")

// Engine coordinates eligibility filtering and first-fit selection under a
// concurrency-safe capacity ledger. It is the only writer of member loads
// and task assignments.
type Engine struct {
	// store is the injected member/task/project source.
	store store.Store
	// ledger provides per-member mutual exclusion for capacity commits.
	ledger *ledger
	// clock is injected for overdue evaluation and event timestamps.
	clock Clock
	// logger is the debug logger for assignment decisions.
	logger *DebugLogger
	// emitter fans out engine events, nil when events are disabled.
	emitter *eventEmitter
	// strictSkills makes required skills a hard eligibility filter.
	strictSkills bool
}

// Store returns the engine's backing store.
func (e *Engine) Store() store.Store {
	return e.store
}

// New creates an Engine backed by the given store.
func New(st store.Store, opts ...Option) *Engine {
	o := &engineOptions{
		clock:  realClock{},
		logger: NopLogger(),
	}
	for _, opt := range opts {
		opt(o)
	}

	e := &Engine{
		store:        st,
		ledger:       newLedger(),
		clock:        o.clock,
		logger:       o.logger,
		strictSkills: o.strictSkills,
	}
	if o.eventBuffer > 0 {
		e.emitter = newEventEmitter(o.eventBuffer, o.clock)
	}
	return e
}

// debugf writes a message to the engine's debug logger.
func (e *Engine) debugf(format string, args ...interface{}) {
	e.logger.Log(format, args...)
}

// AssignTask runs eligibility filtering and first-fit selection for one
// pending task, atomically updating the ledger and the task status.
//
// Calling AssignTask on an in_progress task is a no-op returning the
// current owner; reassignment is explicit via ReassignTask.
func (e *Engine) AssignTask(ctx context.Context, taskID string) (*AssignResult, error) {
	task, err := e.store.GetTask(taskID)
	if err != nil {
		return nil, err
	}

	if task.Status == models.TaskStatusInProgress {
		e.debugf("[engine] AssignTask %s: already in progress with %s, no-op", taskID, task.AssignedTo)
		return &AssignResult{TaskID: taskID, MemberID: task.AssignedTo, Outcome: OutcomeAssigned}, nil
	}
	if err := checkTransition(task.ID, task.Status, models.TaskStatusInProgress); err != nil {
		return nil, err
	}

	return e.assignPending(ctx, task)
}

// assignPending assigns a pending task using optimistic-read,
// pessimistic-commit: the directory scan runs lock-free against a
// snapshot, and the admission check is re-validated under the chosen
// member's lock immediately before commit.
func (e *Engine) assignPending(ctx context.Context, task *models.Task) (*AssignResult, error) {
	project, err := e.projectFor(task)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt <= conflictRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		members, err := e.store.ListActiveMembers(task.ProjectID)
		if err != nil {
			return nil, err
		}

		candidates := e.eligible(task, members, project, eligibilityOpts{})
		chosen := selectCandidate(candidates)
		if chosen == nil {
			reason := e.noCandidateReason(task, members)
			e.debugf("[engine] AssignTask %s: unassignable (%s)", task.ID, reason)
			result := &AssignResult{TaskID: task.ID, Outcome: OutcomeUnassignable, Reason: reason}
			e.emitter.emit(Event{Type: EventTaskUnassignable, TaskID: task.ID, Message: reason})
			return result, nil
		}

		unlock := e.ledger.lock(chosen.ID)
		err = e.commitAssign(task, chosen.ID)
		unlock()

		if err == nil {
			e.debugf("[engine] AssignTask %s: assigned to %s (band %d, load %d/%d)",
				task.ID, chosen.ID, chosen.Role.Band(), chosen.CurrentLoad+1, chosen.MaxCapacity)
			e.emitter.emit(Event{Type: EventTaskAssigned, TaskID: task.ID, MemberID: chosen.ID})
			return &AssignResult{TaskID: task.ID, MemberID: chosen.ID, Outcome: OutcomeAssigned}, nil
		}
		if !isConflict(err) {
			return nil, err
		}

		// The conflict may be the task itself: a concurrent call can have
		// committed it already, which makes this call an idempotent no-op.
		fresh, err := e.store.GetTask(task.ID)
		if err != nil {
			return nil, err
		}
		if fresh.Status == models.TaskStatusInProgress {
			e.debugf("[engine] AssignTask %s: committed to %s by a concurrent call, no-op", task.ID, fresh.AssignedTo)
			return &AssignResult{TaskID: task.ID, MemberID: fresh.AssignedTo, Outcome: OutcomeAssigned}, nil
		}
		task = fresh
		e.debugf("[engine] AssignTask %s: candidate %s lost capacity before commit, rescanning", task.ID, chosen.ID)
	}

	reason := "eligible members lost capacity to concurrent assignments"
	result := &AssignResult{TaskID: task.ID, Outcome: OutcomeUnassignable, Reason: reason}
	e.emitter.emit(Event{Type: EventTaskUnassignable, TaskID: task.ID, Message: reason})
	return result, nil
}

// commitAssign performs the admission re-check and the two-part commit
// (load increment, status write) for one member. Caller holds the
// member's ledger lock. Both the task and the member are re-read under
// the lock: a concurrent call may have committed this task between the
// scan and the lock acquisition.
func (e *Engine) commitAssign(task *models.Task, memberID string) error {
	freshTask, err := e.store.GetTask(task.ID)
	if err != nil {
		return err
	}
	if freshTask.Status != models.TaskStatusPending {
		return errStale
	}

	fresh, err := e.store.GetMember(memberID)
	if err != nil {
		return err
	}
	if fresh.Status != models.MemberStatusActive || fresh.Headroom() <= 0 {
		return errStale
	}

	if err := e.store.UpdateLoad(memberID, +1); err != nil {
		return err
	}
	if err := e.store.SetStatus(task.ID, models.TaskStatusInProgress, memberID); err != nil {
		if undoErr := e.store.UpdateLoad(memberID, -1); undoErr != nil {
			e.debugf("[engine] commitAssign %s: rollback of %s load failed: %v", task.ID, memberID, undoErr)
		}
		return fmt.Errorf("commit assignment of %s: %w", task.ID, err)
	}
	return nil
}

// BulkAutoAssign assigns a batch of tasks in priority order, urgent first,
// ties broken by earliest due date and then task ID, so scarce capacity
// goes to the most urgent work. Each task gets the same atomic guarantee
// as AssignTask.
//
// Partial success is expected: the report splits tasks into assigned and
// unassignable. Cancelling the context between tasks stops processing;
// tasks already committed stay committed.
func (e *Engine) BulkAutoAssign(ctx context.Context, taskIDs []string) (*BulkReport, error) {
	tasks := make([]*models.Task, 0, len(taskIDs))
	for _, id := range taskIDs {
		task, err := e.store.GetTask(id)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.Priority.Rank() != b.Priority.Rank() {
			return a.Priority.Rank() > b.Priority.Rank()
		}
		if !a.DueAt.Equal(b.DueAt) {
			return a.DueAt.Before(b.DueAt)
		}
		return a.ID < b.ID
	})

	report := &BulkReport{}
	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		result, err := e.AssignTask(ctx, task.ID)
		if err != nil {
			var invalid *InvalidTransitionError
			if errors.As(err, &invalid) {
				// Completed or overdue tasks in the batch are reported,
				// not treated as batch failure.
				report.Unassignable = append(report.Unassignable, AssignResult{
					TaskID:  task.ID,
					Outcome: OutcomeUnassignable,
					Reason:  fmt.Sprintf("task is %s", invalid.From),
				})
				continue
			}
			return report, err
		}

		if result.Outcome == OutcomeAssigned {
			report.Assigned = append(report.Assigned, *result)
		} else {
			report.Unassignable = append(report.Unassignable, *result)
		}
	}
	return report, nil
}

// ReassignTask moves an in_progress task to a new owner, releasing the
// current owner's capacity and re-running eligibility, optionally
// excluding one member (e.g. the one who rejected the task).
//
// The operation is atomic: if no replacement exists, the task keeps its
// original owner and both loads are unchanged.
func (e *Engine) ReassignTask(ctx context.Context, taskID, excludeMemberID string) (*AssignResult, error) {
	task, err := e.store.GetTask(taskID)
	if err != nil {
		return nil, err
	}
	if task.Status != models.TaskStatusInProgress {
		return nil, &InvalidTransitionError{TaskID: taskID, From: task.Status, To: models.TaskStatusInProgress}
	}
	oldOwner := task.AssignedTo

	project, err := e.projectFor(task)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt <= conflictRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		members, err := e.store.ListActiveMembers(task.ProjectID)
		if err != nil {
			return nil, err
		}

		// The current owner's unit is freed by the same operation, so the
		// scan sees their load one lower unless they are excluded.
		opts := eligibilityOpts{
			excludeID:  excludeMemberID,
			loadAdjust: map[string]int{oldOwner: -1},
		}
		candidates := e.eligible(task, members, project, opts)
		chosen := selectCandidate(candidates)
		if chosen == nil {
			reason := "no replacement member with capacity"
			e.debugf("[engine] ReassignTask %s: unassignable, owner %s unchanged", taskID, oldOwner)
			result := &AssignResult{TaskID: taskID, Outcome: OutcomeUnassignable, Reason: reason}
			e.emitter.emit(Event{Type: EventTaskUnassignable, TaskID: taskID, Message: reason})
			return result, nil
		}

		unlock := e.ledger.lock(oldOwner, chosen.ID)
		err = e.commitReassign(task, oldOwner, chosen.ID)
		unlock()

		if err == nil {
			e.debugf("[engine] ReassignTask %s: %s -> %s", taskID, oldOwner, chosen.ID)
			e.emitter.emit(Event{Type: EventTaskReassigned, TaskID: taskID, MemberID: chosen.ID,
				Message: fmt.Sprintf("previous owner %s", oldOwner)})
			return &AssignResult{TaskID: taskID, MemberID: chosen.ID, Outcome: OutcomeAssigned}, nil
		}
		if !isConflict(err) {
			return nil, err
		}
		e.debugf("[engine] ReassignTask %s: conflict on %s, rescanning", taskID, chosen.ID)
	}

	reason := "eligible members lost capacity to concurrent assignments"
	result := &AssignResult{TaskID: taskID, Outcome: OutcomeUnassignable, Reason: reason}
	e.emitter.emit(Event{Type: EventTaskUnassignable, TaskID: taskID, Message: reason})
	return result, nil
}

// commitReassign re-validates and commits a reassignment. Caller holds
// the ledger locks for both members.
func (e *Engine) commitReassign(task *models.Task, oldID, newID string) error {
	fresh, err := e.store.GetTask(task.ID)
	if err != nil {
		return err
	}
	if fresh.Status != models.TaskStatusInProgress || fresh.AssignedTo != oldID {
		return errStale
	}

	if newID == oldID {
		// Self-reassignment frees and retakes the same unit.
		return nil
	}

	freshNew, err := e.store.GetMember(newID)
	if err != nil {
		return err
	}
	if freshNew.Status != models.MemberStatusActive || freshNew.Headroom() <= 0 {
		return errStale
	}

	if err := e.store.UpdateLoad(oldID, -1); err != nil {
		return err
	}
	if err := e.store.UpdateLoad(newID, +1); err != nil {
		if undoErr := e.store.UpdateLoad(oldID, +1); undoErr != nil {
			e.debugf("[engine] commitReassign %s: restore of %s load failed: %v", task.ID, oldID, undoErr)
		}
		return err
	}
	if err := e.store.SetStatus(task.ID, models.TaskStatusInProgress, newID); err != nil {
		if undoErr := e.store.UpdateLoad(newID, -1); undoErr != nil {
			e.debugf("[engine] commitReassign %s: rollback of %s load failed: %v", task.ID, newID, undoErr)
		}
		if undoErr := e.store.UpdateLoad(oldID, +1); undoErr != nil {
			e.debugf("[engine] commitReassign %s: restore of %s load failed: %v", task.ID, oldID, undoErr)
		}
		return fmt.Errorf("commit reassignment of %s: %w", task.ID, err)
	}
	return nil
}

// ReleaseTask forces an in_progress or overdue task back to pending,
// clearing the assignee and freeing the owner's capacity.
func (e *Engine) ReleaseTask(ctx context.Context, taskID string) error {
	task, err := e.store.GetTask(taskID)
	if err != nil {
		return err
	}
	if err := checkTransition(task.ID, task.Status, models.TaskStatusPending); err != nil {
		return err
	}
	owner := task.AssignedTo

	unlock := e.ledger.lock(owner)
	defer unlock()

	fresh, err := e.store.GetTask(taskID)
	if err != nil {
		return err
	}
	if fresh.AssignedTo != owner {
		return fmt.Errorf("release task %s: owner changed during release: %w", taskID, errStale)
	}
	if err := checkTransition(fresh.ID, fresh.Status, models.TaskStatusPending); err != nil {
		return err
	}
	prevStatus := fresh.Status

	if err := e.store.SetStatus(taskID, models.TaskStatusPending, ""); err != nil {
		return err
	}
	if err := e.store.UpdateLoad(owner, -1); err != nil {
		if undoErr := e.store.SetStatus(taskID, prevStatus, owner); undoErr != nil {
			e.debugf("[engine] ReleaseTask %s: restore of status failed: %v", taskID, undoErr)
		}
		return err
	}

	e.debugf("[engine] ReleaseTask %s: released from %s", taskID, owner)
	e.emitter.emit(Event{Type: EventTaskReleased, TaskID: taskID, MemberID: owner})
	return nil
}

// CompleteTask accepts an external "mark done" action for an in_progress
// or overdue task and decrements the owner's load.
func (e *Engine) CompleteTask(ctx context.Context, taskID string) error {
	task, err := e.store.GetTask(taskID)
	if err != nil {
		return err
	}
	if err := checkTransition(task.ID, task.Status, models.TaskStatusCompleted); err != nil {
		return err
	}
	owner := task.AssignedTo

	unlock := e.ledger.lock(owner)
	defer unlock()

	fresh, err := e.store.GetTask(taskID)
	if err != nil {
		return err
	}
	if fresh.AssignedTo != owner {
		return fmt.Errorf("complete task %s: owner changed during completion: %w", taskID, errStale)
	}
	if err := checkTransition(fresh.ID, fresh.Status, models.TaskStatusCompleted); err != nil {
		return err
	}
	prevStatus := fresh.Status

	if err := e.store.SetStatus(taskID, models.TaskStatusCompleted, owner); err != nil {
		return err
	}
	if err := e.store.UpdateLoad(owner, -1); err != nil {
		if undoErr := e.store.SetStatus(taskID, prevStatus, owner); undoErr != nil {
			e.debugf("[engine] CompleteTask %s: restore of status failed: %v", taskID, undoErr)
		}
		return err
	}

	e.debugf("[engine] CompleteTask %s: completed by %s", taskID, owner)
	e.emitter.emit(Event{Type: EventTaskCompleted, TaskID: taskID, MemberID: owner})
	return nil
}

// DeactivateMember sets the member inactive and releases every task they
// hold. This is the only operation permitted to remove capacity
// out-of-band. Deactivation happens first so no new work lands on the
// member while holds are being released.
func (e *Engine) DeactivateMember(ctx context.Context, memberID string) (*DeactivationReport, error) {
	if _, err := e.store.GetMember(memberID); err != nil {
		return nil, err
	}

	// The status flip and the hold enumeration run under the member's
	// ledger lock: an in-flight commit either lands before the hold list
	// is read or fails its active re-check.
	unlock := e.ledger.lock(memberID)
	if err := e.store.SetMemberStatus(memberID, models.MemberStatusInactive); err != nil {
		unlock()
		return nil, err
	}
	tasks, err := e.store.ListTasksByAssignee(memberID)
	unlock()
	if err != nil {
		return nil, err
	}

	report := &DeactivationReport{MemberID: memberID}
	for _, task := range tasks {
		if task.Status != models.TaskStatusInProgress && task.Status != models.TaskStatusOverdue {
			continue
		}
		if err := e.ReleaseTask(ctx, task.ID); err != nil {
			return report, fmt.Errorf("release held task %s: %w", task.ID, err)
		}
		report.ReleasedTasks = append(report.ReleasedTasks, task.ID)
	}

	e.debugf("[engine] DeactivateMember %s: released %d tasks", memberID, len(report.ReleasedTasks))
	e.emitter.emit(Event{Type: EventMemberDeactivated, MemberID: memberID,
		Message: fmt.Sprintf("%d tasks released", len(report.ReleasedTasks))})
	return report, nil
}

// SweepOverdue transitions in_progress tasks past their due date to
// overdue. Capacity is not released: the assignee owns the overdue task
// until it is completed or explicitly released. Returns the IDs of swept
// tasks.
func (e *Engine) SweepOverdue(ctx context.Context) ([]string, error) {
	now := e.clock.Now()
	tasks, err := e.store.ListTasks()
	if err != nil {
		return nil, err
	}

	var swept []string
	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			return swept, err
		}
		if task.Status != models.TaskStatusInProgress || !task.DueAt.Before(now) {
			continue
		}

		unlock := e.ledger.lock(task.AssignedTo)
		fresh, err := e.store.GetTask(task.ID)
		if err != nil {
			unlock()
			return swept, err
		}
		if fresh.Status == models.TaskStatusInProgress && fresh.DueAt.Before(now) {
			if err := e.store.SetStatus(fresh.ID, models.TaskStatusOverdue, fresh.AssignedTo); err != nil {
				unlock()
				return swept, err
			}
			swept = append(swept, fresh.ID)
			e.emitter.emit(Event{Type: EventTaskOverdue, TaskID: fresh.ID, MemberID: fresh.AssignedTo})
		}
		unlock()
	}

	if len(swept) > 0 {
		e.debugf("[engine] SweepOverdue: %d tasks overdue as of %s", len(swept), now.Format("2006-01-02 15:04"))
	}
	return swept, nil
}

// projectFor resolves the task's project context, nil when the task has
// none or the project record is missing.
func (e *Engine) projectFor(task *models.Task) (*models.Project, error) {
	if task.ProjectID == "" {
		return nil, nil
	}
	return e.store.GetProject(task.ProjectID)
}

// noCandidateReason builds a display-ready reason for an empty candidate
// set from the scanned snapshot.
func (e *Engine) noCandidateReason(task *models.Task, members []models.Member) string {
	if len(members) == 0 {
		return "no active member available"
	}
	withHeadroom := 0
	for _, m := range members {
		if m.Headroom() > 0 {
			withHeadroom++
		}
	}
	if withHeadroom == 0 {
		return "all eligible members are at capacity"
	}
	if e.strictSkills && len(task.RequiredSkills) > 0 {
		return "no member with the required skills has capacity"
	}
	return "no eligible member with capacity"
}

// isConflict reports whether an error is a commit-time conflict that
// warrants an eligibility rescan rather than propagation.
func isConflict(err error) bool {
	return errors.Is(err, errStale) || errors.Is(err, store.ErrLoadConflict)
}
