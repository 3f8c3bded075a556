package engine

import (
	"sync/atomic"
	"time"
)

// EventType represents the type of engine event.
type EventType string

const (
	// EventTaskAssigned indicates a task was assigned to a member.
	EventTaskAssigned EventType = "task_assigned"
	// EventTaskUnassignable indicates no eligible member was found.
	EventTaskUnassignable EventType = "task_unassignable"
	// EventTaskReassigned indicates a task moved to a new owner.
	EventTaskReassigned EventType = "task_reassigned"
	// EventTaskReleased indicates a task returned to pending.
	EventTaskReleased EventType = "task_released"
	// EventTaskCompleted indicates a task was marked done.
	EventTaskCompleted EventType = "task_completed"
	// EventTaskOverdue indicates a task missed its due date.
	EventTaskOverdue EventType = "task_overdue"
	// EventMemberDeactivated indicates a member was removed from rotation.
	EventMemberDeactivated EventType = "member_deactivated"
)

// Event represents a state change emitted by the engine. Events are
// advisory; consumers that fall behind lose events rather than blocking
// assignment operations.
type Event struct {
	// Type is the kind of event.
	Type EventType
	// TaskID is the ID of the related task, if applicable.
	TaskID string
	// MemberID is the ID of the related member, if applicable.
	MemberID string
	// Message provides additional context about the event.
	Message string
	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// eventEmitter fans engine events out to an optional buffered channel.
type eventEmitter struct {
	ch      chan Event
	clock   Clock
	dropped atomic.Uint64
}

func newEventEmitter(buffer int, clock Clock) *eventEmitter {
	return &eventEmitter{ch: make(chan Event, buffer), clock: clock}
}

// emit sends an event without blocking; full buffers drop the event and
// count the drop.
func (e *eventEmitter) emit(ev Event) {
	if e == nil {
		return
	}
	ev.Timestamp = e.clock.Now()
	select {
	case e.ch <- ev:
	default:
		e.dropped.Add(1)
	}
}

// Events returns the channel for receiving engine events.
// Returns nil when event emission was not enabled.
func (e *Engine) Events() <-chan Event {
	if e.emitter == nil {
		return nil
	}
	return e.emitter.ch
}

// DroppedEventCount returns the number of events dropped because the
// event buffer was full.
func (e *Engine) DroppedEventCount() uint64 {
	if e.emitter == nil {
		return 0
	}
	return e.emitter.dropped.Load()
}
