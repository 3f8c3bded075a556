package engine

import (
	"sort"
	"sync"
)

// ledger guards the capacity accounting for each member. Every operation
// that mutates a member's load or a task assignment acquires the locks for
// all members it may touch before reading loads, and holds them until both
// the load and the task status are written.
//
// Locks are always acquired in ascending member ID order so an operation
// touching two members (old owner plus new owner during reassignment)
// cannot deadlock against another such operation.
type ledger struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newLedger() *ledger {
	return &ledger{locks: make(map[string]*sync.Mutex)}
}

// memberLock returns the lock for a member, creating it on first use.
func (l *ledger) memberLock(id string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[id] = lock
	}
	return lock
}

// lock acquires the locks for the given member IDs in ascending order and
// returns a function that releases them in reverse order. Duplicate IDs
// are locked once.
func (l *ledger) lock(ids ...string) (unlock func()) {
	unique := make(map[string]bool, len(ids))
	var ordered []string
	for _, id := range ids {
		if id == "" || unique[id] {
			continue
		}
		unique[id] = true
		ordered = append(ordered, id)
	}
	sort.Strings(ordered)

	locks := make([]*sync.Mutex, 0, len(ordered))
	for _, id := range ordered {
		lock := l.memberLock(id)
		lock.Lock()
		locks = append(locks, lock)
	}

	return func() {
		for i := len(locks) - 1; i >= 0; i-- {
			locks[i].Unlock()
		}
	}
}
