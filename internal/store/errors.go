package store

import "errors"

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("store: record not found")

// ErrLoadConflict is returned when a load update would break the
// 0 <= current_load <= max_capacity invariant, typically because a
// concurrent operation consumed the member's remaining headroom.
var ErrLoadConflict = errors.New("store: load update conflicts with capacity bounds")
