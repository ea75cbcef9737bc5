package repository

import "errors"

// Sentinel kinds for store errors.
var (
	// ErrNotFound marks a missing employee, badge, award or digest window.
	ErrNotFound = errors.New("record not found")
	// ErrConflict marks an insert that would violate a uniqueness
	// constraint. Callers holding idempotent semantics treat it as a no-op.
	ErrConflict = errors.New("record already exists")
	// ErrUnavailable marks a transient storage failure worth retrying.
	ErrUnavailable = errors.New("store unavailable")
)
