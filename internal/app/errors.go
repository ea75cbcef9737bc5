package service

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrNotStarted marks a call into a service whose Start was never run.
	ErrNotStarted = errors.New("service not started")
	// ErrInvalidEffort marks an effort that failed intake validation.
	ErrInvalidEffort = errors.New("invalid effort")
	// ErrDuplicateEffort marks an effort id already seen at intake.
	ErrDuplicateEffort = errors.New("duplicate effort")
	// ErrBackpressure marks an intake rejected because the queue is full.
	ErrBackpressure = errors.New("intake queue full")
	// ErrInvalidEmployee marks an employee record that failed validation.
	ErrInvalidEmployee = errors.New("invalid employee")
	// ErrRetriesExhausted marks a transient store failure that outlived the
	// retry budget.
	ErrRetriesExhausted = errors.New("store retries exhausted")
)
