// Package repository defines the persistence contracts for the recognition
// engine and its store implementations.
//
// Mutations that touch an employee's denormalized counters (recognition
// count, badge count, total effort score) perform the insert and the
// counter bump as one atomic unit, so a crash mid-operation leaves either
// the pre-state or the fully-applied post-state. The effort, recognition
// and award records stay the source of truth; counters are caches.
package repository

import (
	"context"
	"time"

	"github.com/acclaimhq/acclaim/internal/domain/model"
)

// EmployeeStore manages employee records.
type EmployeeStore interface {
	// InsertEmployee creates an employee. Returns ErrConflict when the id
	// or email is already taken.
	InsertEmployee(ctx context.Context, e model.Employee) error

	// FindEmployee returns ErrNotFound for unknown ids.
	FindEmployee(ctx context.Context, id string) (model.Employee, error)
}

// EffortStore is the read/write view over immutable effort facts.
type EffortStore interface {
	// InsertEffort stores a new effort and refreshes the employee's
	// last-activity marker. Returns ErrConflict for a duplicate effort id
	// and ErrNotFound for an unknown employee.
	InsertEffort(ctx context.Context, e model.Effort) error

	// FindEfforts returns the employee's efforts with timestamps in
	// [from, to), oldest first. An empty source matches all sources.
	FindEfforts(ctx context.Context, employeeID string, source model.Source, from, to time.Time) ([]model.Effort, error)
}

// RecognitionStore manages derived recognition records.
type RecognitionStore interface {
	// InsertRecognition stores a recognition unless its effort already has
	// one (the 1:1 invariant). Returns false without error when the effort
	// was already recognized. A successful insert also bumps the employee's
	// recognition counter and effort-score accumulator, atomically.
	InsertRecognition(ctx context.Context, r model.Recognition) (bool, error)

	// FindRecognitions returns the employee's recognitions with timestamps
	// in [from, to), oldest first.
	FindRecognitions(ctx context.Context, employeeID string, from, to time.Time) ([]model.Recognition, error)
}

// AwardLedger records earned badges, enforcing at most one award per
// (employee, badge) pair.
type AwardLedger interface {
	// FindAward returns ErrNotFound when the pair has no award.
	FindAward(ctx context.Context, employeeID, badgeID string) (model.BadgeAward, error)

	// FindAwards returns the employee's awards earned in [from, to),
	// oldest first.
	FindAwards(ctx context.Context, employeeID string, from, to time.Time) ([]model.BadgeAward, error)

	// InsertAwardIfAbsent atomically records the award unless the pair
	// already holds one. Returns false without error when the award already
	// existed (the losing side of a concurrent race is a no-op). A
	// successful insert also bumps the employee's badge counter,
	// atomically.
	InsertAwardIfAbsent(ctx context.Context, a model.BadgeAward) (bool, error)
}

// DigestStore persists weekly digests keyed by (employee, week start).
type DigestStore interface {
	// UpsertDigest writes the digest, overwriting any previous digest for
	// the same window. Last writer wins.
	UpsertDigest(ctx context.Context, d model.WeeklyDigest) error

	// FindDigest returns ErrNotFound when the window was never generated.
	FindDigest(ctx context.Context, employeeID string, weekStart time.Time) (model.WeeklyDigest, error)
}

// Store bundles all persistence capabilities behind one handle.
type Store interface {
	EmployeeStore
	EffortStore
	RecognitionStore
	AwardLedger
	DigestStore

	Close() error
}
