package criteria

import "errors"

// Sentinel kinds for badge-criteria configuration errors. All of them mark
// a malformed badge definition: they are surfaced to the caller and never
// silently defaulted.
var (
	ErrUnknownRequirement = errors.New("unknown requirement key")
	ErrEmptyRequirement   = errors.New("empty requirement set")
	ErrBadTarget          = errors.New("requirement target must be positive")
	ErrBadWindow          = errors.New("invalid window qualifier")
	ErrDanglingModifier   = errors.New("modifier has no threshold to apply to")
)
