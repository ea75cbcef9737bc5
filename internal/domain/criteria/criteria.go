// Package criteria evaluates declarative badge requirement sets against an
// employee's effort history.
//
// A requirement set is stored as an open key -> numeric-target mapping plus
// a window qualifier. Keys are parsed into typed threshold variants and
// evaluated through a single dispatch function; the overall progress is the
// minimum per-threshold satisfaction ratio (AND semantics), expressed as a
// percentage.
package criteria

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/acclaimhq/acclaim/internal/domain/model"
)

// Kind discriminates the threshold variants of a requirement set.
type Kind int

// Threshold variants.
const (
	// KindCountOfType counts in-window efforts of one type, optionally
	// filtered by a per-effort impact floor.
	KindCountOfType Kind = iota
	// KindAverageImpact compares the mean impact score of all in-window
	// efforts against the target.
	KindAverageImpact
	// KindStreakLength measures the current run of consecutive active days.
	KindStreakLength
	// KindCollabRatio compares the fraction of in-window efforts that are
	// collaboration-flavored against the target.
	KindCollabRatio
)

// Threshold is one parsed requirement. Target is always positive.
type Threshold struct {
	Kind        Kind
	Key         string           // originating requirement key, kept for error context
	Type        model.EffortType // KindCountOfType only
	Target      float64
	ImpactFloor int // KindCountOfType: minimum per-effort impact, 0 when unset
	MinPerDay   int // KindStreakLength: efforts needed for a day to count
}

// Result is the outcome of evaluating one badge for one employee.
type Result struct {
	Earned   bool
	Progress int // 0..100
}

// countKeys maps count-style requirement keys to the effort type they count.
var countKeys = map[string]model.EffortType{
	"minCollaborationEfforts": model.TypeCollaboration,
	"minTeamEfforts":          model.TypeCollaboration,
	"minBugFixes":             model.TypeBugFix,
	"minCodeReviews":          model.TypeCodeReview,
	"minMentoringEfforts":     model.TypeMentoring,
	"minInnovativeFeatures":   model.TypeFeatureWork,
	"minLearningEfforts":      model.TypeLearning,
}

// averageKeys are aliases for the mean-impact threshold.
var averageKeys = map[string]bool{
	"minAverageScore": true,
	"minEffortScore":  true,
}

// Modifier keys refine other thresholds instead of standing alone.
const (
	keyImpactFloor  = "minImpactScore"  // per-effort floor on count thresholds
	keyStreakDays   = "minStreakDays"   // streak threshold
	keyDailyEfforts = "minDailyEfforts" // per-day floor on the streak threshold
	keyCollabRatio  = "positiveCollaborationRatio"
)

// ParseRequirement turns a stored requirement mapping into typed thresholds.
// An unrecognized key is a hard configuration error, never a silent zero.
func ParseRequirement(req map[string]float64, w model.Window) ([]Threshold, error) {
	if len(req) == 0 {
		return nil, ErrEmptyRequirement
	}
	if _, err := w.Duration(); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrBadWindow, string(w))
	}

	// Deterministic parse order so error messages and threshold order are
	// stable across runs.
	keys := make([]string, 0, len(req))
	for k := range req {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var (
		thresholds  []Threshold
		impactFloor int
		minPerDay   int
	)
	for _, k := range keys {
		v := req[k]
		switch {
		case countKeys[k] != "":
			if v <= 0 {
				return nil, fmt.Errorf("%w: %s=%v", ErrBadTarget, k, v)
			}
			thresholds = append(thresholds, Threshold{Kind: KindCountOfType, Key: k, Type: countKeys[k], Target: v})
		case averageKeys[k]:
			if v <= 0 {
				return nil, fmt.Errorf("%w: %s=%v", ErrBadTarget, k, v)
			}
			thresholds = append(thresholds, Threshold{Kind: KindAverageImpact, Key: k, Target: v})
		case k == keyStreakDays:
			if v <= 0 {
				return nil, fmt.Errorf("%w: %s=%v", ErrBadTarget, k, v)
			}
			thresholds = append(thresholds, Threshold{Kind: KindStreakLength, Key: k, Target: v, MinPerDay: 1})
		case k == keyCollabRatio:
			if v <= 0 || v > 1 {
				return nil, fmt.Errorf("%w: %s=%v must be in (0,1]", ErrBadTarget, k, v)
			}
			thresholds = append(thresholds, Threshold{Kind: KindCollabRatio, Key: k, Target: v})
		case k == keyImpactFloor:
			if v < model.MinImpact || v > model.MaxImpact {
				return nil, fmt.Errorf("%w: %s=%v outside [%d,%d]", ErrBadTarget, k, v, model.MinImpact, model.MaxImpact)
			}
			impactFloor = int(v)
		case k == keyDailyEfforts:
			if v <= 0 {
				return nil, fmt.Errorf("%w: %s=%v", ErrBadTarget, k, v)
			}
			minPerDay = int(v)
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownRequirement, k)
		}
	}

	if len(thresholds) == 0 {
		// Only modifiers were present.
		return nil, ErrDanglingModifier
	}

	// Apply modifiers to the thresholds they parameterize.
	applied := impactFloor == 0
	appliedDaily := minPerDay == 0
	for i := range thresholds {
		if impactFloor > 0 && thresholds[i].Kind == KindCountOfType {
			thresholds[i].ImpactFloor = impactFloor
			applied = true
		}
		if minPerDay > 0 && thresholds[i].Kind == KindStreakLength {
			thresholds[i].MinPerDay = minPerDay
			appliedDaily = true
		}
	}
	if !applied {
		return nil, fmt.Errorf("%w: %s without a count threshold", ErrDanglingModifier, keyImpactFloor)
	}
	if !appliedDaily {
		return nil, fmt.Errorf("%w: %s without a streak threshold", ErrDanglingModifier, keyDailyEfforts)
	}

	return thresholds, nil
}

// Evaluate computes badge progress for one employee's effort history as of
// the given instant. History outside the badge's trailing window is ignored.
// The already-earned short-circuit lives with the orchestrator, which owns
// the award ledger; this function is pure.
func Evaluate(def model.BadgeDefinition, efforts []model.Effort, asOf time.Time) (Result, error) {
	thresholds, err := ParseRequirement(def.Requirement, def.Window)
	if err != nil {
		return Result{}, fmt.Errorf("badge %q: %w", def.ID, err)
	}

	span, _ := def.Window.Duration() // validated by ParseRequirement
	from := asOf.Add(-span)
	window := make([]model.Effort, 0, len(efforts))
	for _, e := range efforts {
		if !e.At.Before(from) && !e.At.After(asOf) {
			window = append(window, e)
		}
	}

	overall := 1.0
	for _, th := range thresholds {
		r := satisfaction(th, window, asOf)
		if r < overall {
			overall = r
		}
	}

	// The small epsilon keeps exact-target histories from losing a percent
	// to float rounding.
	progress := int(math.Floor(overall*100 + 1e-9))
	return Result{Earned: progress >= 100, Progress: progress}, nil
}

// satisfaction is the single dispatch point: it returns the clamped [0,1]
// ratio of actual over target for one threshold.
func satisfaction(th Threshold, window []model.Effort, asOf time.Time) float64 {
	var actual float64
	switch th.Kind {
	case KindCountOfType:
		n := 0
		for _, e := range window {
			if e.Type == th.Type && e.Impact >= th.ImpactFloor {
				n++
			}
		}
		actual = float64(n)
	case KindAverageImpact:
		if len(window) == 0 {
			return 0
		}
		sum := 0
		for _, e := range window {
			sum += e.Impact
		}
		actual = float64(sum) / float64(len(window))
	case KindStreakLength:
		actual = float64(streakDays(window, asOf, th.MinPerDay))
	case KindCollabRatio:
		if len(window) == 0 {
			return 0
		}
		collab := 0
		for _, e := range window {
			if e.Type.Collaborative() {
				collab++
			}
		}
		actual = float64(collab) / float64(len(window))
	}
	return math.Min(1, math.Max(0, actual/th.Target))
}

// streakDays returns the current run of consecutive active days ending at
// asOf. A day is active when it holds at least minPerDay efforts. The day
// containing asOf may still be in progress, so an inactive asOf-day does
// not break a streak that ran through the previous day.
func streakDays(window []model.Effort, asOf time.Time, minPerDay int) int {
	perDay := make(map[time.Time]int, len(window))
	for _, e := range window {
		perDay[e.At.UTC().Truncate(24*time.Hour)]++
	}

	today := asOf.UTC().Truncate(24 * time.Hour)
	day := today
	if perDay[day] < minPerDay {
		day = day.Add(-24 * time.Hour)
	}

	streak := 0
	for perDay[day] >= minPerDay {
		streak++
		day = day.Add(-24 * time.Hour)
	}
	return streak
}
