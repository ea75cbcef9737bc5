// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Impact score bounds. Every impact score in the system is an integer
// inside this range, wherever it appears.
const (
	MinImpact = 1
	MaxImpact = 10
)

// Source identifies the external tool an effort was observed in.
type Source string

// Known effort sources.
const (
	SourceIssueTracker   Source = "issue-tracker"
	SourceVersionControl Source = "version-control"
	SourceChat           Source = "chat"
	SourceMeetingTool    Source = "meeting-tool"
	SourceLearningSystem Source = "learning-system"
	SourceCalendar       Source = "calendar"
)

// Valid reports whether s is a known source. The empty string is accepted
// as "any source" in query filters, not in stored efforts.
func (s Source) Valid() bool {
	switch s {
	case SourceIssueTracker, SourceVersionControl, SourceChat,
		SourceMeetingTool, SourceLearningSystem, SourceCalendar:
		return true
	}
	return false
}

// EffortType is the classified category of an effort.
type EffortType string

// Known effort types.
const (
	TypeFeatureWork   EffortType = "feature-work"
	TypeBugFix        EffortType = "bug-fix"
	TypeCodeReview    EffortType = "code-review"
	TypeCollaboration EffortType = "collaboration"
	TypeMentoring     EffortType = "mentoring"
	TypeLearning      EffortType = "learning"
)

// Valid reports whether t is a known effort type.
func (t EffortType) Valid() bool {
	switch t {
	case TypeFeatureWork, TypeBugFix, TypeCodeReview,
		TypeCollaboration, TypeMentoring, TypeLearning:
		return true
	}
	return false
}

// Collaborative reports whether t counts toward collaboration metrics.
// The collaboration-flavored subset is collaboration, code review and
// mentoring.
func (t EffortType) Collaborative() bool {
	switch t {
	case TypeCollaboration, TypeCodeReview, TypeMentoring:
		return true
	}
	return false
}

// Window qualifies the trailing time range a badge requirement is measured
// over.
type Window string

// Window qualifiers, a fixed enumeration.
const (
	WindowDay     Window = "day"
	WindowWeek    Window = "week"
	WindowMonth   Window = "month"
	WindowQuarter Window = "quarter"
)

// Duration returns the trailing span the window covers. Month and quarter
// use fixed 30/90 day spans.
func (w Window) Duration() (time.Duration, error) {
	const day = 24 * time.Hour
	switch w {
	case WindowDay:
		return day, nil
	case WindowWeek:
		return 7 * day, nil
	case WindowMonth:
		return 30 * day, nil
	case WindowQuarter:
		return 90 * day, nil
	}
	return 0, fmt.Errorf("unknown window qualifier %q", string(w))
}

// Employee is a platform member. The counter fields are denormalized
// caches maintained alongside writes; the effort, recognition and award
// records remain the source of truth.
type Employee struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Team             string    `json:"team,omitempty"`
	Role             string    `json:"role,omitempty"`
	JoinedAt         time.Time `json:"joined_at"`
	Active           bool      `json:"active"`
	RecognitionCount int       `json:"recognition_count"`
	BadgeCount       int       `json:"badge_count"`
	TotalEffortScore int       `json:"total_effort_score"`
	LastActivityAt   time.Time `json:"last_activity_at,omitempty"`
}

// Effort is an immutable fact describing one unit of observed work.
// Created once by ingestion and never mutated.
type Effort struct {
	ID          string     `json:"id"`
	EmployeeID  string     `json:"employee_id"`
	Source      Source     `json:"source"`
	Type        EffortType `json:"type"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Impact      int        `json:"impact"`
	At          time.Time  `json:"at"`
}

// Validate checks the invariants an effort must satisfy before it is
// accepted into the store.
func (e Effort) Validate() error {
	switch {
	case strings.TrimSpace(e.ID) == "":
		return fmt.Errorf("effort: missing id")
	case strings.TrimSpace(e.EmployeeID) == "":
		return fmt.Errorf("effort: missing employee id")
	case !e.Source.Valid():
		return fmt.Errorf("effort: unknown source %q", string(e.Source))
	case !e.Type.Valid():
		return fmt.Errorf("effort: unknown type %q", string(e.Type))
	case e.Impact < MinImpact || e.Impact > MaxImpact:
		return fmt.Errorf("effort: impact %d outside [%d,%d]", e.Impact, MinImpact, MaxImpact)
	case e.At.IsZero():
		return fmt.Errorf("effort: missing timestamp")
	}
	return nil
}

// Recognition is a human-readable acknowledgment derived from exactly one
// effort. At most one recognition exists per effort.
type Recognition struct {
	ID         string     `json:"id"`
	EmployeeID string     `json:"employee_id"`
	EffortID   string     `json:"effort_id"`
	Message    string     `json:"message"`
	Glyph      string     `json:"glyph"`
	Category   EffortType `json:"category"`
	Impact     int        `json:"impact"`
	At         time.Time  `json:"at"`
}

// BadgeDefinition is a named, versioned badge rule. Requirements is an open
// key to numeric-target mapping; the criteria package interprets the keys.
type BadgeDefinition struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Icon        string             `json:"icon,omitempty"`
	Rarity      string             `json:"rarity,omitempty"`
	Points      int                `json:"points,omitempty"`
	Category    string             `json:"category,omitempty"`
	Unlock      string             `json:"unlock,omitempty"`
	Active      bool               `json:"active"`
	Requirement map[string]float64 `json:"requirement"`
	Window      Window             `json:"window"`
}

// BadgeAward records that an employee earned a badge. The
// (EmployeeID, BadgeID) pair is unique; an award is created exactly once.
type BadgeAward struct {
	EmployeeID string    `json:"employee_id"`
	BadgeID    string    `json:"badge_id"`
	EarnedAt   time.Time `json:"earned_at"`
	Progress   int       `json:"progress"`
}

// WeeklyDigest is the aggregate summary of one employee's week. The
// (EmployeeID, WeekStart) pair is unique; regenerating a digest for the
// same window overwrites the previous one.
type WeeklyDigest struct {
	EmployeeID         string    `json:"employee_id"`
	WeekStart          time.Time `json:"week_start"`
	WeekEnd            time.Time `json:"week_end"`
	TotalEfforts       int       `json:"total_efforts"`
	CollaborationScore float64   `json:"collaboration_score"`
	ImpactScore        float64   `json:"impact_score"`
	GrowthPercent      float64   `json:"growth_percent"`
	TopRecognitions    []string  `json:"top_recognitions"`
	Highlights         []string  `json:"highlights"`
	BadgesEarned       []string  `json:"badges_earned"`
	GeneratedAt        time.Time `json:"generated_at"`
}
