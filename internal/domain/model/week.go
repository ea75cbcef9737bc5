package model

import (
	"errors"
	"fmt"
	"time"
)

const day = 24 * time.Hour

// ErrBadWeek marks a digest window that is not a Monday-aligned week.
var ErrBadWeek = errors.New("invalid week window")

// NormalizeWeek validates and canonicalizes a digest week boundary pair.
//
// weekStart must fall on a Monday (UTC). weekEnd may be given either as the
// exclusive boundary exactly seven days after weekStart, or as the inclusive
// final day (Sunday) six days after it. The returned pair is always the
// half-open form [start, start+7d) with both instants truncated to midnight
// UTC.
func NormalizeWeek(weekStart, weekEnd time.Time) (time.Time, time.Time, error) {
	start := weekStart.UTC().Truncate(day)
	if start.Weekday() != time.Monday {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: week start %s is not a Monday", ErrBadWeek, start.Format(time.DateOnly))
	}
	end := weekEnd.UTC().Truncate(day)
	switch end.Sub(start) {
	case 7 * day:
		// Already the exclusive boundary.
	case 6 * day:
		// Inclusive Sunday; convert to the exclusive boundary.
		end = end.Add(day)
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("%w: [%s, %s] does not span seven days",
			ErrBadWeek, start.Format(time.DateOnly), end.Format(time.DateOnly))
	}
	return start, end, nil
}

// WeekOf returns the Monday-aligned week window containing t, in the
// half-open form produced by NormalizeWeek.
func WeekOf(t time.Time) (time.Time, time.Time) {
	d := t.UTC().Truncate(day)
	offset := (int(d.Weekday()) + 6) % 7 // days since Monday
	start := d.Add(-time.Duration(offset) * day)
	return start, start.Add(7 * day)
}
