// Package digest aggregates one employee's efforts, recognitions and badge
// awards over a week into a summary with derived metrics.
//
// Build is pure and deterministic: the same input always produces the same
// digest, so regenerating a window overwrites the previous result without
// drift.
package digest

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/acclaimhq/acclaim/internal/domain/model"
)

// GrowthMetric selects the quantity compared against the preceding window
// when computing growth percent.
type GrowthMetric string

// Growth metric choices.
const (
	GrowthByEffortCount GrowthMetric = "effort_count"
	GrowthByImpactScore GrowthMetric = "impact_score"
)

// DefaultTopN is the number of top recognitions referenced by a digest.
const DefaultTopN = 5

// Input carries everything Build needs. All slices are already scoped to
// the employee; Efforts, Recognitions and Awards hold only in-window
// records, Previous holds the efforts of the immediately preceding window
// of equal length.
type Input struct {
	EmployeeID   string
	WeekStart    time.Time // Monday-aligned, inclusive
	WeekEnd      time.Time // exclusive
	Efforts      []model.Effort
	Recognitions []model.Recognition
	Awards       []model.BadgeAward
	Previous     []model.Effort
	BadgeNames   map[string]string // badge id -> display name, for highlights
	TopN         int               // 0 means DefaultTopN
	Growth       GrowthMetric      // "" means GrowthByEffortCount
	GeneratedAt  time.Time
}

// Build computes the weekly digest. A window with zero efforts yields
// all-zero metrics and an empty highlight list, not an error.
func Build(in Input) model.WeeklyDigest {
	topN := in.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}
	growth := in.Growth
	if growth == "" {
		growth = GrowthByEffortCount
	}

	d := model.WeeklyDigest{
		EmployeeID:      in.EmployeeID,
		WeekStart:       in.WeekStart,
		WeekEnd:         in.WeekEnd,
		TotalEfforts:    len(in.Efforts),
		TopRecognitions: []string{},
		Highlights:      []string{},
		BadgesEarned:    []string{},
		GeneratedAt:     in.GeneratedAt,
	}

	d.CollaborationScore = collaborationScore(in.Efforts)
	d.ImpactScore = impactScore(in.Efforts)
	d.GrowthPercent = growthPercent(growth, in.Efforts, in.Previous)
	d.TopRecognitions = topRecognitions(in.Recognitions, topN)

	awards := append([]model.BadgeAward(nil), in.Awards...)
	sort.Slice(awards, func(i, j int) bool { return awards[i].EarnedAt.Before(awards[j].EarnedAt) })
	for _, a := range awards {
		d.BadgesEarned = append(d.BadgesEarned, a.BadgeID)
	}

	d.Highlights = highlights(in, awards)
	return d
}

// collaborationScore is the impact-weighted fraction of efforts that are
// collaboration-flavored, in [0,1].
func collaborationScore(efforts []model.Effort) float64 {
	var collab, total int
	for _, e := range efforts {
		total += e.Impact
		if e.Type.Collaborative() {
			collab += e.Impact
		}
	}
	if total == 0 {
		return 0
	}
	return round4(float64(collab) / float64(total))
}

// impactScore is the mean impact of the window's efforts scaled to the
// 0-100 display range.
func impactScore(efforts []model.Effort) float64 {
	if len(efforts) == 0 {
		return 0
	}
	sum := 0
	for _, e := range efforts {
		sum += e.Impact
	}
	mean := float64(sum) / float64(len(efforts))
	return round2(mean * 100 / model.MaxImpact)
}

// growthPercent is the percentage change of the chosen metric versus the
// preceding window. An empty baseline with current activity reads as +100.
func growthPercent(metric GrowthMetric, current, previous []model.Effort) float64 {
	measure := func(efforts []model.Effort) float64 {
		if metric == GrowthByImpactScore {
			return impactScore(efforts)
		}
		return float64(len(efforts))
	}
	cur, prev := measure(current), measure(previous)
	switch {
	case prev == 0 && cur == 0:
		return 0
	case prev == 0:
		return 100
	}
	return round2((cur - prev) / prev * 100)
}

// topRecognitions orders by impact descending, breaking ties by the most
// recent timestamp and finally by id for full determinism.
func topRecognitions(recs []model.Recognition, n int) []string {
	sorted := append([]model.Recognition(nil), recs...)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Impact != b.Impact {
			return a.Impact > b.Impact
		}
		if !a.At.Equal(b.At) {
			return a.At.After(b.At)
		}
		return a.ID < b.ID
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	ids := make([]string, 0, len(sorted))
	for _, r := range sorted {
		ids = append(ids, r.ID)
	}
	return ids
}

func highlights(in Input, awards []model.BadgeAward) []string {
	if len(in.Efforts) == 0 {
		return []string{}
	}
	out := []string{summaryLine(in.Efforts, in.Recognitions)}

	for _, e := range in.Efforts {
		if e.Type == model.TypeLearning && e.Title != "" {
			out = append(out, fmt.Sprintf("Learning win: %s", e.Title))
		}
	}
	for _, a := range awards {
		name := in.BadgeNames[a.BadgeID]
		if name == "" {
			name = a.BadgeID
		}
		out = append(out, fmt.Sprintf("Unlocked the %s badge", name))
	}
	return out
}

func summaryLine(efforts []model.Effort, recs []model.Recognition) string {
	highImpact := 0
	byType := map[model.EffortType]int{}
	for _, e := range efforts {
		if e.Impact >= 8 {
			highImpact++
		}
		byType[e.Type]++
	}

	// Dominant type; ties resolve lexicographically so reruns agree.
	dominant, best := model.EffortType(""), -1
	for t, n := range byType {
		if n > best || (n == best && t < dominant) {
			dominant, best = t, n
		}
	}

	return fmt.Sprintf(
		"You made %d contributions this week (%d high-impact), with a focus on %s, and earned %d recognitions.",
		len(efforts), highImpact, dominant, len(recs),
	)
}

func round2(x float64) float64 { return math.Round(x*100) / 100 }
func round4(x float64) float64 { return math.Round(x*10000) / 10000 }
