package digest_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/acclaimhq/acclaim/internal/domain/digest"
	"github.com/acclaimhq/acclaim/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var (
	weekStart = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) // Monday
	weekEnd   = weekStart.AddDate(0, 0, 7)
	genAt     = time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)
)

func weekEffort(id string, t model.EffortType, impact, day int) model.Effort {
	return model.Effort{
		ID:         id,
		EmployeeID: "emp-1",
		Source:     model.SourceIssueTracker,
		Type:       t,
		Title:      "effort " + id,
		Impact:     impact,
		At:         weekStart.AddDate(0, 0, day).Add(10 * time.Hour),
	}
}

func mixedWeek() []model.Effort {
	return []model.Effort{
		weekEffort("e1", model.TypeFeatureWork, 9, 0),
		weekEffort("e2", model.TypeBugFix, 8, 1),
		weekEffort("e3", model.TypeCollaboration, 7, 2),
		weekEffort("e4", model.TypeCodeReview, 7, 3),
		weekEffort("e5", model.TypeMentoring, 8, 4),
	}
}

func TestBuildMetrics(t *testing.T) {
	Convey("Given a week of five mixed efforts", t, func() {
		in := digest.Input{
			EmployeeID:  "emp-1",
			WeekStart:   weekStart,
			WeekEnd:     weekEnd,
			Efforts:     mixedWeek(),
			GeneratedAt: genAt,
		}

		d := digest.Build(in)

		Convey("Total efforts counts the window", func() {
			So(d.TotalEfforts, ShouldEqual, 5)
		})

		Convey("Collaboration score is the impact-weighted collaborative fraction", func() {
			// Collaborative impact 7+7+8=22 over total 39.
			So(d.CollaborationScore, ShouldAlmostEqual, 0.5641, 0.0001)
		})

		Convey("Impact score is the mean impact scaled to 0-100", func() {
			// mean(9,8,7,7,8) = 7.8 -> 78.
			So(d.ImpactScore, ShouldEqual, 78.0)
		})

		Convey("Growth against an empty baseline reads as +100", func() {
			So(d.GrowthPercent, ShouldEqual, 100)
		})
	})

	Convey("Given a window with zero efforts", t, func() {
		d := digest.Build(digest.Input{
			EmployeeID:  "emp-1",
			WeekStart:   weekStart,
			WeekEnd:     weekEnd,
			GeneratedAt: genAt,
		})

		Convey("All metrics are zero and highlights are empty", func() {
			So(d.TotalEfforts, ShouldEqual, 0)
			So(d.CollaborationScore, ShouldEqual, 0)
			So(d.ImpactScore, ShouldEqual, 0)
			So(d.GrowthPercent, ShouldEqual, 0)
			So(d.Highlights, ShouldBeEmpty)
			So(d.TopRecognitions, ShouldBeEmpty)
			So(d.BadgesEarned, ShouldBeEmpty)
		})
	})
}

func TestGrowthPercent(t *testing.T) {
	Convey("Given efforts in both the current and preceding windows", t, func() {
		current := mixedWeek()
		previous := []model.Effort{
			weekEffort("p1", model.TypeBugFix, 6, -7),
			weekEffort("p2", model.TypeBugFix, 6, -6),
			weekEffort("p3", model.TypeBugFix, 6, -5),
			weekEffort("p4", model.TypeBugFix, 6, -4),
		}

		Convey("The default metric compares effort counts", func() {
			d := digest.Build(digest.Input{
				EmployeeID: "emp-1", WeekStart: weekStart, WeekEnd: weekEnd,
				Efforts: current, Previous: previous, GeneratedAt: genAt,
			})
			So(d.GrowthPercent, ShouldEqual, 25) // 5 vs 4
		})

		Convey("The impact-score metric compares scaled mean impact", func() {
			d := digest.Build(digest.Input{
				EmployeeID: "emp-1", WeekStart: weekStart, WeekEnd: weekEnd,
				Efforts: current, Previous: previous,
				Growth: digest.GrowthByImpactScore, GeneratedAt: genAt,
			})
			So(d.GrowthPercent, ShouldEqual, 30) // 78 vs 60
		})

		Convey("A quieter week yields negative growth", func() {
			d := digest.Build(digest.Input{
				EmployeeID: "emp-1", WeekStart: weekStart, WeekEnd: weekEnd,
				Efforts: previous[:2], Previous: previous, GeneratedAt: genAt,
			})
			So(d.GrowthPercent, ShouldEqual, -50)
		})
	})
}

func TestTopRecognitions(t *testing.T) {
	rec := func(id string, impact, day int) model.Recognition {
		return model.Recognition{
			ID: id, EmployeeID: "emp-1", EffortID: "eff-" + id,
			Impact: impact, At: weekStart.AddDate(0, 0, day),
		}
	}

	Convey("Given more recognitions than the digest references", t, func() {
		in := digest.Input{
			EmployeeID: "emp-1", WeekStart: weekStart, WeekEnd: weekEnd,
			Efforts: mixedWeek(),
			Recognitions: []model.Recognition{
				rec("r1", 7, 0),
				rec("r2", 9, 1),
				rec("r3", 7, 3), // same impact as r1 but more recent
				rec("r4", 8, 2),
			},
			TopN:        3,
			GeneratedAt: genAt,
		}

		d := digest.Build(in)

		Convey("They are ordered by impact, ties broken most-recent first", func() {
			So(d.TopRecognitions, ShouldResemble, []string{"r2", "r4", "r3"})
		})
	})
}

func TestHighlightsAndBadges(t *testing.T) {
	Convey("Given a week with learning efforts and a badge award", t, func() {
		efforts := append(mixedWeek(), model.Effort{
			ID: "e6", EmployeeID: "emp-1", Source: model.SourceLearningSystem,
			Type: model.TypeLearning, Title: "Distributed Systems course",
			Impact: 6, At: weekStart.AddDate(0, 0, 5),
		})
		in := digest.Input{
			EmployeeID: "emp-1", WeekStart: weekStart, WeekEnd: weekEnd,
			Efforts: efforts,
			Awards: []model.BadgeAward{
				{EmployeeID: "emp-1", BadgeID: "problem-solver", EarnedAt: weekStart.AddDate(0, 0, 2), Progress: 100},
			},
			BadgeNames:  map[string]string{"problem-solver": "Problem Solver"},
			GeneratedAt: genAt,
		}

		d := digest.Build(in)

		Convey("Badges earned in-window are listed", func() {
			So(d.BadgesEarned, ShouldResemble, []string{"problem-solver"})
		})

		Convey("Highlights carry the summary, learning wins and badge unlocks", func() {
			So(len(d.Highlights), ShouldEqual, 3)
			So(d.Highlights[0], ShouldContainSubstring, "6 contributions")
			So(d.Highlights[1], ShouldContainSubstring, "Distributed Systems course")
			So(d.Highlights[2], ShouldContainSubstring, "Problem Solver")
		})
	})
}

func TestDeterminism(t *testing.T) {
	Convey("Given identical inputs", t, func() {
		in := digest.Input{
			EmployeeID: "emp-1", WeekStart: weekStart, WeekEnd: weekEnd,
			Efforts: mixedWeek(),
			Recognitions: []model.Recognition{
				{ID: "r1", Impact: 8, At: weekStart.Add(30 * time.Hour)},
				{ID: "r2", Impact: 8, At: weekStart.Add(30 * time.Hour)},
			},
			GeneratedAt: genAt,
		}

		Convey("Repeated builds produce identical digests", func() {
			a, b := digest.Build(in), digest.Build(in)
			So(reflect.DeepEqual(a, b), ShouldBeTrue)
		})
	})
}
