package model_test

import (
	"testing"
	"time"

	"github.com/acclaimhq/acclaim/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func validEffort() model.Effort {
	return model.Effort{
		ID:         "eff-1",
		EmployeeID: "emp-1",
		Source:     model.SourceVersionControl,
		Type:       model.TypeBugFix,
		Title:      "fix flaky retry loop",
		Impact:     8,
		At:         time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC),
	}
}

func TestEffortValidate(t *testing.T) {
	Convey("Given a well-formed effort", t, func() {
		e := validEffort()

		Convey("Then it validates", func() {
			So(e.Validate(), ShouldBeNil)
		})

		Convey("When the impact score is below the lower bound", func() {
			e.Impact = 0
			So(e.Validate(), ShouldNotBeNil)
		})

		Convey("When the impact score is above the upper bound", func() {
			e.Impact = 11
			So(e.Validate(), ShouldNotBeNil)
		})

		Convey("When the source is unknown", func() {
			e.Source = "carrier-pigeon"
			So(e.Validate(), ShouldNotBeNil)
		})

		Convey("When the type is unknown", func() {
			e.Type = "interpretive-dance"
			So(e.Validate(), ShouldNotBeNil)
		})

		Convey("When the employee id is blank", func() {
			e.EmployeeID = "  "
			So(e.Validate(), ShouldNotBeNil)
		})
	})
}

func TestCollaborativeTypes(t *testing.T) {
	Convey("Given the set of effort types", t, func() {
		Convey("Then collaboration, code review and mentoring are collaborative", func() {
			So(model.TypeCollaboration.Collaborative(), ShouldBeTrue)
			So(model.TypeCodeReview.Collaborative(), ShouldBeTrue)
			So(model.TypeMentoring.Collaborative(), ShouldBeTrue)
		})

		Convey("And feature work, bug fixes and learning are not", func() {
			So(model.TypeFeatureWork.Collaborative(), ShouldBeFalse)
			So(model.TypeBugFix.Collaborative(), ShouldBeFalse)
			So(model.TypeLearning.Collaborative(), ShouldBeFalse)
		})
	})
}

func TestWindowDuration(t *testing.T) {
	Convey("Given the window qualifiers", t, func() {
		Convey("Then each known qualifier has a trailing span", func() {
			for w, want := range map[model.Window]time.Duration{
				model.WindowDay:     24 * time.Hour,
				model.WindowWeek:    7 * 24 * time.Hour,
				model.WindowMonth:   30 * 24 * time.Hour,
				model.WindowQuarter: 90 * 24 * time.Hour,
			} {
				d, err := w.Duration()
				So(err, ShouldBeNil)
				So(d, ShouldEqual, want)
			}
		})

		Convey("And an unknown qualifier is an error", func() {
			_, err := model.Window("fortnight").Duration()
			So(err, ShouldNotBeNil)
		})
	})
}

func TestNormalizeWeek(t *testing.T) {
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) // a Monday
	sunday := monday.AddDate(0, 0, 6)
	nextMonday := monday.AddDate(0, 0, 7)

	Convey("Given a Monday-aligned week", t, func() {
		Convey("When the end is the exclusive next Monday", func() {
			s, e, err := model.NormalizeWeek(monday, nextMonday)
			So(err, ShouldBeNil)
			So(s, ShouldEqual, monday)
			So(e, ShouldEqual, nextMonday)
		})

		Convey("When the end is the inclusive Sunday", func() {
			s, e, err := model.NormalizeWeek(monday, sunday)
			So(err, ShouldBeNil)
			So(s, ShouldEqual, monday)
			So(e, ShouldEqual, nextMonday)
		})

		Convey("When the start carries a time-of-day it is truncated", func() {
			s, _, err := model.NormalizeWeek(monday.Add(9*time.Hour), nextMonday)
			So(err, ShouldBeNil)
			So(s, ShouldEqual, monday)
		})
	})

	Convey("Given a misaligned week", t, func() {
		Convey("A Tuesday start is rejected", func() {
			_, _, err := model.NormalizeWeek(monday.AddDate(0, 0, 1), nextMonday)
			So(err, ShouldNotBeNil)
		})

		Convey("A span that is not seven days is rejected", func() {
			_, _, err := model.NormalizeWeek(monday, monday.AddDate(0, 0, 10))
			So(err, ShouldNotBeNil)
		})
	})
}

func TestWeekOf(t *testing.T) {
	Convey("Given instants across a week", t, func() {
		monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

		Convey("Then every day maps to the same Monday-aligned window", func() {
			for i := 0; i < 7; i++ {
				s, e := model.WeekOf(monday.AddDate(0, 0, i).Add(13 * time.Hour))
				So(s, ShouldEqual, monday)
				So(e, ShouldEqual, monday.AddDate(0, 0, 7))
			}
		})
	})
}
