package recognition_test

import (
	"testing"
	"time"

	"github.com/acclaimhq/acclaim/internal/domain/model"
	"github.com/acclaimhq/acclaim/internal/domain/recognition"
	. "github.com/smartystreets/goconvey/convey"
)

func sampleEffort(impact int) model.Effort {
	return model.Effort{
		ID:         "eff-42",
		EmployeeID: "emp-1",
		Source:     model.SourceVersionControl,
		Type:       model.TypeBugFix,
		Title:      "harden payment retry",
		Impact:     impact,
		At:         time.Date(2026, 3, 4, 9, 30, 0, 0, time.UTC),
	}
}

func TestSynthesize(t *testing.T) {
	Convey("Given a synthesizer with the default policy", t, func() {
		s := recognition.NewSynthesizer()

		Convey("A qualifying effort yields a recognition", func() {
			rec, ok := s.Synthesize(sampleEffort(8))
			So(ok, ShouldBeTrue)
			So(rec.EmployeeID, ShouldEqual, "emp-1")
			So(rec.EffortID, ShouldEqual, "eff-42")
			So(rec.Impact, ShouldEqual, 8)
			So(rec.Category, ShouldEqual, model.TypeBugFix)
			So(rec.Glyph, ShouldEqual, "🔧")
			So(rec.Message, ShouldContainSubstring, "harden payment retry")
			So(rec.Message, ShouldNotContainSubstring, "{effort}")
		})

		Convey("The recognition timestamp mirrors the source effort", func() {
			e := sampleEffort(8)
			rec, ok := s.Synthesize(e)
			So(ok, ShouldBeTrue)
			So(rec.At, ShouldEqual, e.At)
		})

		Convey("An effort below the threshold is skipped", func() {
			_, ok := s.Synthesize(sampleEffort(4))
			So(ok, ShouldBeFalse)
		})

		Convey("An effort exactly at the threshold qualifies", func() {
			_, ok := s.Synthesize(sampleEffort(recognition.DefaultMinImpact))
			So(ok, ShouldBeTrue)
		})

		Convey("The message for one effort is stable across re-synthesis", func() {
			a, _ := s.Synthesize(sampleEffort(8))
			b, _ := s.Synthesize(sampleEffort(8))
			So(a.Message, ShouldEqual, b.Message)
			So(a.Glyph, ShouldEqual, b.Glyph)
		})

		Convey("A blank title falls back to a generic subject", func() {
			e := sampleEffort(8)
			e.Title = "  "
			rec, _ := s.Synthesize(e)
			So(rec.Message, ShouldContainSubstring, "your contribution")
		})

		Convey("An unmapped effort type gets the generic glyph", func() {
			e := sampleEffort(8)
			e.Type = "whiteboarding"
			rec, _ := s.Synthesize(e)
			So(rec.Glyph, ShouldEqual, "🏅")
		})

		Convey("High-impact efforts get an impact phrase appended", func() {
			rec, _ := s.Synthesize(sampleEffort(9))
			low, _ := s.Synthesize(sampleEffort(5))
			So(len(rec.Message), ShouldBeGreaterThan, len(low.Message))
		})
	})

	Convey("Given a synthesizer with a raised threshold", t, func() {
		s := recognition.NewSynthesizer(recognition.WithMinImpact(7))

		Convey("Efforts under the raised bar are skipped", func() {
			_, ok := s.Synthesize(sampleEffort(6))
			So(ok, ShouldBeFalse)
			_, ok = s.Synthesize(sampleEffort(7))
			So(ok, ShouldBeTrue)
		})
	})
}
