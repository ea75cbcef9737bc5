package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/acclaimhq/acclaim/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSeenAndRecord(t *testing.T) {
	ctx := context.Background()

	Convey("Given a fresh deduper", t, func() {
		d := dedupe.NewMemoryDeduper()

		Convey("The first sighting of an ID records it", func() {
			So(d.SeenAndRecord(ctx, "eff-1"), ShouldBeFalse)
			So(d.Size(), ShouldEqual, 1)
		})

		Convey("The second sighting reports a duplicate", func() {
			So(d.SeenAndRecord(ctx, "eff-1"), ShouldBeFalse)
			So(d.SeenAndRecord(ctx, "eff-1"), ShouldBeTrue)
			So(d.Size(), ShouldEqual, 1)
		})

		Convey("Unrecord allows an ID to be retried", func() {
			So(d.SeenAndRecord(ctx, "eff-1"), ShouldBeFalse)
			d.Unrecord(ctx, "eff-1")
			So(d.Size(), ShouldEqual, 0)
			So(d.SeenAndRecord(ctx, "eff-1"), ShouldBeFalse)
		})

		Convey("Unrecording an unknown ID is a no-op", func() {
			d.Unrecord(ctx, "never-seen")
			So(d.Size(), ShouldEqual, 0)
		})
	})

	Convey("Given a bounded deduper at capacity", t, func() {
		d := dedupe.NewMemoryDeduper(dedupe.WithMaxSize(3))
		for i := 0; i < 3; i++ {
			So(d.SeenAndRecord(ctx, fmt.Sprintf("eff-%d", i)), ShouldBeFalse)
		}

		Convey("A new ID evicts the oldest one", func() {
			So(d.SeenAndRecord(ctx, "eff-3"), ShouldBeFalse)
			So(d.Size(), ShouldEqual, 3)
			// eff-0 was evicted, so it reads as unseen again.
			So(d.SeenAndRecord(ctx, "eff-0"), ShouldBeFalse)
			// eff-2 is still tracked.
			So(d.SeenAndRecord(ctx, "eff-2"), ShouldBeTrue)
		})
	})

	Convey("Given concurrent recorders of the same ID", t, func() {
		d := dedupe.NewMemoryDeduper()

		Convey("Exactly one wins", func() {
			const workers = 32
			var wg sync.WaitGroup
			fresh := make(chan bool, workers)
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					fresh <- !d.SeenAndRecord(ctx, "contested")
				}()
			}
			wg.Wait()
			close(fresh)

			wins := 0
			for ok := range fresh {
				if ok {
					wins++
				}
			}
			So(wins, ShouldEqual, 1)
			So(d.Size(), ShouldEqual, 1)
		})
	})
}
