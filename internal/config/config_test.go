package config_test

import (
	"runtime"
	"testing"

	"github.com/acclaimhq/acclaim/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with defaults", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.Store, convey.ShouldEqual, config.StoreMemory)
			convey.So(cfg.QueueSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*2)
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 50_000)
			convey.So(cfg.MinRecognitionImpact, convey.ShouldEqual, 5)
			convey.So(cfg.TopRecognitions, convey.ShouldEqual, 5)
			convey.So(cfg.GrowthMetric, convey.ShouldEqual, "effort_count")
			convey.So(cfg.RetryAttempts, convey.ShouldEqual, 3)
		})
	})
}
