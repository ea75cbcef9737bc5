package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("Pipeline counters record without panicking", func() {
			So(func() {
				RecordEffortIngested()
				RecordEffortDuplicate()
				RecordEffortRejected()
				RecordRecognitionCreated()
				RecordRecognitionSkipped()
				RecordBadgeEvaluation()
				RecordBadgeAwarded()
				RecordDigestGenerated()
				RecordEmployeeRegistered()
				RecordStoreRetry()
				RecordWorkerError()
			}, ShouldNotPanic)
		})

		Convey("Latency histograms record without panicking", func() {
			So(func() {
				RecordEvaluationLatency(12.5)
				RecordDigestLatency(40.0)
				RecordWorkerProcessingLatency(3.2)
			}, ShouldNotPanic)
		})

		Convey("Queue and worker gauges update without panicking", func() {
			So(func() {
				UpdateQueueSize(10)
				UpdateQueueCapacity(100)
				UpdateQueueUtilization(0.1)
				RecordQueueEnqueue()
				RecordQueueEnqueueError()
				RecordQueueDequeue()
				UpdateWorkerCount(8)
			}, ShouldNotPanic)
		})

		Convey("HTTP metrics record with labels", func() {
			So(func() {
				RecordHTTPRequest("/efforts", "POST", "202")
				RecordHTTPRequestDuration("/efforts", "POST", "202", 5.0)
			}, ShouldNotPanic)
		})
	})
}

func TestGetRegistry(t *testing.T) {
	Convey("Given the package registry", t, func() {
		Convey("GetRegistry returns the custom registry", func() {
			So(GetRegistry(), ShouldNotBeNil)
			So(GetRegistry(), ShouldEqual, customRegistry)
		})

		Convey("The registry gathers the engine metrics", func() {
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
		})
	})
}
