package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"
)

func TestNewManager(t *testing.T) {
	convey.Convey("Given a metrics manager", t, func() {
		convey.Convey("When created with defaults on a fresh registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			convey.Convey("Then it should initialize", func() {
				convey.So(manager, convey.ShouldNotBeNil)
				convey.So(manager.namespace, convey.ShouldEqual, "lodestar")
				convey.So(manager.subsystem, convey.ShouldEqual, "telemetry")
				convey.So(manager.enabled, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When created with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithPrometheusRegistry(registry),
				WithNamespace("custom"),
				WithSubsystem("ingest"),
				WithHistogramBuckets([]float64{1, 5, 25, 125}),
				WithMetricsEnabled(false),
			)

			convey.Convey("Then the options should apply", func() {
				convey.So(manager.namespace, convey.ShouldEqual, "custom")
				convey.So(manager.subsystem, convey.ShouldEqual, "ingest")
				convey.So(manager.histogramBuckets, convey.ShouldResemble, []float64{1, 5, 25, 125})
				convey.So(manager.enabled, convey.ShouldBeFalse)
			})
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	convey.Convey("Given the global metrics manager", t, func() {
		convey.Convey("When recording pipeline outcomes", func() {
			convey.Convey("Then recording should not panic", func() {
				convey.So(func() {
					RecordBatchIngested()
					RecordBatchRejected("unknown_vessel")
					RecordSignalsAccepted(3)
					RecordSignalsAccepted(0)
					RecordSignalQuarantined("out_of_range")
					RecordSignalQuarantined("type_mismatch")
					ObservePhaseLatencies(2, 5, 9)
					UpdateRegistrySignals(42)
					RecordStorageError()
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When recording HTTP metrics", func() {
			convey.Convey("Then recording should not panic", func() {
				convey.So(func() {
					RecordHTTPRequest("telemetry", "POST", "200")
					RecordHTTPRequestDuration("telemetry", "POST", "200", 12.5)
					UpdateSystemMemoryUsage(1 << 20)
					UpdateSystemGoroutineCount(8)
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When gathering from the registry", func() {
			families, err := GetRegistry().Gather()

			convey.Convey("Then the telemetry metrics should be registered", func() {
				convey.So(err, convey.ShouldBeNil)
				names := make(map[string]bool, len(families))
				for _, f := range families {
					names[f.GetName()] = true
				}
				convey.So(names["lodestar_telemetry_batches_ingested_total"], convey.ShouldBeTrue)
				convey.So(names["lodestar_telemetry_signals_quarantined_total"], convey.ShouldBeTrue)
				convey.So(names["lodestar_telemetry_validation_latency_milliseconds"], convey.ShouldBeTrue)
			})
		})
	})
}
