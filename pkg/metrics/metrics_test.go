package metrics

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options on a fresh registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should use the gradebook namespace", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "gradebook")
				So(manager.refreshInterval, ShouldEqual, defaultRefreshInterval)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithRefreshInterval(time.Second),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.RecordEvaluation("PASSED", 2.5, 80, false)

			Convey("Then metrics carry the configured name and labels", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				var found bool
				for _, f := range families {
					if f.GetName() == "test_unit_evaluations_total" {
						found = true
						labels := f.GetMetric()[0].GetLabel()
						var names []string
						for _, l := range labels {
							names = append(names, l.GetName())
						}
						So(names, ShouldContain, "env")
						So(names, ShouldContain, "status")
					}
				}
				So(found, ShouldBeTrue)
				So(manager.refreshInterval, ShouldEqual, time.Second)
			})
		})

		Convey("When options receive zero values", func() {
			manager := NewManager(
				WithNamespace(""),
				WithHistogramBuckets(nil),
				WithRefreshInterval(0),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "gradebook")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
				So(manager.refreshInterval, ShouldEqual, defaultRefreshInterval)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording an evaluation that needs a retake", func() {
			before := testutil.ToFloat64(globalManager.evaluations.WithLabelValues("FAILED"))
			retakes := testutil.ToFloat64(globalManager.retakes)
			RecordEvaluation("FAILED", 3.4, 12, true)

			Convey("Then status and retake counters advance", func() {
				So(testutil.ToFloat64(globalManager.evaluations.WithLabelValues("FAILED")), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.retakes), ShouldEqual, retakes+1)
			})
		})

		Convey("When recording history operations", func() {
			before := testutil.ToFloat64(globalManager.historyOpErrors.WithLabelValues("append", "file"))
			RecordHistoryOperation("append", "file", 1.5, nil)
			RecordHistoryOperation("append", "file", 2.5, errors.New("disk full"))

			Convey("Then only failures count as errors", func() {
				So(testutil.ToFloat64(globalManager.historyOpErrors.WithLabelValues("append", "file")), ShouldEqual, before+1)
			})
		})

		Convey("When updating gauges", func() {
			UpdateHistorySize(42)
			RecordValidationError("mathematics")
			RecordEvaluationLatency(3)

			Convey("Then the gauge holds the last value", func() {
				So(testutil.ToFloat64(globalManager.historySize), ShouldEqual, 42)
				So(testutil.ToFloat64(globalManager.validationErrors.WithLabelValues("mathematics")), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		Convey("When recording HTTP traffic", func() {
			So(func() {
				RecordHTTPRequest("evaluations", "POST", "201")
				RecordHTTPRequestDuration("evaluations", "POST", "201", 4)
				RecordHTTPError("evaluations", "POST", "client_error")
			}, ShouldNotPanic)
		})
	})
}

func TestSystemCollector(t *testing.T) {
	Convey("Given the system collector", t, func() {
		Convey("When sampling once", func() {
			CollectSystemMetrics()

			Convey("Then goroutine and memory gauges are populated", func() {
				So(testutil.ToFloat64(globalManager.systemGoroutineCount), ShouldBeGreaterThan, 0)
				So(testutil.ToFloat64(globalManager.systemMemoryUsage), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan struct{})
			go func() {
				RunSystemCollector(ctx)
				close(done)
			}()
			cancel()

			Convey("Then the collector returns", func() {
				select {
				case <-done:
				case <-time.After(2 * time.Second):
					t.Fatal("collector did not stop")
				}
			})
		})
	})
}

func TestHandler(t *testing.T) {
	Convey("Given the metrics handler", t, func() {
		RecordEvaluation("EXCELLENT", 1.2, 100, false)
		rec := httptest.NewRecorder()
		Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

		Convey("Then it exposes gradebook metrics", func() {
			So(rec.Code, ShouldEqual, 200)
			So(strings.Contains(rec.Body.String(), "gradebook_evaluations_total"), ShouldBeTrue)
		})
	})
}
