// Package observability owns the process-wide Prometheus collectors.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "runtracker",
		Subsystem: "mediator",
		Name:      "request_duration_seconds",
		Help:      "Time spent handling commands and queries, labeled by request and outcome.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
	}, []string{"request", "outcome"})

	activitiesPersisted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "runtracker",
		Subsystem: "persistence",
		Name:      "activities_created_total",
		Help:      "Number of activities saved by the write store.",
	})
	workoutsPersisted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "runtracker",
		Subsystem: "persistence",
		Name:      "workouts_created_total",
		Help:      "Number of workouts saved by the write store.",
	})
	lastWriteGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "runtracker",
		Subsystem: "persistence",
		Name:      "last_write_timestamp_seconds",
		Help:      "Unix timestamp of the most recent successful save.",
	})
)

func init() {
	prometheus.MustRegister(requestDuration, activitiesPersisted, workoutsPersisted, lastWriteGauge)
}

// ObserveRequest records how long a request took.
func ObserveRequest(request, outcome string, elapsed time.Duration) {
	requestDuration.WithLabelValues(request, outcome).Observe(elapsed.Seconds())
}

// RecordActivityPersisted counts a saved activity and moves the write watermark.
func RecordActivityPersisted(ts time.Time) {
	activitiesPersisted.Inc()
	setWatermark(ts)
}

// RecordWorkoutPersisted counts a saved workout and moves the write watermark.
func RecordWorkoutPersisted(ts time.Time) {
	workoutsPersisted.Inc()
	setWatermark(ts)
}

func setWatermark(ts time.Time) {
	if ts.IsZero() {
		return
	}
	lastWriteGauge.Set(float64(ts.Unix()))
}
