package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TrackingMetrics records order-status poll cycles.
type TrackingMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewTrackingMetrics registers the tracking poll metrics on the provided registerer.
func NewTrackingMetrics(reg prometheus.Registerer) *TrackingMetrics {
	if reg == nil {
		return &TrackingMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tracking_poll_duration_seconds",
		Help:    "Duration of order status poll cycles in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"watcher"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tracking_poll_success",
		Help: "Successful order status poll cycles.",
	}, []string{"watcher"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tracking_poll_failure",
		Help: "Failed order status poll cycles.",
	}, []string{"watcher"})
	reg.MustRegister(duration, success, failure)
	return &TrackingMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
	}
}

// ObserveDuration records the duration for the named watcher.
func (t *TrackingMetrics) ObserveDuration(watcher string, duration time.Duration) {
	if t == nil || t.duration == nil {
		return
	}
	t.duration.WithLabelValues(normalizeLabel(watcher)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named watcher.
func (t *TrackingMetrics) IncSuccess(watcher string) {
	if t == nil || t.success == nil {
		return
	}
	t.success.WithLabelValues(normalizeLabel(watcher)).Inc()
}

// IncFailure increments the failure counter for the named watcher.
func (t *TrackingMetrics) IncFailure(watcher string) {
	if t == nil || t.failure == nil {
		return
	}
	t.failure.WithLabelValues(normalizeLabel(watcher)).Inc()
}
