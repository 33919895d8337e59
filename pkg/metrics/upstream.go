package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// UpstreamMetrics records calls made against the restaurant backend.
type UpstreamMetrics struct {
	duration *prometheus.HistogramVec
	failure  *prometheus.CounterVec
}

// NewUpstreamMetrics registers the upstream call metrics on the provided registerer.
func NewUpstreamMetrics(reg prometheus.Registerer) *UpstreamMetrics {
	if reg == nil {
		return &UpstreamMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "upstream_request_duration_seconds",
		Help:    "Duration of restaurant backend requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "status"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "upstream_request_failure",
		Help: "Restaurant backend requests that failed before a response was read.",
	}, []string{"operation"})
	reg.MustRegister(duration, failure)
	return &UpstreamMetrics{
		duration: duration,
		failure:  failure,
	}
}

// ObserveRequest records the outcome of one upstream request.
func (u *UpstreamMetrics) ObserveRequest(operation, status string, duration time.Duration) {
	if u == nil || u.duration == nil {
		return
	}
	u.duration.WithLabelValues(normalizeLabel(operation), normalizeLabel(status)).Observe(duration.Seconds())
}

// IncFailure increments the transport-failure counter for the named operation.
func (u *UpstreamMetrics) IncFailure(operation string) {
	if u == nil || u.failure == nil {
		return
	}
	u.failure.WithLabelValues(normalizeLabel(operation)).Inc()
}

func normalizeLabel(label string) string {
	if label == "" {
		return "unknown"
	}
	return label
}
