package core

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetricsRecorder exports operation counters and latency histograms
// through a prometheus registry.
type PrometheusMetricsRecorder struct {
	results   *prometheus.CounterVec
	durations *prometheus.HistogramVec
}

// NewPrometheusMetricsRecorder registers the tracker service collectors with
// reg and returns the recorder. Passing nil uses the default registerer.
func NewPrometheusMetricsRecorder(reg prometheus.Registerer) (*PrometheusMetricsRecorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	results := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trackcore",
		Subsystem: "service",
		Name:      "operations_total",
		Help:      "Service operation outcomes by operation and status.",
	}, []string{"operation", "status"})
	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "trackcore",
		Subsystem: "service",
		Name:      "operation_duration_seconds",
		Help:      "Service operation latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
	for _, c := range []prometheus.Collector{results, durations} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return &PrometheusMetricsRecorder{results: results, durations: durations}, nil
}

// Observe records a service operation outcome.
func (r *PrometheusMetricsRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	status := "error"
	if success {
		status = "success"
	}
	r.results.WithLabelValues(operation, status).Inc()
	r.durations.WithLabelValues(operation).Observe(duration.Seconds())
}
