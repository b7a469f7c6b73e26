// Package observability provides metrics and tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "myblog_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// CacheLookups counts post cache lookups by result (hit, miss, error).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "myblog_cache_lookups_total",
		Help: "Total number of post cache lookups by result",
	}, []string{"result"})

	// CascadeSteps counts post delete cascade steps by step and outcome.
	CascadeSteps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "myblog_post_delete_cascade_steps_total",
		Help: "Post delete cascade steps by step and outcome",
	}, []string{"step", "outcome"})
)

// DatabaseMetrics records query latency for one repository.
type DatabaseMetrics struct {
	latency *prometheus.HistogramVec
}

// NewDatabaseMetrics returns a DatabaseMetrics reporting to DatabaseQueryLatency.
func NewDatabaseMetrics() *DatabaseMetrics {
	return &DatabaseMetrics{latency: DatabaseQueryLatency}
}

// ObserveQuery records the latency of a database query.
func (m *DatabaseMetrics) ObserveQuery(operation, table string, start time.Time) {
	m.latency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func (m *DatabaseMetrics) TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		m.ObserveQuery(operation, table, start)
	}
}
