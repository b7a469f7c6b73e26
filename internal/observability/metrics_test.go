package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestDatabaseMetrics_TrackQuery(t *testing.T) {
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name: "test_query_latency_seconds",
		Help: "test",
	}, []string{"operation", "table"})
	m := &DatabaseMetrics{latency: latency}

	m.TrackQuery("count", "posts")()
	m.TrackQuery("count", "posts")()
	m.TrackQuery("search", "posts")()

	assert.Equal(t, 2, testutil.CollectAndCount(latency))
}

func TestNewDatabaseMetrics_UsesSharedHistogram(t *testing.T) {
	assert.Same(t, DatabaseQueryLatency, NewDatabaseMetrics().latency)
}
