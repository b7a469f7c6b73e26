package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts failed Redis commands, excluding cache misses.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "myblog_redis_errors_total",
		Help: "Total number of Redis command errors",
	}, []string{"command"})

	// ActiveEventStreams is the number of open /api/events WebSocket connections.
	ActiveEventStreams = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "myblog_active_event_streams",
		Help: "Number of open event stream WebSocket connections",
	})

	// SearchResults records how many posts a search matched.
	SearchResults = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "myblog_post_search_matches",
		Help:    "Number of posts matched by a search request",
		Buckets: []float64{0, 1, 5, 10, 50, 100, 500, 1000},
	})
)

var (
	httpMetricsOnce sync.Once
	httpMetrics     *fiberprometheus.FiberPrometheus
)

// InitMetrics returns the HTTP metrics collector. The collector registers
// with the default Prometheus registry, so it is created once per process and
// later calls return the same instance.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	httpMetricsOnce.Do(func() {
		httpMetrics = fiberprometheus.New(serviceName)
	})
	return httpMetrics
}

// MetricsMiddleware records HTTP request metrics.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
