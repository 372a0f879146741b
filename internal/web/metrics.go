package web

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tidesat",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tidesat",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"method", "path"})

	searchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tidesat",
		Subsystem: "planet",
		Name:      "searches_total",
		Help:      "Total imagery catalog searches run",
	})

	tilesFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tidesat",
		Subsystem: "planet",
		Name:      "tiles_fetched_total",
		Help:      "Total preview tiles composed into mosaics",
	})

	tideParseFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tidesat",
		Subsystem: "tides",
		Name:      "parse_failures_total",
		Help:      "Total tide uploads rejected by the parser",
	})

	activeOrderStreams = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "tidesat",
		Subsystem: "ws",
		Name:      "active_order_streams",
		Help:      "Currently connected order status streams",
	})
)

// metricsMiddleware records request counts and latency per route pattern.
func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		// Route pattern, not the raw path, keeps label cardinality bounded
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
