package observ

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aroundhere_http_requests_total",
			Help: "Total number of HTTP requests processed.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aroundhere_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	wsActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "aroundhere_ws_active_connections",
			Help: "Number of active websocket connections.",
		},
	)
	messagesSweptTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "aroundhere_retention_messages_swept_total",
			Help: "Messages removed by the lazy retention sweep.",
		},
	)
	chatsSweptTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "aroundhere_retention_chats_swept_total",
			Help: "Inactive chats removed by the lazy retention sweep.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		wsActiveConnections,
		messagesSweptTotal,
		chatsSweptTotal,
	)
}

// HTTPMetricsMiddleware records a counter and latency histogram per route.
func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func IncWSActive() { wsActiveConnections.Inc() }
func DecWSActive() { wsActiveConnections.Dec() }

func AddSweptMessages(n int64) { messagesSweptTotal.Add(float64(n)) }
func IncSweptChats()           { chatsSweptTotal.Inc() }
