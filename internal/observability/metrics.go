package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_client_http_requests_total",
			Help: "Total number of HTTP requests served by the status endpoint.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chat_client_http_request_duration_seconds",
			Help:    "Status endpoint request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	wsConnectAttemptsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_client_ws_connect_attempts_total",
			Help: "Total number of websocket connect attempts.",
		},
	)
	wsReconnectsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_client_ws_reconnects_total",
			Help: "Total number of reconnection cycles after a lost connection.",
		},
	)
	wsActiveConnection = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_client_ws_active_connection",
			Help: "Whether a websocket connection is currently established.",
		},
	)
	wsEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_client_ws_events_total",
			Help: "Total number of websocket events by direction and type.",
		},
		[]string{"direction", "event"},
	)
	wsProtocolErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_client_ws_protocol_errors_total",
			Help: "Total number of malformed or unexpected frames dropped.",
		},
	)
	duplicatesDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_client_messages_deduplicated_total",
			Help: "Total number of remote messages dropped as duplicates.",
		},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_client_amqp_publish_errors_total",
			Help: "Total number of AMQP telemetry publish errors.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		wsConnectAttemptsTotal,
		wsReconnectsTotal,
		wsActiveConnection,
		wsEventsTotal,
		wsProtocolErrorsTotal,
		duplicatesDroppedTotal,
		amqpPublishErrorsTotal,
	)
}

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

func IncWSConnectAttempt() {
	wsConnectAttemptsTotal.Inc()
}

func IncWSReconnect() {
	wsReconnectsTotal.Inc()
}

func SetWSActive(active bool) {
	if active {
		wsActiveConnection.Set(1)
		return
	}
	wsActiveConnection.Set(0)
}

func IncWSEvent(direction, event string) {
	wsEventsTotal.WithLabelValues(direction, event).Inc()
}

func IncWSProtocolError() {
	wsProtocolErrorsTotal.Inc()
}

func IncDuplicateDropped() {
	duplicatesDroppedTotal.Inc()
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}
