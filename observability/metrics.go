package observability

import (
	"net/http"
	"strconv"
	"time"

	"chat-relay/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector is what services and transports record against.
type MetricsCollector interface {
	RecordRouted(kind domain.MessageKind, outcome domain.Outcome)
	RecordDeliveryFailure(destination domain.Destination)
	RecordConnectionOpened()
	RecordConnectionClosed()
	SetOnlineUsers(count int)
	RecordProjectionFallback()
	RecordWorkerRestart(worker string)
	RecordHTTPRequest(route string, statusCode int, duration time.Duration)
}

type Collector struct {
	routed             *prometheus.CounterVec
	deliveryFailures   *prometheus.CounterVec
	activeConnections  prometheus.Gauge
	onlineUsers        prometheus.Gauge
	projectionFallback prometheus.Counter
	workerRestarts     *prometheus.CounterVec
	httpRequests       *prometheus.CounterVec
	httpLatency        *prometheus.HistogramVec
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		routed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chat_messages_routed_total",
			Help: "Messages handled by the router, by kind and outcome",
		}, []string{"kind", "outcome"}),
		deliveryFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chat_delivery_failures_total",
			Help: "Deliveries a sink refused, by destination type",
		}, []string{"destination"}),
		activeConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chat_connections_active",
			Help: "Open realtime connections",
		}),
		onlineUsers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chat_online_users",
			Help: "Usernames currently present",
		}),
		projectionFallback: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chat_presence_projection_sync_writes_total",
			Help: "Presence changes written synchronously because the projector had stopped",
		}),
		workerRestarts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chat_worker_restarts_total",
			Help: "Background workers restarted after a crash",
		}, []string{"worker"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chat_http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"route", "status_code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "chat_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}

	reg.MustRegister(
		c.routed,
		c.deliveryFailures,
		c.activeConnections,
		c.onlineUsers,
		c.projectionFallback,
		c.workerRestarts,
		c.httpRequests,
		c.httpLatency,
	)
	return c
}

func (c *Collector) RecordRouted(kind domain.MessageKind, outcome domain.Outcome) {
	c.routed.WithLabelValues(string(kind), outcome.String()).Inc()
}

func (c *Collector) RecordDeliveryFailure(destination domain.Destination) {
	label := "broadcast"
	if _, ok := destination.Owner(); ok {
		label = "private"
	}
	c.deliveryFailures.WithLabelValues(label).Inc()
}

func (c *Collector) RecordConnectionOpened() { c.activeConnections.Inc() }

func (c *Collector) RecordConnectionClosed() { c.activeConnections.Dec() }

func (c *Collector) SetOnlineUsers(count int) { c.onlineUsers.Set(float64(count)) }

func (c *Collector) RecordProjectionFallback() { c.projectionFallback.Inc() }

func (c *Collector) RecordWorkerRestart(worker string) {
	c.workerRestarts.WithLabelValues(worker).Inc()
}

func (c *Collector) RecordHTTPRequest(route string, statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(route, strconv.Itoa(statusCode)).Inc()
	c.httpLatency.WithLabelValues(route).Observe(duration.Seconds())
}

// Handler serves the gathered metrics in the Prometheus exposition format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
