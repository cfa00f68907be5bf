package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "biketowork"

var (
	// HTTP metrics
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	HttpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Current number of HTTP requests being processed",
		},
	)

	// Business metrics
	RidesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rides_total",
			Help:      "Ride submissions by outcome",
		},
		[]string{"status"},
	)

	WebhooksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slack_webhooks_total",
			Help:      "Slack webhook deliveries by kind and outcome",
		},
		[]string{"kind", "status"},
	)
)

// RecordHTTPMetrics records HTTP request metrics
func RecordHTTPMetrics(method, route string, statusCode int, duration time.Duration) {
	status := strconv.Itoa(statusCode)
	HttpRequestsTotal.WithLabelValues(method, route, status).Inc()
	HttpRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

func RecordRideCreated() {
	RidesTotal.WithLabelValues("created").Inc()
}

func RecordRideRejected() {
	RidesTotal.WithLabelValues("rejected").Inc()
}

func RecordWebhook(kind string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	WebhooksTotal.WithLabelValues(kind, status).Inc()
}
