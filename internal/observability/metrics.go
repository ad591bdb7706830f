// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Issuance metrics
	EventsCreated  prometheus.Counter
	ClaimsCreated  prometheus.Counter
	ClaimsRejected *prometheus.CounterVec

	// Minting metrics
	MintCallLatency *prometheus.HistogramVec
	MintCallErrors  *prometheus.CounterVec

	// Feed metrics
	FeedSubscribers prometheus.Gauge
	FeedDropped     prometheus.Counter

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Analytics metrics
	ActivityRecordErrors prometheus.Counter

	// Health metrics
	LastSuccessfulClaim prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "solana_pop"
	}

	return &Metrics{
		// Issuance metrics
		EventsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "issuance",
			Name:      "events_created_total",
			Help:      "Total number of events created",
		}),
		ClaimsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "issuance",
			Name:      "claims_created_total",
			Help:      "Total number of token claims stored",
		}),
		ClaimsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "issuance",
			Name:      "claims_rejected_total",
			Help:      "Total number of rejected claim attempts by reason",
		}, []string{"reason"}),

		// Minting metrics
		MintCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "minting",
			Name:      "call_latency_seconds",
			Help:      "Minting service call latency in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 1.5, 2, 5, 10},
		}, []string{"method"}),
		MintCallErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "minting",
			Name:      "call_errors_total",
			Help:      "Total number of failed minting service calls",
		}, []string{"method"}),

		// Feed metrics
		FeedSubscribers: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "subscribers",
			Help:      "Current number of live claim feed subscribers",
		}),
		FeedDropped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "dropped_total",
			Help:      "Total number of claim notifications dropped for slow subscribers",
		}),

		// HTTP metrics
		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		HTTPDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Analytics metrics
		ActivityRecordErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analytics",
			Name:      "record_errors_total",
			Help:      "Total number of claim activity rows that failed to record",
		}),

		// Health metrics
		LastSuccessfulClaim: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_claim_timestamp",
			Help:      "Unix timestamp of last stored claim",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordEventCreated increments the events created counter.
func RecordEventCreated() {
	DefaultMetrics.EventsCreated.Inc()
}

// RecordClaimCreated increments the claims counter and stamps the health gauge.
func RecordClaimCreated(unixSeconds int64) {
	DefaultMetrics.ClaimsCreated.Inc()
	DefaultMetrics.LastSuccessfulClaim.Set(float64(unixSeconds))
}

// RecordClaimRejected records a rejected claim attempt.
func RecordClaimRejected(reason string) {
	DefaultMetrics.ClaimsRejected.WithLabelValues(reason).Inc()
}

// RecordMintCall records minting service call latency and failures.
func RecordMintCall(method string, seconds float64, err error) {
	DefaultMetrics.MintCallLatency.WithLabelValues(method).Observe(seconds)
	if err != nil {
		DefaultMetrics.MintCallErrors.WithLabelValues(method).Inc()
	}
}

// UpdateFeedSubscribers sets the live feed subscriber gauge.
func UpdateFeedSubscribers(n int) {
	DefaultMetrics.FeedSubscribers.Set(float64(n))
}

// RecordFeedDropped increments the dropped notifications counter.
func RecordFeedDropped() {
	DefaultMetrics.FeedDropped.Inc()
}

// RecordHTTPRequest records one served HTTP request.
func RecordHTTPRequest(method, route, status string, seconds float64) {
	DefaultMetrics.HTTPRequests.WithLabelValues(method, route, status).Inc()
	DefaultMetrics.HTTPDuration.WithLabelValues(route).Observe(seconds)
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// RecordActivityError increments the analytics failure counter.
func RecordActivityError() {
	DefaultMetrics.ActivityRecordErrors.Inc()
}
