package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// Login counter
	LoginCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ricemill_login_total",
			Help: "Total number of login attempts",
		},
	)

	// Farmer operation counter
	FarmerOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ricemill_farmer_operations_total",
			Help: "Total number of farmer operations",
		},
		[]string{"operation"}, // operation can be "create", "list", "update", "delete"
	)

	// Transaction entry counter by kind
	EntryCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ricemill_entries_total",
			Help: "Total number of transactional entries recorded",
		},
		[]string{"kind"}, // kind is "seed_distribution" or "harvest_entry"
	)

	// Receipt generation counter
	ReceiptCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ricemill_receipts_generated_total",
			Help: "Total number of receipts generated",
		},
	)

	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ricemill_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)

	// Error counters
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ricemill_auth_errors_total",
			Help: "Total number of authentication and authorization errors",
		},
		[]string{"type"}, // type can be "invalid_token", "forbidden", "db_error" etc.
	)

	// Token issuance counter. Tokens expire on their own, so issuance is
	// tracked as a lifetime total rather than a gauge of live tokens.
	TokensIssuedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ricemill_tokens_issued_total",
			Help: "Total number of authentication tokens issued",
		},
	)
)

// Histogram metrics
var (
	// Request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ricemill_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	// Database operation duration
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ricemill_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // operation can be "query", "insert", "update", "delete"
	)
)

// Gauge metrics
var (
	// System info
	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ricemill_info",
			Help: "Information about the rice mill service",
		},
		[]string{"version"},
	)
)

func init() {
	// Register counters
	prometheus.MustRegister(LoginCounter)
	prometheus.MustRegister(FarmerOperationCounter)
	prometheus.MustRegister(EntryCounter)
	prometheus.MustRegister(ReceiptCounter)
	prometheus.MustRegister(HTTPRequestCounter)
	prometheus.MustRegister(AuthErrorCounter)
	prometheus.MustRegister(TokensIssuedCounter)

	// Register histograms
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)

	// Register gauges
	prometheus.MustRegister(InfoGauge)

	// Set initial service info
	InfoGauge.With(prometheus.Labels{"version": "1.0.0"}).Set(1)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// TrackDBOperation measures database operation durations
func TrackDBOperation(operation string) func(time.Time) {
	startTime := time.Now()
	return func(endTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(duration)
	}
}

// MetricsMiddleware creates a middleware function that captures metrics for each request
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			// Execute the request handler
			err := next(c)

			// Record request duration
			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)
			endpoint := c.Path()
			method := c.Request().Method

			RequestDuration.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Observe(duration)

			HTTPRequestCounter.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Inc()

			return err
		}
	}
}

// RecordTokenIssued counts a successfully issued token
func RecordTokenIssued() {
	TokensIssuedCounter.Inc()
}

// RecordAuthError records an authentication or authorization error by type
func RecordAuthError(errorType string) {
	AuthErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordFarmerOperation records a farmer operation
func RecordFarmerOperation(operation string) {
	FarmerOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// RecordEntry records a transactional entry by kind
func RecordEntry(kind string) {
	EntryCounter.With(prometheus.Labels{"kind": kind}).Inc()
}
