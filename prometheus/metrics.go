package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Login attempts
	LoginCounter prometheus.Counter

	// HTTP request counter by endpoint and status
	HTTPRequestCounter *prometheus.CounterVec

	// Request duration
	RequestDuration *prometheus.HistogramVec

	// Status code category counters
	StatusCategoryCounter *prometheus.CounterVec

	// Authentication and authorization failures
	AuthErrorCounter *prometheus.CounterVec

	// Note operations by kind
	NoteOperationCounter *prometheus.CounterVec

	// Creates rejected by the free plan cap
	QuotaRejectionCounter *prometheus.CounterVec

	// Plan upgrades
	TenantUpgradeCounter prometheus.Counter

	// Database operation duration
	DBOperationDuration *prometheus.HistogramVec
}

// New creates the collectors under prefix and registers them with reg
func New(prefix string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		LoginCounter: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_login_total",
			Help: "Total number of login attempts",
		}),
		HTTPRequestCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		}, []string{"endpoint", "method", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    prefix + "_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint", "method", "status"}),
		StatusCategoryCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_http_status_category_total",
			Help: "Total number of responses by status category (2xx, 4xx, 5xx)",
		}, []string{"category"}),
		AuthErrorCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_auth_errors_total",
			Help: "Total number of authentication and authorization errors",
		}, []string{"type"}),
		NoteOperationCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_note_operations_total",
			Help: "Total number of note operations",
		}, []string{"operation"}),
		QuotaRejectionCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_quota_rejections_total",
			Help: "Total number of note creations rejected by the free plan limit",
		}, []string{"tenant_id"}),
		TenantUpgradeCounter: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_tenant_upgrades_total",
			Help: "Total number of tenant plan upgrades",
		}),
		DBOperationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}

	reg.MustRegister(
		m.LoginCounter,
		m.HTTPRequestCounter,
		m.RequestDuration,
		m.StatusCategoryCounter,
		m.AuthErrorCounter,
		m.NoteOperationCounter,
		m.QuotaRejectionCounter,
		m.TenantUpgradeCounter,
		m.DBOperationDuration,
	)
	return m
}

// Handler returns an HTTP handler exposing the metrics gathered by g
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// MetricsMiddleware creates a middleware function that captures metrics for each request
func (m *Metrics) MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if m == nil {
				return next(c)
			}
			start := time.Now()

			err := next(c)
			if err != nil {
				// Render the error so the recorded status is the one sent
				c.Error(err)
			}

			status := c.Response().Status
			labels := prometheus.Labels{
				"endpoint": c.Path(),
				"method":   c.Request().Method,
				"status":   strconv.Itoa(status),
			}
			m.RequestDuration.With(labels).Observe(time.Since(start).Seconds())
			m.HTTPRequestCounter.With(labels).Inc()

			switch {
			case status >= 200 && status < 300:
				m.StatusCategoryCounter.WithLabelValues("2xx").Inc()
			case status >= 400 && status < 500:
				m.StatusCategoryCounter.WithLabelValues("4xx").Inc()
			case status >= 500:
				m.StatusCategoryCounter.WithLabelValues("5xx").Inc()
			}

			return nil
		}
	}
}

// TrackDBOperation measures a database operation; call the returned func when it ends
func (m *Metrics) TrackDBOperation(operation string) func() {
	if m == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		m.DBOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}

// RecordLogin counts a login attempt
func (m *Metrics) RecordLogin() {
	if m == nil {
		return
	}
	m.LoginCounter.Inc()
}

// RecordAuthError records an authentication error by type
func (m *Metrics) RecordAuthError(errorType string) {
	if m == nil {
		return
	}
	m.AuthErrorCounter.WithLabelValues(errorType).Inc()
}

// RecordNoteOperation records a completed note operation
func (m *Metrics) RecordNoteOperation(operation string) {
	if m == nil {
		return
	}
	m.NoteOperationCounter.WithLabelValues(operation).Inc()
}

// RecordQuotaRejection records a create refused by the free plan cap
func (m *Metrics) RecordQuotaRejection(tenantID uint) {
	if m == nil {
		return
	}
	m.QuotaRejectionCounter.WithLabelValues(strconv.FormatUint(uint64(tenantID), 10)).Inc()
}

// RecordTenantUpgrade counts a plan upgrade
func (m *Metrics) RecordTenantUpgrade() {
	if m == nil {
		return
	}
	m.TenantUpgradeCounter.Inc()
}
