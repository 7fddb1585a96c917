// Package metrics provides Prometheus metrics collection for the gateway.
package metrics

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "nlsql"
	subsystem = "gateway"
)

var (
	// Global metrics - used by the application
	// Using atomic.Pointer for lock-free initialization checks on hot path metrics.
	requestsTotal        atomic.Pointer[prometheus.CounterVec]
	requestDuration      atomic.Pointer[prometheus.HistogramVec]
	authFailuresTotal    atomic.Pointer[prometheus.CounterVec]
	rateLimitedTotal     atomic.Pointer[prometheus.Counter]
	translationsTotal    atomic.Pointer[prometheus.CounterVec]
	validationRejections atomic.Pointer[prometheus.CounterVec]
	executionsTotal      atomic.Pointer[prometheus.CounterVec]
	bucketsGauge         atomic.Pointer[prometheus.Gauge]
)

// Init initializes all Prometheus metrics and registers them with the provided registry.
// This should be called once at application startup.
func Init(reg prometheus.Registerer, version string) error {
	requestsTotalVec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled by the gateway",
		},
		[]string{"method", "path", "status"},
	)
	if err := reg.Register(requestsTotalVec); err != nil {
		return fmt.Errorf("failed to register requestsTotal: %w", err)
	}

	requestDurationVec := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			// Oracle retries push the tail out to tens of seconds.
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 20, 40},
		},
		[]string{"method", "path", "status"},
	)
	if err := reg.Register(requestDurationVec); err != nil {
		return fmt.Errorf("failed to register requestDuration: %w", err)
	}

	authFailuresTotalVec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "auth_failures_total",
			Help:      "Total number of authentication failures",
		},
		[]string{"reason"},
	)
	if err := reg.Register(authFailuresTotalVec); err != nil {
		return fmt.Errorf("failed to register authFailuresTotal: %w", err)
	}

	rateLimited := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "rate_limited_total",
		Help:      "Total number of requests rejected by admission control",
	})
	if err := reg.Register(rateLimited); err != nil {
		return fmt.Errorf("failed to register rateLimited: %w", err)
	}

	translationsVec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "translations_total",
			Help:      "Translation outcomes by kind (translated, no_translation, refused)",
		},
		[]string{"outcome"},
	)
	if err := reg.Register(translationsVec); err != nil {
		return fmt.Errorf("failed to register translations: %w", err)
	}

	validationVec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "validation_rejections_total",
			Help:      "Translated SQL rejected by the safety validator, by rule",
		},
		[]string{"rule"},
	)
	if err := reg.Register(validationVec); err != nil {
		return fmt.Errorf("failed to register validationRejections: %w", err)
	}

	executionsVec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "executions_total",
			Help:      "Validated SQL executions by status (ok, error)",
		},
		[]string{"status"},
	)
	if err := reg.Register(executionsVec); err != nil {
		return fmt.Errorf("failed to register executions: %w", err)
	}

	buckets := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "rate_limit_buckets",
		Help:      "Number of live per-key rate limit buckets",
	})
	if err := reg.Register(buckets); err != nil {
		return fmt.Errorf("failed to register buckets: %w", err)
	}

	// Info gauge: static metric with constant label values for build info
	infoGaugeVec := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "info",
			Help:      "Gateway version and build information",
		},
		[]string{"version"},
	)
	if err := reg.Register(infoGaugeVec); err != nil {
		return fmt.Errorf("failed to register infoGauge: %w", err)
	}
	infoGaugeVec.WithLabelValues(version).Set(1)

	requestsTotal.Store(requestsTotalVec)
	requestDuration.Store(requestDurationVec)
	authFailuresTotal.Store(authFailuresTotalVec)
	rateLimitedTotal.Store(&rateLimited)
	translationsTotal.Store(translationsVec)
	validationRejections.Store(validationVec)
	executionsTotal.Store(executionsVec)
	bucketsGauge.Store(&buckets)

	return nil
}

// RecordRequest increments the requests counter for the given method, path, and status.
// The path should be a route pattern (e.g., "/query"), not a raw URL.
func RecordRequest(method, path, status string) {
	if counter := requestsTotal.Load(); counter != nil {
		counter.WithLabelValues(method, path, status).Inc()
	}
}

// RecordRequestDuration records the latency for a request in seconds.
func RecordRequestDuration(method, path, status string, durationSeconds float64) {
	if histogram := requestDuration.Load(); histogram != nil {
		histogram.WithLabelValues(method, path, status).Observe(durationSeconds)
	}
}

// RecordAuthFailure increments the auth failures counter for the given reason.
// Reasons: "missing_key", "invalid_key".
func RecordAuthFailure(reason string) {
	if counter := authFailuresTotal.Load(); counter != nil {
		counter.WithLabelValues(reason).Inc()
	}
}

// RecordRateLimited counts a request rejected by admission control.
func RecordRateLimited() {
	if counter := rateLimitedTotal.Load(); counter != nil {
		(*counter).Inc()
	}
}

// RecordTranslation counts a translation outcome.
func RecordTranslation(outcome string) {
	if counter := translationsTotal.Load(); counter != nil {
		counter.WithLabelValues(outcome).Inc()
	}
}

// RecordValidationRejection counts SQL rejected by the named rule.
func RecordValidationRejection(rule string) {
	if counter := validationRejections.Load(); counter != nil {
		counter.WithLabelValues(rule).Inc()
	}
}

// RecordExecution counts an executed statement with status "ok" or "error".
func RecordExecution(status string) {
	if counter := executionsTotal.Load(); counter != nil {
		counter.WithLabelValues(status).Inc()
	}
}

// SetBuckets reports the number of live rate limit buckets.
func SetBuckets(n int) {
	if gauge := bucketsGauge.Load(); gauge != nil {
		(*gauge).Set(float64(n))
	}
}

// Handler returns an HTTP handler for Prometheus metrics in text format.
// Pass the registry given to Init.
func Handler(reg prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// GetMetricsText returns the Prometheus text-format output from a registry.
// This is useful for testing and debugging.
func GetMetricsText(reg prometheus.Gatherer) (string, error) {
	handler := promhttp.HandlerFor(reg, promhttp.HandlerOpts{})

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	body, err := io.ReadAll(w.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read metrics output: %w", err)
	}

	return string(body), nil
}
