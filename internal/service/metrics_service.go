package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/sis-mentoria-api/internal/models"
)

// Login outcomes recorded by the auth service.
const (
	LoginOutcomeSuccess         = "success"
	LoginOutcomeInvalid         = "invalid_credentials"
	LoginOutcomeNoPassword      = "password_not_set"
	LoginOutcomeWrongGroup      = "wrong_group"
	LoginOutcomeValidationError = "validation_error"
	LoginOutcomeError           = "error"
)

// MetricsService encapsulates Prometheus instrumentation and keeps counters for the
// administrative snapshot.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	loginAttempts   *prometheus.CounterVec
	tokenRejections *prometheus.CounterVec
	rateLimited     *prometheus.CounterVec
	registrations   *prometheus.CounterVec

	startedAt            time.Time
	requestCount         uint64
	requestDurationTotal uint64
	loginSuccessCount    uint64
	loginFailureCount    uint64
	tokenRejectCount     uint64
	rateLimitedCount     uint64
}

// NewMetricsService registers the collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	loginAttempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_login_attempts_total",
		Help: "Login attempts by outcome",
	}, []string{"outcome"})

	tokenRejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_token_rejections_total",
		Help: "Bearer tokens rejected by reason",
	}, []string{"reason"})

	rateLimited := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_rate_limited_total",
		Help: "Requests rejected by the rate limiter",
	}, []string{"path"})

	registrations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_registrations_total",
		Help: "Accounts created by kind",
	}, []string{"kind"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, loginAttempts, tokenRejections, rateLimited, registrations, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		loginAttempts:   loginAttempts,
		tokenRejections: tokenRejections,
		rateLimited:     rateLimited,
		registrations:   registrations,
		startedAt:       time.Now().UTC(),
	}
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *MetricsService) Registry() *prometheus.Registry {
	return m.registry
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "metrics disabled", http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordLogin counts a login attempt.
func (m *MetricsService) RecordLogin(outcome string) {
	if m == nil {
		return
	}
	m.loginAttempts.WithLabelValues(outcome).Inc()
	if outcome == LoginOutcomeSuccess {
		atomic.AddUint64(&m.loginSuccessCount, 1)
	} else {
		atomic.AddUint64(&m.loginFailureCount, 1)
	}
}

// RecordTokenRejection counts a rejected bearer token. reason is the error code.
func (m *MetricsService) RecordTokenRejection(reason string) {
	if m == nil {
		return
	}
	m.tokenRejections.WithLabelValues(reason).Inc()
	atomic.AddUint64(&m.tokenRejectCount, 1)
}

// RecordRateLimited counts a throttled request.
func (m *MetricsService) RecordRateLimited(path string) {
	if m == nil {
		return
	}
	m.rateLimited.WithLabelValues(path).Inc()
	atomic.AddUint64(&m.rateLimitedCount, 1)
}

// RecordRegistration counts a created account.
func (m *MetricsService) RecordRegistration(kind string) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(kind).Inc()
}

// Snapshot returns aggregated counters for the administrative endpoint.
func (m *MetricsService) Snapshot() models.MetricsSnapshot {
	if m == nil {
		return models.MetricsSnapshot{}
	}
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	now := time.Now().UTC()
	return models.MetricsSnapshot{
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		LoginSuccesses:           atomic.LoadUint64(&m.loginSuccessCount),
		LoginFailures:            atomic.LoadUint64(&m.loginFailureCount),
		TokenRejections:          atomic.LoadUint64(&m.tokenRejectCount),
		RateLimited:              atomic.LoadUint64(&m.rateLimitedCount),
		Goroutines:               runtime.NumGoroutine(),
		UptimeSeconds:            int64(now.Sub(m.startedAt).Seconds()),
		GeneratedAt:              now,
	}
}
