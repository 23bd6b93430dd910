package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inventario_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inventario_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	authAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inventario_auth_attempts_total",
		Help: "Login attempts by result",
	}, []string{"result"})

	recoverySteps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inventario_recovery_steps_total",
		Help: "Recovery flow transitions by step and result",
	}, []string{"step", "result"})

	assetOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inventario_asset_operations_total",
		Help: "Asset lifecycle operations by action and result",
	}, []string{"action", "result"})

	reportDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "inventario_report_duration_seconds",
		Help:    "Duration of PDF report rendering",
		Buckets: prometheus.DefBuckets,
	})

	storeBreakerState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "inventario_store_breaker_open",
		Help: "1 while the backing store circuit breaker is open",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveAuthAttempt counts a login attempt with a result label
func ObserveAuthAttempt(result string) {
	authAttempts.WithLabelValues(result).Inc()
}

// ObserveRecoveryStep counts a recovery flow transition
func ObserveRecoveryStep(step, result string) {
	recoverySteps.WithLabelValues(step, result).Inc()
}

// ObserveAssetOperation counts an asset lifecycle operation
func ObserveAssetOperation(action, result string) {
	assetOperations.WithLabelValues(action, result).Inc()
}

// ObserveReport records the duration of one report rendering
func ObserveReport(duration time.Duration) {
	reportDuration.Observe(duration.Seconds())
}

// SetBreakerOpen flags whether the store breaker is currently open
func SetBreakerOpen(open bool) {
	if open {
		storeBreakerState.Set(1)
		return
	}
	storeBreakerState.Set(0)
}
