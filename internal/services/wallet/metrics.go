package wallet

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// NoopMetricsCollector is a no-op implementation of MetricsCollector
type NoopMetricsCollector struct{}

func (n *NoopMetricsCollector) RecordOperationDuration(string, time.Duration) {}
func (n *NoopMetricsCollector) RecordOperationResult(string, string)          {}
func (n *NoopMetricsCollector) RecordLockWait(string, time.Duration)          {}
func (n *NoopMetricsCollector) RecordCacheHit(string)                         {}
func (n *NoopMetricsCollector) RecordCacheMiss(string)                        {}
func (n *NoopMetricsCollector) RecordError(string, string)                    {}
func (n *NoopMetricsCollector) RecordVolume(string, float64)                  {}

// PrometheusCollector exports wallet metrics to a prometheus registry.
type PrometheusCollector struct {
	OperationDuration *prometheus.HistogramVec
	OperationResults  *prometheus.CounterVec
	LockWait          *prometheus.HistogramVec
	CacheRequests     *prometheus.CounterVec
	Errors            *prometheus.CounterVec
	Volume            *prometheus.CounterVec
}

func NewPrometheusCollector(registry prometheus.Registerer) *PrometheusCollector {
	m := &PrometheusCollector{
		OperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wallet_operation_duration_seconds",
				Help:    "Wallet operation duration in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		OperationResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wallet_operations_total",
				Help: "Total wallet operations by result.",
			},
			[]string{"operation", "result"},
		),
		LockWait: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wallet_lock_wait_seconds",
				Help:    "Time spent waiting for balance key locks.",
				Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
			},
			[]string{"operation"},
		),
		CacheRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wallet_balance_cache_requests_total",
				Help: "Balance cache lookups by result.",
			},
			[]string{"result"},
		),
		Errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wallet_errors_total",
				Help: "Wallet errors by operation and code.",
			},
			[]string{"operation", "code"},
		),
		Volume: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wallet_volume_total",
				Help: "Sum of amounts moved, by operation. Mixed assets; indicative only.",
			},
			[]string{"operation"},
		),
	}

	if registry != nil {
		registry.MustRegister(
			m.OperationDuration,
			m.OperationResults,
			m.LockWait,
			m.CacheRequests,
			m.Errors,
			m.Volume,
		)
	}
	return m
}

func (m *PrometheusCollector) RecordOperationDuration(operation string, d time.Duration) {
	m.OperationDuration.WithLabelValues(operation).Observe(d.Seconds())
}

func (m *PrometheusCollector) RecordOperationResult(operation, result string) {
	m.OperationResults.WithLabelValues(operation, result).Inc()
}

func (m *PrometheusCollector) RecordLockWait(operation string, d time.Duration) {
	m.LockWait.WithLabelValues(operation).Observe(d.Seconds())
}

// Cache keys are per user; only the result is used as a label.
func (m *PrometheusCollector) RecordCacheHit(string) {
	m.CacheRequests.WithLabelValues("hit").Inc()
}

func (m *PrometheusCollector) RecordCacheMiss(string) {
	m.CacheRequests.WithLabelValues("miss").Inc()
}

func (m *PrometheusCollector) RecordError(operation, code string) {
	m.Errors.WithLabelValues(operation, code).Inc()
}

func (m *PrometheusCollector) RecordVolume(operation string, amount float64) {
	m.Volume.WithLabelValues(operation).Add(amount)
}
