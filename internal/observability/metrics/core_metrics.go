package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	LockBackendRedis  = "redis"
	LockBackendMemory = "memory"
)

const (
	LockOutcomeAcquired = "acquired"
	LockOutcomeTimeout  = "timeout"
	LockOutcomeError    = "error"
)

// CoreMetrics captures slot contention and read-path latency for the pump core.
type CoreMetrics struct {
	lockWait      *prometheus.HistogramVec
	lockAttempts  *prometheus.CounterVec
	conflicts     *prometheus.CounterVec
	kpiDuration   prometheus.Histogram
	noticeFailure *prometheus.CounterVec
}

var (
	coreMetricsOnce sync.Once
	coreMetrics     *CoreMetrics
)

// Core returns the process-wide core metrics registered on the default registry.
func Core() *CoreMetrics {
	return CoreWithConfig(Config{})
}

// CoreWithConfig is Core with service and env const labels taken from cfg.
func CoreWithConfig(cfg Config) *CoreMetrics {
	coreMetricsOnce.Do(func() {
		coreMetrics = newCoreMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return coreMetrics
}

// ResetCoreMetricsForTest resets the core metrics singleton for tests.
func ResetCoreMetricsForTest() {
	coreMetricsOnce = sync.Once{}
	coreMetrics = nil
}

func newCoreMetrics(registerer prometheus.Registerer, cfg Config) *CoreMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "pumpops"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	m := &CoreMetrics{
		lockWait: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "pumpops_slot_lock_wait_seconds",
			Help:        "Time spent waiting for a pump slot lock.",
			Buckets:     []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			ConstLabels: constLabels,
		}, []string{"backend"}),
		lockAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "pumpops_slot_lock_attempts_total",
			Help:        "Slot lock attempts by backend and outcome.",
			ConstLabels: constLabels,
		}, []string{"backend", "outcome"}),
		conflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "pumpops_booking_conflicts_total",
			Help:        "Booking writes rejected because the slot was taken.",
			ConstLabels: constLabels,
		}, []string{"operation"}),
		kpiDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "pumpops_kpi_compute_seconds",
			Help:        "Latency of KPI aggregation over a pump ledger.",
			Buckets:     []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			ConstLabels: constLabels,
		}),
		noticeFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "pumpops_notice_failures_total",
			Help:        "Notices that could not be delivered to downstream modules.",
			ConstLabels: constLabels,
		}, []string{"kind"}),
	}

	registerer.MustRegister(m.lockWait, m.lockAttempts, m.conflicts, m.kpiDuration, m.noticeFailure)
	return m
}

func (m *CoreMetrics) ObserveLockWait(backend string, duration time.Duration) {
	if m == nil {
		return
	}
	if duration < 0 {
		duration = 0
	}
	m.lockWait.WithLabelValues(backend).Observe(duration.Seconds())
}

func (m *CoreMetrics) IncLockAttempt(backend, outcome string) {
	if m == nil {
		return
	}
	m.lockAttempts.WithLabelValues(backend, outcome).Inc()
}

func (m *CoreMetrics) IncConflict(operation string) {
	if m == nil {
		return
	}
	m.conflicts.WithLabelValues(operation).Inc()
}

func (m *CoreMetrics) ObserveKPICompute(duration time.Duration) {
	if m == nil {
		return
	}
	m.kpiDuration.Observe(duration.Seconds())
}

func (m *CoreMetrics) IncNoticeFailure(kind string) {
	if m == nil {
		return
	}
	m.noticeFailure.WithLabelValues(kind).Inc()
}
