package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("category", "fuel"),
		attribute.Int64("pump_id", 42),
		attribute.String("operation", "create"),
	)
	require.Len(t, attrs, 2)
	assert.Equal(t, attribute.Key("category"), attrs[0].Key)
	assert.Equal(t, attribute.Key("operation"), attrs[1].Key)
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.RecordLedgerEvent(context.Background(), "fuel")
	m.RecordSlotConflict(context.Background(), "create")

	var b *CoreMetrics
	b.IncConflict("move")
	b.ObserveLockWait(LockBackendMemory, time.Second)
}

func TestNewWithNoopProvider(t *testing.T) {
	m, err := New(Config{}, noop.NewMeterProvider())
	require.NoError(t, err)
	m.RecordBooking(context.Background(), "create", "reserved")
}

func TestCoreMetricsCounters(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := newCoreMetrics(registry, Config{ServiceName: "pumpops", Environment: "test"})

	m.IncConflict("create")
	m.IncConflict("create")
	m.IncLockAttempt(LockBackendRedis, LockOutcomeTimeout)
	m.ObserveLockWait(LockBackendRedis, -time.Second)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.conflicts.WithLabelValues("create")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.lockAttempts.WithLabelValues(LockBackendRedis, LockOutcomeTimeout)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.lockWait))
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	registry := prometheus.NewRegistry()
	m, err := newHTTPMetrics(registry, Config{})
	require.NoError(t, err)

	again, err := newHTTPMetrics(registry, Config{})
	require.NoError(t, err)
	assert.Same(t, m.requests, again.requests)

	r := gin.New()
	r.Use(GinMiddleware(m))
	r.GET("/api/pumps/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/pumps/9", nil))

	got := testutil.ToFloat64(m.requests.WithLabelValues("/api/pumps/:id", http.MethodGet, "204"))
	assert.Equal(t, float64(1), got)
}
