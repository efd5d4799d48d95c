package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ObserveGeneration("time_logs", "created")
	m.ObserveGeneration("time_logs", "created")
	m.ObserveSettlement("auto", "paid")
	m.IncCheckoutFailure()
	m.ObserveSweep(150 * time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.generations.WithLabelValues("time_logs", "created")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.settlements.WithLabelValues("auto", "paid")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.checkoutFailures))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveSettlement("manual", "paid")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `payroll_settlements_total{mode="manual",result="paid"} 1`))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveGeneration("manual", "created")
		m.ObserveSettlement("auto", "failed")
		m.IncCheckoutFailure()
		m.ObserveSweep(time.Second)
	})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
