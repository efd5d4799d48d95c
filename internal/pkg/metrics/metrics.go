// Package metrics holds the Prometheus collectors for payroll generation and settlement.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is safe to use through a nil pointer; calls become no-ops.
type Metrics struct {
	registry *prometheus.Registry
	handler  http.Handler

	generations      *prometheus.CounterVec
	settlements      *prometheus.CounterVec
	checkoutFailures prometheus.Counter
	sweepDuration    prometheus.Histogram
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	generations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payroll_generations_total",
		Help: "Payroll generation attempts by calculation basis and outcome",
	}, []string{"basis", "outcome"})

	settlements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payroll_settlements_total",
		Help: "Payroll settlement attempts by mode and result",
	}, []string{"mode", "result"})

	checkoutFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "payroll_checkout_failures_total",
		Help: "Funding checkouts that could not be created at generation",
	})

	sweepDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "payroll_auto_settle_sweep_seconds",
		Help:    "Duration of the auto-settlement sweep",
		Buckets: prometheus.DefBuckets,
	})

	registry.MustRegister(generations, settlements, checkoutFailures, sweepDuration)

	return &Metrics{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		generations:      generations,
		settlements:      settlements,
		checkoutFailures: checkoutFailures,
		sweepDuration:    sweepDuration,
	}
}

// Handler exposes the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveGeneration(basis, outcome string) {
	if m == nil {
		return
	}
	m.generations.WithLabelValues(basis, outcome).Inc()
}

func (m *Metrics) ObserveSettlement(mode, result string) {
	if m == nil {
		return
	}
	m.settlements.WithLabelValues(mode, result).Inc()
}

func (m *Metrics) IncCheckoutFailure() {
	if m == nil {
		return
	}
	m.checkoutFailures.Inc()
}

func (m *Metrics) ObserveSweep(d time.Duration) {
	if m == nil {
		return
	}
	m.sweepDuration.Observe(d.Seconds())
}
