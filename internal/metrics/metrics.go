// Package metrics exposes Prometheus collectors for ledger operations.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector aggregates the ledger's operational metrics behind its own
// registry so the default registry stays untouched in tests.
type Collector struct {
	registry             *prometheus.Registry
	operationsTotal      *prometheus.CounterVec
	operationDuration    prometheus.Histogram
	accountBalance       *prometheus.GaugeVec
	accountsTotal        prometheus.Gauge
	complaintsRegistered prometheus.Counter
}

// NewCollector builds a collector with a fresh registry.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	return &Collector{
		registry: registry,
		operationsTotal: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_operations_total",
			Help: "Total ledger operations by name and result",
		}, []string{"operation", "result"}),
		operationDuration: promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
			Name:    "ledger_operation_duration_seconds",
			Help:    "Time taken to complete a ledger operation",
			Buckets: prometheus.DefBuckets,
		}),
		accountBalance: promauto.With(registry).NewGaugeVec(prometheus.GaugeOpts{
			Name: "ledger_account_balance",
			Help: "Current account balance",
		}, []string{"account_number", "kind"}),
		accountsTotal: promauto.With(registry).NewGauge(prometheus.GaugeOpts{
			Name: "ledger_accounts_total",
			Help: "Number of open accounts",
		}),
		complaintsRegistered: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "ledger_complaints_registered_total",
			Help: "Total complaints registered",
		}),
	}
}

// RecordOperation counts one operation outcome and observes its duration.
func (c *Collector) RecordOperation(operation string, duration time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.operationsTotal.WithLabelValues(operation, result).Inc()
	c.operationDuration.Observe(duration.Seconds())
}

// SetAccountBalance updates the balance gauge for one account.
func (c *Collector) SetAccountBalance(accountNumber, kind string, balance float64) {
	c.accountBalance.WithLabelValues(accountNumber, kind).Set(balance)
}

// SetAccountsTotal updates the open-accounts gauge.
func (c *Collector) SetAccountsTotal(n int) {
	c.accountsTotal.Set(float64(n))
}

// ComplaintRegistered counts one registered complaint.
func (c *Collector) ComplaintRegistered() {
	c.complaintsRegistered.Inc()
}

// Handler serves the collector's registry in Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
