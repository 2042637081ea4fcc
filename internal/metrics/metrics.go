// Package metrics registers the relay's Prometheus collectors on the default
// registry. Counters are package-level so every component records through the
// same instances.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// AlertsTotal counts accepted webhook alerts by action.
	AlertsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_alerts_total",
			Help: "Total webhook alerts accepted for processing, by action.",
		},
		[]string{"action"},
	)

	// AlertsRejectedTotal counts alerts that never reached processing.
	AlertsRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_alerts_rejected_total",
			Help: "Total webhook alerts rejected before processing, by reason.",
		},
		[]string{"reason"},
	)

	// DeliveriesTotal counts outbound message deliveries by sink and result.
	DeliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_deliveries_total",
			Help: "Total outbound message deliveries, by sink and status.",
		},
		[]string{"sink", "status"},
	)
)

func init() {
	prometheus.MustRegister(AlertsTotal, AlertsRejectedTotal, DeliveriesTotal)
}

// RegisterOpenTrades registers a gauge that reports the current number of
// open trades by calling fn on each scrape. Call once during wiring.
func RegisterOpenTrades(fn func() float64) {
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "relay_open_trades",
			Help: "Number of currently open trades in the registry.",
		},
		fn,
	))
}
