// Package metrics exposes Prometheus counters for the ledger, the synchronizer and stock alerts.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ledgerOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "console",
			Subsystem: "ledger",
			Name:      "operations_total",
			Help:      "Payment and refund operations by result",
		},
		[]string{"operation", "result"},
	)

	syncEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "console",
			Subsystem: "sync",
			Name:      "events_total",
			Help:      "Events applied by the order synchronizer by outcome",
		},
		[]string{"event", "outcome"},
	)

	pushReconnects = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "console",
			Subsystem: "push",
			Name:      "reconnects_total",
			Help:      "Push channel reconnection attempts",
		},
	)

	invariantClamps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "console",
			Subsystem: "ledger",
			Name:      "invariant_clamps_total",
			Help:      "Money invariant violations clamped at runtime",
		},
		[]string{"field"},
	)

	stockAlerts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "console",
			Subsystem: "stock",
			Name:      "alert_changes_total",
			Help:      "Low-stock alerts raised or cleared",
		},
		[]string{"change"},
	)
)

// LedgerOperation counts a payment or refund attempt.
func LedgerOperation(operation, result string) {
	ledgerOperations.WithLabelValues(operation, result).Inc()
}

// SyncEvent counts an event handled by the synchronizer.
func SyncEvent(event, outcome string) {
	syncEvents.WithLabelValues(event, outcome).Inc()
}

// PushReconnect counts a push channel reconnection.
func PushReconnect() {
	pushReconnects.Inc()
}

// InvariantClamp counts a clamped invariant violation.
func InvariantClamp(field string) {
	invariantClamps.WithLabelValues(field).Inc()
}

// StockAlertChange counts a stock alert being raised at a level or cleared.
func StockAlertChange(change string) {
	stockAlerts.WithLabelValues(change).Inc()
}
