package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Reservation outcome counters, labeled by operation and result.
var (
	ReservationOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reservation_operations_total",
		Help: "Reservation operations by type and outcome",
	}, []string{"operation", "outcome"})

	InventoryConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inventory_conflicts_total",
		Help: "Reservation attempts rejected by the inventory ledger",
	})

	RetryAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "persistence_retry_attempts_total",
		Help: "Transient persistence failures that triggered a retry",
	}, []string{"op"})

	RetryExhausted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "persistence_retry_exhausted_total",
		Help: "Operations that failed after exhausting all retry attempts",
	}, []string{"op"})

	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "circuit_breaker_state",
		Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
	}, []string{"name"})
)

// RecordOperation tracks one reservation operation outcome.
func RecordOperation(operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	ReservationOperations.WithLabelValues(operation, outcome).Inc()
}
