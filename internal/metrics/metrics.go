// Package metrics exposes Prometheus collectors for the ledger.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the ledger's collectors. A nil *Metrics is valid and records
// nothing, so tests can construct services without a registry.
type Metrics struct {
	operations *prometheus.CounterVec
	settled    *prometheus.CounterVec
	moved      *prometheus.CounterVec
}

// New registers the ledger collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "covenant",
			Name:      "operations_total",
			Help:      "State-changing operations by name and outcome.",
		}, []string{"operation", "status"}),
		settled: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "covenant",
			Name:      "settlements_total",
			Help:      "Score reports settled, by outcome.",
		}, []string{"outcome"}),
		moved: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "covenant",
			Name:      "value_moved_total",
			Help:      "Token base units moved between pools and accounts, by flow.",
		}, []string{"flow"}),
	}
}

// Operation records one state-changing operation and its outcome.
func (m *Metrics) Operation(name string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.operations.WithLabelValues(name, status).Inc()
}

// Settlement records one settled report and the value it moved.
func (m *Metrics) Settlement(passed bool, amount uint64) {
	if m == nil {
		return
	}
	outcome := "failed"
	flow := "escrow_to_bounty"
	if passed {
		outcome = "passed"
		flow = "escrow_to_reward"
	}
	m.settled.WithLabelValues(outcome).Inc()
	m.moved.WithLabelValues(flow).Add(float64(amount))
}

// ValueMoved records value crossing the custody boundary.
func (m *Metrics) ValueMoved(flow string, amount uint64) {
	if m == nil {
		return
	}
	m.moved.WithLabelValues(flow).Add(float64(amount))
}
