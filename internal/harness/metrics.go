package harness

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeApplied  = "applied"
	outcomeRejected = "rejected"
)

// Metrics publishes Cell activity to Prometheus: a counter of
// mutations by operation label and outcome, a gauge of outstanding
// pending changes, and a histogram of getter recompute latency. A nil
// *Metrics is valid and silently discards every observation, so a
// Cell can be built without a registry in tests.
type Metrics struct {
	mutations       *prometheus.CounterVec
	pendingChanges  prometheus.Gauge
	getterRecompute *prometheus.HistogramVec
}

// NewMetrics builds and registers the collectors against reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dohmane",
			Subsystem: "store",
			Name:      "mutations_total",
			Help:      "Count of Cell.Mutate calls by operation label and outcome.",
		}, []string{"op", "outcome"}),
		pendingChanges: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "dohmane",
			Subsystem: "store",
			Name:      "pending_changes",
			Help:      "Most recently observed count of new, modified, and deleted records.",
		}),
		getterRecompute: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dohmane",
			Subsystem: "store",
			Name:      "getter_recompute_seconds",
			Help:      "Time spent recomputing a registered getter after a committed mutation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"getter"}),
	}
	reg.MustRegister(m.mutations, m.pendingChanges, m.getterRecompute)
	return m
}

// SetPendingChanges sets the pending-changes gauge directly; wire it
// as the onChange callback of a PendingChangeCount getter.
func (m *Metrics) SetPendingChanges(count int) {
	if m == nil {
		return
	}
	m.pendingChanges.Set(float64(count))
}

func (m *Metrics) observeMutation(op, outcome string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) observeGetterLatency(name string, d time.Duration) {
	if m == nil {
		return
	}
	m.getterRecompute.WithLabelValues(name).Observe(d.Seconds())
}
