package distribution

import (
	"github.com/iov-one/ida/coin"
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "ida"

// Metrics counts controller operations. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	// Operations counts calls by operation and result.
	// Labels: operation (create_index, distribute, ...), result (success, failure)
	Operations *prometheus.CounterVec

	// Distributed counts atomic units paid into indexes by publishers.
	Distributed prometheus.Counter
}

// NewMetrics creates the counters and registers them with given
// registerer.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "operations_total",
			Help:      "Total distribution operations by operation and result",
		}, []string{"operation", "result"}),
		Distributed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "distributed_atomic_units_total",
			Help:      "Total atomic units distributed into indexes",
		}),
	}
	for _, c := range []prometheus.Collector{m.Operations, m.Distributed} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) recordOperation(op string, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.Operations.WithLabelValues(op, result).Inc()
}

func (m *Metrics) recordDistributed(amount coin.Amount) {
	if m == nil || amount.IsZero() {
		return
	}
	m.Distributed.Add(amount.Float64())
}
