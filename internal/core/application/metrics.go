package application

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts the operations of the escrow service. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	opened   prometheus.Counter
	released *prometheus.CounterVec
	failures *prometheus.CounterVec
}

// NewMetrics registers the escrow counters with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		opened: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "escrow_positions_opened_total",
			Help: "Number of positions locked at the escrow address.",
		}),
		released: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "escrow_positions_released_total",
			Help: "Number of released positions by redeemer.",
		}, []string{"redeemer"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "escrow_operation_failures_total",
			Help: "Number of failed escrow operations by operation.",
		}, []string{"operation"}),
	}
	for _, c := range []prometheus.Collector{m.opened, m.released, m.failures} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) ObserveOpened() {
	if m == nil {
		return
	}
	m.opened.Inc()
}

func (m *Metrics) ObserveReleased(redeemer string) {
	if m == nil {
		return
	}
	m.released.WithLabelValues(redeemer).Inc()
}

func (m *Metrics) ObserveFailure(operation string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(operation).Inc()
}
