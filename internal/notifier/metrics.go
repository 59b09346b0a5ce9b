package notifier

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes Prometheus collectors for the notifier.
type Metrics struct {
	events       *prometheus.CounterVec
	acknowledged prometheus.Counter
	sinkFailures *prometheus.CounterVec
}

// NewMetrics registers the notifier metrics against reg. When reg is nil the
// default Prometheus registerer is used.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "salonhub_notifications_total",
			Help: "Added change events by source and outcome (emitted or suppressed).",
		}, []string{"source", "outcome"}),
		acknowledged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "salonhub_notifications_acknowledged_total",
			Help: "Notifications marked read.",
		}),
		sinkFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "salonhub_notification_sink_failures_total",
			Help: "Sink deliveries that returned an error.",
		}, []string{"sink"}),
	}
	reg.MustRegister(m.events, m.acknowledged, m.sinkFailures)
	return m
}

func (m *Metrics) outcome(source, outcome string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(source, outcome).Inc()
}

func (m *Metrics) ack() {
	if m == nil {
		return
	}
	m.acknowledged.Inc()
}

func (m *Metrics) sinkFailed(sink string) {
	if m == nil {
		return
	}
	m.sinkFailures.WithLabelValues(sink).Inc()
}
