package dispatch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "agenthub"

// Metrics exposes Prometheus collectors for dispatch and planning.
type Metrics struct {
	dispatchTotal    *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
	stepsSkipped     prometheus.Counter
}

// MustNewMetrics registers the collectors with reg and panics on a
// registration error. busy reports the number of busy executors.
func MustNewMetrics(reg prometheus.Registerer, busy func() int) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		dispatchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dispatch_total",
				Help:      "Dispatched tasks by executor type and result status.",
			},
			[]string{"type", "status"},
		),
		dispatchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "dispatch_duration_seconds",
				Help:      "Time spent running dispatched tasks.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"type"},
		),
		stepsSkipped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "plan_steps_skipped_total",
				Help:      "Plan steps that matched no available executor.",
			},
		),
	}
	collectors := []prometheus.Collector{m.dispatchTotal, m.dispatchDuration, m.stepsSkipped}
	if busy != nil {
		collectors = append(collectors, prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "executors_busy",
				Help:      "Executors currently running a task.",
			},
			func() float64 { return float64(busy()) },
		))
	}
	reg.MustRegister(collectors...)
	return m
}

func (m *Metrics) observeDispatch(typ, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.dispatchTotal.WithLabelValues(typ, status).Inc()
	m.dispatchDuration.WithLabelValues(typ).Observe(elapsed.Seconds())
}

// StepsSkipped counts plan steps that found no executor.
func (m *Metrics) StepsSkipped(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.stepsSkipped.Add(float64(n))
}
