package checkpoint

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	cycles    *prometheus.CounterVec
	failures  *prometheus.CounterVec
	resources prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		cycles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bootkit_checkpoint_cycles_total",
				Help: "Checkpoint and restore phases run, by phase",
			},
			[]string{"phase"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bootkit_checkpoint_callback_failures_total",
				Help: "Resource callbacks that returned an error, by phase",
			},
			[]string{"phase"},
		),
		resources: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "bootkit_checkpoint_resources",
				Help: "Resources registered with the coordinator",
			},
		),
	}
	m.cycles = register(reg, m.cycles)
	m.failures = register(reg, m.failures)
	m.resources = register(reg, m.resources)
	return m
}

// register adds c to reg, reusing an identical collector that is already
// registered so several coordinators can share one registry.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func (m *metrics) cycle(phase string) {
	if m == nil {
		return
	}
	m.cycles.WithLabelValues(phase).Inc()
}

func (m *metrics) failure(phase string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(phase).Inc()
}

func (m *metrics) setResources(n int) {
	if m == nil {
		return
	}
	m.resources.Set(float64(n))
}
