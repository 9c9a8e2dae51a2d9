package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angeloszaimis/ober/internal/hysteresis"
)

const (
	namespace = "ober"
	subsystem = "failover"
)

// Metrics holds the failover engine's collectors on a private registry so
// that several engines can coexist in one test binary.
type Metrics struct {
	registry *prometheus.Registry

	probes       *prometheus.CounterVec
	probeLatency prometheus.Histogram
	healthState  *prometheus.GaugeVec
	transitions  *prometheus.CounterVec
	commands     *prometheus.CounterVec
	phase        *prometheus.GaugeVec
	vips         prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "probes_total",
			Help:      "Total number of liveness probes by result",
		}, []string{"result"}),

		probeLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "probe_duration_seconds",
			Help:      "Latency of liveness probes that got a response",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5},
		}),

		healthState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "health_state",
			Help:      "1 for the current debounced health state",
		}, []string{"state"}),

		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "transitions_total",
			Help:      "Total number of debounced health transitions by new state",
		}, []string{"state"}),

		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "route_commands_total",
			Help:      "Total number of route control lines written by action",
		}, []string{"action"}),

		phase: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "phase",
			Help:      "1 for the controller's current lifecycle phase",
		}, []string{"phase"}),

		vips: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "virtual_addresses",
			Help:      "Number of virtual addresses managed by this node",
		}),
	}

	m.registry.MustRegister(
		m.probes,
		m.probeLatency,
		m.healthState,
		m.transitions,
		m.commands,
		m.phase,
		m.vips,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// The controller starts undetermined.
	m.healthState.WithLabelValues(hysteresis.StateUnknown.String()).Set(1)

	return m
}

// Registry exposes the private registry, mainly for scraping in tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveProbe counts a probe result. Latency is recorded only when the
// endpoint answered.
func (m *Metrics) ObserveProbe(healthy bool, latency time.Duration, answered bool) {
	if healthy {
		m.probes.WithLabelValues("healthy").Inc()
	} else {
		m.probes.WithLabelValues("unhealthy").Inc()
	}

	if answered {
		m.probeLatency.Observe(latency.Seconds())
	}
}

func (m *Metrics) RecordTransition(state string) {
	m.transitions.WithLabelValues(state).Inc()
	m.healthState.Reset()
	m.healthState.WithLabelValues(state).Set(1)
}

func (m *Metrics) RecordCommands(action string, n int) {
	m.commands.WithLabelValues(action).Add(float64(n))
}

func (m *Metrics) SetPhase(phase string) {
	m.phase.Reset()
	m.phase.WithLabelValues(phase).Set(1)
}

func (m *Metrics) SetVirtualAddresses(n int) {
	m.vips.Set(float64(n))
}
