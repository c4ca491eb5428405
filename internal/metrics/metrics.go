// Package metrics exposes prometheus counters for command handling and
// snapshot persistence. All methods are safe on a nil *Metrics so callers
// can leave metrics disabled.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "chatfs"

// Outcome label values
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

type Metrics struct {
	Commands      *prometheus.CounterVec
	Saves         *prometheus.CounterVec
	Loads         *prometheus.CounterVec
	SnapshotBytes prometheus.Gauge
}

// New creates the collectors and registers them on reg when reg is non-nil.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands handled by the interpreter by command and result kind.",
		}, []string{"command", "result"}),
		Saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_saves_total",
			Help:      "Snapshot writes by outcome.",
		}, []string{"outcome"}),
		Loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_loads_total",
			Help:      "Snapshot loads at startup by status.",
		}, []string{"status"}),
		SnapshotBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_bytes",
			Help:      "Size of the last successfully written snapshot.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Commands, m.Saves, m.Loads, m.SnapshotBytes)
	}
	return m
}

func (m *Metrics) ObserveCommand(command, result string) {
	if m == nil {
		return
	}
	m.Commands.WithLabelValues(command, result).Inc()
}

func (m *Metrics) ObserveSave(err error, size int) {
	if m == nil {
		return
	}
	if err != nil {
		m.Saves.WithLabelValues(OutcomeFailure).Inc()
		return
	}
	m.Saves.WithLabelValues(OutcomeSuccess).Inc()
	m.SnapshotBytes.Set(float64(size))
}

func (m *Metrics) ObserveLoad(status string) {
	if m == nil {
		return
	}
	m.Loads.WithLabelValues(status).Inc()
}

// Handler serves the registry in the prometheus text format
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
