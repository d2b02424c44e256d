package harness

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "aeadbench"

// Metrics tracks sweep progress. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	registry *prometheus.Registry

	runs     *prometheus.CounterVec
	resets   *prometheus.CounterVec
	duration *prometheus.HistogramVec
	lastRun  *prometheus.GaugeVec
}

// NewMetrics creates a Metrics with its own registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "sweep",
			Name:      "runs_total",
			Help:      "Benchmark invocations by backend and outcome.",
		}, []string{"backend", "outcome"}),
		resets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "device",
			Name:      "resets_total",
			Help:      "Device reset invocations by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "sweep",
			Name:      "run_duration_seconds",
			Help:      "Wall time of benchmark invocations.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 14),
		}, []string{"backend"}),
		lastRun: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "sweep",
			Name:      "last_completion_timestamp_seconds",
			Help:      "Unix time of the last completed sweep.",
		}, []string{"backend"}),
	}

	m.registry.MustRegister(m.runs, m.resets, m.duration, m.lastRun)

	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}

	return m.registry
}

func outcome(err error) string {
	if err != nil {
		return "failure"
	}

	return "success"
}

func (m *Metrics) observeRun(backend string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}

	m.runs.WithLabelValues(backend, outcome(err)).Inc()
	m.duration.WithLabelValues(backend).Observe(elapsed.Seconds())
}

func (m *Metrics) observeReset(err error) {
	if m == nil {
		return
	}

	m.resets.WithLabelValues(outcome(err)).Inc()
}

func (m *Metrics) observeSweepDone(backend string, at time.Time) {
	if m == nil {
		return
	}

	m.lastRun.WithLabelValues(backend).Set(float64(at.Unix()))
}

// WriteTextfile writes the current metrics in the node_exporter textfile
// format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}

	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}

	return nil
}
