// Package prometheus records the sync metrics with Prometheus. The CLI has no
// server, metrics are exported with the node exporter textfile format.
package prometheus

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/slok/crxsync/internal/metrics"
)

const namespace = "crxsync"

// Recorder is a Prometheus metrics.Recorder.
type Recorder struct {
	registry        *prometheus.Registry
	passes          *prometheus.CounterVec
	passDuration    *prometheus.HistogramVec
	lastPass        *prometheus.GaugeVec
	tasks           *prometheus.CounterVec
	transitions     *prometheus.CounterVec
	reconciliations *prometheus.CounterVec
}

var _ metrics.Recorder = &Recorder{}

// NewRecorder returns a new recorder with its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		passes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "passes_total",
			Help:      "Total number of sync passes by result.",
		}, []string{"result"}),
		passDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "pass_duration_seconds",
			Help:      "Duration of the sync passes.",
			Buckets:   []float64{.1, .5, 1, 5, 10, 30, 60, 300},
		}, []string{"result"}),
		lastPass: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "last_pass_timestamp_seconds",
			Help:      "Unix time of the last sync pass by result.",
		}, []string{"result"}),
		tasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "task_operations_total",
			Help:      "Total number of operations applied to tasks.",
		}, []string{"operation"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "remote",
			Name:      "transitions_total",
			Help:      "Total number of workflow transitions executed on the remote.",
		}, []string{"transition"}),
		reconciliations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "reconciliations_total",
			Help:      "Total number of stale local task reconciliations by decision.",
		}, []string{"decision"}),
	}

	r.registry.MustRegister(r.passes, r.passDuration, r.lastPass, r.tasks, r.transitions, r.reconciliations)
	return r
}

// Registry returns the registry the metrics are registered on.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

func (r *Recorder) ObservePass(result string, duration time.Duration) {
	r.passes.WithLabelValues(result).Inc()
	r.passDuration.WithLabelValues(result).Observe(duration.Seconds())
	r.lastPass.WithLabelValues(result).SetToCurrentTime()
}

func (r *Recorder) IncTask(op string) { r.tasks.WithLabelValues(op).Inc() }

func (r *Recorder) IncTransition(transition string) {
	r.transitions.WithLabelValues(transition).Inc()
}

func (r *Recorder) IncReconciliation(decision string) {
	r.reconciliations.WithLabelValues(decision).Inc()
}

// WriteTextfile writes the metrics in the text exposition format, atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("could not create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("could not write metrics: %w", err)
	}
	return nil
}
