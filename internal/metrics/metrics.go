// Package metrics records per-run pipeline counters in a private Prometheus
// registry and can write them in the node-exporter textfile format.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rshade/reviewlens/internal/nlp"
	"github.com/rshade/reviewlens/internal/pipeline"
)

const namespace = "reviewlens"

// Recorder holds the metrics for one run.
type Recorder struct {
	registry *prometheus.Registry

	rowsInput   prometheus.Counter
	rowsDropped prometheus.Counter
	rowsOutput  prometheus.Counter
	batches     prometheus.Counter
	sentiment   *prometheus.CounterVec
	runs        *prometheus.CounterVec
	duration    prometheus.Gauge
	throughput  prometheus.Gauge
	lastRun     prometheus.Gauge
}

// New creates a Recorder with all metrics registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		rowsInput: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_input_total",
			Help:      "Rows read from the dataset",
		}),
		rowsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_dropped_total",
			Help:      "Rows dropped because the review text was missing",
		}),
		rowsOutput: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_output_total",
			Help:      "Rows written to the processed table",
		}),
		batches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Batches processed",
		}),
		sentiment: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sentiment_total",
				Help:      "Classified rows by sentiment label",
			},
			[]string{"label"},
		),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Pipeline runs by terminal state",
			},
			[]string{"state"},
		),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run",
		}),
		throughput: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rows_per_second",
			Help:      "Input rows per second in the last run",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished",
		}),
	}

	r.registry.MustRegister(
		r.rowsInput, r.rowsDropped, r.rowsOutput, r.batches,
		r.sentiment, r.runs, r.duration, r.throughput, r.lastRun,
	)
	// Pre-create label series so a run with no hits still reports zeros.
	for _, l := range nlp.Labels() {
		r.sentiment.WithLabelValues(l.String())
	}
	return r
}

// Registry exposes the underlying registry, e.g. for an HTTP handler.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// ObserveRun adds the outcome of a pipeline run.
func (r *Recorder) ObserveRun(res *pipeline.Result) {
	if res == nil {
		return
	}
	r.runs.WithLabelValues(string(res.State)).Inc()

	r.rowsInput.Add(float64(res.Stats.Input))
	r.rowsDropped.Add(float64(res.Stats.Dropped))
	r.rowsOutput.Add(float64(res.Stats.Output))
	r.batches.Add(float64(res.Batches))
	for _, l := range nlp.Labels() {
		r.sentiment.WithLabelValues(l.String()).Add(float64(res.Stats.Count(l)))
	}

	r.duration.Set(res.Progress.ElapsedTime.Seconds())
	r.throughput.Set(res.Progress.ItemsPerSecond)
	if !res.Progress.LastUpdateTime.IsZero() {
		r.lastRun.Set(float64(res.Progress.LastUpdateTime.Unix()))
	}
}

// WriteTextfile writes the registry to path in the text exposition format.
// The write goes through a temporary file so a collector never sees a
// partial file.
func (r *Recorder) WriteTextfile(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("creating metrics directory: %w", err)
		}
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics textfile %s: %w", path, err)
	}
	return nil
}
