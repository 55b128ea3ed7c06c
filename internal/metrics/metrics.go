// Package metrics counts run results in a Prometheus registry and writes them
// in the node_exporter textfile format once the run is over.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/law-makers/campaigner/pkg/models"
)

// Recorder is a campaign reporter backed by Prometheus collectors
type Recorder struct {
	registry *prometheus.Registry

	records  *prometheus.CounterVec
	outcomes *prometheus.CounterVec
	skipped  *prometheus.CounterVec
	duration *prometheus.HistogramVec
	lastRun  prometheus.Gauge
}

// New creates a recorder with its own registry
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		records: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "campaigner_records_total",
				Help: "Campaign records discovered, by surface and verdict",
			},
			[]string{"surface", "verdict"},
		),
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "campaigner_outcomes_total",
				Help: "Entry attempts, by surface and outcome",
			},
			[]string{"surface", "outcome", "unclassified"},
		),
		skipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "campaigner_surfaces_skipped_total",
				Help: "Surfaces that could not be processed",
			},
			[]string{"surface"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "campaigner_step_duration_seconds",
				Help:    "Time spent on each surface",
				Buckets: prometheus.ExponentialBuckets(5, 2, 8),
			},
			[]string{"surface"},
		),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "campaigner_last_run_timestamp_seconds",
			Help: "Unix time the last run finished",
		}),
	}

	r.registry.MustRegister(r.records, r.outcomes, r.skipped, r.duration, r.lastRun)
	return r
}

// Registry exposes the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) Record(surface string, rec models.CampaignRecord, v models.Verdict) {
	r.records.WithLabelValues(surface, string(v)).Inc()
}

func (r *Recorder) Outcome(surface string, o models.Outcome) {
	unclassified := "false"
	if o.Unclassified {
		unclassified = "true"
	}
	r.outcomes.WithLabelValues(surface, string(o.Kind), unclassified).Inc()
}

func (r *Recorder) SurfaceSkipped(surface string, err error) {
	r.skipped.WithLabelValues(surface).Inc()
}

func (r *Recorder) StepFinished(surface string, elapsed time.Duration) {
	r.duration.WithLabelValues(surface).Observe(elapsed.Seconds())
}

// WriteTextfile stamps the run end time and writes every metric to path
func (r *Recorder) WriteTextfile(path string) error {
	r.lastRun.SetToCurrentTime()
	return prometheus.WriteToTextfile(path, r.registry)
}
