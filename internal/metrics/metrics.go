// Package metrics collects batch counters in a private Prometheus registry and
// writes them to a node_exporter textfile when a run ends.
package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"adreel/internal/services"
)

// Recorder holds the batch metrics. A nil Recorder ignores every call.
type Recorder struct {
	registry       *prometheus.Registry
	jobs           *prometheus.CounterVec
	jobDuration    prometheus.Histogram
	stages         *prometheus.CounterVec
	encodeWarnings *prometheus.CounterVec
	adsInserted    prometheus.Counter
	lastBatch      prometheus.Gauge
}

// New returns a Recorder backed by a fresh registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		jobs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "adreel_jobs_total",
			Help: "Movie jobs finished, by outcome",
		}, []string{"outcome"}),
		jobDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "adreel_job_duration_seconds",
			Help:    "Wall time of a movie job from workspace acquisition to release",
			Buckets: prometheus.ExponentialBuckets(60, 2, 10),
		}),
		stages: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "adreel_playlist_state_transitions_total",
			Help: "Playlist build state changes, by entered state",
		}, []string{"state"}),
		encodeWarnings: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "adreel_encode_warnings_total",
			Help: "Known quality signatures found in final encode logs, by kind",
		}, []string{"kind"}),
		adsInserted: factory.NewCounter(prometheus.CounterOpts{
			Name: "adreel_ads_inserted_total",
			Help: "Ad slots placed into finished programs",
		}),
		lastBatch: factory.NewGauge(prometheus.GaugeOpts{
			Name: "adreel_last_batch_timestamp_seconds",
			Help: "Unix time the last batch finished",
		}),
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// JobFinished records one job outcome and its duration.
func (r *Recorder) JobFinished(outcome services.Outcome, elapsed time.Duration) {
	if r == nil {
		return
	}
	label := strings.TrimSpace(string(outcome))
	if label == "" {
		label = "unknown"
	}
	r.jobs.WithLabelValues(label).Inc()
	r.jobDuration.Observe(elapsed.Seconds())
}

// StateEntered records a playlist state change.
func (r *Recorder) StateEntered(state string) {
	if r == nil {
		return
	}
	r.stages.WithLabelValues(state).Inc()
}

// EncodeWarning records n occurrences of a log signature.
func (r *Recorder) EncodeWarning(kind string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.encodeWarnings.WithLabelValues(kind).Add(float64(n))
}

// AdsInserted records ad slots placed into a program.
func (r *Recorder) AdsInserted(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.adsInserted.Add(float64(n))
}

// BatchFinished stamps the end of a batch.
func (r *Recorder) BatchFinished(at time.Time) {
	if r == nil {
		return
	}
	r.lastBatch.Set(float64(at.Unix()))
}

// WriteTextfile writes every metric to path in the text exposition format.
// An empty path is a no-op.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || strings.TrimSpace(path) == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return services.Wrap(services.ErrFilesystem, "metrics", "write textfile", path, err)
	}
	return nil
}
