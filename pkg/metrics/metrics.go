// Package metrics counts what one run did. A batch job has no scrape endpoint,
// so the registry is pushed to a Prometheus Pushgateway at the end of the run
// when one is configured.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const (
	OutcomeUploaded = "uploaded"
	OutcomeIgnored  = "ignored"
	OutcomeFailed   = "failed"
)

// Recorder is safe to use as a nil pointer; every method is then a no-op.
type Recorder struct {
	Registry *prometheus.Registry

	files        *prometheus.CounterVec
	bytes        prometheus.Counter
	duration     prometheus.Gauge
	lastSuccess  prometheus.Gauge
	runsByStatus *prometheus.CounterVec
}

func New() *Recorder {
	r := &Recorder{
		Registry: prometheus.NewRegistry(),
		files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spupload",
			Name:      "files_total",
			Help:      "Files considered by the upload pass, by outcome.",
		}, []string{"outcome"}),
		bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "spupload",
			Name:      "uploaded_bytes_total",
			Help:      "Bytes successfully uploaded.",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "spupload",
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run.",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "spupload",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last run that reached Done.",
		}),
		runsByStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spupload",
			Name:      "runs_total",
			Help:      "Runs by final status.",
		}, []string{"status"}),
	}
	r.Registry.MustRegister(r.files, r.bytes, r.duration, r.lastSuccess, r.runsByStatus)
	return r
}

// File records one file outcome; size is only counted for uploads.
func (r *Recorder) File(outcome string, size int64) {
	if r == nil {
		return
	}
	r.files.WithLabelValues(outcome).Inc()
	if outcome == OutcomeUploaded && size > 0 {
		r.bytes.Add(float64(size))
	}
}

// Run records the end of a run.
func (r *Recorder) Run(status string, d time.Duration, end time.Time) {
	if r == nil {
		return
	}
	r.runsByStatus.WithLabelValues(status).Inc()
	r.duration.Set(d.Seconds())
	if status == "done" {
		r.lastSuccess.Set(float64(end.Unix()))
	}
}

// Push sends the registry to the Pushgateway at url under job, grouped by instance.
func (r *Recorder) Push(ctx context.Context, url, job, instance string) error {
	if r == nil || url == "" {
		return nil
	}
	return push.New(url, job).
		Gatherer(r.Registry).
		Grouping("instance", instance).
		PushContext(ctx)
}

// Counter exposes the file counter for an outcome (tests and logging).
func (r *Recorder) Counter(outcome string) prometheus.Counter {
	return r.files.WithLabelValues(outcome)
}

// Runs exposes the run counter for a final status.
func (r *Recorder) Runs(status string) prometheus.Counter {
	return r.runsByStatus.WithLabelValues(status)
}
