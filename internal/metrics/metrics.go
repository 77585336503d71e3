// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics counts and times the pipeline stages on a private
// registry. A run can dump the registry to a node-exporter textfile.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Stage names.
const (
	StageSearch   = "search"
	StageDownload = "download"
	StageConvert  = "convert"
	StageUpload   = "upload"
	StageRun      = "run"
)

// Outcome label values.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

const stageTotal = "booknotes_stage_total"

// Recorder holds the stage metrics.
type Recorder struct {
	registry *prometheus.Registry
	stages   *prometheus.CounterVec
	duration *prometheus.HistogramVec
	bytes    prometheus.Counter
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		stages: factory.NewCounterVec(prometheus.CounterOpts{
			Name: stageTotal,
			Help: "Pipeline stages run, by outcome",
		}, []string{"stage", "outcome"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "booknotes_stage_duration_seconds",
			Help:    "Time spent in a pipeline stage",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"stage"}),
		bytes: factory.NewCounter(prometheus.CounterOpts{
			Name: "booknotes_downloaded_bytes_total",
			Help: "Bytes of ebooks acquired",
		}),
	}
}

// Snapshot returns the stage counters keyed "stage/outcome".
func (r *Recorder) Snapshot() map[string]float64 {
	out := map[string]float64{}
	families, err := r.registry.Gather()
	if err != nil {
		return out
	}
	for _, mf := range families {
		if mf.GetName() != stageTotal {
			continue
		}
		for _, m := range mf.GetMetric() {
			var stage, outcome string
			for _, l := range m.GetLabel() {
				switch l.GetName() {
				case "stage":
					stage = l.GetValue()
				case "outcome":
					outcome = l.GetValue()
				}
			}
			out[stage+"/"+outcome] = m.GetCounter().GetValue()
		}
	}
	return out
}

// Observe records one stage that started at start and ended with err.
func (r *Recorder) Observe(stage string, start time.Time, err error) {
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	r.stages.WithLabelValues(stage, outcome).Inc()
	r.duration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// Time runs fn and observes it as stage.
func (r *Recorder) Time(stage string, fn func() error) error {
	start := time.Now()
	err := fn()
	r.Observe(stage, start, err)
	return err
}

// AddBytes counts acquired bytes.
func (r *Recorder) AddBytes(n int64) {
	if n > 0 {
		r.bytes.Add(float64(n))
	}
}

// WriteTextfile writes the registry to path in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
