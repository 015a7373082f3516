package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects counters for a single tutorial run. Each run gets its own
// registry so snapshots never mix state across runs.
type Metrics struct {
	registry *prometheus.Registry

	FetchesTotal   prometheus.Counter
	CacheHitsTotal prometheus.Counter
	BytesFetched   prometheus.Counter

	StepsTotal   *prometheus.CounterVec // labeled by kind and status
	StepDuration prometheus.Histogram

	ExercisesTotal prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		FetchesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tutorkit_fetches_total",
			Help: "Dataset files transferred from the origin.",
		}),
		CacheHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tutorkit_cache_hits_total",
			Help: "Dataset files already present in the local cache.",
		}),
		BytesFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tutorkit_fetch_bytes_total",
			Help: "Bytes downloaded from the origin.",
		}),
		StepsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tutorkit_steps_total",
			Help: "Lesson steps executed.",
		}, []string{"kind", "status"}),
		StepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tutorkit_step_duration_seconds",
			Help:    "Wall time per lesson step.",
			Buckets: prometheus.DefBuckets,
		}),
		ExercisesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tutorkit_exercises_total",
			Help: "Exercise solutions loaded and executed.",
		}),
	}

	m.registry.MustRegister(
		m.FetchesTotal,
		m.CacheHitsTotal,
		m.BytesFetched,
		m.StepsTotal,
		m.StepDuration,
		m.ExercisesTotal,
	)
	return m
}

// WriteSnapshot writes the registry in Prometheus text format to
// <dir>/run-<runID>.prom.
func (m *Metrics) WriteSnapshot(dir, runID string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("metrics dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("run-%s.prom", runID))
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return "", fmt.Errorf("write metrics snapshot: %w", err)
	}
	return path, nil
}
