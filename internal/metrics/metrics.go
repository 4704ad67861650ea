package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nao1215/mediclaim/internal/config"
	"github.com/nao1215/mediclaim/internal/model"
	"github.com/nao1215/mediclaim/internal/upload"
)

// DefaultFileName is the textfile written under the XDG state directory.
const DefaultFileName = "mediclaim.prom"

// OutcomeSuccess labels sessions that reached PhaseComplete.
const OutcomeSuccess = "success"

// Recorder collects analysis metrics. It implements upload.Observer.
type Recorder struct {
	registry *prometheus.Registry

	analysisTotal    *prometheus.CounterVec
	analysisDuration *prometheus.HistogramVec
	progress         prometheus.Gauge
	confidence       prometheus.Gauge
	riskFlags        prometheus.Gauge
	hintsTotal       *prometheus.CounterVec

	mu       sync.Mutex
	recorded map[string]struct{}
}

// NewRecorder creates a Recorder with its own registry.
func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()

	analysisTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mediclaim",
			Subsystem: "analysis",
			Name:      "total",
			Help:      "Finished analyses by outcome.",
		},
		[]string{"outcome"},
	)
	analysisDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mediclaim",
			Subsystem: "analysis",
			Name:      "duration_seconds",
			Help:      "Time from submission start to outcome in seconds.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
		[]string{"outcome"},
	)
	progress := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "mediclaim",
		Subsystem: "analysis",
		Name:      "progress_percent",
		Help:      "Displayed progress of the most recent session.",
	})
	confidence := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "mediclaim",
		Subsystem: "result",
		Name:      "confidence_percent",
		Help:      "Confidence percent of the most recent result.",
	})
	riskFlags := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "mediclaim",
		Subsystem: "result",
		Name:      "risk_flags",
		Help:      "Number of risk flags in the most recent result.",
	})
	hintsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mediclaim",
			Subsystem: "preflight",
			Name:      "hints_total",
			Help:      "Preflight advisories by code.",
		},
		[]string{"code"},
	)

	registry.MustRegister(analysisTotal, analysisDuration, progress, confidence, riskFlags, hintsTotal)

	return &Recorder{
		registry:         registry,
		analysisTotal:    analysisTotal,
		analysisDuration: analysisDuration,
		progress:         progress,
		confidence:       confidence,
		riskFlags:        riskFlags,
		hintsTotal:       hintsTotal,
		recorded:         make(map[string]struct{}),
	}
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Observe implements upload.Observer. Each session is counted once, when it
// first reaches a terminal phase.
func (r *Recorder) Observe(s upload.Session) {
	r.progress.Set(float64(s.Progress))
	if !s.Phase.Terminal() || s.ID == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.recorded[s.ID]; ok {
		return
	}
	r.recorded[s.ID] = struct{}{}

	outcome := OutcomeSuccess
	if s.Phase == upload.PhaseFailed && s.Err != nil {
		outcome = s.Err.Kind.String()
	}
	r.analysisTotal.WithLabelValues(outcome).Inc()
	r.analysisDuration.WithLabelValues(outcome).Observe(s.Elapsed().Seconds())
}

// RecordResult records the summary figures of a result.
func (r *Recorder) RecordResult(result *model.AnalysisResult) {
	if result == nil {
		return
	}
	r.confidence.Set(float64(result.Confidence().Percent))
	r.riskFlags.Set(float64(len(result.RiskFlags())))
}

// RecordHint counts one preflight advisory.
func (r *Recorder) RecordHint(code string) {
	r.hintsTotal.WithLabelValues(code).Inc()
}

// WriteFile writes the metrics in the Prometheus text format, for the node
// exporter textfile collector. An empty path means DefaultPath().
func (r *Recorder) WriteFile(path string) (string, error) {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return "", fmt.Errorf("failed to write metrics: %w", err)
	}
	return path, nil
}

// DefaultPath returns the metrics file under the XDG state directory.
func DefaultPath() string {
	return filepath.Join(config.XDGStateDir(), DefaultFileName)
}
