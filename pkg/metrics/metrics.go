// Package metrics exposes classifier metrics on a private Prometheus
// registry. There is no HTTP listener; metrics are written in the
// node_exporter textfile format after a command finishes.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the postmood collectors
type Metrics struct {
	registry *prometheus.Registry

	// PredictionsTotal counts predicted documents by class label
	PredictionsTotal *prometheus.CounterVec

	// TrainingDocuments is the size of the last training set
	TrainingDocuments prometheus.Gauge

	// VocabularySize is the number of features of the current model
	VocabularySize prometheus.Gauge

	// StageDuration tracks pipeline stage latency
	StageDuration *prometheus.HistogramVec
}

// New creates the collectors on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		PredictionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "postmood_predictions_total",
				Help: "Total number of classified documents by predicted class",
			},
			[]string{"class"},
		),
		TrainingDocuments: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "postmood_training_documents",
				Help: "Number of documents in the last training set",
			},
		),
		VocabularySize: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "postmood_vocabulary_size",
				Help: "Number of vocabulary terms in the current model",
			},
		),
		StageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "postmood_stage_duration_seconds",
				Help:    "Duration of pipeline stages in seconds",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"stage"},
		),
	}
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordPredictions counts one prediction per label
func (m *Metrics) RecordPredictions(labels []int) {
	for _, label := range labels {
		m.PredictionsTotal.WithLabelValues(strconv.Itoa(label)).Inc()
	}
}

// RecordTraining sets the training set gauges
func (m *Metrics) RecordTraining(documents, vocabulary int) {
	m.TrainingDocuments.Set(float64(documents))
	m.VocabularySize.Set(float64(vocabulary))
}

// ObserveStage records a stage duration; it matches profiler.Observer
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// WriteTextfile writes all metrics to path for the node_exporter textfile collector
func (m *Metrics) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
