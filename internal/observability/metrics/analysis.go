// Package metrics provides custom Prometheus metrics for the SoundGuard-Go
// application.
package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// AnalysisMetrics contains all Prometheus metrics related to the danger
// analysis pipeline.
type AnalysisMetrics struct {
	VerdictCounter       *prometheus.CounterVec
	DangerousDetections  prometheus.Counter
	AnalysisErrors       prometheus.Counter
	AnalysisDuration     prometheus.Histogram
	EventsRecorded       prometheus.Counter
	NotificationsCreated prometheus.Counter
	NotificationsFailed  prometheus.Counter

	registry *prometheus.Registry
}

// NewAnalysisMetrics creates a new instance of AnalysisMetrics registered on
// the given registry.
func NewAnalysisMetrics(registry *prometheus.Registry) (*AnalysisMetrics, error) {
	m := &AnalysisMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register analysis metrics: %w", err)
	}
	return m, nil
}

func (m *AnalysisMetrics) initMetrics() {
	m.VerdictCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soundguard_analysis_verdicts_total",
			Help: "Total number of analysis verdicts partitioned by predicted class and danger flag.",
		},
		[]string{"class", "dangerous"},
	)
	m.DangerousDetections = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "soundguard_dangerous_detections_total",
			Help: "Total number of dangerous sound detections.",
		},
	)
	m.AnalysisErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "soundguard_analysis_errors_total",
			Help: "Total number of failed analysis requests.",
		},
	)
	m.AnalysisDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "soundguard_analysis_duration_seconds",
			Help:    "Time taken to run the full analysis pipeline.",
			Buckets: prometheus.DefBuckets,
		},
	)
	m.EventsRecorded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "soundguard_danger_events_recorded_total",
			Help: "Total number of danger events persisted.",
		},
	)
	m.NotificationsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "soundguard_fanout_notifications_created_total",
			Help: "Total number of notifications created during danger fan-out.",
		},
	)
	m.NotificationsFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "soundguard_fanout_notifications_failed_total",
			Help: "Total number of notification creations that failed during danger fan-out.",
		},
	)
}

// ObserveVerdict records the outcome of one analysis call.
func (m *AnalysisMetrics) ObserveVerdict(predictedClass int, dangerous bool, elapsed time.Duration) {
	m.VerdictCounter.WithLabelValues(strconv.Itoa(predictedClass), strconv.FormatBool(dangerous)).Inc()
	m.AnalysisDuration.Observe(elapsed.Seconds())
	if dangerous {
		m.DangerousDetections.Inc()
	}
}

// Describe implements the prometheus.Collector interface.
func (m *AnalysisMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.VerdictCounter.Describe(ch)
	m.DangerousDetections.Describe(ch)
	m.AnalysisErrors.Describe(ch)
	m.AnalysisDuration.Describe(ch)
	m.EventsRecorded.Describe(ch)
	m.NotificationsCreated.Describe(ch)
	m.NotificationsFailed.Describe(ch)
}

// Collect implements the prometheus.Collector interface.
func (m *AnalysisMetrics) Collect(ch chan<- prometheus.Metric) {
	m.VerdictCounter.Collect(ch)
	m.DangerousDetections.Collect(ch)
	m.AnalysisErrors.Collect(ch)
	m.AnalysisDuration.Collect(ch)
	m.EventsRecorded.Collect(ch)
	m.NotificationsCreated.Collect(ch)
	m.NotificationsFailed.Collect(ch)
}
