package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// InferenceMetrics contains Prometheus metrics for the external ML service
// client.
type InferenceMetrics struct {
	RequestDuration *prometheus.HistogramVec
	RequestTotal    *prometheus.CounterVec
	RequestErrors   *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewInferenceMetrics creates a new instance of InferenceMetrics registered
// on the given registry.
func NewInferenceMetrics(registry *prometheus.Registry) (*InferenceMetrics, error) {
	m := &InferenceMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register inference metrics: %w", err)
	}
	return m, nil
}

func (m *InferenceMetrics) initMetrics() {
	m.RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "soundguard_inference_request_duration_seconds",
			Help:    "Time taken by requests to the external ML service.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
	m.RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soundguard_inference_requests_total",
			Help: "Total number of requests sent to the external ML service.",
		},
		[]string{"endpoint"},
	)
	m.RequestErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soundguard_inference_request_errors_total",
			Help: "Total number of failed requests to the external ML service.",
		},
		[]string{"endpoint"},
	)
}

// ObserveRequest records one ML service request.
func (m *InferenceMetrics) ObserveRequest(endpoint string, elapsed time.Duration, err error) {
	m.RequestTotal.WithLabelValues(endpoint).Inc()
	m.RequestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
	if err != nil {
		m.RequestErrors.WithLabelValues(endpoint).Inc()
	}
}

// Describe implements the prometheus.Collector interface.
func (m *InferenceMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.RequestDuration.Describe(ch)
	m.RequestTotal.Describe(ch)
	m.RequestErrors.Describe(ch)
}

// Collect implements the prometheus.Collector interface.
func (m *InferenceMetrics) Collect(ch chan<- prometheus.Metric) {
	m.RequestDuration.Collect(ch)
	m.RequestTotal.Collect(ch)
	m.RequestErrors.Collect(ch)
}
