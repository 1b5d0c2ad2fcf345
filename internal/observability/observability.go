// Package observability bundles the application's Prometheus metrics behind a
// single registry so the web server can expose them on one endpoint.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/soundguard/soundguard-go/internal/errors"
	"github.com/soundguard/soundguard-go/internal/observability/metrics"
)

// Metrics holds all application metric collectors on a private registry.
type Metrics struct {
	Analysis  *metrics.AnalysisMetrics
	Inference *metrics.InferenceMetrics

	registry *prometheus.Registry
}

// NewMetrics creates a new metrics instance with its own registry. The
// registry also carries the standard Go runtime and process collectors.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	analysisMetrics, err := metrics.NewAnalysisMetrics(registry)
	if err != nil {
		return nil, errors.New(err).
			Component("observability").
			Category(errors.CategoryConfiguration).
			Context("collector", "analysis").
			Build()
	}

	inferenceMetrics, err := metrics.NewInferenceMetrics(registry)
	if err != nil {
		return nil, errors.New(err).
			Component("observability").
			Category(errors.CategoryConfiguration).
			Context("collector", "inference").
			Build()
	}

	return &Metrics{
		Analysis:  analysisMetrics,
		Inference: inferenceMetrics,
		registry:  registry,
	}, nil
}

// Handler returns an HTTP handler serving the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
