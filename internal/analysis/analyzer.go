// Package analysis implements the audio danger analysis pipeline: sample
// normalization, prediction via the external ML service, the danger decision
// policy, and the event/notification fan-out that follows a dangerous
// verdict.
package analysis

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/soundguard/soundguard-go/internal/conf"
	"github.com/soundguard/soundguard-go/internal/inference"
	"github.com/soundguard/soundguard-go/internal/logging"
	"github.com/soundguard/soundguard-go/internal/observability/metrics"
)

// EventRecord describes a system-wide safety event to be persisted.
type EventRecord struct {
	Zone     string
	Area     string
	Type     string
	Message  string
	Severity string
}

// AlertNotification describes a per-user alert to be created during fan-out.
type AlertNotification struct {
	Type     string
	Title    string
	Message  string
	Priority string
}

// EventRecorder persists shared safety events.
type EventRecorder interface {
	Record(ctx context.Context, event EventRecord) (uint, error)
}

// UserDirectory enumerates alert targets.
type UserDirectory interface {
	ListUserIDs(ctx context.Context) ([]string, error)
}

// PreferenceStore answers per-user alerting preferences. Implementations
// must default to enabled when a user has no stored preference.
type PreferenceStore interface {
	IsEmergencyEnabled(ctx context.Context, userID string) (bool, error)
}

// NotificationSink creates per-user notifications.
type NotificationSink interface {
	Create(ctx context.Context, userID string, notification AlertNotification) error
}

// EventPublisher mirrors danger events to an external channel (MQTT).
// Publishing is best-effort.
type EventPublisher interface {
	Publish(ctx context.Context, event EventRecord) error
}

// Request is one analysis call. Zone and Area identify the physical sensor
// location; when empty the configured defaults are stamped on any resulting
// event.
type Request struct {
	Samples    []float64
	SampleRate int
	Zone       string
	Area       string
}

// Outcome is the structured result of one analysis call. The analysis
// endpoint always answers with an Outcome; side-effect failures during
// fan-out never surface here.
type Outcome struct {
	Success           bool      `json:"success"`
	IsDangerous       bool      `json:"isDangerous"`
	DangerProbability float64   `json:"dangerProbability"`
	Predictions       []float64 `json:"predictions,omitempty"`
	PredictedClass    int       `json:"predictedClass"`
	Message           string    `json:"message,omitempty"`
	Error             string    `json:"error,omitempty"`
}

// Analyzer orchestrates the analysis pipeline. The evaluator itself is pure;
// the analyzer owns all I/O and failure containment.
type Analyzer struct {
	client    inference.Client
	recorder  EventRecorder
	directory UserDirectory
	prefs     PreferenceStore
	sink      NotificationSink
	publisher EventPublisher // optional

	defaultZone       string
	defaultArea       string
	defaultSampleRate int
	fanoutWorkers     int

	metrics *metrics.AnalysisMetrics // optional
	logger  *slog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithEventPublisher attaches an external event channel to the fan-out.
func WithEventPublisher(publisher EventPublisher) Option {
	return func(a *Analyzer) {
		a.publisher = publisher
	}
}

// WithMetrics attaches prometheus metrics to the pipeline.
func WithMetrics(m *metrics.AnalysisMetrics) Option {
	return func(a *Analyzer) {
		a.metrics = m
	}
}

// New creates an Analyzer wired to its collaborators.
func New(settings *conf.Settings, client inference.Client, recorder EventRecorder,
	directory UserDirectory, prefs PreferenceStore, sink NotificationSink, opts ...Option) *Analyzer {

	logger := logging.ForService("analysis")
	if logger == nil {
		logger = slog.Default().With("service", "analysis")
	}

	a := &Analyzer{
		client:            client,
		recorder:          recorder,
		directory:         directory,
		prefs:             prefs,
		sink:              sink,
		defaultZone:       settings.Analysis.DefaultZone,
		defaultArea:       settings.Analysis.DefaultArea,
		defaultSampleRate: settings.Analysis.DefaultSampleRate,
		fanoutWorkers:     settings.Analysis.FanoutWorkers,
		logger:            logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze runs the full pipeline for one audio sample. It always returns a
// structured Outcome: input errors and upstream prediction failures produce
// a failed Outcome, and any unexpected fault is caught at this boundary
// rather than propagating to the transport layer.
func (a *Analyzer) Analyze(ctx context.Context, req *Request) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("analysis pipeline panic recovered", "panic", r)
			outcome = Outcome{Success: false, Error: "오디오 분석 실패: internal error"}
		}
	}()

	start := time.Now()

	normalized := normalizeSamples(req.Samples)
	if len(normalized) == 0 {
		return Outcome{Success: false, Error: "오디오 데이터 변환 실패"}
	}

	sampleRate := req.SampleRate
	if sampleRate <= 0 {
		sampleRate = a.defaultSampleRate
	}

	predictions, err := a.client.Predict(ctx, normalized, sampleRate)
	if err != nil {
		a.observeError()
		a.logger.Error("prediction request failed", "error", err)
		return Outcome{Success: false, Error: err.Error()}
	}

	if len(predictions) == 0 {
		a.observeError()
		return Outcome{Success: false, Error: "예측 결과가 비어있습니다"}
	}

	verdict, err := Evaluate(predictions)
	if err != nil {
		a.observeError()
		return Outcome{Success: false, Error: err.Error()}
	}

	a.logVerdict(predictions, &verdict)
	a.observeVerdict(&verdict, time.Since(start))

	if verdict.IsDangerous {
		zone, area := req.Zone, req.Area
		if zone == "" {
			zone = a.defaultZone
		}
		if area == "" {
			area = a.defaultArea
		}
		// Best-effort: event recording and notification fan-out must not
		// block or fail the analysis response.
		a.fanOutDangerAlert(ctx, &verdict, zone, area)
	}

	return Outcome{
		Success:           true,
		IsDangerous:       verdict.IsDangerous,
		DangerProbability: verdict.DangerProbability,
		Predictions:       predictions,
		PredictedClass:    verdict.PredictedClass,
		Message:           verdict.Message,
	}
}

// normalizeSamples scales amplitudes into [-1, 1] by dividing by the maximum
// absolute value. A silent (all-zero) sample is passed through unchanged.
func normalizeSamples(samples []float64) []float64 {
	if len(samples) == 0 {
		return nil
	}

	maxVal := 0.0
	for _, sample := range samples {
		if abs := math.Abs(sample); abs > maxVal {
			maxVal = abs
		}
	}
	if maxVal == 0 {
		maxVal = 1.0
	}

	normalized := make([]float64, len(samples))
	for i, sample := range samples {
		normalized[i] = sample / maxVal
	}
	return normalized
}

func (a *Analyzer) logVerdict(predictions []float64, verdict *Verdict) {
	if verdict.IsDangerous {
		a.logger.Warn("danger detected",
			"class", verdict.PredictedClass,
			"label", ClassLabel(verdict.PredictedClass),
			"confidence", verdict.Confidence,
			"danger_probability", verdict.DangerProbability)
		return
	}
	a.logger.Debug("analysis verdict",
		"class", verdict.PredictedClass,
		"label", ClassLabel(verdict.PredictedClass),
		"confidence", verdict.Confidence,
		"classes", len(predictions))
}

func (a *Analyzer) observeVerdict(verdict *Verdict, elapsed time.Duration) {
	if a.metrics == nil {
		return
	}
	a.metrics.ObserveVerdict(verdict.PredictedClass, verdict.IsDangerous, elapsed)
}

func (a *Analyzer) observeError() {
	if a.metrics == nil {
		return
	}
	a.metrics.AnalysisErrors.Inc()
}
