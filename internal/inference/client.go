// Package inference provides the client for the external audio
// classification service. The service receives normalized audio samples and
// returns a probability vector over the sound classes; all signal processing
// (mel spectrogram extraction, length adjustment) happens on the service
// side.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/soundguard/soundguard-go/internal/conf"
	"github.com/soundguard/soundguard-go/internal/errors"
	"github.com/soundguard/soundguard-go/internal/logging"
)

const (
	// UserAgent identifies this client to the ML service.
	UserAgent = "SoundGuard-Go"

	// RetryDelay is the pause between retry attempts for transient failures.
	RetryDelay = 500 * time.Millisecond
)

// Client is the boundary contract for the external classification service.
type Client interface {
	// Predict sends normalized samples and returns the class probability
	// vector. The vector is not guaranteed to sum to one.
	Predict(ctx context.Context, samples []float64, sampleRate int) ([]float64, error)

	// ModelInfo returns the service's model metadata as-is.
	ModelInfo(ctx context.Context) (map[string]any, error)

	// Healthy reports whether the service answers its health endpoint. A
	// non-nil error describes why it is considered down.
	Healthy(ctx context.Context) error
}

// HTTPClient implements Client against the HTTP+JSON service API.
type HTTPClient struct {
	baseURL    string
	maxRetries int
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPClient creates a client from configuration.
func NewHTTPClient(settings *conf.Settings) *HTTPClient {
	logger := logging.ForService("inference")
	if logger == nil {
		logger = slog.Default().With("service", "inference")
	}
	return &HTTPClient{
		baseURL:    settings.ML.URL,
		maxRetries: settings.ML.MaxRetries,
		httpClient: &http.Client{Timeout: settings.ML.Timeout},
		logger:     logger,
	}
}

// predictRequest is the wire format of the predict endpoint.
type predictRequest struct {
	InputData  []float64 `json:"input_data"`
	SampleRate int       `json:"sample_rate"`
}

// predictResponse is the wire format of the predict endpoint reply. The
// prediction field is tolerant of both a flat array and a nested
// single-batch array, and of null entries inside either.
type predictResponse struct {
	Success     bool             `json:"success"`
	Prediction  probabilityField `json:"prediction"`
	InputShape  []int            `json:"input_shape"`
	OutputShape []int            `json:"output_shape"`
	Error       string           `json:"error"`
}

// probabilityField decodes [0.1, ...], [[0.1, ...]] and null entries.
type probabilityField []float64

func (p *probabilityField) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	// Nested batch array: take the first row.
	if len(raw) > 0 && len(raw[0]) > 0 && raw[0][0] == '[' {
		var nested [][]*float64
		if err := json.Unmarshal(data, &nested); err != nil {
			return err
		}
		if len(nested) == 0 {
			*p = nil
			return nil
		}
		*p = compactFloats(nested[0])
		return nil
	}

	var flat []*float64
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	*p = compactFloats(flat)
	return nil
}

func compactFloats(values []*float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if v != nil {
			out = append(out, *v)
		}
	}
	return out
}

// Predict implements Client.
func (c *HTTPClient) Predict(ctx context.Context, samples []float64, sampleRate int) ([]float64, error) {
	url := c.baseURL + "/api/predict"

	payload, err := json.Marshal(predictRequest{InputData: samples, SampleRate: sampleRate})
	if err != nil {
		return nil, errors.New(err).
			Component("inference").
			Category(errors.CategoryInference).
			Context("operation", "marshal_request").
			Build()
	}

	start := time.Now()
	body, err := c.doWithRetry(ctx, http.MethodPost, url, payload)
	if err != nil {
		return nil, err
	}

	var response predictResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, errors.New(err).
			Component("inference").
			Category(errors.CategoryInference).
			Context("operation", "unmarshal_response").
			Build()
	}

	if !response.Success {
		msg := response.Error
		if msg == "" {
			msg = "prediction failed"
		}
		return nil, errors.Newf("ml service error: %s", msg).
			Component("inference").
			Category(errors.CategoryInference).
			Build()
	}

	c.logger.Debug("prediction completed",
		"classes", len(response.Prediction),
		"sample_rate", sampleRate,
		"duration_ms", time.Since(start).Milliseconds())

	return response.Prediction, nil
}

// ModelInfo implements Client.
func (c *HTTPClient) ModelInfo(ctx context.Context) (map[string]any, error) {
	body, err := c.doWithRetry(ctx, http.MethodGet, c.baseURL+"/api/model/info", nil)
	if err != nil {
		return nil, err
	}

	var info map[string]any
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, errors.New(err).
			Component("inference").
			Category(errors.CategoryInference).
			Context("operation", "unmarshal_model_info").
			Build()
	}
	return info, nil
}

// Healthy implements Client.
func (c *HTTPClient) Healthy(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", http.NoBody)
	if err != nil {
		return errors.New(err).
			Component("inference").
			Category(errors.CategoryNetwork).
			Build()
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.New(err).
			Component("inference").
			Category(errors.CategoryNetwork).
			Context("operation", "health_check").
			Build()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Newf("health endpoint returned status %d", resp.StatusCode).
			Component("inference").
			Category(errors.CategoryNetwork).
			Build()
	}
	return nil
}

// doWithRetry performs the request, retrying transient failures up to the
// configured attempt count. Context cancellation aborts immediately.
func (c *HTTPClient) doWithRetry(ctx context.Context, method, url string, payload []byte) ([]byte, error) {
	var lastErr error

	for i := 0; i < c.maxRetries; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, errors.New(ctx.Err()).
					Component("inference").
					Category(errors.CategoryCancellation).
					Build()
			case <-time.After(RetryDelay):
			}
		}

		var bodyReader io.Reader = http.NoBody
		if payload != nil {
			bodyReader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
		if err != nil {
			return nil, fmt.Errorf("error creating request: %w", err)
		}
		req.Header.Set("User-Agent", UserAgent)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode != http.StatusOK {
			io.Copy(io.Discard, resp.Body) //nolint:errcheck // drain for connection reuse
			resp.Body.Close()
			lastErr = fmt.Errorf("received non-200 response: %d", resp.StatusCode)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("error reading response body: %w", err)
			continue
		}

		return body, nil
	}

	return nil, errors.New(lastErr).
		Component("inference").
		Category(errors.CategoryNetwork).
		Context("url", url).
		Context("attempts", c.maxRetries).
		Build()
}
