package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// PredictRequest is a raw prediction passthrough to the ML service, without
// the danger policy or any side effects.
type PredictRequest struct {
	Data       []float64 `json:"data"`
	SampleRate int       `json:"sampleRate"`
}

// PredictResponse carries the raw probability vector back to the caller.
type PredictResponse struct {
	Success    bool      `json:"success"`
	Prediction []float64 `json:"prediction"`
}

func (c *Controller) initMLRoutes(group *echo.Group) {
	ml := group.Group("/ml")
	ml.POST("/predict", c.Predict)
	ml.GET("/model/info", c.ModelInfo)
	ml.GET("/health", c.MLHealth)
}

// Predict forwards raw samples to the ML service and returns its
// probability vector unfiltered.
func (c *Controller) Predict(ctx echo.Context) error {
	var req PredictRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "잘못된 요청입니다", http.StatusBadRequest)
	}
	if len(req.Data) == 0 {
		return ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: "입력 데이터가 필요합니다."})
	}

	sampleRate := req.SampleRate
	if sampleRate <= 0 {
		sampleRate = c.Settings.Analysis.DefaultSampleRate
	}

	prediction, err := c.ML.Predict(ctx.Request().Context(), req.Data, sampleRate)
	if err != nil {
		return c.HandleError(ctx, err, "예측 중 오류 발생", http.StatusBadGateway)
	}
	return ctx.JSON(http.StatusOK, PredictResponse{Success: true, Prediction: prediction})
}

// ModelInfo proxies the ML service's model metadata.
func (c *Controller) ModelInfo(ctx echo.Context) error {
	info, err := c.ML.ModelInfo(ctx.Request().Context())
	if err != nil {
		return c.HandleError(ctx, err, "모델 정보 조회 실패", http.StatusBadGateway)
	}
	return ctx.JSON(http.StatusOK, info)
}

// MLHealth reports whether the ML service is reachable.
func (c *Controller) MLHealth(ctx echo.Context) error {
	if err := c.ML.Healthy(ctx.Request().Context()); err != nil {
		return ctx.JSON(http.StatusServiceUnavailable, map[string]any{
			"status": "unhealthy",
			"error":  err.Error(),
		})
	}
	return ctx.JSON(http.StatusOK, map[string]any{"status": "healthy"})
}
