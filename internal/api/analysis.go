package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/soundguard/soundguard-go/internal/analysis"
)

// AnalyzeRequest is the body of an analysis call. Zone and area are
// optional; the configured defaults apply when they are empty.
type AnalyzeRequest struct {
	AudioData  []float64 `json:"audioData"`
	SampleRate int       `json:"sampleRate"`
	Zone       string    `json:"zone"`
	Area       string    `json:"area"`
}

func (c *Controller) initAnalysisRoutes(group *echo.Group) {
	group.POST("/audio/analyze", c.AnalyzeAudio)
}

// AnalyzeAudio runs the danger analysis pipeline on the posted samples. The
// response body is always the structured analysis outcome; a failed outcome
// answers 400 with its error message.
func (c *Controller) AnalyzeAudio(ctx echo.Context) error {
	var req AnalyzeRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "잘못된 요청입니다", http.StatusBadRequest)
	}
	if len(req.AudioData) == 0 {
		return ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: "오디오 데이터가 필요합니다."})
	}

	outcome := c.Analyzer.Analyze(ctx.Request().Context(), &analysis.Request{
		Samples:    req.AudioData,
		SampleRate: req.SampleRate,
		Zone:       req.Zone,
		Area:       req.Area,
	})

	if !outcome.Success {
		return ctx.JSON(http.StatusBadRequest, outcome)
	}
	return ctx.JSON(http.StatusOK, outcome)
}
