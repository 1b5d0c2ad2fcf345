// Package api implements the JSON HTTP surface of the application: auth,
// audio analysis, events, notifications, per-user settings, audio clip
// storage, system info and admin operations.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/patrickmn/go-cache"

	"github.com/soundguard/soundguard-go/internal/analysis"
	"github.com/soundguard/soundguard-go/internal/conf"
	"github.com/soundguard/soundguard-go/internal/datastore"
	"github.com/soundguard/soundguard-go/internal/errors"
	"github.com/soundguard/soundguard-go/internal/inference"
	"github.com/soundguard/soundguard-go/internal/logging"
	"github.com/soundguard/soundguard-go/internal/observability"
	"github.com/soundguard/soundguard-go/internal/security"
)

// Controller manages the API routes and handlers.
type Controller struct {
	Echo     *echo.Echo
	Group    *echo.Group
	DS       datastore.Interface
	Settings *conf.Settings
	Auth     *security.AuthService
	Tokens   *security.TokenProvider
	Analyzer *analysis.Analyzer
	ML       inference.Client
	Metrics  *observability.Metrics

	systemCache *cache.Cache
	startTime   time.Time
	logger      *slog.Logger
}

// New creates the API controller and registers all routes on the given echo
// instance.
func New(e *echo.Echo, ds datastore.Interface, settings *conf.Settings,
	auth *security.AuthService, tokens *security.TokenProvider,
	analyzer *analysis.Analyzer, ml inference.Client,
	metrics *observability.Metrics) *Controller {

	logger := logging.ForService("api")
	if logger == nil {
		logger = slog.Default().With("service", "api")
	}

	c := &Controller{
		Echo:        e,
		DS:          ds,
		Settings:    settings,
		Auth:        auth,
		Tokens:      tokens,
		Analyzer:    analyzer,
		ML:          ml,
		Metrics:     metrics,
		systemCache: cache.New(10*time.Second, time.Minute),
		startTime:   time.Now(),
		logger:      logger,
	}

	c.Group = e.Group("/api/v1")
	c.Group.Use(middleware.CORS())
	c.initRoutes()
	return c
}

// initRoutes registers all API endpoints.
func (c *Controller) initRoutes() {
	// Public endpoints
	c.Group.GET("/health", c.HealthCheck)
	c.initAuthRoutes()

	// Authenticated endpoints
	protected := c.Group.Group("", c.AuthMiddleware)
	c.initAnalysisRoutes(protected)
	c.initMLRoutes(protected)
	c.initEventRoutes(protected)
	c.initNotificationRoutes(protected)
	c.initSettingsRoutes(protected)
	c.initSystemRoutes(protected)
	c.initMediaRoutes(protected)
	c.initAdminRoutes(protected)

	if c.Settings.Realtime.Telemetry.Enabled && c.Metrics != nil {
		c.Echo.GET("/metrics", echo.WrapHandler(c.Metrics.Handler()))
	}
}

// HealthCheck reports service liveness.
func (c *Controller) HealthCheck(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]any{
		"status":  "healthy",
		"version": c.Settings.Version,
		"uptime":  time.Since(c.startTime).Seconds(),
	})
}

// ErrorResponse is the JSON body returned for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HandleError logs the error and writes an ErrorResponse with the given
// status code. Sentinel messages are surfaced verbatim so clients can show
// them directly.
func (c *Controller) HandleError(ctx echo.Context, err error, message string, code int) error {
	c.logger.Error(message,
		"path", ctx.Request().URL.Path,
		"method", ctx.Request().Method,
		"status", code,
		"error", err)

	body := message
	if err != nil {
		body = message + ": " + err.Error()
	}
	return ctx.JSON(code, ErrorResponse{Error: body})
}

// statusForAccountError maps account operation failures to HTTP status
// codes; anything unmapped is an internal error.
func statusForAccountError(err error) int {
	switch {
	case errors.Is(err, security.ErrUserIDTaken),
		errors.Is(err, security.ErrEmailTaken),
		errors.Is(err, security.ErrCurrentPasswordBlank):
		return http.StatusBadRequest
	case errors.Is(err, security.ErrInvalidCredentials),
		errors.Is(err, security.ErrCurrentPasswordWrong):
		return http.StatusUnauthorized
	case errors.Is(err, security.ErrUserNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
