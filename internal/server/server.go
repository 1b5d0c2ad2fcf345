// Package server wires the application together and runs the HTTP service:
// datastore, ML client, analysis pipeline, notification fan-out, optional
// MQTT and push channels, and the JSON API.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/soundguard/soundguard-go/internal/analysis"
	"github.com/soundguard/soundguard-go/internal/api"
	"github.com/soundguard/soundguard-go/internal/conf"
	"github.com/soundguard/soundguard-go/internal/datastore"
	"github.com/soundguard/soundguard-go/internal/errors"
	"github.com/soundguard/soundguard-go/internal/inference"
	"github.com/soundguard/soundguard-go/internal/logging"
	"github.com/soundguard/soundguard-go/internal/mqtt"
	"github.com/soundguard/soundguard-go/internal/notification"
	"github.com/soundguard/soundguard-go/internal/observability"
	"github.com/soundguard/soundguard-go/internal/retention"
	"github.com/soundguard/soundguard-go/internal/security"
)

const shutdownTimeout = 10 * time.Second

// Run starts the service and blocks until SIGINT or SIGTERM.
func Run(settings *conf.Settings) error {
	logger := logging.ForService("server")
	if logger == nil {
		logger = slog.Default().With("service", "server")
	}

	ds := datastore.New(settings)
	if ds == nil {
		return errors.Newf("no database output enabled in configuration").
			Component("server").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if err := ds.Open(); err != nil {
		return err
	}
	defer func() {
		if err := ds.Close(); err != nil {
			logger.Error("failed to close datastore", "error", err)
		}
	}()

	var metrics *observability.Metrics
	if settings.Realtime.Telemetry.Enabled {
		var err error
		metrics, err = observability.NewMetrics()
		if err != nil {
			return err
		}
	}

	mlClient := inference.NewHTTPClient(settings)

	tokens := security.NewTokenProvider(settings)
	auth := security.NewAuthService(ds, tokens)

	alerts := notification.NewService(settings, ds)

	push, err := notification.NewPushPublisher(settings)
	if err != nil {
		return err
	}

	var mqttPublisher *mqtt.Publisher
	if settings.Realtime.MQTT.Enabled {
		mqttPublisher = mqtt.NewPublisher(settings)
		connectCtx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
		err := mqttPublisher.Connect(connectCtx)
		cancel()
		if err != nil {
			// The MQTT side channel is best-effort; the service still runs
			// without it and the client keeps reconnecting in the background.
			logger.Error("initial MQTT connect failed", "broker", settings.Realtime.MQTT.Broker, "error", err)
		}
		defer mqttPublisher.Disconnect()
	}

	opts := []analysis.Option{}
	if publisher := combinedPublisher(mqttPublisher, push); publisher != nil {
		opts = append(opts, analysis.WithEventPublisher(publisher))
	}
	if metrics != nil {
		opts = append(opts, analysis.WithMetrics(metrics.Analysis))
	}
	analyzer := analysis.New(settings, mlClient, alerts, alerts, alerts, alerts, opts...)

	e := echo.New()
	e.HideBanner = true
	e.Debug = settings.WebServer.Debug
	e.Use(middleware.Recover())

	api.New(e, ds, settings, auth, tokens, analyzer, mlClient, metrics)

	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	go retention.NewJanitor(ds, 0).Run(janitorCtx)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "port", settings.WebServer.Port, "version", settings.Version)
		if err := e.Start(":" + settings.WebServer.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		return errors.New(err).
			Component("server").
			Category(errors.CategorySystem).
			Context("operation", "shutdown").
			Build()
	}
	return nil
}

// combinedPublisher merges the optional MQTT and push channels. A nil
// *mqtt.Publisher must not leak into the interface value.
func combinedPublisher(mqttPublisher *mqtt.Publisher, push *notification.PushPublisher) analysis.EventPublisher {
	publishers := []analysis.EventPublisher{}
	if mqttPublisher != nil {
		publishers = append(publishers, mqttPublisher)
	}
	if push != nil {
		publishers = append(publishers, push)
	}
	return analysis.CombinePublishers(publishers...)
}
