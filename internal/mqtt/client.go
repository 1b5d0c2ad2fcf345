// Package mqtt publishes danger events to an MQTT broker so external
// consumers (dashboards, PLCs, site pagers) can react without polling the
// HTTP API.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/soundguard/soundguard-go/internal/analysis"
	"github.com/soundguard/soundguard-go/internal/conf"
	"github.com/soundguard/soundguard-go/internal/errors"
	"github.com/soundguard/soundguard-go/internal/logging"
)

const (
	defaultConnectTimeout = 30 * time.Second
	defaultPublishTimeout = 10 * time.Second
)

// eventPayload is the JSON document published for each danger event.
type eventPayload struct {
	Zone      string `json:"zone"`
	Area      string `json:"area"`
	Type      string `json:"type"`
	Message   string `json:"message"`
	Severity  string `json:"severity"`
	Timestamp string `json:"timestamp"`
}

// Publisher is an MQTT-backed analysis.EventPublisher.
type Publisher struct {
	broker   string
	clientID string
	username string
	password string
	topic    string
	retain   bool

	mu             sync.Mutex
	internalClient pahomqtt.Client
	logger         *slog.Logger
}

// NewPublisher creates an MQTT publisher from the configured broker settings.
// The connection is established by Connect, not here.
func NewPublisher(settings *conf.Settings) *Publisher {
	logger := logging.ForService("mqtt")
	if logger == nil {
		logger = slog.Default().With("service", "mqtt")
	}

	clientID := settings.Main.Name
	if clientID == "" {
		clientID = "soundguard"
	}

	return &Publisher{
		broker:   settings.Realtime.MQTT.Broker,
		clientID: clientID,
		username: settings.Realtime.MQTT.Username,
		password: settings.Realtime.MQTT.Password,
		topic:    settings.Realtime.MQTT.Topic,
		retain:   settings.Realtime.MQTT.Retain,
		logger:   logger,
	}
}

// Connect establishes the broker connection. The hostname is resolved first
// so a misconfigured broker fails with a clear DNS error instead of a
// connect timeout.
func (p *Publisher) Connect(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	u, err := url.Parse(p.broker)
	if err != nil {
		return errors.New(err).
			Component("mqtt").
			Category(errors.CategoryConfiguration).
			Context("broker", p.broker).
			Build()
	}

	host := u.Hostname()
	if net.ParseIP(host) == nil {
		if _, err := net.DefaultResolver.LookupHost(ctx, host); err != nil {
			return errors.New(err).
				Component("mqtt").
				Category(errors.CategoryNetwork).
				Context("operation", "resolve_broker").
				Context("host", host).
				Build()
		}
	}

	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(p.broker)
	opts.SetClientID(p.clientID)
	opts.SetUsername(p.username)
	opts.SetPassword(p.password)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetOnConnectHandler(func(pahomqtt.Client) {
		p.logger.Info("connected to MQTT broker", "broker", p.broker)
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		p.logger.Warn("MQTT connection lost", "broker", p.broker, "error", err)
	})

	p.internalClient = pahomqtt.NewClient(opts)

	token := p.internalClient.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		return errors.Newf("connection timeout to broker %s", p.broker).
			Component("mqtt").
			Category(errors.CategoryNetwork).
			Build()
	}
	if err := token.Error(); err != nil {
		return errors.New(err).
			Component("mqtt").
			Category(errors.CategoryNetwork).
			Context("broker", p.broker).
			Build()
	}
	return nil
}

// Publish sends one danger event to the configured topic.
func (p *Publisher) Publish(ctx context.Context, event analysis.EventRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.internalClient == nil || !p.internalClient.IsConnected() {
		return errors.Newf("not connected to MQTT broker").
			Component("mqtt").
			Category(errors.CategoryMQTTPublish).
			Build()
	}

	payload, err := json.Marshal(eventPayload{
		Zone:      event.Zone,
		Area:      event.Area,
		Type:      event.Type,
		Message:   event.Message,
		Severity:  event.Severity,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to encode event payload: %w", err)
	}

	token := p.internalClient.Publish(p.topic, 0, p.retain, payload)

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !token.WaitTimeout(defaultPublishTimeout) {
		return errors.Newf("publish timeout on topic %s", p.topic).
			Component("mqtt").
			Category(errors.CategoryMQTTPublish).
			Build()
	}
	if err := token.Error(); err != nil {
		return errors.New(err).
			Component("mqtt").
			Category(errors.CategoryMQTTPublish).
			Context("topic", p.topic).
			Build()
	}

	p.logger.Debug("danger event published", "topic", p.topic, "type", event.Type)
	return nil
}

// IsConnected reports whether the broker connection is up.
func (p *Publisher) IsConnected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.internalClient != nil && p.internalClient.IsConnected()
}

// Disconnect closes the broker connection.
func (p *Publisher) Disconnect() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.internalClient != nil && p.internalClient.IsConnected() {
		p.internalClient.Disconnect(250)
		p.logger.Info("disconnected from MQTT broker")
	}
}
