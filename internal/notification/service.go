// Package notification bridges the analysis pipeline to persistent alerting:
// it stores danger events and per-user notifications, answers alerting
// preferences, and optionally forwards danger alerts to external push
// services.
package notification

import (
	"context"
	"log/slog"

	"github.com/soundguard/soundguard-go/internal/analysis"
	"github.com/soundguard/soundguard-go/internal/conf"
	"github.com/soundguard/soundguard-go/internal/datastore"
	"github.com/soundguard/soundguard-go/internal/errors"
	"github.com/soundguard/soundguard-go/internal/logging"
)

// Service persists events and notifications on behalf of the analysis
// pipeline. It implements the pipeline's EventRecorder, UserDirectory,
// PreferenceStore and NotificationSink collaborators.
type Service struct {
	ds     datastore.Interface
	logger *slog.Logger
	debug  bool
}

// NewService creates a datastore-backed alerting service.
func NewService(settings *conf.Settings, ds datastore.Interface) *Service {
	logger := logging.ForService("notification")
	if logger == nil {
		logger = slog.Default().With("service", "notification")
	}
	return &Service{
		ds:     ds,
		logger: logger,
		debug:  settings.Notification.Debug,
	}
}

// Record persists one shared safety event and returns its id.
func (s *Service) Record(_ context.Context, event analysis.EventRecord) (uint, error) {
	record := &datastore.Event{
		Zone:     event.Zone,
		Area:     event.Area,
		Type:     event.Type,
		Message:  event.Message,
		Severity: event.Severity,
	}
	if err := s.ds.SaveEvent(record); err != nil {
		return 0, errors.New(err).
			Component("notification").
			Category(errors.CategoryDatabase).
			Context("operation", "save_event").
			Build()
	}
	if s.debug {
		s.logger.Debug("event recorded", "id", record.ID, "type", record.Type)
	}
	return record.ID, nil
}

// ListUserIDs returns the ids of every registered user.
func (s *Service) ListUserIDs(_ context.Context) ([]string, error) {
	users, err := s.ds.GetAllUsers()
	if err != nil {
		return nil, errors.New(err).
			Component("notification").
			Category(errors.CategoryDatabase).
			Context("operation", "list_users").
			Build()
	}
	ids := make([]string, 0, len(users))
	for _, user := range users {
		ids = append(ids, user.UserID)
	}
	return ids, nil
}

// IsEmergencyEnabled reports whether a user wants emergency alerts. Users
// without stored settings are treated as opted in.
func (s *Service) IsEmergencyEnabled(_ context.Context, userID string) (bool, error) {
	settings, err := s.ds.GetNotificationSettings(userID)
	if err != nil {
		if errors.Is(err, datastore.ErrRecordNotFound) {
			return true, nil
		}
		return false, errors.New(err).
			Component("notification").
			Category(errors.CategoryDatabase).
			Context("operation", "get_notification_settings").
			Context("user_id", userID).
			Build()
	}
	return settings.EmergencyEnabled, nil
}

// Create persists one per-user notification.
func (s *Service) Create(_ context.Context, userID string, notification analysis.AlertNotification) error {
	record := &datastore.Notification{
		UserID:   userID,
		Type:     notification.Type,
		Title:    notification.Title,
		Message:  notification.Message,
		Priority: notification.Priority,
	}
	if err := s.ds.SaveNotification(record); err != nil {
		return errors.New(err).
			Component("notification").
			Category(errors.CategoryDatabase).
			Context("operation", "save_notification").
			Context("user_id", userID).
			Build()
	}
	if s.debug {
		s.logger.Debug("notification created",
			"user_id", userID,
			"type", notification.Type,
			"priority", notification.Priority)
	}
	return nil
}
