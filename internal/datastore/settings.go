package datastore

import (
	"github.com/soundguard/soundguard-go/internal/errors"
)

// GetNotificationSettings returns a user's notification settings. When no row
// exists the zero value is returned along with ErrRecordNotFound; callers
// decide whether to fall back to defaults or create a row.
func (ds *DataStore) GetNotificationSettings(userID string) (NotificationSettings, error) {
	var settings NotificationSettings
	if err := ds.DB.Where("user_id = ?", userID).First(&settings).Error; err != nil {
		return NotificationSettings{}, wrapNotFound(err)
	}
	return settings, nil
}

// SaveNotificationSettings creates or updates a user's notification settings.
func (ds *DataStore) SaveNotificationSettings(settings *NotificationSettings) error {
	if err := ds.DB.Save(settings).Error; err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "save_notification_settings").
			Build()
	}
	return nil
}

// GetMicrophoneSettings returns a user's microphone settings.
func (ds *DataStore) GetMicrophoneSettings(userID string) (MicrophoneSettings, error) {
	var settings MicrophoneSettings
	if err := ds.DB.Where("user_id = ?", userID).First(&settings).Error; err != nil {
		return MicrophoneSettings{}, wrapNotFound(err)
	}
	return settings, nil
}

// SaveMicrophoneSettings creates or updates a user's microphone settings.
func (ds *DataStore) SaveMicrophoneSettings(settings *MicrophoneSettings) error {
	if err := ds.DB.Save(settings).Error; err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "save_microphone_settings").
			Build()
	}
	return nil
}

// GetStorageSettings returns a user's storage settings.
func (ds *DataStore) GetStorageSettings(userID string) (StorageSettings, error) {
	var settings StorageSettings
	if err := ds.DB.Where("user_id = ?", userID).First(&settings).Error; err != nil {
		return StorageSettings{}, wrapNotFound(err)
	}
	return settings, nil
}

// SaveStorageSettings creates or updates a user's storage settings.
func (ds *DataStore) SaveStorageSettings(settings *StorageSettings) error {
	if err := ds.DB.Save(settings).Error; err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "save_storage_settings").
			Build()
	}
	return nil
}
