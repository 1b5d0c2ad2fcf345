// interfaces.go: this code defines the interface for the database operations
package datastore

import (
	"time"

	"gorm.io/gorm"

	"github.com/soundguard/soundguard-go/internal/conf"
	"github.com/soundguard/soundguard-go/internal/errors"
)

// ErrRecordNotFound is returned when a lookup matches no row.
var ErrRecordNotFound = errors.NewStd("record not found")

// ErrNotOwner is returned when a user tries to mutate a row they do not own.
var ErrNotOwner = errors.NewStd("record does not belong to user")

// EventFilters narrows event listing. Zero values match everything.
type EventFilters struct {
	Zone     string
	Type     string
	Severity string
	Since    time.Time // zero means no lower bound
}

// Interface abstracts the underlying database implementation and defines the
// operations the rest of the application may perform.
type Interface interface {
	Open() error
	Close() error

	// Users
	CreateUser(user *User) error
	GetUser(userID string) (User, error)
	GetAllUsers() ([]User, error)
	UpdateUser(user *User) error
	DeleteUser(userID string) error
	UserIDExists(userID string) (bool, error)
	EmailExists(email string) (bool, error)

	// Events
	SaveEvent(event *Event) error
	GetAllEvents() ([]Event, error)
	GetEventsWithFilters(filters EventFilters) ([]Event, error)

	// Notifications
	SaveNotification(notification *Notification) error
	GetUserNotifications(userID string) ([]Notification, error)
	CountUnreadNotifications(userID string) (int64, error)
	MarkNotificationRead(id uint, userID string) error
	MarkAllNotificationsRead(userID string) error
	DeleteNotification(id uint, userID string) error

	// Settings
	GetNotificationSettings(userID string) (NotificationSettings, error)
	SaveNotificationSettings(settings *NotificationSettings) error
	GetMicrophoneSettings(userID string) (MicrophoneSettings, error)
	SaveMicrophoneSettings(settings *MicrophoneSettings) error
	GetStorageSettings(userID string) (StorageSettings, error)
	SaveStorageSettings(settings *StorageSettings) error

	// Audio files
	SaveAudioFile(file *AudioFile) error
	GetAudioFile(id string) (AudioFile, error)
	GetUserAudioFiles(userID string) ([]AudioFile, error)
	DeleteAudioFile(id string, userID string) error
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB *gorm.DB // GORM database instance
}

// New creates a new datastore based on the provided configuration.
func New(settings *conf.Settings) Interface {
	switch {
	case settings.Output.SQLite.Enabled:
		return &SQLiteStore{
			Settings: settings,
		}
	case settings.Output.MySQL.Enabled:
		return &MySQLStore{
			Settings: settings,
		}
	default:
		return nil
	}
}

// wrapNotFound converts gorm's sentinel into the datastore sentinel so
// callers never depend on gorm directly.
func wrapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrRecordNotFound
	}
	return err
}
