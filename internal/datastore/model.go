// model.go this code defines the data model for the application
package datastore

import "time"

// User represents an account that can sign in and receive notifications.
type User struct {
	UserID    string `gorm:"primaryKey;size:50"`
	Password  string `gorm:"size:255;not null"` // bcrypt hash
	Name      string `gorm:"size:100;not null"`
	Email     string `gorm:"size:100;not null;index:idx_users_email,unique"`
	Role      string `gorm:"size:20;not null"` // user, admin
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Event represents a system-wide safety event. Events are shared across all
// users and append-only; they are created when the danger policy fires.
type Event struct {
	ID            uint   `gorm:"primaryKey"`
	Zone          string `gorm:"not null;index:idx_events_zone"`
	Area          string
	Type          string    `gorm:"not null;index:idx_events_type"` // scream, help, emergency
	Message       string    `gorm:"size:500;not null"`
	Severity      string    `gorm:"not null;index:idx_events_severity"` // high, medium, low
	AudioFilePath string
	CreatedAt     time.Time `gorm:"index:idx_events_created_at"`
}

// Notification represents a per-user alert. One notification is created for
// every eligible user each time a dangerous verdict fires.
type Notification struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    string `gorm:"size:50;not null;index:idx_notifications_user"`
	Type      string `gorm:"not null"` // scream, help, emergency, system
	Title     string `gorm:"size:200;not null"`
	Message   string `gorm:"size:500;not null"`
	Priority  string `gorm:"not null"` // high, medium, low
	Read      bool   `gorm:"column:is_read;not null;default:false"`
	CreatedAt time.Time
}

// NotificationSettings holds per-user alerting preferences. Emergency alerts
// default to enabled when no row exists.
type NotificationSettings struct {
	ID                    uint   `gorm:"primaryKey"`
	UserID                string `gorm:"size:50;not null;uniqueIndex"`
	EmergencyEnabled      bool   `gorm:"not null;default:true"`
	EmergencySoundEnabled bool   `gorm:"not null;default:true"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// MicrophoneSettings holds per-user audio device preferences.
type MicrophoneSettings struct {
	ID           uint   `gorm:"primaryKey"`
	UserID       string `gorm:"size:50;not null;uniqueIndex"`
	InputDevice  string
	OutputDevice string
	InputVolume  int // 0-100
	OutputVolume int // 0-100
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// StorageSettings holds per-user clip retention preferences. Auto save
// defaults to enabled; uploads are rejected while it is off.
type StorageSettings struct {
	ID              uint   `gorm:"primaryKey"`
	UserID          string `gorm:"size:50;not null;uniqueIndex"`
	AutoSaveEnabled bool   `gorm:"not null;default:true"`
	RetentionDays   int    `gorm:"not null;default:30"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// AudioFile represents metadata for an uploaded audio clip.
type AudioFile struct {
	ID          string `gorm:"primaryKey;size:36"` // uuid
	UserID      string `gorm:"size:50;not null;index:idx_audio_files_user"`
	FileName    string `gorm:"not null"`
	FilePath    string `gorm:"not null"`
	FileSize    int64
	Duration    float64 // seconds, zero when unknown
	SampleRate  int
	ContentType string
	CreatedAt   time.Time
}
