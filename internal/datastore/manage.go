package datastore

import (
	"log/slog"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/soundguard/soundguard-go/internal/errors"
	"github.com/soundguard/soundguard-go/internal/logging"
)

// DefaultSlowQueryThreshold defines the duration after which a query is
// considered slow and logged at warn level.
const DefaultSlowQueryThreshold = 1 * time.Second

var datastoreLogger *slog.Logger

func init() {
	datastoreLogger = logging.ForService("datastore")
	if datastoreLogger == nil {
		datastoreLogger = slog.Default().With("service", "datastore")
	}
}

// createGormLogger configures and returns a new GORM logger instance.
func createGormLogger(debug bool) gormlogger.Interface {
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}
	return gormlogger.Default.LogMode(level)
}

// performAutoMigration runs gorm auto-migration for every entity and logs
// the outcome.
func performAutoMigration(db *gorm.DB, debug bool, dbType, connectionInfo string) error {
	if err := db.AutoMigrate(
		&User{},
		&Event{},
		&Notification{},
		&NotificationSettings{},
		&MicrophoneSettings{},
		&StorageSettings{},
		&AudioFile{},
	); err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("db_type", dbType).
			Context("operation", "auto_migration").
			Build()
	}

	if debug {
		datastoreLogger.Debug("database connection established",
			"db_type", dbType,
			"connection", connectionInfo)
	}

	return nil
}
