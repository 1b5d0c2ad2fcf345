// Package retention removes stored audio clips that have outlived their
// owner's retention period.
package retention

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/soundguard/soundguard-go/internal/datastore"
	"github.com/soundguard/soundguard-go/internal/logging"
)

const (
	defaultInterval      = time.Hour
	defaultRetentionDays = 30
	maxDeletionsPerRun   = 1000
)

// Janitor periodically deletes expired clips, both the file on disk and the
// datastore record.
type Janitor struct {
	ds       datastore.Interface
	interval time.Duration
	logger   *slog.Logger
}

// NewJanitor creates a retention janitor with the given sweep interval. An
// interval of zero uses the default of one hour.
func NewJanitor(ds datastore.Interface, interval time.Duration) *Janitor {
	logger := logging.ForService("retention")
	if logger == nil {
		logger = slog.Default().With("service", "retention")
	}

	if interval <= 0 {
		interval = defaultInterval
	}
	return &Janitor{ds: ds, interval: interval, logger: logger}
}

// Run sweeps on the configured interval until the context is canceled.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted := j.Sweep(ctx)
			if deleted > 0 {
				j.logger.Info("retention sweep complete", "deleted", deleted)
			}
		}
	}
}

// Sweep deletes expired clips for every user and returns how many were
// removed. A run is capped so a huge backlog cannot stall the ticker.
func (j *Janitor) Sweep(ctx context.Context) int {
	users, err := j.ds.GetAllUsers()
	if err != nil {
		j.logger.Error("failed to list users for retention sweep", "error", err)
		return 0
	}

	deleted := 0
	now := time.Now()

	for i := range users {
		if ctx.Err() != nil {
			return deleted
		}

		userID := users[i].UserID
		cutoff := now.AddDate(0, 0, -j.retentionDays(userID))

		files, err := j.ds.GetUserAudioFiles(userID)
		if err != nil {
			j.logger.Error("failed to list clips for retention sweep", "user", userID, "error", err)
			continue
		}

		for k := range files {
			if deleted >= maxDeletionsPerRun {
				j.logger.Warn("retention sweep hit deletion cap", "cap", maxDeletionsPerRun)
				return deleted
			}
			if !files[k].CreatedAt.Before(cutoff) {
				continue
			}
			if j.deleteClip(&files[k]) {
				deleted++
			}
		}
	}
	return deleted
}

// retentionDays returns the user's configured retention period; missing or
// unreadable settings fall back to the default.
func (j *Janitor) retentionDays(userID string) int {
	settings, err := j.ds.GetStorageSettings(userID)
	if err != nil || settings.RetentionDays <= 0 {
		return defaultRetentionDays
	}
	return settings.RetentionDays
}

// deleteClip removes the file from disk and then the record. A file already
// missing from disk still gets its record removed.
func (j *Janitor) deleteClip(file *datastore.AudioFile) bool {
	if err := os.Remove(file.FilePath); err != nil && !os.IsNotExist(err) {
		j.logger.Error("failed to remove expired clip from disk", "path", file.FilePath, "error", err)
		return false
	}

	if err := j.ds.DeleteAudioFile(file.ID, file.UserID); err != nil {
		j.logger.Error("failed to remove expired clip record", "id", file.ID, "error", err)
		return false
	}

	j.logger.Debug("removed expired clip", "id", file.ID, "user", file.UserID, "path", file.FilePath)
	return true
}
