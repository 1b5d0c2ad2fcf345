// fanout.go implements the broadcast side of a dangerous verdict: one shared
// event plus one notification per eligible user. The whole fan-out is
// best-effort; no retry, no rollback, and a failure for one user never
// aborts the others.
package analysis

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/soundguard/soundguard-go/internal/errors"
)

// fanOutDangerAlert records the shared event and broadcasts per-user
// notifications. All errors are logged and swallowed here; the analysis
// response to the original caller is already decided.
func (a *Analyzer) fanOutDangerAlert(ctx context.Context, verdict *Verdict, zone, area string) {
	eventType, alertLabel := AlertTypeForClass(verdict.PredictedClass)
	severity := severityForProbability(verdict.DangerProbability)
	eventMessage := fmt.Sprintf("%s 감지 (확률: %.1f%%)", alertLabel, verdict.DangerProbability*100)

	event := EventRecord{
		Zone:     zone,
		Area:     area,
		Type:     eventType,
		Message:  eventMessage,
		Severity: severity,
	}

	if _, err := a.recorder.Record(ctx, event); err != nil {
		a.logger.Error("failed to record danger event",
			"zone", zone,
			"type", eventType,
			"error", err)
	} else if a.metrics != nil {
		a.metrics.EventsRecorded.Inc()
	}

	if a.publisher != nil {
		if err := a.publisher.Publish(ctx, event); err != nil {
			a.logger.Error("failed to publish danger event", "error", err)
		}
	}

	notification := AlertNotification{
		Type:     eventType,
		Title:    "⚠️ 위험 소리 감지",
		Message:  fmt.Sprintf("%s %s에서 %s", zone, area, eventMessage),
		Priority: severity,
	}

	created, failed := a.broadcast(ctx, notification)
	a.logger.Info("danger alert fan-out completed",
		"zone", zone,
		"type", eventType,
		"severity", severity,
		"notifications_created", created,
		"notifications_failed", failed)
}

// severityForProbability maps the aggregate danger probability to an event
// severity. The comparison operators are deliberate: exactly 0.8 is medium,
// exactly 0.5 is low.
func severityForProbability(probability float64) string {
	switch {
	case probability > 0.8:
		return "high"
	case probability > 0.5:
		return "medium"
	default:
		return "low"
	}
}

// broadcast creates one notification per eligible user using a bounded
// worker pool. Each task owns its own result slot so no shared counter
// needs a lock, and a failing task never cancels its siblings.
func (a *Analyzer) broadcast(ctx context.Context, notification AlertNotification) (created, failed int) {
	userIDs, err := a.directory.ListUserIDs(ctx)
	if err != nil {
		a.logger.Error("failed to enumerate users for fan-out", "error", err)
		return 0, 0
	}

	results := make([]error, len(userIDs))
	skipped := make([]bool, len(userIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.fanoutWorkers)

	for i, userID := range userIDs {
		g.Go(func() error {
			enabled, err := a.prefs.IsEmergencyEnabled(gctx, userID)
			if err != nil {
				// Preference lookup failure counts against this user only.
				results[i] = errors.New(err).
					Component("analysis").
					Category(errors.CategoryFanOut).
					Context("user_id", userID).
					Context("operation", "preference_lookup").
					Build()
				return nil
			}
			if !enabled {
				skipped[i] = true
				return nil
			}
			results[i] = a.sink.Create(gctx, userID, notification)
			// Always nil: one user's failure must not cancel the group.
			return nil
		})
	}
	// Tasks never return errors; Wait only synchronizes.
	_ = g.Wait()

	for i, userID := range userIDs {
		switch {
		case skipped[i]:
		case results[i] != nil:
			failed++
			a.logger.Error("failed to create danger notification",
				"user_id", userID,
				"error", results[i])
		default:
			created++
		}
	}

	if a.metrics != nil {
		a.metrics.NotificationsCreated.Add(float64(created))
		a.metrics.NotificationsFailed.Add(float64(failed))
	}
	return created, failed
}
