package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/soundguard/soundguard-go/internal/datastore"
)

// EventResponse is the public view of a safety event.
type EventResponse struct {
	ID            uint      `json:"id"`
	Zone          string    `json:"zone"`
	Area          string    `json:"area"`
	Type          string    `json:"type"`
	TypeLabel     string    `json:"typeLabel"`
	Message       string    `json:"message"`
	Severity      string    `json:"severity"`
	AudioFilePath string    `json:"audioFilePath,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// EventStats summarizes event counts over common time windows.
type EventStats struct {
	Total     int64 `json:"total"`
	Today     int64 `json:"today"`
	ThisWeek  int64 `json:"thisWeek"`
	ThisMonth int64 `json:"thisMonth"`
}

func (c *Controller) initEventRoutes(group *echo.Group) {
	events := group.Group("/events")
	events.GET("", c.GetEvents)
	events.GET("/stats", c.GetEventStats)
}

// GetEvents lists safety events, newest first. Events are shared across all
// users. Optional query filters: zone, type, severity, and dateRange
// (today|week|month|all).
func (c *Controller) GetEvents(ctx echo.Context) error {
	zone := ctx.QueryParam("zone")
	eventType := ctx.QueryParam("type")
	severity := ctx.QueryParam("severity")
	dateRange := ctx.QueryParam("dateRange")

	var (
		events []datastore.Event
		err    error
	)
	if zone == "" && eventType == "" && severity == "" && dateRange == "" {
		events, err = c.DS.GetAllEvents()
	} else {
		events, err = c.DS.GetEventsWithFilters(datastore.EventFilters{
			Zone:     filterValue(zone),
			Type:     filterValue(eventType),
			Severity: filterValue(severity),
			Since:    dateRangeStart(dateRange, time.Now()),
		})
	}
	if err != nil {
		return c.HandleError(ctx, err, "이벤트 조회 실패", http.StatusInternalServerError)
	}

	responses := make([]EventResponse, 0, len(events))
	for i := range events {
		responses = append(responses, eventResponse(&events[i]))
	}
	return ctx.JSON(http.StatusOK, responses)
}

// GetEventStats returns event counts for the whole log and for the
// today/week/month windows.
func (c *Controller) GetEventStats(ctx echo.Context) error {
	events, err := c.DS.GetAllEvents()
	if err != nil {
		return c.HandleError(ctx, err, "통계 조회 실패", http.StatusInternalServerError)
	}

	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	stats := EventStats{Total: int64(len(events))}
	for i := range events {
		created := events[i].CreatedAt
		if !created.Before(startOfDay) {
			stats.Today++
		}
		if created.After(now.AddDate(0, 0, -7)) {
			stats.ThisWeek++
		}
		if created.After(now.AddDate(0, 0, -30)) {
			stats.ThisMonth++
		}
	}
	return ctx.JSON(http.StatusOK, stats)
}

// filterValue treats "all" the same as an absent filter.
func filterValue(value string) string {
	if value == "all" {
		return ""
	}
	return value
}

// dateRangeStart maps a date range keyword to its lower bound. Unknown
// keywords and "all" mean no bound.
func dateRangeStart(dateRange string, now time.Time) time.Time {
	switch dateRange {
	case "today":
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	case "week":
		return now.AddDate(0, 0, -7)
	case "month":
		return now.AddDate(0, 0, -30)
	default:
		return time.Time{}
	}
}

func eventResponse(event *datastore.Event) EventResponse {
	return EventResponse{
		ID:            event.ID,
		Zone:          event.Zone,
		Area:          event.Area,
		Type:          event.Type,
		TypeLabel:     eventTypeLabel(event.Type),
		Message:       event.Message,
		Severity:      event.Severity,
		AudioFilePath: event.AudioFilePath,
		Timestamp:     event.CreatedAt,
	}
}

func eventTypeLabel(eventType string) string {
	switch eventType {
	case "scream":
		return "비명 감지"
	case "help":
		return "도움 요청"
	case "emergency":
		return "비상상황"
	case "normal":
		return "안전"
	default:
		return eventType
	}
}
