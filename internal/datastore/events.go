package datastore

import (
	"github.com/soundguard/soundguard-go/internal/errors"
)

// SaveEvent appends a new system-wide event.
func (ds *DataStore) SaveEvent(event *Event) error {
	if err := ds.DB.Create(event).Error; err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "save_event").
			Context("event_type", event.Type).
			Build()
	}
	return nil
}

// GetAllEvents returns every event, newest first. The event timeline is
// shared: every user sees the same list.
func (ds *DataStore) GetAllEvents() ([]Event, error) {
	var events []Event
	if err := ds.DB.Order("created_at DESC").Find(&events).Error; err != nil {
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "get_all_events").
			Build()
	}
	return events, nil
}

// GetEventsWithFilters returns events matching the given filters, newest
// first. Zero-valued filters match everything.
func (ds *DataStore) GetEventsWithFilters(filters EventFilters) ([]Event, error) {
	query := ds.DB.Model(&Event{})

	if filters.Zone != "" {
		query = query.Where("zone = ?", filters.Zone)
	}
	if filters.Type != "" {
		query = query.Where("type = ?", filters.Type)
	}
	if filters.Severity != "" {
		query = query.Where("severity = ?", filters.Severity)
	}
	if !filters.Since.IsZero() {
		query = query.Where("created_at >= ?", filters.Since)
	}

	var events []Event
	if err := query.Order("created_at DESC").Find(&events).Error; err != nil {
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "get_events_with_filters").
			Build()
	}
	return events, nil
}
