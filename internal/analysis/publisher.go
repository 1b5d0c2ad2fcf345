package analysis

import "context"

// multiPublisher fans one event out to several publishers in order.
type multiPublisher []EventPublisher

// CombinePublishers merges publishers into a single EventPublisher. Nil
// entries are dropped; the result is nil when nothing remains, so callers
// can pass it straight to WithEventPublisher.
func CombinePublishers(publishers ...EventPublisher) EventPublisher {
	combined := make(multiPublisher, 0, len(publishers))
	for _, publisher := range publishers {
		if publisher != nil {
			combined = append(combined, publisher)
		}
	}
	switch len(combined) {
	case 0:
		return nil
	case 1:
		return combined[0]
	default:
		return combined
	}
}

// Publish delivers the event to every publisher. All publishers are tried;
// the first error encountered is returned.
func (m multiPublisher) Publish(ctx context.Context, event EventRecord) error {
	var firstErr error
	for _, publisher := range m {
		if err := publisher.Publish(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
