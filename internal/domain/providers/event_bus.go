package providers

import (
	"context"

	"github.com/zatekoja/clinicdesk/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.ResourceEvent) error

	// Subscribe subscribes to events on a channel. When resources are given,
	// only events about those resources are delivered. The returned channel
	// is closed when ctx is done or the bus closes.
	Subscribe(ctx context.Context, channel string, resources ...string) (<-chan *entities.ResourceEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

// EventChannelUpdates carries every resource change
const EventChannelUpdates = "clinic:updates"
