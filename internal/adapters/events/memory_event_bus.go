package events

import (
	"context"

	"github.com/zatekoja/clinicdesk/internal/domain/entities"
	"github.com/zatekoja/clinicdesk/internal/domain/providers"
)

// MemoryEventBus fans events out to subscribers inside one process
type MemoryEventBus struct {
	hub *hub
}

// NewMemoryEventBus creates an in-process event bus
func NewMemoryEventBus() providers.EventBus {
	return &MemoryEventBus{hub: newHub()}
}

// Publish delivers event to every interested subscriber of channel
func (b *MemoryEventBus) Publish(ctx context.Context, channel string, event *entities.ResourceEvent) error {
	b.hub.deliver(channel, event)
	return nil
}

// Subscribe returns a channel of events about resources, or about every
// resource when none are given
func (b *MemoryEventBus) Subscribe(ctx context.Context, channel string, resources ...string) (<-chan *entities.ResourceEvent, error) {
	sub, _ := b.hub.add(channel, resources)
	go func() {
		<-ctx.Done()
		b.hub.remove(channel, sub)
	}()
	return sub.events, nil
}

// Unsubscribe closes every subscription on channel
func (b *MemoryEventBus) Unsubscribe(ctx context.Context, channel string) error {
	b.hub.drop(channel)
	return nil
}

// Close closes the event bus and all subscriptions
func (b *MemoryEventBus) Close() error {
	b.hub.close()
	return nil
}
