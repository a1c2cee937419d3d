package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/zatekoja/clinicdesk/internal/domain/entities"
	"github.com/zatekoja/clinicdesk/internal/domain/providers"
	redisclient "github.com/zatekoja/clinicdesk/internal/infrastructure/clients/redis"
)

// ErrBusClosed is returned by Subscribe after Close
var ErrBusClosed = errors.New("event bus closed")

// RedisEventBus carries resource events between clinicctl processes over
// Redis Pub/Sub. All channels share one connection; a Redis channel is
// subscribed while at least one local subscription needs it.
type RedisEventBus struct {
	client *redisclient.Client
	hub    *hub

	// mu orders SUBSCRIBE and UNSUBSCRIBE with the hub changes behind them
	mu     sync.Mutex
	pubsub *redis.PubSub
	closed bool
	done   chan struct{}
}

// NewRedisEventBus creates a Redis-backed event bus
func NewRedisEventBus(client *redisclient.Client) providers.EventBus {
	return &RedisEventBus{
		client: client,
		hub:    newHub(),
		done:   make(chan struct{}),
	}
}

// Publish sends event to every process subscribed to channel, this one
// included
func (b *RedisEventBus) Publish(ctx context.Context, channel string, event *entities.ResourceEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	receivers, err := b.client.Client().Publish(ctx, channel, payload).Result()
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	log.Debug().
		Str("channel", channel).
		Str("event_id", event.ID).
		Str("resource", event.Resource).
		Int64("receivers", receivers).
		Msg("published resource event")
	return nil
}

// Subscribe returns a channel of events about resources, or about every
// resource when none are given. The first subscription to a channel waits
// for Redis to confirm it, so nothing published after Subscribe returns is
// missed.
func (b *RedisEventBus) Subscribe(ctx context.Context, channel string, resources ...string) (<-chan *entities.ResourceEvent, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrBusClosed
	}

	sub, first := b.hub.add(channel, resources)
	if first {
		if err := b.listen(ctx, channel); err != nil {
			b.hub.remove(channel, sub)
			return nil, err
		}
	}

	go func() {
		select {
		case <-ctx.Done():
			b.leave(channel, sub)
		case <-b.done:
		}
	}()

	log.Debug().Str("channel", channel).Strs("resources", resources).Msg("subscribed to channel")
	return sub.events, nil
}

// listen subscribes the shared connection to channel. Called with mu held.
func (b *RedisEventBus) listen(ctx context.Context, channel string) error {
	if b.pubsub == nil {
		ps := b.client.Client().Subscribe(ctx, channel)
		if _, err := ps.Receive(ctx); err != nil {
			_ = ps.Close()
			return fmt.Errorf("failed to subscribe to %s: %w", channel, err)
		}
		b.pubsub = ps
		go b.receive(ps.Channel())
		return nil
	}
	if err := b.pubsub.Subscribe(ctx, channel); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}
	return nil
}

func (b *RedisEventBus) leave(channel string, sub *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.hub.remove(channel, sub) || b.pubsub == nil {
		return
	}
	if err := b.pubsub.Unsubscribe(context.Background(), channel); err != nil {
		log.Warn().Err(err).Str("channel", channel).Msg("failed to unsubscribe")
		return
	}
	log.Debug().Str("channel", channel).Msg("unsubscribed from channel")
}

// receive decodes messages from the shared connection until it is closed
func (b *RedisEventBus) receive(messages <-chan *redis.Message) {
	defer b.hub.close()
	for msg := range messages {
		var event entities.ResourceEvent
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			log.Warn().Err(err).Str("channel", msg.Channel).Msg("failed to unmarshal event")
			continue
		}
		b.hub.deliver(msg.Channel, &event)
	}
}

// Unsubscribe closes every local subscription on channel
func (b *RedisEventBus) Unsubscribe(ctx context.Context, channel string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hub.drop(channel)
	if b.pubsub == nil {
		return nil
	}
	if err := b.pubsub.Unsubscribe(ctx, channel); err != nil {
		return fmt.Errorf("failed to unsubscribe from %s: %w", channel, err)
	}
	return nil
}

// Close closes the shared connection and every subscription
func (b *RedisEventBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	close(b.done)
	b.hub.close()

	if b.pubsub != nil {
		if err := b.pubsub.Close(); err != nil {
			return fmt.Errorf("failed to close subscription: %w", err)
		}
	}
	log.Info().Msg("event bus closed")
	return nil
}
