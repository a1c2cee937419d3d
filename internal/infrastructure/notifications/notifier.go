package notifications

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/zatekoja/clinicdesk/internal/domain/providers"
	"github.com/zatekoja/clinicdesk/internal/infrastructure/observability"
)

// LogNotifier writes notifications to the structured log
type LogNotifier struct{}

// NewLogNotifier creates a notifier backed by zerolog
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// Notify logs n at a level matching its severity
func (LogNotifier) Notify(ctx context.Context, n providers.Notification) {
	logger := observability.LoggerFromContext(ctx)
	var event *zerolog.Event
	switch n.Level {
	case providers.NotificationError:
		event = logger.Error()
	case providers.NotificationWarning:
		event = logger.Warn()
	default:
		event = logger.Info()
	}
	event.Err(n.Err).
		Str("resource", n.Resource).
		Str("entity_id", n.EntityID).
		Msg(n.Message)
}

// ChannelNotifier hands notifications to a UI loop through a buffered
// channel. When the buffer is full the notification is dropped and counted.
type ChannelNotifier struct {
	ch      chan providers.Notification
	dropped atomic.Int64
}

// NewChannelNotifier creates a notifier with room for buffer pending messages
func NewChannelNotifier(buffer int) *ChannelNotifier {
	if buffer <= 0 {
		buffer = 16
	}
	return &ChannelNotifier{ch: make(chan providers.Notification, buffer)}
}

// Notify never blocks
func (c *ChannelNotifier) Notify(ctx context.Context, n providers.Notification) {
	select {
	case c.ch <- n:
	default:
		c.dropped.Add(1)
		log.Warn().Str("resource", n.Resource).Str("message", n.Message).Msg("notification buffer full, dropping")
	}
}

// Notifications is the stream the UI loop reads from
func (c *ChannelNotifier) Notifications() <-chan providers.Notification {
	return c.ch
}

// Dropped reports how many notifications did not fit in the buffer
func (c *ChannelNotifier) Dropped() int64 {
	return c.dropped.Load()
}

// Fanout delivers each notification to every wrapped notifier
type Fanout []providers.Notifier

func (f Fanout) Notify(ctx context.Context, n providers.Notification) {
	for _, notifier := range f {
		notifier.Notify(ctx, n)
	}
}
