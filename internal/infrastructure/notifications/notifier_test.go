package notifications

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/clinicdesk/internal/domain/providers"
)

func TestChannelNotifier_NeverBlocks(t *testing.T) {
	notifier := NewChannelNotifier(2)
	n := providers.Notification{Level: providers.NotificationError, Resource: "appointments", Message: "could not save"}

	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			notifier.Notify(context.Background(), n)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked")
	}

	assert.Equal(t, int64(3), notifier.Dropped())
	got := <-notifier.Notifications()
	assert.Equal(t, n, got)
}

func TestLogNotifier_WritesLevelAndFields(t *testing.T) {
	var buf bytes.Buffer
	previous := log.Logger
	log.Logger = zerolog.New(&buf)
	defer func() { log.Logger = previous }()

	NewLogNotifier().Notify(context.Background(), providers.Notification{
		Level:    providers.NotificationError,
		Resource: "appointments",
		EntityID: "1",
		Message:  "Your change could not be saved and was undone",
		Err:      errors.New("HTTP 409: slot taken"),
	})

	out := buf.String()
	require.NotEmpty(t, out)
	assert.Contains(t, out, `"level":"error"`)
	assert.Contains(t, out, `"entity_id":"1"`)
	assert.Contains(t, out, "slot taken")
}

func TestFanout(t *testing.T) {
	a, b := NewChannelNotifier(1), NewChannelNotifier(1)
	Fanout{a, b}.Notify(context.Background(), providers.Notification{Message: "hi"})

	assert.Equal(t, "hi", (<-a.Notifications()).Message)
	assert.Equal(t, "hi", (<-b.Notifications()).Message)
}
