package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/clinicdesk/internal/domain/providers"
	redisclient "github.com/zatekoja/clinicdesk/internal/infrastructure/clients/redis"
	"github.com/zatekoja/clinicdesk/pkg/config"
	"github.com/zatekoja/clinicdesk/pkg/retry"
)

func newTestRedis(t *testing.T) *redisclient.Client {
	t.Helper()
	host := os.Getenv("TEST_REDIS_HOST")
	if host == "" {
		t.Skip("TEST_REDIS_HOST not set")
	}
	cfg := &config.RedisConfig{Host: host, Port: 6379}
	retryCfg := retry.DefaultConfig()
	retryCfg.MaxAttempts = 1

	client, err := redisclient.NewClient(context.Background(), cfg, retryCfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisAdapter_RoundTrip(t *testing.T) {
	ctx := context.Background()
	adapter := NewRedisAdapter(newTestRedis(t))
	prefix := "test:" + uuid.NewString()

	_, err := adapter.Get(ctx, prefix+":missing")
	assert.ErrorIs(t, err, providers.ErrCacheMiss)

	require.NoError(t, adapter.Set(ctx, prefix+":a", []byte("1"), 30))
	require.NoError(t, adapter.Set(ctx, prefix+":b", []byte("2"), 30))
	require.NoError(t, adapter.Set(ctx, "other:"+prefix, []byte("3"), 30))

	got, err := adapter.Get(ctx, prefix+":a")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), got)

	require.NoError(t, adapter.DeletePattern(ctx, prefix+":*"))
	ok, err := adapter.Exists(ctx, prefix+":b")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = adapter.Exists(ctx, "other:"+prefix)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, adapter.Delete(ctx, "other:"+prefix))
}

func TestRedisAdapter_Expiration(t *testing.T) {
	ctx := context.Background()
	adapter := NewRedisAdapter(newTestRedis(t))
	key := "test:" + uuid.NewString()

	require.NoError(t, adapter.Set(ctx, key, []byte("x"), 1))
	assert.Eventually(t, func() bool {
		ok, err := adapter.Exists(ctx, key)
		return err == nil && !ok
	}, 3*time.Second, 100*time.Millisecond)
}
