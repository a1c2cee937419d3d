package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CLINIC_API_URL", "")
	t.Setenv("CLINIC_API_TIMEOUT", "")
	t.Setenv("REDIS_ENABLED", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3333", cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "localhost:6379", cfg.Redis.RedisAddr())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("CLINIC_API_URL", "https://api.clinic.test/v1")
	t.Setenv("CLINIC_API_TIMEOUT", "3")
	t.Setenv("CLINIC_API_RPS", "2.5")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("CACHE_TTL_SECONDS", "15")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.clinic.test/v1", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.InDelta(t, 2.5, cfg.API.RequestsPerSecond, 0.001)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 6380, cfg.Redis.Port)
	assert.Equal(t, 15, cfg.Cache.TTLSeconds)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		api     APIConfig
		wantErr bool
	}{
		{name: "valid", api: APIConfig{BaseURL: "http://localhost:3333", Timeout: time.Second}},
		{name: "relative url", api: APIConfig{BaseURL: "/api", Timeout: time.Second}, wantErr: true},
		{name: "empty url", api: APIConfig{BaseURL: " ", Timeout: time.Second}, wantErr: true},
		{name: "zero timeout", api: APIConfig{BaseURL: "http://localhost", Timeout: 0}, wantErr: true},
		{name: "negative rps", api: APIConfig{BaseURL: "http://localhost", Timeout: time.Second, RequestsPerSecond: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{API: tt.api}
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGetEnvAsDuration(t *testing.T) {
	t.Setenv("TEST_DURATION", "250ms")
	assert.Equal(t, 250*time.Millisecond, getEnvAsDuration("TEST_DURATION", time.Second))

	t.Setenv("TEST_DURATION", "garbage")
	assert.Equal(t, time.Second, getEnvAsDuration("TEST_DURATION", time.Second))
}
