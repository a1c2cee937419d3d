package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	API    APIConfig
	Redis  RedisConfig
	Cache  CacheConfig
	Quotes QuotesConfig
	OTEL   OTELConfig
	Log    LogConfig
}

// APIConfig holds the clinic backend connection settings
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
	// RequestsPerSecond caps outgoing requests; 0 disables the limiter.
	RequestsPerSecond float64
	SessionCookie     string
	SessionToken      string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// CacheConfig holds shared read-through cache settings
type CacheConfig struct {
	TTLSeconds int
	Size       int
}

// QuotesConfig holds the inspirational quote API settings
type QuotesConfig struct {
	URL string
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// LogConfig holds logger configuration
type LogConfig struct {
	Env   string
	Level string
}

// Load loads configuration from environment variables. A .env file in the
// working directory is read first when present; real environment wins.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		API: APIConfig{
			BaseURL:           getEnv("CLINIC_API_URL", "http://localhost:3333"),
			Timeout:           getEnvAsDuration("CLINIC_API_TIMEOUT", 10*time.Second),
			RequestsPerSecond: getEnvAsFloat("CLINIC_API_RPS", 0),
			SessionCookie:     getEnv("CLINIC_SESSION_COOKIE", "session"),
			SessionToken:      getEnv("CLINIC_SESSION_TOKEN", ""),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Cache: CacheConfig{
			TTLSeconds: getEnvAsInt("CACHE_TTL_SECONDS", 60),
			Size:       getEnvAsInt("CACHE_SIZE", 512),
		},
		Quotes: QuotesConfig{
			URL: getEnv("QUOTES_API_URL", "https://zenquotes.io/api/random"),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "clinicdesk"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
		Log: LogConfig{
			Env:   getEnv("APP_ENV", "development"),
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings the client cannot start without
func (c *Config) Validate() error {
	base := strings.TrimSpace(c.API.BaseURL)
	if base == "" {
		return fmt.Errorf("CLINIC_API_URL must be set")
	}
	parsed, err := url.Parse(base)
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		return fmt.Errorf("CLINIC_API_URL must be an absolute URL, got %q", base)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("CLINIC_API_TIMEOUT must be positive")
	}
	if c.API.RequestsPerSecond < 0 {
		return fmt.Errorf("CLINIC_API_RPS must not be negative")
	}
	return nil
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("5s") or plain seconds ("5").
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
