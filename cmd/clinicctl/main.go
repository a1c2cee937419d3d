package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/zatekoja/clinicdesk/internal/adapters/cache"
	"github.com/zatekoja/clinicdesk/internal/adapters/events"
	"github.com/zatekoja/clinicdesk/internal/adapters/resources"
	"github.com/zatekoja/clinicdesk/internal/domain/providers"
	"github.com/zatekoja/clinicdesk/internal/infrastructure/clients/clinicapi"
	"github.com/zatekoja/clinicdesk/internal/infrastructure/clients/quotes"
	"github.com/zatekoja/clinicdesk/internal/infrastructure/clients/redis"
	"github.com/zatekoja/clinicdesk/internal/infrastructure/notifications"
	"github.com/zatekoja/clinicdesk/internal/infrastructure/observability"
	"github.com/zatekoja/clinicdesk/pkg/config"
	apperrors "github.com/zatekoja/clinicdesk/pkg/errors"
	"github.com/zatekoja/clinicdesk/pkg/retry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := &cobra.Command{
		Use:           "clinicctl",
		Short:         "Clinic desk client for the clinic management backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(appointmentsCmd())
	rootCmd.AddCommand(tasksCmd())
	rootCmd.AddCommand(patientsCmd())
	rootCmd.AddCommand(ledgerCmd())
	rootCmd.AddCommand(quoteCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(cacheCmd())

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if apperrors.IsUnauthorized(err) {
			fmt.Fprintln(os.Stderr, "the backend rejected the session; set CLINIC_SESSION_TOKEN and try again")
		}
		os.Exit(1)
	}
}

// app holds everything a command needs. Commands build one per run.
type app struct {
	cfg       *config.Config
	metrics   *observability.Metrics
	cache     providers.CacheProvider
	eventBus  providers.EventBus
	shared    bool
	resources *resources.Set
	quotes    quotes.Client
	notifier  providers.Notifier
	inbox     *notifications.ChannelNotifier
	closers   []func()
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Log.Env, cfg.Log.Level)

	a := &app{cfg: cfg}

	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			a.closers = append(a.closers, func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			})
		}
	}

	a.metrics, err = observability.InitMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	a.cache, a.eventBus = a.sharedCache(ctx)

	client, err := clinicapi.NewClient(&cfg.API,
		clinicapi.WithMetrics(a.metrics),
		clinicapi.WithRateLimit(cfg.API.RequestsPerSecond),
	)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.resources = resources.NewCachedSet(resources.NewSet(client), a.cache,
		resources.WithEventBus(a.eventBus),
		resources.WithCacheMetrics(a.metrics),
		resources.WithTTL(cfg.Cache.TTLSeconds),
	)
	a.quotes = quotes.NewClient(cfg.Quotes.URL, 5*time.Second)

	a.inbox = notifications.NewChannelNotifier(32)
	a.notifier = notifications.Fanout{notifications.NewLogNotifier(), a.inbox}
	return a, nil
}

// sharedCache uses Redis when it is enabled and reachable so several
// clinicctl processes share one cache; otherwise the cache is in memory.
func (a *app) sharedCache(ctx context.Context) (providers.CacheProvider, providers.EventBus) {
	if a.cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(ctx, &a.cfg.Redis, retry.DefaultConfig())
		if err == nil {
			bus := events.NewRedisEventBus(redisClient)
			a.closers = append(a.closers, func() {
				_ = bus.Close()
				_ = redisClient.Close()
			})
			log.Debug().Str("addr", a.cfg.Redis.RedisAddr()).Msg("using redis cache")
			a.shared = true
			return cache.NewRedisAdapter(redisClient), bus
		}
		log.Warn().Err(err).Msg("redis unavailable, falling back to in-memory cache")
	}

	ttl := time.Duration(a.cfg.Cache.TTLSeconds) * time.Second
	bus := events.NewMemoryEventBus()
	a.closers = append(a.closers, func() { _ = bus.Close() })
	return cache.NewMemoryAdapter(a.cfg.Cache.Size, ttl), bus
}

// flushNotifications writes queued notifications to stderr
func (a *app) flushNotifications() {
	for {
		select {
		case n := <-a.inbox.Notifications():
			if n.Err != nil {
				fmt.Fprintf(os.Stderr, "[%s] %s: %v\n", n.Level, n.Message, n.Err)
			} else {
				fmt.Fprintf(os.Stderr, "[%s] %s\n", n.Level, n.Message)
			}
		default:
			if dropped := a.inbox.Dropped(); dropped > 0 {
				fmt.Fprintf(os.Stderr, "[warning] %d more notifications were dropped\n", dropped)
			}
			return
		}
	}
}

// Close releases connections in reverse order of creation
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// run builds the app, runs fn and tears the app down
func run(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	defer a.flushNotifications()

	return fn(ctx, a)
}
