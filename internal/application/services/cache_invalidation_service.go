package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/clinicdesk/internal/domain/entities"
	"github.com/zatekoja/clinicdesk/internal/domain/providers"
)

// CacheInvalidationService drops cached entries when another process reports
// a write through the event bus
type CacheInvalidationService struct {
	cache    providers.CacheProvider
	eventBus providers.EventBus
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewCacheInvalidationService creates a new cache invalidation service
func NewCacheInvalidationService(cache providers.CacheProvider, eventBus providers.EventBus) *CacheInvalidationService {
	ctx, cancel := context.WithCancel(context.Background())
	return &CacheInvalidationService{
		cache:    cache,
		eventBus: eventBus,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins listening for events and invalidating cache
func (s *CacheInvalidationService) Start() error {
	eventChan, err := s.eventBus.Subscribe(s.ctx, providers.EventChannelUpdates)
	if err != nil {
		return fmt.Errorf("failed to subscribe to resource updates: %w", err)
	}

	s.wg.Add(1)
	go s.processEvents(eventChan)
	log.Info().Str("channel", providers.EventChannelUpdates).Msg("cache invalidation service started")
	return nil
}

// Stop stops the service and waits for the event loop to exit
func (s *CacheInvalidationService) Stop() {
	s.cancel()
	s.wg.Wait()
	log.Info().Msg("cache invalidation service stopped")
}

func (s *CacheInvalidationService) processEvents(eventChan <-chan *entities.ResourceEvent) {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			return
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			if event == nil {
				continue
			}
			s.handleEvent(event)
		}
	}
}

func (s *CacheInvalidationService) handleEvent(event *entities.ResourceEvent) {
	ctx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
	defer cancel()

	log.Debug().
		Str("event_id", event.ID).
		Str("resource", event.Resource).
		Str("entity_id", event.EntityID).
		Str("type", string(event.EventType)).
		Msg("processing cache invalidation")

	if err := s.InvalidateResource(ctx, event.Resource); err != nil {
		log.Warn().Err(err).Str("resource", event.Resource).Msg("failed to invalidate resource cache")
	}
}

// InvalidateResource drops every cached list and item of one resource
func (s *CacheInvalidationService) InvalidateResource(ctx context.Context, resource string) error {
	if resource == "" {
		return nil
	}
	if err := s.cache.DeletePattern(ctx, providers.ResourcePattern(resource)); err != nil {
		return fmt.Errorf("failed to invalidate %s cache: %w", resource, err)
	}
	return nil
}

// InvalidateAll drops every cached resource, for use after a bulk import
func (s *CacheInvalidationService) InvalidateAll(ctx context.Context) error {
	resources := []string{
		entities.ResourcePatients,
		entities.ResourceAppointments,
		entities.ResourceProfessionals,
		entities.ResourceSpecialties,
		entities.ResourceTasks,
		entities.ResourceUsers,
		entities.ResourceAgreements,
		entities.ResourceTransactions,
	}
	for _, resource := range resources {
		if err := s.InvalidateResource(ctx, resource); err != nil {
			return err
		}
	}
	return nil
}
