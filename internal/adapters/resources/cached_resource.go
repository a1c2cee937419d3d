package resources

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/clinicdesk/internal/domain/entities"
	"github.com/zatekoja/clinicdesk/internal/domain/providers"
	"github.com/zatekoja/clinicdesk/internal/domain/repositories"
	"github.com/zatekoja/clinicdesk/internal/infrastructure/observability"
)

const defaultCacheTTLSeconds = 60

// CachedResource wraps a Repository with a shared read-through cache.
// Reads are served from the cache when possible. Every write drops the
// resource's cached keys, whether or not the backend accepted it, so a
// reload after a rejected write sees the backend's current state. Only
// successful writes are announced on the event bus.
// A failing cache never fails a read or a write.
type CachedResource[T entities.Identifiable] struct {
	repo     repositories.Repository[T]
	name     string
	cache    providers.CacheProvider
	eventBus providers.EventBus
	metrics  *observability.Metrics
	ttl      int
}

// CacheOption customises a cached resource
type CacheOption func(*cacheOptions)

type cacheOptions struct {
	eventBus providers.EventBus
	metrics  *observability.Metrics
	ttl      int
}

// WithEventBus publishes a ResourceEvent after each write
func WithEventBus(bus providers.EventBus) CacheOption {
	return func(o *cacheOptions) { o.eventBus = bus }
}

// WithCacheMetrics records hits and misses
func WithCacheMetrics(m *observability.Metrics) CacheOption {
	return func(o *cacheOptions) { o.metrics = m }
}

// WithTTL sets the expiration of cached entries in seconds
func WithTTL(seconds int) CacheOption {
	return func(o *cacheOptions) {
		if seconds > 0 {
			o.ttl = seconds
		}
	}
}

// NewCachedResource creates a cached view over repo
func NewCachedResource[T entities.Identifiable](repo repositories.Repository[T], name string, cache providers.CacheProvider, opts ...CacheOption) *CachedResource[T] {
	o := cacheOptions{ttl: defaultCacheTTLSeconds}
	for _, opt := range opts {
		opt(&o)
	}
	return &CachedResource[T]{
		repo:     repo,
		name:     name,
		cache:    cache,
		eventBus: o.eventBus,
		metrics:  o.metrics,
		ttl:      o.ttl,
	}
}

// GetAll retrieves the list with caching
func (c *CachedResource[T]) GetAll(ctx context.Context) ([]T, error) {
	key := providers.ResourceListKey(c.name)

	var cached []T
	if c.lookup(ctx, key, &cached) {
		return cached, nil
	}

	items, err := c.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, items)
	return items, nil
}

// GetByID retrieves one entity with caching
func (c *CachedResource[T]) GetByID(ctx context.Context, id string) (*T, error) {
	key := providers.ResourceItemKey(c.name, id)

	var cached T
	if c.lookup(ctx, key, &cached) {
		return &cached, nil
	}

	item, err := c.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, item)
	return item, nil
}

// Create creates an entity and invalidates the list cache
func (c *CachedResource[T]) Create(ctx context.Context, entity *T) (*T, error) {
	created, err := c.repo.Create(ctx, entity)
	if err != nil {
		c.forget(ctx, "")
		return nil, err
	}
	id := ""
	if created != nil {
		id = (*created).GetID()
	}
	c.invalidate(ctx, id, entities.ResourceEventCreated)
	return created, nil
}

// Update replaces an entity and invalidates its caches
func (c *CachedResource[T]) Update(ctx context.Context, entity *T) (*T, error) {
	updated, err := c.repo.Update(ctx, entity)
	if err != nil {
		c.forget(ctx, (*entity).GetID())
		return nil, err
	}
	c.invalidate(ctx, (*entity).GetID(), entities.ResourceEventUpdated)
	return updated, nil
}

// Delete deletes an entity and invalidates its caches
func (c *CachedResource[T]) Delete(ctx context.Context, id string) error {
	if err := c.repo.Delete(ctx, id); err != nil {
		c.forget(ctx, id)
		return err
	}
	c.invalidate(ctx, id, entities.ResourceEventDeleted)
	return nil
}

func (c *CachedResource[T]) lookup(ctx context.Context, key string, out interface{}) bool {
	data, err := c.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, providers.ErrCacheMiss) {
			log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
		observability.RecordCacheMiss(ctx, c.metrics, c.name)
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to unmarshal cached value")
		observability.RecordCacheMiss(ctx, c.metrics, c.name)
		return false
	}
	observability.RecordCacheHit(ctx, c.metrics, c.name)
	return true
}

func (c *CachedResource[T]) store(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to marshal value for cache")
		return
	}
	if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

// invalidate runs before the write returns so the next read, from any view
// sharing the cache, goes to the backend.
func (c *CachedResource[T]) invalidate(ctx context.Context, id string, eventType entities.ResourceEventType) {
	c.forget(ctx, id)

	if c.eventBus == nil {
		return
	}
	event := entities.NewResourceEvent(c.name, id, eventType)
	if err := c.eventBus.Publish(ctx, providers.EventChannelUpdates, event); err != nil {
		log.Warn().Err(err).Str("resource", c.name).Msg("failed to publish resource event")
	}
}

// forget drops the list key and, when id is set, the item key
func (c *CachedResource[T]) forget(ctx context.Context, id string) {
	keys := []string{providers.ResourceListKey(c.name)}
	if id != "" {
		keys = append(keys, providers.ResourceItemKey(c.name, id))
	}
	if err := c.cache.Delete(ctx, keys...); err != nil {
		log.Warn().Err(err).Str("resource", c.name).Msg("cache invalidation failed")
	}
}

// CachedAppointments adds cached PATCH to the appointment resource
type CachedAppointments struct {
	*CachedResource[entities.Appointment]
	repo repositories.AppointmentRepository
}

// NewCachedAppointments wraps an appointment repository with the shared cache
func NewCachedAppointments(repo repositories.AppointmentRepository, cache providers.CacheProvider, opts ...CacheOption) repositories.AppointmentRepository {
	return &CachedAppointments{
		CachedResource: NewCachedResource[entities.Appointment](repo, entities.ResourceAppointments, cache, opts...),
		repo:           repo,
	}
}

// Patch handles a partial appointment update and invalidates its caches
func (c *CachedAppointments) Patch(ctx context.Context, id string, patch entities.AppointmentPatch) (*entities.Appointment, error) {
	out, err := c.repo.Patch(ctx, id, patch)
	if err != nil {
		c.forget(ctx, id)
		return nil, err
	}
	c.invalidate(ctx, id, entities.ResourceEventPatched)
	return out, nil
}

// CachedTasks adds cached PATCH to the task resource
type CachedTasks struct {
	*CachedResource[entities.Task]
	repo repositories.TaskRepository
}

// NewCachedTasks wraps a task repository with the shared cache
func NewCachedTasks(repo repositories.TaskRepository, cache providers.CacheProvider, opts ...CacheOption) repositories.TaskRepository {
	return &CachedTasks{
		CachedResource: NewCachedResource[entities.Task](repo, entities.ResourceTasks, cache, opts...),
		repo:           repo,
	}
}

// Patch handles a partial task update and invalidates its caches
func (c *CachedTasks) Patch(ctx context.Context, id string, patch entities.TaskPatch) (*entities.Task, error) {
	out, err := c.repo.Patch(ctx, id, patch)
	if err != nil {
		c.forget(ctx, id)
		return nil, err
	}
	c.invalidate(ctx, id, entities.ResourceEventPatched)
	return out, nil
}

// CachedPatients caches the patient records; history and anamnesis are
// passed straight through.
type CachedPatients struct {
	*CachedResource[entities.Patient]
	repo repositories.PatientRepository
}

// NewCachedPatients wraps a patient repository with the shared cache
func NewCachedPatients(repo repositories.PatientRepository, cache providers.CacheProvider, opts ...CacheOption) repositories.PatientRepository {
	return &CachedPatients{
		CachedResource: NewCachedResource[entities.Patient](repo, entities.ResourcePatients, cache, opts...),
		repo:           repo,
	}
}

func (c *CachedPatients) GetHistory(ctx context.Context, patientID string) ([]entities.PatientHistoryEntry, error) {
	return c.repo.GetHistory(ctx, patientID)
}

func (c *CachedPatients) CreateHistory(ctx context.Context, patientID string, entry *entities.PatientHistoryEntry) (*entities.PatientHistoryEntry, error) {
	return c.repo.CreateHistory(ctx, patientID, entry)
}

func (c *CachedPatients) GetAnamnesis(ctx context.Context, patientID string) (*entities.Anamnesis, error) {
	return c.repo.GetAnamnesis(ctx, patientID)
}

func (c *CachedPatients) SaveAnamnesis(ctx context.Context, patientID string, anamnesis *entities.Anamnesis) (*entities.Anamnesis, error) {
	return c.repo.SaveAnamnesis(ctx, patientID, anamnesis)
}
