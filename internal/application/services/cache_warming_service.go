package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/clinicdesk/internal/domain/entities"
	"github.com/zatekoja/clinicdesk/internal/domain/repositories"
)

type warmer struct {
	resource string
	warm     func(ctx context.Context) (int, error)
}

// CacheWarmingService preloads the rarely changing lookup lists that every
// view needs for names and dropdowns
type CacheWarmingService struct {
	warmers []warmer
}

func warmList[T entities.Identifiable](resource string, repo repositories.Repository[T]) warmer {
	return warmer{
		resource: resource,
		warm: func(ctx context.Context) (int, error) {
			items, err := repo.GetAll(ctx)
			return len(items), err
		},
	}
}

// NewCacheWarmingService creates a new cache warming service. The
// repositories are expected to be the cached ones, so listing them fills
// the shared cache.
func NewCacheWarmingService(
	professionals repositories.Repository[entities.Professional],
	specialties repositories.Repository[entities.Specialty],
	agreements repositories.Repository[entities.Agreement],
	users repositories.Repository[entities.User],
) *CacheWarmingService {
	return &CacheWarmingService{
		warmers: []warmer{
			warmList(entities.ResourceProfessionals, professionals),
			warmList(entities.ResourceSpecialties, specialties),
			warmList(entities.ResourceAgreements, agreements),
			warmList(entities.ResourceUsers, users),
		},
	}
}

// WarmCache loads every lookup list. Failures are logged and counted but do
// not stop the remaining lists.
func (s *CacheWarmingService) WarmCache(ctx context.Context) error {
	started := time.Now()
	failed := 0
	for _, w := range s.warmers {
		n, err := w.warm(ctx)
		if err != nil {
			failed++
			log.Warn().Err(err).Str("resource", w.resource).Msg("failed to warm cache")
			continue
		}
		log.Debug().Str("resource", w.resource).Int("items", n).Msg("warmed cache")
	}
	log.Info().Dur("duration", time.Since(started)).Int("failed", failed).Msg("cache warming completed")
	if failed == len(s.warmers) && failed > 0 {
		return fmt.Errorf("cache warming failed for all %d resources", failed)
	}
	return nil
}
