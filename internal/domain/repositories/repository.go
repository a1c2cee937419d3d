package repositories

import (
	"context"

	"github.com/zatekoja/clinicdesk/internal/domain/entities"
)

// Repository is the CRUD surface every backend resource exposes
type Repository[T entities.Identifiable] interface {
	// GetAll lists every entity of the resource
	GetAll(ctx context.Context) ([]T, error)

	// GetByID retrieves a single entity
	GetByID(ctx context.Context, id string) (*T, error)

	// Create creates an entity and returns the backend's copy
	Create(ctx context.Context, entity *T) (*T, error)

	// Update replaces an entity (PUT semantics)
	Update(ctx context.Context, entity *T) (*T, error)

	// Delete deletes an entity
	Delete(ctx context.Context, id string) error
}
