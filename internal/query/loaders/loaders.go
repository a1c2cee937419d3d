package loaders

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/zatekoja/clinicdesk/internal/domain/entities"
	"github.com/zatekoja/clinicdesk/internal/domain/repositories"
)

type ctxKey string

const loadersKey ctxKey = "dataloaders"

// Loaders contains the name lookups used when joining appointments with
// their patients and professionals. A Loaders value de-duplicates keys for
// its whole lifetime, so build a fresh one per query.
type Loaders struct {
	PatientLoader      *dataloader.Loader[string, *entities.Patient]
	ProfessionalLoader *dataloader.Loader[string, *entities.Professional]
}

// NewLoaders creates a new instance of Loaders
func NewLoaders(patients repositories.Repository[entities.Patient], professionals repositories.Repository[entities.Professional]) *Loaders {
	return &Loaders{
		PatientLoader:      dataloader.NewBatchedLoader(batchByID(patients)),
		ProfessionalLoader: dataloader.NewBatchedLoader(batchByID(professionals)),
	}
}

// batchByID resolves each key through GetByID. The repositories sit behind
// the shared cache, so repeated batches across queries stay cheap.
func batchByID[T entities.Identifiable](repo repositories.Repository[T]) dataloader.BatchFunc[string, *T] {
	return func(ctx context.Context, keys []string) []*dataloader.Result[*T] {
		results := make([]*dataloader.Result[*T], len(keys))
		for i, key := range keys {
			item, err := repo.GetByID(ctx, key)
			results[i] = &dataloader.Result[*T]{Data: item, Error: err}
		}
		return results
	}
}

// For returns the loaders for a given context, or nil when none are attached
func For(ctx context.Context) *Loaders {
	l, _ := ctx.Value(loadersKey).(*Loaders)
	return l
}

// WithLoaders returns a new context with the loaders attached
func WithLoaders(ctx context.Context, loaders *Loaders) context.Context {
	return context.WithValue(ctx, loadersKey, loaders)
}
