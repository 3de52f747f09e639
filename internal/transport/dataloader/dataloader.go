// Package dataloader provides per-request DataLoaders that batch definition
// lookups for search presentation into single SQL calls.
package dataloader

import (
	"context"
	"time"

	"github.com/graph-gophers/dataloader/v7"

	"github.com/heartmarshall/morphodict-backend/internal/domain"
)

const (
	maxBatch = 100
	wait     = 2 * time.Millisecond
)

// ---------------------------------------------------------------------------
// Repository interfaces (consumer-defined)
// ---------------------------------------------------------------------------

type definitionRepo interface {
	GetByWordformIDs(ctx context.Context, wordformIDs []int64) ([]domain.Definition, error)
}

// Repos holds all repositories required by DataLoaders.
type Repos struct {
	Definition definitionRepo
}

// ---------------------------------------------------------------------------
// Loaders holds all per-request DataLoader instances.
// ---------------------------------------------------------------------------

// Loaders contains the per-request DataLoaders. Created per-request via NewLoaders.
type Loaders struct {
	DefinitionsByWordformID *dataloader.Loader[int64, []domain.Definition]
}

// NewLoaders creates a new set of DataLoaders backed by the given repositories.
// Must be called per-request (loaders cache results within a single request).
func NewLoaders(repos *Repos) *Loaders {
	return &Loaders{
		DefinitionsByWordformID: newLoader(newDefinitionsBatchFn(repos.Definition)),
	}
}

// newLoader creates a dataloader.Loader with standard batch parameters.
func newLoader[V any](batchFn dataloader.BatchFunc[int64, V]) *dataloader.Loader[int64, V] {
	return dataloader.NewBatchedLoader(
		batchFn,
		dataloader.WithWait[int64, V](wait),
		dataloader.WithBatchCapacity[int64, V](maxBatch),
	)
}

// DefinitionsFor loads the definitions of every id in one batch. The first
// per-key error aborts the whole load.
func (l *Loaders) DefinitionsFor(ctx context.Context, ids []int64) (map[int64][]domain.Definition, error) {
	out := make(map[int64][]domain.Definition, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	defs, errs := l.DefinitionsByWordformID.LoadMany(ctx, ids)()
	for i, id := range ids {
		if i < len(errs) && errs[i] != nil {
			return nil, errs[i]
		}
		out[id] = defs[i]
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Context helpers
// ---------------------------------------------------------------------------

type contextKey string

const loadersKey contextKey = "dataloaders"

// WithLoaders stores Loaders in the context.
func WithLoaders(ctx context.Context, l *Loaders) context.Context {
	return context.WithValue(ctx, loadersKey, l)
}

// FromContext retrieves Loaders from the context.
// Panics if loaders are not present (indicates middleware misconfiguration).
func FromContext(ctx context.Context) *Loaders {
	l, ok := ctx.Value(loadersKey).(*Loaders)
	if !ok || l == nil {
		panic("dataloader: loaders not found in context, is middleware configured?")
	}
	return l
}
