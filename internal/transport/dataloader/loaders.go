package dataloader

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"

	"github.com/heartmarshall/morphodict-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Definitions by WordformID
// ---------------------------------------------------------------------------

func newDefinitionsBatchFn(repo definitionRepo) dataloader.BatchFunc[int64, []domain.Definition] {
	return func(ctx context.Context, keys []int64) []*dataloader.Result[[]domain.Definition] {
		defs, err := repo.GetByWordformIDs(ctx, keys)
		if err != nil {
			return errorResults[[]domain.Definition](len(keys), err)
		}

		grouped := make(map[int64][]domain.Definition, len(keys))
		for _, d := range defs {
			grouped[d.WordformID] = append(grouped[d.WordformID], d)
		}

		return mapResults(keys, grouped, emptySlice[domain.Definition])
	}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// errorResults returns a slice of error results for all keys.
func errorResults[V any](n int, err error) []*dataloader.Result[V] {
	results := make([]*dataloader.Result[V], n)
	for i := range results {
		results[i] = &dataloader.Result[V]{Error: err}
	}
	return results
}

// mapResults maps grouped results back to key order, using defaultFn for missing keys.
func mapResults[V any](keys []int64, grouped map[int64]V, defaultFn func() V) []*dataloader.Result[V] {
	results := make([]*dataloader.Result[V], len(keys))
	for i, key := range keys {
		if v, ok := grouped[key]; ok {
			results[i] = &dataloader.Result[V]{Data: v}
		} else {
			results[i] = &dataloader.Result[V]{Data: defaultFn()}
		}
	}
	return results
}

// emptySlice returns a non-nil empty slice.
func emptySlice[T any]() []T {
	return []T{}
}
