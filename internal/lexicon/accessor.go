package lexicon

import (
	"context"

	"github.com/heartmarshall/morphodict-backend/internal/domain"
)

// WordformStore is the persisted half of the lexicon.
type WordformStore interface {
	FindByAnalysis(ctx context.Context, a domain.Analysis) ([]domain.Wordform, error)
	FindByText(ctx context.Context, text string, lemmasOnly bool) ([]domain.Wordform, error)
	FindByTargetKeyword(ctx context.Context, keyword string) ([]domain.Wordform, error)
	FindBySourceKeyword(ctx context.Context, texts ...string) ([]domain.SourceKeywordMatch, error)
	GetByID(ctx context.Context, id int64) (*domain.Wordform, error)
}

// Accessor answers every lexicon query a search needs. Database lookups go
// to the store; preverbs and morpheme rankings come from the snapshot.
type Accessor struct {
	store WordformStore
	snap  *Snapshot
}

// NewAccessor combines a store with a snapshot. A nil snapshot behaves as empty.
func NewAccessor(store WordformStore, snap *Snapshot) *Accessor {
	if snap == nil {
		snap = NewSnapshot(nil, nil)
	}
	return &Accessor{store: store, snap: snap}
}

func (a *Accessor) FindByAnalysis(ctx context.Context, an domain.Analysis) ([]domain.Wordform, error) {
	return a.store.FindByAnalysis(ctx, an)
}

func (a *Accessor) FindByText(ctx context.Context, text string, lemmasOnly bool) ([]domain.Wordform, error) {
	return a.store.FindByText(ctx, text, lemmasOnly)
}

func (a *Accessor) FindByTargetKeyword(ctx context.Context, keyword string) ([]domain.Wordform, error) {
	return a.store.FindByTargetKeyword(ctx, keyword)
}

func (a *Accessor) FindBySourceKeyword(ctx context.Context, texts ...string) ([]domain.SourceKeywordMatch, error) {
	return a.store.FindBySourceKeyword(ctx, texts...)
}

func (a *Accessor) GetByID(ctx context.Context, id int64) (*domain.Wordform, error) {
	return a.store.GetByID(ctx, id)
}

// FindPreverb returns preverb lemmas matching text; it never touches the database.
func (a *Accessor) FindPreverb(_ context.Context, text string) ([]domain.Wordform, error) {
	return a.snap.Preverbs(text), nil
}

// MorphemeRanking implements the ranking lookup of the snapshot.
func (a *Accessor) MorphemeRanking(morpheme string) (float64, bool) {
	return a.snap.MorphemeRanking(morpheme)
}
