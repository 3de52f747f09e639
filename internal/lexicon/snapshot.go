// Package lexicon exposes the read-only dictionary state shared by all
// searches: the database-backed wordform lookups and an immutable snapshot
// of process-wide indexes built once at startup.
package lexicon

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/morphodict-backend/internal/domain"
	"github.com/heartmarshall/morphodict-backend/pkg/datafile"
)

// Snapshot holds indexes that never change while the process runs.
// It is safe for concurrent use because nothing mutates it after Build.
type Snapshot struct {
	morphemeRankings map[string]float64
	preverbs         map[string][]domain.Wordform
}

// PreverbSource lists lemmas of a word class.
type PreverbSource interface {
	ListLemmasByWordClass(ctx context.Context, wordClass string) ([]domain.Wordform, error)
}

// BuildOptions configures Build. An empty RankingsPath or a nil Preverbs
// leaves the corresponding index empty.
type BuildOptions struct {
	RankingsPath string
	Preverbs     PreverbSource
}

// NewSnapshot assembles a snapshot from already-loaded data.
func NewSnapshot(rankings map[string]float64, preverbLemmas []domain.Wordform) *Snapshot {
	if rankings == nil {
		rankings = map[string]float64{}
	}
	return &Snapshot{
		morphemeRankings: rankings,
		preverbs:         indexPreverbs(preverbLemmas),
	}
}

// Build loads the morpheme rankings file and the preverb lemmas concurrently.
func Build(ctx context.Context, opts BuildOptions, logger *slog.Logger) (*Snapshot, error) {
	start := time.Now()

	var (
		rankings map[string]float64
		preverbs []domain.Wordform
	)

	g, gctx := errgroup.WithContext(ctx)

	if opts.RankingsPath != "" {
		g.Go(func() error {
			rc, err := datafile.Open(opts.RankingsPath)
			if err != nil {
				return fmt.Errorf("morpheme rankings: %w", err)
			}
			defer rc.Close()

			r, err := ReadMorphemeRankings(rc)
			if err != nil {
				return fmt.Errorf("morpheme rankings %s: %w", opts.RankingsPath, err)
			}
			rankings = r
			return nil
		})
	}

	if opts.Preverbs != nil {
		g.Go(func() error {
			lemmas, err := opts.Preverbs.ListLemmasByWordClass(gctx, domain.WordClassPreverb)
			if err != nil {
				return fmt.Errorf("preverb index: %w", err)
			}
			preverbs = lemmas
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap := NewSnapshot(rankings, preverbs)
	logger.InfoContext(ctx, "lexicon snapshot built",
		slog.Int("morpheme_rankings", len(snap.morphemeRankings)),
		slog.Int("preverb_keys", len(snap.preverbs)),
		slog.Duration("duration", time.Since(start)),
	)
	return snap, nil
}

// ReadMorphemeRankings parses "frequency<TAB>morpheme[<TAB>...]" lines.
// Lines with fewer than two cells are skipped; extra cells are ignored.
func ReadMorphemeRankings(r io.Reader) (map[string]float64, error) {
	out := make(map[string]float64)

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		cells := strings.Split(strings.TrimRight(sc.Text(), "\r"), "\t")
		if len(cells) < 2 {
			continue
		}
		freq, err := strconv.ParseFloat(strings.TrimSpace(cells[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: frequency %q: %w", lineNo, cells[0], err)
		}
		out[cells[1]] = freq
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	return out, nil
}

// PreverbKey is the preverb index key: lower-cased, trailing hyphen removed,
// diacritics stripped. "ê-" and "e" share a key.
func PreverbKey(text string) string {
	text = strings.TrimSuffix(domain.NormalizeText(text), "-")
	return domain.StripDiacritics(text)
}

// MorphemeRanking returns the corpus frequency of a morpheme (log scale).
func (s *Snapshot) MorphemeRanking(morpheme string) (float64, bool) {
	v, ok := s.morphemeRankings[morpheme]
	return v, ok
}

// Preverbs returns the preverb lemmas whose key equals PreverbKey(text).
func (s *Snapshot) Preverbs(text string) []domain.Wordform {
	found := s.preverbs[PreverbKey(text)]
	if len(found) == 0 {
		return nil
	}
	return append([]domain.Wordform(nil), found...)
}

func indexPreverbs(lemmas []domain.Wordform) map[string][]domain.Wordform {
	idx := make(map[string][]domain.Wordform)
	for _, w := range lemmas {
		key := PreverbKey(w.Text)
		if key == "" {
			continue
		}
		idx[key] = append(idx[key], w)
	}
	return idx
}
