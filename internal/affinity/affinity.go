// Moodrank - Contextual Content Ranking and Viewing Wellness Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodrank

// Package affinity maintains the (mood, genre) affinity table used for
// mood-aware content scoring. The persisted table is authoritative; the
// in-memory copy is a read-through cache refreshed on every write.
package affinity

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tomtom215/moodrank/internal/logging"
	"github.com/tomtom215/moodrank/internal/models"
)

// neutralScore is returned for any (mood, genre) pair without a stored
// value. It means "unknown", never "low affinity", and is never
// persisted.
const neutralScore = 0.5

// Store is the persistence surface the table needs.
type Store interface {
	CountAffinities(ctx context.Context) (int, error)
	ListAffinities(ctx context.Context) ([]models.AffinityEntry, error)
	UpsertAffinity(ctx context.Context, entry models.AffinityEntry) error
	SeedAffinities(ctx context.Context, entries []models.AffinityEntry) error
}

// Table is the mood-genre affinity service. Safe for concurrent use;
// writes are serialized so the store and the cache never diverge.
type Table struct {
	store  Store
	logger zerolog.Logger

	mu     sync.RWMutex
	scores map[models.Mood]map[string]float64
}

// New builds the table, seeding the store on first boot. When the store
// already holds rows, stored values win over the seed.
func New(ctx context.Context, store Store) (*Table, error) {
	t := &Table{
		store:  store,
		logger: logging.With().Str("component", "affinity").Logger(),
		scores: make(map[models.Mood]map[string]float64),
	}

	count, err := store.CountAffinities(ctx)
	if err != nil {
		return nil, fmt.Errorf("check affinity table: %w", err)
	}
	if count == 0 {
		if err := store.SeedAffinities(ctx, seedEntries()); err != nil {
			return nil, fmt.Errorf("seed affinity table: %w", err)
		}
		t.logger.Info().Int("entries", len(seedEntries())).Msg("seeded affinity table")
	}

	if err := t.reload(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

// reload replaces the cache with the store's current contents.
func (t *Table) reload(ctx context.Context) error {
	entries, err := t.store.ListAffinities(ctx)
	if err != nil {
		return fmt.Errorf("load affinity table: %w", err)
	}

	scores := make(map[models.Mood]map[string]float64)
	for _, e := range entries {
		mood := models.Mood(strings.ToLower(e.Mood.String()))
		if scores[mood] == nil {
			scores[mood] = make(map[string]float64)
		}
		scores[mood][strings.ToLower(e.Genre)] = e.Score
	}

	t.mu.Lock()
	t.scores = scores
	t.mu.Unlock()

	t.logger.Debug().Int("entries", len(entries)).Msg("affinity cache loaded")
	return nil
}

// GetAffinity returns the stored score for (mood, genre), or the
// neutral 0.5 default when the pair is unknown. Never fails.
func (t *Table) GetAffinity(mood models.Mood, genre string) float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	byGenre, ok := t.scores[models.Mood(strings.ToLower(mood.String()))]
	if !ok {
		return neutralScore
	}
	score, ok := byGenre[strings.ToLower(strings.TrimSpace(genre))]
	if !ok {
		return neutralScore
	}
	return score
}

// ScoreContent returns the mean affinity of the candidate's genres for
// the mood, or 0.5 when the candidate carries no genres.
func (t *Table) ScoreContent(c models.Candidate, mood models.Mood) float64 {
	if len(c.Genres) == 0 {
		return neutralScore
	}
	var sum float64
	for _, genre := range c.Genres {
		sum += t.GetAffinity(mood, genre)
	}
	return sum / float64(len(c.Genres))
}

// BestGenresForMood returns up to topN genres for the mood, sorted by
// score descending. Unknown moods yield an empty list.
func (t *Table) BestGenresForMood(mood models.Mood, topN int) []models.GenreScore {
	t.mu.RLock()
	byGenre, ok := t.scores[models.Mood(strings.ToLower(mood.String()))]
	if !ok {
		t.mu.RUnlock()
		return nil
	}
	ranked := make([]models.GenreScore, 0, len(byGenre))
	for genre, score := range byGenre {
		ranked = append(ranked, models.GenreScore{Genre: genre, Score: score})
	}
	t.mu.RUnlock()

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Genre < ranked[j].Genre
	})

	if topN > 0 && topN < len(ranked) {
		ranked = ranked[:topN]
	}
	return ranked
}

// Upsert writes one (mood, genre) score through to the store and the
// cache. The write lock spans both so readers never observe a store
// value absent from the cache or vice versa.
func (t *Table) Upsert(ctx context.Context, mood models.Mood, genre string, score float64) error {
	parsed, err := models.ParseMood(mood.String())
	if err != nil {
		return err
	}
	genre = strings.ToLower(strings.TrimSpace(genre))
	if genre == "" {
		return fmt.Errorf("%w: empty genre", models.ErrValidation)
	}
	if score < 0 || score > 1 {
		return fmt.Errorf("%w: affinity score %.4f out of [0,1]", models.ErrValidation, score)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	entry := models.AffinityEntry{Mood: parsed, Genre: genre, Score: score}
	if err := t.store.UpsertAffinity(ctx, entry); err != nil {
		return err
	}
	if t.scores[parsed] == nil {
		t.scores[parsed] = make(map[string]float64)
	}
	t.scores[parsed][genre] = score

	t.logger.Debug().
		Str("mood", parsed.String()).
		Str("genre", genre).
		Float64("score", score).
		Msg("affinity updated")
	return nil
}

// Diversity summarizes the genre spread of a content list for a mood.
// Entropy is Shannon entropy (natural log) over the genre frequency
// distribution; all fields are 0 for an empty list.
func (t *Table) Diversity(contents []models.Candidate, mood models.Mood) models.DiversityReport {
	if len(contents) == 0 {
		return models.DiversityReport{}
	}

	genreCounts := make(map[string]int)
	total := 0
	var affinitySum float64
	for _, c := range contents {
		affinitySum += t.ScoreContent(c, mood)
		for _, genre := range c.Genres {
			genreCounts[strings.ToLower(genre)]++
			total++
		}
	}

	var entropy float64
	for _, count := range genreCounts {
		p := float64(count) / float64(total)
		entropy -= p * math.Log(p)
	}

	return models.DiversityReport{
		UniqueGenreCount: len(genreCounts),
		GenreEntropy:     entropy,
		AvgAffinity:      affinitySum / float64(len(contents)),
	}
}
