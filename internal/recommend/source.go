// Moodrank - Contextual Content Ranking and Viewing Wellness Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodrank

package recommend

import (
	"context"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/moodrank/internal/logging"
	"github.com/tomtom215/moodrank/internal/models"
)

// Source supplies raw ranking candidates for a user. Implementations
// may return an empty list; the ranker synthesizes a fallback set when
// every source comes back empty.
type Source interface {
	Name() string
	ListCandidates(ctx context.Context, userID, limit int) ([]models.Candidate, error)
}

// breakerSource wraps a Source with a circuit breaker so a failing
// external recommender cannot stall every ranking call.
type breakerSource struct {
	inner   Source
	breaker *gobreaker.CircuitBreaker[[]models.Candidate]
}

// WithBreaker wraps a source with a circuit breaker that opens after
// maxFailures consecutive failures and probes again after cooldown.
func WithBreaker(inner Source, maxFailures uint32, cooldown time.Duration) Source {
	settings := gobreaker.Settings{
		Name:    "candidate-source-" + inner.Name(),
		Timeout: cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("candidate source breaker state change")
		},
	}
	return &breakerSource{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker[[]models.Candidate](settings),
	}
}

func (b *breakerSource) Name() string { return b.inner.Name() }

func (b *breakerSource) ListCandidates(ctx context.Context, userID, limit int) ([]models.Candidate, error) {
	return b.breaker.Execute(func() ([]models.Candidate, error) {
		return b.inner.ListCandidates(ctx, userID, limit)
	})
}

// mergeCandidates folds source results into one list keyed by content
// id, preserving first-seen order. A later source's set fields overlay
// earlier ones, but absent fields never erase values already present.
func mergeCandidates(batches ...[]models.Candidate) []models.Candidate {
	var order []int
	byID := make(map[int]models.Candidate)

	for _, batch := range batches {
		for _, c := range batch {
			existing, seen := byID[c.ContentID]
			if !seen {
				byID[c.ContentID] = c
				order = append(order, c.ContentID)
				continue
			}
			if c.Title != "" {
				existing.Title = c.Title
			}
			if len(c.Genres) > 0 {
				existing.Genres = c.Genres
			}
			if c.CFScore != nil {
				existing.CFScore = c.CFScore
			}
			if c.CBScore != nil {
				existing.CBScore = c.CBScore
			}
			byID[c.ContentID] = existing
		}
	}

	merged := make([]models.Candidate, 0, len(order))
	for _, id := range order {
		merged = append(merged, byID[id])
	}
	return merged
}
