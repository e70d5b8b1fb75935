// Moodrank - Contextual Content Ranking and Viewing Wellness Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodrank

// Package recommend fuses collaborative, content, mood-affinity, and
// time-of-day signals into one ranked candidate list, then truncates
// the result according to the wellness throttle.
package recommend

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/tomtom215/moodrank/internal/affinity"
	"github.com/tomtom215/moodrank/internal/logging"
	"github.com/tomtom215/moodrank/internal/metrics"
	"github.com/tomtom215/moodrank/internal/models"
	"github.com/tomtom215/moodrank/internal/timeofday"
)

// Ensemble weights, fixed.
const (
	weightCollaborative = 0.4
	weightContent       = 0.3
	weightMood          = 0.2
	weightTime          = 0.1

	// neutralScore substitutes for any absent sub-score.
	neutralScore = 0.5

	// defaultSourceLimit is the floor on how many raw candidates are
	// requested from each source per ranking call.
	defaultSourceLimit = 20
)

// Throttler caps how much of the ranked list is surfaced.
type Throttler interface {
	Throttle(ctx context.Context, userID int) (models.ThrottleDecision, error)
}

// Ranker is the ensemble ranking service.
type Ranker struct {
	sources     []Source
	affinity    *affinity.Table
	timeModel   *timeofday.Model
	throttler   Throttler
	sourceLimit int
	logger      zerolog.Logger
}

// New builds a Ranker over the given candidate sources. sourceLimit is
// the per-source raw candidate floor; values below 1 use the default.
func New(sources []Source, table *affinity.Table, timeModel *timeofday.Model, throttler Throttler, sourceLimit int) *Ranker {
	if sourceLimit < 1 {
		sourceLimit = defaultSourceLimit
	}
	return &Ranker{
		sources:     sources,
		affinity:    table,
		timeModel:   timeModel,
		throttler:   throttler,
		sourceLimit: sourceLimit,
		logger:      logging.With().Str("component", "recommend").Logger(),
	}
}

// GetRecommendations returns up to requestedCount candidates ranked by
// the ensemble score, reduced further when the wellness throttle is
// active. Source failures degrade to whatever other sources returned;
// a fully empty candidate pool is replaced by a deterministic fallback
// set so the result is never empty for a positive request.
func (r *Ranker) GetRecommendations(ctx context.Context, userID int, mood models.Mood, requestedCount int) (models.RecommendationSet, error) {
	if requestedCount <= 0 {
		return models.RecommendationSet{}, fmt.Errorf("%w: requested count must be positive", models.ErrValidation)
	}
	if mood == "" {
		mood = models.MoodNeutral
	}
	metrics.RecommendationRequests.Inc()

	candidates := r.gather(ctx, userID, requestedCount)
	if len(candidates) == 0 {
		candidates = r.fallbackCandidates(mood)
		metrics.FallbackCandidateSets.Inc()
	}

	scored := make([]models.ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, r.score(c, mood))
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].FinalScore > scored[j].FinalScore
	})

	throttle, err := r.throttler.Throttle(ctx, userID)
	if err != nil {
		return models.RecommendationSet{}, err
	}

	effective := requestedCount
	if throttle.Percent < 100 {
		effective = int(math.Round(float64(requestedCount) * float64(throttle.Percent) / 100))
		if effective < 1 {
			effective = 1
		}
		metrics.ThrottledRequests.WithLabelValues(strconv.Itoa(throttle.Percent)).Inc()
	}
	if effective > len(scored) {
		effective = len(scored)
	}

	r.logger.Debug().
		Int("user_id", userID).
		Str("mood", mood.String()).
		Int("requested", requestedCount).
		Int("returned", effective).
		Bool("throttled", throttle.Throttled).
		Msg("recommendations ranked")

	return models.RecommendationSet{
		UserID:          userID,
		Requested:       requestedCount,
		Returned:        effective,
		Throttled:       throttle.Throttled,
		ThrottleMessage: throttle.Message,
		Recommendations: scored[:effective],
	}, nil
}

// gather pulls candidates from every source and merges them by content
// id. A failing source is logged and skipped.
func (r *Ranker) gather(ctx context.Context, userID, requestedCount int) []models.Candidate {
	limit := requestedCount
	if limit < r.sourceLimit {
		limit = r.sourceLimit
	}

	batches := make([][]models.Candidate, 0, len(r.sources))
	for _, source := range r.sources {
		batch, err := source.ListCandidates(ctx, userID, limit)
		if err != nil {
			r.logger.Warn().
				Err(err).
				Str("source", source.Name()).
				Int("user_id", userID).
				Msg("candidate source failed")
			continue
		}
		batches = append(batches, batch)
	}
	return mergeCandidates(batches...)
}

// score computes the weighted ensemble score for one candidate.
// Component scores are rounded to 4 decimals for stable payloads.
func (r *Ranker) score(c models.Candidate, mood models.Mood) models.ScoredCandidate {
	cf := neutralScore
	if c.CFScore != nil {
		cf = *c.CFScore
	}
	cb := neutralScore
	if c.CBScore != nil {
		cb = *c.CBScore
	}

	moodAffinity := r.affinity.ScoreContent(c, mood)

	timeScore := neutralScore
	if len(c.Genres) > 0 {
		var sum float64
		for _, genre := range c.Genres {
			sum += r.timeModel.GenreScoreForTime(genre)
		}
		timeScore = sum / float64(len(c.Genres))
	}

	final := weightCollaborative*cf + weightContent*cb + weightMood*moodAffinity + weightTime*timeScore
	return models.ScoredCandidate{
		Candidate:    c,
		FinalScore:   round4(final),
		MoodAffinity: round4(moodAffinity),
		TimeScore:    round4(timeScore),
	}
}

// fallbackCandidates synthesizes a deterministic candidate set from the
// affinity table's known genres for the mood, so ranking still returns
// results when every source is empty or down.
func (r *Ranker) fallbackCandidates(mood models.Mood) []models.Candidate {
	genres := r.affinity.BestGenresForMood(mood, 0)
	if len(genres) == 0 {
		genres = r.affinity.BestGenresForMood(models.MoodNeutral, 0)
	}

	candidates := make([]models.Candidate, 0, len(genres))
	for i, gs := range genres {
		candidates = append(candidates, models.Candidate{
			ContentID: 1000 + i,
			Title:     "Popular " + gs.Genre + " picks",
			Genres:    []string{gs.Genre},
		})
	}
	return candidates
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
