// Moodrank - Contextual Content Ranking and Viewing Wellness Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodrank

// Package mood manages user mood state: direct declarations, behavioral
// inference from recently watched genres, and short-window trend
// summaries. Mood events are append-only; the profile row carries only
// the current summary.
package mood

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/moodrank/internal/logging"
	"github.com/tomtom215/moodrank/internal/models"
)

// inferenceMinAge guards profile overwrites by inference: a declared or
// inferred mood younger than this is never replaced by a new inference.
const inferenceMinAge = 6 * time.Hour

// Genre buckets for behavioral inference.
var (
	happyGenres = map[string]bool{
		"comedy":    true,
		"musical":   true,
		"adventure": true,
		"animation": true,
	}
	sadGenres = map[string]bool{
		"drama":     true,
		"thriller":  true,
		"romance":   true,
		"melodrama": true,
	}
)

// Store is the persistence surface the service needs.
type Store interface {
	UpsertMoodProfile(ctx context.Context, userID int, mood models.Mood, at time.Time) error
	GetMoodProfile(ctx context.Context, userID int) (models.MoodProfile, error)
	InsertMoodEvent(ctx context.Context, event models.MoodEvent) error
	ListMoodEvents(ctx context.Context, userID int, since time.Time) ([]models.MoodEvent, error)
}

// Service is the mood subsystem. The clock is injectable for tests.
type Service struct {
	store  Store
	now    func() time.Time
	logger zerolog.Logger
}

// New builds a Service backed by the system clock.
func New(store Store) *Service {
	return NewWithClock(store, time.Now)
}

// NewWithClock builds a Service with a fixed clock function.
func NewWithClock(store Store, now func() time.Time) *Service {
	return &Service{
		store:  store,
		now:    now,
		logger: logging.With().Str("component", "mood").Logger(),
	}
}

// SetMood records a user-declared mood: the profile is updated and a
// high-confidence event is appended. Unrecognized moods are rejected
// before any store access.
func (s *Service) SetMood(ctx context.Context, userID int, moodInput string) (models.Mood, error) {
	mood, err := models.ParseMood(moodInput)
	if err != nil {
		return "", err
	}

	now := s.now()
	if err := s.store.UpsertMoodProfile(ctx, userID, mood, now); err != nil {
		return "", err
	}
	event := models.MoodEvent{
		UserID:     userID,
		Mood:       mood,
		Confidence: models.ConfidenceUserInput,
		Timestamp:  now,
		Source:     models.MoodSourceUserInput,
	}
	if err := s.store.InsertMoodEvent(ctx, event); err != nil {
		return "", err
	}

	s.logger.Info().Int("user_id", userID).Str("mood", mood.String()).Msg("mood set")
	return mood, nil
}

// GetMood returns the user's current mood profile, defaulting to
// neutral for users with no profile row.
func (s *Service) GetMood(ctx context.Context, userID int) (models.MoodProfile, error) {
	return s.store.GetMoodProfile(ctx, userID)
}

// InferMood derives a mood from recently watched genres and appends a
// low-confidence event. The profile is only overwritten when its
// current mood is older than six hours; a fresher declaration or
// inference wins. Returns the inferred mood and whether the profile
// was updated.
func (s *Service) InferMood(ctx context.Context, userID int, recentGenres []string) (models.Mood, bool, error) {
	inferred := classifyGenres(recentGenres)

	now := s.now()
	event := models.MoodEvent{
		UserID:     userID,
		Mood:       inferred,
		Confidence: models.ConfidenceInferred,
		Timestamp:  now,
		Source:     models.MoodSourceInferred,
	}
	if err := s.store.InsertMoodEvent(ctx, event); err != nil {
		return "", false, err
	}

	profile, err := s.store.GetMoodProfile(ctx, userID)
	if err != nil {
		return "", false, err
	}

	applied := profile.IsDefault || now.Sub(profile.LastUpdated) >= inferenceMinAge
	if applied {
		if err := s.store.UpsertMoodProfile(ctx, userID, inferred, now); err != nil {
			return "", false, err
		}
	}

	s.logger.Debug().
		Int("user_id", userID).
		Str("mood", inferred.String()).
		Bool("applied", applied).
		Msg("mood inferred from behavior")
	return inferred, applied, nil
}

// classifyGenres buckets genres into happy/sad votes; ties and
// unclassified lists fall back to neutral.
func classifyGenres(genres []string) models.Mood {
	var happy, sad int
	for _, g := range genres {
		g = strings.ToLower(strings.TrimSpace(g))
		switch {
		case happyGenres[g]:
			happy++
		case sadGenres[g]:
			sad++
		}
	}
	switch {
	case happy > sad:
		return models.MoodHappy
	case sad > happy:
		return models.MoodSad
	default:
		return models.MoodNeutral
	}
}

// GetMoodTrend summarizes the user's mood events over the lookback
// window. Windows without data yield a neutral trend with a "no recent
// data" message rather than an error.
func (s *Service) GetMoodTrend(ctx context.Context, userID int, window time.Duration) (models.MoodTrend, error) {
	events, err := s.store.ListMoodEvents(ctx, userID, s.now().Add(-window))
	if err != nil {
		return models.MoodTrend{}, err
	}
	if len(events) == 0 {
		return models.MoodTrend{
			DominantMood: models.MoodNeutral,
			Counts:       map[models.Mood]int{},
			TrendMessage: "No recent mood data",
		}, nil
	}

	counts := make(map[models.Mood]int)
	for _, e := range events {
		counts[e.Mood]++
	}
	dominant := dominantMood(counts)

	// Events arrive newest first; compare the older half against the
	// newer half to describe the direction of change.
	mid := len(events) / 2
	newer := dominantOfEvents(events[:mid])
	older := dominantOfEvents(events[mid:])

	message := "Mood stable at " + dominant.String()
	if len(events) >= 2 && newer != older {
		message = "Mood shifting from " + older.String() + " to " + newer.String()
	}

	return models.MoodTrend{
		DominantMood: dominant,
		Counts:       counts,
		TrendMessage: message,
		EntryCount:   len(events),
	}, nil
}

func dominantOfEvents(events []models.MoodEvent) models.Mood {
	counts := make(map[models.Mood]int)
	for _, e := range events {
		counts[e.Mood]++
	}
	return dominantMood(counts)
}

// dominantMood picks the most frequent mood, breaking ties by name for
// determinism.
func dominantMood(counts map[models.Mood]int) models.Mood {
	best := models.MoodNeutral
	bestCount := -1
	for _, m := range []models.Mood{models.MoodHappy, models.MoodNeutral, models.MoodSad} {
		if counts[m] > bestCount {
			best = m
			bestCount = counts[m]
		}
	}
	return best
}
