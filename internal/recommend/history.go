// Moodrank - Contextual Content Ranking and Viewing Wellness Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodrank

package recommend

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/moodrank/internal/logging"
	"github.com/tomtom215/moodrank/internal/models"
)

const (
	// defaultLookback bounds how much session history feeds the
	// co-occurrence model.
	defaultLookback = 30 * 24 * time.Hour

	// defaultSessionWindow groups a user's watch events into viewing
	// sessions: events further apart than this start a new session.
	defaultSessionWindow = 24 * time.Hour
)

// HistoryStore provides the watch events the collaborative source
// trains on.
type HistoryStore interface {
	ListWatchEvents(ctx context.Context, since time.Time) ([]models.WatchEvent, error)
}

// HistorySource derives collaborative scores from watch sessions via
// co-visitation: content watched together within a session window by
// the same user is considered similar, and a user's candidates are the
// items most similar to what they already watched. It emits bare
// (content id, CF score) candidates; titles and genres come from the
// catalog source through the merge.
type HistorySource struct {
	store    HistoryStore
	lookback time.Duration
	window   time.Duration
	now      func() time.Time
	logger   zerolog.Logger
}

// NewHistorySource builds a co-visitation source over the session store.
func NewHistorySource(store HistoryStore) *HistorySource {
	return NewHistorySourceWithClock(store, time.Now)
}

// NewHistorySourceWithClock is NewHistorySource with an injectable clock.
func NewHistorySourceWithClock(store HistoryStore, now func() time.Time) *HistorySource {
	return &HistorySource{
		store:    store,
		lookback: defaultLookback,
		window:   defaultSessionWindow,
		now:      now,
		logger:   logging.With().Str("component", "history_source").Logger(),
	}
}

// Name implements Source.
func (s *HistorySource) Name() string { return "history" }

// ListCandidates scores content by total co-occurrence with the user's
// own watch history. A user with no history gets no candidates; the
// ranker then leans on the other sources.
func (s *HistorySource) ListCandidates(ctx context.Context, userID, limit int) ([]models.Candidate, error) {
	events, err := s.store.ListWatchEvents(ctx, s.now().Add(-s.lookback))
	if err != nil {
		return nil, err
	}

	model := buildCoVisitation(events, s.window)
	watched := model.userItems[userID]
	if len(watched) == 0 {
		return nil, nil
	}

	// Sum similarity against everything the user watched, skipping the
	// watched items themselves.
	totals := make(map[int]float64)
	for itemID := range watched {
		for other, sim := range model.similarity[itemID] {
			if _, seen := watched[other]; seen {
				continue
			}
			totals[other] += sim
		}
	}
	if len(totals) == 0 {
		return nil, nil
	}

	// Normalize to [0, 1] by the max so CF scores are comparable with
	// the other ensemble components.
	var maxTotal float64
	for _, v := range totals {
		if v > maxTotal {
			maxTotal = v
		}
	}

	ids := make([]int, 0, len(totals))
	for id := range totals {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if totals[ids[i]] != totals[ids[j]] {
			return totals[ids[i]] > totals[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if limit > 0 && limit < len(ids) {
		ids = ids[:limit]
	}

	candidates := make([]models.Candidate, 0, len(ids))
	for _, id := range ids {
		score := totals[id] / maxTotal
		candidates = append(candidates, models.Candidate{
			ContentID: id,
			CFScore:   &score,
		})
	}

	s.logger.Debug().
		Int("user_id", userID).
		Int("events", len(events)).
		Int("candidates", len(candidates)).
		Msg("co-visitation candidates scored")
	return candidates, nil
}

// covisitModel is the trained co-occurrence state.
type covisitModel struct {
	// similarity[a][b] is the Jaccard-style co-occurrence score,
	// stored symmetrically.
	similarity map[int]map[int]float64

	// userItems[user] is the set of items the user watched.
	userItems map[int]map[int]struct{}
}

// buildCoVisitation groups each user's events into sessions by the time
// window, counts item pairs that appear in the same session, and turns
// the counts into Jaccard similarities:
//
//	sim(a, b) = pairs(a, b) / (count(a) + count(b) - pairs(a, b))
func buildCoVisitation(events []models.WatchEvent, window time.Duration) covisitModel {
	model := covisitModel{
		similarity: make(map[int]map[int]float64),
		userItems:  make(map[int]map[int]struct{}),
	}

	byUser := make(map[int][]models.WatchEvent)
	for _, e := range events {
		byUser[e.UserID] = append(byUser[e.UserID], e)
	}

	itemCounts := make(map[int]int)
	pairCounts := make(map[int]map[int]int)

	for userID, userEvents := range byUser {
		sort.Slice(userEvents, func(i, j int) bool {
			return userEvents[i].StartTime.Before(userEvents[j].StartTime)
		})

		model.userItems[userID] = make(map[int]struct{}, len(userEvents))
		for _, e := range userEvents {
			model.userItems[userID][e.ContentID] = struct{}{}
		}

		for _, session := range splitSessions(userEvents, window) {
			seen := make(map[int]struct{}, len(session))
			var items []int
			for _, e := range session {
				if _, dup := seen[e.ContentID]; dup {
					continue
				}
				seen[e.ContentID] = struct{}{}
				items = append(items, e.ContentID)
				itemCounts[e.ContentID]++
			}

			for i := 0; i < len(items); i++ {
				for j := i + 1; j < len(items); j++ {
					a, b := items[i], items[j]
					if a > b {
						a, b = b, a
					}
					if pairCounts[a] == nil {
						pairCounts[a] = make(map[int]int)
					}
					pairCounts[a][b]++
				}
			}
		}
	}

	for a, bCounts := range pairCounts {
		for b, count := range bCounts {
			union := itemCounts[a] + itemCounts[b] - count
			if union <= 0 {
				continue
			}
			sim := float64(count) / float64(union)
			if model.similarity[a] == nil {
				model.similarity[a] = make(map[int]float64)
			}
			if model.similarity[b] == nil {
				model.similarity[b] = make(map[int]float64)
			}
			model.similarity[a][b] = sim
			model.similarity[b][a] = sim
		}
	}
	return model
}

// splitSessions cuts a user's time-ordered events into sessions: a gap
// larger than the window starts a new session.
func splitSessions(events []models.WatchEvent, window time.Duration) [][]models.WatchEvent {
	if len(events) == 0 {
		return nil
	}
	var sessions [][]models.WatchEvent
	current := []models.WatchEvent{events[0]}
	for i := 1; i < len(events); i++ {
		if events[i].StartTime.Sub(current[len(current)-1].StartTime) > window {
			sessions = append(sessions, current)
			current = []models.WatchEvent{events[i]}
		} else {
			current = append(current, events[i])
		}
	}
	return append(sessions, current)
}
