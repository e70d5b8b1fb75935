// Moodrank - Contextual Content Ranking and Viewing Wellness Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodrank

package recommend

import (
	"context"

	"github.com/tomtom215/moodrank/internal/models"
)

// CatalogSource is the built-in placeholder recommender: a fixed
// catalog with deterministic pseudo sub-scores derived from the user
// and content ids. It stands in until a trained collaborative model is
// plugged in as an external source.
type CatalogSource struct {
	items []models.Candidate
}

// NewCatalogSource builds the placeholder source.
func NewCatalogSource() *CatalogSource {
	return &CatalogSource{items: defaultCatalog()}
}

// Name identifies the source in logs and breaker metrics.
func (s *CatalogSource) Name() string { return "catalog" }

// ListCandidates returns up to limit catalog items with deterministic
// sub-scores for the user.
func (s *CatalogSource) ListCandidates(_ context.Context, userID, limit int) ([]models.Candidate, error) {
	if limit > len(s.items) || limit <= 0 {
		limit = len(s.items)
	}

	out := make([]models.Candidate, 0, limit)
	for i, item := range s.items[:limit] {
		cf := pseudoScore(userID, item.ContentID)
		cb := pseudoScore(item.ContentID, userID+i)
		item.CFScore = &cf
		item.CBScore = &cb
		out = append(out, item)
	}
	return out, nil
}

// pseudoScore hashes two ids into a stable score in [0.3, 0.9] so
// ranking output is reproducible across calls.
func pseudoScore(a, b int) float64 {
	h := uint32(2166136261)
	for _, v := range []int{a, b} {
		h ^= uint32(v) //nolint:gosec // non-cryptographic hash
		h *= 16777619
	}
	return 0.3 + float64(h%600)/1000
}

func defaultCatalog() []models.Candidate {
	return []models.Candidate{
		{ContentID: 1, Title: "The Last Expedition", Genres: []string{"adventure", "action"}},
		{ContentID: 2, Title: "Midnight Laughs", Genres: []string{"comedy"}},
		{ContentID: 3, Title: "Echoes of Winter", Genres: []string{"drama"}},
		{ContentID: 4, Title: "Deep Ocean", Genres: []string{"documentary"}},
		{ContentID: 5, Title: "Starlight Run", Genres: []string{"sci-fi", "action"}},
		{ContentID: 6, Title: "The Quiet House", Genres: []string{"horror", "thriller"}},
		{ContentID: 7, Title: "Songs of Summer", Genres: []string{"musical", "romance"}},
		{ContentID: 8, Title: "Paper Planes", Genres: []string{"animation"}},
		{ContentID: 9, Title: "City of Glass", Genres: []string{"crime", "thriller"}},
		{ContentID: 10, Title: "Harvest Moon", Genres: []string{"romance", "drama"}},
		{ContentID: 11, Title: "Iron Circuit", Genres: []string{"action"}},
		{ContentID: 12, Title: "The Cartographer's Daughter", Genres: []string{"adventure", "drama"}},
		{ContentID: 13, Title: "Morning Brief", Genres: []string{"news"}},
		{ContentID: 14, Title: "Learn the Stars", Genres: []string{"educational", "documentary"}},
		{ContentID: 15, Title: "Five Minute Tales", Genres: []string{"short_film", "animation"}},
		{ContentID: 16, Title: "Slow Rivers", Genres: []string{"relaxing", "documentary"}},
		{ContentID: 17, Title: "The Understudy", Genres: []string{"drama", "musical"}},
		{ContentID: 18, Title: "Neon Chase", Genres: []string{"action", "sci-fi"}},
		{ContentID: 19, Title: "Two Tickets", Genres: []string{"comedy", "romance"}},
		{ContentID: 20, Title: "The Collector", Genres: []string{"thriller", "crime"}},
		{ContentID: 21, Title: "Beneath the Ice", Genres: []string{"documentary", "adventure"}},
		{ContentID: 22, Title: "Giggle Factory", Genres: []string{"comedy", "animation"}},
		{ContentID: 23, Title: "The Long Goodbye", Genres: []string{"melodrama", "drama"}},
		{ContentID: 24, Title: "Static", Genres: []string{"horror"}},
	}
}
