// Moodrank - Contextual Content Ranking and Viewing Wellness Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodrank

package affinity

import "github.com/tomtom215/moodrank/internal/models"

// seedEntries returns the first-boot affinity matrix. Values are fixed
// for compatibility with pre-existing data files; after the first boot
// the store is authoritative and the seed is never consulted again.
func seedEntries() []models.AffinityEntry {
	seed := map[models.Mood]map[string]float64{
		models.MoodHappy: {
			"comedy":    0.95,
			"musical":   0.92,
			"animation": 0.88,
			"adventure": 0.85,
			"romance":   0.80,
			"action":    0.72,
			"horror":    0.15,
		},
		models.MoodSad: {
			"drama":       0.95,
			"documentary": 0.85,
			"thriller":    0.75,
			"crime":       0.70,
			"horror":      0.65,
			"romance":     0.65,
			"animation":   0.30,
		},
		models.MoodNeutral: {
			"action":      0.85,
			"sci-fi":      0.80,
			"adventure":   0.75,
			"thriller":    0.75,
			"documentary": 0.70,
			"drama":       0.65,
			"horror":      0.50,
		},
	}

	var entries []models.AffinityEntry
	for mood, byGenre := range seed {
		for genre, score := range byGenre {
			entries = append(entries, models.AffinityEntry{Mood: mood, Genre: genre, Score: score})
		}
	}
	return entries
}
