// Moodrank - Contextual Content Ranking and Viewing Wellness Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodrank

package models

// AffinityEntry is one learned (mood, genre) affinity score.
// The 0.5 neutral default is never persisted: an absent row means
// "unknown", not "low affinity".
type AffinityEntry struct {
	Mood  Mood    `json:"mood"`
	Genre string  `json:"genre"`
	Score float64 `json:"affinity_score"`
}

// GenreScore pairs a genre with a score, used for top-N genre queries.
type GenreScore struct {
	Genre string  `json:"genre"`
	Score float64 `json:"score"`
}

// DiversityReport summarizes the genre diversity of a content list.
// Entropy is Shannon entropy over the genre frequency distribution,
// natural log, 0 for an empty list.
type DiversityReport struct {
	UniqueGenreCount int     `json:"unique_genres_count"`
	GenreEntropy     float64 `json:"genre_entropy"`
	AvgAffinity      float64 `json:"avg_affinity"`
}

// Candidate is an unscored content item offered for ranking. Ephemeral,
// never persisted. CFScore/CBScore are nil when the source supplied no
// sub-score; scoring substitutes the 0.5 neutral default.
type Candidate struct {
	ContentID int      `json:"content_id"`
	Title     string   `json:"title,omitempty"`
	Genres    []string `json:"genres,omitempty"`
	CFScore   *float64 `json:"cf_score,omitempty"`
	CBScore   *float64 `json:"cb_score,omitempty"`
}

// ScoredCandidate is a Candidate annotated with its component and final
// scores, produced per ranking call.
type ScoredCandidate struct {
	Candidate

	FinalScore   float64 `json:"final_score"`
	MoodAffinity float64 `json:"mood_affinity"`
	TimeScore    float64 `json:"time_score"`
}

// RecommendationSet is the result of one ranking call.
type RecommendationSet struct {
	UserID          int               `json:"user_id"`
	Requested       int               `json:"requested"`
	Returned        int               `json:"returned"`
	Throttled       bool              `json:"throttled"`
	ThrottleMessage string            `json:"throttle_message"`
	Recommendations []ScoredCandidate `json:"recommendations"`
}
