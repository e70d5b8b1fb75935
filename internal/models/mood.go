// Moodrank - Contextual Content Ranking and Viewing Wellness Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodrank

// Package models defines the domain types shared across Moodrank
// components: mood profiles and events, affinity entries, watch
// sessions, daily wellness metrics, and ranking candidates.
package models

import (
	"fmt"
	"strings"
	"time"
)

// Mood is a user's declared or inferred emotional state.
type Mood string

// Recognized moods. Identity fields are validated strictly; only
// scoring lookups fall back to neutral defaults.
const (
	MoodHappy   Mood = "happy"
	MoodSad     Mood = "sad"
	MoodNeutral Mood = "neutral"
)

// ParseMood normalizes and validates a mood string.
func ParseMood(s string) (Mood, error) {
	m := Mood(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case MoodHappy, MoodSad, MoodNeutral:
		return m, nil
	}
	return "", fmt.Errorf("%w: unrecognized mood %q", ErrValidation, s)
}

// String returns the mood as a plain string.
func (m Mood) String() string { return string(m) }

// Mood event sources.
const (
	MoodSourceUserInput = "user_input"
	MoodSourceInferred  = "inferred"
)

// Mood event confidence levels: direct input is trusted more than
// behavioral inference.
const (
	ConfidenceUserInput = 0.95
	ConfidenceInferred  = 0.65
)

// MoodProfile is the current mood summary for a user, one row per user.
// WellnessScore and RiskScore are cached copies of the latest daily
// metric, refreshed whenever a session ends.
type MoodProfile struct {
	UserID        int       `json:"user_id"`
	CurrentMood   Mood      `json:"current_mood"`
	LastUpdated   time.Time `json:"mood_last_updated"`
	WellnessScore float64   `json:"wellness_score"`
	RiskScore     float64   `json:"addiction_risk_score"`

	// IsDefault is true when no profile row exists and neutral
	// defaults were returned instead.
	IsDefault bool `json:"is_default,omitempty"`
}

// MoodEvent is one append-only mood observation. Immutable once written.
type MoodEvent struct {
	MoodID     int64     `json:"mood_id"`
	UserID     int       `json:"user_id"`
	Mood       Mood      `json:"mood"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
	Source     string    `json:"source"`
}

// MoodTrend summarizes recent mood events over a lookback window.
type MoodTrend struct {
	DominantMood Mood         `json:"dominant_mood"`
	Counts       map[Mood]int `json:"counts"`
	TrendMessage string       `json:"trend_message"`
	EntryCount   int          `json:"entry_count"`
}
