// Moodrank - Contextual Content Ranking and Viewing Wellness Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodrank

// Package timeofday maps wall-clock hours to day periods, each with a
// genre suitability table and a maximum recommended content duration.
package timeofday

import (
	"strings"
	"time"
)

// Period is one of the four day-period buckets. Contiguous and
// exhaustive over 24 hours; night wraps past midnight.
type Period string

const (
	PeriodMorning   Period = "morning"   // [6,12), max 30 min
	PeriodAfternoon Period = "afternoon" // [12,17), max 90 min
	PeriodEvening   Period = "evening"   // [17,22), max 180 min
	PeriodNight     Period = "night"     // [22,24) ∪ [0,6), max 45 min
)

// String returns the period as a plain string.
func (p Period) String() string { return string(p) }

// Info describes one period: display label, max recommended content
// duration, and the genre suitability sub-table.
type Info struct {
	Period      Period             `json:"period"`
	Label       string             `json:"label"`
	MaxMinutes  int                `json:"max_recommended_minutes"`
	GenreScores map[string]float64 `json:"genre_scores"`
}

// neutralScore is the fallback for genres absent from a period's table
// when the period defines no "all" catch-all entry.
const neutralScore = 0.5

var periodTable = map[Period]Info{
	PeriodMorning: {
		Period:     PeriodMorning,
		Label:      "🌅 Morning",
		MaxMinutes: 30,
		GenreScores: map[string]float64{
			"educational": 1.0,
			"news":        0.95,
			"documentary": 0.85,
			"short_film":  0.8,
			"action":      0.4,
			"horror":      0.1,
		},
	},
	PeriodAfternoon: {
		Period:     PeriodAfternoon,
		Label:      "☀️ Afternoon",
		MaxMinutes: 90,
		GenreScores: map[string]float64{
			"action":    1.0,
			"adventure": 0.95,
			"comedy":    0.9,
			"horror":    0.3,
		},
	},
	PeriodEvening: {
		Period:     PeriodEvening,
		Label:      "🌆 Evening",
		MaxMinutes: 180,
		GenreScores: map[string]float64{
			"drama":    0.95,
			"thriller": 0.9,
			"sci-fi":   0.9,
			"all":      0.8,
		},
	},
	PeriodNight: {
		Period:     PeriodNight,
		Label:      "🌙 Night",
		MaxMinutes: 45,
		GenreScores: map[string]float64{
			"relaxing":    1.0,
			"documentary": 0.9,
			"action":      0.3,
			"horror":      0.05,
		},
	},
}

// Model resolves the current period from the wall clock. The clock is
// injectable for tests.
type Model struct {
	now func() time.Time
}

// New returns a Model backed by the system clock.
func New() *Model {
	return &Model{now: time.Now}
}

// NewWithClock returns a Model with a fixed clock function.
func NewWithClock(now func() time.Time) *Model {
	return &Model{now: now}
}

// PeriodForHour maps an hour (normalized mod 24) to its period.
func PeriodForHour(hour int) Period {
	hour = ((hour % 24) + 24) % 24
	switch {
	case hour >= 6 && hour < 12:
		return PeriodMorning
	case hour >= 12 && hour < 17:
		return PeriodAfternoon
	case hour >= 17 && hour < 22:
		return PeriodEvening
	default:
		return PeriodNight
	}
}

// CurrentPeriod returns the full Info for the present hour.
func (m *Model) CurrentPeriod() Info {
	return periodTable[PeriodForHour(m.now().Hour())]
}

// GenreScoreForTime returns the current period's suitability for the
// genre: the table entry if present, the period's "all" catch-all if
// defined, else 0.5. Never fails.
func (m *Model) GenreScoreForTime(genre string) float64 {
	info := m.CurrentPeriod()
	if score, ok := info.GenreScores[strings.ToLower(strings.TrimSpace(genre))]; ok {
		return score
	}
	if score, ok := info.GenreScores["all"]; ok {
		return score
	}
	return neutralScore
}

// IsOptimalDuration reports whether the duration fits within the
// current period's recommended maximum.
func (m *Model) IsOptimalDuration(minutes int) bool {
	return minutes <= m.CurrentPeriod().MaxMinutes
}
