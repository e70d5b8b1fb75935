// Moodrank - Contextual Content Ranking and Viewing Wellness Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodrank

package wellness

import "math"

// Risk formula constants. The weights are fixed; each factor is clamped
// to [0,100] before weighting.
const (
	DailyGoalMinutes = 120
	BreakInterval    = 30

	sessionCountReference = 5

	weightGoal      = 0.4
	weightFrequency = 0.3
	weightBinge     = 0.2
	weightLateNight = 0.1
)

// ComputeRiskScore computes the 0-100 daily behavioral risk score from
// the four weighted factors, rounded to 2 decimals. Pure function.
func ComputeRiskScore(totalMinutes, sessionCount, maxSessionDuration int, hadLateSession bool) float64 {
	goalFactor := math.Min(100, float64(totalMinutes)/DailyGoalMinutes*100)
	frequencyFactor := math.Min(100, float64(sessionCount)/sessionCountReference*100)

	var bingeFactor float64
	switch {
	case maxSessionDuration < 60:
		bingeFactor = 0
	case maxSessionDuration < 180:
		bingeFactor = 50
	case maxSessionDuration < 300:
		bingeFactor = 80
	default:
		bingeFactor = 100
	}

	var lateFactor float64
	if hadLateSession {
		lateFactor = 50
	}

	risk := weightGoal*goalFactor +
		weightFrequency*frequencyFactor +
		weightBinge*bingeFactor +
		weightLateNight*lateFactor
	risk = math.Max(0, math.Min(100, risk))
	return math.Round(risk*100) / 100
}

// WellnessLevel buckets a risk score into its display label.
func WellnessLevel(risk float64) string {
	switch {
	case risk < 20:
		return "Healthy"
	case risk < 40:
		return "Moderate"
	case risk < 60:
		return "High"
	case risk < 80:
		return "Very High"
	default:
		return "Critical"
	}
}

// throttlePercent is the step function from today's risk score to the
// surfaced-recommendation percentage.
func throttlePercent(risk float64) int {
	switch {
	case risk < 60:
		return 100
	case risk <= 75:
		return 50
	default:
		return 20
	}
}
