// Moodrank - Contextual Content Ranking and Viewing Wellness Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodrank

package models

import "time"

// WatchSession is one viewing session. A session is created Active and
// becomes Ended exactly once; duration_minutes holds the last reported
// cumulative elapsed time and never decreases.
type WatchSession struct {
	SessionID       string     `json:"session_id"`
	UserID          int        `json:"user_id"`
	ContentID       int        `json:"content_id"`
	MoodAtStart     Mood       `json:"mood_at_start"`
	TimePeriod      string     `json:"time_period"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	DurationMinutes int        `json:"duration_minutes"`
	Completed       bool       `json:"completed"`
	Satisfied       bool       `json:"user_satisfied"`
}

// WatchEvent is the minimal projection of a session used by the
// collaborative candidate source: who watched what, when.
type WatchEvent struct {
	UserID    int       `json:"user_id"`
	ContentID int       `json:"content_id"`
	StartTime time.Time `json:"start_time"`
}

// DailyMetric is the per-user per-calendar-day aggregate, created lazily
// on the first session of the day and updated only by ended sessions.
type DailyMetric struct {
	UserID             int     `json:"user_id"`
	Date               string  `json:"date"` // YYYY-MM-DD
	TotalWatchMinutes  int     `json:"total_watch_minutes"`
	SessionCount       int     `json:"session_count"`
	MaxSessionDuration int     `json:"max_session_duration"`
	RiskScore          float64 `json:"addiction_risk_score"`
	WellnessScore      float64 `json:"wellness_score"`
	BreakCount         int     `json:"break_count"`
}

// ProgressUpdate is the result of reporting session progress. It is a
// polling signal, not a state transition: repeated calls with the same
// or increasing elapsed time are safe and never touch daily aggregates.
type ProgressUpdate struct {
	SessionID       string  `json:"session_id"`
	CurrentDuration int     `json:"current_duration"`
	ShouldBreak     bool    `json:"should_break"`
	RiskScore       float64 `json:"addiction_score"`
	Message         string  `json:"message"`
}

// SessionSummary is the result of ending a session.
type SessionSummary struct {
	SessionID     string  `json:"session_id"`
	Duration      int     `json:"duration"`
	RiskScore     float64 `json:"addiction_score"`
	WellnessScore float64 `json:"wellness_score"`
}

// ThrottleDecision caps how much of a ranked list is surfaced, driven
// by today's risk score.
type ThrottleDecision struct {
	Percent   int     `json:"throttle_percent"`
	Throttled bool    `json:"throttled"`
	Message   string  `json:"message"`
	RiskScore float64 `json:"score"`
}

// TrendPoint is one day of the wellness trend.
type TrendPoint struct {
	Date  string  `json:"date"`
	Score float64 `json:"score"`
}

// Dashboard is the daily wellness dashboard for a user.
type Dashboard struct {
	UserID             int              `json:"user_id"`
	Date               string           `json:"date"`
	TodayWatchMinutes  int              `json:"today_watch_time"`
	DailyGoal          int              `json:"daily_goal"`
	RemainingGoal      int              `json:"remaining_goal"`
	ExceededGoal       bool             `json:"exceeded_goal"`
	SessionCount       int              `json:"session_count"`
	MaxSessionDuration int              `json:"max_session_duration"`
	BreakCount         int              `json:"break_count"`
	RiskScore          float64          `json:"addiction_risk_score"`
	WellnessLevel      string           `json:"addiction_level"`
	WellnessScore      float64          `json:"wellness_score"`
	SevenDayTrend      []TrendPoint     `json:"week_trend"`
	StatusMessage      string           `json:"status_message"`
	Throttle           ThrottleDecision `json:"throttle"`
	Recommendations    []string         `json:"recommendations"`
}
