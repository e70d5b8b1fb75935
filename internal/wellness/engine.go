// Moodrank - Contextual Content Ranking and Viewing Wellness Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodrank

// Package wellness owns the watch-session lifecycle and the per-user
// daily risk scoring that throttles how many recommendations are
// surfaced. A session is Created on start, stays Active through
// progress polling, and becomes Ended exactly once; only the end
// transition folds the session into the daily aggregate.
package wellness

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/moodrank/internal/logging"
	"github.com/tomtom215/moodrank/internal/metrics"
	"github.com/tomtom215/moodrank/internal/models"
)

// Store is the persistence surface the engine needs.
type Store interface {
	InsertSession(ctx context.Context, s models.WatchSession) error
	GetSession(ctx context.Context, sessionID string) (models.WatchSession, error)
	UpdateSessionDuration(ctx context.Context, sessionID string, minutes int) error
	FinishSession(ctx context.Context, sessionID string, userID int, satisfied bool, endTime time.Time) (duration int, ended bool, err error)
	EnsureDailyMetric(ctx context.Context, userID int, date string) error
	ApplySessionToMetrics(ctx context.Context, userID int, date string, durationMinutes int) error
	GetDailyMetric(ctx context.Context, userID int, date string) (models.DailyMetric, bool, error)
	SetDailyScores(ctx context.Context, userID int, date string, riskScore, wellnessScore float64) error
	IncrementBreakCount(ctx context.Context, userID int, date string) error
	HasLateSession(ctx context.Context, userID int, date string) (bool, error)
	ListRiskScores(ctx context.Context, userID int, fromDate string) (map[string]float64, error)
	UpdateProfileWellness(ctx context.Context, userID int, riskScore, wellnessScore float64) error
}

// Engine tracks watch sessions and computes daily risk scores. The
// clock is injectable for tests.
type Engine struct {
	store  Store
	now    func() time.Time
	logger zerolog.Logger
}

// New builds an Engine backed by the system clock.
func New(store Store) *Engine {
	return NewWithClock(store, time.Now)
}

// NewWithClock builds an Engine with a fixed clock function.
func NewWithClock(store Store, now func() time.Time) *Engine {
	return &Engine{
		store:  store,
		now:    now,
		logger: logging.With().Str("component", "wellness").Logger(),
	}
}

func dateOf(t time.Time) string {
	return t.Format("2006-01-02")
}

// StartSession creates a new Active session and lazily creates today's
// aggregate row. The returned id is collision-free within the process:
// it composes user, content, a nanosecond timestamp, and a random
// fragment.
func (e *Engine) StartSession(ctx context.Context, userID, contentID int, mood models.Mood, period string) (string, error) {
	if mood != "" {
		parsed, err := models.ParseMood(mood.String())
		if err != nil {
			return "", err
		}
		mood = parsed
	} else {
		mood = models.MoodNeutral
	}

	now := e.now()
	sessionID := fmt.Sprintf("sess_%d_%d_%d_%s",
		userID, contentID, now.UnixNano(), uuid.New().String()[:8])

	session := models.WatchSession{
		SessionID:   sessionID,
		UserID:      userID,
		ContentID:   contentID,
		MoodAtStart: mood,
		TimePeriod:  period,
		StartTime:   now,
	}
	if err := e.store.InsertSession(ctx, session); err != nil {
		return "", err
	}
	if err := e.store.EnsureDailyMetric(ctx, userID, dateOf(now)); err != nil {
		return "", err
	}

	metrics.SessionsStarted.Inc()
	e.logger.Info().
		Str("session_id", sessionID).
		Int("user_id", userID).
		Int("content_id", contentID).
		Str("mood", mood.String()).
		Str("period", period).
		Msg("session started")
	return sessionID, nil
}

// UpdateProgress records the session's latest cumulative elapsed
// minutes and answers the break-polling signal. Safe to call
// repeatedly: progress never touches daily watch-time aggregates, only
// EndSession commits those.
func (e *Engine) UpdateProgress(ctx context.Context, sessionID string, elapsedMinutes int) (models.ProgressUpdate, error) {
	if elapsedMinutes < 0 {
		return models.ProgressUpdate{}, fmt.Errorf("%w: negative elapsed minutes", models.ErrValidation)
	}

	session, err := e.store.GetSession(ctx, sessionID)
	if err != nil {
		return models.ProgressUpdate{}, err
	}
	if err := e.store.UpdateSessionDuration(ctx, sessionID, elapsedMinutes); err != nil {
		return models.ProgressUpdate{}, err
	}

	shouldBreak := elapsedMinutes > 0 && elapsedMinutes%BreakInterval == 0

	today := dateOf(e.now())
	if shouldBreak {
		if err := e.store.IncrementBreakCount(ctx, session.UserID, today); err != nil {
			return models.ProgressUpdate{}, err
		}
		metrics.BreakSignals.Inc()
	}

	metric, _, err := e.store.GetDailyMetric(ctx, session.UserID, today)
	if err != nil {
		return models.ProgressUpdate{}, err
	}

	message := "Keep enjoying your content"
	if shouldBreak {
		message = fmt.Sprintf("You've been watching for %d minutes. Time for a short break!", elapsedMinutes)
	}

	return models.ProgressUpdate{
		SessionID:       sessionID,
		CurrentDuration: elapsedMinutes,
		ShouldBreak:     shouldBreak,
		RiskScore:       metric.RiskScore,
		Message:         message,
	}, nil
}

// EndSession marks the session Ended and folds its final duration into
// the owning day's aggregate exactly once, then recomputes and persists
// the day's risk and wellness scores. A repeated end for an
// already-Ended session returns the current scores without mutating
// aggregates.
func (e *Engine) EndSession(ctx context.Context, sessionID string, userID int, satisfied bool) (models.SessionSummary, error) {
	session, err := e.store.GetSession(ctx, sessionID)
	if err != nil {
		return models.SessionSummary{}, err
	}
	if session.UserID != userID {
		return models.SessionSummary{}, models.ErrSessionNotFound
	}

	duration, ended, err := e.store.FinishSession(ctx, sessionID, userID, satisfied, e.now())
	if err != nil {
		return models.SessionSummary{}, err
	}

	date := dateOf(session.StartTime)
	if ended {
		if err := e.store.ApplySessionToMetrics(ctx, userID, date, duration); err != nil {
			return models.SessionSummary{}, err
		}
		metrics.SessionsEnded.WithLabelValues(strconv.FormatBool(satisfied)).Inc()
	}

	risk, wellness, err := e.recomputeDay(ctx, userID, date)
	if err != nil {
		return models.SessionSummary{}, err
	}

	e.logger.Info().
		Str("session_id", sessionID).
		Int("user_id", userID).
		Int("duration_minutes", duration).
		Bool("satisfied", satisfied).
		Bool("first_end", ended).
		Float64("risk_score", risk).
		Msg("session ended")

	return models.SessionSummary{
		SessionID:     sessionID,
		Duration:      duration,
		RiskScore:     risk,
		WellnessScore: wellness,
	}, nil
}

// recomputeDay recomputes the day's risk/wellness pair from the stored
// aggregate, persists it, and mirrors it onto the user's mood profile.
func (e *Engine) recomputeDay(ctx context.Context, userID int, date string) (risk, wellness float64, err error) {
	metric, _, err := e.store.GetDailyMetric(ctx, userID, date)
	if err != nil {
		return 0, 0, err
	}
	late, err := e.store.HasLateSession(ctx, userID, date)
	if err != nil {
		return 0, 0, err
	}

	risk = ComputeRiskScore(metric.TotalWatchMinutes, metric.SessionCount, metric.MaxSessionDuration, late)
	wellness = 100 - risk

	if err := e.store.SetDailyScores(ctx, userID, date, risk, wellness); err != nil {
		return 0, 0, err
	}
	if err := e.store.UpdateProfileWellness(ctx, userID, risk, wellness); err != nil {
		return 0, 0, err
	}
	return risk, wellness, nil
}

// Throttle derives the recommendation-cap decision from today's risk
// score only. A day with no aggregate row counts as risk 0.
func (e *Engine) Throttle(ctx context.Context, userID int) (models.ThrottleDecision, error) {
	metric, _, err := e.store.GetDailyMetric(ctx, userID, dateOf(e.now()))
	if err != nil {
		return models.ThrottleDecision{}, err
	}

	percent := throttlePercent(metric.RiskScore)
	decision := models.ThrottleDecision{
		Percent:   percent,
		Throttled: percent < 100,
		RiskScore: metric.RiskScore,
	}
	switch percent {
	case 100:
		decision.Message = "Healthy viewing habits, full recommendations available"
	case 50:
		decision.Message = "Elevated viewing today, recommendations reduced by half"
	default:
		decision.Message = "High viewing risk today, recommendations limited. Consider taking a break."
	}
	return decision, nil
}

// Dashboard assembles the user's daily wellness dashboard, degrading to
// zero-valued defaults for days without data.
func (e *Engine) Dashboard(ctx context.Context, userID int) (models.Dashboard, error) {
	now := e.now()
	today := dateOf(now)

	metric, _, err := e.store.GetDailyMetric(ctx, userID, today)
	if err != nil {
		return models.Dashboard{}, err
	}

	trend, err := e.sevenDayTrend(ctx, userID, now)
	if err != nil {
		return models.Dashboard{}, err
	}

	throttle, err := e.Throttle(ctx, userID)
	if err != nil {
		return models.Dashboard{}, err
	}

	remaining := DailyGoalMinutes - metric.TotalWatchMinutes
	if remaining < 0 {
		remaining = 0
	}

	level := WellnessLevel(metric.RiskScore)
	return models.Dashboard{
		UserID:             userID,
		Date:               today,
		TodayWatchMinutes:  metric.TotalWatchMinutes,
		DailyGoal:          DailyGoalMinutes,
		RemainingGoal:      remaining,
		ExceededGoal:       metric.TotalWatchMinutes > DailyGoalMinutes,
		SessionCount:       metric.SessionCount,
		MaxSessionDuration: metric.MaxSessionDuration,
		BreakCount:         metric.BreakCount,
		RiskScore:          metric.RiskScore,
		WellnessLevel:      level,
		WellnessScore:      metric.WellnessScore,
		SevenDayTrend:      trend,
		StatusMessage:      statusMessage(level),
		Throttle:           throttle,
		Recommendations:    adviceFor(level),
	}, nil
}

// sevenDayTrend returns the risk score for today and the prior six
// calendar days, oldest first. Days lacking a stored aggregate are
// reported as risk 0.
func (e *Engine) sevenDayTrend(ctx context.Context, userID int, now time.Time) ([]models.TrendPoint, error) {
	from := now.AddDate(0, 0, -6)
	stored, err := e.store.ListRiskScores(ctx, userID, dateOf(from))
	if err != nil {
		return nil, err
	}

	trend := make([]models.TrendPoint, 0, 7)
	for i := 6; i >= 0; i-- {
		date := dateOf(now.AddDate(0, 0, -i))
		trend = append(trend, models.TrendPoint{Date: date, Score: stored[date]})
	}
	return trend, nil
}

func statusMessage(level string) string {
	switch level {
	case "Healthy":
		return "Your viewing habits look healthy. Keep it up!"
	case "Moderate":
		return "Viewing is a bit elevated today. Keep an eye on it."
	case "High":
		return "You've watched quite a lot today. Consider winding down."
	case "Very High":
		return "Heavy viewing today. A real break would do you good."
	default:
		return "Critical viewing levels today. Please step away from the screen."
	}
}

func adviceFor(level string) []string {
	switch level {
	case "Healthy":
		return []string{
			"Keep sessions under an hour for best results",
		}
	case "Moderate":
		return []string{
			"Take a 5-minute break between episodes",
			"Try to finish watching before late evening",
		}
	case "High":
		return []string{
			"Take a 15-minute break away from screens",
			"Set an end time for today's viewing",
		}
	case "Very High":
		return []string{
			"Stop after the current session",
			"Go for a short walk before watching anything else",
			"Avoid starting new content after 22:00",
		}
	default:
		return []string{
			"Stop watching for the rest of the day",
			"Plan screen-free activities for tomorrow",
			"Consider setting a daily watch-time limit",
		}
	}
}
