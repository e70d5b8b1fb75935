// Moodrank - Contextual Content Ranking and Viewing Wellness Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodrank

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/moodrank/internal/metrics"
	"github.com/tomtom215/moodrank/internal/models"
)

// InsertSession persists a newly started watch session.
func (db *DB) InsertSession(ctx context.Context, s models.WatchSession) error {
	ctx, cancel := opContext(ctx)
	defer cancel()

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO watch_sessions
			(session_id, user_id, content_id, mood_at_start, time_period, start_time, duration_minutes, completed, user_satisfied)
		VALUES (?, ?, ?, ?, ?, ?, 0, FALSE, FALSE)
	`, s.SessionID, s.UserID, s.ContentID, s.MoodAtStart.String(), s.TimePeriod, s.StartTime)
	metrics.ObserveDBQuery("insert", "watch_sessions", start, err)
	if err != nil {
		return fmt.Errorf("insert session %s: %w", s.SessionID, err)
	}
	return nil
}

// GetSession returns one session row.
// Returns models.ErrSessionNotFound when the id is unknown.
func (db *DB) GetSession(ctx context.Context, sessionID string) (models.WatchSession, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	start := time.Now()
	var (
		s       models.WatchSession
		endTime sql.NullTime
	)
	err := db.conn.QueryRowContext(ctx, `
		SELECT session_id, user_id, content_id, mood_at_start, time_period,
		       start_time, end_time, duration_minutes, completed, user_satisfied
		FROM watch_sessions
		WHERE session_id = ?
	`, sessionID).Scan(&s.SessionID, &s.UserID, &s.ContentID, &s.MoodAtStart, &s.TimePeriod,
		&s.StartTime, &endTime, &s.DurationMinutes, &s.Completed, &s.Satisfied)
	metrics.ObserveDBQuery("select", "watch_sessions", start, err)

	if errors.Is(err, sql.ErrNoRows) {
		return models.WatchSession{}, models.ErrSessionNotFound
	}
	if err != nil {
		return models.WatchSession{}, fmt.Errorf("query session %s: %w", sessionID, err)
	}
	if endTime.Valid {
		s.EndTime = &endTime.Time
	}
	return s, nil
}

// UpdateSessionDuration overwrites the session's last reported
// cumulative elapsed minutes. Progress reports are overwrite-only, not
// accumulating, and the stored value never decreases.
// Returns models.ErrSessionNotFound for unknown ids.
func (db *DB) UpdateSessionDuration(ctx context.Context, sessionID string, minutes int) error {
	ctx, cancel := opContext(ctx)
	defer cancel()

	start := time.Now()
	res, err := db.conn.ExecContext(ctx, `
		UPDATE watch_sessions
		SET duration_minutes = GREATEST(duration_minutes, ?)
		WHERE session_id = ?
	`, minutes, sessionID)
	metrics.ObserveDBQuery("update", "watch_sessions", start, err)
	if err != nil {
		return fmt.Errorf("update session %s duration: %w", sessionID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update session %s duration: %w", sessionID, err)
	}
	if affected == 0 {
		return models.ErrSessionNotFound
	}
	return nil
}

// FinishSession marks a session Ended. The completed=FALSE guard makes
// the transition exactly-once: ended is reported true only for the call
// that actually flipped the flag, so the caller folds the session into
// daily aggregates at most once.
// Returns models.ErrSessionNotFound when the id is unknown or the
// session belongs to a different user.
func (db *DB) FinishSession(ctx context.Context, sessionID string, userID int, satisfied bool, endTime time.Time) (duration int, ended bool, err error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	start := time.Now()
	err = db.conn.QueryRowContext(ctx, `
		SELECT duration_minutes FROM watch_sessions
		WHERE session_id = ? AND user_id = ?
	`, sessionID, userID).Scan(&duration)
	metrics.ObserveDBQuery("select", "watch_sessions", start, err)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, models.ErrSessionNotFound
	}
	if err != nil {
		return 0, false, fmt.Errorf("query session %s for end: %w", sessionID, err)
	}

	start = time.Now()
	res, err := db.conn.ExecContext(ctx, `
		UPDATE watch_sessions
		SET end_time = ?, completed = TRUE, user_satisfied = ?
		WHERE session_id = ? AND user_id = ? AND completed = FALSE
	`, endTime, satisfied, sessionID, userID)
	metrics.ObserveDBQuery("update", "watch_sessions", start, err)
	if err != nil {
		return 0, false, fmt.Errorf("finish session %s: %w", sessionID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("finish session %s: %w", sessionID, err)
	}
	return duration, affected > 0, nil
}

// EnsureDailyMetric lazily creates the (user, day) aggregate row.
func (db *DB) EnsureDailyMetric(ctx context.Context, userID int, date string) error {
	ctx, cancel := opContext(ctx)
	defer cancel()

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO addiction_metrics (user_id, date)
		VALUES (?, ?)
		ON CONFLICT (user_id, date) DO NOTHING
	`, userID, date)
	metrics.ObserveDBQuery("insert", "addiction_metrics", start, err)
	if err != nil {
		return fmt.Errorf("ensure daily metric (%d, %s): %w", userID, date, err)
	}
	return nil
}

// ApplySessionToMetrics folds one ended session into the (user, day)
// aggregate with atomic in-place increments. No read-modify-write
// window exists, so concurrent session ends for the same day are safe.
func (db *DB) ApplySessionToMetrics(ctx context.Context, userID int, date string, durationMinutes int) error {
	if err := db.EnsureDailyMetric(ctx, userID, date); err != nil {
		return err
	}

	ctx, cancel := opContext(ctx)
	defer cancel()

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, `
		UPDATE addiction_metrics
		SET total_watch_minutes = total_watch_minutes + ?,
		    session_count = session_count + 1,
		    max_session_duration = GREATEST(max_session_duration, ?)
		WHERE user_id = ? AND date = ?
	`, durationMinutes, durationMinutes, userID, date)
	metrics.ObserveDBQuery("update", "addiction_metrics", start, err)
	if err != nil {
		return fmt.Errorf("apply session to metrics (%d, %s): %w", userID, date, err)
	}
	return nil
}

// GetDailyMetric returns the aggregate row for (user, day).
// The second return is false when no row exists.
func (db *DB) GetDailyMetric(ctx context.Context, userID int, date string) (models.DailyMetric, bool, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	start := time.Now()
	// The zero-value day mirrors the column defaults: no viewing means
	// risk 0 and wellness 100, never 0/0.
	m := models.DailyMetric{UserID: userID, Date: date, WellnessScore: 100}
	err := db.conn.QueryRowContext(ctx, `
		SELECT total_watch_minutes, session_count, max_session_duration,
		       addiction_risk_score, wellness_score, break_count
		FROM addiction_metrics
		WHERE user_id = ? AND date = ?
	`, userID, date).Scan(&m.TotalWatchMinutes, &m.SessionCount, &m.MaxSessionDuration,
		&m.RiskScore, &m.WellnessScore, &m.BreakCount)
	metrics.ObserveDBQuery("select", "addiction_metrics", start, err)

	if errors.Is(err, sql.ErrNoRows) {
		return m, false, nil
	}
	if err != nil {
		return m, false, fmt.Errorf("query daily metric (%d, %s): %w", userID, date, err)
	}
	return m, true, nil
}

// SetDailyScores persists the recomputed risk/wellness pair for the day.
func (db *DB) SetDailyScores(ctx context.Context, userID int, date string, riskScore, wellnessScore float64) error {
	ctx, cancel := opContext(ctx)
	defer cancel()

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, `
		UPDATE addiction_metrics
		SET addiction_risk_score = ?, wellness_score = ?
		WHERE user_id = ? AND date = ?
	`, riskScore, wellnessScore, userID, date)
	metrics.ObserveDBQuery("update", "addiction_metrics", start, err)
	if err != nil {
		return fmt.Errorf("set daily scores (%d, %s): %w", userID, date, err)
	}
	return nil
}

// IncrementBreakCount records one break signal on the (user, day)
// aggregate.
func (db *DB) IncrementBreakCount(ctx context.Context, userID int, date string) error {
	if err := db.EnsureDailyMetric(ctx, userID, date); err != nil {
		return err
	}

	ctx, cancel := opContext(ctx)
	defer cancel()

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, `
		UPDATE addiction_metrics
		SET break_count = break_count + 1
		WHERE user_id = ? AND date = ?
	`, userID, date)
	metrics.ObserveDBQuery("update", "addiction_metrics", start, err)
	if err != nil {
		return fmt.Errorf("increment break count (%d, %s): %w", userID, date, err)
	}
	return nil
}

// ListRiskScores returns the user's stored per-day risk scores from the
// given day onward, keyed by date. Days with no metric row are absent;
// the caller treats them as risk 0.
func (db *DB) ListRiskScores(ctx context.Context, userID int, fromDate string) (map[string]float64, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT strftime(date, '%Y-%m-%d'), addiction_risk_score
		FROM addiction_metrics
		WHERE user_id = ? AND date >= ?
	`, userID, fromDate)
	metrics.ObserveDBQuery("select", "addiction_metrics", start, err)
	if err != nil {
		return nil, fmt.Errorf("query risk trend for user %d: %w", userID, err)
	}
	defer rows.Close()

	scores := make(map[string]float64)
	for rows.Next() {
		var (
			date  string
			score float64
		)
		if err := rows.Scan(&date, &score); err != nil {
			return nil, fmt.Errorf("scan risk trend row: %w", err)
		}
		scores[date] = score
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate risk trend rows: %w", err)
	}
	return scores, nil
}

// ListWatchEvents returns (user, content, start time) projections for
// every session started at or after the cutoff, oldest first. The
// collaborative candidate source builds its co-occurrence model from
// these rows.
func (db *DB) ListWatchEvents(ctx context.Context, since time.Time) ([]models.WatchEvent, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT user_id, content_id, start_time
		FROM watch_sessions
		WHERE start_time >= ?
		ORDER BY start_time ASC
	`, since)
	metrics.ObserveDBQuery("select", "watch_sessions", start, err)
	if err != nil {
		return nil, fmt.Errorf("query watch events: %w", err)
	}
	defer rows.Close()

	var events []models.WatchEvent
	for rows.Next() {
		var e models.WatchEvent
		if err := rows.Scan(&e.UserID, &e.ContentID, &e.StartTime); err != nil {
			return nil, fmt.Errorf("scan watch event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate watch events: %w", err)
	}
	return events, nil
}

// HasLateSession reports whether any of the user's sessions on the
// given calendar day started in the unhealthy window
// [23:00, 24:00) or [00:00, 06:00).
func (db *DB) HasLateSession(ctx context.Context, userID int, date string) (bool, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	start := time.Now()
	var count int
	err := db.conn.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM watch_sessions
		WHERE user_id = ?
		  AND CAST(start_time AS DATE) = ?
		  AND (EXTRACT(hour FROM start_time) >= 23 OR EXTRACT(hour FROM start_time) < 6)
	`, userID, date).Scan(&count)
	metrics.ObserveDBQuery("select", "watch_sessions", start, err)
	if err != nil {
		return false, fmt.Errorf("query late sessions (%d, %s): %w", userID, date, err)
	}
	return count > 0, nil
}
