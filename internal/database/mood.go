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

// UpsertMoodProfile sets the user's current mood and update time,
// creating the profile row if needed.
func (db *DB) UpsertMoodProfile(ctx context.Context, userID int, mood models.Mood, at time.Time) error {
	ctx, cancel := opContext(ctx)
	defer cancel()

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO user_mood_profile (user_id, current_mood, mood_last_updated)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			current_mood = excluded.current_mood,
			mood_last_updated = excluded.mood_last_updated
	`, userID, mood.String(), at)
	metrics.ObserveDBQuery("upsert", "user_mood_profile", start, err)
	if err != nil {
		return fmt.Errorf("upsert mood profile for user %d: %w", userID, err)
	}
	return nil
}

// GetMoodProfile returns the user's mood profile, or a neutral default
// profile (IsDefault=true) when no row exists.
func (db *DB) GetMoodProfile(ctx context.Context, userID int) (models.MoodProfile, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	start := time.Now()
	var p models.MoodProfile
	err := db.conn.QueryRowContext(ctx, `
		SELECT user_id, current_mood, mood_last_updated, wellness_score, addiction_risk_score
		FROM user_mood_profile
		WHERE user_id = ?
	`, userID).Scan(&p.UserID, &p.CurrentMood, &p.LastUpdated, &p.WellnessScore, &p.RiskScore)
	metrics.ObserveDBQuery("select", "user_mood_profile", start, err)

	if errors.Is(err, sql.ErrNoRows) {
		return models.MoodProfile{
			UserID:        userID,
			CurrentMood:   models.MoodNeutral,
			WellnessScore: 100.0,
			RiskScore:     0.0,
			IsDefault:     true,
		}, nil
	}
	if err != nil {
		return models.MoodProfile{}, fmt.Errorf("query mood profile for user %d: %w", userID, err)
	}
	return p, nil
}

// UpdateProfileWellness refreshes the cached wellness/risk scores on
// the profile row. Missing profiles are ignored: the cache is only a
// convenience copy of addiction_metrics.
func (db *DB) UpdateProfileWellness(ctx context.Context, userID int, riskScore, wellnessScore float64) error {
	ctx, cancel := opContext(ctx)
	defer cancel()

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, `
		UPDATE user_mood_profile
		SET addiction_risk_score = ?, wellness_score = ?
		WHERE user_id = ?
	`, riskScore, wellnessScore, userID)
	metrics.ObserveDBQuery("update", "user_mood_profile", start, err)
	if err != nil {
		return fmt.Errorf("update profile wellness for user %d: %w", userID, err)
	}
	return nil
}

// InsertMoodEvent appends one mood observation to the history.
func (db *DB) InsertMoodEvent(ctx context.Context, event models.MoodEvent) error {
	ctx, cancel := opContext(ctx)
	defer cancel()

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO mood_history (user_id, mood, confidence, timestamp, source)
		VALUES (?, ?, ?, ?, ?)
	`, event.UserID, event.Mood.String(), event.Confidence, event.Timestamp, event.Source)
	metrics.ObserveDBQuery("insert", "mood_history", start, err)
	if err != nil {
		return fmt.Errorf("insert mood event for user %d: %w", event.UserID, err)
	}
	return nil
}

// ListMoodEvents returns the user's mood events at or after the cutoff,
// newest first.
func (db *DB) ListMoodEvents(ctx context.Context, userID int, since time.Time) ([]models.MoodEvent, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT mood_id, user_id, mood, confidence, timestamp, source
		FROM mood_history
		WHERE user_id = ? AND timestamp >= ?
		ORDER BY timestamp DESC
	`, userID, since)
	metrics.ObserveDBQuery("select", "mood_history", start, err)
	if err != nil {
		return nil, fmt.Errorf("query mood events for user %d: %w", userID, err)
	}
	defer rows.Close()

	var events []models.MoodEvent
	for rows.Next() {
		var e models.MoodEvent
		if err := rows.Scan(&e.MoodID, &e.UserID, &e.Mood, &e.Confidence, &e.Timestamp, &e.Source); err != nil {
			return nil, fmt.Errorf("scan mood event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mood events: %w", err)
	}
	return events, nil
}
