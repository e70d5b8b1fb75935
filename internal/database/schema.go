// Moodrank - Contextual Content Ranking and Viewing Wellness Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodrank

package database

// schemaStatements returns the DDL for the five core tables, executed
// in order at startup. All statements are idempotent.
//
// DuckDB does not support IDENTITY with PRIMARY KEY, so auto-increment
// ids use explicit sequences.
func schemaStatements() []string {
	return []string{
		`CREATE SEQUENCE IF NOT EXISTS seq_mood_history START 1;`,
		`CREATE SEQUENCE IF NOT EXISTS seq_addiction_metrics START 1;`,

		`CREATE TABLE IF NOT EXISTS user_mood_profile (
			user_id INTEGER PRIMARY KEY,
			current_mood TEXT NOT NULL,
			mood_last_updated TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			wellness_score DOUBLE DEFAULT 100.0,
			addiction_risk_score DOUBLE DEFAULT 0.0
		);`,

		`CREATE TABLE IF NOT EXISTS mood_history (
			mood_id BIGINT PRIMARY KEY DEFAULT nextval('seq_mood_history'),
			user_id INTEGER NOT NULL,
			mood TEXT NOT NULL,
			confidence DOUBLE NOT NULL,
			timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			source TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_mood_history_user ON mood_history(user_id);`,

		`CREATE TABLE IF NOT EXISTS mood_affinity (
			mood TEXT NOT NULL,
			genre TEXT NOT NULL,
			affinity_score DOUBLE NOT NULL,
			PRIMARY KEY (mood, genre)
		);`,

		`CREATE TABLE IF NOT EXISTS watch_sessions (
			session_id TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL,
			content_id INTEGER NOT NULL,
			mood_at_start TEXT,
			time_period TEXT,
			start_time TIMESTAMP NOT NULL,
			end_time TIMESTAMP,
			duration_minutes INTEGER DEFAULT 0,
			completed BOOLEAN DEFAULT FALSE,
			user_satisfied BOOLEAN DEFAULT FALSE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_ws_user ON watch_sessions(user_id);`,

		`CREATE TABLE IF NOT EXISTS addiction_metrics (
			metric_id BIGINT PRIMARY KEY DEFAULT nextval('seq_addiction_metrics'),
			user_id INTEGER NOT NULL,
			date DATE NOT NULL,
			total_watch_minutes INTEGER DEFAULT 0,
			session_count INTEGER DEFAULT 0,
			max_session_duration INTEGER DEFAULT 0,
			addiction_risk_score DOUBLE DEFAULT 0.0,
			wellness_score DOUBLE DEFAULT 100.0,
			break_count INTEGER DEFAULT 0,
			UNIQUE(user_id, date)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_am_user_date ON addiction_metrics(user_id, date);`,
	}
}
