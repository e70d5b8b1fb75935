// Moodrank - Contextual Content Ranking and Viewing Wellness Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodrank

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/moodrank/internal/metrics"
	"github.com/tomtom215/moodrank/internal/models"
)

// CountAffinities returns the number of persisted affinity rows.
func (db *DB) CountAffinities(ctx context.Context) (int, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	start := time.Now()
	var count int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM mood_affinity`).Scan(&count)
	metrics.ObserveDBQuery("count", "mood_affinity", start, err)
	if err != nil {
		return 0, fmt.Errorf("count affinities: %w", err)
	}
	return count, nil
}

// ListAffinities returns all persisted affinity rows.
func (db *DB) ListAffinities(ctx context.Context) ([]models.AffinityEntry, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT mood, genre, affinity_score FROM mood_affinity`)
	metrics.ObserveDBQuery("select", "mood_affinity", start, err)
	if err != nil {
		return nil, fmt.Errorf("query affinities: %w", err)
	}
	defer rows.Close()

	var entries []models.AffinityEntry
	for rows.Next() {
		var e models.AffinityEntry
		if err := rows.Scan(&e.Mood, &e.Genre, &e.Score); err != nil {
			return nil, fmt.Errorf("scan affinity: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate affinities: %w", err)
	}
	return entries, nil
}

// UpsertAffinity inserts or replaces one (mood, genre) affinity score.
func (db *DB) UpsertAffinity(ctx context.Context, entry models.AffinityEntry) error {
	ctx, cancel := opContext(ctx)
	defer cancel()

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO mood_affinity (mood, genre, affinity_score)
		VALUES (?, ?, ?)
		ON CONFLICT (mood, genre) DO UPDATE SET affinity_score = excluded.affinity_score
	`, entry.Mood.String(), entry.Genre, entry.Score)
	metrics.ObserveDBQuery("upsert", "mood_affinity", start, err)
	if err != nil {
		return fmt.Errorf("upsert affinity (%s, %s): %w", entry.Mood, entry.Genre, err)
	}
	return nil
}

// SeedAffinities bulk-inserts the seed matrix. Callers only invoke this
// when the table is empty; after first boot the store is authoritative.
func (db *DB) SeedAffinities(ctx context.Context, entries []models.AffinityEntry) error {
	ctx, cancel := opContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	start := time.Now()
	for _, e := range entries {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO mood_affinity (mood, genre, affinity_score)
			VALUES (?, ?, ?)
			ON CONFLICT (mood, genre) DO NOTHING
		`, e.Mood.String(), e.Genre, e.Score); err != nil {
			metrics.ObserveDBQuery("seed", "mood_affinity", start, err)
			return fmt.Errorf("seed affinity (%s, %s): %w", e.Mood, e.Genre, err)
		}
	}

	err = tx.Commit()
	metrics.ObserveDBQuery("seed", "mood_affinity", start, err)
	if err != nil {
		return fmt.Errorf("commit seed transaction: %w", err)
	}
	return nil
}
