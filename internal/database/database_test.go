// Moodrank - Contextual Content Ranking and Viewing Wellness Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodrank

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/moodrank/internal/config"
	"github.com/tomtom215/moodrank/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(&config.DatabaseConfig{Path: "", Threads: 1})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close database: %v", err)
		}
	})
	return db
}

func TestNew_SchemaIdempotent(t *testing.T) {
	db := testDB(t)

	// Re-running the DDL against an initialized database must not fail.
	if err := db.initialize(); err != nil {
		t.Fatalf("second initialize failed: %v", err)
	}
	if err := db.Ping(context.Background()); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
}

func TestSessionLifecycle(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	start := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	session := models.WatchSession{
		SessionID:   "sess_1_42_test",
		UserID:      1,
		ContentID:   42,
		MoodAtStart: models.MoodHappy,
		TimePeriod:  "afternoon",
		StartTime:   start,
	}
	if err := db.InsertSession(ctx, session); err != nil {
		t.Fatalf("InsertSession failed: %v", err)
	}

	got, err := db.GetSession(ctx, "sess_1_42_test")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.UserID != 1 || got.ContentID != 42 || got.MoodAtStart != models.MoodHappy {
		t.Errorf("GetSession = %+v", got)
	}
	if got.Completed || got.EndTime != nil || got.DurationMinutes != 0 {
		t.Errorf("new session not in Active zero state: %+v", got)
	}

	if err := db.UpdateSessionDuration(ctx, "sess_1_42_test", 25); err != nil {
		t.Fatalf("UpdateSessionDuration failed: %v", err)
	}
	// The stored duration never decreases.
	if err := db.UpdateSessionDuration(ctx, "sess_1_42_test", 10); err != nil {
		t.Fatalf("UpdateSessionDuration failed: %v", err)
	}
	got, err = db.GetSession(ctx, "sess_1_42_test")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.DurationMinutes != 25 {
		t.Errorf("DurationMinutes = %d, want 25 (no decrease)", got.DurationMinutes)
	}

	end := start.Add(25 * time.Minute)
	duration, ended, err := db.FinishSession(ctx, "sess_1_42_test", 1, true, end)
	if err != nil {
		t.Fatalf("FinishSession failed: %v", err)
	}
	if !ended || duration != 25 {
		t.Errorf("FinishSession = (%d, %v), want (25, true)", duration, ended)
	}

	// The second finish reports that no transition happened.
	_, ended, err = db.FinishSession(ctx, "sess_1_42_test", 1, true, end)
	if err != nil {
		t.Fatalf("second FinishSession failed: %v", err)
	}
	if ended {
		t.Error("second FinishSession reported a state transition")
	}

	got, err = db.GetSession(ctx, "sess_1_42_test")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if !got.Completed || got.EndTime == nil || !got.Satisfied {
		t.Errorf("ended session state = %+v", got)
	}
}

func TestSession_NotFound(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if _, err := db.GetSession(ctx, "missing"); !errors.Is(err, models.ErrSessionNotFound) {
		t.Errorf("GetSession error = %v, want ErrSessionNotFound", err)
	}
	if err := db.UpdateSessionDuration(ctx, "missing", 5); !errors.Is(err, models.ErrSessionNotFound) {
		t.Errorf("UpdateSessionDuration error = %v, want ErrSessionNotFound", err)
	}
	if _, _, err := db.FinishSession(ctx, "missing", 1, true, time.Now()); !errors.Is(err, models.ErrSessionNotFound) {
		t.Errorf("FinishSession error = %v, want ErrSessionNotFound", err)
	}
}

func TestFinishSession_UserMismatch(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	session := models.WatchSession{
		SessionID: "sess_owned", UserID: 1, ContentID: 2,
		MoodAtStart: models.MoodNeutral, TimePeriod: "evening",
		StartTime: time.Now().UTC(),
	}
	if err := db.InsertSession(ctx, session); err != nil {
		t.Fatalf("InsertSession failed: %v", err)
	}

	if _, _, err := db.FinishSession(ctx, "sess_owned", 2, true, time.Now()); !errors.Is(err, models.ErrSessionNotFound) {
		t.Errorf("FinishSession(wrong user) error = %v, want ErrSessionNotFound", err)
	}
}

func TestDailyMetrics(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	empty, found, err := db.GetDailyMetric(ctx, 1, "2026-03-10")
	if err != nil {
		t.Fatalf("GetDailyMetric failed: %v", err)
	}
	if found {
		t.Error("found a metric row for an untouched day")
	}
	// The absent-row value matches the column defaults.
	if empty.RiskScore != 0 || empty.WellnessScore != 100 {
		t.Errorf("empty day risk/wellness = %v/%v, want 0/100",
			empty.RiskScore, empty.WellnessScore)
	}

	// EnsureDailyMetric is idempotent.
	for i := 0; i < 2; i++ {
		if err := db.EnsureDailyMetric(ctx, 1, "2026-03-10"); err != nil {
			t.Fatalf("EnsureDailyMetric failed: %v", err)
		}
	}

	// Folds accumulate atomically.
	if err := db.ApplySessionToMetrics(ctx, 1, "2026-03-10", 40); err != nil {
		t.Fatalf("ApplySessionToMetrics failed: %v", err)
	}
	if err := db.ApplySessionToMetrics(ctx, 1, "2026-03-10", 25); err != nil {
		t.Fatalf("ApplySessionToMetrics failed: %v", err)
	}

	metric, found, err := db.GetDailyMetric(ctx, 1, "2026-03-10")
	if err != nil || !found {
		t.Fatalf("GetDailyMetric: found=%v err=%v", found, err)
	}
	if metric.TotalWatchMinutes != 65 {
		t.Errorf("TotalWatchMinutes = %d, want 65", metric.TotalWatchMinutes)
	}
	if metric.SessionCount != 2 {
		t.Errorf("SessionCount = %d, want 2", metric.SessionCount)
	}
	if metric.MaxSessionDuration != 40 {
		t.Errorf("MaxSessionDuration = %d, want 40", metric.MaxSessionDuration)
	}

	if err := db.SetDailyScores(ctx, 1, "2026-03-10", 33.5, 66.5); err != nil {
		t.Fatalf("SetDailyScores failed: %v", err)
	}
	if err := db.IncrementBreakCount(ctx, 1, "2026-03-10"); err != nil {
		t.Fatalf("IncrementBreakCount failed: %v", err)
	}

	metric, _, err = db.GetDailyMetric(ctx, 1, "2026-03-10")
	if err != nil {
		t.Fatalf("GetDailyMetric failed: %v", err)
	}
	if metric.RiskScore != 33.5 || metric.WellnessScore != 66.5 {
		t.Errorf("scores = %v/%v, want 33.5/66.5", metric.RiskScore, metric.WellnessScore)
	}
	if metric.BreakCount != 1 {
		t.Errorf("BreakCount = %d, want 1", metric.BreakCount)
	}
}

func TestListRiskScores(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	days := map[string]float64{
		"2026-03-08": 10,
		"2026-03-09": 20,
		"2026-03-10": 30,
	}
	for date, risk := range days {
		if err := db.EnsureDailyMetric(ctx, 1, date); err != nil {
			t.Fatal(err)
		}
		if err := db.SetDailyScores(ctx, 1, date, risk, 100-risk); err != nil {
			t.Fatal(err)
		}
	}

	scores, err := db.ListRiskScores(ctx, 1, "2026-03-09")
	if err != nil {
		t.Fatalf("ListRiskScores failed: %v", err)
	}
	if len(scores) != 2 {
		t.Fatalf("got %d days, want 2 (cutoff applied)", len(scores))
	}
	if scores["2026-03-09"] != 20 || scores["2026-03-10"] != 30 {
		t.Errorf("scores = %v", scores)
	}
}

func TestHasLateSession(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	insert := func(id string, start time.Time) {
		t.Helper()
		err := db.InsertSession(ctx, models.WatchSession{
			SessionID: id, UserID: 1, ContentID: 1,
			MoodAtStart: models.MoodNeutral, TimePeriod: "night",
			StartTime: start,
		})
		if err != nil {
			t.Fatalf("InsertSession failed: %v", err)
		}
	}

	// 14:00 is a healthy hour.
	insert("sess_day", time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC))
	late, err := db.HasLateSession(ctx, 1, "2026-03-10")
	if err != nil {
		t.Fatalf("HasLateSession failed: %v", err)
	}
	if late {
		t.Error("afternoon session flagged as late")
	}

	// 23:15 is in the unhealthy window.
	insert("sess_late", time.Date(2026, 3, 10, 23, 15, 0, 0, time.UTC))
	late, err = db.HasLateSession(ctx, 1, "2026-03-10")
	if err != nil {
		t.Fatalf("HasLateSession failed: %v", err)
	}
	if !late {
		t.Error("23:15 session not flagged as late")
	}

	// 05:30 the next day counts for that day.
	insert("sess_early", time.Date(2026, 3, 11, 5, 30, 0, 0, time.UTC))
	late, err = db.HasLateSession(ctx, 1, "2026-03-11")
	if err != nil {
		t.Fatalf("HasLateSession failed: %v", err)
	}
	if !late {
		t.Error("05:30 session not flagged as late")
	}
}

func TestAffinityRepository(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	count, err := db.CountAffinities(ctx)
	if err != nil {
		t.Fatalf("CountAffinities failed: %v", err)
	}
	if count != 0 {
		t.Errorf("fresh table count = %d, want 0", count)
	}

	seed := []models.AffinityEntry{
		{Mood: models.MoodHappy, Genre: "comedy", Score: 0.95},
		{Mood: models.MoodSad, Genre: "drama", Score: 0.95},
	}
	if err := db.SeedAffinities(ctx, seed); err != nil {
		t.Fatalf("SeedAffinities failed: %v", err)
	}
	// Seeding again is a no-op, not a conflict.
	if err := db.SeedAffinities(ctx, seed); err != nil {
		t.Fatalf("second SeedAffinities failed: %v", err)
	}

	entries, err := db.ListAffinities(ctx)
	if err != nil {
		t.Fatalf("ListAffinities failed: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("got %d entries, want 2", len(entries))
	}

	// Upsert replaces the stored score.
	if err := db.UpsertAffinity(ctx, models.AffinityEntry{
		Mood: models.MoodHappy, Genre: "comedy", Score: 0.5,
	}); err != nil {
		t.Fatalf("UpsertAffinity failed: %v", err)
	}
	entries, err = db.ListAffinities(ctx)
	if err != nil {
		t.Fatalf("ListAffinities failed: %v", err)
	}
	for _, e := range entries {
		if e.Mood == models.MoodHappy && e.Genre == "comedy" && e.Score != 0.5 {
			t.Errorf("upserted score = %v, want 0.5", e.Score)
		}
	}
}

func TestMoodRepository(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	// Missing profile degrades to the neutral default.
	profile, err := db.GetMoodProfile(ctx, 1)
	if err != nil {
		t.Fatalf("GetMoodProfile failed: %v", err)
	}
	if !profile.IsDefault || profile.CurrentMood != models.MoodNeutral {
		t.Errorf("default profile = %+v", profile)
	}

	if err := db.UpsertMoodProfile(ctx, 1, models.MoodHappy, now); err != nil {
		t.Fatalf("UpsertMoodProfile failed: %v", err)
	}
	if err := db.UpsertMoodProfile(ctx, 1, models.MoodSad, now.Add(time.Hour)); err != nil {
		t.Fatalf("second UpsertMoodProfile failed: %v", err)
	}

	profile, err = db.GetMoodProfile(ctx, 1)
	if err != nil {
		t.Fatalf("GetMoodProfile failed: %v", err)
	}
	if profile.IsDefault || profile.CurrentMood != models.MoodSad {
		t.Errorf("profile after upserts = %+v", profile)
	}

	if err := db.UpdateProfileWellness(ctx, 1, 42.5, 57.5); err != nil {
		t.Fatalf("UpdateProfileWellness failed: %v", err)
	}
	profile, _ = db.GetMoodProfile(ctx, 1)
	if profile.RiskScore != 42.5 || profile.WellnessScore != 57.5 {
		t.Errorf("wellness cache = %v/%v, want 42.5/57.5", profile.RiskScore, profile.WellnessScore)
	}

	for i, m := range []models.Mood{models.MoodHappy, models.MoodSad} {
		err := db.InsertMoodEvent(ctx, models.MoodEvent{
			UserID:     1,
			Mood:       m,
			Confidence: models.ConfidenceUserInput,
			Timestamp:  now.Add(time.Duration(i) * time.Hour),
			Source:     models.MoodSourceUserInput,
		})
		if err != nil {
			t.Fatalf("InsertMoodEvent failed: %v", err)
		}
	}

	events, err := db.ListMoodEvents(ctx, 1, now)
	if err != nil {
		t.Fatalf("ListMoodEvents failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	// Newest first.
	if events[0].Mood != models.MoodSad {
		t.Errorf("first event = %s, want sad (newest)", events[0].Mood)
	}
	if events[0].MoodID == events[1].MoodID {
		t.Error("mood ids are not unique")
	}
}
