// Moodrank - Contextual Content Ranking and Viewing Wellness Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodrank

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/moodrank/internal/affinity"
	"github.com/tomtom215/moodrank/internal/config"
	"github.com/tomtom215/moodrank/internal/database"
	"github.com/tomtom215/moodrank/internal/models"
	"github.com/tomtom215/moodrank/internal/mood"
	"github.com/tomtom215/moodrank/internal/recommend"
	"github.com/tomtom215/moodrank/internal/timeofday"
	"github.com/tomtom215/moodrank/internal/wellness"
)

// envelope mirrors models.APIResponse with a raw data payload.
type envelope struct {
	Status string           `json:"status"`
	Data   json.RawMessage  `json:"data"`
	Error  *models.APIError `json:"error"`
}

// testServer assembles the full stack over an in-memory database.
func testServer(t *testing.T) http.Handler {
	t.Helper()

	db, err := database.New(&config.DatabaseConfig{Path: "", Threads: 1})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close database: %v", err)
		}
	})

	table, err := affinity.New(context.Background(), db)
	if err != nil {
		t.Fatalf("failed to build affinity table: %v", err)
	}

	timeModel := timeofday.New()
	engine := wellness.New(db)
	moods := mood.New(db)
	ranker := recommend.New(
		[]recommend.Source{recommend.NewCatalogSource(), recommend.NewHistorySource(db)},
		table, timeModel, engine, 20,
	)

	cfg := &config.APIConfig{
		DefaultCount:      10,
		MaxCount:          50,
		RateLimitRequests: 1000,
		RateLimitWindow:   time.Minute,
	}
	handler := NewHandler(moods, engine, ranker, timeModel, db, cfg)
	router := NewRouter(handler, &MiddlewareConfig{
		RateLimitRequests: 1000,
		RateLimitWindow:   time.Minute,
	})
	return router.Setup()
}

func doRequest(t *testing.T, server http.Handler, method, path string, body interface{}) (int, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("response is not the JSON envelope: %v (body: %s)", err, rec.Body.String())
	}
	return rec.Code, env
}

func decodeData(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("failed to decode data payload: %v (data: %s)", err, env.Data)
	}
}

func TestMoodEndpoints(t *testing.T) {
	server := testServer(t)

	code, env := doRequest(t, server, http.MethodPost, "/api/v1/mood",
		map[string]interface{}{"user_id": 1, "mood": "happy"})
	if code != http.StatusOK {
		t.Fatalf("POST /mood = %d, want 200 (error: %+v)", code, env.Error)
	}
	var setResp map[string]interface{}
	decodeData(t, env, &setResp)
	if setResp["mood"] != "happy" {
		t.Errorf("set mood = %v, want happy", setResp["mood"])
	}

	code, env = doRequest(t, server, http.MethodGet, "/api/v1/mood?user_id=1", nil)
	if code != http.StatusOK {
		t.Fatalf("GET /mood = %d, want 200", code)
	}
	var profile models.MoodProfile
	decodeData(t, env, &profile)
	if profile.CurrentMood != models.MoodHappy {
		t.Errorf("CurrentMood = %s, want happy", profile.CurrentMood)
	}
}

func TestSetMood_BadRequests(t *testing.T) {
	server := testServer(t)

	tests := []struct {
		name string
		body interface{}
	}{
		{"missing mood", map[string]interface{}{"user_id": 1}},
		{"missing user", map[string]interface{}{"mood": "happy"}},
		{"unknown mood", map[string]interface{}{"user_id": 1, "mood": "angry"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := doRequest(t, server, http.MethodPost, "/api/v1/mood", tt.body)
			if code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", code)
			}
			if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
				t.Errorf("error = %+v, want VALIDATION_ERROR", env.Error)
			}
		})
	}

	// Malformed JSON body.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/mood", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed JSON status = %d, want 400", rec.Code)
	}
}

func TestSessionEndpoints(t *testing.T) {
	server := testServer(t)

	code, env := doRequest(t, server, http.MethodPost, "/api/v1/sessions/start",
		map[string]interface{}{"user_id": 1, "content_id": 42, "mood": "neutral"})
	if code != http.StatusOK {
		t.Fatalf("POST /sessions/start = %d, want 200 (error: %+v)", code, env.Error)
	}
	var started map[string]interface{}
	decodeData(t, env, &started)
	sessionID, _ := started["session_id"].(string)
	if sessionID == "" {
		t.Fatal("start returned no session_id")
	}
	if started["period"] == "" {
		t.Error("start returned no period")
	}

	code, env = doRequest(t, server, http.MethodPost, "/api/v1/sessions/update",
		map[string]interface{}{"session_id": sessionID, "elapsed_minutes": 30})
	if code != http.StatusOK {
		t.Fatalf("POST /sessions/update = %d, want 200 (error: %+v)", code, env.Error)
	}
	var update models.ProgressUpdate
	decodeData(t, env, &update)
	if update.CurrentDuration != 30 {
		t.Errorf("CurrentDuration = %d, want 30", update.CurrentDuration)
	}
	if !update.ShouldBreak {
		t.Error("ShouldBreak = false at 30 minutes")
	}

	code, env = doRequest(t, server, http.MethodPost, "/api/v1/sessions/end",
		map[string]interface{}{"session_id": sessionID, "user_id": 1, "satisfied": true})
	if code != http.StatusOK {
		t.Fatalf("POST /sessions/end = %d, want 200 (error: %+v)", code, env.Error)
	}
	var summary models.SessionSummary
	decodeData(t, env, &summary)
	if summary.Duration != 30 {
		t.Errorf("Duration = %d, want 30", summary.Duration)
	}
	if summary.WellnessScore != 100-summary.RiskScore {
		t.Errorf("scores not complementary: risk %v wellness %v", summary.RiskScore, summary.WellnessScore)
	}

	// The ended session now shows up in the dashboard.
	code, env = doRequest(t, server, http.MethodGet, "/api/v1/wellness?user_id=1", nil)
	if code != http.StatusOK {
		t.Fatalf("GET /wellness = %d, want 200", code)
	}
	var dashboard models.Dashboard
	decodeData(t, env, &dashboard)
	if dashboard.TodayWatchMinutes != 30 {
		t.Errorf("TodayWatchMinutes = %d, want 30", dashboard.TodayWatchMinutes)
	}
	if dashboard.DailyGoal != 120 || dashboard.RemainingGoal != 90 {
		t.Errorf("goal = %d remaining = %d, want 120/90", dashboard.DailyGoal, dashboard.RemainingGoal)
	}
	if len(dashboard.SevenDayTrend) != 7 {
		t.Errorf("trend length = %d, want 7", len(dashboard.SevenDayTrend))
	}
}

func TestSessionEndpoints_UnknownSession(t *testing.T) {
	server := testServer(t)

	code, env := doRequest(t, server, http.MethodPost, "/api/v1/sessions/update",
		map[string]interface{}{"session_id": "sess_missing", "elapsed_minutes": 5})
	if code != http.StatusNotFound {
		t.Fatalf("update unknown session = %d, want 404", code)
	}
	if env.Error == nil || env.Error.Code != "NOT_FOUND" {
		t.Errorf("error = %+v, want NOT_FOUND", env.Error)
	}

	code, env = doRequest(t, server, http.MethodPost, "/api/v1/sessions/end",
		map[string]interface{}{"session_id": "sess_missing", "user_id": 1, "satisfied": false})
	if code != http.StatusNotFound {
		t.Fatalf("end unknown session = %d, want 404", code)
	}
	if env.Error == nil || env.Error.Code != "NOT_FOUND" {
		t.Errorf("error = %+v, want NOT_FOUND", env.Error)
	}
}

func TestRecommendationsEndpoint(t *testing.T) {
	server := testServer(t)

	code, env := doRequest(t, server, http.MethodGet,
		"/api/v1/recommendations?user_id=1&mood=happy&count=5", nil)
	if code != http.StatusOK {
		t.Fatalf("GET /recommendations = %d, want 200 (error: %+v)", code, env.Error)
	}
	var set models.RecommendationSet
	decodeData(t, env, &set)
	if set.Requested != 5 || set.Returned != 5 {
		t.Errorf("Requested/Returned = %d/%d, want 5/5", set.Requested, set.Returned)
	}
	for i := 1; i < len(set.Recommendations); i++ {
		if set.Recommendations[i].FinalScore > set.Recommendations[i-1].FinalScore {
			t.Error("recommendations not sorted by final score")
			break
		}
	}

	// Absent mood falls back to the profile; a new user defaults to
	// neutral and still gets results.
	code, env = doRequest(t, server, http.MethodGet, "/api/v1/recommendations?user_id=9", nil)
	if code != http.StatusOK {
		t.Fatalf("GET /recommendations without mood = %d, want 200 (error: %+v)", code, env.Error)
	}
	decodeData(t, env, &set)
	if set.Requested != 10 {
		t.Errorf("default count = %d, want 10", set.Requested)
	}
}

func TestRecommendationsEndpoint_CountClamped(t *testing.T) {
	server := testServer(t)

	// Over-limit counts are capped at the configured maximum, not
	// rejected.
	code, env := doRequest(t, server, http.MethodGet,
		"/api/v1/recommendations?user_id=1&count=999", nil)
	if code != http.StatusOK {
		t.Fatalf("GET /recommendations count=999 = %d, want 200 (error: %+v)", code, env.Error)
	}
	var set models.RecommendationSet
	decodeData(t, env, &set)
	if set.Requested != 50 {
		t.Errorf("Requested = %d, want clamped 50", set.Requested)
	}
}

func TestRecommendationsEndpoint_BadRequests(t *testing.T) {
	server := testServer(t)

	tests := []struct {
		name string
		path string
	}{
		{"missing user", "/api/v1/recommendations"},
		{"malformed user", "/api/v1/recommendations?user_id=abc"},
		{"count zero", "/api/v1/recommendations?user_id=1&count=0"},
		{"malformed count", "/api/v1/recommendations?user_id=1&count=abc"},
		{"unknown mood", "/api/v1/recommendations?user_id=1&mood=angry"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := doRequest(t, server, http.MethodGet, tt.path, nil)
			if code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", code)
			}
			if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
				t.Errorf("error = %+v, want VALIDATION_ERROR", env.Error)
			}
		})
	}
}

func TestTimeInfoEndpoint(t *testing.T) {
	server := testServer(t)

	code, env := doRequest(t, server, http.MethodGet, "/api/v1/time-info", nil)
	if code != http.StatusOK {
		t.Fatalf("GET /time-info = %d, want 200", code)
	}
	var info timeofday.Info
	decodeData(t, env, &info)
	if info.Period == "" || info.Label == "" {
		t.Errorf("incomplete period info: %+v", info)
	}
	if info.MaxMinutes <= 0 {
		t.Errorf("MaxMinutes = %d, want positive", info.MaxMinutes)
	}
	if len(info.GenreScores) == 0 {
		t.Error("period has no genre table")
	}
}

func TestMoodTrendEndpoint(t *testing.T) {
	server := testServer(t)

	code, env := doRequest(t, server, http.MethodGet, "/api/v1/mood-trend?user_id=1", nil)
	if code != http.StatusOK {
		t.Fatalf("GET /mood-trend = %d, want 200", code)
	}
	var trend models.MoodTrend
	decodeData(t, env, &trend)
	if trend.TrendMessage != "No recent mood data" {
		t.Errorf("TrendMessage = %q for a user with no events", trend.TrendMessage)
	}

	code, _ = doRequest(t, server, http.MethodGet, "/api/v1/mood-trend?user_id=1&hours=500", nil)
	if code != http.StatusBadRequest {
		t.Errorf("hours=500 status = %d, want 400", code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	server := testServer(t)

	for _, path := range []string{"/api/v1/health", "/api/v1/health/live", "/api/v1/health/ready"} {
		code, env := doRequest(t, server, http.MethodGet, path, nil)
		if code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, code)
		}
		if env.Status != "success" {
			t.Errorf("GET %s status = %q, want success", path, env.Status)
		}
	}
}
