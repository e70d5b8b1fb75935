// Moodrank - Contextual Content Ranking and Viewing Wellness Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodrank

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/moodrank/internal/config"
	"github.com/tomtom215/moodrank/internal/models"
	"github.com/tomtom215/moodrank/internal/mood"
	"github.com/tomtom215/moodrank/internal/recommend"
	"github.com/tomtom215/moodrank/internal/timeofday"
	"github.com/tomtom215/moodrank/internal/wellness"
)

// Pinger is the liveness surface of the persistence layer.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler wires the HTTP surface to the domain services.
type Handler struct {
	moods     *mood.Service
	engine    *wellness.Engine
	ranker    *recommend.Ranker
	timeModel *timeofday.Model
	db        Pinger
	cfg       *config.APIConfig
}

// NewHandler builds the API handler set.
func NewHandler(moods *mood.Service, engine *wellness.Engine, ranker *recommend.Ranker, timeModel *timeofday.Model, db Pinger, cfg *config.APIConfig) *Handler {
	return &Handler{
		moods:     moods,
		engine:    engine,
		ranker:    ranker,
		timeModel: timeModel,
		db:        db,
		cfg:       cfg,
	}
}

type setMoodRequest struct {
	UserID int    `json:"user_id" validate:"required,gt=0"`
	Mood   string `json:"mood" validate:"required"`
}

type startSessionRequest struct {
	UserID    int    `json:"user_id" validate:"required,gt=0"`
	ContentID int    `json:"content_id" validate:"required,gt=0"`
	Mood      string `json:"mood" validate:"omitempty,oneof=happy sad neutral"`
	Period    string `json:"period" validate:"omitempty,oneof=morning afternoon evening night"`
}

type updateSessionRequest struct {
	SessionID      string `json:"session_id" validate:"required"`
	ElapsedMinutes int    `json:"elapsed_minutes" validate:"gte=0"`
}

type endSessionRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	UserID    int    `json:"user_id" validate:"required,gt=0"`
	Satisfied bool   `json:"satisfied"`
}

// SetMood records a user-declared mood.
func (h *Handler) SetMood(w http.ResponseWriter, r *http.Request) {
	var req setMoodRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body", nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	set, err := h.moods.SetMood(r.Context(), req.UserID, req.Mood)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondOK(w, map[string]interface{}{
		"user_id": req.UserID,
		"mood":    set.String(),
	})
}

// GetMood returns the user's current mood profile.
func (h *Handler) GetMood(w http.ResponseWriter, r *http.Request) {
	userID, err := getIntParam(r, "user_id", 0)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	if userID <= 0 {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "user_id is required", nil)
		return
	}

	profile, err := h.moods.GetMood(r.Context(), userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondOK(w, profile)
}

// MoodTrend summarizes the user's recent mood events.
func (h *Handler) MoodTrend(w http.ResponseWriter, r *http.Request) {
	userID, err := getIntParam(r, "user_id", 0)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	if userID <= 0 {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "user_id is required", nil)
		return
	}
	hours, err := getIntParam(r, "hours", 24)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	if hours < 1 || hours > 168 {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "hours must be between 1 and 168", nil)
		return
	}

	trend, err := h.moods.GetMoodTrend(r.Context(), userID, time.Duration(hours)*time.Hour)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondOK(w, trend)
}

// Recommendations returns the ranked, throttled candidate list. An
// absent mood parameter falls back to the user's current profile mood.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	userID, err := getIntParam(r, "user_id", 0)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	if userID <= 0 {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "user_id is required", nil)
		return
	}

	count, err := getIntParam(r, "count", h.cfg.DefaultCount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	if count < 1 {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "count must be positive", nil)
		return
	}
	if count > h.cfg.MaxCount {
		count = h.cfg.MaxCount
	}

	var userMood models.Mood
	if raw := r.URL.Query().Get("mood"); raw != "" {
		parsed, err := models.ParseMood(raw)
		if err != nil {
			respondDomainError(w, err)
			return
		}
		userMood = parsed
	} else {
		profile, err := h.moods.GetMood(r.Context(), userID)
		if err != nil {
			respondDomainError(w, err)
			return
		}
		userMood = profile.CurrentMood
	}

	set, err := h.ranker.GetRecommendations(r.Context(), userID, userMood, count)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondOK(w, set)
}

// TimeInfo returns the current day period and its genre table.
func (h *Handler) TimeInfo(w http.ResponseWriter, _ *http.Request) {
	respondOK(w, h.timeModel.CurrentPeriod())
}

// Wellness returns the user's daily wellness dashboard.
func (h *Handler) Wellness(w http.ResponseWriter, r *http.Request) {
	userID, err := getIntParam(r, "user_id", 0)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	if userID <= 0 {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "user_id is required", nil)
		return
	}

	dashboard, err := h.engine.Dashboard(r.Context(), userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondOK(w, dashboard)
}

// StartSession opens a new watch session. Mood defaults to the user's
// profile mood and period to the current day period when omitted.
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body", nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	sessionMood := models.Mood(req.Mood)
	if sessionMood == "" {
		profile, err := h.moods.GetMood(r.Context(), req.UserID)
		if err != nil {
			respondDomainError(w, err)
			return
		}
		sessionMood = profile.CurrentMood
	}
	period := req.Period
	if period == "" {
		period = h.timeModel.CurrentPeriod().Period.String()
	}

	sessionID, err := h.engine.StartSession(r.Context(), req.UserID, req.ContentID, sessionMood, period)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondOK(w, map[string]interface{}{
		"session_id": sessionID,
		"mood":       sessionMood.String(),
		"period":     period,
	})
}

// UpdateSession records session progress and answers the break signal.
func (h *Handler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	var req updateSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body", nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	update, err := h.engine.UpdateProgress(r.Context(), req.SessionID, req.ElapsedMinutes)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondOK(w, update)
}

// EndSession closes a session and returns the day's recomputed scores.
func (h *Handler) EndSession(w http.ResponseWriter, r *http.Request) {
	var req endSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body", nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	summary, err := h.engine.EndSession(r.Context(), req.SessionID, req.UserID, req.Satisfied)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondOK(w, summary)
}

// Health reports overall service health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	code := http.StatusOK
	if err := h.db.Ping(r.Context()); err != nil {
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}
	respondJSON(w, code, &models.APIResponse{
		Status:   "success",
		Data:     map[string]string{"status": status},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// HealthLive is the liveness probe: the process is up.
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	respondOK(w, map[string]string{"status": "alive"})
}

// HealthReady is the readiness probe: storage must answer.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "NOT_READY", "database unavailable", err)
		return
	}
	respondOK(w, map[string]string{"status": "ready"})
}
