// Moodrank - Contextual Content Ranking and Viewing Wellness Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodrank

// Package main is the entry point for the Moodrank server.
//
// Moodrank is a contextual content-ranking service. It fuses
// collaborative, content, mood-affinity, and time-of-day signals into
// one ranked recommendation list, and throttles how much of that list
// is surfaced based on a per-user daily viewing risk score.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Koanf v2 layered config (defaults, YAML, env vars)
//  2. Logging: zerolog, JSON or console format
//  3. Database: DuckDB with the five core tables
//  4. Domain services: affinity table, time model, wellness engine,
//     mood service, ensemble ranker
//  5. HTTP server: Chi router under /api/v1, plus /metrics
//
// # Configuration
//
// Environment variables use the MOODRANK_ prefix, e.g.
// MOODRANK_SERVER_PORT=8080 overrides server.port. An optional
// config.yaml (or CONFIG_PATH) sits between defaults and env vars.
//
// # Signal Handling
//
// The server shuts down gracefully on SIGINT and SIGTERM: it stops
// accepting connections, drains in-flight requests for up to 10
// seconds, and closes the database.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/moodrank/internal/affinity"
	"github.com/tomtom215/moodrank/internal/api"
	"github.com/tomtom215/moodrank/internal/config"
	"github.com/tomtom215/moodrank/internal/database"
	"github.com/tomtom215/moodrank/internal/logging"
	"github.com/tomtom215/moodrank/internal/mood"
	"github.com/tomtom215/moodrank/internal/recommend"
	"github.com/tomtom215/moodrank/internal/timeofday"
	"github.com/tomtom215/moodrank/internal/wellness"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Int("port", cfg.Server.Port).
		Msg("Starting Moodrank")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	ctx := context.Background()

	table, err := affinity.New(ctx, db)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize affinity table")
	}

	timeModel := timeofday.New()
	engine := wellness.New(db)
	moods := mood.New(db)

	sources := []recommend.Source{
		recommend.WithBreaker(
			recommend.NewCatalogSource(),
			uint32(cfg.Recommend.BreakerMaxFailures), //nolint:gosec // validated >= 1
			cfg.Recommend.BreakerCooldown,
		),
		recommend.WithBreaker(
			recommend.NewHistorySource(db),
			uint32(cfg.Recommend.BreakerMaxFailures), //nolint:gosec // validated >= 1
			cfg.Recommend.BreakerCooldown,
		),
	}
	ranker := recommend.New(sources, table, timeModel, engine, cfg.Recommend.SourceLimit)

	handler := api.NewHandler(moods, engine, ranker, timeModel, db, &cfg.API)
	router := api.NewRouter(handler, &api.MiddlewareConfig{
		CORSAllowedOrigins: cfg.API.CORSAllowedOrigins,
		RateLimitRequests:  cfg.API.RateLimitRequests,
		RateLimitWindow:    cfg.API.RateLimitWindow,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("HTTP server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("Graceful shutdown failed")
	}

	logging.Info().Msg("Application stopped gracefully")
}
