// Moodrank - Contextual Content Ranking and Viewing Wellness Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodrank

// Package api provides the HTTP surface of Moodrank using the Chi
// router: mood, recommendation, session lifecycle, and wellness
// endpoints under /api/v1, plus health probes and Prometheus metrics.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router assembles the full HTTP handler tree.
type Router struct {
	handler    *Handler
	middleware *MiddlewareConfig
}

// NewRouter builds a Router from the handler set and middleware config.
func NewRouter(handler *Handler, middleware *MiddlewareConfig) *Router {
	return &Router{handler: handler, middleware: middleware}
}

// Setup configures all routes and returns the root handler.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.middleware.CORS())

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.middleware.RateLimit())
		r.Use(PrometheusMetrics)

		r.Post("/mood", router.handler.SetMood)
		r.Get("/mood", router.handler.GetMood)
		r.Get("/mood-trend", router.handler.MoodTrend)

		r.Get("/recommendations", router.handler.Recommendations)
		r.Get("/time-info", router.handler.TimeInfo)
		r.Get("/wellness", router.handler.Wellness)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/start", router.handler.StartSession)
			r.Post("/update", router.handler.UpdateSession)
			r.Post("/end", router.handler.EndSession)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
