// Moodrank - Contextual Content Ranking and Viewing Wellness Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodrank

// Package metrics provides Prometheus instrumentation for Moodrank:
// session lifecycle counters, ranking throughput, throttling decisions,
// and database query latency. All collectors are registered with the
// default registry and exposed at /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Session lifecycle
	SessionsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "moodrank_sessions_started_total",
			Help: "Total number of watch sessions started",
		},
	)

	SessionsEnded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodrank_sessions_ended_total",
			Help: "Total number of watch sessions ended",
		},
		[]string{"satisfied"},
	)

	BreakSignals = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "moodrank_break_signals_total",
			Help: "Total number of break recommendations issued by progress polling",
		},
	)

	// Ranking
	RecommendationRequests = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "moodrank_recommendation_requests_total",
			Help: "Total number of ranking calls",
		},
	)

	ThrottledRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodrank_throttled_requests_total",
			Help: "Total number of ranking calls reduced by the wellness throttle",
		},
		[]string{"percent"},
	)

	FallbackCandidateSets = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "moodrank_fallback_candidate_sets_total",
			Help: "Total number of ranking calls served from synthesized fallback candidates",
		},
	)

	// Database
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moodrank_db_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodrank_db_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodrank_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moodrank_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// ObserveDBQuery records one database query observation.
func ObserveDBQuery(operation, table string, start time.Time, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// ObserveAPIRequest records one API request observation.
func ObserveAPIRequest(method, path string, status int, start time.Time) {
	APIRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
}
