// Moodrank - Contextual Content Ranking and Viewing Wellness Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodrank

// Package config provides layered configuration for Moodrank using Koanf v2.
//
// Configuration is assembled from three layers (highest priority wins):
//  1. Built-in defaults
//  2. Optional YAML config file (config.yaml, or CONFIG_PATH)
//  3. Environment variables with the MOODRANK_ prefix
//
// Example: MOODRANK_SERVER_PORT=8080 overrides server.port.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the Moodrank server.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Logging   LoggingConfig   `koanf:"logging"`
	API       APIConfig       `koanf:"api"`
	Recommend RecommendConfig `koanf:"recommend"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	// Path is the DuckDB database file. Empty string opens an
	// in-memory database (used by tests).
	Path string `koanf:"path"`

	// MaxMemory is the DuckDB memory limit, e.g. "2GB".
	MaxMemory string `koanf:"max_memory"`

	// Threads is the DuckDB thread count. 0 = runtime.NumCPU().
	Threads int `koanf:"threads"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// APIConfig holds transport-level settings.
type APIConfig struct {
	// DefaultCount is the recommendation count used when the caller
	// does not supply one.
	DefaultCount int `koanf:"default_count"`

	// MaxCount caps the recommendation count a caller may request.
	MaxCount int `koanf:"max_count"`

	// CORSAllowedOrigins lists origins allowed by the CORS middleware.
	// Empty by default: cross-origin access requires explicit opt-in.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	// RateLimitRequests / RateLimitWindow configure go-chi/httprate.
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
}

// RecommendConfig holds ranker settings.
type RecommendConfig struct {
	// SourceLimit is how many raw candidates to request from each
	// candidate source per ranking call.
	SourceLimit int `koanf:"source_limit"`

	// BreakerMaxFailures opens the candidate-source circuit breaker
	// after this many consecutive failures.
	BreakerMaxFailures int `koanf:"breaker_max_failures"`

	// BreakerCooldown is how long an open breaker stays open before
	// allowing a probe request.
	BreakerCooldown time.Duration `koanf:"breaker_cooldown"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    3861,
			Timeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Path:      "/data/moodrank.duckdb",
			MaxMemory: "1GB",
			Threads:   0, // 0 = use runtime.NumCPU()
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		API: APIConfig{
			DefaultCount:       10,
			MaxCount:           50,
			CORSAllowedOrigins: []string{},
			RateLimitRequests:  100,
			RateLimitWindow:    time.Minute,
		},
		Recommend: RecommendConfig{
			SourceLimit:        20,
			BreakerMaxFailures: 5,
			BreakerCooldown:    30 * time.Second,
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535], got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("database.threads must be >= 0, got %d", c.Database.Threads)
	}
	if c.API.DefaultCount < 1 {
		return fmt.Errorf("api.default_count must be >= 1, got %d", c.API.DefaultCount)
	}
	if c.API.MaxCount < c.API.DefaultCount {
		return fmt.Errorf("api.max_count (%d) must be >= api.default_count (%d)",
			c.API.MaxCount, c.API.DefaultCount)
	}
	if c.API.RateLimitRequests < 1 {
		return fmt.Errorf("api.rate_limit_requests must be >= 1, got %d", c.API.RateLimitRequests)
	}
	if c.Recommend.SourceLimit < 1 {
		return fmt.Errorf("recommend.source_limit must be >= 1, got %d", c.Recommend.SourceLimit)
	}
	if c.Recommend.BreakerMaxFailures < 1 {
		return fmt.Errorf("recommend.breaker_max_failures must be >= 1, got %d",
			c.Recommend.BreakerMaxFailures)
	}
	return nil
}
