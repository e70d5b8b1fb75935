// Moodrank - Contextual Content Ranking and Viewing Wellness Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodrank

package models

import "errors"

// Error taxonomy for core operations. Handlers map these to HTTP codes;
// callers may test with errors.Is.
var (
	// ErrValidation indicates a request was rejected before any store
	// access (unrecognized mood, missing required field).
	ErrValidation = errors.New("validation error")

	// ErrSessionNotFound indicates an unknown session id, or a
	// session/user mismatch on end. No mutation occurred.
	ErrSessionNotFound = errors.New("session not found")
)
