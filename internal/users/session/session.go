// Copyright (c) 2026 Visibles. All rights reserved.
// Author: dev@visibles.org

/*
Package session implements staff identity and the sliding-window login
session layer.

Architecture:

  - Service: Orchestrates login, registration, logout, and token
    verification.
  - UserRepository: PostgreSQL storage for staff accounts.
  - SessionRepository: Redis storage for live session records.

# Sliding Expiration

A login opens a session window. Every authenticated request observed by the
middleware pushes the window forward; a session only dies after a full
window of inactivity, or on explicit logout. The access token itself is a
signed JWT whose nominal lifetime exceeds any realistic window; the Redis
record is the real authority, which also makes revocation immediate.
*/
package session

import (
	"time"

	"github.com/visibles-org/visibles/internal/platform/sec"
)

// # Timing

const (
	// accessTokenTTL is the nominal JWT lifetime. Deliberately much longer
	// than the sliding window: expiry is governed by the Redis record, not
	// by the token signature.
	accessTokenTTL = 30 * 24 * time.Hour

	// sessionIDBytes is the entropy of a generated session identifier.
	sessionIDBytes = 16
)

// # Domain Entities

// User represents a staff account on the Visibles platform.
type User struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	Name         string       `json:"name"`
	PasswordHash string       `json:"-"` // Explicitly omitted from JSON for security.
	Role         sec.UserRole `json:"role"`
	CreatedAt    time.Time    `json:"created_at"`
}

// Session is one live login window, stored in Redis under the hashed
// access token.
type Session struct {
	ID        string       `json:"id"`
	UserID    string       `json:"user_id"`
	Email     string       `json:"email"`
	Role      sec.UserRole `json:"role"`
	CreatedAt time.Time    `json:"created_at"`
}

// # Field Identifiers

// Field names shared by validation and response payloads in this domain.
const (
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldName        = "name"
	FieldAccessToken = "access_token"
	FieldExpiresAt   = "expires_at"
	FieldUser        = "user"
)
