// Copyright (c) 2026 Visibles. All rights reserved.
// Author: dev@visibles.org

package session

import (
	"context"
	"time"
)

// # User Data Access

// UserRepository defines the data access contract for staff accounts.
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByEmail returns the account with the given email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		Create persists a brand-new staff account.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - *User: The persisted record including store-assigned fields
		  - error: apperr.Conflict on duplicate email, or persistence failures
	*/
	Create(context context.Context, user *User) (*User, error)
}

// # Session Data Access

// SessionRepository defines the volatile storage contract for live sessions.
//
// Keys are hashes of the access token, never the token itself, so a storage
// dump cannot be replayed as credentials.
type SessionRepository interface {

	/*
		Save stores a session record under the hashed token with the given TTL.

		Parameters:
		  - context: context.Context
		  - tokenHash: string
		  - session: Session
		  - ttl: time.Duration

		Returns:
		  - error: Storage failures
	*/
	Save(context context.Context, tokenHash string, session Session, ttl time.Duration) error

	/*
		Touch returns the session record and atomically pushes its expiration
		forward by ttl. This single call implements the sliding window.

		Description: Returns apperr.NotFound when the record is absent, which
		covers both expiry and revocation.

		Parameters:
		  - context: context.Context
		  - tokenHash: string
		  - ttl: time.Duration

		Returns:
		  - *Session: The live session record
		  - error: apperr.NotFound or storage failures
	*/
	Touch(context context.Context, tokenHash string, ttl time.Duration) (*Session, error)

	/*
		Delete removes a session record. Deleting an absent record is not an
		error, so logout stays idempotent.

		Parameters:
		  - context: context.Context
		  - tokenHash: string

		Returns:
		  - error: Storage failures
	*/
	Delete(context context.Context, tokenHash string) error
}
