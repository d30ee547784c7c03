// Copyright (c) 2026 Visibles. All rights reserved.
// Author: dev@visibles.org

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/visibles-org/visibles/internal/platform/apperr"
	"github.com/visibles-org/visibles/internal/platform/constants"
)

// # Redis Session Repository

// RedisSessionRepository implements [SessionRepository] using Redis.
//
// Records are serialized as JSON and expire through Redis TTLs; the store
// never needs a background sweeper.
type RedisSessionRepository struct {
	client *redis.Client
}

// NewRedisSessionRepository creates a new Redis-backed session store.
func NewRedisSessionRepository(client *redis.Client) *RedisSessionRepository {
	return &RedisSessionRepository{client: client}
}

/*
Save stores a session record under the hashed token with the given TTL.

Parameters:
  - context: context.Context
  - tokenHash: string
  - session: Session
  - ttl: time.Duration

Returns:
  - error: Serialization or storage failures
*/
func (repository *RedisSessionRepository) Save(context context.Context, tokenHash string, session Session, ttl time.Duration) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("redis_session_encode_failed: %w", err)
	}

	key := constants.RedisPrefixSession + tokenHash
	if err := repository.client.Set(context, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis_session_set_failed: %w", err)
	}

	return nil
}

/*
Touch returns the session record and pushes its expiration forward by ttl.

Description: GETEX performs the read and the TTL refresh as one atomic
command, so concurrent requests can never observe a half-slid window.

Parameters:
  - context: context.Context
  - tokenHash: string
  - ttl: time.Duration

Returns:
  - *Session: The live session record
  - error: apperr.NotFound when absent or expired, or storage failures
*/
func (repository *RedisSessionRepository) Touch(context context.Context, tokenHash string, ttl time.Duration) (*Session, error) {
	key := constants.RedisPrefixSession + tokenHash

	payload, err := repository.client.GetEx(context, key, ttl).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperr.NotFound("Session")
		}
		return nil, fmt.Errorf("redis_session_touch_failed: %w", err)
	}

	session := &Session{}
	if err := json.Unmarshal([]byte(payload), session); err != nil {
		return nil, fmt.Errorf("redis_session_decode_failed: %w", err)
	}

	return session, nil
}

/*
Delete removes a session record. Idempotent.

Parameters:
  - context: context.Context
  - tokenHash: string

Returns:
  - error: Storage failures
*/
func (repository *RedisSessionRepository) Delete(context context.Context, tokenHash string) error {
	key := constants.RedisPrefixSession + tokenHash

	if err := repository.client.Del(context, key).Err(); err != nil {
		return fmt.Errorf("redis_session_delete_failed: %w", err)
	}

	return nil
}
