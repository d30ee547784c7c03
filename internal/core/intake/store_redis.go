// Copyright (c) 2026 Visibles. All rights reserved.
// Author: dev@visibles.org

package intake

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/visibles-org/visibles/internal/platform/apperr"
	"github.com/visibles-org/visibles/internal/platform/constants"
)

// # Redis Draft Store

// RedisDraftStore implements [DraftStore] using Redis.
//
// Every save resets the TTL, so a draft only expires after a full window of
// inactivity on the whole flow.
type RedisDraftStore struct {
	client *redis.Client
}

// NewRedisDraftStore creates a new Redis-backed draft store.
func NewRedisDraftStore(client *redis.Client) *RedisDraftStore {
	return &RedisDraftStore{client: client}
}

/*
Save stores a draft under its identifier with the full draft TTL.

Parameters:
  - context: context.Context
  - draft: *Draft

Returns:
  - error: Serialization or storage failures
*/
func (store *RedisDraftStore) Save(context context.Context, draft *Draft) error {
	payload, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("redis_intake_draft_encode_failed: %w", err)
	}

	key := constants.RedisPrefixIntakeDraft + draft.ID
	if err := store.client.Set(context, key, payload, constants.IntakeDraftTTL).Err(); err != nil {
		return fmt.Errorf("redis_intake_draft_set_failed: %w", err)
	}

	return nil
}

/*
Get returns the draft with the given identifier.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Draft: The stored draft
  - error: apperr.NotFound when absent or expired, or storage failures
*/
func (store *RedisDraftStore) Get(context context.Context, id string) (*Draft, error) {
	key := constants.RedisPrefixIntakeDraft + id

	payload, err := store.client.Get(context, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperr.NotFound("Intake draft")
		}
		return nil, fmt.Errorf("redis_intake_draft_get_failed: %w", err)
	}

	draft := &Draft{}
	if err := json.Unmarshal([]byte(payload), draft); err != nil {
		return nil, fmt.Errorf("redis_intake_draft_decode_failed: %w", err)
	}

	return draft, nil
}

/*
Delete removes a draft. Idempotent.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: Storage failures
*/
func (store *RedisDraftStore) Delete(context context.Context, id string) error {
	key := constants.RedisPrefixIntakeDraft + id

	if err := store.client.Del(context, key).Err(); err != nil {
		return fmt.Errorf("redis_intake_draft_delete_failed: %w", err)
	}

	return nil
}
