// Copyright (c) 2026 Visibles. All rights reserved.
// Author: dev@visibles.org

package intake

import (
	"context"
)

// # Draft Data Access

// DraftStore defines the volatile storage contract for intake drafts.
type DraftStore interface {

	/*
		Save stores a draft, resetting its expiration to the full draft TTL.

		Parameters:
		  - context: context.Context
		  - draft: *Draft

		Returns:
		  - error: Serialization or storage failures
	*/
	Save(context context.Context, draft *Draft) error

	/*
		Get returns the draft with the given identifier.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Draft: The stored draft
		  - error: apperr.NotFound when absent or expired, or storage failures
	*/
	Get(context context.Context, id string) (*Draft, error)

	/*
		Delete removes a draft. Idempotent.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Storage failures
	*/
	Delete(context context.Context, id string) error
}
