// Copyright (c) 2026 Visibles. All rights reserved.
// Author: dev@visibles.org

package comment

import (
	"context"
)

// # Comment Data Access

// Repository defines the data access contract for comment records.
type Repository interface {

	/*
		ListByProfile returns every comment on one profile, oldest first.

		Parameters:
		  - context: context.Context
		  - profilePublicID: string

		Returns:
		  - []*Comment: Hydrated entities in chronological order
		  - error: Database retrieval failures
	*/
	ListByProfile(context context.Context, profilePublicID string) ([]*Comment, error)

	/*
		Create persists a new comment and returns the stored record.

		Parameters:
		  - context: context.Context
		  - comment: *Comment

		Returns:
		  - *Comment: The persisted record including store-assigned fields
		  - error: Persistence failures
	*/
	Create(context context.Context, comment *Comment) (*Comment, error)

	/*
		DeleteByProfile removes every comment attached to one profile. Used
		when the profile itself is irreversibly deleted.

		Parameters:
		  - context: context.Context
		  - profilePublicID: string

		Returns:
		  - error: Persistence failures
	*/
	DeleteByProfile(context context.Context, profilePublicID string) error
}
