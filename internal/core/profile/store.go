// Copyright (c) 2026 Visibles. All rights reserved.
// Author: dev@visibles.org

package profile

import (
	"context"
)

// # Profile Data Access

// Repository defines the data access contract for profile records.
//
// # Failure Semantics
//
// Implementations do not retry and do not back off. Remote failures surface
// as-is to the service layer, which converts them into degraded-but-usable
// results for the public read path.
type Repository interface {

	/*
		List returns profiles matching the filter, ordered by creation time
		descending.

		Parameters:
		  - context: context.Context
		  - filter: ListFilter (ListAll or ListPublic)

		Returns:
		  - []*Profile: Hydrated entities
		  - error: Database retrieval failures
	*/
	List(context context.Context, filter ListFilter) ([]*Profile, error)

	/*
		FindByPublicID returns the profile with the given public identifier.

		Description: A missing record is a normal outcome, reported as
		apperr.NotFound rather than a storage failure.

		Parameters:
		  - context: context.Context
		  - publicID: string

		Returns:
		  - *Profile: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByPublicID(context context.Context, publicID string) (*Profile, error)

	/*
		Save upserts a profile keyed on its public identifier.

		Description: If the entity carries no internal ID, the store assigns
		one. Resubmitting a draft with the same public identifier overwrites
		rather than duplicates. created_at is written exactly once; updates
		never touch it.

		Parameters:
		  - context: context.Context
		  - profile: *Profile

		Returns:
		  - *Profile: The persisted record including store-assigned fields
		  - error: Persistence failures
	*/
	Save(context context.Context, profile *Profile) (*Profile, error)

	/*
		Delete permanently removes a profile. Irreversible.

		Parameters:
		  - context: context.Context
		  - publicID: string

		Returns:
		  - error: apperr.NotFound or persistence failures
	*/
	Delete(context context.Context, publicID string) error

	/*
		SetVisibility updates only the is_public flag of a single profile.

		Parameters:
		  - context: context.Context
		  - publicID: string
		  - isPublic: bool

		Returns:
		  - error: apperr.NotFound or persistence failures
	*/
	SetVisibility(context context.Context, publicID string, isPublic bool) error

	/*
		SetArchived updates only the is_archived flag of a single profile.

		Parameters:
		  - context: context.Context
		  - publicID: string
		  - isArchived: bool

		Returns:
		  - error: apperr.NotFound or persistence failures
	*/
	SetArchived(context context.Context, publicID string, isArchived bool) error

	/*
		IncrementCounter atomically bumps one of the engagement counters.

		Parameters:
		  - context: context.Context
		  - publicID: string
		  - counter: Counter (views, qr_downloads, link_shares)

		Returns:
		  - error: apperr.NotFound or persistence failures
	*/
	IncrementCounter(context context.Context, publicID string, counter Counter) error
}

// Counter names one of the engagement metrics on the metadata block.
type Counter string

const (
	CounterViews       Counter = "views"
	CounterQRDownloads Counter = "qr_downloads"
	CounterLinkShares  Counter = "link_shares"
)
