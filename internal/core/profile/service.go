// Copyright (c) 2026 Visibles. All rights reserved.
// Author: dev@visibles.org

package profile

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/visibles-org/visibles/internal/platform/apperr"
	"github.com/visibles-org/visibles/internal/platform/constants"
	"github.com/visibles-org/visibles/internal/platform/validate"
	"github.com/visibles-org/visibles/pkg/slug"
)

// # Service Layer

// DeletionListener is notified after a profile row has been removed, so
// dependent collections can clean up theirs. The database cascade is the
// backstop: a listener failure is logged, never surfaced to the caller.
type DeletionListener func(context context.Context, publicID string) error

// Service orchestrates the business logic for profile records.
//
// It owns the public listing cache: every successful write path invalidates
// it unconditionally before returning.
type Service struct {
	repository Repository
	cache      listingCache
	logger     *slog.Logger

	// publicBaseURL is the origin used to build shareable links and QR codes.
	publicBaseURL string

	// onDelete runs after every successful removal, single or bulk.
	onDelete DeletionListener
}

// OnDelete registers the listener invoked after each removed profile.
func (service *Service) OnDelete(listener DeletionListener) {
	service.onDelete = listener
}

// NewService constructs a new [Service] with its required dependencies.
func NewService(repository Repository, publicBaseURL string, logger *slog.Logger) *Service {
	return &Service{
		repository:    repository,
		logger:        logger,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// # Public Read Path

/*
PublicListing returns the public, non-archived profile set, newest first.

Description: Serves from the process-local cache when warm. On a cache miss
the repository is queried and the result cached. A storage failure surfaces
as an error; callers on the public surface treat it as an empty result with
an operator-facing notice, never a crash.

Parameters:
  - context: context.Context

Returns:
  - []*Profile: The public directory set
  - error: Storage failures (cache misses only; a warm cache never errors)
*/
func (service *Service) PublicListing(context context.Context) ([]*Profile, error) {
	if cached := service.cache.get(); cached != nil {
		return cached, nil
	}

	profiles, err := service.repository.List(context, ListPublic)
	if err != nil {
		return nil, err
	}

	// Cache even an empty listing: an empty directory is a valid state and
	// repeat queries should not hammer the store.
	if profiles == nil {
		profiles = []*Profile{}
	}
	service.cache.put(profiles)

	return profiles, nil
}

/*
Directory applies the active filter state to the public listing.

Parameters:
  - context: context.Context
  - state: FilterState

Returns:
  - []Group: Location groups after filtering and sorting
  - error: Storage failures from the underlying listing
*/
func (service *Service) Directory(context context.Context, state FilterState) ([]Group, error) {
	profiles, err := service.PublicListing(context)
	if err != nil {
		return nil, err
	}
	return ApplyFilters(profiles, state), nil
}

/*
GetByPublicID fetches a single profile by its shareable identifier.

Description: Not-found is a normal outcome. When recordView is set the read
is a public page view: unlisted profiles answer not-found and the view
counter is bumped best-effort, a counter failure is logged and swallowed,
never failing the read. Requests answered with not-found never count as a
view.

Parameters:
  - context: context.Context
  - publicID: string
  - recordView: bool (true on the public profile page; enforces listing)

Returns:
  - *Profile: The hydrated entity
  - error: apperr.NotFound (unknown, or unlisted on the public path) or
    storage failures
*/
func (service *Service) GetByPublicID(context context.Context, publicID string, recordView bool) (*Profile, error) {
	found, err := service.repository.FindByPublicID(context, publicID)
	if err != nil {
		return nil, err
	}

	if recordView {
		// Staff see everything through the admin surface; the public page
		// only serves listed profiles, and only those earn a view.
		if !found.IsListedPublicly() {
			return nil, apperr.NotFound("Profile")
		}
		if err := service.repository.IncrementCounter(context, publicID, CounterViews); err != nil {
			service.logger.Warn("profile_view_count_failed",
				slog.String("public_id", publicID),
				slog.Any("error", err),
			)
		}
	}

	return found, nil
}

// # Administration Read Path

/*
AdminList returns every profile, including archived and unpublished ones.

Description: Admin queries never touch the public listing cache; staff must
always see live store state.

Parameters:
  - context: context.Context

Returns:
  - []*Profile: The complete collection
  - error: Storage failures
*/
func (service *Service) AdminList(context context.Context) ([]*Profile, error) {
	return service.repository.List(context, ListAll)
}

// # Write Path

/*
Save validates and upserts a profile, assigning a public identifier when the
draft carries none.

Description: Resubmitting a draft with an existing public identifier
overwrites that record (upsert), never duplicates it. The urgent-needs list is
normalized back to a subset of the needs list before persistence. Any
successful save invalidates the public listing cache.

Parameters:
  - context: context.Context
  - profile: *Profile

Returns:
  - *Profile: The persisted record, including store-assigned fields
  - error: Validation or persistence failures
*/
func (service *Service) Save(context context.Context, profile *Profile) (*Profile, error) {

	// A draft without a public identifier receives one derived from the name.
	if profile.PublicID == "" {
		profile.PublicID = slug.WithSuffix(profile.Name, constants.PublicIDSuffixLength)
	}

	validator := &validate.Validator{}
	validator.
		Required("name", profile.Name).
		Required("public_id", profile.PublicID).
		Slug("public_id", profile.PublicID)
	if profile.Meta.UrgencyScore != nil {
		validator.Range("urgency_score", int(*profile.Meta.UrgencyScore), 1, 10)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	profile.NormalizeUrgentNeeds()

	persisted, err := service.repository.Save(context, profile)
	if err != nil {
		return nil, err
	}

	service.cache.invalidate()
	return persisted, nil
}

/*
Delete irreversibly removes a profile and invalidates the listing cache.

Parameters:
  - context: context.Context
  - publicID: string

Returns:
  - error: apperr.NotFound or persistence failures
*/
func (service *Service) Delete(context context.Context, publicID string) error {
	if err := service.repository.Delete(context, publicID); err != nil {
		return err
	}

	service.notifyDeleted(context, publicID)
	service.cache.invalidate()
	return nil
}

// notifyDeleted runs the deletion listener for one removed profile.
func (service *Service) notifyDeleted(context context.Context, publicID string) {
	if service.onDelete == nil {
		return
	}
	if err := service.onDelete(context, publicID); err != nil {
		service.logger.Warn("profile_delete_cleanup_failed",
			slog.String("public_id", publicID),
			slog.Any("error", err),
		)
	}
}

/*
SetVisibility toggles the is_public flag of one profile.

Parameters:
  - context: context.Context
  - publicID: string
  - isPublic: bool

Returns:
  - error: apperr.NotFound or persistence failures
*/
func (service *Service) SetVisibility(context context.Context, publicID string, isPublic bool) error {
	if err := service.repository.SetVisibility(context, publicID, isPublic); err != nil {
		return err
	}

	service.cache.invalidate()
	return nil
}

/*
SetArchived toggles the is_archived flag of one profile.

Parameters:
  - context: context.Context
  - publicID: string
  - isArchived: bool

Returns:
  - error: apperr.NotFound or persistence failures
*/
func (service *Service) SetArchived(context context.Context, publicID string, isArchived bool) error {
	if err := service.repository.SetArchived(context, publicID, isArchived); err != nil {
		return err
	}

	service.cache.invalidate()
	return nil
}

// # Bulk Operations

// BulkAction names one of the multi-select admin operations.
type BulkAction string

const (
	BulkArchive   BulkAction = "archive"
	BulkUnarchive BulkAction = "unarchive"
	BulkPublish   BulkAction = "publish"
	BulkUnpublish BulkAction = "unpublish"
	BulkDelete    BulkAction = "delete"
)

// IsValid reports whether a is a recognised [BulkAction] value.
func (a BulkAction) IsValid() bool {
	switch a {
	case BulkArchive, BulkUnarchive, BulkPublish, BulkUnpublish, BulkDelete:
		return true
	}
	return false
}

// BulkResult reports the outcome of one item within a bulk operation.
type BulkResult struct {
	PublicID string `json:"public_id"`
	OK       bool   `json:"ok"`
	Error    string `json:"error,omitempty"`
}

/*
Bulk applies a single-record operation independently to each selected profile.

Description: There is no transaction and no rollback. A failure on one item
does not stop the remaining items; each outcome is reported individually so
the admin surface can list exactly which records failed. The listing cache is
invalidated if at least one item succeeded.

Parameters:
  - context: context.Context
  - action: BulkAction
  - publicIDs: []string

Returns:
  - []BulkResult: Per-item outcomes, in input order
  - error: Validation failures only (an unknown action); item failures are
    reported in the results, not here
*/
func (service *Service) Bulk(context context.Context, action BulkAction, publicIDs []string) ([]BulkResult, error) {
	if !action.IsValid() {
		return nil, apperr.ValidationError("Unknown bulk action")
	}

	results := make([]BulkResult, 0, len(publicIDs))
	anySucceeded := false

	for _, publicID := range publicIDs {
		var err error
		switch action {
		case BulkArchive:
			err = service.repository.SetArchived(context, publicID, true)
		case BulkUnarchive:
			err = service.repository.SetArchived(context, publicID, false)
		case BulkPublish:
			err = service.repository.SetVisibility(context, publicID, true)
		case BulkUnpublish:
			err = service.repository.SetVisibility(context, publicID, false)
		case BulkDelete:
			err = service.repository.Delete(context, publicID)
			if err == nil {
				service.notifyDeleted(context, publicID)
			}
		}

		result := BulkResult{PublicID: publicID, OK: err == nil}
		if err != nil {
			result.Error = err.Error()
		} else {
			anySucceeded = true
		}
		results = append(results, result)
	}

	if anySucceeded {
		service.cache.invalidate()
	}

	return results, nil
}

// # Sharing

// PublicURL returns the canonical shareable link for a profile.
func (service *Service) PublicURL(publicID string) string {
	return fmt.Sprintf("%s/profils/%s", service.publicBaseURL, publicID)
}

/*
QRCode renders a PNG QR code pointing at the profile's public page.

Description: Only listed profiles are shareable. The qr_downloads counter is
bumped best-effort after a successful render.

Parameters:
  - context: context.Context
  - publicID: string
  - size: int (square pixel size; clamped to a sane range)

Returns:
  - []byte: PNG image data
  - error: apperr.NotFound or rendering failures
*/
func (service *Service) QRCode(context context.Context, publicID string, size int) ([]byte, error) {
	found, err := service.repository.FindByPublicID(context, publicID)
	if err != nil {
		return nil, err
	}
	if !found.IsListedPublicly() {
		return nil, apperr.NotFound("Profile")
	}

	if size < 128 || size > 1024 {
		size = 256
	}

	png, err := qrcode.Encode(service.PublicURL(publicID), qrcode.Medium, size)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("profile_qr_encode_failed: %w", err))
	}

	if err := service.repository.IncrementCounter(context, publicID, CounterQRDownloads); err != nil {
		service.logger.Warn("profile_qr_count_failed",
			slog.String("public_id", publicID),
			slog.Any("error", err),
		)
	}

	return png, nil
}

/*
RecordShare bumps the link_shares counter for a profile.

Parameters:
  - context: context.Context
  - publicID: string

Returns:
  - error: apperr.NotFound or persistence failures
*/
func (service *Service) RecordShare(context context.Context, publicID string) error {
	return service.repository.IncrementCounter(context, publicID, CounterLinkShares)
}
