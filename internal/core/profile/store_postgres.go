// Copyright (c) 2026 Visibles. All rights reserved.
// Author: dev@visibles.org

/*
Package profile provides the PostgreSQL implementation of the profile store.

Design notes:

  - Upsert: Save is a single INSERT ... ON CONFLICT (publicid) DO UPDATE so a
    resubmitted draft can never duplicate a public identifier. The conflict
    branch deliberately excludes id and createdat, preserving the write-once
    invariants.
  - Arrays: urgent needs and tags live in text[] columns; pgx maps them to
    []string without intermediate encoding.
  - Counters: engagement metrics are bumped with a relative UPDATE so
    concurrent requests never lose increments.
*/
package profile

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/visibles-org/visibles/internal/platform/apperr"
	"github.com/visibles-org/visibles/internal/platform/dberr"
	"github.com/visibles-org/visibles/pkg/uuidv7"
)

// profileColumns is the canonical SELECT column list, kept in one place so
// every read path scans the same shape.
const profileColumns = `
	id, publicid, name, rawstory, story, needs, urgentneeds, location,
	imageurl, ispublic, isarchived, isverified, urgencyscore, tags,
	verificationstatus, contactphone, contactemail,
	views, qrdownloads, linkshares, createdat, updatedat`

// # PostgreSQL Repository

// postgresRepository implements the [Repository] interface using pgx.
type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed profile store.
func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

/*
List returns profiles matching the filter, newest first.

Parameters:
  - context: context.Context
  - filter: ListFilter

Returns:
  - []*Profile: Hydrated entities
  - error: Database execution errors
*/
func (repository *postgresRepository) List(context context.Context, filter ListFilter) ([]*Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM core.profile`

	// The public directory excludes archived records unconditionally,
	// irrespective of ispublic.
	if filter == ListPublic {
		query += ` WHERE ispublic = TRUE AND isarchived = FALSE`
	}
	query += ` ORDER BY createdat DESC`

	rows, err := repository.pool.Query(context, query)
	if err != nil {
		return nil, dberr.Wrap(fmt.Errorf("postgres_profile_list_failed: %w", err), "list")
	}
	defer rows.Close()

	var profiles []*Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, dberr.Wrap(fmt.Errorf("postgres_profile_scan_failed: %w", err), "list")
		}
		profiles = append(profiles, p)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(fmt.Errorf("postgres_profile_rows_failed: %w", err), "list")
	}

	return profiles, nil
}

/*
FindByPublicID retrieves a single profile by its public identifier.

Parameters:
  - context: context.Context
  - publicID: string

Returns:
  - *Profile: Hydrated entity
  - error: apperr.NotFound or database errors
*/
func (repository *postgresRepository) FindByPublicID(context context.Context, publicID string) (*Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM core.profile WHERE publicid = $1`

	row := repository.pool.QueryRow(context, query, publicID)
	p, err := scanProfile(row)
	if err != nil {
		return nil, dberr.Wrap(err, "find_by_public_id")
	}

	return p, nil
}

/*
Save upserts a profile keyed on its public identifier.

Description: Assigns a fresh UUIDv7 when the entity carries no internal ID or
a malformed one. createdat is written only on the initial insert; the conflict
branch never touches it. Returns the persisted row including store-assigned
fields.

Parameters:
  - context: context.Context
  - profile: *Profile

Returns:
  - *Profile: The persisted record
  - error: Persistence failures
*/
func (repository *postgresRepository) Save(context context.Context, profile *Profile) (*Profile, error) {

	// Store-assigned identity: missing or malformed IDs are replaced.
	if _, err := uuid.Parse(profile.ID); err != nil {
		profile.ID = uuidv7.New()
	}

	const query = `
		INSERT INTO core.profile (
			id, publicid, name, rawstory, story, needs, urgentneeds, location,
			imageurl, ispublic, isarchived, isverified, urgencyscore, tags,
			verificationstatus, contactphone, contactemail,
			createdat, updatedat
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8,
			$9, $10, $11, $12, $13, $14,
			$15, $16, $17,
			NOW(), NULL
		)
		ON CONFLICT (publicid) DO UPDATE SET
			name               = EXCLUDED.name,
			rawstory           = EXCLUDED.rawstory,
			story              = EXCLUDED.story,
			needs              = EXCLUDED.needs,
			urgentneeds        = EXCLUDED.urgentneeds,
			location           = EXCLUDED.location,
			imageurl           = EXCLUDED.imageurl,
			ispublic           = EXCLUDED.ispublic,
			isarchived         = EXCLUDED.isarchived,
			isverified         = EXCLUDED.isverified,
			urgencyscore       = EXCLUDED.urgencyscore,
			tags               = EXCLUDED.tags,
			verificationstatus = EXCLUDED.verificationstatus,
			contactphone       = EXCLUDED.contactphone,
			contactemail       = EXCLUDED.contactemail,
			updatedat          = NOW()
		RETURNING ` + profileColumns

	row := repository.pool.QueryRow(context, query,
		profile.ID,
		profile.PublicID,
		profile.Name,
		profile.RawStory,
		profile.Story,
		profile.Needs,
		profile.UrgentNeeds,
		profile.Location,
		profile.ImageURL,
		profile.IsPublic,
		profile.IsArchived,
		profile.IsVerified,
		profile.Meta.UrgencyScore,
		profile.Meta.Tags,
		profile.Meta.VerificationStatus,
		profile.Meta.ContactPhone,
		profile.Meta.ContactEmail,
	)

	persisted, err := scanProfile(row)
	if err != nil {
		return nil, dberr.Wrap(fmt.Errorf("postgres_profile_save_failed: %w", err), "save")
	}

	return persisted, nil
}

/*
Delete permanently removes a profile row. Irreversible.

Parameters:
  - context: context.Context
  - publicID: string

Returns:
  - error: apperr.NotFound or persistence failures
*/
func (repository *postgresRepository) Delete(context context.Context, publicID string) error {
	const query = `DELETE FROM core.profile WHERE publicid = $1`

	tag, err := repository.pool.Exec(context, query, publicID)
	if err != nil {
		return dberr.Wrap(fmt.Errorf("postgres_profile_delete_failed: %w", err), "delete")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Profile")
	}

	return nil
}

/*
SetVisibility updates only the is_public flag.

Parameters:
  - context: context.Context
  - publicID: string
  - isPublic: bool

Returns:
  - error: apperr.NotFound or persistence failures
*/
func (repository *postgresRepository) SetVisibility(context context.Context, publicID string, isPublic bool) error {
	const query = `UPDATE core.profile SET ispublic = $2, updatedat = NOW() WHERE publicid = $1`
	return repository.execTargeted(context, query, publicID, isPublic)
}

/*
SetArchived updates only the is_archived flag.

Parameters:
  - context: context.Context
  - publicID: string
  - isArchived: bool

Returns:
  - error: apperr.NotFound or persistence failures
*/
func (repository *postgresRepository) SetArchived(context context.Context, publicID string, isArchived bool) error {
	const query = `UPDATE core.profile SET isarchived = $2, updatedat = NOW() WHERE publicid = $1`
	return repository.execTargeted(context, query, publicID, isArchived)
}

/*
IncrementCounter atomically bumps an engagement counter.

Parameters:
  - context: context.Context
  - publicID: string
  - counter: Counter

Returns:
  - error: apperr.NotFound or persistence failures
*/
func (repository *postgresRepository) IncrementCounter(context context.Context, publicID string, counter Counter) error {

	// Column names come from a closed enum, never from user input.
	var column string
	switch counter {
	case CounterViews:
		column = "views"
	case CounterQRDownloads:
		column = "qrdownloads"
	case CounterLinkShares:
		column = "linkshares"
	default:
		return apperr.Internal(fmt.Errorf("postgres_profile_unknown_counter: %q", counter))
	}

	query := fmt.Sprintf(`UPDATE core.profile SET %s = %s + 1 WHERE publicid = $1`, column, column)

	tag, err := repository.pool.Exec(context, query, publicID)
	if err != nil {
		return dberr.Wrap(fmt.Errorf("postgres_profile_counter_failed: %w", err), "increment_counter")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Profile")
	}

	return nil
}

// # Internal Helpers

// execTargeted runs a single-row UPDATE and maps zero affected rows to NotFound.
func (repository *postgresRepository) execTargeted(context context.Context, query string, publicID string, flag bool) error {
	tag, err := repository.pool.Exec(context, query, publicID, flag)
	if err != nil {
		return dberr.Wrap(fmt.Errorf("postgres_profile_update_failed: %w", err), "targeted_update")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Profile")
	}

	return nil
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanProfile hydrates one Profile from the canonical column list.
func scanProfile(row rowScanner) (*Profile, error) {
	p := &Profile{}
	err := row.Scan(
		&p.ID,
		&p.PublicID,
		&p.Name,
		&p.RawStory,
		&p.Story,
		&p.Needs,
		&p.UrgentNeeds,
		&p.Location,
		&p.ImageURL,
		&p.IsPublic,
		&p.IsArchived,
		&p.IsVerified,
		&p.Meta.UrgencyScore,
		&p.Meta.Tags,
		&p.Meta.VerificationStatus,
		&p.Meta.ContactPhone,
		&p.Meta.ContactEmail,
		&p.Meta.Views,
		&p.Meta.QRDownloads,
		&p.Meta.LinkShares,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return p, nil
}
