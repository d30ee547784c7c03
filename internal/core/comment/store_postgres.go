// Copyright (c) 2026 Visibles. All rights reserved.
// Author: dev@visibles.org

package comment

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/visibles-org/visibles/internal/platform/dberr"
	"github.com/visibles-org/visibles/pkg/uuidv7"
)

const commentColumns = `id, profilepublicid, authorname, body, createdat`

// # PostgreSQL Repository

// postgresRepository implements the [Repository] interface using pgx.
type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed comment store.
func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

/*
ListByProfile returns every comment on one profile, oldest first.

Description: Chronological ascending order keeps the conversation readable
top to bottom on the profile page.

Parameters:
  - context: context.Context
  - profilePublicID: string

Returns:
  - []*Comment: Hydrated entities
  - error: Database execution errors
*/
func (repository *postgresRepository) ListByProfile(context context.Context, profilePublicID string) ([]*Comment, error) {
	query := `SELECT ` + commentColumns + `
		FROM social.comment
		WHERE profilepublicid = $1
		ORDER BY createdat ASC`

	rows, err := repository.pool.Query(context, query, profilePublicID)
	if err != nil {
		return nil, dberr.Wrap(fmt.Errorf("postgres_comment_list_failed: %w", err), "list")
	}
	defer rows.Close()

	var comments []*Comment
	for rows.Next() {
		entity := &Comment{}
		if err := rows.Scan(
			&entity.ID,
			&entity.ProfilePublicID,
			&entity.AuthorName,
			&entity.Body,
			&entity.CreatedAt,
		); err != nil {
			return nil, dberr.Wrap(fmt.Errorf("postgres_comment_scan_failed: %w", err), "list")
		}
		comments = append(comments, entity)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(fmt.Errorf("postgres_comment_rows_failed: %w", err), "list")
	}

	return comments, nil
}

/*
Create persists a new comment.

Parameters:
  - context: context.Context
  - comment: *Comment

Returns:
  - *Comment: The persisted record with store-assigned id and timestamp
  - error: Database execution errors
*/
func (repository *postgresRepository) Create(context context.Context, comment *Comment) (*Comment, error) {
	query := `INSERT INTO social.comment (id, profilepublicid, authorname, body, createdat)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING ` + commentColumns

	row := repository.pool.QueryRow(context, query,
		uuidv7.New(),
		comment.ProfilePublicID,
		comment.AuthorName,
		comment.Body,
	)

	persisted := &Comment{}
	if err := row.Scan(
		&persisted.ID,
		&persisted.ProfilePublicID,
		&persisted.AuthorName,
		&persisted.Body,
		&persisted.CreatedAt,
	); err != nil {
		return nil, dberr.Wrap(fmt.Errorf("postgres_comment_create_failed: %w", err), "create")
	}

	return persisted, nil
}

/*
DeleteByProfile removes every comment attached to one profile.

Description: Deleting zero rows is not an error; a profile without comments
is a normal state.

Parameters:
  - context: context.Context
  - profilePublicID: string

Returns:
  - error: Database execution errors
*/
func (repository *postgresRepository) DeleteByProfile(context context.Context, profilePublicID string) error {
	query := `DELETE FROM social.comment WHERE profilepublicid = $1`

	if _, err := repository.pool.Exec(context, query, profilePublicID); err != nil {
		return dberr.Wrap(fmt.Errorf("postgres_comment_delete_failed: %w", err), "delete")
	}

	return nil
}
