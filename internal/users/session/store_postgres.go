// Copyright (c) 2026 Visibles. All rights reserved.
// Author: dev@visibles.org

package session

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/visibles-org/visibles/internal/platform/dberr"
	"github.com/visibles-org/visibles/pkg/uuidv7"
)

const userColumns = `id, email, name, passwordhash, role, createdat`

// # PostgreSQL Repository

// postgresUserRepository implements the [UserRepository] interface using pgx.
type postgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresUserRepository constructs a PostgreSQL backed account store.
func NewPostgresUserRepository(pool *pgxpool.Pool) UserRepository {
	return &postgresUserRepository{pool: pool}
}

/*
FindByID returns the account with the given ID.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *User: Hydrated entity
  - error: apperr.NotFound or database execution errors
*/
func (repository *postgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users.account WHERE id = $1`

	user, err := repository.scanOne(context, query, id)
	if err != nil {
		return nil, dberr.Wrap(fmt.Errorf("postgres_user_find_by_id_failed: %w", err), "find")
	}
	return user, nil
}

/*
FindByEmail returns the account with the given email, matched
case-insensitively.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *User: Hydrated entity
  - error: apperr.NotFound or database execution errors
*/
func (repository *postgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users.account WHERE LOWER(email) = LOWER($1)`

	user, err := repository.scanOne(context, query, email)
	if err != nil {
		return nil, dberr.Wrap(fmt.Errorf("postgres_user_find_by_email_failed: %w", err), "find")
	}
	return user, nil
}

/*
Create persists a brand-new staff account.

Parameters:
  - context: context.Context
  - user: *User

Returns:
  - *User: The persisted record with store-assigned id and timestamp
  - error: apperr.Conflict on duplicate email, or database execution errors
*/
func (repository *postgresUserRepository) Create(context context.Context, user *User) (*User, error) {
	query := `INSERT INTO users.account (id, email, name, passwordhash, role, createdat)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING ` + userColumns

	row := repository.pool.QueryRow(context, query,
		uuidv7.New(),
		user.Email,
		user.Name,
		user.PasswordHash,
		string(user.Role),
	)

	persisted := &User{}
	if err := row.Scan(
		&persisted.ID,
		&persisted.Email,
		&persisted.Name,
		&persisted.PasswordHash,
		&persisted.Role,
		&persisted.CreatedAt,
	); err != nil {
		return nil, dberr.Wrap(fmt.Errorf("postgres_user_create_failed: %w", err), "create")
	}

	return persisted, nil
}

// scanOne runs a single-row account query.
func (repository *postgresUserRepository) scanOne(context context.Context, query string, args ...any) (*User, error) {
	row := repository.pool.QueryRow(context, query, args...)

	user := &User{}
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
	); err != nil {
		return nil, err
	}

	return user, nil
}
