// Copyright (c) 2026 Visibles. All rights reserved.
// Author: dev@visibles.org

package comment

import (
	"context"
	"log/slog"
	"strings"

	"github.com/visibles-org/visibles/internal/core/profile"
	"github.com/visibles-org/visibles/internal/platform/apperr"
	"github.com/visibles-org/visibles/internal/platform/validate"
)

// # Service Layer

// ProfileGate answers whether a profile is currently visible to the public.
// Comments only exist on pages visitors can actually reach.
type ProfileGate interface {
	FindByPublicID(context context.Context, publicID string) (*profile.Profile, error)
}

// Service orchestrates the business logic for profile comments.
type Service struct {
	repository Repository
	profiles   ProfileGate
	logger     *slog.Logger
}

// NewService constructs a new [Service] with its required dependencies.
func NewService(repository Repository, profiles ProfileGate, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		profiles:   profiles,
		logger:     logger,
	}
}

/*
ListForProfile returns the comments of one publicly listed profile.

Description: A hidden or archived profile reports not-found, exactly like
its page does, so the comment endpoint leaks nothing about unlisted records.

Parameters:
  - context: context.Context
  - profilePublicID: string

Returns:
  - []*Comment: Chronological comments, empty slice when there are none
  - error: apperr.NotFound or storage failures
*/
func (service *Service) ListForProfile(context context.Context, profilePublicID string) ([]*Comment, error) {
	if err := service.requireListedProfile(context, profilePublicID); err != nil {
		return nil, err
	}

	comments, err := service.repository.ListByProfile(context, profilePublicID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []*Comment{}
	}

	return comments, nil
}

/*
Create validates and persists a visitor comment.

Description: Author name and body are both mandatory after trimming; length
caps protect the page layout. The comment is rejected when the target
profile is not publicly listed.

Parameters:
  - context: context.Context
  - profilePublicID: string
  - authorName: string
  - body: string

Returns:
  - *Comment: The persisted record
  - error: Validation, apperr.NotFound, or persistence failures
*/
func (service *Service) Create(context context.Context, profilePublicID, authorName, body string) (*Comment, error) {
	authorName = strings.TrimSpace(authorName)
	body = strings.TrimSpace(body)

	validator := &validate.Validator{}
	validator.
		Required("author_name", authorName).
		MaxLen("author_name", authorName, maxAuthorNameLength).
		Required("body", body).
		MaxLen("body", body, maxBodyLength)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := service.requireListedProfile(context, profilePublicID); err != nil {
		return nil, err
	}

	created, err := service.repository.Create(context, &Comment{
		ProfilePublicID: profilePublicID,
		AuthorName:      authorName,
		Body:            body,
	})
	if err != nil {
		return nil, err
	}

	service.logger.Info("comment_created",
		slog.String("profile_public_id", profilePublicID),
		slog.String("comment_id", created.ID),
	)

	return created, nil
}

/*
PurgeForProfile removes every comment of a deleted profile.

Parameters:
  - context: context.Context
  - profilePublicID: string

Returns:
  - error: Persistence failures
*/
func (service *Service) PurgeForProfile(context context.Context, profilePublicID string) error {
	return service.repository.DeleteByProfile(context, profilePublicID)
}

// requireListedProfile reports not-found unless the profile is publicly
// listed right now.
func (service *Service) requireListedProfile(context context.Context, profilePublicID string) error {
	found, err := service.profiles.FindByPublicID(context, profilePublicID)
	if err != nil {
		return err
	}
	if !found.IsListedPublicly() {
		return apperr.NotFound("Profile")
	}
	return nil
}
