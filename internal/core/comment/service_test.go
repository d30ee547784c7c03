// Copyright (c) 2026 Visibles. All rights reserved.
// Author: dev@visibles.org

package comment

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visibles-org/visibles/internal/core/profile"
	"github.com/visibles-org/visibles/internal/platform/apperr"
)

// fakeRepository is an in-memory [Repository] keyed by profile identifier.
type fakeRepository struct {
	byProfile map[string][]*Comment
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{byProfile: make(map[string][]*Comment)}
}

func (f *fakeRepository) ListByProfile(_ context.Context, profilePublicID string) ([]*Comment, error) {
	return f.byProfile[profilePublicID], nil
}

func (f *fakeRepository) Create(_ context.Context, comment *Comment) (*Comment, error) {
	stored := *comment
	stored.ID = fmt.Sprintf("comment-%d", len(f.byProfile[comment.ProfilePublicID])+1)
	stored.CreatedAt = time.Now()
	f.byProfile[comment.ProfilePublicID] = append(f.byProfile[comment.ProfilePublicID], &stored)
	return &stored, nil
}

func (f *fakeRepository) DeleteByProfile(_ context.Context, profilePublicID string) error {
	delete(f.byProfile, profilePublicID)
	return nil
}

// fakeProfileGate serves canned profiles for the visibility gate.
type fakeProfileGate struct {
	profiles map[string]*profile.Profile
}

func (f *fakeProfileGate) FindByPublicID(_ context.Context, publicID string) (*profile.Profile, error) {
	found, ok := f.profiles[publicID]
	if !ok {
		return nil, apperr.NotFound("Profile")
	}
	return found, nil
}

func newTestService(repository *fakeRepository) (*Service, *fakeProfileGate) {
	gate := &fakeProfileGate{profiles: map[string]*profile.Profile{
		"listed-111111": {PublicID: "listed-111111", IsPublic: true},
		"buried-333333": {PublicID: "buried-333333", IsPublic: true, IsArchived: true},
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repository, gate, logger), gate
}

func TestCreate(t *testing.T) {
	repository := newFakeRepository()
	service, _ := newTestService(repository)

	created, err := service.Create(context.Background(), "listed-111111", "  Claire  ", "  Bon courage !  ")

	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Claire", created.AuthorName)
	assert.Equal(t, "Bon courage !", created.Body)
	assert.Equal(t, "listed-111111", created.ProfilePublicID)
}

func TestCreate_Validation(t *testing.T) {
	testCases := []struct {
		name       string
		authorName string
		body       string
	}{
		{"missing author name", "", "Bon courage"},
		{"whitespace author name", "   ", "Bon courage"},
		{"missing body", "Claire", ""},
		{"whitespace body", "Claire", "\n\t "},
		{"oversized author name", strings.Repeat("a", maxAuthorNameLength+1), "Bon courage"},
		{"oversized body", "Claire", strings.Repeat("b", maxBodyLength+1)},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			service, _ := newTestService(newFakeRepository())

			_, err := service.Create(context.Background(), "listed-111111", testCase.authorName, testCase.body)

			var appError *apperr.AppError
			require.ErrorAs(t, err, &appError)
			assert.Equal(t, "VALIDATION_ERROR", appError.Code)
		})
	}
}

func TestCreate_UnlistedProfileReportsNotFound(t *testing.T) {
	testCases := []struct {
		name     string
		publicID string
	}{
		{"archived profile", "buried-333333"},
		{"unknown profile", "ghost-999999"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			service, _ := newTestService(newFakeRepository())

			_, err := service.Create(context.Background(), testCase.publicID, "Claire", "Bon courage")

			var appError *apperr.AppError
			require.ErrorAs(t, err, &appError)
			assert.Equal(t, "NOT_FOUND", appError.Code)
		})
	}
}

func TestListForProfile_ChronologicalOrder(t *testing.T) {
	repository := newFakeRepository()
	service, _ := newTestService(repository)

	_, err := service.Create(context.Background(), "listed-111111", "Claire", "Premier message")
	require.NoError(t, err)
	_, err = service.Create(context.Background(), "listed-111111", "Marc", "Deuxième message")
	require.NoError(t, err)

	comments, err := service.ListForProfile(context.Background(), "listed-111111")

	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "Premier message", comments[0].Body)
	assert.Equal(t, "Deuxième message", comments[1].Body)
}

func TestListForProfile_EmptyIsNotAnError(t *testing.T) {
	service, _ := newTestService(newFakeRepository())

	comments, err := service.ListForProfile(context.Background(), "listed-111111")

	require.NoError(t, err)
	assert.NotNil(t, comments)
	assert.Empty(t, comments)
}

func TestListForProfile_HiddenProfile(t *testing.T) {
	service, gate := newTestService(newFakeRepository())
	gate.profiles["listed-111111"].IsPublic = false

	_, err := service.ListForProfile(context.Background(), "listed-111111")

	var appError *apperr.AppError
	require.ErrorAs(t, err, &appError)
	assert.Equal(t, "NOT_FOUND", appError.Code)
}

func TestPurgeForProfile(t *testing.T) {
	repository := newFakeRepository()
	service, _ := newTestService(repository)

	_, err := service.Create(context.Background(), "listed-111111", "Claire", "Bon courage")
	require.NoError(t, err)

	require.NoError(t, service.PurgeForProfile(context.Background(), "listed-111111"))
	assert.Empty(t, repository.byProfile["listed-111111"])
}
