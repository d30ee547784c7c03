// Copyright (c) 2026 Visibles. All rights reserved.
// Author: dev@visibles.org

package profile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visibles-org/visibles/internal/platform/apperr"
	"github.com/visibles-org/visibles/pkg/pointer"
)

// fakeRepository is an in-memory [Repository] keyed by public identifier.
// Error injection per method lets tests exercise degraded paths.
type fakeRepository struct {
	records map[string]*Profile
	order   []string

	listErr    error
	saveErr    error
	deleteErr  error
	counterErr error

	// failFor injects a failure for specific public identifiers on the
	// flag-toggle and delete paths, for partial bulk failures.
	failFor map[string]error

	listCalls    int
	counterCalls map[Counter]int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		records:      make(map[string]*Profile),
		failFor:      make(map[string]error),
		counterCalls: make(map[Counter]int),
	}
}

func (f *fakeRepository) List(_ context.Context, filter ListFilter) ([]*Profile, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}

	var out []*Profile
	for _, publicID := range f.order {
		record := f.records[publicID]
		if filter == ListPublic && !record.IsListedPublicly() {
			continue
		}
		out = append(out, record)
	}
	return out, nil
}

func (f *fakeRepository) FindByPublicID(_ context.Context, publicID string) (*Profile, error) {
	record, ok := f.records[publicID]
	if !ok {
		return nil, apperr.NotFound("Profile")
	}
	return record, nil
}

func (f *fakeRepository) Save(_ context.Context, profile *Profile) (*Profile, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}

	existing, ok := f.records[profile.PublicID]
	if ok {
		// Upsert semantics: identity and creation time never change.
		profile.ID = existing.ID
		profile.CreatedAt = existing.CreatedAt
	} else {
		profile.ID = fmt.Sprintf("id-%d", len(f.records)+1)
		profile.CreatedAt = time.Now()
		f.order = append(f.order, profile.PublicID)
	}

	f.records[profile.PublicID] = profile
	return profile, nil
}

func (f *fakeRepository) Delete(_ context.Context, publicID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if err := f.failFor[publicID]; err != nil {
		return err
	}
	if _, ok := f.records[publicID]; !ok {
		return apperr.NotFound("Profile")
	}
	delete(f.records, publicID)
	return nil
}

func (f *fakeRepository) SetVisibility(_ context.Context, publicID string, isPublic bool) error {
	if err := f.failFor[publicID]; err != nil {
		return err
	}
	record, ok := f.records[publicID]
	if !ok {
		return apperr.NotFound("Profile")
	}
	record.IsPublic = isPublic
	return nil
}

func (f *fakeRepository) SetArchived(_ context.Context, publicID string, isArchived bool) error {
	if err := f.failFor[publicID]; err != nil {
		return err
	}
	record, ok := f.records[publicID]
	if !ok {
		return apperr.NotFound("Profile")
	}
	record.IsArchived = isArchived
	return nil
}

func (f *fakeRepository) IncrementCounter(_ context.Context, publicID string, counter Counter) error {
	if f.counterErr != nil {
		return f.counterErr
	}
	if _, ok := f.records[publicID]; !ok {
		return apperr.NotFound("Profile")
	}
	f.counterCalls[counter]++
	return nil
}

func newTestService(repository *fakeRepository) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repository, "https://visibles.org", logger)
}

func seed(repository *fakeRepository, profiles ...*Profile) {
	for _, p := range profiles {
		repository.records[p.PublicID] = p
		repository.order = append(repository.order, p.PublicID)
	}
}

// # Public Read Path

func TestPublicListing_ExcludesArchivedAndUnpublished(t *testing.T) {
	repository := newFakeRepository()
	seed(repository,
		&Profile{PublicID: "listed-111111", Name: "Listed", IsPublic: true},
		&Profile{PublicID: "hidden-222222", Name: "Hidden", IsPublic: false},
		&Profile{PublicID: "buried-333333", Name: "Buried", IsPublic: true, IsArchived: true},
	)
	service := newTestService(repository)

	profiles, err := service.PublicListing(context.Background())

	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "listed-111111", profiles[0].PublicID)
}

func TestPublicListing_ServesFromCache(t *testing.T) {
	repository := newFakeRepository()
	seed(repository, &Profile{PublicID: "listed-111111", IsPublic: true})
	service := newTestService(repository)

	_, err := service.PublicListing(context.Background())
	require.NoError(t, err)
	_, err = service.PublicListing(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, repository.listCalls)
}

func TestPublicListing_CachesEmptyResult(t *testing.T) {
	repository := newFakeRepository()
	service := newTestService(repository)

	profiles, err := service.PublicListing(context.Background())
	require.NoError(t, err)
	assert.Empty(t, profiles)

	_, err = service.PublicListing(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, repository.listCalls)
}

func TestPublicListing_StorageFailureSurfaces(t *testing.T) {
	repository := newFakeRepository()
	repository.listErr = errors.New("connection refused")
	service := newTestService(repository)

	_, err := service.PublicListing(context.Background())

	assert.Error(t, err)
}

func TestGetByPublicID_CounterFailureDoesNotFailRead(t *testing.T) {
	repository := newFakeRepository()
	seed(repository, &Profile{PublicID: "listed-111111", IsPublic: true})
	repository.counterErr = errors.New("counter down")
	service := newTestService(repository)

	found, err := service.GetByPublicID(context.Background(), "listed-111111", true)

	require.NoError(t, err)
	assert.Equal(t, "listed-111111", found.PublicID)
}

func TestGetByPublicID_RecordsView(t *testing.T) {
	repository := newFakeRepository()
	seed(repository, &Profile{PublicID: "listed-111111", IsPublic: true})
	service := newTestService(repository)

	_, err := service.GetByPublicID(context.Background(), "listed-111111", true)
	require.NoError(t, err)
	_, err = service.GetByPublicID(context.Background(), "listed-111111", false)
	require.NoError(t, err)

	assert.Equal(t, 1, repository.counterCalls[CounterViews])
}

func TestGetByPublicID_UnlistedNeverCountsAView(t *testing.T) {
	repository := newFakeRepository()
	seed(repository,
		&Profile{PublicID: "hidden-222222", IsPublic: false},
		&Profile{PublicID: "buried-333333", IsPublic: true, IsArchived: true},
	)
	service := newTestService(repository)

	for _, publicID := range []string{"hidden-222222", "buried-333333"} {
		_, err := service.GetByPublicID(context.Background(), publicID, true)

		var appError *apperr.AppError
		require.ErrorAs(t, err, &appError)
		assert.Equal(t, "NOT_FOUND", appError.Code)
	}

	// A request answered with not-found is not a view.
	assert.Zero(t, repository.counterCalls[CounterViews])

	// The admin path still reads the record without counting.
	found, err := service.GetByPublicID(context.Background(), "hidden-222222", false)
	require.NoError(t, err)
	assert.Equal(t, "hidden-222222", found.PublicID)
	assert.Zero(t, repository.counterCalls[CounterViews])
}

// # Write Path

func TestSave_AssignsPublicID(t *testing.T) {
	repository := newFakeRepository()
	service := newTestService(repository)

	persisted, err := service.Save(context.Background(), &Profile{Name: "Jean"})

	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^jean-[a-z0-9]{6}$`), persisted.PublicID)
}

func TestSave_SameNameYieldsDistinctIdentifiers(t *testing.T) {
	repository := newFakeRepository()
	service := newTestService(repository)

	first, err := service.Save(context.Background(), &Profile{Name: "Marie"})
	require.NoError(t, err)
	second, err := service.Save(context.Background(), &Profile{Name: "Marie"})
	require.NoError(t, err)

	assert.NotEqual(t, first.PublicID, second.PublicID)
	assert.Len(t, repository.records, 2)
}

func TestSave_ResubmitUpsertsInsteadOfDuplicating(t *testing.T) {
	repository := newFakeRepository()
	service := newTestService(repository)

	first, err := service.Save(context.Background(), &Profile{Name: "Jean"})
	require.NoError(t, err)

	second, err := service.Save(context.Background(), &Profile{
		Name:     "Jean",
		PublicID: first.PublicID,
		Story:    "Updated story.",
	})
	require.NoError(t, err)

	assert.Len(t, repository.records, 1)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.Equal(t, "Updated story.", repository.records[first.PublicID].Story)
}

func TestSave_Validation(t *testing.T) {
	testCases := []struct {
		name    string
		profile *Profile
	}{
		{
			name:    "missing name",
			profile: &Profile{PublicID: "anon-abc123"},
		},
		{
			name:    "malformed public identifier",
			profile: &Profile{Name: "Jean", PublicID: "Not A Slug!"},
		},
		{
			name: "urgency score out of range",
			profile: &Profile{
				Name: "Jean",
				Meta: Metadata{UrgencyScore: pointer.To[int16](11)},
			},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			service := newTestService(newFakeRepository())

			_, err := service.Save(context.Background(), testCase.profile)

			var appError *apperr.AppError
			require.ErrorAs(t, err, &appError)
			assert.Equal(t, "VALIDATION_ERROR", appError.Code)
		})
	}
}

func TestSave_NormalizesUrgentNeeds(t *testing.T) {
	service := newTestService(newFakeRepository())

	persisted, err := service.Save(context.Background(), &Profile{
		Name:        "Jean",
		Needs:       "Logement\nVêtements chauds",
		UrgentNeeds: []string{"Logement", "Un hélicoptère"},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"Logement"}, persisted.UrgentNeeds)
}

func TestWrites_InvalidateListingCache(t *testing.T) {
	repository := newFakeRepository()
	seed(repository, &Profile{PublicID: "listed-111111", Name: "Listed", IsPublic: true})
	service := newTestService(repository)

	// Warm the cache.
	_, err := service.PublicListing(context.Background())
	require.NoError(t, err)

	require.NoError(t, service.SetArchived(context.Background(), "listed-111111", true))

	profiles, err := service.PublicListing(context.Background())
	require.NoError(t, err)
	assert.Empty(t, profiles)
	assert.Equal(t, 2, repository.listCalls)
}

func TestAdminList_BypassesCache(t *testing.T) {
	repository := newFakeRepository()
	seed(repository, &Profile{PublicID: "buried-333333", IsPublic: true, IsArchived: true})
	service := newTestService(repository)

	// Warm the public cache, which excludes the archived record.
	_, err := service.PublicListing(context.Background())
	require.NoError(t, err)

	all, err := service.AdminList(context.Background())
	require.NoError(t, err)

	assert.Len(t, all, 1)
	assert.Equal(t, 2, repository.listCalls)
}

// # Bulk Operations

func TestBulk_PartialFailureContinues(t *testing.T) {
	repository := newFakeRepository()
	seed(repository,
		&Profile{PublicID: "first-111111", IsPublic: true},
		&Profile{PublicID: "second-222222", IsPublic: true},
		&Profile{PublicID: "third-333333", IsPublic: true},
	)
	repository.failFor["second-222222"] = errors.New("row lock timeout")
	service := newTestService(repository)

	results, err := service.Bulk(context.Background(), BulkArchive,
		[]string{"first-111111", "second-222222", "third-333333"})

	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.True(t, results[0].OK)
	assert.False(t, results[1].OK)
	assert.Equal(t, "row lock timeout", results[1].Error)
	assert.True(t, results[2].OK)

	// The failed item kept its previous state; the others changed.
	assert.True(t, repository.records["first-111111"].IsArchived)
	assert.False(t, repository.records["second-222222"].IsArchived)
	assert.True(t, repository.records["third-333333"].IsArchived)
}

func TestDelete_NotifiesDeletionListener(t *testing.T) {
	repository := newFakeRepository()
	seed(repository, &Profile{PublicID: "listed-111111", IsPublic: true})
	service := newTestService(repository)

	var purged []string
	service.OnDelete(func(_ context.Context, publicID string) error {
		purged = append(purged, publicID)
		return nil
	})

	require.NoError(t, service.Delete(context.Background(), "listed-111111"))

	assert.Equal(t, []string{"listed-111111"}, purged)
	assert.NotContains(t, repository.records, "listed-111111")
}

func TestDelete_ListenerFailureDoesNotFailTheDelete(t *testing.T) {
	repository := newFakeRepository()
	seed(repository, &Profile{PublicID: "listed-111111", IsPublic: true})
	service := newTestService(repository)
	service.OnDelete(func(context.Context, string) error {
		return errors.New("comment store down")
	})

	err := service.Delete(context.Background(), "listed-111111")

	require.NoError(t, err)
	assert.NotContains(t, repository.records, "listed-111111")
}

func TestBulk_DeleteNotifiesListenerPerRemovedProfile(t *testing.T) {
	repository := newFakeRepository()
	seed(repository,
		&Profile{PublicID: "first-111111", IsPublic: true},
		&Profile{PublicID: "second-222222", IsPublic: true},
		&Profile{PublicID: "third-333333", IsPublic: true},
	)
	repository.failFor["second-222222"] = errors.New("row lock timeout")
	service := newTestService(repository)

	var purged []string
	service.OnDelete(func(_ context.Context, publicID string) error {
		purged = append(purged, publicID)
		return nil
	})

	results, err := service.Bulk(context.Background(), BulkDelete,
		[]string{"first-111111", "second-222222", "third-333333"})

	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.False(t, results[1].OK)

	// Only removed profiles trigger cleanup; the failed item keeps its rows.
	assert.Equal(t, []string{"first-111111", "third-333333"}, purged)
}

func TestBulk_UnknownActionRejected(t *testing.T) {
	service := newTestService(newFakeRepository())

	_, err := service.Bulk(context.Background(), BulkAction("explode"), []string{"x"})

	var appError *apperr.AppError
	require.ErrorAs(t, err, &appError)
	assert.Equal(t, "VALIDATION_ERROR", appError.Code)
}

func TestBulk_Actions(t *testing.T) {
	testCases := []struct {
		name   string
		action BulkAction
		check  func(t *testing.T, repository *fakeRepository)
	}{
		{
			name:   "publish",
			action: BulkPublish,
			check: func(t *testing.T, repository *fakeRepository) {
				assert.True(t, repository.records["target-111111"].IsPublic)
			},
		},
		{
			name:   "unpublish",
			action: BulkUnpublish,
			check: func(t *testing.T, repository *fakeRepository) {
				assert.False(t, repository.records["target-111111"].IsPublic)
			},
		},
		{
			name:   "unarchive",
			action: BulkUnarchive,
			check: func(t *testing.T, repository *fakeRepository) {
				assert.False(t, repository.records["target-111111"].IsArchived)
			},
		},
		{
			name:   "delete",
			action: BulkDelete,
			check: func(t *testing.T, repository *fakeRepository) {
				assert.NotContains(t, repository.records, "target-111111")
			},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			repository := newFakeRepository()
			seed(repository, &Profile{PublicID: "target-111111", IsArchived: true})
			service := newTestService(repository)

			results, err := service.Bulk(context.Background(), testCase.action, []string{"target-111111"})

			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.True(t, results[0].OK)
			testCase.check(t, repository)
		})
	}
}

// # Sharing

func TestPublicURL(t *testing.T) {
	service := newTestService(newFakeRepository())

	assert.Equal(t, "https://visibles.org/profils/jean-a1b2c3", service.PublicURL("jean-a1b2c3"))
}

func TestQRCode(t *testing.T) {
	repository := newFakeRepository()
	seed(repository,
		&Profile{PublicID: "listed-111111", IsPublic: true},
		&Profile{PublicID: "buried-333333", IsPublic: true, IsArchived: true},
	)
	service := newTestService(repository)

	t.Run("renders a PNG for a listed profile", func(t *testing.T) {
		png, err := service.QRCode(context.Background(), "listed-111111", 256)

		require.NoError(t, err)
		assert.Equal(t, "\x89PNG", string(png[:4]))
		assert.Equal(t, 1, repository.counterCalls[CounterQRDownloads])
	})

	t.Run("archived profile is not shareable", func(t *testing.T) {
		_, err := service.QRCode(context.Background(), "buried-333333", 256)

		var appError *apperr.AppError
		require.ErrorAs(t, err, &appError)
		assert.Equal(t, "NOT_FOUND", appError.Code)
	})

	t.Run("out-of-range size falls back to the default", func(t *testing.T) {
		png, err := service.QRCode(context.Background(), "listed-111111", 9999)

		require.NoError(t, err)
		assert.NotEmpty(t, png)
	})
}

func TestRecordShare(t *testing.T) {
	repository := newFakeRepository()
	seed(repository, &Profile{PublicID: "listed-111111", IsPublic: true})
	service := newTestService(repository)

	require.NoError(t, service.RecordShare(context.Background(), "listed-111111"))
	assert.Equal(t, 1, repository.counterCalls[CounterLinkShares])
}
