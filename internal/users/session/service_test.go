// Copyright (c) 2026 Visibles. All rights reserved.
// Author: dev@visibles.org

package session

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visibles-org/visibles/internal/platform/apperr"
	"github.com/visibles-org/visibles/internal/platform/sec"
)

// demoPassword is hashed once for the whole test file; bcrypt is slow.
const demoPassword = "correct-horse-battery"

var demoPasswordHash string

func TestMain(m *testing.M) {
	hash, err := sec.HashPassword(demoPassword)
	if err != nil {
		panic(err)
	}
	demoPasswordHash = hash
	m.Run()
}

// fakeUserRepository is an in-memory [UserRepository].
type fakeUserRepository struct {
	byEmail map[string]*User
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{byEmail: make(map[string]*User)}
}

func (f *fakeUserRepository) FindByID(_ context.Context, id string) (*User, error) {
	for _, user := range f.byEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (f *fakeUserRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	return user, nil
}

func (f *fakeUserRepository) Create(_ context.Context, user *User) (*User, error) {
	if _, ok := f.byEmail[user.Email]; ok {
		return nil, apperr.Conflict("A record with this identifier already exists")
	}
	stored := *user
	stored.ID = "user-" + user.Email
	stored.CreatedAt = time.Now()
	f.byEmail[user.Email] = &stored
	return &stored, nil
}

// fakeSessionRepository is an in-memory [SessionRepository] with a fake
// clock for expiry checks.
type fakeSessionRepository struct {
	records   map[string]Session
	expiresAt map[string]time.Time
	now       time.Time
}

func newFakeSessionRepository() *fakeSessionRepository {
	return &fakeSessionRepository{
		records:   make(map[string]Session),
		expiresAt: make(map[string]time.Time),
		now:       time.Now(),
	}
}

func (f *fakeSessionRepository) Save(_ context.Context, tokenHash string, session Session, ttl time.Duration) error {
	f.records[tokenHash] = session
	f.expiresAt[tokenHash] = f.now.Add(ttl)
	return nil
}

func (f *fakeSessionRepository) Touch(_ context.Context, tokenHash string, ttl time.Duration) (*Session, error) {
	record, ok := f.records[tokenHash]
	if !ok || f.now.After(f.expiresAt[tokenHash]) {
		return nil, apperr.NotFound("Session")
	}
	f.expiresAt[tokenHash] = f.now.Add(ttl)
	return &record, nil
}

func (f *fakeSessionRepository) Delete(_ context.Context, tokenHash string) error {
	delete(f.records, tokenHash)
	delete(f.expiresAt, tokenHash)
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeUserRepository, *fakeSessionRepository) {
	t.Helper()

	tokens, err := sec.NewTokenService("test-secret-0123456789abcdef", "visibles.org")
	require.NoError(t, err)

	users := newFakeUserRepository()
	sessions := newFakeSessionRepository()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewService(users, sessions, tokens, logger), users, sessions
}

func seedWorker(t *testing.T, users *fakeUserRepository) *User {
	t.Helper()

	user, err := users.Create(context.Background(), &User{
		Email:        "worker@visibles.org",
		Name:         "Demo Worker",
		PasswordHash: demoPasswordHash,
		Role:         sec.RoleSocialWorker,
	})
	require.NoError(t, err)
	return user
}

// # Login

func TestLogin(t *testing.T) {
	service, users, _ := newTestService(t)
	seedWorker(t, users)

	credentials, err := service.Login(context.Background(), "Worker@Visibles.org ", demoPassword)

	require.NoError(t, err)
	assert.NotEmpty(t, credentials.AccessToken)
	assert.Equal(t, "worker@visibles.org", credentials.User.Email)
	assert.True(t, credentials.ExpiresAt.After(time.Now()))
}

func TestLogin_FailureMessagesAreIndistinguishable(t *testing.T) {
	service, users, _ := newTestService(t)
	seedWorker(t, users)

	_, unknownErr := service.Login(context.Background(), "ghost@visibles.org", demoPassword)
	_, wrongErr := service.Login(context.Background(), "worker@visibles.org", "wrong-password")

	require.Error(t, unknownErr)
	require.Error(t, wrongErr)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())

	var appError *apperr.AppError
	require.ErrorAs(t, unknownErr, &appError)
	assert.Equal(t, "UNAUTHORIZED", appError.Code)
}

// # Verification & Sliding Window

func TestVerifyToken_LiveSession(t *testing.T) {
	service, users, _ := newTestService(t)
	user := seedWorker(t, users)

	credentials, err := service.Login(context.Background(), user.Email, demoPassword)
	require.NoError(t, err)

	claims, err := service.VerifyToken(context.Background(), credentials.AccessToken)

	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, string(sec.RoleSocialWorker), claims.Role)
}

func TestVerifyToken_SlidesTheWindow(t *testing.T) {
	service, users, sessions := newTestService(t)
	seedWorker(t, users)

	credentials, err := service.Login(context.Background(), "worker@visibles.org", demoPassword)
	require.NoError(t, err)
	tokenHash := sec.HashToken(credentials.AccessToken)
	initialExpiry := sessions.expiresAt[tokenHash]

	// Activity twelve hours in still verifies and pushes the window out.
	sessions.now = sessions.now.Add(12 * time.Hour)
	_, err = service.VerifyToken(context.Background(), credentials.AccessToken)
	require.NoError(t, err)
	assert.True(t, sessions.expiresAt[tokenHash].After(initialExpiry))

	// Thanks to the refresh, the session survives past the original expiry.
	sessions.now = sessions.now.Add(20 * time.Hour)
	_, err = service.VerifyToken(context.Background(), credentials.AccessToken)
	assert.NoError(t, err)
}

func TestVerifyToken_ExpiredSessionIsAnonymous(t *testing.T) {
	service, users, sessions := newTestService(t)
	seedWorker(t, users)

	credentials, err := service.Login(context.Background(), "worker@visibles.org", demoPassword)
	require.NoError(t, err)

	// A full idle window kills the session even though the JWT is valid.
	sessions.now = sessions.now.Add(25 * time.Hour)
	_, err = service.VerifyToken(context.Background(), credentials.AccessToken)

	var appError *apperr.AppError
	require.ErrorAs(t, err, &appError)
	assert.Equal(t, "UNAUTHORIZED", appError.Code)
}

func TestVerifyToken_GarbageToken(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.VerifyToken(context.Background(), "not-a-jwt")

	assert.Error(t, err)
}

// # Logout

func TestLogout_RevokesImmediately(t *testing.T) {
	service, users, _ := newTestService(t)
	seedWorker(t, users)

	credentials, err := service.Login(context.Background(), "worker@visibles.org", demoPassword)
	require.NoError(t, err)

	require.NoError(t, service.Logout(context.Background(), credentials.AccessToken))

	_, err = service.VerifyToken(context.Background(), credentials.AccessToken)
	assert.Error(t, err)

	// Logging out again is harmless.
	assert.NoError(t, service.Logout(context.Background(), credentials.AccessToken))
}

// # Registration

func TestRegister(t *testing.T) {
	service, _, _ := newTestService(t)

	credentials, err := service.Register(context.Background(), "Claire", "claire@example.org", "long-enough-pass")

	require.NoError(t, err)
	assert.Equal(t, sec.RoleViewer, credentials.User.Role)
	assert.NotEmpty(t, credentials.AccessToken)

	// The fresh account is logged straight in.
	claims, err := service.VerifyToken(context.Background(), credentials.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, credentials.User.ID, claims.UserID)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	service, users, _ := newTestService(t)
	seedWorker(t, users)

	_, err := service.Register(context.Background(), "Intruder", "worker@visibles.org", "long-enough-pass")

	var appError *apperr.AppError
	require.ErrorAs(t, err, &appError)
	assert.Equal(t, "CONFLICT", appError.Code)
}

func TestRegister_Validation(t *testing.T) {
	testCases := []struct {
		name     string
		userName string
		email    string
		password string
	}{
		{"missing name", "", "claire@example.org", "long-enough-pass"},
		{"malformed email", "Claire", "not-an-email", "long-enough-pass"},
		{"short password", "Claire", "claire@example.org", "short"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			service, _, _ := newTestService(t)

			_, err := service.Register(context.Background(), testCase.userName, testCase.email, testCase.password)

			var appError *apperr.AppError
			require.ErrorAs(t, err, &appError)
			assert.Equal(t, "VALIDATION_ERROR", appError.Code)
		})
	}
}

// # Seeding

func TestEnsureSeedAccounts(t *testing.T) {
	service, users, _ := newTestService(t)

	require.NoError(t, service.EnsureSeedAccounts(context.Background(), demoPasswordHash))

	admin, err := users.FindByEmail(context.Background(), "admin@visibles.org")
	require.NoError(t, err)
	assert.Equal(t, sec.RoleAdmin, admin.Role)

	// Second run leaves existing accounts untouched.
	require.NoError(t, service.EnsureSeedAccounts(context.Background(), demoPasswordHash))

	// An empty hash disables seeding entirely.
	empty, _, _ := newTestService(t)
	require.NoError(t, empty.EnsureSeedAccounts(context.Background(), ""))
}
