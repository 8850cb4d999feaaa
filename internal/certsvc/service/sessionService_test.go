package service

import (
	"context"
	"errors"
	"testing"

	"github.com/luxcert/cert-services/internal/certsvc/models"
	"github.com/luxcert/cert-services/internal/certsvc/store"

	"github.com/go-chi/jwtauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeIdentityStore struct {
	identities map[string]*models.Identity
	sessions   map[string]int64
	nextID     int64

	createSessionErr error
	deleteSessionErr error
}

func newFakeIdentityStore() *fakeIdentityStore {
	return &fakeIdentityStore{
		identities: map[string]*models.Identity{},
		sessions:   map[string]int64{},
	}
}

func (f *fakeIdentityStore) CreateIdentity(ctx context.Context, email, passwordHash string) (int64, error) {
	if _, ok := f.identities[email]; ok {
		return 0, store.ErrDuplicateEmail
	}
	f.nextID++
	f.identities[email] = &models.Identity{ID: f.nextID, Email: email, PasswordHash: passwordHash}
	return f.nextID, nil
}

func (f *fakeIdentityStore) GetByEmail(ctx context.Context, email string) (*models.Identity, error) {
	ident, ok := f.identities[email]
	if !ok {
		return nil, store.ErrIdentityNotFound
	}
	return ident, nil
}

func (f *fakeIdentityStore) CreateSession(ctx context.Context, tokenID string, userID int64) error {
	if f.createSessionErr != nil {
		return f.createSessionErr
	}
	f.sessions[tokenID] = userID
	return nil
}

func (f *fakeIdentityStore) DeleteSession(ctx context.Context, tokenID string) error {
	if f.deleteSessionErr != nil {
		return f.deleteSessionErr
	}
	delete(f.sessions, tokenID)
	return nil
}

func (f *fakeIdentityStore) SessionExists(ctx context.Context, tokenID string) (bool, error) {
	_, ok := f.sessions[tokenID]
	return ok, nil
}

type fakeProfileStore struct {
	profiles  map[int64]*models.Profile
	createErr error
	readErr   error
}

func newFakeProfileStore() *fakeProfileStore {
	return &fakeProfileStore{profiles: map[int64]*models.Profile{}}
}

func (f *fakeProfileStore) CreateProfile(ctx context.Context, p models.Profile) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.profiles[p.UserID] = &p
	return nil
}

func (f *fakeProfileStore) GetByUserID(ctx context.Context, userID int64) (*models.Profile, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	p, ok := f.profiles[userID]
	if !ok {
		return nil, store.ErrProfileNotFound
	}
	return p, nil
}

func newTestSessionService(idents *fakeIdentityStore, profiles *fakeProfileStore) *SessionService {
	tokenAuth := jwtauth.New("HS256", []byte("test-secret"), nil)
	return NewSessionService(idents, profiles, tokenAuth)
}

func TestSignUpCreatesIdentityAndProfile(t *testing.T) {
	idents := newFakeIdentityStore()
	profiles := newFakeProfileStore()
	svc := newTestSessionService(idents, profiles)

	result, err := svc.SignUp(context.Background(), "owner@example.com", "secret123", "ABC123", false)
	require.NoError(t, err)

	assert.Len(t, idents.identities, 1)
	assert.Len(t, profiles.profiles, 1)
	assert.Equal(t, "ABC123", profiles.profiles[1].Wallet)
	assert.Equal(t, "ABC123", result.Session.Wallet)
	assert.Equal(t, RouteUser, result.Route)
	assert.NotEmpty(t, result.Session.Token)
}

func TestSignUpCertifierRoute(t *testing.T) {
	svc := newTestSessionService(newFakeIdentityStore(), newFakeProfileStore())

	result, err := svc.SignUp(context.Background(), "cert@example.com", "secret123", "CERT1", true)
	require.NoError(t, err)
	assert.Equal(t, RouteCertifier, result.Route)
}

func TestSignUpDuplicateEmail(t *testing.T) {
	idents := newFakeIdentityStore()
	profiles := newFakeProfileStore()
	svc := newTestSessionService(idents, profiles)

	_, err := svc.SignUp(context.Background(), "owner@example.com", "secret123", "ABC123", false)
	require.NoError(t, err)

	_, err = svc.SignUp(context.Background(), "owner@example.com", "secret123", "XYZ789", false)
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "auth/email-already-in-use", authErr.Code)

	// the failed attempt must not leave a second identity or profile
	assert.Len(t, idents.identities, 1)
	assert.Len(t, profiles.profiles, 1)
}

func TestSignUpWeakPassword(t *testing.T) {
	svc := newTestSessionService(newFakeIdentityStore(), newFakeProfileStore())

	_, err := svc.SignUp(context.Background(), "owner@example.com", "abc", "ABC123", false)
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "auth/weak-password", authErr.Code)
}

func TestSignUpInvalidEmail(t *testing.T) {
	svc := newTestSessionService(newFakeIdentityStore(), newFakeProfileStore())

	_, err := svc.SignUp(context.Background(), "not-an-email", "secret123", "ABC123", false)
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "auth/invalid-email", authErr.Code)
}

func TestSignUpProfileWriteFailure(t *testing.T) {
	idents := newFakeIdentityStore()
	profiles := newFakeProfileStore()
	profiles.createErr = errors.New("write refused")
	svc := newTestSessionService(idents, profiles)

	result, err := svc.SignUp(context.Background(), "owner@example.com", "secret123", "ABC123", false)
	assert.Nil(t, result)

	var writeErr *StoreWriteError
	require.ErrorAs(t, err, &writeErr)
}

func seedIdentity(t *testing.T, idents *fakeIdentityStore, email, password string) int64 {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	id, err := idents.CreateIdentity(context.Background(), email, string(hash))
	require.NoError(t, err)
	return id
}

func TestLoginResolvesProfile(t *testing.T) {
	idents := newFakeIdentityStore()
	profiles := newFakeProfileStore()
	id := seedIdentity(t, idents, "owner@example.com", "secret123")
	profiles.profiles[id] = &models.Profile{UserID: id, Wallet: "ABC123", Certifier: false}
	svc := newTestSessionService(idents, profiles)

	result, err := svc.Login(context.Background(), "owner@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "ABC123", result.Session.Wallet)
	assert.Equal(t, RouteUser, result.Route)
}

func TestLoginWithoutProfileRoutesToLanding(t *testing.T) {
	idents := newFakeIdentityStore()
	seedIdentity(t, idents, "orphan@example.com", "secret123")
	svc := newTestSessionService(idents, newFakeProfileStore())

	result, err := svc.Login(context.Background(), "orphan@example.com", "secret123")
	require.NoError(t, err)

	// authenticated, but the wallet cache stays unset
	assert.Equal(t, RouteLanding, result.Route)
	assert.Equal(t, models.WalletSentinel, result.Session.Wallet)
	assert.False(t, result.Session.HasWallet())
	assert.NotEmpty(t, result.Session.Token)
}

func TestLoginBadCredentials(t *testing.T) {
	idents := newFakeIdentityStore()
	seedIdentity(t, idents, "owner@example.com", "secret123")
	svc := newTestSessionService(idents, newFakeProfileStore())

	_, err := svc.Login(context.Background(), "owner@example.com", "wrong")
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)

	_, err = svc.Login(context.Background(), "nobody@example.com", "secret123")
	require.ErrorAs(t, err, &authErr)
}

func TestLoginProfileReadFailure(t *testing.T) {
	idents := newFakeIdentityStore()
	profiles := newFakeProfileStore()
	seedIdentity(t, idents, "owner@example.com", "secret123")
	profiles.readErr = errors.New("read refused")
	svc := newTestSessionService(idents, profiles)

	result, err := svc.Login(context.Background(), "owner@example.com", "secret123")
	assert.Nil(t, result)

	var readErr *StoreReadError
	require.ErrorAs(t, err, &readErr)
}

func TestLogoutResetsWallet(t *testing.T) {
	idents := newFakeIdentityStore()
	profiles := newFakeProfileStore()
	id := seedIdentity(t, idents, "owner@example.com", "secret123")
	profiles.profiles[id] = &models.Profile{UserID: id, Wallet: "ABC123"}
	svc := newTestSessionService(idents, profiles)

	result, err := svc.Login(context.Background(), "owner@example.com", "secret123")
	require.NoError(t, err)

	sess := result.Session
	require.NoError(t, svc.Logout(context.Background(), sess))

	assert.Equal(t, models.WalletSentinel, sess.Wallet)
	assert.Empty(t, sess.Token)
	assert.Empty(t, idents.sessions)
}

func TestLogoutStoreFailureKeepsSession(t *testing.T) {
	idents := newFakeIdentityStore()
	profiles := newFakeProfileStore()
	id := seedIdentity(t, idents, "owner@example.com", "secret123")
	profiles.profiles[id] = &models.Profile{UserID: id, Wallet: "ABC123"}
	svc := newTestSessionService(idents, profiles)

	result, err := svc.Login(context.Background(), "owner@example.com", "secret123")
	require.NoError(t, err)

	idents.deleteSessionErr = errors.New("sign-out refused")
	sess := result.Session
	err = svc.Logout(context.Background(), sess)

	var writeErr *StoreWriteError
	require.ErrorAs(t, err, &writeErr)

	// sign-out unconfirmed: local state must not be cleared
	assert.Equal(t, "ABC123", sess.Wallet)
	assert.NotEmpty(t, sess.TokenID)
}

func TestAuthenticateRevokedSession(t *testing.T) {
	idents := newFakeIdentityStore()
	profiles := newFakeProfileStore()
	id := seedIdentity(t, idents, "owner@example.com", "secret123")
	profiles.profiles[id] = &models.Profile{UserID: id, Wallet: "ABC123"}
	svc := newTestSessionService(idents, profiles)

	result, err := svc.Login(context.Background(), "owner@example.com", "secret123")
	require.NoError(t, err)

	claims := map[string]interface{}{
		"jti":     result.Session.TokenID,
		"user_id": float64(id),
		"email":   "owner@example.com",
		"wallet":  "ABC123",
	}

	sess, err := svc.Authenticate(context.Background(), claims)
	require.NoError(t, err)
	assert.Equal(t, "ABC123", sess.Wallet)

	require.NoError(t, svc.Logout(context.Background(), sess))

	_, err = svc.Authenticate(context.Background(), claims)
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "auth/session-revoked", authErr.Code)
}
