package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/support-agent/backend/internal/storage/models"
)

type memUserStore struct {
	users map[string]*models.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[string]*models.User)}
}

func (m *memUserStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return m.users[username], nil
}

func (m *memUserStore) Insert(ctx context.Context, username, hashedPassword string) (string, error) {
	id := uuid.New().String()
	m.users[username] = &models.User{
		ID:             id,
		Username:       username,
		HashedPassword: hashedPassword,
	}
	return id, nil
}

func newTestService(store UserStore) *Service {
	// MinCost keeps the bcrypt work factor out of the test runtime.
	return NewService(store, "test-secret", 3600, 4)
}

func TestRegisterAndAuthenticate(t *testing.T) {
	store := newMemUserStore()
	svc := newTestService(store)

	err := svc.Register(context.Background(), "alice", "s3cret")
	require.NoError(t, err)

	// The stored password is a bcrypt hash, never plaintext.
	assert.NotEqual(t, "s3cret", store.users["alice"].HashedPassword)

	user, err := svc.Authenticate(context.Background(), "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := newTestService(newMemUserStore())

	require.NoError(t, svc.Register(context.Background(), "alice", "one"))

	err := svc.Register(context.Background(), "alice", "two")
	assert.True(t, errors.Is(err, ErrUserExists))
}

func TestRegisterRejectsEmptyFields(t *testing.T) {
	svc := newTestService(newMemUserStore())

	assert.Error(t, svc.Register(context.Background(), "", "pw"))
	assert.Error(t, svc.Register(context.Background(), "alice", ""))
}

func TestAuthenticateWrongPassword(t *testing.T) {
	svc := newTestService(newMemUserStore())
	require.NoError(t, svc.Register(context.Background(), "alice", "s3cret"))

	_, err := svc.Authenticate(context.Background(), "alice", "wrong")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
}

func TestAuthenticateUnknownUser(t *testing.T) {
	svc := newTestService(newMemUserStore())

	_, err := svc.Authenticate(context.Background(), "nobody", "pw")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
}

func TestTokenRoundTrip(t *testing.T) {
	svc := newTestService(newMemUserStore())

	token, err := svc.IssueToken("alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	username, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	issuer := NewService(newMemUserStore(), "secret-a", 3600, 4)
	verifier := NewService(newMemUserStore(), "secret-b", 3600, 4)

	token, err := issuer.IssueToken("alice")
	require.NoError(t, err)

	_, err = verifier.VerifyToken(token)
	assert.True(t, errors.Is(err, ErrUnauthenticated))
}

func TestVerifyTokenExpired(t *testing.T) {
	svc := NewService(newMemUserStore(), "test-secret", -60, 4)

	token, err := svc.IssueToken("alice")
	require.NoError(t, err)

	_, err = svc.VerifyToken(token)
	assert.True(t, errors.Is(err, ErrUnauthenticated))
}

func TestVerifyTokenGarbage(t *testing.T) {
	svc := newTestService(newMemUserStore())

	_, err := svc.VerifyToken("not-a-jwt")
	assert.True(t, errors.Is(err, ErrUnauthenticated))
}
