package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRevocations struct {
	mu      sync.Mutex
	revoked map[uuid.UUID]time.Time
	err     error
}

func newMemoryRevocations() *memoryRevocations {
	return &memoryRevocations{revoked: map[uuid.UUID]time.Time{}}
}

func (m *memoryRevocations) MarkRevoked(_ context.Context, id uuid.UUID, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[id] = expiresAt
	return nil
}

func (m *memoryRevocations) IsRevoked(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.revoked[id]
	return ok, nil
}

func testIdentity() Identity {
	return Identity{UserID: uuid.New(), Email: "user@nextmail.com", Name: "User"}
}

func TestSessionIssueAndParse(t *testing.T) {
	m := NewSessionManager("secret", time.Hour, newMemoryRevocations())
	user := testIdentity()

	issued, err := m.Issue(user)
	require.NoError(t, err)
	require.NotEmpty(t, issued.Token)
	assert.Equal(t, time.Hour, issued.ExpiresAt.Sub(issued.IssuedAt))

	parsed, err := m.Parse(context.Background(), issued.Token)
	require.NoError(t, err)
	assert.Equal(t, issued.ID, parsed.ID)
	assert.Equal(t, user, parsed.User)
	assert.True(t, issued.ExpiresAt.Equal(parsed.ExpiresAt))
}

func TestSessionParseRejectsForeignSignature(t *testing.T) {
	issuer := NewSessionManager("secret-a", time.Hour, nil)
	verifier := NewSessionManager("secret-b", time.Hour, nil)

	s, err := issuer.Issue(testIdentity())
	require.NoError(t, err)

	_, err = verifier.Parse(context.Background(), s.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionParseRejectsExpired(t *testing.T) {
	m := NewSessionManager("secret", time.Minute, nil)
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return start }

	s, err := m.Issue(testIdentity())
	require.NoError(t, err)

	m.now = func() time.Time { return start.Add(2 * time.Minute) }
	_, err = m.Parse(context.Background(), s.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionParseRejectsGarbage(t *testing.T) {
	m := NewSessionManager("secret", time.Hour, nil)
	_, err := m.Parse(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionRevoke(t *testing.T) {
	store := newMemoryRevocations()
	m := NewSessionManager("secret", time.Hour, store)

	s, err := m.Issue(testIdentity())
	require.NoError(t, err)
	require.NoError(t, m.Revoke(context.Background(), s))

	_, err = m.Parse(context.Background(), s.Token)
	assert.ErrorIs(t, err, ErrRevoked)
}

func TestSessionRevocationStoreFailure(t *testing.T) {
	store := newMemoryRevocations()
	store.err = errors.New("redis down")
	m := NewSessionManager("secret", time.Hour, store)

	s, err := m.Issue(testIdentity())
	require.NoError(t, err)

	_, err = m.Parse(context.Background(), s.Token)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidToken)
	assert.NotErrorIs(t, err, ErrRevoked)
}
