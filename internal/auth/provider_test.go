package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"invoice-dashboard-backend/internal/models"
	"invoice-dashboard-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeUsers struct {
	users map[string]*models.User
	err   error
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[strings.ToLower(email)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func newTestProvider(t *testing.T) (*CredentialsProvider, *fakeUsers, *models.User) {
	t.Helper()
	hash, err := HashPassword("123456", bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{ID: uuid.New(), Name: "User", Email: "user@nextmail.com", Password: hash}
	users := &fakeUsers{users: map[string]*models.User{user.Email: user}}
	sessions := NewSessionManager("secret", time.Hour, nil)
	return NewCredentialsProvider(users, sessions), users, user
}

func TestSignInSuccess(t *testing.T) {
	p, _, user := newTestProvider(t)

	s, err := p.SignIn(context.Background(), CredentialsProviderID, Credentials{Email: " user@nextmail.com ", Password: "123456"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, s.User.UserID)
	assert.Equal(t, "User", s.User.Name)
	assert.NotEmpty(t, s.Token)
}

func TestSignInClassifiesBadCredentials(t *testing.T) {
	p, _, _ := newTestProvider(t)

	cases := []struct {
		name  string
		creds Credentials
	}{
		{name: "wrong password", creds: Credentials{Email: "user@nextmail.com", Password: "654321"}},
		{name: "unknown email", creds: Credentials{Email: "nobody@nextmail.com", Password: "123456"}},
		{name: "malformed email", creds: Credentials{Email: "user", Password: "123456"}},
		{name: "short password", creds: Credentials{Email: "user@nextmail.com", Password: "123"}},
		{name: "empty form"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := p.SignIn(context.Background(), CredentialsProviderID, tc.creds)
			var authErr *Error
			require.ErrorAs(t, err, &authErr)
			assert.Equal(t, ErrorTypeCredentialsSignin, authErr.Type)
		})
	}
}

func TestSignInUnknownProvider(t *testing.T) {
	p, _, _ := newTestProvider(t)

	_, err := p.SignIn(context.Background(), "github", Credentials{Email: "user@nextmail.com", Password: "123456"})
	var authErr *Error
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, ErrorTypeConfiguration, authErr.Type)
}

func TestSignInStoreFailureIsUnclassified(t *testing.T) {
	p, users, _ := newTestProvider(t)
	boom := errors.New("connection refused")
	users.err = boom

	_, err := p.SignIn(context.Background(), CredentialsProviderID, Credentials{Email: "user@nextmail.com", Password: "123456"})
	require.ErrorIs(t, err, boom)
	var authErr *Error
	assert.False(t, errors.As(err, &authErr))
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("123456", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("123456")))
}
