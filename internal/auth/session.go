package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid session token")
	ErrRevoked      = errors.New("session revoked")
)

// Identity is the signed-in operator carried by a session.
type Identity struct {
	UserID uuid.UUID
	Email  string
	Name   string
}

// Session is an issued token plus the claims it encodes.
type Session struct {
	Token     string
	ID        uuid.UUID
	User      Identity
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// RevocationStore remembers sessions that were signed out before they expired.
type RevocationStore interface {
	MarkRevoked(ctx context.Context, sessionID uuid.UUID, expiresAt time.Time) error
	IsRevoked(ctx context.Context, sessionID uuid.UUID) (bool, error)
}

type sessionClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// SessionManager signs HS256 session tokens.
type SessionManager struct {
	secret  []byte
	ttl     time.Duration
	revoked RevocationStore
	now     func() time.Time
}

func NewSessionManager(secret string, ttl time.Duration, revoked RevocationStore) *SessionManager {
	return &SessionManager{
		secret:  []byte(secret),
		ttl:     ttl,
		revoked: revoked,
		now:     time.Now,
	}
}

// Issue creates a fresh session for the identity.
func (m *SessionManager) Issue(user Identity) (*Session, error) {
	now := m.now().UTC().Truncate(time.Second)
	s := &Session{
		ID:        uuid.New(),
		User:      user,
		IssuedAt:  now,
		ExpiresAt: now.Add(m.ttl),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		Email: user.Email,
		Name:  user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UserID.String(),
			ID:        s.ID.String(),
			IssuedAt:  jwt.NewNumericDate(s.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return nil, fmt.Errorf("sign session: %w", err)
	}
	s.Token = signed
	return s, nil
}

// Parse validates the token signature, expiry and revocation state.
func (m *SessionManager) Parse(ctx context.Context, raw string) (*Session, error) {
	parsed, err := jwt.ParseWithClaims(raw, &sessionClaims{}, func(token *jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid || claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: subject: %v", ErrInvalidToken, err)
	}
	sessionID, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: jti: %v", ErrInvalidToken, err)
	}

	if m.revoked != nil {
		revoked, err := m.revoked.IsRevoked(ctx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return nil, ErrRevoked
		}
	}

	return &Session{
		Token:     raw,
		ID:        sessionID,
		User:      Identity{UserID: userID, Email: claims.Email, Name: claims.Name},
		IssuedAt:  claims.IssuedAt.Time.UTC(),
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}, nil
}

// Revoke signs the session out ahead of its expiry.
func (m *SessionManager) Revoke(ctx context.Context, s *Session) error {
	if m.revoked == nil {
		return nil
	}
	return m.revoked.MarkRevoked(ctx, s.ID, s.ExpiresAt)
}

func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}
