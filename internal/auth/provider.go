package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"invoice-dashboard-backend/internal/models"
	"invoice-dashboard-backend/internal/repository"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

// CredentialsProviderID names the email/password provider.
const CredentialsProviderID = "credentials"

// Error types a provider can signal.
const (
	ErrorTypeCredentialsSignin = "CredentialsSignin"
	ErrorTypeConfiguration     = "Configuration"
	ErrorTypeSession           = "SessionError"
)

// Error is a provider failure the caller may classify by Type.
type Error struct {
	Type string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Type + ": " + e.Err.Error()
	}
	return e.Type
}

func (e *Error) Unwrap() error { return e.Err }

// Credentials is the submitted login form.
type Credentials struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,min=6"`
}

// UserStore looks up operators by email.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// Provider verifies credentials and establishes a session.
type Provider interface {
	SignIn(ctx context.Context, providerID string, creds Credentials) (*Session, error)
}

// CredentialsProvider checks email/password pairs against bcrypt hashes.
type CredentialsProvider struct {
	users    UserStore
	sessions *SessionManager
	validate *validator.Validate
}

func NewCredentialsProvider(users UserStore, sessions *SessionManager) *CredentialsProvider {
	return &CredentialsProvider{
		users:    users,
		sessions: sessions,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// SignIn returns *Error for anything the user can fix or that is a setup
// problem; store failures come back wrapped but unclassified.
func (p *CredentialsProvider) SignIn(ctx context.Context, providerID string, creds Credentials) (*Session, error) {
	if providerID != CredentialsProviderID {
		return nil, &Error{Type: ErrorTypeConfiguration, Err: fmt.Errorf("unknown provider %q", providerID)}
	}

	creds.Email = strings.TrimSpace(creds.Email)
	if err := p.validate.Struct(creds); err != nil {
		return nil, &Error{Type: ErrorTypeCredentialsSignin, Err: err}
	}

	user, err := p.users.FindByEmail(ctx, creds.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &Error{Type: ErrorTypeCredentialsSignin, Err: err}
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(creds.Password)); err != nil {
		return nil, &Error{Type: ErrorTypeCredentialsSignin, Err: err}
	}

	session, err := p.sessions.Issue(Identity{UserID: user.ID, Email: user.Email, Name: user.Name})
	if err != nil {
		return nil, &Error{Type: ErrorTypeSession, Err: err}
	}
	return session, nil
}

// HashPassword returns a bcrypt hash; cost <= 0 selects bcrypt.DefaultCost.
func HashPassword(password string, cost int) (string, error) {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
