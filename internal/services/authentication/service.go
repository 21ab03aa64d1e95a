// Package authentication turns a login form submission into a session or a message for the form.
package authentication

import (
	"context"
	"errors"
	"log/slog"

	"invoice-dashboard-backend/internal/auth"
)

const (
	MsgInvalidCredentials = "Invalid credentials."
	MsgSomethingWrong     = "Something went wrong."
)

// Result carries either a new session or the message to show on the form.
type Result struct {
	Session *auth.Session
	Message string
}

type Service struct {
	provider auth.Provider
}

func NewService(provider auth.Provider) *Service {
	return &Service{provider: provider}
}

// Authenticate signs the operator in with the credentials provider.
// prevState is the message from the previous attempt; it does not influence
// the outcome. Provider errors are reduced to two messages; anything else
// is returned for the caller to handle.
func (s *Service) Authenticate(ctx context.Context, prevState string, creds auth.Credentials) (Result, error) {
	log := slog.Default().With("module", "authentication")

	session, err := s.provider.SignIn(ctx, auth.CredentialsProviderID, creds)
	if err == nil {
		log.InfoContext(ctx, "sign in succeeded", "operation", "authenticate", "outcome", "success", "user_id", session.User.UserID)
		return Result{Session: session}, nil
	}

	var authErr *auth.Error
	if !errors.As(err, &authErr) {
		return Result{}, err
	}

	log.WarnContext(ctx, "sign in rejected",
		"operation", "authenticate",
		"outcome", "failure",
		"error_type", authErr.Type,
		"retry", prevState != "",
	)
	switch authErr.Type {
	case auth.ErrorTypeCredentialsSignin:
		return Result{Message: MsgInvalidCredentials}, nil
	default:
		return Result{Message: MsgSomethingWrong}, nil
	}
}
