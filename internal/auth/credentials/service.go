package credentials

import (
	"context"
	"errors"

	"github.com/ywdonga/DiduServer/internal/auth/store"
	"github.com/ywdonga/DiduServer/internal/auth/token"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyRegistered  = errors.New("email already registered")
)

// Service is the email/password path. It bypasses identity token
// verification entirely and converges on the same bearer token result
// as the vendor flow.
type Service struct {
	users  store.UserStore
	tokens *token.Service
}

func NewService(users store.UserStore, tokens *token.Service) *Service {
	return &Service{users: users, tokens: tokens}
}

// Register creates a password user and returns their bearer token.
func (s *Service) Register(ctx context.Context, email, password string) (string, error) {

	// 1. Reject a duplicate email among password users. Vendor-only
	// users may share the email and are not consulted.
	_, err := s.users.First(ctx, store.FilterPasswordEmail(email))
	if err == nil {
		return "", ErrAlreadyRegistered
	}
	if !errors.Is(err, store.ErrNotFound) {
		return "", err
	}

	// 2. Hash the password.
	hash, err := HashPassword(password)
	if err != nil {
		return "", err
	}

	// 3. Persist the user.
	user := &store.User{
		Email:        &email,
		PasswordHash: &hash,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return "", ErrAlreadyRegistered
		}
		return "", err
	}

	// 4. Issue the token.
	tok, err := s.tokens.IssueForUser(ctx, user)
	if err != nil {
		return "", err
	}

	return tok.Value, nil
}

// Login verifies the password and returns the user's current bearer
// token, issuing a fresh one when none exists. Auth failures never
// reveal whether the email is registered; store failures pass through.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {

	// The lookup is scoped to password users: a vendor user sharing
	// the email must neither shadow the account nor lend it a token.
	user, err := s.users.First(ctx, store.FilterPasswordEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}

	if user.PasswordHash == nil || !user.Active {
		return "", ErrInvalidCredentials
	}

	if err := VerifyPassword(*user.PasswordHash, password); err != nil {
		return "", ErrInvalidCredentials
	}

	value, err := s.tokens.APITokenForUser(ctx, store.FilterUserID(user.ID))
	if errors.Is(err, token.ErrUnauthorized) {
		tok, issueErr := s.tokens.IssueForUser(ctx, user)
		if issueErr != nil {
			return "", issueErr
		}
		return tok.Value, nil
	}
	if err != nil {
		return "", err
	}

	return value, nil
}
