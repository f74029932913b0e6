package provision

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ywdonga/DiduServer/internal/auth"
	"github.com/ywdonga/DiduServer/internal/auth/store"
	"github.com/ywdonga/DiduServer/internal/auth/token"
)

var (
	ErrMissingEmail      = errors.New("email claim required for registration")
	ErrAlreadyRegistered = errors.New("vendor subject already registered")
)

// RegisterUserFunc builds the user record to persist for a fresh
// registration. The embedding application decides how to populate its
// own fields from the raw registration payload; returning an error
// rejects the registration and the error propagates verbatim. Exactly
// one of appleSubject/googleSubject is non-nil.
type RegisterUserFunc func(ctx context.Context, payload json.RawMessage, email string, appleSubject, googleSubject *string) (*store.User, error)

// Service provisions users from verified third-party identities.
type Service struct {
	users        store.UserStore
	tokens       *token.Service
	registerUser RegisterUserFunc
}

// NewService builds the provisioning service. A nil register hook falls
// back to a plain active user carrying only the identity fields.
func NewService(users store.UserStore, tokens *token.Service, registerUser RegisterUserFunc) *Service {
	if registerUser == nil {
		registerUser = defaultRegisterUser
	}
	return &Service{users: users, tokens: tokens, registerUser: registerUser}
}

func defaultRegisterUser(_ context.Context, _ json.RawMessage, email string, appleSubject, googleSubject *string) (*store.User, error) {
	return &store.User{
		AppleSubject:  appleSubject,
		GoogleSubject: googleSubject,
		Email:         &email,
		Active:        true,
	}, nil
}

// CreateUserAndToken registers a new user for a verified vendor subject
// and returns the bearer token for subsequent API calls. This flow is
// registration-only: an already linked subject fails with
// ErrAlreadyRegistered and must use the token lookup path instead.
//
// The user and token inserts are two separate writes. A failure between
// them leaves a user without a token; racing registrations for the same
// subject are resolved by the store's uniqueness constraint, which the
// second writer sees as store.ErrConflict.
func (s *Service) CreateUserAndToken(ctx context.Context, email string, vendor auth.Vendor, subject string, payload json.RawMessage) (string, error) {
	if email == "" {
		return "", ErrMissingEmail
	}

	// 1. An existing user for this vendor subject means the caller
	// should be logging in, not registering.
	_, err := s.users.First(ctx, store.SubjectFilter(vendor, subject))
	if err == nil {
		return "", ErrAlreadyRegistered
	}
	if !errors.Is(err, store.ErrNotFound) {
		return "", fmt.Errorf("lookup vendor subject: %w", err)
	}

	var appleSubject, googleSubject *string
	switch vendor {
	case auth.VendorApple:
		appleSubject = &subject
	case auth.VendorGoogle:
		googleSubject = &subject
	}

	// 2. Let the application construct the record. Hook failures
	// propagate unchanged.
	user, err := s.registerUser(ctx, payload, email, appleSubject, googleSubject)
	if err != nil {
		return "", err
	}

	// 3. Persist the user.
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return "", ErrAlreadyRegistered
		}
		return "", fmt.Errorf("persist user: %w", err)
	}

	// 4. Issue the token.
	tok, err := s.tokens.IssueForUser(ctx, user)
	if err != nil {
		return "", err
	}

	return tok.Value, nil
}
