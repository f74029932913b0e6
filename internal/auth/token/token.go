package token

import (
	"context"
	"errors"
	"fmt"

	"github.com/ywdonga/DiduServer/internal/auth/store"
	"github.com/ywdonga/DiduServer/internal/utils"
)

// ErrUnauthorized means no currently valid token exists for the filtered
// user: the user is missing, inactive, or holds no token.
var ErrUnauthorized = errors.New("no active token for user")

// GenerateFunc produces the token record to persist for a user. The
// embedding application can swap this to store a refresh token or a
// structured credential instead of the default opaque value.
type GenerateFunc func(ctx context.Context, user *store.User) (*store.Token, error)

// Service issues bearer tokens and resolves them back to users.
type Service struct {
	tokens   store.TokenStore
	generate GenerateFunc
}

// NewService builds the issuance service. A nil generate hook falls back
// to a 32-byte random opaque value.
func NewService(tokens store.TokenStore, generate GenerateFunc) *Service {
	if generate == nil {
		generate = defaultGenerate
	}
	return &Service{tokens: tokens, generate: generate}
}

func defaultGenerate(_ context.Context, user *store.User) (*store.Token, error) {
	return &store.Token{
		Value:  utils.RandomString(32),
		UserID: user.ID,
	}, nil
}

// IssueForUser generates and persists a new token bound to the user.
// A user may accumulate multiple tokens over time.
func (s *Service) IssueForUser(ctx context.Context, user *store.User) (*store.Token, error) {
	tok, err := s.generate(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	tok.UserID = user.ID

	if err := s.tokens.CreateToken(ctx, tok); err != nil {
		return nil, fmt.Errorf("persist token: %w", err)
	}

	return tok, nil
}

// APITokenForUser returns the token an already registered user should
// present on subsequent API calls. When several tokens exist the most
// recently issued one wins. Missing or inactive users surface as
// ErrUnauthorized.
func (s *Service) APITokenForUser(ctx context.Context, filter store.UserFilter) (string, error) {
	value, err := s.tokens.ActiveTokenValue(ctx, filter)
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrUnauthorized
	}
	if err != nil {
		return "", err
	}
	return value, nil
}
