package token_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ywdonga/DiduServer/internal/auth/store"
	"github.com/ywdonga/DiduServer/internal/auth/token"
)

func strPtr(s string) *string { return &s }

func seedUser(t *testing.T, mem *store.Memory, email string, active bool) *store.User {
	t.Helper()

	user := &store.User{
		Email:  strPtr(email),
		Active: active,
	}
	require.NoError(t, mem.Create(context.Background(), user))
	return user
}

func TestIssueForUser(t *testing.T) {
	mem := store.NewMemory()
	svc := token.NewService(mem, nil)

	user := seedUser(t, mem, "a@x.com", true)

	tok, err := svc.IssueForUser(context.Background(), user)
	require.NoError(t, err)

	assert.NotEmpty(t, tok.Value)
	assert.Equal(t, user.ID, tok.UserID)
	assert.False(t, tok.IssuedAt.IsZero())
}

func TestIssueForUser_GenerateHook(t *testing.T) {
	mem := store.NewMemory()

	svc := token.NewService(mem, func(_ context.Context, u *store.User) (*store.Token, error) {
		return &store.Token{Value: "hook-issued"}, nil
	})

	user := seedUser(t, mem, "a@x.com", true)

	tok, err := svc.IssueForUser(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, "hook-issued", tok.Value)
	assert.Equal(t, user.ID, tok.UserID)
}

func TestIssueForUser_GenerateHookFailure(t *testing.T) {
	mem := store.NewMemory()
	boom := errors.New("no entropy")

	svc := token.NewService(mem, func(context.Context, *store.User) (*store.Token, error) {
		return nil, boom
	})

	user := seedUser(t, mem, "a@x.com", true)

	_, err := svc.IssueForUser(context.Background(), user)
	assert.ErrorIs(t, err, boom)
}

func TestAPITokenForUser_InactiveUser(t *testing.T) {
	mem := store.NewMemory()
	svc := token.NewService(mem, nil)

	user := seedUser(t, mem, "a@x.com", false)

	// A token row exists, but the owner is inactive.
	require.NoError(t, mem.CreateToken(context.Background(), &store.Token{
		Value:  "dormant",
		UserID: user.ID,
	}))

	_, err := svc.APITokenForUser(context.Background(), store.FilterEmail("a@x.com"))
	assert.ErrorIs(t, err, token.ErrUnauthorized)
}

func TestAPITokenForUser_NoMatch(t *testing.T) {
	mem := store.NewMemory()
	svc := token.NewService(mem, nil)

	_, err := svc.APITokenForUser(context.Background(), store.FilterEmail("missing@x.com"))
	assert.ErrorIs(t, err, token.ErrUnauthorized)
}

func TestAPITokenForUser_MostRecentWins(t *testing.T) {
	mem := store.NewMemory()
	svc := token.NewService(mem, nil)

	user := seedUser(t, mem, "a@x.com", true)

	now := time.Now()
	for _, tok := range []*store.Token{
		{Value: "oldest", UserID: user.ID, IssuedAt: now.Add(-2 * time.Hour)},
		{Value: "newest", UserID: user.ID, IssuedAt: now},
		{Value: "middle", UserID: user.ID, IssuedAt: now.Add(-time.Hour)},
	} {
		require.NoError(t, mem.CreateToken(context.Background(), tok))
	}

	value, err := svc.APITokenForUser(context.Background(), store.FilterEmail("a@x.com"))
	require.NoError(t, err)
	assert.Equal(t, "newest", value)
}
