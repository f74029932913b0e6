package credentials_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ywdonga/DiduServer/internal/auth/credentials"
	"github.com/ywdonga/DiduServer/internal/auth/store"
	"github.com/ywdonga/DiduServer/internal/auth/token"
)

func newService(mem *store.Memory) *credentials.Service {
	return credentials.NewService(mem, token.NewService(mem, nil))
}

func TestRegisterThenLogin(t *testing.T) {
	mem := store.NewMemory()
	svc := newService(mem)

	registered, err := svc.Register(context.Background(), "a@x.com", "hunter2hunter2")
	require.NoError(t, err)
	assert.NotEmpty(t, registered)

	loggedIn, err := svc.Login(context.Background(), "a@x.com", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, registered, loggedIn, "login should return the current token")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	mem := store.NewMemory()
	svc := newService(mem)

	_, err := svc.Register(context.Background(), "a@x.com", "hunter2hunter2")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "a@x.com", "differentpass")
	assert.ErrorIs(t, err, credentials.ErrAlreadyRegistered)
}

func TestRegister_ShortPassword(t *testing.T) {
	mem := store.NewMemory()
	svc := newService(mem)

	_, err := svc.Register(context.Background(), "a@x.com", "short")
	assert.Error(t, err)
}

func TestLogin_WrongPassword(t *testing.T) {
	mem := store.NewMemory()
	svc := newService(mem)

	_, err := svc.Register(context.Background(), "a@x.com", "hunter2hunter2")
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "a@x.com", "wrongwrongwrong")
	assert.ErrorIs(t, err, credentials.ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	mem := store.NewMemory()
	svc := newService(mem)

	_, err := svc.Login(context.Background(), "nobody@x.com", "hunter2hunter2")
	assert.ErrorIs(t, err, credentials.ErrInvalidCredentials)
}

func TestLogin_VendorOnlyUserHasNoPassword(t *testing.T) {
	mem := store.NewMemory()
	svc := newService(mem)

	email := "a@x.com"
	subject := "u1"
	require.NoError(t, mem.Create(context.Background(), &store.User{
		AppleSubject: &subject,
		Email:        &email,
		Active:       true,
	}))

	_, err := svc.Login(context.Background(), "a@x.com", "hunter2hunter2")
	assert.ErrorIs(t, err, credentials.ErrInvalidCredentials)
}

func TestLogin_SharedEmailWithEarlierVendorUser(t *testing.T) {
	mem := store.NewMemory()
	svc := newService(mem)

	// A vendor user already holds the email before the password user
	// registers. It must shadow neither registration nor login.
	email := "a@x.com"
	subject := "u1"
	require.NoError(t, mem.Create(context.Background(), &store.User{
		AppleSubject: &subject,
		Email:        &email,
		Active:       true,
	}))

	registered, err := svc.Register(context.Background(), "a@x.com", "hunter2hunter2")
	require.NoError(t, err)

	loggedIn, err := svc.Login(context.Background(), "a@x.com", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, registered, loggedIn)
}

func TestLogin_SharedEmailNeverReturnsVendorToken(t *testing.T) {
	mem := store.NewMemory()
	svc := newService(mem)

	registered, err := svc.Register(context.Background(), "a@x.com", "hunter2hunter2")
	require.NoError(t, err)

	// A vendor user sharing the email holds a newer token. Password
	// login must still resolve to the password user's own token.
	email := "a@x.com"
	subject := "u1"
	vendorUser := &store.User{
		AppleSubject: &subject,
		Email:        &email,
		Active:       true,
	}
	require.NoError(t, mem.Create(context.Background(), vendorUser))
	require.NoError(t, mem.CreateToken(context.Background(), &store.Token{
		Value:    "vendor-token",
		UserID:   vendorUser.ID,
		IssuedAt: time.Now().Add(time.Hour),
	}))

	loggedIn, err := svc.Login(context.Background(), "a@x.com", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, registered, loggedIn)
	assert.NotEqual(t, "vendor-token", loggedIn)
}

// failingUserStore simulates an unavailable backing store.
type failingUserStore struct {
	err error
}

func (f *failingUserStore) First(context.Context, store.UserFilter) (*store.User, error) {
	return nil, f.err
}

func (f *failingUserStore) Create(context.Context, *store.User) error {
	return f.err
}

func TestLogin_StoreFailurePassesThrough(t *testing.T) {
	boom := errors.New("connection refused")
	svc := credentials.NewService(
		&failingUserStore{err: boom},
		token.NewService(store.NewMemory(), nil),
	)

	_, err := svc.Login(context.Background(), "a@x.com", "hunter2hunter2")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, credentials.ErrInvalidCredentials)
}

func TestLogin_IssuesTokenWhenNoneExists(t *testing.T) {
	mem := store.NewMemory()
	svc := newService(mem)

	email := "a@x.com"
	hash, err := credentials.HashPassword("hunter2hunter2")
	require.NoError(t, err)

	// User exists with credentials but holds no token yet.
	require.NoError(t, mem.Create(context.Background(), &store.User{
		Email:        &email,
		PasswordHash: &hash,
		Active:       true,
	}))

	value, err := svc.Login(context.Background(), "a@x.com", "hunter2hunter2")
	require.NoError(t, err)
	assert.NotEmpty(t, value)
}
