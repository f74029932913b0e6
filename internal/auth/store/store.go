package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ywdonga/DiduServer/internal/auth"
)

var (
	ErrNotFound = errors.New("store: not found")
	ErrConflict = errors.New("store: unique constraint violated")
)

// User is the local identity record. A user carries at most one subject
// per vendor, and inactive users are excluded from token lookups.
type User struct {
	ID            uuid.UUID
	AppleSubject  *string
	GoogleSubject *string
	Email         *string
	PasswordHash  *string
	Active        bool
	CreatedAt     time.Time
}

// Token is an opaque bearer credential owned by exactly one user.
// Tokens are never mutated after creation.
type Token struct {
	ID       uuid.UUID
	Value    string
	UserID   uuid.UUID
	IssuedAt time.Time
}

// UserField names a filterable users column.
type UserField int

const (
	FieldEmail UserField = iota
	FieldAppleSubject
	FieldGoogleSubject
	FieldID
)

// UserFilter is a single-column equality filter over users.
// PasswordOnly additionally restricts the match to password users;
// vendor-only users may share an email with a password user, and the
// credentials path must never resolve to one of them.
type UserFilter struct {
	Field        UserField
	Value        string
	PasswordOnly bool
}

func FilterEmail(email string) UserFilter {
	return UserFilter{Field: FieldEmail, Value: email}
}

// FilterPasswordEmail matches only users holding a password hash.
func FilterPasswordEmail(email string) UserFilter {
	return UserFilter{Field: FieldEmail, Value: email, PasswordOnly: true}
}

// FilterUserID matches exactly one user by primary key.
func FilterUserID(id uuid.UUID) UserFilter {
	return UserFilter{Field: FieldID, Value: id.String()}
}

// SubjectFilter dispatches a vendor to its subject column. Only apple
// and google exist; anything else is a wiring bug, not runtime input.
func SubjectFilter(vendor auth.Vendor, subject string) UserFilter {
	switch vendor {
	case auth.VendorApple:
		return UserFilter{Field: FieldAppleSubject, Value: subject}
	case auth.VendorGoogle:
		return UserFilter{Field: FieldGoogleSubject, Value: subject}
	}
	panic("store: unknown vendor " + string(vendor))
}

// UserStore is the persistence surface the provisioning and credentials
// services depend on.
type UserStore interface {
	// First returns the first user matching the filter, or ErrNotFound.
	First(ctx context.Context, filter UserFilter) (*User, error)

	// Create inserts a user. A duplicate vendor subject or password
	// email surfaces as ErrConflict.
	Create(ctx context.Context, user *User) error
}

// TokenStore persists and resolves bearer tokens.
type TokenStore interface {
	CreateToken(ctx context.Context, token *Token) error

	// ActiveTokenValue joins tokens to users, applies the filter,
	// requires an active user, and returns the most recently issued
	// token value, or ErrNotFound.
	ActiveTokenValue(ctx context.Context, filter UserFilter) (string, error)

	// UserIDForValue resolves a presented bearer token to its owning
	// active user, or ErrNotFound.
	UserIDForValue(ctx context.Context, value string) (uuid.UUID, error)
}
