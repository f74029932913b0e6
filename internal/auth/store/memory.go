package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-process UserStore and TokenStore. It mirrors the
// Postgres uniqueness rules so the services behave identically in tests.
type Memory struct {
	mu     sync.Mutex
	users  []*User
	tokens []*Token
}

func NewMemory() *Memory {
	return &Memory{}
}

func matches(u *User, filter UserFilter) bool {
	if filter.PasswordOnly && u.PasswordHash == nil {
		return false
	}

	if filter.Field == FieldID {
		return u.ID.String() == filter.Value
	}

	var field *string
	switch filter.Field {
	case FieldEmail:
		field = u.Email
	case FieldAppleSubject:
		field = u.AppleSubject
	case FieldGoogleSubject:
		field = u.GoogleSubject
	}
	return field != nil && *field == filter.Value
}

func (m *Memory) First(_ context.Context, filter UserFilter) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if matches(u, filter) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) Create(_ context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if user.AppleSubject != nil && existing.AppleSubject != nil &&
			*existing.AppleSubject == *user.AppleSubject {
			return ErrConflict
		}
		if user.GoogleSubject != nil && existing.GoogleSubject != nil &&
			*existing.GoogleSubject == *user.GoogleSubject {
			return ErrConflict
		}
		if user.PasswordHash != nil && existing.PasswordHash != nil &&
			user.Email != nil && existing.Email != nil &&
			*existing.Email == *user.Email {
			return ErrConflict
		}
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	copied := *user
	m.users = append(m.users, &copied)
	return nil
}

func (m *Memory) CreateToken(_ context.Context, token *Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.tokens {
		if existing.Value == token.Value {
			return ErrConflict
		}
	}

	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	if token.IssuedAt.IsZero() {
		token.IssuedAt = time.Now()
	}

	copied := *token
	m.tokens = append(m.tokens, &copied)
	return nil
}

func (m *Memory) ActiveTokenValue(_ context.Context, filter UserFilter) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var newest *Token
	for _, t := range m.tokens {
		owner := m.userByID(t.UserID)
		if owner == nil || !owner.Active || !matches(owner, filter) {
			continue
		}
		if newest == nil || t.IssuedAt.After(newest.IssuedAt) {
			newest = t
		}
	}

	if newest == nil {
		return "", ErrNotFound
	}
	return newest.Value, nil
}

func (m *Memory) UserIDForValue(_ context.Context, value string) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range m.tokens {
		if t.Value != value {
			continue
		}
		if owner := m.userByID(t.UserID); owner != nil && owner.Active {
			return t.UserID, nil
		}
	}
	return uuid.Nil, ErrNotFound
}

func (m *Memory) userByID(id uuid.UUID) *User {
	for _, u := range m.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}
