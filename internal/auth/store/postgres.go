package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ywdonga/DiduServer/internal/db"
)

// Postgres implements UserStore and TokenStore over database/sql.
type Postgres struct {
	db *db.DB
}

func NewPostgres(db *db.DB) *Postgres {
	return &Postgres{db: db}
}

func (f UserFilter) column() string {
	switch f.Field {
	case FieldEmail:
		return "email"
	case FieldAppleSubject:
		return "apple_subject"
	case FieldGoogleSubject:
		return "google_subject"
	case FieldID:
		return "id"
	}
	panic(fmt.Sprintf("store: unknown user field %d", f.Field))
}

// where renders the filter as a WHERE condition on $1, with an optional
// table alias prefix.
func (f UserFilter) where(alias string) string {
	cond := fmt.Sprintf("%s%s = $1", alias, f.column())
	if f.PasswordOnly {
		cond += fmt.Sprintf(" AND %spassword_hash IS NOT NULL", alias)
	}
	return cond
}

func (p *Postgres) First(ctx context.Context, filter UserFilter) (*User, error) {
	var u User
	err := p.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT id, apple_subject, google_subject, email, password_hash, active, created_at
		FROM users
		WHERE %s
		LIMIT 1
	`, filter.where("")),
		filter.Value,
	).Scan(&u.ID, &u.AppleSubject, &u.GoogleSubject, &u.Email, &u.PasswordHash, &u.Active, &u.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &u, nil
}

func (p *Postgres) Create(ctx context.Context, user *User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	_, err := p.db.ExecContext(ctx, `
		INSERT INTO users (id, apple_subject, google_subject, email, password_hash, active)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		user.ID,
		user.AppleSubject,
		user.GoogleSubject,
		user.Email,
		user.PasswordHash,
		user.Active,
	)

	return translateConflict(err)
}

func (p *Postgres) CreateToken(ctx context.Context, token *Token) error {
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}

	err := p.db.QueryRowContext(ctx, `
		INSERT INTO tokens (id, value, user_id)
		VALUES ($1, $2, $3)
		RETURNING issued_at
	`,
		token.ID,
		token.Value,
		token.UserID,
	).Scan(&token.IssuedAt)

	return translateConflict(err)
}

func (p *Postgres) ActiveTokenValue(ctx context.Context, filter UserFilter) (string, error) {
	var value string
	err := p.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT t.value
		FROM tokens t
		JOIN users u ON u.id = t.user_id
		WHERE %s
		  AND u.active = true
		ORDER BY t.issued_at DESC
		LIMIT 1
	`, filter.where("u.")),
		filter.Value,
	).Scan(&value)

	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}

	return value, nil
}

func (p *Postgres) UserIDForValue(ctx context.Context, value string) (uuid.UUID, error) {
	var userID uuid.UUID
	err := p.db.QueryRowContext(ctx, `
		SELECT t.user_id
		FROM tokens t
		JOIN users u ON u.id = t.user_id
		WHERE t.value = $1
		  AND u.active = true
	`,
		value,
	).Scan(&userID)

	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, ErrNotFound
	}
	if err != nil {
		return uuid.Nil, err
	}

	return userID, nil
}

// translateConflict maps Postgres unique violations to ErrConflict so
// callers never depend on driver error codes.
func translateConflict(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrConflict
	}
	return err
}
