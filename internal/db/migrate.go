package db

import (
	"context"
	"database/sql"
)

const migration = `
CREATE EXTENSION IF NOT EXISTS "pgcrypto";

CREATE TABLE IF NOT EXISTS users (
    id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
    apple_subject text,
    google_subject text,
    email text,
    password_hash text,
    active boolean NOT NULL DEFAULT true,
    created_at timestamptz NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS users_apple_subject_unique
ON users (apple_subject) WHERE apple_subject IS NOT NULL;

CREATE UNIQUE INDEX IF NOT EXISTS users_google_subject_unique
ON users (google_subject) WHERE google_subject IS NOT NULL;

CREATE UNIQUE INDEX IF NOT EXISTS users_password_email_unique
ON users (LOWER(email)) WHERE password_hash IS NOT NULL;

CREATE TABLE IF NOT EXISTS tokens (
    id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
    value text NOT NULL UNIQUE,
    user_id uuid NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    issued_at timestamptz NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS tokens_user_id_idx
ON tokens (user_id);
`

// RunMigration creates the users and tokens tables. The partial unique
// indexes on the vendor subject columns are the safety net against two
// concurrent provisions racing for the same subject.
func RunMigration(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, migration)
	return err
}
