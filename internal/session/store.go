package session

import (
	"context"
	"time"
)

// Session is the pre-authentication state bound to one client. Its only
// payload is the nonce stashed before a vendor sign-in, which the
// identity token must echo back.
type Session struct {
	SessionID string
	Nonce     string
	ExpiresAt time.Time
}

// Store defines how sessions are stored and retrieved.
// Implementations (e.g., Redis) must remain stateless and opaque.
type Store interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, sessionID string) (*Session, error)
	Update(ctx context.Context, s Session) error
	Delete(ctx context.Context, sessionID string) error
}
