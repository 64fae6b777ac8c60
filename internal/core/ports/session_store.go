package ports

import (
	"context"

	"github.com/astroline/admin-gateway/internal/core/domain"
)

// SessionStore is the durable record of "who is logged in, and as whom".
// Implementations persist the credential and the cached user record together:
// they are written together and removed together, never independently.
type SessionStore interface {
	// Save persists a session, replacing any previous state under the same ID.
	Save(ctx context.Context, session *domain.Session) error

	// Get retrieves a session by ID. Returns domain.ErrSessionNotFound when
	// the ID is unknown.
	Get(ctx context.Context, id string) (*domain.Session, error)

	// SetUser replaces the cached user record of an existing session.
	SetUser(ctx context.Context, id string, user *domain.User) error

	// Delete removes a session. Unknown IDs are not an error.
	Delete(ctx context.Context, id string) error

	// DeleteByToken removes every session bound to the given upstream
	// credential and reports how many were removed.
	DeleteByToken(ctx context.Context, token string) (int, error)
}
