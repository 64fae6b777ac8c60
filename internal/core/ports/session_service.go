package ports

import (
	"context"

	"github.com/astroline/admin-gateway/internal/core/domain"
)

// LoginInput carries the credentials of a login attempt plus the client IP
// used for throttling and audit.
type LoginInput struct {
	Email    string
	Password string
	IP       string
}

// SessionService orchestrates the session lifecycle. It is the only component
// that mutates the session store in response to operator actions; the reactive
// counterpart is the unauthorized observer it registers on the API client.
type SessionService interface {
	// Login authenticates against the platform API and establishes a session.
	Login(ctx context.Context, in LoginInput) (*domain.Session, error)

	// Logout ends a session. The upstream logout call is best-effort; the
	// local state is cleared unconditionally, which is why Logout returns
	// nothing.
	Logout(ctx context.Context, session *domain.Session)

	// Profile re-fetches the operator's profile and refreshes the cached copy.
	Profile(ctx context.Context, session *domain.Session) (*domain.User, error)
}
