package ports

import "context"

// LoginThrottle tracks failed login attempts per email and client IP.
type LoginThrottle interface {
	// Blocked reports whether further attempts for this email/IP pair should
	// be rejected before touching the platform API.
	Blocked(ctx context.Context, email, ip string) (bool, error)

	// Fail records a failed attempt.
	Fail(ctx context.Context, email, ip string) error

	// Reset clears the failure count after a successful login.
	Reset(ctx context.Context, email, ip string) error
}
