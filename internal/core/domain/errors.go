package domain

import "errors"

var (
	// ErrInvalidCredentials covers both client-side validation failures and an
	// upstream 401 on the login endpoint itself.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrSessionExpired is returned when the platform API rejects the bearer
	// credential of an established session. By the time a caller sees it, the
	// session has already been evicted from the store.
	ErrSessionExpired = errors.New("session expired")

	// ErrSessionNotFound is returned by the session store for unknown IDs.
	ErrSessionNotFound = errors.New("session not found")

	// ErrForbidden is returned when the operator's role does not allow an action.
	ErrForbidden = errors.New("access forbidden")

	// ErrTooManyAttempts is returned when repeated failed logins trip the throttle.
	ErrTooManyAttempts = errors.New("too many failed login attempts")

	// ErrUpstreamUnavailable signals a transport-level failure reaching the
	// platform API (connection refused, DNS, timeout).
	ErrUpstreamUnavailable = errors.New("astrology service unreachable")

	// ErrUpstreamServer signals a 5xx from the platform API.
	ErrUpstreamServer = errors.New("astrology service error")
)
