package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/astroline/admin-gateway/internal/api/middleware"
	"github.com/astroline/admin-gateway/internal/core/domain"
	"github.com/astroline/admin-gateway/internal/upstream"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Sends browser requests whose session expired back to the login screen.
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Passes platform API error statuses through to the dashboard.
//   - Logs unexpected errors internally without leaking details to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		// The global 401 path: the session is already gone by the time the
		// error surfaces here, so a browser navigation goes to /login.
		if errors.Is(err, domain.ErrSessionExpired) && middleware.AcceptsHTML(c.Request()) {
			_ = c.Redirect(http.StatusSeeOther, "/login")
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrSessionExpired):
		return http.StatusUnauthorized, "session expired"
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusUnauthorized, "authentication required"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "access forbidden"
	case errors.Is(err, domain.ErrTooManyAttempts):
		return http.StatusTooManyRequests, "too many failed login attempts, try again later"
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return http.StatusBadGateway, "astrology service unreachable"
	case errors.Is(err, domain.ErrUpstreamServer):
		return http.StatusBadGateway, "astrology service error, try again later"
	}

	// Remaining platform API rejections (404, 409, 422, …) pass through so the
	// dashboard can show the platform's own message.
	var ue *upstream.Error
	if errors.As(err, &ue) && ue.Status >= 400 && ue.Status < 500 {
		return ue.Status, ue.Message
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
