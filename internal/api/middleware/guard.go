package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/astroline/admin-gateway/internal/api/cookie"
	"github.com/astroline/admin-gateway/internal/core/ports"
)

// SessionContextKey is where the guard stores the resolved *domain.Session.
const SessionContextKey = "session"

// Guard gates protected routes. The check is synchronous against the session
// store only — no upstream round-trip — so a credential the platform API has
// already invalidated still passes here and fails on the first proxied call.
// That reactive path is the real boundary; the guard exists to keep
// unauthenticated visitors out without paying network latency.
func Guard(store ports.SessionStore, codec *cookie.Codec) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ck, err := c.Cookie(cookie.Name)
			if err != nil || ck.Value == "" {
				return deny(c)
			}

			sessionID, err := codec.Decode(ck.Value)
			if err != nil {
				return deny(c)
			}

			session, err := store.Get(c.Request().Context(), sessionID)
			if err != nil {
				return deny(c)
			}

			c.Set(SessionContextKey, session)
			return next(c)
		}
	}
}

// RedirectAuthenticated sends an already-authenticated visitor of the login
// screen back to the dashboard root.
func RedirectAuthenticated(store ports.SessionStore, codec *cookie.Codec) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if ck, err := c.Cookie(cookie.Name); err == nil && ck.Value != "" {
				if sessionID, err := codec.Decode(ck.Value); err == nil {
					if _, err := store.Get(c.Request().Context(), sessionID); err == nil {
						return c.Redirect(http.StatusSeeOther, "/")
					}
				}
			}
			return next(c)
		}
	}
}

// AcceptsHTML reports whether the request comes from a browser navigation
// rather than an API consumer.
func AcceptsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func deny(c echo.Context) error {
	if AcceptsHTML(c.Request()) {
		return c.Redirect(http.StatusSeeOther, "/login")
	}
	return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
}
