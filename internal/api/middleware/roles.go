package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/astroline/admin-gateway/internal/core/domain"
)

// RequireRole enforces role-based access on guarded routes. Must run after
// Guard, which resolves the session.
func RequireRole(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session, _ := c.Get(SessionContextKey).(*domain.Session)
			if session == nil || session.User == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing session")
			}
			if _, ok := allowed[session.User.Role]; !ok {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
