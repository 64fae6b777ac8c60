package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/astroline/admin-gateway/internal/api/middleware"
	"github.com/astroline/admin-gateway/internal/core/domain"
)

// ctxSession extracts the session resolved by the Guard middleware. Its
// presence proves the guard ran; handlers fail closed if it is missing.
func ctxSession(c echo.Context) (*domain.Session, error) {
	session, _ := c.Get(middleware.SessionContextKey).(*domain.Session)
	if session == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}
	return session, nil
}
