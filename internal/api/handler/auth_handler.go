package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/astroline/admin-gateway/internal/api/cookie"
	"github.com/astroline/admin-gateway/internal/api/middleware"
	"github.com/astroline/admin-gateway/internal/core/domain"
	"github.com/astroline/admin-gateway/internal/core/ports"
)

type AuthHandler struct {
	sessions ports.SessionService
	codec    *cookie.Codec
}

func NewAuthHandler(sessions ports.SessionService, codec *cookie.Codec) *AuthHandler {
	return &AuthHandler{sessions: sessions, codec: codec}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	User *domain.User `json:"user"`
}

// LoginPage is the unauthenticated entry point. The dashboard front end owns
// the actual form; this endpoint only anchors the redirect target.
func (h *AuthHandler) LoginPage(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"message": "sign in via POST /auth/login",
	})
}

// Login authenticates an operator against the platform API.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	session, err := h.sessions.Login(c.Request().Context(), ports.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		IP:       c.RealIP(),
	})
	if err != nil {
		return err
	}

	ck, err := h.codec.Issue(session.ID)
	if err != nil {
		return err
	}
	c.SetCookie(ck)

	return c.JSON(http.StatusOK, userResponse{User: session.User})
}

// Logout ends the session. The upstream call is best-effort; local state is
// cleared and the cookie expired no matter what.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      204
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}

	h.sessions.Logout(c.Request().Context(), session)
	c.SetCookie(h.codec.Expire())

	if middleware.AcceptsHTML(c.Request()) {
		return c.Redirect(http.StatusSeeOther, "/login")
	}
	return c.NoContent(http.StatusNoContent)
}

// Profile re-fetches the operator's profile from the platform API.
//
// @Summary      Current operator profile
// @Tags         auth
// @Produce      json
// @Success      200  {object}  userResponse
// @Failure      401  {object}  map[string]string
// @Router       /auth/profile [get]
func (h *AuthHandler) Profile(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}

	user, err := h.sessions.Profile(c.Request().Context(), session)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{User: user})
}

// Home serves the dashboard root with the cached user record. No upstream
// call happens here; the cached copy may lag the server until the next
// profile refresh.
func (h *AuthHandler) Home(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{User: session.User})
}
