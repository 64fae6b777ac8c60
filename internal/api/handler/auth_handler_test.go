package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/astroline/admin-gateway/internal/api/cookie"
	"github.com/astroline/admin-gateway/internal/api/middleware"
	"github.com/astroline/admin-gateway/internal/core/domain"
	"github.com/astroline/admin-gateway/internal/core/ports"
)

type stubSessionService struct {
	loginCalls  int
	logoutCalls int
	loginErr    error
	session     *domain.Session
}

func (s *stubSessionService) Login(_ context.Context, in ports.LoginInput) (*domain.Session, error) {
	s.loginCalls++
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return s.session, nil
}

func (s *stubSessionService) Logout(context.Context, *domain.Session) {
	s.logoutCalls++
}

func (s *stubSessionService) Profile(_ context.Context, session *domain.Session) (*domain.User, error) {
	return session.User, nil
}

func newAuthFixture(svc *stubSessionService) (*echo.Echo, *AuthHandler) {
	e := echo.New()
	e.Validator = NewValidator()
	codec := cookie.NewCodec("test-secret", time.Hour, false)
	return e, NewAuthHandler(svc, codec)
}

func TestAuthHandler_Login_Success(t *testing.T) {
	svc := &stubSessionService{
		session: &domain.Session{
			ID:    "s1",
			Token: "abc",
			User:  &domain.User{Email: "admin@example.com", Role: domain.RoleAdmin},
		},
	}
	e, h := newAuthFixture(svc)

	body := `{"email":"admin@example.com","password":"secret"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "admin@example.com") {
		t.Fatalf("response missing user: %s", rec.Body.String())
	}

	cookies := rec.Result().Cookies()
	var found bool
	for _, ck := range cookies {
		if ck.Name == cookie.Name && ck.Value != "" {
			found = true
		}
	}
	if !found {
		t.Fatalf("session cookie not set: %+v", cookies)
	}
}

func TestAuthHandler_Login_ValidationRejectsBeforeService(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"empty password", `{"email":"admin@example.com","password":""}`},
		{"bad email", `{"email":"bad","password":"secret"}`},
		{"empty body", `{}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubSessionService{}
			e, h := newAuthFixture(svc)

			req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(tc.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := h.Login(c)
			he, ok := err.(*echo.HTTPError)
			if !ok || he.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %v", err)
			}
			if svc.loginCalls != 0 {
				t.Fatalf("service must not be called on validation failure")
			}
		})
	}
}

func TestAuthHandler_Login_InvalidCredentialsPassThrough(t *testing.T) {
	svc := &stubSessionService{loginErr: domain.ErrInvalidCredentials}
	e, h := newAuthFixture(svc)

	body := `{"email":"admin@example.com","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Login(c); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials to propagate, got %v", err)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	svc := &stubSessionService{}
	e, h := newAuthFixture(svc)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.SessionContextKey, &domain.Session{ID: "s1", Token: "abc"})

	if err := h.Logout(c); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if svc.logoutCalls != 1 {
		t.Fatalf("expected one logout call, got %d", svc.logoutCalls)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for API clients, got %d", rec.Code)
	}

	var expired bool
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == cookie.Name && ck.MaxAge < 0 {
			expired = true
		}
	}
	if !expired {
		t.Fatalf("logout must expire the session cookie")
	}
}

func TestAuthHandler_Logout_BrowserRedirects(t *testing.T) {
	svc := &stubSessionService{}
	e, h := newAuthFixture(svc)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.SessionContextKey, &domain.Session{ID: "s1", Token: "abc"})

	if err := h.Logout(c); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Fatalf("expected redirect to /login, got %d", rec.Code)
	}
}

func TestAuthHandler_HomeUsesCachedUser(t *testing.T) {
	svc := &stubSessionService{}
	e, h := newAuthFixture(svc)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.SessionContextKey, &domain.Session{
		ID:    "s1",
		Token: "abc",
		User:  &domain.User{Email: "admin@example.com"},
	})

	if err := h.Home(c); err != nil {
		t.Fatalf("Home returned error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "admin@example.com") {
		t.Fatalf("expected cached user in response: %s", rec.Body.String())
	}
}
