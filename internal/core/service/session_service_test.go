package service

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/rs/zerolog"

	"github.com/astroline/admin-gateway/internal/core/domain"
	"github.com/astroline/admin-gateway/internal/core/ports"
)

type stubStore struct {
	sessions map[string]*domain.Session
}

func newStubStore() *stubStore {
	return &stubStore{sessions: make(map[string]*domain.Session)}
}

func (s *stubStore) Save(_ context.Context, session *domain.Session) error {
	copied := *session
	s.sessions[session.ID] = &copied
	return nil
}

func (s *stubStore) Get(_ context.Context, id string) (*domain.Session, error) {
	session, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (s *stubStore) SetUser(_ context.Context, id string, user *domain.User) error {
	session, ok := s.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	session.User = user
	return nil
}

func (s *stubStore) Delete(_ context.Context, id string) error {
	delete(s.sessions, id)
	return nil
}

func (s *stubStore) DeleteByToken(_ context.Context, token string) (int, error) {
	n := 0
	for id, session := range s.sessions {
		if session.Token == token {
			delete(s.sessions, id)
			n++
		}
	}
	return n, nil
}

type stubClient struct {
	unauthorized func(ctx context.Context, token string)
	calls        []string

	loginToken string
	loginUser  *domain.User
	loginErr   error
	logoutErr  error

	profileUser *domain.User
	profileErr  error
}

func (c *stubClient) OnUnauthorized(fn func(ctx context.Context, token string)) {
	c.unauthorized = fn
}

func (c *stubClient) Get(_ context.Context, _, path string, _ url.Values, out any) error {
	c.calls = append(c.calls, "GET "+path)
	if c.profileErr != nil {
		return c.profileErr
	}
	if user, ok := out.(*domain.User); ok && c.profileUser != nil {
		*user = *c.profileUser
	}
	return nil
}

func (c *stubClient) Post(_ context.Context, _, path string, _, out any) error {
	c.calls = append(c.calls, "POST "+path)
	switch path {
	case "/auth/login":
		if c.loginErr != nil {
			return c.loginErr
		}
		*out.(*loginResponse) = loginResponse{Token: c.loginToken, User: c.loginUser}
		return nil
	case "/auth/logout":
		return c.logoutErr
	}
	return nil
}

func (c *stubClient) Put(_ context.Context, _, path string, _, _ any) error {
	c.calls = append(c.calls, "PUT "+path)
	return nil
}

func (c *stubClient) Delete(_ context.Context, _, path string, _ any) error {
	c.calls = append(c.calls, "DELETE "+path)
	return nil
}

type stubThrottle struct {
	blocked bool
	fails   int
	resets  int
}

func (t *stubThrottle) Blocked(context.Context, string, string) (bool, error) {
	return t.blocked, nil
}

func (t *stubThrottle) Fail(context.Context, string, string) error {
	t.fails++
	return nil
}

func (t *stubThrottle) Reset(context.Context, string, string) error {
	t.resets++
	return nil
}

type stubSink struct {
	entries []domain.AuditEntry
}

func (s *stubSink) Enqueue(entry domain.AuditEntry) {
	s.entries = append(s.entries, entry)
}

func newTestService(client *stubClient) (*SessionService, *stubStore, *stubThrottle, *stubSink) {
	store := newStubStore()
	throttle := &stubThrottle{}
	sink := &stubSink{}
	svc := NewSessionService(store, client, throttle, sink, zerolog.Nop())
	return svc, store, throttle, sink
}

func TestSessionService_Login_Success(t *testing.T) {
	client := &stubClient{
		loginToken: "abc",
		loginUser:  &domain.User{ID: "u1", Email: "admin@example.com", Role: domain.RoleAdmin},
	}
	svc, store, throttle, sink := newTestService(client)

	session, err := svc.Login(context.Background(), ports.LoginInput{Email: "admin@example.com", Password: "secret", IP: "127.0.0.1"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if session.Token != "abc" {
		t.Fatalf("expected token abc, got %q", session.Token)
	}
	if session.User == nil || session.User.Email != "admin@example.com" {
		t.Fatalf("unexpected user: %+v", session.User)
	}

	stored, err := store.Get(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("session not persisted: %v", err)
	}
	if stored.Token != "abc" {
		t.Fatalf("stored token %q", stored.Token)
	}
	if throttle.resets != 1 {
		t.Fatalf("expected throttle reset, got %d", throttle.resets)
	}
	if len(sink.entries) != 1 || sink.entries[0].Action != domain.AuditLogin {
		t.Fatalf("unexpected audit entries: %+v", sink.entries)
	}
}

func TestSessionService_Login_Validation(t *testing.T) {
	cases := []struct {
		name  string
		email string
		pass  string
	}{
		{"empty password", "admin@example.com", ""},
		{"empty email", "", "secret"},
		{"bad email", "not-an-email", "secret"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := &stubClient{}
			svc, _, _, _ := newTestService(client)

			_, err := svc.Login(context.Background(), ports.LoginInput{Email: tc.email, Password: tc.pass})
			if !errors.Is(err, domain.ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
			if len(client.calls) != 0 {
				t.Fatalf("validation failure must not reach the network: %v", client.calls)
			}
		})
	}
}

func TestSessionService_Login_Throttled(t *testing.T) {
	client := &stubClient{}
	svc, _, throttle, _ := newTestService(client)
	throttle.blocked = true

	_, err := svc.Login(context.Background(), ports.LoginInput{Email: "admin@example.com", Password: "secret"})
	if !errors.Is(err, domain.ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
	if len(client.calls) != 0 {
		t.Fatalf("throttled login must not reach the network: %v", client.calls)
	}
}

func TestSessionService_Login_InvalidUpstreamCredentials(t *testing.T) {
	client := &stubClient{loginErr: domain.ErrInvalidCredentials}
	svc, store, throttle, sink := newTestService(client)

	_, err := svc.Login(context.Background(), ports.LoginInput{Email: "admin@example.com", Password: "wrong"})
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if len(store.sessions) != 0 {
		t.Fatalf("failed login must not create a session")
	}
	if throttle.fails != 1 {
		t.Fatalf("expected one recorded failure, got %d", throttle.fails)
	}
	if len(sink.entries) != 1 || sink.entries[0].Action != domain.AuditLoginFailed {
		t.Fatalf("unexpected audit entries: %+v", sink.entries)
	}
}

func TestSessionService_Logout_UpstreamFailureStillClearsLocally(t *testing.T) {
	client := &stubClient{
		loginToken: "abc",
		loginUser:  &domain.User{Email: "admin@example.com"},
		logoutErr:  errors.New("network down"),
	}
	svc, store, _, _ := newTestService(client)

	session, err := svc.Login(context.Background(), ports.LoginInput{Email: "admin@example.com", Password: "secret"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	// must not panic and must not surface the upstream error
	svc.Logout(context.Background(), session)

	if _, err := store.Get(context.Background(), session.ID); err != domain.ErrSessionNotFound {
		t.Fatalf("session must be cleared even when upstream logout fails, got %v", err)
	}
}

func TestSessionService_ReactiveEviction(t *testing.T) {
	client := &stubClient{
		loginToken: "shared-token",
		loginUser:  &domain.User{Email: "admin@example.com"},
	}
	svc, store, _, sink := newTestService(client)
	if client.unauthorized == nil {
		t.Fatalf("service must register the unauthorized observer")
	}

	session, err := svc.Login(context.Background(), ports.LoginInput{Email: "admin@example.com", Password: "secret"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	client.unauthorized(context.Background(), "shared-token")

	if _, err := store.Get(context.Background(), session.ID); err != domain.ErrSessionNotFound {
		t.Fatalf("expected eviction after upstream 401, got %v", err)
	}
	var expired bool
	for _, e := range sink.entries {
		if e.Action == domain.AuditSessionExpired {
			expired = true
		}
	}
	if !expired {
		t.Fatalf("expected %s audit entry, got %+v", domain.AuditSessionExpired, sink.entries)
	}
}

func TestSessionService_Profile_RefreshesCache(t *testing.T) {
	client := &stubClient{
		loginToken:  "abc",
		loginUser:   &domain.User{Email: "admin@example.com", Name: "Old"},
		profileUser: &domain.User{Email: "admin@example.com", Name: "New"},
	}
	svc, store, _, _ := newTestService(client)

	session, err := svc.Login(context.Background(), ports.LoginInput{Email: "admin@example.com", Password: "secret"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	user, err := svc.Profile(context.Background(), session)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if user.Name != "New" {
		t.Fatalf("expected refreshed profile, got %+v", user)
	}

	stored, _ := store.Get(context.Background(), session.ID)
	if stored.User == nil || stored.User.Name != "New" {
		t.Fatalf("cache not refreshed: %+v", stored.User)
	}
}

func TestSessionService_Logout_Nil(t *testing.T) {
	svc, _, _, _ := newTestService(&stubClient{})
	svc.Logout(context.Background(), nil) // must be a no-op
}
