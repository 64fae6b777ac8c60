package service

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/astroline/admin-gateway/internal/api/metrics"
	"github.com/astroline/admin-gateway/internal/core/domain"
	"github.com/astroline/admin-gateway/internal/core/ports"
)

// emailPattern is a syntactic sanity check only; the platform API is the
// authority on whether an account exists.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// SessionService owns the session lifecycle. It is the only writer of the
// session store for operator-initiated transitions; the reactive transition
// (credential rejected upstream) runs through the unauthorized observer it
// registers on the API client at construction time.
type SessionService struct {
	store    ports.SessionStore
	client   ports.APIClient
	throttle ports.LoginThrottle
	audit    ports.AuditSink
	log      zerolog.Logger
}

var _ ports.SessionService = (*SessionService)(nil)

func NewSessionService(store ports.SessionStore, client ports.APIClient, throttle ports.LoginThrottle, audit ports.AuditSink, log zerolog.Logger) *SessionService {
	s := &SessionService{
		store:    store,
		client:   client,
		throttle: throttle,
		audit:    audit,
		log:      log,
	}
	client.OnUnauthorized(s.handleUnauthorized)
	return s
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// Login validates the credentials syntactically, authenticates against the
// platform API, and persists the returned credential and user record as a new
// session. Validation failures never reach the network; failed attempts leave
// prior state untouched.
func (s *SessionService) Login(ctx context.Context, in ports.LoginInput) (*domain.Session, error) {
	if in.Email == "" || in.Password == "" || !emailPattern.MatchString(in.Email) {
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	blocked, err := s.throttle.Blocked(ctx, in.Email, in.IP)
	if err != nil {
		s.log.Error().Err(err).Msg("login throttle check failed")
	} else if blocked {
		metrics.LoginsTotal.WithLabelValues("throttled").Inc()
		return nil, domain.ErrTooManyAttempts
	}

	var resp loginResponse
	if err := s.client.Post(ctx, "", "/auth/login", loginRequest{Email: in.Email, Password: in.Password}, &resp); err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
			if terr := s.throttle.Fail(ctx, in.Email, in.IP); terr != nil {
				s.log.Error().Err(terr).Msg("recording failed login attempt")
			}
			s.audit.Enqueue(domain.AuditEntry{
				Actor:     in.Email,
				Action:    domain.AuditLoginFailed,
				IP:        in.IP,
				CreatedAt: time.Now().UTC(),
			})
		} else {
			metrics.LoginsTotal.WithLabelValues("error").Inc()
		}
		return nil, err
	}
	if resp.Token == "" {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, errors.New("login response missing token")
	}

	session := &domain.Session{
		ID:        uuid.NewString(),
		Token:     resp.Token,
		User:      resp.User,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Save(ctx, session); err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	if err := s.throttle.Reset(ctx, in.Email, in.IP); err != nil {
		s.log.Error().Err(err).Msg("resetting login throttle")
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.log.Info().Str("email", in.Email).Str("session_id", session.ID).Msg("operator logged in")
	s.audit.Enqueue(domain.AuditEntry{
		Actor:     in.Email,
		Action:    domain.AuditLogin,
		IP:        in.IP,
		CreatedAt: time.Now().UTC(),
	})
	return session, nil
}

// Logout notifies the platform API on a best-effort basis and clears local
// state unconditionally. "Being logged out" is a local guarantee: an upstream
// failure is logged, never surfaced.
func (s *SessionService) Logout(ctx context.Context, session *domain.Session) {
	if session == nil {
		return
	}

	if err := s.client.Post(ctx, session.Token, "/auth/logout", nil, nil); err != nil {
		s.log.Warn().Err(err).Str("session_id", session.ID).Msg("upstream logout failed, clearing session anyway")
	}

	if err := s.store.Delete(ctx, session.ID); err != nil {
		s.log.Error().Err(err).Str("session_id", session.ID).Msg("deleting session")
	}

	metrics.SessionEvictionsTotal.WithLabelValues("logout").Inc()
	actor := ""
	if session.User != nil {
		actor = session.User.Email
	}
	s.audit.Enqueue(domain.AuditEntry{
		Actor:     actor,
		Action:    domain.AuditLogout,
		CreatedAt: time.Now().UTC(),
	})
}

// Profile re-fetches the operator's profile from the platform API and
// refreshes the cached user record. The cached copy may be stale between
// calls; only this refresh reconciles it.
func (s *SessionService) Profile(ctx context.Context, session *domain.Session) (*domain.User, error) {
	var user domain.User
	if err := s.client.Get(ctx, session.Token, "/auth/profile", nil, &user); err != nil {
		return nil, err
	}

	if err := s.store.SetUser(ctx, session.ID, &user); err != nil {
		s.log.Error().Err(err).Str("session_id", session.ID).Msg("caching refreshed profile")
	}
	session.User = &user
	return &user, nil
}

// handleUnauthorized is the reactive half of the state machine: the platform
// API rejected a credential mid-session, so every session bound to it is
// evicted. Runs inline with the request that observed the 401, before that
// request's error reaches its handler.
func (s *SessionService) handleUnauthorized(ctx context.Context, token string) {
	n, err := s.store.DeleteByToken(ctx, token)
	if err != nil {
		s.log.Error().Err(err).Msg("evicting sessions for rejected credential")
		return
	}
	if n == 0 {
		return
	}

	metrics.SessionEvictionsTotal.WithLabelValues("unauthorized").Inc()
	s.log.Info().Int("sessions", n).Msg("sessions evicted after upstream 401")
	s.audit.Enqueue(domain.AuditEntry{
		Action:    domain.AuditSessionExpired,
		Detail:    "credential rejected by platform API",
		CreatedAt: time.Now().UTC(),
	})
}
