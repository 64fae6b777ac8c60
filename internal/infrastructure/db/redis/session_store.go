package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/astroline/admin-gateway/internal/core/domain"
	"github.com/astroline/admin-gateway/internal/core/ports"
)

// SessionStore persists sessions in Redis so they survive a gateway restart.
// Each session owns two JSON values, written and removed together:
//
//	session:<id>:credential  {"token": "...", "created_at": "..."}
//	session:<id>:user        the cached user record
//
// A reverse index keyed by the SHA-256 of the credential supports eviction of
// every session bound to a rejected token. Raw tokens never appear in key names.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ports.SessionStore = (*SessionStore)(nil)

// NewSessionStore creates a SessionStore. Sessions expire from Redis after
// ttl; this bounds store growth and mirrors the cookie lifetime, it is not a
// local judgement on the upstream credential's validity.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

type storedCredential struct {
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *SessionStore) Save(ctx context.Context, session *domain.Session) error {
	cred, err := json.Marshal(storedCredential{Token: session.Token, CreatedAt: session.CreatedAt})
	if err != nil {
		return fmt.Errorf("encode credential: %w", err)
	}
	user, err := json.Marshal(session.User)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, credentialKey(session.ID), cred, s.ttl)
	pipe.Set(ctx, userKey(session.ID), user, s.ttl)
	pipe.SAdd(ctx, tokenKey(session.Token), session.ID)
	pipe.Expire(ctx, tokenKey(session.Token), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	values, err := s.client.MGet(ctx, credentialKey(id), userKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	rawCred, ok := values[0].(string)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	var cred storedCredential
	if err := json.Unmarshal([]byte(rawCred), &cred); err != nil {
		return nil, fmt.Errorf("decode credential: %w", err)
	}

	session := &domain.Session{ID: id, Token: cred.Token, CreatedAt: cred.CreatedAt}
	if rawUser, ok := values[1].(string); ok && rawUser != "null" {
		var user domain.User
		if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		session.User = &user
	}
	return session, nil
}

func (s *SessionStore) SetUser(ctx context.Context, id string, user *domain.User) error {
	exists, err := s.client.Exists(ctx, credentialKey(id)).Result()
	if err != nil {
		return fmt.Errorf("check session: %w", err)
	}
	if exists == 0 {
		return domain.ErrSessionNotFound
	}

	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := s.client.Set(ctx, userKey(id), raw, redis.KeepTTL).Err(); err != nil {
		return fmt.Errorf("set user: %w", err)
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	// Look up the credential first so the token index can be cleaned up too.
	rawCred, err := s.client.Get(ctx, credentialKey(id)).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("get session: %w", err)
	}
	var cred storedCredential
	if err := json.Unmarshal([]byte(rawCred), &cred); err != nil {
		return fmt.Errorf("decode credential: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, credentialKey(id), userKey(id))
	pipe.SRem(ctx, tokenKey(cred.Token), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *SessionStore) DeleteByToken(ctx context.Context, token string) (int, error) {
	ids, err := s.client.SMembers(ctx, tokenKey(token)).Result()
	if err != nil {
		return 0, fmt.Errorf("resolve token index: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	keys := make([]string, 0, len(ids)*2+1)
	for _, id := range ids {
		keys = append(keys, credentialKey(id), userKey(id))
	}
	keys = append(keys, tokenKey(token))
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return 0, fmt.Errorf("delete sessions: %w", err)
	}
	return len(ids), nil
}

func credentialKey(id string) string {
	return "session:" + id + ":credential"
}

func userKey(id string) string {
	return "session:" + id + ":user"
}

func tokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "session:token:" + hex.EncodeToString(sum[:])
}
