package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/astroline/admin-gateway/internal/core/ports"
)

// LoginThrottle counts failed login attempts per email/IP pair in Redis.
// Key format: login:fail:<email>:<ip>, expiring after the configured window.
type LoginThrottle struct {
	client      *redis.Client
	maxFailures int
	window      time.Duration
}

var _ ports.LoginThrottle = (*LoginThrottle)(nil)

// NewLoginThrottle creates a LoginThrottle blocking after maxFailures failed
// attempts within window.
func NewLoginThrottle(client *redis.Client, maxFailures int, window time.Duration) *LoginThrottle {
	return &LoginThrottle{client: client, maxFailures: maxFailures, window: window}
}

// Blocked reports whether this email/IP pair has exhausted its attempts.
func (t *LoginThrottle) Blocked(ctx context.Context, email, ip string) (bool, error) {
	n, err := t.client.Get(ctx, t.key(email, ip)).Int()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("throttle check: %w", err)
	}
	return n >= t.maxFailures, nil
}

// Fail records a failed attempt. The expiry window starts at the first failure.
func (t *LoginThrottle) Fail(ctx context.Context, email, ip string) error {
	key := t.key(email, ip)
	pipe := t.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, t.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("throttle fail: %w", err)
	}
	return nil
}

// Reset clears the failure count after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, email, ip string) error {
	return t.client.Del(ctx, t.key(email, ip)).Err()
}

func (t *LoginThrottle) key(email, ip string) string {
	return "login:fail:" + strings.ToLower(email) + ":" + ip
}
