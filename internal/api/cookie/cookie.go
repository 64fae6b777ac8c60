// Package cookie implements the signed browser session cookie. The cookie
// carries nothing but the gateway session ID; the upstream credential never
// reaches the browser.
package cookie

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Name is the session cookie name.
const Name = "astroadmin_session"

// Codec signs and verifies session cookies using HS256.
type Codec struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

func NewCodec(secret string, ttl time.Duration, secure bool) *Codec {
	return &Codec{secret: []byte(secret), ttl: ttl, secure: secure}
}

// Issue creates a signed cookie for the given session ID. The cookie expiry
// bounds session-store growth; it is not a judgement on the upstream
// credential, which only the platform API can invalidate.
func (c *Codec) Issue(sessionID string) (*http.Cookie, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
	})
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return nil, fmt.Errorf("sign session cookie: %w", err)
	}

	return &http.Cookie{
		Name:     Name,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(c.ttl.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// Decode verifies a cookie value and returns the session ID it carries.
func (c *Codec) Decode(raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return c.secret, nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", fmt.Errorf("invalid session cookie")
	}
	return claims.Subject, nil
}

// Expire returns a cookie that removes the session cookie from the browser.
func (c *Codec) Expire() *http.Cookie {
	return &http.Cookie{
		Name:     Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
