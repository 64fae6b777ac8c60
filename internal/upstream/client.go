// Package upstream implements the HTTP client for the remote astrology
// platform API. Every outbound call of the gateway goes through it: it binds
// the bearer credential at dispatch time, disables intermediary caching, and
// normalizes failures into the domain error taxonomy.
//
// The client is intentionally thin: no retries, no request queuing, no
// cancellation beyond the caller's context. The one piece of policy it hosts
// is reactive: a 401 on a request that carried a credential invokes the
// registered unauthorized observer before the error is returned.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/astroline/admin-gateway/internal/api/metrics"
	"github.com/astroline/admin-gateway/internal/core/domain"
	"github.com/astroline/admin-gateway/internal/core/ports"
)

const defaultTimeout = 15 * time.Second

// Client talks to the platform API. Safe for concurrent use.
type Client struct {
	base           *url.URL
	http           *http.Client
	onUnauthorized func(ctx context.Context, token string)
	log            zerolog.Logger
}

var _ ports.APIClient = (*Client)(nil)

// New creates a Client for the given base URL. A default timeout is applied
// when none is provided.
func New(baseURL string, timeout time.Duration, log zerolog.Logger) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", baseURL)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		base: base,
		http: &http.Client{Timeout: timeout},
		log:  log,
	}, nil
}

// OnUnauthorized registers the observer invoked when a request that carried a
// token is rejected with 401. Must be called during startup, before the client
// serves traffic.
func (c *Client) OnUnauthorized(fn func(ctx context.Context, token string)) {
	c.onUnauthorized = fn
}

func (c *Client) Get(ctx context.Context, token, path string, query url.Values, out any) error {
	return c.do(ctx, token, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, token, path string, body, out any) error {
	return c.do(ctx, token, http.MethodPost, path, nil, body, out)
}

func (c *Client) Put(ctx context.Context, token, path string, body, out any) error {
	return c.do(ctx, token, http.MethodPut, path, nil, body, out)
}

func (c *Client) Delete(ctx context.Context, token, path string, out any) error {
	return c.do(ctx, token, http.MethodDelete, path, nil, nil, out)
}

// Ping reports whether the platform API is reachable at the transport level.
// Any HTTP response, including an error status, counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.base.String(), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("upstream ping: %w", err)
	}
	_ = resp.Body.Close()
	return nil
}

func (c *Client) do(ctx context.Context, token, method, path string, query url.Values, body, out any) error {
	u := c.base.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	// The credential is bound per call, at dispatch time.
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.UpstreamRequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(method, "error").Inc()
		c.log.Warn().Err(err).Str("method", method).Str("path", path).Msg("upstream unreachable")
		return &Error{Message: err.Error(), cause: domain.ErrUpstreamUnavailable}
	}
	defer resp.Body.Close()
	metrics.UpstreamRequestsTotal.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Status: resp.StatusCode, Message: err.Error(), cause: domain.ErrUpstreamUnavailable}
	}

	if resp.StatusCode >= 400 {
		return c.errorFromResponse(ctx, token, method, path, resp.StatusCode, raw)
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) errorFromResponse(ctx context.Context, token, method, path string, status int, raw []byte) error {
	msg := errorMessage(raw)

	switch {
	case status == http.StatusUnauthorized && token != "":
		// The platform rejected an established credential. Let the registered
		// observer end the session, then still hand the error to the caller.
		c.log.Info().Str("method", method).Str("path", path).Msg("credential rejected upstream")
		if c.onUnauthorized != nil {
			c.onUnauthorized(ctx, token)
		}
		return &Error{Status: status, Message: msg, cause: domain.ErrSessionExpired}
	case status == http.StatusUnauthorized:
		return &Error{Status: status, Message: msg, cause: domain.ErrInvalidCredentials}
	case status == http.StatusForbidden:
		return &Error{Status: status, Message: msg, cause: domain.ErrForbidden}
	case status >= 500:
		return &Error{Status: status, Message: msg, cause: domain.ErrUpstreamServer}
	default:
		return &Error{Status: status, Message: msg}
	}
}

// errorMessage pulls a human-readable message out of an error payload. The
// platform API uses {"error": "..."} but some endpoints answer {"message": "..."}.
func errorMessage(raw []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	if s := strings.TrimSpace(string(raw)); s != "" && len(s) <= 200 {
		return s
	}
	return "request failed"
}
