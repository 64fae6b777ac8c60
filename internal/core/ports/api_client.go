package ports

import (
	"context"
	"net/url"
)

// APIClient is the single choke point for calls to the remote platform API.
// A non-empty token is attached as a bearer Authorization header; out, when
// non-nil, receives the JSON-decoded response body.
type APIClient interface {
	Get(ctx context.Context, token, path string, query url.Values, out any) error
	Post(ctx context.Context, token, path string, body, out any) error
	Put(ctx context.Context, token, path string, body, out any) error
	Delete(ctx context.Context, token, path string, out any) error

	// OnUnauthorized registers the observer invoked whenever a request that
	// carried a token is answered with 401. The transport performs no session
	// handling itself; ending the session is the observer's policy.
	OnUnauthorized(fn func(ctx context.Context, token string))
}
