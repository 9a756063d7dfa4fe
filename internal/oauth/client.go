package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

var (
	// ErrRefreshRejected indicates the provider refused the refresh token.
	// Terminal for the current token; requires out-of-band re-authorization.
	ErrRefreshRejected = errors.New("refresh token rejected by provider")

	// ErrNetwork indicates the exchange could not complete. Transient.
	ErrNetwork = errors.New("token endpoint unreachable")
)

// Credentials is the result of one successful refresh exchange.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	// ExpiresAt is the access token expiry, computed at issuance from the provider's
	// expires_in.
	ExpiresAt time.Time
}

// ClientOption configures a Client.
type ClientOption func(*clientConfig)

type clientConfig struct {
	endpoint      oauth2.Endpoint
	baseTransport http.RoundTripper
	timeout       time.Duration
}

// WithEndpoint overrides the token endpoint, e.g. to point at a test server.
func WithEndpoint(endpoint oauth2.Endpoint) ClientOption {
	return func(c *clientConfig) {
		c.endpoint = endpoint
	}
}

// WithTransport sets a custom base transport for token requests.
// If not provided, http.DefaultTransport is used.
func WithTransport(transport http.RoundTripper) ClientOption {
	return func(c *clientConfig) {
		c.baseTransport = transport
	}
}

// Client exchanges refresh tokens for new credential pairs.
// A Client is stateless and safe for concurrent use.
type Client struct {
	cfg        *oauth2.Config
	httpClient *http.Client
}

// NewClient creates a Client for the given application credentials.
func NewClient(clientID, clientSecret string, opts ...ClientOption) *Client {
	cfg := &clientConfig{
		endpoint:      Endpoint,
		baseTransport: http.DefaultTransport,
		timeout:       30 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return &Client{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     cfg.endpoint,
		},
		httpClient: &http.Client{
			Timeout:   cfg.timeout, // Bounds the exchange even if the caller's context has no deadline
			Transport: cfg.baseTransport,
		},
	}
}

// Refresh performs one refresh_token grant and returns the rotated credentials.
// Nothing is persisted; the previous refresh token is invalid once this succeeds.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (Credentials, error) {
	if refreshToken == "" {
		return Credentials{}, fmt.Errorf("%w: empty refresh token", ErrRefreshRejected)
	}

	// The oauth2 package injects custom HTTP clients via context (oauth2.HTTPClient key).
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	// A single-use TokenSource: the seed token has no access token, forcing an
	// immediate refresh exchange.
	token, err := c.cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return Credentials{}, fmt.Errorf("%w: status %d: %s",
				ErrRefreshRejected, retrieveErr.Response.StatusCode, strings.TrimSpace(string(retrieveErr.Body)))
		}
		return Credentials{}, fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	return Credentials{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
	}, nil
}
