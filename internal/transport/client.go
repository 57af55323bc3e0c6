// Package transport provides the HTTP client shared by the catalog providers.
package transport

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net"
	"strings"
	"time"

	"resty.dev/v3"

	"github.com/agentstation/tftmeta/pkg/constants"
	"github.com/agentstation/tftmeta/pkg/errors"
	"github.com/agentstation/tftmeta/pkg/logging"
)

// DefaultUserAgent identifies tftmeta to the CDNs.
const DefaultUserAgent = "tftmeta/1.0 (+https://github.com/agentstation/tftmeta)"

// Client is a read-only JSON client for one provider.
type Client struct {
	http     *resty.Client
	provider string
	timeout  time.Duration
}

type config struct {
	timeout   time.Duration
	retries   int
	userAgent string
}

// Option configures a Client.
type Option func(*config)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRetries sets how many times a failed request is retried.
func WithRetries(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.retries = n
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *config) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// New creates a client for provider rooted at baseURL.
func New(provider, baseURL string, opts ...Option) *Client {
	cfg := &config{
		timeout:   constants.DefaultHTTPTimeout,
		retries:   constants.DefaultRetries,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	http := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(cfg.timeout).
		SetRetryCount(cfg.retries).
		SetRetryWaitTime(constants.RetryBackoff).
		SetRetryMaxWaitTime(constants.MaxRetryBackoff).
		SetHeader("User-Agent", cfg.userAgent).
		SetHeader("Accept", "application/json")

	return &Client{http: http, provider: provider, timeout: cfg.timeout}
}

// GetJSON fetches path and decodes the JSON body into target.
//
// Failures map onto the error taxonomy: a deadline becomes a TimeoutError,
// a non-2xx status an APIError, a transport failure a
// ProviderUnavailableError and an undecodable body a ParseError.
func (c *Client) GetJSON(ctx context.Context, path string, target any) error {
	log := logging.FromContext(ctx)
	start := time.Now()

	resp, err := c.http.R().SetContext(ctx).Get(path)
	if err != nil {
		if isTimeout(ctx, err) {
			return &errors.TimeoutError{Operation: "GET " + path, Duration: c.timeout.String(), Err: err}
		}
		return errors.NewProviderUnavailableError(c.provider, "GET "+path, err)
	}

	log.Debug().
		Str("provider", c.provider).
		Str("path", path).
		Int("status", resp.StatusCode()).
		Dur("elapsed", time.Since(start)).
		Msg("Provider request")

	if !resp.IsSuccess() {
		return &errors.APIError{
			Provider:   c.provider,
			StatusCode: resp.StatusCode(),
			Message:    resp.Status(),
			Endpoint:   path,
		}
	}

	if err := json.Unmarshal(resp.Bytes(), target); err != nil {
		return errors.WrapParse("json", c.provider+" "+path, err)
	}
	return nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	return c.http.Close()
}

func isTimeout(ctx context.Context, err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return stderrors.As(err, &netErr) && netErr.Timeout()
}
