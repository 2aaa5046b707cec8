// Package netclient provides the retrying HTTP client shared by the source-forge
// and tracker adapters.
//
// Every request is retried until it succeeds or its context is cancelled.
// Server-dictated waits (rate limits) are honored without counting as failures;
// any other failure waits with exponential backoff. While waiting, a countdown is
// shown through the status reporter and the previous status is restored afterwards.
package netclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/runoshun/git-qa/internal/domain"
)

// DefaultInitialBackoff is the first wait after a failed request.
const DefaultInitialBackoff = 2 * time.Second

// statusTick is the refresh interval of the countdown status.
const statusTick = 100 * time.Millisecond

// maxResponseSize bounds response body reads.
const maxResponseSize int64 = 64 << 20

// RateLimitFunc inspects a response and returns the wait dictated by the server.
// ok is false when the response is not a rate-limit response.
type RateLimitFunc func(resp *http.Response, now time.Time) (wait time.Duration, ok bool)

// StatusError is returned for non-2xx responses.
// Fields are ordered to minimize memory padding.
type StatusError struct {
	Header     http.Header
	Method     string
	URL        string
	Body       string
	StatusCode int
}

// Error returns the request, the status and the response body.
func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Body == "" {
		return msg
	}
	return msg + "\n\nResponse\n--------\n" + e.Body
}

// IsStatus reports whether err is a StatusError with the given status code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

// Response is a successful response with its body fully read.
type Response struct {
	Header     http.Header
	Body       []byte
	StatusCode int
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Options configures a Client.
// Fields are ordered to minimize memory padding.
type Options struct {
	HTTPClient     *http.Client
	Clock          domain.Clock
	Status         domain.StatusReporter
	Logger         domain.Logger
	RateLimit      RateLimitFunc
	Username       string // Basic auth user
	Password       string // Basic auth password or token
	Category       string // Log category, e.g. "github"
	InitialBackoff time.Duration
	MaxRetries     int // 0 retries forever
}

// Client is a responsive HTTP client.
// Fields are ordered to minimize memory padding.
type Client struct {
	http           *http.Client
	clock          domain.Clock
	status         domain.StatusReporter
	logger         domain.Logger
	rateLimit      RateLimitFunc
	username       string
	password       string
	category       string
	initialBackoff time.Duration
	maxRetries     int
}

// New creates a Client. Unset collaborators default to no-op implementations.
func New(opts Options) *Client {
	c := &Client{
		http:           opts.HTTPClient,
		clock:          opts.Clock,
		status:         opts.Status,
		logger:         opts.Logger,
		rateLimit:      opts.RateLimit,
		username:       opts.Username,
		password:       opts.Password,
		category:       opts.Category,
		initialBackoff: opts.InitialBackoff,
		maxRetries:     opts.MaxRetries,
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 30 * time.Second}
	}
	if c.clock == nil {
		c.clock = domain.RealClock{}
	}
	if c.status == nil {
		c.status = domain.NopStatus{}
	}
	if c.logger == nil {
		c.logger = domain.NopLogger{}
	}
	if c.initialBackoff <= 0 {
		c.initialBackoff = DefaultInitialBackoff
	}
	if c.category == "" {
		c.category = "http"
	}
	return c
}

// Status returns the status reporter of the client.
func (c *Client) Status() domain.StatusReporter {
	return c.status
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, url string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, url, nil)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, url string, body any) (*Response, error) {
	return c.Do(ctx, http.MethodPost, url, body)
}

// GetOnce performs a single GET request accepting any content type.
// It is used for documents whose failures are reported to the user instead of retried.
func (c *Client) GetOnce(ctx context.Context, url string) (*Response, error) {
	resp, wait, err := c.attempt(ctx, http.MethodGet, url, "*/*", nil)
	if err != nil {
		return nil, err
	}
	if wait > 0 {
		return nil, fmt.Errorf("GET %s: rate limited, retry in %s", url, wait)
	}
	return resp, nil
}

// Do performs a request, retrying until it succeeds, the context is cancelled,
// or the optional retry cap is reached. A non-nil body is sent as JSON.
func (c *Client) Do(ctx context.Context, method, url string, body any) (*Response, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
	}

	backoff := c.initialBackoff
	failures := 0
	for {
		resp, wait, err := c.attempt(ctx, method, url, "application/json", payload)
		if err == nil && wait == 0 {
			return resp, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		if wait > 0 {
			c.logger.Warn("global", c.category, fmt.Sprintf("rate limited on %s %s, waiting %s", method, url, wait))
			if err := c.Wait(ctx, wait, ""); err != nil {
				return nil, err
			}
			continue
		}

		failures++
		if c.maxRetries > 0 && failures > c.maxRetries {
			return nil, fmt.Errorf("%w after %d attempts: %w", domain.ErrRetriesExhausted, failures, err)
		}
		c.logger.Warn("global", c.category, fmt.Sprintf("request failed, retrying in %s: %v", backoff, err))
		if err := c.Wait(ctx, backoff, err.Error()); err != nil {
			return nil, err
		}
		backoff *= 2
	}
}

// attempt performs one request. A positive wait means the server asked to retry later.
func (c *Client) attempt(ctx context.Context, method, url, accept string, payload []byte) (*Response, time.Duration, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", accept)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.username != "" || c.password != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if c.rateLimit != nil {
		if wait, ok := c.rateLimit(resp, c.clock.Now()); ok {
			if wait <= 0 {
				wait = time.Second
			}
			return nil, wait, nil
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, 0, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, 0, &StatusError{
			Method:     method,
			URL:        url,
			StatusCode: resp.StatusCode,
			Header:     resp.Header,
			Body:       prettyBody(data),
		}
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, 0, nil
}

// Wait blocks for d while showing a countdown, then restores the previous status.
// The detail text, if any, is shown below the countdown.
func (c *Client) Wait(ctx context.Context, d time.Duration, detail string) error {
	original := c.status.Status()
	defer c.status.SetStatus(original)

	deadline := c.clock.Now().Add(d)
	for {
		remaining := deadline.Sub(c.clock.Now())
		if remaining <= 0 {
			return nil
		}

		msg := "Retrying in: " + domain.FormatCountdown(remaining)
		if detail != "" {
			msg += "\n\n" + detail
		}
		c.status.SetStatus(msg)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.clock.After(min(remaining, statusTick)):
		}
	}
}

func prettyBody(data []byte) string {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return strings.TrimSpace(string(data))
	}
	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return strings.TrimSpace(string(data))
	}
	return string(pretty)
}
