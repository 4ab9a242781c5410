package herdcheck

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/okian/sleigh/internal/domain/reindeer"
	"golang.org/x/time/rate"
)

const (
	requestIDHeader = "X-Request-Id"

	// Attempts per request when the server answers 429.
	maxAttempts       = 3
	defaultRetryAfter = time.Second
	maxRetryAfter     = 5 * time.Second
)

// StatusError carries a response whose status the caller did not expect.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %d: %s", ErrUnexpectedStatus, e.Status, strings.TrimSpace(e.Body))
}

func (e *StatusError) Unwrap() error { return ErrUnexpectedStatus }

// Client talks to the sleigh HTTP routes.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithRateLimit paces requests to limit per second with the given burst.
// A non-positive limit leaves requests unpaced.
func WithRateLimit(limit float64, burst int) ClientOption {
	return func(c *Client) {
		if limit > 0 && burst > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(limit), burst)
		}
	}
}

// NewClient creates a client for baseURL with a per-request timeout.
func NewClient(baseURL string, timeout time.Duration, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Health checks GET /healthz.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.expect(ctx, http.MethodGet, "/healthz", nil, http.StatusOK)
	return err
}

// Greet calls GET /.
func (c *Client) Greet(ctx context.Context) (string, error) {
	body, err := c.expect(ctx, http.MethodGet, "/", nil, http.StatusOK)
	return string(body), err
}

// Failure calls GET /-1/error, which must answer with an empty 500.
func (c *Client) Failure(ctx context.Context) error {
	body, err := c.expect(ctx, http.MethodGet, "/-1/error", nil, http.StatusInternalServerError)
	if err != nil {
		return err
	}
	if len(body) != 0 {
		return &StatusError{Status: http.StatusInternalServerError, Body: string(body)}
	}
	return nil
}

// Recalibrate calls GET /1/{path}.
func (c *Client) Recalibrate(ctx context.Context, path string) (uint32, error) {
	body, err := c.expect(ctx, http.MethodGet, "/1/"+path, nil, http.StatusOK)
	if err != nil {
		return 0, err
	}
	return parseUint32(body)
}

// Strength calls POST /4/strength.
func (c *Client) Strength(ctx context.Context, herd []reindeer.Reindeer) (uint32, error) {
	payload, err := json.Marshal(herd)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal herd: %w", err)
	}
	body, err := c.expect(ctx, http.MethodPost, "/4/strength", payload, http.StatusOK)
	if err != nil {
		return 0, err
	}
	return parseUint32(body)
}

// Contest calls POST /4/contest.
func (c *Client) Contest(ctx context.Context, herd []reindeer.Reindeer) (reindeer.Standings, error) {
	payload, err := json.Marshal(herd)
	if err != nil {
		return reindeer.Standings{}, fmt.Errorf("failed to marshal herd: %w", err)
	}
	body, err := c.expect(ctx, http.MethodPost, "/4/contest", payload, http.StatusOK)
	if err != nil {
		return reindeer.Standings{}, err
	}
	var standings reindeer.Standings
	if err := json.Unmarshal(body, &standings); err != nil {
		return reindeer.Standings{}, fmt.Errorf("failed to decode standings: %w", err)
	}
	return standings, nil
}

// expect performs a request and returns the body when the status matches want.
// A 429 is retried after its Retry-After delay, up to maxAttempts in total.
func (c *Client) expect(ctx context.Context, method, path string, payload []byte, want int) ([]byte, error) {
	for attempt := 1; ; attempt++ {
		data, retryAfter, err := c.do(ctx, method, path, payload, want)
		var statusErr *StatusError
		if attempt >= maxAttempts || !errors.As(err, &statusErr) || statusErr.Status != http.StatusTooManyRequests {
			return data, err
		}

		timer := time.NewTimer(retryAfter)
		select {
		case <-ctx.Done():
			timer.Stop()
			return data, err
		case <-timer.C:
		}
	}
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte, want int) ([]byte, time.Duration, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, 0, fmt.Errorf("%s %s: %w", method, path, err)
		}
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(requestIDHeader, uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != want {
		return data, retryAfter(resp.Header.Get("Retry-After")), &StatusError{Status: resp.StatusCode, Body: string(data)}
	}
	return data, 0, nil
}

// retryAfter parses a Retry-After value in seconds, capped at maxRetryAfter.
func retryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs < 0 {
		return defaultRetryAfter
	}
	return min(time.Duration(secs)*time.Second, maxRetryAfter)
}

func parseUint32(body []byte) (uint32, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(string(body)), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("response %q is not a u32: %w", body, err)
	}
	return uint32(v), nil
}
