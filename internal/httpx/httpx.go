// Package httpx holds the retry and status handling shared by the external API clients.
package httpx

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultRetryAttempts  = 4
	DefaultRetryBaseDelay = 1 * time.Second
	DefaultRetryMaxDelay  = 10 * time.Second
	maxBodySnippet        = 240
)

// StatusError is returned when a remote API answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.StatusCode, Snippet(e.Body))
}

// HTTPStatusCode exposes the status for errors.As callers.
func (e *StatusError) HTTPStatusCode() int { return e.StatusCode }

// NewStatusError builds a StatusError from a response and its already-read body.
func NewStatusError(resp *http.Response, body []byte) *StatusError {
	retryAfter, _ := ParseRetryAfter(resp.Header.Get("Retry-After"))
	return &StatusError{
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
		RetryAfter: retryAfter,
	}
}

// IsRetryableStatus reports whether a status is worth retrying.
func IsRetryableStatus(code int) bool {
	return code == http.StatusRequestTimeout || code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// Retrier runs an operation with exponential backoff.
type Retrier struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
	// Sleeper replaces real sleeps in tests.
	Sleeper func(time.Duration)
}

// DefaultRetrier returns the retry policy used by every client.
func DefaultRetrier() Retrier {
	return Retrier{
		Attempts:  DefaultRetryAttempts,
		BaseDelay: DefaultRetryBaseDelay,
		MaxDelay:  DefaultRetryMaxDelay,
	}
}

// Do calls op until it succeeds, returns a non-retryable error, or attempts run out.
func (r Retrier) Do(ctx context.Context, op func() error) error {
	attempts := r.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		delay, retry := r.delay(ctx, lastErr, attempt)
		if !retry {
			return lastErr
		}
		if attempt == attempts {
			break
		}
		if err := r.sleep(ctx, delay); err != nil {
			return err
		}
	}
	return fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}

func (r Retrier) delay(ctx context.Context, err error, attempt int) (time.Duration, bool) {
	if ctx.Err() != nil {
		return 0, false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		if !IsRetryableStatus(statusErr.StatusCode) {
			return 0, false
		}
		if statusErr.RetryAfter > 0 {
			return r.capDelay(statusErr.RetryAfter), true
		}
		return r.backoff(attempt), true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return r.backoff(attempt), true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return r.backoff(attempt), true
	}
	return 0, false
}

func (r Retrier) backoff(attempt int) time.Duration {
	if r.BaseDelay <= 0 {
		return 0
	}
	// attempt 1 -> base, attempt 2 -> base*2, attempt 3 -> base*4, ...
	delay := r.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if r.MaxDelay > 0 && delay >= r.MaxDelay {
			return r.MaxDelay
		}
	}
	return r.capDelay(delay)
}

func (r Retrier) capDelay(d time.Duration) time.Duration {
	if r.MaxDelay > 0 && d > r.MaxDelay {
		return r.MaxDelay
	}
	return d
}

func (r Retrier) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	if r.Sleeper != nil {
		r.Sleeper(d)
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ParseRetryAfter parses a Retry-After header in seconds or HTTP-date form.
func ParseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		if d := time.Until(when); d > 0 {
			return d, true
		}
	}
	return 0, false
}

// Snippet shortens a response body for error messages.
func Snippet(body string) string {
	body = strings.Join(strings.Fields(body), " ")
	if len(body) > maxBodySnippet {
		return body[:maxBodySnippet] + "..."
	}
	return body
}
