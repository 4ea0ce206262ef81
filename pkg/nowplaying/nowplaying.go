// Package nowplaying provides a client for the stream metadata provider
// that reports the track currently on air.
package nowplaying

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/wavenation/wavenation/internal/logger"
)

// Retry policy for transient failures
const (
	DefaultAttempts = 3
	DefaultBackoff  = 200 * time.Millisecond
)

// ErrNotConfigured is returned when no provider URL is set
var ErrNotConfigured = errors.New("now playing provider not configured")

// Track is the provider's view of what is on air. Fields the provider
// omits are left empty.
type Track struct {
	Title  string
	Artist string
	Cover  string
}

// payload accepts the field spellings seen across providers
type payload struct {
	Track   json.RawMessage `json:"track"`
	Title   json.RawMessage `json:"title"`
	Artist  json.RawMessage `json:"artist"`
	Cover   json.RawMessage `json:"cover"`
	Artwork json.RawMessage `json:"artwork"`
}

// stringField returns raw when it holds a JSON string, else ""
func stringField(raws ...json.RawMessage) string {
	for _, raw := range raws {
		var s string
		if len(raw) > 0 && json.Unmarshal(raw, &s) == nil && s != "" {
			return s
		}
	}
	return ""
}

// Client defines the interface for now playing lookups
type Client interface {
	// Fetch returns the current track. A nil track with a nil error means
	// the provider reported nothing on air.
	Fetch(ctx context.Context) (*Track, error)
	// URL returns the configured provider URL
	URL() string
}

// HTTPClient is a real HTTP client for the metadata provider
type HTTPClient struct {
	url        string
	httpClient *http.Client
	log        logger.Logger
	attempts   int
	backoff    time.Duration
}

// Option configures an HTTPClient
type Option func(*HTTPClient)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTPClient) { h.httpClient = c }
}

// WithRetry sets the attempt count and the base backoff between attempts
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(h *HTTPClient) {
		if attempts > 0 {
			h.attempts = attempts
		}
		h.backoff = backoff
	}
}

// NewHTTPClient creates a new provider client
func NewHTTPClient(url string, log logger.Logger, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		url:        url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log,
		attempts:   DefaultAttempts,
		backoff:    DefaultBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the configured provider URL
func (c *HTTPClient) URL() string {
	return c.url
}

// statusError is a non-200 reply from the provider
type statusError struct {
	status int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("now playing provider returned status %d", e.status)
}

// retryable reports whether another attempt may succeed
func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.status == http.StatusTooManyRequests || se.status >= 500
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// Fetch retries transient failures with exponential backoff
func (c *HTTPClient) Fetch(ctx context.Context) (*Track, error) {
	if c.url == "" {
		return nil, ErrNotConfigured
	}

	var lastErr error
	delay := c.backoff
	for attempt := 1; attempt <= c.attempts; attempt++ {
		track, err := c.fetchOnce(ctx)
		if err == nil {
			return track, nil
		}
		lastErr = err
		if attempt == c.attempts || !retryable(err) {
			break
		}

		c.log.Debug("Now playing fetch failed, retrying", "attempt", attempt, "delay", delay.String(), "error", err)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
	return nil, fmt.Errorf("fetch now playing: %w", lastErr)
}

func (c *HTTPClient) fetchOnce(ctx context.Context) (*Track, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to provider: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{status: resp.StatusCode}
	}

	if string(body) == "null" || len(body) == 0 {
		return nil, nil
	}
	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &Track{
		Title:  stringField(p.Track, p.Title),
		Artist: stringField(p.Artist),
		Cover:  stringField(p.Cover, p.Artwork),
	}, nil
}
