// Package wordpress publishes posts and media through the WordPress REST API.
package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonathan/chaos-engine/internal/logging"
	"github.com/jonathan/chaos-engine/internal/markup"
)

const (
	// DefaultTimeout is the per-request timeout.
	DefaultTimeout = 30 * time.Second
	// DefaultUserAgent identifies the publisher to the remote site.
	DefaultUserAgent = "ChaosAgent/1.0"
	// DefaultMaxAttempts bounds media upload attempts.
	DefaultMaxAttempts = 3
	// DefaultBaseBackoff is the wait before the second attempt; it doubles after that.
	DefaultBaseBackoff = time.Second
	// ExcerptLength is the maximum excerpt length in runes.
	ExcerptLength = 160
)

// Post statuses accepted by WordPress.
const (
	StatusDraft   = "draft"
	StatusPublish = "publish"
)

// PublishError describes a failed WordPress call.
type PublishError struct {
	Endpoint   string
	StatusCode int
	Message    string
	Cause      error
}

func (e *PublishError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("wordpress error for %s: %s: %v", e.Endpoint, e.Message, e.Cause)
	}
	return fmt.Sprintf("wordpress error for %s: %s", e.Endpoint, e.Message)
}

func (e *PublishError) Unwrap() error {
	return e.Cause
}

// Retryable reports whether the failure is worth another attempt: network
// errors, 429 and 5xx responses.
func (e *PublishError) Retryable() bool {
	if e.StatusCode == 0 {
		return e.Cause != nil && isTransport(e.Cause)
	}
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// isTransport matches connection-level failures from http.Client.Do, excluding
// the caller giving up.
func isTransport(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var urlErr *url.Error
	var netErr net.Error
	return errors.As(err, &urlErr) || errors.As(err, &netErr)
}

// Post is the content to publish.
type Post struct {
	Title         string `json:"title"`
	Content       string `json:"content"`
	Excerpt       string `json:"excerpt,omitempty"`
	Status        string `json:"status"`
	Categories    []int  `json:"categories,omitempty"`
	FeaturedMedia int    `json:"featured_media,omitempty"`
}

// PostResult is the subset of the created post returned by WordPress.
type PostResult struct {
	ID     int    `json:"id"`
	Link   string `json:"link"`
	Status string `json:"status"`
}

// Media is an uploaded attachment.
type Media struct {
	ID        int    `json:"id"`
	SourceURL string `json:"source_url"`
}

// Client talks to a single WordPress site.
type Client struct {
	baseURL     string
	username    string
	password    string
	httpClient  *http.Client
	userAgent   string
	maxAttempts int
	baseBackoff time.Duration
	logger      *slog.Logger
	sleep       func(context.Context, time.Duration) error
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// WithRetry sets the media upload attempt count and initial backoff.
func WithRetry(maxAttempts int, baseBackoff time.Duration) Option {
	return func(cl *Client) {
		if maxAttempts > 0 {
			cl.maxAttempts = maxAttempts
		}
		if baseBackoff >= 0 {
			cl.baseBackoff = baseBackoff
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) {
		if l != nil {
			cl.logger = l
		}
	}
}

// NewClient creates a client for the site at baseURL authenticating with an
// application password.
func NewClient(baseURL, username, appPassword string, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, &PublishError{Endpoint: baseURL, Message: "invalid base URL", Cause: err}
	}
	if username == "" || appPassword == "" {
		return nil, &PublishError{Endpoint: baseURL, Message: "username and application password are required"}
	}

	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		username:    username,
		password:    appPassword,
		httpClient:  &http.Client{Timeout: DefaultTimeout},
		userAgent:   DefaultUserAgent,
		maxAttempts: DefaultMaxAttempts,
		baseBackoff: DefaultBaseBackoff,
		logger:      logging.Discard(),
		sleep:       sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// CreatePost publishes p. A missing title is taken from the first h1 of the
// content, which is then removed from the body; a missing excerpt is taken
// from the first paragraph.
func (c *Client) CreatePost(ctx context.Context, p Post) (*PostResult, error) {
	if p.Title == "" {
		p.Title = markup.Title(p.Content)
		if p.Title != "" {
			p.Content = markup.StripTitle(p.Content)
		}
	}
	if p.Title == "" {
		return nil, &PublishError{Endpoint: "/posts", Message: "post has no title"}
	}
	if p.Excerpt == "" {
		p.Excerpt = markup.Excerpt(p.Content, ExcerptLength)
	}
	if p.Status == "" {
		p.Status = StatusPublish
	}

	body, err := json.Marshal(p)
	if err != nil {
		return nil, &PublishError{Endpoint: "/posts", Message: "failed to encode post", Cause: err}
	}

	var result PostResult
	if err := c.do(ctx, "/posts", "application/json", nil, body, &result); err != nil {
		return nil, err
	}
	c.logger.Info("post created", slog.Int("id", result.ID), slog.String("link", result.Link))
	return &result, nil
}

// UploadMedia uploads a file, retrying transient failures with exponential backoff.
func (c *Client) UploadMedia(ctx context.Context, filename string, data []byte) (*Media, error) {
	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	headers := map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="%s"`, filepath.Base(filename)),
	}

	backoff := c.baseBackoff
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		var media Media
		err := c.do(ctx, "/media", contentType, headers, data, &media)
		if err == nil {
			return &media, nil
		}
		lastErr = err

		var pe *PublishError
		if !errors.As(err, &pe) || !pe.Retryable() || attempt == c.maxAttempts {
			break
		}
		c.logger.Warn("media upload failed, retrying",
			slog.String("file", filename),
			slog.Int("attempt", attempt),
			slog.Duration("backoff", backoff),
			slog.String("error", err.Error()))
		if err := c.sleep(ctx, backoff); err != nil {
			return nil, &PublishError{Endpoint: "/media", Message: "upload cancelled", Cause: err}
		}
		backoff *= 2
	}
	return nil, lastErr
}

func (c *Client) do(ctx context.Context, endpoint, contentType string, headers map[string]string, body []byte, out any) error {
	target := c.baseURL + "/wp-json/wp/v2" + endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return &PublishError{Endpoint: endpoint, Message: "failed to create request", Cause: err}
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("User-Agent", c.userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &PublishError{Endpoint: endpoint, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &PublishError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: "failed to read response body", Cause: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &PublishError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("HTTP status %d: %s", resp.StatusCode, apiMessage(respBody)),
		}
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &PublishError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: "failed to decode response", Cause: err}
	}
	return nil
}

// apiMessage extracts the message field of a WordPress error body.
func apiMessage(body []byte) string {
	var apiErr struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
		return apiErr.Message
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
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
