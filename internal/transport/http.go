// Package transport performs the HTTP round trips of the smart protocol.
// Responses are read fully into memory.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/KostasZigo/gogit-sync/internal/constants"
)

// DefaultTimeout bounds a whole request including reading the body.
const DefaultTimeout = 5 * time.Minute

// StatusError is returned for any non-200 response.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %s", e.Method, e.URL, e.Status)
}

// HTTPTransport issues requests with a fixed client and user agent.
type HTTPTransport struct {
	client    *http.Client
	userAgent string
}

// Option configures an HTTPTransport.
type Option func(*HTTPTransport)

// WithTimeout sets the client timeout. Zero disables it.
func WithTimeout(timeout time.Duration) Option {
	return func(t *HTTPTransport) {
		t.client.Timeout = timeout
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(t *HTTPTransport) {
		if userAgent != "" {
			t.userAgent = userAgent
		}
	}
}

// WithHTTPClient replaces the underlying client.
func WithHTTPClient(client *http.Client) Option {
	return func(t *HTTPTransport) {
		t.client = client
	}
}

// NewHTTPTransport creates a transport with DefaultTimeout and the gogit user agent.
func NewHTTPTransport(opts ...Option) *HTTPTransport {
	t := &HTTPTransport{
		client: &http.Client{
			Timeout: DefaultTimeout,
		},
		userAgent: constants.DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// UserAgent returns the User-Agent header value.
func (t *HTTPTransport) UserAgent() string {
	return t.userAgent
}

// Get fetches url and returns the response body.
func (t *HTTPTransport) Get(ctx context.Context, url string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return t.do(req, header)
}

// Post sends body to url with the given content type and returns the response body.
func (t *HTTPTransport) Post(ctx context.Context, url, contentType string, body []byte, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	return t.do(req, header)
}

func (t *HTTPTransport) do(req *http.Request, header http.Header) ([]byte, error) {
	for name, values := range header {
		for _, value := range values {
			req.Header.Add(name, value)
		}
	}
	req.Header.Set("User-Agent", t.userAgent)

	slog.Debug("Sending request", "method", req.Method, "url", req.URL.Redacted())

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain a little so the connection can be reused
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{
			Method:     req.Method,
			URL:        req.URL.Redacted(),
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", req.URL.Redacted(), err)
	}

	slog.Debug("Received response", "url", req.URL.Redacted(), "bytes", len(body))
	return body, nil
}
