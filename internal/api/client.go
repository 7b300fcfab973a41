// Package api is the client for the ReadySet REST backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// Credentials supplies the bearer token and is told when the backend rejects it
type Credentials interface {
	Token(ctx context.Context) string
	// Invalidate clears the session and reports whether a token was held
	Invalidate(ctx context.Context) bool
}

// Client talks JSON to the backend
type Client struct {
	baseURL     string
	httpClient  *http.Client
	publicPaths []string
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout bounds every request. Zero leaves only the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Timeout = d
		c.httpClient = &hc
	}
}

// WithPublicPaths sets the paths whose 401 responses leave the session alone.
// Each entry matches itself and anything below it.
func WithPublicPaths(paths []string) Option {
	return func(c *Client) {
		c.publicPaths = nil
		for _, p := range paths {
			if p = strings.TrimRight(strings.TrimSpace(p), "/"); p != "" {
				c.publicPaths = append(c.publicPaths, p)
			}
		}
	}
}

// New creates a client for baseURL, e.g. http://localhost:5000/api or https://host/api/v1
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{},
		publicPaths: []string{"/content"},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// IsPublic reports whether path is on the public allow-list
func (c *Client) IsPublic(path string) bool {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	for _, p := range c.publicPaths {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// Do sends a JSON request and decodes the unwrapped response into out.
// creds may be nil for anonymous calls. out may be nil to discard the body.
func (c *Client) Do(ctx context.Context, creds Credentials, method, path string, body, out any) error {
	raw, err := c.do(ctx, creds, method, path, body)
	if err != nil {
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode %s %s: %w", method, path, err)
	}
	return nil
}

// do returns the response body with any {data: ...} envelope removed
func (c *Client) do(ctx context.Context, creds Credentials, method, path string, body any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if creds != nil {
		if token := creds.Token(ctx); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s %s: %v", ErrNetwork, method, path, err)
	}

	// calls made without credentials have no session to expire
	if resp.StatusCode == http.StatusUnauthorized && creds != nil && !c.IsPublic(path) {
		if creds.Invalidate(ctx) {
			log.Printf("Session rejected by backend on %s %s, cleared", method, path)
		}
		return nil, fmt.Errorf("%w: %s %s", ErrSessionExpired, method, path)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{
			Status:  resp.StatusCode,
			Message: errorMessage(data),
			Method:  method,
			Path:    path,
		}
	}

	return unwrapData(data), nil
}

// errorMessage extracts the server's message from an error body
func errorMessage(data []byte) string {
	obj, ok := parseObject(data)
	if !ok {
		return ""
	}
	if msg := obj.str("message", "error", "msg"); msg != "" {
		return msg
	}
	if nested, ok := obj.object("error"); ok {
		return nested.str("message", "msg")
	}
	return ""
}

// unwrapData removes a {data: ...} envelope when present
func unwrapData(data []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}
	if obj, ok := parseObject(trimmed); ok {
		if inner, ok := obj["data"]; ok && !isNull(inner) {
			return inner
		}
	}
	return trimmed
}
