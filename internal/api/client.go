// ABOUTME: HTTP plumbing shared by all entity services
// ABOUTME: Bearer auth from a TokenSource, JSON decoding, 401 expiry hook and debug logging

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TokenSource supplies the current access token. It is called on every request.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithLogger sets the logger. Pass nil for default.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger.With("component", "api")
		}
	}
}

// WithUnauthorizedHandler sets the hook invoked on every 401 from an
// authenticated request. The argument describes the failing call.
func WithUnauthorizedHandler(fn func(reason string) bool) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// Client talks to the REST backend.
type Client struct {
	baseURL        string
	http           *http.Client
	tokens         TokenSource
	onUnauthorized func(reason string) bool
	logger         *slog.Logger

	Auth      *AuthService
	Persons   *PersonService
	Records   *RecordService
	Files     *FileService
	Users     *UserService
	Roles     *RoleService
	Dashboard *DashboardService
}

// NewClient creates a client for baseURL. tokens may be nil for
// unauthenticated use (login, health).
func NewClient(baseURL string, tokens TokenSource, opts ...Option) *Client {
	if tokens == nil {
		tokens = TokenFunc(func() string { return "" })
	}
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		tokens:  tokens,
		logger:  slog.Default().With("component", "api"),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.Auth = &AuthService{c: c}
	c.Persons = &PersonService{c: c}
	c.Records = &RecordService{c: c}
	c.Files = &FileService{c: c}
	c.Users = &UserService{c: c}
	c.Roles = &RoleService{c: c}
	c.Dashboard = &DashboardService{c: c}
	return c
}

// BaseURL returns the configured endpoint.
func (c *Client) BaseURL() string { return c.baseURL }

// request describes one API call.
type request struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
	// public requests carry no token and never trigger the unauthorized hook.
	public bool
}

func jsonRequest(method, path string, payload any) (*request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}
	return &request{
		method:      method,
		path:        path,
		body:        bytes.NewReader(body),
		contentType: "application/json",
	}, nil
}

// send executes r and returns the response for 2xx statuses. Callers must
// close the body.
func (c *Client) send(ctx context.Context, r *request) (*http.Response, error) {
	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, r.body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if !r.public {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logger.Warn("request failed", "method", r.method, "path", r.path, "error", err)
		return nil, fmt.Errorf("%w: %s %s: %v", ErrConnection, r.method, r.path, err)
	}

	c.logger.Debug("api call",
		"method", r.method,
		"path", r.path,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := newError(r.method, r.path, resp.StatusCode, body)

	if resp.StatusCode == http.StatusUnauthorized && !r.public && c.onUnauthorized != nil {
		c.onUnauthorized(fmt.Sprintf("%s %s answered 401", r.method, r.path))
	}
	if resp.StatusCode != http.StatusNotFound {
		c.logger.Warn("api error", "method", r.method, "path", r.path, "status", resp.StatusCode, "detail", apiErr.Detail)
	}
	return nil, apiErr
}

// do executes r and decodes a JSON body into out when out is non-nil.
func (c *Client) do(ctx context.Context, r *request, out any) error {
	resp, err := c.send(ctx, r)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", ErrConnection, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", r.method, r.path, err)
	}
	return nil
}

// list fetches a collection. A 404 means no matches and yields an empty slice.
func list[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	var raw json.RawMessage
	err := c.do(ctx, &request{method: http.MethodGet, path: path, query: query}, &raw)
	if IsNotFound(err) {
		return []T{}, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeList[T](raw)
}

// decodeList accepts a bare array or an envelope with items, data or results.
func decodeList[T any](raw json.RawMessage) ([]T, error) {
	out := []T{}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return out, nil
	}
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return nil, fmt.Errorf("decoding list: %w", err)
		}
		return out, nil
	}

	var envelope struct {
		Items   []T `json:"items"`
		Data    []T `json:"data"`
		Results []T `json:"results"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("decoding list: %w", err)
	}
	switch {
	case envelope.Items != nil:
		return envelope.Items, nil
	case envelope.Data != nil:
		return envelope.Data, nil
	case envelope.Results != nil:
		return envelope.Results, nil
	}
	return out, nil
}

func idPath(format string, ids ...int64) string {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return fmt.Sprintf(format, args...)
}
