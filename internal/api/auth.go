// ABOUTME: Login and health endpoints
// ABOUTME: Login is form-encoded and public; its 401 never signals session expiry

package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/2389/antecedentes/internal/model"
)

// LoginResult is the body of a successful login.
type LoginResult struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	User        model.User `json:"user"`
}

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// AuthService handles credentials.
type AuthService struct {
	c *Client
}

// Login exchanges credentials for an access token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var out LoginResult
	err := s.c.do(ctx, &request{
		method:      http.MethodPost,
		path:        "/login",
		body:        strings.NewReader(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
		public:      true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Health checks that the backend is reachable.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var out HealthStatus
	if err := c.do(ctx, &request{method: http.MethodGet, path: "/health", public: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
