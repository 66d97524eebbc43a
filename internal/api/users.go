// ABOUTME: Operator account and role endpoints
// ABOUTME: Only ADMIN users may call these; others get 403

package api

import (
	"context"
	"net/http"

	"github.com/2389/antecedentes/internal/model"
)

// UserService handles /users.
type UserService struct {
	c *Client
}

// List returns every operator account.
func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	return list[model.User](ctx, s.c, "/users", nil)
}

// Get returns one operator account.
func (s *UserService) Get(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	if err := s.c.do(ctx, &request{method: http.MethodGet, path: idPath("/users/%d", id)}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create validates and creates an account.
func (s *UserService) Create(ctx context.Context, in model.UserInput) (*model.User, error) {
	if err := in.Validate(true); err != nil {
		return nil, err
	}
	return s.write(ctx, http.MethodPost, "/users", in)
}

// Update validates and replaces an account. An empty password keeps the current one.
func (s *UserService) Update(ctx context.Context, id int64, in model.UserInput) (*model.User, error) {
	if err := in.Validate(false); err != nil {
		return nil, err
	}
	return s.write(ctx, http.MethodPut, idPath("/users/%d", id), in)
}

func (s *UserService) write(ctx context.Context, method, path string, in model.UserInput) (*model.User, error) {
	req, err := jsonRequest(method, path, in)
	if err != nil {
		return nil, err
	}
	var u model.User
	if err := s.c.do(ctx, req, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Delete removes an account.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	return s.c.do(ctx, &request{method: http.MethodDelete, path: idPath("/users/%d", id)}, nil)
}

// RoleService handles /roles.
type RoleService struct {
	c *Client
}

// List returns the available roles.
func (s *RoleService) List(ctx context.Context) ([]model.Role, error) {
	return list[model.Role](ctx, s.c, "/roles", nil)
}
