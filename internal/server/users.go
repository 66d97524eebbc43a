// ABOUTME: Login, health, role catalogue and ADMIN-only user management handlers
// ABOUTME: Login takes a form body and answers with a bearer token and the user

package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/2389/antecedentes/internal/auth"
	"github.com/2389/antecedentes/internal/model"
)

func (s *Server) handleLogin(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	if username == "" || password == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "username and password are required"})
		return
	}

	u, err := s.store.Authenticate(c.Request.Context(), username, password)
	if err != nil {
		s.writeError(c, err)
		return
	}

	token, err := s.issuer.Generate(u.ID, u.RoleName, s.cfg.Auth.TokenTTL)
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.logger.Info("login", "username", u.Username, "role", u.RoleName)
	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
		"user":         u,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		s.logger.Error("health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "version": Version})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": Version})
}

func (s *Server) handleListRoles(c *gin.Context) {
	roles, err := s.store.ListRoles(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, roles)
}

func (s *Server) handleListUsers(c *gin.Context) {
	users, err := s.store.ListUsers(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// bindUser decodes a user payload. The confirmation is a client-side concern,
// so the password is taken as confirmed.
func (s *Server) bindUser(c *gin.Context, creating bool) (model.UserInput, bool) {
	var in model.UserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return in, false
	}
	in.ConfirmPassword = in.Password
	if err := in.Validate(creating); err != nil {
		s.writeError(c, err)
		return in, false
	}
	return in, true
}

func (s *Server) handleCreateUser(c *gin.Context) {
	in, ok := s.bindUser(c, true)
	if !ok {
		return
	}
	u, err := s.store.CreateUser(c.Request.Context(), in)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (s *Server) handleGetUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	u, err := s.store.GetUser(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (s *Server) handleUpdateUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	in, ok := s.bindUser(c, false)
	if !ok {
		return
	}
	u, err := s.store.UpdateUser(c.Request.Context(), id, in)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (s *Server) handleDeleteUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if caller := auth.FromContext(c.Request.Context()); caller != nil && caller.UserID == id {
		badRequest(c, "cannot delete your own account")
		return
	}
	if err := s.store.DeleteUser(c.Request.Context(), id); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
