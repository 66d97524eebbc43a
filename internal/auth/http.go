// ABOUTME: gin middleware for JWT authentication and role checks on API routes
// ABOUTME: Extracts the bearer token, loads the user and attaches AuthContext

package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/2389/antecedentes/internal/model"
)

// UserLookup loads the operator a token was issued to.
type UserLookup interface {
	GetUser(ctx context.Context, id int64) (*model.User, error)
}

// extractBearerToken extracts a bearer token from the Authorization header.
// Returns the token and an error message (empty if successful).
func extractBearerToken(authHeader string) (string, string) {
	if authHeader == "" {
		return "", "missing authorization header"
	}
	if len(authHeader) < 7 || !strings.EqualFold(authHeader[:7], "Bearer ") {
		return "", "invalid authorization header format"
	}
	token := strings.TrimSpace(authHeader[7:])
	if token == "" {
		return "", "empty token"
	}
	return token, ""
}

// Middleware validates the bearer token and attaches the caller's AuthContext.
// Failures answer 401 with a {"detail": ...} body, the shape the client expects.
func Middleware(users UserLookup, verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, errMsg := extractBearerToken(c.GetHeader("Authorization"))
		if errMsg != "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": errMsg})
			return
		}

		userID, err := verifier.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "could not validate credentials"})
			return
		}

		user, err := users.GetUser(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "user not found"})
			return
		}

		authCtx := &AuthContext{
			UserID:   user.ID,
			Username: user.Username,
			Role:     ClassifyRole(user),
		}
		c.Request = c.Request.WithContext(WithAuth(c.Request.Context(), authCtx))
		c.Next()
	}
}

// RequireWrite rejects VIEW operators. Must be used after Middleware.
func RequireWrite() gin.HandlerFunc {
	return func(c *gin.Context) {
		authCtx := FromContext(c.Request.Context())
		if authCtx == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "not authenticated"})
			return
		}
		if !authCtx.Role.CanWrite() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "read-only role"})
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects everyone but ADMIN operators. Must be used after Middleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		authCtx := FromContext(c.Request.Context())
		if authCtx == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "not authenticated"})
			return
		}
		if !authCtx.Role.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "admin role required"})
			return
		}
		c.Next()
	}
}
