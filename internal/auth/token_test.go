// ABOUTME: Unit tests for JWT token verification and generation
// ABOUTME: Tests valid tokens, invalid tokens, and expired tokens

package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestJWTIssuer_ValidToken(t *testing.T) {
	issuer := NewJWTIssuer([]byte("test-secret-key-for-jwt-signing-0123"))

	token, err := issuer.Generate(42, "ADMIN", time.Hour)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	gotID, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if gotID != 42 {
		t.Errorf("Verify() = %d, want 42", gotID)
	}
}

func TestJWTIssuer_InvalidToken(t *testing.T) {
	issuer := NewJWTIssuer([]byte("test-secret-key-for-jwt-signing-0123"))

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty token", token: ""},
		{name: "garbage token", token: "not-a-jwt-token"},
		{name: "malformed JWT", token: "header.payload.signature"},
		{
			name: "wrong secret",
			token: func() string {
				other := NewJWTIssuer([]byte("different-secret"))
				token, _ := other.Generate(42, "ADMIN", time.Hour)
				return token
			}(),
		},
		{
			name: "non numeric subject",
			token: func() string {
				claims := jwt.MapClaims{"sub": "alice", "exp": time.Now().Add(time.Hour).Unix()}
				token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret-key-for-jwt-signing-0123"))
				return token
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := issuer.Verify(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestJWTIssuer_MissingSubject(t *testing.T) {
	secret := []byte("test-secret-key-for-jwt-signing-0123")
	claims := jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("signing: %v", err)
	}

	if _, err := NewJWTIssuer(secret).Verify(token); !errors.Is(err, ErrMissingClaim) {
		t.Errorf("Verify() error = %v, want ErrMissingClaim", err)
	}
}

func TestJWTIssuer_ExpiredToken(t *testing.T) {
	issuer := NewJWTIssuer([]byte("test-secret-key-for-jwt-signing-0123"))
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := issuer.Generate(42, "USER", time.Hour)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	issuer.now = time.Now
	if _, err := issuer.Verify(token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("Verify() error = %v, want ErrExpiredToken", err)
	}
}
