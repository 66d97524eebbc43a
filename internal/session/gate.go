// ABOUTME: Gate that admits commands only with a stored session
// ABOUTME: Derives the layout (full or read-only) from the user's role

package session

import (
	"context"
	"errors"

	"github.com/2389/antecedentes/internal/auth"
	"github.com/2389/antecedentes/internal/model"
)

// ErrNoSession is returned when no token, or no user profile, is stored.
var ErrNoSession = errors.New("no active session")

// Layout selects which affordances are offered.
type Layout int

const (
	LayoutFull Layout = iota
	LayoutReadOnly
)

func (l Layout) String() string {
	if l == LayoutReadOnly {
		return "read-only"
	}
	return "full"
}

// Session is an admitted login.
type Session struct {
	Token string
	User  *model.User
	Role  auth.RoleKind
}

// Layout returns LayoutReadOnly for VIEW users and LayoutFull otherwise.
func (s *Session) Layout() Layout {
	if !s.Role.CanWrite() {
		return LayoutReadOnly
	}
	return LayoutFull
}

// CanWrite reports whether the user may create, edit, link or delete.
func (s *Session) CanWrite() bool {
	return s.Role.CanWrite()
}

// IsAdmin reports whether the user may manage accounts.
func (s *Session) IsAdmin() bool {
	return s.Role.IsAdmin()
}

// Gate admits callers holding a stored session.
type Gate struct {
	provider *Provider
}

// NewGate creates a gate over provider.
func NewGate(provider *Provider) *Gate {
	return &Gate{provider: provider}
}

// Require returns the current session or ErrNoSession.
func (g *Gate) Require(ctx context.Context) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	token := g.provider.Token()
	if token == "" {
		return nil, ErrNoSession
	}
	user, err := g.provider.User()
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNoSession
	}
	return &Session{
		Token: token,
		User:  user,
		Role:  auth.ClassifyRole(user),
	}, nil
}
