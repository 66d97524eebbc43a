// ABOUTME: Role classification for operator accounts
// ABOUTME: Tolerant to flat role_name/role_id fields and a nested role object

package auth

import (
	"strings"

	"github.com/2389/antecedentes/internal/model"
)

// RoleKind is the coarse permission class the tools act on.
type RoleKind string

const (
	RoleKindAdmin RoleKind = "admin"
	RoleKindUser  RoleKind = "user"
	RoleKindView  RoleKind = "view"
)

// CanWrite reports whether the role may mutate entities.
func (k RoleKind) CanWrite() bool {
	return k == RoleKindAdmin || k == RoleKindUser
}

// IsAdmin reports whether the role may manage operator accounts.
func (k RoleKind) IsAdmin() bool {
	return k == RoleKindAdmin
}

// ClassifyRole derives the RoleKind of u. A role matches on a case-insensitive
// name or on its numeric id, looking at both the flat fields and the nested
// role object. ADMIN wins over VIEW; everything else is a regular user.
// A nil user is treated as VIEW.
func ClassifyRole(u *model.User) RoleKind {
	if u == nil {
		return RoleKindView
	}
	if hasRole(u, model.RoleAdmin, model.RoleIDAdmin) {
		return RoleKindAdmin
	}
	if hasRole(u, model.RoleView, model.RoleIDView) {
		return RoleKindView
	}
	return RoleKindUser
}

func hasRole(u *model.User, name string, id int64) bool {
	if strings.EqualFold(strings.TrimSpace(u.RoleName), name) || u.RoleID == id {
		return true
	}
	if u.Role != nil {
		return strings.EqualFold(strings.TrimSpace(u.Role.Name), name) || u.Role.ID == id
	}
	return false
}

// RoleKindForName maps a stored role name to its RoleKind.
func RoleKindForName(name string) RoleKind {
	return ClassifyRole(&model.User{RoleName: name})
}
